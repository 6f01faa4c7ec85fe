package cmd

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rohmanhakim/search-engine-core/internal/build"
	"github.com/rohmanhakim/search-engine-core/internal/config"
	"github.com/rohmanhakim/search-engine-core/internal/crawler"
	"github.com/rohmanhakim/search-engine-core/internal/metadata"
	"github.com/rohmanhakim/search-engine-core/internal/storage"
	"github.com/rohmanhakim/search-engine-core/internal/templates"
	"github.com/spf13/cobra"
)

var (
	cfgFile                  string
	seedURLs                 []string
	maxDepth                 int
	maxConcurrentConnections int
	maxPages                 int
	userAgent                string
	requestTimeout           time.Duration
	politenessDelay          time.Duration
	jitter                   time.Duration
	randomSeed               int64
	maxRetries               int
	baseRetryDelay           time.Duration
	backoffMultiplier        float64
	allowedHosts             []string
	allowedPathPrefix        []string
	templateName             string
)

// parseStringSliceToSet converts a string slice to a map[string]struct{} set
func parseStringSliceToSet(strings []string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, s := range strings {
		if s != "" {
			set[s] = struct{}{}
		}
	}
	return set
}

// parseSeedURLs converts a string slice of URLs to []url.URL
func parseSeedURLs(urlStrings []string) ([]url.URL, error) {
	if len(urlStrings) == 0 {
		return nil, fmt.Errorf("seed URLs cannot be empty")
	}

	var urls []url.URL
	for _, urlStr := range urlStrings {
		parsedURL, err := url.Parse(urlStr)
		if err != nil {
			return nil, fmt.Errorf("error parsing seed URL %s: %w", urlStr, err)
		}
		urls = append(urls, *parsedURL)
	}
	return urls, nil
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "searchengine",
	Short:   "A polite multi-domain crawler, content store and query engine.",
	Version: build.FullVersion(),
	Long: `searchengine crawls web sites under a configurable politeness and
circuit-breaker policy, extracts and stores their content, and serves
ranked search results over HTTP.

Run "searchengine crawl" to start a one-off crawl session,
"searchengine serve" to run the HTTP search API, or
"searchengine worker" to run the job-queue workers.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "crawl config file path (e.g., /home/myuser/config.json)")
	rootCmd.PersistentFlags().StringArrayVar(&seedURLs, "seed-url", []string{}, "one or more starting URLs (can be repeated)")
	rootCmd.PersistentFlags().IntVar(&maxDepth, "max-depth", 0, "maximum link depth from seed URL")
	rootCmd.PersistentFlags().IntVar(&maxConcurrentConnections, "max-concurrent-connections", 0, "maximum number of concurrent fetches")
	rootCmd.PersistentFlags().IntVar(&maxPages, "max-pages", 0, "maximum number of pages to fetch (0 keeps the configured or default limit)")
	rootCmd.PersistentFlags().StringVar(&userAgent, "user-agent", "", "user agent string for HTTP requests")
	rootCmd.PersistentFlags().DurationVar(&requestTimeout, "request-timeout", 0, "timeout for a single HTTP fetch")
	rootCmd.PersistentFlags().DurationVar(&politenessDelay, "politeness-delay", 0, "minimum delay between requests to the same host")
	rootCmd.PersistentFlags().DurationVar(&jitter, "jitter", 0, "jitter duration stored in the crawl config (fetch retry delays do not include it)")
	rootCmd.PersistentFlags().Int64Var(&randomSeed, "random-seed", 0, "seed for random number generation (0 for current time)")
	rootCmd.PersistentFlags().IntVar(&maxRetries, "max-retries", 0, "maximum retry attempts per fetch")
	rootCmd.PersistentFlags().DurationVar(&baseRetryDelay, "base-retry-delay", 0, "initial retry backoff delay")
	rootCmd.PersistentFlags().Float64Var(&backoffMultiplier, "backoff-multiplier", 0, "retry backoff multiplier")
	rootCmd.PersistentFlags().StringArrayVar(&allowedHosts, "allowed-host", []string{}, "explicit hostname allowlist (defaults to seed hosts)")
	rootCmd.PersistentFlags().StringArrayVar(&allowedPathPrefix, "allowed-path-prefix", []string{}, "restrict crawl to paths like `/docs`, `/guide`")
	rootCmd.PersistentFlags().StringVar(&templateName, "template", "", "crawl template to apply before other flags (e.g. news-site, documentation-site)")

	rootCmd.AddCommand(crawlCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(workerCmd)
}

// crawlCmd runs a single crawl session to completion and prints its
// final stats, wiring the CLI-built Config into a crawler.Manager
// backed by the service's content storage.
var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Run a single crawl session to completion",
	Run: func(cmd *cobra.Command, args []string) {
		if len(seedURLs) == 0 {
			fmt.Fprintln(os.Stderr, "Error: --seed-url is required. Please provide at least one seed URL to start crawling.")
			cmd.Usage()
			os.Exit(1)
		}

		parsedURLs, err := parseSeedURLs(seedURLs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}

		cfg := InitConfig(parsedURLs)
		printConfig(cfg)

		svcCfg, err := config.LoadServiceConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading service config: %s\n", err)
			os.Exit(1)
		}

		sink := metadata.NewRecorder()
		store := storage.New(sink, svcCfg.DocumentStoreDSN, svcCfg.FullTextIndexURI, svcCfg.FullTextIndexName, svcCfg.FullTextKeyPrefix)
		mgr := crawler.NewManager(sink, store)

		sessionID, err := mgr.StartSession(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error starting crawl session: %s\n", err)
			os.Exit(1)
		}

		fmt.Printf("Crawl session %s started\n", sessionID)
		if err := mgr.Wait(sessionID); err != nil {
			fmt.Fprintf(os.Stderr, "Error waiting for crawl session: %s\n", err)
			os.Exit(1)
		}

		stats, _ := mgr.GetStats(sessionID)
		status, _ := mgr.GetStatus(sessionID)
		fmt.Printf("Crawl session %s finished with status %s\n", sessionID, status)
		fmt.Printf("Pages crawled: %d, failed: %d, skipped: %d\n", stats.PagesCrawled, stats.PagesFailed, stats.PagesSkipped)
	},
}

// serveCmd runs the HTTP search API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP search API",
	Run: func(cmd *cobra.Command, args []string) {
		svcCfg, err := config.LoadServiceConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading service config: %s\n", err)
			os.Exit(1)
		}
		fmt.Printf("Starting search API on %s\n", svcCfg.HTTPAddr)
		RunServe(svcCfg)
	},
}

// workerCmd runs the job-queue worker pool.
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run job-queue workers",
	Run: func(cmd *cobra.Command, args []string) {
		svcCfg, err := config.LoadServiceConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading service config: %s\n", err)
			os.Exit(1)
		}
		fmt.Printf("Starting %d queue workers against %s\n", svcCfg.WorkerCount, svcCfg.QueueRedisURI)
		RunWorker(svcCfg)
	},
}

func printConfig(cfg config.Config) {
	fmt.Printf("Configuration initialized successfully\n")
	if len(cfg.SeedURLs()) > 0 {
		var urls []string
		for _, u := range cfg.SeedURLs() {
			urls = append(urls, u.String())
		}
		fmt.Printf("Seed URLs: %s\n", strings.Join(urls, ", "))
	}
	if len(cfg.AllowedHosts()) > 0 {
		var hosts []string
		for host := range cfg.AllowedHosts() {
			hosts = append(hosts, host)
		}
		fmt.Printf("Allowed Hosts: %s\n", strings.Join(hosts, ", "))
	}
	if len(cfg.AllowedPathPrefix()) > 0 {
		fmt.Printf("Allowed Path Prefixes: %s\n", strings.Join(cfg.AllowedPathPrefix(), ", "))
	}
	fmt.Printf("Max Depth: %d\n", cfg.MaxDepth())
	fmt.Printf("Max Pages: %d\n", cfg.MaxPages())
	fmt.Printf("Max Concurrent Connections: %d\n", cfg.MaxConcurrentConnections())
	fmt.Printf("Politeness Delay: %v\n", cfg.PolitenessDelay())
	fmt.Printf("Jitter: %v\n", cfg.Jitter())
	fmt.Printf("Random Seed: %d\n", cfg.RandomSeed())
	fmt.Printf("Request Timeout: %v\n", cfg.RequestTimeout())
	fmt.Printf("User Agent: %s\n", cfg.UserAgent())
}

// InitConfig reads in config file and ENV variables if set.
// seedUrls is a mandatory parameter and must contain at least one valid URL.
func InitConfig(seedUrls []url.URL) config.Config {
	cfg, err := InitConfigWithError(seedUrls)
	if err != nil {
		fmt.Printf("Error: %s\n", err)
		os.Exit(1)
	}
	return cfg
}

// InitConfigWithError reads in config file and ENV variables if set, returning any errors.
// seedUrls is a mandatory parameter and must contain at least one valid URL.
// This makes it easier to test error cases.
func InitConfigWithError(seedUrls []url.URL) (config.Config, error) {
	if len(seedUrls) == 0 {
		return config.Config{}, fmt.Errorf("%w: seedUrls cannot be empty", config.ErrInvalidConfig)
	}

	if cfgFile != "" {
		fmt.Printf("Initializing config from file: %s\n", cfgFile)
		cfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return cfg, fmt.Errorf("error initializing config from file: %w", err)
		}
		return cfg, nil
	}

	// Build config from CLI flags using the With... functions with method chaining
	fmt.Println("No config file specified. Using default flag values or environment variables")

	// Start with default config using provided seed URLs and apply overrides using method chaining
	configBuilder := config.WithDefault(seedUrls)

	if templateName != "" {
		reg := templates.NewRegistry()
		templates.SeedPrebuilt(reg)
		def, err := reg.Get(templateName)
		if err != nil {
			return config.Config{}, fmt.Errorf("unknown crawl template %q: %w", templateName, err)
		}
		configBuilder = templates.Apply(def, configBuilder)
	}

	if maxDepth > 0 {
		configBuilder = configBuilder.WithMaxDepth(maxDepth)
	}

	if maxConcurrentConnections > 0 {
		configBuilder = configBuilder.WithMaxConcurrentConnections(maxConcurrentConnections)
	}

	if maxPages > 0 {
		configBuilder = configBuilder.WithMaxPages(maxPages)
	}

	if userAgent != "" {
		configBuilder = configBuilder.WithUserAgent(userAgent)
	}

	if requestTimeout > 0 {
		configBuilder = configBuilder.WithRequestTimeout(requestTimeout)
	}

	if politenessDelay > 0 {
		configBuilder = configBuilder.WithPolitenessDelay(politenessDelay)
	}

	if jitter > 0 {
		configBuilder = configBuilder.WithJitter(jitter)
	}

	if randomSeed != 0 {
		configBuilder = configBuilder.WithRandomSeed(randomSeed)
	}

	if maxRetries > 0 {
		configBuilder = configBuilder.WithMaxRetries(maxRetries)
	}

	if baseRetryDelay > 0 {
		configBuilder = configBuilder.WithBaseRetryDelay(baseRetryDelay)
	}

	if backoffMultiplier > 0 {
		configBuilder = configBuilder.WithBackoffMultiplier(backoffMultiplier)
	}

	if len(allowedHosts) > 0 {
		configBuilder = configBuilder.WithAllowedHosts(parseStringSliceToSet(allowedHosts))
	}

	if len(allowedPathPrefix) > 0 {
		configBuilder = configBuilder.WithAllowedPathPrefix(allowedPathPrefix)
	}

	cfg, err := configBuilder.Build()
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func ResetFlags() {
	cfgFile = ""
	seedURLs = []string{}
	maxDepth = 0
	maxConcurrentConnections = 0
	maxPages = 0
	userAgent = ""
	requestTimeout = 0
	politenessDelay = 0
	jitter = 0
	randomSeed = 0
	maxRetries = 0
	baseRetryDelay = 0
	backoffMultiplier = 0
	allowedHosts = []string{}
	allowedPathPrefix = []string{}
	templateName = ""
}

// Test helper functions to set flag values from tests
func SetConfigFileForTest(path string) {
	cfgFile = path
}

func SetSeedURLsForTest(urls []string) {
	seedURLs = urls
}

func SetMaxDepthForTest(depth int) {
	maxDepth = depth
}

func SetMaxConcurrentConnectionsForTest(n int) {
	maxConcurrentConnections = n
}

func SetMaxPagesForTest(pages int) {
	maxPages = pages
}

func SetUserAgentForTest(agent string) {
	userAgent = agent
}

func SetRequestTimeoutForTest(t time.Duration) {
	requestTimeout = t
}

func SetPolitenessDelayForTest(delay time.Duration) {
	politenessDelay = delay
}

func SetJitterForTest(j time.Duration) {
	jitter = j
}

func SetRandomSeedForTest(seed int64) {
	randomSeed = seed
}

func SetMaxRetriesForTest(n int) {
	maxRetries = n
}

func SetBaseRetryDelayForTest(delay time.Duration) {
	baseRetryDelay = delay
}

func SetBackoffMultiplierForTest(m float64) {
	backoffMultiplier = m
}

func SetAllowedHostsForTest(hosts []string) {
	allowedHosts = hosts
}

func SetAllowedPathPrefixForTest(prefixes []string) {
	allowedPathPrefix = prefixes
}

func SetTemplateForTest(name string) {
	templateName = name
}
