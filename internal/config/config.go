package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"time"
)

// Config is a per-session crawl configuration (spec's CrawlConfig). It is
// built through the WithX(...).Build() chain, exactly like the teacher's
// builder, but the knobs themselves now describe a politeness-respecting,
// circuit-breaker-aware multi-domain crawl instead of a single Markdown
// documentation crawl.
type Config struct {
	//===============
	//  Crawl scope
	//===============
	seedURLs           []url.URL
	allowedHosts       map[string]struct{}
	allowedPathPrefix  []string
	restrictToSeedDomain bool

	//===============
	// Limits
	//===============
	maxDepth int
	maxPages int

	//===============
	// Politeness
	//===============
	maxConcurrentConnections int
	politenessDelay          time.Duration
	rateLimitDelay           time.Duration
	jitter                   time.Duration
	randomSeed               int64

	//===============
	// Retry / backoff block
	//===============
	maxRetries              int
	baseRetryDelay          time.Duration
	backoffMultiplier       float64
	maxRetryDelay           time.Duration
	retryableHttpCodes      map[int]struct{}
	retryableTransportCodes map[string]struct{}

	//===============
	// Circuit-breaker block
	//===============
	failureThreshold int
	resetTime        time.Duration

	//===============
	// Fetch
	//===============
	requestTimeout      time.Duration
	userAgent           string
	respectRobotsTxt    bool
	followRedirects     bool
	maxRedirects        int
	spaRenderingEnabled bool

	//===============
	// Extraction selector overrides
	//===============
	articleSelectors []string
	titleSelectors   []string
	contentSelectors []string
}

type configDTO struct {
	SeedURLs             []url.URL           `json:"seedUrls"`
	AllowedHosts         map[string]struct{} `json:"allowedHosts,omitempty"`
	AllowedPathPrefix    []string            `json:"allowedPathPrefix,omitempty"`
	RestrictToSeedDomain bool                `json:"restrictToSeedDomain,omitempty"`

	MaxDepth int `json:"maxDepth,omitempty"`
	MaxPages int `json:"maxPages,omitempty"`

	MaxConcurrentConnections int           `json:"maxConcurrentConnections,omitempty"`
	PolitenessDelay          time.Duration `json:"politenessDelay,omitempty"`
	RateLimitDelay           time.Duration `json:"rateLimitDelay,omitempty"`
	Jitter                   time.Duration `json:"jitter,omitempty"`
	RandomSeed               int64         `json:"randomSeed,omitempty"`

	MaxRetries              int      `json:"maxRetries,omitempty"`
	BaseRetryDelay          time.Duration `json:"baseRetryDelay,omitempty"`
	BackoffMultiplier       float64  `json:"backoffMultiplier,omitempty"`
	MaxRetryDelay           time.Duration `json:"maxRetryDelay,omitempty"`
	RetryableHttpCodes      []int    `json:"retryableHttpCodes,omitempty"`
	RetryableTransportCodes []string `json:"retryableTransportCodes,omitempty"`

	FailureThreshold int           `json:"failureThreshold,omitempty"`
	ResetTime        time.Duration `json:"resetTime,omitempty"`

	RequestTimeout      time.Duration `json:"requestTimeout,omitempty"`
	UserAgent           string        `json:"userAgent,omitempty"`
	RespectRobotsTxt    *bool         `json:"respectRobotsTxt,omitempty"`
	FollowRedirects     *bool         `json:"followRedirects,omitempty"`
	MaxRedirects        int           `json:"maxRedirects,omitempty"`
	SpaRenderingEnabled bool          `json:"spaRenderingEnabled,omitempty"`

	ArticleSelectors []string `json:"articleSelectors,omitempty"`
	TitleSelectors   []string `json:"titleSelectors,omitempty"`
	ContentSelectors []string `json:"contentSelectors,omitempty"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	cfg, err := WithDefault(dto.SeedURLs).Build()
	if err != nil {
		return Config{}, err
	}

	if len(dto.AllowedHosts) > 0 {
		cfg.allowedHosts = dto.AllowedHosts
	}
	cfg.allowedPathPrefix = dto.AllowedPathPrefix
	cfg.restrictToSeedDomain = dto.RestrictToSeedDomain

	if dto.MaxDepth != 0 {
		cfg.maxDepth = dto.MaxDepth
	}
	if dto.MaxPages != 0 {
		cfg.maxPages = dto.MaxPages
	}
	if dto.MaxConcurrentConnections != 0 {
		cfg.maxConcurrentConnections = dto.MaxConcurrentConnections
	}
	if dto.PolitenessDelay != 0 {
		cfg.politenessDelay = dto.PolitenessDelay
	}
	if dto.RateLimitDelay != 0 {
		cfg.rateLimitDelay = dto.RateLimitDelay
	}
	if dto.Jitter != 0 {
		cfg.jitter = dto.Jitter
	}
	if dto.RandomSeed != 0 {
		cfg.randomSeed = dto.RandomSeed
	}
	if dto.MaxRetries != 0 {
		cfg.maxRetries = dto.MaxRetries
	}
	if dto.BaseRetryDelay != 0 {
		cfg.baseRetryDelay = dto.BaseRetryDelay
	}
	if dto.BackoffMultiplier != 0 {
		cfg.backoffMultiplier = dto.BackoffMultiplier
	}
	if dto.MaxRetryDelay != 0 {
		cfg.maxRetryDelay = dto.MaxRetryDelay
	}
	if len(dto.RetryableHttpCodes) > 0 {
		cfg.retryableHttpCodes = toIntSet(dto.RetryableHttpCodes)
	}
	if len(dto.RetryableTransportCodes) > 0 {
		cfg.retryableTransportCodes = toStringSet(dto.RetryableTransportCodes)
	}
	if dto.FailureThreshold != 0 {
		cfg.failureThreshold = dto.FailureThreshold
	}
	if dto.ResetTime != 0 {
		cfg.resetTime = dto.ResetTime
	}
	if dto.RequestTimeout != 0 {
		cfg.requestTimeout = dto.RequestTimeout
	}
	if dto.UserAgent != "" {
		cfg.userAgent = dto.UserAgent
	}
	if dto.RespectRobotsTxt != nil {
		cfg.respectRobotsTxt = *dto.RespectRobotsTxt
	}
	if dto.FollowRedirects != nil {
		cfg.followRedirects = *dto.FollowRedirects
	}
	if dto.MaxRedirects != 0 {
		cfg.maxRedirects = dto.MaxRedirects
	}
	cfg.spaRenderingEnabled = dto.SpaRenderingEnabled

	if len(dto.ArticleSelectors) > 0 {
		cfg.articleSelectors = dto.ArticleSelectors
	}
	if len(dto.TitleSelectors) > 0 {
		cfg.titleSelectors = dto.TitleSelectors
	}
	if len(dto.ContentSelectors) > 0 {
		cfg.contentSelectors = dto.ContentSelectors
	}

	return cfg, nil
}

func toIntSet(vals []int) map[int]struct{} {
	out := make(map[int]struct{}, len(vals))
	for _, v := range vals {
		out[v] = struct{}{}
	}
	return out
}

func toStringSet(vals []string) map[string]struct{} {
	out := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		out[v] = struct{}{}
	}
	return out
}

func WithConfigFile(path string) (Config, error) {
	_, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	configContent, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}
	cfgDTO := configDTO{}

	if err := json.Unmarshal(configContent, &cfgDTO); err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	cfg, err := newConfigFromDTO(cfgDTO)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WithDefault creates a new Config with the provided seed URLs and default
// values for everything else. seedUrls is mandatory; Build() rejects empty.
func WithDefault(seedUrls []url.URL) *Config {
	defaultConfig := Config{
		seedURLs:             seedUrls,
		allowedHosts:         map[string]struct{}{},
		allowedPathPrefix:    []string{"/"},
		restrictToSeedDomain: true,

		maxDepth: 3,
		maxPages: 100,

		maxConcurrentConnections: 10,
		politenessDelay:          time.Second,
		rateLimitDelay:           30 * time.Second,
		jitter:                  500 * time.Millisecond,
		randomSeed:              time.Now().UnixNano(),

		maxRetries:        3,
		baseRetryDelay:    1 * time.Second,
		backoffMultiplier: 2.0,
		maxRetryDelay:     60 * time.Second,
		retryableHttpCodes: toIntSet([]int{408, 429, 500, 502, 503, 504}),
		retryableTransportCodes: toStringSet([]string{
			"timeout", "connection_reset", "connection_refused",
		}),

		failureThreshold: 5,
		resetTime:        5 * time.Minute,

		requestTimeout:      10 * time.Second,
		userAgent:           "search-engine-core/1.0",
		respectRobotsTxt:    true,
		followRedirects:     true,
		maxRedirects:        5,
		spaRenderingEnabled: false,
	}
	return &defaultConfig
}

func (c *Config) WithSeedUrls(urls []url.URL) *Config {
	c.seedURLs = urls
	return c
}

func (c *Config) WithAllowedHosts(hosts map[string]struct{}) *Config {
	c.allowedHosts = hosts
	return c
}

func (c *Config) WithAllowedPathPrefix(prefixes []string) *Config {
	c.allowedPathPrefix = prefixes
	return c
}

func (c *Config) WithRestrictToSeedDomain(restrict bool) *Config {
	c.restrictToSeedDomain = restrict
	return c
}

func (c *Config) WithMaxDepth(depth int) *Config {
	c.maxDepth = depth
	return c
}

func (c *Config) WithMaxPages(pages int) *Config {
	c.maxPages = pages
	return c
}

func (c *Config) WithMaxConcurrentConnections(n int) *Config {
	c.maxConcurrentConnections = n
	return c
}

func (c *Config) WithPolitenessDelay(delay time.Duration) *Config {
	c.politenessDelay = delay
	return c
}

func (c *Config) WithRateLimitDelay(delay time.Duration) *Config {
	c.rateLimitDelay = delay
	return c
}

func (c *Config) WithJitter(jitter time.Duration) *Config {
	c.jitter = jitter
	return c
}

func (c *Config) WithRandomSeed(seed int64) *Config {
	c.randomSeed = seed
	return c
}

func (c *Config) WithMaxRetries(n int) *Config {
	c.maxRetries = n
	return c
}

func (c *Config) WithBaseRetryDelay(delay time.Duration) *Config {
	c.baseRetryDelay = delay
	return c
}

func (c *Config) WithBackoffMultiplier(multiplier float64) *Config {
	c.backoffMultiplier = multiplier
	return c
}

func (c *Config) WithMaxRetryDelay(delay time.Duration) *Config {
	c.maxRetryDelay = delay
	return c
}

func (c *Config) WithRetryableHttpCodes(codes []int) *Config {
	c.retryableHttpCodes = toIntSet(codes)
	return c
}

func (c *Config) WithRetryableTransportCodes(codes []string) *Config {
	c.retryableTransportCodes = toStringSet(codes)
	return c
}

func (c *Config) WithFailureThreshold(n int) *Config {
	c.failureThreshold = n
	return c
}

func (c *Config) WithResetTime(d time.Duration) *Config {
	c.resetTime = d
	return c
}

func (c *Config) WithRequestTimeout(timeout time.Duration) *Config {
	c.requestTimeout = timeout
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithRespectRobotsTxt(respect bool) *Config {
	c.respectRobotsTxt = respect
	return c
}

func (c *Config) WithFollowRedirects(follow bool) *Config {
	c.followRedirects = follow
	return c
}

func (c *Config) WithMaxRedirects(n int) *Config {
	c.maxRedirects = n
	return c
}

func (c *Config) WithSpaRenderingEnabled(enabled bool) *Config {
	c.spaRenderingEnabled = enabled
	return c
}

func (c *Config) WithArticleSelectors(selectors []string) *Config {
	c.articleSelectors = selectors
	return c
}

func (c *Config) WithTitleSelectors(selectors []string) *Config {
	c.titleSelectors = selectors
	return c
}

func (c *Config) WithContentSelectors(selectors []string) *Config {
	c.contentSelectors = selectors
	return c
}

func (c *Config) Build() (Config, error) {
	if len(c.seedURLs) == 0 {
		return Config{}, fmt.Errorf("%w: seedUrls cannot be empty", ErrInvalidConfig)
	}

	if len(c.allowedHosts) == 0 {
		c.allowedHosts = make(map[string]struct{})
		for _, u := range c.seedURLs {
			if u.Host != "" {
				c.allowedHosts[u.Host] = struct{}{}
			}
		}
	}
	if c.retryableHttpCodes == nil {
		c.retryableHttpCodes = map[int]struct{}{}
	}
	if c.retryableTransportCodes == nil {
		c.retryableTransportCodes = map[string]struct{}{}
	}

	return *c, nil
}

func (c Config) SeedURLs() []url.URL {
	urls := make([]url.URL, len(c.seedURLs))
	copy(urls, c.seedURLs)
	return urls
}

func (c Config) AllowedHosts() map[string]struct{} {
	hosts := make(map[string]struct{})
	for k, v := range c.allowedHosts {
		hosts[k] = v
	}
	return hosts
}

func (c Config) AllowedPathPrefix() []string {
	prefixes := make([]string, len(c.allowedPathPrefix))
	copy(prefixes, c.allowedPathPrefix)
	return prefixes
}

func (c Config) RestrictToSeedDomain() bool { return c.restrictToSeedDomain }

func (c Config) MaxDepth() int { return c.maxDepth }
func (c Config) MaxPages() int { return c.maxPages }

func (c Config) MaxConcurrentConnections() int      { return c.maxConcurrentConnections }
func (c Config) PolitenessDelay() time.Duration     { return c.politenessDelay }
func (c Config) RateLimitDelay() time.Duration      { return c.rateLimitDelay }
func (c Config) Jitter() time.Duration              { return c.jitter }
func (c Config) RandomSeed() int64                  { return c.randomSeed }

func (c Config) MaxRetries() int                 { return c.maxRetries }
func (c Config) BaseRetryDelay() time.Duration   { return c.baseRetryDelay }
func (c Config) BackoffMultiplier() float64      { return c.backoffMultiplier }
func (c Config) MaxRetryDelay() time.Duration    { return c.maxRetryDelay }

func (c Config) IsRetryableHttpCode(code int) bool {
	_, ok := c.retryableHttpCodes[code]
	return ok
}

func (c Config) IsRetryableTransportCode(code string) bool {
	_, ok := c.retryableTransportCodes[code]
	return ok
}

func (c Config) FailureThreshold() int       { return c.failureThreshold }
func (c Config) ResetTime() time.Duration    { return c.resetTime }

func (c Config) RequestTimeout() time.Duration { return c.requestTimeout }
func (c Config) UserAgent() string             { return c.userAgent }
func (c Config) RespectRobotsTxt() bool        { return c.respectRobotsTxt }
func (c Config) FollowRedirects() bool         { return c.followRedirects }
func (c Config) MaxRedirects() int             { return c.maxRedirects }
func (c Config) SpaRenderingEnabled() bool     { return c.spaRenderingEnabled }

func (c Config) ArticleSelectors() []string {
	out := make([]string, len(c.articleSelectors))
	copy(out, c.articleSelectors)
	return out
}

func (c Config) TitleSelectors() []string {
	out := make([]string, len(c.titleSelectors))
	copy(out, c.titleSelectors)
	return out
}

func (c Config) ContentSelectors() []string {
	out := make([]string, len(c.contentSelectors))
	copy(out, c.contentSelectors)
	return out
}
