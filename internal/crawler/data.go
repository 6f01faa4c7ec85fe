package crawler

import (
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rohmanhakim/search-engine-core/internal/classify"
	"github.com/rohmanhakim/search-engine-core/internal/config"
	"github.com/rohmanhakim/search-engine-core/internal/crawlmetrics"
	"github.com/rohmanhakim/search-engine-core/internal/domainmgr"
	"github.com/rohmanhakim/search-engine-core/internal/extractor"
	"github.com/rohmanhakim/search-engine-core/internal/fetcher"
	"github.com/rohmanhakim/search-engine-core/internal/frontier"
	"github.com/rohmanhakim/search-engine-core/internal/metadata"
	"github.com/rohmanhakim/search-engine-core/internal/robots"
	"github.com/rohmanhakim/search-engine-core/internal/storage"
	"github.com/rohmanhakim/search-engine-core/pkg/retry"
)

// Status is the closed set of terminal/non-terminal states a crawl
// session can be in, per the getCrawlStatus contract.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Stats is the crawl-summary snapshot exposed once a session finishes,
// and readable (partially populated) while it runs.
type Stats struct {
	PagesCrawled  int
	PagesFailed   int
	PagesSkipped  int
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Crawler (C8) runs a single crawl session: it owns a Frontier, checks
// Robots Policy and the shared Domain Manager before every fetch, and
// hands every fetched page to the Content Parser and then Content
// Storage. It mirrors the teacher's Scheduler: one admission choke
// point (admit) gates everything the frontier will ever see.
type Crawler struct {
	sessionID string
	cfg       config.Config

	frontier  *frontier.CrawlFrontier
	robot     robots.CachedRobot
	fetcher   fetcher.Fetcher
	extractor extractor.DomExtractor
	domainMgr *domainmgr.Manager
	store     *storage.ContentStorage
	sink      metadata.MetadataSink
	metrics   *crawlmetrics.Metrics

	mu     sync.Mutex
	status Status
	stats  Stats
	err    error
}

// NewCrawler builds a Crawler for one session. fetcherImpl and
// domainMgr are supplied by the caller so a CrawlerManager can share a
// single DomainManager (politeness/circuit-breaker state) across every
// concurrent session. Each Run installs its own http.Client on the
// fetcher.
func NewCrawler(
	sessionID string,
	cfg config.Config,
	fetcherImpl fetcher.Fetcher,
	domainMgr *domainmgr.Manager,
	store *storage.ContentStorage,
	sink metadata.MetadataSink,
) *Crawler {
	f := frontier.NewCrawlFrontier()
	f.Init(cfg)

	robot := robots.NewCachedRobot(sink)
	robot.Init(cfg.UserAgent())

	ext := extractor.NewDomExtractor(sink)

	return &Crawler{
		sessionID: sessionID,
		cfg:       cfg,
		frontier:  f,
		robot:     robot,
		fetcher:   fetcherImpl,
		extractor: ext,
		domainMgr: domainMgr,
		store:     store,
		sink:      sink,
		metrics:   crawlmetrics.New(),
		status:    StatusRunning,
	}
}

func (c *Crawler) SessionID() string { return c.sessionID }

func (c *Crawler) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Crawler) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *Crawler) Metrics() *crawlmetrics.Metrics { return c.metrics }

func (c *Crawler) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Crawler) setStatus(s Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = s
}

func (c *Crawler) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = StatusFailed
	c.err = err
}

// allowed reports whether u is in scope for this session: its host is
// allowlisted and its path matches one of the configured prefixes.
func (c *Crawler) allowed(u url.URL) bool {
	if _, ok := c.cfg.AllowedHosts()[u.Host]; !ok {
		return false
	}
	if len(c.cfg.AllowedPathPrefix()) == 0 {
		return true
	}
	for _, prefix := range c.cfg.AllowedPathPrefix() {
		if strings.HasPrefix(u.Path, prefix) {
			return true
		}
	}
	return false
}

// classifyFailure derives a classify.FailureType for domain-manager
// bookkeeping from a pipeline error, via the same classify.Classify the
// fetcher's own retry loop uses: a FetchError carries the raw HTTP
// status, transport code, and message that produced it, so this is a
// re-classification under cfg rather than a second, divergent verdict.
func classifyFailure(err error, cfg config.Config) classify.FailureType {
	var fetchErr *fetcher.FetchError
	if errors.As(err, &fetchErr) {
		return classify.Classify(fetchErr.HTTPStatusCode, fetchErr.TransportCode, fetchErr.Message, cfg)
	}

	// A *retry.RetryError only ever wraps an exhausted sequence of
	// retryable attempts (fetchWithRetry returns a permanent FetchError
	// directly instead of wrapping it), so it was Temporary or
	// RateLimited throughout; Temporary is the representative label for
	// domain-manager bookkeeping purposes.
	var retryErr *retry.RetryError
	if errors.As(err, &retryErr) {
		return classify.Temporary
	}

	return classify.Unknown
}

// retryAfterFor extracts the Retry-After window the fetcher captured
// from a 429 response, if any, falling back to the session's configured
// rate-limit delay so DomainManager.RecordRateLimit always has a
// sensible window to open.
func retryAfterFor(err error, cfg config.Config) time.Duration {
	var fetchErr *fetcher.FetchError
	if errors.As(err, &fetchErr) && fetchErr.RetryAfter > 0 {
		return fetchErr.RetryAfter
	}
	return cfg.RateLimitDelay()
}
