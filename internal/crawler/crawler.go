package crawler

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/rohmanhakim/search-engine-core/internal/classify"
	"github.com/rohmanhakim/search-engine-core/internal/extractor"
	"github.com/rohmanhakim/search-engine-core/internal/fetcher"
	"github.com/rohmanhakim/search-engine-core/internal/frontier"
	"github.com/rohmanhakim/search-engine-core/internal/sitemodel"
)

// Run drains the session's Frontier to completion (or until ctx is
// cancelled), fetching, extracting, and storing one page at a time. It
// is the per-session equivalent of the teacher's Scheduler.Run: a
// single admission choke point (admit) followed by a straight-line
// fetch -> extract -> store pipeline, looping until the frontier is
// dry.
func (c *Crawler) Run(ctx context.Context) error {
	c.fetcher.Init(&http.Client{Timeout: c.cfg.RequestTimeout()})

	c.mu.Lock()
	c.stats.StartedAt = time.Now()
	c.mu.Unlock()

	if len(c.cfg.SeedURLs()) == 0 {
		err := &CrawlerError{Message: "crawl config has no seed urls", Cause: ErrCauseNoSeedURLs}
		c.fail(err)
		return err
	}

	for _, seed := range c.cfg.SeedURLs() {
		c.admit(seed, frontier.SourceSeed, 0)
	}

	for {
		select {
		case <-ctx.Done():
			c.fail(ctx.Err())
			return ctx.Err()
		default:
		}

		token, ok := c.frontier.Dequeue()
		if !ok {
			break
		}
		c.processToken(ctx, token)
	}

	finishedAt := time.Now()
	c.mu.Lock()
	c.stats.FinishedAt = finishedAt
	c.status = StatusCompleted
	duration := finishedAt.Sub(c.stats.StartedAt)
	pagesCrawled, pagesFailed := c.stats.PagesCrawled, c.stats.PagesFailed
	c.mu.Unlock()

	c.sink.RecordFinalCrawlStats(pagesCrawled, pagesFailed, 0, duration)
	return nil
}

// admit applies the robots check and scope filter — the admission
// choke point — before a URL is allowed to enter the Frontier. Once
// Submit is called, the Frontier only re-checks depth/volume bounds.
func (c *Crawler) admit(u url.URL, source frontier.SourceContext, depth int) {
	if !c.allowed(u) {
		return
	}

	decision, robotsErr := c.robot.Decide(u)
	if robotsErr != nil {
		return
	}
	if !decision.Allowed {
		c.mu.Lock()
		c.stats.PagesSkipped++
		c.mu.Unlock()
		return
	}

	candidate := frontier.NewCrawlAdmissionCandidate(u, source, frontier.NewDiscoveryMetadata(depth, nil))
	c.frontier.Submit(candidate)
}

// processToken fetches one admitted URL, waiting on the shared Domain
// Manager for politeness/circuit-breaker clearance first, then routes
// the outcome to extraction+storage (success) or failure bookkeeping.
func (c *Crawler) processToken(ctx context.Context, token frontier.CrawlToken) {
	target := token.URL()
	domain := target.Host

	c.domainMgr.Touch(domain, c.cfg)
	for c.domainMgr.ShouldDelay(domain, c.cfg) {
		wait := c.domainMgr.GetDelay(domain)
		if wait <= 0 {
			wait = c.cfg.PolitenessDelay()
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}

	c.metrics.RecordRequest()
	c.metrics.RecordDomainRequest(domain)

	startedAt := time.Now()
	param := fetcher.NewFetchParam(target, c.cfg.UserAgent())
	result, fetchErr := c.fetcher.Fetch(ctx, token.Depth(), param, c.cfg)

	if fetchErr != nil {
		c.recordFailure(domain, target, token.Depth(), startedAt, fetchErr)
		return
	}

	c.domainMgr.RecordSuccess(domain)
	c.metrics.RecordSuccess()
	c.metrics.RecordDomainSuccess(domain)

	page, extractErr := extractor.ExtractPage(&c.extractor, target, result.Body())
	crawlResult := sitemodel.CrawlResult{
		URL:            target.String(),
		Domain:         domain,
		Depth:          token.Depth(),
		RawContent:     result.Body(),
		StartedAt:      startedAt,
		FinishedAt:     time.Now(),
		HTTPStatusCode: result.Code(),
		ContentType:    result.ContentType(),
		ContentSize:    int64(result.SizeByte()),
		Status:         sitemodel.StatusSuccess,
		Success:        extractErr == nil,
	}

	if extractErr != nil {
		crawlResult.Success = false
		crawlResult.Status = sitemodel.StatusInvalidContentType
		crawlResult.ErrorMessage = extractErr.Error()
	} else {
		crawlResult.Title = page.Title
		crawlResult.Description = page.Description
		crawlResult.TextContent = page.TextContent
		crawlResult.Links = page.OutboundLinks

		for _, link := range page.OutboundLinks {
			if u, err := url.Parse(link); err == nil {
				c.admit(*u, frontier.SourceCrawl, token.Depth()+1)
			}
		}
	}

	crawlResult.DurationMs = crawlResult.FinishedAt.Sub(startedAt).Milliseconds()

	if storeErr := c.store.StoreCrawlResult(ctx, crawlResult); storeErr != nil {
		c.metrics.RecordFailure()
	} else {
		c.mu.Lock()
		c.stats.PagesCrawled++
		c.mu.Unlock()
	}
}

func (c *Crawler) recordFailure(domain string, target url.URL, depth int, startedAt time.Time, fetchErr error) {
	failureType := classifyFailure(fetchErr, c.cfg)

	c.domainMgr.RecordFailure(domain, failureType, fetchErr.Error())
	if failureType == classify.RateLimited {
		c.domainMgr.RecordRateLimit(domain, retryAfterFor(fetchErr, c.cfg))
	}
	c.metrics.RecordFailure()
	c.metrics.RecordDomainFailure(domain)
	c.metrics.RecordFailureType(failureType)

	now := time.Now()
	crawlResult := sitemodel.CrawlResult{
		URL:          target.String(),
		Domain:       domain,
		Depth:        depth,
		StartedAt:    startedAt,
		FinishedAt:   now,
		DurationMs:   now.Sub(startedAt).Milliseconds(),
		Success:      false,
		Status:       sitemodel.StatusFailed,
		ErrorMessage: fetchErr.Error(),
		FailureType:  failureType.String(),
	}

	if err := c.store.StoreCrawlResult(context.Background(), crawlResult); err == nil {
		c.mu.Lock()
		c.stats.PagesFailed++
		c.mu.Unlock()
	}
}
