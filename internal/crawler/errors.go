package crawler

import (
	"fmt"

	"github.com/rohmanhakim/search-engine-core/pkg/failure"
)

type CrawlerErrorCause string

const (
	ErrCauseNoSeedURLs    CrawlerErrorCause = "no seed urls"
	ErrCauseAlreadyRunning CrawlerErrorCause = "already running"
	ErrCauseSessionNotFound CrawlerErrorCause = "session not found"
)

// CrawlerError reports a fatal condition in starting or supervising a
// crawl session; it is never retryable, unlike the pipeline-stage
// errors it wraps.
type CrawlerError struct {
	Message string
	Cause   CrawlerErrorCause
}

func (e *CrawlerError) Error() string {
	return fmt.Sprintf("crawler error: %s: %s", e.Cause, e.Message)
}

func (e *CrawlerError) Severity() failure.Severity {
	return failure.SeverityFatal
}
