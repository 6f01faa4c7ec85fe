package metadata

/*
Metadata Collected
- Fetch timestamps
- HTTP status codes
- Content hashes
- Crawl depth

Logging Goals
- Debuggable crawl behavior
- Post-run auditability
- Failure diagnostics

Structured logging is preferred.

Allowed:
- Primitive values
- Timestamps
- URLs (as values, not objects with behavior)
- Hashes
- Status codes
- Durations
- Identifiers (page ID, crawl ID)
*/

import (
	"time"

	"github.com/rs/zerolog"
)

// Recorder is the default MetadataSink: every event becomes one
// structured zerolog line. It holds no crawl-affecting state — every
// method here is a leaf, never a source other packages read back from.
type Recorder struct {
	logger zerolog.Logger
}

func NewRecorder(logger zerolog.Logger) *Recorder {
	return &Recorder{logger: logger.With().Str("component", "metadata").Logger()}
}

func (r *Recorder) RecordFetch(
	fetchURL string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	retryCount int,
	crawlDepth int,
) {
	event := FetchEvent{
		fetchUrl:    fetchURL,
		httpStatus:  httpStatus,
		duration:    duration,
		contentType: contentType,
		retryCount:  retryCount,
		crawlDepth:  crawlDepth,
	}
	r.logger.Info().
		Str("url", event.fetchUrl).
		Int("http_status", event.httpStatus).
		Dur("duration", event.duration).
		Str("content_type", event.contentType).
		Int("retry_count", event.retryCount).
		Int("crawl_depth", event.crawlDepth).
		Msg("fetch")
}

func (r *Recorder) RecordAssetFetch(
	fetchURL string,
	httpStatus int,
	duration time.Duration,
	retryCount int,
) {
	r.logger.Info().
		Str("asset_url", fetchURL).
		Int("http_status", httpStatus).
		Dur("duration", duration).
		Int("retry_count", retryCount).
		Msg("asset_fetch")
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
	record := ErrorRecord{
		packageName: packageName,
		action:      action,
		cause:       cause,
		errorString: errorString,
		observedAt:  observedAt,
		attrs:       attrs,
	}
	ev := r.logger.Warn().
		Time("observed_at", record.observedAt).
		Str("package", record.packageName).
		Str("action", record.action).
		Int("cause", int(record.cause)).
		Str("error", record.errorString)
	for _, a := range record.attrs {
		ev = ev.Str(string(a.Key), a.Value)
	}
	ev.Msg("error")
}

func (r *Recorder) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {
	record := ArtifactRecord{paths: path}
	ev := r.logger.Debug().
		Str("kind", string(kind)).
		Str("path", record.paths)
	for _, a := range attrs {
		ev = ev.Str(string(a.Key), a.Value)
	}
	ev.Msg("artifact")
}

// RecordFinalCrawlStats is called exactly once, after a crawl session
// terminates, with the totals the Crawler derived.
func (r *Recorder) RecordFinalCrawlStats(totalPages int, totalErrors int, totalAssets int, duration time.Duration) {
	stats := crawlStats{
		totalPages:  totalPages,
		totalErrors: totalErrors,
		totalAssets: totalAssets,
		durationMs:  duration.Milliseconds(),
	}
	r.logger.Info().
		Int("total_pages", stats.totalPages).
		Int("total_errors", stats.totalErrors).
		Int("total_assets", stats.totalAssets).
		Int64("duration_ms", stats.durationMs).
		Msg("crawl_finished")
}
