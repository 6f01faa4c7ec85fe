package metadata

import "time"

// NoopSink is a MetadataSink that discards every event. It is embedded
// by test doubles that only want to override a handful of methods, and
// used directly by callers (templates loading, one-off tooling) that
// have no logging destination configured.
type NoopSink struct{}

func (NoopSink) RecordFetch(fetchURL string, httpStatus int, duration time.Duration, contentType string, retryCount int, crawlDepth int) {
}

func (NoopSink) RecordAssetFetch(fetchURL string, httpStatus int, duration time.Duration, retryCount int) {
}

func (NoopSink) RecordError(observedAt time.Time, packageName string, action string, cause ErrorCause, errorString string, attrs []Attribute) {
}

func (NoopSink) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {}

func (NoopSink) RecordFinalCrawlStats(totalPages int, totalErrors int, totalAssets int, duration time.Duration) {
}
