// Package sitemodel holds the data shapes shared by the crawler, the
// content storage layer, and the query/scoring pipeline: the canonical
// SiteProfile record and the transient CrawlResult one fetch attempt
// produces, plus the two append-only log shapes the document store
// adapter also persists.
package sitemodel

import "time"

// CrawlStatus is the closed set of outcomes a crawl attempt can leave a
// SiteProfile in.
type CrawlStatus string

const (
	StatusSuccess            CrawlStatus = "success"
	StatusFailed             CrawlStatus = "failed"
	StatusPending            CrawlStatus = "pending"
	StatusTimeout            CrawlStatus = "timeout"
	StatusRobotBlocked       CrawlStatus = "robot_blocked"
	StatusRedirectLoop       CrawlStatus = "redirect_loop"
	StatusContentTooLarge    CrawlStatus = "content_too_large"
	StatusInvalidContentType CrawlStatus = "invalid_content_type"
)

// CrawlMetadata is the crawl-history block of a SiteProfile.
type CrawlMetadata struct {
	LastCrawlTime      time.Time
	FirstCrawlTime     time.Time
	LastCrawlStatus    CrawlStatus
	LastErrorMessage   string
	CrawlCount         int
	CrawlIntervalHours int
	UserAgent          string
	HTTPStatusCode     int
	ContentSize        int64
	ContentType        string
	CrawlDurationMs    int64
}

// SiteProfile is the canonical per-URL record the document store and
// full-text index are kept consistent over.
//
// Invariants (enforced by the content storage write path, not by this
// struct): FirstCrawlTime <= LastCrawlTime; CrawlCount >= 1 once stored;
// IsIndexed <=> (LastCrawlStatus == StatusSuccess && text was available).
type SiteProfile struct {
	ID     int64
	URL    string
	Domain string

	Title       string
	Description string
	Keywords    []string
	Language    string
	Category    string

	Crawl CrawlMetadata

	PageRank        float64
	ContentQuality  float64
	WordCount       int
	IsMobile        bool
	HasSSL          bool

	OutboundLinks    []string
	InboundLinkCount int

	IsIndexed    bool
	LastModified time.Time
	IndexedAt    time.Time

	Author      string
	Publisher   string
	PublishDate time.Time
}

// CrawlResult is the transient outcome of one fetch attempt. It is never
// persisted directly; Content Storage converts it into a SiteProfile.
type CrawlResult struct {
	URL         string
	Domain      string
	Depth       int
	RawContent  []byte
	TextContent string

	Title       string
	Description string
	Links       []string

	StartedAt  time.Time
	FinishedAt time.Time
	DurationMs int64

	Success        bool
	HTTPStatusCode int
	ContentType    string
	ContentSize    int64

	TransportCode string
	ErrorMessage  string
	FailureType   string // mirrors classify.FailureType.String(); kept as string to avoid an import cycle

	RetryCount      int
	IsRetryAttempt  bool
	TotalRetryTime  time.Duration
	Status          CrawlStatus
}

// CrawlLog is an append-only record of one crawl attempt, independent of
// the attempt's outcome — kept for audit/debugging even when the
// SiteProfile itself is overwritten by a later crawl.
type CrawlLog struct {
	ID         int64
	SessionID  string
	URL        string
	Domain     string
	Status     CrawlStatus
	HTTPStatus int
	DurationMs int64
	Message    string
	CreatedAt  time.Time
}

// ApiRequestLog is an append-only record of one inbound search request,
// used for operator telemetry (not on the read path of any search).
type ApiRequestLog struct {
	ID         int64
	Path       string
	Query      string
	StatusCode int
	DurationMs int64
	RemoteAddr string
	CreatedAt  time.Time
}
