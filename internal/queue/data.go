// Package queue is the Job Queue (C15): a Redis-backed at-least-once
// work queue for background crawl and notification jobs. Grounded on
// original_source/include/job_queue/JobQueue.h and .cpp — the pending/
// processing/completed/failed list layout and the stats hash are
// reproduced directly against github.com/gomodule/redigo/redis, and the
// original's worker-thread pool becomes a goroutine pool in the
// teacher's style.
package queue

import (
	"encoding/json"
	"time"
)

// JobType mirrors the original's JobType enum.
type JobType int

const (
	JobTypeCrawlDomain JobType = 1
	JobTypeSendEmail   JobType = 2
	JobTypeBulkCrawl   JobType = 3
)

func (t JobType) String() string {
	switch t {
	case JobTypeCrawlDomain:
		return "crawl_domain"
	case JobTypeSendEmail:
		return "send_email"
	case JobTypeBulkCrawl:
		return "bulk_crawl"
	default:
		return "unknown"
	}
}

// Status mirrors the original's JobStatus enum.
type Status int

const (
	StatusPending Status = iota
	StatusProcessing
	StatusCompleted
	StatusFailed
	StatusRetrying
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusProcessing:
		return "processing"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusRetrying:
		return "retrying"
	default:
		return "unknown"
	}
}

// Job is one unit of queued work. Data carries the type-specific payload
// (DomainJob or EmailJob) as already-marshaled JSON, the same way the
// original stores an nlohmann::json blob alongside the envelope.
type Job struct {
	ID            string          `json:"id"`
	Type          JobType         `json:"type"`
	Status        Status          `json:"status"`
	Data          json.RawMessage `json:"data"`
	Attempts      int             `json:"attempts"`
	MaxAttempts   int             `json:"maxAttempts"`
	CreatedAt     time.Time       `json:"createdAt"`
	ScheduledAt   time.Time       `json:"scheduledAt"`
	CompletedAt   time.Time       `json:"completedAt"`
	ErrorMessage  string          `json:"errorMessage"`
}

// DomainJob is the payload for JobTypeCrawlDomain.
type DomainJob struct {
	Domain         string    `json:"domain"`
	WebmasterEmail string    `json:"webmasterEmail"`
	MaxPages       int       `json:"maxPages"`
	SessionID      string    `json:"sessionId"`
	CreatedAt      time.Time `json:"createdAt"`
}

// EmailJob is the payload for JobTypeSendEmail.
type EmailJob struct {
	To           string `json:"to"`
	Subject      string `json:"subject"`
	TemplateName string `json:"templateName"`
	Domain       string `json:"domain"`
}

// BulkCrawlJob is the payload for JobTypeBulkCrawl: a batch of domains
// that should each become their own CrawlDomain job, fanned out in one
// pipelined enqueue via Queue.AddBulkDomainCrawlJobs.
type BulkCrawlJob struct {
	Domains        []string `json:"domains"`
	MaxPages       int      `json:"maxPages"`
	WebmasterEmail string   `json:"webmasterEmail"`
}

// Stats fuses the five counters the original kept in job_queue:stats.
type Stats struct {
	Pending    int
	Processing int
	Completed  int
	Failed     int
	Total      int
}
