package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/google/uuid"
	"github.com/rohmanhakim/search-engine-core/internal/metadata"
)

const (
	keyQueuePending    = "job_queue:pending"
	keyQueueProcessing = "job_queue:processing"
	keyQueueCompleted  = "job_queue:completed"
	keyQueueFailed     = "job_queue:failed"
	keyJobDataPrefix   = "job_data:"
	keyStats           = "job_queue:stats"
)

// Queue owns a redigo connection pool against the jobs Redis instance.
// Every operation below is a direct translation of the original's
// JobQueue methods onto redigo's Do()/Send()/Flush()/Receive() pipeline
// interface.
type Queue struct {
	pool *redis.Pool
	sink metadata.MetadataSink
}

func New(sink metadata.MetadataSink, addr string) *Queue {
	return &Queue{
		sink: sink,
		pool: &redis.Pool{
			MaxIdle:     8,
			IdleTimeout: 240 * time.Second,
			Dial: func() (redis.Conn, error) {
				return redis.Dial("tcp", addr)
			},
		},
	}
}

func jobDataKey(jobID string) string {
	return keyJobDataPrefix + jobID
}

// AddJob stores the job payload and pushes it onto the pending list.
func (q *Queue) AddJob(jobType JobType, data interface{}, maxAttempts int) (string, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return "", &QueueError{Message: "marshal job payload", Cause: ErrCauseEnqueueFailed, Err: err}
	}

	now := time.Now()
	job := Job{
		ID:          uuid.NewString(),
		Type:        jobType,
		Status:      StatusPending,
		Data:        payload,
		Attempts:    0,
		MaxAttempts: maxAttempts,
		CreatedAt:   now,
		ScheduledAt: now,
	}

	jobJSON, err := json.Marshal(job)
	if err != nil {
		return "", &QueueError{Message: "marshal job envelope", Cause: ErrCauseEnqueueFailed, Err: err}
	}

	conn := q.pool.Get()
	defer conn.Close()

	if _, err := conn.Do("SET", jobDataKey(job.ID), jobJSON); err != nil {
		return "", &QueueError{Message: job.ID, Cause: ErrCauseEnqueueFailed, Err: err}
	}
	if _, err := conn.Do("LPUSH", keyQueuePending, job.ID); err != nil {
		return "", &QueueError{Message: job.ID, Cause: ErrCauseEnqueueFailed, Err: err}
	}
	if _, err := conn.Do("HINCRBY", keyStats, "pending", 1); err != nil {
		return "", &QueueError{Message: job.ID, Cause: ErrCauseEnqueueFailed, Err: err}
	}
	if _, err := conn.Do("HINCRBY", keyStats, "total", 1); err != nil {
		return "", &QueueError{Message: job.ID, Cause: ErrCauseEnqueueFailed, Err: err}
	}

	return job.ID, nil
}

func (q *Queue) AddDomainCrawlJob(job DomainJob) (string, error) {
	return q.AddJob(JobTypeCrawlDomain, job, 3)
}

func (q *Queue) AddEmailJob(job EmailJob) (string, error) {
	return q.AddJob(JobTypeSendEmail, job, 3)
}

// AddBulkDomainCrawlJobs pushes every job in one pipelined round trip,
// mirroring the original's sw::redis::Redis pipeline usage.
func (q *Queue) AddBulkDomainCrawlJobs(jobs []DomainJob) ([]string, error) {
	conn := q.pool.Get()
	defer conn.Close()

	ids := make([]string, 0, len(jobs))
	now := time.Now()

	for _, dj := range jobs {
		payload, err := json.Marshal(dj)
		if err != nil {
			return nil, &QueueError{Message: "marshal bulk job payload", Cause: ErrCauseEnqueueFailed, Err: err}
		}

		job := Job{
			ID:          uuid.NewString(),
			Type:        JobTypeCrawlDomain,
			Status:      StatusPending,
			Data:        payload,
			MaxAttempts: 3,
			CreatedAt:   now,
			ScheduledAt: now,
		}
		jobJSON, err := json.Marshal(job)
		if err != nil {
			return nil, &QueueError{Message: "marshal bulk job envelope", Cause: ErrCauseEnqueueFailed, Err: err}
		}

		if err := conn.Send("SET", jobDataKey(job.ID), jobJSON); err != nil {
			return nil, &QueueError{Message: "pipeline SET", Cause: ErrCauseEnqueueFailed, Err: err}
		}
		if err := conn.Send("LPUSH", keyQueuePending, job.ID); err != nil {
			return nil, &QueueError{Message: "pipeline LPUSH", Cause: ErrCauseEnqueueFailed, Err: err}
		}
		ids = append(ids, job.ID)
	}

	if err := conn.Flush(); err != nil {
		return nil, &QueueError{Message: "pipeline flush", Cause: ErrCauseEnqueueFailed, Err: err}
	}
	for range jobs {
		if _, err := conn.Receive(); err != nil {
			return nil, &QueueError{Message: "pipeline receive SET", Cause: ErrCauseEnqueueFailed, Err: err}
		}
		if _, err := conn.Receive(); err != nil {
			return nil, &QueueError{Message: "pipeline receive LPUSH", Cause: ErrCauseEnqueueFailed, Err: err}
		}
	}

	if len(jobs) > 0 {
		if _, err := conn.Do("HINCRBY", keyStats, "pending", len(jobs)); err != nil {
			return nil, &QueueError{Message: "update stats", Cause: ErrCauseEnqueueFailed, Err: err}
		}
		if _, err := conn.Do("HINCRBY", keyStats, "total", len(jobs)); err != nil {
			return nil, &QueueError{Message: "update stats", Cause: ErrCauseEnqueueFailed, Err: err}
		}
	}

	return ids, nil
}

// GetJob fetches a job's current envelope by id.
func (q *Queue) GetJob(jobID string) (Job, error) {
	conn := q.pool.Get()
	defer conn.Close()

	raw, err := redis.Bytes(conn.Do("GET", jobDataKey(jobID)))
	if err != nil {
		if err == redis.ErrNil {
			return Job{}, &QueueError{Message: jobID, Cause: ErrCauseJobNotFound}
		}
		return Job{}, &QueueError{Message: jobID, Cause: ErrCauseDequeueFailed, Err: err}
	}

	var job Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return Job{}, &QueueError{Message: jobID, Cause: ErrCauseDequeueFailed, Err: err}
	}
	return job, nil
}

// Stats reads the job_queue:stats hash.
func (q *Queue) Stats() (Stats, error) {
	conn := q.pool.Get()
	defer conn.Close()

	values, err := redis.Ints(conn.Do("HMGET", keyStats, "pending", "processing", "completed", "failed", "total"))
	if err != nil {
		return Stats{}, &QueueError{Message: "read stats", Cause: ErrCauseDequeueFailed, Err: err}
	}
	if len(values) < 5 {
		return Stats{}, nil
	}
	return Stats{
		Pending:    values[0],
		Processing: values[1],
		Completed:  values[2],
		Failed:     values[3],
		Total:      values[4],
	}, nil
}

// Dequeue atomically moves one job id from pending to processing via
// BRPOPLPUSH (blocking up to waitSeconds), bumps its attempt count, and
// returns the job. A nil job with a nil error means the wait timed out
// with nothing available.
func (q *Queue) Dequeue(waitSeconds int) (*Job, error) {
	conn := q.pool.Get()
	defer conn.Close()

	jobID, err := redis.String(conn.Do("BRPOPLPUSH", keyQueuePending, keyQueueProcessing, waitSeconds))
	if err != nil {
		if err == redis.ErrNil {
			return nil, nil
		}
		return nil, &QueueError{Message: "brpoplpush", Cause: ErrCauseDequeueFailed, Err: err}
	}

	job, err := q.GetJob(jobID)
	if err != nil {
		return nil, err
	}

	job.Status = StatusProcessing
	job.Attempts++
	if err := q.save(conn, job); err != nil {
		return nil, err
	}
	if _, err := conn.Do("HINCRBY", keyStats, "pending", -1); err != nil {
		return nil, &QueueError{Message: job.ID, Cause: ErrCauseDequeueFailed, Err: err}
	}
	if _, err := conn.Do("HINCRBY", keyStats, "processing", 1); err != nil {
		return nil, &QueueError{Message: job.ID, Cause: ErrCauseDequeueFailed, Err: err}
	}

	return &job, nil
}

func (q *Queue) save(conn redis.Conn, job Job) error {
	jobJSON, err := json.Marshal(job)
	if err != nil {
		return &QueueError{Message: job.ID, Cause: ErrCauseEnqueueFailed, Err: err}
	}
	if _, err := conn.Do("SET", jobDataKey(job.ID), jobJSON); err != nil {
		return &QueueError{Message: job.ID, Cause: ErrCauseEnqueueFailed, Err: err}
	}
	return nil
}

// MarkCompleted moves job from processing to completed.
func (q *Queue) MarkCompleted(job Job) error {
	conn := q.pool.Get()
	defer conn.Close()

	job.Status = StatusCompleted
	job.CompletedAt = time.Now()
	if err := q.save(conn, job); err != nil {
		return err
	}
	if _, err := conn.Do("LREM", keyQueueProcessing, 1, job.ID); err != nil {
		return &QueueError{Message: job.ID, Cause: ErrCauseDequeueFailed, Err: err}
	}
	if _, err := conn.Do("LPUSH", keyQueueCompleted, job.ID); err != nil {
		return &QueueError{Message: job.ID, Cause: ErrCauseDequeueFailed, Err: err}
	}
	if _, err := conn.Do("HINCRBY", keyStats, "processing", -1); err != nil {
		return &QueueError{Message: job.ID, Cause: ErrCauseDequeueFailed, Err: err}
	}
	if _, err := conn.Do("HINCRBY", keyStats, "completed", 1); err != nil {
		return &QueueError{Message: job.ID, Cause: ErrCauseDequeueFailed, Err: err}
	}
	return nil
}

// MarkFailed moves job from processing to failed, recording errMsg.
func (q *Queue) MarkFailed(job Job, errMsg string) error {
	conn := q.pool.Get()
	defer conn.Close()

	job.Status = StatusFailed
	job.ErrorMessage = errMsg
	job.CompletedAt = time.Now()
	if err := q.save(conn, job); err != nil {
		return err
	}
	if _, err := conn.Do("LREM", keyQueueProcessing, 1, job.ID); err != nil {
		return &QueueError{Message: job.ID, Cause: ErrCauseDequeueFailed, Err: err}
	}
	if _, err := conn.Do("LPUSH", keyQueueFailed, job.ID); err != nil {
		return &QueueError{Message: job.ID, Cause: ErrCauseDequeueFailed, Err: err}
	}
	if _, err := conn.Do("HINCRBY", keyStats, "processing", -1); err != nil {
		return &QueueError{Message: job.ID, Cause: ErrCauseDequeueFailed, Err: err}
	}
	if _, err := conn.Do("HINCRBY", keyStats, "failed", 1); err != nil {
		return &QueueError{Message: job.ID, Cause: ErrCauseDequeueFailed, Err: err}
	}
	if q.sink != nil {
		q.sink.RecordError(time.Now(), "queue", fmt.Sprintf("job:%s", job.Type), metadata.CauseRetryFailure, errMsg, nil)
	}
	return nil
}

// Requeue moves job back from processing to pending, mirroring the
// original's five-minute retry delay.
func (q *Queue) Requeue(job Job) error {
	conn := q.pool.Get()
	defer conn.Close()

	job.Status = StatusPending
	job.ScheduledAt = time.Now().Add(5 * time.Minute)
	if err := q.save(conn, job); err != nil {
		return err
	}
	if _, err := conn.Do("LREM", keyQueueProcessing, 1, job.ID); err != nil {
		return &QueueError{Message: job.ID, Cause: ErrCauseDequeueFailed, Err: err}
	}
	if _, err := conn.Do("LPUSH", keyQueuePending, job.ID); err != nil {
		return &QueueError{Message: job.ID, Cause: ErrCauseDequeueFailed, Err: err}
	}
	if _, err := conn.Do("HINCRBY", keyStats, "processing", -1); err != nil {
		return &QueueError{Message: job.ID, Cause: ErrCauseDequeueFailed, Err: err}
	}
	if _, err := conn.Do("HINCRBY", keyStats, "pending", 1); err != nil {
		return &QueueError{Message: job.ID, Cause: ErrCauseDequeueFailed, Err: err}
	}
	return nil
}
