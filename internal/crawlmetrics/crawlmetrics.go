// Package crawlmetrics is an in-memory, thread-safe counter store for
// operator telemetry. Global counters are plain atomics; the per-domain
// map and the failure-type histogram each sit behind their own mutex,
// mirroring the source's split between lock-free globals and a
// coarse-locked map. Nothing here is consulted by any decision path —
// Domain Manager and Failure Classifier own the state that control flow
// actually reads.
package crawlmetrics

import (
	"sync"
	"sync/atomic"

	"github.com/rohmanhakim/search-engine-core/internal/classify"
)

type domainCounters struct {
	totalRequests           atomic.Int64
	successfulRequests      atomic.Int64
	failedRequests          atomic.Int64
	retriedRequests         atomic.Int64
	circuitBreakerTriggered atomic.Int64
	rateLimitedRequests     atomic.Int64
}

// DomainSnapshot is an immutable copy of one domain's counters.
type DomainSnapshot struct {
	TotalRequests           int64
	SuccessfulRequests      int64
	FailedRequests          int64
	RetriedRequests         int64
	CircuitBreakerTriggered int64
	RateLimitedRequests     int64
}

func (s DomainSnapshot) SuccessRate() float64 {
	if s.TotalRequests == 0 {
		return 0
	}
	return float64(s.SuccessfulRequests) / float64(s.TotalRequests)
}

// Metrics holds global and per-domain counters plus a failure-type
// histogram. The zero value is not usable; construct with New.
type Metrics struct {
	totalRequests           atomic.Int64
	successfulRequests      atomic.Int64
	failedRequests          atomic.Int64
	retriedRequests         atomic.Int64
	permanentFailures       atomic.Int64
	circuitBreakerTriggered atomic.Int64
	rateLimitedRequests     atomic.Int64

	domainMu sync.Mutex
	domains  map[string]*domainCounters

	failureTypeMu sync.Mutex
	failureTypes  map[classify.FailureType]int64
}

func New() *Metrics {
	return &Metrics{
		domains:      make(map[string]*domainCounters),
		failureTypes: make(map[classify.FailureType]int64),
	}
}

func (m *Metrics) RecordRequest()               { m.totalRequests.Add(1) }
func (m *Metrics) RecordSuccess()               { m.successfulRequests.Add(1) }
func (m *Metrics) RecordFailure()               { m.failedRequests.Add(1) }
func (m *Metrics) RecordRetry()                 { m.retriedRequests.Add(1) }
func (m *Metrics) RecordPermanentFailure()      { m.permanentFailures.Add(1) }
func (m *Metrics) RecordCircuitBreakerTriggered() { m.circuitBreakerTriggered.Add(1) }
func (m *Metrics) RecordRateLimit()             { m.rateLimitedRequests.Add(1) }

func (m *Metrics) domainCounter(domain string) *domainCounters {
	m.domainMu.Lock()
	defer m.domainMu.Unlock()
	d, ok := m.domains[domain]
	if !ok {
		d = &domainCounters{}
		m.domains[domain] = d
	}
	return d
}

func (m *Metrics) RecordDomainRequest(domain string)           { m.domainCounter(domain).totalRequests.Add(1) }
func (m *Metrics) RecordDomainSuccess(domain string)            { m.domainCounter(domain).successfulRequests.Add(1) }
func (m *Metrics) RecordDomainFailure(domain string)            { m.domainCounter(domain).failedRequests.Add(1) }
func (m *Metrics) RecordDomainRetry(domain string)              { m.domainCounter(domain).retriedRequests.Add(1) }
func (m *Metrics) RecordDomainCircuitBreaker(domain string)     { m.domainCounter(domain).circuitBreakerTriggered.Add(1) }
func (m *Metrics) RecordDomainRateLimit(domain string)          { m.domainCounter(domain).rateLimitedRequests.Add(1) }

func (m *Metrics) RecordFailureType(t classify.FailureType) {
	m.failureTypeMu.Lock()
	defer m.failureTypeMu.Unlock()
	m.failureTypes[t]++
}

func (m *Metrics) TotalRequests() int64           { return m.totalRequests.Load() }
func (m *Metrics) SuccessfulRequests() int64      { return m.successfulRequests.Load() }
func (m *Metrics) FailedRequests() int64          { return m.failedRequests.Load() }
func (m *Metrics) RetriedRequests() int64         { return m.retriedRequests.Load() }
func (m *Metrics) PermanentFailures() int64       { return m.permanentFailures.Load() }
func (m *Metrics) CircuitBreakerTriggered() int64 { return m.circuitBreakerTriggered.Load() }
func (m *Metrics) RateLimitedRequests() int64     { return m.rateLimitedRequests.Load() }

func (m *Metrics) SuccessRate() float64 {
	total := m.totalRequests.Load()
	if total == 0 {
		return 0
	}
	return float64(m.successfulRequests.Load()) / float64(total)
}

// DomainMetrics returns an immutable snapshot for domain, or the zero
// value if nothing has been recorded for it.
func (m *Metrics) DomainMetrics(domain string) DomainSnapshot {
	m.domainMu.Lock()
	defer m.domainMu.Unlock()
	d, ok := m.domains[domain]
	if !ok {
		return DomainSnapshot{}
	}
	return snapshotOf(d)
}

func (m *Metrics) AllDomainMetrics() map[string]DomainSnapshot {
	m.domainMu.Lock()
	defer m.domainMu.Unlock()
	out := make(map[string]DomainSnapshot, len(m.domains))
	for domain, d := range m.domains {
		out[domain] = snapshotOf(d)
	}
	return out
}

func snapshotOf(d *domainCounters) DomainSnapshot {
	return DomainSnapshot{
		TotalRequests:           d.totalRequests.Load(),
		SuccessfulRequests:      d.successfulRequests.Load(),
		FailedRequests:          d.failedRequests.Load(),
		RetriedRequests:         d.retriedRequests.Load(),
		CircuitBreakerTriggered: d.circuitBreakerTriggered.Load(),
		RateLimitedRequests:     d.rateLimitedRequests.Load(),
	}
}

func (m *Metrics) FailureTypeCounts() map[classify.FailureType]int64 {
	m.failureTypeMu.Lock()
	defer m.failureTypeMu.Unlock()
	out := make(map[classify.FailureType]int64, len(m.failureTypes))
	for k, v := range m.failureTypes {
		out[k] = v
	}
	return out
}

func (m *Metrics) Reset() {
	m.totalRequests.Store(0)
	m.successfulRequests.Store(0)
	m.failedRequests.Store(0)
	m.retriedRequests.Store(0)
	m.permanentFailures.Store(0)
	m.circuitBreakerTriggered.Store(0)
	m.rateLimitedRequests.Store(0)

	m.domainMu.Lock()
	m.domains = make(map[string]*domainCounters)
	m.domainMu.Unlock()

	m.failureTypeMu.Lock()
	m.failureTypes = make(map[classify.FailureType]int64)
	m.failureTypeMu.Unlock()
}
