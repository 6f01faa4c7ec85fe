// Package domainmgr tracks per-domain crawl health: a three-state circuit
// breaker, a dynamic politeness delay that rises on failure and decays on
// success, and a rate-limit window honoring Retry-After. One Manager is
// shared by every Crawler in a process, guarded by a single coarse mutex —
// the same shape the teacher's ConcurrentRateLimiter uses for its
// per-host timing map, since the critical section here is equally short
// and call rate is bounded by politeness.
package domainmgr

import (
	"sync"
	"time"

	"github.com/rohmanhakim/search-engine-core/internal/classify"
	"github.com/rohmanhakim/search-engine-core/internal/config"
)

type CircuitState int

const (
	Closed CircuitState = iota
	Open
	HalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// DomainState is a snapshot of one domain's crawl health. Readers get a
// copy; the live state lives only inside Manager.
type DomainState struct {
	CircuitState          CircuitState
	ConsecutiveFailures   int
	TotalRequests         int
	SuccessfulRequests    int
	LastRequest           time.Time
	LastSuccessfulRequest time.Time
	CircuitOpenedAt       time.Time
	DynamicCrawlDelay     time.Duration
	IsRateLimited         bool
	RateLimitResetTime    time.Time
	LastError             string
	LastFailureType       classify.FailureType
}

type domainParams struct {
	politenessDelay  time.Duration
	rateLimitDelay   time.Duration
	failureThreshold int
	resetTime        time.Duration
}

// Manager owns per-domain crawl state behind a single mutex. Politeness
// parameters are supplied per call so one Manager can serve sessions with
// different CrawlConfigs for the same domain; the first caller to touch a
// domain establishes its politeness baseline.
type Manager struct {
	mu     sync.Mutex
	states map[string]*domainState
}

type domainState struct {
	DomainState
	params domainParams
}

func NewManager() *Manager {
	return &Manager{states: make(map[string]*domainState)}
}

func paramsFromConfig(cfg config.Config) domainParams {
	return domainParams{
		politenessDelay:  cfg.PolitenessDelay(),
		rateLimitDelay:   cfg.RateLimitDelay(),
		failureThreshold: cfg.FailureThreshold(),
		resetTime:        cfg.ResetTime(),
	}
}

// Touch ensures domain has been registered with cfg's politeness
// parameters, without performing the delay check ShouldDelay does. Callers
// that need RecordSuccess/RecordFailure before any ShouldDelay call (e.g.
// a forced first fetch) should call this first.
func (m *Manager) Touch(domain string, cfg config.Config) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stateLocked(domain, paramsFromConfig(cfg))
}

func (m *Manager) stateLocked(domain string, params domainParams) *domainState {
	s, ok := m.states[domain]
	if !ok {
		s = &domainState{
			DomainState: DomainState{
				CircuitState:      Closed,
				DynamicCrawlDelay: params.politenessDelay,
			},
			params: params,
		}
		m.states[domain] = s
	}
	return s
}

// advanceBreakerLocked applies the Open->HalfOpen transition if resetTime
// has elapsed. Closed->Open and HalfOpen->{Closed,Open} happen inside
// recordSuccess/recordFailure, where the triggering event is known.
func advanceBreakerLocked(s *domainState, now time.Time) {
	if s.CircuitState == Open && !s.CircuitOpenedAt.IsZero() && now.Sub(s.CircuitOpenedAt) >= s.params.resetTime {
		s.CircuitState = HalfOpen
	}
}

// ShouldDelay reports whether a fetch to domain must wait right now:
// breaker open, inside a rate-limit window, or inside the politeness gap
// since the last request. The domain's politeness parameters are taken
// from cfg the first time the domain is seen.
func (m *Manager) ShouldDelay(domain string, cfg config.Config) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	s := m.stateLocked(domain, paramsFromConfig(cfg))
	advanceBreakerLocked(s, now)

	if s.CircuitState == Open {
		return true
	}
	if s.IsRateLimited && now.Before(s.RateLimitResetTime) {
		return true
	}
	if !s.LastRequest.IsZero() && now.Before(s.LastRequest.Add(s.DynamicCrawlDelay)) {
		return true
	}
	return false
}

// GetDelay returns the smallest positive remaining delay among breaker
// reset, rate-limit reset, and politeness gap; zero if none apply.
func (m *Manager) GetDelay(domain string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.states[domain]
	if !ok {
		return 0
	}
	now := time.Now()
	advanceBreakerLocked(s, now)

	var candidates []time.Duration
	if s.CircuitState == Open && !s.CircuitOpenedAt.IsZero() {
		if remaining := s.CircuitOpenedAt.Add(s.params.resetTime).Sub(now); remaining > 0 {
			candidates = append(candidates, remaining)
		}
	}
	if s.IsRateLimited {
		if remaining := s.RateLimitResetTime.Sub(now); remaining > 0 {
			candidates = append(candidates, remaining)
		}
	}
	if !s.LastRequest.IsZero() {
		if remaining := s.LastRequest.Add(s.DynamicCrawlDelay).Sub(now); remaining > 0 {
			candidates = append(candidates, remaining)
		}
	}

	smallest := time.Duration(0)
	for _, d := range candidates {
		if smallest == 0 || d < smallest {
			smallest = d
		}
	}
	return smallest
}

// IsCircuitBreakerOpen advances the breaker's time-based transition, then
// reports whether it is Open.
func (m *Manager) IsCircuitBreakerOpen(domain string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.states[domain]
	if !ok {
		return false
	}
	advanceBreakerLocked(s, time.Now())
	return s.CircuitState == Open
}

func (m *Manager) RecordSuccess(domain string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.states[domain]
	if !ok {
		return
	}
	now := time.Now()
	s.TotalRequests++
	s.SuccessfulRequests++
	s.ConsecutiveFailures = 0
	s.LastRequest = now
	s.LastSuccessfulRequest = now

	if s.CircuitState == HalfOpen {
		s.CircuitState = Closed
	}

	decayed := time.Duration(float64(s.DynamicCrawlDelay) * 0.8)
	if decayed < s.params.politenessDelay {
		decayed = s.params.politenessDelay
	}
	s.DynamicCrawlDelay = decayed
}

const maxDynamicDelay = 5 * time.Minute

func (m *Manager) RecordFailure(domain string, failureType classify.FailureType, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.states[domain]
	if !ok {
		return
	}
	now := time.Now()
	s.TotalRequests++
	s.ConsecutiveFailures++
	s.LastRequest = now
	s.LastError = msg
	s.LastFailureType = failureType

	switch s.CircuitState {
	case Closed:
		if s.ConsecutiveFailures >= s.params.failureThreshold {
			s.CircuitState = Open
			s.CircuitOpenedAt = now
		}
	case HalfOpen:
		s.CircuitState = Open
		s.CircuitOpenedAt = now
	}

	exp := s.ConsecutiveFailures
	if exp > 10 {
		exp = 10
	}
	delay := time.Duration(float64(s.params.politenessDelay) * pow15(exp))
	switch failureType {
	case classify.RateLimited:
		delay = time.Duration(float64(delay) * 2.0)
	case classify.Temporary:
		delay = time.Duration(float64(delay) * 1.5)
	}
	if delay > maxDynamicDelay {
		delay = maxDynamicDelay
	}
	s.DynamicCrawlDelay = delay
}

func pow15(exp int) float64 {
	result := 1.0
	for i := 0; i < exp; i++ {
		result *= 1.5
	}
	return result
}

// RecordRateLimit opens a rate-limit window of at least max(retryAfter,
// configured rate-limit delay) and raises the dynamic delay to match.
func (m *Manager) RecordRateLimit(domain string, retryAfter time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.states[domain]
	if !ok {
		return
	}
	window := s.params.rateLimitDelay
	if retryAfter > window {
		window = retryAfter
	}
	s.IsRateLimited = true
	s.RateLimitResetTime = time.Now().Add(window)
	if s.DynamicCrawlDelay < window {
		s.DynamicCrawlDelay = window
	}
}

// ResetCircuitBreaker is an administrative override back to Closed.
func (m *Manager) ResetCircuitBreaker(domain string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.states[domain]
	if !ok {
		return
	}
	s.CircuitState = Closed
	s.ConsecutiveFailures = 0
	s.CircuitOpenedAt = time.Time{}
	s.DynamicCrawlDelay = s.params.politenessDelay
	s.IsRateLimited = false
}

// Snapshot returns a copy of domain's state, or the zero value if unseen.
func (m *Manager) Snapshot(domain string) DomainState {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.states[domain]
	if !ok {
		return DomainState{CircuitState: Closed}
	}
	advanceBreakerLocked(s, time.Now())
	return s.DomainState
}
