package crawler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rohmanhakim/search-engine-core/internal/config"
	"github.com/rohmanhakim/search-engine-core/internal/domainmgr"
	"github.com/rohmanhakim/search-engine-core/internal/fetcher"
	"github.com/rohmanhakim/search-engine-core/internal/metadata"
	"github.com/rohmanhakim/search-engine-core/internal/storage"
)

// session is the supervisory record CrawlerManager keeps for one
// running or finished Crawler: its own context (so StopSession can
// cancel just this one) and the shared completion bookkeeping.
type session struct {
	crawler *Crawler
	cancel  context.CancelFunc
	done    chan struct{}
}

// Manager (C9) supervises many concurrent Crawler sessions against one
// shared DomainManager — so politeness and circuit-breaker state for a
// domain is honored across every session crawling it — and reaps
// terminal sessions older than a retention window, mirroring the
// original's CrawlerManager session map + reaper.
type Manager struct {
	sink  metadata.MetadataSink
	store *storage.ContentStorage

	domainMgr *domainmgr.Manager

	mu       sync.Mutex
	sessions map[string]*session
}

func NewManager(sink metadata.MetadataSink, store *storage.ContentStorage) *Manager {
	return &Manager{
		sink:      sink,
		store:     store,
		domainMgr: domainmgr.NewManager(),
		sessions:  make(map[string]*session),
	}
}

// StartSession creates a new session id, builds a Crawler for cfg, and
// runs it on its own goroutine. It returns immediately with the session
// id; callers poll Status/Stats or call StopSession.
func (m *Manager) StartSession(cfg config.Config) (string, error) {
	if len(cfg.SeedURLs()) == 0 {
		return "", &CrawlerError{Message: "crawl config has no seed urls", Cause: ErrCauseNoSeedURLs}
	}

	sessionID := uuid.NewString()

	htmlFetcher := fetcher.NewHtmlFetcher(m.sink)
	c := NewCrawler(sessionID, cfg, &htmlFetcher, m.domainMgr, m.store, m.sink)

	ctx, cancel := context.WithCancel(context.Background())
	sess := &session{crawler: c, cancel: cancel, done: make(chan struct{})}

	m.mu.Lock()
	m.sessions[sessionID] = sess
	m.mu.Unlock()

	go func() {
		defer close(sess.done)
		_ = c.Run(ctx)
	}()

	return sessionID, nil
}

func (m *Manager) session(sessionID string) (*session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[sessionID]
	if !ok {
		return nil, &CrawlerError{Message: sessionID, Cause: ErrCauseSessionNotFound}
	}
	return sess, nil
}

func (m *Manager) GetStatus(sessionID string) (Status, error) {
	sess, err := m.session(sessionID)
	if err != nil {
		return "", err
	}
	return sess.crawler.Status(), nil
}

func (m *Manager) GetStats(sessionID string) (Stats, error) {
	sess, err := m.session(sessionID)
	if err != nil {
		return Stats{}, err
	}
	return sess.crawler.Stats(), nil
}

// StopSession cancels the session's context; the Crawler's Run loop
// observes ctx.Done() at its next iteration and exits with StatusFailed.
func (m *Manager) StopSession(sessionID string) error {
	sess, err := m.session(sessionID)
	if err != nil {
		return err
	}
	sess.cancel()
	return nil
}

// Wait blocks until sessionID's Crawler has finished running.
func (m *Manager) Wait(sessionID string) error {
	sess, err := m.session(sessionID)
	if err != nil {
		return err
	}
	<-sess.done
	return nil
}

// ActiveSessionCount reports how many sessions are currently running.
func (m *Manager) ActiveSessionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, sess := range m.sessions {
		if sess.crawler.Status() == StatusRunning {
			count++
		}
	}
	return count
}

// Reap removes sessions whose Crawler finished (completed or failed)
// more than maxAge ago, freeing their memory. It returns how many
// sessions were removed.
func (m *Manager) Reap(maxAge time.Duration) int {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, sess := range m.sessions {
		status := sess.crawler.Status()
		if status == StatusRunning {
			continue
		}
		finishedAt := sess.crawler.Stats().FinishedAt
		if finishedAt.IsZero() || now.Sub(finishedAt) < maxAge {
			continue
		}
		delete(m.sessions, id)
		removed++
	}
	return removed
}

// RunReaper runs Reap on a timer until ctx is cancelled. RunServe starts
// it once alongside the HTTP API and job queue workers; RunWorker does
// not start it.
func (m *Manager) RunReaper(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Reap(maxAge)
		}
	}
}
