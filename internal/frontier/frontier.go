package frontier

/*
Frontier Responsibilities
- Maintain BFS ordering (shallowest pending depth drains first)
- Deduplicate URLs via a per-session visited set
- Track crawl depth per URL
- Enforce MaxDepth and MaxPages from CrawlConfig
- Knows nothing about:
	- fetching
	- extraction
	- storage
	- politeness (that's Domain Manager's job)
	- admission semantics (that's the Crawler's job — see CrawlAdmissionCandidate)

It is a data structure + ordering policy, not a pipeline executor.
*/

import (
	"sync"

	"github.com/rohmanhakim/search-engine-core/internal/config"
	"github.com/rohmanhakim/search-engine-core/pkg/urlutil"
)

// CrawlFrontier is a per-session, depth-ordered, deduplicated queue of
// admitted URLs. It guarantees that every URL at depth N is dequeued
// before any URL at depth N+1 is, regardless of the order Submit calls
// arrive in — callers that submit in strict BFS order get strict BFS
// output, but a Crawler racing multiple fetches and submitting
// out-of-order discoveries still gets the same guarantee.
type CrawlFrontier struct {
	mu            sync.Mutex
	cfg           config.Config
	visited       Set[string]
	queuesByDepth map[int]*FIFOQueue[CrawlToken]
}

// NewCrawlFrontier builds an unconfigured frontier. Call Init before use.
func NewCrawlFrontier() *CrawlFrontier {
	return &CrawlFrontier{
		visited:       NewSet[string](),
		queuesByDepth: make(map[int]*FIFOQueue[CrawlToken]),
	}
}

// Init (re)configures the frontier with cfg and clears any prior state.
func (f *CrawlFrontier) Init(cfg config.Config) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cfg = cfg
	f.visited = NewSet[string]()
	f.queuesByDepth = make(map[int]*FIFOQueue[CrawlToken])
}

// Submit admits candidate into the frontier at the depth recorded in its
// DiscoveryMetadata. The call is a silent no-op when:
//   - the normalized URL was already admitted (dedup)
//   - MaxDepth is set and candidate's depth exceeds it
//   - MaxPages is set and the frontier has already admitted that many
//     distinct URLs
//
// Per CrawlAdmissionCandidate's invariant, Submit never re-evaluates
// robots/scope admission — only depth and volume bounds, which are
// frontier-local concerns.
func (f *CrawlFrontier) Submit(candidate CrawlAdmissionCandidate) {
	depth := candidate.DiscoveryMetadata().Depth()
	normalized := urlutil.Canonicalize(candidate.TargetURL())
	key := normalized.String()

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.visited.Contains(key) {
		return
	}
	if maxDepth := f.cfg.MaxDepth(); maxDepth > 0 && depth > maxDepth {
		return
	}
	if maxPages := f.cfg.MaxPages(); maxPages > 0 && f.visited.Size() >= maxPages {
		return
	}

	f.visited.Add(key)
	q, ok := f.queuesByDepth[depth]
	if !ok {
		q = NewFIFOQueue[CrawlToken]()
		f.queuesByDepth[depth] = q
	}
	q.Enqueue(NewCrawlToken(normalized, depth))
}

// Dequeue removes and returns the token at the smallest depth with
// pending entries. ok is false when the frontier is drained.
func (f *CrawlFrontier) Dequeue() (CrawlToken, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	depth, ok := f.minPendingDepthLocked()
	if !ok {
		return CrawlToken{}, false
	}
	return f.queuesByDepth[depth].Dequeue()
}

func (f *CrawlFrontier) minPendingDepthLocked() (int, bool) {
	min := 0
	found := false
	for depth, q := range f.queuesByDepth {
		if q.Size() == 0 {
			continue
		}
		if !found || depth < min {
			min = depth
			found = true
		}
	}
	return min, found
}

// IsDepthExhausted reports whether depth has no pending entries — true
// both for a depth that was never populated and one fully drained.
// Negative depths are always reported exhausted since they can never
// occur.
func (f *CrawlFrontier) IsDepthExhausted(depth int) bool {
	if depth < 0 {
		return true
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	q, ok := f.queuesByDepth[depth]
	return !ok || q.Size() == 0
}

// CurrentMinDepth returns the smallest depth with pending entries, or -1
// if the frontier is empty.
func (f *CrawlFrontier) CurrentMinDepth() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	depth, ok := f.minPendingDepthLocked()
	if !ok {
		return -1
	}
	return depth
}

// VisitedCount reports how many distinct normalized URLs this frontier
// has ever admitted, including ones already dequeued. It never counts
// URLs rejected for dedup, depth, or volume reasons.
func (f *CrawlFrontier) VisitedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visited.Size()
}
