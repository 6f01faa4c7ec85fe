package crawlmetrics_test

import (
	"testing"

	"github.com/rohmanhakim/search-engine-core/internal/classify"
	"github.com/rohmanhakim/search-engine-core/internal/crawlmetrics"
	"github.com/stretchr/testify/assert"
)

func TestGlobalCounters(t *testing.T) {
	m := crawlmetrics.New()
	m.RecordRequest()
	m.RecordRequest()
	m.RecordSuccess()
	m.RecordFailure()
	m.RecordRetry()

	assert.EqualValues(t, 2, m.TotalRequests())
	assert.EqualValues(t, 1, m.SuccessfulRequests())
	assert.EqualValues(t, 1, m.FailedRequests())
	assert.EqualValues(t, 1, m.RetriedRequests())
	assert.InDelta(t, 0.5, m.SuccessRate(), 0.001)
}

func TestDomainCounters(t *testing.T) {
	m := crawlmetrics.New()
	m.RecordDomainRequest("a.com")
	m.RecordDomainRequest("a.com")
	m.RecordDomainSuccess("a.com")
	m.RecordDomainRequest("b.com")

	snap := m.DomainMetrics("a.com")
	assert.EqualValues(t, 2, snap.TotalRequests)
	assert.EqualValues(t, 1, snap.SuccessfulRequests)
	assert.InDelta(t, 0.5, snap.SuccessRate(), 0.001)

	all := m.AllDomainMetrics()
	assert.Len(t, all, 2)
}

func TestFailureTypeCounts(t *testing.T) {
	m := crawlmetrics.New()
	m.RecordFailureType(classify.Temporary)
	m.RecordFailureType(classify.Temporary)
	m.RecordFailureType(classify.Permanent)

	counts := m.FailureTypeCounts()
	assert.EqualValues(t, 2, counts[classify.Temporary])
	assert.EqualValues(t, 1, counts[classify.Permanent])
}

func TestReset(t *testing.T) {
	m := crawlmetrics.New()
	m.RecordRequest()
	m.RecordDomainRequest("a.com")
	m.RecordFailureType(classify.Unknown)

	m.Reset()

	assert.Zero(t, m.TotalRequests())
	assert.Empty(t, m.AllDomainMetrics())
	assert.Empty(t, m.FailureTypeCounts())
}
