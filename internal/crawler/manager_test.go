package crawler

import (
	"testing"
	"time"

	"github.com/rohmanhakim/search-engine-core/internal/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_StartSession_NoSeedURLs(t *testing.T) {
	m := NewManager(metadata.NoopSink{}, nil)
	cfg, err := newTestConfig(nil, nil)
	require.Error(t, err) // WithDefault(nil).Build() itself rejects empty seeds

	_, startErr := m.StartSession(cfg)
	assert.Error(t, startErr)
}

func TestManager_GetStatus_SessionNotFound(t *testing.T) {
	m := NewManager(metadata.NoopSink{}, nil)
	_, err := m.GetStatus("does-not-exist")
	assert.Error(t, err)
	var crawlerErr *CrawlerError
	assert.ErrorAs(t, err, &crawlerErr)
	assert.Equal(t, ErrCauseSessionNotFound, crawlerErr.Cause)
}

func TestManager_StopSession_SessionNotFound(t *testing.T) {
	m := NewManager(metadata.NoopSink{}, nil)
	err := m.StopSession("does-not-exist")
	assert.Error(t, err)
}

func TestManager_ActiveSessionCount_EmptyManager(t *testing.T) {
	m := NewManager(metadata.NoopSink{}, nil)
	assert.Equal(t, 0, m.ActiveSessionCount())
}

func TestManager_Reap_NoSessions(t *testing.T) {
	m := NewManager(metadata.NoopSink{}, nil)
	assert.Equal(t, 0, m.Reap(time.Hour))
}

