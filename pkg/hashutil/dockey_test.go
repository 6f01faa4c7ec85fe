package hashutil_test

import (
	"testing"

	"github.com/rohmanhakim/search-engine-core/pkg/hashutil"
	"github.com/stretchr/testify/assert"
)

func TestDocKey_Deterministic(t *testing.T) {
	a := hashutil.DocKey("doc:", "https://example.com/a")
	b := hashutil.DocKey("doc:", "https://example.com/a")
	assert.Equal(t, a, b)
}

func TestDocKey_DistinguishesURLs(t *testing.T) {
	a := hashutil.DocKey("doc:", "https://example.com/a")
	b := hashutil.DocKey("doc:", "https://example.com/b")
	assert.NotEqual(t, a, b)
}

func TestDocKey_HasPrefix(t *testing.T) {
	k := hashutil.DocKey("doc:", "https://example.com/a")
	assert.True(t, len(k) > len("doc:"))
	assert.Equal(t, "doc:", k[:4])
}
