package extractor_test

import (
	"net/url"
	"testing"

	"github.com/rohmanhakim/search-engine-core/internal/extractor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPage_TitleDescriptionTextLinks(t *testing.T) {
	ext, _ := setupExtractor()
	sourceURL := mustParseURL(t, "https://example.com/docs/guide")

	rawHTML := []byte(`<html><head>
		<title>Guide Title</title>
		<meta name="description" content="A helpful guide.">
	</head><body>
		<main>
			<h1>Guide</h1>
			<p>This is the guide content with useful information.</p>
			<a href="/docs/other">Other page</a>
			<a href="https://external.example.com/ref">External ref</a>
			<a href="#section">Skip anchor</a>
		</main>
	</body></html>`)

	page, err := extractor.ExtractPage(ext, sourceURL, rawHTML)
	require.NoError(t, err)

	assert.Equal(t, "Guide Title", page.Title)
	assert.Equal(t, "A helpful guide.", page.Description)
	assert.Contains(t, page.TextContent, "guide content with useful information")
	assert.Contains(t, page.OutboundLinks, "https://example.com/docs/other")
	assert.Contains(t, page.OutboundLinks, "https://external.example.com/ref")
	for _, l := range page.OutboundLinks {
		assert.NotContains(t, l, "#section")
	}
}

func TestExtractPage_PropagatesExtractionError(t *testing.T) {
	ext, _ := setupExtractor()
	sourceURL := mustParseURL(t, "https://example.com/empty")

	_, err := extractor.ExtractPage(ext, sourceURL, []byte("not even html"))
	require.Error(t, err)
}
