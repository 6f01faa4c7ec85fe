package storage

import (
	"testing"
	"time"

	"github.com/rohmanhakim/search-engine-core/internal/sitemodel"
	"github.com/stretchr/testify/assert"
)

func TestCrawlResultToProfile_SuccessSetsIndexedAndKeywords(t *testing.T) {
	result := sitemodel.CrawlResult{
		URL:         "https://example.com/a",
		Domain:      "example.com",
		Title:       "Example Page",
		Description: "An example page about foxes and foxes hunting.",
		TextContent: "foxes foxes foxes hunting in the forest near the river",
		Success:     true,
		StartedAt:   time.Now().Add(-time.Second),
		FinishedAt:  time.Now(),
	}

	profile := crawlResultToProfile(result)
	assert.True(t, profile.IsIndexed)
	assert.False(t, profile.IndexedAt.IsZero())
	assert.Contains(t, profile.Keywords, "foxes")
	assert.Equal(t, sitemodel.StatusSuccess, profile.Crawl.LastCrawlStatus)
	assert.Equal(t, 1, profile.Crawl.CrawlCount)
}

func TestCrawlResultToProfile_FailureDoesNotIndex(t *testing.T) {
	result := sitemodel.CrawlResult{
		URL:     "https://example.com/b",
		Success: false,
		Status:  sitemodel.StatusTimeout,
	}
	profile := crawlResultToProfile(result)
	assert.False(t, profile.IsIndexed)
	assert.Equal(t, sitemodel.StatusTimeout, profile.Crawl.LastCrawlStatus)
	assert.Empty(t, profile.Keywords)
}

func TestMergeProfile_PreservesFirstCrawlTimeAndBumpsCount(t *testing.T) {
	first := time.Now().Add(-48 * time.Hour)
	existing := sitemodel.SiteProfile{
		ID:               7,
		Category:         "news",
		PageRank:         0.8,
		InboundLinkCount: 5,
		Crawl: sitemodel.CrawlMetadata{
			FirstCrawlTime: first,
			CrawlCount:     3,
		},
	}
	fresh := sitemodel.SiteProfile{
		URL: "https://example.com/a",
		Crawl: sitemodel.CrawlMetadata{
			FirstCrawlTime: time.Now(),
			CrawlCount:     1,
		},
	}

	merged := mergeProfile(existing, fresh)
	assert.Equal(t, int64(7), merged.ID)
	assert.Equal(t, first, merged.Crawl.FirstCrawlTime)
	assert.Equal(t, 4, merged.Crawl.CrawlCount)
	assert.Equal(t, "news", merged.Category)
	assert.Equal(t, 0.8, merged.PageRank)
	assert.Equal(t, 5, merged.InboundLinkCount)
}

func TestMergeProfile_KeepsFreshValuesWhenSupplied(t *testing.T) {
	existing := sitemodel.SiteProfile{Category: "news", PageRank: 0.8}
	fresh := sitemodel.SiteProfile{Category: "blog", PageRank: 0.4}

	merged := mergeProfile(existing, fresh)
	assert.Equal(t, "blog", merged.Category)
	assert.Equal(t, 0.4, merged.PageRank)
}

func TestHasSSL(t *testing.T) {
	assert.True(t, hasSSL("https://example.com"))
	assert.False(t, hasSSL("http://example.com"))
	assert.False(t, hasSSL("not a url"))
}

func TestBuildSearchableText_RepeatsTitle(t *testing.T) {
	profile := sitemodel.SiteProfile{Title: "Fox News", Description: "desc"}
	text := buildSearchableText(profile, "body")
	assert.Equal(t, "Fox News Fox News desc body", text)
}
