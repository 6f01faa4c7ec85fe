// Package storage is the Content Storage coordinator (C14): the seam
// between the crawler and the two physical stores, fusing the
// document-store write path with the full-text index write path and
// presenting one read surface over both. Grounded on spec.md §4.13 and,
// for the lazy-adapter-construction idea, the original's constructor
// pattern in RedisSearchStorage.h (index created on first use rather
// than eagerly).
package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rohmanhakim/search-engine-core/internal/metadata"
	"github.com/rohmanhakim/search-engine-core/internal/sitemodel"
	"github.com/rohmanhakim/search-engine-core/internal/storage/documentstore"
	"github.com/rohmanhakim/search-engine-core/internal/storage/fulltext"
)

// Stats fuses counts from both stores for the operator-facing health
// surface.
type Stats struct {
	TotalProfiles   int64
	IndexedDocuments int64
	DocumentStoreUp bool
	FullTextIndexUp bool
}

// ContentStorage coordinates the document store and the full-text
// index. Each adapter is built lazily on first use so a partial outage
// (e.g. Redis down, Postgres up) still lets crawling proceed; the
// document-store write is authoritative and an index failure is logged,
// not propagated.
type ContentStorage struct {
	sink metadata.MetadataSink

	docStoreDSN string
	indexAddr   string
	indexName   string
	indexPrefix string

	mu       sync.Mutex
	docStore *documentstore.Store
	index    *fulltext.Index
}

func New(sink metadata.MetadataSink, docStoreDSN, indexAddr, indexName, indexPrefix string) *ContentStorage {
	return &ContentStorage{
		sink:        sink,
		docStoreDSN: docStoreDSN,
		indexAddr:   indexAddr,
		indexName:   indexName,
		indexPrefix: indexPrefix,
	}
}

func (c *ContentStorage) documentStore(ctx context.Context) (*documentstore.Store, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.docStore != nil {
		return c.docStore, nil
	}
	store, err := documentstore.New(ctx, c.docStoreDSN)
	if err != nil {
		return nil, err
	}
	c.docStore = store
	return store, nil
}

func (c *ContentStorage) fullTextIndex() *fulltext.Index {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.index != nil {
		return c.index
	}
	c.index = fulltext.NewIndex(c.indexAddr, c.indexName, c.indexPrefix)
	return c.index
}

// StoreCrawlResult is the write path: convert CrawlResult to a
// SiteProfile (merging with any existing profile for the URL), persist
// it to the document store, and — if the fetch succeeded and produced
// text — upsert a searchable document into the full-text index.
func (c *ContentStorage) StoreCrawlResult(ctx context.Context, result sitemodel.CrawlResult) error {
	store, err := c.documentStore(ctx)
	if err != nil {
		return fmt.Errorf("content storage write path: %w", err)
	}

	profile := crawlResultToProfile(result)

	existing, err := store.GetByURL(ctx, result.URL)
	if err == nil {
		profile = mergeProfile(existing, profile)
	} else if err != documentstore.ErrNotFound {
		return fmt.Errorf("content storage write path: lookup existing profile: %w", err)
	}

	if _, err := store.Store(ctx, profile); err != nil {
		return fmt.Errorf("content storage write path: %w", err)
	}

	if result.Success && strings.TrimSpace(result.TextContent) != "" {
		c.indexProfile(profile, result.TextContent)
	}

	return nil
}

// indexProfile upserts profile into the full-text index. Failures are
// recorded but never propagated: the document store write above is
// authoritative, and a stale/missing index entry is expected to be
// corrected by the next crawl of the same URL.
func (c *ContentStorage) indexProfile(profile sitemodel.SiteProfile, text string) {
	searchableText := buildSearchableText(profile, text)

	doc := fulltext.Document{
		URL:         profile.URL,
		Title:       profile.Title,
		Content:     searchableText,
		Domain:      profile.Domain,
		Keywords:    profile.Keywords,
		Description: profile.Description,
		Language:    profile.Language,
		Category:    profile.Category,
		IndexedAt:   time.Now(),
		Score:       profile.ContentQuality,
	}

	if err := c.fullTextIndex().IndexDocument(doc); err != nil {
		c.sink.RecordError(
			time.Now(), "storage", "ContentStorage.indexProfile",
			metadata.CauseStorageFailure, err.Error(),
			[]metadata.Attribute{metadata.NewAttr(metadata.AttrURL, profile.URL)},
		)
	}
}

// buildSearchableText concatenates title (weighted by repetition),
// description, and body text into the single blob the index's "content"
// field scores against.
func buildSearchableText(profile sitemodel.SiteProfile, text string) string {
	var sb strings.Builder
	sb.WriteString(profile.Title)
	sb.WriteString(" ")
	sb.WriteString(profile.Title)
	sb.WriteString(" ")
	sb.WriteString(profile.Description)
	sb.WriteString(" ")
	sb.WriteString(text)
	return sb.String()
}

func crawlResultToProfile(result sitemodel.CrawlResult) sitemodel.SiteProfile {
	status := result.Status
	if status == "" {
		if result.Success {
			status = sitemodel.StatusSuccess
		} else {
			status = sitemodel.StatusFailed
		}
	}

	profile := sitemodel.SiteProfile{
		URL:         result.URL,
		Domain:      result.Domain,
		Title:       result.Title,
		Description: result.Description,
		OutboundLinks: result.Links,
		WordCount:   len(tokenizeWords(result.TextContent)),
		HasSSL:      hasSSL(result.URL),
		IsIndexed:   result.Success && strings.TrimSpace(result.TextContent) != "",
	}

	if result.Success {
		profile.Keywords = extractKeywords(result.TextContent, 10)
	}

	now := result.FinishedAt
	if now.IsZero() {
		now = time.Now()
	}

	profile.Crawl = sitemodel.CrawlMetadata{
		LastCrawlTime:      now,
		FirstCrawlTime:     result.StartedAt,
		LastCrawlStatus:    status,
		LastErrorMessage:   result.ErrorMessage,
		CrawlCount:         1,
		UserAgent:          "",
		HTTPStatusCode:     result.HTTPStatusCode,
		ContentSize:        result.ContentSize,
		ContentType:        result.ContentType,
		CrawlDurationMs:    result.DurationMs,
	}
	if profile.IsIndexed {
		profile.IndexedAt = now
	}
	return profile
}

// mergeProfile applies the write-path merge rules from spec.md §4.13:
// preserve firstCrawlTime, bump crawlCount, and keep manually-curated
// fields the new crawl didn't supply.
func mergeProfile(existing, fresh sitemodel.SiteProfile) sitemodel.SiteProfile {
	fresh.ID = existing.ID
	fresh.Crawl.FirstCrawlTime = existing.Crawl.FirstCrawlTime
	fresh.Crawl.CrawlCount = existing.Crawl.CrawlCount + 1

	if fresh.Category == "" {
		fresh.Category = existing.Category
	}
	if fresh.PageRank == 0 {
		fresh.PageRank = existing.PageRank
	}
	if fresh.InboundLinkCount == 0 {
		fresh.InboundLinkCount = existing.InboundLinkCount
	}
	if fresh.Language == "" {
		fresh.Language = existing.Language
	}
	if fresh.Author == "" {
		fresh.Author = existing.Author
	}
	if fresh.Publisher == "" {
		fresh.Publisher = existing.Publisher
	}

	return fresh
}

func hasSSL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Scheme == "https"
}

// Search runs q against the full-text index.
func (c *ContentStorage) Search(q fulltext.Query) (fulltext.Response, error) {
	return c.fullTextIndex().Search(q)
}

// Suggest returns up to limit autocomplete completions for prefix.
func (c *ContentStorage) Suggest(prefix string, limit int) ([]string, error) {
	return c.fullTextIndex().Suggest(prefix, limit)
}

func (c *ContentStorage) GetByURL(ctx context.Context, url string) (sitemodel.SiteProfile, error) {
	store, err := c.documentStore(ctx)
	if err != nil {
		return sitemodel.SiteProfile{}, err
	}
	return store.GetByURL(ctx, url)
}

func (c *ContentStorage) GetByDomain(ctx context.Context, domain string, limit, offset int) ([]sitemodel.SiteProfile, error) {
	store, err := c.documentStore(ctx)
	if err != nil {
		return nil, err
	}
	return store.GetByDomain(ctx, domain, limit, offset)
}

func (c *ContentStorage) GetByCrawlStatus(ctx context.Context, status sitemodel.CrawlStatus, limit, offset int) ([]sitemodel.SiteProfile, error) {
	store, err := c.documentStore(ctx)
	if err != nil {
		return nil, err
	}
	return store.GetByCrawlStatus(ctx, status, limit, offset)
}

// StorageStats fuses a total-profile count from the document store with
// an indexed-document count from the full-text index. Either store
// being unreachable is reflected in the corresponding Up flag rather
// than failing the whole call.
func (c *ContentStorage) StorageStats(ctx context.Context) Stats {
	var stats Stats

	if store, err := c.documentStore(ctx); err == nil {
		if count, err := store.Count(ctx); err == nil {
			stats.TotalProfiles = count
			stats.DocumentStoreUp = true
		}
	}

	if count, err := c.fullTextIndex().GetDocumentCount(); err == nil {
		stats.IndexedDocuments = count
		stats.FullTextIndexUp = true
	}

	return stats
}
