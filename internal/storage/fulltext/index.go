// Package fulltext is the Full-text Index Adapter (C13): a RediSearch
// style index driven over github.com/gomodule/redigo/redis, issuing
// raw FT.* commands with redigo's Do(). Grounded on
// original_source/include/search_engine/storage/RedisSearchStorage.h
// and .cpp — no RediSearch-specific Go client exists in the retrieval
// pack, so the original's command/field layout is reproduced directly
// against redigo's generic command interface (see DESIGN.md).
package fulltext

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/rohmanhakim/search-engine-core/pkg/hashutil"
)

// Document is one indexable unit: the document-store's SiteProfile plus
// its extracted text content, reduced to the fields the index schema
// understands.
type Document struct {
	URL         string
	Title       string
	Content     string
	Domain      string
	Keywords    []string
	Description string
	Language    string
	Category    string
	IndexedAt   time.Time
	Score       float64
}

// Query mirrors the original's SearchQuery: a wire-syntax query string
// (already lowered by internal/query) plus RediSearch-style filter
// clauses, paging, and an optional highlight flag.
type Query struct {
	Query     string
	Filters   []string
	Language  string
	Category  string
	Limit     int
	Offset    int
	Highlight bool
}

// Result is one scored hit. Content and Description carry the raw
// index fields (Snippet is a truncated view of Content) so callers that
// re-rank through the Scorer (C11) have the full text to build a
// scoring.DocumentInfo from.
type Result struct {
	URL         string
	Title       string
	Snippet     string
	Domain      string
	Description string
	Content     string
	Keywords    string
	Language    string
	Category    string
	IndexedAt   time.Time
	Score       float64
}

// Response wraps a full search call.
type Response struct {
	Results      []Result
	TotalResults int
	QueryTimeMs  int64
	IndexName    string
}

// Index owns a redigo connection pool and the RediSearch index name /
// document key prefix it operates against.
type Index struct {
	pool      *redis.Pool
	indexName string
	keyPrefix string
}

// NewIndex dials addr lazily via a redigo pool (the standard redigo
// connection-per-operation pattern: Get()/defer Close() around each
// command).
func NewIndex(addr, indexName, keyPrefix string) *Index {
	return &Index{
		pool: &redis.Pool{
			MaxIdle:     8,
			IdleTimeout: 240 * time.Second,
			Dial: func() (redis.Conn, error) {
				return redis.Dial("tcp", addr)
			},
		},
		indexName: indexName,
		keyPrefix: keyPrefix,
	}
}

func (x *Index) documentKey(url string) string {
	return hashutil.DocKey(x.keyPrefix, url)
}

// InitializeIndex issues FT.CREATE with the schema the original's
// createSearchIndex built: a sortable, unindexed TEXT url field, weighted
// TEXT fields for title/content/description, TAG fields for
// domain/keywords/language/category, and
// SORTABLE NUMERIC fields for indexed_at/score.
func (x *Index) InitializeIndex() error {
	conn := x.pool.Get()
	defer conn.Close()

	_, err := conn.Do("FT.CREATE", x.indexName,
		"ON", "HASH",
		"PREFIX", "1", x.keyPrefix,
		"SCHEMA",
		"url", "TEXT", "SORTABLE", "NOINDEX",
		"title", "TEXT", "WEIGHT", "5.0",
		"content", "TEXT", "WEIGHT", "1.0",
		"domain", "TAG", "SORTABLE",
		"keywords", "TAG",
		"description", "TEXT", "WEIGHT", "2.0",
		"language", "TAG",
		"category", "TAG",
		"indexed_at", "NUMERIC", "SORTABLE",
		"score", "NUMERIC", "SORTABLE",
	)
	if err != nil && !strings.Contains(err.Error(), "Index already exists") {
		return fmt.Errorf("initialize index: %w", err)
	}
	return nil
}

func (x *Index) DropIndex() error {
	conn := x.pool.Get()
	defer conn.Close()
	_, err := conn.Do("FT.DROPINDEX", x.indexName)
	if err != nil {
		return fmt.Errorf("drop index: %w", err)
	}
	return nil
}

// IndexDocument stores doc as a Redis hash under its document key. Since
// RediSearch indexes hashes on write, updating a document is the same
// HSET call.
func (x *Index) IndexDocument(doc Document) error {
	conn := x.pool.Get()
	defer conn.Close()

	args := redis.Args{}.Add(x.documentKey(doc.URL)).AddFlat(fieldsFor(doc))
	_, err := conn.Do("HSET", args...)
	if err != nil {
		return fmt.Errorf("index document %s: %w", doc.URL, err)
	}
	return nil
}

// UpdateDocument is index-then-overwrite, matching RedisSearchStorage's
// updateDocument (same as indexDocument for a hash-backed index).
func (x *Index) UpdateDocument(doc Document) error {
	return x.IndexDocument(doc)
}

func (x *Index) DeleteDocument(url string) error {
	conn := x.pool.Get()
	defer conn.Close()

	n, err := redis.Int(conn.Do("DEL", x.documentKey(url)))
	if err != nil {
		return fmt.Errorf("delete document %s: %w", url, err)
	}
	if n == 0 {
		return fmt.Errorf("document not found for url: %s", url)
	}
	return nil
}

// DeleteDocumentsByDomain scans for keys under keyPrefix tagged with
// domain and deletes them. RediSearch has no bulk-delete-by-tag command,
// so this runs a tag query first and deletes each matching key.
func (x *Index) DeleteDocumentsByDomain(domain string) error {
	conn := x.pool.Get()
	defer conn.Close()

	reply, err := redis.Values(conn.Do("FT.SEARCH", x.indexName, fmt.Sprintf("@domain:{%s}", escapeTag(domain)), "NOCONTENT", "LIMIT", "0", "10000"))
	if err != nil {
		return fmt.Errorf("find documents for domain %s: %w", domain, err)
	}
	if len(reply) < 1 {
		return nil
	}
	for _, key := range reply[1:] {
		if keyBytes, ok := key.([]byte); ok {
			if _, err := conn.Do("DEL", string(keyBytes)); err != nil {
				return fmt.Errorf("delete document key %s: %w", keyBytes, err)
			}
		}
	}
	return nil
}

func (x *Index) GetDocumentCount() (int64, error) {
	info, err := x.GetIndexInfo()
	if err != nil {
		return 0, err
	}
	raw, ok := info["num_docs"]
	if !ok {
		return 0, fmt.Errorf("num_docs missing from index info")
	}
	count, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse num_docs: %w", err)
	}
	return count, nil
}

// GetIndexInfo flattens FT.INFO's alternating key/value reply into a map.
func (x *Index) GetIndexInfo() (map[string]string, error) {
	conn := x.pool.Get()
	defer conn.Close()

	reply, err := redis.Values(conn.Do("FT.INFO", x.indexName))
	if err != nil {
		return nil, fmt.Errorf("get index info: %w", err)
	}

	info := map[string]string{}
	for i := 0; i+1 < len(reply); i += 2 {
		key, kOk := reply[i].([]byte)
		val, vOk := reply[i+1].([]byte)
		if kOk && vOk {
			info[string(key)] = string(val)
		}
	}
	return info, nil
}

func fieldsFor(doc Document) []string {
	fields := []string{
		"url", doc.URL,
		"title", doc.Title,
		"content", doc.Content,
		"domain", doc.Domain,
		"score", strconv.FormatFloat(doc.Score, 'f', -1, 64),
		"indexed_at", strconv.FormatInt(doc.IndexedAt.Unix(), 10),
	}
	if doc.Description != "" {
		fields = append(fields, "description", doc.Description)
	}
	if doc.Language != "" {
		fields = append(fields, "language", doc.Language)
	}
	if doc.Category != "" {
		fields = append(fields, "category", doc.Category)
	}
	if len(doc.Keywords) > 0 {
		fields = append(fields, "keywords", strings.Join(doc.Keywords, "|"))
	}
	return fields
}

// DomainFilter builds a RediSearch tag-filter clause restricting results
// to any of domains, e.g. domain_filter=a.com,b.com from the search
// HTTP endpoint (spec.md §6) becomes "@domain:{a\.com|b\.com}". Returns
// "" when domains is empty.
func DomainFilter(domains []string) string {
	if len(domains) == 0 {
		return ""
	}
	escaped := make([]string, len(domains))
	for i, d := range domains {
		escaped[i] = escapeTag(d)
	}
	return "@domain:{" + strings.Join(escaped, "|") + "}"
}

// escapeTag neutralizes RediSearch TAG-field special characters so a
// domain/category value can't break out of its @field:{...} clause.
func escapeTag(value string) string {
	replacer := strings.NewReplacer(
		",", "\\,", ".", "\\.", "<", "\\<", ">", "\\>", "{", "\\{", "}", "\\}",
		"[", "\\[", "]", "\\]", `"`, `\"`, "'", "\\'", ":", "\\:", ";", "\\;",
		"!", "\\!", "@", "\\@", "#", "\\#", "$", "\\$", "%", "\\%", "^", "\\^",
		"&", "\\&", "*", "\\*", "(", "\\(", ")", "\\)", "-", "\\-", "+", "\\+",
		"=", "\\=", "~", "\\~", "|", "\\|",
	)
	return replacer.Replace(value)
}
