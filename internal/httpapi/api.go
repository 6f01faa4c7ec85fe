// Package httpapi is the Search HTTP API (C16): a gorilla/mux router
// exposing search, autocomplete, crawl-session, and job-queue endpoints
// over the content storage, crawl manager, and job queue. Grounded on
// Caia-Tech/caia-library/internal/presentation's API type (routes under
// a versioned base path, CORS + logging middleware, one error-envelope
// helper) adapted from document presentation to search-engine
// operations.
package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/rohmanhakim/search-engine-core/internal/crawler"
	"github.com/rohmanhakim/search-engine-core/internal/metadata"
	"github.com/rohmanhakim/search-engine-core/internal/query"
	"github.com/rohmanhakim/search-engine-core/internal/queue"
	"github.com/rohmanhakim/search-engine-core/internal/scoring"
	"github.com/rohmanhakim/search-engine-core/internal/storage"
	"github.com/rohmanhakim/search-engine-core/internal/storage/fulltext"
	"github.com/rohmanhakim/search-engine-core/internal/templates"
)

// API wires the content storage, crawl session manager, and job queue
// behind one HTTP surface.
type API struct {
	store     *storage.ContentStorage
	crawlMgr  *crawler.Manager
	jobQueue  *queue.Queue
	sink      metadata.MetadataSink
	config    *Config
	templates *templates.Registry
	scorer    *scoring.Scorer
}

// Config configures the HTTP API.
type Config struct {
	BasePath   string
	EnableCORS bool
}

func defaultConfig() *Config {
	return &Config{BasePath: "/api/v1", EnableCORS: true}
}

// New builds an API over store, crawlMgr and jobQueue. crawlMgr and
// jobQueue may be nil: the corresponding routes return 503 rather than
// panicking, so a search-only deployment can wire just a store.
func New(store *storage.ContentStorage, crawlMgr *crawler.Manager, jobQueue *queue.Queue, sink metadata.MetadataSink, cfg *Config) *API {
	if cfg == nil {
		cfg = defaultConfig()
	}
	if sink == nil {
		sink = metadata.NoopSink{}
	}
	reg := templates.NewRegistry()
	templates.SeedPrebuilt(reg)
	return &API{
		store:     store,
		crawlMgr:  crawlMgr,
		jobQueue:  jobQueue,
		sink:      sink,
		config:    cfg,
		templates: reg,
		scorer:    scoring.NewScorer(scoring.DefaultConfig()),
	}
}

// SetScorer overrides the API's ranking Scorer, e.g. with one whose
// corpus statistics have been refreshed via UpdateCorpusStatistics.
func (api *API) SetScorer(s *scoring.Scorer) {
	api.scorer = s
}

// corpusStatisticsSampleSize bounds how many indexed documents
// RefreshCorpusStatistics pulls to rebuild BM25/TF-IDF corpus
// statistics from, per spec.md §9's Open Question decision: refresh
// after a bulk index change, and optionally on a timer.
const corpusStatisticsSampleSize = 1000

// RefreshCorpusStatistics rebuilds the Scorer's corpus-wide document
// count, per-field document frequency, and average field length from a
// sample of currently indexed documents. Callers invoke this after a
// bulk index change (e.g. a completed BulkCrawl job) or on a timer; it
// is never run implicitly inside a request.
func (api *API) RefreshCorpusStatistics() error {
	if api.store == nil {
		return fmt.Errorf("content storage not configured")
	}
	resp, err := api.store.Search(fulltext.Query{Query: "*", Limit: corpusStatisticsSampleSize})
	if err != nil {
		return fmt.Errorf("sample indexed documents: %w", err)
	}

	docs := make([]scoring.DocumentInfo, len(resp.Results))
	for i, row := range resp.Results {
		docs[i] = scoring.NewDocumentInfo(row.URL, row.Domain, row.Title, row.Description, row.Content, row.Keywords, row.Score)
	}
	api.scorer.UpdateCorpusStatistics(docs)
	return nil
}

// SetTemplates replaces the API's crawl-template registry, e.g. with one
// that has also loaded operator-supplied templates from disk via
// templates.LoadDirectory.
func (api *API) SetTemplates(reg *templates.Registry) {
	api.templates = reg
}

// NewRouter builds an API with default config and returns its
// http.Handler, ready to hand to http.Server.
func NewRouter(store *storage.ContentStorage, crawlMgr *crawler.Manager, jobQueue *queue.Queue, sink metadata.MetadataSink) http.Handler {
	api := New(store, crawlMgr, jobQueue, sink, nil)
	return api.Handler()
}

// Handler returns the fully wired router, with middleware applied.
func (api *API) Handler() http.Handler {
	router := api.setupRoutes()
	return api.addMiddleware(router)
}

func (api *API) setupRoutes() *mux.Router {
	router := mux.NewRouter()
	base := router.PathPrefix(api.config.BasePath).Subrouter()

	base.HandleFunc("/search", api.search).Methods("GET")
	base.HandleFunc("/suggest", api.suggest).Methods("GET")

	base.HandleFunc("/crawl", api.startCrawl).Methods("POST")
	base.HandleFunc("/crawl/{sessionID}", api.crawlStatus).Methods("GET")
	base.HandleFunc("/crawl/{sessionID}", api.stopCrawl).Methods("DELETE")

	base.HandleFunc("/jobs/crawl", api.enqueueCrawlJob).Methods("POST")
	base.HandleFunc("/jobs/stats", api.jobStats).Methods("GET")

	base.HandleFunc("/templates", api.listTemplates).Methods("GET")
	base.HandleFunc("/templates", api.upsertTemplate).Methods("POST")
	base.HandleFunc("/templates/{name}", api.getTemplate).Methods("GET")
	base.HandleFunc("/templates/{name}", api.deleteTemplate).Methods("DELETE")

	base.HandleFunc("/stats", api.storageStats).Methods("GET")
	base.HandleFunc("/health", api.healthCheck).Methods("GET")

	return router
}

func (api *API) addMiddleware(next http.Handler) http.Handler {
	handler := next
	if api.config.EnableCORS {
		handler = api.corsMiddleware(handler)
	}
	return api.loggingMiddleware(handler)
}

// searchResultItem is one row of the GET /search response body, per
// spec.md §6.
type searchResultItem struct {
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Snippet   string    `json:"snippet"`
	Score     float64   `json:"score"`
	Timestamp time.Time `json:"timestamp"`
}

// search implements the Search HTTP endpoint (spec.md §6): validates
// `q`/`page`/`limit`/`domain_filter`, lowers `q` through the Query
// Parser (C10) to the index's wire syntax, fetches candidates from the
// Full-text Index Adapter (C13), re-ranks them through the Scorer
// (C11), and returns the fused response.
func (api *API) search(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q := params.Get("q")
	if q == "" {
		api.sendSearchError(w, map[string]string{"q": "Query parameter is required"})
		return
	}

	page := 1
	if raw := params.Get("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 1000 {
			api.sendSearchError(w, map[string]string{"page": "Page must be an integer between 1 and 1000"})
			return
		}
		page = v
	}

	limit := 10
	if raw := params.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 100 {
			api.sendSearchError(w, map[string]string{"limit": "Limit must be an integer between 1 and 100"})
			return
		}
		limit = v
	}

	var domainFilter []string
	if raw := params.Get("domain_filter"); raw != "" {
		for _, d := range strings.Split(raw, ",") {
			if d = strings.TrimSpace(d); d != "" {
				domainFilter = append(domainFilter, d)
			}
		}
	}

	wireQuery, err := query.ToWireSyntax(q)
	if err != nil {
		api.sendSearchError(w, map[string]string{"q": "Query could not be parsed"})
		return
	}

	if api.store == nil {
		api.sendError(w, http.StatusServiceUnavailable, "content storage not configured", nil)
		return
	}

	var filters []string
	if clause := fulltext.DomainFilter(domainFilter); clause != "" {
		filters = append(filters, clause)
	}

	offset := (page - 1) * limit
	resp, err := api.store.Search(fulltext.Query{
		Query:   wireQuery,
		Filters: filters,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		api.sendError(w, http.StatusInternalServerError, "search failed", err)
		return
	}

	results := api.rankResults(q, resp.Results, limit)

	api.sendJSON(w, http.StatusOK, map[string]interface{}{
		"meta": map[string]interface{}{
			"total":    resp.TotalResults,
			"page":     page,
			"pageSize": limit,
		},
		"results": results,
	})
}

// rankResults re-scores the page of index candidates already returned
// by Search through the Scorer, preserving each row's url/title/snippet/
// timestamp for the response and substituting the Scorer's score for
// the index's raw base score.
func (api *API) rankResults(rawQuery string, rows []fulltext.Result, topK int) []searchResultItem {
	if len(rows) == 0 {
		return []searchResultItem{}
	}

	docs := make([]scoring.DocumentInfo, len(rows))
	byURL := make(map[string]fulltext.Result, len(rows))
	for i, row := range rows {
		docs[i] = scoring.NewDocumentInfo(row.URL, row.Domain, row.Title, row.Description, row.Content, row.Keywords, row.Score).
			WithIndexedAt(row.IndexedAt)
		byURL[row.URL] = row
	}

	scored := api.scorer.RankResults(rawQuery, docs, topK, time.Now())

	results := make([]searchResultItem, 0, len(scored))
	for _, s := range scored {
		row := byURL[s.URL]
		results = append(results, searchResultItem{
			URL:       row.URL,
			Title:     row.Title,
			Snippet:   row.Snippet,
			Score:     s.Score,
			Timestamp: row.IndexedAt,
		})
	}
	return results
}

func (api *API) suggest(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	prefix := params.Get("prefix")
	if prefix == "" {
		api.sendError(w, http.StatusBadRequest, "prefix parameter is required", nil)
		return
	}
	limit := intParam(params, "limit", 10)

	suggestions, err := api.store.Suggest(prefix, limit)
	if err != nil {
		api.sendError(w, http.StatusInternalServerError, "suggest failed", err)
		return
	}

	api.sendJSON(w, http.StatusOK, map[string]interface{}{
		"prefix":      prefix,
		"suggestions": suggestions,
	})
}

func (api *API) storageStats(w http.ResponseWriter, r *http.Request) {
	stats := api.store.StorageStats(r.Context())
	api.sendJSON(w, http.StatusOK, stats)
}

func (api *API) healthCheck(w http.ResponseWriter, r *http.Request) {
	api.sendJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now(),
	})
}

func intParam(params url.Values, key string, fallback int) int {
	v, err := strconv.Atoi(params.Get(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func (api *API) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

func (api *API) sendError(w http.ResponseWriter, status int, message string, err error) {
	log.Error().Err(err).Str("message", message).Int("status", status).Msg("API error")

	response := map[string]interface{}{
		"error":     message,
		"status":    status,
		"timestamp": time.Now(),
	}
	if err != nil {
		response["details"] = err.Error()
	}
	api.sendJSON(w, status, response)
}

// sendSearchError reports an invalid GET /search request in the exact
// envelope spec.md §6 and §8 scenario 2 specify: a fixed code/message
// pair plus a details map naming the offending parameter.
func (api *API) sendSearchError(w http.ResponseWriter, details map[string]string) {
	api.sendJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error": map[string]interface{}{
			"code":    "INVALID_REQUEST",
			"message": "Invalid request parameters",
			"details": details,
		},
	})
}

func (api *API) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (api *API) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapped.statusCode).
			Dur("duration", time.Since(start)).
			Msg("API request")
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
