package httpapi

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"github.com/rohmanhakim/search-engine-core/internal/config"
	"github.com/rohmanhakim/search-engine-core/internal/queue"
	"github.com/rohmanhakim/search-engine-core/internal/templates"
)

// startCrawlRequest is the JSON body for POST /crawl.
type startCrawlRequest struct {
	SeedURLs             []string `json:"seed_urls"`
	MaxDepth              int      `json:"max_depth"`
	MaxPages              int      `json:"max_pages"`
	RestrictToSeedDomain  bool     `json:"restrict_to_seed_domain"`
	RespectRobotsTxt      bool     `json:"respect_robots_txt"`
	Template              string   `json:"template"`
}

func (api *API) startCrawl(w http.ResponseWriter, r *http.Request) {
	if api.crawlMgr == nil {
		api.sendError(w, http.StatusServiceUnavailable, "crawl manager not configured", nil)
		return
	}

	var req startCrawlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.sendError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if len(req.SeedURLs) == 0 {
		api.sendError(w, http.StatusBadRequest, "seed_urls is required", nil)
		return
	}

	seeds := make([]url.URL, 0, len(req.SeedURLs))
	for _, raw := range req.SeedURLs {
		u, err := url.Parse(raw)
		if err != nil {
			api.sendError(w, http.StatusBadRequest, "invalid seed url: "+raw, err)
			return
		}
		seeds = append(seeds, *u)
	}

	builder := config.WithDefault(seeds).WithRestrictToSeedDomain(req.RestrictToSeedDomain)

	if req.Template != "" {
		def, err := api.templates.Get(req.Template)
		if err != nil {
			api.sendError(w, http.StatusBadRequest, "unknown crawl template", err)
			return
		}
		builder = templates.Apply(def, builder)
	}

	if req.MaxDepth > 0 {
		builder = builder.WithMaxDepth(req.MaxDepth)
	}
	if req.MaxPages > 0 {
		builder = builder.WithMaxPages(req.MaxPages)
	}
	if req.RespectRobotsTxt {
		builder = builder.WithRespectRobotsTxt(true)
	}

	cfg, err := builder.Build()
	if err != nil {
		api.sendError(w, http.StatusBadRequest, "invalid crawl configuration", err)
		return
	}

	sessionID, err := api.crawlMgr.StartSession(cfg)
	if err != nil {
		api.sendError(w, http.StatusInternalServerError, "failed to start crawl session", err)
		return
	}

	api.sendJSON(w, http.StatusAccepted, map[string]interface{}{
		"session_id": sessionID,
	})
}

func (api *API) crawlStatus(w http.ResponseWriter, r *http.Request) {
	if api.crawlMgr == nil {
		api.sendError(w, http.StatusServiceUnavailable, "crawl manager not configured", nil)
		return
	}

	sessionID := mux.Vars(r)["sessionID"]
	status, err := api.crawlMgr.GetStatus(sessionID)
	if err != nil {
		api.sendError(w, http.StatusNotFound, "crawl session not found", err)
		return
	}
	stats, err := api.crawlMgr.GetStats(sessionID)
	if err != nil {
		api.sendError(w, http.StatusNotFound, "crawl session not found", err)
		return
	}

	api.sendJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"status":     status,
		"stats":      stats,
	})
}

func (api *API) stopCrawl(w http.ResponseWriter, r *http.Request) {
	if api.crawlMgr == nil {
		api.sendError(w, http.StatusServiceUnavailable, "crawl manager not configured", nil)
		return
	}

	sessionID := mux.Vars(r)["sessionID"]
	if err := api.crawlMgr.StopSession(sessionID); err != nil {
		api.sendError(w, http.StatusNotFound, "crawl session not found", err)
		return
	}
	api.sendJSON(w, http.StatusOK, map[string]interface{}{"session_id": sessionID, "stopped": true})
}

func (api *API) enqueueCrawlJob(w http.ResponseWriter, r *http.Request) {
	if api.jobQueue == nil {
		api.sendError(w, http.StatusServiceUnavailable, "job queue not configured", nil)
		return
	}

	var job queue.DomainJob
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		api.sendError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if job.Domain == "" {
		api.sendError(w, http.StatusBadRequest, "domain is required", nil)
		return
	}

	jobID, err := api.jobQueue.AddDomainCrawlJob(job)
	if err != nil {
		api.sendError(w, http.StatusInternalServerError, "failed to enqueue crawl job", err)
		return
	}

	api.sendJSON(w, http.StatusAccepted, map[string]interface{}{"job_id": jobID})
}

func (api *API) jobStats(w http.ResponseWriter, r *http.Request) {
	if api.jobQueue == nil {
		api.sendError(w, http.StatusServiceUnavailable, "job queue not configured", nil)
		return
	}

	stats, err := api.jobQueue.Stats()
	if err != nil {
		api.sendError(w, http.StatusInternalServerError, "failed to get job queue stats", err)
		return
	}

	api.sendJSON(w, http.StatusOK, stats)
}
