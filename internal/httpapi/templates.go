package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rohmanhakim/search-engine-core/internal/templates"
)

// templateDTO is the wire shape for crawl-template CRUD, matching
// spec.md §6's on-disk JSON fields.
type templateDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Config      struct {
		MaxPages            *int  `json:"maxPages,omitempty"`
		MaxDepth            *int  `json:"maxDepth,omitempty"`
		SpaRenderingEnabled *bool `json:"spaRenderingEnabled,omitempty"`
		ExtractTextContent  *bool `json:"extractTextContent,omitempty"`
		PolitenessDelay     *int  `json:"politenessDelay,omitempty"`
	} `json:"config"`
	Patterns struct {
		ArticleSelectors []string `json:"articleSelectors,omitempty"`
		TitleSelectors   []string `json:"titleSelectors,omitempty"`
		ContentSelectors []string `json:"contentSelectors,omitempty"`
	} `json:"patterns"`
}

func toTemplateDTO(def templates.Definition) templateDTO {
	var dto templateDTO
	dto.Name = def.Name
	dto.Description = def.Description
	dto.Config.MaxPages = def.Config.MaxPages
	dto.Config.MaxDepth = def.Config.MaxDepth
	dto.Config.SpaRenderingEnabled = def.Config.SpaRenderingEnabled
	dto.Config.ExtractTextContent = def.Config.ExtractTextContent
	dto.Config.PolitenessDelay = def.Config.PolitenessDelayMs
	dto.Patterns.ArticleSelectors = def.Patterns.ArticleSelectors
	dto.Patterns.TitleSelectors = def.Patterns.TitleSelectors
	dto.Patterns.ContentSelectors = def.Patterns.ContentSelectors
	return dto
}

func (api *API) listTemplates(w http.ResponseWriter, r *http.Request) {
	list := api.templates.List()
	out := make([]templateDTO, 0, len(list))
	for _, def := range list {
		out = append(out, toTemplateDTO(def))
	}
	api.sendJSON(w, http.StatusOK, map[string]interface{}{"templates": out})
}

func (api *API) getTemplate(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	def, err := api.templates.Get(name)
	if err != nil {
		api.sendError(w, http.StatusNotFound, "template not found", err)
		return
	}
	api.sendJSON(w, http.StatusOK, toTemplateDTO(def))
}

func (api *API) upsertTemplate(w http.ResponseWriter, r *http.Request) {
	var dto templateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		api.sendError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	def := templates.Definition{
		Name:        dto.Name,
		Description: dto.Description,
		Config: templates.ConfigOverrides{
			MaxPages:            dto.Config.MaxPages,
			MaxDepth:            dto.Config.MaxDepth,
			SpaRenderingEnabled: dto.Config.SpaRenderingEnabled,
			ExtractTextContent:  dto.Config.ExtractTextContent,
			PolitenessDelayMs:   dto.Config.PolitenessDelay,
		},
		Patterns: templates.SelectorPatterns{
			ArticleSelectors: dto.Patterns.ArticleSelectors,
			TitleSelectors:   dto.Patterns.TitleSelectors,
			ContentSelectors: dto.Patterns.ContentSelectors,
		},
	}

	if err := api.templates.Upsert(def); err != nil {
		api.sendError(w, http.StatusBadRequest, "invalid template", err)
		return
	}
	api.sendJSON(w, http.StatusCreated, toTemplateDTO(def))
}

func (api *API) deleteTemplate(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if !api.templates.Remove(name) {
		api.sendError(w, http.StatusNotFound, "template not found", nil)
		return
	}
	api.sendJSON(w, http.StatusOK, map[string]interface{}{"name": name, "deleted": true})
}
