package templates

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/rohmanhakim/search-engine-core/pkg/fileutil"
)

// definitionDTO is the on-disk/wire JSON shape for a Definition, matching
// spec.md §6's crawl-template JSON fields and the original's
// TemplateStorage.h toJson/fromJson.
type definitionDTO struct {
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

func toDTO(def Definition) definitionDTO {
	var dto definitionDTO
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

func fromDTO(dto definitionDTO) Definition {
	return Definition{
		Name:        dto.Name,
		Description: dto.Description,
		Config: ConfigOverrides{
			MaxPages:            dto.Config.MaxPages,
			MaxDepth:            dto.Config.MaxDepth,
			SpaRenderingEnabled: dto.Config.SpaRenderingEnabled,
			ExtractTextContent:  dto.Config.ExtractTextContent,
			PolitenessDelayMs:   dto.Config.PolitenessDelay,
		},
		Patterns: SelectorPatterns{
			ArticleSelectors: dto.Patterns.ArticleSelectors,
			TitleSelectors:   dto.Patterns.TitleSelectors,
			ContentSelectors: dto.Patterns.ContentSelectors,
		},
	}
}

// LoadFile reads a JSON array of template definitions from path and
// upserts each into reg, mirroring the original's loadTemplatesFromFile.
func LoadFile(reg *Registry, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read template file %s: %w", path, err)
	}
	var dtos []definitionDTO
	if err := json.Unmarshal(raw, &dtos); err != nil {
		return fmt.Errorf("parse template file %s: %w", path, err)
	}
	for _, dto := range dtos {
		if err := reg.Upsert(fromDTO(dto)); err != nil {
			return fmt.Errorf("template %q in %s: %w", dto.Name, path, err)
		}
	}
	return nil
}

// LoadDirectory walks dirPath's top level for *.json files, each holding
// one template definition object (not an array), and upserts every valid
// one into reg. A malformed file is logged and skipped rather than
// aborting the whole load, matching the original's loadTemplatesFromDirectory
// (catch per-file, continue).
func LoadDirectory(reg *Registry, dirPath string) error {
	info, err := os.Stat(dirPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat template directory %s: %w", dirPath, err)
	}
	if !info.IsDir() {
		return LoadFile(reg, dirPath)
	}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("read template directory %s: %w", dirPath, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || fileutil.GetFileExtension(entry.Name()) != "json" {
			continue
		}
		path := filepath.Join(dirPath, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("failed to read template file")
			continue
		}
		var dto definitionDTO
		if err := json.Unmarshal(raw, &dto); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("failed to parse template file")
			continue
		}
		if dto.Name == "" {
			continue
		}
		if err := reg.Upsert(fromDTO(dto)); err != nil {
			log.Warn().Err(err).Str("path", path).Str("name", dto.Name).Msg("invalid template file")
			continue
		}
	}
	return nil
}

// SaveDirectory writes every registered template to dirPath as
// "<name>.json", mirroring the original's saveTemplatesToDirectory. Used
// by operator tooling to snapshot a registry (e.g. after API-driven
// template edits) back onto the templates path for the next restart.
func SaveDirectory(reg *Registry, dirPath string) error {
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return fmt.Errorf("create template directory %s: %w", dirPath, err)
	}
	for _, def := range reg.List() {
		raw, err := json.MarshalIndent(toDTO(def), "", "  ")
		if err != nil {
			return fmt.Errorf("marshal template %q: %w", def.Name, err)
		}
		path := filepath.Join(dirPath, def.Name+".json")
		if err := os.WriteFile(path, raw, 0o644); err != nil {
			return fmt.Errorf("write template %q to %s: %w", def.Name, path, err)
		}
	}
	return nil
}
