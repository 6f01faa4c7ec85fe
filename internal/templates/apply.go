package templates

import (
	"time"

	"github.com/rohmanhakim/search-engine-core/internal/config"
)

// Apply overlays def's non-nil config overrides and non-empty selector
// patterns onto the builder b, mirroring the original's
// applyTemplateToConfig. It returns b for chaining with further WithX
// calls before Build().
//
// def.Config.ExtractTextContent has no counterpart in config.Config: the
// Content Parser here always extracts text content, there being no
// extraction-skipping mode to toggle (see DESIGN.md). The field is kept on
// Definition for JSON round-trip parity with the original template schema
// but is not applied.
func Apply(def Definition, b *config.Config) *config.Config {
	if def.Config.MaxPages != nil {
		b = b.WithMaxPages(*def.Config.MaxPages)
	}
	if def.Config.MaxDepth != nil {
		b = b.WithMaxDepth(*def.Config.MaxDepth)
	}
	if def.Config.PolitenessDelayMs != nil {
		b = b.WithPolitenessDelay(time.Duration(*def.Config.PolitenessDelayMs) * time.Millisecond)
	}
	if def.Config.SpaRenderingEnabled != nil {
		b = b.WithSpaRenderingEnabled(*def.Config.SpaRenderingEnabled)
	}
	if len(def.Patterns.ArticleSelectors) > 0 {
		b = b.WithArticleSelectors(def.Patterns.ArticleSelectors)
	}
	if len(def.Patterns.TitleSelectors) > 0 {
		b = b.WithTitleSelectors(def.Patterns.TitleSelectors)
	}
	if len(def.Patterns.ContentSelectors) > 0 {
		b = b.WithContentSelectors(def.Patterns.ContentSelectors)
	}
	return b
}
