// Package templates implements the crawl-templates feature (spec.md §6):
// named, reusable bundles of CrawlConfig overrides and extraction selector
// patterns. It is grounded on the original implementation's
// include/search_engine/crawler/templates/ headers (TemplateTypes.h,
// TemplateRegistry.h, TemplateValidator.h, TemplateApplier.h,
// TemplateStorage.h, PrebuiltTemplates.h), which spec.md's distillation
// dropped but SPEC_FULL.md restores.
package templates

// ConfigOverrides mirrors the original's CrawlConfigOverrides: every field
// is optional, so applying a template only changes the knobs it names and
// leaves the rest of a config.Config builder untouched.
type ConfigOverrides struct {
	MaxPages            *int
	MaxDepth            *int
	SpaRenderingEnabled *bool
	ExtractTextContent  *bool
	PolitenessDelayMs   *int
}

// SelectorPatterns mirrors the original's SelectorPatterns: CSS selector
// lists consulted by the Content Parser when extracting article bodies,
// titles, and main content.
type SelectorPatterns struct {
	ArticleSelectors []string
	TitleSelectors   []string
	ContentSelectors []string
}

// Definition mirrors the original's TemplateDefinition.
type Definition struct {
	Name        string
	Description string
	Config      ConfigOverrides
	Patterns    SelectorPatterns
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }
