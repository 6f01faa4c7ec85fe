package templates

// prebuilt is the seven templates the original seeds on startup
// (seedPrebuiltTemplates in PrebuiltTemplates.h): news, ecommerce, blog,
// corporate, documentation, forum, social-media. Values are carried over
// verbatim from the original so a crawl started against "news-site"
// behaves the same whichever implementation runs it.
var prebuilt = []Definition{
	{
		Name:        "news-site",
		Description: "Template for news websites",
		Config: ConfigOverrides{
			MaxPages:            intPtr(500),
			MaxDepth:            intPtr(3),
			SpaRenderingEnabled: boolPtr(true),
			ExtractTextContent:  boolPtr(true),
			PolitenessDelayMs:   intPtr(1000),
		},
		Patterns: SelectorPatterns{
			ArticleSelectors: []string{"article", ".post", ".story"},
			TitleSelectors:   []string{"h1", ".headline", ".title"},
			ContentSelectors: []string{".content", ".body", ".article-body"},
		},
	},
	{
		Name:        "ecommerce-site",
		Description: "Template for ecommerce product listings",
		Config: ConfigOverrides{
			MaxPages:           intPtr(800),
			MaxDepth:           intPtr(4),
			ExtractTextContent: boolPtr(true),
			PolitenessDelayMs:  intPtr(800),
		},
		Patterns: SelectorPatterns{
			ArticleSelectors: []string{".product", ".product-item", ".product-card"},
			TitleSelectors:   []string{"h1", ".product-title", ".title"},
			ContentSelectors: []string{".description", ".product-description", ".details"},
		},
	},
	{
		Name:        "blog-site",
		Description: "Template for personal blogs and content management systems",
		Config: ConfigOverrides{
			MaxPages:            intPtr(300),
			MaxDepth:            intPtr(2),
			SpaRenderingEnabled: boolPtr(false),
			ExtractTextContent:  boolPtr(true),
			PolitenessDelayMs:   intPtr(1200),
		},
		Patterns: SelectorPatterns{
			ArticleSelectors: []string{"article", ".post", ".blog-post", ".entry"},
			TitleSelectors:   []string{"h1", ".post-title", ".entry-title", ".blog-title"},
			ContentSelectors: []string{".content", ".post-content", ".entry-content", ".blog-content"},
		},
	},
	{
		Name:        "corporate-site",
		Description: "Template for business websites and corporate pages",
		Config: ConfigOverrides{
			MaxPages:            intPtr(150),
			MaxDepth:            intPtr(2),
			SpaRenderingEnabled: boolPtr(false),
			ExtractTextContent:  boolPtr(true),
			PolitenessDelayMs:   intPtr(1000),
		},
		Patterns: SelectorPatterns{
			ArticleSelectors: []string{".page-content", ".main-content", ".content", ".page"},
			TitleSelectors:   []string{"h1", ".page-title", ".title", ".heading"},
			ContentSelectors: []string{".content", ".main-content", ".page-content", ".body"},
		},
	},
	{
		Name:        "documentation-site",
		Description: "Template for technical documentation and API references",
		Config: ConfigOverrides{
			MaxPages:            intPtr(1000),
			MaxDepth:            intPtr(5),
			SpaRenderingEnabled: boolPtr(true),
			ExtractTextContent:  boolPtr(true),
			PolitenessDelayMs:   intPtr(600),
		},
		Patterns: SelectorPatterns{
			ArticleSelectors: []string{".documentation", ".doc-content", ".content", ".page"},
			TitleSelectors:   []string{"h1", ".page-title", ".doc-title", ".title"},
			ContentSelectors: []string{".content", ".doc-content", ".main-content", ".body"},
		},
	},
	{
		Name:        "forum-site",
		Description: "Template for discussion forums and community sites",
		Config: ConfigOverrides{
			MaxPages:            intPtr(400),
			MaxDepth:            intPtr(3),
			SpaRenderingEnabled: boolPtr(false),
			ExtractTextContent:  boolPtr(true),
			PolitenessDelayMs:   intPtr(1500),
		},
		Patterns: SelectorPatterns{
			ArticleSelectors: []string{".post", ".topic", ".thread", ".message"},
			TitleSelectors:   []string{"h1", ".post-title", ".topic-title", ".thread-title"},
			ContentSelectors: []string{".content", ".post-content", ".message-content", ".body"},
		},
	},
	{
		Name:        "social-media",
		Description: "Template for social platforms and user-generated content",
		Config: ConfigOverrides{
			MaxPages:            intPtr(200),
			MaxDepth:            intPtr(2),
			SpaRenderingEnabled: boolPtr(true),
			ExtractTextContent:  boolPtr(true),
			PolitenessDelayMs:   intPtr(2000),
		},
		Patterns: SelectorPatterns{
			ArticleSelectors: []string{".post", ".tweet", ".status", ".update"},
			TitleSelectors:   []string{"h1", ".post-title", ".status-title", ".title"},
			ContentSelectors: []string{".content", ".post-content", ".status-content", ".body"},
		},
	},
}

// SeedPrebuilt upserts the seven prebuilt templates into reg. Called once
// at process startup, before any on-disk templates are loaded, so a
// user-supplied template file can still override a prebuilt name.
func SeedPrebuilt(reg *Registry) {
	for _, def := range prebuilt {
		// Values above are known-valid; Upsert only fails on malformed
		// input, which these literals never are.
		_ = reg.Upsert(def)
	}
}
