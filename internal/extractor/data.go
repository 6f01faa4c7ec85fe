package extractor

import "golang.org/x/net/html"

// ExtractionResult holds the extraction outcome.
// DocumentRoot is the original parsed HTML document.
// ContentNode is the extracted meaningful content node (semantic container).
type ExtractionResult struct {
	DocumentRoot *html.Node
	ContentNode  *html.Node
}

// ExtractParam tunes the Layer 3 (chrome-removal + text-density) scoring
// pass. Zero value falls back to DefaultExtractParam.
type ExtractParam struct {
	// LinkDensityThreshold penalizes candidate nodes whose text is
	// mostly anchor text (nav/link farms) when scoring content blocks.
	LinkDensityThreshold float64
	// BodySpecificityBias is how much smaller a child candidate's score
	// may be relative to <body>'s and still be preferred over it.
	BodySpecificityBias float64
}

// DefaultExtractParam is used whenever a caller constructs a
// DomExtractor without specifying params.
func DefaultExtractParam() ExtractParam {
	return ExtractParam{
		LinkDensityThreshold: 0.5,
		BodySpecificityBias:  0.7,
	}
}
