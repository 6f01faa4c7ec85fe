package templates

import (
	"fmt"
	"strings"
)

// NormalizeName trims whitespace and lowercases a template name, mirroring
// the original's normalizeTemplateName: templates are persisted and looked
// up by this normalized form, never the caller's raw casing.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ValidName reports whether name (already normalized or not) is a legal
// template name: 1..50 chars, alphanumeric plus '-'/'_', per the original's
// isValidTemplateName and spec.md §6.
func ValidName(name string) bool {
	if name == "" || len(name) > 50 {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// Validate checks a Definition against the original's validateTemplateJson
// bounds: name shape plus sane caps on the numeric config overrides, so a
// malformed template file or API payload can't install a pathological
// crawl config (e.g. maxDepth=1000000).
func Validate(def Definition) error {
	name := NormalizeName(def.Name)
	if !ValidName(name) {
		return fmt.Errorf("%w: name must be 1-50 characters, alphanumeric with hyphens/underscores only", ErrInvalidTemplate)
	}
	if def.Config.MaxPages != nil {
		if *def.Config.MaxPages <= 0 || *def.Config.MaxPages > 10000 {
			return fmt.Errorf("%w: config.maxPages must be between 1 and 10000", ErrInvalidTemplate)
		}
	}
	if def.Config.MaxDepth != nil {
		if *def.Config.MaxDepth <= 0 || *def.Config.MaxDepth > 10 {
			return fmt.Errorf("%w: config.maxDepth must be between 1 and 10", ErrInvalidTemplate)
		}
	}
	if def.Config.PolitenessDelayMs != nil {
		if *def.Config.PolitenessDelayMs < 0 || *def.Config.PolitenessDelayMs > 60000 {
			return fmt.Errorf("%w: config.politenessDelay must be between 0 and 60000 ms", ErrInvalidTemplate)
		}
	}
	return nil
}
