package fulltext

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildSearchArgs_IncludesFiltersAndLanguage(t *testing.T) {
	args := buildSearchArgs("search_index", Query{
		Query:    "fox",
		Filters:  []string{"@domain:{example.com}"},
		Language: "en",
		Limit:    5,
		Offset:   0,
	})

	assert.Equal(t, "search_index", args[0])
	assert.Equal(t, "fox @domain:{example.com} @language:{en}", args[1])
	assert.Contains(t, args, "LIMIT")
	assert.Contains(t, args, "SORTBY")
}

func TestBuildSearchArgs_DefaultsLimitToTen(t *testing.T) {
	args := buildSearchArgs("idx", Query{Query: "fox"})
	found := false
	for i, a := range args {
		if a == "LIMIT" {
			assert.Equal(t, 0, args[i+1])
			assert.Equal(t, 10, args[i+2])
			found = true
		}
	}
	assert.True(t, found)
}

func TestBuildSearchArgs_Highlight(t *testing.T) {
	args := buildSearchArgs("idx", Query{Query: "fox", Highlight: true})
	assert.Contains(t, args, "HIGHLIGHT")
}

func TestParseSearchResult_TruncatesLongContentToSnippet(t *testing.T) {
	longContent := ""
	for i := 0; i < 250; i++ {
		longContent += "a"
	}
	result := parseSearchResult(map[string]string{
		"url":     "https://example.com",
		"title":   "Title",
		"domain":  "example.com",
		"content": longContent,
		"score":   "1.5",
	})
	assert.Equal(t, "https://example.com", result.URL)
	assert.Equal(t, 203, len(result.Snippet))
	assert.Equal(t, 1.5, result.Score)
}

func TestParseSearchResult_ShortContentPassesThrough(t *testing.T) {
	result := parseSearchResult(map[string]string{
		"url":     "https://example.com",
		"content": "short",
	})
	assert.Equal(t, "short", result.Snippet)
}

func TestParseSearchResult_CarriesFullFieldsForReranking(t *testing.T) {
	result := parseSearchResult(map[string]string{
		"url":         "https://example.com",
		"title":       "Title",
		"description": "A description",
		"content":     "short",
		"domain":      "example.com",
		"keywords":    "a|b",
		"indexed_at":  "1700000000",
	})
	assert.Equal(t, "A description", result.Description)
	assert.Equal(t, "short", result.Content)
	assert.Equal(t, "a|b", result.Keywords)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), result.IndexedAt)
}

func TestEscapeTag_NeutralizesSpecialCharacters(t *testing.T) {
	escaped := escapeTag("a.b-c")
	assert.Equal(t, `a\.b\-c`, escaped)
}

func TestFieldsFor_OmitsEmptyOptionalFields(t *testing.T) {
	doc := Document{
		URL:       "https://example.com",
		Title:     "T",
		Content:   "C",
		Domain:    "example.com",
		IndexedAt: time.Unix(100, 0),
		Score:     2.0,
	}
	fields := fieldsFor(doc)
	assertNoKey(t, fields, "description")
	assertNoKey(t, fields, "keywords")
}

func TestFieldsFor_JoinsKeywordsWithPipe(t *testing.T) {
	doc := Document{URL: "https://example.com", Keywords: []string{"a", "b", "c"}}
	fields := fieldsFor(doc)
	assert.Equal(t, "a|b|c", valueFor(fields, "keywords"))
}

func assertNoKey(t *testing.T, fields []string, key string) {
	t.Helper()
	for i := 0; i < len(fields); i += 2 {
		assert.NotEqual(t, key, fields[i])
	}
}

func valueFor(fields []string, key string) string {
	for i := 0; i+1 < len(fields); i += 2 {
		if fields[i] == key {
			return fields[i+1]
		}
	}
	return ""
}
