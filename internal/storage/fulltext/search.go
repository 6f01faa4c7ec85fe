package fulltext

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gomodule/redigo/redis"
)

// Search issues FT.SEARCH for q, mirroring buildSearchCommand /
// parseSearchResult from the original: the query string is extended
// with filter clauses and an optional language/category @field:{} tag,
// paged with LIMIT, sorted by score descending, and optionally
// highlighted on title/content.
func (x *Index) Search(q Query) (Response, error) {
	conn := x.pool.Get()
	defer conn.Close()

	cmd := buildSearchArgs(x.indexName, q)

	start := time.Now()
	reply, err := redis.Values(conn.Do("FT.SEARCH", cmd...))
	elapsed := time.Since(start)
	if err != nil {
		return Response{}, fmt.Errorf("search: %w", err)
	}

	resp := Response{IndexName: x.indexName, QueryTimeMs: elapsed.Milliseconds()}
	if len(reply) == 0 {
		return resp, nil
	}

	total, err := redis.Int(reply[0], nil)
	if err == nil {
		resp.TotalResults = total
	}

	for i := 1; i+1 < len(reply); i += 2 {
		key, _ := redis.String(reply[i], nil)
		fieldValues, fErr := redis.StringMap(reply[i+1], nil)
		if fErr != nil {
			continue
		}
		result := parseSearchResult(fieldValues)
		if result.URL != "" {
			_ = key
			resp.Results = append(resp.Results, result)
		}
	}

	return resp, nil
}

// SearchSimple runs a plain query string search with highlighting
// enabled, mirroring the original's searchSimple convenience wrapper.
func (x *Index) SearchSimple(query string, limit int) (Response, error) {
	return x.Search(Query{Query: query, Limit: limit, Highlight: true})
}

func buildSearchArgs(indexName string, q Query) redis.Args {
	var sb strings.Builder
	sb.WriteString(q.Query)
	for _, filter := range q.Filters {
		sb.WriteString(" ")
		sb.WriteString(filter)
	}
	if q.Language != "" {
		fmt.Fprintf(&sb, " @language:{%s}", escapeTag(q.Language))
	}
	if q.Category != "" {
		fmt.Fprintf(&sb, " @category:{%s}", escapeTag(q.Category))
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}

	args := redis.Args{}.Add(indexName, sb.String())
	args = args.Add("LIMIT", q.Offset, limit)
	args = args.Add("SORTBY", "score", "DESC")
	if q.Highlight {
		args = args.Add("HIGHLIGHT", "FIELDS", "2", "title", "content")
	}
	return args
}

// parseSearchResult reduces a field map straight from FT.SEARCH into a
// Result, truncating content to a 200-character snippet while keeping
// the full field values for re-ranking.
func parseSearchResult(fields map[string]string) Result {
	content := fields["content"]
	result := Result{
		URL:         fields["url"],
		Title:       fields["title"],
		Domain:      fields["domain"],
		Description: fields["description"],
		Content:     content,
		Keywords:    fields["keywords"],
		Language:    fields["language"],
		Category:    fields["category"],
	}
	if len(content) > 200 {
		result.Snippet = content[:200] + "..."
	} else {
		result.Snippet = content
	}
	if scoreStr, ok := fields["score"]; ok {
		if score, err := strconv.ParseFloat(scoreStr, 64); err == nil {
			result.Score = score
		}
	}
	if indexedStr, ok := fields["indexed_at"]; ok {
		if unix, err := strconv.ParseInt(indexedStr, 10, 64); err == nil {
			result.IndexedAt = time.Unix(unix, 0).UTC()
		}
	}
	return result
}

// Suggest queries the FT.SUGGET autocomplete dictionary (the
// "<index>:suggestions" suggestion key the original builds).
func (x *Index) Suggest(prefix string, limit int) ([]string, error) {
	conn := x.pool.Get()
	defer conn.Close()

	if limit <= 0 {
		limit = 5
	}

	reply, err := redis.Strings(conn.Do("FT.SUGGET", x.indexName+":suggestions", prefix, "MAX", limit))
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}
	return reply, nil
}

// AddSuggestion feeds the autocomplete dictionary FT.SUGGET reads from.
func (x *Index) AddSuggestion(term string, score float64) error {
	conn := x.pool.Get()
	defer conn.Close()

	_, err := conn.Do("FT.SUGADD", x.indexName+":suggestions", term, score)
	if err != nil {
		return fmt.Errorf("add suggestion: %w", err)
	}
	return nil
}
