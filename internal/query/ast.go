// Package query implements the Query Parser (C10): a recursive-descent
// lexer/parser that lowers a user search query into the wire syntax the
// full-text index adapter accepts. Grounded on
// original_source/src/search_core/QueryParser.cpp.
package query

import "strings"

// Node is one AST node. Lower renders it to wire syntax: words pass
// through, quoted phrases stay quoted, filters become "@field:{value}",
// And joins children with a space, Or joins them with "|".
type Node interface {
	Lower() string
}

// Term is a single search word, or an exact phrase when Exact is true.
type Term struct {
	Value string
	Exact bool
}

func (t Term) Lower() string {
	if t.Exact {
		return `"` + t.Value + `"`
	}
	return t.Value
}

// Filter restricts a field to a value, e.g. domain:example.com.
type Filter struct {
	Field string
	Value string
}

func (f Filter) Lower() string {
	return "@" + f.Field + ":{" + f.Value + "}"
}

// And is a conjunction; children is never empty once parsed.
type And struct {
	Children []Node
}

func (a *And) Lower() string {
	parts := make([]string, len(a.Children))
	for i, c := range a.Children {
		parts[i] = c.Lower()
	}
	return strings.Join(parts, " ")
}

// Or is a disjunction; children is never empty once parsed.
type Or struct {
	Children []Node
}

func (o *Or) Lower() string {
	parts := make([]string, len(o.Children))
	for i, c := range o.Children {
		parts[i] = c.Lower()
	}
	return strings.Join(parts, "|")
}
