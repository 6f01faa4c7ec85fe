package query

import "fmt"

// ParseError is raised for every syntax problem the parser detects:
// unmatched quotes, stray boolean operators, or empty input.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("query parse error: %s", e.Message)
}

func errf(format string, args ...any) *ParseError {
	return &ParseError{Message: fmt.Sprintf(format, args...)}
}
