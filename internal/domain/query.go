package domain

import (
	"encoding/json"
	"strings"
)

// Query is the normalized free-text input to the routing core. Callers may
// send either a plain string or a wrapped {"query": "..."} object; both shapes
// collapse to a single text field at this boundary so nothing downstream
// branches on shape.
type Query struct {
	Text string
}

// NewQuery normalizes raw text into a Query.
func NewQuery(text string) (Query, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Query{}, ErrInvalidQuery
	}
	return Query{Text: text}, nil
}

type wrappedQuery struct {
	Query string `json:"query"`
}

// ParseQueryJSON accepts the two wire shapes for a query: a bare JSON string
// or an object carrying a "query" field.
func ParseQueryJSON(raw []byte) (Query, error) {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return NewQuery(text)
	}

	var wrapped wrappedQuery
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return Query{}, NewDomainErrorWithCause(ErrCodeInvalidQuery, "query must be a string or {\"query\": ...} object", err)
	}
	return NewQuery(wrapped.Query)
}
