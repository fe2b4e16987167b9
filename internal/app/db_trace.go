package app

import (
	"regexp"
	"strings"
)

// Span attribute values stay readable when multiline SQL is collapsed and
// capped; 512 bytes covers the longest querybuilder statement we emit.
const maxTracedQueryLength = 512

var collapseWhitespace = regexp.MustCompile(`\s+`)

func formatDBQueryForTrace(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	normalized := collapseWhitespace.ReplaceAllString(query, " ")
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}

	return normalized[:maxTracedQueryLength] + "..."
}
