package db

import "github.com/kailas-cloud/dlf/internal/domain/search/filter"

// Query is the input for a filtered, paginated FT.SEARCH.
type Query struct {
	IndexName string
	Filters   filter.Expression
	// Text is the free-text term matched against TextField. Empty or "*" matches all.
	Text         string
	TextField    string
	SortBy       string
	SortDesc     bool
	Offset       int
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}
