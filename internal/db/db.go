package db

import (
	"context"
	"time"
)

// Store is the search backend as a whole. Consumers depend on the narrow
// sub-interfaces: the search repository reads, the indexer and seed loader write.
type Store interface {
	Pinger
	HashReader
	HashWriter
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashSetItem holds a single key+fields pair for pipelined HSET.
type HashSetItem struct {
	Key    string
	Fields map[string]string
}

// HashReader loads stored documents and pages by key.
type HashReader interface {
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
}

// HashWriter stores documents and pages.
type HashWriter interface {
	HSetMulti(ctx context.Context, items []HashSetItem) error
}

// IndexManager creates the per-core FT indexes.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher runs queries over FT indexes.
type Searcher interface {
	Search(ctx context.Context, q *Query) (*SearchResult, error)
	SearchMulti(ctx context.Context, qs []*Query) ([]*SearchResult, error)
}
