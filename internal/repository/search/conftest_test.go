package search

import (
	"context"
	"testing"

	"github.com/kailas-cloud/dlf/internal/db"
)

// mockStore implements the consumer interfaces for tests.
type mockStore struct {
	searchFn       func(ctx context.Context, q *db.Query) (*db.SearchResult, error)
	searchMultiFn  func(ctx context.Context, qs []*db.Query) ([]*db.SearchResult, error)
	hgetAllMultiFn func(ctx context.Context, keys []string) ([]map[string]string, error)
	createIndexFn  func(ctx context.Context, def *db.IndexDefinition) error
	indexExistsFn  func(ctx context.Context, name string) (bool, error)
	hsetMultiFn    func(ctx context.Context, items []db.HashSetItem) error
}

func (m *mockStore) Search(ctx context.Context, q *db.Query) (*db.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchMulti(ctx context.Context, qs []*db.Query) ([]*db.SearchResult, error) {
	if m.searchMultiFn != nil {
		return m.searchMultiFn(ctx, qs)
	}
	out := make([]*db.SearchResult, len(qs))
	for i := range out {
		out[i] = &db.SearchResult{}
	}
	return out, nil
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hgetAllMultiFn != nil {
		return m.hgetAllMultiFn(ctx, keys)
	}
	return make([]map[string]string, len(keys)), nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if m.hsetMultiFn != nil {
		return m.hsetMultiFn(ctx, items)
	}
	return nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, Config{KeyPrefix: "dlf:", FulltextMaxHits: 50}), ms
}
