// Package catalogtest opens throwaway catalog databases for repository tests.
package catalogtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/kailas-cloud/dlf/internal/db/sqlite"
)

// Open creates a migrated catalog in a temporary directory, closed on test cleanup.
func Open(t *testing.T) *sqlite.Catalog {
	t.Helper()
	c, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}
