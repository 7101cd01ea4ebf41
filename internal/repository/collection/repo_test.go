package collection

import (
	"context"
	"testing"

	domcol "github.com/kailas-cloud/dlf/internal/domain/collection"
	"github.com/kailas-cloud/dlf/internal/repository/catalogtest"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	repo := New(catalogtest.Open(t).DB())
	ctx := context.Background()
	for _, c := range []domcol.Collection{
		domcol.Reconstruct(1, 5, "maps", "Maps"),
		domcol.Reconstruct(2, 5, "letters", "Letters"),
		domcol.Reconstruct(3, 9, "other", "Other"),
	} {
		if err := repo.Save(ctx, c); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	return repo
}

func TestFindByUIDs_RequestOrder(t *testing.T) {
	repo := newTestRepo(t)

	cols, err := repo.FindByUIDs(context.Background(), 5, []int{2, 1, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cols) != 2 {
		t.Fatalf("expected 2 collections, got %d", len(cols))
	}
	if cols[0].IndexName() != "letters" || cols[1].IndexName() != "maps" {
		t.Fatalf("unexpected order: %s, %s", cols[0].IndexName(), cols[1].IndexName())
	}
}

func TestFindByUIDs_OtherStorageSkipped(t *testing.T) {
	repo := newTestRepo(t)

	cols, err := repo.FindByUIDs(context.Background(), 5, []int{3, 99})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cols) != 0 {
		t.Fatalf("expected no collections, got %v", cols)
	}
}

func TestFindByUIDs_Empty(t *testing.T) {
	repo := newTestRepo(t)

	cols, err := repo.FindByUIDs(context.Background(), 5, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cols != nil {
		t.Fatalf("expected nil, got %v", cols)
	}
}

func TestSave_Upserts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Save(ctx, domcol.Reconstruct(1, 5, "atlases", "Atlases")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	cols, err := repo.FindByUIDs(ctx, 5, []int{1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cols) != 1 || cols[0].IndexName() != "atlases" || cols[0].Label() != "Atlases" {
		t.Fatalf("unexpected collection: %+v", cols)
	}
}
