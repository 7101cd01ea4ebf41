// Package library reads the libraries feeds are published for.
package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kailas-cloud/dlf/internal/domain"
	"github.com/kailas-cloud/dlf/internal/domain/feed"
)

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Repo implements usecase/feed.LibraryReader.
type Repo struct {
	db querier
}

// New creates a library repository.
func New(db querier) *Repo {
	return &Repo{db: db}
}

// Save inserts or replaces a library.
func (r *Repo) Save(ctx context.Context, lib feed.Library) error {
	if lib.UID <= 0 {
		return fmt.Errorf("library uid must be positive")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO libraries (uid, label, website) VALUES (?, ?, ?)
		ON CONFLICT (uid) DO UPDATE SET label = excluded.label, website = excluded.website`,
		lib.UID, lib.Label, lib.Website)
	if err != nil {
		return fmt.Errorf("save library %d: %w", lib.UID, err)
	}
	return nil
}

// FindByUID returns the library or domain.ErrNotFound.
func (r *Repo) FindByUID(ctx context.Context, uid int) (feed.Library, error) {
	lib := feed.Library{UID: uid}
	err := r.db.QueryRowContext(ctx, "SELECT label, website FROM libraries WHERE uid = ?", uid).
		Scan(&lib.Label, &lib.Website)
	if errors.Is(err, sql.ErrNoRows) {
		return feed.Library{}, domain.ErrNotFound
	}
	if err != nil {
		return feed.Library{}, fmt.Errorf("query library %d: %w", uid, err)
	}
	return lib, nil
}
