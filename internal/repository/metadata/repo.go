// Package metadata reads the metadata field configuration from the catalog.
package metadata

import (
	"context"
	"database/sql"
	"fmt"

	dommeta "github.com/kailas-cloud/dlf/internal/domain/metadata"
)

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Repo implements usecase/search.MetadataReader.
type Repo struct {
	db querier
}

// New creates a metadata repository.
func New(db querier) *Repo {
	return &Repo{db: db}
}

// Save inserts or replaces the field configuration of storage pid.
// sorting orders fields in listings (ascending).
func (r *Repo) Save(ctx context.Context, pid int, f dommeta.Field, sorting int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO metadata_fields (pid, index_name, label, is_listed, is_sortable, sorting)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (pid, index_name) DO UPDATE SET
			label = excluded.label,
			is_listed = excluded.is_listed,
			is_sortable = excluded.is_sortable,
			sorting = excluded.sorting`,
		pid, f.IndexName(), f.Label(), f.IsListed(), f.IsSortable(), sorting)
	if err != nil {
		return fmt.Errorf("save metadata field %s: %w", f.IndexName(), err)
	}
	return nil
}

// FindListed returns the fields shown in result listings of storage pid.
func (r *Repo) FindListed(ctx context.Context, pid int) ([]dommeta.Field, error) {
	return r.find(ctx, "is_listed", pid)
}

// FindSortable returns the fields results of storage pid may be ordered by.
func (r *Repo) FindSortable(ctx context.Context, pid int) ([]dommeta.Field, error) {
	return r.find(ctx, "is_sortable", pid)
}

func (r *Repo) find(ctx context.Context, flag string, pid int) ([]dommeta.Field, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT index_name, label, is_listed, is_sortable FROM metadata_fields WHERE pid = ? AND "+
			flag+" = 1 ORDER BY sorting, uid",
		pid)
	if err != nil {
		return nil, fmt.Errorf("query metadata fields: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []dommeta.Field
	for rows.Next() {
		var indexName, label string
		var listed, sortable bool
		if err := rows.Scan(&indexName, &label, &listed, &sortable); err != nil {
			return nil, fmt.Errorf("scan metadata field: %w", err)
		}
		f, err := dommeta.NewField(indexName, label, listed, sortable)
		if err != nil {
			continue
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate metadata fields: %w", err)
	}
	return out, nil
}
