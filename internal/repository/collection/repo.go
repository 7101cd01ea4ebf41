package collection

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	domcol "github.com/kailas-cloud/dlf/internal/domain/collection"
)

// querier is the consumer interface over the catalog connection (ISP).
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Repo implements usecase/search.CollectionReader over the SQLite catalog.
type Repo struct {
	db querier
}

// New creates a collection repository.
func New(db querier) *Repo {
	return &Repo{db: db}
}

// Save inserts or replaces a collection.
func (r *Repo) Save(ctx context.Context, col domcol.Collection) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO collections (uid, pid, index_name, label) VALUES (?, ?, ?, ?)
		ON CONFLICT (uid) DO UPDATE SET pid = excluded.pid, index_name = excluded.index_name, label = excluded.label`,
		col.UID(), col.PID(), col.IndexName(), col.Label())
	if err != nil {
		return fmt.Errorf("save collection %d: %w", col.UID(), err)
	}
	return nil
}

// FindByUIDs returns the collections of storage pid among uids, in the order of uids.
// Unknown uids and collections of other storage boundaries are skipped.
func (r *Repo) FindByUIDs(ctx context.Context, pid int, uids []int) ([]domcol.Collection, error) {
	if len(uids) == 0 {
		return nil, nil
	}

	args := make([]any, 0, len(uids)+1)
	args = append(args, pid)
	for _, uid := range uids {
		args = append(args, uid)
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT uid, pid, index_name, label FROM collections WHERE pid = ? AND uid IN ("+placeholders(len(uids))+")",
		args...)
	if err != nil {
		return nil, fmt.Errorf("query collections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	byUID := make(map[int]domcol.Collection, len(uids))
	for rows.Next() {
		var uid, colPID int
		var indexName, label string
		if err := rows.Scan(&uid, &colPID, &indexName, &label); err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		byUID[uid] = domcol.Reconstruct(uid, colPID, indexName, label)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collections: %w", err)
	}

	out := make([]domcol.Collection, 0, len(byUID))
	seen := make(map[int]bool, len(uids))
	for _, uid := range uids {
		col, ok := byUID[uid]
		if !ok || seen[uid] {
			continue
		}
		seen[uid] = true
		out = append(out, col)
	}
	return out, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
