// Package document reads the catalogued documents listed in feeds.
package document

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	domdoc "github.com/kailas-cloud/dlf/internal/domain/document"
)

// DefaultLimit applies when a feed asks for no positive limit.
const DefaultLimit = 50

// maxAncestors bounds the walk up partof chains.
const maxAncestors = 16

//nolint:interfacebloat // catalog writes use a transaction
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Repo implements usecase/feed.DocumentReader.
type Repo struct {
	db querier
}

// New creates a document repository.
func New(db querier) *Repo {
	return &Repo{db: db}
}

// Save inserts or replaces a document and its collection memberships.
func (r *Repo) Save(ctx context.Context, doc domdoc.Document, collectionUIDs []int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save document %d: %w", doc.UID(), err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (uid, pid, record_id, title, partof, volume, author, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (uid) DO UPDATE SET
			pid = excluded.pid,
			record_id = excluded.record_id,
			title = excluded.title,
			partof = excluded.partof,
			volume = excluded.volume,
			author = excluded.author,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		doc.UID(), doc.PID(), doc.RecordID(), doc.Title(), doc.PartOf(), doc.Volume(), doc.Author(),
		doc.CreatedAt().Unix(), doc.UpdatedAt().Unix())
	if err != nil {
		return fmt.Errorf("save document %d: %w", doc.UID(), err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM document_collections WHERE document_uid = ?", doc.UID()); err != nil {
		return fmt.Errorf("clear collections of document %d: %w", doc.UID(), err)
	}
	for _, colUID := range collectionUIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO document_collections (document_uid, collection_uid) VALUES (?, ?)",
			doc.UID(), colUID); err != nil {
			return fmt.Errorf("link document %d to collection %d: %w", doc.UID(), colUID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit document %d: %w", doc.UID(), err)
	}
	return nil
}

// FindAllByCollectionsLimited returns up to limit documents, most recently updated first.
// With collection uids, only members of any of them are returned.
// Documents of multi-volume works carry the title of their nearest titled ancestor.
func (r *Repo) FindAllByCollectionsLimited(ctx context.Context, collectionUIDs []int, limit int) ([]domdoc.Document, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	var (
		query strings.Builder
		args  []any
	)
	query.WriteString("SELECT d.uid, d.pid, d.record_id, d.title, d.partof, d.volume, d.author, d.created_at, d.updated_at FROM documents d")
	if len(collectionUIDs) > 0 {
		query.WriteString(" WHERE EXISTS (SELECT 1 FROM document_collections dc WHERE dc.document_uid = d.uid AND dc.collection_uid IN (")
		query.WriteString(strings.TrimSuffix(strings.Repeat("?,", len(collectionUIDs)), ","))
		query.WriteString("))")
		for _, uid := range collectionUIDs {
			args = append(args, uid)
		}
	}
	query.WriteString(" ORDER BY d.updated_at DESC, d.uid DESC LIMIT ?")
	args = append(args, limit)

	docs, err := r.scanDocuments(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}

	for i, doc := range docs {
		if !doc.HasParent() {
			continue
		}
		title, err := r.superiorTitle(ctx, doc.PartOf())
		if err != nil {
			return nil, err
		}
		docs[i] = doc.WithSuperiorTitle(title)
	}
	return docs, nil
}

func (r *Repo) scanDocuments(ctx context.Context, query string, args ...any) ([]domdoc.Document, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domdoc.Document
	for rows.Next() {
		var (
			uid, pid, partOf             int
			recordID, title, vol, author string
			created, updated             int64
		)
		if err := rows.Scan(&uid, &pid, &recordID, &title, &partOf, &vol, &author, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc, err := domdoc.New(uid, pid, recordID, title, partOf, vol, author,
			time.Unix(created, 0).UTC(), time.Unix(updated, 0).UTC())
		if err != nil {
			continue
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}

// superiorTitle walks up from uid to the first ancestor with a title.
// A broken or cyclic chain yields an empty title.
func (r *Repo) superiorTitle(ctx context.Context, uid int) (string, error) {
	visited := make(map[int]bool, maxAncestors)
	for range maxAncestors {
		if uid <= 0 || visited[uid] {
			return "", nil
		}
		visited[uid] = true

		var title string
		var partOf int
		err := r.db.QueryRowContext(ctx, "SELECT title, partof FROM documents WHERE uid = ?", uid).Scan(&title, &partOf)
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		if err != nil {
			return "", fmt.Errorf("query superior of document %d: %w", uid, err)
		}
		if title != "" {
			return title, nil
		}
		uid = partOf
	}
	return "", nil
}
