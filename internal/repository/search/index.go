package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/dlf/internal/db"
)

// indexStore is the consumer interface for index lifecycle and seeding (ISP).
type indexStore interface {
	db.IndexManager
	db.HashWriter
}

// Indexer creates the indexes of a core and loads documents into them.
type Indexer struct {
	store     indexStore
	keyPrefix string
	batchSize int
}

// DefaultBatchSize is the number of hashes written per pipelined round trip.
const DefaultBatchSize = 500

// titleWeight ranks title matches above matches in the other metadata text.
const titleWeight = 2

// NewIndexer creates an Indexer.
func NewIndexer(s indexStore, keyPrefix string) *Indexer {
	return &Indexer{store: s, keyPrefix: keyPrefix, batchSize: DefaultBatchSize}
}

// Ensure creates the metadata and fulltext indexes of core when missing.
// Each sortable field gets a sort key in both indexes.
// Returns the names of the indexes created.
func (ix *Indexer) Ensure(ctx context.Context, core string, sortable []string) ([]string, error) {
	ks, err := NewKeyspace(ix.keyPrefix, core)
	if err != nil {
		return nil, err
	}
	defs, err := buildIndexes(ks, sortable)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	var created []string
	for _, def := range defs {
		exists, err := ix.store.IndexExists(ctx, def.Name)
		if err != nil {
			return created, fmt.Errorf("check index %s: %w", def.Name, err)
		}
		if exists {
			continue
		}
		if err := ix.store.CreateIndex(ctx, def); err != nil {
			if errors.Is(err, db.ErrIndexExists) {
				continue
			}
			return created, fmt.Errorf("create index %s: %w", def.Name, err)
		}
		created = append(created, def.Name)
	}
	return created, nil
}

func buildIndexes(ks Keyspace, sortable []string) ([]*db.IndexDefinition, error) {
	doc := db.NewIndex(ks.DocIndex()).
		Prefix(ks.DocPrefix()).
		Numeric(fieldUID).
		Numeric(fieldPID).
		Tag(fieldToplevel).
		Tag(fieldPartOf).
		TagList(fieldCollections, ",").
		WeightedText(fieldTitle, titleWeight).
		Text(fieldContent)

	page := db.NewIndex(ks.PageIndex()).
		Prefix(ks.PagePrefix()).
		Numeric(fieldUID).
		Tag(fieldToplevelUID).
		Numeric(fieldPID).
		TagList(fieldCollections, ",").
		Numeric(fieldPage).
		Text(fieldFulltext)

	for _, name := range sortable {
		if !db.IsValidIdentifier(name) {
			return nil, fmt.Errorf("invalid sortable field %q", name)
		}
		doc.SortKey(sortPrefix + name)
		page.SortKey(sortPrefix + name)
	}

	docDef, err := doc.Build()
	if err != nil {
		return nil, err
	}
	pageDef, err := page.Build()
	if err != nil {
		return nil, err
	}
	return []*db.IndexDefinition{docDef, pageDef}, nil
}
