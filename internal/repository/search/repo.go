// Package search executes list view searches against the Redis query engine.
package search

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/dlf/internal/db"
	"github.com/kailas-cloud/dlf/internal/domain/search/filter"
	"github.com/kailas-cloud/dlf/internal/domain/search/mode"
	"github.com/kailas-cloud/dlf/internal/domain/search/request"
	"github.com/kailas-cloud/dlf/internal/domain/search/result"
)

// Defaults for Config fields left zero.
const (
	DefaultFulltextMaxHits = 1000
	DefaultChildLimit      = 100
)

// store is the consumer interface for search operations (ISP).
type store interface {
	db.Searcher
	db.HashReader
}

// Config tunes the search repository.
type Config struct {
	KeyPrefix string
	// FulltextMaxHits caps the page hits grouped per fulltext search.
	FulltextMaxHits int
	// ChildLimit caps the children fetched per toplevel hit.
	ChildLimit int
}

// Query is one search execution.
type Query struct {
	Core        string
	StoragePID  int
	Collections []string
	Term        string
	Mode        mode.Mode
	Sort        *request.Sort
	Offset      int
	Limit       int
	Listed      []string
}

// Repo implements usecase/search.Repository.
type Repo struct {
	store store
	cfg   Config
}

// New creates a search repository.
func New(s store, cfg Config) *Repo {
	if cfg.FulltextMaxHits <= 0 {
		cfg.FulltextMaxHits = DefaultFulltextMaxHits
	}
	if cfg.ChildLimit <= 0 {
		cfg.ChildLimit = DefaultChildLimit
	}
	return &Repo{store: s, cfg: cfg}
}

// Search runs q in its mode. Ordering is the backend's.
func (r *Repo) Search(ctx context.Context, q Query) (result.Set, error) {
	ks, err := NewKeyspace(r.cfg.KeyPrefix, q.Core)
	if err != nil {
		return result.Set{}, err
	}
	base, err := baseFilter(q)
	if err != nil {
		return result.Set{}, err
	}

	switch q.Mode {
	case mode.Fulltext:
		return r.searchFulltext(ctx, ks, base, q)
	case mode.Metadata, "":
		return r.searchMetadata(ctx, ks, base, q)
	default:
		return result.Set{}, fmt.Errorf("unknown search mode %q", q.Mode)
	}
}

func baseFilter(q Query) (filter.Expression, error) {
	pid, err := filter.NewEquals(fieldPID, float64(q.StoragePID))
	if err != nil {
		return filter.Expression{}, err
	}
	expr := filter.NewExpression([]filter.Condition{pid}, nil)
	if len(q.Collections) > 0 {
		cols, err := filter.NewAnyOf(fieldCollections, q.Collections...)
		if err != nil {
			return filter.Expression{}, fmt.Errorf("collection filter: %w", err)
		}
		expr = expr.And(cols)
	}
	return expr, nil
}

func applySort(dq *db.Query, s *request.Sort) {
	if s == nil {
		return
	}
	dq.SortBy = sortPrefix + s.Field
	dq.SortDesc = s.Direction == request.Desc
}

// searchMetadata pages over toplevel documents, then fetches the matching children
// of every returned toplevel in one pipelined round trip.
func (r *Repo) searchMetadata(ctx context.Context, ks Keyspace, base filter.Expression, q Query) (result.Set, error) {
	toplevel, err := filter.NewMatch(fieldToplevel, "1")
	if err != nil {
		return result.Set{}, err
	}
	dq := &db.Query{
		IndexName: ks.DocIndex(),
		Filters:   base.And(toplevel),
		Text:      q.Term,
		TextField: fieldContent,
		Offset:    q.Offset,
		Limit:     q.Limit,
	}
	applySort(dq, q.Sort)

	sr, err := r.store.Search(ctx, dq)
	if err != nil {
		return result.Set{}, fmt.Errorf("search documents in %s: %w", q.Core, err)
	}

	docs := make([]result.DocumentHit, 0, len(sr.Entries))
	childQueries := make([]*db.Query, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		uid, ok := uidFromHash(e.Fields, fieldUID)
		if !ok {
			continue
		}
		docs = append(docs, result.DocumentHit{UID: uid, Display: displayFromHash(e.Fields, q.Listed)})

		partOf, err := filter.NewMatch(fieldPartOf, strconv.Itoa(uid))
		if err != nil {
			return result.Set{}, err
		}
		cq := &db.Query{
			IndexName: ks.DocIndex(),
			Filters:   base.And(partOf),
			Text:      q.Term,
			TextField: fieldContent,
			Limit:     r.cfg.ChildLimit,
		}
		applySort(cq, q.Sort)
		childQueries = append(childQueries, cq)
	}

	set := result.Set{NumberOfToplevels: sr.Total, NumHits: sr.Total, Documents: docs}
	if len(childQueries) == 0 {
		return set, nil
	}

	children, err := r.store.SearchMulti(ctx, childQueries)
	if err != nil {
		return result.Set{}, fmt.Errorf("search children in %s: %w", q.Core, err)
	}
	for i, cr := range children {
		if cr == nil {
			continue
		}
		set.NumHits += cr.Total
		hits := make([]result.ChildHit, 0, len(cr.Entries))
		for _, e := range cr.Entries {
			uid, ok := uidFromHash(e.Fields, fieldUID)
			if !ok {
				continue
			}
			hits = append(hits, result.ChildHit{UID: uid, Display: displayFromHash(e.Fields, q.Listed)})
		}
		set.Documents[i].Children = hits
	}
	return set, nil
}

// pageGroup collects the page hits of one toplevel document in backend rank order.
type pageGroup struct {
	toplevel int
	pages    []result.PageHit
}

// searchFulltext matches pages, groups them by owning toplevel document and pages over the groups.
func (r *Repo) searchFulltext(ctx context.Context, ks Keyspace, base filter.Expression, q Query) (result.Set, error) {
	dq := &db.Query{
		IndexName:    ks.PageIndex(),
		Filters:      base,
		Text:         q.Term,
		TextField:    fieldFulltext,
		Limit:        r.cfg.FulltextMaxHits,
		ReturnFields: pageReturnFields,
	}
	applySort(dq, q.Sort)

	sr, err := r.store.Search(ctx, dq)
	if err != nil {
		return result.Set{}, fmt.Errorf("search pages in %s: %w", q.Core, err)
	}

	highlight := q.Term
	if highlight == request.DefaultTerm {
		highlight = ""
	}

	var groups []*pageGroup
	byToplevel := make(map[int]*pageGroup)
	for _, e := range sr.Entries {
		toplevel, ok := uidFromHash(e.Fields, fieldToplevelUID)
		if !ok {
			continue
		}
		uid, ok := uidFromHash(e.Fields, fieldUID)
		if !ok {
			continue
		}
		page, ok := uidFromHash(e.Fields, fieldPage)
		if !ok {
			continue
		}

		g, ok := byToplevel[toplevel]
		if !ok {
			g = &pageGroup{toplevel: toplevel}
			byToplevel[toplevel] = g
			groups = append(groups, g)
		}
		g.pages = append(g.pages, result.PageHit{
			UID:           uid,
			Page:          page,
			HighlightWord: highlight,
			Display:       displayFromHash(e.Fields, q.Listed),
		})
	}

	set := result.Set{NumberOfToplevels: len(groups), NumHits: sr.Total, Documents: []result.DocumentHit{}}
	window := pageWindow(groups, q.Offset, q.Limit)
	if len(window) == 0 {
		return set, nil
	}

	keys := make([]string, len(window))
	for i, g := range window {
		keys[i] = ks.DocKey(g.toplevel)
	}
	owners, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return result.Set{}, fmt.Errorf("load documents in %s: %w", q.Core, err)
	}

	for i, g := range window {
		hit := result.DocumentHit{UID: g.toplevel, SearchResults: g.pages}
		if i < len(owners) && len(owners[i]) > 0 {
			hit.Display = displayFromHash(owners[i], q.Listed)
		} else {
			hit.Metadata = map[string][]string{}
		}
		set.Documents = append(set.Documents, hit)
	}
	return set, nil
}

func pageWindow(groups []*pageGroup, offset, limit int) []*pageGroup {
	if offset < 0 || offset >= len(groups) || limit <= 0 {
		return nil
	}
	return groups[offset:min(offset+limit, len(groups))]
}
