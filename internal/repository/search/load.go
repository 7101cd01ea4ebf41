package search

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kailas-cloud/dlf/internal/db"
)

// SeedDocument is the JSON shape of an indexed document accepted by Load.
type SeedDocument struct {
	UID         int                 `json:"uid"`
	PID         int                 `json:"pid"`
	PartOf      int                 `json:"partof,omitempty"`
	Title       string              `json:"title"`
	Thumbnail   string              `json:"thumbnail,omitempty"`
	Structure   string              `json:"structure,omitempty"`
	OrderLabel  string              `json:"orderlabel,omitempty"`
	Collections []string            `json:"collections,omitempty"`
	Metadata    map[string][]string `json:"metadata,omitempty"`
	Pages       []SeedPage          `json:"pages,omitempty"`
}

// SeedPage is one page of a SeedDocument with its recognized text.
type SeedPage struct {
	Page       int    `json:"page"`
	Fulltext   string `json:"fulltext"`
	Thumbnail  string `json:"thumbnail,omitempty"`
	OrderLabel string `json:"orderlabel,omitempty"`
}

// Load writes docs and their pages as hashes of core. Returns the number of hashes written.
// Pages inherit the collections and sort keys of their document
// and point at the root of its partof chain as toplevel.
func (ix *Indexer) Load(ctx context.Context, core string, docs []SeedDocument) (int, error) {
	ks, err := NewKeyspace(ix.keyPrefix, core)
	if err != nil {
		return 0, err
	}

	byUID := make(map[int]SeedDocument, len(docs))
	for _, d := range docs {
		if d.UID <= 0 {
			return 0, fmt.Errorf("document uid must be positive")
		}
		byUID[d.UID] = d
	}

	var items []db.HashSetItem
	for _, d := range docs {
		fields, err := docHash(d)
		if err != nil {
			return 0, err
		}
		items = append(items, db.HashSetItem{Key: ks.DocKey(d.UID), Fields: fields})

		toplevel := rootOf(d, byUID)
		for _, p := range d.Pages {
			items = append(items, db.HashSetItem{Key: ks.PageKey(d.UID, p.Page), Fields: pageHash(d, p, toplevel, fields)})
		}
	}

	written := 0
	for start := 0; start < len(items); start += ix.batchSize {
		batch := items[start:min(start+ix.batchSize, len(items))]
		if err := ix.store.HSetMulti(ctx, batch); err != nil {
			return written, fmt.Errorf("write batch at %d: %w", start, err)
		}
		written += len(batch)
	}
	return written, nil
}

func docHash(d SeedDocument) (map[string]string, error) {
	metadata, err := json.Marshal(d.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata of %d: %w", d.UID, err)
	}

	toplevel := "0"
	if d.PartOf <= 0 {
		toplevel = "1"
	}

	fields := map[string]string{
		fieldUID:         strconv.Itoa(d.UID),
		fieldPID:         strconv.Itoa(d.PID),
		fieldToplevel:    toplevel,
		fieldPartOf:      strconv.Itoa(max(d.PartOf, 0)),
		fieldCollections: strings.Join(d.Collections, ","),
		fieldTitle:       d.Title,
		fieldContent:     content(d),
		fieldMetadata:    string(metadata),
		fieldThumbnail:   d.Thumbnail,
		fieldStructure:   d.Structure,
		fieldOrderLabel:  d.OrderLabel,
	}
	fields[sortPrefix+fieldTitle] = d.Title
	for name, values := range d.Metadata {
		if len(values) > 0 && db.IsValidIdentifier(name) {
			fields[sortPrefix+name] = values[0]
		}
	}
	return fields, nil
}

func pageHash(d SeedDocument, p SeedPage, toplevel int, doc map[string]string) map[string]string {
	fields := map[string]string{
		fieldUID:         strconv.Itoa(d.UID),
		fieldToplevelUID: strconv.Itoa(toplevel),
		fieldPID:         strconv.Itoa(d.PID),
		fieldCollections: doc[fieldCollections],
		fieldPage:        strconv.Itoa(p.Page),
		fieldFulltext:    p.Fulltext,
		fieldTitle:       d.Title,
		fieldThumbnail:   p.Thumbnail,
		fieldStructure:   d.Structure,
		fieldOrderLabel:  p.OrderLabel,
		fieldMetadata:    doc[fieldMetadata],
	}
	for k, v := range doc {
		if strings.HasPrefix(k, sortPrefix) {
			fields[k] = v
		}
	}
	return fields
}

// content is the searchable text of a document: its title and every metadata value.
func content(d SeedDocument) string {
	names := make([]string, 0, len(d.Metadata))
	for name := range d.Metadata {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := []string{d.Title}
	for _, name := range names {
		parts = append(parts, d.Metadata[name]...)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// rootOf follows partof links within the batch. Unknown parents end the walk.
func rootOf(d SeedDocument, byUID map[int]SeedDocument) int {
	uid := d.UID
	visited := map[int]bool{uid: true}
	for {
		parent, ok := byUID[uid]
		if !ok || parent.PartOf <= 0 {
			return uid
		}
		if _, known := byUID[parent.PartOf]; !known || visited[parent.PartOf] {
			return parent.PartOf
		}
		uid = parent.PartOf
		visited[uid] = true
	}
}
