package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/kailas-cloud/dlf/internal/db/sqlite"
	domcol "github.com/kailas-cloud/dlf/internal/domain/collection"
	domdoc "github.com/kailas-cloud/dlf/internal/domain/document"
	"github.com/kailas-cloud/dlf/internal/domain/feed"
	dommeta "github.com/kailas-cloud/dlf/internal/domain/metadata"
	collectionrepo "github.com/kailas-cloud/dlf/internal/repository/collection"
	documentrepo "github.com/kailas-cloud/dlf/internal/repository/document"
	libraryrepo "github.com/kailas-cloud/dlf/internal/repository/library"
	metadatarepo "github.com/kailas-cloud/dlf/internal/repository/metadata"
)

// catalogSeed is the JSON shape accepted by "catalog load".
type catalogSeed struct {
	Libraries []struct {
		UID     int    `json:"uid"`
		Label   string `json:"label"`
		Website string `json:"website"`
	} `json:"libraries"`
	Collections []struct {
		UID       int    `json:"uid"`
		PID       int    `json:"pid"`
		IndexName string `json:"index_name"`
		Label     string `json:"label"`
	} `json:"collections"`
	Metadata []struct {
		PID       int    `json:"pid"`
		IndexName string `json:"index_name"`
		Label     string `json:"label"`
		Listed    bool   `json:"listed"`
		Sortable  bool   `json:"sortable"`
		Sorting   int    `json:"sorting"`
	} `json:"metadata"`
	Documents []struct {
		UID         int       `json:"uid"`
		PID         int       `json:"pid"`
		RecordID    string    `json:"record_id"`
		Title       string    `json:"title"`
		PartOf      int       `json:"partof"`
		Volume      string    `json:"volume"`
		Author      string    `json:"author"`
		CreatedAt   time.Time `json:"created_at"`
		UpdatedAt   time.Time `json:"updated_at"`
		Collections []int     `json:"collections"`
	} `json:"documents"`
}

type loadCounts struct {
	Libraries, Collections, Metadata, Documents int
}

func catalogCommand() *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Manage the catalog database",
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Create or upgrade the catalog schema",
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig(c.String("config"))
					if err != nil {
						return fmt.Errorf("loading config: %w", err)
					}
					catalog, err := sqlite.Open(ctx, cfg.Catalog.Path)
					if err != nil {
						return fmt.Errorf("open catalog: %w", err)
					}
					if err := catalog.Close(); err != nil {
						return fmt.Errorf("close catalog: %w", err)
					}
					_, err = fmt.Fprintf(c.Root().Writer, "Catalog %s is up to date\n", cfg.Catalog.Path)
					return err
				},
			},
			{
				Name:      "load",
				Usage:     "Upsert libraries, collections, metadata fields and documents from a JSON file",
				ArgsUsage: "<file.json>",
				Action: func(ctx context.Context, c *cli.Command) error {
					if c.Args().Len() != 1 {
						return fmt.Errorf("expected exactly one file argument")
					}
					seed, err := readCatalogSeed(c.Args().First())
					if err != nil {
						return err
					}

					cfg, err := loadConfig(c.String("config"))
					if err != nil {
						return fmt.Errorf("loading config: %w", err)
					}
					catalog, err := sqlite.Open(ctx, cfg.Catalog.Path)
					if err != nil {
						return fmt.Errorf("open catalog: %w", err)
					}
					defer func() { _ = catalog.Close() }()

					n, err := loadCatalog(ctx, catalog.DB(), seed)
					if err != nil {
						return err
					}
					_, err = fmt.Fprintf(c.Root().Writer,
						"Loaded %d libraries, %d collections, %d metadata fields, %d documents\n",
						n.Libraries, n.Collections, n.Metadata, n.Documents)
					return err
				},
			},
		},
	}
}

func readCatalogSeed(path string) (catalogSeed, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return catalogSeed{}, fmt.Errorf("read %s: %w", path, err)
	}
	var seed catalogSeed
	if err := json.Unmarshal(data, &seed); err != nil {
		return catalogSeed{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return seed, nil
}

// loadCatalog writes seed in dependency order: collections before the documents that reference them.
func loadCatalog(ctx context.Context, db *sql.DB, seed catalogSeed) (loadCounts, error) {
	var n loadCounts

	libs := libraryrepo.New(db)
	for _, l := range seed.Libraries {
		if err := libs.Save(ctx, feed.Library{UID: l.UID, Label: l.Label, Website: l.Website}); err != nil {
			return n, err
		}
		n.Libraries++
	}

	cols := collectionrepo.New(db)
	for _, c := range seed.Collections {
		col, err := domcol.New(c.UID, c.PID, c.IndexName, c.Label)
		if err != nil {
			return n, fmt.Errorf("collection %d: %w", c.UID, err)
		}
		if err := cols.Save(ctx, col); err != nil {
			return n, err
		}
		n.Collections++
	}

	meta := metadatarepo.New(db)
	for _, m := range seed.Metadata {
		f, err := dommeta.NewField(m.IndexName, m.Label, m.Listed, m.Sortable)
		if err != nil {
			return n, fmt.Errorf("metadata field %q: %w", m.IndexName, err)
		}
		if err := meta.Save(ctx, m.PID, f, m.Sorting); err != nil {
			return n, err
		}
		n.Metadata++
	}

	docs := documentrepo.New(db)
	for _, d := range seed.Documents {
		doc, err := domdoc.New(d.UID, d.PID, d.RecordID, d.Title, d.PartOf, d.Volume, d.Author, d.CreatedAt, d.UpdatedAt)
		if err != nil {
			return n, fmt.Errorf("document %d: %w", d.UID, err)
		}
		if err := docs.Save(ctx, doc, d.Collections); err != nil {
			return n, err
		}
		n.Documents++
	}

	return n, nil
}
