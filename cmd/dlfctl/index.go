package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/kailas-cloud/dlf/internal/config"
	dbRedis "github.com/kailas-cloud/dlf/internal/db/redis"
	"github.com/kailas-cloud/dlf/internal/db/sqlite"
	dommeta "github.com/kailas-cloud/dlf/internal/domain/metadata"
	metadatarepo "github.com/kailas-cloud/dlf/internal/repository/metadata"
	searchrepo "github.com/kailas-cloud/dlf/internal/repository/search"
)

func indexCommand() *cli.Command {
	return &cli.Command{
		Name:  "index",
		Usage: "Manage the search indexes of a core",
		Commands: []*cli.Command{
			{
				Name:  "ensure",
				Usage: "Create the metadata and fulltext indexes of a core when missing",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "core", Usage: "Search core name", Required: true},
					&cli.StringSliceFlag{Name: "sortable", Usage: "Sortable metadata fields (default: read from the catalog)"},
					&cli.IntFlag{Name: "storage-pid", Usage: "Storage boundary whose sortable fields are read from the catalog"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig(c.String("config"))
					if err != nil {
						return fmt.Errorf("loading config: %w", err)
					}

					sortable := c.StringSlice("sortable")
					if len(sortable) == 0 && c.Int("storage-pid") > 0 {
						if sortable, err = catalogSortable(ctx, cfg.Catalog.Path, c.Int("storage-pid")); err != nil {
							return err
						}
					}

					store, err := openStore(ctx, cfg)
					if err != nil {
						return err
					}
					defer store.Close()

					return ensureIndexes(ctx, c.Root().Writer, searchrepo.NewIndexer(store, cfg.Search.KeyPrefix), c.String("core"), sortable)
				},
			},
			{
				Name:      "load",
				Usage:     "Write documents and pages from a JSON file into a core",
				ArgsUsage: "<file.json>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "core", Usage: "Search core name", Required: true},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					if c.Args().Len() != 1 {
						return fmt.Errorf("expected exactly one file argument")
					}
					docs, err := readSeedFile(c.Args().First())
					if err != nil {
						return err
					}

					cfg, err := loadConfig(c.String("config"))
					if err != nil {
						return fmt.Errorf("loading config: %w", err)
					}
					store, err := openStore(ctx, cfg)
					if err != nil {
						return err
					}
					defer store.Close()

					n, err := searchrepo.NewIndexer(store, cfg.Search.KeyPrefix).Load(ctx, c.String("core"), docs)
					if err != nil {
						return fmt.Errorf("load documents: %w", err)
					}
					_, err = fmt.Fprintf(c.Root().Writer, "Loaded %d documents (%d hashes)\n", len(docs), n)
					return err
				},
			},
		},
	}
}

type indexEnsurer interface {
	Ensure(ctx context.Context, core string, sortable []string) ([]string, error)
}

func ensureIndexes(ctx context.Context, w io.Writer, ix indexEnsurer, core string, sortable []string) error {
	created, err := ix.Ensure(ctx, core, sortable)
	if err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	if len(created) == 0 {
		_, err = fmt.Fprintf(w, "Indexes of core %s already exist\n", core)
		return err
	}
	for _, name := range created {
		if _, err := fmt.Fprintf(w, "Created index %s\n", name); err != nil {
			return err
		}
	}
	return nil
}

func openStore(ctx context.Context, cfg config.Config) (*dbRedis.Store, error) {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create search store: %w", err)
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("search store not ready: %w", err)
	}
	return store, nil
}

func catalogSortable(ctx context.Context, path string, pid int) ([]string, error) {
	catalog, err := sqlite.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer func() { _ = catalog.Close() }()

	fields, err := metadatarepo.New(catalog.DB()).FindSortable(ctx, pid)
	if err != nil {
		return nil, fmt.Errorf("read sortable fields: %w", err)
	}
	return dommeta.IndexNames(fields), nil
}

func readSeedFile(path string) ([]searchrepo.SeedDocument, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var docs []searchrepo.SeedDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return docs, nil
}
