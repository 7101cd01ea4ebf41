package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/kailas-cloud/dlf/internal/domain/settings"
	"github.com/kailas-cloud/dlf/internal/secret"
)

func settingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Seal and open list view settings tokens",
		Commands: []*cli.Command{
			{
				Name:  "seal",
				Usage: "Encrypt a list view configuration into a settings token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "core", Usage: "Search core name", Required: true},
					&cli.IntFlag{Name: "storage-pid", Usage: "Storage boundary id", Required: true},
					&cli.IntFlag{Name: "page-view-pid", Usage: "Viewer page id", Required: true},
					&cli.IntFlag{Name: "items-per-page", Usage: "Toplevel documents per page", Value: settings.DefaultPageSize},
					&cli.StringFlag{Name: "collections", Usage: "Comma-separated collection ids"},
				},
				Action: func(_ context.Context, c *cli.Command) error {
					codec, err := codecFromConfig(c.String("config"))
					if err != nil {
						return err
					}
					cfg, err := settings.New(
						c.String("core"), c.Int("storage-pid"), c.Int("page-view-pid"),
						c.Int("items-per-page"), settings.ParseIDList(c.String("collections")),
					)
					if err != nil {
						return fmt.Errorf("build settings: %w", err)
					}
					return sealSettings(c.Root().Writer, codec, cfg)
				},
			},
			{
				Name:      "open",
				Usage:     "Decrypt and validate a settings token",
				ArgsUsage: "<token>",
				Action: func(_ context.Context, c *cli.Command) error {
					if c.Args().Len() != 1 {
						return fmt.Errorf("expected exactly one token argument")
					}
					codec, err := codecFromConfig(c.String("config"))
					if err != nil {
						return err
					}
					return openSettings(c.Root().Writer, codec, c.Args().First())
				},
			},
		},
	}
}

func codecFromConfig(path string) (*secret.Codec, error) {
	cfg, err := loadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	codec, err := secret.NewCodec(cfg.Security.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("create codec: %w", err)
	}
	return codec, nil
}

func sealSettings(w io.Writer, codec *secret.Codec, cfg settings.Configuration) error {
	plain, err := cfg.Encode()
	if err != nil {
		return err
	}
	token, err := codec.Seal(plain)
	if err != nil {
		return fmt.Errorf("seal settings: %w", err)
	}
	_, err = fmt.Fprintln(w, token)
	return err
}

// openSettings prints the normalized configuration, not the raw payload.
func openSettings(w io.Writer, codec *secret.Codec, token string) error {
	plain, err := codec.Open(token)
	if err != nil {
		return err
	}
	cfg, err := settings.Parse(plain)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Core        string `json:"solrcore"`
		StoragePID  int    `json:"storagePid"`
		PageViewPID int    `json:"pageViewPid"`
		PageSize    int    `json:"itemsPerPage"`
		Collections []int  `json:"collections"`
	}{
		Core:        cfg.CoreName(),
		StoragePID:  cfg.StoragePID(),
		PageViewPID: cfg.PageViewPID(),
		PageSize:    cfg.PageSize(),
		Collections: cfg.CollectionIDs(),
	})
}
