// Command dlfctl is the operator tool for settings tokens, search indexes and the catalog.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/kailas-cloud/dlf/internal/config"
	"github.com/kailas-cloud/dlf/internal/version"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "dlfctl",
		Usage: "Manage dlf settings tokens, search indexes and catalog data",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Configuration file path (default: config/<ENV>.yaml)",
			},
		},
		Commands: []*cli.Command{
			settingsCommand(),
			indexCommand(),
			catalogCommand(),
			versionCommand(),
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print build information",
		Action: func(_ context.Context, c *cli.Command) error {
			_, err := fmt.Fprintln(c.Root().Writer, "dlfctl", version.String())
			return err
		},
	}
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load(config.GetEnv())
}
