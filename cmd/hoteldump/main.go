// Command hoteldump loads the upstream hotel info dump into the persistent
// detail cache so searches start warm.
//
//	hoteldump import partner_feed_en.json.zst --language en --limit 5000
//	hoteldump fetch --inventory all --language en --out data/feed_en.json.zst
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "hoteldump:", err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "hoteldump",
		Usage: "Import the hotel info dump into the local hotel cache",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env",
				Usage: "Optional .env file loaded before the environment",
				Value: ".env",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
			&cli.StringFlag{
				Name:  "cache",
				Usage: "SQLite cache file (overrides PAPI_HOTEL_CACHE_PATH and selects the sqlite backend)",
			},
			&cli.StringFlag{
				Name:    "language",
				Usage:   "Language the entries are cached under",
				Sources: cli.EnvVars("PAPI_DEFAULT_LANGUAGE"),
				Value:   "en",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Stop after importing this many hotels (0 = all)",
			},
		},
		Commands: []*cli.Command{
			importCommand(),
			fetchCommand(),
		},
	}
}
