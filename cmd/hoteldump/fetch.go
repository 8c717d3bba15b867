package main

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/tbourn/go-hotel-search/internal/app"
	"github.com/tbourn/go-hotel-search/internal/dump"
)

func fetchCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Request the current dump from the partner API, download it and import it",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "inventory",
				Usage: "Dump inventory scope: all or partner",
				Value: "all",
				Validator: func(v string) error {
					if v != "all" && v != "partner" {
						return fmt.Errorf("inventory must be all or partner, got %q", v)
					}
					return nil
				},
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Where to save the downloaded dump",
				Value: filepath.Join("data", "partner_feed_dump.json.zst"),
			},
			&cli.BoolFlag{
				Name:  "download-only",
				Usage: "Skip the import step",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			env, err := setup(c)
			if err != nil {
				return err
			}
			client, err := app.NewUpstream(env.cfg.Upstream)
			if err != nil {
				return err
			}

			out := c.String("out")
			env.log.Info().Str("inventory", c.String("inventory")).Str("language", env.language).Msg("requesting dump url")
			n, err := dump.Fetch(ctx, client, &http.Client{}, c.String("inventory"), env.language, out)
			if err != nil {
				return err
			}
			env.log.Info().Str("file", out).Int64("bytes", n).Msg("download complete")

			if c.Bool("download-only") {
				return nil
			}
			_, err = importFile(ctx, env, out)
			return err
		},
	}
}
