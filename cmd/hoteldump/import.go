package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/tbourn/go-hotel-search/internal/app"
	"github.com/tbourn/go-hotel-search/internal/config"
	"github.com/tbourn/go-hotel-search/internal/dump"
	"github.com/tbourn/go-hotel-search/internal/sysutil"
)

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import a local .zst or JSONL dump file",
		ArgsUsage: "<dump-file>",
		Action: func(ctx context.Context, c *cli.Command) error {
			path := c.Args().First()
			if path == "" {
				return errors.New("missing dump file argument")
			}
			env, err := setup(c)
			if err != nil {
				return err
			}
			_, err = importFile(ctx, env, path)
			return err
		},
	}
}

// runEnv is the shared state of a hoteldump invocation.
type runEnv struct {
	cfg      config.Config
	log      zerolog.Logger
	language string
	limit    int
}

func setup(c *cli.Command) (runEnv, error) {
	cfg, err := app.LoadConfig(c.String("env"))
	if err != nil {
		return runEnv{}, fmt.Errorf("loading config: %w", err)
	}
	if p := c.String("cache"); p != "" {
		cfg.Cache.Backend = config.CacheSQLite
		cfg.Cache.Path = p
	}
	level := cfg.LogLevel
	if c.Bool("debug") {
		level = "debug"
	}
	log := sysutil.InitLogger(os.Stderr, level, "hoteldump", cfg.LogPretty)
	return runEnv{
		cfg:      cfg,
		log:      log,
		language: sysutil.FirstNonEmpty(c.String("language"), cfg.Upstream.DefaultLanguage, "en"),
		limit:    int(c.Int("limit")),
	}, nil
}

func importFile(ctx context.Context, env runEnv, path string) (dump.Stats, error) {
	store, closeStore, err := app.OpenStore(env.cfg.Cache, env.log)
	if err != nil {
		return dump.Stats{}, err
	}
	defer func() {
		if err := closeStore(); err != nil {
			env.log.Warn().Err(err).Msg("cache close")
		}
	}()

	src, err := dump.Open(path)
	if err != nil {
		return dump.Stats{}, err
	}
	defer src.Close()

	env.log.Info().
		Str("file", path).
		Bool("zstd", src.Compressed()).
		Str("language", env.language).
		Str("cache_backend", env.cfg.Cache.Backend).
		Msg("importing dump")

	start := time.Now()
	im := &dump.Importer{Store: store, Language: env.language, Limit: env.limit, Log: env.log}
	st, err := im.Import(ctx, src.Reader())
	if err != nil {
		return st, err
	}
	env.log.Info().Int("imported", st.Imported).Dur("took", time.Since(start)).Msg("done")
	return st, nil
}
