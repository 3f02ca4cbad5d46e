package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"mirify/internal/config"
	"mirify/internal/logging"
	"mirify/internal/metrics"
	"mirify/internal/models"
	"mirify/internal/parser"
	"mirify/internal/pipeline"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// .env must be in the environment before flags read their EnvVars fallbacks.
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	defaults := config.Default()

	return &cli.App{
		Name:  "mirify",
		Usage: "Turn playlist exports into next-track training data",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "raw-dir", Usage: "directory holding playlist exports", Value: defaults.RawDir, EnvVars: []string{config.EnvRawDir}},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error", Value: defaults.LogLevel, EnvVars: []string{config.EnvLogLevel}},
		},
		Commands: []*cli.Command{
			runCommand(defaults),
			fetchCommand(),
		},
	}
}

func runCommand(defaults config.Config) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the full pipeline once",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "processed-dir", Usage: "output directory", Value: defaults.ProcessedDir, EnvVars: []string{config.EnvProcessedDir}},
			&cli.StringFlag{Name: "db", Usage: "optional SQLite snapshot path", EnvVars: []string{config.EnvDatabasePath}},
			&cli.StringFlag{Name: "metrics-file", Usage: "optional Prometheus textfile path", EnvVars: []string{config.EnvMetricsFile}},
			&cli.Float64Flag{Name: "similarity-threshold", Usage: "Jaro-Winkler threshold for near-duplicate warnings (0 disables)", Value: defaults.SimilarityThreshold, EnvVars: []string{config.EnvSimilarityThreshold}},
		},
		Action: func(c *cli.Context) error {
			cfg := config.Config{
				RawDir:              c.String("raw-dir"),
				ProcessedDir:        c.String("processed-dir"),
				DatabasePath:        c.String("db"),
				MetricsFile:         c.String("metrics-file"),
				SimilarityThreshold: c.Float64("similarity-threshold"),
				LogLevel:            c.String("log-level"),
			}
			log := logging.New(os.Stderr, cfg.LogLevel)

			sum, err := pipeline.New(cfg, log, metrics.New()).Run(c.Context)
			if err != nil {
				log.Error().Err(err).Msg("pipeline failed")
				return err
			}
			log.Info().Object("summary", sum).Msg("pipeline finished")
			return nil
		},
	}
}

func fetchCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Export a streaming playlist into the raw directory",
		Subcommands: []*cli.Command{
			{
				Name:      "spotify",
				Usage:     "Export a public Spotify playlist",
				ArgsUsage: "<playlist-url-or-id>",
				Flags: append(exportFlags(),
					&cli.StringFlag{Name: "client-id", EnvVars: []string{config.EnvSpotifyID}},
					&cli.StringFlag{Name: "client-secret", EnvVars: []string{config.EnvSpotifySecret}},
				),
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.ShowSubcommandHelp(c)
					}
					if c.String("client-id") == "" || c.String("client-secret") == "" {
						return errors.New("SPOTIFY_ID and SPOTIFY_SECRET must be set")
					}
					log := logging.New(os.Stderr, c.String("log-level"))

					client := parser.NewSpotifyClient(c.Context, c.String("client-id"), c.String("client-secret"))
					records, name, err := parser.NewSpotifyParser(client).FetchPlaylist(c.Context, c.Args().First(), c.Bool("liked"))
					if err != nil {
						return err
					}
					return saveExport(c, log, "spotify", name, records)
				},
			},
			{
				Name:      "youtube",
				Usage:     "Export a YouTube playlist",
				ArgsUsage: "<playlist-url>",
				Flags:     exportFlags(),
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.ShowSubcommandHelp(c)
					}
					log := logging.New(os.Stderr, c.String("log-level"))

					records, name, err := parser.NewYouTubeParser(nil).FetchPlaylist(c.Args().First(), c.Bool("liked"))
					if err != nil {
						return err
					}
					return saveExport(c, log, "youtube", name, records)
				},
			},
		},
	}
}

func exportFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "liked", Usage: "mark every exported track as liked"},
		&cli.StringFlag{Name: "out", Usage: "output file (default: <raw-dir>/<source>-<playlist>.json)"},
	}
}

var unsafeName = regexp.MustCompile(`[^a-z0-9]+`)

// exportFileName builds a stable file name for a fetched playlist.
func exportFileName(source, playlist string) string {
	slug := strings.Trim(unsafeName.ReplaceAllString(strings.ToLower(playlist), "-"), "-")
	if slug == "" {
		slug = "playlist"
	}
	return source + "-" + slug + ".json"
}

func saveExport(c *cli.Context, log zerolog.Logger, source, playlist string, records []models.RawRecord) error {
	out := c.String("out")
	if out == "" {
		out = filepath.Join(c.String("raw-dir"), exportFileName(source, playlist))
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := parser.WriteRawJSON(f, records); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	log.Info().Str("playlist", playlist).Int("tracks", len(records)).Str("file", out).Msg("exported playlist")
	return f.Close()
}
