// Package config holds the settings of a pipeline run.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Environment variables read as flag fallbacks.
const (
	EnvRawDir              = "MIRIFY_RAW_DIR"
	EnvProcessedDir        = "MIRIFY_PROCESSED_DIR"
	EnvDatabasePath        = "MIRIFY_DATABASE"
	EnvMetricsFile         = "MIRIFY_METRICS_FILE"
	EnvSimilarityThreshold = "MIRIFY_SIMILARITY_THRESHOLD"
	EnvLogLevel            = "MIRIFY_LOG_LEVEL"
	EnvSpotifyID           = "SPOTIFY_ID"
	EnvSpotifySecret       = "SPOTIFY_SECRET"
)

const DefaultSimilarityThreshold = 0.92

// Config holds application configuration
type Config struct {
	RawDir              string
	ProcessedDir        string
	DatabasePath        string // optional SQLite snapshot
	MetricsFile         string // optional Prometheus textfile
	SimilarityThreshold float64
	LogLevel            string
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		RawDir:              filepath.Join("data", "raw"),
		ProcessedDir:        filepath.Join("data", "processed"),
		SimilarityThreshold: DefaultSimilarityThreshold,
		LogLevel:            "info",
	}
}

// LoadDotEnv loads the given .env files (".env" when none are given) into the
// process environment. Missing files are ignored; existing variables win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
	return nil
}

// Validate checks that the raw directory exists and the threshold is usable.
func (c Config) Validate() error {
	if c.RawDir == "" {
		return fmt.Errorf("%w: raw dir is required", ErrInvalidConfig)
	}
	info, err := os.Stat(c.RawDir)
	if err != nil {
		return fmt.Errorf("%w: raw dir: %v", ErrInvalidConfig, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: raw dir %s is not a directory", ErrInvalidConfig, c.RawDir)
	}
	if c.ProcessedDir == "" {
		return fmt.Errorf("%w: processed dir is required", ErrInvalidConfig)
	}
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("%w: similarity threshold %v outside [0, 1]", ErrInvalidConfig, c.SimilarityThreshold)
	}
	return nil
}

func (c Config) IngestedPath() string       { return filepath.Join(c.ProcessedDir, "tracks.json") }
func (c Config) CleanedPath() string        { return filepath.Join(c.ProcessedDir, "cleaned_tracks.json") }
func (c Config) TrackToIDPath() string      { return filepath.Join(c.ProcessedDir, "track_to_id.json") }
func (c Config) IDToTrackPath() string      { return filepath.Join(c.ProcessedDir, "id_to_track.json") }
func (c Config) ExamplesPath() string       { return filepath.Join(c.ProcessedDir, "examples.jsonl") }
func (c Config) NearDuplicatesPath() string { return filepath.Join(c.ProcessedDir, "near_duplicates.json") }
