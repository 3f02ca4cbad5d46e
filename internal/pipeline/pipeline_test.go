package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirify/internal/cleaner"
	"mirify/internal/config"
	"mirify/internal/database"
	"mirify/internal/models"
	"mirify/internal/parser"
	"mirify/internal/writer"
)

const exportJSON = `[
	{"playlist": "Road Trip", "position": 2, "track_name": "Digital Love", "artist": "Daft Punk", "album": "Discovery", "liked": "yes"},
	{"playlist": "Road Trip", "position": 1, "track_name": "Get Lucky (feat. Pharrell Williams)", "artist": "Daft Punk", "album": "RAM", "liked": true},
	{"playlist": "Road Trip", "position": 3, "track_name": "Midnight City", "artist": "M83", "liked": "no"},
	{"playlist": "Road Trip", "position": "0", "track_name": "Bad Pos", "artist": "X", "liked": "1"},
	{"playlist": "Road Trip", "position": 4, "track_name": "Maybe", "artist": "X", "liked": "maybe"}
]`

const exportCSV = `playlist,position,track_name,artist,album,liked
Focus,1,GET LUCKY,daft punk,Other Album,1
Focus,2,Intro,The xx,xx,0
Focus,3,,Nobody,,1
Solo,1,Alone,Someone,,1
`

func setup(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	raw := filepath.Join(dir, "raw")
	require.NoError(t, os.MkdirAll(raw, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(raw, "a.json"), []byte(exportJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(raw, "b.csv"), []byte(exportCSV), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(raw, "README.md"), []byte("ignored"), 0o644))

	return config.Config{
		RawDir:              raw,
		ProcessedDir:        filepath.Join(dir, "processed"),
		SimilarityThreshold: config.DefaultSimilarityThreshold,
	}
}

func TestRunEndToEnd(t *testing.T) {
	cfg := setup(t)
	cfg.DatabasePath = filepath.Join(filepath.Dir(cfg.RawDir), "mirify.db")
	cfg.MetricsFile = filepath.Join(filepath.Dir(cfg.RawDir), "mirify.prom")

	sum, err := New(cfg, zerolog.Nop(), nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Files)
	assert.Equal(t, 9, sum.Loaded)
	assert.Equal(t, 1, sum.IngestDropped)
	assert.Equal(t, 1, sum.Duplicates)
	assert.Equal(t, 7, sum.Ingested)
	assert.Equal(t, 5, sum.Cleaned)
	assert.Equal(t, map[cleaner.Reason]int{cleaner.InvalidPosition: 1, cleaner.InvalidLiked: 1}, sum.Rejected)
	assert.Equal(t, 5, sum.Identities)
	assert.Equal(t, 3, sum.Playlists)
	assert.Equal(t, 2, sum.Examples)

	examples, err := writer.ReadExamples(cfg.ExamplesPath())
	require.NoError(t, err)
	// daft punk - digital love = 0, daft punk - get lucky = 1, m83 - midnight city = 2
	assert.Equal(t, []models.TrainingExample{
		{Playlist: "road trip", ContextTrackID: 1, TargetTrackID: 0},
		{Playlist: "road trip", ContextTrackID: 0, TargetTrackID: 2},
	}, examples)

	for _, p := range []string{cfg.IngestedPath(), cfg.CleanedPath(), cfg.TrackToIDPath(), cfg.IDToTrackPath(), cfg.NearDuplicatesPath(), cfg.MetricsFile} {
		assert.FileExists(t, p)
	}

	db, err := database.Open(cfg.DatabasePath)
	require.NoError(t, err)
	defer db.Close()
	stored, err := database.LoadExamples(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, examples, stored)
}

func TestRunIsDeterministic(t *testing.T) {
	cfg := setup(t)
	p := New(cfg, zerolog.Nop(), nil)

	_, err := p.Run(context.Background())
	require.NoError(t, err)
	first := readAll(t, cfg)

	_, err = p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, readAll(t, cfg))
}

func readAll(t *testing.T, cfg config.Config) map[string]string {
	t.Helper()
	out := make(map[string]string)
	for _, p := range []string{cfg.IngestedPath(), cfg.CleanedPath(), cfg.TrackToIDPath(), cfg.IDToTrackPath(), cfg.ExamplesPath()} {
		b, err := os.ReadFile(p)
		require.NoError(t, err)
		out[filepath.Base(p)] = string(b)
	}
	return out
}

func TestRunFileOrderDecidesDedupSurvivor(t *testing.T) {
	cfg := setup(t)
	_, err := New(cfg, zerolog.Nop(), nil).Run(context.Background())
	require.NoError(t, err)

	raw, err := os.ReadFile(cfg.IDToTrackPath())
	require.NoError(t, err)
	// a.json sorts before b.csv, so its album survives deduplication.
	assert.Contains(t, string(raw), `"album": "ram"`)
	assert.NotContains(t, string(raw), "other album")
}

func TestRunMalformedSourceFails(t *testing.T) {
	cfg := setup(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.RawDir, "c.json"), []byte(`{"oops": true}`), 0o644))

	_, err := New(cfg, zerolog.Nop(), nil).Run(context.Background())
	require.ErrorIs(t, err, parser.ErrMalformedSource)
	assert.NoFileExists(t, cfg.ExamplesPath())
}

func TestRunEmptyRawDir(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Config{RawDir: dir, ProcessedDir: filepath.Join(dir, "out")}

	sum, err := New(cfg, zerolog.Nop(), nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Examples)

	examples, err := writer.ReadExamples(cfg.ExamplesPath())
	require.NoError(t, err)
	assert.Empty(t, examples)
}

func TestRunLogsSkippedFiles(t *testing.T) {
	cfg := setup(t)
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)

	sum, err := New(cfg, log, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Files)
	assert.Contains(t, buf.String(), "skipping unsupported file")
	assert.Contains(t, buf.String(), "README.md")
}

func TestRunInvalidConfig(t *testing.T) {
	cfg := config.Config{RawDir: filepath.Join(t.TempDir(), "missing"), ProcessedDir: "out"}
	_, err := New(cfg, zerolog.Nop(), nil).Run(context.Background())
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestRunCancelled(t *testing.T) {
	cfg := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(cfg, zerolog.Nop(), nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessFlagsNearDuplicates(t *testing.T) {
	cfg := config.Config{SimilarityThreshold: 0.9}
	records := []models.RawRecord{
		{Playlist: "P", Position: "1", TrackName: "Get Lucky", Artist: "Daft Punk", Liked: "1"},
		{Playlist: "P", Position: "2", TrackName: "Get Lucky.", Artist: "Daft Punk", Liked: "1"},
	}

	var sum Summary
	ds, err := New(cfg, zerolog.Nop(), nil).Process(records, &sum)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.NearDuplicates)
	require.Len(t, ds.NearDuplicates, 1)
	assert.Len(t, ds.Examples, 1)
}

func TestProcessUnicodeWhitespaceSharesIdentity(t *testing.T) {
	records := []models.RawRecord{
		{Playlist: "P", Position: "1", TrackName: "Get Lucky", Artist: "Daft\u3000Punk", Liked: "1"},
		{Playlist: "P", Position: "2", TrackName: "Around the World", Artist: "Daft Punk", Liked: "0"},
		{Playlist: "Q", Position: "1", TrackName: "Get Lucky (feat. Pharrell\nWilliams)", Artist: "Daft Punk", Liked: "1"},
	}

	var sum Summary
	ds, err := New(config.Config{}, zerolog.Nop(), nil).Process(records, &sum)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Duplicates)
	assert.Equal(t, 2, sum.Identities)
	assert.Equal(t, 1, sum.Playlists)
	require.Len(t, ds.Tracks, 2)
	assert.Equal(t, "daft punk - get lucky", ds.Tracks[0].TrackID)
	assert.Equal(t, "Get Lucky", ds.Ingested[0].TrackName)
	assert.Equal(t, "Daft Punk", ds.Ingested[0].Artist)
}
