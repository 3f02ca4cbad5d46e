// Package pipeline runs the batch conversion from playlist exports to
// training examples.
//
//	discover -> load -> ingest -> dedupe -> clean -> identities -> pairs -> persist
//
// Every stage finishes over the whole batch before the next one starts.
package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"mirify/internal/cleaner"
	"mirify/internal/config"
	"mirify/internal/database"
	"mirify/internal/dedupe"
	"mirify/internal/identity"
	"mirify/internal/ingest"
	"mirify/internal/metrics"
	"mirify/internal/models"
	"mirify/internal/parser"
	"mirify/internal/sequence"
	"mirify/internal/writer"
)

const progressInterval = 2 * time.Second

// Dataset is the in-memory result of the core stages.
type Dataset struct {
	Ingested       []models.RawRecord
	Tracks         []models.CleanedTrack
	Identities     *models.IdentityTable
	Examples       []models.TrainingExample
	NearDuplicates []models.NearDuplicate
}

// Summary reports what a run did.
type Summary struct {
	Files          int
	Loaded         int
	IngestDropped  int
	Duplicates     int
	Ingested       int
	Cleaned        int
	Rejected       map[cleaner.Reason]int
	Identities     int
	NearDuplicates int
	Playlists      int
	Examples       int
}

// MarshalZerologObject lets a Summary be logged with Object.
func (s Summary) MarshalZerologObject(e *zerolog.Event) {
	e.Int("files", s.Files).
		Int("loaded", s.Loaded).
		Int("ingest_dropped", s.IngestDropped).
		Int("duplicates", s.Duplicates).
		Int("ingested", s.Ingested).
		Int("cleaned", s.Cleaned).
		Int("identities", s.Identities).
		Int("near_duplicates", s.NearDuplicates).
		Int("playlists", s.Playlists).
		Int("examples", s.Examples)
	for _, r := range cleaner.Reasons {
		if n := s.Rejected[r]; n > 0 {
			e.Int("rejected_"+string(r), n)
		}
	}
}

type Pipeline struct {
	cfg     config.Config
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// New creates a pipeline. A nil m gets a private metrics set.
func New(cfg config.Config, log zerolog.Logger, m *metrics.Metrics) *Pipeline {
	if m == nil {
		m = metrics.New()
	}
	return &Pipeline{cfg: cfg, log: log, metrics: m}
}

// Run executes one complete batch: it reads every export in the raw dir and
// replaces all outputs. Per-record rejections are counted, not returned.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	if err := p.cfg.Validate(); err != nil {
		return sum, err
	}

	paths, err := parser.Discover(p.cfg.RawDir, func(path string) {
		p.log.Debug().Str("file", path).Msg("skipping unsupported file")
	})
	if err != nil {
		return sum, err
	}
	sum.Files = len(paths)
	p.log.Info().Str("raw_dir", p.cfg.RawDir).Int("files", len(paths)).Msg("discovered exports")

	start := time.Now()
	records, err := parser.LoadAll(paths, func(path string, n int) {
		format, _ := parser.FormatOf(path)
		p.metrics.RecordsLoaded(string(format), n)
		p.log.Debug().Str("file", path).Int("records", n).Msg("loaded export")
	})
	if err != nil {
		return sum, fmt.Errorf("load exports: %w", err)
	}
	p.metrics.ObserveStage("load", time.Since(start).Seconds())
	sum.Loaded = len(records)

	if err := ctx.Err(); err != nil {
		return sum, err
	}

	ds, err := p.Process(records, &sum)
	if err != nil {
		return sum, err
	}

	if err := ctx.Err(); err != nil {
		return sum, err
	}

	start = time.Now()
	if err := p.persist(ctx, ds); err != nil {
		return sum, err
	}
	p.metrics.ObserveStage("persist", time.Since(start).Seconds())
	p.metrics.MarkSuccess()

	if p.cfg.MetricsFile != "" {
		if err := p.metrics.WriteTextfile(p.cfg.MetricsFile); err != nil {
			p.log.Warn().Err(err).Str("file", p.cfg.MetricsFile).Msg("failed to write metrics")
		}
	}

	return sum, nil
}

// Process runs the in-memory stages over loaded records. sum, when non-nil,
// is filled with per-stage counts.
func (p *Pipeline) Process(records []models.RawRecord, sum *Summary) (*Dataset, error) {
	if sum == nil {
		sum = &Summary{}
	}

	start := time.Now()
	prepared, dropped := ingest.PrepareAll(records)
	ingested, stats := dedupe.DedupeWithStats(prepared)
	p.metrics.RecordsDropped("incomplete", dropped)
	p.metrics.RecordsDropped("duplicate", stats.Duplicates)
	p.metrics.ObserveStage("ingest", time.Since(start).Seconds())
	sum.IngestDropped = dropped
	sum.Duplicates = stats.Duplicates
	sum.Ingested = len(ingested)
	p.log.Info().
		Int("input", len(records)).
		Int("incomplete", dropped).
		Int("duplicates", stats.Duplicates).
		Int("kept", len(ingested)).
		Msg("ingested records")

	start = time.Now()
	progress := rate.Sometimes{Interval: progressInterval}
	batch := cleaner.CleanAll(ingested, func(i int, res cleaner.Result) {
		progress.Do(func() {
			p.log.Debug().Int("done", i+1).Int("total", len(ingested)).Msg("cleaning")
		})
	})
	p.metrics.ObserveStage("clean", time.Since(start).Seconds())
	p.metrics.TracksCleaned(len(batch.Tracks))
	for reason, n := range batch.Rejected {
		p.metrics.Rejected(string(reason), n)
	}
	sum.Cleaned = len(batch.Tracks)
	sum.Rejected = batch.Rejected
	p.log.Info().
		Int("accepted", len(batch.Tracks)).
		Int("rejected", batch.RejectedTotal()).
		Msg("cleaned records")

	start = time.Now()
	table := identity.Build(batch.Tracks)
	near := identity.NearDuplicates(table, p.cfg.SimilarityThreshold)
	p.metrics.ObserveStage("identity", time.Since(start).Seconds())
	p.metrics.Identities(table.Len())
	p.metrics.NearDuplicates(len(near))
	sum.Identities = table.Len()
	sum.NearDuplicates = len(near)
	for _, d := range near {
		p.log.Warn().
			Str("artist", d.Artist).
			Str("track", d.TrackName).
			Str("other", d.OtherName).
			Float64("similarity", d.Similarity).
			Msg("possible duplicate identity")
	}

	start = time.Now()
	examples, err := sequence.MakePairs(batch.Tracks, table)
	if err != nil {
		return nil, fmt.Errorf("generate pairs: %w", err)
	}
	p.metrics.ObserveStage("pairs", time.Since(start).Seconds())
	p.metrics.Examples(len(examples))
	sum.Playlists = sequence.CountPlaylists(batch.Tracks)
	sum.Examples = len(examples)
	p.log.Info().
		Int("identities", table.Len()).
		Int("playlists", sum.Playlists).
		Int("examples", len(examples)).
		Msg("generated training pairs")

	return &Dataset{
		Ingested:       ingested,
		Tracks:         batch.Tracks,
		Identities:     table,
		Examples:       examples,
		NearDuplicates: near,
	}, nil
}

func (p *Pipeline) persist(ctx context.Context, ds *Dataset) error {
	if err := writer.WriteIngested(p.cfg.IngestedPath(), ds.Ingested); err != nil {
		return err
	}
	if err := writer.WriteJSON(p.cfg.CleanedPath(), nonNil(ds.Tracks)); err != nil {
		return err
	}
	if err := writer.WriteIdentities(p.cfg.TrackToIDPath(), p.cfg.IDToTrackPath(), ds.Identities); err != nil {
		return err
	}
	if err := writer.WriteExamples(p.cfg.ExamplesPath(), ds.Examples); err != nil {
		return err
	}
	if err := writer.WriteJSON(p.cfg.NearDuplicatesPath(), nonNil(ds.NearDuplicates)); err != nil {
		return err
	}
	p.log.Info().Str("dir", p.cfg.ProcessedDir).Msg("wrote outputs")

	if p.cfg.DatabasePath == "" {
		return nil
	}
	db, err := database.Open(p.cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()
	return p.saveSnapshot(ctx, db, ds)
}

func (p *Pipeline) saveSnapshot(ctx context.Context, db *sql.DB, ds *Dataset) error {
	err := database.SaveSnapshot(ctx, db, database.Snapshot{
		Tracks:     ds.Tracks,
		Identities: ds.Identities,
		Examples:   ds.Examples,
	})
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	p.log.Info().Str("db", p.cfg.DatabasePath).Msg("saved sqlite snapshot")
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
