package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"mirify/internal/models"
)

//go:embed schema.sql
var schema string

// Snapshot is everything one pipeline run persists.
type Snapshot struct {
	Tracks     []models.CleanedTrack
	Identities *models.IdentityTable
	Examples   []models.TrainingExample
}

// Open opens (creating if needed) the SQLite file at path and applies the schema.
func Open(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := InitDatabase(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return db, nil
}

// InitDatabase runs the embedded schema and sets performance PRAGMAs
func InitDatabase(db *sql.DB) error {
	_, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL; PRAGMA cache_size=-2000;")
	if err != nil {
		return err
	}
	_, err = db.Exec(schema)
	return err
}

// SaveSnapshot replaces the stored dataset with s in a single transaction.
func SaveSnapshot(ctx context.Context, db *sql.DB, s Snapshot) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"training_examples", "track_identities", "cleaned_tracks"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err := insertTracks(ctx, tx, s.Tracks); err != nil {
		return err
	}
	if err := insertIdentities(ctx, tx, s.Identities); err != nil {
		return err
	}
	if err := insertExamples(ctx, tx, s.Examples); err != nil {
		return err
	}

	identities := 0
	if s.Identities != nil {
		identities = s.Identities.Len()
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO runs (cleaned_tracks, identities, examples) VALUES (?, ?, ?)",
		len(s.Tracks), identities, len(s.Examples))
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	return tx.Commit()
}

func insertTracks(ctx context.Context, tx *sql.Tx, tracks []models.CleanedTrack) error {
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO cleaned_tracks (seq, playlist, position, track_name, artist, album, liked, track_id)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare tracks: %w", err)
	}
	defer stmt.Close()

	for i, t := range tracks {
		if _, err := stmt.ExecContext(ctx, i, t.Playlist, t.Position, t.TrackName, t.Artist, nullable(t.Album), t.Liked, t.TrackID); err != nil {
			return fmt.Errorf("insert track %d: %w", i, err)
		}
	}
	return nil
}

func insertIdentities(ctx context.Context, tx *sql.Tx, table *models.IdentityTable) error {
	if table == nil {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO track_identities (id, track_id, track_name, artist, album)
	VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare identities: %w", err)
	}
	defer stmt.Close()

	for id, tid := range table.TrackIDs() {
		m := table.IDToTrack[id]
		if _, err := stmt.ExecContext(ctx, id, tid, m.TrackName, m.Artist, nullable(m.Album)); err != nil {
			return fmt.Errorf("insert identity %d: %w", id, err)
		}
	}
	return nil
}

func insertExamples(ctx context.Context, tx *sql.Tx, examples []models.TrainingExample) error {
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO training_examples (seq, playlist, context_track_id, target_track_id)
	VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare examples: %w", err)
	}
	defer stmt.Close()

	for i, ex := range examples {
		if _, err := stmt.ExecContext(ctx, i, ex.Playlist, ex.ContextTrackID, ex.TargetTrackID); err != nil {
			return fmt.Errorf("insert example %d: %w", i, err)
		}
	}
	return nil
}

// LoadExamples reads the stored examples back in their original order.
func LoadExamples(ctx context.Context, db *sql.DB) ([]models.TrainingExample, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT playlist, context_track_id, target_track_id FROM training_examples ORDER BY seq")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TrainingExample
	for rows.Next() {
		var ex models.TrainingExample
		if err := rows.Scan(&ex.Playlist, &ex.ContextTrackID, &ex.TargetTrackID); err != nil {
			return nil, err
		}
		out = append(out, ex)
	}
	return out, rows.Err()
}

// LookupTrackID returns the integer ID stored for trackID.
func LookupTrackID(ctx context.Context, db *sql.DB, trackID string) (int, error) {
	var id int
	err := db.QueryRowContext(ctx, "SELECT id FROM track_identities WHERE track_id = ?", trackID).Scan(&id)
	return id, err
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
