// Package writer persists pipeline outputs as JSON files.
//
// Files are written to a temporary sibling and renamed into place so a failed
// run never leaves a truncated output behind.
package writer

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"mirify/internal/models"
)

// IngestedTrack is the ingestion-stage dataset row; an absent album is null.
type IngestedTrack struct {
	Playlist  string  `json:"playlist"`
	Position  string  `json:"position"`
	TrackName string  `json:"track_name"`
	Artist    string  `json:"artist"`
	Album     *string `json:"album"`
	Liked     string  `json:"liked"`
}

// WriteIngested writes the deduplicated ingestion dataset as a JSON array.
func WriteIngested(path string, records []models.RawRecord) error {
	rows := make([]IngestedTrack, 0, len(records))
	for _, r := range records {
		row := IngestedTrack{
			Playlist:  r.Playlist,
			Position:  r.Position,
			TrackName: r.TrackName,
			Artist:    r.Artist,
			Liked:     r.Liked,
		}
		if r.Album != "" {
			album := r.Album
			row.Album = &album
		}
		rows = append(rows, row)
	}
	return WriteJSON(path, rows)
}

// WriteIdentities writes track_to_id and id_to_track as two JSON objects.
func WriteIdentities(trackToIDPath, idToTrackPath string, table *models.IdentityTable) error {
	if err := WriteJSON(trackToIDPath, table.TrackToID); err != nil {
		return err
	}
	return WriteJSON(idToTrackPath, table.IDToTrack)
}

// WriteJSON writes v as indented JSON.
func WriteJSON(path string, v any) error {
	return atomicWrite(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

// WriteExamples writes one JSON object per line.
func WriteExamples(path string, examples []models.TrainingExample) error {
	return atomicWrite(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		for _, ex := range examples {
			if err := enc.Encode(ex); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReadExamples reads a file written by WriteExamples.
func ReadExamples(path string) ([]models.TrainingExample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []models.TrainingExample
	dec := json.NewDecoder(bufio.NewReader(f))
	for dec.More() {
		var ex models.TrainingExample
		if err := dec.Decode(&ex); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		out = append(out, ex)
	}
	return out, nil
}

func atomicWrite(path string, fill func(w io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	bw := bufio.NewWriter(tmp)
	if err := fill(bw); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return os.Rename(tmp.Name(), path)
}
