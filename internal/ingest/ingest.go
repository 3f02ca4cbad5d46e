// Package ingest prepares loaded export records for deduplication.
package ingest

import (
	"strings"

	"mirify/internal/models"
	"mirify/internal/normalize"
)

// Prepare applies the ingestion normalization to the text fields of r and
// reports whether the record carries every field the dataset needs.
// Position and liked are only trimmed; they are coerced during cleaning.
func Prepare(r models.RawRecord) (models.RawRecord, bool) {
	out := models.RawRecord{
		Playlist:  normalize.Ingest(r.Playlist),
		Position:  strings.TrimSpace(r.Position),
		TrackName: normalize.Ingest(r.TrackName),
		Artist:    normalize.Ingest(r.Artist),
		Album:     normalize.Ingest(r.Album),
		Liked:     strings.TrimSpace(r.Liked),
		Source:    r.Source,
	}

	if out.Playlist == "" || out.Position == "" || out.TrackName == "" || out.Artist == "" || out.Liked == "" {
		return models.RawRecord{}, false
	}
	return out, true
}

// PrepareAll runs Prepare over records in order, keeping the ones that pass.
// The second value is the number of dropped records.
func PrepareAll(records []models.RawRecord) ([]models.RawRecord, int) {
	out := make([]models.RawRecord, 0, len(records))
	dropped := 0
	for _, r := range records {
		p, ok := Prepare(r)
		if !ok {
			dropped++
			continue
		}
		out = append(out, p)
	}
	return out, dropped
}
