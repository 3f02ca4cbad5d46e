// Package dedupe collapses ingestion records that name the same song.
package dedupe

import (
	"strings"

	"mirify/internal/models"
)

// Key identifies a song during ingestion: lowercased track name and artist.
type Key struct {
	TrackName string
	Artist    string
}

// KeyOf returns the dedup key of r. r is expected to be ingestion-normalized.
func KeyOf(r models.RawRecord) Key {
	return Key{
		TrackName: strings.ToLower(r.TrackName),
		Artist:    strings.ToLower(r.Artist),
	}
}

// Stats summarizes one Dedupe call.
type Stats struct {
	Input      int
	Unique     int
	Duplicates int
}

// Dedupe keeps the first record seen for every Key and drops the rest,
// whatever their playlist, position or album. Input order decides the
// survivor, so callers must feed records in a reproducible order.
func Dedupe(records []models.RawRecord) []models.RawRecord {
	out, _ := DedupeWithStats(records)
	return out
}

// DedupeWithStats is Dedupe plus counts.
func DedupeWithStats(records []models.RawRecord) ([]models.RawRecord, Stats) {
	seen := make(map[Key]struct{}, len(records))
	out := make([]models.RawRecord, 0, len(records))

	for _, r := range records {
		k := KeyOf(r)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}

	return out, Stats{
		Input:      len(records),
		Unique:     len(out),
		Duplicates: len(records) - len(out),
	}
}
