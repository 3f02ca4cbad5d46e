// Package cleaner validates and coerces raw records into CleanedTracks.
//
// Clean never fails: a record is either turned into a complete CleanedTrack or
// rejected with a Reason. Rejection is an expected outcome, not an error.
package cleaner

import (
	"strconv"
	"strings"

	"mirify/internal/models"
	"mirify/internal/normalize"
)

// Reason explains why a record was rejected.
type Reason string

const (
	EmptyPlaylist   Reason = "empty_playlist"
	EmptyTrackName  Reason = "empty_track_name"
	EmptyArtist     Reason = "empty_artist"
	InvalidPosition Reason = "invalid_position"
	InvalidLiked    Reason = "invalid_liked"
)

// Reasons lists every rejection reason in a fixed order.
var Reasons = []Reason{EmptyPlaylist, EmptyTrackName, EmptyArtist, InvalidPosition, InvalidLiked}

var likedTokens = map[string]int{
	"1": 1, "true": 1, "t": 1, "yes": 1, "y": 1,
	"0": 0, "false": 0, "f": 0, "no": 0, "n": 0,
}

// Result is either an accepted track (Reason empty) or a rejection.
type Result struct {
	Track  models.CleanedTrack
	Reason Reason
}

// OK reports whether the record was accepted.
func (r Result) OK() bool {
	return r.Reason == ""
}

func rejected(reason Reason) Result {
	return Result{Reason: reason}
}

// Clean validates r. Text fields are normalized with normalize.Text before
// being checked; track_id is attached last.
func Clean(r models.RawRecord) Result {
	playlist := normalize.Text(r.Playlist)
	trackName := normalize.Text(r.TrackName)
	artist := normalize.Text(r.Artist)
	album := normalize.Text(r.Album)

	switch {
	case playlist == "":
		return rejected(EmptyPlaylist)
	case trackName == "":
		return rejected(EmptyTrackName)
	case artist == "":
		return rejected(EmptyArtist)
	}

	position, ok := ParsePosition(r.Position)
	if !ok {
		return rejected(InvalidPosition)
	}

	liked, ok := ParseLiked(r.Liked)
	if !ok {
		return rejected(InvalidLiked)
	}

	return Result{Track: models.CleanedTrack{
		Playlist:  playlist,
		Position:  position,
		TrackName: trackName,
		Artist:    artist,
		Album:     album,
		Liked:     liked,
		TrackID:   TrackID(artist, trackName),
	}}
}

// ParsePosition parses a strictly positive integer, ignoring surrounding whitespace.
func ParsePosition(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// ParseLiked maps the accepted boolean tokens to 0 or 1. Anything else,
// including an empty value, is invalid.
func ParseLiked(s string) (int, bool) {
	v, ok := likedTokens[strings.ToLower(strings.TrimSpace(s))]
	return v, ok
}

// TrackID derives the canonical identity string of a song.
func TrackID(artist, trackName string) string {
	return normalize.Text(artist) + " - " + normalize.Text(trackName)
}

// Batch is the outcome of cleaning a slice of records.
type Batch struct {
	Tracks   []models.CleanedTrack
	Rejected map[Reason]int
}

// RejectedTotal sums the rejection counts.
func (b Batch) RejectedTotal() int {
	total := 0
	for _, n := range b.Rejected {
		total += n
	}
	return total
}

// CleanAll cleans records in order. onResult, when non-nil, sees every result.
func CleanAll(records []models.RawRecord, onResult func(i int, res Result)) Batch {
	b := Batch{
		Tracks:   make([]models.CleanedTrack, 0, len(records)),
		Rejected: make(map[Reason]int),
	}
	for i, r := range records {
		res := Clean(r)
		if onResult != nil {
			onResult(i, res)
		}
		if !res.OK() {
			b.Rejected[res.Reason]++
			continue
		}
		b.Tracks = append(b.Tracks, res.Track)
	}
	return b
}
