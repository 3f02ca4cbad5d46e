// Package sequence turns playlists into next-track training pairs.
package sequence

import (
	"errors"
	"fmt"
	"sort"

	"mirify/internal/models"
)

// ErrUnknownTrack means a track_id has no entry in the identity table.
// It indicates a broken pipeline, never bad input.
var ErrUnknownTrack = errors.New("track_id missing from identity table")

// Playlist is one playlist's tracks in position order.
type Playlist struct {
	Name   string
	Tracks []models.CleanedTrack
}

// Group splits tracks by playlist, keeping playlists in first-seen order and
// sorting each one by position. Equal positions keep their input order.
func Group(tracks []models.CleanedTrack) []Playlist {
	index := make(map[string]int)
	var groups []Playlist
	for _, t := range tracks {
		i, ok := index[t.Playlist]
		if !ok {
			i = len(groups)
			index[t.Playlist] = i
			groups = append(groups, Playlist{Name: t.Playlist})
		}
		groups[i].Tracks = append(groups[i].Tracks, t)
	}

	for _, g := range groups {
		sort.SliceStable(g.Tracks, func(a, b int) bool {
			return g.Tracks[a].Position < g.Tracks[b].Position
		})
	}
	return groups
}

// CountPlaylists returns the number of distinct playlists in tracks.
func CountPlaylists(tracks []models.CleanedTrack) int {
	seen := make(map[string]struct{})
	for _, t := range tracks {
		seen[t.Playlist] = struct{}{}
	}
	return len(seen)
}

// MakePairs emits one example per adjacent pair of tracks inside each
// playlist. A playlist of k tracks yields k-1 examples; repeated identities
// produce (x, x) pairs, which are kept.
func MakePairs(tracks []models.CleanedTrack, table *models.IdentityTable) ([]models.TrainingExample, error) {
	var examples []models.TrainingExample
	for _, pl := range Group(tracks) {
		for i := 1; i < len(pl.Tracks); i++ {
			prev, err := lookup(table, pl.Tracks[i-1])
			if err != nil {
				return nil, err
			}
			next, err := lookup(table, pl.Tracks[i])
			if err != nil {
				return nil, err
			}
			examples = append(examples, models.TrainingExample{
				Playlist:       pl.Name,
				ContextTrackID: prev,
				TargetTrackID:  next,
			})
		}
	}
	return examples, nil
}

func lookup(table *models.IdentityTable, t models.CleanedTrack) (int, error) {
	id, ok := table.ID(t.TrackID)
	if !ok {
		return 0, fmt.Errorf("playlist %q position %d %q: %w", t.Playlist, t.Position, t.TrackID, ErrUnknownTrack)
	}
	return id, nil
}
