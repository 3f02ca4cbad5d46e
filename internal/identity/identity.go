// Package identity assigns stable integer IDs to track identities.
package identity

import (
	"sort"

	"mirify/internal/models"
)

// Build collapses tracks sharing a track_id into one identity and numbers the
// identities 0..N-1 in lexicographic track_id order, so the IDs depend only on
// the set of identities and not on input order.
//
// Metadata for an identity comes from the last track carrying that track_id.
func Build(tracks []models.CleanedTrack) *models.IdentityTable {
	meta := make(map[string]models.TrackMeta)
	for _, t := range tracks {
		meta[t.TrackID] = models.TrackMeta{
			TrackName: t.TrackName,
			Artist:    t.Artist,
			Album:     t.Album,
		}
	}

	ids := make([]string, 0, len(meta))
	for tid := range meta {
		ids = append(ids, tid)
	}
	sort.Strings(ids)

	table := &models.IdentityTable{
		TrackToID: make(map[string]int, len(ids)),
		IDToTrack: make(map[int]models.TrackMeta, len(ids)),
	}
	for i, tid := range ids {
		table.TrackToID[tid] = i
		table.IDToTrack[i] = meta[tid]
	}
	return table
}
