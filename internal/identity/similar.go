package identity

import (
	"sort"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"mirify/internal/models"
)

// NearDuplicates compares the track names of identities that share an artist
// and returns every pair whose Jaro-Winkler similarity is at least threshold.
// Identical names never occur within one artist since they share a track_id.
// Pairs come out ordered by (TrackID, OtherID) with TrackID < OtherID.
// A threshold <= 0 disables the check.
func NearDuplicates(table *models.IdentityTable, threshold float64) []models.NearDuplicate {
	if threshold <= 0 || table == nil {
		return nil
	}

	byArtist := make(map[string][]int)
	for id := 0; id < table.Len(); id++ {
		m := table.IDToTrack[id]
		byArtist[m.Artist] = append(byArtist[m.Artist], id)
	}

	jw := metrics.NewJaroWinkler()
	var out []models.NearDuplicate
	for artist, ids := range byArtist {
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				a, b := table.IDToTrack[ids[i]], table.IDToTrack[ids[j]]
				if a.TrackName == b.TrackName {
					continue
				}
				score := strutil.Similarity(a.TrackName, b.TrackName, jw)
				if score < threshold {
					continue
				}
				out = append(out, models.NearDuplicate{
					Artist:     artist,
					TrackID:    ids[i],
					OtherID:    ids[j],
					TrackName:  a.TrackName,
					OtherName:  b.TrackName,
					Similarity: score,
				})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TrackID != out[j].TrackID {
			return out[i].TrackID < out[j].TrackID
		}
		return out[i].OtherID < out[j].OtherID
	})
	return out
}
