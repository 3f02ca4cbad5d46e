package models

// RawRecord is one playlist-export row as delivered by a source loader.
// Every field is optional; an absent field is the empty string.
type RawRecord struct {
	Playlist  string `json:"playlist"`
	Position  string `json:"position"`
	TrackName string `json:"track_name"`
	Artist    string `json:"artist"`
	Album     string `json:"album,omitempty"`
	Liked     string `json:"liked"`

	// Source is the file (or remote playlist) the record was read from.
	Source string `json:"-"`
}

// CleanedTrack is a validated, typed track occurrence within a playlist.
type CleanedTrack struct {
	Playlist  string `json:"playlist"`
	Position  int    `json:"position"`
	TrackName string `json:"track_name"`
	Artist    string `json:"artist"`
	Album     string `json:"album,omitempty"`
	Liked     int    `json:"liked"`
	TrackID   string `json:"track_id"`
}

// TrackMeta is the representative metadata of one track identity.
type TrackMeta struct {
	TrackName string `json:"track_name"`
	Artist    string `json:"artist"`
	Album     string `json:"album,omitempty"`
}

// IdentityTable maps track_id strings to dense integer IDs and back.
type IdentityTable struct {
	TrackToID map[string]int    `json:"track_to_id"`
	IDToTrack map[int]TrackMeta `json:"id_to_track"`
}

// Len returns the number of distinct identities.
func (t *IdentityTable) Len() int {
	return len(t.TrackToID)
}

// ID returns the integer ID assigned to trackID.
func (t *IdentityTable) ID(trackID string) (int, bool) {
	id, ok := t.TrackToID[trackID]
	return id, ok
}

// TrackIDs returns the track_id strings indexed by their integer ID.
func (t *IdentityTable) TrackIDs() []string {
	out := make([]string, len(t.TrackToID))
	for tid, id := range t.TrackToID {
		out[id] = tid
	}
	return out
}

// TrainingExample is one adjacent (context, target) pair inside a playlist.
type TrainingExample struct {
	Playlist       string `json:"playlist"`
	ContextTrackID int    `json:"context_track_id"`
	TargetTrackID  int    `json:"target_track_id"`
}

// NearDuplicate flags two identities of the same artist with nearly equal titles.
type NearDuplicate struct {
	Artist     string  `json:"artist"`
	TrackID    int     `json:"track_id"`
	OtherID    int     `json:"other_id"`
	TrackName  string  `json:"track_name"`
	OtherName  string  `json:"other_name"`
	Similarity float64 `json:"similarity"`
}
