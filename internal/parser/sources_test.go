package parser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kkdai/youtube/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zmb3/spotify/v2"
)

func TestSpotifyFetchPlaylist(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/playlists/abc123":
			fmt.Fprintf(w, `{
				"id": "abc123",
				"name": "Road Trip",
				"tracks": {
					"limit": 3, "offset": 0, "total": 4,
					"next": "%s/playlists/abc123/tracks?offset=3",
					"items": [
						{"is_local": false, "track": {"id": "t1", "name": "Get Lucky", "artists": [{"name": "Daft Punk"}, {"name": "Pharrell Williams"}], "album": {"name": "Random Access Memories"}}},
						{"is_local": true, "track": {"id": "", "name": "Voice Memo", "artists": [], "album": {"name": ""}}},
						{"is_local": false, "track": {"id": "t2", "name": "Digital Love", "artists": [{"name": "Daft Punk"}], "album": {"name": "Discovery"}}}
					]
				}
			}`, srv.URL)
		case "/playlists/abc123/tracks":
			fmt.Fprint(w, `{
				"limit": 3, "offset": 3, "total": 4, "next": null,
				"items": [
					{"is_local": false, "track": {"id": "t3", "name": "Veridis Quo", "artists": [{"name": "Daft Punk"}], "album": {"name": "Discovery"}}}
				]
			}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := spotify.New(srv.Client(), spotify.WithBaseURL(srv.URL+"/"))
	p := NewSpotifyParser(client)

	recs, name, err := p.FetchPlaylist(context.Background(), "https://open.spotify.com/playlist/abc123?si=xyz", true)
	require.NoError(t, err)
	assert.Equal(t, "Road Trip", name)
	require.Len(t, recs, 3)

	assert.Equal(t, "Road Trip", recs[0].Playlist)
	assert.Equal(t, "1", recs[0].Position)
	assert.Equal(t, "Get Lucky", recs[0].TrackName)
	assert.Equal(t, "Daft Punk, Pharrell Williams", recs[0].Artist)
	assert.Equal(t, "Random Access Memories", recs[0].Album)
	assert.Equal(t, "1", recs[0].Liked)
	assert.Equal(t, "spotify:playlist:abc123", recs[0].Source)

	assert.Equal(t, "2", recs[1].Position)
	assert.Equal(t, "Digital Love", recs[1].TrackName)
	assert.Equal(t, "3", recs[2].Position)
	assert.Equal(t, "Veridis Quo", recs[2].TrackName)
}

func TestSpotifyParseRef(t *testing.T) {
	p := NewSpotifyParser(nil)

	tests := []struct {
		ref  string
		want spotify.ID
		ok   bool
	}{
		{ref: "37i9dQZF1DXcBWIGoYBM5M", want: "37i9dQZF1DXcBWIGoYBM5M", ok: true},
		{ref: "spotify:playlist:abc", want: "abc", ok: true},
		{ref: "https://open.spotify.com/playlist/abc?si=1", want: "abc", ok: true},
		{ref: "https://open.spotify.com/album/abc", ok: false},
		{ref: "  ", ok: false},
	}

	for _, tt := range tests {
		id, err := p.parseRef(tt.ref)
		if !tt.ok {
			assert.Error(t, err, tt.ref)
			continue
		}
		require.NoError(t, err, tt.ref)
		assert.Equal(t, tt.want, id)
	}
}

type fakePlaylists struct {
	playlist *youtube.Playlist
	err      error
}

func (f fakePlaylists) GetPlaylist(string) (*youtube.Playlist, error) {
	return f.playlist, f.err
}

func TestYouTubeFetchPlaylist(t *testing.T) {
	p := NewYouTubeParser(fakePlaylists{playlist: &youtube.Playlist{
		ID:    "PL1",
		Title: "Chill",
		Videos: []*youtube.PlaylistEntry{
			{ID: "v1", Title: "Daft Punk - Get Lucky (Official Video)", Author: "DaftPunkVEVO"},
			nil,
			{ID: "v2", Title: "Intro", Author: "The xx - Topic"},
		},
	}})

	recs, name, err := p.FetchPlaylist("https://www.youtube.com/playlist?list=PL1", false)
	require.NoError(t, err)
	assert.Equal(t, "Chill", name)
	require.Len(t, recs, 2)

	assert.Equal(t, "Daft Punk", recs[0].Artist)
	assert.Equal(t, "Get Lucky", recs[0].TrackName)
	assert.Equal(t, "1", recs[0].Position)
	assert.Equal(t, "0", recs[0].Liked)
	assert.Equal(t, "youtube:playlist:PL1", recs[0].Source)

	assert.Equal(t, "Intro", recs[1].TrackName)
	assert.Equal(t, "The Xx", recs[1].Artist)
	assert.Equal(t, "2", recs[1].Position)
}

func TestYouTubeFetchPlaylistError(t *testing.T) {
	boom := errors.New("boom")
	p := NewYouTubeParser(fakePlaylists{err: boom})

	_, _, err := p.FetchPlaylist("x", false)
	assert.ErrorIs(t, err, boom)
}

func TestNormalizeYTTitle(t *testing.T) {
	tests := []struct {
		title, uploader      string
		wantArtist, wantName string
	}{
		{"Daft Punk - Get Lucky (Official Audio)", "", "Daft Punk", "Get Lucky"},
		{"ABBA - Dancing Queen", "ABBAVEVO", "ABBA", "Dancing Queen"},
		{"some song title here now - x", "", "X", "Some Song Title Here Now"},
		{"Song", "", "", "Song"},
		{"Song [Lyrics]", "uploader", "Uploader", "Song"},
	}

	for _, tt := range tests {
		artist, name := NormalizeYTTitle(tt.title, tt.uploader)
		assert.Equal(t, tt.wantArtist, artist, tt.title)
		assert.Equal(t, tt.wantName, name, tt.title)
	}
}
