package parser

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"

	"mirify/internal/models"
)

// NewSpotifyClient builds a Web API client authenticated with the client
// credentials flow. Only public playlists are reachable this way.
func NewSpotifyClient(ctx context.Context, clientID, clientSecret string) *spotify.Client {
	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	return spotify.New(config.Client(ctx))
}

type SpotifyParser struct {
	client *spotify.Client
}

func NewSpotifyParser(client *spotify.Client) *SpotifyParser {
	return &SpotifyParser{client: client}
}

// FetchPlaylist exports a playlist as raw records. ref is a playlist URL or a
// bare playlist ID. Positions are 1-based over the exported tracks; local
// files and unavailable tracks are skipped.
func (p *SpotifyParser) FetchPlaylist(ctx context.Context, ref string, liked bool) ([]models.RawRecord, string, error) {
	id, err := p.parseRef(ref)
	if err != nil {
		return nil, "", err
	}

	res, err := p.client.GetPlaylist(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("get playlist: %w", err)
	}

	source := "spotify:playlist:" + string(id)
	var records []models.RawRecord
	trackPage := res.Tracks
	for {
		for _, item := range trackPage.Tracks {
			if item.Track.ID == "" || item.IsLocal {
				continue
			}
			records = append(records, p.transform(res.Name, len(records)+1, item.Track, liked, source))
		}

		err = p.client.NextPage(ctx, &trackPage)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return records, res.Name, fmt.Errorf("playlist pagination error: %w", err)
		}
	}

	return records, res.Name, nil
}

func (p *SpotifyParser) parseRef(ref string) (spotify.ID, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty spotify playlist reference")
	}
	if strings.HasPrefix(ref, "spotify:playlist:") {
		return spotify.ID(strings.TrimPrefix(ref, "spotify:playlist:")), nil
	}
	if !strings.Contains(ref, "/") {
		return spotify.ID(ref), nil
	}
	if !strings.Contains(ref, "/playlist/") {
		return "", fmt.Errorf("not a spotify playlist URL: %s", ref)
	}
	return p.extractID(ref), nil
}

func (p *SpotifyParser) extractID(urlStr string) spotify.ID {
	parts := strings.Split(urlStr, "/")
	lastPart := parts[len(parts)-1]
	id := strings.Split(lastPart, "?")[0]
	return spotify.ID(id)
}

func (p *SpotifyParser) transform(playlist string, position int, st spotify.FullTrack, liked bool, source string) models.RawRecord {
	artists := make([]string, len(st.Artists))
	for i, a := range st.Artists {
		artists[i] = a.Name
	}

	return models.RawRecord{
		Playlist:  playlist,
		Position:  strconv.Itoa(position),
		TrackName: st.Name,
		Artist:    strings.Join(artists, ", "),
		Album:     st.Album.Name,
		Liked:     likedToken(liked),
		Source:    source,
	}
}

func likedToken(liked bool) string {
	if liked {
		return "1"
	}
	return "0"
}
