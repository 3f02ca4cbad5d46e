package parser

import (
	"fmt"
	"strconv"

	"github.com/kkdai/youtube/v2"

	"mirify/internal/models"
)

// PlaylistGetter is the part of youtube.Client the parser needs.
type PlaylistGetter interface {
	GetPlaylist(url string) (*youtube.Playlist, error)
}

type YouTubeParser struct {
	client PlaylistGetter
}

// NewYouTubeParser wraps client; a nil client uses a default youtube.Client.
func NewYouTubeParser(client PlaylistGetter) *YouTubeParser {
	if client == nil {
		client = &youtube.Client{}
	}
	return &YouTubeParser{client: client}
}

// FetchPlaylist exports a YouTube playlist as raw records. Artist and title
// are recovered from the video title, falling back to the uploader.
func (p *YouTubeParser) FetchPlaylist(url string, liked bool) ([]models.RawRecord, string, error) {
	playlist, err := p.client.GetPlaylist(url)
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse YouTube playlist: %w", err)
	}

	source := "youtube:playlist:" + playlist.ID
	var records []models.RawRecord
	for _, entry := range playlist.Videos {
		if entry == nil {
			continue
		}
		// entry.Author is the Uploader
		artist, title := NormalizeYTTitle(entry.Title, entry.Author)
		if title == "" {
			continue
		}
		records = append(records, models.RawRecord{
			Playlist:  playlist.Title,
			Position:  strconv.Itoa(len(records) + 1),
			TrackName: title,
			Artist:    artist,
			Liked:     likedToken(liked),
			Source:    source,
		})
	}
	return records, playlist.Title, nil
}
