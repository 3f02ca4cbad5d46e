package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"mirify/internal/models"
)

// canonical header mapping
var headerAliases = map[string]string{
	"playlist":          "playlist",
	"playlist_name":     "playlist",
	"playlist_title":    "playlist",
	"position":          "position",
	"pos":               "position",
	"index":             "position",
	"track_number":      "position",
	"playlist_position": "position",
	"track_name":        "track_name",
	"track":             "track_name",
	"track_title":       "track_name",
	"title":             "track_name",
	"name":              "track_name",
	"song":              "track_name",
	"artist":            "artist",
	"artist_name":       "artist",
	"artists":           "artist",
	"performer":         "artist",
	"album":             "album",
	"album_name":        "album",
	"album_title":       "album",
	"liked":             "liked",
	"is_liked":          "liked",
	"favorite":          "liked",
	"favourite":         "liked",
	"saved":             "liked",
}

var headerSeparators = regexp.MustCompile(`[^a-z0-9]+`)

func canonicalHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	h = strings.Trim(headerSeparators.ReplaceAllString(h, "_"), "_")
	return headerAliases[h]
}

// recordsFromRows maps a header row and data rows to raw records. The first
// column claiming a field wins. Missing cells are empty.
func recordsFromRows(headers []string, rows [][]string, source string) ([]models.RawRecord, error) {
	columnMap := make(map[int]string)
	claimed := make(map[string]bool)
	for i, h := range headers {
		field := canonicalHeader(h)
		if field == "" || claimed[field] {
			continue
		}
		claimed[field] = true
		columnMap[i] = field
	}

	if len(columnMap) == 0 {
		return nil, fmt.Errorf("%w: %s: no recognizable columns", ErrMalformedSource, source)
	}

	records := make([]models.RawRecord, 0, len(rows))
	for _, row := range rows {
		r := models.RawRecord{Source: source}
		empty := true
		for i, v := range row {
			field, ok := columnMap[i]
			if !ok {
				continue
			}
			if strings.TrimSpace(v) != "" {
				empty = false
			}
			switch field {
			case "playlist":
				r.Playlist = v
			case "position":
				r.Position = v
			case "track_name":
				r.TrackName = v
			case "artist":
				r.Artist = v
			case "album":
				r.Album = v
			case "liked":
				r.Liked = v
			}
		}

		// Skip totally empty rows
		if empty {
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

func loadDelimitedFile(path string, comma rune) ([]models.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return ParseDelimited(f, comma, path)
}

// ParseDelimited reads a CSV (comma ',') or TSV (comma '\t') export whose
// first row is the header. An empty input yields no records.
func ParseDelimited(r io.Reader, comma rune, source string) ([]models.RawRecord, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedSource, source, err)
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedSource, source, err)
		}
		rows = append(rows, row)
	}

	return recordsFromRows(headers, rows, source)
}
