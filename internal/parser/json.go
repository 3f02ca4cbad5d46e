package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"mirify/internal/models"
)

func loadJSONFile(path string) ([]models.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return ParseJSON(f, path)
}

// ParseJSON reads a JSON export: a top-level array of objects keyed by the
// raw record field names. Scalars are kept as their textual form, null is
// treated as absent.
func ParseJSON(r io.Reader, source string) ([]models.RawRecord, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var rows []map[string]any
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedSource, source, err)
	}

	records := make([]models.RawRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, models.RawRecord{
			Playlist:  jsonText(row["playlist"]),
			Position:  jsonText(row["position"]),
			TrackName: jsonText(row["track_name"]),
			Artist:    jsonText(row["artist"]),
			Album:     jsonText(row["album"]),
			Liked:     jsonText(row["liked"]),
			Source:    source,
		})
	}
	return records, nil
}

func jsonText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		if x {
			return "true"
		}
		return "false"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(bytes.TrimSpace(b))
}

// WriteRawJSON writes records in the JSON export format ParseJSON reads.
func WriteRawJSON(w io.Writer, records []models.RawRecord) error {
	if records == nil {
		records = []models.RawRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
