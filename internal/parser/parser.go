// Package parser discovers and loads playlist exports into raw records.
//
// Loaders only read and reshape data; text normalization and validation
// happen later in the pipeline. A structurally broken file is a hard error.
package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mirify/internal/models"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrMalformedSource   = errors.New("malformed export")
)

// Format is a supported export file type.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatXLSX Format = "xlsx"
)

// FormatOf returns the format implied by the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatCSV, nil
	case ".tsv":
		return FormatTSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// Discover lists the supported export files directly inside dir, sorted by
// path. The order is part of the contract: deduplication keeps the first
// record it sees, so discovery must not depend on filesystem enumeration.
// Regular files with an unsupported extension are passed to onSkip, if set.
func Discover(dir string, onSkip func(path string)) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read raw dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		p := filepath.Join(dir, e.Name())
		if _, err := FormatOf(p); err != nil {
			if onSkip != nil {
				onSkip(p)
			}
			continue
		}
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}

// LoadFile reads one export file.
func LoadFile(path string) ([]models.RawRecord, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatJSON:
		return loadJSONFile(path)
	case FormatCSV:
		return loadDelimitedFile(path, ',')
	case FormatTSV:
		return loadDelimitedFile(path, '\t')
	case FormatXLSX:
		return loadXLSXFile(path)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// LoadAll reads paths in the given order and concatenates their records.
// onFile, when non-nil, is called after each file with its record count.
func LoadAll(paths []string, onFile func(path string, n int)) ([]models.RawRecord, error) {
	var all []models.RawRecord
	for _, p := range paths {
		recs, err := LoadFile(p)
		if err != nil {
			return nil, err
		}
		if onFile != nil {
			onFile(p, len(recs))
		}
		all = append(all, recs...)
	}
	return all, nil
}
