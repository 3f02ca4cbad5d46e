package parser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"mirify/internal/models"
)

// Sheet names that never hold track rows.
var skipSheets = map[string]bool{
	"info":     true,
	"metadata": true,
	"about":    true,
	"readme":   true,
	"notes":    true,
}

func loadXLSXFile(path string) ([]models.RawRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedSource, path, err)
	}
	defer f.Close()

	return parseWorkbook(f, path)
}

// parseWorkbook reads the first data sheet of f. The first row is the header.
func parseWorkbook(f *excelize.File, source string) ([]models.RawRecord, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: %s: no sheets", ErrMalformedSource, source)
	}

	sheetName := ""
	for _, sheet := range sheets {
		if !skipSheets[strings.ToLower(sheet)] {
			sheetName = sheet
			break
		}
	}
	if sheetName == "" {
		sheetName = sheets[len(sheets)-1]
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read sheet %q: %v", ErrMalformedSource, source, sheetName, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	return recordsFromRows(rows[0], rows[1:], source)
}
