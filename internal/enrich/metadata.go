// Package enrich merges company metadata into an existing stocks index and
// publishes the logo files it references.
package enrich

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"stockboard/internal/csvline"
	"stockboard/internal/domain"
)

// Positional columns of the company metadata table. Columns 1 and 8 are
// not used.
const (
	colTicker      = 0
	colShortName   = 2
	colIndustry    = 3
	colDescription = 4
	colWebsite     = 5
	colLogo        = 6
	colCEO         = 7
	colMarketCap   = 9
	colSector      = 10
	colTag1        = 11
	colTag2        = 12
	colTag3        = 13
)

// LoadMetadata reads the company metadata table at path into a map keyed by
// upper-cased ticker. The first line is a header and is skipped. Rows with
// an empty ticker are ignored and a repeated ticker keeps its last row. A
// missing file yields an error wrapping domain.ErrMissingInput.
func LoadMetadata(path string) (map[string]domain.Enrichment, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("company metadata %s: %w", path, domain.ErrMissingInput)
		}
		return nil, err
	}
	defer f.Close()

	lines, err := csvline.ReadLines(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	meta := make(map[string]domain.Enrichment)
	if len(lines) == 0 {
		return meta, nil
	}
	for _, line := range lines[1:] {
		rec, ok := ParseMetadataRecord(csvline.ParseLine(line))
		if !ok {
			continue
		}
		meta[rec.Ticker] = rec.Enrichment
	}
	return meta, nil
}

// ParseMetadataRecord maps one positional row. ok is false when the ticker
// column is empty.
func ParseMetadataRecord(fields []string) (rec domain.MetadataRecord, ok bool) {
	at := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}

	ticker := strings.ToUpper(at(colTicker))
	if ticker == "" {
		return rec, false
	}
	return domain.MetadataRecord{
		Ticker: ticker,
		Enrichment: domain.Enrichment{
			ShortName:   at(colShortName),
			Industry:    at(colIndustry),
			Description: at(colDescription),
			Website:     at(colWebsite),
			Logo:        at(colLogo),
			CEO:         at(colCEO),
			MarketCap:   domain.FloatOrZero(at(colMarketCap)),
			Sector:      at(colSector),
			Tag1:        at(colTag1),
			Tag2:        at(colTag2),
			Tag3:        at(colTag3),
		},
	}, true
}
