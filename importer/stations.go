package importer

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"raildispatch.dev/core/storage"
)

type platformCSV struct {
	StationID   string  `csv:"station_id"`
	PlatformID  string  `csv:"platform_id"`
	LegacyID    string  `csv:"legacy_id"`
	LengthM     float64 `csv:"length_m"`
	Electrified bool    `csv:"electrified"`
}

type stationCSV struct {
	StationID      string `csv:"station_id"`
	Name           string `csv:"name"`
	TotalPlatforms int    `csv:"total_platforms"`
}

// ParsePlatforms reads the platforms collection from r, grouping rows
// by station id so ParseStations can attach each station's platform
// list in one pass.
func ParsePlatforms(r io.Reader) (map[string][]storage.PlatformRecord, error) {
	var rows []platformCSV
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, err
	}

	out := map[string][]storage.PlatformRecord{}
	for i, row := range rows {
		if row.StationID == "" {
			return nil, fmt.Errorf("row %d: missing station_id", i+1)
		}
		out[row.StationID] = append(out[row.StationID], storage.PlatformRecord{
			PlatformID:  row.PlatformID,
			LegacyID:    row.LegacyID,
			LengthM:     row.LengthM,
			Electrified: row.Electrified,
		})
	}
	return out, nil
}

// ParseStations reads the stations collection from r, attaches each
// station's platforms (from platformsByStation, built by
// ParsePlatforms), and writes the combined record to w.
func ParseStations(w storage.SeedWriter, r io.Reader, platformsByStation map[string][]storage.PlatformRecord) (int, error) {
	var rows []stationCSV
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return 0, err
	}

	for i, row := range rows {
		if row.StationID == "" {
			return 0, fmt.Errorf("row %d: missing station_id", i+1)
		}
		rec := storage.StationRecord{
			ID:             row.StationID,
			Name:           row.Name,
			TotalPlatforms: row.TotalPlatforms,
			Platforms:      platformsByStation[row.StationID],
		}
		if err := w.WriteStation(rec); err != nil {
			return 0, fmt.Errorf("writing station %s: %w", row.StationID, err)
		}
	}
	return len(rows), nil
}
