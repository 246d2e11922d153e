package importer

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"raildispatch.dev/core/storage"
)

type constraintCSV struct {
	ConstraintID string  `csv:"constraint_id"`
	Type         string  `csv:"type"`
	SegmentID    string  `csv:"segment_id"`
	StationID    string  `csv:"station_id"`
	PlatformID   string  `csv:"platform_id"`
	Start        string  `csv:"start_time"`
	End          string  `csv:"end_time"`
	MinGapSec    int     `csv:"min_gap_sec"`
	MaxSpeedKMH  float64 `csv:"max_speed_kmh"`
	Reason       string  `csv:"reason"`
	Description  string  `csv:"description"`
}

// ParseConstraints reads the constraints collection from r. Only the
// fields relevant to a row's Type are expected to be populated; no
// field is checked against the Type, here or when the model is built.
func ParseConstraints(w storage.SeedWriter, r io.Reader) (int, error) {
	var rows []constraintCSV
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return 0, err
	}

	for i, row := range rows {
		if row.ConstraintID == "" || row.Type == "" {
			return 0, fmt.Errorf("row %d: constraint_id and type are required", i+1)
		}
		start, err := parseTime(row.Start)
		if err != nil {
			return 0, fmt.Errorf("row %d: bad start_time %q: %w", i+1, row.Start, err)
		}
		end, err := parseTime(row.End)
		if err != nil {
			return 0, fmt.Errorf("row %d: bad end_time %q: %w", i+1, row.End, err)
		}
		rec := storage.ConstraintRecord{
			ID:          row.ConstraintID,
			Type:        row.Type,
			SegmentID:   row.SegmentID,
			StationID:   row.StationID,
			PlatformID:  row.PlatformID,
			Start:       start,
			End:         end,
			MinGapSec:   row.MinGapSec,
			MaxSpeedKMH: row.MaxSpeedKMH,
			Reason:      row.Reason,
			Description: row.Description,
		}
		if err := w.WriteConstraint(rec); err != nil {
			return 0, fmt.Errorf("writing constraint %s: %w", row.ConstraintID, err)
		}
	}
	return len(rows), nil
}
