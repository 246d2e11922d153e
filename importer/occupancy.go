package importer

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"raildispatch.dev/core/storage"
)

type occupancyCSV struct {
	TrainID      string  `csv:"train_id"`
	StationID    string  `csv:"station_id"`
	PlatformID   string  `csv:"platform_id"`
	StartTime    string  `csv:"start_time"`
	EndTime      string  `csv:"end_time"`
	TrainType    string  `csv:"train_type"`
	TrainLengthM float64 `csv:"train_length_m"`
	DurationSec  int     `csv:"duration_sec"`
}

// ParseOccupancy reads the platform_occupancy collection from r: the
// mandatory bookings (maintenance windows, already-committed trains)
// the solver must seed before scheduling anything else.
func ParseOccupancy(w storage.SeedWriter, r io.Reader) (int, error) {
	var rows []occupancyCSV
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return 0, err
	}

	for i, row := range rows {
		if row.StationID == "" || row.PlatformID == "" {
			return 0, fmt.Errorf("row %d: station_id and platform_id are required", i+1)
		}
		start, err := parseTime(row.StartTime)
		if err != nil {
			return 0, fmt.Errorf("row %d: bad start_time %q: %w", i+1, row.StartTime, err)
		}
		end, err := parseTime(row.EndTime)
		if err != nil {
			return 0, fmt.Errorf("row %d: bad end_time %q: %w", i+1, row.EndTime, err)
		}
		rec := storage.OccupancyRecord{
			TrainID:      row.TrainID,
			StationID:    row.StationID,
			PlatformID:   row.PlatformID,
			StartTime:    start,
			EndTime:      end,
			TrainType:    row.TrainType,
			TrainLengthM: row.TrainLengthM,
			DurationSec:  row.DurationSec,
		}
		if err := w.WriteOccupancy(rec); err != nil {
			return 0, fmt.Errorf("writing occupancy at %s/%s: %w", row.StationID, row.PlatformID, err)
		}
	}
	return len(rows), nil
}
