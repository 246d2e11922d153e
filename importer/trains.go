package importer

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"raildispatch.dev/core/storage"
)

type trainCSV struct {
	TrainID     string  `csv:"train_id"`
	Type        string  `csv:"type"`
	Priority    int     `csv:"priority"`
	AvgSpeedKMH float64 `csv:"avg_speed_kmh"`
	LengthM     float64 `csv:"length_m"`
}

// ParseTrains reads the trains collection from r and writes each record
// to w, rejecting a blank train_id outright.
func ParseTrains(w storage.SeedWriter, r io.Reader) (int, error) {
	var rows []trainCSV
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return 0, err
	}

	for i, row := range rows {
		if row.TrainID == "" {
			return 0, fmt.Errorf("row %d: missing train_id", i+1)
		}
		rec := storage.TrainRecord{
			ID:          row.TrainID,
			TrainID:     row.TrainID,
			Type:        row.Type,
			Priority:    row.Priority,
			AvgSpeedKMH: row.AvgSpeedKMH,
			LengthM:     row.LengthM,
		}
		if err := w.WriteTrain(rec); err != nil {
			return 0, fmt.Errorf("writing train %s: %w", row.TrainID, err)
		}
	}
	return len(rows), nil
}
