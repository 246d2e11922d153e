package importer

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"raildispatch.dev/core/storage"
)

type trainEventCSV struct {
	TrainID       string `csv:"train_id"`
	EventID       string `csv:"event_id"`
	Type          string `csv:"type"`
	StationID     string `csv:"station_id"`
	PlatformID    string `csv:"platform_id"`
	ScheduledTime string `csv:"scheduled_time"`
	EarlinessSec  int    `csv:"earliness_sec"`
	LatenessSec   int    `csv:"lateness_sec"`
	MinDwellSec   int    `csv:"min_dwell_sec"`
}

// ParseTrainEvents reads the train_events collection from r.
// ScheduledTime is parsed as RFC3339; a blank value leaves it zero.
// Neither this parser nor the Adapter rejects a zero ScheduledTime.
func ParseTrainEvents(w storage.SeedWriter, r io.Reader) (int, error) {
	var rows []trainEventCSV
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return 0, err
	}

	for i, row := range rows {
		if row.TrainID == "" || row.StationID == "" {
			return 0, fmt.Errorf("row %d: train_id and station_id are required", i+1)
		}
		scheduled, err := parseTime(row.ScheduledTime)
		if err != nil {
			return 0, fmt.Errorf("row %d: bad scheduled_time %q: %w", i+1, row.ScheduledTime, err)
		}
		rec := storage.TrainEventRecord{
			TrainID:       row.TrainID,
			EventID:       row.EventID,
			Type:          row.Type,
			StationID:     row.StationID,
			PlatformID:    row.PlatformID,
			ScheduledTime: scheduled,
			EarlinessSec:  row.EarlinessSec,
			LatenessSec:   row.LatenessSec,
			MinDwellSec:   row.MinDwellSec,
		}
		if err := w.WriteTrainEvent(rec); err != nil {
			return 0, fmt.Errorf("writing train event %s/%s: %w", row.TrainID, row.EventID, err)
		}
	}
	return len(rows), nil
}
