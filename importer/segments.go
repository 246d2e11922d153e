package importer

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"raildispatch.dev/core/storage"
)

type segmentCSV struct {
	SegmentID     string  `csv:"segment_id"`
	From          string  `csv:"from_station_id"`
	To            string  `csv:"to_station_id"`
	Capacity      int     `csv:"capacity"`
	TravelTimeMin int     `csv:"travel_time_min"`
	DistanceM     float64 `csv:"distance_m"`
}

// ParseSegments reads the segments collection from r and writes each
// record to w.
func ParseSegments(w storage.SeedWriter, r io.Reader) (int, error) {
	var rows []segmentCSV
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return 0, err
	}

	for i, row := range rows {
		if row.SegmentID == "" || row.From == "" || row.To == "" {
			return 0, fmt.Errorf("row %d: segment_id, from_station_id and to_station_id are required", i+1)
		}
		rec := storage.SegmentRecord{
			ID:            row.SegmentID,
			From:          row.From,
			To:            row.To,
			Capacity:      row.Capacity,
			TravelTimeMin: row.TravelTimeMin,
			DistanceM:     row.DistanceM,
		}
		if err := w.WriteSegment(rec); err != nil {
			return 0, fmt.Errorf("writing segment %s: %w", row.SegmentID, err)
		}
	}
	return len(rows), nil
}
