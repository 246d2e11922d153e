// Package materialize turns a solved solve.Solution back into the
// persisted train_events and platform_occupancy records a
// storage.EventWriter understands, per spec.md §4.4's event
// materialisation and delete-then-insert persistence protocol.
package materialize

import (
	"fmt"
	"time"

	"raildispatch.dev/core/solve"
	"raildispatch.dev/core/storage"
)

// Result reports how many records the write phase inserted.
type Result struct {
	EventsInserted    int
	OccupancyInserted int
}

// Events builds the arrival/departure event records and platform
// occupancy records for every train in sol, then replaces them in w:
// delete whatever w already holds for these train ids, then insert the
// freshly materialised records. The replacement is not transactional
// (spec.md §5): a failure between delete and insert leaves w with an
// empty interval for the affected trains.
func Events(w storage.EventWriter, sol *solve.Solution) (*Result, error) {
	origin := time.Unix(sol.OriginTimeUnix, 0).UTC()

	trainIDs := make([]string, 0, len(sol.Trains))
	for _, tr := range sol.Trains {
		trainIDs = append(trainIDs, tr.TrainID)
	}

	if err := w.DeleteEventsForTrains(trainIDs); err != nil {
		return nil, fmt.Errorf("deleting prior events: %w", err)
	}
	if err := w.DeleteOccupancyForTrains(trainIDs); err != nil {
		return nil, fmt.Errorf("deleting prior occupancy: %w", err)
	}

	events := buildEventRecords(sol, origin)
	occupancy := buildOccupancyRecords(sol, origin)

	if err := w.InsertEvents(events); err != nil {
		return nil, fmt.Errorf("inserting events: %w", err)
	}
	if err := w.InsertOccupancy(occupancy); err != nil {
		return nil, fmt.Errorf("inserting occupancy: %w", err)
	}

	return &Result{EventsInserted: len(events), OccupancyInserted: len(occupancy)}, nil
}

func buildEventRecords(sol *solve.Solution, origin time.Time) []storage.EventOutputRecord {
	var out []storage.EventOutputRecord
	for _, tr := range sol.Trains {
		for _, sv := range tr.Stops {
			if sv.HasArrival {
				t := origin.Add(time.Duration(sv.ActualArrival) * time.Minute)
				out = append(out, storage.EventOutputRecord{
					TrainID:       tr.TrainID,
					EventID:       eventID(sv, "_arr", sv.ArrivalEventID),
					Type:          "arrival",
					StationID:     sv.Station,
					PlatformID:    sv.Platform,
					ScheduledTime: t,
					ActualTime:    t,
					Status:        "scheduled",
				})
			}
			if sv.HasDeparture {
				t := origin.Add(time.Duration(sv.ActualDeparture) * time.Minute)
				out = append(out, storage.EventOutputRecord{
					TrainID:       tr.TrainID,
					EventID:       eventID(sv, "_dep", sv.DepartureEventID),
					Type:          "departure",
					StationID:     sv.Station,
					PlatformID:    sv.Platform,
					ScheduledTime: t,
					ActualTime:    t,
					Status:        "scheduled",
				})
			}
		}
	}
	return out
}

// eventID reuses the Adapter-assigned event id when one carried through
// from the input; otherwise it falls back to station_id+suffix, the
// convention spec.md §4.4 names for freshly materialised records.
func eventID(sv solve.StopResult, suffix, carried string) string {
	if carried != "" {
		return carried
	}
	return sv.Station + suffix
}

func buildOccupancyRecords(sol *solve.Solution, origin time.Time) []storage.OccupancyOutputRecord {
	var out []storage.OccupancyOutputRecord
	for _, tr := range sol.Trains {
		for _, sv := range tr.Stops {
			if !sv.HasArrival && !sv.HasDeparture {
				continue
			}
			out = append(out, storage.OccupancyOutputRecord{
				TrainID:      tr.TrainID,
				StationID:    sv.Station,
				PlatformID:   sv.Platform,
				StartTime:    origin.Add(time.Duration(sv.ActualArrival) * time.Minute),
				EndTime:      origin.Add(time.Duration(sv.ActualDeparture) * time.Minute),
				TrainLengthM: tr.LengthM,
			})
		}
	}
	return out
}
