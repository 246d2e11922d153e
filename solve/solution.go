package solve

import "raildispatch.dev/core/model"

// StopResult is one station visit's resolved schedule. HasArrival/
// HasDeparture mirror the input: a route's origin has no arrival event,
// its destination has no departure event, and materialize.go only emits
// an output record for the side that was actually present.
type StopResult struct {
	Station          string
	PlannedArrival   int
	PlannedDeparture int
	ActualArrival    int
	ActualDeparture  int
	Delay            int
	Platform         string
	HasArrival       bool
	HasDeparture     bool
	ArrivalEventID   string
	DepartureEventID string
}

// SegmentTraversal is one train's crossing of one segment: the entry
// time of the segment's first block through the exit time of its last,
// the span metrics.Throughput sums into traverse-time and utilisation.
type SegmentTraversal struct {
	SegmentID string
	EntryMin  int
	ExitMin   int
}

// TrainResult is one train's resolved route.
type TrainResult struct {
	TrainID  string
	Type     model.TrainType
	LengthM  float64
	Stops    []StopResult
	Segments []SegmentTraversal
}

// Solution is the extracted, self-contained result of a solve: the values
// read back from the model's variables, plus the objective they yield.
// It owns its data independently of the Model that produced it.
type Solution struct {
	ScenarioID     string
	OriginTimeUnix int64
	Horizon        int
	Trains         []TrainResult
	ObjectiveValue float64
}

func extractSolution(m *Model) *Solution {
	sol := &Solution{
		ScenarioID:     m.Problem.ScenarioID,
		OriginTimeUnix: m.Problem.OriginTimeUnix,
		Horizon:        m.Horizon,
	}

	var objective float64
	for _, tv := range m.Trains {
		tr := TrainResult{TrainID: tv.Train.ID, Type: tv.Train.Type, LengthM: tv.Train.LengthM}
		weight := float64(model.PriorityWeight(tv.Train.Type))

		for _, sv := range tv.Stops {
			tr.Stops = append(tr.Stops, StopResult{
				Station:          sv.Station,
				PlannedArrival:   sv.PlannedArrival,
				PlannedDeparture: sv.PlannedDeparture,
				ActualArrival:    sv.Arrival.Value,
				ActualDeparture:  sv.Departure.Value,
				Delay:            sv.Delay.Value,
				Platform:         resolvedPlatform(sv),
				HasArrival:       sv.HasArrival,
				HasDeparture:     sv.HasDeparture,
				ArrivalEventID:   sv.ArrivalEventID,
				DepartureEventID: sv.DepartureEventID,
			})

			delay := sv.Delay.Value
			late, early := 0, 0
			if delay > 0 {
				late = delay
			} else if delay < 0 {
				early = -delay
			}
			objective += weight * float64(2*late+early)
		}

		for _, blocks := range tv.Blocks {
			if len(blocks) == 0 {
				continue
			}
			tr.Segments = append(tr.Segments, SegmentTraversal{
				SegmentID: blocks[0].Block.Segment,
				EntryMin:  blocks[0].Entry.Value,
				ExitMin:   blocks[len(blocks)-1].Exit.Value,
			})
		}

		sol.Trains = append(sol.Trains, tr)
	}

	sol.ObjectiveValue = objective
	return sol
}

func resolvedPlatform(sv StopVars) string {
	for pid, bv := range sv.Uses {
		if bv.Value {
			return pid
		}
	}
	return ""
}
