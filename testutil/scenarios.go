// Package testutil builds the concrete scenarios from spec.md §8 as
// in-memory model.ProblemModel fixtures, for reuse across the solve,
// materialize and metrics test suites.
package testutil

import "raildispatch.dev/core/model"

func station(id string, platforms ...string) model.Station {
	ps := make([]model.Platform, 0, len(platforms))
	for _, p := range platforms {
		ps = append(ps, model.Platform{ID: p})
	}
	return model.Station{ID: id, Name: id, Platforms: ps}
}

func segment(id, from, to string, travelMin int, distanceM float64) model.Segment {
	return model.Segment{ID: id, FromStation: from, ToStation: to, Capacity: 1, TravelTimeMin: travelMin, DistanceM: distanceM}
}

func train(id string, typ model.TrainType, route ...model.RouteStop) model.NormalisedTrain {
	return model.NormalisedTrain{ID: id, Type: typ, Route: route}
}

func dep(station string, planned int) model.RouteStop {
	return model.RouteStop{Station: station, PlannedMin: planned, EventID: station + "_dep", Type: model.EventDeparture}
}

func arr(station string, planned int) model.RouteStop {
	return model.RouteStop{Station: station, PlannedMin: planned, EventID: station + "_arr", Type: model.EventArrival}
}

func stationMap(stations ...model.Station) map[string]model.Station {
	out := make(map[string]model.Station, len(stations))
	for _, s := range stations {
		out[s.ID] = s
	}
	return out
}

func segmentMap(segments ...model.Segment) map[string]model.Segment {
	out := make(map[string]model.Segment, len(segments))
	for _, s := range segments {
		out[s.ID] = s
	}
	return out
}

// SingleTrain is S1: one train, route S1->S2->S3, planned=[0,20,45], no
// restrictions, one platform per station. Expected every arrival to land
// on its planned minute and the objective to be 0.
func SingleTrain() *model.ProblemModel {
	return &model.ProblemModel{
		Stations: stationMap(station("S1", "P1"), station("S2", "P1"), station("S3", "P1")),
		Segments: segmentMap(
			segment("S1-S2", "S1", "S2", 20, 10000),
			segment("S2-S3", "S2", "S3", 25, 12000),
		),
		Trains: []model.NormalisedTrain{
			train("T1", model.TrainExpress, dep("S1", 0), arr("S2", 20), dep("S2", 20), arr("S3", 45)),
		},
		ScenarioID: "S1_SINGLE_TRAIN",
	}
}

// Headway is S2: two trains share segment S1->S2, headway min_gap_sec=120,
// both planned to depart at minute 0. Expected: the express keeps 0, the
// local is separated by at least 2 minutes on the first block.
func Headway() *model.ProblemModel {
	return &model.ProblemModel{
		Stations: stationMap(station("S1", "P1", "P2"), station("S2", "P1", "P2")),
		Segments: segmentMap(segment("S1-S2", "S1", "S2", 10, 5000)),
		Constraints: []model.Constraint{
			{Type: model.ConstraintHeadway, SegmentID: "S1-S2", MinGapSec: 120},
		},
		Trains: []model.NormalisedTrain{
			train("T1", model.TrainExpress, dep("S1", 0), arr("S2", 10)),
			train("T2", model.TrainLocal, dep("S1", 0), arr("S2", 10)),
		},
		ScenarioID: "S2_HEADWAY",
	}
}

// SpeedRestriction is S3: one train, one segment of 10km restricted to
// 30km/h. Expected traverse time >= 20 minutes.
func SpeedRestriction() *model.ProblemModel {
	pm := &model.ProblemModel{
		Stations: stationMap(station("S1", "P1"), station("S2", "P1")),
		Segments: segmentMap(segment("S1-S2", "S1", "S2", 10, 10000)),
		Constraints: []model.Constraint{
			{Type: model.ConstraintSpeedRestriction, SegmentID: "S1-S2", MaxSpeedKMH: 30},
		},
		Trains: []model.NormalisedTrain{
			train("T1", model.TrainExpress, dep("S1", 0), arr("S2", 10)),
		},
		ScenarioID: "S3_SPEED_RESTRICTION",
	}
	return applySpeedRestriction(pm)
}

func applySpeedRestriction(pm *model.ProblemModel) *model.ProblemModel {
	for _, c := range pm.Constraints {
		if c.Type != model.ConstraintSpeedRestriction {
			continue
		}
		seg := pm.Segments[c.SegmentID]
		seg.SpeedRestriction = &model.SpeedRestriction{MaxKMH: c.MaxSpeedKMH, Active: true}
		pm.Segments[c.SegmentID] = seg
	}
	return pm
}

// PlatformConflict is S4: two trains arrive at S1 at planned=0 with only
// one shared platform and no preassignment. Expected: the higher-priority
// train keeps 0, the other is delayed by its dwell time.
func PlatformConflict() *model.ProblemModel {
	return &model.ProblemModel{
		Stations: stationMap(station("S1", "P1")),
		Segments: segmentMap(),
		Trains: []model.NormalisedTrain{
			train("T1", model.TrainExpress, arr("S1", 0)),
			train("T2", model.TrainLocal, arr("S1", 0)),
		},
		ScenarioID: "S4_PLATFORM_CONFLICT",
	}
}

// FixedOccupancy is S5: S1's only platform, P1, is occupied for the
// train's entire reachable window; a train planned to dwell [5,25] on P1
// has nowhere to fit. Expected: NoFeasibleSolution.
func FixedOccupancy() *model.ProblemModel {
	return &model.ProblemModel{
		Stations: stationMap(station("S1", "P1")),
		Segments: segmentMap(),
		FixedOccupancies: []model.PlatformOccupancy{
			{TrainID: "MAINT", StationID: "S1", PlatformID: "P1", StartMin: 0, EndMin: 1440},
		},
		Trains: []model.NormalisedTrain{
			train("T1", model.TrainExpress, arr("S1", 5), dep("S1", 25)),
		},
		ScenarioID: "S5_FIXED_OCCUPANCY",
	}
}

// InfeasibleWindow is S6: planned arrival 0, min-dwell 120 minutes, next
// stop planned at 30 with a 60 minute lateness bound — the dwell alone
// exceeds the time available before the next stop's window closes.
// Expected: NoFeasibleSolution.
func InfeasibleWindow() *model.ProblemModel {
	a := arr("S1", 0)
	d := dep("S1", 0)
	d.RawMinDwellSec = 120 * 60
	return &model.ProblemModel{
		Stations: stationMap(station("S1", "P1"), station("S2", "P1")),
		Segments: segmentMap(segment("S1-S2", "S1", "S2", 5, 2000)),
		Trains: []model.NormalisedTrain{
			train("T1", model.TrainExpress, a, d, arr("S2", 30)),
		},
		ScenarioID: "S6_INFEASIBLE_WINDOW",
	}
}
