package solve

import (
	"fmt"

	"raildispatch.dev/core/model"
)

// Parameters from spec.md's Constraint Model Builder section.
const (
	MaxEarlinessMin  = 5
	MaxLatenessMin   = 60
	BlocksPerSegment = 3
	BlockSizeM       = 400
	MaxSpeedKMH      = 60
	MinDwellMin      = 1
)

// visit groups the Adapter's per-event RouteStops into one station stop:
// spec.md §4.1 builds one RouteStop per input TrainEvent, but §4.3's
// Builder wants one arrival/departure variable pair per station visited.
// A visit pairs an arrival event with the departure event immediately
// following it at the same station (a dwell); the route's first visit is
// departure-only (the train originates there) and its last is
// arrival-only (its destination), unless events say otherwise.
type visit struct {
	station             string
	arrival             *model.RouteStop
	departure           *model.RouteStop
	plannedArrival      int
	plannedDeparture    int
	preassignedPlatform string
	rawMinDwellSec      int
}

func groupVisits(route []model.RouteStop) []visit {
	var visits []visit
	for i := 0; i < len(route); {
		stop := route[i]
		v := visit{station: stop.Station}

		if stop.Type == model.EventArrival {
			a := stop
			v.arrival = &a
			v.plannedArrival = a.PlannedMin
			v.plannedDeparture = a.PlannedMin
			if i+1 < len(route) && route[i+1].Station == stop.Station && route[i+1].Type == model.EventDeparture {
				d := route[i+1]
				v.departure = &d
				v.plannedDeparture = d.PlannedMin
				i += 2
			} else {
				i++
			}
		} else {
			d := stop
			v.departure = &d
			v.plannedDeparture = d.PlannedMin
			v.plannedArrival = d.PlannedMin
			i++
		}

		v.preassignedPlatform = firstNonEmpty(stopPlatform(v.arrival), stopPlatform(v.departure))
		v.rawMinDwellSec = maxInt(stopDwell(v.arrival), stopDwell(v.departure))

		visits = append(visits, v)
	}
	return visits
}

func stopPlatform(s *model.RouteStop) string {
	if s == nil {
		return ""
	}
	return s.PreassignedPlatform
}

func stopDwell(s *model.RouteStop) int {
	if s == nil {
		return 0
	}
	return s.RawMinDwellSec
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// StopVars holds the decision variables for one station visit of one
// train's route: arrival, departure, delay, and platform choice.
type StopVars struct {
	Station             string
	PlannedArrival      int
	PlannedDeparture    int
	PreassignedPlatform string
	RawMinDwellSec      int
	HasArrival          bool
	HasDeparture        bool
	ArrivalEventID      string
	DepartureEventID    string

	Arrival   *IntVar
	Departure *IntVar
	Delay     *IntVar
	Uses      map[string]*BoolVar // platform id -> uses[t,s,p]
}

// BlockVars holds the decision variables for one train crossing one block
// of the segment following a stop.
type BlockVars struct {
	Block    model.Block
	Entry    *IntVar
	Exit     *IntVar
	Occupied *BoolVar
}

// TrainVars is one train's full set of decision variables.
type TrainVars struct {
	Train model.NormalisedTrain
	Stops []StopVars
	// Blocks[i] are the blocks of the segment between Stops[i] and
	// Stops[i+1]; len(Blocks) == len(Stops)-1.
	Blocks [][]BlockVars
}

// Model is the constraint satisfaction model translated from a
// ProblemModel: every decision variable named in spec.md's Constraint
// Model Builder section, plus the constraint lookups the Solver consults
// while assigning values.
type Model struct {
	Problem *model.ProblemModel
	Horizon int
	Trains  []*TrainVars

	headwayBySegment     map[string][]model.Constraint
	maintenanceBySegment map[string][]model.Constraint
	platformMaintenance  []model.Constraint
}

// BuildModel translates a ProblemModel into the variables and constraint
// context the Solver needs. It returns model.InvalidInputError if a
// train's route uses a station the problem doesn't carry, or if
// consecutive visited stations aren't joined by a known segment.
func BuildModel(pm *model.ProblemModel) (*Model, error) {
	m := &Model{
		Problem:              pm,
		Horizon:              pm.TimeHorizon(),
		headwayBySegment:     map[string][]model.Constraint{},
		maintenanceBySegment: map[string][]model.Constraint{},
	}

	for _, c := range pm.Constraints {
		switch c.Type {
		case model.ConstraintHeadway:
			m.headwayBySegment[c.SegmentID] = append(m.headwayBySegment[c.SegmentID], c)
		case model.ConstraintMaintenance:
			m.maintenanceBySegment[c.SegmentID] = append(m.maintenanceBySegment[c.SegmentID], c)
		case model.ConstraintPlatformMaintenance:
			m.platformMaintenance = append(m.platformMaintenance, c)
		}
	}

	for _, t := range pm.Trains {
		tv, err := buildTrainVars(m, t)
		if err != nil {
			return nil, err
		}
		m.Trains = append(m.Trains, tv)
	}

	return m, nil
}

func buildTrainVars(m *Model, t model.NormalisedTrain) (*TrainVars, error) {
	tv := &TrainVars{Train: t}
	visits := groupVisits(t.Route)

	for i, v := range visits {
		st, ok := m.Problem.Stations[v.station]
		if !ok {
			return nil, model.NewInvalidInputError("train %q stop %d references unknown station %q", t.ID, i, v.station)
		}

		sv := StopVars{
			Station:             v.station,
			PlannedArrival:      v.plannedArrival,
			PlannedDeparture:    v.plannedDeparture,
			PreassignedPlatform: v.preassignedPlatform,
			RawMinDwellSec:      v.rawMinDwellSec,
			HasArrival:          v.arrival != nil,
			HasDeparture:        v.departure != nil,
			Arrival:             newIntVar(fmt.Sprintf("arrival[%s,%s]", t.ID, v.station), 0, m.Horizon),
			Departure:           newIntVar(fmt.Sprintf("departure[%s,%s]", t.ID, v.station), 0, m.Horizon),
			Delay:               newIntVar(fmt.Sprintf("delay[%s,%s]", t.ID, v.station), -MaxEarlinessMin, MaxLatenessMin),
			Uses:                map[string]*BoolVar{},
		}
		if v.arrival != nil {
			sv.ArrivalEventID = v.arrival.EventID
		}
		if v.departure != nil {
			sv.DepartureEventID = v.departure.EventID
		}

		if sv.PreassignedPlatform != "" {
			sv.Uses[sv.PreassignedPlatform] = newBoolVar(fmt.Sprintf("uses[%s,%s,%s]", t.ID, v.station, sv.PreassignedPlatform))
		} else {
			for _, p := range st.Platforms {
				sv.Uses[p.ID] = newBoolVar(fmt.Sprintf("uses[%s,%s,%s]", t.ID, v.station, p.ID))
			}
		}

		tv.Stops = append(tv.Stops, sv)
	}

	for i := 0; i < len(visits)-1; i++ {
		from, to := visits[i].station, visits[i+1].station
		seg, err := findSegment(m.Problem, from, to)
		if err != nil {
			return nil, err
		}

		blocks := make([]BlockVars, BlocksPerSegment)
		for b := 0; b < BlocksPerSegment; b++ {
			blk := model.Block{Segment: seg.ID, Index: b}
			blocks[b] = BlockVars{
				Block:    blk,
				Entry:    newIntVar(fmt.Sprintf("entry[%s,%s]", t.ID, blk), 0, m.Horizon),
				Exit:     newIntVar(fmt.Sprintf("exit[%s,%s]", t.ID, blk), 0, m.Horizon),
				Occupied: newBoolVar(fmt.Sprintf("occupied[%s,%s]", t.ID, blk)),
			}
		}
		tv.Blocks = append(tv.Blocks, blocks)
	}

	return tv, nil
}

func findSegment(pm *model.ProblemModel, from, to string) (model.Segment, error) {
	for _, seg := range pm.Segments {
		if seg.FromStation == from && seg.ToStation == to {
			return seg, nil
		}
	}
	return model.Segment{}, model.NewInvalidInputError("no segment from %q to %q", from, to)
}
