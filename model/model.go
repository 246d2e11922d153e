// Package model holds all external facing types for the dispatch
// optimiser: the raw entities read from storage, and the normalised,
// in-memory problem the solver consumes.
package model

import "fmt"

// TrainType classifies a train for priority weighting purposes.
type TrainType string

const (
	TrainExpress   TrainType = "express"
	TrainPassenger TrainType = "passenger"
	TrainLocal     TrainType = "local"
	TrainFreight   TrainType = "freight"
)

// EventType distinguishes arrival from departure train events.
type EventType string

const (
	EventArrival   EventType = "arrival"
	EventDeparture EventType = "departure"
)

// ConstraintType enumerates the constraint catalogue.
type ConstraintType string

const (
	ConstraintMaintenance         ConstraintType = "maintenance"
	ConstraintHeadway             ConstraintType = "headway"
	ConstraintPlatformMaintenance ConstraintType = "platform_maintenance"
	ConstraintSpeedRestriction    ConstraintType = "speed_restriction"
)

// InvalidInputError is raised by the Adapter for malformed records it
// cannot normalise (e.g. a segment missing from/to), and by
// solve.BuildModel when a route references a station or segment the
// problem lacks. It is never swallowed silently.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

func NewInvalidInputError(format string, args ...interface{}) *InvalidInputError {
	return &InvalidInputError{Reason: fmt.Sprintf(format, args...)}
}

// Platform is one platform at a Station.
type Platform struct {
	ID          string
	LengthM     float64
	Electrified bool
}

// Station is a network node with a set of platforms.
type Station struct {
	ID        string
	Name      string
	Platforms []Platform
}

// TotalPlatforms returns len(Platforms), the invariant named in
// spec.md's data model table.
func (s Station) TotalPlatforms() int {
	return len(s.Platforms)
}

// SpeedRestriction caps the speed at which trains may traverse a
// segment, inflating its minimum traverse time.
type SpeedRestriction struct {
	MaxKMH float64
	Reason string
	Active bool
}

// Segment is a directional connection between two stations.
type Segment struct {
	ID               string
	FromStation      string
	ToStation        string
	Capacity         int
	TravelTimeMin    int
	DistanceM        float64
	SpeedRestriction *SpeedRestriction // merged in from speed_restriction constraints
}

// Block is one of BlocksPerSegment equal subdivisions of a Segment,
// used as the unit of exclusive block-occupancy modelling.
type Block struct {
	Segment string
	Index   int
}

func (b Block) String() string {
	return fmt.Sprintf("%s#%d", b.Segment, b.Index)
}

// Constraint is the catalogue entry for one operational constraint.
// Only the fields relevant to Type are populated; the Adapter reads
// arbitrary partial documents before it knows the type, so this is a
// flat struct rather than an interface hierarchy.
type Constraint struct {
	Type ConstraintType

	// maintenance, platform_maintenance
	SegmentID  string
	StationID  string
	PlatformID string
	Start      int // minutes, inclusive
	End        int // minutes, exclusive

	// headway
	MinGapSec int

	// speed_restriction
	MaxSpeedKMH float64
	Reason      string
}

// PlatformOccupancy is a fixed, pre-existing occupancy of a platform
// that the solver must treat as a mandatory interval.
type PlatformOccupancy struct {
	TrainID      string
	StationID    string
	PlatformID   string
	StartMin     int
	EndMin       int
	TrainLengthM float64
}

// RouteStop is one stop of a train's route: one per input TrainEvent,
// ordered by scheduled_time.
type RouteStop struct {
	Station             string
	PlannedMin          int
	PreassignedPlatform string // "" if none
	RawMinDwellSec      int    // 0 if not specified
	EventID             string
	Type                EventType
}

// NormalisedTrain is a train together with its ordered route, as
// produced by the Adapter.
type NormalisedTrain struct {
	ID          string
	Type        TrainType
	Priority    int
	AvgSpeedKMH float64
	LengthM     float64
	Route       []RouteStop
}

// Window bounds a run to a time range. Both ends are optional: a nil
// Window means "no clipping".
type Window struct {
	Start *int64 // unix seconds
	End   *int64 // unix seconds
}

// ProblemModel is the pure, in-memory scheduling problem built by the
// Adapter and consumed by the Constraint Model Builder. All entities
// are read-only for the duration of a run.
type ProblemModel struct {
	Trains           []NormalisedTrain
	Stations         map[string]Station
	Segments         map[string]Segment
	Constraints      []Constraint
	FixedOccupancies []PlatformOccupancy
	OriginTimeUnix   int64 // seconds, UTC
	ScenarioID       string
	ScenarioDesc     string
}

// TimeHorizon returns TIME_HORIZON per spec.md §4.2: the latest
// planned time across all trains plus 120 minutes, lower-bounded by
// 24*60.
func (p *ProblemModel) TimeHorizon() int {
	const minHorizon = 24 * 60
	latest := 0
	for _, t := range p.Trains {
		for _, stop := range t.Route {
			if stop.PlannedMin > latest {
				latest = stop.PlannedMin
			}
		}
	}
	horizon := latest + 120
	if horizon < minHorizon {
		horizon = minHorizon
	}
	return horizon
}

// PriorityWeight returns the objective weight for a train type, per
// spec.md §4.3, defaulting to 5 for unrecognised types.
func PriorityWeight(t TrainType) int {
	switch t {
	case TrainExpress:
		return 10
	case TrainPassenger:
		return 8
	case TrainLocal:
		return 5
	case TrainFreight:
		return 1
	default:
		return 5
	}
}
