// Package storage defines the persistence read/write interfaces the
// dispatch optimiser core consumes, the document-shaped records that
// cross that boundary, and two concrete backends (MemoryStorage,
// SQLStore).
//
// The core never depends on a concrete backend: it is constructed
// against ReadStore, EventWriter and SeedWriter only.
package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a scenario (or other required record)
// does not exist.
var ErrNotFound = errors.New("not found")

// PersistenceError wraps an underlying store I/O failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return "persistence error during " + e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// TrainRecord is the trains collection document.
type TrainRecord struct {
	ID          string // _id, or TrainID if _id absent
	TrainID     string // legacy/alternate key
	Type        string
	Priority    int
	AvgSpeedKMH float64
	LengthM     float64
}

// PlatformRecord is one entry in a StationRecord's Platforms list.
// Every platform must carry PlatformID; LegacyID is consulted by the
// Adapter when PlatformID is absent.
type PlatformRecord struct {
	PlatformID  string
	LegacyID    string
	LengthM     float64
	Electrified bool
}

// StationRecord is the stations collection document.
type StationRecord struct {
	ID             string
	Name           string
	TotalPlatforms int
	Platforms      []PlatformRecord
}

// SegmentRecord is the segments collection document.
type SegmentRecord struct {
	ID            string
	From          string
	To            string
	Capacity      int
	TravelTimeMin int
	DistanceM     float64
}

// ScenarioRecord is the scenarios collection document. Constraints may
// reference constraint primary keys or constraint type strings; see
// adapter.Load for the disambiguation rule.
type ScenarioRecord struct {
	ID          string
	Description string
	Trains      []string
	Segments    []string
	Constraints []string
}

// TrainEventRecord is the train_events collection document.
type TrainEventRecord struct {
	TrainID       string
	EventID       string
	Type          string // "arrival" | "departure"
	StationID     string
	PlatformID    string // optional
	ScheduledTime time.Time
	EarlinessSec  int
	LatenessSec   int
	MinDwellSec   int // 0 if unset
}

// ConstraintRecord is the constraints collection document. Only the
// fields relevant to Type are populated.
type ConstraintRecord struct {
	ID          string
	Type        string
	SegmentID   string
	StationID   string
	PlatformID  string
	Start       time.Time
	End         time.Time
	MinGapSec   int
	MaxSpeedKMH float64
	Reason      string
	Description string
}

// OccupancyRecord is the platform_occupancy collection document.
type OccupancyRecord struct {
	TrainID      string
	StationID    string
	PlatformID   string
	StartTime    time.Time
	EndTime      time.Time
	TrainType    string
	TrainLengthM float64
	DurationSec  int
}

// EventOutputRecord is a materialised arrival/departure event, ready
// to be upserted.
type EventOutputRecord struct {
	TrainID       string
	EventID       string
	Type          string
	StationID     string
	PlatformID    string
	ScheduledTime time.Time
	ActualTime    time.Time
	Status        string
}

// OccupancyOutputRecord is a materialised platform-occupancy record
// spanning a solved stop's [arrival, departure].
type OccupancyOutputRecord struct {
	TrainID      string
	StationID    string
	PlatformID   string
	StartTime    time.Time
	EndTime      time.Time
	TrainLengthM float64
}

// Window clips a read to a time range inclusive at both ends. Either
// end may be nil.
type Window struct {
	Start *time.Time
	End   *time.Time
}

// ReadStore is the persistence read interface the Data Adapter
// consumes.
type ReadStore interface {
	// GetScenario returns ErrNotFound if the scenario does not exist.
	GetScenario(scenarioID string) (*ScenarioRecord, error)

	// GetTrains returns the train records matching the given ids, in
	// no particular order. Unknown ids are silently omitted.
	GetTrains(ids []string) ([]TrainRecord, error)

	// GetSegments returns the segment records matching the given ids.
	GetSegments(ids []string) ([]SegmentRecord, error)

	// GetStations returns the station records matching the given ids.
	GetStations(ids []string) ([]StationRecord, error)

	// GetTrainEvents returns events for the given train ids, optionally
	// clipped to window.
	GetTrainEvents(trainIDs []string, window *Window) ([]TrainEventRecord, error)

	// GetConstraintsByIDs returns constraints with the given primary keys.
	GetConstraintsByIDs(ids []string) ([]ConstraintRecord, error)

	// GetConstraintsByTypes returns constraints whose Type is in types.
	GetConstraintsByTypes(types []string) ([]ConstraintRecord, error)

	// GetOccupancyOverlapping returns occupancy records overlapping
	// window: start_time <= window.End && end_time >= window.Start.
	GetOccupancyOverlapping(window *Window) ([]OccupancyRecord, error)
}

// EventWriter is the persistence write interface the Event
// Materialiser uses. Writes are not transactional: see spec.md §5.
type EventWriter interface {
	DeleteEventsForTrains(trainIDs []string) error
	InsertEvents(records []EventOutputRecord) error
	DeleteOccupancyForTrains(trainIDs []string) error
	InsertOccupancy(records []OccupancyOutputRecord) error
}

// SeedWriter is used by the importer to load a scenario's raw records
// into a store. It is not part of the core's contract; it exists so
// the CLI and tests have a way to populate ReadStore implementations.
type SeedWriter interface {
	WriteTrain(TrainRecord) error
	WriteStation(StationRecord) error
	WriteSegment(SegmentRecord) error
	WriteScenario(ScenarioRecord) error
	WriteTrainEvent(TrainEventRecord) error
	WriteConstraint(ConstraintRecord) error
	WriteOccupancy(OccupancyRecord) error
}
