// Package adapter implements the Data Adapter: it turns the
// heterogeneous, loosely-typed records read from storage into the
// well-typed model.ProblemModel the solver consumes.
package adapter

import (
	"math"
	"sort"
	"time"

	"github.com/pkg/errors"

	"raildispatch.dev/core/model"
	"raildispatch.dev/core/storage"
)

// Load resolves scenarioID and builds the ProblemModel for it,
// optionally clipped to window. It returns storage.ErrNotFound (wrapped
// where it crosses a store boundary below) if the scenario does not
// exist, and a model.InvalidInputError for a segment whose from/to is
// missing or identical. All other data shortfalls degrade gracefully:
// missing optional fields become defaults, missing references yield
// empty lists, never a failure.
func Load(store storage.ReadStore, scenarioID string, window *model.Window) (*model.ProblemModel, error) {
	scenario, err := store.GetScenario(scenarioID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, errors.Wrap(err, "loading scenario")
	}

	storeWindow := toStoreWindow(window)

	trainRecords, err := store.GetTrains(scenario.Trains)
	if err != nil {
		return nil, errors.Wrap(err, "loading trains")
	}

	segmentRecords, err := store.GetSegments(scenario.Segments)
	if err != nil {
		return nil, errors.Wrap(err, "loading segments")
	}

	stationIDs := stationIDsFromSegments(segmentRecords)
	stationRecords, err := store.GetStations(stationIDs)
	if err != nil {
		return nil, errors.Wrap(err, "loading stations")
	}

	eventRecords, err := store.GetTrainEvents(scenario.Trains, storeWindow)
	if err != nil {
		return nil, errors.Wrap(err, "loading train events")
	}

	constraintRecords, err := loadConstraints(store, scenario.Constraints)
	if err != nil {
		return nil, errors.Wrap(err, "loading constraints")
	}

	occupancyRecords, err := store.GetOccupancyOverlapping(storeWindow)
	if err != nil {
		return nil, errors.Wrap(err, "loading platform occupancy")
	}

	origin := chooseOrigin(window, eventRecords)

	segments, err := normaliseSegments(segmentRecords, constraintRecords)
	if err != nil {
		return nil, err
	}

	stations := normaliseStations(stationRecords)
	trains := normaliseTrains(trainRecords, eventRecords, origin)
	constraints := normaliseConstraints(constraintRecords, origin)
	occupancies := normaliseOccupancies(occupancyRecords, origin)

	return &model.ProblemModel{
		Trains:           trains,
		Stations:         stations,
		Segments:         segments,
		Constraints:      constraints,
		FixedOccupancies: occupancies,
		OriginTimeUnix:   origin.Unix(),
		ScenarioID:       scenario.ID,
		ScenarioDesc:     scenario.Description,
	}, nil
}

func toStoreWindow(w *model.Window) *storage.Window {
	if w == nil {
		return nil
	}
	sw := &storage.Window{}
	if w.Start != nil {
		t := time.Unix(*w.Start, 0).UTC()
		sw.Start = &t
	}
	if w.End != nil {
		t := time.Unix(*w.End, 0).UTC()
		sw.End = &t
	}
	return sw
}

func stationIDsFromSegments(segments []storage.SegmentRecord) []string {
	seen := map[string]bool{}
	var ids []string
	for _, seg := range segments {
		for _, id := range []string{seg.From, seg.To} {
			if id != "" && !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// loadConstraints implements the reference-disambiguation rule of
// spec.md §4.1 point 7: if every reference in the scenario's
// Constraints list is a known constraint type string, treat the list
// as a type filter; otherwise treat it as a list of primary keys.
// Missing references yield an empty list, never a failure.
func loadConstraints(store storage.ReadStore, refs []string) ([]storage.ConstraintRecord, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	if allAreTypeStrings(refs) {
		return store.GetConstraintsByTypes(refs)
	}
	return store.GetConstraintsByIDs(refs)
}

var knownConstraintTypes = map[string]bool{
	string(model.ConstraintMaintenance):         true,
	string(model.ConstraintHeadway):             true,
	string(model.ConstraintPlatformMaintenance): true,
	string(model.ConstraintSpeedRestriction):    true,
}

func allAreTypeStrings(refs []string) bool {
	for _, r := range refs {
		if !knownConstraintTypes[r] {
			return false
		}
	}
	return true
}

// chooseOrigin implements spec.md §4.1 point 4: window.start if given,
// else the earliest scheduled_time across selected events, else now.
// All datetimes are treated as UTC; naive (already-UTC-typed, since Go
// has no naive datetime) values pass through unchanged.
func chooseOrigin(window *model.Window, events []storage.TrainEventRecord) time.Time {
	if window != nil && window.Start != nil {
		return time.Unix(*window.Start, 0).UTC()
	}
	var earliest time.Time
	for _, ev := range events {
		t := ev.ScheduledTime.UTC()
		if earliest.IsZero() || t.Before(earliest) {
			earliest = t
		}
	}
	if earliest.IsZero() {
		return time.Now().UTC()
	}
	return earliest
}

// toMinutes implements spec.md §4.1 point 5.
func toMinutes(t, origin time.Time) int {
	return int(math.Floor(t.Sub(origin).Seconds() / 60.0))
}

func normaliseStations(records []storage.StationRecord) map[string]model.Station {
	out := map[string]model.Station{}
	for _, r := range records {
		platforms := make([]model.Platform, 0, len(r.Platforms))
		for _, p := range r.Platforms {
			id := p.PlatformID
			if id == "" {
				id = p.LegacyID // spec.md §4.1 point 3: fill from legacy id field
			}
			if id == "" {
				continue // drop platforms with no identifier
			}
			platforms = append(platforms, model.Platform{
				ID:          id,
				LengthM:     p.LengthM,
				Electrified: p.Electrified,
			})
		}
		out[r.ID] = model.Station{
			ID:        r.ID,
			Name:      r.Name,
			Platforms: platforms,
		}
	}
	return out
}

// normaliseSegments merges each segment's matching speed_restriction
// constraint into the segment record, per spec.md §4.2.
func normaliseSegments(records []storage.SegmentRecord, constraints []storage.ConstraintRecord) (map[string]model.Segment, error) {
	speedBySegment := map[string]storage.ConstraintRecord{}
	for _, c := range constraints {
		if c.Type == string(model.ConstraintSpeedRestriction) {
			speedBySegment[c.SegmentID] = c
		}
	}

	out := map[string]model.Segment{}
	for _, r := range records {
		if r.From == "" || r.To == "" {
			return nil, model.NewInvalidInputError("segment %q missing from/to", r.ID)
		}
		if r.From == r.To {
			return nil, model.NewInvalidInputError("segment %q has identical from/to station %q", r.ID, r.From)
		}

		seg := model.Segment{
			ID:            r.ID,
			FromStation:   r.From,
			ToStation:     r.To,
			Capacity:      r.Capacity,
			TravelTimeMin: r.TravelTimeMin,
			DistanceM:     r.DistanceM,
		}
		if c, found := speedBySegment[r.ID]; found {
			seg.SpeedRestriction = &model.SpeedRestriction{
				MaxKMH: c.MaxSpeedKMH,
				Reason: c.Reason,
				Active: true,
			}
		}
		out[r.ID] = seg
	}
	return out, nil
}

func normaliseConstraints(records []storage.ConstraintRecord, origin time.Time) []model.Constraint {
	out := make([]model.Constraint, 0, len(records))
	for _, r := range records {
		c := model.Constraint{
			Type:        model.ConstraintType(r.Type),
			SegmentID:   r.SegmentID,
			StationID:   r.StationID,
			PlatformID:  r.PlatformID,
			MinGapSec:   r.MinGapSec,
			MaxSpeedKMH: r.MaxSpeedKMH,
			Reason:      r.Reason,
		}
		if !r.Start.IsZero() {
			c.Start = toMinutes(r.Start.UTC(), origin)
		}
		if !r.End.IsZero() {
			c.End = toMinutes(r.End.UTC(), origin)
		}
		out = append(out, c)
	}
	return out
}

func normaliseOccupancies(records []storage.OccupancyRecord, origin time.Time) []model.PlatformOccupancy {
	out := make([]model.PlatformOccupancy, 0, len(records))
	for _, r := range records {
		out = append(out, model.PlatformOccupancy{
			TrainID:      r.TrainID,
			StationID:    r.StationID,
			PlatformID:   r.PlatformID,
			StartMin:     toMinutes(r.StartTime.UTC(), origin),
			EndMin:       toMinutes(r.EndTime.UTC(), origin),
			TrainLengthM: r.TrainLengthM,
		})
	}
	return out
}

// normaliseTrains implements spec.md §4.1 point 6: sort each train's
// events by scheduled_time, build the ordered route/planned/platform
// arrays, and convert each planned time to minutes relative to the
// origin chosen by the caller. Trains with no events in the window are
// omitted.
func normaliseTrains(trainRecords []storage.TrainRecord, events []storage.TrainEventRecord, origin time.Time) []model.NormalisedTrain {
	byTrain := map[string][]storage.TrainEventRecord{}
	for _, ev := range events {
		byTrain[ev.TrainID] = append(byTrain[ev.TrainID], ev)
	}

	meta := map[string]storage.TrainRecord{}
	for _, t := range trainRecords {
		id := t.ID
		if id == "" {
			id = t.TrainID // spec.md §9: trains may key on _id or train_id
		}
		meta[id] = t
	}

	// Origin is computed by the caller from the full event set; here
	// we only need per-event ordering, which doesn't depend on origin.
	trainIDs := make([]string, 0, len(byTrain))
	for id := range byTrain {
		trainIDs = append(trainIDs, id)
	}
	sort.Strings(trainIDs)

	out := make([]model.NormalisedTrain, 0, len(trainIDs))
	for _, id := range trainIDs {
		evs := byTrain[id]
		sort.SliceStable(evs, func(i, j int) bool {
			return evs[i].ScheduledTime.Before(evs[j].ScheduledTime)
		})

		m := meta[id]
		nt := model.NormalisedTrain{
			ID:          id,
			Type:        model.TrainType(defaultString(m.Type, "local")),
			Priority:    m.Priority,
			AvgSpeedKMH: m.AvgSpeedKMH,
			LengthM:     m.LengthM,
		}

		for _, ev := range evs {
			nt.Route = append(nt.Route, model.RouteStop{
				Station:             ev.StationID,
				PlannedMin:          toMinutes(ev.ScheduledTime.UTC(), origin),
				PreassignedPlatform: ev.PlatformID,
				RawMinDwellSec:      ev.MinDwellSec,
				EventID:             ev.EventID,
				Type:                model.EventType(ev.Type),
			})
		}

		out = append(out, nt)
	}
	return out
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
