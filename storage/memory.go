package storage

import (
	"sort"
)

// MemoryStorage is an in-process implementation of ReadStore,
// EventWriter and SeedWriter. It backs the CLI's default run and the
// test suite.
type MemoryStorage struct {
	Trains      map[string]TrainRecord
	Stations    map[string]StationRecord
	Segments    map[string]SegmentRecord
	Scenarios   map[string]ScenarioRecord
	Events      map[string][]TrainEventRecord // by train id
	Constraints []ConstraintRecord
	Occupancy   []OccupancyRecord

	OutputEvents    map[string][]EventOutputRecord
	OutputOccupancy map[string][]OccupancyOutputRecord
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		Trains:          map[string]TrainRecord{},
		Stations:        map[string]StationRecord{},
		Segments:        map[string]SegmentRecord{},
		Scenarios:       map[string]ScenarioRecord{},
		Events:          map[string][]TrainEventRecord{},
		OutputEvents:    map[string][]EventOutputRecord{},
		OutputOccupancy: map[string][]OccupancyOutputRecord{},
	}
}

func (s *MemoryStorage) GetScenario(scenarioID string) (*ScenarioRecord, error) {
	sc, found := s.Scenarios[scenarioID]
	if !found {
		return nil, ErrNotFound
	}
	return &sc, nil
}

func (s *MemoryStorage) GetTrains(ids []string) ([]TrainRecord, error) {
	out := []TrainRecord{}
	for _, id := range ids {
		if t, found := s.Trains[id]; found {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *MemoryStorage) GetSegments(ids []string) ([]SegmentRecord, error) {
	out := []SegmentRecord{}
	for _, id := range ids {
		if seg, found := s.Segments[id]; found {
			out = append(out, seg)
		}
	}
	return out, nil
}

func (s *MemoryStorage) GetStations(ids []string) ([]StationRecord, error) {
	out := []StationRecord{}
	for _, id := range ids {
		if st, found := s.Stations[id]; found {
			out = append(out, st)
		}
	}
	return out, nil
}

func (s *MemoryStorage) GetTrainEvents(trainIDs []string, window *Window) ([]TrainEventRecord, error) {
	out := []TrainEventRecord{}
	for _, id := range trainIDs {
		for _, ev := range s.Events[id] {
			if window != nil {
				if window.Start != nil && ev.ScheduledTime.Before(*window.Start) {
					continue
				}
				if window.End != nil && ev.ScheduledTime.After(*window.End) {
					continue
				}
			}
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ScheduledTime.Before(out[j].ScheduledTime)
	})
	return out, nil
}

func (s *MemoryStorage) GetConstraintsByIDs(ids []string) ([]ConstraintRecord, error) {
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	out := []ConstraintRecord{}
	for _, c := range s.Constraints {
		if want[c.ID] {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *MemoryStorage) GetConstraintsByTypes(types []string) ([]ConstraintRecord, error) {
	want := map[string]bool{}
	for _, t := range types {
		want[t] = true
	}
	out := []ConstraintRecord{}
	for _, c := range s.Constraints {
		if want[c.Type] {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *MemoryStorage) GetOccupancyOverlapping(window *Window) ([]OccupancyRecord, error) {
	out := []OccupancyRecord{}
	for _, occ := range s.Occupancy {
		if window != nil {
			if window.End != nil && occ.StartTime.After(*window.End) {
				continue
			}
			if window.Start != nil && occ.EndTime.Before(*window.Start) {
				continue
			}
		}
		out = append(out, occ)
	}
	return out, nil
}

func (s *MemoryStorage) DeleteEventsForTrains(trainIDs []string) error {
	for _, id := range trainIDs {
		delete(s.OutputEvents, id)
	}
	return nil
}

func (s *MemoryStorage) InsertEvents(records []EventOutputRecord) error {
	for _, rec := range records {
		s.OutputEvents[rec.TrainID] = append(s.OutputEvents[rec.TrainID], rec)
	}
	return nil
}

func (s *MemoryStorage) DeleteOccupancyForTrains(trainIDs []string) error {
	for _, id := range trainIDs {
		delete(s.OutputOccupancy, id)
	}
	return nil
}

func (s *MemoryStorage) InsertOccupancy(records []OccupancyOutputRecord) error {
	for _, rec := range records {
		s.OutputOccupancy[rec.TrainID] = append(s.OutputOccupancy[rec.TrainID], rec)
	}
	return nil
}

// SeedWriter implementation below, used by importer and test fixtures.

func (s *MemoryStorage) WriteTrain(t TrainRecord) error {
	id := t.ID
	if id == "" {
		id = t.TrainID
	}
	s.Trains[id] = t
	return nil
}

func (s *MemoryStorage) WriteStation(st StationRecord) error {
	s.Stations[st.ID] = st
	return nil
}

func (s *MemoryStorage) WriteSegment(seg SegmentRecord) error {
	s.Segments[seg.ID] = seg
	return nil
}

func (s *MemoryStorage) WriteScenario(sc ScenarioRecord) error {
	s.Scenarios[sc.ID] = sc
	return nil
}

func (s *MemoryStorage) WriteTrainEvent(ev TrainEventRecord) error {
	s.Events[ev.TrainID] = append(s.Events[ev.TrainID], ev)
	return nil
}

func (s *MemoryStorage) WriteConstraint(c ConstraintRecord) error {
	s.Constraints = append(s.Constraints, c)
	return nil
}

func (s *MemoryStorage) WriteOccupancy(o OccupancyRecord) error {
	s.Occupancy = append(s.Occupancy, o)
	return nil
}
