package storage_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raildispatch.dev/core/storage"
)

// Compile-time assertions that every backend satisfies the full
// interface set the core depends on.
var (
	_ storage.ReadStore   = (*storage.MemoryStorage)(nil)
	_ storage.EventWriter = (*storage.MemoryStorage)(nil)
	_ storage.SeedWriter  = (*storage.MemoryStorage)(nil)
	_ storage.ReadStore   = (*storage.SQLStore)(nil)
	_ storage.EventWriter = (*storage.SQLStore)(nil)
	_ storage.SeedWriter  = (*storage.SQLStore)(nil)
)

func seedScenario(t *testing.T, s *storage.MemoryStorage) time.Time {
	origin := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, s.WriteStation(storage.StationRecord{
		ID: "S1", Name: "Central", TotalPlatforms: 1,
		Platforms: []storage.PlatformRecord{{PlatformID: "P1", LengthM: 200}},
	}))
	require.NoError(t, s.WriteStation(storage.StationRecord{
		ID: "S2", Name: "North", TotalPlatforms: 1,
		Platforms: []storage.PlatformRecord{{PlatformID: "P1", LengthM: 200}},
	}))
	require.NoError(t, s.WriteSegment(storage.SegmentRecord{
		ID: "S1-S2", From: "S1", To: "S2", Capacity: 1, TravelTimeMin: 10, DistanceM: 5000,
	}))
	require.NoError(t, s.WriteTrain(storage.TrainRecord{ID: "T1", Type: "express", Priority: 1, AvgSpeedKMH: 80, LengthM: 120}))
	require.NoError(t, s.WriteTrainEvent(storage.TrainEventRecord{
		TrainID: "T1", EventID: "S1_dep", Type: "departure", StationID: "S1",
		ScheduledTime: origin,
	}))
	require.NoError(t, s.WriteTrainEvent(storage.TrainEventRecord{
		TrainID: "T1", EventID: "S2_arr", Type: "arrival", StationID: "S2",
		ScheduledTime: origin.Add(10 * time.Minute),
	}))
	require.NoError(t, s.WriteScenario(storage.ScenarioRecord{
		ID: "SC1", Description: "single train", Trains: []string{"T1"}, Segments: []string{"S1-S2"},
	}))

	return origin
}

func TestMemoryStorageScenarioRoundTrip(t *testing.T) {
	s := storage.NewMemoryStorage()
	seedScenario(t, s)

	sc, err := s.GetScenario("SC1")
	require.NoError(t, err)
	assert.Equal(t, "single train", sc.Description)
	assert.Equal(t, []string{"T1"}, sc.Trains)

	_, err = s.GetScenario("missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	trains, err := s.GetTrains(sc.Trains)
	require.NoError(t, err)
	require.Len(t, trains, 1)
	assert.Equal(t, "express", trains[0].Type)

	events, err := s.GetTrainEvents(sc.Trains, nil)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.True(t, events[0].ScheduledTime.Before(events[1].ScheduledTime))
}

func TestMemoryStorageTrainEventsWindowClip(t *testing.T) {
	s := storage.NewMemoryStorage()
	origin := seedScenario(t, s)

	start := origin.Add(5 * time.Minute)
	events, err := s.GetTrainEvents([]string{"T1"}, &storage.Window{Start: &start})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "S2_arr", events[0].EventID)
}

func TestMemoryStorageOccupancyOverlap(t *testing.T) {
	s := storage.NewMemoryStorage()
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, s.WriteOccupancy(storage.OccupancyRecord{
		TrainID: "T9", StationID: "S1", PlatformID: "P1",
		StartTime: base.Add(10 * time.Minute), EndTime: base.Add(30 * time.Minute),
	}))

	winStart := base
	winEnd := base.Add(5 * time.Minute)
	occ, err := s.GetOccupancyOverlapping(&storage.Window{Start: &winStart, End: &winEnd})
	require.NoError(t, err)
	assert.Empty(t, occ, "occupancy starting after window end should not overlap")

	winEnd2 := base.Add(15 * time.Minute)
	occ, err = s.GetOccupancyOverlapping(&storage.Window{Start: &winStart, End: &winEnd2})
	require.NoError(t, err)
	assert.Len(t, occ, 1)
}

func TestMemoryStorageEventMaterialisationIsReplaceNotMerge(t *testing.T) {
	s := storage.NewMemoryStorage()
	require.NoError(t, s.InsertEvents([]storage.EventOutputRecord{{TrainID: "T1", EventID: "e1"}}))
	require.NoError(t, s.DeleteEventsForTrains([]string{"T1"}))
	require.NoError(t, s.InsertEvents([]storage.EventOutputRecord{{TrainID: "T1", EventID: "e2"}}))

	assert.Len(t, s.OutputEvents["T1"], 1)
	assert.Equal(t, "e2", s.OutputEvents["T1"][0].EventID)
}
