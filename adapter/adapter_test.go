package adapter_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raildispatch.dev/core/adapter"
	"raildispatch.dev/core/model"
	"raildispatch.dev/core/storage"
)

func baseTime() time.Time {
	return time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
}

func singleTrainStore(t *testing.T) (*storage.MemoryStorage, time.Time) {
	s := storage.NewMemoryStorage()
	origin := baseTime()

	require.NoError(t, s.WriteStation(storage.StationRecord{
		ID: "S1", Name: "Alpha",
		Platforms: []storage.PlatformRecord{{PlatformID: "P1"}},
	}))
	require.NoError(t, s.WriteStation(storage.StationRecord{
		ID: "S2", Name: "Beta",
		Platforms: []storage.PlatformRecord{{LegacyID: "legacy-p1"}}, // no platform_id, has legacy
	}))
	require.NoError(t, s.WriteStation(storage.StationRecord{
		ID: "S3", Name: "Gamma",
		Platforms: []storage.PlatformRecord{{PlatformID: "P1"}, {}}, // second has no id at all
	}))
	require.NoError(t, s.WriteSegment(storage.SegmentRecord{ID: "S1-S2", From: "S1", To: "S2", TravelTimeMin: 20}))
	require.NoError(t, s.WriteSegment(storage.SegmentRecord{ID: "S2-S3", From: "S2", To: "S3", TravelTimeMin: 25}))
	require.NoError(t, s.WriteTrain(storage.TrainRecord{ID: "T1", Type: "express", Priority: 1}))

	for _, ev := range []struct {
		station string
		offset  time.Duration
		typ     string
	}{
		{"S1", 0, "departure"},
		{"S2", 20 * time.Minute, "arrival"},
		{"S2", 21 * time.Minute, "departure"},
		{"S3", 45 * time.Minute, "arrival"},
	} {
		require.NoError(t, s.WriteTrainEvent(storage.TrainEventRecord{
			TrainID: "T1", EventID: ev.station + "_" + ev.typ, Type: ev.typ,
			StationID: ev.station, ScheduledTime: origin.Add(ev.offset),
		}))
	}

	require.NoError(t, s.WriteScenario(storage.ScenarioRecord{
		ID: "S1_SCENARIO", Description: "single train", Trains: []string{"T1"},
		Segments: []string{"S1-S2", "S2-S3"},
	}))

	return s, origin
}

func TestLoadNotFound(t *testing.T) {
	s := storage.NewMemoryStorage()
	_, err := adapter.Load(s, "missing", nil)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestLoadSingleTrainRoundTrip(t *testing.T) {
	s, origin := singleTrainStore(t)

	pm, err := adapter.Load(s, "S1_SCENARIO", nil)
	require.NoError(t, err)

	assert.Equal(t, origin.Unix(), pm.OriginTimeUnix)
	require.Len(t, pm.Trains, 1)

	train := pm.Trains[0]
	assert.Equal(t, model.TrainExpress, train.Type)
	require.Len(t, train.Route, 4)
	assert.Equal(t, []int{0, 20, 21, 45}, plannedMinutes(train))
	assert.Equal(t, "S1", train.Route[0].Station)
	assert.Equal(t, "S3", train.Route[3].Station)
}

func TestLoadPlatformLegacyIDFallback(t *testing.T) {
	s, _ := singleTrainStore(t)
	pm, err := adapter.Load(s, "S1_SCENARIO", nil)
	require.NoError(t, err)

	st2 := pm.Stations["S2"]
	require.Len(t, st2.Platforms, 1)
	assert.Equal(t, "legacy-p1", st2.Platforms[0].ID)

	st3 := pm.Stations["S3"]
	require.Len(t, st3.Platforms, 1, "platform with no id at all must be dropped")
	assert.Equal(t, "P1", st3.Platforms[0].ID)
}

func TestLoadWindowClipsEventsAndSetsOrigin(t *testing.T) {
	s, origin := singleTrainStore(t)

	winStart := origin.Add(20 * time.Minute).Unix()
	winEnd := origin.Add(60 * time.Minute).Unix()
	pm, err := adapter.Load(s, "S1_SCENARIO", &model.Window{Start: &winStart, End: &winEnd})
	require.NoError(t, err)

	assert.Equal(t, winStart, pm.OriginTimeUnix, "window.start must become the origin when provided")
	require.Len(t, pm.Trains, 1)
	assert.Equal(t, []int{0, 1, 25}, plannedMinutes(pm.Trains[0]))
}

func TestLoadSegmentMissingEndpointsIsInvalidInput(t *testing.T) {
	s := storage.NewMemoryStorage()
	require.NoError(t, s.WriteSegment(storage.SegmentRecord{ID: "bad", From: "", To: "S2"}))
	require.NoError(t, s.WriteScenario(storage.ScenarioRecord{ID: "SC", Segments: []string{"bad"}}))

	_, err := adapter.Load(s, "SC", nil)
	require.Error(t, err)
	var invalid *model.InvalidInputError
	assert.ErrorAs(t, err, &invalid)
}

func TestLoadConstraintReferenceDisambiguation(t *testing.T) {
	s, _ := singleTrainStore(t)
	require.NoError(t, s.WriteConstraint(storage.ConstraintRecord{ID: "c1", Type: "headway", SegmentID: "S1-S2", MinGapSec: 120}))
	require.NoError(t, s.WriteConstraint(storage.ConstraintRecord{ID: "c2", Type: "speed_restriction", SegmentID: "S2-S3", MaxSpeedKMH: 30}))

	// By type: scenario lists the type string, not the PK.
	sc, err := s.GetScenario("S1_SCENARIO")
	require.NoError(t, err)
	sc.Constraints = []string{"headway"}
	require.NoError(t, s.WriteScenario(*sc))

	pm, err := adapter.Load(s, "S1_SCENARIO", nil)
	require.NoError(t, err)
	require.Len(t, pm.Constraints, 1)
	assert.Equal(t, model.ConstraintHeadway, pm.Constraints[0].Type)

	// By primary key.
	sc.Constraints = []string{"c1", "c2"}
	require.NoError(t, s.WriteScenario(*sc))
	pm, err = adapter.Load(s, "S1_SCENARIO", nil)
	require.NoError(t, err)
	assert.Len(t, pm.Constraints, 2)

	// Speed restriction merges into the segment.
	seg := pm.Segments["S2-S3"]
	require.NotNil(t, seg.SpeedRestriction)
	assert.Equal(t, 30.0, seg.SpeedRestriction.MaxKMH)
}

func TestLoadMissingConstraintRefsYieldEmptyNotError(t *testing.T) {
	s, _ := singleTrainStore(t)
	sc, err := s.GetScenario("S1_SCENARIO")
	require.NoError(t, err)
	sc.Constraints = []string{"does-not-exist"}
	require.NoError(t, s.WriteScenario(*sc))

	pm, err := adapter.Load(s, "S1_SCENARIO", nil)
	require.NoError(t, err)
	assert.Empty(t, pm.Constraints)
}

func plannedMinutes(t model.NormalisedTrain) []int {
	out := make([]int, len(t.Route))
	for i, stop := range t.Route {
		out[i] = stop.PlannedMin
	}
	return out
}
