package dispatch_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dispatch "raildispatch.dev/core"
	"raildispatch.dev/core/solve"
	"raildispatch.dev/core/storage"
)

var origin = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func at(minutes int) time.Time {
	return origin.Add(time.Duration(minutes) * time.Minute)
}

// seedSingleTrain mirrors testutil.SingleTrain (S1: one train, route
// S1->S2->S3, planned [0,20,45], one platform per station) as raw
// storage records, the shape the importer and adapter actually see.
func seedSingleTrain(t *testing.T) *storage.MemoryStorage {
	t.Helper()
	store := storage.NewMemoryStorage()

	require.NoError(t, store.WriteStation(storage.StationRecord{ID: "S1", Name: "S1", Platforms: []storage.PlatformRecord{{PlatformID: "P1"}}}))
	require.NoError(t, store.WriteStation(storage.StationRecord{ID: "S2", Name: "S2", Platforms: []storage.PlatformRecord{{PlatformID: "P1"}}}))
	require.NoError(t, store.WriteStation(storage.StationRecord{ID: "S3", Name: "S3", Platforms: []storage.PlatformRecord{{PlatformID: "P1"}}}))

	require.NoError(t, store.WriteSegment(storage.SegmentRecord{ID: "S1-S2", From: "S1", To: "S2", Capacity: 1, TravelTimeMin: 20, DistanceM: 10000}))
	require.NoError(t, store.WriteSegment(storage.SegmentRecord{ID: "S2-S3", From: "S2", To: "S3", Capacity: 1, TravelTimeMin: 25, DistanceM: 12000}))

	require.NoError(t, store.WriteTrain(storage.TrainRecord{ID: "T1", TrainID: "T1", Type: "express"}))

	require.NoError(t, store.WriteTrainEvent(storage.TrainEventRecord{TrainID: "T1", EventID: "S1_dep", Type: "departure", StationID: "S1", ScheduledTime: at(0)}))
	require.NoError(t, store.WriteTrainEvent(storage.TrainEventRecord{TrainID: "T1", EventID: "S2_arr", Type: "arrival", StationID: "S2", ScheduledTime: at(20)}))
	require.NoError(t, store.WriteTrainEvent(storage.TrainEventRecord{TrainID: "T1", EventID: "S2_dep", Type: "departure", StationID: "S2", ScheduledTime: at(20)}))
	require.NoError(t, store.WriteTrainEvent(storage.TrainEventRecord{TrainID: "T1", EventID: "S3_arr", Type: "arrival", StationID: "S3", ScheduledTime: at(45)}))

	require.NoError(t, store.WriteScenario(storage.ScenarioRecord{
		ID:       "S1_SINGLETRAIN",
		Trains:   []string{"T1"},
		Segments: []string{"S1-S2", "S2-S3"},
	}))

	return store
}

func TestRunnerSolvesAndReportsMetrics(t *testing.T) {
	store := seedSingleTrain(t)
	runner := dispatch.NewRunner(store)

	result, err := runner.Run(context.Background(), "S1_SINGLETRAIN", nil, solve.DefaultConfig(), false)
	require.NoError(t, err)

	assert.Equal(t, "S1_SINGLETRAIN", result.ScenarioID)
	assert.Equal(t, float64(0), result.Solution.ObjectiveValue)
	assert.Greater(t, result.Delay.TotalEvents, 0)
	assert.Nil(t, result.Persisted)
}

func TestRunnerPersistsWhenRequested(t *testing.T) {
	store := seedSingleTrain(t)
	runner := dispatch.NewRunner(store)

	result, err := runner.Run(context.Background(), "S1_SINGLETRAIN", nil, solve.DefaultConfig(), true)
	require.NoError(t, err)

	require.NotNil(t, result.Persisted)
	assert.Greater(t, result.Persisted.EventsInserted, 0)
	assert.NotEmpty(t, store.OutputEvents["T1"])
}

func TestRunnerWrapsUnknownScenario(t *testing.T) {
	store := storage.NewMemoryStorage()
	runner := dispatch.NewRunner(store)

	_, err := runner.Run(context.Background(), "GHOST", nil, solve.DefaultConfig(), false)
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
