package materialize_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raildispatch.dev/core/materialize"
	"raildispatch.dev/core/solve"
	"raildispatch.dev/core/storage"
	"raildispatch.dev/core/testutil"
)

func solveSingleTrain(t *testing.T) *solve.Solution {
	t.Helper()
	m, err := solve.BuildModel(testutil.SingleTrain())
	require.NoError(t, err)
	sol, err := solve.NewSolver(solve.DefaultConfig()).Solve(context.Background(), m)
	require.NoError(t, err)
	return sol
}

func TestEventsInsertsArrivalAndDeparturePairs(t *testing.T) {
	sol := solveSingleTrain(t)
	store := storage.NewMemoryStorage()

	result, err := materialize.Events(store, sol)
	require.NoError(t, err)

	// S1 has a departure only, S2 has both, S3 an arrival only: 4 events.
	assert.Equal(t, 4, result.EventsInserted)
	assert.Equal(t, 3, result.OccupancyInserted)

	events := store.OutputEvents["T1"]
	assert.Len(t, events, 4)
	for _, ev := range events {
		assert.Equal(t, "scheduled", ev.Status)
		assert.Equal(t, ev.ScheduledTime, ev.ActualTime)
	}
}

func TestEventsReplacesPriorRecordsForSameTrain(t *testing.T) {
	sol := solveSingleTrain(t)
	store := storage.NewMemoryStorage()

	_, err := materialize.Events(store, sol)
	require.NoError(t, err)
	firstCount := len(store.OutputEvents["T1"])

	_, err = materialize.Events(store, sol)
	require.NoError(t, err)
	assert.Equal(t, firstCount, len(store.OutputEvents["T1"]), "re-running must not duplicate records")
}
