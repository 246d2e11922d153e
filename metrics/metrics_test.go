package metrics_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raildispatch.dev/core/metrics"
	"raildispatch.dev/core/solve"
	"raildispatch.dev/core/testutil"
)

func TestDelayIsZeroForOnTimeSchedule(t *testing.T) {
	pm := testutil.SingleTrain()
	m, err := solve.BuildModel(pm)
	require.NoError(t, err)
	sol, err := solve.NewSolver(solve.DefaultConfig()).Solve(context.Background(), m)
	require.NoError(t, err)

	dm := metrics.Delay(sol)
	assert.Equal(t, 0, dm.OverallMax)
	assert.Equal(t, float64(0), dm.OverallAvg)
	assert.Greater(t, dm.TotalEvents, 0)

	td, ok := dm.PerTrain["T1"]
	require.True(t, ok)
	assert.Equal(t, float64(0), td.AvgDelay)
}

func TestDelaySeparatesPlatformConflictTrains(t *testing.T) {
	pm := testutil.PlatformConflict()
	m, err := solve.BuildModel(pm)
	require.NoError(t, err)
	sol, err := solve.NewSolver(solve.DefaultConfig()).Solve(context.Background(), m)
	require.NoError(t, err)

	dm := metrics.Delay(sol)
	express := dm.PerTrain["T1"]
	local := dm.PerTrain["T2"]
	assert.Equal(t, float64(0), express.AvgDelay)
	assert.Greater(t, local.AvgDelay, float64(0))
}

func TestThroughputReportsSegmentUsage(t *testing.T) {
	pm := testutil.Headway()
	m, err := solve.BuildModel(pm)
	require.NoError(t, err)
	sol, err := solve.NewSolver(solve.DefaultConfig()).Solve(context.Background(), m)
	require.NoError(t, err)

	tp := metrics.Throughput(sol)
	seg, ok := tp["S1-S2"]
	require.True(t, ok)
	assert.Equal(t, 2, seg.TrainCount)
	assert.Greater(t, seg.AvgTraverseMin, float64(0))
	assert.Greater(t, seg.UtilisationPct, float64(0))
}
