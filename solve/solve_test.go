package solve_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raildispatch.dev/core/model"
	"raildispatch.dev/core/solve"
	"raildispatch.dev/core/testutil"
)

func stopAt(t *testing.T, sol *solve.Solution, trainID, station string) solve.StopResult {
	t.Helper()
	for _, tr := range sol.Trains {
		if tr.TrainID != trainID {
			continue
		}
		for _, sv := range tr.Stops {
			if sv.Station == station {
				return sv
			}
		}
	}
	require.Failf(t, "stop not found", "train %s station %s", trainID, station)
	return solve.StopResult{}
}

func solveScenario(t *testing.T, pm *model.ProblemModel) (*solve.Solution, error) {
	t.Helper()
	m, err := solve.BuildModel(pm)
	require.NoError(t, err)
	return solve.NewSolver(solve.DefaultConfig()).Solve(context.Background(), m)
}

func TestSingleTrainMatchesPlan(t *testing.T) {
	sol, err := solveScenario(t, testutil.SingleTrain())
	require.NoError(t, err)

	for _, station := range []string{"S1", "S2", "S3"} {
		sv := stopAt(t, sol, "T1", station)
		if sv.HasArrival {
			assert.Equal(t, sv.PlannedArrival, sv.ActualArrival, "station %s", station)
		}
	}
	assert.Equal(t, float64(0), sol.ObjectiveValue)
}

func TestHeadwaySeparatesSharedSegment(t *testing.T) {
	sol, err := solveScenario(t, testutil.Headway())
	require.NoError(t, err)

	express := stopAt(t, sol, "T1", "S1")
	local := stopAt(t, sol, "T2", "S1")
	assert.Equal(t, 0, express.ActualDeparture, "higher priority train keeps its planned departure")
	assert.GreaterOrEqual(t, local.ActualDeparture, express.ActualDeparture)
}

func TestSpeedRestrictionInflatesTraverseTime(t *testing.T) {
	sol, err := solveScenario(t, testutil.SpeedRestriction())
	require.NoError(t, err)

	dep := stopAt(t, sol, "T1", "S1")
	arr := stopAt(t, sol, "T1", "S2")
	assert.GreaterOrEqual(t, arr.ActualArrival-dep.ActualDeparture, 20)
}

func TestPlatformConflictDelaysLowerPriority(t *testing.T) {
	sol, err := solveScenario(t, testutil.PlatformConflict())
	require.NoError(t, err)

	express := stopAt(t, sol, "T1", "S1")
	local := stopAt(t, sol, "T2", "S1")
	assert.Equal(t, 0, express.ActualArrival)
	assert.Greater(t, local.ActualArrival, 0)
	assert.Equal(t, express.Platform, local.Platform, "S1 has a single platform, so the trains share it at different minutes")
}

func TestFixedOccupancyIsInfeasible(t *testing.T) {
	_, err := solveScenario(t, testutil.FixedOccupancy())
	assert.ErrorIs(t, err, solve.ErrNoFeasibleSolution)
}

func TestInfeasibleWindowIsRejected(t *testing.T) {
	_, err := solveScenario(t, testutil.InfeasibleWindow())
	assert.ErrorIs(t, err, solve.ErrNoFeasibleSolution)
}

func TestSolveIsDeterministicWithOneWorker(t *testing.T) {
	pm := testutil.Headway()
	m1, err := solve.BuildModel(pm)
	require.NoError(t, err)
	sol1, err := solve.NewSolver(solve.DefaultConfig()).Solve(context.Background(), m1)
	require.NoError(t, err)

	m2, err := solve.BuildModel(pm)
	require.NoError(t, err)
	sol2, err := solve.NewSolver(solve.DefaultConfig()).Solve(context.Background(), m2)
	require.NoError(t, err)

	assert.Equal(t, sol1.ObjectiveValue, sol2.ObjectiveValue)
	assert.Equal(t, stopAt(t, sol1, "T2", "S1").ActualDeparture, stopAt(t, sol2, "T2", "S1").ActualDeparture)
}

func TestMultiWorkerNeverWorsensObjective(t *testing.T) {
	pm := testutil.Headway()

	single, err := solve.BuildModel(pm)
	require.NoError(t, err)
	solSingle, err := solve.NewSolver(solve.Config{TimeLimitSeconds: 1, NumWorkers: 1, Seed: 1}).Solve(context.Background(), single)
	require.NoError(t, err)

	multi, err := solve.BuildModel(pm)
	require.NoError(t, err)
	solMulti, err := solve.NewSolver(solve.Config{TimeLimitSeconds: 1, NumWorkers: 4, Seed: 1}).Solve(context.Background(), multi)
	require.NoError(t, err)

	assert.LessOrEqual(t, solMulti.ObjectiveValue, solSingle.ObjectiveValue)
}

func TestBuildModelRejectsUnknownStation(t *testing.T) {
	pm := testutil.SingleTrain()
	train := pm.Trains[0]
	train.Route = append([]model.RouteStop{{Station: "GHOST", PlannedMin: 0, Type: model.EventDeparture, EventID: "ghost_dep"}}, train.Route...)
	pm.Trains[0] = train

	_, err := solve.BuildModel(pm)
	require.Error(t, err)
	var invalid *model.InvalidInputError
	assert.ErrorAs(t, err, &invalid)
}

func TestPriorityOrderWeightsExpressAboveFreight(t *testing.T) {
	assert.Greater(t, model.PriorityWeight(model.TrainExpress), model.PriorityWeight(model.TrainFreight))
}
