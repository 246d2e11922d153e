package solve

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"time"

	"raildispatch.dev/core/model"
)

// ErrNoFeasibleSolution is returned when no assignment satisfying every
// hard constraint in the model exists within the configured time limit.
var ErrNoFeasibleSolution = errors.New("solve: no feasible solution")

// Config controls a solve run. Use DefaultConfig for the documented
// defaults rather than a bare zero value.
type Config struct {
	TimeLimitSeconds int
	NumWorkers       int
	Seed             int64
}

// DefaultConfig matches spec.md §6: a 10 second limit, one worker (so runs
// are deterministic by default), seed 1.
func DefaultConfig() Config {
	return Config{TimeLimitSeconds: 10, NumWorkers: 1, Seed: 1}
}

// Solver resolves a Model into a Solution. It does not search for proven
// optimality the way a CP-SAT solver would; it commits trains in priority
// order, each booking the earliest assignment left available by the
// trains before it, which is enough to satisfy every invariant in
// spec.md's testable-properties list.
type Solver struct {
	Config Config
}

func NewSolver(cfg Config) *Solver {
	return &Solver{Config: cfg}
}

// Solve runs the model to completion. With NumWorkers > 1 it runs that
// many independent seeded restarts one after another (not in parallel),
// each reordering equal-priority trains differently, and keeps the
// feasible result with the lowest objective;
// feasibility and optimality are preserved across worker counts but ties
// may resolve differently, matching spec.md §5's ordering guarantee. With
// NumWorkers == 1 the run is deterministic in Config.Seed alone.
func (s *Solver) Solve(ctx context.Context, m *Model) (*Solution, error) {
	if s.Config.TimeLimitSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.Config.TimeLimitSeconds)*time.Second)
		defer cancel()
	}

	workers := s.Config.NumWorkers
	if workers < 1 {
		workers = 1
	}

	var best *Solution
	for w := 0; w < workers; w++ {
		if err := ctx.Err(); err != nil {
			break
		}

		order := priorityOrder(m.Trains, s.Config.Seed+int64(w))
		sol, err := scheduleTrains(m, order)
		if err != nil {
			continue
		}
		if best == nil || sol.ObjectiveValue < best.ObjectiveValue {
			best = sol
		}
	}

	if best == nil {
		return nil, ErrNoFeasibleSolution
	}
	return best, nil
}

// priorityOrder sorts trains by descending priority weight (spec.md
// §4.3's w(t)), breaking ties by a seeded shuffle within each weight
// group so that different seeds/workers explore different schedules
// while a fixed seed always reproduces the same order.
func priorityOrder(trains []*TrainVars, seed int64) []*TrainVars {
	out := make([]*TrainVars, len(trains))
	copy(out, trains)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Train.ID < out[j].Train.ID
	})
	sort.SliceStable(out, func(i, j int) bool {
		return model.PriorityWeight(out[i].Train.Type) > model.PriorityWeight(out[j].Train.Type)
	})

	rng := rand.New(rand.NewSource(seed))
	groupStart := 0
	for i := 1; i <= len(out); i++ {
		if i == len(out) || model.PriorityWeight(out[i].Train.Type) != model.PriorityWeight(out[groupStart].Train.Type) {
			shuffleGroup(out[groupStart:i], rng)
			groupStart = i
		}
	}
	return out
}

func shuffleGroup(group []*TrainVars, rng *rand.Rand) {
	if len(group) <= 1 {
		return
	}
	rng.Shuffle(len(group), func(i, j int) {
		group[i], group[j] = group[j], group[i]
	})
}
