// Package dispatch wires the Data Adapter, solver, metrics and event
// materialiser into a single run: load a scenario, solve it, and
// (optionally) write the result back to storage. It is a thin
// orchestration layer over otherwise independent packages.
package dispatch

import (
	"context"
	"fmt"

	"raildispatch.dev/core/adapter"
	"raildispatch.dev/core/materialize"
	"raildispatch.dev/core/metrics"
	"raildispatch.dev/core/model"
	"raildispatch.dev/core/solve"
	"raildispatch.dev/core/storage"
)

// Result is everything a run produces: the raw solution plus the
// derived reports, ready for a caller to print or persist further.
type Result struct {
	ScenarioID string
	Solution   *solve.Solution
	Delay      metrics.DelayMetrics
	Throughput metrics.ThroughputMetrics
	Persisted  *materialize.Result
}

// Runner orchestrates a dispatch run against a store. Store must
// satisfy storage.ReadStore to load a scenario; it only needs to
// additionally satisfy storage.EventWriter when Persist is requested.
type Runner struct {
	Store storage.ReadStore
}

func NewRunner(store storage.ReadStore) *Runner {
	return &Runner{Store: store}
}

// Run loads scenarioID (clipped to window, if given), solves it with
// cfg, computes delay and throughput metrics, and — if persist — writes
// the materialised schedule back through an EventWriter. persist is
// only honored if the Runner's Store also implements storage.EventWriter;
// otherwise it returns an error naming the gap rather than silently
// skipping the write.
func (r *Runner) Run(ctx context.Context, scenarioID string, window *model.Window, cfg solve.Config, persist bool) (*Result, error) {
	fmt.Printf("loading scenario %s\n", scenarioID)
	pm, err := adapter.Load(r.Store, scenarioID, window)
	if err != nil {
		return nil, fmt.Errorf("loading scenario %s: %w", scenarioID, err)
	}

	fmt.Printf("building model: %d trains, %d segments, %d stations\n", len(pm.Trains), len(pm.Segments), len(pm.Stations))
	m, err := solve.BuildModel(pm)
	if err != nil {
		return nil, fmt.Errorf("building model: %w", err)
	}

	fmt.Println("solving")
	sol, err := solve.NewSolver(cfg).Solve(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("solving scenario %s: %w", scenarioID, err)
	}
	fmt.Printf("solved: objective %.1f\n", sol.ObjectiveValue)

	result := &Result{
		ScenarioID: scenarioID,
		Solution:   sol,
		Delay:      metrics.Delay(sol),
		Throughput: metrics.Throughput(sol),
	}

	if persist {
		writer, ok := r.Store.(storage.EventWriter)
		if !ok {
			return nil, fmt.Errorf("persisting results: store does not implement EventWriter")
		}
		fmt.Println("persisting schedule")
		persisted, err := materialize.Events(writer, sol)
		if err != nil {
			return nil, fmt.Errorf("persisting scenario %s: %w", scenarioID, err)
		}
		result.Persisted = persisted
	}

	return result, nil
}
