package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"raildispatch.dev/core"
	"raildispatch.dev/core/model"
	"raildispatch.dev/core/solve"
)

var runCmd = &cobra.Command{
	Use:   "run <scenario-id>",
	Short: "Load, solve and report a dispatch scenario",
	Args:  cobra.ExactArgs(1),
	RunE:  run,
}

var (
	timeLimitSeconds int
	numWorkers       int
	seed             int64
	windowStart      string
	windowEnd        string
	persist          bool
)

func init() {
	defaults := solve.DefaultConfig()
	runCmd.Flags().IntVarP(&timeLimitSeconds, "time-limit", "", defaults.TimeLimitSeconds, "Solve time limit, in seconds")
	runCmd.Flags().IntVarP(&numWorkers, "workers", "", defaults.NumWorkers, "Number of seeded restarts to run, keeping the best")
	runCmd.Flags().Int64VarP(&seed, "seed", "", defaults.Seed, "Random seed for priority tie-breaking")
	runCmd.Flags().StringVarP(&windowStart, "from", "", "", "Clip the scenario to events at or after this RFC3339 time")
	runCmd.Flags().StringVarP(&windowEnd, "to", "", "", "Clip the scenario to events at or before this RFC3339 time")
	runCmd.Flags().BoolVarP(&persist, "persist", "", false, "Write the solved schedule back to the store")
}

func run(cmd *cobra.Command, args []string) error {
	scenarioID := args[0]

	store, err := openStore()
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	if closer, ok := store.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	window, err := parseWindow(windowStart, windowEnd)
	if err != nil {
		return fmt.Errorf("invalid window: %w", err)
	}

	cfg := solve.Config{TimeLimitSeconds: timeLimitSeconds, NumWorkers: numWorkers, Seed: seed}

	runner := dispatch.NewRunner(store)
	result, err := runner.Run(context.Background(), scenarioID, window, cfg, persist)
	if err != nil {
		return err
	}

	printResult(result)
	return nil
}

func parseWindow(from, to string) (*model.Window, error) {
	if from == "" && to == "" {
		return nil, nil
	}
	w := &model.Window{}
	if from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return nil, fmt.Errorf("parsing --from: %w", err)
		}
		unix := t.Unix()
		w.Start = &unix
	}
	if to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return nil, fmt.Errorf("parsing --to: %w", err)
		}
		unix := t.Unix()
		w.End = &unix
	}
	return w, nil
}

func printResult(result *dispatch.Result) {
	fmt.Printf("scenario %s: objective %.1f across %d trains\n", result.ScenarioID, result.Solution.ObjectiveValue, len(result.Solution.Trains))
	fmt.Printf("delay: avg %.1f min, max %d min over %d samples\n", result.Delay.OverallAvg, result.Delay.OverallMax, result.Delay.TotalEvents)
	for segID, tp := range result.Throughput {
		fmt.Printf("segment %s: %d trains, %.1f%% utilisation\n", segID, tp.TrainCount, tp.UtilisationPct)
	}
	if result.Persisted != nil {
		fmt.Printf("persisted %d events, %d occupancy records\n", result.Persisted.EventsInserted, result.Persisted.OccupancyInserted)
	}
}
