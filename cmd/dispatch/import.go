package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"raildispatch.dev/core/importer"
)

var importCmd = &cobra.Command{
	Use:   "import <directory>",
	Short: "Seed a store from a directory of scenario CSV files",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	dir := args[0]

	store, err := openStore()
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	if closer, ok := store.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	sum, err := importer.Dir(store, dir)
	if err != nil {
		return fmt.Errorf("importing %s: %w", dir, err)
	}

	fmt.Printf("imported %d trains, %d stations, %d segments, %d scenarios, %d train events, %d constraints, %d occupancy records\n",
		sum.Trains, sum.Stations, sum.Segments, sum.Scenarios, sum.TrainEvents, sum.Constraints, sum.Occupancy)
	return nil
}
