package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "dispatch",
	Short:        "Train dispatch optimiser",
	Long:         "Loads, solves and persists train dispatch scenarios",
	SilenceUsage: true,
}

var (
	storeDriver string
	storeDSN    string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&storeDriver, "store", "", "memory", "Store backend: memory, sqlite or postgres")
	rootCmd.PersistentFlags().StringVarP(&storeDSN, "dsn", "", "", "Store connection string (sqlite directory holding dispatch.db, or postgres DSN; ignored for memory)")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(importCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(exitCodeFor(err))
	}
}
