package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
	jsonOut bool

	// Pool construction flags shared by the workload commands.
	flagCapacity  int64
	flagAlignment int64
	flagBins      int
	flagStatic    bool
)

var rootCmd = &cobra.Command{
	Use:   "poolctl",
	Short: "Exercise and inspect the poolkit block-pool allocator",
	Long: `poolctl drives the poolkit allocator from the command line: it can
print the effective configuration, run concurrent allocation workloads, and
check the free-region index invariants after a deterministic churn.`,
	Version: "0.1.0",
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().
		Int64Var(&flagCapacity, "capacity", 64<<20, "Initial arena capacity in bytes")
	rootCmd.PersistentFlags().
		Int64Var(&flagAlignment, "alignment", 64, "Block alignment in bytes (power of two)")
	rootCmd.PersistentFlags().IntVar(&flagBins, "bins", 32, "Number of size-class bins")
	rootCmd.PersistentFlags().
		BoolVar(&flagStatic, "static", false, "Use the fixed-capacity arena (no growth)")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// printVerbose prints a message only in verbose mode
func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}
