package main

import (
	"fmt"

	"github.com/pbnjay/memory"
	"github.com/spf13/cobra"

	"github.com/joshuapare/poolkit/pool"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the effective pool configuration",
		Long: `The info command creates a pool with the given flags and prints its
effective configuration and initial state.

Example:
  poolctl info
  poolctl info --capacity 134217728 --static --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo()
		},
	}
}

type poolInfo struct {
	Capacity       int64
	FreeSize       int64
	Alignment      int64
	Bins           int
	Static         bool
	SystemMemory   uint64
	MaxFreeRegion  int64
	NumFreeRegions int
}

func runInfo() error {
	p, err := newPoolFromFlags()
	if err != nil {
		return err
	}
	defer p.Close()

	info := poolInfo{
		Capacity:       p.Capacity(),
		FreeSize:       p.FreeSize(),
		Alignment:      flagAlignment,
		Bins:           flagBins,
		Static:         flagStatic,
		SystemMemory:   memory.TotalMemory(),
		MaxFreeRegion:  p.MaxFreeRegion(),
		NumFreeRegions: p.NumFreeRegions(),
	}
	if jsonOut {
		return printJSON(info)
	}

	fmt.Printf("Capacity:         %d bytes\n", info.Capacity)
	fmt.Printf("Free:             %d bytes\n", info.FreeSize)
	fmt.Printf("Alignment:        %d bytes\n", info.Alignment)
	fmt.Printf("Size-class bins:  %d\n", info.Bins)
	fmt.Printf("Static arena:     %v\n", info.Static)
	fmt.Printf("System memory:    %d bytes\n", info.SystemMemory)
	fmt.Printf("Free regions:     %d (largest %d bytes)\n",
		info.NumFreeRegions, info.MaxFreeRegion)
	return nil
}

func newPoolFromFlags() (*pool.Pool, error) {
	opts := []pool.Option{
		pool.WithCapacity(flagCapacity),
		pool.WithAlignment(flagAlignment),
		pool.WithBinCount(flagBins),
	}
	if flagStatic {
		opts = append(opts, pool.WithStatic())
	}
	return pool.New(opts...)
}
