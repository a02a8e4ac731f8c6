package main

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshuapare/poolkit/internal/sem"
)

var (
	stressOps     int
	stressWorkers int
	stressMaxSize int
	stressSeed    int64
)

func init() {
	cmd := newStressCmd()
	cmd.Flags().IntVar(&stressOps, "ops", 100000, "Operations per worker")
	cmd.Flags().IntVar(&stressWorkers, "workers", 8, "Concurrent workers")
	cmd.Flags().IntVar(&stressMaxSize, "max-size", 16384, "Largest allocation size")
	cmd.Flags().Int64Var(&stressSeed, "seed", 1, "Workload seed")
	rootCmd.AddCommand(cmd)
}

func newStressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stress",
		Short: "Run a concurrent allocation churn workload",
		Long: `The stress command hammers one pool from several workers with a mixed
malloc/free/realloc workload, then reports counters and re-checks the index
invariants.

Example:
  poolctl stress --workers 16 --ops 500000
  poolctl stress --static --capacity 33554432`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStress()
		},
	}
}

func runStress() error {
	p, err := newPoolFromFlags()
	if err != nil {
		return err
	}
	defer p.Close()

	// The workload splits into more tasks than workers; the semaphore
	// admits at most --workers of them at a time.
	const tasksPerWorker = 4
	tasks := stressWorkers * tasksPerWorker
	opsPerTask := stressOps / tasksPerWorker
	gate := sem.New(int64(stressWorkers))

	start := time.Now()
	var wg sync.WaitGroup
	for w := range tasks {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			gate.Acquire()
			defer gate.Release()

			rng := rand.New(rand.NewSource(seed))
			live := make([][]byte, 0, 64)
			for range opsPerTask {
				switch {
				case len(live) > 0 && rng.Intn(3) == 0:
					i := rng.Intn(len(live))
					_ = p.Free(live[i])
					live[i] = live[len(live)-1]
					live = live[:len(live)-1]
				case len(live) > 0 && rng.Intn(5) == 0:
					i := rng.Intn(len(live))
					nb, rerr := p.Resize(live[i], int64(1+rng.Intn(stressMaxSize)))
					if rerr == nil && nb != nil {
						live[i] = nb
					}
				default:
					b, aerr := p.Alloc(int64(1 + rng.Intn(stressMaxSize)))
					if aerr == nil {
						live = append(live, b)
					}
				}
			}
			for _, b := range live {
				_ = p.Free(b)
			}
		}(stressSeed + int64(w))
	}
	wg.Wait()
	elapsed := time.Since(start)

	if err := p.Validate(); err != nil {
		return err
	}
	stats := p.Stats()
	if jsonOut {
		return printJSON(stats)
	}

	fmt.Printf("Workload:     %d tasks x %d ops, %d concurrent, in %v\n",
		tasks, opsPerTask, stressWorkers, elapsed)
	fmt.Printf("Allocs:       %d (%d fast, %d grew)\n",
		stats.AllocCalls, stats.FastPath, stats.SlowPath)
	fmt.Printf("Frees:        %d\n", stats.FreeCalls)
	fmt.Printf("Resizes:      %d (%d in-place shrinks)\n", stats.ResizeCalls, stats.Shrinks)
	fmt.Printf("Failed:       %d\n", stats.FailedAllocs)
	fmt.Printf("Splits:       %d\n", stats.Splits)
	fmt.Printf("Grow:         %d calls, %d bytes\n", stats.GrowCalls, stats.GrowBytes)
	fmt.Printf("Lock:         %d acquisitions, %d contended, %d yields, %d waits\n",
		stats.Lock.Acquisitions, stats.Lock.Contended, stats.Lock.Yields, stats.Lock.Waits)
	fmt.Printf("Free regions: %d, free bytes %d of %d\n",
		p.NumFreeRegions(), p.FreeSize(), p.Capacity())
	printVerbose("Fingerprint:  %016x\n", p.Fingerprint())
	return nil
}
