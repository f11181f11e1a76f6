// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command taskbench compares the lock-free [threadpool.Pool] against
// the mutex-and-condition-variable internal/baseline.Pool across three
// contention scenarios, mirroring the original project's benchmark.
package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	threadpool "github.com/roh-1411/lock-free-threadpool"
	"github.com/roh-1411/lock-free-threadpool/internal/baseline"
)

const (
	workers  = 4
	numTasks = 50000
)

func main() {
	root := &cobra.Command{
		Use:   "taskbench",
		Short: "Benchmark the lock-free pool against a mutex+condvar baseline",
		RunE:  run,
	}
	if err := root.Execute(); err != nil {
		panic(err)
	}
}

type scenario struct {
	name    string
	tasks   int
	workUS  int
}

func run(cmd *cobra.Command, args []string) error {
	scenarios := []scenario{
		{"high contention (0us tasks)", numTasks, 0},
		{"medium contention (10us tasks)", numTasks / 10, 10},
		{"low contention (500us tasks)", 200, 500},
	}

	for _, s := range scenarios {
		fmt.Printf("--- %s ---\n", s.name)
		baselineElapsed := runBaseline(s.tasks, s.workUS)
		lockfreeElapsed := runLockFree(s.tasks, s.workUS)

		baselineTput := float64(s.tasks) / baselineElapsed.Seconds()
		lockfreeTput := float64(s.tasks) / lockfreeElapsed.Seconds()

		fmt.Printf("  baseline  mutex+cv  : %10.1f ms  %12.0f tasks/sec\n", float64(baselineElapsed.Microseconds())/1000.0, baselineTput)
		fmt.Printf("  lockfree  pool      : %10.1f ms  %12.0f tasks/sec\n", float64(lockfreeElapsed.Microseconds())/1000.0, lockfreeTput)
		fmt.Printf("  speedup: %.2fx\n\n", lockfreeTput/baselineTput)
	}
	return nil
}

func spin(workUS int) {
	if workUS <= 0 {
		return
	}
	end := time.Now().Add(time.Duration(workUS) * time.Microsecond)
	for time.Now().Before(end) {
	}
}

func runBaseline(n, workUS int) time.Duration {
	pool, err := baseline.NewPool(workers)
	if err != nil {
		panic(err)
	}
	var wg sync.WaitGroup
	wg.Add(n)

	start := time.Now()
	for i := 0; i < n; i++ {
		pool.Submit(func() {
			spin(workUS)
			wg.Done()
		})
	}
	wg.Wait()
	elapsed := time.Since(start)
	pool.Shutdown()
	return elapsed
}

func runLockFree(n, workUS int) time.Duration {
	pool, err := threadpool.NewPool(workers, 65536)
	if err != nil {
		panic(err)
	}
	futures := make([]*threadpool.Future[struct{}], n)

	start := time.Now()
	for i := 0; i < n; i++ {
		f, err := threadpool.Submit(pool, func() (struct{}, error) {
			spin(workUS)
			return struct{}{}, nil
		})
		if err != nil {
			panic(err)
		}
		futures[i] = f
	}
	for _, f := range futures {
		f.Get()
	}
	elapsed := time.Since(start)
	pool.Shutdown()
	return elapsed
}
