// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	hdrhistogram "github.com/HdrHistogram/hdrhistogram-go"
	"github.com/spf13/cobra"

	"github.com/roh-1411/lock-free-threadpool/client"
)

var (
	port  int
	count int
)

func main() {
	root := &cobra.Command{
		Use:   "taskclient [host]",
		Short: "Connect to a task server, ping, submit, and report latency percentiles",
		Args:  cobra.MaximumNArgs(1),
		RunE:  run,
	}
	root.Flags().IntVar(&port, "port", 8080, "TCP port of the task server")
	root.Flags().IntVar(&count, "count", 100, "number of tasks to submit in the throughput benchmark")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	host := "127.0.0.1"
	if len(args) > 0 {
		host = args[0]
	}

	c := client.NewTaskClient(host, port)
	if err := c.Connect(); err != nil {
		fmt.Fprintf(os.Stderr, "connect failed: %v\nIs the server running?\n", err)
		return err
	}
	defer c.Disconnect()
	slog.Info("connected", "component", "taskclient", "host", host, "port", port)

	alive, err := c.Ping()
	if err != nil || !alive {
		fmt.Fprintln(os.Stderr, "server did not reply to ping")
		return fmt.Errorf("ping failed")
	}
	fmt.Println("ping: server alive")

	if resp, err := c.Submit([]byte("hello from client")); err == nil {
		fmt.Printf("submit: %s\n", resp)
	} else {
		fmt.Fprintf(os.Stderr, "submit failed: %v\n", err)
	}

	if _, err := c.Submit([]byte("please fail this task")); err != nil {
		fmt.Printf("error handling: server error caught correctly: %v\n", err)
	} else {
		fmt.Println("error handling: (unexpected success)")
	}

	runBenchmark(c, count)
	return nil
}

func runBenchmark(c *client.TaskClient, n int) {
	hist := hdrhistogram.New(1, 10_000_000, 3) // microseconds, 3 sig figs

	succeeded, failed := 0, 0
	start := time.Now()

	for i := 0; i < n; i++ {
		payload := fmt.Sprintf("task-%d", i)
		t0 := time.Now()
		_, err := c.Submit([]byte(payload))
		elapsed := time.Since(t0)
		if err != nil {
			failed++
		} else {
			succeeded++
		}
		hist.RecordValue(elapsed.Microseconds())
	}

	totalMS := float64(time.Since(start).Microseconds()) / 1000.0

	fmt.Printf("\nthroughput benchmark (%d tasks)\n", n)
	fmt.Printf("  tasks:       %d (%d ok, %d failed)\n", n, succeeded, failed)
	fmt.Printf("  total time:  %.2f ms\n", totalMS)
	fmt.Printf("  throughput:  %.0f req/s\n", float64(n)/(totalMS/1000.0))
	fmt.Printf("  latency avg: %.2f us\n", hist.Mean())
	fmt.Printf("  latency p50: %d us\n", hist.ValueAtQuantile(50))
	fmt.Printf("  latency p95: %d us\n", hist.ValueAtQuantile(95))
	fmt.Printf("  latency p99: %d us\n", hist.ValueAtQuantile(99))
}
