// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roh-1411/lock-free-threadpool/metrics"
	"github.com/roh-1411/lock-free-threadpool/server"
)

var (
	taskPort    int
	metricsPort int
	workers     int
	snapshotEvy time.Duration
)

func main() {
	root := &cobra.Command{
		Use:   "taskserver [host]",
		Short: "Run the task server and its metrics endpoint",
		Args:  cobra.MaximumNArgs(1),
		RunE:  run,
	}
	root.Flags().IntVar(&taskPort, "port", 8080, "TCP port for the task server")
	root.Flags().IntVar(&metricsPort, "metrics-port", 9090, "HTTP port for the metrics endpoint")
	root.Flags().IntVar(&workers, "workers", 4, "number of worker goroutines")
	root.Flags().DurationVar(&snapshotEvy, "snapshot-interval", 5*time.Second, "interval between logged metrics snapshots")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	host := "0.0.0.0"
	if len(args) > 0 {
		host = args[0]
	}

	registry := metrics.NewRegistry()

	taskSrv, err := server.NewTaskServer(net.JoinHostPort(host, fmt.Sprintf("%d", taskPort)), echoHandler, registry, workers)
	if err != nil {
		return err
	}
	if err := taskSrv.Start(); err != nil {
		return err
	}
	slog.Info("task server listening", "component", "taskserver", "addr", net.JoinHostPort(host, fmt.Sprintf("%d", taskSrv.Port())))

	metricsSrv := server.NewMetricsServer(registry, net.JoinHostPort(host, fmt.Sprintf("%d", metricsPort)))
	if err := metricsSrv.Start(); err != nil {
		slog.Warn("metrics server failed to start, continuing without it", "component", "taskserver", "err", err)
	} else {
		slog.Info("metrics server listening", "component", "taskserver", "addr", net.JoinHostPort(host, fmt.Sprintf("%d", metricsPort)))
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(snapshotEvy)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			logSnapshot(registry)
		case <-stop:
			slog.Info("shutting down", "component", "taskserver")
			taskSrv.Stop()
			metricsSrv.Stop()
			return nil
		}
	}
}

func logSnapshot(registry *metrics.Registry) {
	text := registry.Serialize()
	slog.Info("metrics snapshot",
		"component", "taskserver",
		"requests_total", extractValue(text, "server_requests_total"),
		"request_errors_total", extractValue(text, "server_request_errors_total"),
		"connections_active", extractValue(text, "server_connections_active_current"),
		"tasks_completed_total", extractValue(text, "threadpool_tasks_completed_total"),
	)
}

// extractValue pulls the value field out of a single "NAME VALUE" line
// in a Registry's serialized text, for log-friendly snapshotting
// without re-parsing the whole document.
func extractValue(text, name string) string {
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, name+" ") {
			return strings.TrimPrefix(line, name+" ")
		}
	}
	return "?"
}

func echoHandler(payload []byte) ([]byte, error) {
	input := string(payload)
	if strings.Contains(input, "fail") {
		return nil, fmt.Errorf("task explicitly requested failure")
	}
	durationMS := len(input) * 2
	if durationMS > 50 {
		durationMS = 50
	}
	time.Sleep(time.Duration(durationMS) * time.Millisecond)
	return []byte(fmt.Sprintf("processed: [%s] len=%d duration=%dms", input, len(input), durationMS)), nil
}
