// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/roh-1411/lock-free-threadpool/metrics"
)

// MetricsServer exposes a Registry's serialization over HTTP.
// GET /metrics returns the current serialization as Prometheus-style
// text; GET /health returns a liveness probe; any other path returns
// 404. Every response closes the connection.
type MetricsServer struct {
	registry *metrics.Registry
	addr     string
	server   *http.Server
}

// NewMetricsServer creates a server that will listen on addr
// ("host:port") and serve registry.
func NewMetricsServer(registry *metrics.Registry, addr string) *MetricsServer {
	ms := &MetricsServer{registry: registry, addr: addr}

	r := mux.NewRouter()
	r.HandleFunc("/metrics", ms.handleMetrics).Methods(http.MethodGet)
	r.HandleFunc("/health", ms.handleHealth).Methods(http.MethodGet)
	r.NotFoundHandler = http.HandlerFunc(ms.handleNotFound)

	ms.server = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	return ms
}

// Start binds the listener and begins serving in the background.
func (ms *MetricsServer) Start() error {
	ln, err := newListener(ms.addr)
	if err != nil {
		return err
	}
	ms.server.Addr = ln.Addr().String()
	go func() {
		if err := ms.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server stopped", "component", "metrics_server", "err", err)
		}
	}()
	return nil
}

// Stop shuts the HTTP server down, waiting for in-flight requests to
// finish.
func (ms *MetricsServer) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	ms.server.Shutdown(ctx)
}

func (ms *MetricsServer) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	w.Header().Set("Connection", "close")
	w.Write([]byte(ms.registry.Serialize()))
}

func (ms *MetricsServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Header().Set("Connection", "close")
	w.Write([]byte("OK\n"))
}

func (ms *MetricsServer) handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Header().Set("Connection", "close")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte("Endpoints: /metrics, /health\n"))
}
