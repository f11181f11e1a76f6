// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package server implements the TCP front-end that accepts task
// payloads from remote clients and runs them through an
// [threadpool.InstrumentedPool], and the companion HTTP endpoint that
// exposes the pool's metrics registry.
package server

import (
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	threadpool "github.com/roh-1411/lock-free-threadpool"
	"github.com/roh-1411/lock-free-threadpool/metrics"
	"github.com/roh-1411/lock-free-threadpool/proto"
)

// Handler processes one request payload and returns the response
// payload, or an error if the task failed. A panicking Handler is
// recovered by the pool and reported the same way as a returned error.
type Handler func(payload []byte) ([]byte, error)

// TaskServer accepts TCP connections, reads length-prefixed request
// messages, and dispatches each to Handler through an instrumented
// worker pool. PING is answered inline with PONG, without going
// through the pool.
type TaskServer struct {
	addr    string
	handler Handler
	pool    *threadpool.InstrumentedPool

	listener net.Listener
	wg       sync.WaitGroup

	connAccepted   *metrics.Counter
	connActive     *metrics.Gauge
	requestsTotal  *metrics.Counter
	requestErrors  *metrics.Counter
	requestLatency *metrics.Histogram
}

// NewTaskServer creates a server that will listen on addr ("host:port";
// port "0" requests an ephemeral port). workers is the size of the
// worker pool backing every connection; all connections share it.
func NewTaskServer(addr string, handler Handler, registry *metrics.Registry, workers int) (*TaskServer, error) {
	pool, err := threadpool.NewInstrumentedPool(workers, 1024, registry)
	if err != nil {
		return nil, err
	}
	reg := pool.Registry()
	return &TaskServer{
		addr:    addr,
		handler: handler,
		pool:    pool,

		connAccepted:   reg.AddCounter("server_connections_accepted_total", "Total TCP connections accepted."),
		connActive:     reg.AddGauge("server_connections_active_current", "TCP connections currently open."),
		requestsTotal:  reg.AddCounter("server_requests_total", "Total REQUEST messages handled."),
		requestErrors:  reg.AddCounter("server_request_errors_total", "Total REQUEST messages that resulted in an ERROR reply."),
		requestLatency: reg.AddHistogram("server_request_latency_seconds", "Time from receiving a REQUEST to sending its reply.", nil),
	}, nil
}

// Start binds the listener and begins accepting connections in the
// background. It returns once the listener is bound.
func (s *TaskServer) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("server: listen: %w", err)
	}
	s.listener = ln
	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Port returns the TCP port the server is bound to, useful after
// starting with an ephemeral ("0") port.
func (s *TaskServer) Port() int {
	if s.listener == nil {
		return 0
	}
	return s.listener.Addr().(*net.TCPAddr).Port
}

// Stop closes the listener and waits for in-flight connections to
// finish, then shuts down the worker pool gracefully.
func (s *TaskServer) Stop() {
	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	s.pool.Shutdown()
}

func (s *TaskServer) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		s.connAccepted.Inc()
		s.connActive.Inc()
		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *TaskServer) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()
	defer s.connActive.Dec()

	for {
		msg, err := proto.Recv(conn)
		if err != nil {
			return
		}

		switch msg.Type {
		case proto.Ping:
			if err := proto.Send(conn, &proto.Message{Type: proto.Pong, ID: msg.ID}); err != nil {
				return
			}
			continue
		case proto.Request:
			s.handleRequest(conn, msg)
		default:
			return
		}
	}
}

func (s *TaskServer) handleRequest(conn net.Conn, msg *proto.Message) {
	start := time.Now()
	payload := msg.Payload

	future, err := threadpool.SubmitInstrumented(s.pool, func() ([]byte, error) {
		return s.handler(payload)
	})
	if err != nil {
		slog.Error("task rejected", "component", "server", "id", msg.ID, "err", err)
		proto.Send(conn, &proto.Message{Type: proto.Error, ID: msg.ID, Payload: []byte("ERROR: " + err.Error())})
		return
	}

	result, err := future.Get()
	s.requestsTotal.Inc()
	s.requestLatency.ObserveSince(start)

	if err != nil {
		s.requestErrors.Inc()
		proto.Send(conn, &proto.Message{Type: proto.Error, ID: msg.ID, Payload: []byte("ERROR: " + err.Error())})
		return
	}
	proto.Send(conn, &proto.Message{Type: proto.Response, ID: msg.ID, Payload: result})
}
