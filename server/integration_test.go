// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package server_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/roh-1411/lock-free-threadpool/client"
	"github.com/roh-1411/lock-free-threadpool/metrics"
	"github.com/roh-1411/lock-free-threadpool/server"
)

func startTestServer(t *testing.T, handler server.Handler) (*server.TaskServer, *client.TaskClient) {
	t.Helper()
	reg := metrics.NewRegistry()
	srv, err := server.NewTaskServer("127.0.0.1:0", handler, reg, 4)
	if err != nil {
		t.Fatalf("NewTaskServer: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(srv.Stop)

	c := client.NewTaskClient("127.0.0.1", srv.Port())
	if err := c.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { c.Disconnect() })
	return srv, c
}

// TestEchoLargePayload covers scenario S4: a 32KiB payload submitted to
// an echo handler comes back byte-identical.
func TestEchoLargePayload(t *testing.T) {
	_, c := startTestServer(t, func(payload []byte) ([]byte, error) {
		echo := make([]byte, len(payload))
		copy(echo, payload)
		return echo, nil
	})

	payload := make([]byte, 32*1024)
	for i := range payload {
		payload[i] = byte(i % 256)
	}

	reply, err := c.Submit(payload)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !bytes.Equal(reply, payload) {
		t.Fatalf("echoed payload does not match")
	}
}

// TestPanicThenRecoverConnection covers scenario S5: a handler panic on
// one request produces an ERROR reply without tearing down the
// connection, and a subsequent request on the same connection succeeds.
func TestPanicThenRecoverConnection(t *testing.T) {
	_, c := startTestServer(t, func(payload []byte) ([]byte, error) {
		if bytes.Equal(payload, []byte("boom")) {
			panic("handler exploded")
		}
		return payload, nil
	})

	if _, err := c.Submit([]byte("boom")); err == nil {
		t.Fatalf("want error from panicking handler, got nil")
	}

	reply, err := c.Submit([]byte("still alive"))
	if err != nil {
		t.Fatalf("Submit after panic: %v", err)
	}
	if !bytes.Equal(reply, []byte("still alive")) {
		t.Fatalf("want echoed reply, got %q", reply)
	}
}

func TestHandlerErrorProducesErrorReply(t *testing.T) {
	wantErr := errors.New("rejected")
	_, c := startTestServer(t, func(payload []byte) ([]byte, error) {
		return nil, wantErr
	})

	if _, err := c.Submit([]byte("anything")); err == nil {
		t.Fatalf("want error reply, got nil")
	}
}

func TestPing(t *testing.T) {
	_, c := startTestServer(t, func(payload []byte) ([]byte, error) { return payload, nil })

	ok, err := c.Ping()
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if !ok {
		t.Fatalf("want PONG reply")
	}
}
