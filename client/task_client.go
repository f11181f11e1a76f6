// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package client implements a persistent TCP client for the task
// server's wire protocol.
package client

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"code.hybscloud.com/atomix"

	"github.com/roh-1411/lock-free-threadpool/proto"
)

// ErrNotConnected is returned by Submit/Ping when called before Connect
// or after Disconnect.
var ErrNotConnected = errors.New("client: not connected")

// TaskClient is a single persistent connection to a TaskServer. It is
// safe for concurrent use by multiple goroutines: each call to Submit
// or Ping allocates a correlation id and owns the full round trip for
// that id under an internal lock, since the wire protocol has no
// pipelining.
type TaskClient struct {
	host string
	port int

	mu   sync.Mutex
	conn net.Conn

	nextID atomix.Uint64
}

// NewTaskClient creates a client targeting host:port. Call Connect
// before Submit or Ping.
func NewTaskClient(host string, port int) *TaskClient {
	return &TaskClient{host: host, port: port}
}

// Connect opens the TCP connection.
func (c *TaskClient) Connect() error {
	conn, err := net.Dial("tcp", net.JoinHostPort(c.host, fmt.Sprintf("%d", c.port)))
	if err != nil {
		return fmt.Errorf("client: connect: %w", err)
	}
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	return nil
}

// Disconnect closes the connection.
func (c *TaskClient) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Ping sends a PING and reports whether the server replied with PONG.
func (c *TaskClient) Ping() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return false, ErrNotConnected
	}

	id := uint32(c.nextID.AddAcqRel(1))
	if err := proto.Send(c.conn, &proto.Message{Type: proto.Ping, ID: id}); err != nil {
		return false, fmt.Errorf("client: ping: %w", err)
	}
	reply, err := proto.Recv(c.conn)
	if err != nil {
		return false, fmt.Errorf("client: ping: %w", err)
	}
	return reply.Type == proto.Pong, nil
}

// Submit sends payload as a REQUEST and returns the server's response
// payload. If the server replies with ERROR, Submit returns the error
// message as an error.
func (c *TaskClient) Submit(payload []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil, ErrNotConnected
	}

	id := uint32(c.nextID.AddAcqRel(1))
	if err := proto.Send(c.conn, &proto.Message{Type: proto.Request, ID: id, Payload: payload}); err != nil {
		return nil, fmt.Errorf("client: submit: %w", err)
	}

	reply, err := proto.Recv(c.conn)
	if err != nil {
		return nil, fmt.Errorf("client: submit: %w", err)
	}
	if reply.Type == proto.Error {
		return nil, errors.New(reply.PayloadString())
	}
	return reply.Payload, nil
}
