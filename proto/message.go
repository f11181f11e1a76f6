// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package proto implements the length-prefixed binary wire protocol
// used between the TCP task server and its clients: a 1-byte message
// type, a 4-byte big-endian correlation id, a 4-byte big-endian payload
// length, and the payload itself.
package proto

import (
	"encoding/binary"
	"errors"
	"io"
)

// MessageType identifies the kind of a [Message].
type MessageType uint8

const (
	Request  MessageType = 0x01
	Response MessageType = 0x02
	Error    MessageType = 0x03
	Ping     MessageType = 0x04
	Pong     MessageType = 0x05
)

// HeaderSize is the fixed size, in bytes, of a message header: 1-byte
// type, 4-byte id, 4-byte payload length.
const HeaderSize = 9

// MaxPayload is the largest payload a message may carry. A header
// claiming a larger length is treated as a protocol violation and the
// connection is closed.
const MaxPayload = 64 * 1024 * 1024

// ErrPayloadTooLarge is returned by Recv when a header claims a
// payload length exceeding [MaxPayload].
var ErrPayloadTooLarge = errors.New("proto: payload exceeds maximum size")

// Message is a single framed unit of the wire protocol.
type Message struct {
	Type    MessageType
	ID      uint32
	Payload []byte
}

// PayloadString returns the payload interpreted as a UTF-8 string.
func (m *Message) PayloadString() string {
	return string(m.Payload)
}

// Encode serializes m into the wire format: type, id, payload length,
// payload.
func Encode(m *Message) []byte {
	buf := make([]byte, HeaderSize+len(m.Payload))
	buf[0] = byte(m.Type)
	binary.BigEndian.PutUint32(buf[1:5], m.ID)
	binary.BigEndian.PutUint32(buf[5:9], uint32(len(m.Payload)))
	copy(buf[HeaderSize:], m.Payload)
	return buf
}

// Send encodes m and writes it in full to w.
func Send(w io.Writer, m *Message) error {
	_, err := w.Write(Encode(m))
	return err
}

// Recv reads one complete message from r, or an error if the connection
// is closed, the read fails, or the declared payload length exceeds
// [MaxPayload].
func Recv(r io.Reader) (*Message, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}

	length := binary.BigEndian.Uint32(header[5:9])
	if length > MaxPayload {
		return nil, ErrPayloadTooLarge
	}

	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, err
		}
	}

	return &Message{
		Type:    MessageType(header[0]),
		ID:      binary.BigEndian.Uint32(header[1:5]),
		Payload: payload,
	}, nil
}
