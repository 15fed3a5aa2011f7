// Package gateway is the websocket front of the presence core: it
// verifies identities, registers sessions, dispatches inbound frames
// and routes broadcast deliveries back to local connections.
package gateway

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/studycrew/presence/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

// Conn wraps one websocket connection with a buffered outbound
// queue. The write pump drains the queue; TrySend never blocks the
// caller.
type Conn struct {
	id     domain.ConnectionID
	userID domain.UserID
	send   chan []byte

	mu     sync.RWMutex
	closed bool
	room   domain.RoomID
}

func newConn(id domain.ConnectionID, userID domain.UserID, buffer int) *Conn {
	return &Conn{
		id:     id,
		userID: userID,
		send:   make(chan []byte, buffer),
	}
}

func (c *Conn) ID() domain.ConnectionID { return c.id }
func (c *Conn) UserID() domain.UserID   { return c.userID }

// currentRoom is this connection's local mirror of which room
// channel it follows, not a presence read.
func (c *Conn) currentRoom() domain.RoomID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.room
}

func (c *Conn) setRoom(roomID domain.RoomID) {
	c.mu.Lock()
	c.room = roomID
	c.mu.Unlock()
}

// TrySend queues a frame for the write pump. A full queue is a
// backpressure error; the frame is dropped rather than stalling the
// sender.
func (c *Conn) TrySend(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrBackpressure
	}
}

// close marks the connection dead and releases the write pump.
// Idempotent: the read pump and the hub may both reach it.
func (c *Conn) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()
}

// sendJSON marshals and queues v, logging rather than propagating
// failures: an undeliverable frame never fails the operation that
// produced it.
func (c *Conn) sendJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "gateway").Msg("sendJSON marshal")
		return
	}
	if err := c.TrySend(data); err != nil {
		log.Warn().Err(err).Str("module", "gateway").
			Str("conn_id", string(c.id)).
			Msg("send dropped")
	}
}
