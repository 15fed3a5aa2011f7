package gateway

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/studycrew/presence/internal/broadcast"
)

// Hub routes broadcast deliveries to the connections this instance
// holds. Which connections care about which channels is purely local
// knowledge; the shared store never sees it.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]map[*Conn]struct{}
	byConn   map[*Conn]map[string]struct{}
}

func NewHub() *Hub {
	return &Hub{
		channels: make(map[string]map[*Conn]struct{}),
		byConn:   make(map[*Conn]map[string]struct{}),
	}
}

func (h *Hub) Subscribe(channel string, c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.channels[channel] == nil {
		h.channels[channel] = make(map[*Conn]struct{})
	}
	h.channels[channel][c] = struct{}{}
	if h.byConn[c] == nil {
		h.byConn[c] = make(map[string]struct{})
	}
	h.byConn[c][channel] = struct{}{}
}

func (h *Hub) Unsubscribe(channel string, c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(channel, c)
	if subs, ok := h.byConn[c]; ok {
		delete(subs, channel)
	}
}

// UnsubscribeAll detaches a closing connection from every channel.
func (h *Hub) UnsubscribeAll(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for channel := range h.byConn[c] {
		h.drop(channel, c)
	}
	delete(h.byConn, c)
}

// drop removes c from one channel set. Callers must hold mu.
func (h *Hub) drop(channel string, c *Conn) {
	if conns, ok := h.channels[channel]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.channels, channel)
		}
	}
}

// Deliver hands one pub/sub delivery to every local subscriber of its
// channel. Slow consumers shed the frame via TrySend backpressure.
func (h *Hub) Deliver(d broadcast.Delivery) {
	h.mu.RLock()
	conns := make([]*Conn, 0, len(h.channels[d.Channel]))
	for c := range h.channels[d.Channel] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.TrySend(d.Payload); err != nil {
			log.Warn().Err(err).Str("module", "gateway.hub").
				Str("channel", d.Channel).
				Str("conn_id", string(c.id)).
				Msg("delivery dropped")
		}
	}
}

// Subscribers reports how many local connections follow a channel.
func (h *Hub) Subscribers(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}
