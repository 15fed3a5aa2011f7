package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studycrew/presence/internal/broadcast"
)

func TestHub_DeliverReachesEverySubscriber(t *testing.T) {
	hub := NewHub()
	a := newConn("c1", "alice", 4)
	b := newConn("c2", "bob", 4)
	outsider := newConn("c3", "carol", 4)

	hub.Subscribe("presence.room.room-1", a)
	hub.Subscribe("presence.room.room-1", b)
	hub.Subscribe("presence.room.room-2", outsider)

	hub.Deliver(broadcast.Delivery{Channel: "presence.room.room-1", Payload: []byte("hello")})

	assert.Equal(t, []byte("hello"), <-a.send)
	assert.Equal(t, []byte("hello"), <-b.send)
	assert.Empty(t, outsider.send)
}

func TestHub_DeliverUnknownChannelIsNoop(t *testing.T) {
	hub := NewHub()
	hub.Deliver(broadcast.Delivery{Channel: "presence.room.nowhere", Payload: []byte("x")})
}

func TestHub_UnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub()
	c := newConn("c1", "alice", 4)

	hub.Subscribe("presence.room.room-1", c)
	hub.Unsubscribe("presence.room.room-1", c)

	hub.Deliver(broadcast.Delivery{Channel: "presence.room.room-1", Payload: []byte("x")})
	assert.Empty(t, c.send)
	assert.Zero(t, hub.Subscribers("presence.room.room-1"))
}

func TestHub_UnsubscribeAllDetachesEveryChannel(t *testing.T) {
	hub := NewHub()
	c := newConn("c1", "alice", 4)

	hub.Subscribe("presence.room.room-1", c)
	hub.Subscribe("presence.user.alice.webrtc", c)
	hub.Subscribe("presence.user.alice.errors", c)

	hub.UnsubscribeAll(c)

	for _, channel := range []string{
		"presence.room.room-1",
		"presence.user.alice.webrtc",
		"presence.user.alice.errors",
	} {
		assert.Zero(t, hub.Subscribers(channel), channel)
	}
}

func TestHub_SlowConsumerShedsFrames(t *testing.T) {
	hub := NewHub()
	c := newConn("c1", "alice", 1)
	hub.Subscribe("presence.room.room-1", c)

	hub.Deliver(broadcast.Delivery{Channel: "presence.room.room-1", Payload: []byte("one")})
	hub.Deliver(broadcast.Delivery{Channel: "presence.room.room-1", Payload: []byte("two")})

	// The second frame is shed, not queued behind a stalled pump.
	assert.Equal(t, []byte("one"), <-c.send)
	assert.Empty(t, c.send)
}

func TestConn_TrySendAfterClose(t *testing.T) {
	c := newConn("c1", "alice", 1)
	c.close()
	c.close() // idempotent

	require.Error(t, c.TrySend([]byte("x")))
}

func TestConn_RoomMirror(t *testing.T) {
	c := newConn("c1", "alice", 1)
	assert.Empty(t, c.currentRoom())

	c.setRoom("room-1")
	assert.EqualValues(t, "room-1", c.currentRoom())

	c.setRoom("")
	assert.Empty(t, c.currentRoom())
}
