package signaling

import (
	"context"
	"testing"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studycrew/presence/internal/domain"
)

// recordingBroadcaster captures room fan-outs.
type recordingBroadcaster struct {
	rooms    []domain.RoomID
	messages []any
}

func (b *recordingBroadcaster) ToRoom(_ context.Context, roomID domain.RoomID, message any) {
	b.rooms = append(b.rooms, roomID)
	b.messages = append(b.messages, message)
}

func newTestRelay(membership Membership) (*Relay, *recordingBroadcaster) {
	bc := &recordingBroadcaster{}
	return NewRelay(NewValidator(membership), bc, nil), bc
}

func roomWith(users ...domain.UserID) *stubMembership {
	m := &stubMembership{inRoom: map[domain.UserID]domain.RoomID{}}
	for _, u := range users {
		m.inRoom[u] = "room-1"
	}
	return m
}

func TestRelay_OfferBroadcastsToWholeRoom(t *testing.T) {
	relay, bc := newTestRelay(roomWith("alice", "bob"))

	err := relay.Relay(context.Background(), Message{
		Type:      TypeOffer,
		RoomID:    "room-1",
		From:      "alice",
		Target:    "bob",
		SDP:       "v=0 fake-offer",
		MediaType: domain.MediaAudio,
	})
	require.NoError(t, err)

	require.Len(t, bc.messages, 1)
	assert.Equal(t, []domain.RoomID{"room-1"}, bc.rooms)

	out, ok := bc.messages[0].(SignalBroadcast)
	require.True(t, ok)
	assert.Equal(t, TypeOffer, out.Type)
	assert.Equal(t, domain.UserID("alice"), out.From)
	assert.Equal(t, domain.UserID("bob"), out.Target)
	assert.Equal(t, "v=0 fake-offer", out.SDP)
	assert.Equal(t, domain.MediaAudio, out.MediaType)
}

func TestRelay_CandidateCarriesICEPayload(t *testing.T) {
	relay, bc := newTestRelay(roomWith("alice", "bob"))

	mid := "0"
	idx := uint16(0)
	err := relay.Relay(context.Background(), Message{
		Type:   TypeICECandidate,
		RoomID: "room-1",
		From:   "alice",
		Target: "bob",
		Candidate: &webrtc.ICECandidateInit{
			Candidate:     "candidate:1 1 udp 2130706431 192.0.2.10 54321 typ host",
			SDPMid:        &mid,
			SDPMLineIndex: &idx,
		},
	})
	require.NoError(t, err)

	out, ok := bc.messages[0].(SignalBroadcast)
	require.True(t, ok)
	require.NotNil(t, out.Candidate)
	assert.Contains(t, out.Candidate.Candidate, "typ host")
}

func TestRelay_TargetOutsideRoomNeverReachesRoom(t *testing.T) {
	relay, bc := newTestRelay(roomWith("alice", "bob"))

	err := relay.Relay(context.Background(), Message{
		Type:   TypeOffer,
		RoomID: "room-1",
		From:   "alice",
		Target: "mallory",
		SDP:    "v=0",
	})
	assert.ErrorIs(t, err, domain.ErrNotRoomMember)
	assert.Empty(t, bc.messages, "rejected signal must not be broadcast")
}

func TestRelay_SelfTargetRejected(t *testing.T) {
	relay, bc := newTestRelay(roomWith("alice", "bob"))

	err := relay.Relay(context.Background(), Message{
		Type:   TypeAnswer,
		RoomID: "room-1",
		From:   "alice",
		Target: "alice",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSignal)
	assert.Empty(t, bc.messages)
}

func TestRelay_UnknownTypeRejected(t *testing.T) {
	relay, bc := newTestRelay(roomWith("alice", "bob"))

	err := relay.Relay(context.Background(), Message{
		Type:   "teleport",
		RoomID: "room-1",
		From:   "alice",
		Target: "bob",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSignal)
	assert.Empty(t, bc.messages)
}

func TestRelay_MediaToggleBroadcast(t *testing.T) {
	relay, bc := newTestRelay(roomWith("alice", "bob"))

	err := relay.Relay(context.Background(), Message{
		Type:      TypeMediaToggle,
		RoomID:    "room-1",
		From:      "alice",
		MediaType: domain.MediaVideo,
		Enabled:   true,
	})
	require.NoError(t, err)

	out, ok := bc.messages[0].(MediaStateBroadcast)
	require.True(t, ok)
	assert.Equal(t, MediaStateBroadcast{
		Type:      TypeMediaToggle,
		RoomID:    "room-1",
		UserID:    "alice",
		MediaType: domain.MediaVideo,
		Enabled:   true,
	}, out)
}

func TestRelay_MediaToggleRequiresMembership(t *testing.T) {
	relay, bc := newTestRelay(roomWith("bob"))

	err := relay.Relay(context.Background(), Message{
		Type:      TypeMediaToggle,
		RoomID:    "room-1",
		From:      "alice",
		MediaType: domain.MediaAudio,
	})
	assert.ErrorIs(t, err, domain.ErrNotRoomMember)
	assert.Empty(t, bc.messages)
}

func TestRelay_RateLimitStopsFlood(t *testing.T) {
	bc := &recordingBroadcaster{}
	limiter := NewRateLimiter(3, time.Minute)
	relay := NewRelay(NewValidator(roomWith("alice", "bob")), bc, limiter)

	msg := Message{Type: TypeOffer, RoomID: "room-1", From: "alice", Target: "bob"}
	for i := 0; i < 3; i++ {
		require.NoError(t, relay.Relay(context.Background(), msg))
	}

	err := relay.Relay(context.Background(), msg)
	assert.ErrorIs(t, err, domain.ErrTooManySignals)
	assert.Len(t, bc.messages, 3)
}
