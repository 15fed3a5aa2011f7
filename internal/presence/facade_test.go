package presence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studycrew/presence/internal/domain"
)

func TestFacade_DisconnectTearsDownRoomThenSession(t *testing.T) {
	ctx := context.Background()
	_, _, rooms, facade := newTestPresence(t)
	ann := &recordingAnnouncer{}
	rooms.AttachAnnouncer(ann)

	require.NoError(t, facade.Connect(ctx, "alice", "c1"))
	require.NoError(t, facade.JoinRoom(ctx, "alice", "room-1", "fox"))

	require.NoError(t, facade.Disconnect(ctx, "c1"))

	connected, err := facade.IsConnected(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, connected)

	members, err := facade.RoomParticipants(ctx, "room-1")
	require.NoError(t, err)
	assert.Empty(t, members)

	assert.Equal(t, []string{"room-1/alice"}, ann.leaves)
	assert.Zero(t, facade.OnlineCount(ctx))
}

func TestFacade_DisconnectUnknownConnection(t *testing.T) {
	ctx := context.Background()
	_, _, _, facade := newTestPresence(t)

	require.NoError(t, facade.Disconnect(ctx, "never-seen"))
}

func TestFacade_ReconnectReplacesSessionAndClearsOldMembership(t *testing.T) {
	ctx := context.Background()
	_, _, rooms, facade := newTestPresence(t)
	ann := &recordingAnnouncer{}
	rooms.AttachAnnouncer(ann)

	require.NoError(t, facade.Connect(ctx, "alice", "c1"))
	require.NoError(t, facade.JoinRoom(ctx, "alice", "room-1", "fox"))

	// A second connection for the same user evicts the first session
	// and its room membership before the new one takes over.
	require.NoError(t, facade.Connect(ctx, "alice", "c2"))

	connected, err := facade.IsConnected(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, connected)

	members, err := facade.RoomParticipants(ctx, "room-1")
	require.NoError(t, err)
	assert.Empty(t, members, "old connection's membership must not linger")

	assert.Equal(t, []string{"room-1/alice"}, ann.leaves)
	assert.EqualValues(t, 1, facade.OnlineCount(ctx))

	// Rejoining under the new connection yields exactly one
	// membership, never a duplicate from the superseded one.
	require.NoError(t, facade.JoinRoom(ctx, "alice", "room-1", "owl"))
	members, err = facade.RoomParticipants(ctx, "room-1")
	require.NoError(t, err)
	assert.Equal(t, []domain.UserID{"alice"}, members)

	// The stale connection closing later is a harmless no-op.
	require.NoError(t, facade.Disconnect(ctx, "c1"))
	connected, err = facade.IsConnected(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, connected)
	assert.EqualValues(t, 1, facade.OnlineCount(ctx))

	in, err := facade.IsUserInRoom(ctx, "alice", "room-1")
	require.NoError(t, err)
	assert.True(t, in)
}

func TestFacade_LeaveThenRejoinKeepsCountsConsistent(t *testing.T) {
	ctx := context.Background()
	_, _, _, facade := newTestPresence(t)

	require.NoError(t, facade.Connect(ctx, "alice", "c1"))
	require.NoError(t, facade.Connect(ctx, "bob", "c2"))
	require.NoError(t, facade.JoinRoom(ctx, "alice", "room-1", ""))
	require.NoError(t, facade.JoinRoom(ctx, "bob", "room-1", ""))

	require.NoError(t, facade.LeaveRoom(ctx, "alice", "room-1"))
	require.NoError(t, facade.JoinRoom(ctx, "alice", "room-1", ""))

	count, err := facade.ParticipantCount(ctx, "room-1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	avatars, err := facade.Avatars(ctx, "room-1", []domain.UserID{"alice", "bob"})
	require.NoError(t, err)
	assert.Empty(t, avatars)
}
