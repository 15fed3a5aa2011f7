package signaling

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/studycrew/presence/internal/domain"
)

// stubMembership answers membership from a fixed user→room map.
type stubMembership struct {
	inRoom map[domain.UserID]domain.RoomID
	err    error
}

func (s *stubMembership) IsUserInRoom(_ context.Context, userID domain.UserID, roomID domain.RoomID) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.inRoom[userID] == roomID, nil
}

func TestValidateSignal(t *testing.T) {
	membership := &stubMembership{inRoom: map[domain.UserID]domain.RoomID{
		"alice": "room-1",
		"bob":   "room-1",
		"carol": "room-2",
	}}
	v := NewValidator(membership)
	ctx := context.Background()

	tests := []struct {
		name    string
		roomID  domain.RoomID
		from    domain.UserID
		target  domain.UserID
		wantErr error
	}{
		{"both in room", "room-1", "alice", "bob", nil},
		{"self target", "room-1", "alice", "alice", domain.ErrInvalidSignal},
		{"sender not in room", "room-1", "carol", "bob", domain.ErrNotRoomMember},
		{"target not in room", "room-1", "alice", "carol", domain.ErrNotRoomMember},
		{"target unknown", "room-1", "alice", "ghost", domain.ErrNotRoomMember},
		{"wrong room entirely", "room-3", "alice", "bob", domain.ErrNotRoomMember},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateSignal(ctx, tt.roomID, tt.from, tt.target)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSignal_MembershipLookupErrorPropagates(t *testing.T) {
	v := NewValidator(&stubMembership{err: domain.ErrStoreUnavailable})

	err := v.ValidateSignal(context.Background(), "room-1", "alice", "bob")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestValidateMediaStateChange(t *testing.T) {
	membership := &stubMembership{inRoom: map[domain.UserID]domain.RoomID{"alice": "room-1"}}
	v := NewValidator(membership)
	ctx := context.Background()

	assert.NoError(t, v.ValidateMediaStateChange(ctx, "room-1", "alice"))
	assert.ErrorIs(t, v.ValidateMediaStateChange(ctx, "room-1", "bob"), domain.ErrNotRoomMember)
	assert.ErrorIs(t, v.ValidateMediaStateChange(ctx, "room-2", "alice"), domain.ErrNotRoomMember)
}
