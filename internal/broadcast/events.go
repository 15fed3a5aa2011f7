package broadcast

import (
	"context"

	"github.com/studycrew/presence/internal/domain"
)

// Room event types delivered on the room fan-out channel.
const (
	EventMemberJoined = "member_joined"
	EventMemberLeft   = "member_left"
)

// RoomEvent is the membership-changed notification clients render.
type RoomEvent struct {
	Type     string          `json:"type"`
	RoomID   domain.RoomID   `json:"room_id"`
	UserID   domain.UserID   `json:"user_id"`
	AvatarID domain.AvatarID `json:"avatar_id,omitempty"`
}

// Events adapts the gateway to the presence tracker's announcer hook.
// Both calls are fire-and-forget: a lost notification never fails the
// join or leave it describes.
type Events struct {
	gw *Gateway
}

func NewEvents(gw *Gateway) *Events {
	return &Events{gw: gw}
}

func (e *Events) UserJoined(ctx context.Context, roomID domain.RoomID, userID domain.UserID, avatarID domain.AvatarID) {
	e.gw.ToRoom(ctx, roomID, RoomEvent{
		Type:     EventMemberJoined,
		RoomID:   roomID,
		UserID:   userID,
		AvatarID: avatarID,
	})
}

func (e *Events) UserLeft(ctx context.Context, roomID domain.RoomID, userID domain.UserID) {
	e.gw.ToRoom(ctx, roomID, RoomEvent{
		Type:   EventMemberLeft,
		RoomID: roomID,
		UserID: userID,
	})
}
