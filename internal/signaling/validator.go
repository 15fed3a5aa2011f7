package signaling

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/studycrew/presence/internal/domain"
)

// Membership is the slice of room presence the validator reads.
type Membership interface {
	IsUserInRoom(ctx context.Context, userID domain.UserID, roomID domain.RoomID) (bool, error)
}

// Validator authorizes signaling exchanges. Membership is checked
// against live presence, so a participant whose session lapsed is
// rejected the same as one who never joined.
type Validator struct {
	rooms Membership
}

func NewValidator(rooms Membership) *Validator {
	return &Validator{rooms: rooms}
}

// ValidateSignal authorizes an offer, answer or ICE candidate: both
// parties must currently be in the room, and a user cannot signal
// themselves.
func (v *Validator) ValidateSignal(ctx context.Context, roomID domain.RoomID, from, target domain.UserID) error {
	if from == target {
		log.Warn().Str("module", "signaling").
			Str("user_id", string(from)).
			Msg("self-targeted signal rejected")
		return fmt.Errorf("signal to self: %w", domain.ErrInvalidSignal)
	}

	inRoom, err := v.rooms.IsUserInRoom(ctx, from, roomID)
	if err != nil {
		return err
	}
	if !inRoom {
		log.Warn().Str("module", "signaling").
			Str("room_id", string(roomID)).
			Str("user_id", string(from)).
			Msg("signal from non-participant rejected")
		return fmt.Errorf("sender %s not in room %s: %w", from, roomID, domain.ErrNotRoomMember)
	}

	inRoom, err = v.rooms.IsUserInRoom(ctx, target, roomID)
	if err != nil {
		return err
	}
	if !inRoom {
		log.Warn().Str("module", "signaling").
			Str("room_id", string(roomID)).
			Str("target_user_id", string(target)).
			Msg("signal to non-participant rejected")
		return fmt.Errorf("target %s not in room %s: %w", target, roomID, domain.ErrNotRoomMember)
	}
	return nil
}

// ValidateMediaStateChange authorizes a media toggle: the user must
// currently be in the room.
func (v *Validator) ValidateMediaStateChange(ctx context.Context, roomID domain.RoomID, userID domain.UserID) error {
	inRoom, err := v.rooms.IsUserInRoom(ctx, userID, roomID)
	if err != nil {
		return err
	}
	if !inRoom {
		log.Warn().Str("module", "signaling").
			Str("room_id", string(roomID)).
			Str("user_id", string(userID)).
			Msg("media toggle from non-participant rejected")
		return fmt.Errorf("user %s not in room %s: %w", userID, roomID, domain.ErrNotRoomMember)
	}
	return nil
}
