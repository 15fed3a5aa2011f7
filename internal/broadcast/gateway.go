package broadcast

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/studycrew/presence/internal/domain"
)

// Publisher pushes a payload to a named channel. The production
// implementation is Redis pub/sub; tests use an in-memory recorder.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// PresenceReader is the read-only slice of the presence facade the
// gateway consults for skip and drop decisions.
type PresenceReader interface {
	RoomParticipants(ctx context.Context, roomID domain.RoomID) ([]domain.UserID, error)
	IsConnected(ctx context.Context, userID domain.UserID) (bool, error)
}

// Gateway publishes room fan-outs and per-user messages. A publish
// failure never fails the business operation that triggered it: the
// join or signal stands, the notification is lost.
type Gateway struct {
	pub      Publisher
	presence PresenceReader
}

func NewGateway(pub Publisher, presence PresenceReader) *Gateway {
	return &Gateway{pub: pub, presence: presence}
}

// ToRoom publishes once to the room's fan-out channel. An empty room
// is a logged skip, not an error.
func (g *Gateway) ToRoom(ctx context.Context, roomID domain.RoomID, message any) {
	participants, err := g.presence.RoomParticipants(ctx, roomID)
	if err != nil {
		log.Error().Err(err).Str("module", "broadcast").
			Str("room_id", string(roomID)).
			Msg("room broadcast: participant lookup failed")
		return
	}
	if len(participants) == 0 {
		log.Debug().Str("module", "broadcast").
			Str("room_id", string(roomID)).
			Msg("room broadcast skipped: no participants")
		return
	}

	payload, err := json.Marshal(message)
	if err != nil {
		log.Error().Err(err).Str("module", "broadcast").
			Str("room_id", string(roomID)).
			Msg("room broadcast: marshal failed")
		return
	}
	if err := g.pub.Publish(ctx, RoomChannel(roomID), payload); err != nil {
		log.Error().Err(err).Str("module", "broadcast").
			Str("room_id", string(roomID)).
			Msg("room broadcast: publish failed")
		return
	}
	log.Debug().Str("module", "broadcast").
		Str("room_id", string(roomID)).
		Int("participants", len(participants)).
		Msg("room broadcast published")
}

// ToUser publishes to one user's private channel for dest. Messages
// to offline users are silently dropped, never queued.
func (g *Gateway) ToUser(ctx context.Context, userID domain.UserID, dest string, message any) {
	connected, err := g.presence.IsConnected(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("module", "broadcast").
			Str("user_id", string(userID)).
			Msg("user send: connectivity check failed")
		return
	}
	if !connected {
		log.Debug().Str("module", "broadcast").
			Str("user_id", string(userID)).
			Msg("user send dropped: offline")
		return
	}

	payload, err := json.Marshal(message)
	if err != nil {
		log.Error().Err(err).Str("module", "broadcast").
			Str("user_id", string(userID)).
			Msg("user send: marshal failed")
		return
	}
	if err := g.pub.Publish(ctx, UserChannel(userID, dest), payload); err != nil {
		log.Error().Err(err).Str("module", "broadcast").
			Str("user_id", string(userID)).
			Str("dest", dest).
			Msg("user send: publish failed")
	}
}
