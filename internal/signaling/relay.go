package signaling

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/studycrew/presence/internal/domain"
)

// RoomBroadcaster is the fan-out surface the relay publishes through.
type RoomBroadcaster interface {
	ToRoom(ctx context.Context, roomID domain.RoomID, message any)
}

// Relay is the single entry point for all signaling messages. After
// validation, offers, answers and candidates are broadcast to the
// whole room rather than relayed point-to-point: every participant's
// client drops signals not addressed to it. That makes an n-party
// room O(n²) in aggregate signal traffic, acceptable for the small
// rooms this serves.
type Relay struct {
	validator *Validator
	gw        RoomBroadcaster
	limiter   *RateLimiter
}

func NewRelay(validator *Validator, gw RoomBroadcaster, limiter *RateLimiter) *Relay {
	return &Relay{validator: validator, gw: gw, limiter: limiter}
}

// Relay validates and dispatches one signaling message. A returned
// error goes to the sender's private queue only; nothing reaches the
// room unless validation passed.
func (r *Relay) Relay(ctx context.Context, msg Message) error {
	if r.limiter != nil && !r.limiter.Allow(msg.From) {
		log.Warn().Str("module", "signaling").
			Str("user_id", string(msg.From)).
			Str("type", string(msg.Type)).
			Msg("signal rate limit exceeded")
		return domain.ErrTooManySignals
	}

	switch msg.Type {
	case TypeOffer, TypeAnswer, TypeICECandidate:
		return r.relaySignal(ctx, msg)
	case TypeMediaToggle:
		return r.relayMediaToggle(ctx, msg)
	default:
		return fmt.Errorf("unknown signal type %q: %w", msg.Type, domain.ErrInvalidSignal)
	}
}

func (r *Relay) relaySignal(ctx context.Context, msg Message) error {
	if err := r.validator.ValidateSignal(ctx, msg.RoomID, msg.From, msg.Target); err != nil {
		return err
	}

	log.Debug().Str("module", "signaling").
		Str("type", string(msg.Type)).
		Str("room_id", string(msg.RoomID)).
		Str("from", string(msg.From)).
		Str("to", string(msg.Target)).
		Msg("relaying signal to room")

	r.gw.ToRoom(ctx, msg.RoomID, SignalBroadcast{
		Type:      msg.Type,
		RoomID:    msg.RoomID,
		From:      msg.From,
		Target:    msg.Target,
		SDP:       msg.SDP,
		MediaType: msg.MediaType,
		Candidate: msg.Candidate,
	})
	return nil
}

func (r *Relay) relayMediaToggle(ctx context.Context, msg Message) error {
	if err := r.validator.ValidateMediaStateChange(ctx, msg.RoomID, msg.From); err != nil {
		return err
	}

	log.Info().Str("module", "signaling").
		Str("room_id", string(msg.RoomID)).
		Str("user_id", string(msg.From)).
		Str("media_type", string(msg.MediaType)).
		Bool("enabled", msg.Enabled).
		Msg("media state changed")

	r.gw.ToRoom(ctx, msg.RoomID, MediaStateBroadcast{
		Type:      TypeMediaToggle,
		RoomID:    msg.RoomID,
		UserID:    msg.From,
		MediaType: msg.MediaType,
		Enabled:   msg.Enabled,
	})
	return nil
}
