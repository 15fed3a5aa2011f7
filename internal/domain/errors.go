package domain

import "errors"

// Presence and signaling failures surfaced to callers. Wire codes are
// stable: clients match on them.
var (
	// ErrUnauthorized: no or invalid identity on a presence or
	// signaling call.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrSessionNotFound: operation on an absent session. The session
	// is treated as already expired, not as a fatal condition.
	ErrSessionNotFound = errors.New("session not found")

	// ErrNotRoomMember: signaling from or to a user who is not a
	// current participant of the room.
	ErrNotRoomMember = errors.New("not a room member")

	// ErrStoreUnavailable: the shared state store is unreachable.
	// Fatal on the write path, swallowed on best-effort cleanup.
	ErrStoreUnavailable = errors.New("state store unavailable")

	// ErrInvalidSignal: a signaling message that is malformed or
	// self-targeted.
	ErrInvalidSignal = errors.New("invalid signal")

	// ErrTooManySignals: the sender exceeded the signaling rate limit.
	ErrTooManySignals = errors.New("too many signals")
)

// ErrorCode maps a failure to its wire code for the per-user error
// queue. Unknown errors map to internal_error.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, ErrNotRoomMember):
		return "not_room_member"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	case errors.Is(err, ErrInvalidSignal):
		return "invalid_signal"
	case errors.Is(err, ErrTooManySignals):
		return "too_many_signals"
	default:
		return "internal_error"
	}
}
