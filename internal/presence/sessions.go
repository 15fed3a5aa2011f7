package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/studycrew/presence/internal/domain"
	"github.com/studycrew/presence/internal/store"
)

// roomExiter is how the registry tears down room membership when a
// new connection supersedes an old session. Implemented by
// RoomTracker; attached after construction to avoid ordering issues.
type roomExiter interface {
	ExitAll(ctx context.Context, userID domain.UserID)
}

// SessionRegistry owns the per-user connection lifecycle. The session
// record and its connection index share one TTL; a connection that
// stops heartbeating is discovered as gone lazily, on the next read.
type SessionRegistry struct {
	store store.StateStore
	ttl   time.Duration
	rooms roomExiter

	// now is replaceable so tests can drive TTL behavior.
	now func() time.Time
}

func NewSessionRegistry(st store.StateStore, ttl time.Duration) *SessionRegistry {
	return &SessionRegistry{
		store: st,
		ttl:   ttl,
		now:   time.Now,
	}
}

// AttachRooms wires the room tracker in. Must be called before the
// registry serves traffic.
func (r *SessionRegistry) AttachRooms(rooms roomExiter) {
	r.rooms = rooms
}

// Register writes a fresh session for userID. If a session already
// exists the old connection is fully terminated first: one session
// per user, the newest connection wins. Store failures here are fatal
// to the caller; a connection without a registered session is not
// usable.
func (r *SessionRegistry) Register(ctx context.Context, userID domain.UserID, connID domain.ConnectionID) error {
	existing, err := r.Get(ctx, userID)
	if err != nil {
		return err
	}
	if existing != nil {
		if r.rooms != nil {
			r.rooms.ExitAll(ctx, userID)
		}
		if err := r.Terminate(ctx, existing.ConnectionID); err != nil {
			return err
		}
		log.Info().Str("module", "presence.sessions").
			Str("user_id", string(userID)).
			Str("old_conn_id", string(existing.ConnectionID)).
			Msg("superseded existing session")
	}

	sess := domain.NewSession(userID, connID, r.now())
	if err := r.save(ctx, sess); err != nil {
		return err
	}
	if err := r.store.SetWithTTL(ctx, connUserKey(connID), string(userID), r.ttl); err != nil {
		return err
	}
	if _, err := r.store.Increment(ctx, onlineCountKey); err != nil {
		// The gauge is best effort; never fail a registration over it.
		log.Error().Err(err).Str("module", "presence.sessions").Msg("online counter increment failed")
	}

	log.Info().Str("module", "presence.sessions").
		Str("user_id", string(userID)).
		Str("conn_id", string(connID)).
		Msg("session registered")
	return nil
}

// Terminate removes the session behind connID. Terminating an unknown
// or already-terminated connection is a logged no-op: the transport
// may report the same close twice, and a superseded connection closes
// after its session is already gone.
func (r *SessionRegistry) Terminate(ctx context.Context, connID domain.ConnectionID) error {
	raw, ok, err := r.store.Get(ctx, connUserKey(connID))
	if err != nil {
		return err
	}
	if !ok {
		log.Warn().Str("module", "presence.sessions").
			Str("conn_id", string(connID)).
			Msg("terminate: no session for connection")
		return nil
	}
	userID := domain.UserID(raw)

	if err := r.store.Delete(ctx, userSessionKey(userID)); err != nil {
		return err
	}
	if err := r.store.Delete(ctx, connUserKey(connID)); err != nil {
		return err
	}
	if _, err := r.store.Decrement(ctx, onlineCountKey); err != nil {
		log.Error().Err(err).Str("module", "presence.sessions").Msg("online counter decrement failed")
	}

	log.Info().Str("module", "presence.sessions").
		Str("user_id", string(userID)).
		Str("conn_id", string(connID)).
		Msg("session terminated")
	return nil
}

// Heartbeat refreshes the session's activity time and TTL. A missing
// session means the connection already expired; the gateway tells the
// client to reconnect, so this is a no-op here.
func (r *SessionRegistry) Heartbeat(ctx context.Context, userID domain.UserID) error {
	sess, err := r.Get(ctx, userID)
	if err != nil {
		return err
	}
	if sess == nil {
		log.Warn().Str("module", "presence.sessions").
			Str("user_id", string(userID)).
			Msg("heartbeat for absent session")
		return nil
	}
	return r.save(ctx, sess.Touched(r.now()))
}

// IsConnected reports whether a live session exists for userID.
func (r *SessionRegistry) IsConnected(ctx context.Context, userID domain.UserID) (bool, error) {
	_, ok, err := r.store.Get(ctx, userSessionKey(userID))
	return ok, err
}

// Get returns the session for userID, or nil if none exists.
func (r *SessionRegistry) Get(ctx context.Context, userID domain.UserID) (*domain.Session, error) {
	raw, ok, err := r.store.Get(ctx, userSessionKey(userID))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var sess domain.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, fmt.Errorf("decode session for %s: %w", userID, err)
	}
	return &sess, nil
}

// Resolve maps a connection id back to its user, the only lookup the
// transport can do when it reports a close.
func (r *SessionRegistry) Resolve(ctx context.Context, connID domain.ConnectionID) (domain.UserID, bool, error) {
	raw, ok, err := r.store.Get(ctx, connUserKey(connID))
	if err != nil || !ok {
		return "", false, err
	}
	return domain.UserID(raw), true, nil
}

// OnlineCount returns the global connected-session gauge. Best
// effort: reads errors as zero rather than failing health probes.
func (r *SessionRegistry) OnlineCount(ctx context.Context) int64 {
	raw, ok, err := r.store.Get(ctx, onlineCountKey)
	if err != nil {
		log.Error().Err(err).Str("module", "presence.sessions").Msg("online counter read failed")
		return 0
	}
	if !ok {
		return 0
	}
	var n int64
	if _, err := fmt.Sscanf(raw, "%d", &n); err != nil {
		return 0
	}
	return n
}

// save rewrites the session record with a full TTL.
func (r *SessionRegistry) save(ctx context.Context, sess domain.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session for %s: %w", sess.UserID, err)
	}
	return r.store.SetWithTTL(ctx, userSessionKey(sess.UserID), string(data), r.ttl)
}
