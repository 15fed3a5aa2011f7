package presence

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/studycrew/presence/internal/domain"
	"github.com/studycrew/presence/internal/store"
)

// Announcer receives membership-change notifications. Implementations
// must never block the presence operation: failures are theirs to log
// and swallow.
type Announcer interface {
	UserJoined(ctx context.Context, roomID domain.RoomID, userID domain.UserID, avatarID domain.AvatarID)
	UserLeft(ctx context.Context, roomID domain.RoomID, userID domain.UserID)
}

type noopAnnouncer struct{}

func (noopAnnouncer) UserJoined(context.Context, domain.RoomID, domain.UserID, domain.AvatarID) {}
func (noopAnnouncer) UserLeft(context.Context, domain.RoomID, domain.UserID)                    {}

// RoomTracker owns room membership and per-(room,user) ephemeral
// attributes. Invariant: a user is in the room's member set exactly
// when their session's current room is that room, and in at most one
// room at a time.
type RoomTracker struct {
	store    store.StateStore
	sessions *SessionRegistry
	ttl      time.Duration
	announce Announcer

	now func() time.Time
}

func NewRoomTracker(st store.StateStore, sessions *SessionRegistry, ttl time.Duration) *RoomTracker {
	return &RoomTracker{
		store:    st,
		sessions: sessions,
		ttl:      ttl,
		announce: noopAnnouncer{},
		now:      time.Now,
	}
}

// AttachAnnouncer wires membership broadcasts in.
func (t *RoomTracker) AttachAnnouncer(a Announcer) {
	t.announce = a
}

// Enter places the user in roomID, leaving their previous room first
// if it differs. Requires a live session: entering a room with an
// expired session is a SessionNotFound failure the gateway surfaces
// as "reconnect".
func (t *RoomTracker) Enter(ctx context.Context, userID domain.UserID, roomID domain.RoomID, avatarID domain.AvatarID) error {
	sess, err := t.sessions.Get(ctx, userID)
	if err != nil {
		return err
	}
	if sess == nil {
		return domain.ErrSessionNotFound
	}

	if sess.InAnyRoom() && sess.CurrentRoomID != roomID {
		if err := t.Exit(ctx, userID, sess.CurrentRoomID); err != nil {
			return err
		}
	}

	if err := t.sessions.save(ctx, sess.WithRoom(roomID, t.now())); err != nil {
		return err
	}
	if err := t.store.AddToSet(ctx, roomUsersKey(roomID), string(userID), t.ttl); err != nil {
		return err
	}
	if avatarID != "" {
		if err := t.store.SetWithTTL(ctx, roomAvatarKey(roomID, userID), string(avatarID), t.ttl); err != nil {
			// Avatar selection is cosmetic; the join stands.
			log.Error().Err(err).Str("module", "presence.rooms").
				Str("user_id", string(userID)).
				Str("room_id", string(roomID)).
				Msg("avatar save failed")
		}
	}

	log.Info().Str("module", "presence.rooms").
		Str("user_id", string(userID)).
		Str("room_id", string(roomID)).
		Msg("entered room")

	t.announce.UserJoined(ctx, roomID, userID, avatarID)
	return nil
}

// Exit removes the user from roomID. The session record may already
// be gone (TTL lapse); membership removal still proceeds so reads
// stay self-healing. The avatar association is left to lapse with its
// TTL.
func (t *RoomTracker) Exit(ctx context.Context, userID domain.UserID, roomID domain.RoomID) error {
	sess, err := t.sessions.Get(ctx, userID)
	if err != nil {
		return err
	}
	if sess != nil && sess.InAnyRoom() {
		if err := t.sessions.save(ctx, sess.WithoutRoom(t.now())); err != nil {
			return err
		}
	}
	if err := t.store.RemoveFromSet(ctx, roomUsersKey(roomID), string(userID)); err != nil {
		return err
	}

	log.Info().Str("module", "presence.rooms").
		Str("user_id", string(userID)).
		Str("room_id", string(roomID)).
		Msg("exited room")

	t.announce.UserLeft(ctx, roomID, userID)
	return nil
}

// ExitAll leaves whatever room the user currently occupies. Called on
// disconnect teardown, which must always complete: every failure is
// logged and swallowed.
func (t *RoomTracker) ExitAll(ctx context.Context, userID domain.UserID) {
	roomID, err := t.CurrentRoom(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("module", "presence.rooms").
			Str("user_id", string(userID)).
			Msg("exit-all: current room lookup failed")
		return
	}
	if roomID == "" {
		return
	}
	if err := t.Exit(ctx, userID, roomID); err != nil {
		log.Error().Err(err).Str("module", "presence.rooms").
			Str("user_id", string(userID)).
			Str("room_id", string(roomID)).
			Msg("exit-all: exit failed")
	}
}

// CurrentRoom returns the user's room, or empty if none.
func (t *RoomTracker) CurrentRoom(ctx context.Context, userID domain.UserID) (domain.RoomID, error) {
	sess, err := t.sessions.Get(ctx, userID)
	if err != nil || sess == nil {
		return "", err
	}
	return sess.CurrentRoomID, nil
}

// IsUserInRoom reports whether the user's current room is roomID.
func (t *RoomTracker) IsUserInRoom(ctx context.Context, userID domain.UserID, roomID domain.RoomID) (bool, error) {
	current, err := t.CurrentRoom(ctx, userID)
	if err != nil {
		return false, err
	}
	return current != "" && current == roomID, nil
}

// Participants returns the users currently present in roomID.
func (t *RoomTracker) Participants(ctx context.Context, roomID domain.RoomID) ([]domain.UserID, error) {
	members, err := t.store.Members(ctx, roomUsersKey(roomID))
	if err != nil {
		return nil, err
	}
	out := make([]domain.UserID, len(members))
	for i, m := range members {
		out[i] = domain.UserID(m)
	}
	return out, nil
}

// ParticipantCount returns the size of one room's member set.
func (t *RoomTracker) ParticipantCount(ctx context.Context, roomID domain.RoomID) (int64, error) {
	return t.store.Cardinality(ctx, roomUsersKey(roomID))
}

// ParticipantCounts returns counts for many rooms in one store round
// trip. Rooms with no members report zero.
func (t *RoomTracker) ParticipantCounts(ctx context.Context, roomIDs []domain.RoomID) (map[domain.RoomID]int64, error) {
	if len(roomIDs) == 0 {
		return map[domain.RoomID]int64{}, nil
	}
	keys := make([]string, len(roomIDs))
	for i, roomID := range roomIDs {
		keys[i] = roomUsersKey(roomID)
	}
	counts, err := t.store.Cardinalities(ctx, keys)
	if err != nil {
		return nil, err
	}
	out := make(map[domain.RoomID]int64, len(roomIDs))
	for i, roomID := range roomIDs {
		out[roomID] = counts[i]
	}
	return out, nil
}

// Avatar returns one user's avatar selection in roomID, empty if none.
func (t *RoomTracker) Avatar(ctx context.Context, roomID domain.RoomID, userID domain.UserID) (domain.AvatarID, error) {
	raw, ok, err := t.store.Get(ctx, roomAvatarKey(roomID, userID))
	if err != nil || !ok {
		return "", err
	}
	return domain.AvatarID(raw), nil
}

// Avatars returns the avatar selections of many users in one store
// round trip. Users with no selection are absent from the result.
func (t *RoomTracker) Avatars(ctx context.Context, roomID domain.RoomID, userIDs []domain.UserID) (map[domain.UserID]domain.AvatarID, error) {
	if len(userIDs) == 0 {
		return map[domain.UserID]domain.AvatarID{}, nil
	}
	keys := make([]string, len(userIDs))
	for i, userID := range userIDs {
		keys[i] = roomAvatarKey(roomID, userID)
	}
	values, err := t.store.GetMany(ctx, keys)
	if err != nil {
		return nil, err
	}
	out := make(map[domain.UserID]domain.AvatarID, len(values))
	for i, userID := range userIDs {
		if v, ok := values[keys[i]]; ok {
			out[userID] = domain.AvatarID(v)
		}
	}
	return out, nil
}

// UpdateAvatar overwrites the user's avatar selection for roomID.
func (t *RoomTracker) UpdateAvatar(ctx context.Context, roomID domain.RoomID, userID domain.UserID, avatarID domain.AvatarID) error {
	if avatarID == "" {
		return nil
	}
	return t.store.SetWithTTL(ctx, roomAvatarKey(roomID, userID), string(avatarID), t.ttl)
}
