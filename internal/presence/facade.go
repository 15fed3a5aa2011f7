package presence

import (
	"context"

	"github.com/studycrew/presence/internal/domain"
)

// Facade is the surface the connection gateway drives. Pure
// delegation plus ordering; no state of its own.
type Facade struct {
	sessions *SessionRegistry
	rooms    *RoomTracker
}

func NewFacade(sessions *SessionRegistry, rooms *RoomTracker) *Facade {
	sessions.AttachRooms(rooms)
	return &Facade{sessions: sessions, rooms: rooms}
}

// Connect registers a session for a freshly verified connection.
func (f *Facade) Connect(ctx context.Context, userID domain.UserID, connID domain.ConnectionID) error {
	return f.sessions.Register(ctx, userID, connID)
}

// Disconnect tears down whatever the connection left behind. Room
// exit must happen first: terminate deletes the session record the
// exit needs to find the room.
func (f *Facade) Disconnect(ctx context.Context, connID domain.ConnectionID) error {
	userID, ok, err := f.sessions.Resolve(ctx, connID)
	if err != nil {
		return err
	}
	if ok {
		f.rooms.ExitAll(ctx, userID)
	}
	return f.sessions.Terminate(ctx, connID)
}

func (f *Facade) JoinRoom(ctx context.Context, userID domain.UserID, roomID domain.RoomID, avatarID domain.AvatarID) error {
	return f.rooms.Enter(ctx, userID, roomID, avatarID)
}

func (f *Facade) LeaveRoom(ctx context.Context, userID domain.UserID, roomID domain.RoomID) error {
	return f.rooms.Exit(ctx, userID, roomID)
}

func (f *Facade) Heartbeat(ctx context.Context, userID domain.UserID) error {
	return f.sessions.Heartbeat(ctx, userID)
}

func (f *Facade) IsConnected(ctx context.Context, userID domain.UserID) (bool, error) {
	return f.sessions.IsConnected(ctx, userID)
}

func (f *Facade) OnlineCount(ctx context.Context) int64 {
	return f.sessions.OnlineCount(ctx)
}

func (f *Facade) RoomParticipants(ctx context.Context, roomID domain.RoomID) ([]domain.UserID, error) {
	return f.rooms.Participants(ctx, roomID)
}

func (f *Facade) ParticipantCount(ctx context.Context, roomID domain.RoomID) (int64, error) {
	return f.rooms.ParticipantCount(ctx, roomID)
}

func (f *Facade) ParticipantCounts(ctx context.Context, roomIDs []domain.RoomID) (map[domain.RoomID]int64, error) {
	return f.rooms.ParticipantCounts(ctx, roomIDs)
}

func (f *Facade) IsUserInRoom(ctx context.Context, userID domain.UserID, roomID domain.RoomID) (bool, error) {
	return f.rooms.IsUserInRoom(ctx, userID, roomID)
}

func (f *Facade) Avatars(ctx context.Context, roomID domain.RoomID, userIDs []domain.UserID) (map[domain.UserID]domain.AvatarID, error) {
	return f.rooms.Avatars(ctx, roomID, userIDs)
}

func (f *Facade) UpdateAvatar(ctx context.Context, roomID domain.RoomID, userID domain.UserID, avatarID domain.AvatarID) error {
	return f.rooms.UpdateAvatar(ctx, roomID, userID, avatarID)
}
