package domain

import "time"

// Session is the record of one live connection. At most one exists per
// user at any instant: a newer connection supersedes the old one.
type Session struct {
	UserID        UserID       `json:"user_id"`
	ConnectionID  ConnectionID `json:"connection_id"`
	CurrentRoomID RoomID       `json:"current_room_id,omitempty"`
	ConnectedAt   time.Time    `json:"connected_at"`
	LastActiveAt  time.Time    `json:"last_active_at"`
}

// NewSession avoids raw literals in adapters and keeps construction obvious.
func NewSession(userID UserID, connID ConnectionID, now time.Time) Session {
	return Session{
		UserID:       userID,
		ConnectionID: connID,
		ConnectedAt:  now,
		LastActiveAt: now,
	}
}

// WithRoom returns a copy placed in roomID with refreshed activity.
func (s Session) WithRoom(roomID RoomID, now time.Time) Session {
	s.CurrentRoomID = roomID
	s.LastActiveAt = now
	return s
}

// WithoutRoom returns a copy with no room association.
func (s Session) WithoutRoom(now time.Time) Session {
	s.CurrentRoomID = ""
	s.LastActiveAt = now
	return s
}

// Touched returns a copy with refreshed activity, used by heartbeats.
func (s Session) Touched(now time.Time) Session {
	s.LastActiveAt = now
	return s
}

// InRoom reports whether the session is currently placed in roomID.
func (s Session) InRoom(roomID RoomID) bool {
	return s.CurrentRoomID != "" && s.CurrentRoomID == roomID
}

// InAnyRoom reports whether the session is placed in some room.
func (s Session) InAnyRoom() bool {
	return s.CurrentRoomID != ""
}
