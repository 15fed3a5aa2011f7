// Package domain contains the entities tracked by the presence core.
// No transport or storage logic here.
package domain

import "errors"

const (
	MaxUserIDLen = 36
	MaxRoomIDLen = 36
)

var (
	ErrUserIDEmpty   = errors.New("user id empty")
	ErrUserIDTooLong = errors.New("user id too long")
	ErrRoomIDEmpty   = errors.New("room id empty")
	ErrRoomIDTooLong = errors.New("room id too long")
)

type (
	// UserID identifies a verified user, issued outside this core.
	UserID string

	// ConnectionID is the opaque handle of one physical connection.
	// The transport reports disconnects with only this value.
	ConnectionID string

	// RoomID identifies a room a user can be present in.
	RoomID string

	// AvatarID is the user's avatar selection within one room.
	AvatarID string
)

// ParseUserID validates an externally supplied user id.
func ParseUserID(raw string) (UserID, error) {
	if raw == "" {
		return "", ErrUserIDEmpty
	}
	if len(raw) > MaxUserIDLen {
		return "", ErrUserIDTooLong
	}
	return UserID(raw), nil
}

// ParseRoomID validates an externally supplied room id.
func ParseRoomID(raw string) (RoomID, error) {
	if raw == "" {
		return "", ErrRoomIDEmpty
	}
	if len(raw) > MaxRoomIDLen {
		return "", ErrRoomIDTooLong
	}
	return RoomID(raw), nil
}
