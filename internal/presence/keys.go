// Package presence tracks which users are connected and which room
// each occupies. All state lives in the shared store so any number of
// service instances can cooperate; nothing is cached across requests.
package presence

import "github.com/studycrew/presence/internal/domain"

// Key layout in the shared store. Everything is namespaced under ws:
// and expires with the session TTL.
const (
	userSessionKeyPrefix = "ws:user:"
	connUserKeyPrefix    = "ws:conn:"
	roomUsersKeyPrefix   = "ws:room:"
	roomUsersKeySuffix   = ":users"
	onlineCountKey       = "ws:online_users"
)

func userSessionKey(userID domain.UserID) string {
	return userSessionKeyPrefix + string(userID)
}

func connUserKey(connID domain.ConnectionID) string {
	return connUserKeyPrefix + string(connID)
}

func roomUsersKey(roomID domain.RoomID) string {
	return roomUsersKeyPrefix + string(roomID) + roomUsersKeySuffix
}

func roomAvatarKey(roomID domain.RoomID, userID domain.UserID) string {
	return roomUsersKeyPrefix + string(roomID) + ":user:" + string(userID) + ":avatar"
}
