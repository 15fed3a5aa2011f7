// Package broadcast fans messages out to a room's subscribers and to
// single users' private queues. Delivery is channel-based: one
// publish per room reaches every subscribed connection, on this
// instance or any other.
package broadcast

import "github.com/studycrew/presence/internal/domain"

// Channel naming shared by publishers and the websocket hub. A room
// has one fan-out channel; a user has one channel per destination.
const (
	roomChannelPrefix = "presence.room."
	userChannelPrefix = "presence.user."

	// Destinations carried inside a user channel name.
	DestSignaling = "webrtc"
	DestErrors    = "errors"
)

func RoomChannel(roomID domain.RoomID) string {
	return roomChannelPrefix + string(roomID)
}

func UserChannel(userID domain.UserID, dest string) string {
	return userChannelPrefix + string(userID) + "." + dest
}
