// Package signaling relays peer-to-peer call-setup messages between
// room participants. Signals are ephemeral and never touch the store;
// a message is validated, then broadcast, and nothing is retained.
package signaling

import (
	"github.com/pion/webrtc/v4"

	"github.com/studycrew/presence/internal/domain"
)

// Type tags the signaling message variants.
type Type string

const (
	TypeOffer        Type = "offer"
	TypeAnswer       Type = "answer"
	TypeICECandidate Type = "ice_candidate"
	TypeMediaToggle  Type = "media_toggle"
)

// Message is the tagged signaling variant dispatched through the
// relay. SDP and MediaType accompany offers and answers, Candidate
// accompanies ICE candidates, Enabled accompanies media toggles.
type Message struct {
	Type   Type
	RoomID domain.RoomID
	From   domain.UserID
	Target domain.UserID // empty for media toggles

	SDP       string
	MediaType domain.MediaType
	Candidate *webrtc.ICECandidateInit
	Enabled   bool
}

// SignalBroadcast is the room-wide fan-out of an offer, answer or ICE
// candidate. Every participant receives it; clients ignore signals
// not addressed to them.
type SignalBroadcast struct {
	Type      Type                     `json:"type"`
	RoomID    domain.RoomID            `json:"room_id"`
	From      domain.UserID            `json:"from_user_id"`
	Target    domain.UserID            `json:"target_user_id"`
	SDP       string                   `json:"sdp,omitempty"`
	MediaType domain.MediaType         `json:"media_type,omitempty"`
	Candidate *webrtc.ICECandidateInit `json:"candidate,omitempty"`
}

// MediaStateBroadcast notifies the room of one user's media toggle.
// No state is kept: clients fold the stream of toggles over an
// all-off starting assumption.
type MediaStateBroadcast struct {
	Type      Type             `json:"type"`
	RoomID    domain.RoomID    `json:"room_id"`
	UserID    domain.UserID    `json:"user_id"`
	MediaType domain.MediaType `json:"media_type"`
	Enabled   bool             `json:"enabled"`
}
