package gateway

import (
	"context"
	"encoding/json"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/studycrew/presence/internal/broadcast"
	"github.com/studycrew/presence/internal/domain"
	"github.com/studycrew/presence/internal/signaling"
)

// errorReply is delivered only to the connection that caused the
// failure, never broadcast.
type errorReply struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (ctl *Controller) sendError(c *Conn, err error) {
	c.sendJSON(errorReply{
		Type:    "error",
		Code:    domain.ErrorCode(err),
		Message: err.Error(),
	})
}

// dispatch routes one inbound frame by its type tag. Unknown types
// are logged and dropped; a malformed frame earns an error reply.
func (ctl *Controller) dispatch(ctx context.Context, c *Conn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "gateway").
			Str("conn_id", string(c.id)).
			Msg("bad json frame")
		return
	}

	switch env.Type {
	case "heartbeat":
		ctl.handleHeartbeat(ctx, c)
	case "join":
		ctl.handleJoin(ctx, c, data)
	case "leave":
		ctl.handleLeave(ctx, c, data)
	case "avatar":
		ctl.handleAvatar(ctx, c, data)
	case "offer":
		ctl.handleSignal(ctx, c, data, signaling.TypeOffer)
	case "answer":
		ctl.handleSignal(ctx, c, data, signaling.TypeAnswer)
	case "candidate":
		ctl.handleCandidate(ctx, c, data)
	case "media_toggle":
		ctl.handleMediaToggle(ctx, c, data)
	default:
		log.Warn().Str("module", "gateway").
			Str("type", env.Type).
			Msg("unknown frame type")
	}
}

func (ctl *Controller) handleHeartbeat(ctx context.Context, c *Conn) {
	if err := ctl.facade.Heartbeat(ctx, c.userID); err != nil {
		log.Error().Err(err).Str("module", "gateway").
			Str("user_id", string(c.userID)).
			Msg("heartbeat failed")
	}
}

// roomState answers a successful join with the room as this instance
// sees it right now.
type roomState struct {
	Type         string                            `json:"type"`
	RoomID       domain.RoomID                     `json:"room_id"`
	Participants []domain.UserID                   `json:"participants"`
	Count        int                               `json:"count"`
	Avatars      map[domain.UserID]domain.AvatarID `json:"avatars,omitempty"`
}

func (ctl *Controller) handleJoin(ctx context.Context, c *Conn, data []byte) {
	var p struct {
		RoomID   string `json:"room_id"`
		AvatarID string `json:"avatar_id,omitempty"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendError(c, domain.ErrInvalidSignal)
		return
	}
	roomID, err := domain.ParseRoomID(p.RoomID)
	if err != nil {
		ctl.sendError(c, err)
		return
	}

	if err := ctl.facade.JoinRoom(ctx, c.userID, roomID, domain.AvatarID(p.AvatarID)); err != nil {
		ctl.sendError(c, err)
		return
	}

	// Room fan-out follows this connection's room, one at a time.
	if prev := c.currentRoom(); prev != "" && prev != roomID {
		ctl.hub.Unsubscribe(broadcast.RoomChannel(prev), c)
	}
	ctl.hub.Subscribe(broadcast.RoomChannel(roomID), c)
	c.setRoom(roomID)

	participants, err := ctl.facade.RoomParticipants(ctx, roomID)
	if err != nil {
		log.Error().Err(err).Str("module", "gateway").
			Str("room_id", string(roomID)).
			Msg("room state read failed")
		participants = nil
	}
	avatars, err := ctl.facade.Avatars(ctx, roomID, participants)
	if err != nil {
		avatars = nil
	}
	c.sendJSON(roomState{
		Type:         "room_state",
		RoomID:       roomID,
		Participants: participants,
		Count:        len(participants),
		Avatars:      avatars,
	})
}

func (ctl *Controller) handleLeave(ctx context.Context, c *Conn, data []byte) {
	var p struct {
		RoomID string `json:"room_id"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendError(c, domain.ErrInvalidSignal)
		return
	}
	roomID, err := domain.ParseRoomID(p.RoomID)
	if err != nil {
		ctl.sendError(c, err)
		return
	}

	if err := ctl.facade.LeaveRoom(ctx, c.userID, roomID); err != nil {
		ctl.sendError(c, err)
		return
	}
	ctl.hub.Unsubscribe(broadcast.RoomChannel(roomID), c)
	c.setRoom("")
	c.sendJSON(map[string]string{"type": "left"})
}

func (ctl *Controller) handleAvatar(ctx context.Context, c *Conn, data []byte) {
	var p struct {
		RoomID   string `json:"room_id"`
		AvatarID string `json:"avatar_id"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendError(c, domain.ErrInvalidSignal)
		return
	}
	roomID, err := domain.ParseRoomID(p.RoomID)
	if err != nil {
		ctl.sendError(c, err)
		return
	}
	if err := ctl.facade.UpdateAvatar(ctx, roomID, c.userID, domain.AvatarID(p.AvatarID)); err != nil {
		ctl.sendError(c, err)
	}
}

func (ctl *Controller) handleSignal(ctx context.Context, c *Conn, data []byte, typ signaling.Type) {
	var p struct {
		RoomID       string `json:"room_id"`
		TargetUserID string `json:"target_user_id"`
		SDP          string `json:"sdp"`
		MediaType    string `json:"media_type"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendError(c, domain.ErrInvalidSignal)
		return
	}
	mediaType, err := domain.ParseMediaType(p.MediaType)
	if err != nil {
		ctl.sendError(c, domain.ErrInvalidSignal)
		return
	}

	err = ctl.relay.Relay(ctx, signaling.Message{
		Type:      typ,
		RoomID:    domain.RoomID(p.RoomID),
		From:      c.userID,
		Target:    domain.UserID(p.TargetUserID),
		SDP:       p.SDP,
		MediaType: mediaType,
	})
	if err != nil {
		ctl.sendError(c, err)
	}
}

func (ctl *Controller) handleCandidate(ctx context.Context, c *Conn, data []byte) {
	var p struct {
		RoomID        string `json:"room_id"`
		TargetUserID  string `json:"target_user_id"`
		Candidate     string `json:"candidate"`
		SDPMid        string `json:"sdpMid"`
		SDPMLineIndex uint16 `json:"sdpMLineIndex"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendError(c, domain.ErrInvalidSignal)
		return
	}

	cand := &webrtc.ICECandidateInit{Candidate: p.Candidate}
	if p.SDPMid != "" {
		cand.SDPMid = &p.SDPMid
	}
	cand.SDPMLineIndex = &p.SDPMLineIndex

	err := ctl.relay.Relay(ctx, signaling.Message{
		Type:      signaling.TypeICECandidate,
		RoomID:    domain.RoomID(p.RoomID),
		From:      c.userID,
		Target:    domain.UserID(p.TargetUserID),
		Candidate: cand,
	})
	if err != nil {
		ctl.sendError(c, err)
	}
}

func (ctl *Controller) handleMediaToggle(ctx context.Context, c *Conn, data []byte) {
	var p struct {
		RoomID    string `json:"room_id"`
		MediaType string `json:"media_type"`
		Enabled   bool   `json:"enabled"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendError(c, domain.ErrInvalidSignal)
		return
	}
	mediaType, err := domain.ParseMediaType(p.MediaType)
	if err != nil {
		ctl.sendError(c, domain.ErrInvalidSignal)
		return
	}

	err = ctl.relay.Relay(ctx, signaling.Message{
		Type:      signaling.TypeMediaToggle,
		RoomID:    domain.RoomID(p.RoomID),
		From:      c.userID,
		MediaType: mediaType,
		Enabled:   p.Enabled,
	})
	if err != nil {
		ctl.sendError(c, err)
	}
}
