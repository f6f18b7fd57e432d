package ws

import "github.com/google/uuid"

// Server→client event names. These match what the frontend subscribes to.
const (
	EventOnlineUsers    = "getOnlineUsers"
	EventNewMessage     = "newMessage"
	EventNewRoomMessage = "newRoomMessage"
	EventRoomInvitation = "roomInvitation"
)

// Event is the wire envelope for every server→client push.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// InvitationNotice is the payload of a roomInvitation event.
type InvitationNotice struct {
	RoomID    uuid.UUID `json:"roomId"`
	RoomName  string    `json:"roomName"`
	InvitedBy string    `json:"invitedBy"`
}
