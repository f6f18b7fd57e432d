package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Enums
type MessageType string

const (
	MessageTypeDirect MessageType = "direct"
	MessageTypeRoom   MessageType = "room"
)

type MemberRole string

const (
	MemberRoleAdmin  MemberRole = "admin"
	MemberRoleMember MemberRole = "member"
)

type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusDeclined InvitationStatus = "declined"
)

// Message is a persisted chat message. Exactly one of ReceiverID and RoomID
// is set, discriminated by MessageType.
type Message struct {
	ID          uuid.UUID   `json:"_id" gorm:"type:uuid;primary_key"`
	SenderID    uuid.UUID   `json:"senderId" gorm:"type:uuid;not null;index"`
	ReceiverID  *uuid.UUID  `json:"receiverId,omitempty" gorm:"type:uuid;index"`
	RoomID      *uuid.UUID  `json:"roomId,omitempty" gorm:"type:uuid;index"`
	Text        string      `json:"text"`
	Image       string      `json:"image,omitempty"`
	MessageType MessageType `json:"messageType" gorm:"default:direct"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`

	// Relations
	Sender *User `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Room is a group chat. The owner is also present in the member set with the
// admin role.
type Room struct {
	ID          uuid.UUID `json:"_id" gorm:"type:uuid;primary_key"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	OwnerID     uuid.UUID `json:"ownerId" gorm:"type:uuid;not null;index"`
	IsPrivate   bool      `json:"isPrivate" gorm:"default:true"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Relations
	Owner       *User            `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Members     []RoomMember     `json:"members,omitempty" gorm:"foreignKey:RoomID"`
	Invitations []RoomInvitation `json:"invitations,omitempty" gorm:"foreignKey:RoomID"`
}

func (r *Room) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RoomMember links a user to a room. A user appears at most once per room.
type RoomMember struct {
	ID       uuid.UUID  `json:"_id" gorm:"type:uuid;primary_key"`
	RoomID   uuid.UUID  `json:"roomId" gorm:"type:uuid;not null;uniqueIndex:idx_room_user"`
	UserID   uuid.UUID  `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_room_user"`
	Role     MemberRole `json:"role" gorm:"default:member"`
	JoinedAt time.Time  `json:"joinedAt"`

	// Relations
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (m *RoomMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now()
	}
	return nil
}

// RoomInvitation tracks a pending/accepted/declined invite. Transitions out
// of pending are terminal; a decline requires a brand-new invitation.
type RoomInvitation struct {
	ID            uuid.UUID        `json:"_id" gorm:"type:uuid;primary_key"`
	RoomID        uuid.UUID        `json:"roomId" gorm:"type:uuid;not null;index"`
	InvitedUserID uuid.UUID        `json:"invitedUserId" gorm:"type:uuid;not null;index"`
	InvitedByID   uuid.UUID        `json:"invitedById" gorm:"type:uuid;not null"`
	Status        InvitationStatus `json:"status" gorm:"default:pending"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`

	// Relations
	Room      *Room `json:"room,omitempty" gorm:"foreignKey:RoomID"`
	InvitedBy *User `json:"invitedBy,omitempty" gorm:"foreignKey:InvitedByID"`
}

func (i *RoomInvitation) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Request/Response DTOs
type SendMessageRequest struct {
	Text  string `json:"text"`
	Image string `json:"image"` // base64 data URL
}

type CreateRoomRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type InviteUserRequest struct {
	RoomID uuid.UUID `json:"roomId"`
	UserID uuid.UUID `json:"userId"`
}

type RespondInvitationRequest struct {
	RoomID   uuid.UUID `json:"roomId"`
	Response string    `json:"response"` // "accept" or "decline"
}

// InvitationView is the shape the client renders in the invitations modal.
type InvitationView struct {
	ID        uuid.UUID      `json:"_id"`
	Room      InvitationRoom `json:"room"`
	InvitedBy *User          `json:"invitedBy"`
	CreatedAt time.Time      `json:"createdAt"`
}

type InvitationRoom struct {
	ID          uuid.UUID `json:"_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}
