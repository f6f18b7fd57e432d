package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"ripple/chat-server/models"
	"ripple/chat-server/services"
	"ripple/chat-server/utils"
	"ripple/chat-server/ws"
)

type RoomHandler struct {
	db       *gorm.DB
	notifier Notifier
	uploader ImageUploader
	logger   *utils.Logger
}

func NewRoomHandler(db *gorm.DB, notifier Notifier, uploader ImageUploader, logger *utils.Logger) *RoomHandler {
	return &RoomHandler{
		db:       db,
		notifier: notifier,
		uploader: uploader,
		logger:   logger,
	}
}

// CreateRoom handles POST /api/rooms/create. The creator becomes the owner
// and an admin member.
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var req models.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Room name is required"})
		return
	}

	room := models.Room{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     ownerID,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&room).Error; err != nil {
			return err
		}
		member := models.RoomMember{
			RoomID: room.ID,
			UserID: ownerID,
			Role:   models.MemberRoleAdmin,
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		h.logger.Error("failed to create room", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		return
	}

	if err := h.db.Preload("Owner").Preload("Members.User").First(&room, "id = ?", room.ID).Error; err != nil {
		h.logger.Error("failed to reload room", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		return
	}

	h.logger.Info("room created", "roomId", room.ID, "name", room.Name, "ownerId", ownerID)
	c.JSON(http.StatusCreated, room)
}

// GetUserRooms handles GET /api/rooms/my-rooms.
func (h *RoomHandler) GetUserRooms(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var rooms []models.Room
	err := h.db.
		Joins("JOIN room_members ON room_members.room_id = rooms.id").
		Where("room_members.user_id = ?", userID).
		Preload("Owner").
		Preload("Members.User").
		Order("rooms.updated_at DESC").
		Find(&rooms).Error
	if err != nil {
		h.logger.Error("failed to fetch rooms", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, rooms)
}

// InviteUser handles POST /api/rooms/invite. Only a member or the owner may
// invite; a target that is already a member or already has a pending
// invitation is rejected.
func (h *RoomHandler) InviteUser(c *gin.Context) {
	inviterID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var req models.InviteUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	var room models.Room
	if err := h.db.First(&room, "id = ?", req.RoomID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"message": "Room not found"})
			return
		}
		h.logger.Error("failed to fetch room", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		return
	}

	if !h.isMember(room.ID, inviterID) && room.OwnerID != inviterID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized to invite users"})
		return
	}

	var invitee models.User
	if err := h.db.First(&invitee, "id = ?", req.UserID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		h.logger.Error("failed to fetch user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		return
	}

	if h.isMember(room.ID, req.UserID) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User is already a member"})
		return
	}

	var pending int64
	h.db.Model(&models.RoomInvitation{}).
		Where("room_id = ? AND invited_user_id = ? AND status = ?", room.ID, req.UserID, models.InvitationStatusPending).
		Count(&pending)
	if pending > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User already has a pending invitation"})
		return
	}

	invitation := models.RoomInvitation{
		RoomID:        room.ID,
		InvitedUserID: req.UserID,
		InvitedByID:   inviterID,
		Status:        models.InvitationStatusPending,
	}
	if err := h.db.Create(&invitation).Error; err != nil {
		h.logger.Error("failed to create invitation", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		return
	}

	var inviter models.User
	inviterName := ""
	if err := h.db.First(&inviter, "id = ?", inviterID).Error; err == nil {
		inviterName = inviter.FullName
	}

	h.notifier.EmitToUser(req.UserID.String(), ws.EventRoomInvitation, ws.InvitationNotice{
		RoomID:    room.ID,
		RoomName:  room.Name,
		InvitedBy: inviterName,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Invitation sent successfully"})
}

// GetInvitations handles GET /api/rooms/invitations and lists the caller's
// pending invitations.
func (h *RoomHandler) GetInvitations(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var invitations []models.RoomInvitation
	err := h.db.
		Where("invited_user_id = ? AND status = ?", userID, models.InvitationStatusPending).
		Preload("Room").
		Preload("InvitedBy").
		Order("created_at DESC").
		Find(&invitations).Error
	if err != nil {
		h.logger.Error("failed to fetch invitations", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		return
	}

	views := make([]models.InvitationView, 0, len(invitations))
	for _, inv := range invitations {
		view := models.InvitationView{
			ID:        inv.ID,
			InvitedBy: inv.InvitedBy,
			CreatedAt: inv.CreatedAt,
		}
		if inv.Room != nil {
			view.Room = models.InvitationRoom{
				ID:          inv.Room.ID,
				Name:        inv.Room.Name,
				Description: inv.Room.Description,
			}
		}
		views = append(views, view)
	}

	c.JSON(http.StatusOK, views)
}

// RespondInvitation handles POST /api/rooms/invitation/respond. Accept adds
// the caller as a member with the member role; decline leaves membership
// untouched. Either way the transition is terminal.
func (h *RoomHandler) RespondInvitation(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var req models.RespondInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if req.Response != "accept" && req.Response != "decline" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Response must be accept or decline"})
		return
	}

	var invitation models.RoomInvitation
	err := h.db.
		Where("room_id = ? AND invited_user_id = ? AND status = ?", req.RoomID, userID, models.InvitationStatusPending).
		First(&invitation).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"message": "Invitation not found"})
			return
		}
		h.logger.Error("failed to fetch invitation", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		return
	}

	status := models.InvitationStatusDeclined
	if req.Response == "accept" {
		status = models.InvitationStatusAccepted
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&invitation).Update("status", status).Error; err != nil {
			return err
		}
		if status == models.InvitationStatusAccepted {
			member := models.RoomMember{
				RoomID: invitation.RoomID,
				UserID: userID,
				Role:   models.MemberRoleMember,
			}
			return tx.Create(&member).Error
		}
		return nil
	})
	if err != nil {
		h.logger.Error("failed to respond to invitation", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invitation " + string(status)})
}

// GetRoomMessages handles GET /api/rooms/:roomId/messages. Members only.
func (h *RoomHandler) GetRoomMessages(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	roomID, err := uuid.Parse(c.Param("roomId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid room ID"})
		return
	}

	if !h.roomExists(c, roomID) {
		return
	}
	if !h.isMember(roomID, userID) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Access denied"})
		return
	}

	var messages []models.Message
	err = h.db.
		Where("room_id = ? AND message_type = ?", roomID, models.MessageTypeRoom).
		Preload("Sender").
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		h.logger.Error("failed to fetch room messages", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, messages)
}

// SendRoomMessage handles POST /api/rooms/:roomId/send. After the write, the
// message is pushed to every currently-online member except the sender.
func (h *RoomHandler) SendRoomMessage(c *gin.Context) {
	senderID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	roomID, err := uuid.Parse(c.Param("roomId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid room ID"})
		return
	}

	if !h.roomExists(c, roomID) {
		return
	}
	if !h.isMember(roomID, senderID) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Access denied"})
		return
	}

	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if req.Text == "" && req.Image == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Message text or image is required"})
		return
	}

	imageURL := ""
	if req.Image != "" {
		if h.uploader == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Image uploads are not configured"})
			return
		}
		imageURL, err = h.uploader.UploadDataURL(c.Request.Context(), req.Image, "chat-room-images")
		if err != nil {
			if err == services.ErrInvalidImageData || err == services.ErrImageTooLarge {
				c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			h.logger.Error("failed to upload image", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error uploading image"})
			return
		}
	}

	message := models.Message{
		SenderID:    senderID,
		RoomID:      &roomID,
		Text:        req.Text,
		Image:       imageURL,
		MessageType: models.MessageTypeRoom,
	}

	if err := h.db.Create(&message).Error; err != nil {
		h.logger.Error("failed to create room message", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		return
	}

	if err := h.db.Preload("Sender").First(&message, "id = ?", message.ID).Error; err != nil {
		h.logger.Error("failed to reload message", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		return
	}

	var members []models.RoomMember
	if err := h.db.Where("room_id = ?", roomID).Find(&members).Error; err != nil {
		h.logger.Error("failed to fetch room members", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		return
	}

	recipients := make([]string, 0, len(members))
	for _, member := range members {
		if member.UserID != senderID {
			recipients = append(recipients, member.UserID.String())
		}
	}
	h.notifier.EmitToUsers(recipients, ws.EventNewRoomMessage, message)

	c.JSON(http.StatusCreated, message)
}

// DeleteRoom handles DELETE /api/rooms/:roomId. Owner only; cascades
// members, invitations, and room messages.
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	roomID, err := uuid.Parse(c.Param("roomId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid room ID"})
		return
	}

	var room models.Room
	if err := h.db.First(&room, "id = ?", roomID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"message": "Room not found"})
			return
		}
		h.logger.Error("failed to fetch room", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		return
	}

	if room.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden: You are not the owner of this room."})
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", roomID).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", roomID).Delete(&models.RoomMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", roomID).Delete(&models.RoomInvitation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&room).Error
	})
	if err != nil {
		h.logger.Error("failed to delete room", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		return
	}

	h.logger.Info("room deleted", "roomId", roomID, "ownerId", userID)
	c.JSON(http.StatusOK, gin.H{"message": "Room and its messages deleted successfully"})
}

func (h *RoomHandler) isMember(roomID, userID uuid.UUID) bool {
	var count int64
	h.db.Model(&models.RoomMember{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&count)
	return count > 0
}

// roomExists writes a 404 and returns false when the room is missing.
func (h *RoomHandler) roomExists(c *gin.Context, roomID uuid.UUID) bool {
	var count int64
	if err := h.db.Model(&models.Room{}).Where("id = ?", roomID).Count(&count).Error; err != nil {
		h.logger.Error("failed to fetch room", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		return false
	}
	if count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Room not found"})
		return false
	}
	return true
}
