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

type MessageHandler struct {
	db       *gorm.DB
	notifier Notifier
	uploader ImageUploader
	logger   *utils.Logger
}

func NewMessageHandler(db *gorm.DB, notifier Notifier, uploader ImageUploader, logger *utils.Logger) *MessageHandler {
	return &MessageHandler{
		db:       db,
		notifier: notifier,
		uploader: uploader,
		logger:   logger,
	}
}

// GetUsers handles GET /api/messages/users and returns everyone except the
// caller, for the sidebar.
func (h *MessageHandler) GetUsers(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var users []models.User
	if err := h.db.Where("id <> ?", userID).Order("full_name ASC").Find(&users).Error; err != nil {
		h.logger.Error("failed to fetch users", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, users)
}

// GetMessages handles GET /api/messages/:id and returns the direct
// conversation between the caller and the given user, oldest first.
func (h *MessageHandler) GetMessages(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	otherID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user ID"})
		return
	}

	var messages []models.Message
	err = h.db.
		Where("message_type = ?", models.MessageTypeDirect).
		Where(
			h.db.Where("sender_id = ? AND receiver_id = ?", userID, otherID).
				Or("sender_id = ? AND receiver_id = ?", otherID, userID),
		).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		h.logger.Error("failed to fetch messages", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, messages)
}

// SendMessage handles POST /api/messages/send/:id. The message is persisted
// first; real-time delivery to the receiver is attempted afterwards and is
// best-effort only.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	senderID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	receiverID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user ID"})
		return
	}

	var receiver models.User
	if err := h.db.First(&receiver, "id = ?", receiverID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		h.logger.Error("failed to fetch receiver", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
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

	imageURL, ok := h.uploadImage(c, req.Image, "chat-images")
	if !ok {
		return
	}

	message := models.Message{
		SenderID:    senderID,
		ReceiverID:  &receiverID,
		Text:        req.Text,
		Image:       imageURL,
		MessageType: models.MessageTypeDirect,
	}

	if err := h.db.Create(&message).Error; err != nil {
		h.logger.Error("failed to create message", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		return
	}

	h.notifier.EmitToUser(receiverID.String(), ws.EventNewMessage, message)

	c.JSON(http.StatusCreated, message)
}

// uploadImage resolves an optional inline image. On failure it writes the
// error response and returns ok=false.
func (h *MessageHandler) uploadImage(c *gin.Context, dataURL, folder string) (string, bool) {
	if dataURL == "" {
		return "", true
	}
	if h.uploader == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Image uploads are not configured"})
		return "", false
	}

	uploadedURL, err := h.uploader.UploadDataURL(c.Request.Context(), dataURL, folder)
	if err != nil {
		if err == services.ErrInvalidImageData || err == services.ErrImageTooLarge {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return "", false
		}
		h.logger.Error("failed to upload image", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error uploading image"})
		return "", false
	}
	return uploadedURL, true
}
