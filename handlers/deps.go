package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ripple/chat-server/middleware"
)

// Notifier pushes real-time events to connected users. Delivery is
// best-effort; handlers only call it after a successful persistence write.
type Notifier interface {
	EmitToUser(userID string, event string, data any)
	EmitToUsers(userIDs []string, event string, data any)
}

// ImageUploader stores an inline image data URL and returns its hosted URL.
type ImageUploader interface {
	UploadDataURL(ctx context.Context, dataURL, folder string) (string, error)
}

// currentUserID reads the authenticated user's id set by the auth middleware.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	raw, ok := c.Get(middleware.ContextUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw.(string))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
