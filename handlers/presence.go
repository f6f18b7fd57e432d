package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ripple/chat-server/services"
	"ripple/chat-server/utils"
)

// PresenceSource exposes the live connection registry's view of who is
// online.
type PresenceSource interface {
	OnlineUserIDs() []string
	IsOnline(userID string) bool
}

type PresenceHandler struct {
	source  PresenceSource
	tracker *services.PresenceTracker
	logger  *utils.Logger
}

// NewPresenceHandler creates a presence handler. tracker may be nil when
// Redis-backed last-seen tracking is disabled.
func NewPresenceHandler(source PresenceSource, tracker *services.PresenceTracker, logger *utils.Logger) *PresenceHandler {
	return &PresenceHandler{
		source:  source,
		tracker: tracker,
		logger:  logger,
	}
}

// GetOnlineUsers handles GET /api/presence/online and returns the full
// current presence snapshot.
func (h *PresenceHandler) GetOnlineUsers(c *gin.Context) {
	users := h.source.OnlineUserIDs()

	c.JSON(http.StatusOK, gin.H{
		"count": len(users),
		"users": users,
	})
}

// GetStatus handles GET /api/presence/status?userId=... with online state
// and, when available, the last-seen timestamp.
func (h *PresenceHandler) GetStatus(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "userId parameter is required"})
		return
	}

	response := gin.H{
		"userId":   userID,
		"isOnline": h.source.IsOnline(userID),
	}

	if h.tracker != nil {
		if lastSeen, ok := h.tracker.LastSeen(c.Request.Context(), userID); ok {
			response["lastSeen"] = lastSeen.Format(time.RFC3339)
		}
	}

	c.JSON(http.StatusOK, response)
}
