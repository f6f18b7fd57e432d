package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"ripple/chat-server/middleware"
	"ripple/chat-server/utils"
)

// ServeWS upgrades the handshake and attaches the connection to the hub.
// The client identifies itself with a userId query parameter; when the route
// runs behind the auth middleware the parameter must match the session.
func ServeWS(hub *Hub, allowedOrigin string, logger *utils.Logger) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || origin == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		userID := c.Query("userId")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "userId query parameter is required"})
			return
		}

		if authed, ok := c.Get(middleware.ContextUserID); ok && authed.(string) != userID {
			c.JSON(http.StatusForbidden, gin.H{"message": "userId does not match session"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", "error", err)
			return
		}

		client := &Client{
			id:     uuid.NewString(),
			userID: userID,
			hub:    hub,
			conn:   conn,
			send:   make(chan []byte, 256),
		}
		hub.Register(client)

		go client.writePump()
		go client.readPump()
	}
}
