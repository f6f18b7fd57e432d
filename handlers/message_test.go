package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"ripple/chat-server/models"
	"ripple/chat-server/ws"
)

func newMessageRouter(t *testing.T, callerID uuid.UUID, database *gorm.DB, notifier *fakeNotifier) *gin.Engine {
	t.Helper()

	handler := NewMessageHandler(database, notifier, nil, newTestLogger())

	router := gin.New()
	group := router.Group("/api/messages", authAs(callerID))
	group.GET("/users", handler.GetUsers)
	group.GET("/:id", handler.GetMessages)
	group.POST("/send/:id", handler.SendMessage)
	return router
}

func TestGetUsersExcludesCaller(t *testing.T) {
	database := setupTestDB(t)
	alice := createUser(t, database, "Alice", "alice@example.com")
	createUser(t, database, "Bob", "bob@example.com")
	createUser(t, database, "Carol", "carol@example.com")

	router := newMessageRouter(t, alice.ID, database, &fakeNotifier{})

	recorder := performJSON(t, router, http.MethodGet, "/api/messages/users", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("GetUsers failed: %d %s", recorder.Code, recorder.Body.String())
	}

	var users []models.User
	decodeBody(t, recorder, &users)
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	for _, user := range users {
		if user.ID == alice.ID {
			t.Error("caller must not appear in the sidebar list")
		}
	}
}

func TestSendDirectMessageFansOutToReceiverOnly(t *testing.T) {
	database := setupTestDB(t)
	alice := createUser(t, database, "Alice", "alice@example.com")
	bob := createUser(t, database, "Bob", "bob@example.com")
	notifier := &fakeNotifier{}

	router := newMessageRouter(t, alice.ID, database, notifier)

	recorder := performJSON(t, router, http.MethodPost, "/api/messages/send/"+bob.ID.String(),
		models.SendMessageRequest{Text: "hi"})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("SendMessage failed: %d %s", recorder.Code, recorder.Body.String())
	}

	// Persisted before any delivery attempt
	var stored models.Message
	if err := database.First(&stored, "sender_id = ?", alice.ID).Error; err != nil {
		t.Fatalf("message was not persisted: %v", err)
	}
	if stored.MessageType != models.MessageTypeDirect {
		t.Errorf("expected direct message, got %s", stored.MessageType)
	}
	if stored.ReceiverID == nil || *stored.ReceiverID != bob.ID {
		t.Error("receiver id not set")
	}
	if stored.RoomID != nil {
		t.Error("direct message must not carry a room id")
	}

	// Exactly one newMessage event, to the receiver only
	bobEvents := notifier.eventsFor(bob.ID.String())
	if len(bobEvents) != 1 || bobEvents[0].Event != ws.EventNewMessage {
		t.Fatalf("expected one newMessage for receiver, got %+v", bobEvents)
	}
	if events := notifier.eventsFor(alice.ID.String()); len(events) != 0 {
		t.Errorf("sender must not receive fan-out, got %+v", events)
	}
}

func TestSendDirectMessageValidation(t *testing.T) {
	database := setupTestDB(t)
	alice := createUser(t, database, "Alice", "alice@example.com")
	bob := createUser(t, database, "Bob", "bob@example.com")

	router := newMessageRouter(t, alice.ID, database, &fakeNotifier{})

	// Empty message
	recorder := performJSON(t, router, http.MethodPost, "/api/messages/send/"+bob.ID.String(),
		models.SendMessageRequest{})
	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty message, got %d", recorder.Code)
	}

	// Unknown receiver
	recorder = performJSON(t, router, http.MethodPost, "/api/messages/send/"+uuid.NewString(),
		models.SendMessageRequest{Text: "hi"})
	if recorder.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown receiver, got %d", recorder.Code)
	}
}

func TestGetMessagesReturnsConversationPair(t *testing.T) {
	database := setupTestDB(t)
	alice := createUser(t, database, "Alice", "alice@example.com")
	bob := createUser(t, database, "Bob", "bob@example.com")
	carol := createUser(t, database, "Carol", "carol@example.com")
	notifier := &fakeNotifier{}

	aliceRouter := newMessageRouter(t, alice.ID, database, notifier)
	bobRouter := newMessageRouter(t, bob.ID, database, notifier)
	carolRouter := newMessageRouter(t, carol.ID, database, notifier)

	send := func(router *gin.Engine, to uuid.UUID, text string) {
		recorder := performJSON(t, router, http.MethodPost, "/api/messages/send/"+to.String(),
			models.SendMessageRequest{Text: text})
		if recorder.Code != http.StatusCreated {
			t.Fatalf("send %q failed: %d", text, recorder.Code)
		}
	}

	send(aliceRouter, bob.ID, "one")
	send(bobRouter, alice.ID, "two")
	send(carolRouter, alice.ID, "noise")

	recorder := performJSON(t, aliceRouter, http.MethodGet, "/api/messages/"+bob.ID.String(), nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("GetMessages failed: %d %s", recorder.Code, recorder.Body.String())
	}

	var messages []models.Message
	decodeBody(t, recorder, &messages)
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages in the pair conversation, got %d", len(messages))
	}
	if messages[0].Text != "one" || messages[1].Text != "two" {
		t.Errorf("expected oldest-first ordering, got %q then %q", messages[0].Text, messages[1].Text)
	}
}
