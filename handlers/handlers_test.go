package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ripple/chat-server/db"
	"ripple/chat-server/middleware"
	"ripple/chat-server/models"
	"ripple/chat-server/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(database); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return database
}

func newTestLogger() *utils.Logger {
	return utils.NewLogger("test")
}

// fakeNotifier records emitted events instead of pushing to sockets.
type fakeNotifier struct {
	mu     sync.Mutex
	events []emittedEvent
}

type emittedEvent struct {
	UserID string
	Event  string
	Data   any
}

func (f *fakeNotifier) EmitToUser(userID string, event string, data any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, emittedEvent{UserID: userID, Event: event, Data: data})
}

func (f *fakeNotifier) EmitToUsers(userIDs []string, event string, data any) {
	for _, userID := range userIDs {
		f.EmitToUser(userID, event, data)
	}
}

func (f *fakeNotifier) eventsFor(userID string) []emittedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []emittedEvent
	for _, ev := range f.events {
		if ev.UserID == userID {
			out = append(out, ev)
		}
	}
	return out
}

// authAs stubs the auth middleware with a fixed caller identity.
func authAs(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID.String())
		c.Next()
	}
}

func createUser(t *testing.T, database *gorm.DB, fullName, email string) models.User {
	t.Helper()

	user := models.User{
		FullName: fullName,
		Email:    email,
		Password: "$2a$10$not.a.real.hash.but.fine.for.tests",
	}
	if err := database.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", email, err)
	}
	return user
}

func performJSON(t *testing.T, router *gin.Engine, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, dest any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), dest); err != nil {
		t.Fatalf("failed to decode response %q: %v", recorder.Body.String(), err)
	}
}
