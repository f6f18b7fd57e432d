package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"ripple/chat-server/config"
	"ripple/chat-server/models"
	"ripple/chat-server/services"
	"ripple/chat-server/utils"
)

type AuthHandler struct {
	db       *gorm.DB
	cfg      *config.Config
	uploader ImageUploader
	logger   *utils.Logger
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config, uploader ImageUploader, logger *utils.Logger) *AuthHandler {
	return &AuthHandler{
		db:       db,
		cfg:      cfg,
		uploader: uploader,
		logger:   logger,
	}
}

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	if req.FullName == "" || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "All fields should be filled"})
		return
	}
	if len(req.Password) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Password must be at least 6 characters"})
		return
	}

	var existing models.User
	err := h.db.Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email already exists"})
		return
	}
	if err != gorm.ErrRecordNotFound {
		h.logger.Error("failed to check existing email", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("failed to hash password", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		return
	}

	user := models.User{
		FullName:   req.FullName,
		Email:      req.Email,
		Password:   string(hashed),
		ProfilePic: services.RandomAvatarURL(fmt.Sprintf("%s%d", req.FullName, time.Now().UnixMilli())),
	}

	if err := h.db.Create(&user).Error; err != nil {
		h.logger.Error("failed to create user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		return
	}

	if err := h.issueSession(c, user.ID.String()); err != nil {
		h.logger.Error("failed to issue session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		return
	}

	h.logger.Info("user signed up", "userId", user.ID, "email", user.Email)
	c.JSON(http.StatusCreated, user)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid Credentials"})
			return
		}
		h.logger.Error("failed to fetch user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid Credentials"})
		return
	}

	if err := h.issueSession(c, user.ID.String()); err != nil {
		h.logger.Error("failed to issue session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	utils.ClearAuthCookie(c, h.cfg.Environment == "production")
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// UpdateProfile handles PUT /api/auth/update-profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	updates := map[string]interface{}{}

	if req.ProfilePic != "" {
		if h.uploader == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Image uploads are not configured"})
			return
		}
		uploadedURL, err := h.uploader.UploadDataURL(c.Request.Context(), req.ProfilePic, "profile-pics")
		if err != nil {
			if err == services.ErrInvalidImageData || err == services.ErrImageTooLarge {
				c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			h.logger.Error("failed to upload profile picture", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error uploading image"})
			return
		}
		updates["profile_pic"] = uploadedURL
	}

	if req.FullName != "" {
		if len(strings.TrimSpace(req.FullName)) < 3 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Full name must be at least 3 characters"})
			return
		}
		updates["full_name"] = req.FullName
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No update data provided"})
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	if err := h.db.Model(&user).Updates(updates).Error; err != nil {
		h.logger.Error("failed to update profile", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// ChangePassword handles POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "All fields are required"})
		return
	}
	if len(req.NewPassword) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "New password must be at least 6 characters"})
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid current password"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("failed to hash password", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		return
	}

	if err := h.db.Model(&user).Update("password", string(hashed)).Error; err != nil {
		h.logger.Error("failed to update password", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

// CheckAuth handles GET /api/auth/check
func (h *AuthHandler) CheckAuth(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) issueSession(c *gin.Context, userID string) error {
	token, err := utils.GenerateToken(userID, h.cfg.JWTSecret, h.cfg.TokenTTL)
	if err != nil {
		return err
	}
	utils.SetAuthCookie(c, token, h.cfg.TokenTTL, h.cfg.Environment == "production")
	return nil
}
