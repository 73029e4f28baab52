package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/windoze95/forkful-api/internal/logger"
	"github.com/windoze95/forkful-api/internal/middleware"
	"github.com/windoze95/forkful-api/internal/models"
	"github.com/windoze95/forkful-api/internal/service"
	"github.com/windoze95/forkful-api/internal/util"
	"go.uber.org/zap"
)

// UserHandler is the handler for user-related requests.
type UserHandler struct {
	Service *service.UserService
}

// NewUserHandler is the constructor function for initializing a new UserHandler.
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{Service: userService}
}

// CreateUser creates a new user.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var newUser struct {
		Username    string `json:"username" binding:"required"`
		DisplayName string `json:"display_name"`
		Email       string `json:"email" binding:"required"`
		Password    string `json:"password" binding:"required"`
	}

	// Returns error if a required field is not included
	if err := c.ShouldBindJSON(&newUser); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username, email, and password fields are required"})
		return
	}

	ctx := c.Request.Context()
	if err := h.Service.ValidateUsername(ctx, newUser.Username); err != nil {
		respondError(c, err, "Failed to validate username")
		return
	}
	if err := h.Service.ValidateEmail(newUser.Email); err != nil {
		respondError(c, err, "Failed to validate email")
		return
	}
	if err := h.Service.ValidatePassword(newUser.Password); err != nil {
		respondError(c, err, "Failed to validate password")
		return
	}

	user, err := h.Service.CreateUser(ctx, newUser.Username, newUser.DisplayName, newUser.Email, newUser.Password)
	if err != nil {
		respondError(c, err, "Failed to create user", zap.String("username", newUser.Username))
		return
	}

	h.issueTokens(c, user, http.StatusCreated, "User signed up successfully")
}

// LoginUser logs a user in.
func (h *UserHandler) LoginUser(c *gin.Context) {
	var userCredentials struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&userCredentials); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required"})
		return
	}

	user, err := h.Service.LoginUser(c.Request.Context(), userCredentials.Username, userCredentials.Password)
	if err != nil {
		respondError(c, err, "Failed to log in", zap.String("username", userCredentials.Username))
		return
	}

	h.issueTokens(c, user, http.StatusOK, "User logged in successfully")
}

// issueTokens writes a fresh access and refresh token pair for user.
func (h *UserHandler) issueTokens(c *gin.Context, user *models.User, status int, message string) {
	secret := h.Service.Cfg.EnvVars.JwtSecretKey
	accessToken, err := generateAccessToken(user.ID, secret)
	if err != nil {
		logger.Get().Error("failed to generate access token", zap.Uint("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}
	refreshToken, err := generateRefreshToken(user.ID, secret)
	if err != nil {
		logger.Get().Error("failed to generate refresh token", zap.Uint("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate refresh token"})
		return
	}

	c.JSON(status, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"message":       message,
		"user":          service.ToUserResponse(user),
	})
}

// generateAccessToken generates a short-lived JWT access token for a user.
func generateAccessToken(userID uint, secretKey string) (string, error) {
	return signToken(userID, secretKey, middleware.AccessToken, 15*time.Minute)
}

// generateRefreshToken generates a long-lived JWT refresh token for a user.
func generateRefreshToken(userID uint, secretKey string) (string, error) {
	return signToken(userID, secretKey, middleware.RefreshToken, 30*24*time.Hour)
}

func signToken(userID uint, secretKey, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     now.Add(ttl).Unix(),
		"iat":     now.Unix(),
		"type":    tokenType,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return tokenString, nil
}

// RefreshToken validates a refresh token and issues a new token pair.
func (h *UserHandler) RefreshToken(c *gin.Context) {
	var request struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refresh_token is required"})
		return
	}

	secret := h.Service.Cfg.EnvVars.JwtSecretKey
	userID, err := middleware.ParseToken(secret, request.RefreshToken, middleware.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired refresh token"})
		return
	}

	accessToken, err := generateAccessToken(userID, secret)
	if err != nil {
		logger.Get().Error("failed to generate access token on refresh", zap.Uint("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}

	newRefreshToken, err := generateRefreshToken(userID, secret)
	if err != nil {
		logger.Get().Error("failed to generate refresh token on refresh", zap.Uint("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate refresh token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": accessToken, "refresh_token": newRefreshToken})
}

// VerifyToken verifies a user's JWT token.
func (h *UserHandler) VerifyToken(c *gin.Context) {
	user, _ := util.GetUserFromContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"isAuthenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"isAuthenticated": true, "user": service.ToUserResponse(user)})
}

// GetMe returns the authenticated user.
func (h *UserHandler) GetMe(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": service.ToUserResponse(user)})
}

// UpdateProfile updates the display name, photo and community visibility.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req service.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	ctx := c.Request.Context()
	if err := h.Service.UpdateProfile(ctx, user.ID, req); err != nil {
		respondError(c, err, "Failed to update profile", zap.Uint("user_id", user.ID))
		return
	}

	updated, err := h.Service.GetUserByID(ctx, user.ID)
	if err != nil {
		respondError(c, err, "Failed to load profile", zap.Uint("user_id", user.ID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully", "user": service.ToUserResponse(updated)})
}
