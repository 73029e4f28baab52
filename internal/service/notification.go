package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/windoze95/forkful-api/internal/logger"
	"github.com/windoze95/forkful-api/internal/metrics"
	"github.com/windoze95/forkful-api/internal/models"
	"github.com/windoze95/forkful-api/internal/repository"
	"go.uber.org/zap"
)

// defaultNotificationLimit is how many notifications a listing returns.
const defaultNotificationLimit = 50

var validPlatforms = map[string]bool{"ios": true, "android": true, "web": true}

// Sender delivers a stored notification over one channel.
type Sender interface {
	Name() string
	Deliver(ctx context.Context, n *models.Notification) error
}

// NotificationService stores notifications and fans them out to senders.
type NotificationService struct {
	Repo    repository.NotificationRepo
	Senders []Sender
}

// NotificationResponse is the response object for a notification.
type NotificationResponse struct {
	ID        uint      `json:"id"`
	Type      string    `json:"type"`
	RecipeID  uint      `json:"recipeId"`
	Count     int       `json:"count"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// DeviceResponse is the response object for a registered device.
type DeviceResponse struct {
	ID       uint   `json:"id"`
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

// ToNotificationResponses converts notifications to their response objects.
func ToNotificationResponses(list []models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, NotificationResponse{
			ID:        n.ID,
			Type:      string(n.Type),
			RecipeID:  n.RecipeID,
			Count:     n.Count,
			Message:   n.Message,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}
	return out
}

// ToDeviceResponse converts a DeviceToken to a DeviceResponse.
func ToDeviceResponse(d *models.DeviceToken) DeviceResponse {
	return DeviceResponse{ID: d.ID, Token: d.Token, Platform: d.Platform}
}

// NewNotificationService is the constructor function for initializing a new NotificationService.
func NewNotificationService(repo repository.NotificationRepo, senders ...Sender) *NotificationService {
	return &NotificationService{Repo: repo, Senders: senders}
}

// milestoneMessage renders the text of a milestone notification.
func milestoneMessage(kind models.NotificationType, count int) string {
	verb, noun := "liked", "likes"
	if kind == models.NotificationSaveMilestone {
		verb, noun = "saved", "saves"
	}
	if count == 1 {
		return fmt.Sprintf("Someone %s your recipe", verb)
	}
	return fmt.Sprintf("Your recipe reached %d %s", count, noun)
}

// NotifyMilestone records that recipeID reached count likes or saves and
// delivers the notification to ownerID. Delivery failures are logged only.
func (s *NotificationService) NotifyMilestone(ctx context.Context, ownerID, recipeID uint, kind models.NotificationType, count int) error {
	n := &models.Notification{
		UserID:   ownerID,
		Type:     kind,
		RecipeID: recipeID,
		Count:    count,
		Message:  milestoneMessage(kind, count),
	}
	if err := s.Repo.CreateNotification(ctx, n); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	for _, sender := range s.Senders {
		result := "sent"
		if err := sender.Deliver(ctx, n); err != nil {
			result = "failed"
			logger.Get().Warn("notification delivery failed",
				zap.String("sender", sender.Name()),
				zap.Uint("user_id", ownerID),
				zap.Uint("notification_id", n.ID),
				zap.Error(err),
			)
		}
		metrics.NotificationsSentTotal.WithLabelValues(string(kind), result).Inc()
	}
	return nil
}

// ListNotifications returns the user's most recent notifications.
func (s *NotificationService) ListNotifications(ctx context.Context, userID uint) ([]models.Notification, error) {
	return s.Repo.GetUserNotifications(ctx, userID, defaultNotificationLimit)
}

// MarkRead marks one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uint) error {
	return s.Repo.MarkNotificationRead(ctx, userID, notificationID)
}

// RegisterDevice records a push token for the user. Registering the same
// token again moves it to the new user and platform.
func (s *NotificationService) RegisterDevice(ctx context.Context, userID uint, token, platform string) (*models.DeviceToken, error) {
	token = strings.TrimSpace(token)
	platform = strings.ToLower(strings.TrimSpace(platform))
	if token == "" {
		return nil, NewValidationError("token is required")
	}
	if !validPlatforms[platform] {
		return nil, NewValidationError("platform must be one of ios, android or web")
	}

	device := &models.DeviceToken{UserID: userID, Token: token, Platform: platform}
	if err := s.Repo.UpsertDeviceToken(ctx, device); err != nil {
		return nil, fmt.Errorf("failed to register device: %w", err)
	}
	return device, nil
}

// ListDevices returns the user's registered push tokens.
func (s *NotificationService) ListDevices(ctx context.Context, userID uint) ([]models.DeviceToken, error) {
	return s.Repo.GetDeviceTokens(ctx, userID)
}
