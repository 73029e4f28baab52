package repository

import (
	"context"

	"github.com/windoze95/forkful-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NotificationRepository stores notifications and device tokens.
type NotificationRepository struct {
	DB *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

// CreateNotification persists a notification.
func (r *NotificationRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	return r.DB.WithContext(ctx).Create(n).Error
}

// GetUserNotifications returns the user's most recent notifications.
func (r *NotificationRepository) GetUserNotifications(ctx context.Context, userID uint, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

// MarkNotificationRead marks one of the user's notifications as read.
func (r *NotificationRepository) MarkNotificationRead(ctx context.Context, userID, notificationID uint) error {
	result := r.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return NotFoundError{message: "notification not found"}
	}
	return nil
}

// UpsertDeviceToken registers a device token, moving it to the given user
// if another account registered it before.
func (r *NotificationRepository) UpsertDeviceToken(ctx context.Context, token *models.DeviceToken) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "platform", "updated_at", "deleted_at"}),
	}).Create(token).Error
}

// GetDeviceTokens lists the devices registered by a user.
func (r *NotificationRepository) GetDeviceTokens(ctx context.Context, userID uint) ([]models.DeviceToken, error) {
	var tokens []models.DeviceToken
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&tokens).Error
	return tokens, err
}
