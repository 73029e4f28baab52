package models

import "gorm.io/gorm"

// NotificationType is the type for the NotificationType enum.
type NotificationType string

// NotificationType enum values.
const (
	NotificationLikeMilestone NotificationType = "like_milestone"
	NotificationSaveMilestone NotificationType = "save_milestone"
)

// Notification is a message delivered to a user about their recipes.
type Notification struct {
	gorm.Model
	UserID   uint             `gorm:"not null;index"`
	Type     NotificationType `gorm:"type:text"`
	RecipeID uint
	Count    int
	Message  string
	Read     bool `gorm:"default:false"`
}

// DeviceToken is a push delivery target registered by a user's device.
type DeviceToken struct {
	gorm.Model
	UserID   uint   `gorm:"not null;index"`
	Token    string `gorm:"unique;not null"`
	Platform string
}
