package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/forkful-api/internal/service"
	"go.uber.org/zap"
)

// NotificationHandler serves stored notifications and device registration.
type NotificationHandler struct {
	Service *service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{Service: notificationService}
}

// ListNotifications handles GET /v1/notifications
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	notifications, err := h.Service.ListNotifications(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err, "Failed to list notifications", zap.Uint("user_id", user.ID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": service.ToNotificationResponses(notifications)})
}

// MarkRead handles PUT /v1/notifications/:notification_id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	notificationID, ok := pathID(c, "notification_id", "notification")
	if !ok {
		return
	}

	if err := h.Service.MarkRead(c.Request.Context(), user.ID, notificationID); err != nil {
		respondError(c, err, "Failed to mark notification read", zap.Uint("notification_id", notificationID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// RegisterDevice handles POST /v1/notifications/devices
func (h *NotificationHandler) RegisterDevice(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var request struct {
		Token    string `json:"token"`
		Platform string `json:"platform"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	device, err := h.Service.RegisterDevice(c.Request.Context(), user.ID, request.Token, request.Platform)
	if err != nil {
		respondError(c, err, "Failed to register device", zap.Uint("user_id", user.ID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"device": service.ToDeviceResponse(device)})
}

// ListDevices handles GET /v1/notifications/devices
func (h *NotificationHandler) ListDevices(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	devices, err := h.Service.ListDevices(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err, "Failed to list devices", zap.Uint("user_id", user.ID))
		return
	}

	resp := make([]service.DeviceResponse, 0, len(devices))
	for i := range devices {
		resp = append(resp, service.ToDeviceResponse(&devices[i]))
	}
	c.JSON(http.StatusOK, gin.H{"devices": resp})
}
