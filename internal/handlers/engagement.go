package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/forkful-api/internal/service"
	"go.uber.org/zap"
)

// EngagementHandler serves likes, saves and shares.
type EngagementHandler struct {
	Service *service.EngagementService
}

// NewEngagementHandler creates a new EngagementHandler.
func NewEngagementHandler(engagementService *service.EngagementService) *EngagementHandler {
	return &EngagementHandler{Service: engagementService}
}

type toggleFunc func(ctx context.Context, userID, recipeID uint) (*service.EngagementResponse, error)

func (h *EngagementHandler) toggle(c *gin.Context, fn toggleFunc, action string) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	recipeID, ok := pathID(c, "recipe_id", "recipe")
	if !ok {
		return
	}

	resp, err := fn(c.Request.Context(), user.ID, recipeID)
	if err != nil {
		respondError(c, err, "Failed to "+action+" recipe",
			zap.Uint("user_id", user.ID),
			zap.Uint("recipe_id", recipeID),
		)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ToggleLike handles POST /v1/recipes/:recipe_id/like
func (h *EngagementHandler) ToggleLike(c *gin.Context) {
	h.toggle(c, h.Service.ToggleLike, "like")
}

// ToggleSave handles POST /v1/recipes/:recipe_id/save
func (h *EngagementHandler) ToggleSave(c *gin.Context) {
	h.toggle(c, h.Service.ToggleSave, "save")
}

// Share handles POST /v1/recipes/:recipe_id/share
func (h *EngagementHandler) Share(c *gin.Context) {
	recipeID, ok := pathID(c, "recipe_id", "recipe")
	if !ok {
		return
	}

	resp, err := h.Service.Share(c.Request.Context(), recipeID)
	if err != nil {
		respondError(c, err, "Failed to share recipe", zap.Uint("recipe_id", recipeID))
		return
	}

	c.JSON(http.StatusOK, resp)
}
