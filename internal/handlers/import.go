package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/forkful-api/internal/service"
	"go.uber.org/zap"
)

// ImportHandler handles AI recipe generation and social imports.
type ImportHandler struct {
	Service *service.GenerateService
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(generateService *service.GenerateService) *ImportHandler {
	return &ImportHandler{Service: generateService}
}

// GenerateRecipe handles POST /v1/recipes/generate
func (h *ImportHandler) GenerateRecipe(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var request struct {
		Prompt string `json:"prompt" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required"})
		return
	}

	recipe, err := h.Service.GenerateRecipe(c.Request.Context(), user.ID, request.Prompt)
	if err != nil {
		respondError(c, err, "Failed to generate recipe", zap.Uint("user_id", user.ID))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"recipe": service.ToRecipeResponse(recipe)})
}

// ImportSocial handles POST /v1/recipes/import/social
func (h *ImportHandler) ImportSocial(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var request struct {
		URL string `json:"url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	recipe, err := h.Service.ImportSocial(c.Request.Context(), user.ID, request.URL)
	if err != nil {
		respondError(c, err, "Failed to import recipe",
			zap.Uint("user_id", user.ID),
			zap.String("url", request.URL),
		)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"recipe": service.ToRecipeResponse(recipe)})
}
