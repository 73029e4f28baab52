package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/forkful-api/internal/service"
	"go.uber.org/zap"
)

// RecipeHandler is the handler for recipe-related requests.
type RecipeHandler struct {
	Service *service.RecipeService
}

// NewRecipeHandler is the constructor function for initializing a new RecipeHandler.
func NewRecipeHandler(recipeService *service.RecipeService) *RecipeHandler {
	return &RecipeHandler{Service: recipeService}
}

// ListRecipes returns a paginated list of the authenticated user's recipes.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	page := 1
	pageSize := 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	resp, err := h.Service.GetUserRecipes(c.Request.Context(), user.ID, page, pageSize)
	if err != nil {
		respondError(c, err, "Failed to list recipes", zap.Uint("user_id", user.ID))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetRecipe returns a recipe by ID.
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipeID, ok := pathID(c, "recipe_id", "recipe")
	if !ok {
		return
	}

	recipeResponse, err := h.Service.GetRecipeByID(c.Request.Context(), recipeID)
	if err != nil {
		respondError(c, err, "Failed to get recipe", zap.Uint("recipe_id", recipeID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipe": recipeResponse})
}

// CreateRecipe stores a manually written recipe.
func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var request service.RecipeInput
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	recipe, err := h.Service.CreateRecipe(c.Request.Context(), user.ID, request)
	if err != nil {
		respondError(c, err, "Failed to create recipe", zap.Uint("user_id", user.ID))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"recipe": service.ToRecipeResponse(recipe)})
}

// UpdateRecipe applies a partial update to one of the user's recipes.
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	recipeID, ok := pathID(c, "recipe_id", "recipe")
	if !ok {
		return
	}

	var request service.RecipeUpdate
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	recipe, err := h.Service.UpdateRecipe(c.Request.Context(), user.ID, recipeID, request)
	if err != nil {
		respondError(c, err, "Failed to update recipe", zap.Uint("recipe_id", recipeID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipe": service.ToRecipeResponse(recipe)})
}

// DeleteRecipe deletes a recipe by its ID.
func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	recipeID, ok := pathID(c, "recipe_id", "recipe")
	if !ok {
		return
	}

	if err := h.Service.DeleteRecipe(c.Request.Context(), user.ID, recipeID); err != nil {
		respondError(c, err, "Failed to delete recipe", zap.Uint("recipe_id", recipeID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Recipe deleted successfully"})
}
