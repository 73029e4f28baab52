package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/forkful-api/internal/service"
	"go.uber.org/zap"
)

// CollectionHandler is the handler for collection-related requests.
type CollectionHandler struct {
	Service *service.CollectionService
}

// NewCollectionHandler creates a new CollectionHandler.
func NewCollectionHandler(collectionService *service.CollectionService) *CollectionHandler {
	return &CollectionHandler{Service: collectionService}
}

// CreateCollection handles POST /v1/collections
func (h *CollectionHandler) CreateCollection(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var request struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	collection, err := h.Service.CreateCollection(c.Request.Context(), user.ID, request.Name, request.Description)
	if err != nil {
		respondError(c, err, "Failed to create collection", zap.Uint("user_id", user.ID))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"collection": service.ToCollectionResponse(collection, false)})
}

// ListCollections handles GET /v1/collections
func (h *CollectionHandler) ListCollections(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	collections, err := h.Service.GetUserCollections(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err, "Failed to list collections", zap.Uint("user_id", user.ID))
		return
	}

	resp := make([]*service.CollectionResponse, 0, len(collections))
	for i := range collections {
		resp = append(resp, service.ToCollectionResponse(&collections[i], false))
	}
	c.JSON(http.StatusOK, gin.H{"collections": resp})
}

// GetCollection handles GET /v1/collections/:collection_id
func (h *CollectionHandler) GetCollection(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	collectionID, ok := pathID(c, "collection_id", "collection")
	if !ok {
		return
	}

	collection, err := h.Service.GetCollection(c.Request.Context(), user.ID, collectionID)
	if err != nil {
		respondError(c, err, "Failed to get collection", zap.Uint("collection_id", collectionID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"collection": service.ToCollectionResponse(collection, true)})
}

// DeleteCollection handles DELETE /v1/collections/:collection_id
func (h *CollectionHandler) DeleteCollection(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	collectionID, ok := pathID(c, "collection_id", "collection")
	if !ok {
		return
	}

	if err := h.Service.DeleteCollection(c.Request.Context(), user.ID, collectionID); err != nil {
		respondError(c, err, "Failed to delete collection", zap.Uint("collection_id", collectionID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Collection deleted successfully"})
}

// AddRecipe handles POST /v1/collections/:collection_id/recipes
func (h *CollectionHandler) AddRecipe(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	collectionID, ok := pathID(c, "collection_id", "collection")
	if !ok {
		return
	}

	var request struct {
		RecipeID uint `json:"recipe_id"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := h.Service.AddRecipe(c.Request.Context(), user.ID, collectionID, request.RecipeID); err != nil {
		respondError(c, err, "Failed to add recipe to collection",
			zap.Uint("collection_id", collectionID),
			zap.Uint("recipe_id", request.RecipeID),
		)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Recipe added to collection"})
}

// RemoveRecipe handles DELETE /v1/collections/:collection_id/recipes/:recipe_id
func (h *CollectionHandler) RemoveRecipe(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	collectionID, ok := pathID(c, "collection_id", "collection")
	if !ok {
		return
	}
	recipeID, ok := pathID(c, "recipe_id", "recipe")
	if !ok {
		return
	}

	if err := h.Service.RemoveRecipe(c.Request.Context(), user.ID, collectionID, recipeID); err != nil {
		respondError(c, err, "Failed to remove recipe from collection",
			zap.Uint("collection_id", collectionID),
			zap.Uint("recipe_id", recipeID),
		)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Recipe removed from collection"})
}
