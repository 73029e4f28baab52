package handlers

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// allowedImageTypes is the set of accepted image file extensions.
var allowedImageTypes = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

const maxImageSize = 10 << 20

// UploadImage handles POST /v1/recipes/:recipe_id/image with a multipart
// "image" file and replaces the recipe's photo.
func (h *RecipeHandler) UploadImage(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	recipeID, ok := pathID(c, "recipe_id", "recipe")
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image file is required"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageTypes[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported image type. Allowed: jpg, png, webp"})
		return
	}
	if header.Size > maxImageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image exceeds maximum size of 10MB"})
		return
	}

	imgBytes, err := io.ReadAll(io.LimitReader(file, maxImageSize))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read image"})
		return
	}

	imageURL, err := h.Service.UploadRecipeImage(c.Request.Context(), user.ID, recipeID, imgBytes)
	if err != nil {
		respondError(c, err, "Failed to upload image",
			zap.Uint("user_id", user.ID),
			zap.Uint("recipe_id", recipeID),
		)
		return
	}

	c.JSON(http.StatusOK, gin.H{"image_url": imageURL})
}
