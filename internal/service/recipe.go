package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/windoze95/forkful-api/internal/config"
	"github.com/windoze95/forkful-api/internal/logger"
	"github.com/windoze95/forkful-api/internal/models"
	"github.com/windoze95/forkful-api/internal/repository"
	"github.com/windoze95/forkful-api/internal/s3"
	"github.com/windoze95/forkful-api/internal/search"
	"go.uber.org/zap"
)

// maxPageSize caps the page size of recipe listings.
const maxPageSize = 100

// ImageStore stores recipe images and returns their public URL.
type ImageStore interface {
	Upload(ctx context.Context, key string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// RecipeService is the business logic layer for recipe-related operations.
type RecipeService struct {
	Cfg   *config.Config
	Repo  repository.RecipeRepo
	Store ImageStore
}

// RecipeResponse is the response object for recipe-related operations.
type RecipeResponse struct {
	ID             uint      `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Ingredients    []string  `json:"ingredients"`
	Instructions   []string  `json:"instructions"`
	Tags           []string  `json:"tags"`
	Difficulty     string    `json:"difficulty,omitempty"`
	CookTime       int       `json:"cookTime"`
	Servings       int       `json:"servings"`
	ImageURL       string    `json:"imageUrl"`
	SourceURL      string    `json:"sourceUrl,omitempty"`
	Source         string    `json:"source"`
	IsExternal     bool      `json:"isExternal"`
	IsDiscoverable bool      `json:"isDiscoverable"`
	OwnerID        uint      `json:"ownerId"`
	LikeCount      int       `json:"likeCount"`
	SaveCount      int       `json:"saveCount"`
	ShareCount     int       `json:"shareCount"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// RecipeListResponse is a page of the caller's recipes.
type RecipeListResponse struct {
	Recipes    []RecipeResponse  `json:"recipes"`
	Pagination search.Pagination `json:"pagination"`
}

// RecipeInput is the body of a manual recipe create.
type RecipeInput struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	Tags         []string `json:"tags"`
	Difficulty   string   `json:"difficulty"`
	CookTime     int      `json:"cook_time"`
	Servings     int      `json:"servings"`
	SourceURL    string   `json:"source_url"`
}

// RecipeUpdate is a partial recipe edit. Nil fields are left unchanged.
type RecipeUpdate struct {
	Title        *string   `json:"title"`
	Description  *string   `json:"description"`
	Ingredients  *[]string `json:"ingredients"`
	Instructions *[]string `json:"instructions"`
	Tags         *[]string `json:"tags"`
	Difficulty   *string   `json:"difficulty"`
	CookTime     *int      `json:"cook_time"`
	Servings     *int      `json:"servings"`
}

// NewRecipeService is the constructor function for initializing a new RecipeService
func NewRecipeService(cfg *config.Config, repo repository.RecipeRepo, store ImageStore) *RecipeService {
	return &RecipeService{
		Cfg:   cfg,
		Repo:  repo,
		Store: store,
	}
}

// ToRecipeResponse converts a Recipe to a RecipeResponse.
func ToRecipeResponse(r *models.Recipe) *RecipeResponse {
	return &RecipeResponse{
		ID:             r.ID,
		Title:          r.Title,
		Description:    r.Description,
		Ingredients:    nonNil(r.Ingredients),
		Instructions:   nonNil(r.Instructions),
		Tags:           nonNil(r.Tags),
		Difficulty:     r.Difficulty,
		CookTime:       r.CookTime,
		Servings:       r.Servings,
		ImageURL:       r.ImageURL,
		SourceURL:      r.SourceURL,
		Source:         string(r.Source),
		IsExternal:     r.IsExternal,
		IsDiscoverable: r.IsDiscoverable,
		OwnerID:        r.CreatedByID,
		LikeCount:      r.LikeCount,
		SaveCount:      r.SaveCount,
		ShareCount:     r.ShareCount,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// cleanList trims entries and drops blanks.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func validateDifficulty(d string) (string, error) {
	d = strings.TrimSpace(d)
	if d == "" {
		return "", nil
	}
	if !search.IsValidDifficulty(d) {
		return "", ErrInvalidDifficulty
	}
	return search.NormalizeDifficulty(d), nil
}

// CreateRecipe stores a manually authored recipe. Manual recipes never enter
// the community pool.
func (s *RecipeService) CreateRecipe(ctx context.Context, userID uint, in RecipeInput) (*models.Recipe, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, NewValidationError("title is required")
	}
	difficulty, err := validateDifficulty(in.Difficulty)
	if err != nil {
		return nil, err
	}
	if in.CookTime < 0 || in.Servings < 0 {
		return nil, NewValidationError("cook_time and servings cannot be negative")
	}

	recipe := &models.Recipe{
		Title:          title,
		Description:    strings.TrimSpace(in.Description),
		Ingredients:    cleanList(in.Ingredients),
		Instructions:   cleanList(in.Instructions),
		Tags:           cleanList(in.Tags),
		Difficulty:     difficulty,
		CookTime:       in.CookTime,
		Servings:       in.Servings,
		SourceURL:      strings.TrimSpace(in.SourceURL),
		Source:         models.RecipeSourceManual,
		IsDiscoverable: false,
		CreatedByID:    userID,
	}
	if err := s.Repo.CreateRecipe(ctx, recipe); err != nil {
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}
	return recipe, nil
}

// GetRecipeByID fetches a recipe by its ID.
func (s *RecipeService) GetRecipeByID(ctx context.Context, recipeID uint) (*RecipeResponse, error) {
	recipe, err := s.Repo.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	return ToRecipeResponse(recipe), nil
}

// GetUserRecipes returns a page of the user's recipes, newest first.
func (s *RecipeService) GetUserRecipes(ctx context.Context, userID uint, page, pageSize int) (*RecipeListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	pageSize = min(pageSize, maxPageSize)

	recipes, total, err := s.Repo.GetUserRecipes(ctx, userID, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to get user recipes: %w", err)
	}

	resp := &RecipeListResponse{
		Recipes:    make([]RecipeResponse, 0, len(recipes)),
		Pagination: search.NewPagination(total, page, pageSize),
	}
	for i := range recipes {
		resp.Recipes = append(resp.Recipes, *ToRecipeResponse(&recipes[i]))
	}
	return resp, nil
}

// getOwnedRecipe loads a recipe and checks that userID owns it.
func (s *RecipeService) getOwnedRecipe(ctx context.Context, userID, recipeID uint) (*models.Recipe, error) {
	recipe, err := s.Repo.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if recipe.CreatedByID != userID {
		return nil, repository.ErrForbidden
	}
	return recipe, nil
}

// UpdateRecipe applies a partial edit to a recipe owned by userID. The
// repository regenerates searchable fields from the new content.
func (s *RecipeService) UpdateRecipe(ctx context.Context, userID, recipeID uint, upd RecipeUpdate) (*models.Recipe, error) {
	recipe, err := s.getOwnedRecipe(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return nil, NewValidationError("title cannot be empty")
		}
		recipe.Title = title
	}
	if upd.Description != nil {
		recipe.Description = strings.TrimSpace(*upd.Description)
	}
	if upd.Ingredients != nil {
		recipe.Ingredients = cleanList(*upd.Ingredients)
	}
	if upd.Instructions != nil {
		recipe.Instructions = cleanList(*upd.Instructions)
	}
	if upd.Tags != nil {
		recipe.Tags = cleanList(*upd.Tags)
	}
	if upd.Difficulty != nil {
		if recipe.Difficulty, err = validateDifficulty(*upd.Difficulty); err != nil {
			return nil, err
		}
	}
	if upd.CookTime != nil {
		if *upd.CookTime < 0 {
			return nil, NewValidationError("cook_time cannot be negative")
		}
		recipe.CookTime = *upd.CookTime
	}
	if upd.Servings != nil {
		if *upd.Servings < 0 {
			return nil, NewValidationError("servings cannot be negative")
		}
		recipe.Servings = *upd.Servings
	}

	if err := s.Repo.UpdateRecipe(ctx, recipe); err != nil {
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}
	return recipe, nil
}

// DeleteRecipe deletes a recipe owned by userID. Removing its stored image is
// best effort.
func (s *RecipeService) DeleteRecipe(ctx context.Context, userID, recipeID uint) error {
	recipe, err := s.getOwnedRecipe(ctx, userID, recipeID)
	if err != nil {
		return err
	}

	if err := s.Repo.DeleteRecipe(ctx, recipeID); err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}

	if s.Store != nil && s3.IsRecipeImageURL(recipe.ImageURL, recipeID) {
		if err := s.Store.Delete(ctx, s3.GenerateS3Key(recipeID)); err != nil {
			logger.Get().Warn("failed to delete recipe image",
				zap.Uint("recipe_id", recipeID),
				zap.Error(err),
			)
		}
	}
	return nil
}

// UploadRecipeImage stores a new image for a recipe owned by userID and
// returns its URL.
func (s *RecipeService) UploadRecipeImage(ctx context.Context, userID, recipeID uint, data []byte) (string, error) {
	if _, err := s.getOwnedRecipe(ctx, userID, recipeID); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", NewValidationError("image is empty")
	}
	if s.Store == nil {
		return "", fmt.Errorf("image storage is not configured")
	}

	imageURL, err := s.Store.Upload(ctx, s3.GenerateS3Key(recipeID), data)
	if err != nil {
		return "", fmt.Errorf("failed to upload recipe image: %w", err)
	}
	if err := s.Repo.UpdateRecipeImageURL(ctx, recipeID, imageURL); err != nil {
		return "", fmt.Errorf("failed to save recipe image url: %w", err)
	}
	return imageURL, nil
}
