package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	goaway "github.com/TwiN/go-away"
	"github.com/windoze95/forkful-api/internal/models"
	"github.com/windoze95/forkful-api/internal/repository"
)

const maxCollectionNameLength = 60

// CollectionService is the business logic layer for collections.
type CollectionService struct {
	Repo      repository.CollectionRepo
	profanity *goaway.ProfanityDetector
}

// CollectionResponse is the response object for a collection.
type CollectionResponse struct {
	ID          uint             `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	RecipeCount int              `json:"recipeCount"`
	Recipes     []RecipeResponse `json:"recipes,omitempty"`
}

// NewCollectionService is the constructor function for initializing a new CollectionService.
func NewCollectionService(repo repository.CollectionRepo) *CollectionService {
	return &CollectionService{
		Repo:      repo,
		profanity: newProfanityDetector(),
	}
}

// ToCollectionResponse converts a Collection to a CollectionResponse.
// Recipes are included only when withRecipes is set.
func ToCollectionResponse(c *models.Collection, withRecipes bool) *CollectionResponse {
	resp := &CollectionResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		RecipeCount: len(c.Recipes),
	}
	if withRecipes {
		resp.Recipes = make([]RecipeResponse, 0, len(c.Recipes))
		for _, r := range c.Recipes {
			resp.Recipes = append(resp.Recipes, *ToRecipeResponse(r))
		}
	}
	return resp
}

// ValidateCollectionName checks length and language of a collection name.
func (s *CollectionService) ValidateCollectionName(name string) error {
	if name == "" {
		return NewValidationError("name is required")
	}
	if utf8.RuneCountInString(name) > maxCollectionNameLength {
		return NewValidationError(fmt.Sprintf("name must be at most %d characters", maxCollectionNameLength))
	}
	if s.profanity.IsProfane(name) {
		return NewValidationError("name contains inappropriate language")
	}
	return nil
}

// CreateCollection creates a collection owned by ownerID. Names are unique per owner.
func (s *CollectionService) CreateCollection(ctx context.Context, ownerID uint, name, description string) (*models.Collection, error) {
	name = strings.TrimSpace(name)
	if err := s.ValidateCollectionName(name); err != nil {
		return nil, err
	}

	c := &models.Collection{
		OwnerID:     ownerID,
		Name:        name,
		Description: strings.TrimSpace(description),
	}
	if err := s.Repo.CreateCollection(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetUserCollections lists the collections owned by ownerID.
func (s *CollectionService) GetUserCollections(ctx context.Context, ownerID uint) ([]models.Collection, error) {
	return s.Repo.GetUserCollections(ctx, ownerID)
}

// GetCollection returns a collection owned by userID, with its recipes.
func (s *CollectionService) GetCollection(ctx context.Context, userID, collectionID uint) (*models.Collection, error) {
	c, err := s.Repo.GetCollectionByID(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if c.OwnerID != userID {
		return nil, repository.ErrForbidden
	}
	return c, nil
}

// DeleteCollection deletes a collection owned by userID.
func (s *CollectionService) DeleteCollection(ctx context.Context, userID, collectionID uint) error {
	if _, err := s.GetCollection(ctx, userID, collectionID); err != nil {
		return err
	}
	return s.Repo.DeleteCollection(ctx, collectionID)
}

// AddRecipe adds a recipe to a collection owned by userID.
func (s *CollectionService) AddRecipe(ctx context.Context, userID, collectionID, recipeID uint) error {
	if recipeID == 0 {
		return NewValidationError("recipe_id is required")
	}
	if _, err := s.GetCollection(ctx, userID, collectionID); err != nil {
		return err
	}
	return s.Repo.AddRecipeToCollection(ctx, collectionID, recipeID)
}

// RemoveRecipe removes a recipe from a collection owned by userID.
func (s *CollectionService) RemoveRecipe(ctx context.Context, userID, collectionID, recipeID uint) error {
	if _, err := s.GetCollection(ctx, userID, collectionID); err != nil {
		return err
	}
	return s.Repo.RemoveRecipeFromCollection(ctx, collectionID, recipeID)
}
