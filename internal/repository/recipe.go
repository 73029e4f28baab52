package repository

import (
	"context"

	"github.com/lib/pq"
	"github.com/windoze95/forkful-api/internal/logger"
	"github.com/windoze95/forkful-api/internal/models"
	"github.com/windoze95/forkful-api/internal/search"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RecipeRepository is a repository for interacting with recipes.
type RecipeRepository struct {
	DB *gorm.DB
}

// NewRecipeRepository creates a new RecipeRepository.
func NewRecipeRepository(db *gorm.DB) *RecipeRepository {
	return &RecipeRepository{DB: db}
}

// GetRecipeByID retrieves a recipe by its ID.
func (r *RecipeRepository) GetRecipeByID(ctx context.Context, recipeID uint) (*models.Recipe, error) {
	var recipe models.Recipe

	err := r.DB.WithContext(ctx).
		Preload("CreatedBy", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username", "display_name", "photo_url")
		}).
		Where("id = ?", recipeID).
		First(&recipe).Error
	if err != nil {
		return nil, translateNotFound(err, "recipe not found")
	}

	return &recipe, nil
}

// GetExternalRecipeBySourceURL finds the catalog recipe imported from sourceURL.
func (r *RecipeRepository) GetExternalRecipeBySourceURL(ctx context.Context, sourceURL string) (*models.Recipe, error) {
	var recipe models.Recipe
	err := r.DB.WithContext(ctx).
		Where("is_external = ? AND source_url = ?", true, sourceURL).
		First(&recipe).Error
	if err != nil {
		return nil, translateNotFound(err, "catalog recipe not found")
	}
	return &recipe, nil
}

// GetUserRecipes returns a page of the recipes created by userID, newest first.
func (r *RecipeRepository) GetUserRecipes(ctx context.Context, userID uint, page, pageSize int) ([]models.Recipe, int64, error) {
	owned := func() *gorm.DB {
		return r.DB.WithContext(ctx).Model(&models.Recipe{}).Where("created_by_id = ?", userID)
	}

	var total int64
	if err := owned().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recipes []models.Recipe
	err := owned().Order("created_at DESC").
		Limit(pageSize).
		Offset(search.Offset(page, pageSize)).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}

	return recipes, total, nil
}

// CreateRecipe creates a new recipe. Searchable fields are derived by the
// model's BeforeSave hook.
func (r *RecipeRepository) CreateRecipe(ctx context.Context, recipe *models.Recipe) error {
	tx := r.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	if err := tx.Create(recipe).Error; err != nil {
		tx.Rollback()
		logger.Get().Error("failed to create recipe", zap.Error(err))
		return err
	}

	return tx.Commit().Error
}

// UpdateRecipe writes the editable content of recipe and regenerates its
// searchable fields in the same statement.
func (r *RecipeRepository) UpdateRecipe(ctx context.Context, recipe *models.Recipe) error {
	recipe.RefreshSearchableFields()

	result := r.DB.WithContext(ctx).Model(&models.Recipe{}).
		Where("id = ?", recipe.ID).
		Updates(map[string]interface{}{
			"title":             recipe.Title,
			"description":       recipe.Description,
			"ingredients":       recipe.Ingredients,
			"instructions":      recipe.Instructions,
			"tags":              recipe.Tags,
			"searchable_fields": recipe.SearchableFields,
			"difficulty":        recipe.Difficulty,
			"cook_time":         recipe.CookTime,
			"servings":          recipe.Servings,
			"source_url":        recipe.SourceURL,
		})
	if result.Error != nil {
		logger.Get().Error("failed to update recipe", zap.Uint("recipe_id", recipe.ID), zap.Error(result.Error))
		return result.Error
	}
	if result.RowsAffected == 0 {
		return NotFoundError{message: "recipe not found"}
	}
	return nil
}

// UpdateRecipeImageURL updates the image URL of a recipe.
func (r *RecipeRepository) UpdateRecipeImageURL(ctx context.Context, recipeID uint, imageURL string) error {
	err := r.DB.WithContext(ctx).Model(&models.Recipe{}).
		Where("id = ?", recipeID).
		UpdateColumn("image_url", imageURL).Error
	if err != nil {
		logger.Get().Error("failed to update recipe image URL", zap.Uint("recipe_id", recipeID), zap.Error(err))
	}
	return err
}

// DeleteRecipe deletes a recipe along with its likes and saves.
func (r *RecipeRepository) DeleteRecipe(ctx context.Context, recipeID uint) error {
	tx := r.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	for _, model := range []interface{}{&models.Like{}, &models.Save{}} {
		if err := tx.Where("recipe_id = ?", recipeID).Delete(model).Error; err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Exec("DELETE FROM collection_recipes WHERE recipe_id = ?", recipeID).Error; err != nil {
		tx.Rollback()
		return err
	}
	result := tx.Delete(&models.Recipe{}, recipeID)
	if result.Error != nil {
		tx.Rollback()
		logger.Get().Error("failed to delete recipe", zap.Uint("recipe_id", recipeID), zap.Error(result.Error))
		return result.Error
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return NotFoundError{message: "recipe not found"}
	}

	return tx.Commit().Error
}

// CountRecipes counts recipes matching filter.
func (r *RecipeRepository) CountRecipes(ctx context.Context, filter RecipeFilter) (int64, error) {
	var total int64
	err := applyFilter(r.DB.WithContext(ctx).Model(&models.Recipe{}), filter).Count(&total).Error
	return total, err
}

// FindRecipes returns one page of recipes matching filter.
func (r *RecipeRepository) FindRecipes(ctx context.Context, filter RecipeFilter, opts FindOptions) ([]models.Recipe, error) {
	db := applyFilter(r.DB.WithContext(ctx).Model(&models.Recipe{}), filter)
	if opts.Ordered {
		db = db.Order("created_at DESC")
	}
	if opts.Limit > 0 {
		db = db.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		db = db.Offset(opts.Offset)
	}

	var recipes []models.Recipe
	if err := db.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// SampleRecipes returns up to n recipes matching filter in id order, so the
// same rows come back in the same order until the table changes.
func (r *RecipeRepository) SampleRecipes(ctx context.Context, filter RecipeFilter, n int) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := applyFilter(r.DB.WithContext(ctx).Model(&models.Recipe{}), filter).
		Order("id").
		Limit(n).
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}
	return recipes, nil
}

// LikedRecipeIDs returns the subset of recipeIDs liked by userID.
func (r *RecipeRepository) LikedRecipeIDs(ctx context.Context, userID uint, recipeIDs []uint) ([]uint, error) {
	if len(recipeIDs) == 0 {
		return nil, nil
	}
	var liked []uint
	err := r.DB.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &liked).Error
	return liked, err
}

// applyFilter adds the partition, difficulty and any-of token predicates.
func applyFilter(db *gorm.DB, filter RecipeFilter) *gorm.DB {
	switch filter.Partition {
	case PartitionExternal:
		db = db.Where("is_external = ?", true)
	case PartitionCommunity:
		db = db.Where("is_discoverable = ? AND is_external IS NOT TRUE", true)
	}
	if filter.Difficulty != "" {
		db = db.Where("difficulty = ?", filter.Difficulty)
	}
	if tokens := capTokens(filter.Tokens); len(tokens) > 0 {
		db = db.Where("searchable_fields && ?::text[]", pq.StringArray(tokens))
	}
	return db
}

func capTokens(tokens []string) []string {
	if len(tokens) > search.AnyOfLimit {
		return tokens[:search.AnyOfLimit]
	}
	return tokens
}
