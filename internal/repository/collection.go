package repository

import (
	"context"

	"github.com/windoze95/forkful-api/internal/logger"
	"github.com/windoze95/forkful-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CollectionRepository is a repository for user collections.
type CollectionRepository struct {
	DB *gorm.DB
}

// NewCollectionRepository creates a new CollectionRepository.
func NewCollectionRepository(db *gorm.DB) *CollectionRepository {
	return &CollectionRepository{DB: db}
}

// CreateCollection creates a collection. Names are unique per owner.
func (r *CollectionRepository) CreateCollection(ctx context.Context, collection *models.Collection) error {
	err := r.DB.WithContext(ctx).Omit("Recipes").Create(collection).Error
	if isUniqueViolation(err, "") {
		return ConflictError{message: "a collection with that name already exists"}
	}
	if err != nil {
		logger.Get().Error("failed to create collection", zap.Uint("owner_id", collection.OwnerID), zap.Error(err))
	}
	return err
}

// GetCollectionByID retrieves a collection and its recipes.
func (r *CollectionRepository) GetCollectionByID(ctx context.Context, collectionID uint) (*models.Collection, error) {
	var collection models.Collection
	err := r.DB.WithContext(ctx).
		Preload("Recipes", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipes.created_at DESC")
		}).
		First(&collection, collectionID).Error
	if err != nil {
		return nil, translateNotFound(err, "collection not found")
	}
	return &collection, nil
}

// GetUserCollections lists the collections owned by ownerID, newest first.
// Only recipe ids are loaded.
func (r *CollectionRepository) GetUserCollections(ctx context.Context, ownerID uint) ([]models.Collection, error) {
	var collections []models.Collection
	err := r.DB.WithContext(ctx).
		Preload("Recipes", func(db *gorm.DB) *gorm.DB {
			return db.Select("recipes.id")
		}).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&collections).Error
	return collections, err
}

// DeleteCollection removes a collection and its recipe links.
func (r *CollectionRepository) DeleteCollection(ctx context.Context, collectionID uint) error {
	tx := r.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	if err := tx.Exec("DELETE FROM collection_recipes WHERE collection_id = ?", collectionID).Error; err != nil {
		tx.Rollback()
		return err
	}
	result := tx.Delete(&models.Collection{}, collectionID)
	if result.Error != nil {
		tx.Rollback()
		return result.Error
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return NotFoundError{message: "collection not found"}
	}

	return tx.Commit().Error
}

// AddRecipeToCollection links a recipe to a collection.
func (r *CollectionRepository) AddRecipeToCollection(ctx context.Context, collectionID, recipeID uint) error {
	tx := r.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	var recipe models.Recipe
	if err := tx.Select("id").First(&recipe, recipeID).Error; err != nil {
		tx.Rollback()
		return translateNotFound(err, "recipe not found")
	}

	var linked int64
	err := tx.Table("collection_recipes").
		Where("collection_id = ? AND recipe_id = ?", collectionID, recipeID).
		Count(&linked).Error
	if err != nil {
		tx.Rollback()
		return err
	}
	if linked > 0 {
		tx.Rollback()
		return ConflictError{message: "recipe already in collection"}
	}

	collection := models.Collection{ID: collectionID}
	if err := tx.Model(&collection).Association("Recipes").Append(&recipe); err != nil {
		tx.Rollback()
		if isUniqueViolation(err, "") {
			return ConflictError{message: "recipe already in collection"}
		}
		return err
	}

	return tx.Commit().Error
}

// RemoveRecipeFromCollection unlinks a recipe from a collection.
func (r *CollectionRepository) RemoveRecipeFromCollection(ctx context.Context, collectionID, recipeID uint) error {
	result := r.DB.WithContext(ctx).
		Exec("DELETE FROM collection_recipes WHERE collection_id = ? AND recipe_id = ?", collectionID, recipeID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return NotFoundError{message: "recipe not in collection"}
	}
	return nil
}
