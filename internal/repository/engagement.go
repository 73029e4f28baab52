package repository

import (
	"context"

	"github.com/windoze95/forkful-api/internal/logger"
	"github.com/windoze95/forkful-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EngagementRepository stores likes, saves and share counts.
type EngagementRepository struct {
	DB *gorm.DB
}

// NewEngagementRepository creates a new EngagementRepository.
func NewEngagementRepository(db *gorm.DB) *EngagementRepository {
	return &EngagementRepository{DB: db}
}

// ToggleLike adds the user's like to the recipe, or removes it if present.
func (r *EngagementRepository) ToggleLike(ctx context.Context, userID, recipeID uint) (*ToggleResult, error) {
	return r.toggle(ctx, recipeID, "like_count",
		func(rec *models.Recipe) int { return rec.LikeCount },
		&models.Like{},
		&models.Like{UserID: userID, RecipeID: recipeID},
		userID,
	)
}

// ToggleSave adds the user's save to the recipe, or removes it if present.
func (r *EngagementRepository) ToggleSave(ctx context.Context, userID, recipeID uint) (*ToggleResult, error) {
	return r.toggle(ctx, recipeID, "save_count",
		func(rec *models.Recipe) int { return rec.SaveCount },
		&models.Save{},
		&models.Save{UserID: userID, RecipeID: recipeID},
		userID,
	)
}

// toggle locks the recipe row, flips the join row and adjusts column by one,
// all in one transaction so concurrent toggles cannot lose updates.
func (r *EngagementRepository) toggle(
	ctx context.Context,
	recipeID uint,
	column string,
	current func(*models.Recipe) int,
	model interface{},
	row interface{},
	userID uint,
) (*ToggleResult, error) {
	tx := r.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	var recipe models.Recipe
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "created_by_id", "like_count", "save_count").
		First(&recipe, recipeID).Error
	if err != nil {
		tx.Rollback()
		return nil, translateNotFound(err, "recipe not found")
	}

	deleted := tx.Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(model)
	if deleted.Error != nil {
		tx.Rollback()
		return nil, deleted.Error
	}

	delta := -1
	if deleted.RowsAffected == 0 {
		if err := tx.Create(row).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		delta = 1
	}

	err = tx.Model(&models.Recipe{}).
		Where("id = ?", recipeID).
		UpdateColumn(column, gorm.Expr("GREATEST("+column+" + ?, 0)", delta)).Error
	if err != nil {
		tx.Rollback()
		logger.Get().Error("failed to update engagement counter",
			zap.Uint("recipe_id", recipeID), zap.String("column", column), zap.Error(err))
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	count := current(&recipe) + delta
	if count < 0 {
		count = 0
	}
	return &ToggleResult{Active: delta > 0, Count: count, OwnerID: recipe.CreatedByID}, nil
}

// IncrementShare atomically bumps the share count and returns the new value.
func (r *EngagementRepository) IncrementShare(ctx context.Context, recipeID uint) (int, error) {
	var recipe models.Recipe
	result := r.DB.WithContext(ctx).Model(&recipe).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "share_count"}}}).
		Where("id = ?", recipeID).
		UpdateColumn("share_count", gorm.Expr("share_count + 1"))
	if result.Error != nil {
		logger.Get().Error("failed to increment share count", zap.Uint("recipe_id", recipeID), zap.Error(result.Error))
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, NotFoundError{message: "recipe not found"}
	}
	return recipe.ShareCount, nil
}
