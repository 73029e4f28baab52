package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/windoze95/forkful-api/internal/logger"
	"github.com/windoze95/forkful-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserRepository is a repository for interacting with users.
type UserRepository struct {
	DB *gorm.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// CreateUser creates a new user.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	tx := r.DB.WithContext(ctx).Begin()
	if err := tx.Create(user).Error; err != nil {
		tx.Rollback()
		return nil, translateUserConflict(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, translateUserConflict(err)
	}

	return user, nil
}

func translateUserConflict(err error) error {
	switch {
	case isUniqueViolation(err, "username"):
		return ConflictError{message: "username already in use"}
	case isUniqueViolation(err, "email"):
		return ConflictError{message: "email already in use"}
	}
	return err
}

// GetUserByID retrieves a user by their ID.
func (r *UserRepository) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Preload("Settings").
		Where("id = ?", userID).
		First(&user).Error; err != nil {
		return nil, translateNotFound(err, "user not found")
	}

	return &user, nil
}

// GetUserAuthByUsername retrieves a user's authentication information by their username.
func (r *UserRepository) GetUserAuthByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Preload("Auth").Preload("Settings").
		Where("LOWER(username) = ?", strings.ToLower(username)).
		First(&user).Error; err != nil {
		return nil, translateNotFound(err, "user not found")
	}

	return &user, nil
}

// UsernameExists checks if a username already exists.
func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("LOWER(username) = ?", strings.ToLower(username)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateUserProfile applies the non-nil fields of update.
func (r *UserRepository) UpdateUserProfile(ctx context.Context, userID uint, update ProfileUpdate) error {
	tx := r.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	fields := map[string]interface{}{}
	if update.DisplayName != nil {
		fields["display_name"] = *update.DisplayName
	}
	if update.PhotoURL != nil {
		fields["photo_url"] = *update.PhotoURL
	}
	if len(fields) > 0 {
		result := tx.Model(&models.User{}).Where("id = ?", userID).Updates(fields)
		if result.Error != nil {
			tx.Rollback()
			logger.Get().Error("failed to update user profile", zap.Uint("user_id", userID), zap.Error(result.Error))
			return result.Error
		}
		if result.RowsAffected == 0 {
			tx.Rollback()
			return NotFoundError{message: "user not found"}
		}
	}

	if update.ShowProfileInCommunity != nil {
		var settings models.UserSettings
		err := tx.Where("user_id = ?", userID).First(&settings).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			settings = models.UserSettings{UserID: userID, ShowProfileInCommunity: update.ShowProfileInCommunity}
			err = tx.Create(&settings).Error
		case err == nil:
			err = tx.Model(&settings).Update("show_profile_in_community", *update.ShowProfileInCommunity).Error
		}
		if err != nil {
			tx.Rollback()
			logger.Get().Error("failed to update user settings", zap.Uint("user_id", userID), zap.Error(err))
			return err
		}
	}

	return tx.Commit().Error
}

// GetPublicProfile returns the community-visible profile of a user.
func (r *UserRepository) GetPublicProfile(ctx context.Context, userID uint) (*models.PublicProfile, error) {
	user, err := r.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := user.PublicProfile()
	return &profile, nil
}
