package models

import "time"

// Like records that a user liked a recipe.
type Like struct {
	ID        uint `gorm:"primarykey"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_like_user_recipe"`
	RecipeID  uint `gorm:"not null;uniqueIndex:idx_like_user_recipe;index"`
	CreatedAt time.Time
}

// Save records that a user saved a recipe.
type Save struct {
	ID        uint `gorm:"primarykey"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_save_user_recipe"`
	RecipeID  uint `gorm:"not null;uniqueIndex:idx_save_user_recipe;index"`
	CreatedAt time.Time
}

// Collection is a named, user-owned list of recipes.
type Collection struct {
	ID          uint `gorm:"primarykey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	OwnerID     uint      `gorm:"not null;uniqueIndex:idx_collection_owner_name"`
	Name        string    `gorm:"not null;uniqueIndex:idx_collection_owner_name"`
	Description string
	Recipes     []*Recipe `gorm:"many2many:collection_recipes;"`
}
