package models

import (
	"github.com/lib/pq"
	"github.com/windoze95/forkful-api/internal/search"
	"gorm.io/gorm"
)

// Recipe is the model for a recipe.
type Recipe struct {
	gorm.Model
	Title        string         `gorm:"not null"`
	Description  string
	Ingredients  pq.StringArray `gorm:"type:text[]"`
	Instructions pq.StringArray `gorm:"type:text[]"`
	Tags         pq.StringArray `gorm:"type:text[]"`
	// SearchableFields is derived from Title, Ingredients and Tags. Never set it directly.
	SearchableFields pq.StringArray `gorm:"type:text[];index:idx_recipes_searchable_fields,type:gin"`
	IsExternal       bool           `gorm:"default:false;index"`
	IsDiscoverable   bool           `gorm:"default:false;index"`
	Difficulty       string         `gorm:"index"`
	CookTime         int
	Servings         int
	ImageURL         string
	SourceURL        string
	Source           RecipeSource `gorm:"type:text"`
	CreatedByID      uint         `gorm:"index"`
	CreatedBy        *User        `gorm:"foreignKey:CreatedByID"`
	LikeCount        int          `gorm:"default:0"`
	SaveCount        int          `gorm:"default:0"`
	ShareCount       int          `gorm:"default:0"`
}

// RecipeSource is the type for the RecipeSource enum.
type RecipeSource string

// RecipeSource enum values.
const (
	RecipeSourceManual   RecipeSource = "manual"
	RecipeSourceAI       RecipeSource = "ai"
	RecipeSourceSocial   RecipeSource = "social"
	RecipeSourceExternal RecipeSource = "external"
)

// IsValid checks if the RecipeSource is valid.
func (s RecipeSource) IsValid() bool {
	switch s {
	case RecipeSourceManual, RecipeSourceAI, RecipeSourceSocial, RecipeSourceExternal:
		return true
	default:
		return false
	}
}

// Discoverable reports whether recipes from this source belong in the
// community pool. Manually authored and external recipes never do.
func (s RecipeSource) Discoverable() bool {
	return s == RecipeSourceAI || s == RecipeSourceSocial
}

// RefreshSearchableFields regenerates SearchableFields and normalizes
// Difficulty from the current content.
func (r *Recipe) RefreshSearchableFields() {
	r.SearchableFields = search.BuildSearchableFields(r.Title, r.Ingredients, r.Tags)
	r.Difficulty = search.NormalizeDifficulty(r.Difficulty)
}

// BeforeSave is a GORM hook that keeps SearchableFields in step with the
// recipe content on every create and full save.
func (r *Recipe) BeforeSave(tx *gorm.DB) (err error) {
	if !r.Source.IsValid() {
		r.Source = RecipeSourceManual
	}
	r.RefreshSearchableFields()
	return nil
}
