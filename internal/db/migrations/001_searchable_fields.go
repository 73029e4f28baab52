package migrations

import (
	"github.com/windoze95/forkful-api/internal/logger"
	"github.com/windoze95/forkful-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const backfillBatchSize = 500

// BackfillSearchableFields regenerates searchable_fields for recipes written
// before the column existed, or while it was derived differently.
//
// Recipes whose stored fields already match are left untouched, so running
// it again is a no-op.
func BackfillSearchableFields(db *gorm.DB) error {
	var recipes []models.Recipe
	updated := 0

	result := db.Select("id", "title", "ingredients", "tags", "difficulty", "searchable_fields").
		FindInBatches(&recipes, backfillBatchSize, func(tx *gorm.DB, batch int) error {
			for i := range recipes {
				recipe := &recipes[i]
				before := append([]string(nil), recipe.SearchableFields...)
				recipe.RefreshSearchableFields()
				if equalFields(before, recipe.SearchableFields) {
					continue
				}

				// UpdateColumns skips hooks, which would recompute the same value
				if err := db.Model(&models.Recipe{}).Where("id = ?", recipe.ID).UpdateColumns(map[string]interface{}{
					"searchable_fields": recipe.SearchableFields,
					"difficulty":        recipe.Difficulty,
				}).Error; err != nil {
					logger.Get().Error("failed to backfill searchable fields",
						zap.Uint("recipe_id", recipe.ID),
						zap.Error(err))
					continue // skip failed recipes rather than aborting the whole backfill
				}
				updated++
			}
			return nil
		})
	if result.Error != nil {
		return result.Error
	}

	logger.Get().Info("searchable fields backfill complete", zap.Int("updated", updated))
	return nil
}

func equalFields(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
