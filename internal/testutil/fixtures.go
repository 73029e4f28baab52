package testutil

import (
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/windoze95/forkful-api/internal/ai"
	"github.com/windoze95/forkful-api/internal/models"
	"gorm.io/gorm"
)

// TestUser creates a test user with all associated records populated.
func TestUser() *models.User {
	return &models.User{
		Model:       gorm.Model{ID: 1},
		Username:    "testuser",
		DisplayName: "Test Cook",
		PhotoURL:    "https://example.com/avatar.jpg",
		Email:       "test@example.com",
		Auth: &models.UserAuth{
			Model:          gorm.Model{ID: 1},
			UserID:         1,
			HashedPassword: "$2a$10$abcdefghijklmnopqrstuuABCDEFGHIJKLMNOPQRSTUVWXYZ012",
			AuthType:       models.Standard,
		},
		Settings: &models.UserSettings{
			Model:  gorm.Model{ID: 1},
			UserID: 1,
		},
	}
}

// TestRecipe creates a discoverable AI recipe owned by user 1.
func TestRecipe() *models.Recipe {
	return &models.Recipe{
		Model:          gorm.Model{ID: 1},
		Title:          "Classic Pancakes",
		Description:    "Fluffy weekend pancakes",
		Ingredients:    pq.StringArray{"1.5 cups all-purpose flour", "1 1/4 cups milk", "1 egg", "3 tbsp melted butter"},
		Instructions:   pq.StringArray{"Mix dry ingredients", "Whisk wet ingredients", "Combine and cook on griddle"},
		Tags:           pq.StringArray{"breakfast", "pancakes"},
		Difficulty:     "Easy",
		CookTime:       20,
		Servings:       4,
		ImageURL:       "https://example.com/pancakes.jpg",
		Source:         models.RecipeSourceAI,
		IsDiscoverable: true,
		CreatedByID:    1,
	}
}

// TestRecipeResult creates an ai.RecipeResult that matches TestRecipe fields.
func TestRecipeResult() *ai.RecipeResult {
	return &ai.RecipeResult{
		Title:        "Classic Pancakes",
		Description:  "Fluffy weekend pancakes",
		Ingredients:  []string{"1.5 cups all-purpose flour", "1 1/4 cups milk", "1 egg", "3 tbsp melted butter"},
		Instructions: []string{"Mix dry ingredients", "Whisk wet ingredients", "Combine and cook on griddle"},
		Tags:         []string{"breakfast", "pancakes"},
		Difficulty:   "easy",
		CookTime:     20,
		Servings:     4,
	}
}

// ExternalRecipes creates n catalog recipes titled "Catalog Recipe 1".."n".
// Recipe i is created i minutes after base, so the last one is the newest.
func ExternalRecipes(n int, base time.Time) []*models.Recipe {
	out := make([]*models.Recipe, n)
	for i := range n {
		out[i] = &models.Recipe{
			Model: gorm.Model{
				ID:        uint(i + 1),
				CreatedAt: base.Add(time.Duration(i+1) * time.Minute),
			},
			Title:      fmt.Sprintf("Catalog Recipe %d", i+1),
			Tags:       pq.StringArray{"holiday"},
			Difficulty: "Medium",
			Source:     models.RecipeSourceExternal,
			IsExternal: true,
			SourceURL:  fmt.Sprintf("https://recipes.example.com/%d", i+1),
		}
	}
	return out
}

// CommunityRecipe creates a discoverable AI recipe owned by ownerID.
func CommunityRecipe(id, ownerID uint, title string) *models.Recipe {
	return &models.Recipe{
		Model:          gorm.Model{ID: id},
		Title:          title,
		Source:         models.RecipeSourceAI,
		IsDiscoverable: true,
		CreatedByID:    ownerID,
	}
}
