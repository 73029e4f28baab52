package service

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/windoze95/forkful-api/internal/config"
	"github.com/windoze95/forkful-api/internal/models"
	"github.com/windoze95/forkful-api/internal/repository"
	"github.com/windoze95/forkful-api/internal/s3"
	"github.com/windoze95/forkful-api/internal/testutil"
	"gorm.io/gorm"
)

func newTestRecipeService(repo repository.RecipeRepo, store ImageStore) *RecipeService {
	return NewRecipeService(&config.Config{}, repo, store)
}

func TestToRecipeResponse_AllFields(t *testing.T) {
	now := time.Now()
	recipe := testutil.TestRecipe()
	recipe.Model = gorm.Model{ID: 7, CreatedAt: now, UpdatedAt: now}
	recipe.CreatedByID = 3
	recipe.LikeCount = 4

	resp := ToRecipeResponse(recipe)

	if resp.ID != 7 || resp.OwnerID != 3 {
		t.Errorf("ID = %d, OwnerID = %d", resp.ID, resp.OwnerID)
	}
	if resp.Title != "Classic Pancakes" || resp.Difficulty != "Easy" {
		t.Errorf("resp = %+v", resp)
	}
	if len(resp.Ingredients) != 4 || len(resp.Instructions) != 3 || len(resp.Tags) != 2 {
		t.Errorf("lists = %d/%d/%d", len(resp.Ingredients), len(resp.Instructions), len(resp.Tags))
	}
	if resp.Source != "ai" || !resp.IsDiscoverable || resp.IsExternal {
		t.Errorf("source fields = %q %v %v", resp.Source, resp.IsDiscoverable, resp.IsExternal)
	}
	if resp.LikeCount != 4 || !resp.CreatedAt.Equal(now) {
		t.Errorf("counters/time = %d %v", resp.LikeCount, resp.CreatedAt)
	}
}

func TestToRecipeResponse_NilListsBecomeEmpty(t *testing.T) {
	resp := ToRecipeResponse(&models.Recipe{Title: "Bare"})
	if resp.Ingredients == nil || resp.Instructions == nil || resp.Tags == nil {
		t.Errorf("nil list in response: %+v", resp)
	}
}

// --- CreateRecipe ---

func TestCreateRecipe_ManualIsPrivate(t *testing.T) {
	repo := testutil.NewMockRecipeRepo()
	svc := newTestRecipeService(repo, nil)

	recipe, err := svc.CreateRecipe(context.Background(), 5, RecipeInput{
		Title:       "  Grandma's Soup ",
		Ingredients: []string{" carrots ", "", "Chicken Stock"},
		Tags:        []string{"Comfort-Food"},
		Difficulty:  "medium",
		CookTime:    45,
	})
	if err != nil {
		t.Fatalf("CreateRecipe error: %v", err)
	}
	if recipe.ID == 0 || recipe.CreatedByID != 5 {
		t.Errorf("recipe = %+v", recipe)
	}
	if recipe.Title != "Grandma's Soup" || recipe.Difficulty != "Medium" {
		t.Errorf("title/difficulty = %q/%q", recipe.Title, recipe.Difficulty)
	}
	if recipe.Source != models.RecipeSourceManual || recipe.IsDiscoverable {
		t.Errorf("manual recipe source=%q discoverable=%v", recipe.Source, recipe.IsDiscoverable)
	}
	if !slices.Equal([]string(recipe.Ingredients), []string{"carrots", "Chicken Stock"}) {
		t.Errorf("ingredients = %v", recipe.Ingredients)
	}
	for _, want := range []string{"grandma's soup", "chicken stock", "comfort food", "comfort", "food"} {
		if !slices.Contains(recipe.SearchableFields, want) {
			t.Errorf("searchable fields %v missing %q", recipe.SearchableFields, want)
		}
	}
}

func TestCreateRecipe_Validation(t *testing.T) {
	svc := newTestRecipeService(testutil.NewMockRecipeRepo(), nil)
	for _, in := range []RecipeInput{
		{Title: "   "},
		{Title: "Soup", Difficulty: "impossible"},
		{Title: "Soup", CookTime: -1},
	} {
		if _, err := svc.CreateRecipe(context.Background(), 1, in); !IsValidation(err) {
			t.Errorf("CreateRecipe(%+v) = %v, want validation error", in, err)
		}
	}
}

// --- Read ---

func TestGetRecipeByID_NotFound(t *testing.T) {
	svc := newTestRecipeService(testutil.NewMockRecipeRepo(), nil)
	if _, err := svc.GetRecipeByID(context.Background(), 42); !repository.IsNotFound(err) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestGetUserRecipes_PagesNewestFirst(t *testing.T) {
	repo := testutil.NewMockRecipeRepo()
	for i := 0; i < 25; i++ {
		repo.Add(&models.Recipe{Title: "Mine", CreatedByID: 1})
	}
	repo.Add(&models.Recipe{Title: "Theirs", CreatedByID: 2})
	svc := newTestRecipeService(repo, nil)

	resp, err := svc.GetUserRecipes(context.Background(), 1, 2, 0)
	if err != nil {
		t.Fatalf("GetUserRecipes error: %v", err)
	}
	if len(resp.Recipes) != 5 {
		t.Errorf("got %d recipes, want 5", len(resp.Recipes))
	}
	if resp.Pagination.Total != 25 || resp.Pagination.Limit != 20 || resp.Pagination.HasNextPage {
		t.Errorf("pagination = %+v", resp.Pagination)
	}
	if resp.Recipes[0].ID != 5 {
		t.Errorf("first of page 2 = %d, want 5", resp.Recipes[0].ID)
	}
}

// --- UpdateRecipe ---

func TestUpdateRecipe_RefreshesSearchableFields(t *testing.T) {
	repo := testutil.NewMockRecipeRepo()
	repo.Add(testutil.TestRecipe())
	svc := newTestRecipeService(repo, nil)

	tags := []string{"brunch"}
	updated, err := svc.UpdateRecipe(context.Background(), 1, 1, RecipeUpdate{
		Title: strPtr("Buttermilk Pancakes"),
		Tags:  &tags,
	})
	if err != nil {
		t.Fatalf("UpdateRecipe error: %v", err)
	}
	stored, _ := repo.GetRecipeByID(context.Background(), 1)
	if stored.Title != "Buttermilk Pancakes" || updated.Title != stored.Title {
		t.Errorf("title = %q", stored.Title)
	}
	if !slices.Contains(stored.SearchableFields, "brunch") || !slices.Contains(stored.SearchableFields, "buttermilk") {
		t.Errorf("searchable fields not refreshed: %v", stored.SearchableFields)
	}
	if slices.Contains(stored.SearchableFields, "breakfast") {
		t.Errorf("stale tag still searchable: %v", stored.SearchableFields)
	}
}

func TestUpdateRecipe_NotOwner(t *testing.T) {
	repo := testutil.NewMockRecipeRepo()
	repo.Add(testutil.TestRecipe())
	svc := newTestRecipeService(repo, nil)

	_, err := svc.UpdateRecipe(context.Background(), 2, 1, RecipeUpdate{Title: strPtr("Mine now")})
	if !errors.Is(err, repository.ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

func TestUpdateRecipe_EmptyTitle(t *testing.T) {
	repo := testutil.NewMockRecipeRepo()
	repo.Add(testutil.TestRecipe())
	svc := newTestRecipeService(repo, nil)

	if _, err := svc.UpdateRecipe(context.Background(), 1, 1, RecipeUpdate{Title: strPtr(" ")}); !IsValidation(err) {
		t.Errorf("err = %v, want validation error", err)
	}
}

// --- DeleteRecipe ---

func TestDeleteRecipe_RemovesStoredImage(t *testing.T) {
	repo := testutil.NewMockRecipeRepo()
	store := testutil.NewMockImageStore()
	recipe := testutil.TestRecipe()
	recipe.ImageURL = store.URLFor(s3.GenerateS3Key(1))
	repo.Add(recipe)
	svc := newTestRecipeService(repo, store)

	if err := svc.DeleteRecipe(context.Background(), 1, 1); err != nil {
		t.Fatalf("DeleteRecipe error: %v", err)
	}
	if _, err := repo.GetRecipeByID(context.Background(), 1); !repository.IsNotFound(err) {
		t.Error("recipe still present")
	}
	if !slices.Equal(store.Deleted, []string{s3.GenerateS3Key(1)}) {
		t.Errorf("deleted keys = %v", store.Deleted)
	}
}

func TestDeleteRecipe_KeepsExternalImage(t *testing.T) {
	repo := testutil.NewMockRecipeRepo()
	store := testutil.NewMockImageStore()
	repo.Add(testutil.TestRecipe())
	svc := newTestRecipeService(repo, store)

	if err := svc.DeleteRecipe(context.Background(), 1, 1); err != nil {
		t.Fatalf("DeleteRecipe error: %v", err)
	}
	if len(store.Deleted) != 0 {
		t.Errorf("deleted keys = %v, want none", store.Deleted)
	}
}

func TestDeleteRecipe_ImageFailureIsIgnored(t *testing.T) {
	repo := testutil.NewMockRecipeRepo()
	store := testutil.NewMockImageStore()
	store.DeleteErr = errTest
	recipe := testutil.TestRecipe()
	recipe.ImageURL = store.URLFor(s3.GenerateS3Key(1))
	repo.Add(recipe)
	svc := newTestRecipeService(repo, store)

	if err := svc.DeleteRecipe(context.Background(), 1, 1); err != nil {
		t.Errorf("DeleteRecipe error: %v", err)
	}
}

// --- UploadRecipeImage ---

func TestUploadRecipeImage(t *testing.T) {
	repo := testutil.NewMockRecipeRepo()
	store := testutil.NewMockImageStore()
	repo.Add(testutil.TestRecipe())
	svc := newTestRecipeService(repo, store)

	url, err := svc.UploadRecipeImage(context.Background(), 1, 1, []byte("jpeg"))
	if err != nil {
		t.Fatalf("UploadRecipeImage error: %v", err)
	}
	if url != store.URLFor(s3.GenerateS3Key(1)) {
		t.Errorf("url = %q", url)
	}
	stored, _ := repo.GetRecipeByID(context.Background(), 1)
	if stored.ImageURL != url {
		t.Errorf("stored image = %q", stored.ImageURL)
	}

	if _, err := svc.UploadRecipeImage(context.Background(), 1, 1, nil); !IsValidation(err) {
		t.Errorf("empty upload err = %v", err)
	}
	if _, err := svc.UploadRecipeImage(context.Background(), 9, 1, []byte("jpeg")); !errors.Is(err, repository.ErrForbidden) {
		t.Errorf("non-owner upload err = %v", err)
	}
}
