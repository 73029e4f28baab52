package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/forkful-api/internal/config"
	"github.com/windoze95/forkful-api/internal/models"
	"github.com/windoze95/forkful-api/internal/s3"
	"github.com/windoze95/forkful-api/internal/service"
	"github.com/windoze95/forkful-api/internal/testutil"
)

func newRecipeRouter(repo *testutil.MockRecipeRepo, store *testutil.MockImageStore, user *models.User) *gin.Engine {
	var imageStore service.ImageStore
	if store != nil {
		imageStore = store
	}
	handler := NewRecipeHandler(service.NewRecipeService(&config.Config{}, repo, imageStore))

	r := gin.New()
	r.GET("/recipes", setUser(user), handler.ListRecipes)
	r.POST("/recipes", setUser(user), handler.CreateRecipe)
	r.GET("/recipes/:recipe_id", handler.GetRecipe)
	r.PUT("/recipes/:recipe_id", setUser(user), handler.UpdateRecipe)
	r.DELETE("/recipes/:recipe_id", setUser(user), handler.DeleteRecipe)
	r.POST("/recipes/:recipe_id/image", setUser(user), handler.UploadImage)
	return r
}

func TestGetRecipe_Valid(t *testing.T) {
	repo := testutil.NewMockRecipeRepo()
	repo.Add(testutil.TestRecipe())
	r := newRecipeRouter(repo, nil, nil)

	w := doRequest(r, "GET", "/recipes/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d. body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var body map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &body)
	recipeData, ok := body["recipe"].(map[string]interface{})
	if !ok {
		t.Fatal("response should contain 'recipe' field")
	}
	if recipeData["title"] != "Classic Pancakes" {
		t.Errorf("recipe title = %v, want 'Classic Pancakes'", recipeData["title"])
	}
}

func TestGetRecipe_InvalidID(t *testing.T) {
	r := newRecipeRouter(testutil.NewMockRecipeRepo(), nil, nil)

	for _, path := range []string{"/recipes/abc", "/recipes/0", "/recipes/-1"} {
		if w := doRequest(r, "GET", path, nil); w.Code != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, want %d", path, w.Code, http.StatusBadRequest)
		}
	}
}

func TestGetRecipe_NotFound(t *testing.T) {
	r := newRecipeRouter(testutil.NewMockRecipeRepo(), nil, nil)

	if w := doRequest(r, "GET", "/recipes/999", nil); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestListRecipes_Success(t *testing.T) {
	repo := testutil.NewMockRecipeRepo()
	repo.Add(testutil.TestRecipe())
	r := newRecipeRouter(repo, nil, testutil.TestUser())

	w := doRequest(r, "GET", "/recipes?page_size=500", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}
	var body service.RecipeListResponse
	json.Unmarshal(w.Body.Bytes(), &body)
	if len(body.Recipes) != 1 || body.Pagination.Limit != 20 {
		t.Errorf("body = %+v", body)
	}
}

func TestListRecipes_Unauthorized(t *testing.T) {
	r := newRecipeRouter(testutil.NewMockRecipeRepo(), nil, nil)

	if w := doRequest(r, "GET", "/recipes", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestCreateRecipe_Handler(t *testing.T) {
	repo := testutil.NewMockRecipeRepo()
	r := newRecipeRouter(repo, nil, testutil.TestUser())

	w := doRequest(r, "POST", "/recipes", map[string]interface{}{
		"title":       "Tomato Soup",
		"ingredients": []string{"tomatoes", "basil"},
		"difficulty":  "easy",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}
	var body struct {
		Recipe service.RecipeResponse `json:"recipe"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body.Recipe.Source != "manual" || body.Recipe.IsDiscoverable || body.Recipe.Difficulty != "Easy" {
		t.Errorf("recipe = %+v", body.Recipe)
	}

	if w := doRequest(r, "POST", "/recipes", map[string]interface{}{"title": ""}); w.Code != http.StatusBadRequest {
		t.Errorf("empty title status = %d, want 400", w.Code)
	}
}

func TestUpdateRecipe_Forbidden(t *testing.T) {
	repo := testutil.NewMockRecipeRepo()
	repo.Add(testutil.TestRecipe())
	other := &models.User{Username: "other"}
	other.ID = 2
	r := newRecipeRouter(repo, nil, other)

	w := doRequest(r, "PUT", "/recipes/1", map[string]interface{}{"title": "Stolen"})
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestUpdateRecipe_Handler(t *testing.T) {
	repo := testutil.NewMockRecipeRepo()
	repo.Add(testutil.TestRecipe())
	r := newRecipeRouter(repo, nil, testutil.TestUser())

	w := doRequest(r, "PUT", "/recipes/1", map[string]interface{}{"tags": []string{"brunch"}})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}
	stored := repo.Recipes[1]
	if len(stored.Tags) != 1 || stored.Tags[0] != "brunch" || stored.Title != "Classic Pancakes" {
		t.Errorf("stored = %+v", stored)
	}
}

func TestDeleteRecipe_Handler(t *testing.T) {
	repo := testutil.NewMockRecipeRepo()
	repo.Add(testutil.TestRecipe())
	r := newRecipeRouter(repo, testutil.NewMockImageStore(), testutil.TestUser())

	if w := doRequest(r, "DELETE", "/recipes/1", nil); w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}
	if w := doRequest(r, "DELETE", "/recipes/1", nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}
}

// --- UploadImage ---

func imageUpload(t *testing.T, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(data)
	mw.Close()

	req := httptest.NewRequest("POST", "/recipes/1/image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadImage_Handler(t *testing.T) {
	repo := testutil.NewMockRecipeRepo()
	repo.Add(testutil.TestRecipe())
	store := testutil.NewMockImageStore()
	r := newRecipeRouter(repo, store, testutil.TestUser())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, imageUpload(t, "photo.JPG", []byte("jpeg-bytes")))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}
	want := store.URLFor(s3.GenerateS3Key(1))
	if repo.Recipes[1].ImageURL != want {
		t.Errorf("image url = %q, want %q", repo.Recipes[1].ImageURL, want)
	}
}

func TestUploadImage_RejectsType(t *testing.T) {
	repo := testutil.NewMockRecipeRepo()
	repo.Add(testutil.TestRecipe())
	r := newRecipeRouter(repo, testutil.NewMockImageStore(), testutil.TestUser())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, imageUpload(t, "notes.txt", []byte("hello")))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
