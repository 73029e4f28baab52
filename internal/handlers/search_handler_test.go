package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/forkful-api/internal/config"
	"github.com/windoze95/forkful-api/internal/models"
	"github.com/windoze95/forkful-api/internal/search"
	"github.com/windoze95/forkful-api/internal/service"
	"github.com/windoze95/forkful-api/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setUser is a test middleware that injects a user into the gin context.
func setUser(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user != nil {
			c.Set("user", user)
		}
		c.Next()
	}
}

func doRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type searchBody struct {
	Recipes    []service.RecipeResponse `json:"recipes"`
	Pagination search.Pagination        `json:"pagination"`
	Error      string                   `json:"error"`
}

func decodeSearch(t *testing.T, w *httptest.ResponseRecorder) searchBody {
	t.Helper()
	var body searchBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return body
}

func newSearchRouter(repo *testutil.MockRecipeRepo, users *testutil.MockUserRepo, user *models.User) *gin.Engine {
	handler := NewSearchHandler(service.NewSearchService(&config.Config{}, repo, users))
	r := gin.New()
	r.GET("/discover/search", setUser(user), handler.Discover)
	r.GET("/community/recipes", setUser(user), handler.Community)
	return r
}

func TestDiscover_SecondPage(t *testing.T) {
	repo := testutil.NewMockRecipeRepo()
	for _, recipe := range testutil.ExternalRecipes(15, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		repo.Add(recipe)
	}
	r := newSearchRouter(repo, testutil.NewMockUserRepo(), testutil.TestUser())

	w := doRequest(r, "GET", "/discover/search?page=2&limit=10", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}

	body := decodeSearch(t, w)
	if len(body.Recipes) != 5 || body.Recipes[0].ID != 5 {
		t.Errorf("recipes = %d, first = %+v", len(body.Recipes), body.Recipes)
	}
	want := search.Pagination{Total: 15, Page: 2, Limit: 10, TotalPages: 2, HasNextPage: false, HasPrevPage: true}
	if body.Pagination != want {
		t.Errorf("pagination = %+v, want %+v", body.Pagination, want)
	}
}

func TestDiscover_DefaultsAndClamp(t *testing.T) {
	repo := testutil.NewMockRecipeRepo()
	r := newSearchRouter(repo, testutil.NewMockUserRepo(), testutil.TestUser())

	w := doRequest(r, "GET", "/discover/search?limit=5000&page=abc", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}
	body := decodeSearch(t, w)
	if body.Pagination.Limit != 100 || body.Pagination.Page != 1 {
		t.Errorf("pagination = %+v", body.Pagination)
	}
	if body.Recipes == nil {
		t.Error("recipes should be an empty array, not null")
	}
}

func TestDiscover_InvalidDifficulty(t *testing.T) {
	r := newSearchRouter(testutil.NewMockRecipeRepo(), testutil.NewMockUserRepo(), testutil.TestUser())

	w := doRequest(r, "GET", "/discover/search?difficulty=extreme", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestDiscover_CountFailureIsGeneric500(t *testing.T) {
	repo := testutil.NewMockRecipeRepo()
	repo.FailCount = true
	r := newSearchRouter(repo, testutil.NewMockUserRepo(), testutil.TestUser())

	w := doRequest(r, "GET", "/discover/search", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if body := decodeSearch(t, w); body.Error != "Failed to search recipes" {
		t.Errorf("error = %q", body.Error)
	}
}

func TestDiscover_OrderedFailureStillOK(t *testing.T) {
	repo := testutil.NewMockRecipeRepo()
	repo.FailOrdered = true
	for _, recipe := range testutil.ExternalRecipes(3, time.Now()) {
		repo.Add(recipe)
	}
	r := newSearchRouter(repo, testutil.NewMockUserRepo(), testutil.TestUser())

	w := doRequest(r, "GET", "/discover/search", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if body := decodeSearch(t, w); len(body.Recipes) != 3 {
		t.Errorf("recipes = %d, want 3", len(body.Recipes))
	}
}

// --- Community ---

func TestCommunity_RequiresUser(t *testing.T) {
	r := newSearchRouter(testutil.NewMockRecipeRepo(), testutil.NewMockUserRepo(), nil)

	w := doRequest(r, "GET", "/community/recipes", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestCommunity_DecoratesForRequester(t *testing.T) {
	repo := testutil.NewMockRecipeRepo()
	users := testutil.NewMockUserRepo()
	me := users.Add(&models.User{Username: "me"})
	chef := users.Add(&models.User{Username: "chef", DisplayName: "Chef Ana"})
	repo.Add(testutil.CommunityRecipe(1, me.ID, "Mine"))
	repo.Add(testutil.CommunityRecipe(2, chef.ID, "Ana's Tacos"))
	repo.Like(me.ID, 2)
	r := newSearchRouter(repo, users, me)

	w := doRequest(r, "GET", "/community/recipes?query=tacos", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}

	var raw struct {
		Recipes []map[string]interface{} `json:"recipes"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(raw.Recipes) != 1 {
		t.Fatalf("recipes = %v", raw.Recipes)
	}
	got := raw.Recipes[0]
	if got["sharedByDisplayName"] != "Chef Ana" || got["isLiked"] != true {
		t.Errorf("decorated recipe = %v", got)
	}
	if photo, ok := got["sharedByPhotoUrl"]; !ok || photo != nil {
		t.Errorf("sharedByPhotoUrl = %v (present %v), want null", photo, ok)
	}
}
