package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/forkful-api/internal/models"
	"github.com/windoze95/forkful-api/internal/repository"
	"github.com/windoze95/forkful-api/internal/service"
	"github.com/windoze95/forkful-api/internal/testutil"
)

// --- Engagement ---

func newEngagementRouter(recipes *testutil.MockRecipeRepo, notifications *testutil.MockNotificationRepo, user *models.User) *gin.Engine {
	notifier := service.NewNotificationService(notifications)
	handler := NewEngagementHandler(service.NewEngagementService(testutil.NewMockEngagementRepo(recipes), notifier))
	r := gin.New()
	r.POST("/recipes/:recipe_id/like", setUser(user), handler.ToggleLike)
	r.POST("/recipes/:recipe_id/save", setUser(user), handler.ToggleSave)
	r.POST("/recipes/:recipe_id/share", handler.Share)
	return r
}

func TestToggleLike_Handler(t *testing.T) {
	recipes := testutil.NewMockRecipeRepo()
	recipes.Add(testutil.TestRecipe())
	notifications := testutil.NewMockNotificationRepo()
	liker := &models.User{Username: "liker"}
	liker.ID = 2
	r := newEngagementRouter(recipes, notifications, liker)

	w := doRequest(r, "POST", "/recipes/1/like", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}
	var resp service.EngagementResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp != (service.EngagementResponse{RecipeID: 1, Active: true, Count: 1}) {
		t.Errorf("resp = %+v", resp)
	}
	if len(notifications.Notifications) != 1 {
		t.Errorf("notifications = %d, want 1", len(notifications.Notifications))
	}

	w = doRequest(r, "POST", "/recipes/1/like", nil)
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Active || resp.Count != 0 {
		t.Errorf("unlike resp = %+v", resp)
	}
}

func TestToggleSave_Errors(t *testing.T) {
	r := newEngagementRouter(testutil.NewMockRecipeRepo(), testutil.NewMockNotificationRepo(), testutil.TestUser())

	if w := doRequest(r, "POST", "/recipes/7/save", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing recipe status = %d, want 404", w.Code)
	}
	if w := doRequest(r, "POST", "/recipes/x/save", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", w.Code)
	}

	anon := newEngagementRouter(testutil.NewMockRecipeRepo(), testutil.NewMockNotificationRepo(), nil)
	if w := doRequest(anon, "POST", "/recipes/1/save", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want 401", w.Code)
	}
}

func TestShare_Handler(t *testing.T) {
	recipes := testutil.NewMockRecipeRepo()
	recipes.Add(testutil.TestRecipe())
	r := newEngagementRouter(recipes, testutil.NewMockNotificationRepo(), nil)

	doRequest(r, "POST", "/recipes/1/share", nil)
	w := doRequest(r, "POST", "/recipes/1/share", nil)
	var resp service.EngagementResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if w.Code != http.StatusOK || resp.Count != 2 {
		t.Errorf("status = %d, resp = %+v", w.Code, resp)
	}
}

// --- Collections ---

func newCollectionRouter(recipes *testutil.MockRecipeRepo, user *models.User) *gin.Engine {
	handler := NewCollectionHandler(service.NewCollectionService(testutil.NewMockCollectionRepo(recipes)))
	r := gin.New()
	r.Use(setUser(user))
	r.POST("/collections", handler.CreateCollection)
	r.GET("/collections", handler.ListCollections)
	r.GET("/collections/:collection_id", handler.GetCollection)
	r.DELETE("/collections/:collection_id", handler.DeleteCollection)
	r.POST("/collections/:collection_id/recipes", handler.AddRecipe)
	r.DELETE("/collections/:collection_id/recipes/:recipe_id", handler.RemoveRecipe)
	return r
}

func TestCollections_Lifecycle(t *testing.T) {
	recipes := testutil.NewMockRecipeRepo()
	recipes.Add(testutil.TestRecipe())
	r := newCollectionRouter(recipes, testutil.TestUser())

	w := doRequest(r, "POST", "/collections", map[string]string{"name": " Weeknight "})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body: %s", w.Code, w.Body.String())
	}
	if w := doRequest(r, "POST", "/collections", map[string]string{"name": "Weeknight"}); w.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d, want 409", w.Code)
	}

	if w := doRequest(r, "POST", "/collections/1/recipes", map[string]uint{"recipe_id": 1}); w.Code != http.StatusOK {
		t.Fatalf("add status = %d, body: %s", w.Code, w.Body.String())
	}

	w = doRequest(r, "GET", "/collections/1", nil)
	var got struct {
		Collection service.CollectionResponse `json:"collection"`
	}
	json.Unmarshal(w.Body.Bytes(), &got)
	if got.Collection.Name != "Weeknight" || got.Collection.RecipeCount != 1 || len(got.Collection.Recipes) != 1 {
		t.Errorf("collection = %+v", got.Collection)
	}

	w = doRequest(r, "GET", "/collections", nil)
	var list struct {
		Collections []service.CollectionResponse `json:"collections"`
	}
	json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Collections) != 1 || list.Collections[0].Recipes != nil {
		t.Errorf("collections = %+v", list.Collections)
	}

	if w := doRequest(r, "DELETE", "/collections/1/recipes/1", nil); w.Code != http.StatusOK {
		t.Errorf("remove status = %d", w.Code)
	}
	if w := doRequest(r, "DELETE", "/collections/1", nil); w.Code != http.StatusOK {
		t.Errorf("delete status = %d", w.Code)
	}
	if w := doRequest(r, "GET", "/collections/1", nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", w.Code)
	}
}

// --- Notifications ---

func newNotificationRouter(repo *testutil.MockNotificationRepo, user *models.User) *gin.Engine {
	handler := NewNotificationHandler(service.NewNotificationService(repo))
	r := gin.New()
	r.Use(setUser(user))
	r.GET("/notifications", handler.ListNotifications)
	r.PUT("/notifications/:notification_id/read", handler.MarkRead)
	r.POST("/notifications/devices", handler.RegisterDevice)
	r.GET("/notifications/devices", handler.ListDevices)
	return r
}

func TestNotifications_ListAndMarkRead(t *testing.T) {
	repo := testutil.NewMockNotificationRepo()
	repo.Notifications = []models.Notification{
		{UserID: 1, RecipeID: 1, Type: models.NotificationLikeMilestone, Count: 10, Message: "10 likes"},
		{UserID: 2, RecipeID: 4, Type: models.NotificationSaveMilestone, Count: 1, Message: "first save"},
	}
	repo.Notifications[0].ID = 1
	repo.Notifications[1].ID = 2
	r := newNotificationRouter(repo, testutil.TestUser())

	w := doRequest(r, "GET", "/notifications", nil)
	var body struct {
		Notifications []service.NotificationResponse `json:"notifications"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if len(body.Notifications) != 1 || body.Notifications[0].Count != 10 {
		t.Fatalf("notifications = %+v", body.Notifications)
	}

	if w := doRequest(r, "PUT", "/notifications/1/read", nil); w.Code != http.StatusOK {
		t.Errorf("mark read status = %d", w.Code)
	}
	if !repo.Notifications[0].Read {
		t.Error("notification 1 should be read")
	}
	if w := doRequest(r, "PUT", "/notifications/2/read", nil); w.Code != http.StatusNotFound {
		t.Errorf("other user's notification status = %d, want 404", w.Code)
	}
}

func TestNotifications_Devices(t *testing.T) {
	r := newNotificationRouter(testutil.NewMockNotificationRepo(), testutil.TestUser())

	w := doRequest(r, "POST", "/notifications/devices", map[string]string{"token": "apns-1", "platform": "iOS"})
	if w.Code != http.StatusOK {
		t.Fatalf("register status = %d, body: %s", w.Code, w.Body.String())
	}
	if w := doRequest(r, "POST", "/notifications/devices", map[string]string{"token": "x", "platform": "pager"}); w.Code != http.StatusBadRequest {
		t.Errorf("bad platform status = %d, want 400", w.Code)
	}

	w = doRequest(r, "GET", "/notifications/devices", nil)
	var body struct {
		Devices []service.DeviceResponse `json:"devices"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if len(body.Devices) != 1 || body.Devices[0].Platform != "ios" {
		t.Errorf("devices = %+v", body.Devices)
	}
}

// --- respondError ---

func TestRespondError_Mapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
		msg  string
	}{
		{"validation", service.NewValidationError("bad input"), http.StatusBadRequest, "bad input"},
		{"credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, service.ErrInvalidCredentials.Error()},
		{"forbidden", repository.ErrForbidden, http.StatusForbidden, repository.ErrForbidden.Error()},
		{"not found", repository.NewNotFoundError("recipe not found"), http.StatusNotFound, "recipe not found"},
		{"conflict", repository.NewConflictError("duplicate"), http.StatusConflict, "duplicate"},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, "Failed to do thing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/", func(c *gin.Context) { respondError(c, tt.err, "Failed to do thing") })

			w := doRequest(r, "GET", "/", nil)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			var body map[string]string
			json.Unmarshal(w.Body.Bytes(), &body)
			if body["error"] != tt.msg {
				t.Errorf("error = %q, want %q", body["error"], tt.msg)
			}
		})
	}
}
