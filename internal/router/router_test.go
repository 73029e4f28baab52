package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/forkful-api/internal/config"
	"github.com/windoze95/forkful-api/internal/service"
	"github.com/windoze95/forkful-api/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := &config.Config{EnvVars: config.EnvVars{JwtSecretKey: "router-secret"}}
	recipes := testutil.NewMockRecipeRepo()
	users := testutil.NewMockUserRepo()
	return SetupRouter(ctx, cfg, Services{
		Users:   service.NewUserService(cfg, users),
		Recipes: service.NewRecipeService(cfg, recipes, nil),
		Search:  service.NewSearchService(cfg, recipes, users),
	})
}

func serve(r http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestPing(t *testing.T) {
	w := serve(newTestRouter(t), "GET", "/ping")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "pong") {
		t.Errorf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("responses should carry X-Request-ID")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(t)
	serve(r, "GET", "/ping")

	w := serve(r, "GET", "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "forkful_http_requests_total") {
		t.Error("metrics should include the request counter")
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newTestRouter(t)

	for _, route := range []struct{ method, path string }{
		{"GET", "/v1/discover/search"},
		{"GET", "/v1/community/recipes"},
		{"GET", "/v1/users/me"},
		{"POST", "/v1/recipes/generate"},
		{"POST", "/v1/recipes/1/like"},
		{"GET", "/v1/notifications"},
	} {
		if w := serve(r, route.method, route.path); w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s status = %d, want 401", route.method, route.path, w.Code)
		}
	}
}

func TestPublicRecipeRoute(t *testing.T) {
	w := serve(newTestRouter(t), "GET", "/v1/recipes/42")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
