package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/forkful-api/internal/service"
	"go.uber.org/zap"
)

// SearchHandler serves the discover and community search surfaces.
type SearchHandler struct {
	Service *service.SearchService
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(searchService *service.SearchService) *SearchHandler {
	return &SearchHandler{Service: searchService}
}

// parseQuery binds and validates the shared query string. It writes a 400
// and returns false on invalid input.
func parseQuery(c *gin.Context, limits service.SurfaceLimits) (service.SearchParams, bool) {
	var q service.SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return service.SearchParams{}, false
	}
	params, err := service.ParseSearchParams(q, limits)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return service.SearchParams{}, false
	}
	return params, true
}

// Discover handles GET /v1/discover/search?query=&tag=&difficulty=&random=&page=&limit=
// A difficulty other than Easy, Medium or Hard (any case) is rejected with 400.
func (h *SearchHandler) Discover(c *gin.Context) {
	params, ok := parseQuery(c, service.DiscoverLimits)
	if !ok {
		return
	}

	resp, err := h.Service.Discover(c.Request.Context(), params)
	if err != nil {
		respondError(c, err, "Failed to search recipes",
			zap.Strings("tokens", params.Tokens),
			zap.Int("page", params.Page),
		)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Community handles GET /v1/community/recipes with the same query parameters
// and the same 400 for an unknown difficulty. Pagination totals include the
// requester's own recipes, which are left out of the items.
func (h *SearchHandler) Community(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	params, ok := parseQuery(c, service.CommunityLimits)
	if !ok {
		return
	}

	resp, err := h.Service.Community(c.Request.Context(), user.ID, params)
	if err != nil {
		respondError(c, err, "Failed to load community recipes",
			zap.Uint("user_id", user.ID),
			zap.Strings("tokens", params.Tokens),
		)
		return
	}

	c.JSON(http.StatusOK, resp)
}
