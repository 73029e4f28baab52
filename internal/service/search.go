package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/windoze95/forkful-api/internal/config"
	"github.com/windoze95/forkful-api/internal/logger"
	"github.com/windoze95/forkful-api/internal/metrics"
	"github.com/windoze95/forkful-api/internal/models"
	"github.com/windoze95/forkful-api/internal/repository"
	"github.com/windoze95/forkful-api/internal/search"
	"go.uber.org/zap"
)

// Outcome tells callers how a fetch was served.
type Outcome string

// Outcome values.
const (
	// OutcomeOrdered is a newest-first page.
	OutcomeOrdered Outcome = "ordered"
	// OutcomeFallbackUnordered is a page served without ordering after the
	// ordered query failed. The response is still successful.
	OutcomeFallbackUnordered Outcome = "fallback_unordered"
	// OutcomeSampled is a random selection from a bounded sample.
	OutcomeSampled Outcome = "sampled"
	// OutcomeFailed means no recipes could be served.
	OutcomeFailed Outcome = "failed"
)

// RandomMode selects what a random fetch returns when limit > 1.
type RandomMode int

// RandomMode values.
const (
	// RandomPage returns the requested page of the shuffled sample.
	RandomPage RandomMode = iota
	// RandomPool returns the whole shuffled sample for client-side paging.
	RandomPool
)

// SurfaceLimits holds the page size default and cap of a search surface.
type SurfaceLimits struct {
	DefaultLimit int
	MaxLimit     int
}

// Limits of the two search surfaces.
var (
	DiscoverLimits  = SurfaceLimits{DefaultLimit: 10, MaxLimit: 100}
	CommunityLimits = SurfaceLimits{DefaultLimit: 12, MaxLimit: 500}
)

// ErrInvalidDifficulty is returned for a difficulty outside Easy, Medium, Hard.
var ErrInvalidDifficulty = NewValidationError("difficulty must be one of Easy, Medium or Hard")

// SearchQuery is the raw query string of a search request.
type SearchQuery struct {
	Query      string `form:"query"`
	Tag        string `form:"tag"`
	Difficulty string `form:"difficulty"`
	Random     string `form:"random"`
	Page       string `form:"page"`
	Limit      string `form:"limit"`
}

// SearchParams is a validated search request.
type SearchParams struct {
	Tokens     []string
	Difficulty string
	Random     bool
	Page       int
	Limit      int
}

// ParseSearchParams turns a raw query into SearchParams. Missing or
// unparseable page and limit values fall back to 1 and the surface default;
// limits above the surface cap are clamped.
func ParseSearchParams(q SearchQuery, limits SurfaceLimits) (SearchParams, error) {
	params := SearchParams{
		Tokens: search.GatherTokens(q.Query, q.Tag),
		Random: q.Random == "true",
		Page:   1,
		Limit:  limits.DefaultLimit,
	}

	if d := strings.TrimSpace(q.Difficulty); d != "" {
		if !search.IsValidDifficulty(d) {
			return SearchParams{}, ErrInvalidDifficulty
		}
		params.Difficulty = search.NormalizeDifficulty(d)
	}

	if p, err := strconv.Atoi(strings.TrimSpace(q.Page)); err == nil && p >= 1 {
		params.Page = p
	}
	if l, err := strconv.Atoi(strings.TrimSpace(q.Limit)); err == nil && l >= 1 {
		params.Limit = min(l, limits.MaxLimit)
	}
	return params, nil
}

// FetchRequest is the input of the shared fetch-and-paginate engine.
type FetchRequest struct {
	Partition  repository.Partition
	Tokens     []string
	Difficulty string
	Page       int
	Limit      int
	Random     bool
	RandomMode RandomMode
}

func (r FetchRequest) filter() repository.RecipeFilter {
	return repository.RecipeFilter{
		Partition:  r.Partition,
		Difficulty: r.Difficulty,
		Tokens:     r.Tokens,
	}
}

// FetchResult is one page of recipes and how it was produced.
type FetchResult struct {
	Recipes    []models.Recipe
	Pagination search.Pagination
	Outcome    Outcome
}

// SearchResponse is the JSON body of discover search.
type SearchResponse struct {
	Recipes    []RecipeResponse  `json:"recipes"`
	Pagination search.Pagination `json:"pagination"`
}

// CommunityResponse is the JSON body of the community feed.
type CommunityResponse struct {
	Recipes    []CommunityRecipeResponse `json:"recipes"`
	Pagination search.Pagination         `json:"pagination"`
}

// SearchService runs recipe searches over the external and community pools.
type SearchService struct {
	Cfg        *config.Config
	RecipeRepo repository.RecipeRepo
	UserRepo   repository.UserRepo
	// Now is the clock used for the daily pick.
	Now func() time.Time
	// Decorator post-processes community results.
	Decorator Decorator

	randMu sync.Mutex
	rand   *rand.Rand
}

// NewSearchService is the constructor function for initializing a new SearchService.
func NewSearchService(cfg *config.Config, recipeRepo repository.RecipeRepo, userRepo repository.UserRepo) *SearchService {
	return &SearchService{
		Cfg:        cfg,
		RecipeRepo: recipeRepo,
		UserRepo:   userRepo,
		Now:        time.Now,
		Decorator:  NewCommunityDecorator(recipeRepo, userRepo),
		rand:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// WithRand replaces the shuffle source. Tests use it for reproducible shuffles.
func (s *SearchService) WithRand(r *rand.Rand) *SearchService {
	s.randMu.Lock()
	s.rand = r
	s.randMu.Unlock()
	return s
}

func (s *SearchService) shuffle(recipes []models.Recipe) []models.Recipe {
	s.randMu.Lock()
	defer s.randMu.Unlock()
	return search.Shuffle(recipes, s.rand)
}

// Fetch counts the recipes matching req and returns the requested page.
// A failed count or sample is returned as an error with OutcomeFailed. A
// failed ordered query is retried unordered and reported as
// OutcomeFallbackUnordered.
func (s *SearchService) Fetch(ctx context.Context, req FetchRequest) (*FetchResult, error) {
	log := logger.Get().With(zap.Stringer("partition", req.Partition))
	filter := req.filter()

	total, err := s.RecipeRepo.CountRecipes(ctx, filter)
	if err != nil {
		s.record(req.Partition, OutcomeFailed)
		return &FetchResult{Outcome: OutcomeFailed}, fmt.Errorf("count recipes: %w", err)
	}
	result := &FetchResult{Pagination: search.NewPagination(total, req.Page, req.Limit)}

	if req.Random {
		result.Outcome = OutcomeSampled
		if total > 0 {
			result.Recipes, err = s.fetchRandom(ctx, filter, total, req)
			if err != nil {
				s.record(req.Partition, OutcomeFailed)
				return &FetchResult{Outcome: OutcomeFailed}, fmt.Errorf("sample recipes: %w", err)
			}
		}
		s.record(req.Partition, result.Outcome)
		return result, nil
	}

	opts := repository.FindOptions{
		Ordered: true,
		Limit:   req.Limit,
		Offset:  search.Offset(req.Page, req.Limit),
	}
	result.Outcome = OutcomeOrdered
	result.Recipes, err = s.RecipeRepo.FindRecipes(ctx, filter, opts)
	if err != nil {
		log.Warn("ordered recipe fetch failed, retrying unordered", zap.Error(err))
		opts.Ordered = false
		result.Outcome = OutcomeFallbackUnordered
		result.Recipes, err = s.RecipeRepo.FindRecipes(ctx, filter, opts)
		if err != nil {
			s.record(req.Partition, OutcomeFailed)
			return &FetchResult{Outcome: OutcomeFailed}, fmt.Errorf("find recipes: %w", err)
		}
	}

	s.record(req.Partition, result.Outcome)
	return result, nil
}

// fetchRandom samples up to search.MaxSampleSize matches. A limit of 1 picks
// the recipe of the day; larger limits shuffle the sample and return either
// the page or the whole pool depending on req.RandomMode.
func (s *SearchService) fetchRandom(ctx context.Context, filter repository.RecipeFilter, total int64, req FetchRequest) ([]models.Recipe, error) {
	n := int(min(total, int64(search.MaxSampleSize)))
	sample, err := s.RecipeRepo.SampleRecipes(ctx, filter, n)
	if err != nil {
		return nil, err
	}
	if len(sample) == 0 {
		return nil, nil
	}

	if req.Limit == 1 {
		i := search.DailyIndex(s.Now(), len(sample))
		return sample[i : i+1], nil
	}

	shuffled := s.shuffle(sample)
	if req.RandomMode == RandomPool {
		return shuffled, nil
	}
	return search.PageSlice(shuffled, req.Page, req.Limit), nil
}

func (s *SearchService) record(p repository.Partition, o Outcome) {
	metrics.SearchFetchTotal.WithLabelValues(p.String(), string(o)).Inc()
}

// Discover searches the external catalog.
func (s *SearchService) Discover(ctx context.Context, params SearchParams) (*SearchResponse, error) {
	res, err := s.Fetch(ctx, FetchRequest{
		Partition:  repository.PartitionExternal,
		Tokens:     params.Tokens,
		Difficulty: params.Difficulty,
		Page:       params.Page,
		Limit:      params.Limit,
		Random:     params.Random,
		RandomMode: RandomPage,
	})
	if err != nil {
		return nil, err
	}

	resp := &SearchResponse{
		Recipes:    make([]RecipeResponse, 0, len(res.Recipes)),
		Pagination: res.Pagination,
	}
	for i := range res.Recipes {
		resp.Recipes = append(resp.Recipes, *ToRecipeResponse(&res.Recipes[i]))
	}
	return resp, nil
}

// Community searches discoverable user recipes and decorates them for
// requesterID. The requester's own recipes are dropped after the page is
// fetched, so Pagination counts them and a page may hold fewer than Limit
// items while HasNextPage is still true.
func (s *SearchService) Community(ctx context.Context, requesterID uint, params SearchParams) (*CommunityResponse, error) {
	res, err := s.Fetch(ctx, FetchRequest{
		Partition:  repository.PartitionCommunity,
		Tokens:     params.Tokens,
		Difficulty: params.Difficulty,
		Page:       params.Page,
		Limit:      params.Limit,
		Random:     params.Random,
		RandomMode: RandomPool,
	})
	if err != nil {
		return nil, err
	}

	recipes, err := s.Decorator.Decorate(ctx, requesterID, res.Recipes)
	if err != nil {
		return nil, err
	}
	return &CommunityResponse{Recipes: recipes, Pagination: res.Pagination}, nil
}
