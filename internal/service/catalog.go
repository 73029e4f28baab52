package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/asaskevich/govalidator"
	"github.com/microcosm-cc/bluemonday"
	"github.com/windoze95/forkful-api/internal/ai"
	"github.com/windoze95/forkful-api/internal/logger"
	"github.com/windoze95/forkful-api/internal/models"
	"github.com/windoze95/forkful-api/internal/repository"
	"github.com/windoze95/forkful-api/internal/search"
	"go.uber.org/zap"
)

const (
	maxPageBytes = 2 << 20
	// maxExtractChars bounds the page text sent to the LLM fallback.
	maxExtractChars = 20000
)

var (
	ldScriptRe = regexp.MustCompile(`(?is)<script[^>]*type=["']application/ld\+json["'][^>]*>(.*?)</script>`)
	titleRe    = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	durationRe = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)
	leadIntRe  = regexp.MustCompile(`\d+`)

	errNoStructuredRecipe = errors.New("no schema.org recipe on page")
)

// CatalogService imports recipe pages from the web into the external catalog
// served by discover search.
type CatalogService struct {
	Repo   repository.RecipeRepo
	Text   ai.TextProvider
	Client *http.Client

	md       *converter.Converter
	sanitize *bluemonday.Policy
}

// NewCatalogService creates a CatalogService. text may be nil, in which case
// pages without schema.org markup are rejected.
func NewCatalogService(repo repository.RecipeRepo, text ai.TextProvider) *CatalogService {
	return &CatalogService{
		Repo:   repo,
		Text:   text,
		Client: &http.Client{Timeout: 15 * time.Second},
		md: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
			),
		),
		sanitize: bluemonday.UGCPolicy(),
	}
}

// IngestURL fetches pageURL and stores its recipe in the external catalog.
// A page imported before is updated in place. The second return value is
// true when a new catalog entry was created.
func (s *CatalogService) IngestURL(ctx context.Context, pageURL string) (*models.Recipe, bool, error) {
	pageURL = strings.TrimSpace(pageURL)
	if !govalidator.IsRequestURL(pageURL) {
		return nil, false, NewValidationError("url must be a valid http(s) URL")
	}
	log := logger.Get().With(zap.String("source_url", pageURL))

	page, err := s.fetchPage(ctx, pageURL)
	if err != nil {
		return nil, false, err
	}

	recipe, err := parseStructuredRecipe(page)
	switch {
	case err == nil:
		log.Debug("parsed schema.org recipe")
	case s.Text == nil:
		return nil, false, fmt.Errorf("extract recipe: %w", err)
	default:
		log.Info("no structured recipe, falling back to text extraction")
		recipe, err = s.extractWithLLM(ctx, pageURL, page)
		if err != nil {
			return nil, false, err
		}
	}

	recipe.SourceURL = pageURL
	recipe.Source = models.RecipeSourceExternal
	recipe.IsExternal = true
	recipe.IsDiscoverable = false

	existing, err := s.Repo.GetExternalRecipeBySourceURL(ctx, pageURL)
	if err != nil && !repository.IsNotFound(err) {
		return nil, false, fmt.Errorf("look up catalog recipe: %w", err)
	}
	if existing != nil {
		recipe.ID = existing.ID
		recipe.CreatedAt = existing.CreatedAt
		if err := s.Repo.UpdateRecipe(ctx, recipe); err != nil {
			return nil, false, fmt.Errorf("update catalog recipe: %w", err)
		}
		if recipe.ImageURL != "" && recipe.ImageURL != existing.ImageURL {
			if err := s.Repo.UpdateRecipeImageURL(ctx, recipe.ID, recipe.ImageURL); err != nil {
				log.Warn("failed to refresh catalog image", zap.Error(err))
			}
		}
		return recipe, false, nil
	}

	if err := s.Repo.CreateRecipe(ctx, recipe); err != nil {
		return nil, false, fmt.Errorf("save catalog recipe: %w", err)
	}
	log.Info("catalog recipe created", zap.Uint("recipe_id", recipe.ID))
	return recipe, true, nil
}

func (s *CatalogService) fetchPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := s.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch page: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("read page: %w", err)
	}
	return string(body), nil
}

// extractWithLLM converts the page to markdown and asks the text provider for
// a recipe.
func (s *CatalogService) extractWithLLM(ctx context.Context, pageURL, page string) (*models.Recipe, error) {
	// Scripts, styles and forms go before conversion so only readable markup is left.
	text, err := s.md.ConvertString(s.sanitize.Sanitize(page), converter.WithDomain(pageURL))
	if err != nil || strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("page has no readable text")
	}
	if len(text) > maxExtractChars {
		text = text[:maxExtractChars]
	}

	var title string
	if m := titleRe.FindStringSubmatch(page); m != nil {
		title = strings.TrimSpace(m[1])
	}

	result, err := s.Text.ExtractRecipeFromText(ctx, ai.ExtractRequest{Title: title, Text: text})
	if err != nil {
		return nil, fmt.Errorf("extract recipe: %w", err)
	}
	if strings.TrimSpace(result.Title) == "" {
		return nil, NewValidationError("no recipe found on page")
	}
	return resultToRecipe(result, 0, models.RecipeSourceExternal), nil
}

// ldRecipe is the subset of schema.org/Recipe read from JSON-LD.
type ldRecipe struct {
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Ingredients  []string    `json:"recipeIngredient"`
	Instructions interface{} `json:"recipeInstructions"`
	CookTime     string      `json:"cookTime"`
	TotalTime    string      `json:"totalTime"`
	Yield        interface{} `json:"recipeYield"`
	Image        interface{} `json:"image"`
	Keywords     interface{} `json:"keywords"`
	Category     interface{} `json:"recipeCategory"`
	Cuisine      interface{} `json:"recipeCuisine"`
}

// parseStructuredRecipe returns the first schema.org Recipe in the page's
// JSON-LD blocks.
func parseStructuredRecipe(page string) (*models.Recipe, error) {
	for _, m := range ldScriptRe.FindAllStringSubmatch(page, -1) {
		var doc interface{}
		if err := json.Unmarshal([]byte(strings.TrimSpace(m[1])), &doc); err != nil {
			continue
		}
		if node := findRecipeNode(doc); node != nil {
			raw, err := json.Marshal(node)
			if err != nil {
				continue
			}
			var ld ldRecipe
			if err := json.Unmarshal(raw, &ld); err != nil {
				continue
			}
			if strings.TrimSpace(ld.Name) == "" {
				continue
			}
			return ld.toRecipe(), nil
		}
	}
	return nil, errNoStructuredRecipe
}

// findRecipeNode walks arrays and @graph containers looking for a Recipe.
func findRecipeNode(doc interface{}) map[string]interface{} {
	switch v := doc.(type) {
	case []interface{}:
		for _, item := range v {
			if node := findRecipeNode(item); node != nil {
				return node
			}
		}
	case map[string]interface{}:
		if isRecipeType(v["@type"]) {
			return v
		}
		if graph, ok := v["@graph"]; ok {
			return findRecipeNode(graph)
		}
	}
	return nil
}

func isRecipeType(t interface{}) bool {
	for _, s := range stringList(t) {
		if s == "Recipe" || strings.HasSuffix(s, "/Recipe") {
			return true
		}
	}
	return false
}

func (ld *ldRecipe) toRecipe() *models.Recipe {
	cookTime := parseISODuration(ld.CookTime)
	if cookTime == 0 {
		cookTime = parseISODuration(ld.TotalTime)
	}

	var tags []string
	for _, field := range []interface{}{ld.Category, ld.Cuisine, ld.Keywords} {
		for _, s := range stringList(field) {
			tags = append(tags, search.SplitPhrases(s)...)
		}
	}

	return &models.Recipe{
		Title:        strings.TrimSpace(ld.Name),
		Description:  strings.TrimSpace(ld.Description),
		Ingredients:  cleanList(ld.Ingredients),
		Instructions: cleanList(parseInstructions(ld.Instructions)),
		Tags:         dedupe(tags),
		CookTime:     cookTime,
		Servings:     parseYield(ld.Yield),
		ImageURL:     parseImage(ld.Image),
	}
}

// parseInstructions flattens text, HowToStep and HowToSection forms.
func parseInstructions(v interface{}) []string {
	switch x := v.(type) {
	case string:
		return []string{x}
	case []interface{}:
		var steps []string
		for _, item := range x {
			steps = append(steps, parseInstructions(item)...)
		}
		return steps
	case map[string]interface{}:
		if text, ok := x["text"].(string); ok {
			return []string{text}
		}
		return parseInstructions(x["itemListElement"])
	}
	return nil
}

// parseISODuration converts an ISO 8601 duration such as PT1H30M to whole
// minutes, rounding 30 seconds and up.
func parseISODuration(d string) int {
	m := durationRe.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(d)))
	if m == nil {
		return 0
	}
	n := func(s string) int {
		v, _ := strconv.Atoi(s)
		return v
	}
	minutes := n(m[1])*24*60 + n(m[2])*60 + n(m[3])
	if n(m[4]) >= 30 {
		minutes++
	}
	return minutes
}

// parseYield reads the leading number of recipeYield.
func parseYield(v interface{}) int {
	switch x := v.(type) {
	case float64:
		return int(x)
	case string:
		if s := leadIntRe.FindString(x); s != "" {
			n, _ := strconv.Atoi(s)
			return n
		}
	case []interface{}:
		for _, item := range x {
			if n := parseYield(item); n > 0 {
				return n
			}
		}
	}
	return 0
}

// parseImage accepts a URL, a list of URLs or an ImageObject.
func parseImage(v interface{}) string {
	switch x := v.(type) {
	case string:
		if govalidator.IsRequestURL(x) {
			return x
		}
	case []interface{}:
		for _, item := range x {
			if u := parseImage(item); u != "" {
				return u
			}
		}
	case map[string]interface{}:
		return parseImage(x["url"])
	}
	return ""
}

// stringList accepts a string or an array of strings.
func stringList(v interface{}) []string {
	switch x := v.(type) {
	case string:
		return []string{x}
	case []interface{}:
		out := make([]string, 0, len(x))
		for _, item := range x {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		key := strings.ToLower(strings.TrimSpace(s))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, strings.TrimSpace(s))
	}
	return out
}
