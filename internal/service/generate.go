package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/asaskevich/govalidator"
	"github.com/windoze95/forkful-api/internal/ai"
	"github.com/windoze95/forkful-api/internal/cache"
	"github.com/windoze95/forkful-api/internal/config"
	"github.com/windoze95/forkful-api/internal/logger"
	"github.com/windoze95/forkful-api/internal/models"
	"github.com/windoze95/forkful-api/internal/repository"
	"github.com/windoze95/forkful-api/internal/s3"
	"github.com/windoze95/forkful-api/internal/search"
	"go.uber.org/zap"
)

const maxPromptLength = 1000

// GenerateService creates recipes with the LLM, from a prompt or a social post.
type GenerateService struct {
	Cfg    *config.Config
	Repo   repository.RecipeRepo
	Text   ai.TextProvider
	Social ai.SocialProvider
	Images *ImageFinder
	// Cache holds AI results keyed by a hash of their input.
	Cache cache.Cache
}

// NewGenerateService is the constructor function for initializing a new GenerateService.
func NewGenerateService(cfg *config.Config, repo repository.RecipeRepo, text ai.TextProvider, social ai.SocialProvider, images *ImageFinder, c cache.Cache) *GenerateService {
	return &GenerateService{
		Cfg:    cfg,
		Repo:   repo,
		Text:   text,
		Social: social,
		Images: images,
		Cache:  c,
	}
}

// hashKey builds a cache key from a namespace and normalized input.
func hashKey(namespace, input string) string {
	sum := sha256.Sum256([]byte(search.NormalizeField(input)))
	return namespace + ":" + hex.EncodeToString(sum[:])
}

// cachedResult returns the AI result stored under key, or calls produce and
// stores its result. Cache failures are logged and otherwise ignored.
func (s *GenerateService) cachedResult(ctx context.Context, key string, produce func() (*ai.RecipeResult, error)) (*ai.RecipeResult, error) {
	log := logger.Get().With(zap.String("cache_key", key))

	if data, ok, err := s.Cache.Get(ctx, key); err != nil {
		log.Warn("ai cache read failed", zap.Error(err))
	} else if ok {
		var result ai.RecipeResult
		if err := json.Unmarshal(data, &result); err == nil {
			return &result, nil
		}
		log.Warn("discarding unreadable ai cache entry")
	}

	result, err := produce()
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(result); err == nil {
		if err := s.Cache.Set(ctx, key, data); err != nil {
			log.Warn("ai cache write failed", zap.Error(err))
		}
	}
	return result, nil
}

// resultToRecipe maps an AI result to a discoverable recipe owned by userID.
func resultToRecipe(r *ai.RecipeResult, userID uint, source models.RecipeSource) *models.Recipe {
	difficulty := ""
	if search.IsValidDifficulty(r.Difficulty) {
		difficulty = search.NormalizeDifficulty(r.Difficulty)
	}
	return &models.Recipe{
		Title:          r.Title,
		Description:    r.Description,
		Ingredients:    cleanList(r.Ingredients),
		Instructions:   cleanList(r.Instructions),
		Tags:           cleanList(r.Tags),
		Difficulty:     difficulty,
		CookTime:       max(r.CookTime, 0),
		Servings:       max(r.Servings, 0),
		Source:         source,
		IsDiscoverable: source.Discoverable(),
		CreatedByID:    userID,
	}
}

// GenerateRecipe creates a recipe from a free-text prompt.
func (s *GenerateService) GenerateRecipe(ctx context.Context, userID uint, prompt string) (*models.Recipe, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, NewValidationError("prompt is required")
	}
	if utf8.RuneCountInString(prompt) > maxPromptLength {
		return nil, NewValidationError(fmt.Sprintf("prompt must be at most %d characters", maxPromptLength))
	}

	result, err := s.cachedResult(ctx, hashKey("recipe", prompt), func() (*ai.RecipeResult, error) {
		return s.Text.GenerateRecipe(ctx, ai.RecipeRequest{UserPrompt: prompt})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate recipe: %w", err)
	}

	recipe := resultToRecipe(result, userID, models.RecipeSourceAI)
	if err := s.Repo.CreateRecipe(ctx, recipe); err != nil {
		return nil, fmt.Errorf("failed to save generated recipe: %w", err)
	}

	s.attachImage(ctx, recipe)
	return recipe, nil
}

// ImportSocial creates a recipe from a TikTok, YouTube or Instagram post.
func (s *GenerateService) ImportSocial(ctx context.Context, userID uint, postURL string) (*models.Recipe, error) {
	postURL = strings.TrimSpace(postURL)
	if !govalidator.IsRequestURL(postURL) {
		return nil, NewValidationError("url must be a valid http(s) URL")
	}

	meta, err := s.Social.FetchMetadata(ctx, postURL)
	if errors.Is(err, ai.ErrUnsupportedPlatform) {
		return nil, NewValidationError("only TikTok, YouTube and Instagram links can be imported")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch post metadata: %w", err)
	}
	if strings.TrimSpace(meta.Title) == "" {
		return nil, NewValidationError("the post has no caption to import")
	}

	result, err := s.cachedResult(ctx, hashKey("import", postURL), func() (*ai.RecipeResult, error) {
		return s.Text.ExtractRecipeFromText(ctx, ai.ExtractRequest{
			Title:  meta.Title,
			Author: meta.AuthorName,
			Text:   meta.Title,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to extract recipe: %w", err)
	}

	recipe := resultToRecipe(result, userID, models.RecipeSourceSocial)
	recipe.SourceURL = postURL
	recipe.ImageURL = meta.ThumbnailURL
	if err := s.Repo.CreateRecipe(ctx, recipe); err != nil {
		return nil, fmt.Errorf("failed to save imported recipe: %w", err)
	}

	if recipe.ImageURL == "" {
		s.attachImage(ctx, recipe)
	}
	return recipe, nil
}

// attachImage finds an image for a new recipe. Failures leave it without one.
func (s *GenerateService) attachImage(ctx context.Context, recipe *models.Recipe) {
	if s.Images == nil {
		return
	}
	log := logger.Get().With(zap.Uint("recipe_id", recipe.ID))

	imageURL, err := s.Images.FindImage(ctx, recipe.ID, recipe.Title)
	if err != nil {
		log.Warn("recipe image lookup failed", zap.Error(err))
		return
	}
	if imageURL == "" {
		return
	}
	if err := s.Repo.UpdateRecipeImageURL(ctx, recipe.ID, imageURL); err != nil {
		log.Warn("failed to save recipe image url", zap.Error(err))
		return
	}
	recipe.ImageURL = imageURL
}

// ImageFinder looks up a photo for a dish, generating one when the web has none.
type ImageFinder struct {
	Search    ai.ImageSearchProvider
	Generator ai.ImageProvider
	Store     ImageStore
	Prompts   *config.Prompts
	// Cache maps normalized titles to web image URLs.
	Cache cache.Cache
}

// FindImage returns an image URL for the recipe titled title. Web results are
// cached by title. Generated images are stored under the recipe's own key and
// are not shared between recipes.
func (f *ImageFinder) FindImage(ctx context.Context, recipeID uint, title string) (string, error) {
	key := "image:" + search.NormalizeField(title)
	log := logger.Get().With(zap.Uint("recipe_id", recipeID))

	if f.Cache != nil {
		if data, ok, err := f.Cache.Get(ctx, key); err != nil {
			log.Warn("image cache read failed", zap.Error(err))
		} else if ok && len(data) > 0 {
			return string(data), nil
		}
	}

	if f.Search != nil {
		imageURL, err := f.Search.SearchImage(ctx, title+" recipe")
		if err != nil {
			log.Warn("image search failed", zap.Error(err))
		} else if imageURL != "" {
			if f.Cache != nil {
				if err := f.Cache.Set(ctx, key, []byte(imageURL)); err != nil {
					log.Warn("image cache write failed", zap.Error(err))
				}
			}
			return imageURL, nil
		}
	}

	if f.Generator == nil || f.Store == nil {
		return "", nil
	}

	prompt := title
	if f.Prompts != nil && f.Prompts.Image.Generate != "" {
		rendered, err := config.RenderPrompt(f.Prompts.Image.Generate, map[string]interface{}{"Title": title})
		if err != nil {
			return "", fmt.Errorf("render image prompt: %w", err)
		}
		prompt = rendered
	}

	img, err := f.Generator.GenerateImage(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate image: %w", err)
	}
	return f.Store.Upload(ctx, s3.GenerateS3Key(recipeID), img)
}
