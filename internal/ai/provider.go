package ai

import "context"

// TextProvider handles recipe text tasks (Claude).
type TextProvider interface {
	GenerateRecipe(ctx context.Context, req RecipeRequest) (*RecipeResult, error)
	ExtractRecipeFromText(ctx context.Context, req ExtractRequest) (*RecipeResult, error)
}

// ImageProvider handles image generation (DALL-E 3).
type ImageProvider interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

// ImageSearchProvider finds an existing photo for a dish on the web.
type ImageSearchProvider interface {
	// SearchImage returns the URL of the best image for query, or "" when
	// nothing suitable was found.
	SearchImage(ctx context.Context, query string) (string, error)
}

// SocialProvider resolves a social media post URL into its public metadata.
type SocialProvider interface {
	FetchMetadata(ctx context.Context, postURL string) (*SocialMetadata, error)
}

// RecipeRequest holds parameters for generating a new recipe.
type RecipeRequest struct {
	UserPrompt string
}

// ExtractRequest holds the text of a post to turn into a recipe.
type ExtractRequest struct {
	Title  string
	Author string
	Text   string
}

// RecipeResult is the structured output from any recipe-generating call.
type RecipeResult struct {
	Title        string
	Description  string
	Ingredients  []string
	Instructions []string
	Tags         []string
	Difficulty   string
	CookTime     int
	Servings     int
}

// SocialMetadata is what a platform's oEmbed endpoint exposes about a post.
type SocialMetadata struct {
	Platform     string `json:"platform"`
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
	URL          string `json:"url"`
}
