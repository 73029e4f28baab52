package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/windoze95/forkful-api/internal/config"
	"github.com/windoze95/forkful-api/internal/logger"
	"go.uber.org/zap"
)

const saveRecipeTool = "save_recipe"

// AnthropicProvider implements TextProvider using Claude.
type AnthropicProvider struct {
	client     anthropic.Client
	model      anthropic.Model
	prompts    *config.Prompts
	maxRetries int
	// retryWait overrides the per-error base backoff when set.
	retryWait time.Duration
}

// NewAnthropicProvider creates a new AnthropicProvider with the given API key
// and prompt configuration. Extra client options are passed to the SDK.
func NewAnthropicProvider(apiKey string, prompts *config.Prompts, opts ...option.RequestOption) *AnthropicProvider {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &AnthropicProvider{
		client:     anthropic.NewClient(opts...),
		model:      anthropic.ModelClaude3_5Sonnet20241022,
		prompts:    prompts,
		maxRetries: 5,
	}
}

// recipeTool builds the tool definition Claude must call with the recipe.
func recipeTool() anthropic.ToolUnionParam {
	return anthropic.ToolUnionParam{
		OfTool: &anthropic.ToolParam{
			Name:        saveRecipeTool,
			Description: anthropic.String("Save a complete, structured recipe."),
			InputSchema: anthropic.ToolInputSchemaParam{
				Type: "object",
				Properties: map[string]interface{}{
					"title": map[string]interface{}{
						"type":        "string",
						"description": "Title of the dish",
					},
					"description": map[string]interface{}{
						"type":        "string",
						"description": "One or two sentences describing the dish",
					},
					"ingredients": map[string]interface{}{
						"type":        "array",
						"description": "Ingredients with quantity and unit, one per entry, e.g. '2 cups flour'",
						"items":       map[string]interface{}{"type": "string"},
					},
					"instructions": map[string]interface{}{
						"type":        "array",
						"description": "Steps to prepare the recipe (no numbering)",
						"items":       map[string]interface{}{"type": "string"},
					},
					"tags": map[string]interface{}{
						"type":        "array",
						"description": "Short lowercase labels: cuisine, course, diet, occasion, main ingredient",
						"items":       map[string]interface{}{"type": "string"},
					},
					"difficulty": map[string]interface{}{
						"type": "string",
						"enum": []string{"Easy", "Medium", "Hard"},
					},
					"cook_time": map[string]interface{}{
						"type":        "number",
						"description": "Total time to prepare the recipe in minutes",
					},
					"servings": map[string]interface{}{
						"type":        "number",
						"description": "Number of servings the recipe makes",
					},
				},
			},
		},
	}
}

// recipeToolResult is the JSON structure returned by the save_recipe tool call.
type recipeToolResult struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	Tags         []string `json:"tags"`
	Difficulty   string   `json:"difficulty"`
	CookTime     float64  `json:"cook_time"`
	Servings     float64  `json:"servings"`
}

func (tr *recipeToolResult) toRecipeResult() *RecipeResult {
	return &RecipeResult{
		Title:        strings.TrimSpace(tr.Title),
		Description:  strings.TrimSpace(tr.Description),
		Ingredients:  tr.Ingredients,
		Instructions: tr.Instructions,
		Tags:         tr.Tags,
		Difficulty:   tr.Difficulty,
		CookTime:     int(tr.CookTime),
		Servings:     int(tr.Servings),
	}
}

// newUserMessage creates a user message param with the given content blocks.
func newUserMessage(blocks ...anthropic.ContentBlockParamUnion) anthropic.MessageParam {
	return anthropic.MessageParam{
		Role:    anthropic.MessageParamRoleUser,
		Content: blocks,
	}
}

// createMessageWithRetry wraps the Claude API call with linear backoff.
func (p *AnthropicProvider) createMessageWithRetry(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	var lastErr error

	for i := 0; i < p.maxRetries; i++ {
		resp, err := p.client.Messages.New(ctx, params)
		if err == nil {
			return resp, nil
		}

		lastErr = err
		shouldRetry, waitTime := classifyAnthropicError(err)
		if !shouldRetry {
			return nil, fmt.Errorf("claude API error: %w", err)
		}

		logger.Get().Warn("claude API error, retrying",
			zap.Error(err),
			zap.Int("attempt", i+1),
		)

		if p.retryWait > 0 {
			waitTime = p.retryWait
		}
		backoff := waitTime * time.Duration(i+1)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return nil, fmt.Errorf("claude API: exhausted %d retries: %w", p.maxRetries, lastErr)
}

// classifyAnthropicError determines whether to retry and the base wait duration.
func classifyAnthropicError(err error) (shouldRetry bool, waitTime time.Duration) {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests:
			return true, 2 * time.Second
		case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
			return true, 2 * time.Second
		default:
			return false, 0
		}
	}
	return false, 0
}

// extractRecipeFromToolUse parses the tool-use content block returned by Claude.
func extractRecipeFromToolUse(msg *anthropic.Message) (*RecipeResult, error) {
	for _, block := range msg.Content {
		if block.Type == "tool_use" {
			raw, err := json.Marshal(block.Input)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal tool input: %w", err)
			}
			return parseRecipeToolInput(raw)
		}
	}
	return nil, errors.New("no tool_use block found in Claude response")
}

func parseRecipeToolInput(raw []byte) (*RecipeResult, error) {
	var tr recipeToolResult
	if err := json.Unmarshal(raw, &tr); err != nil {
		return nil, fmt.Errorf("failed to parse recipe tool result: %w", err)
	}
	if strings.TrimSpace(tr.Title) == "" {
		return nil, errors.New("recipe tool result has no title")
	}
	return tr.toRecipeResult(), nil
}

// recipeCall sends one forced save_recipe call and parses the result.
func (p *AnthropicProvider) recipeCall(ctx context.Context, pair config.PromptPair, data map[string]interface{}) (*RecipeResult, error) {
	sysPrompt, err := config.RenderPrompt(pair.System, data)
	if err != nil {
		return nil, fmt.Errorf("render system prompt: %w", err)
	}
	userPrompt, err := config.RenderPrompt(pair.User, data)
	if err != nil {
		return nil, fmt.Errorf("render user prompt: %w", err)
	}

	params := anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: 4096,
		System: []anthropic.TextBlockParam{
			{Text: sysPrompt},
		},
		Messages: []anthropic.MessageParam{
			newUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
		Tools: []anthropic.ToolUnionParam{recipeTool()},
		ToolChoice: anthropic.ToolChoiceUnionParam{
			OfToolChoiceTool: &anthropic.ToolChoiceToolParam{
				Name: saveRecipeTool,
			},
		},
	}

	resp, err := p.createMessageWithRetry(ctx, params)
	if err != nil {
		return nil, err
	}

	return extractRecipeFromToolUse(resp)
}

// GenerateRecipe creates a new recipe via Claude tool use.
func (p *AnthropicProvider) GenerateRecipe(ctx context.Context, req RecipeRequest) (*RecipeResult, error) {
	return p.recipeCall(ctx, p.prompts.Recipe.Generate, map[string]interface{}{
		"Prompt": req.UserPrompt,
	})
}

// ExtractRecipeFromText extracts a structured recipe from a post caption.
func (p *AnthropicProvider) ExtractRecipeFromText(ctx context.Context, req ExtractRequest) (*RecipeResult, error) {
	return p.recipeCall(ctx, p.prompts.Recipe.Extract, map[string]interface{}{
		"Title":  req.Title,
		"Author": req.Author,
		"Text":   req.Text,
	})
}
