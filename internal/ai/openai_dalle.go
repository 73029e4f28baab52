package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/windoze95/forkful-api/internal/logger"
	"go.uber.org/zap"
)

// DALLEProvider implements ImageProvider using OpenAI DALL-E 3.
type DALLEProvider struct {
	client    *openai.Client
	retryWait time.Duration
}

// NewDALLEProvider creates a new DALL-E image generation provider.
func NewDALLEProvider(apiKey string) *DALLEProvider {
	return NewDALLEProviderWithConfig(openai.DefaultConfig(apiKey))
}

// NewDALLEProviderWithConfig creates a DALL-E provider from a full client config.
func NewDALLEProviderWithConfig(cfg openai.ClientConfig) *DALLEProvider {
	return &DALLEProvider{client: openai.NewClientWithConfig(cfg), retryWait: 2 * time.Second}
}

// GenerateImage generates an image using DALL-E 3 and returns the raw bytes.
func (p *DALLEProvider) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	if prompt == "" {
		return nil, errors.New("image prompt is empty")
	}

	const maxRetries = 3
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		resp, err := p.client.CreateImage(ctx, openai.ImageRequest{
			Model:          openai.CreateImageModelDallE3,
			Prompt:         prompt,
			Size:           openai.CreateImageSize1024x1024,
			ResponseFormat: openai.CreateImageResponseFormatB64JSON,
			N:              1,
		})
		if err == nil {
			if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
				return nil, errors.New("DALL-E API returned an empty image")
			}
			imgBytes, decErr := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
			if decErr != nil {
				return nil, fmt.Errorf("base64 decode error: %w", decErr)
			}
			return imgBytes, nil
		}

		lastErr = err
		if !isRetryableOpenAIError(err) {
			return nil, fmt.Errorf("DALL-E API error: %w", err)
		}

		logger.Get().Warn("DALL-E API error, retrying",
			zap.Error(err),
			zap.Int("attempt", i+1),
		)

		if i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(p.retryWait * time.Duration(i+1)):
			}
		}
	}

	return nil, fmt.Errorf("DALL-E API: exhausted %d retries: %w", maxRetries, lastErr)
}

// isRetryableOpenAIError reports whether an OpenAI API error is worth retrying.
func isRetryableOpenAIError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 429, 500, 502, 503:
			return true
		}
	}
	return false
}
