package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrUnsupportedPlatform is returned for post URLs from unknown hosts.
var ErrUnsupportedPlatform = errors.New("unsupported social media platform")

// Supported platforms.
const (
	PlatformTikTok    = "tiktok"
	PlatformYouTube   = "youtube"
	PlatformInstagram = "instagram"
)

// OEmbedProvider implements SocialProvider using each platform's public
// oEmbed endpoint. Instagram requires a Meta app access token.
type OEmbedProvider struct {
	httpClient     *http.Client
	endpoints      map[string]string
	instagramToken string
}

// NewOEmbedProvider creates an oEmbed metadata provider.
func NewOEmbedProvider(instagramToken string) *OEmbedProvider {
	return &OEmbedProvider{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		endpoints: map[string]string{
			PlatformTikTok:    "https://www.tiktok.com/oembed",
			PlatformYouTube:   "https://www.youtube.com/oembed",
			PlatformInstagram: "https://graph.facebook.com/v19.0/instagram_oembed",
		},
		instagramToken: instagramToken,
	}
}

// DetectPlatform maps a post URL to its platform, or "" if unsupported.
func DetectPlatform(postURL string) string {
	host := extractDomain(postURL)
	switch {
	case host == "tiktok.com" || strings.HasSuffix(host, ".tiktok.com"):
		return PlatformTikTok
	case host == "youtube.com" || host == "youtu.be" || strings.HasSuffix(host, ".youtube.com"):
		return PlatformYouTube
	case host == "instagram.com" || strings.HasSuffix(host, ".instagram.com"):
		return PlatformInstagram
	}
	return ""
}

type oembedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// FetchMetadata returns the title, author and thumbnail of a post.
func (p *OEmbedProvider) FetchMetadata(ctx context.Context, postURL string) (*SocialMetadata, error) {
	platform := DetectPlatform(postURL)
	if platform == "" {
		return nil, ErrUnsupportedPlatform
	}

	params := url.Values{}
	params.Set("url", postURL)
	switch platform {
	case PlatformYouTube:
		params.Set("format", "json")
	case PlatformInstagram:
		if p.instagramToken == "" {
			return nil, fmt.Errorf("%w: instagram oEmbed is not configured", ErrUnsupportedPlatform)
		}
		params.Set("access_token", p.instagramToken)
		params.Set("fields", "title,author_name,thumbnail_url")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoints[platform]+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create oembed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oembed request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read oembed response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s oembed returned status %d", platform, resp.StatusCode)
	}

	var o oembedResponse
	if err := json.Unmarshal(body, &o); err != nil {
		return nil, fmt.Errorf("failed to parse oembed response: %w", err)
	}

	return &SocialMetadata{
		Platform:     platform,
		Title:        strings.TrimSpace(o.Title),
		AuthorName:   o.AuthorName,
		ThumbnailURL: o.ThumbnailURL,
		URL:          postURL,
	}, nil
}
