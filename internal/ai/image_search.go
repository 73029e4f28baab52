package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/windoze95/forkful-api/internal/logger"
	"go.uber.org/zap"
)

const (
	braveImageEndpoint  = "https://api.search.brave.com/res/v1/images/search"
	googleImageEndpoint = "https://www.googleapis.com/customsearch/v1"
)

// WebImageSearchProvider implements ImageSearchProvider using Brave image
// search with Google Custom Search as the fallback. A provider that reports
// its quota exhausted is skipped until restart.
type WebImageSearchProvider struct {
	googleAPIKey    string
	googleCX        string
	braveAPIKey     string
	braveEndpoint   string
	googleEndpoint  string
	httpClient      *http.Client
	googleExhausted atomic.Bool
	braveExhausted  atomic.Bool
}

// NewWebImageSearchProvider creates a search provider with Brave primary + Google fallback.
func NewWebImageSearchProvider(googleAPIKey, googleCX, braveAPIKey string) *WebImageSearchProvider {
	return &WebImageSearchProvider{
		googleAPIKey:   googleAPIKey,
		googleCX:       googleCX,
		braveAPIKey:    braveAPIKey,
		braveEndpoint:  braveImageEndpoint,
		googleEndpoint: googleImageEndpoint,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Enabled reports whether any backend is configured.
func (p *WebImageSearchProvider) Enabled() bool {
	return p.braveAPIKey != "" || (p.googleAPIKey != "" && p.googleCX != "")
}

// SearchImage tries Brave first and falls back to Google.
func (p *WebImageSearchProvider) SearchImage(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", nil
	}

	if !p.braveExhausted.Load() && p.braveAPIKey != "" {
		img, err := p.searchBrave(ctx, query)
		if err == nil && img != "" {
			return img, nil
		}
		if err != nil {
			logger.Get().Warn("brave image search failed, falling back to google", zap.Error(err))
		}
	}

	if !p.googleExhausted.Load() && p.googleAPIKey != "" && p.googleCX != "" {
		return p.searchGoogle(ctx, query)
	}

	return "", nil
}

type braveImageResponse struct {
	Results []braveImageResult `json:"results"`
}

type braveImageResult struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	Properties struct {
		URL string `json:"url"`
	} `json:"properties"`
	Thumbnail struct {
		Src string `json:"src"`
	} `json:"thumbnail"`
}

func (p *WebImageSearchProvider) searchBrave(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("q", query+" food")
	params.Set("count", "5")
	params.Set("safesearch", "strict")

	body, status, err := p.get(ctx, p.braveEndpoint+"?"+params.Encode(), map[string]string{
		"X-Subscription-Token": p.braveAPIKey,
		"Accept":               "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("brave image search request failed: %w", err)
	}
	if status == http.StatusTooManyRequests || status == http.StatusForbidden {
		p.braveExhausted.Store(true)
		return "", fmt.Errorf("brave quota exhausted (status %d)", status)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("brave API returned status %d: %s", status, string(body))
	}

	var bResp braveImageResponse
	if err := json.Unmarshal(body, &bResp); err != nil {
		return "", fmt.Errorf("failed to parse brave response: %w", err)
	}
	for _, r := range bResp.Results {
		if isHTTPURL(r.Properties.URL) {
			return r.Properties.URL, nil
		}
		if isHTTPURL(r.Thumbnail.Src) {
			return r.Thumbnail.Src, nil
		}
	}
	return "", nil
}

type googleImageResponse struct {
	Items []struct {
		Link string `json:"link"`
		Mime string `json:"mime"`
	} `json:"items"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *WebImageSearchProvider) searchGoogle(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("key", p.googleAPIKey)
	params.Set("cx", p.googleCX)
	params.Set("q", query)
	params.Set("searchType", "image")
	params.Set("safe", "active")
	params.Set("num", "5")

	body, status, err := p.get(ctx, p.googleEndpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("google image search request failed: %w", err)
	}
	if status == http.StatusTooManyRequests || status == http.StatusForbidden {
		p.googleExhausted.Store(true)
		return "", fmt.Errorf("google quota exhausted (status %d)", status)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("google API returned status %d: %s", status, string(body))
	}

	var gResp googleImageResponse
	if err := json.Unmarshal(body, &gResp); err != nil {
		return "", fmt.Errorf("failed to parse google response: %w", err)
	}
	if gResp.Error != nil {
		if gResp.Error.Code == http.StatusTooManyRequests || gResp.Error.Code == http.StatusForbidden {
			p.googleExhausted.Store(true)
		}
		return "", fmt.Errorf("google API error %d: %s", gResp.Error.Code, gResp.Error.Message)
	}
	for _, item := range gResp.Items {
		if isHTTPURL(item.Link) {
			return item.Link, nil
		}
	}
	return "", nil
}

func (p *WebImageSearchProvider) get(ctx context.Context, reqURL string, headers map[string]string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "https" || u.Scheme == "http") && u.Host != ""
}

// extractDomain pulls the hostname from a URL string.
func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
