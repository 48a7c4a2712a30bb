package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kotobamud/engine/pkg/chat"
)

const (
	edenAIBaseURL        = "https://api.edenai.run/v2"
	edenAIProvider       = "openai"
	edenAIRequestTimeout = 90 * time.Second // image generation is slow
)

// EdenAIService implements ImageService against the Eden AI image
// generation aggregator.
type EdenAIService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type edenAIRequest struct {
	Providers  string `json:"providers"`
	Text       string `json:"text"`
	Resolution string `json:"resolution"`
	NumImages  int    `json:"num_images"`
}

// edenAIProviderResult is the per-provider block of the response.
type edenAIProviderResult struct {
	Status string `json:"status"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
	Items []struct {
		ImageResourceURL string `json:"image_resource_url"`
	} `json:"items"`
}

// NewEdenAIService creates an Eden AI image service.
func NewEdenAIService(apiKey string) *EdenAIService {
	return &EdenAIService{
		apiKey:  apiKey,
		baseURL: edenAIBaseURL,
		httpClient: &http.Client{
			Timeout: edenAIRequestTimeout,
		},
	}
}

// GenerateImage requests one image and downloads the resulting
// resource URL.
func (s *EdenAIService) GenerateImage(ctx context.Context, prompt string, resolution string) ([]byte, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("edenai api key is not set: %w", chat.ErrGenerationUnavailable)
	}
	if resolution == "" {
		resolution = DefaultResolution
	}

	reqBody, err := json.Marshal(edenAIRequest{
		Providers:  edenAIProvider,
		Text:       prompt,
		Resolution: resolution,
		NumImages:  1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/image/generation", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v: %w", err, chat.ErrGenerationUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %v: %w", err, chat.ErrGenerationUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api request failed with status %d: %s: %w", resp.StatusCode, string(body), chat.ErrGenerationUnavailable)
	}

	var results map[string]edenAIProviderResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %v: %w", err, chat.ErrGenerationUnavailable)
	}

	provider, ok := results[edenAIProvider]
	if !ok {
		return nil, fmt.Errorf("no %s result in response: %w", edenAIProvider, chat.ErrGenerationUnavailable)
	}
	if provider.Error != nil {
		return nil, fmt.Errorf("provider error: %s: %w", provider.Error.Message, chat.ErrGenerationUnavailable)
	}
	if len(provider.Items) == 0 || provider.Items[0].ImageResourceURL == "" {
		return nil, fmt.Errorf("no image items returned: %w", chat.ErrGenerationUnavailable)
	}

	return s.download(ctx, provider.Items[0].ImageResourceURL)
}

// download fetches the generated image bytes from the resource URL.
func (s *EdenAIService) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image download failed: %v: %w", err, chat.ErrGenerationUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image download failed with status %d: %w", resp.StatusCode, chat.ErrGenerationUnavailable)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image bytes: %v: %w", err, chat.ErrGenerationUnavailable)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image payload: %w", chat.ErrGenerationUnavailable)
	}
	return data, nil
}
