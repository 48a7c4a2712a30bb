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
	openAIBaseURL        = "https://api.openai.com/v1"
	openAIRequestTimeout = 60 * time.Second
	openAIMaxTokens      = 300
)

// OpenAIService implements LLMService against the OpenAI chat
// completions API.
type OpenAIService struct {
	apiKey     string
	modelName  string
	baseURL    string
	httpClient *http.Client
}

// openAIRequest is the chat completions request body.
type openAIRequest struct {
	Model          string             `json:"model"`
	Messages       []chat.ChatMessage `json:"messages"`
	Temperature    float64            `json:"temperature,omitempty"`
	MaxTokens      int                `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat    `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"` // "json_object"
}

// openAIResponse is the chat completions response body.
type openAIResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
			Refusal string `json:"refusal,omitempty"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// NewOpenAIService creates an OpenAI-backed LLM service.
func NewOpenAIService(apiKey string, modelName string) *OpenAIService {
	return &OpenAIService{
		apiKey:    apiKey,
		modelName: modelName,
		baseURL:   openAIBaseURL,
		httpClient: &http.Client{
			Timeout: openAIRequestTimeout,
		},
	}
}

// InitModel initializes the model. OpenAI needs no explicit
// initialization, but a missing key is caught here rather than on the
// first player command.
func (s *OpenAIService) InitModel(ctx context.Context, modelName string) error {
	if s.apiKey == "" {
		return fmt.Errorf("openai api key is not set: %w", chat.ErrGenerationUnavailable)
	}
	if modelName != "" {
		s.modelName = modelName
	}
	return nil
}

// GetChatResponse generates a plain-text response.
func (s *OpenAIService) GetChatResponse(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
	content, err := s.complete(ctx, openAIRequest{
		Model:       s.modelName,
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   openAIMaxTokens,
	})
	if err != nil {
		return nil, err
	}
	return &chat.ChatResponse{Message: content}, nil
}

// GenerateJSON generates a structured response in JSON mode and
// validates the required fields.
func (s *OpenAIService) GenerateJSON(ctx context.Context, messages []chat.ChatMessage, required []string, temperature float64) (map[string]any, error) {
	content, err := s.complete(ctx, openAIRequest{
		Model:          s.modelName,
		Messages:       messages,
		Temperature:    temperature,
		MaxTokens:      openAIMaxTokens,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, err
	}

	var result map[string]any
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("parsing json response: %v: %w", err, chat.ErrGenerationUnavailable)
	}
	if err := validateRequired(result, required); err != nil {
		return nil, err
	}
	return result, nil
}

// complete runs one chat completions request and returns the first
// choice's text content.
func (s *OpenAIService) complete(ctx context.Context, request openAIRequest) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("openai api key is not set: %w", chat.ErrGenerationUnavailable)
	}
	if len(request.Messages) == 0 {
		return "", fmt.Errorf("no messages provided")
	}

	reqBody, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/chat/completions", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %v: %w", err, chat.ErrGenerationUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %v: %w", err, chat.ErrGenerationUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("api request failed with status %d: %s: %w", resp.StatusCode, string(body), chat.ErrGenerationUnavailable)
	}

	var openAIResp openAIResponse
	if err := json.Unmarshal(body, &openAIResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %v: %w", err, chat.ErrGenerationUnavailable)
	}
	if openAIResp.Error != nil {
		return "", fmt.Errorf("api error: %s: %w", openAIResp.Error.Message, chat.ErrGenerationUnavailable)
	}
	if len(openAIResp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned: %w", chat.ErrGenerationUnavailable)
	}

	choice := openAIResp.Choices[0]
	if choice.Message.Refusal != "" {
		return "", fmt.Errorf("model refused to respond: %s: %w", choice.Message.Refusal, chat.ErrGenerationUnavailable)
	}
	if choice.Message.Content == "" {
		return "", fmt.Errorf("no text content in response: %w", chat.ErrGenerationUnavailable)
	}
	return choice.Message.Content, nil
}

// validateRequired checks that every required field is present and
// non-nil in a structured response.
func validateRequired(result map[string]any, required []string) error {
	for _, field := range required {
		if v, ok := result[field]; !ok || v == nil {
			return fmt.Errorf("response missing field %q: %w", field, chat.ErrIncompleteResponse)
		}
	}
	return nil
}
