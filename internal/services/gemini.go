package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/kotobamud/engine/pkg/chat"
)

// GeminiService implements LLMService against the Google Gemini API.
type GeminiService struct {
	client    *genai.Client
	modelName string
}

// NewGeminiService creates a Gemini-backed LLM service.
func NewGeminiService(ctx context.Context, apiKey string, modelName string) (*GeminiService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is not set: %w", chat.ErrGenerationUnavailable)
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &GeminiService{
		client:    client,
		modelName: modelName,
	}, nil
}

// Close releases the underlying client.
func (s *GeminiService) Close() error {
	return s.client.Close()
}

// InitModel initializes the model name used for subsequent calls.
func (s *GeminiService) InitModel(ctx context.Context, modelName string) error {
	if modelName != "" {
		s.modelName = modelName
	}
	return nil
}

// GetChatResponse generates a plain-text response.
func (s *GeminiService) GetChatResponse(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
	text, err := s.generate(ctx, messages, 0.7, "")
	if err != nil {
		return nil, err
	}
	return &chat.ChatResponse{Message: text}, nil
}

// GenerateJSON generates a structured response with a JSON response
// MIME type and validates the required fields.
func (s *GeminiService) GenerateJSON(ctx context.Context, messages []chat.ChatMessage, required []string, temperature float64) (map[string]any, error) {
	text, err := s.generate(ctx, messages, temperature, "application/json")
	if err != nil {
		return nil, err
	}

	var result map[string]any
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("parsing json response: %v: %w", err, chat.ErrGenerationUnavailable)
	}
	if err := validateRequired(result, required); err != nil {
		return nil, err
	}
	return result, nil
}

// generate maps the chat message array onto Gemini's system
// instruction + chat history shape and runs one generation.
func (s *GeminiService) generate(ctx context.Context, messages []chat.ChatMessage, temperature float64, responseMIME string) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages provided")
	}

	model := s.client.GenerativeModel(s.modelName)
	model.SetTemperature(float32(temperature))
	if responseMIME != "" {
		model.ResponseMIMEType = responseMIME
	}

	var system []string
	var turns []chat.ChatMessage
	for _, m := range messages {
		if m.Role == chat.ChatRoleSystem {
			system = append(system, m.Content)
			continue
		}
		turns = append(turns, m)
	}
	if len(system) > 0 {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(strings.Join(system, "\n\n"))},
		}
	}
	if len(turns) == 0 {
		return "", fmt.Errorf("no user messages provided")
	}

	cs := model.StartChat()
	for _, m := range turns[:len(turns)-1] {
		role := "user"
		if m.Role == chat.ChatRoleAgent {
			role = "model"
		}
		cs.History = append(cs.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}

	resp, err := cs.SendMessage(ctx, genai.Text(turns[len(turns)-1].Content))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %v: %w", err, chat.ErrGenerationUnavailable)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates returned: %w", chat.ErrGenerationUnavailable)
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok || string(text) == "" {
		return "", fmt.Errorf("no text content in response: %w", chat.ErrGenerationUnavailable)
	}
	return string(text), nil
}
