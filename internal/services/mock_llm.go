package services

import (
	"context"
	"sync"

	"github.com/kotobamud/engine/pkg/chat"
)

// MockLLMService is a mock implementation of LLMService for testing.
type MockLLMService struct {
	InitModelFunc       func(ctx context.Context, modelName string) error
	GetChatResponseFunc func(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error)
	GenerateJSONFunc    func(ctx context.Context, messages []chat.ChatMessage, required []string, temperature float64) (map[string]any, error)

	// Track calls for testing
	InitModelCalls       []string
	GetChatResponseCalls [][]chat.ChatMessage
	GenerateJSONCalls    []GenerateJSONCall

	mu sync.Mutex // protects all fields above
}

// GenerateJSONCall records one structured generation request.
type GenerateJSONCall struct {
	Messages    []chat.ChatMessage
	Required    []string
	Temperature float64
}

// NewMockLLMService creates a new mock LLM service.
func NewMockLLMService() *MockLLMService {
	return &MockLLMService{
		InitModelCalls:       make([]string, 0),
		GetChatResponseCalls: make([][]chat.ChatMessage, 0),
		GenerateJSONCalls:    make([]GenerateJSONCall, 0),
	}
}

// InitModel mocks model initialization.
func (m *MockLLMService) InitModel(ctx context.Context, modelName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InitModelCalls = append(m.InitModelCalls, modelName)
	if m.InitModelFunc != nil {
		return m.InitModelFunc(ctx, modelName)
	}
	return nil
}

// GetChatResponse mocks plain-text generation.
func (m *MockLLMService) GetChatResponse(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetChatResponseCalls = append(m.GetChatResponseCalls, messages)
	if m.GetChatResponseFunc != nil {
		return m.GetChatResponseFunc(ctx, messages)
	}
	return &chat.ChatResponse{Message: "Mock response"}, nil
}

// GenerateJSON mocks structured generation. The default response
// satisfies any required-field list by echoing placeholder strings.
func (m *MockLLMService) GenerateJSON(ctx context.Context, messages []chat.ChatMessage, required []string, temperature float64) (map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GenerateJSONCalls = append(m.GenerateJSONCalls, GenerateJSONCall{
		Messages:    messages,
		Required:    required,
		Temperature: temperature,
	})
	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, messages, required, temperature)
	}

	result := make(map[string]any, len(required))
	for _, field := range required {
		switch field {
		case "can_be_taken":
			result[field] = true
		case "vocabulary":
			result[field] = []any{"mock"}
		default:
			result[field] = "mock " + field
		}
	}
	return result, nil
}

// SetGenerateJSONError sets up the mock to fail structured generation.
func (m *MockLLMService) SetGenerateJSONError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateJSONFunc = func(ctx context.Context, messages []chat.ChatMessage, required []string, temperature float64) (map[string]any, error) {
		return nil, err
	}
}

// SetGenerateJSONResponse sets up the mock to return a fixed result.
func (m *MockLLMService) SetGenerateJSONResponse(result map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateJSONFunc = func(ctx context.Context, messages []chat.ChatMessage, required []string, temperature float64) (map[string]any, error) {
		if err := validateRequired(result, required); err != nil {
			return nil, err
		}
		return result, nil
	}
}

// Reset clears all call tracking.
func (m *MockLLMService) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitModelCalls = make([]string, 0)
	m.GetChatResponseCalls = make([][]chat.ChatMessage, 0)
	m.GenerateJSONCalls = make([]GenerateJSONCall, 0)
}

// CallCounts returns call totals in a thread-safe way.
func (m *MockLLMService) CallCounts() (initCalls, chatCalls, jsonCalls int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.InitModelCalls), len(m.GetChatResponseCalls), len(m.GenerateJSONCalls)
}
