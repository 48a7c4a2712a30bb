package services

import (
	"context"

	"github.com/kotobamud/engine/pkg/chat"
)

// LLMService defines the interface for interacting with the text
// generation API.
type LLMService interface {
	// InitModel initializes the model on startup.
	InitModel(ctx context.Context, modelName string) error

	// GetChatResponse generates a plain-text chat response.
	GetChatResponse(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error)

	// GenerateJSON generates a structured response and validates that
	// every required field is present. Failures wrap
	// chat.ErrGenerationUnavailable for transport problems and
	// chat.ErrIncompleteResponse for missing fields; on failure no
	// partial result is returned.
	GenerateJSON(ctx context.Context, messages []chat.ChatMessage, required []string, temperature float64) (map[string]any, error)
}
