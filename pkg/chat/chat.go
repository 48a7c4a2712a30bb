package chat

import (
	"errors"
	"fmt"
)

const (
	ChatRoleUser   = "user"      // Player
	ChatRoleAgent  = "assistant" // NPC or narrator
	ChatRoleSystem = "system"
)

// Generation failure taxonomy. Callers fold both into fallback content;
// the distinction matters only for choosing which fallback.
var (
	// ErrGenerationUnavailable covers transport errors, timeouts, non-2xx
	// statuses and missing credentials.
	ErrGenerationUnavailable = errors.New("generation unavailable")

	// ErrIncompleteResponse means the service answered but the parsed
	// payload was missing required fields.
	ErrIncompleteResponse = errors.New("incomplete generation response")
)

// ChatMessage is a single message in an LLM conversation, following the
// OpenAI chat completions message shape.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// ChatResponse is the plain-text result of a chat completion.
type ChatResponse struct {
	Message string `json:"message,omitempty"`
}

// ChatRequest is a player utterance bound for an NPC.
type ChatRequest struct {
	NPCID   string `json:"npc_id"`
	Message string `json:"message"`
}

func (cr *ChatRequest) Validate() error {
	if cr.Message == "" {
		return fmt.Errorf("message cannot be empty")
	}
	return nil
}
