package prompts

import (
	"fmt"

	"github.com/kotobamud/engine/pkg/chat"
	"github.com/kotobamud/engine/pkg/world"
)

// DefaultHistoryLimit is the conversation window replayed to the model.
const DefaultHistoryLimit = 5

// Exchange is one prior conversation round: what the player said and
// the Japanese text the NPC answered with. Only the Japanese reply is
// replayed as assistant context.
type Exchange struct {
	User  string
	Reply string
}

// Builder assembles the message array for one NPC conversation turn
// using a fluent interface.
type Builder struct {
	npc          *world.NPC
	level        string
	history      []Exchange
	userMessage  string
	historyLimit int
}

// New creates a conversation builder with default settings.
func New() *Builder {
	return &Builder{
		level:        "N5",
		historyLimit: DefaultHistoryLimit,
	}
}

// WithNPC sets the character the model plays.
func (b *Builder) WithNPC(npc *world.NPC) *Builder {
	b.npc = npc
	return b
}

// WithLevel sets the player's JLPT level.
func (b *Builder) WithLevel(level string) *Builder {
	if level != "" {
		b.level = level
	}
	return b
}

// WithHistory sets the prior exchanges, oldest first.
func (b *Builder) WithHistory(history []Exchange) *Builder {
	b.history = history
	return b
}

// WithUserMessage sets the current player utterance.
func (b *Builder) WithUserMessage(message string) *Builder {
	b.userMessage = message
	return b
}

// WithHistoryLimit overrides the replay window size.
func (b *Builder) WithHistoryLimit(limit int) *Builder {
	if limit > 0 {
		b.historyLimit = limit
	}
	return b
}

// Build constructs the final message array: system prompt, windowed
// history as alternating user/assistant messages, then the utterance.
func (b *Builder) Build() ([]chat.ChatMessage, error) {
	if b.npc == nil {
		return nil, fmt.Errorf("npc is required")
	}
	if b.userMessage == "" {
		return nil, fmt.Errorf("user message is required")
	}

	messages := make([]chat.ChatMessage, 0, 2+2*len(b.history))
	messages = append(messages, chat.ChatMessage{
		Role:    chat.ChatRoleSystem,
		Content: NPCSystemPrompt(b.npc, b.level),
	})

	history := b.history
	if len(history) > b.historyLimit {
		history = history[len(history)-b.historyLimit:]
	}
	for _, ex := range history {
		messages = append(messages,
			chat.ChatMessage{Role: chat.ChatRoleUser, Content: ex.User},
			chat.ChatMessage{Role: chat.ChatRoleAgent, Content: ex.Reply},
		)
	}

	messages = append(messages, chat.ChatMessage{
		Role:    chat.ChatRoleUser,
		Content: b.userMessage,
	})
	return messages, nil
}
