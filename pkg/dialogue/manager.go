// Package dialogue manages multi-turn NPC conversations: per-NPC
// bounded history and the fallback turns used when generation fails.
package dialogue

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/kotobamud/engine/pkg/chat"
	"github.com/kotobamud/engine/pkg/prompts"
	"github.com/kotobamud/engine/pkg/world"
)

// LLMService is the slice of the generation client conversations need.
type LLMService interface {
	GenerateJSON(ctx context.Context, messages []chat.ChatMessage, required []string, temperature float64) (map[string]any, error)
}

const conversationTemperature = 0.7

// Turn is one NPC response: the Japanese reply, its English gloss and
// an optional learning note.
type Turn struct {
	Japanese     string `json:"response_japanese"`
	English      string `json:"response_english"`
	LanguageNote string `json:"language_note,omitempty"`

	// Fallback marks turns synthesized locally instead of generated.
	Fallback bool `json:"-"`
}

// Manager holds a bounded ring of prior exchanges per NPC. History is
// process-lifetime only and never persisted. Safe for concurrent use.
type Manager struct {
	llm    LLMService
	limit  int
	logger *slog.Logger

	mu        sync.Mutex
	histories map[string][]prompts.Exchange
}

// NewManager creates a conversation manager keeping at most limit
// exchanges per NPC (the reference window is 5).
func NewManager(llm LLMService, limit int, logger *slog.Logger) *Manager {
	if limit <= 0 {
		limit = prompts.DefaultHistoryLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		llm:       llm,
		limit:     limit,
		logger:    logger,
		histories: make(map[string][]prompts.Exchange),
	}
}

// Converse runs one conversation turn with an NPC. It never returns an
// error: generation failures produce an in-character fallback turn. A
// transport failure leaves history untouched; an incomplete response is
// replaced by an apologetic turn that does enter history, matching what
// the player saw.
func (m *Manager) Converse(ctx context.Context, npc *world.NPC, utterance, jlptLevel string) *Turn {
	messages, err := prompts.New().
		WithNPC(npc).
		WithLevel(jlptLevel).
		WithHistory(m.History(npc.ID)).
		WithHistoryLimit(m.limit).
		WithUserMessage(utterance).
		Build()
	if err != nil {
		m.logger.Warn("conversation prompt build failed", "npc", npc.ID, "error", err)
		return unavailableTurn()
	}

	result, err := m.llm.GenerateJSON(ctx, messages, prompts.ConversationFields, conversationTemperature)
	if err != nil {
		if errors.Is(err, chat.ErrIncompleteResponse) {
			m.logger.Warn("npc response missing required fields", "npc", npc.ID)
			turn := incompleteTurn()
			m.append(npc.ID, utterance, turn.Japanese)
			return turn
		}
		m.logger.Warn("npc conversation failed", "npc", npc.ID, "error", err)
		return unavailableTurn()
	}

	turn := &Turn{
		Japanese:     stringField(result, "response_japanese"),
		English:      stringField(result, "response_english"),
		LanguageNote: stringField(result, "language_note"),
	}
	m.append(npc.ID, utterance, turn.Japanese)
	return turn
}

// History returns a copy of the stored exchanges for an NPC, oldest
// first.
func (m *Manager) History(npcID string) []prompts.Exchange {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := m.histories[npcID]
	out := make([]prompts.Exchange, len(h))
	copy(out, h)
	return out
}

// append records an exchange and evicts the oldest entry beyond the
// window.
func (m *Manager) append(npcID, utterance, reply string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := append(m.histories[npcID], prompts.Exchange{User: utterance, Reply: reply})
	if len(h) > m.limit {
		h = h[len(h)-m.limit:]
	}
	m.histories[npcID] = h
}

func incompleteTurn() *Turn {
	return &Turn{
		Japanese:     "すみません、よく理解できません。",
		English:      "I'm sorry, I don't understand well.",
		LanguageNote: "The response was incomplete.",
		Fallback:     true,
	}
}

func unavailableTurn() *Turn {
	return &Turn{
		Japanese: "すみません、技術的な問題があります。",
		English:  "Sorry, there's a technical issue.",
		Fallback: true,
	}
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
