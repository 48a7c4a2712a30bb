package dialogue

import (
	"context"
	"fmt"
	"testing"

	"github.com/kotobamud/engine/pkg/chat"
	"github.com/kotobamud/engine/pkg/world"
)

type mockLLM struct {
	calls    int
	response map[string]any
	err      error
}

func (m *mockLLM) GenerateJSON(ctx context.Context, messages []chat.ChatMessage, required []string, temperature float64) (map[string]any, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func testNPC() *world.NPC {
	return &world.NPC{
		ID:          "npc_0,1_2",
		Name:        "田中健二",
		NameEnglish: "Kenji Tanaka",
		Role:        "Shopkeeper",
		Personality: "Friendly",
	}
}

func TestConverseSuccessAppendsHistory(t *testing.T) {
	llm := &mockLLM{response: map[string]any{
		"response_japanese": "いらっしゃいませ！",
		"response_english":  "Welcome!",
		"language_note":     "A standard shop greeting.",
	}}
	m := NewManager(llm, 5, nil)

	turn := m.Converse(context.Background(), testNPC(), "こんにちは", "N5")
	if turn.Fallback {
		t.Error("successful turn must not be marked fallback")
	}
	if turn.Japanese != "いらっしゃいませ！" || turn.English != "Welcome!" {
		t.Errorf("unexpected turn: %+v", turn)
	}

	h := m.History("npc_0,1_2")
	if len(h) != 1 || h[0].User != "こんにちは" || h[0].Reply != "いらっしゃいませ！" {
		t.Errorf("unexpected history: %+v", h)
	}
}

func TestConverseRingBound(t *testing.T) {
	llm := &mockLLM{response: map[string]any{
		"response_japanese": "はい。",
		"response_english":  "Yes.",
	}}
	m := NewManager(llm, 5, nil)
	npc := testNPC()

	for i := 0; i < 8; i++ {
		m.Converse(context.Background(), npc, fmt.Sprintf("question %d", i), "N5")
	}

	h := m.History(npc.ID)
	if len(h) != 5 {
		t.Fatalf("history length = %d, want 5", len(h))
	}
	for i, ex := range h {
		want := fmt.Sprintf("question %d", i+3)
		if ex.User != want {
			t.Errorf("history[%d].User = %q, want %q", i, ex.User, want)
		}
	}
}

func TestConverseIncompleteResponse(t *testing.T) {
	llm := &mockLLM{err: fmt.Errorf("missing field: %w", chat.ErrIncompleteResponse)}
	m := NewManager(llm, 5, nil)
	npc := testNPC()

	turn := m.Converse(context.Background(), npc, "hello", "N5")
	if !turn.Fallback {
		t.Error("incomplete response must yield a fallback turn")
	}
	if turn.Japanese != "すみません、よく理解できません。" {
		t.Errorf("unexpected apologetic turn: %q", turn.Japanese)
	}
	if len(m.History(npc.ID)) != 1 {
		t.Error("apologetic turn should enter history")
	}
}

func TestConverseUnavailableDoesNotMutateHistory(t *testing.T) {
	llm := &mockLLM{err: fmt.Errorf("timeout: %w", chat.ErrGenerationUnavailable)}
	m := NewManager(llm, 5, nil)
	npc := testNPC()

	turn := m.Converse(context.Background(), npc, "hello", "N5")
	if !turn.Fallback {
		t.Error("unavailable must yield a fallback turn")
	}
	if turn.Japanese != "すみません、技術的な問題があります。" {
		t.Errorf("unexpected technical-difficulty turn: %q", turn.Japanese)
	}
	if len(m.History(npc.ID)) != 0 {
		t.Error("transport failure must not mutate history")
	}
	if llm.calls != 1 {
		t.Errorf("expected 1 generation call, got %d", llm.calls)
	}
}

func TestHistoryScopedPerNPC(t *testing.T) {
	llm := &mockLLM{response: map[string]any{
		"response_japanese": "はい。",
		"response_english":  "Yes.",
	}}
	m := NewManager(llm, 5, nil)

	a := testNPC()
	b := testNPC()
	b.ID = "npc_2,2_7"

	m.Converse(context.Background(), a, "for a", "N5")
	if len(m.History(b.ID)) != 0 {
		t.Error("history must be scoped per NPC")
	}
}
