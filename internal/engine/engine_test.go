package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kotobamud/engine/internal/services"
	"github.com/kotobamud/engine/internal/storage"
	"github.com/kotobamud/engine/pkg/dialogue"
	"github.com/kotobamud/engine/pkg/state"
	"github.com/kotobamud/engine/pkg/vocab"
	"github.com/kotobamud/engine/pkg/world"
)

type testEnv struct {
	engine *Engine
	llm    *services.MockLLMService
	store  *storage.MockStorage
	player *state.Player
}

// newTestEnv builds an engine on mock services. npcProb controls NPC
// spawning for tests that need (or must avoid) people in new locations.
func newTestEnv(t *testing.T, npcProb float64) *testEnv {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	llm := services.NewMockLLMService()
	worldgen := services.NewWorldGen(llm)
	cfg := world.DefaultConfig()
	cfg.NPCProbability = npcProb

	grid := world.NewGrid(worldgen, cfg, log)
	convos := dialogue.NewManager(llm, 0, log)
	store := storage.NewMockStorage()

	return &testEnv{
		engine: NewEngine(grid, convos, worldgen, nil, store, log),
		llm:    llm,
		store:  store,
		player: state.NewPlayer("Hana", "N5"),
	}
}

func TestProcessBareDirectionMovesPlayer(t *testing.T) {
	env := newTestEnv(t, 0)

	resp := env.engine.ProcessCommand(context.Background(), env.player, "north")
	if env.player.X != 0 || env.player.Y != 1 {
		t.Fatalf("player at (%d,%d), want (0,1)", env.player.X, env.player.Y)
	}
	if resp.Location == nil {
		t.Fatal("expected a location view after moving")
	}
	if resp.ImageKey != "location:0,1" {
		t.Errorf("ImageKey = %q", resp.ImageKey)
	}
	if resp.Message == "" {
		t.Error("expected a description message")
	}
}

func TestProcessJapaneseDirection(t *testing.T) {
	env := newTestEnv(t, 0)

	env.engine.ProcessCommand(context.Background(), env.player, "西")
	if env.player.X != -1 || env.player.Y != 0 {
		t.Errorf("player at (%d,%d), want (-1,0)", env.player.X, env.player.Y)
	}
}

func TestProcessInvalidDirection(t *testing.T) {
	env := newTestEnv(t, 0)

	resp := env.engine.ProcessCommand(context.Background(), env.player, "go up")
	if !strings.Contains(resp.Message, "Which way") {
		t.Errorf("unexpected message %q", resp.Message)
	}
	if env.player.X != 0 || env.player.Y != 0 {
		t.Error("player must not move on invalid direction")
	}
}

func TestTakeInventoryDropCycle(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()

	// Visit the origin so it holds the generated item.
	env.engine.ProcessCommand(ctx, env.player, "look")

	resp := env.engine.ProcessCommand(ctx, env.player, "take mock")
	if !strings.Contains(resp.Message, "You take") {
		t.Fatalf("take failed: %q", resp.Message)
	}
	if len(env.player.Inventory) != 1 {
		t.Fatalf("inventory = %v", env.player.Inventory)
	}

	resp = env.engine.ProcessCommand(ctx, env.player, "inventory")
	if !strings.Contains(resp.Message, "mock name") {
		t.Errorf("inventory listing = %q", resp.Message)
	}

	resp = env.engine.ProcessCommand(ctx, env.player, "drop mock")
	if !strings.Contains(resp.Message, "You drop") {
		t.Fatalf("drop failed: %q", resp.Message)
	}
	if len(env.player.Inventory) != 0 {
		t.Errorf("inventory after drop = %v", env.player.Inventory)
	}

	// The item is back in the room.
	resp = env.engine.ProcessCommand(ctx, env.player, "take mock")
	if !strings.Contains(resp.Message, "You take") {
		t.Errorf("re-take failed: %q", resp.Message)
	}
}

func TestTakeMissingItem(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()
	env.engine.ProcessCommand(ctx, env.player, "look")

	resp := env.engine.ProcessCommand(ctx, env.player, "take unicorn")
	if !strings.Contains(resp.Message, "don't see") {
		t.Errorf("unexpected message %q", resp.Message)
	}
}

func TestExamineItem(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()
	env.engine.ProcessCommand(ctx, env.player, "look")

	resp := env.engine.ProcessCommand(ctx, env.player, "examine mock")
	if !strings.Contains(resp.Message, "Upon closer examination:") {
		t.Errorf("expected examination detail, got %q", resp.Message)
	}
	if !strings.Contains(resp.Message, "New vocabulary:") {
		t.Errorf("expected vocabulary line, got %q", resp.Message)
	}
}

func TestExamineSurvivesGenerationFailure(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()
	env.engine.ProcessCommand(ctx, env.player, "look")

	env.llm.SetGenerateJSONError(errors.New("api down"))
	resp := env.engine.ProcessCommand(ctx, env.player, "examine mock")
	if !strings.Contains(resp.Message, "mock description") {
		t.Errorf("expected the base description, got %q", resp.Message)
	}
	if strings.Contains(resp.Message, "Upon closer examination:") {
		t.Errorf("must not include generated detail on failure: %q", resp.Message)
	}
}

func TestTalkGreetingAndConversation(t *testing.T) {
	env := newTestEnv(t, 1.0)
	ctx := context.Background()
	env.engine.ProcessCommand(ctx, env.player, "look")

	resp := env.engine.ProcessCommand(ctx, env.player, "talk to mock")
	if !strings.Contains(resp.Message, "mock greeting") {
		t.Errorf("expected the greeting, got %q", resp.Message)
	}

	resp = env.engine.ProcessCommand(ctx, env.player, "talk mock こんにちは")
	if !strings.Contains(resp.Message, "mock response_japanese") {
		t.Errorf("expected a conversation turn, got %q", resp.Message)
	}
	if !strings.Contains(resp.Message, "mock response_english") {
		t.Errorf("expected the English gloss, got %q", resp.Message)
	}
}

func TestTalkNobodyHere(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()
	env.engine.ProcessCommand(ctx, env.player, "look")

	resp := env.engine.ProcessCommand(ctx, env.player, "talk to tanaka")
	if !strings.Contains(resp.Message, "no one called") {
		t.Errorf("unexpected message %q", resp.Message)
	}
}

func TestUnknownCommand(t *testing.T) {
	env := newTestEnv(t, 0)

	resp := env.engine.ProcessCommand(context.Background(), env.player, "dance wildly")
	if resp.Message != unknownText {
		t.Errorf("unexpected message %q", resp.Message)
	}
}

func TestQuit(t *testing.T) {
	env := newTestEnv(t, 0)

	resp := env.engine.ProcessCommand(context.Background(), env.player, "quit")
	if !resp.Quit {
		t.Error("expected Quit flag")
	}
}

func TestPlayerSavedAfterEveryCommand(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()

	env.engine.ProcessCommand(ctx, env.player, "look")
	env.engine.ProcessCommand(ctx, env.player, "north")
	env.engine.ProcessCommand(ctx, env.player, "help")

	if env.store.SaveCalls != 3 {
		t.Errorf("SaveCalls = %d, want 3", env.store.SaveCalls)
	}

	saved, err := env.store.LoadPlayer(ctx, env.player.ID)
	if err != nil || saved == nil {
		t.Fatalf("load: %v %v", saved, err)
	}
	if saved.Y != 1 {
		t.Errorf("persisted Y = %d, want 1", saved.Y)
	}
}

func TestSaveFailureWarnsButContinues(t *testing.T) {
	env := newTestEnv(t, 0)
	env.store.SaveErr = errors.New("disk full")

	resp := env.engine.ProcessCommand(context.Background(), env.player, "north")
	if !strings.Contains(resp.Message, "could not be saved") {
		t.Errorf("expected a save warning, got %q", resp.Message)
	}
	if env.player.Y != 1 {
		t.Error("the move itself must still happen")
	}
}

func TestLearnBumpsProficiency(t *testing.T) {
	env := newTestEnv(t, 0)

	store, err := vocab.Open(filepath.Join(t.TempDir(), "vocab.db"))
	if err != nil {
		t.Fatalf("opening vocab store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.ImportWords(fixtureWords()); err != nil {
		t.Fatalf("importing words: %v", err)
	}
	env.engine.words = store

	resp := env.engine.ProcessCommand(context.Background(), env.player, "learn ocha")
	if !strings.Contains(resp.Message, "お茶") {
		t.Errorf("expected the study card, got %q", resp.Message)
	}
	if !strings.Contains(resp.Message, "Proficiency: 10%") {
		t.Errorf("expected proficiency line, got %q", resp.Message)
	}
	if env.player.Proficiency["word_ocha"] != 0.1 {
		t.Errorf("proficiency = %v", env.player.Proficiency)
	}
}

func TestVocabCommandsWithoutCatalog(t *testing.T) {
	env := newTestEnv(t, 0)

	resp := env.engine.ProcessCommand(context.Background(), env.player, "themes")
	if !strings.Contains(resp.Message, "isn't available") {
		t.Errorf("unexpected message %q", resp.Message)
	}
}

func fixtureWords() []vocab.Word {
	return []vocab.Word{
		{
			ID:        "word_ocha",
			Japanese:  "お茶",
			Romaji:    "ocha",
			English:   "tea",
			JLPTLevel: 5, PartOfSpeech: "noun",
		},
	}
}
