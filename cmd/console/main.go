package main

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kotobamud/engine/internal/config"
	"github.com/kotobamud/engine/internal/engine"
	"github.com/kotobamud/engine/internal/services"
	"github.com/kotobamud/engine/internal/storage"
	"github.com/kotobamud/engine/pkg/dialogue"
	"github.com/kotobamud/engine/pkg/vocab"
	"github.com/kotobamud/engine/pkg/world"
	"gopkg.in/natefinch/lumberjack.v2"
)

// The console runs the engine in-process: no server required. Logs go
// to a file (or nowhere) so slog output doesn't tear the TUI.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	var logWriter io.Writer = io.Discard
	if cfg.LogFile != "" {
		logWriter = &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     14,
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{Level: cfg.LogLevel}))

	eng, store, cleanup, err := buildEngine(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	p := tea.NewProgram(NewConsoleUI(eng, store, cfg.StartingJLPTLevel),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

// buildEngine wires the full stack from config. The returned cleanup
// closes storage and the vocabulary database.
func buildEngine(cfg *config.Config, logger *slog.Logger) (*engine.Engine, storage.Storage, func(), error) {
	var llm services.LLMService
	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, nil, nil, fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
		llm = services.NewOpenAIService(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	case "mock":
		llm = services.NewMockLLMService()
	default:
		return nil, nil, nil, fmt.Errorf("unsupported console provider %q (use openai or mock)", cfg.LLMProvider)
	}

	store, err := storage.NewFileStorage(cfg.DataDir, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("initializing storage: %w", err)
	}

	var words *vocab.Store
	if cfg.VocabDB != "" {
		words, err = vocab.Open(cfg.VocabDB)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("opening vocabulary db: %w", err)
		}
		if err := words.ImportDir(cfg.VocabDir); err != nil {
			logger.Warn("vocabulary import failed", "dir", cfg.VocabDir, "error", err)
		}
	}

	worldgen := services.NewWorldGen(llm)
	grid := world.NewGrid(worldgen, cfg.World, logger)
	convos := dialogue.NewManager(llm, cfg.HistoryLimit, logger)
	eng := engine.NewEngine(grid, convos, worldgen, words, store, logger)

	cleanup := func() {
		_ = store.Close()
		if words != nil {
			_ = words.Close()
		}
	}
	return eng, store, cleanup, nil
}
