package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kotobamud/engine/internal/config"
	"github.com/kotobamud/engine/internal/engine"
	"github.com/kotobamud/engine/internal/images"
	"github.com/kotobamud/engine/internal/logger"
	"github.com/kotobamud/engine/internal/server"
	"github.com/kotobamud/engine/internal/services"
	"github.com/kotobamud/engine/internal/storage"
	"github.com/kotobamud/engine/pkg/dialogue"
	"github.com/kotobamud/engine/pkg/vocab"
	"github.com/kotobamud/engine/pkg/world"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)
	log.Info("Starting KotobaMUD server",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var llm services.LLMService
	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			log.Error("OpenAI API key is required when using the openai provider")
			os.Exit(1)
		}
		llm = services.NewOpenAIService(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			log.Error("Gemini API key is required when using the gemini provider")
			os.Exit(1)
		}
		g, err := services.NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Error("Failed to create Gemini service", "error", err)
			os.Exit(1)
		}
		llm = g
	case "mock":
		// Offline development mode, no API calls.
		llm = services.NewMockLLMService()
	default:
		log.Error("Invalid LLM provider", "provider", cfg.LLMProvider,
			"supported", []string{"openai", "gemini", "mock"})
		os.Exit(1)
	}
	if err := llm.InitModel(ctx, ""); err != nil {
		log.Error("Failed to initialize LLM model", "error", err)
		os.Exit(1)
	}

	var imageSvc services.ImageService
	if cfg.EdenAIAPIKey != "" {
		imageSvc = services.NewEdenAIService(cfg.EdenAIAPIKey)
	} else {
		log.Warn("No EdenAI API key set, scene images will use placeholders")
	}
	imgCache, err := images.NewCache(cfg.ImageDir, imageSvc, log)
	if err != nil {
		log.Error("Failed to initialize image cache", "error", err)
		os.Exit(1)
	}

	var store storage.Storage
	if cfg.RedisURL != "" {
		rs := storage.NewRedisStorage(cfg.RedisURL, log)
		if err := rs.WaitForConnection(ctx); err != nil {
			log.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		store = rs
		log.Info("Using Redis storage", "addr", cfg.RedisURL)
	} else {
		fs, err := storage.NewFileStorage(cfg.DataDir, log)
		if err != nil {
			log.Error("Failed to initialize file storage", "error", err)
			os.Exit(1)
		}
		store = fs
		log.Info("Using file storage", "dir", cfg.DataDir)
	}

	words, err := vocab.Open(cfg.VocabDB)
	if err != nil {
		log.Error("Failed to open vocabulary database", "error", err)
		os.Exit(1)
	}
	if err := words.ImportDir(cfg.VocabDir); err != nil {
		log.Error("Failed to import vocabulary content", "dir", cfg.VocabDir, "error", err)
		os.Exit(1)
	}
	if n, err := words.WordCount(); err == nil {
		log.Info("Vocabulary catalog loaded", "words", n)
	}

	worldgen := services.NewWorldGen(llm)
	grid := world.NewGrid(worldgen, cfg.World, log)
	convos := dialogue.NewManager(llm, cfg.HistoryLimit, log)
	eng := engine.NewEngine(grid, convos, worldgen, words, store, log)
	srv := server.NewServer(eng, store, imgCache, log)

	httpServer := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     srv.Handler(),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}
	if err := words.Close(); err != nil {
		log.Error("Error closing vocabulary database", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}
	log.Info("Server exited")
}
