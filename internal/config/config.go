package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kotobamud/engine/pkg/state"
	"github.com/kotobamud/engine/pkg/world"
)

// Config is the process configuration, loaded from the environment with
// optional world tuning from a YAML file.
type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level
	LogFile     string // empty disables file logging

	// Text generation
	LLMProvider  string // "openai", "gemini" or "mock"
	OpenAIAPIKey string
	OpenAIModel  string
	GeminiAPIKey string
	GeminiModel  string

	// Image generation
	EdenAIAPIKey string
	ImageDir     string

	// Persistence
	RedisURL string // empty selects file storage
	DataDir  string
	VocabDB  string
	VocabDir string // JSON content imported at startup

	StartingJLPTLevel string

	World world.Config

	// HistoryLimit caps remembered exchanges per NPC conversation.
	// Zero selects the default window.
	HistoryLimit int
}

// WorldFile is the YAML shape of the optional world tuning file.
type WorldFile struct {
	Settings       []string `yaml:"settings"`
	StartSetting   string   `yaml:"start_setting"`
	NPCProbability *float64 `yaml:"npc_probability"`
	ItemAttempts   *int     `yaml:"item_attempts"`
	HistoryLimit   *int     `yaml:"history_limit"`
}

// Load reads configuration from the environment. A .env file is loaded
// first if present, matching local development setups.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
		LogFile:     getEnv("LOG_FILE", ""),

		LLMProvider:  strings.ToLower(getEnv("LLM_PROVIDER", "openai")),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		EdenAIAPIKey: getEnv("EDENAI_API_KEY", ""),
		ImageDir:     getEnv("IMAGE_DIR", "data/images"),

		RedisURL: getEnv("REDIS_URL", ""),
		DataDir:  getEnv("DATA_DIR", "data/user_data"),
		VocabDB:  getEnv("VOCAB_DB", "data/vocabulary.db"),
		VocabDir: getEnv("VOCAB_DIR", "data/vocabulary"),

		StartingJLPTLevel: getEnv("STARTING_JLPT_LEVEL", state.DefaultLevel),

		World: world.DefaultConfig(),
	}

	if p := getEnv("NPC_PROBABILITY", ""); p != "" {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid NPC_PROBABILITY %q: %w", p, err)
		}
		cfg.World.NPCProbability = v
	}

	if path := getEnv("WORLD_CONFIG", ""); path != "" {
		if err := cfg.applyWorldFile(path); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// applyWorldFile overlays tuning values from a YAML file.
func (c *Config) applyWorldFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading world config %s: %w", path, err)
	}
	var wf WorldFile
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return fmt.Errorf("parsing world config %s: %w", path, err)
	}
	if len(wf.Settings) > 0 {
		c.World.Settings = wf.Settings
	}
	if wf.StartSetting != "" {
		c.World.StartSetting = wf.StartSetting
	}
	if wf.NPCProbability != nil {
		c.World.NPCProbability = *wf.NPCProbability
	}
	if wf.ItemAttempts != nil {
		c.World.ItemAttempts = *wf.ItemAttempts
	}
	if wf.HistoryLimit != nil {
		c.HistoryLimit = *wf.HistoryLimit
	}
	return nil
}

// IsProduction reports whether the process runs with production logging.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
