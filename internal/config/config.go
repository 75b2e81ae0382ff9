// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for game tuning and service settings.
//
// Defaults live here; environment variables override them, and an optional
// YAML tuning file overlays the game block.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"ecoroam/internal/game"
)

// =============================================================================
// GAME TUNING
// =============================================================================

// GameFromEnv returns the simulation tuning with environment overrides.
func GameFromEnv() (game.Config, error) {
	cfg := game.DefaultConfig()

	if path := os.Getenv("ECOROAM_TUNING_FILE"); path != "" {
		if err := LoadTuning(path, &cfg); err != nil {
			return cfg, err
		}
	}

	if tps := getEnvInt("TICK_RATE", 0); tps > 0 {
		cfg.TickRate = tps
	}
	if w := getEnvFloat("WORLD_WIDTH", 0); w > 0 {
		cfg.WorldWidth = w
	}
	if h := getEnvFloat("WORLD_HEIGHT", 0); h > 0 {
		cfg.WorldHeight = h
	}
	if p := os.Getenv("SPAWN_POLICY"); p != "" {
		policy, err := game.ParseSpawnPolicy(p)
		if err != nil {
			return cfg, err
		}
		cfg.SpawnPolicy = policy
	}

	return cfg, cfg.Validate()
}

// LoadTuning overlays the YAML file at path onto cfg. Keys absent from the
// file keep their current value. Durations use Go syntax ("1s", "250ms").
func LoadTuning(path string, cfg *game.Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read tuning file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse tuning file %s: %w", path, err)
	}
	return nil
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int
	CORSOrigins []string // Extra allowed origins for CORS and WebSocket
	MusicPath   string   // Ogg Vorbis track served at /api/music; empty disables it
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port: 8080,
	}
}

// ServerFromEnv returns server configuration with environment variable overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	cfg.CORSOrigins = getEnvList("CORS_ORIGINS")
	cfg.MusicPath = os.Getenv("MUSIC_PATH")

	return cfg
}

// =============================================================================
// QUESTION GENERATION
// =============================================================================

// QuestionsConfig selects and tunes the question source.
type QuestionsConfig struct {
	APIURL   string        // Remote generation endpoint; empty uses the embedded bank
	APIKey   string        // Optional bearer token for APIURL
	Timeout  time.Duration // Per-request timeout for APIURL
	BankFile string        // Optional YAML bank replacing the embedded one
	Capacity int           // Per-category queue capacity
	LowWater int           // Refill threshold
}

// DefaultQuestions returns the default question settings.
func DefaultQuestions() QuestionsConfig {
	return QuestionsConfig{
		Timeout:  30 * time.Second,
		Capacity: 2,
		LowWater: 1,
	}
}

// QuestionsFromEnv returns question settings with environment overrides.
func QuestionsFromEnv() QuestionsConfig {
	cfg := DefaultQuestions()

	cfg.APIURL = os.Getenv("QUESTION_API_URL")
	cfg.APIKey = os.Getenv("QUESTION_API_KEY")
	cfg.BankFile = os.Getenv("QUESTION_BANK_FILE")
	if d := getEnvDuration("QUESTION_API_TIMEOUT", 0); d > 0 {
		cfg.Timeout = d
	}

	return cfg
}

// =============================================================================
// LEADERBOARD
// =============================================================================

// LeaderboardConfig holds leaderboard storage and client settings.
type LeaderboardConfig struct {
	File       string        // JSON file backing the local board
	URL        string        // Remote service base URL (client only), e.g. http://host:8080/api
	MaxEntries int           // Cap on stored entries
	Timeout    time.Duration // Client request timeout
}

// DefaultLeaderboard returns the default leaderboard settings.
func DefaultLeaderboard() LeaderboardConfig {
	return LeaderboardConfig{
		File:       "leaderboard.json",
		MaxEntries: 100,
		Timeout:    5 * time.Second,
	}
}

// LeaderboardFromEnv returns leaderboard settings with environment overrides.
func LeaderboardFromEnv() LeaderboardConfig {
	cfg := DefaultLeaderboard()

	if f := os.Getenv("LEADERBOARD_FILE"); f != "" {
		cfg.File = f
	}
	cfg.URL = os.Getenv("LEADERBOARD_URL")
	if n := getEnvInt("MAX_LEADERBOARD_ENTRIES", 0); n > 0 {
		cfg.MaxEntries = n
	}

	return cfg
}

// =============================================================================
// CLIENT-LOCAL SETTINGS
// =============================================================================

// ClientConfig holds settings for the terminal game.
type ClientConfig struct {
	IdentityFile string // Where the player name is cached
	LogFile      string // The screen belongs to the UI, so logs go here
}

// ClientFromEnv returns client settings with environment overrides.
func ClientFromEnv() ClientConfig {
	return ClientConfig{
		IdentityFile: getEnv("IDENTITY_FILE", ".ecoroam_identity.json"),
		LogFile:      getEnv("ECOROAM_LOG_FILE", "ecoroam.log"),
	}
}

// =============================================================================
// OBSERVABILITY
// =============================================================================

// ObservabilityConfig holds debug server and event log settings.
type ObservabilityConfig struct {
	DebugDisabled bool
	EventLogPath  string // JSONL game events; empty disables the file
}

// ObservabilityFromEnv returns observability settings with environment overrides.
func ObservabilityFromEnv() ObservabilityConfig {
	return ObservabilityConfig{
		DebugDisabled: os.Getenv("DISABLE_DEBUG_SERVER") == "true",
		EventLogPath:  os.Getenv("EVENT_LOG_PATH"),
	}
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Game          game.Config
	Server        ServerConfig
	Questions     QuestionsConfig
	Leaderboard   LeaderboardConfig
	Client        ClientConfig
	Observability ObservabilityConfig
}

// Load returns the complete configuration with environment overrides.
func Load() (AppConfig, error) {
	gameCfg, err := GameFromEnv()
	if err != nil {
		return AppConfig{}, fmt.Errorf("game config: %w", err)
	}
	return AppConfig{
		Game:          gameCfg,
		Server:        ServerFromEnv(),
		Questions:     QuestionsFromEnv(),
		Leaderboard:   LeaderboardFromEnv(),
		Client:        ClientFromEnv(),
		Observability: ObservabilityFromEnv(),
	}, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
