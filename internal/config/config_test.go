package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"ecoroam/internal/game"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Game.SpawnPolicy != game.SpawnWave {
		t.Errorf("spawn policy = %v, want wave", cfg.Game.SpawnPolicy)
	}
	if cfg.Questions.Capacity != 2 || cfg.Questions.LowWater != 1 {
		t.Errorf("queue sizes = %d/%d, want 2/1", cfg.Questions.Capacity, cfg.Questions.LowWater)
	}
	if cfg.Leaderboard.MaxEntries != 100 {
		t.Errorf("max entries = %d, want 100", cfg.Leaderboard.MaxEntries)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TICK_RATE", "30")
	t.Setenv("WORLD_WIDTH", "1600")
	t.Setenv("SPAWN_POLICY", "trickle")
	t.Setenv("QUESTION_API_URL", "http://localhost:3400/flows")
	t.Setenv("QUESTION_API_TIMEOUT", "3s")
	t.Setenv("MAX_LEADERBOARD_ENTRIES", "10")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("DISABLE_DEBUG_SERVER", "true")
	t.Setenv("MUSIC_PATH", "assets/music/theme.ogg")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 || cfg.Game.TickRate != 30 || cfg.Game.WorldWidth != 1600 {
		t.Errorf("overrides not applied: port=%d tps=%d width=%v", cfg.Server.Port, cfg.Game.TickRate, cfg.Game.WorldWidth)
	}
	if cfg.Game.SpawnPolicy != game.SpawnTrickle {
		t.Error("SPAWN_POLICY not applied")
	}
	if cfg.Questions.APIURL == "" || cfg.Questions.Timeout != 3*time.Second {
		t.Errorf("questions = %+v", cfg.Questions)
	}
	if cfg.Leaderboard.MaxEntries != 10 {
		t.Errorf("max entries = %d", cfg.Leaderboard.MaxEntries)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://b.example" {
		t.Errorf("cors origins = %q", cfg.Server.CORSOrigins)
	}
	if !cfg.Observability.DebugDisabled {
		t.Error("debug server should be disabled")
	}
	if cfg.Server.MusicPath != "assets/music/theme.ogg" {
		t.Errorf("music path = %q", cfg.Server.MusicPath)
	}
}

func TestInvalidSpawnPolicy(t *testing.T) {
	t.Setenv("SPAWN_POLICY", "avalanche")
	if _, err := Load(); err == nil {
		t.Error("expected error for unknown spawn policy")
	}
}

func TestTuningFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	yaml := `
monsterSpeed: 2.5
chargeDuration: 750ms
shotPattern: shotgun
spawnPolicy: trickle
spawnPlacement: inset
maxMonsters: 8
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ECOROAM_TUNING_FILE", path)

	cfg, err := GameFromEnv()
	if err != nil {
		t.Fatalf("GameFromEnv: %v", err)
	}
	if cfg.MonsterSpeed != 2.5 || cfg.ChargeDuration != 750*time.Millisecond {
		t.Errorf("speed=%v charge=%v", cfg.MonsterSpeed, cfg.ChargeDuration)
	}
	if cfg.ShotPattern != game.ShotShotgun || cfg.SpawnPolicy != game.SpawnTrickle || cfg.SpawnPlacement != game.PlaceInset {
		t.Errorf("enums not decoded: %+v", cfg)
	}
	if cfg.MaxMonsters != 8 {
		t.Errorf("max monsters = %d", cfg.MaxMonsters)
	}
	// Untouched keys keep their defaults
	if cfg.PlayerSpeed != game.DefaultConfig().PlayerSpeed {
		t.Error("overlay clobbered an absent key")
	}
}

func TestTuningFileErrors(t *testing.T) {
	var cfg game.Config
	if err := LoadTuning(filepath.Join(t.TempDir(), "missing.yaml"), &cfg); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("shotPattern: laser\n"), 0644)
	if err := LoadTuning(path, &cfg); err == nil {
		t.Error("expected error for unknown shot pattern")
	}
}
