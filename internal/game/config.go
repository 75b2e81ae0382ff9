package game

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// MaxTickRate caps the simulation rate so the tick period stays above zero
const MaxTickRate = 1000

// Config holds every tuning constant of the simulation.
// Durations decode from Go duration strings ("1s", "250ms") in YAML.
type Config struct {
	TickRate int `yaml:"tickRate"`

	WorldWidth     float64 `yaml:"worldWidth"`
	WorldHeight    float64 `yaml:"worldHeight"`
	ViewportWidth  float64 `yaml:"viewportWidth"`
	ViewportHeight float64 `yaml:"viewportHeight"`

	PlayerSize  float64 `yaml:"playerSize"`
	PlayerSpeed float64 `yaml:"playerSpeed"`

	MonsterSize        float64       `yaml:"monsterSize"`
	MonsterSpeed       float64       `yaml:"monsterSpeed"`
	MonsterJitter      float64       `yaml:"monsterJitter"` // radians, uniform in [-j, +j]
	ChargeDuration     time.Duration `yaml:"chargeDuration"`
	ShotIntervalBase   time.Duration `yaml:"shotIntervalBase"`
	ShotIntervalRandom time.Duration `yaml:"shotIntervalRandom"`
	ShotPattern        ShotPattern   `yaml:"shotPattern"`
	ShotgunSpread      float64       `yaml:"shotgunSpread"`

	ProjectileSize        float64 `yaml:"projectileSize"`
	ProjectileSpeed       float64 `yaml:"projectileSpeed"`
	PlayerProjectileSize  float64 `yaml:"playerProjectileSize"`
	PlayerProjectileSpeed float64 `yaml:"playerProjectileSpeed"`

	SpawnPolicy        SpawnPolicy    `yaml:"spawnPolicy"`
	SpawnPlacement     SpawnPlacement `yaml:"spawnPlacement"`
	SpawnInset         float64        `yaml:"spawnInset"`
	InitialBatch       int            `yaml:"initialBatch"`
	BatchIncrement     int            `yaml:"batchIncrement"`
	SpawnCycleInterval time.Duration  `yaml:"spawnCycleInterval"`
	MaxMonsters        int            `yaml:"maxMonsters"`
	TrickleInterval    time.Duration  `yaml:"trickleInterval"`

	ScoreInterval      time.Duration `yaml:"scoreInterval"`
	ScoreIncrement     int           `yaml:"scoreIncrement"`
	KillBonus          int           `yaml:"killBonus"`
	CorrectAnswerBonus int           `yaml:"correctAnswerBonus"`

	HitDelay time.Duration `yaml:"hitDelay"`
}

// DefaultConfig returns the production tuning
func DefaultConfig() Config {
	return Config{
		TickRate: 60,

		WorldWidth:     2000,
		WorldHeight:    1500,
		ViewportWidth:  800,
		ViewportHeight: 600,

		PlayerSize:  20,
		PlayerSpeed: 4,

		MonsterSize:        20,
		MonsterSpeed:       1.5,
		MonsterJitter:      math.Pi / 6, // ±30°
		ChargeDuration:     1000 * time.Millisecond,
		ShotIntervalBase:   3000 * time.Millisecond,
		ShotIntervalRandom: 5000 * time.Millisecond,
		ShotPattern:        ShotSingle,
		ShotgunSpread:      0.25,

		ProjectileSize:        8,
		ProjectileSpeed:       6,
		PlayerProjectileSize:  6,
		PlayerProjectileSpeed: 10,

		SpawnPolicy:        SpawnWave,
		SpawnPlacement:     PlaceEdge,
		SpawnInset:         40, // 2 × monster size
		InitialBatch:       2,
		BatchIncrement:     1,
		SpawnCycleInterval: 10 * time.Second,
		MaxMonsters:        5,
		TrickleInterval:    5 * time.Second,

		ScoreInterval:      time.Second,
		ScoreIncrement:     10,
		KillBonus:          25,
		CorrectAnswerBonus: 50,

		HitDelay: 1000 * time.Millisecond,
	}
}

// PlayerStart returns the fixed start coordinate: centered horizontally,
// near the bottom edge
func (c Config) PlayerStart() Vec2 {
	return Vec2{
		X: c.WorldWidth/2 - c.PlayerSize/2,
		Y: c.WorldHeight - c.PlayerSize - 30,
	}
}

// Validate rejects tunings the simulation cannot run with
func (c Config) Validate() error {
	switch {
	case c.TickRate <= 0:
		return errors.New("tick rate must be positive")
	case c.TickRate > MaxTickRate:
		return fmt.Errorf("tick rate must be at most %d", MaxTickRate)
	case c.WorldWidth <= c.PlayerSize || c.WorldHeight <= c.PlayerSize:
		return errors.New("world must be larger than the player")
	case c.WorldWidth <= c.MonsterSize || c.WorldHeight <= c.MonsterSize:
		return errors.New("world must be larger than a monster")
	case c.ViewportWidth <= 0 || c.ViewportHeight <= 0:
		return errors.New("viewport must be positive")
	case c.SpawnPolicy == SpawnWave && c.SpawnCycleInterval <= 0:
		return errors.New("wave policy needs a positive cycle interval")
	case c.SpawnPolicy == SpawnTrickle && (c.TrickleInterval <= 0 || c.MaxMonsters <= 0):
		return errors.New("trickle policy needs a positive interval and cap")
	case c.ShotIntervalBase <= 0:
		return errors.New("shot interval base must be positive")
	}
	return nil
}
