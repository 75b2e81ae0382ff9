package game

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SpawnPolicy selects how the director grows the monster population
type SpawnPolicy uint8

const (
	// SpawnWave adds a batch every cycle; the batch grows each wave and
	// there is no population cap.
	SpawnWave SpawnPolicy = iota
	// SpawnTrickle adds one monster per interval while below the cap and
	// refills immediately when the population reaches zero.
	SpawnTrickle
)

// String returns the policy name used in config files
func (p SpawnPolicy) String() string {
	if p == SpawnTrickle {
		return "trickle"
	}
	return "wave"
}

// ParseSpawnPolicy parses "wave" or "trickle"
func ParseSpawnPolicy(s string) (SpawnPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "wave":
		return SpawnWave, nil
	case "trickle":
		return SpawnTrickle, nil
	}
	return SpawnWave, fmt.Errorf("unknown spawn policy %q", s)
}

// UnmarshalText lets config loaders decode the policy by name
func (p *SpawnPolicy) UnmarshalText(text []byte) error {
	parsed, err := ParseSpawnPolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// MarshalText is the inverse of UnmarshalText
func (p SpawnPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// SpawnPlacement selects where new monsters appear
type SpawnPlacement uint8

const (
	PlaceEdge  SpawnPlacement = iota // uniformly along one of the four world edges
	PlaceInset                       // uniformly inside the world inset by SpawnInset
)

// ParseSpawnPlacement parses "edge" or "inset"
func ParseSpawnPlacement(s string) (SpawnPlacement, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "edge":
		return PlaceEdge, nil
	case "inset":
		return PlaceInset, nil
	}
	return PlaceEdge, fmt.Errorf("unknown spawn placement %q", s)
}

// UnmarshalText lets config loaders decode the placement by name
func (p *SpawnPlacement) UnmarshalText(text []byte) error {
	parsed, err := ParseSpawnPlacement(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// MarshalText returns the placement name
func (p SpawnPlacement) MarshalText() ([]byte, error) {
	if p == PlaceInset {
		return []byte("inset"), nil
	}
	return []byte("edge"), nil
}

// SpawnDirector decides when and how many monsters to add
type SpawnDirector struct {
	cfg       *Config
	batchSize int
	nextAt    time.Time
	waves     int
}

// NewSpawnDirector creates a director; call Reset before use
func NewSpawnDirector(cfg *Config) *SpawnDirector {
	return &SpawnDirector{cfg: cfg}
}

// Reset restarts the schedule at now and returns the size of the initial wave
func (d *SpawnDirector) Reset(now time.Time) int {
	d.waves = 0
	switch d.cfg.SpawnPolicy {
	case SpawnTrickle:
		d.nextAt = now.Add(d.cfg.TrickleInterval)
		return d.refillSize()
	default:
		d.batchSize = d.cfg.InitialBatch
		d.nextAt = now.Add(d.cfg.SpawnCycleInterval)
		return d.cfg.InitialBatch
	}
}

// Due returns how many monsters to spawn at now given the live population
func (d *SpawnDirector) Due(now time.Time, population int) int {
	switch d.cfg.SpawnPolicy {
	case SpawnTrickle:
		if population == 0 {
			d.nextAt = now.Add(d.cfg.TrickleInterval)
			return d.refillSize()
		}
		if now.Before(d.nextAt) {
			return 0
		}
		d.nextAt = now.Add(d.cfg.TrickleInterval)
		if population < d.cfg.MaxMonsters {
			return 1
		}
		return 0

	default:
		total := 0
		for !now.Before(d.nextAt) {
			total += d.batchSize
			d.batchSize += d.cfg.BatchIncrement
			d.nextAt = d.nextAt.Add(d.cfg.SpawnCycleInterval)
			d.waves++
		}
		return total
	}
}

// Pause shifts the schedule forward so time spent frozen does not count
func (d *SpawnDirector) Pause(frozen time.Duration) {
	if frozen > 0 {
		d.nextAt = d.nextAt.Add(frozen)
	}
}

// BatchSize returns the size of the next wave
func (d *SpawnDirector) BatchSize() int {
	return d.batchSize
}

// Waves returns how many cycle waves have spawned since Reset
func (d *SpawnDirector) Waves() int {
	return d.waves
}

// NextAt returns when the director next fires
func (d *SpawnDirector) NextAt() time.Time {
	return d.nextAt
}

func (d *SpawnDirector) refillSize() int {
	return max(1, min(d.cfg.MaxMonsters, d.cfg.MaxMonsters/2))
}

// newMonster creates a monster with a random type and a randomized first shot
func newMonster(cfg *Config, now time.Time, rng *rand.Rand) *Monster {
	typ := MonsterTrivia
	if rng.Float64() < 0.5 {
		typ = MonsterCauseEffect
	}
	return &Monster{
		ID:           uuid.NewString(),
		Type:         typ,
		Pos:          spawnPosition(cfg, rng),
		NextShotTime: nextShotTime(cfg, now, rng),
		Charge:       ChargeIdle,
	}
}

// spawnPosition returns a top-left position whose box is inside the world
func spawnPosition(cfg *Config, rng *rand.Rand) Vec2 {
	maxX := cfg.WorldWidth - cfg.MonsterSize
	maxY := cfg.WorldHeight - cfg.MonsterSize

	if cfg.SpawnPlacement == PlaceInset {
		inset := cfg.SpawnInset
		w := max(0, maxX-2*inset)
		h := max(0, maxY-2*inset)
		return Vec2{inset + rng.Float64()*w, inset + rng.Float64()*h}
	}

	switch rng.Intn(4) {
	case 0: // top
		return Vec2{rng.Float64() * maxX, 0}
	case 1: // right
		return Vec2{maxX, rng.Float64() * maxY}
	case 2: // bottom
		return Vec2{rng.Float64() * maxX, maxY}
	default: // left
		return Vec2{0, rng.Float64() * maxY}
	}
}
