package game

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ShotPattern selects how a monster fires when its charge completes
type ShotPattern uint8

const (
	ShotSingle  ShotPattern = iota // one aimed shot
	ShotShotgun                    // two shots, each with independent random spread
)

// UnmarshalText decodes "single" or "shotgun"
func (p *ShotPattern) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "single":
		*p = ShotSingle
	case "shotgun":
		*p = ShotShotgun
	default:
		return fmt.Errorf("unknown shot pattern %q", text)
	}
	return nil
}

// MarshalText returns the pattern name
func (p ShotPattern) MarshalText() ([]byte, error) {
	if p == ShotShotgun {
		return []byte("shotgun"), nil
	}
	return []byte("single"), nil
}

// updateMonsters runs one AI step for every monster and returns the
// projectiles fired this tick. Monsters never interact with each other.
func updateMonsters(cfg *Config, monsters []*Monster, player Vec2, now time.Time, rng *rand.Rand) []*Projectile {
	var fired []*Projectile
	playerCenter := Center(player, cfg.PlayerSize)

	for _, m := range monsters {
		// Pursuit with bounded jitter
		heading := AngleTo(m.Pos, player)
		heading += (rng.Float64()*2 - 1) * cfg.MonsterJitter
		m.Pos = ClampBox(Step(m.Pos, heading, cfg.MonsterSpeed), cfg.MonsterSize, cfg.WorldWidth, cfg.WorldHeight)

		// Charge/shoot cycle
		if m.Charge == ChargeIdle && !now.Before(m.NextShotTime.Add(-cfg.ChargeDuration)) {
			m.Charge = ChargeCharging
		}
		if m.Charge == ChargeCharging && !now.Before(m.NextShotTime) {
			m.Charge = ChargeIdle
			fired = append(fired, fireAt(cfg, m, playerCenter, rng)...)
			m.NextShotTime = nextShotTime(cfg, now, rng)
		}
	}

	return fired
}

// fireAt builds the projectiles for one monster attack, spawned at the
// monster's center and aimed at the player's center
func fireAt(cfg *Config, m *Monster, target Vec2, rng *rand.Rand) []*Projectile {
	origin := Center(m.Pos, cfg.MonsterSize)
	aim := AngleTo(origin, target)

	angles := []float64{aim}
	if cfg.ShotPattern == ShotShotgun {
		angles = []float64{
			aim + (rng.Float64()*2-1)*cfg.ShotgunSpread,
			aim + (rng.Float64()*2-1)*cfg.ShotgunSpread,
		}
	}

	shots := make([]*Projectile, 0, len(angles))
	for _, a := range angles {
		shots = append(shots, &Projectile{
			ID:          uuid.NewString(),
			MonsterID:   m.ID,
			MonsterType: m.Type,
			Pos:         origin,
			Angle:       normalizeAngle(a),
		})
	}
	return shots
}

// nextShotTime draws now + base + random()*randomRange
func nextShotTime(cfg *Config, now time.Time, rng *rand.Rand) time.Time {
	spread := time.Duration(rng.Float64() * float64(cfg.ShotIntervalRandom))
	return now.Add(cfg.ShotIntervalBase + spread)
}

// resetShotTimers gives every monster a fresh cooldown and drops any charge
func resetShotTimers(cfg *Config, monsters []*Monster, now time.Time, rng *rand.Rand) {
	for _, m := range monsters {
		m.NextShotTime = nextShotTime(cfg, now, rng)
		m.Charge = ChargeIdle
	}
}

func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
