package game

import (
	"time"

	"ecoroam/internal/questions"
)

// MonsterType decides which question category a monster's hit triggers
type MonsterType = questions.Category

const (
	MonsterTrivia      = questions.CategoryTrivia
	MonsterCauseEffect = questions.CategoryCauseEffect
)

// ChargeState is the monster's attack state machine: Idle -> Charging -> Idle
type ChargeState uint8

const (
	ChargeIdle ChargeState = iota
	ChargeCharging
)

// String returns the state name used in snapshots
func (s ChargeState) String() string {
	if s == ChargeCharging {
		return "charging"
	}
	return "idle"
}

// Player is the single player-controlled entity. Pos is the top-left corner.
type Player struct {
	Pos Vec2
}

// Monster pursues the player and periodically fires at it
type Monster struct {
	ID           string
	Type         MonsterType
	Pos          Vec2
	NextShotTime time.Time
	Charge       ChargeState
}

// Charging reports whether the monster is telegraphing an attack
func (m *Monster) Charging() bool {
	return m.Charge == ChargeCharging
}

// Projectile is used for both monster and player shots. Pos is the center.
// MonsterID and MonsterType are only set on monster projectiles.
type Projectile struct {
	ID          string
	MonsterID   string
	MonsterType MonsterType
	Pos         Vec2
	Angle       float64
}

// Input is the buffered held-keys state, sampled once per tick
type Input struct {
	Up, Down, Left, Right bool
}

// shotRequest is a buffered player shoot action in viewport coordinates
type shotRequest struct {
	X, Y float64
}
