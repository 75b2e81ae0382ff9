package game

import (
	"ecoroam/internal/game/spatial"
)

// projectileEngine integrates projectiles and resolves their collisions
type projectileEngine struct {
	cfg  *Config
	grid *spatial.Grid
}

func newProjectileEngine(cfg *Config) *projectileEngine {
	cell := 4 * (cfg.MonsterSize + cfg.PlayerProjectileSize)
	return &projectileEngine{
		cfg:  cfg,
		grid: spatial.NewGrid(cfg.WorldWidth, cfg.WorldHeight, cell, 64),
	}
}

// advance moves p one tick along its heading and reports whether it is
// still inside the world
func (pe *projectileEngine) advance(p *Projectile, speed float64) bool {
	p.Pos = Step(p.Pos, p.Angle, speed)
	return InBounds(p.Pos, pe.cfg.WorldWidth, pe.cfg.WorldHeight)
}

// updateMonsterProjectiles integrates every monster projectile, drops the
// ones that left the world, and returns the first one that struck the
// player. At most one hit is reported per call; when hitBlocked is set
// (a hit is already being handled) overlaps are ignored.
// The slice is filtered in place.
func (pe *projectileEngine) updateMonsterProjectiles(shots []*Projectile, player Vec2, hitBlocked bool) ([]*Projectile, *Projectile) {
	var hit *Projectile
	playerCenter := Center(player, pe.cfg.PlayerSize)
	shotR, playerR := pe.cfg.ProjectileSize/2, pe.cfg.PlayerSize/2

	n := 0
	for _, p := range shots {
		if !pe.advance(p, pe.cfg.ProjectileSpeed) {
			continue
		}
		if hit == nil && !hitBlocked && CirclesOverlap(p.Pos, shotR, playerCenter, playerR) {
			hit = p
			continue
		}
		shots[n] = p
		n++
	}

	for i := n; i < len(shots); i++ {
		shots[i] = nil
	}
	return shots[:n], hit
}

// updatePlayerProjectiles integrates player shots and tests them against
// every live monster. Each projectile kills at most one monster and each
// monster is killed at most once per tick; among overlapping candidates the
// lowest monster index wins. Returns the surviving shots and the hit set.
func (pe *projectileEngine) updatePlayerProjectiles(shots []*Projectile, monsters []*Monster) ([]*Projectile, map[string]struct{}) {
	hitSet := make(map[string]struct{})
	if len(shots) == 0 {
		return shots, hitSet
	}

	pe.grid.Clear()
	for i, m := range monsters {
		c := Center(m.Pos, pe.cfg.MonsterSize)
		pe.grid.Insert(uint32(i), c.X, c.Y)
	}

	shotR, monsterR := pe.cfg.PlayerProjectileSize/2, pe.cfg.MonsterSize/2
	radius := shotR + monsterR

	n := 0
	for _, p := range shots {
		if !pe.advance(p, pe.cfg.PlayerProjectileSpeed) {
			continue
		}

		consumed := false
		for _, idx := range pe.grid.QueryRadius(p.Pos.X, p.Pos.Y, radius) {
			m := monsters[idx]
			if _, already := hitSet[m.ID]; already {
				continue
			}
			if CirclesOverlap(p.Pos, shotR, Center(m.Pos, pe.cfg.MonsterSize), monsterR) {
				hitSet[m.ID] = struct{}{}
				consumed = true
				break
			}
		}
		if consumed {
			continue
		}

		shots[n] = p
		n++
	}

	for i := n; i < len(shots); i++ {
		shots[i] = nil
	}
	return shots[:n], hitSet
}

// removeMonsters filters out every monster in the set, in place
func removeMonsters(monsters []*Monster, dead map[string]struct{}) []*Monster {
	if len(dead) == 0 {
		return monsters
	}
	n := 0
	for _, m := range monsters {
		if _, ok := dead[m.ID]; ok {
			continue
		}
		monsters[n] = m
		n++
	}
	for i := n; i < len(monsters); i++ {
		monsters[i] = nil
	}
	return monsters[:n]
}
