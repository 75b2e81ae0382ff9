package game

import (
	"math"
	"math/rand"
	"testing"
	"time"
)

func TestGeometry(t *testing.T) {
	if d := Distance(Vec2{0, 0}, Vec2{3, 4}); d != 5 {
		t.Errorf("Distance = %v, want 5", d)
	}
	if a := AngleTo(Vec2{0, 0}, Vec2{0, 10}); math.Abs(a-math.Pi/2) > 1e-9 {
		t.Errorf("AngleTo straight down = %v, want pi/2", a)
	}

	tests := []struct {
		name string
		in   Vec2
		want Vec2
	}{
		{"inside", Vec2{50, 60}, Vec2{50, 60}},
		{"negative", Vec2{-5, -1}, Vec2{0, 0}},
		{"past far edge", Vec2{995, 799}, Vec2{980, 780}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampBox(tt.in, 20, 1000, 800); got != tt.want {
				t.Errorf("ClampBox(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	if !InBounds(Vec2{1000, 800}, 1000, 800) || InBounds(Vec2{1000.01, 0}, 1000, 800) {
		t.Error("InBounds edge handling wrong")
	}
	if !CirclesOverlap(Vec2{0, 0}, 5, Vec2{9, 0}, 5) || CirclesOverlap(Vec2{0, 0}, 5, Vec2{10, 0}, 5) {
		t.Error("CirclesOverlap must be strict")
	}
}

func TestMonsterChargeCycle(t *testing.T) {
	cfg := DefaultConfig()
	rng := rand.New(rand.NewSource(1))
	now := epoch
	m := &Monster{ID: "m1", Type: MonsterTrivia, Pos: Vec2{100, 100}, NextShotTime: now.Add(3 * time.Second)}
	player := Vec2{600, 600}

	if shots := updateMonsters(&cfg, []*Monster{m}, player, now.Add(1500*time.Millisecond), rng); len(shots) != 0 || m.Charging() {
		t.Fatal("monster should be idle before the charge window")
	}

	if shots := updateMonsters(&cfg, []*Monster{m}, player, now.Add(2*time.Second), rng); len(shots) != 0 || !m.Charging() {
		t.Fatalf("monster should charge at next-chargeDuration (state %v)", m.Charge)
	}

	fireAt := now.Add(3 * time.Second)
	shots := updateMonsters(&cfg, []*Monster{m}, player, fireAt, rng)
	if len(shots) != 1 {
		t.Fatalf("single pattern fired %d shots, want 1", len(shots))
	}
	if m.Charging() {
		t.Error("monster should return to idle after firing")
	}
	lo, hi := fireAt.Add(cfg.ShotIntervalBase), fireAt.Add(cfg.ShotIntervalBase+cfg.ShotIntervalRandom)
	if m.NextShotTime.Before(lo) || m.NextShotTime.After(hi) {
		t.Errorf("next shot %v outside [%v, %v]", m.NextShotTime, lo, hi)
	}

	s := shots[0]
	if s.MonsterID != "m1" || s.MonsterType != MonsterTrivia {
		t.Errorf("projectile not tagged with its monster: %+v", s)
	}
	want := AngleTo(Center(m.Pos, cfg.MonsterSize), Center(player, cfg.PlayerSize))
	if math.Abs(s.Angle-want) > 1e-9 {
		t.Errorf("aim = %v, want %v", s.Angle, want)
	}
}

func TestMonsterShotgun(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ShotPattern = ShotShotgun
	rng := rand.New(rand.NewSource(9))
	m := &Monster{ID: "m1", Pos: Vec2{100, 100}, NextShotTime: epoch, Charge: ChargeCharging}

	shots := updateMonsters(&cfg, []*Monster{m}, Vec2{800, 100}, epoch, rng)
	if len(shots) != 2 {
		t.Fatalf("shotgun fired %d shots, want 2", len(shots))
	}
	aim := AngleTo(Center(m.Pos, cfg.MonsterSize), Center(Vec2{800, 100}, cfg.PlayerSize))
	for _, s := range shots {
		if math.Abs(s.Angle-aim) > cfg.ShotgunSpread+1e-9 {
			t.Errorf("pellet angle %v exceeds spread around %v", s.Angle, aim)
		}
	}
}

func TestMonsterPursuitStaysInBounds(t *testing.T) {
	cfg := DefaultConfig()
	rng := rand.New(rand.NewSource(3))
	m := &Monster{Pos: Vec2{0, 0}, NextShotTime: epoch.Add(time.Hour)}
	player := Vec2{-500, -500}

	for i := 0; i < 200; i++ {
		updateMonsters(&cfg, []*Monster{m}, player, epoch, rng)
		if m.Pos.X < 0 || m.Pos.Y < 0 {
			t.Fatalf("monster left the world at %+v", m.Pos)
		}
	}

	start := Vec2{1000, 700}
	m.Pos = start
	target := Vec2{1000, 100}
	updateMonsters(&cfg, []*Monster{m}, target, epoch, rng)
	if m.Pos.Y >= start.Y {
		t.Errorf("monster did not move toward the player: %+v", m.Pos)
	}
	if d := Distance(start, m.Pos); math.Abs(d-cfg.MonsterSpeed) > 1e-9 {
		t.Errorf("step length = %v, want %v", d, cfg.MonsterSpeed)
	}
}

func TestMonsterProjectileExpiry(t *testing.T) {
	cfg := DefaultConfig()
	pe := newProjectileEngine(&cfg)

	shots := []*Projectile{
		{ID: "leaving", Pos: Vec2{cfg.WorldWidth - 3, 10}},
		{ID: "staying", Pos: Vec2{cfg.WorldWidth - 10, 10}},
	}
	left, hit := pe.updateMonsterProjectiles(shots, Vec2{500, 500}, false)
	if hit != nil {
		t.Fatal("unexpected hit")
	}
	if len(left) != 1 || left[0].ID != "staying" {
		t.Fatalf("survivors = %v, want only the staying shot", left)
	}

	// The survivor leaves on exactly the next tick
	left, _ = pe.updateMonsterProjectiles(left, Vec2{500, 500}, false)
	if len(left) != 0 {
		t.Errorf("projectile at x=%v not expired", left[0].Pos.X)
	}
}

func TestMonsterProjectileSingleHit(t *testing.T) {
	cfg := DefaultConfig()
	pe := newProjectileEngine(&cfg)
	player := Vec2{500, 500}
	c := Center(player, cfg.PlayerSize)

	shots := []*Projectile{
		{ID: "a", Pos: Vec2{c.X - cfg.ProjectileSpeed, c.Y}},
		{ID: "b", Pos: Vec2{c.X - cfg.ProjectileSpeed, c.Y + 1}},
	}
	left, hit := pe.updateMonsterProjectiles(shots, player, false)
	if hit == nil || hit.ID != "a" {
		t.Fatalf("hit = %v, want a", hit)
	}
	if len(left) != 1 || left[0].ID != "b" {
		t.Errorf("second overlapping shot should stay for the guard, got %d", len(left))
	}

	_, hit = pe.updateMonsterProjectiles(left, player, true)
	if hit != nil {
		t.Error("blocked update must not report a hit")
	}
}

func TestCollisionExclusivity(t *testing.T) {
	cfg := DefaultConfig()
	pe := newProjectileEngine(&cfg)

	// Two monsters stacked on the same spot one step right of each shot
	target := Vec2{300 + cfg.PlayerProjectileSpeed, 300}
	box := Vec2{target.X - cfg.MonsterSize/2, target.Y - cfg.MonsterSize/2}
	monsters := func() []*Monster {
		return []*Monster{{ID: "first", Pos: box}, {ID: "second", Pos: box}, {ID: "far", Pos: Vec2{1500, 1000}}}
	}

	t.Run("one projectile kills one monster", func(t *testing.T) {
		shots := []*Projectile{{ID: "p1", Pos: Vec2{300, 300}}}
		left, hits := pe.updatePlayerProjectiles(shots, monsters())
		if len(hits) != 1 {
			t.Fatalf("hits = %v, want exactly one", hits)
		}
		if _, ok := hits["first"]; !ok {
			t.Errorf("lowest index should win, got %v", hits)
		}
		if len(left) != 0 {
			t.Error("projectile must not pass through")
		}
	})

	t.Run("two projectiles kill two monsters", func(t *testing.T) {
		shots := []*Projectile{{ID: "p1", Pos: Vec2{300, 300}}, {ID: "p2", Pos: Vec2{300, 300}}}
		_, hits := pe.updatePlayerProjectiles(shots, monsters())
		if len(hits) != 2 {
			t.Fatalf("hits = %v, want first and second", hits)
		}
	})

	t.Run("surplus projectile survives", func(t *testing.T) {
		shots := []*Projectile{{ID: "p1", Pos: Vec2{300, 300}}, {ID: "p2", Pos: Vec2{300, 300}}, {ID: "p3", Pos: Vec2{300, 300}}}
		left, hits := pe.updatePlayerProjectiles(shots, monsters())
		if len(hits) != 2 || len(left) != 1 || left[0].ID != "p3" {
			t.Errorf("hits=%v survivors=%d, want 2 kills and p3 alive", hits, len(left))
		}
		ms := removeMonsters(monsters(), hits)
		if len(ms) != 1 || ms[0].ID != "far" {
			t.Errorf("removeMonsters left %v", ms)
		}
	})
}

func TestSpawnDirectorWave(t *testing.T) {
	cfg := DefaultConfig()
	d := NewSpawnDirector(&cfg)

	if n := d.Reset(epoch); n != cfg.InitialBatch {
		t.Fatalf("initial wave = %d, want %d", n, cfg.InitialBatch)
	}
	if n := d.Due(epoch.Add(cfg.SpawnCycleInterval-time.Millisecond), 0); n != 0 {
		t.Errorf("early Due = %d, want 0", n)
	}

	// A wave is independent of population
	want := cfg.InitialBatch
	for wave := 1; wave <= 4; wave++ {
		at := epoch.Add(time.Duration(wave) * cfg.SpawnCycleInterval)
		if n := d.Due(at, 1000); n != want {
			t.Errorf("wave %d = %d, want %d", wave, n, want)
		}
		want += cfg.BatchIncrement
	}
	if d.Waves() != 4 {
		t.Errorf("waves = %d, want 4", d.Waves())
	}

	// Frozen time pushes the schedule back
	next := d.NextAt()
	d.Pause(3 * time.Second)
	if got := d.NextAt(); !got.Equal(next.Add(3 * time.Second)) {
		t.Errorf("NextAt after pause = %v, want %v", got, next.Add(3*time.Second))
	}
}

func TestSpawnDirectorTrickle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SpawnPolicy = SpawnTrickle
	d := NewSpawnDirector(&cfg)

	if n := d.Reset(epoch); n != 2 {
		t.Fatalf("trickle refill = %d, want 2", n)
	}
	at := epoch.Add(cfg.TrickleInterval)
	if n := d.Due(at, cfg.MaxMonsters); n != 0 {
		t.Errorf("at cap Due = %d, want 0", n)
	}
	at = at.Add(cfg.TrickleInterval)
	if n := d.Due(at, cfg.MaxMonsters-1); n != 1 {
		t.Errorf("below cap Due = %d, want 1", n)
	}
	if n := d.Due(at.Add(time.Millisecond), 0); n != 2 {
		t.Errorf("empty world refill = %d, want 2", n)
	}
}

func TestSpawnPositions(t *testing.T) {
	for _, placement := range []SpawnPlacement{PlaceEdge, PlaceInset} {
		cfg := DefaultConfig()
		cfg.SpawnPlacement = placement
		rng := rand.New(rand.NewSource(5))
		for i := 0; i < 500; i++ {
			m := newMonster(&cfg, epoch, rng)
			p := m.Pos
			if p.X < 0 || p.Y < 0 || p.X > cfg.WorldWidth-cfg.MonsterSize || p.Y > cfg.WorldHeight-cfg.MonsterSize {
				t.Fatalf("%v spawn outside world: %+v", placement, p)
			}
			onEdge := p.X == 0 || p.Y == 0 || p.X == cfg.WorldWidth-cfg.MonsterSize || p.Y == cfg.WorldHeight-cfg.MonsterSize
			if placement == PlaceEdge && !onEdge {
				t.Fatalf("edge spawn not on an edge: %+v", p)
			}
			if placement == PlaceInset && (p.X < cfg.SpawnInset || p.Y < cfg.SpawnInset) {
				t.Fatalf("inset spawn too close to the border: %+v", p)
			}
			if m.NextShotTime.Before(epoch.Add(cfg.ShotIntervalBase)) {
				t.Fatal("first shot scheduled before the base interval")
			}
		}
	}
}

func TestParsePolicies(t *testing.T) {
	if p, err := ParseSpawnPolicy("Trickle"); err != nil || p != SpawnTrickle {
		t.Errorf("ParseSpawnPolicy(Trickle) = %v, %v", p, err)
	}
	if _, err := ParseSpawnPolicy("burst"); err == nil {
		t.Error("expected error for unknown policy")
	}
	if p, err := ParseSpawnPlacement("inset"); err != nil || p != PlaceInset {
		t.Errorf("ParseSpawnPlacement(inset) = %v, %v", p, err)
	}
	var sp ShotPattern
	if err := sp.UnmarshalText([]byte("shotgun")); err != nil || sp != ShotShotgun {
		t.Errorf("ShotPattern shotgun = %v, %v", sp, err)
	}
}

func TestScoreTracker(t *testing.T) {
	s := NewScoreTracker(time.Second, 10)
	s.Reset(epoch)

	if n := s.Tick(epoch.Add(999 * time.Millisecond)); n != 0 {
		t.Errorf("early tick awarded %d", n)
	}
	if n := s.Tick(epoch.Add(2500 * time.Millisecond)); n != 2 {
		t.Errorf("tick awarded %d intervals, want 2", n)
	}
	s.AddKills(2, 25)
	s.AddBonus(50)
	if s.Score != 120 || s.MonstersKilled != 2 || s.SecondsSurvived() != 2 {
		t.Errorf("score=%d kills=%d survived=%d", s.Score, s.MonstersKilled, s.SecondsSurvived())
	}

	// Frozen time is not counted after Resume
	s.Resume(epoch.Add(10 * time.Second))
	if n := s.Tick(epoch.Add(10500 * time.Millisecond)); n != 0 {
		t.Errorf("tick right after resume awarded %d", n)
	}
	if n := s.Tick(epoch.Add(11 * time.Second)); n != 1 || s.SecondsSurvived() != 3 {
		t.Errorf("post-resume tick = %d survived=%d", n, s.SecondsSurvived())
	}
}

func TestSnapshotCloneIsDeep(t *testing.T) {
	pool := NewSnapshotPool(4)
	w := pool.AcquireWrite()
	w.Monsters = append(w.Monsters, MonsterSnapshot{ID: "m1"})
	w.GameOver = &GameOverData{Score: 10, FailedQuestion: &FailedQuestion{QuestionText: "q"}}
	pool.PublishWrite()

	clone := pool.AcquireRead().Clone()
	w.Monsters[0].ID = "mutated"
	w.GameOver.FailedQuestion.QuestionText = "mutated"

	if clone.Monsters[0].ID != "m1" || clone.GameOver.FailedQuestion.QuestionText != "q" {
		t.Error("clone shares memory with the pool slot")
	}
}
