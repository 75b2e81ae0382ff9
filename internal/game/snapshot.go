package game

import (
	"sync/atomic"
	"time"

	"ecoroam/internal/questions"
)

// MonsterSnapshot is an immutable copy of a monster for rendering
type MonsterSnapshot struct {
	ID       string  `json:"id"`
	Type     string  `json:"type"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Charging bool    `json:"charging"`
}

// ProjectileSnapshot is an immutable projectile (center position)
type ProjectileSnapshot struct {
	ID          string  `json:"id"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Angle       float64 `json:"angle"`
	MonsterType string  `json:"monsterType,omitempty"`
}

// ActiveQuestion is the question currently gating the run
type ActiveQuestion struct {
	MonsterID    string             `json:"monsterId"`
	ProjectileID string             `json:"projectileId"`
	Category     questions.Category `json:"-"`
	Question     questions.Question `json:"questionData"`
}

// Snapshot is a complete immutable view of the simulation for one frame.
// Rendering is a pure function of this value.
type Snapshot struct {
	Sequence  uint64    `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`
	Tick      uint64    `json:"tick"`
	Session   uint64    `json:"session"`
	Status    Status    `json:"status"`

	Player Vec2 `json:"player"`
	Camera Vec2 `json:"camera"` // viewport/2 - player; add to world coords to get screen coords

	Monsters           []MonsterSnapshot    `json:"monsters"`
	MonsterProjectiles []ProjectileSnapshot `json:"monsterProjectiles"`
	PlayerProjectiles  []ProjectileSnapshot `json:"playerProjectiles"`

	Score          int `json:"score"`
	TimeSurvived   int `json:"timeSurvived"`
	MonstersKilled int `json:"monstersKilled"`
	Wave           int `json:"wave"`
	NextBatch      int `json:"nextBatch"`

	HitFlash bool            `json:"hitFlash"` // between the hit and the question appearing
	Question *ActiveQuestion `json:"question,omitempty"`
	GameOver *GameOverData   `json:"gameOver,omitempty"`

	Config Config `json:"-"`
}

// Clone returns a deep copy that stays valid after the pool reuses the slot
func (s *Snapshot) Clone() Snapshot {
	out := *s
	out.Monsters = append([]MonsterSnapshot(nil), s.Monsters...)
	out.MonsterProjectiles = append([]ProjectileSnapshot(nil), s.MonsterProjectiles...)
	out.PlayerProjectiles = append([]ProjectileSnapshot(nil), s.PlayerProjectiles...)
	if s.Question != nil {
		q := *s.Question
		q.Question = s.Question.Question.Clone()
		out.Question = &q
	}
	if s.GameOver != nil {
		g := *s.GameOver
		if s.GameOver.FailedQuestion != nil {
			f := *s.GameOver.FailedQuestion
			g.FailedQuestion = &f
		}
		out.GameOver = &g
	}
	return out
}

// SnapshotPool pre-allocates snapshots to avoid per-tick garbage.
// Triple buffered: the producer (tick) writes one slot while readers copy
// the last published one. Readers must hold the engine read lock while
// cloning, since a slot is rewritten two publishes later.
type SnapshotPool struct {
	snapshots [3]Snapshot
	writeIdx  uint32 // atomic - producer index
	readIdx   uint32 // atomic - consumer index
	sequence  uint64 // atomic - monotonic sequence
}

// NewSnapshotPool creates a pool with pre-allocated slices
func NewSnapshotPool(expectedMonsters int) *SnapshotPool {
	pool := &SnapshotPool{}
	for i := range pool.snapshots {
		pool.snapshots[i] = Snapshot{
			Monsters:           make([]MonsterSnapshot, 0, expectedMonsters),
			MonsterProjectiles: make([]ProjectileSnapshot, 0, expectedMonsters*2),
			PlayerProjectiles:  make([]ProjectileSnapshot, 0, 32),
		}
	}
	return pool
}

// AcquireWrite gets the next write slot with slices reset but capacity kept
func (p *SnapshotPool) AcquireWrite() *Snapshot {
	idx := atomic.AddUint32(&p.writeIdx, 1) % 3
	snap := &p.snapshots[idx]

	snap.Monsters = snap.Monsters[:0]
	snap.MonsterProjectiles = snap.MonsterProjectiles[:0]
	snap.PlayerProjectiles = snap.PlayerProjectiles[:0]
	snap.Question = nil
	snap.GameOver = nil
	snap.HitFlash = false

	snap.Sequence = atomic.AddUint64(&p.sequence, 1)
	return snap
}

// PublishWrite marks the write complete
func (p *SnapshotPool) PublishWrite() {
	atomic.StoreUint32(&p.readIdx, atomic.LoadUint32(&p.writeIdx))
}

// AcquireRead returns the latest published slot
func (p *SnapshotPool) AcquireRead() *Snapshot {
	idx := atomic.LoadUint32(&p.readIdx) % 3
	return &p.snapshots[idx]
}
