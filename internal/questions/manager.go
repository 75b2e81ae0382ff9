package questions

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/sasha-s/go-deadlock"
)

// ErrQueueEmpty is returned by Fetch callers that find nothing to show
var ErrQueueEmpty = errors.New("no question available")

// ManagerConfig sizes the per-category queues
type ManagerConfig struct {
	Capacity int  // MAX_QUEUE_SIZE
	LowWater int  // MIN_QUEUE_SIZE, refill is triggered below this
	Shuffle  bool // shuffle choices before handing a question out
}

// DefaultManagerConfig returns the production queue sizes
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		Capacity: 2,
		LowWater: 1,
		Shuffle:  true,
	}
}

type queue struct {
	items    []Question
	inFlight bool
}

// Manager keeps one bounded FIFO per category filled in the background.
//
// Refills use an atomic check-and-reserve: the length and in-flight flag are
// checked and the flag is set under the same lock, so at most one fetch per
// queue is ever outstanding. Reset bumps an epoch and cancels the fetch
// context; results carrying an older epoch are discarded on commit.
type Manager struct {
	mu     deadlock.Mutex
	gen    Generator
	cfg    ManagerConfig
	queues map[Category]*queue
	epoch  uint64
	ctx    context.Context
	cancel context.CancelFunc
	rng    *rand.Rand
	wg     sync.WaitGroup

	// OnFetch is called after every generation attempt (for metrics)
	OnFetch func(c Category, err error)
}

// NewManager creates a manager around a generator
func NewManager(gen Generator, cfg ManagerConfig) *Manager {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 2
	}
	if cfg.LowWater <= 0 || cfg.LowWater > cfg.Capacity {
		cfg.LowWater = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		gen:    gen,
		cfg:    cfg,
		queues: make(map[Category]*queue, len(Categories)),
		ctx:    ctx,
		cancel: cancel,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, c := range Categories {
		m.queues[c] = &queue{items: make([]Question, 0, cfg.Capacity)}
	}
	return m
}

// Capacity returns MAX_QUEUE_SIZE
func (m *Manager) Capacity() int {
	return m.cfg.Capacity
}

// EnsureFilled starts an asynchronous refill of c up to capacity unless the
// queue is already full or a refill is outstanding. Reports whether a fetch
// was started. Never blocks on the generator and never returns its errors.
func (m *Manager) EnsureFilled(c Category) bool {
	m.mu.Lock()
	q, ok := m.queues[c]
	if !ok || q.inFlight || len(q.items) >= m.cfg.Capacity {
		m.mu.Unlock()
		return false
	}
	need := m.cfg.Capacity - len(q.items)
	q.inFlight = true
	epoch := m.epoch
	ctx := m.ctx
	m.wg.Add(1)
	m.mu.Unlock()

	go m.fill(ctx, epoch, c, need)
	return true
}

// fill issues need parallel generations and commits the successful ones in
// arrival order
func (m *Manager) fill(ctx context.Context, epoch uint64, c Category, need int) {
	defer m.wg.Done()

	results := make(chan Question, need)
	var workers sync.WaitGroup
	for i := 0; i < need; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			q, err := m.gen.Generate(ctx, c)
			if m.OnFetch != nil {
				m.OnFetch(c, err)
			}
			if err != nil {
				log.Printf("⚠️ Prefetch of %s question failed: %v", c, err)
				return
			}
			results <- q
		}()
	}
	workers.Wait()
	close(results)

	fetched := make([]Question, 0, need)
	for q := range results {
		fetched = append(fetched, q)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if epoch != m.epoch {
		// Reset happened while we were fetching; the new session owns the queue
		return
	}

	q := m.queues[c]
	q.inFlight = false
	q.items = append(q.items, fetched...)
	if over := len(q.items) - m.cfg.Capacity; over > 0 {
		q.items = append(q.items[:0], q.items[over:]...)
	}
}

// Maintain refills every queue that sits below the low-water mark
func (m *Manager) Maintain() {
	for _, c := range Categories {
		if m.Len(c) < m.cfg.LowWater {
			m.EnsureFilled(c)
		}
	}
}

// Prefill starts a refill of every category to capacity
func (m *Manager) Prefill() {
	for _, c := range Categories {
		m.EnsureFilled(c)
	}
}

// Take pops the front question of c, or reports false when the queue is empty
func (m *Manager) Take(c Category) (Question, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	q, ok := m.queues[c]
	if !ok || len(q.items) == 0 {
		return Question{}, false
	}

	item := q.items[0]
	q.items = append(q.items[:0], q.items[1:]...)
	return m.prepare(item), true
}

// Fetch generates a question on demand, bypassing the queue
func (m *Manager) Fetch(ctx context.Context, c Category) (Question, error) {
	q, err := m.gen.Generate(ctx, c)
	if m.OnFetch != nil {
		m.OnFetch(c, err)
	}
	if err != nil {
		return Question{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prepare(q), nil
}

// prepare must be called with mu held (the rng is not goroutine-safe)
func (m *Manager) prepare(q Question) Question {
	if m.cfg.Shuffle {
		return Shuffle(q, m.rng)
	}
	return q.Clone()
}

// Reset empties every queue, clears in-flight flags, and invalidates any
// outstanding fetch
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.epoch++
	m.cancel()
	m.ctx, m.cancel = context.WithCancel(context.Background())
	for _, q := range m.queues {
		q.items = q.items[:0]
		q.inFlight = false
	}
}

// Len returns the number of ready questions for c
func (m *Manager) Len(c Category) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if q, ok := m.queues[c]; ok {
		return len(q.items)
	}
	return 0
}

// InFlight reports whether a refill of c is outstanding
func (m *Manager) InFlight(c Category) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if q, ok := m.queues[c]; ok {
		return q.inFlight
	}
	return false
}

// Wait blocks until every started refill has committed or been discarded
func (m *Manager) Wait() {
	m.wg.Wait()
}

// Close cancels outstanding fetches and waits for them to finish
func (m *Manager) Close() {
	m.mu.Lock()
	m.epoch++
	m.cancel()
	m.mu.Unlock()
	m.wg.Wait()
}
