package leaderboard

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Board applies the ranking rules on top of a Store. Submissions are
// serialized so concurrent posts never lose an entry.
type Board struct {
	store Store
	max   int
	mu    sync.Mutex
	now   func() time.Time

	// OnSubmit is called after every submission attempt with the resulting
	// list (nil on error)
	OnSubmit func(entries []Entry, err error)
}

// NewBoard creates a board capped at maxEntries (DefaultMaxEntries if <= 0)
func NewBoard(store Store, maxEntries int) *Board {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Board{store: store, max: maxEntries, now: time.Now}
}

// MaxEntries returns the cap
func (b *Board) MaxEntries() int {
	return b.max
}

// List returns the sorted, capped list
func (b *Board) List(ctx context.Context) ([]Entry, error) {
	entries, err := b.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return sortAndCap(entries, b.max), nil
}

// Submit validates and inserts a new entry, then returns the updated list
func (b *Board) Submit(ctx context.Context, name string, score int) ([]Entry, error) {
	entries, err := b.submit(ctx, name, score)
	if b.OnSubmit != nil {
		b.OnSubmit(entries, err)
	}
	return entries, err
}

func (b *Board) submit(ctx context.Context, name string, score int) ([]Entry, error) {
	name, err := ValidateName(name)
	if err != nil {
		return nil, err
	}
	if score < 0 {
		return nil, ErrInvalidScore
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	entries, err := b.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}

	entries = append(sortAndCap(entries, b.max), Entry{
		ID:    uuid.NewString(),
		Name:  name,
		Score: score,
		Date:  b.now().UTC().Format(time.RFC3339),
	})
	entries = sortAndCap(entries, b.max)

	if err := b.store.Save(ctx, entries); err != nil {
		return nil, fmt.Errorf("save leaderboard: %w", err)
	}
	log.Printf("🏆 Leaderboard entry: %s (%d)", name, score)
	return entries, nil
}

// Report submits a run and returns its rank. Lets a local board stand in
// for the remote service.
func (b *Board) Report(ctx context.Context, name string, score int) (int, error) {
	entries, err := b.Submit(ctx, name, score)
	if err != nil {
		return 0, err
	}
	trimmed, _ := ValidateName(name)
	return Rank(entries, trimmed, score), nil
}
