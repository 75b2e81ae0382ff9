package questions

import (
	"context"
	_ "embed"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed bank.yaml
var defaultBank []byte

type bankEntry struct {
	Topic     string `yaml:"topic"`
	Condition string `yaml:"condition"`
	Question  `yaml:",inline"`
}

type bankFile struct {
	Trivia      []bankEntry `yaml:"trivia"`
	CauseEffect []bankEntry `yaml:"causeEffect"`
}

// BankSource serves questions from a static YAML bank so the game is playable
// without a generation service. Entries matching the requested topic are
// preferred; otherwise any entry of the category is returned.
type BankSource struct {
	trivia      []bankEntry
	causeEffect []bankEntry

	mu  sync.Mutex
	rng *rand.Rand
}

// NewDefaultBankSource loads the embedded bank
func NewDefaultBankSource() (*BankSource, error) {
	return ParseBank(defaultBank)
}

// LoadBankFile loads a bank from a YAML file on disk
func LoadBankFile(path string) (*BankSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}
	return ParseBank(data)
}

// ParseBank decodes and validates a YAML bank
func ParseBank(data []byte) (*BankSource, error) {
	var f bankFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse question bank: %w", err)
	}
	if len(f.Trivia) == 0 || len(f.CauseEffect) == 0 {
		return nil, fmt.Errorf("%w: bank needs at least one question per category", ErrInvalidQuestion)
	}
	for i, e := range f.Trivia {
		if err := e.Question.Validate(); err != nil {
			return nil, fmt.Errorf("trivia entry %d: %w", i, err)
		}
	}
	for i, e := range f.CauseEffect {
		if err := e.Question.Validate(); err != nil {
			return nil, fmt.Errorf("cause/effect entry %d: %w", i, err)
		}
	}

	return &BankSource{
		trivia:      f.Trivia,
		causeEffect: f.CauseEffect,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Size returns the number of entries per category
func (b *BankSource) Size() (trivia, causeEffect int) {
	return len(b.trivia), len(b.causeEffect)
}

// Trivia implements Source
func (b *BankSource) Trivia(ctx context.Context, topic string) (Question, error) {
	return b.pick(ctx, b.trivia, func(e bankEntry) bool { return e.Topic == topic })
}

// CauseEffect implements Source
func (b *BankSource) CauseEffect(ctx context.Context, condition string) (Question, error) {
	return b.pick(ctx, b.causeEffect, func(e bankEntry) bool { return e.Condition == condition })
}

func (b *BankSource) pick(ctx context.Context, entries []bankEntry, match func(bankEntry) bool) (Question, error) {
	if err := ctx.Err(); err != nil {
		return Question{}, err
	}

	var matched []int
	for i, e := range entries {
		if match(e) {
			matched = append(matched, i)
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.rng.Intn(len(entries))
	if len(matched) > 0 {
		idx = matched[b.rng.Intn(len(matched))]
	}
	return entries[idx].Question.Clone(), nil
}
