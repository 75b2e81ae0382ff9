package questions

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Generator produces one question for a category. Implementations are
// single-shot: no retry is built in, a failed call simply returns an error.
type Generator interface {
	Generate(ctx context.Context, c Category) (Question, error)
}

// GeneratorFunc adapts a function to the Generator interface
type GeneratorFunc func(ctx context.Context, c Category) (Question, error)

// Generate calls f
func (f GeneratorFunc) Generate(ctx context.Context, c Category) (Question, error) {
	return f(ctx, c)
}

// Source is the two-operation generation backend: trivia questions keyed by
// topic, and cause/effect questions keyed by an economic condition.
type Source interface {
	Trivia(ctx context.Context, topic string) (Question, error)
	CauseEffect(ctx context.Context, condition string) (Question, error)
}

// TopicGenerator draws a random topic (or condition) per request and asks
// the Source for a question about it.
type TopicGenerator struct {
	source     Source
	topics     []string
	conditions []string

	mu  sync.Mutex
	rng *rand.Rand
}

// NewTopicGenerator wraps a Source with the default topic pools
func NewTopicGenerator(source Source) *TopicGenerator {
	return &TopicGenerator{
		source:     source,
		topics:     TriviaTopics,
		conditions: EconomicConditions,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (g *TopicGenerator) pick(pool []string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return pool[g.rng.Intn(len(pool))]
}

// Generate implements Generator
func (g *TopicGenerator) Generate(ctx context.Context, c Category) (Question, error) {
	var (
		q   Question
		err error
	)

	switch c {
	case CategoryTrivia:
		topic := g.pick(g.topics)
		q, err = g.source.Trivia(ctx, topic)
		if err != nil {
			return Question{}, fmt.Errorf("trivia question on %q: %w", topic, err)
		}
	case CategoryCauseEffect:
		condition := g.pick(g.conditions)
		q, err = g.source.CauseEffect(ctx, condition)
		if err != nil {
			return Question{}, fmt.Errorf("cause/effect question on %q: %w", condition, err)
		}
	default:
		return Question{}, fmt.Errorf("%w: %d", ErrUnknownCategory, c)
	}

	if err := q.Validate(); err != nil {
		return Question{}, err
	}
	return q, nil
}
