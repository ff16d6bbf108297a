// Package knowledge implements the financial advice retrieval layer:
// an embedded corpus searched by vector similarity and filtered by
// topic or category.
package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/HARSHALK2598/PersonalFinanceAIAgents/internal/domain"
	"github.com/google/uuid"
)

// maxFilterResults bounds the size of topic/category lookups.
const maxFilterResults = 10

// Embedder turns text into a vector for similarity ranking.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

type entry struct {
	advice domain.Advice
	vector []float64
}

// Base is an in-memory advice corpus with embedding-based retrieval.
type Base struct {
	embedder Embedder

	mu      sync.RWMutex
	entries []entry
}

// NewBase creates an empty knowledge base backed by the given embedder.
func NewBase(embedder Embedder) *Base {
	return &Base{embedder: embedder}
}

// Seed inserts the default advice corpus. Unlike Add, seeding failures are
// fatal: a server without reference material cannot retrieve context.
func (b *Base) Seed(ctx context.Context) error {
	for _, item := range defaultAdvice {
		vec, err := b.embedder.Embed(ctx, item.text)
		if err != nil {
			return fmt.Errorf("seed knowledge base: embed %q: %w", item.topic, err)
		}
		b.append(item.text, item.topic, item.category, vec)
	}
	slog.Info("Knowledge base seeded", "entries", len(defaultAdvice))
	return nil
}

// Query returns up to k advice entries ranked by cosine similarity to the
// query text. Ties keep insertion order; fewer entries are returned when
// the corpus is smaller than k.
func (b *Base) Query(ctx context.Context, text string, k int) ([]domain.Advice, error) {
	if k <= 0 {
		return nil, nil
	}

	vec, err := b.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("query knowledge base: %w", err)
	}

	b.mu.RLock()
	type scored struct {
		advice domain.Advice
		score  float64
	}
	ranked := make([]scored, 0, len(b.entries))
	for _, e := range b.entries {
		ranked = append(ranked, scored{advice: e.advice, score: cosine(vec, e.vector)})
	}
	b.mu.RUnlock()

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if k > len(ranked) {
		k = len(ranked)
	}
	result := make([]domain.Advice, 0, k)
	for _, r := range ranked[:k] {
		result = append(result, r.advice)
	}
	return result, nil
}

// ByCategory returns advice entries with an exactly matching category, in
// insertion order, capped at maxFilterResults.
func (b *Base) ByCategory(category string) []domain.Advice {
	return b.filter(func(a domain.Advice) bool { return a.Category == category })
}

// ByTopic returns advice entries with an exactly matching topic, in
// insertion order, capped at maxFilterResults.
func (b *Base) ByTopic(topic string) []domain.Advice {
	return b.filter(func(a domain.Advice) bool { return a.Topic == topic })
}

func (b *Base) filter(match func(domain.Advice) bool) []domain.Advice {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var result []domain.Advice
	for _, e := range b.entries {
		if match(e.advice) {
			result = append(result, e.advice)
			if len(result) == maxFilterResults {
				break
			}
		}
	}
	return result
}

// Add appends new reference material. It never returns an error: failures
// are logged and reported as false so a failed insertion cannot interrupt
// an otherwise-successful planning turn. Entries are not deduplicated.
func (b *Base) Add(ctx context.Context, text, topic, category string) bool {
	vec, err := b.embedder.Embed(ctx, text)
	if err != nil {
		slog.Error("Failed to add advice", "topic", topic, "category", category, "error", err)
		return false
	}
	b.append(text, topic, category, vec)
	return true
}

func (b *Base) append(text, topic, category string, vec []float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, entry{
		advice: domain.Advice{
			ID:       uuid.NewString(),
			Text:     text,
			Topic:    topic,
			Category: category,
		},
		vector: vec,
	})
}

// Len returns the number of entries in the corpus.
func (b *Base) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// cosine computes cosine similarity. Mismatched or zero-norm vectors score 0.
func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
