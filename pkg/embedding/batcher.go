package embedding

import (
	"context"
	"fmt"
	"time"
)

// BatcherConfig controls how chunk texts are grouped into provider calls.
type BatcherConfig struct {
	// BatchSize is the number of texts per provider call.
	BatchSize int
	// Delay is the pause between consecutive batches, to stay under
	// provider rate limits.
	Delay time.Duration
}

func DefaultBatcherConfig() BatcherConfig {
	return BatcherConfig{
		BatchSize: 50,
		Delay:     200 * time.Millisecond,
	}
}

// Batcher turns a flat list of texts into rate-limited batch calls against
// an EmbeddingProvider. Output order is 1:1 with input order: vector i
// belongs to text i.
type Batcher struct {
	provider EmbeddingProvider
	cfg      BatcherConfig
}

func NewBatcher(provider EmbeddingProvider, cfg BatcherConfig) *Batcher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatcherConfig().BatchSize
	}
	return &Batcher{
		provider: provider,
		cfg:      cfg,
	}
}

// EmbedAll embeds every text with the given task type. The run is
// fail-fast: any batch error aborts the whole call, because a partially
// embedded corpus silently degrades retrieval recall with no visible
// signal.
func (b *Batcher) EmbedAll(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += b.cfg.BatchSize {
		if start > 0 && b.cfg.Delay > 0 {
			select {
			case <-time.After(b.cfg.Delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		end := start + b.cfg.BatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		batchVectors, err := b.provider.GenerateBatch(ctx, batch, taskType)
		if err != nil {
			return nil, fmt.Errorf("embedding batch %d-%d failed: %w", start, end-1, err)
		}
		if len(batchVectors) != len(batch) {
			return nil, fmt.Errorf("embedding batch %d-%d: got %d vectors for %d texts", start, end-1, len(batchVectors), len(batch))
		}

		vectors = append(vectors, batchVectors...)
	}

	return vectors, nil
}
