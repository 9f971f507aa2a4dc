package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
)

// FixtureProvider is a deterministic, offline EmbeddingProvider. Vectors
// are derived from a hash of the text and task type, normalized to unit
// length, so identical inputs always embed identically and the two task
// modes never collide. Selected with EMBEDDING_PROVIDER=fixture; used by
// tests and local development without a live provider.
type FixtureProvider struct {
	Dimension int
}

func NewFixtureProvider(dimension int) EmbeddingProvider {
	if dimension <= 0 {
		dimension = 768
	}
	return &FixtureProvider{Dimension: dimension}
}

func (p *FixtureProvider) Generate(ctx context.Context, text string, taskType string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.vectorFor(text, taskType), nil
}

func (p *FixtureProvider) GenerateBatch(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = p.vectorFor(text, taskType)
	}
	return vectors, nil
}

func (p *FixtureProvider) vectorFor(text string, taskType string) []float32 {
	seed := sha256.Sum256([]byte(taskType + "\x00" + text))

	vec := make([]float32, p.Dimension)
	var magnitude float64
	state := seed
	for i := 0; i < p.Dimension; i++ {
		word := i % 4
		if i > 0 && word == 0 {
			state = sha256.Sum256(state[:])
		}
		bits := binary.BigEndian.Uint64(state[word*8 : word*8+8])
		// Map to [-1, 1]
		v := float64(int64(bits)) / float64(math.MaxInt64)
		vec[i] = float32(v)
		magnitude += v * v
	}

	magnitude = math.Sqrt(magnitude)
	if magnitude == 0 {
		return vec
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / magnitude)
	}
	return vec
}
