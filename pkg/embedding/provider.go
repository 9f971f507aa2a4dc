package embedding

import "context"

// Task types select the asymmetric encoding. Document and query vectors
// are not comparable across modes, so every call site names its mode
// explicitly; there is no default.
const (
	TaskTypeDocument = "RETRIEVAL_DOCUMENT"
	TaskTypeQuery    = "RETRIEVAL_QUERY"
)

// EmbeddingProvider defines the interface for generating text embeddings
type EmbeddingProvider interface {
	// Generate embeds a single text with the given task type.
	Generate(ctx context.Context, text string, taskType string) ([]float32, error)

	// GenerateBatch embeds texts in one provider call. Vectors come back
	// in input order, one per text; a count mismatch is an error.
	GenerateBatch(ctx context.Context, texts []string, taskType string) ([][]float32, error)
}
