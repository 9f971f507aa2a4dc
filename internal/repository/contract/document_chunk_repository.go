package contract

import (
	"context"

	"doc-assistant-be/internal/entity"
	"doc-assistant-be/internal/repository/specification"
)

// SearchFilter restricts nearest-neighbor candidates by document metadata.
// Filters apply before the index scan, not as a post-filter on an already
// limited top-k, so they never silently shrink the result count.
type SearchFilter struct {
	SourcePath string
	PageType   string
}

// ScoredChunk pairs a chunk with its cosine similarity to the query
// vector, in [0,1] (1 = identical direction).
type ScoredChunk struct {
	Chunk      *entity.DocumentChunk
	Similarity float64
}

type DocumentChunkRepository interface {
	// UpsertBulk writes chunks keyed by their deterministic id: existing
	// rows are overwritten, never duplicated.
	UpsertBulk(ctx context.Context, chunks []*entity.DocumentChunk) error

	// DeleteBySourcePath removes every chunk of one document.
	DeleteBySourcePath(ctx context.Context, sourcePath string) error

	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// SearchSimilarWithScore runs a pgvector cosine top-k over embedded
	// chunks. Results are ordered by similarity descending with ties
	// broken by chunk_index ascending, and filtered by threshold.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, filter SearchFilter, threshold float64) ([]*ScoredChunk, error)
}
