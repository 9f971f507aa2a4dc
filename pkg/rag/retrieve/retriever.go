package retrieve

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"doc-assistant-be/internal/entity"
	"doc-assistant-be/internal/repository/contract"
	"doc-assistant-be/internal/repository/unitofwork"
	"doc-assistant-be/pkg/embedding"

	gocache "github.com/patrickmn/go-cache"
)

// ErrGroundingUnavailable marks query-time retrieval failures (embedding
// call, nearest-neighbor call, or timeout). Callers must surface it as
// "grounding unavailable" and never fall back to ungrounded generation
// silently. It is distinct from an empty result, which is a valid state.
var ErrGroundingUnavailable = errors.New("grounding unavailable")

// SearchResult is a read-only projection of a chunk plus its similarity
// to the query, in [0,1]. Produced only here; never persisted.
type SearchResult struct {
	Chunk      *entity.DocumentChunk
	Similarity float64
}

// Config encapsulates retrieval parameters
type Config struct {
	TopK      int
	Threshold float64
	Filter    contract.SearchFilter
	Timeout   time.Duration
}

// DefaultConfig returns default retrieval configuration
func DefaultConfig() Config {
	return Config{
		TopK:      5,
		Threshold: 0.0,
		Timeout:   15 * time.Second,
	}
}

// Retriever embeds a question in query mode and runs the top-k cosine
// search against the chunk index.
type Retriever struct {
	embeddingProvider embedding.EmbeddingProvider
	queryCache        *gocache.Cache
	logger            *log.Logger
}

func NewRetriever(embeddingProvider embedding.EmbeddingProvider, logger *log.Logger) *Retriever {
	return &Retriever{
		embeddingProvider: embeddingProvider,
		// Repeated questions skip the embedding round-trip
		queryCache: gocache.New(10*time.Minute, 30*time.Minute),
		logger:     logger,
	}
}

// Retrieve embeds the query and returns up to cfg.TopK results ordered by
// descending similarity. Fewer than TopK stored chunks is not an error;
// the result is simply shorter.
func (r *Retriever) Retrieve(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	query string,
	cfg Config,
) ([]SearchResult, error) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	vector, err := r.queryVector(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: query embedding failed: %v", ErrGroundingUnavailable, err)
	}

	return r.RetrieveByVector(ctx, uow, vector, cfg)
}

// RetrieveByVector runs the nearest-neighbor query for an already-embedded
// question. Ordering is deterministic for identical inputs: similarity
// descending, ties broken by chunk index ascending.
func (r *Retriever) RetrieveByVector(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	vector []float32,
	cfg Config,
) ([]SearchResult, error) {
	scored, err := uow.DocumentChunkRepository().SearchSimilarWithScore(
		ctx,
		vector,
		cfg.TopK,
		cfg.Filter,
		cfg.Threshold,
	)
	if err != nil {
		r.logger.Printf("[ERROR] Vector search failed: %v", err)
		return nil, fmt.Errorf("%w: vector search failed: %v", ErrGroundingUnavailable, err)
	}

	results := make([]SearchResult, len(scored))
	for i, s := range scored {
		results[i] = SearchResult{
			Chunk:      s.Chunk,
			Similarity: s.Similarity,
		}
	}

	r.logger.Printf("[DEBUG] Retrieved %d/%d chunks", len(results), cfg.TopK)
	return results, nil
}

// queryVector embeds the question in query mode. This is the single
// query-mode call site; ingestion always embeds in document mode.
func (r *Retriever) queryVector(ctx context.Context, query string) ([]float32, error) {
	if cached, ok := r.queryCache.Get(query); ok {
		return cached.([]float32), nil
	}

	vector, err := r.embeddingProvider.Generate(ctx, query, embedding.TaskTypeQuery)
	if err != nil {
		return nil, err
	}

	r.queryCache.Set(query, vector, gocache.DefaultExpiration)
	return vector, nil
}
