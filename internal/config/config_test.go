package config

import (
	"testing"
	"time"
)

func TestLoadEmbeddingDim(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{"unset falls back to the column default", "", 768},
		{"override drives the migration dimension", "1024", 1024},
		{"garbage falls back", "not-a-number", 768},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("EMBEDDING_DIM", tt.value)
			cfg := Load()
			if cfg.Ai.EmbeddingDim != tt.want {
				t.Errorf("EmbeddingDim = %d, want %d", cfg.Ai.EmbeddingDim, tt.want)
			}
		})
	}
}

func TestLoadCorpusDefaults(t *testing.T) {
	for _, key := range []string{"CHUNK_SIZE", "CHUNK_OVERLAP", "RETRIEVAL_TOP_K", "RETRIEVAL_TIMEOUT_MS"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Corpus.ChunkSize != 1500 {
		t.Errorf("ChunkSize = %d, want 1500", cfg.Corpus.ChunkSize)
	}
	if cfg.Corpus.ChunkOverlap != 200 {
		t.Errorf("ChunkOverlap = %d, want 200", cfg.Corpus.ChunkOverlap)
	}
	if cfg.Corpus.RetrievalTopK != 5 {
		t.Errorf("RetrievalTopK = %d, want 5", cfg.Corpus.RetrievalTopK)
	}
	if cfg.Corpus.RetrievalTimeout != 15*time.Second {
		t.Errorf("RetrievalTimeout = %v, want 15s", cfg.Corpus.RetrievalTimeout)
	}
}
