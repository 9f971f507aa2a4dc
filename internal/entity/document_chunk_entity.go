package entity

import "time"

// DocumentChunk is the atomic retrieval unit of the documentation corpus.
// StartLine/EndLine are 1-indexed, inclusive, relative to the original
// file including front matter. Embedding is nil while the chunk is
// pending; pending chunks are valid but never retrievable.
type DocumentChunk struct {
	Id           string
	SourcePath   string
	Title        string
	Slug         string
	PageType     string
	Heading      string
	HeadingLevel int
	ChunkIndex   int
	StartLine    int
	EndLine      int
	CharCount    int
	WordCount    int
	Content      string
	Metadata     map[string]interface{}
	Embedding    []float32
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}
