package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type DocumentChunk struct {
	Id           string `gorm:"primaryKey"` // deterministic: slug(source_path)_chunk_<index>
	SourcePath   string `gorm:"index;not null"`
	Title        string
	Slug         string
	PageType     string `gorm:"index"`
	Heading      string
	HeadingLevel int
	ChunkIndex   int `gorm:"index"`
	StartLine    int
	EndLine      int
	CharCount    int
	WordCount    int
	Content      string            `gorm:"type:text"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb"`
	Embedding    *pgvector.Vector  `gorm:"type:vector(768)"` // null while pending; cmd/migrate retypes to EMBEDDING_DIM
	CreatedAt    time.Time         `gorm:"autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"autoUpdateTime"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}
