package mapper

import (
	"time"

	"doc-assistant-be/internal/entity"
	"doc-assistant-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type DocumentChunkMapper struct{}

func NewDocumentChunkMapper() *DocumentChunkMapper {
	return &DocumentChunkMapper{}
}

func (m *DocumentChunkMapper) ToEntity(c *model.DocumentChunk) *entity.DocumentChunk {
	if c == nil {
		return nil
	}

	var embedding []float32
	if c.Embedding != nil {
		embedding = c.Embedding.Slice()
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.DocumentChunk{
		Id:           c.Id,
		SourcePath:   c.SourcePath,
		Title:        c.Title,
		Slug:         c.Slug,
		PageType:     c.PageType,
		Heading:      c.Heading,
		HeadingLevel: c.HeadingLevel,
		ChunkIndex:   c.ChunkIndex,
		StartLine:    c.StartLine,
		EndLine:      c.EndLine,
		CharCount:    c.CharCount,
		WordCount:    c.WordCount,
		Content:      c.Content,
		Metadata:     map[string]interface{}(c.Metadata),
		Embedding:    embedding,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *DocumentChunkMapper) ToModel(c *entity.DocumentChunk) *model.DocumentChunk {
	if c == nil {
		return nil
	}

	var embedding *pgvector.Vector
	if len(c.Embedding) > 0 {
		v := pgvector.NewVector(c.Embedding)
		embedding = &v
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.DocumentChunk{
		Id:           c.Id,
		SourcePath:   c.SourcePath,
		Title:        c.Title,
		Slug:         c.Slug,
		PageType:     c.PageType,
		Heading:      c.Heading,
		HeadingLevel: c.HeadingLevel,
		ChunkIndex:   c.ChunkIndex,
		StartLine:    c.StartLine,
		EndLine:      c.EndLine,
		CharCount:    c.CharCount,
		WordCount:    c.WordCount,
		Content:      c.Content,
		Metadata:     c.Metadata,
		Embedding:    embedding,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *DocumentChunkMapper) ToEntities(chunks []*model.DocumentChunk) []*entity.DocumentChunk {
	entities := make([]*entity.DocumentChunk, len(chunks))
	for i, c := range chunks {
		entities[i] = m.ToEntity(c)
	}
	return entities
}

func (m *DocumentChunkMapper) ToModels(chunks []*entity.DocumentChunk) []*model.DocumentChunk {
	models := make([]*model.DocumentChunk, len(chunks))
	for i, c := range chunks {
		models[i] = m.ToModel(c)
	}
	return models
}
