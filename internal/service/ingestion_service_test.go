package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"doc-assistant-be/internal/config"
	"doc-assistant-be/internal/entity"
	"doc-assistant-be/internal/repository/specification"
	"doc-assistant-be/pkg/embedding"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

const functionsPage = `---
title: Functions
slug: Web/JavaScript/Guide/Functions
page-type: guide
---
# Functions

Functions are one of the fundamental building blocks of JavaScript.
A function is a reusable set of statements that performs a task.
`

func writeDocs(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func newIngestFixture(docsDir string, embedder *fakeEmbedder, uow *fakeUow) IIngestionService {
	batcher := embedding.NewBatcher(embedder, embedding.BatcherConfig{BatchSize: 2})
	cfg := config.CorpusConfig{
		DocsDir:      docsDir,
		ChunkSize:    1500,
		ChunkOverlap: 200,
	}
	return NewIngestionService(&fakeUowFactory{uow: uow}, batcher, nil, noopLogger{}, cfg)
}

func TestIngestDirIndexesMarkdown(t *testing.T) {
	dir := writeDocs(t, map[string]string{
		"guide/functions.md": functionsPage,
		"guide/empty.md":     "   \n\n",
		"README.txt":         "not markdown, must be skipped",
	})

	uow := &fakeUow{repo: &fakeChunkRepo{}}
	svc := newIngestFixture(dir, &fakeEmbedder{}, uow)

	summary, err := svc.IngestDir(context.Background())
	require.NoError(t, err, "an empty document fails alone, it does not abort the run")

	assert.Equal(t, 2, summary.DocsScanned)
	assert.Equal(t, 1, summary.DocsIndexed)
	assert.Equal(t, 1, summary.DocsFailed)
	assert.Equal(t, 1, summary.ChunksWritten)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, "guide/empty.md", summary.Errors[0].Path)

	assert.Equal(t, []string{"guide/functions.md"}, uow.repo.deleted)
	assert.Equal(t, 1, uow.committed)

	require.Len(t, uow.repo.upserts, 1)
	for _, chunk := range uow.repo.upserts[0] {
		assert.Equal(t, "guide/functions.md", chunk.SourcePath)
		assert.Equal(t, "Functions", chunk.Title)
		assert.Equal(t, "Web/JavaScript/Guide/Functions", chunk.Slug)
		assert.Equal(t, "guide", chunk.PageType)
		assert.True(t, strings.HasPrefix(chunk.Id, "guide_functions_chunk_"))
		assert.NotNil(t, chunk.Embedding, "chunks must be stored embedded")
	}
}

func TestIngestDirEmbedsInDocumentMode(t *testing.T) {
	dir := writeDocs(t, map[string]string{"guide/functions.md": functionsPage})

	embedder := &fakeEmbedder{}
	svc := newIngestFixture(dir, embedder, &fakeUow{repo: &fakeChunkRepo{}})

	_, err := svc.IngestDir(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, embedder.taskTypes)
	for _, taskType := range embedder.taskTypes {
		assert.Equal(t, embedding.TaskTypeDocument, taskType)
	}
}

func TestIngestDirAbortsOnEmbeddingFailure(t *testing.T) {
	dir := writeDocs(t, map[string]string{
		"a.md": functionsPage,
		"b.md": functionsPage,
	})

	uow := &fakeUow{repo: &fakeChunkRepo{}}
	svc := newIngestFixture(dir, &fakeEmbedder{err: errors.New("quota exhausted")}, uow)

	summary, err := svc.IngestDir(context.Background())
	require.ErrorIs(t, err, ErrIngestAborted)

	assert.Equal(t, 0, summary.DocsIndexed)
	assert.Equal(t, 1, summary.DocsFailed, "run stops at the first embedding failure")
	assert.Zero(t, uow.begun, "nothing must be written after an embedding failure")
	assert.Empty(t, uow.repo.upserts)
}

func TestIngestFileStoreFailureRollsBack(t *testing.T) {
	dir := writeDocs(t, map[string]string{"guide/functions.md": functionsPage})

	uow := &fakeUow{repo: &fakeChunkRepo{storeErr: errors.New("disk full")}}
	svc := newIngestFixture(dir, &fakeEmbedder{}, uow)

	summary, err := svc.IngestFile(context.Background(), "guide/functions.md")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrIngestAborted, "store failures are per-document, not run-fatal")

	assert.Equal(t, 1, summary.DocsFailed)
	assert.Zero(t, uow.committed)
	assert.GreaterOrEqual(t, uow.rolledBck, 1)
}

func TestDocumentListsChunksInOrder(t *testing.T) {
	repo := &fakeChunkRepo{chunks: []*entity.DocumentChunk{
		{Id: "guide_functions_chunk_0", ChunkIndex: 0, Heading: "Functions", StartLine: 6, EndLine: 9, Embedding: []float32{0.1}},
		{Id: "guide_functions_chunk_1", ChunkIndex: 1, Heading: "Defining functions", StartLine: 8, EndLine: 12},
	}}
	svc := newIngestFixture(t.TempDir(), &fakeEmbedder{}, &fakeUow{repo: repo})

	res, err := svc.Document(context.Background(), "guide/functions.md")
	require.NoError(t, err)

	assert.Equal(t, "guide/functions.md", res.SourcePath)
	require.Len(t, res.Chunks, 2)
	assert.Equal(t, "guide_functions_chunk_0", res.Chunks[0].Id)
	assert.True(t, res.Chunks[0].Embedded)
	assert.False(t, res.Chunks[1].Embedded, "a chunk without a vector must report as pending")

	require.Len(t, repo.findSpecs, 2)
	assert.Equal(t, specification.BySourcePath{SourcePath: "guide/functions.md"}, repo.findSpecs[0])
	assert.Equal(t, specification.OrderBy{Field: "chunk_index"}, repo.findSpecs[1])
}

func TestIngestFileSingleDocument(t *testing.T) {
	dir := writeDocs(t, map[string]string{"guide/functions.md": functionsPage})

	uow := &fakeUow{repo: &fakeChunkRepo{}}
	svc := newIngestFixture(dir, &fakeEmbedder{}, uow)

	summary, err := svc.IngestFile(context.Background(), "guide/functions.md")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.DocsScanned)
	assert.Equal(t, 1, summary.DocsIndexed)
	assert.Equal(t, 1, summary.ChunksWritten)
}
