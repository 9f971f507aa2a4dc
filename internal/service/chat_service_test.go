package service

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"doc-assistant-be/internal/config"
	"doc-assistant-be/internal/dto"
	"doc-assistant-be/internal/entity"
	"doc-assistant-be/internal/repository/contract"
	"doc-assistant-be/internal/repository/specification"
	"doc-assistant-be/internal/repository/unitofwork"
	"doc-assistant-be/pkg/embedding"
	"doc-assistant-be/pkg/llm"
	"doc-assistant-be/pkg/rag/contextbuilder"
	"doc-assistant-be/pkg/rag/retrieve"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Test doubles ---

type fakeEmbedder struct {
	taskTypes []string
	err       error
}

func (f *fakeEmbedder) Generate(ctx context.Context, text string, taskType string) ([]float32, error) {
	f.taskTypes = append(f.taskTypes, taskType)
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.5, 0.5}, nil
}

func (f *fakeEmbedder) GenerateBatch(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := f.Generate(ctx, text, taskType)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

type fakeChunkRepo struct {
	scored    []*contract.ScoredChunk
	searchErr error
	lastLimit int

	deleted []string
	upserts [][]*entity.DocumentChunk
	storeErr error

	chunks    []*entity.DocumentChunk
	findSpecs []specification.Specification
}

func (f *fakeChunkRepo) UpsertBulk(ctx context.Context, chunks []*entity.DocumentChunk) error {
	if f.storeErr != nil {
		return f.storeErr
	}
	f.upserts = append(f.upserts, chunks)
	return nil
}

func (f *fakeChunkRepo) DeleteBySourcePath(ctx context.Context, sourcePath string) error {
	f.deleted = append(f.deleted, sourcePath)
	return nil
}

func (f *fakeChunkRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error) {
	f.findSpecs = specs
	return f.chunks, nil
}

func (f *fakeChunkRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}

func (f *fakeChunkRepo) SearchSimilarWithScore(ctx context.Context, emb []float32, limit int, filter contract.SearchFilter, threshold float64) ([]*contract.ScoredChunk, error) {
	f.lastLimit = limit
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.scored, nil
}

type fakeUow struct {
	repo      *fakeChunkRepo
	begun     int
	committed int
	rolledBck int
	beginErr  error
	commitErr error
}

func (f *fakeUow) Begin(ctx context.Context) error {
	f.begun++
	return f.beginErr
}

func (f *fakeUow) Commit() error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.committed++
	return nil
}

func (f *fakeUow) Rollback() error {
	f.rolledBck++
	return nil
}

func (f *fakeUow) DocumentChunkRepository() contract.DocumentChunkRepository {
	return f.repo
}

type fakeUowFactory struct {
	uow *fakeUow
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type fakeLLM struct {
	answer    string
	err       error
	histories [][]llm.Message
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.histories = append(f.histories, history)
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

// --- Fixtures ---

func testCorpusConfig() config.CorpusConfig {
	return config.CorpusConfig{
		RetrievalTopK:      5,
		RetrievalThreshold: 0.0,
	}
}

func scoredChunks() []*contract.ScoredChunk {
	return []*contract.ScoredChunk{
		{
			Chunk: &entity.DocumentChunk{
				Id:         "guide_closures_chunk_0",
				SourcePath: "guide/closures.md",
				Title:      "Closures",
				Slug:       "Web/JavaScript/Closures",
				Heading:    "Lexical scoping",
				StartLine:  12,
				EndLine:    30,
				Content:    "A closure is a function bundled with its lexical environment.",
			},
			Similarity: 0.9,
		},
	}
}

func newChatFixture(repo *fakeChunkRepo, model *fakeLLM) IChatService {
	embedder := &fakeEmbedder{}
	retriever := retrieve.NewRetriever(embedder, log.New(io.Discard, "", 0))
	assembler := contextbuilder.NewAssembler("")
	factory := &fakeUowFactory{uow: &fakeUow{repo: repo}}
	return NewChatService(factory, retriever, assembler, model, testCorpusConfig())
}

// --- Tests ---

func TestAskGroundedAnswer(t *testing.T) {
	model := &fakeLLM{answer: "Closures capture their defining scope [1]."}
	svc := newChatFixture(&fakeChunkRepo{scored: scoredChunks()}, model)

	res, err := svc.Ask(context.Background(), &dto.AskRequest{Question: "What is a closure?"})
	require.NoError(t, err)

	assert.True(t, res.Grounded)
	assert.Equal(t, model.answer, res.Answer)
	require.Len(t, res.Citations, 1)
	assert.Equal(t, 1, res.Citations[0].Index)
	assert.Equal(t, "guide/closures.md:12", res.Citations[0].Locator)

	require.Len(t, model.histories, 1)
	history := model.histories[0]
	require.Len(t, history, 2)
	assert.Equal(t, "system", history[0].Role)
	assert.Contains(t, history[1].Content, "<reference_material>")
	assert.Contains(t, history[1].Content, "What is a closure?")
	assert.Contains(t, history[1].Content, "A closure is a function bundled")
}

func TestAskDeclinesWithoutModelCall(t *testing.T) {
	model := &fakeLLM{answer: "should never be used"}
	svc := newChatFixture(&fakeChunkRepo{}, model)

	res, err := svc.Ask(context.Background(), &dto.AskRequest{Question: "Something unrelated"})
	require.NoError(t, err)

	assert.False(t, res.Grounded)
	assert.Equal(t, DeclineAnswer, res.Answer)
	assert.Empty(t, res.Citations)
	assert.Empty(t, model.histories, "model must not be called when retrieval is empty")
}

func TestAskRetrievalFailurePropagates(t *testing.T) {
	model := &fakeLLM{}
	svc := newChatFixture(&fakeChunkRepo{searchErr: errors.New("connection refused")}, model)

	_, err := svc.Ask(context.Background(), &dto.AskRequest{Question: "anything"})
	assert.ErrorIs(t, err, retrieve.ErrGroundingUnavailable)
	assert.Empty(t, model.histories)
}

func TestAskEmbedsQuestionInQueryMode(t *testing.T) {
	embedder := &fakeEmbedder{}
	retriever := retrieve.NewRetriever(embedder, log.New(io.Discard, "", 0))
	factory := &fakeUowFactory{uow: &fakeUow{repo: &fakeChunkRepo{scored: scoredChunks()}}}
	svc := NewChatService(factory, retriever, contextbuilder.NewAssembler(""), &fakeLLM{answer: "ok"}, testCorpusConfig())

	_, err := svc.Ask(context.Background(), &dto.AskRequest{Question: "query mode check"})
	require.NoError(t, err)

	require.Len(t, embedder.taskTypes, 1)
	assert.Equal(t, embedding.TaskTypeQuery, embedder.taskTypes[0])
}

func TestAskTopKOverride(t *testing.T) {
	repo := &fakeChunkRepo{scored: scoredChunks()}
	svc := newChatFixture(repo, &fakeLLM{answer: "ok"})

	_, err := svc.Ask(context.Background(), &dto.AskRequest{Question: "default top-k"})
	require.NoError(t, err)
	assert.Equal(t, 5, repo.lastLimit)

	_, err = svc.Ask(context.Background(), &dto.AskRequest{Question: "custom top-k", TopK: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, repo.lastLimit)
}

func TestSearchMapsResults(t *testing.T) {
	svc := newChatFixture(&fakeChunkRepo{scored: scoredChunks()}, &fakeLLM{})

	res, err := svc.Search(context.Background(), "closures", 0)
	require.NoError(t, err)

	assert.Equal(t, "closures", res.Query)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "guide_closures_chunk_0", res.Results[0].ChunkId)
	assert.Equal(t, "Lexical scoping", res.Results[0].Heading)
	assert.Equal(t, 0.9, res.Results[0].Similarity)
}
