package service

import (
	"context"
	"time"

	"doc-assistant-be/internal/config"
	"doc-assistant-be/internal/dto"
	"doc-assistant-be/internal/repository/contract"
	"doc-assistant-be/internal/repository/unitofwork"
	"doc-assistant-be/pkg/llm"
	"doc-assistant-be/pkg/rag/contextbuilder"
	"doc-assistant-be/pkg/rag/prompt"
	"doc-assistant-be/pkg/rag/retrieve"
)

// DeclineAnswer is returned verbatim when retrieval comes back empty. The
// model is never called in that case, so it cannot improvise an answer.
const DeclineAnswer = "I could not find anything in the documentation about that. Try rephrasing the question or asking about a different topic."

// generateTimeout bounds the LLM call, not retrieval (which has its own).
const generateTimeout = 60 * time.Second

type IChatService interface {
	Ask(ctx context.Context, req *dto.AskRequest) (*dto.AskResponse, error)
	Search(ctx context.Context, query string, topK int) (*dto.SearchResponse, error)
}

type chatService struct {
	uowFactory  unitofwork.RepositoryFactory
	retriever   *retrieve.Retriever
	assembler   *contextbuilder.Assembler
	llmProvider llm.LLMProvider
	corpusCfg   config.CorpusConfig
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	retriever *retrieve.Retriever,
	assembler *contextbuilder.Assembler,
	llmProvider llm.LLMProvider,
	corpusCfg config.CorpusConfig,
) IChatService {
	return &chatService{
		uowFactory:  uowFactory,
		retriever:   retriever,
		assembler:   assembler,
		llmProvider: llmProvider,
		corpusCfg:   corpusCfg,
	}
}

func (s *chatService) Ask(ctx context.Context, req *dto.AskRequest) (*dto.AskResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	cfg := s.retrievalConfig(req.TopK)
	cfg.Filter = contract.SearchFilter{
		SourcePath: req.SourcePath,
		PageType:   req.PageType,
	}

	results, err := s.retriever.Retrieve(ctx, uow, req.Question, cfg)
	if err != nil {
		return nil, err
	}

	assembled := s.assembler.Assemble(results)
	if len(assembled.Citations) == 0 {
		return &dto.AskResponse{
			Answer:    DeclineAnswer,
			Citations: []dto.CitationDTO{},
			Grounded:  false,
		}, nil
	}

	userPrompt := prompt.NewBuilder(assembled.ContextText, req.Question).Build()

	genCtx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	answer, err := s.llmProvider.Chat(genCtx, []llm.Message{
		{Role: "system", Content: prompt.SystemPrompt},
		{Role: "user", Content: userPrompt},
	}, llm.WithTemperature(0.2))
	if err != nil {
		return nil, err
	}

	return &dto.AskResponse{
		Answer:    answer,
		Citations: toCitationDTOs(assembled.Citations),
		Grounded:  true,
	}, nil
}

func (s *chatService) Search(ctx context.Context, query string, topK int) (*dto.SearchResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	results, err := s.retriever.Retrieve(ctx, uow, query, s.retrievalConfig(topK))
	if err != nil {
		return nil, err
	}

	out := make([]*dto.SearchResultDTO, len(results))
	for i, res := range results {
		out[i] = &dto.SearchResultDTO{
			ChunkId:    res.Chunk.Id,
			SourcePath: res.Chunk.SourcePath,
			Title:      res.Chunk.Title,
			Heading:    res.Chunk.Heading,
			StartLine:  res.Chunk.StartLine,
			EndLine:    res.Chunk.EndLine,
			Content:    res.Chunk.Content,
			Similarity: res.Similarity,
		}
	}

	return &dto.SearchResponse{
		Query:   query,
		Results: out,
	}, nil
}

func (s *chatService) retrievalConfig(topK int) retrieve.Config {
	cfg := retrieve.Config{
		TopK:      s.corpusCfg.RetrievalTopK,
		Threshold: s.corpusCfg.RetrievalThreshold,
		Timeout:   s.corpusCfg.RetrievalTimeout,
	}
	if topK > 0 {
		cfg.TopK = topK
	}
	return cfg
}

func toCitationDTOs(citations []contextbuilder.Citation) []dto.CitationDTO {
	out := make([]dto.CitationDTO, len(citations))
	for i, c := range citations {
		out[i] = dto.CitationDTO{
			Index:   c.Index,
			Title:   c.Title,
			Locator: c.Locator,
			Excerpt: c.Excerpt,
		}
	}
	return out
}
