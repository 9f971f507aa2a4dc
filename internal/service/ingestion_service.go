package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"doc-assistant-be/internal/config"
	"doc-assistant-be/internal/dto"
	"doc-assistant-be/internal/entity"
	"doc-assistant-be/internal/pkg/logger"
	"doc-assistant-be/internal/repository/specification"
	"doc-assistant-be/internal/repository/unitofwork"
	"doc-assistant-be/pkg/embedding"
	"doc-assistant-be/pkg/events"
	"doc-assistant-be/pkg/ingest"

	pktNats "doc-assistant-be/pkg/nats"
)

// ErrIngestAborted marks a run stopped by an embedding backend failure.
// Store failures do not abort the run; they fail the single document.
var ErrIngestAborted = errors.New("ingestion aborted")

// maxReportedErrors caps the error list carried in a summary.
const maxReportedErrors = 20

// storeBatchSize is how many chunk rows go into one insert statement.
const storeBatchSize = 100

type IIngestionService interface {
	// IngestDir walks the docs directory and (re)indexes every markdown
	// file. Returns the run summary even when the run aborts.
	IngestDir(ctx context.Context) (*dto.IngestSummary, error)

	// IngestFile (re)indexes a single document, identified by its path
	// relative to the docs directory.
	IngestFile(ctx context.Context, relPath string) (*dto.IngestSummary, error)

	Stats(ctx context.Context) (*dto.CorpusStatsResponse, error)

	// Document lists the indexed chunks of one document, in chunk order.
	// An empty list means the document has never been ingested.
	Document(ctx context.Context, sourcePath string) (*dto.DocumentChunksResponse, error)
}

type ingestionService struct {
	uowFactory     unitofwork.RepositoryFactory
	batcher        *embedding.Batcher
	eventPublisher *pktNats.Publisher
	sysLogger      logger.ILogger
	corpusCfg      config.CorpusConfig
}

func NewIngestionService(
	uowFactory unitofwork.RepositoryFactory,
	batcher *embedding.Batcher,
	eventPublisher *pktNats.Publisher,
	sysLogger logger.ILogger,
	corpusCfg config.CorpusConfig,
) IIngestionService {
	return &ingestionService{
		uowFactory:     uowFactory,
		batcher:        batcher,
		eventPublisher: eventPublisher,
		sysLogger:      sysLogger,
		corpusCfg:      corpusCfg,
	}
}

func (s *ingestionService) IngestDir(ctx context.Context) (*dto.IngestSummary, error) {
	paths, err := s.collectMarkdownFiles()
	if err != nil {
		return nil, fmt.Errorf("scan docs dir %s: %w", s.corpusCfg.DocsDir, err)
	}

	summary := &dto.IngestSummary{DocsScanned: len(paths)}
	s.sysLogger.Info("ingestion", "Starting corpus run", map[string]interface{}{
		"docs_dir": s.corpusCfg.DocsDir,
		"docs":     len(paths),
	})

	for _, relPath := range paths {
		written, err := s.ingestOne(ctx, relPath)
		if err != nil {
			s.recordFailure(summary, relPath, err)
			if errors.Is(err, ErrIngestAborted) {
				// Embedding backend is down or rejecting us. Finishing the
				// walk would just repeat the failure per document.
				s.publishCompleted(ctx, summary)
				return summary, err
			}
			continue
		}
		summary.DocsIndexed++
		summary.ChunksWritten += written
	}

	s.sysLogger.Info("ingestion", "Corpus run finished", map[string]interface{}{
		"docs_indexed":   summary.DocsIndexed,
		"docs_failed":    summary.DocsFailed,
		"chunks_written": summary.ChunksWritten,
	})
	s.publishCompleted(ctx, summary)
	return summary, nil
}

func (s *ingestionService) IngestFile(ctx context.Context, relPath string) (*dto.IngestSummary, error) {
	summary := &dto.IngestSummary{DocsScanned: 1}

	written, err := s.ingestOne(ctx, relPath)
	if err != nil {
		s.recordFailure(summary, relPath, err)
		return summary, err
	}

	summary.DocsIndexed = 1
	summary.ChunksWritten = written
	return summary, nil
}

func (s *ingestionService) Stats(ctx context.Context) (*dto.CorpusStatsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	total, err := uow.DocumentChunkRepository().Count(ctx)
	if err != nil {
		return nil, err
	}
	embedded, err := uow.DocumentChunkRepository().Count(ctx, specification.Embedded{})
	if err != nil {
		return nil, err
	}

	return &dto.CorpusStatsResponse{
		TotalChunks:    total,
		EmbeddedChunks: embedded,
	}, nil
}

func (s *ingestionService) Document(ctx context.Context, sourcePath string) (*dto.DocumentChunksResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	chunks, err := uow.DocumentChunkRepository().FindAll(ctx,
		specification.BySourcePath{SourcePath: sourcePath},
		specification.OrderBy{Field: "chunk_index"},
	)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.ChunkDTO, len(chunks))
	for i, c := range chunks {
		out[i] = &dto.ChunkDTO{
			Id:         c.Id,
			ChunkIndex: c.ChunkIndex,
			Heading:    c.Heading,
			StartLine:  c.StartLine,
			EndLine:    c.EndLine,
			CharCount:  c.CharCount,
			WordCount:  c.WordCount,
			Embedded:   c.Embedding != nil,
		}
	}

	return &dto.DocumentChunksResponse{
		SourcePath: sourcePath,
		Chunks:     out,
	}, nil
}

// ingestOne runs the full pipeline for a single document and returns the
// number of chunks written. The replace (delete + upsert) happens in one
// transaction, so a store failure leaves the previous version intact.
func (s *ingestionService) ingestOne(ctx context.Context, relPath string) (int, error) {
	raw, err := os.ReadFile(filepath.Join(s.corpusCfg.DocsDir, relPath))
	if err != nil {
		return 0, fmt.Errorf("read: %w", err)
	}

	norm := ingest.Normalize(string(raw))
	doc := s.buildDocument(relPath, norm)

	splitCfg := ingest.SplitConfig{
		TargetSize: s.corpusCfg.ChunkSize,
		Overlap:    s.corpusCfg.ChunkOverlap,
	}
	chunks, err := ingest.BuildChunks(doc, norm.Body, norm.LineOffset, splitCfg)
	if err != nil {
		return 0, fmt.Errorf("chunk: %w", err)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := s.batcher.EmbedAll(ctx, texts, embedding.TaskTypeDocument)
	if err != nil {
		return 0, fmt.Errorf("%w: embed %s: %v", ErrIngestAborted, relPath, err)
	}

	now := time.Now()
	records := make([]*entity.DocumentChunk, len(chunks))
	for i, c := range chunks {
		records[i] = &entity.DocumentChunk{
			Id:           c.ID,
			SourcePath:   doc.SourcePath,
			Title:        doc.Title,
			Slug:         doc.Slug,
			PageType:     doc.PageType,
			Heading:      c.Heading,
			HeadingLevel: c.HeadingLevel,
			ChunkIndex:   c.ChunkIndex,
			StartLine:    c.StartLine,
			EndLine:      c.EndLine,
			CharCount:    c.CharCount,
			WordCount:    c.WordCount,
			Content:      c.Text,
			Metadata:     doc.Metadata,
			Embedding:    vectors[i],
			CreatedAt:    now,
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer uow.Rollback()

	if err := uow.DocumentChunkRepository().DeleteBySourcePath(ctx, doc.SourcePath); err != nil {
		return 0, fmt.Errorf("delete stale chunks: %w", err)
	}

	for start := 0; start < len(records); start += storeBatchSize {
		end := start + storeBatchSize
		if end > len(records) {
			end = len(records)
		}
		if err := uow.DocumentChunkRepository().UpsertBulk(ctx, records[start:end]); err != nil {
			return 0, fmt.Errorf("upsert chunks %d-%d: %w", start, end, err)
		}
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	s.sysLogger.Debug("ingestion", "Document indexed", map[string]interface{}{
		"path":   relPath,
		"chunks": len(records),
	})
	return len(records), nil
}

func (s *ingestionService) buildDocument(relPath string, norm ingest.Normalized) ingest.Document {
	sourcePath := filepath.ToSlash(relPath)

	title := norm.MetaString("title")
	if title == "" {
		base := filepath.Base(sourcePath)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	slug := norm.MetaString("slug")
	if slug == "" {
		slug = strings.TrimSuffix(sourcePath, filepath.Ext(sourcePath))
		slug = strings.TrimSuffix(slug, "/index")
	}

	return ingest.Document{
		SourcePath: sourcePath,
		Title:      title,
		Slug:       slug,
		PageType:   norm.MetaString("page-type"),
		Metadata:   norm.Metadata,
	}
}

func (s *ingestionService) collectMarkdownFiles() ([]string, error) {
	var paths []string
	root := s.corpusCfg.DocsDir

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(d.Name()), ".md") {
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				return relErr
			}
			paths = append(paths, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

func (s *ingestionService) recordFailure(summary *dto.IngestSummary, relPath string, err error) {
	summary.DocsFailed++
	if len(summary.Errors) < maxReportedErrors {
		summary.Errors = append(summary.Errors, dto.IngestErrorDTO{
			Path:   relPath,
			Reason: err.Error(),
		})
	}
	s.sysLogger.Error("ingestion", "Document failed", map[string]interface{}{
		"path":  relPath,
		"error": err.Error(),
	})
}

func (s *ingestionService) publishCompleted(ctx context.Context, summary *dto.IngestSummary) {
	if s.eventPublisher == nil {
		return
	}
	evt := events.IngestCompletedEvent(summary.DocsIndexed, summary.ChunksWritten, summary.DocsFailed)
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.sysLogger.Warn("ingestion", "Failed to publish INGEST_COMPLETED", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
