package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"

	"doc-assistant-be/internal/bootstrap"
	"doc-assistant-be/internal/config"
	"doc-assistant-be/internal/dto"
	"doc-assistant-be/internal/service"
	"doc-assistant-be/pkg/database"

	"github.com/fatih/color"
)

func main() {
	docsDir := flag.String("docs", "", "docs directory (overrides DOCS_DIR)")
	singlePath := flag.String("path", "", "reindex a single document (relative to docs dir)")
	flag.Parse()

	cfg := config.Load()
	if *docsDir != "" {
		cfg.Corpus.DocsDir = *docsDir
	}

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)
	ctx := context.Background()

	var summary *dto.IngestSummary
	if *singlePath != "" {
		summary, err = container.IngestionService.IngestFile(ctx, *singlePath)
	} else {
		summary, err = container.IngestionService.IngestDir(ctx)
	}

	printSummary(summary)

	if err != nil {
		if errors.Is(err, service.ErrIngestAborted) {
			color.Red("Run aborted: %v", err)
		} else {
			color.Red("Run failed: %v", err)
		}
		os.Exit(1)
	}
	if summary.ChunksWritten == 0 {
		color.Red("No chunks written. Check the docs directory: %s", cfg.Corpus.DocsDir)
		os.Exit(1)
	}

	color.Green("Done.")
}

func printSummary(summary *dto.IngestSummary) {
	if summary == nil {
		return
	}

	color.Cyan("=== Ingestion Summary ===")
	color.White("Docs scanned:   %d", summary.DocsScanned)
	color.Green("Docs indexed:   %d", summary.DocsIndexed)
	color.Green("Chunks written: %d", summary.ChunksWritten)
	if summary.DocsFailed > 0 {
		color.Yellow("Docs failed:    %d", summary.DocsFailed)
		for _, e := range summary.Errors {
			color.Yellow("  %s: %s", e.Path, e.Reason)
		}
	}
}
