package main

import (
	"fmt"
	"log"

	"doc-assistant-be/internal/config"
	"doc-assistant-be/internal/model"
	"doc-assistant-be/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting GORM Migration...")

	// 3. Pre-Migration: Extensions (AutoMigrate can't create these)
	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS vector;`,
	}
	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate All Models
	if err := db.AutoMigrate(&model.DocumentChunk{}); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Align the vector column with the configured embedding dimension.
	// The model tag carries the default (768); a provider with a different
	// dimension needs the column retyped before anything is inserted.
	// Fails once rows of another dimension exist, which is the safe outcome.
	alterSQL := fmt.Sprintf(
		`ALTER TABLE document_chunks ALTER COLUMN embedding TYPE vector(%d);`,
		cfg.Ai.EmbeddingDim,
	)
	if err := db.Exec(alterSQL).Error; err != nil {
		log.Fatalf("Error: Failed to set embedding dimension to %d: %v", cfg.Ai.EmbeddingDim, err)
	}

	// 6. Post-Migration: ANN index for cosine search
	postMigrationSQL := []string{
		`CREATE INDEX IF NOT EXISTS idx_document_chunks_embedding
		 ON document_chunks USING hnsw (embedding vector_cosine_ops);`,
		`CREATE INDEX IF NOT EXISTS idx_document_chunks_source_path
		 ON document_chunks (source_path);`,
	}
	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}
