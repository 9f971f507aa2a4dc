package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Corpus   CorpusConfig
	Ai       AIConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ServiceName        string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
}

type DatabaseConfig struct {
	Connection string
}

// CorpusConfig controls ingestion and retrieval behaviour.
type CorpusConfig struct {
	DocsDir            string
	DocsBaseURL        string
	ChunkSize          int
	ChunkOverlap       int
	EmbedBatchSize     int
	EmbedBatchDelay    time.Duration
	RetrievalTopK      int
	RetrievalThreshold float64
	RetrievalTimeout   time.Duration
}

type AIConfig struct {
	EmbeddingProvider string // "gemini", "ollama" or "fixture"
	EmbeddingDim      int    // must match the embedding column; cmd/migrate applies it
	GeminiAPIKey      string
	GeminiModel       string
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "ollama" or "gemini"
	LLMModel          string // e.g. "llama3", "gemini-2.0-flash"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ServiceName:        getEnv("OTEL_SERVICE_NAME", "doc-assistant-backend"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Corpus: CorpusConfig{
			DocsDir:            getEnv("DOCS_DIR", "./docs"),
			DocsBaseURL:        getEnv("DOCS_BASE_URL", "https://developer.mozilla.org/en-US/docs/"),
			ChunkSize:          getEnvAsInt("CHUNK_SIZE", 1500),
			ChunkOverlap:       getEnvAsInt("CHUNK_OVERLAP", 200),
			EmbedBatchSize:     getEnvAsInt("EMBED_BATCH_SIZE", 50),
			EmbedBatchDelay:    time.Duration(getEnvAsInt("EMBED_BATCH_DELAY_MS", 200)) * time.Millisecond,
			RetrievalTopK:      getEnvAsInt("RETRIEVAL_TOP_K", 5),
			RetrievalThreshold: getEnvAsFloat("RETRIEVAL_THRESHOLD", 0.0),
			RetrievalTimeout:   time.Duration(getEnvAsInt("RETRIEVAL_TIMEOUT_MS", 15000)) * time.Millisecond,
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			EmbeddingDim:      getEnvAsInt("EMBEDDING_DIM", 768),
			GeminiAPIKey:      getEnv("GOOGLE_GEMINI_API_KEY", ""),
			GeminiModel:       getEnv("GEMINI_EMBEDDING_MODEL", "text-embedding-004"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
