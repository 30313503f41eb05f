package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Vector store backends
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

type Config struct {
	App       AppConfig
	Index     IndexConfig
	Retrieval RetrievalConfig
	Embedding EmbeddingConfig
	LLM       LLMConfig
	Tracing   TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
}

type IndexConfig struct {
	PDFDir         string
	ChunkSize      int
	ChunkOverlap   int
	Store          string // "sqlite" or "postgres"
	Path           string
	CollectionName string
	DatabaseURL    string
}

type RetrievalConfig struct {
	TopK              int
	DistanceThreshold float64
	ContextResults    int
}

type EmbeddingConfig struct {
	OllamaHost    string
	Model         string
	Dimension     int
	BatchSize     int
	MaxConcurrent int
	CacheTTL      time.Duration
}

type LLMConfig struct {
	Provider    string // "ollama", "openai" or "perplexity"
	Model       string
	APIKey      string
	BaseURL     string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
}

type TracingConfig struct {
	Enabled  bool
	Endpoint string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", ""),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Index: IndexConfig{
			PDFDir:         getEnv("PDF_DIR", "data/pdfs"),
			ChunkSize:      getEnvAsInt("CHUNK_SIZE", 512),
			ChunkOverlap:   getEnvAsInt("CHUNK_OVERLAP", 100),
			Store:          getEnv("VECTOR_STORE", StoreSQLite),
			Path:           getEnv("INDEX_PATH", "data/index"),
			CollectionName: getEnv("COLLECTION_NAME", "lectures"),
			DatabaseURL:    getEnv("DATABASE_URL", ""),
		},
		Retrieval: RetrievalConfig{
			TopK:              getEnvAsInt("RETRIEVAL_TOP_K", 5),
			DistanceThreshold: getEnvAsFloat("RETRIEVAL_DISTANCE_THRESHOLD", 0.7),
			ContextResults:    getEnvAsInt("CONTEXT_RESULTS", 3),
		},
		Embedding: EmbeddingConfig{
			OllamaHost:    getEnv("OLLAMA_HOST", ""),
			Model:         getEnv("EMBEDDING_MODEL", "bge-m3"),
			Dimension:     getEnvAsInt("EMBEDDING_DIMENSION", 1024),
			BatchSize:     getEnvAsInt("EMBEDDING_BATCH_SIZE", 32),
			MaxConcurrent: getEnvAsInt("EMBEDDING_MAX_CONCURRENT", 2),
			CacheTTL:      getEnvAsDuration("EMBEDDING_CACHE_TTL", time.Hour),
		},
		LLM: LLMConfig{
			Provider:    getEnv("LLM_PROVIDER", "ollama"),
			Model:       getEnv("LLM_MODEL", "qwen2.5:7b"),
			APIKey:      getEnv("LLM_API_KEY", ""),
			BaseURL:     getEnv("LLM_BASE_URL", ""),
			Timeout:     getEnvAsDuration("LLM_TIMEOUT", 30*time.Second),
			Temperature: getEnvAsFloat("LLM_TEMPERATURE", 0.7),
			MaxTokens:   getEnvAsInt("LLM_MAX_TOKENS", 2000),
		},
		Tracing: TracingConfig{
			Enabled:  getEnv("OTEL_ENABLED", "false") == "true",
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}
}

// IsProduction reports whether GO_ENV is production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Validate rejects settings the pipeline cannot run with
func (c *Config) Validate() error {
	var errs []error

	if c.Index.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.Index.ChunkSize))
	}
	if c.Index.ChunkOverlap < 0 {
		errs = append(errs, fmt.Errorf("CHUNK_OVERLAP must not be negative, got %d", c.Index.ChunkOverlap))
	}
	if c.Retrieval.TopK <= 0 {
		errs = append(errs, fmt.Errorf("RETRIEVAL_TOP_K must be positive, got %d", c.Retrieval.TopK))
	}
	if c.Retrieval.ContextResults <= 0 {
		errs = append(errs, fmt.Errorf("CONTEXT_RESULTS must be positive, got %d", c.Retrieval.ContextResults))
	}

	switch c.Index.Store {
	case StoreSQLite:
	case StorePostgres:
		if c.Index.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres store"))
		}
		if c.Embedding.Dimension <= 0 {
			errs = append(errs, fmt.Errorf("EMBEDDING_DIMENSION must be positive, got %d", c.Embedding.Dimension))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown VECTOR_STORE %q", c.Index.Store))
	}

	switch c.LLM.Provider {
	case "ollama":
	case "openai", "perplexity":
		if c.LLM.APIKey == "" {
			errs = append(errs, fmt.Errorf("LLM_API_KEY is required for the %s provider", c.LLM.Provider))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown LLM_PROVIDER %q", c.LLM.Provider))
	}

	return errors.Join(errs...)
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

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
