package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	OpenAI    OpenAIConfig
	RAG       RAGConfig
	Resolver  ResolverConfig
	RateLimit RateLimitConfig
	Auth      AuthConfig
	Logger    LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type OpenAIConfig struct {
	APIKey          string
	BaseURL         string
	Model           string
	EmbeddingsModel string
	EmbeddingsDim   int
	Timeout         time.Duration
}

// RAGConfig selects the retrieval backend and its budgets.
// Mode is one of: off, lite, vector.
type RAGConfig struct {
	Mode              string
	TopK              int
	MaxChars          int
	KnowledgeBasePath string
	ChunkSize         int
	ChunkOverlap      int
}

// ResolverConfig selects the intent resolution mode: pre_ai, llm or hybrid.
type ResolverConfig struct {
	Mode string
}

type RateLimitConfig struct {
	Limit  int
	Window time.Duration
}

// AuthConfig controls inbound authentication. Mode is "off" or "api_key".
type AuthConfig struct {
	Mode       string
	HeaderName string
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	openaiTimeout, _ := strconv.Atoi(getEnv("OPENAI_TIMEOUT_SECONDS", "30"))
	embeddingsDim, _ := strconv.Atoi(getEnv("OPENAI_EMBEDDINGS_DIM", "1536"))
	ragTopK, _ := strconv.Atoi(getEnv("RAG_TOP_K", "5"))
	ragMaxChars, _ := strconv.Atoi(getEnv("RAG_MAX_CHARS", "6000"))
	chunkSize, _ := strconv.Atoi(getEnv("KB_CHUNK_SIZE", "1200"))
	chunkOverlap, _ := strconv.Atoi(getEnv("KB_CHUNK_OVERLAP", "200"))
	rateLimit, _ := strconv.Atoi(getEnv("RATE_LIMIT_PER_MINUTE", "60"))
	rateWindow, _ := strconv.Atoi(getEnv("RATE_LIMIT_WINDOW_SECONDS", "60"))

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "commandlayer"),
			Password: getEnv("DB_PASSWORD", "commandlayer"),
			DBName:   getEnv("DB_NAME", "commandlayer"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		OpenAI: OpenAIConfig{
			APIKey:          getEnv("OPENAI_API_KEY", ""),
			BaseURL:         getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:           getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			EmbeddingsModel: getEnv("OPENAI_EMBEDDINGS_MODEL", "text-embedding-3-small"),
			EmbeddingsDim:   embeddingsDim,
			Timeout:         time.Duration(openaiTimeout) * time.Second,
		},
		RAG: RAGConfig{
			Mode:              getEnv("RAG_MODE", "off"),
			TopK:              ragTopK,
			MaxChars:          ragMaxChars,
			KnowledgeBasePath: getEnv("KNOWLEDGE_BASE_PATH", "knowledge_base"),
			ChunkSize:         chunkSize,
			ChunkOverlap:      chunkOverlap,
		},
		Resolver: ResolverConfig{
			Mode: getEnv("RESOLVER_MODE", "hybrid"),
		},
		RateLimit: RateLimitConfig{
			Limit:  rateLimit,
			Window: time.Duration(rateWindow) * time.Second,
		},
		Auth: AuthConfig{
			Mode:       getEnv("AUTH_MODE", "api_key"),
			HeaderName: getEnv("AUTH_HEADER_NAME", "X-API-Key"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
