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
	Ai       AIConfig
	Search   SearchConfig
	Workflow WorkflowConfig
	Keys     APIKeys
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	UploadDir          string
	PublicDir          string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	LLMProvider       string // "ollama" or "huggingface"
	LLMModel          string // e.g. "llama3", "qwen2.5"
	OllamaBaseURL     string
	EmbeddingProvider string // "hash" (deterministic, default) or "ollama"
	EmbeddingModel    string // ollama embedding model, unused by the hash provider
	EmbeddingDims     int    // vector column width; must match the provider's output
	CollectionName    string // default document collection
}

type SearchConfig struct {
	Provider   string // "duckduckgo" (no key needed) or "tavily"
	MaxResults int
	CacheTTL   time.Duration
}

type WorkflowConfig struct {
	MaxRetries  int           // judge->classify loop ceiling
	StepTimeout time.Duration // per-node deadline
	RunTimeout  time.Duration // whole-run deadline
}

type APIKeys struct {
	Tavily      string
	HuggingFace string
	AdminJWT    string // guards destructive endpoints when set
	IngestTopic string // watermill topic for document-ingested events
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			UploadDir:          getEnv("UPLOAD_DIR", "./uploads"),
			PublicDir:          getEnv("PUBLIC_DIR", "./public"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "hash"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
			EmbeddingDims:     getEnvAsInt("EMBEDDING_DIMENSIONS", 384),
			CollectionName:    getEnv("COLLECTION_NAME", "documents"),
		},
		Search: SearchConfig{
			Provider:   getEnv("SEARCH_PROVIDER", "duckduckgo"),
			MaxResults: getEnvAsInt("SEARCH_MAX_RESULTS", 3),
			CacheTTL:   getEnvAsDuration("SEARCH_CACHE_TTL", 15*time.Minute),
		},
		Workflow: WorkflowConfig{
			MaxRetries:  getEnvAsInt("WORKFLOW_MAX_RETRIES", 2),
			StepTimeout: getEnvAsDuration("WORKFLOW_STEP_TIMEOUT", 60*time.Second),
			RunTimeout:  getEnvAsDuration("WORKFLOW_RUN_TIMEOUT", 5*time.Minute),
		},
		Keys: APIKeys{
			Tavily:      getEnv("TAVILY_API_KEY", ""),
			HuggingFace: getEnv("HUGGINGFACE_API_KEY", ""),
			AdminJWT:    getEnv("ADMIN_JWT_SECRET", ""),
			IngestTopic: getEnv("DOCUMENT_INGESTED_TOPIC_NAME", "DOCUMENT_INGESTED"),
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

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
