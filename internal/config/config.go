package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Pipeline PipelineConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	FeedbackTopic      string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaEmbedModel  string
	GeminiApiKey      string
	HuggingFaceApiKey string
	LLMProvider       string // "ollama" or "huggingface"
	LLMModel          string // e.g. "llama3", "qwen2.5"
}

type PipelineConfig struct {
	CollectionPrefix string
	RewriteLimit     int
	HistoryWindow    int
	ThresholdDefault int
	ThresholdMin     int
	ThresholdMax     int
	TopKPerColl      int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			FeedbackTopic:      getEnv("ANSWER_FEEDBACK_TOPIC_NAME", "ANSWER_FEEDBACK"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaEmbedModel:  getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			GeminiApiKey:      getEnv("GOOGLE_GEMINI_API_KEY", ""),
			HuggingFaceApiKey: getEnv("HUGGINGFACE_API_KEY", ""),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
		},
		Pipeline: PipelineConfig{
			CollectionPrefix: getEnv("COLLECTION_PREFIX", "docs"),
			RewriteLimit:     getEnvAsInt("REWRITE_LIMIT", 1),
			HistoryWindow:    getEnvAsInt("HISTORY_WINDOW", 10),
			ThresholdDefault: getEnvAsInt("QUALITY_THRESHOLD_DEFAULT", 12),
			ThresholdMin:     getEnvAsInt("QUALITY_THRESHOLD_MIN", 10),
			ThresholdMax:     getEnvAsInt("QUALITY_THRESHOLD_MAX", 14),
			TopKPerColl:      getEnvAsInt("SEARCH_TOP_K", 10),
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
