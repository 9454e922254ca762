package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Remote    RemoteConfig
	Index     IndexConfig
	Embedding EmbeddingConfig
}

type AppConfig struct {
	Environment    string
	LogFilePath    string
	OwnerId        string
	PendingDBPath  string
	IndexTopicName string
}

type RemoteConfig struct {
	NatsURL string
}

type IndexConfig struct {
	BaseURL        string
	CollectionName string
}

type EmbeddingConfig struct {
	ApiKey  string
	BaseURL string
	Model   string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Environment:    getEnv("GO_ENV", "development"),
			LogFilePath:    getEnv("LOG_FILE_PATH", "notesync.log"),
			OwnerId:        getEnv("OWNER_ID", ""),
			PendingDBPath:  getEnv("PENDING_DB_PATH", "pending_notes.db"),
			IndexTopicName: getEnv("INDEX_NOTE_TOPIC_NAME", "INDEX_NOTE"),
		},
		Remote: RemoteConfig{
			NatsURL: getEnv("NATS_URL", "nats://localhost:4222"),
		},
		Index: IndexConfig{
			BaseURL:        getEnv("VECTOR_STORE_URL", "http://localhost:8000"),
			CollectionName: getEnv("VECTOR_COLLECTION_NAME", "notes"),
		},
		Embedding: EmbeddingConfig{
			ApiKey:  getEnv("OPENAI_API_KEY", ""),
			BaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com"),
			Model:   getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
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
