package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Renderer    RendererConfig
	ObjectStore ObjectStoreConfig
	Redis       RedisConfig
	Firebase    FirebaseConfig
	AI          AIConfig
	App         AppConfig
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RendererConfig struct {
	BaseURL string
	// Requests per second allowed against the PlantUML server for
	// background work (duplication, reconciler). Interactive renders
	// are not limited.
	RatePerSecond int
}

type ObjectStoreConfig struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type FirebaseConfig struct {
	CredentialsPath string
}

type AIConfig struct {
	OpenAIKey     string
	GeminiKey     string
	AnthropicKey  string
	OllamaBaseURL string
	DefaultModel  string
	MaxHistory    int
	SessionTTL    time.Duration
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "umlhub"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Renderer: RendererConfig{
			BaseURL:       getEnv("PLANTUML_SERVER", "http://localhost:9999"),
			RatePerSecond: getEnvAsInt("PLANTUML_RATE_PER_SECOND", 5),
		},
		ObjectStore: ObjectStoreConfig{
			Endpoint:  getEnv("S3_ENDPOINT", "http://localhost:9000"),
			Region:    getEnv("S3_REGION", "us-east-1"),
			AccessKey: getEnv("S3_ACCESS_KEY", ""),
			SecretKey: getEnv("S3_SECRET_KEY", ""),
			Bucket:    getEnv("S3_BUCKET", "diagrams"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		},
		AI: AIConfig{
			OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
			GeminiKey:     getEnv("GEMINI_API_KEY", ""),
			AnthropicKey:  getEnv("ANTHROPIC_API_KEY", ""),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			DefaultModel:  getEnv("AI_DEFAULT_MODEL", "gpt-3.5-turbo"),
			MaxHistory:    getEnvAsInt("AI_MAX_HISTORY", 10),
			SessionTTL:    time.Duration(getEnvAsInt("AI_SESSION_TTL_HOURS", 24)) * time.Hour,
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}

	if c.Renderer.BaseURL == "" {
		return fmt.Errorf("PLANTUML_SERVER is required")
	}

	if c.ObjectStore.Bucket == "" {
		return fmt.Errorf("S3_BUCKET is required")
	}

	if c.AI.MaxHistory <= 0 {
		return fmt.Errorf("AI_MAX_HISTORY must be positive")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}
