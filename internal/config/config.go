package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig      `toml:"app"`
	LLM      LLMConfig      `toml:"llm"`
	Session  SessionConfig  `toml:"session"`
	RAG      RAGConfig      `toml:"rag"`
	Redis    RedisConfig    `toml:"redis"`
	RabbitMQ RabbitMQConfig `toml:"rabbitmq"`
}

type AppConfig struct {
	Name    string `toml:"name"`
	Env     string `toml:"env"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	GinMode string `toml:"gin_mode"`
}

type LLMConfig struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	EmbeddingModel string `toml:"embedding_model"`
}

type SessionConfig struct {
	TTLMinutes           int    `toml:"ttl_minutes"`
	SweepIntervalSeconds int    `toml:"sweep_interval_seconds"`
	UploadRoot           string `toml:"upload_root"`
	MaxUploadBytes       int64  `toml:"max_upload_bytes"`
	CookieName           string `toml:"cookie_name"`
	CookieMaxAgeSeconds  int    `toml:"cookie_max_age_seconds"`
	TokenSecret          string `toml:"token_secret"`
}

type RAGConfig struct {
	ChunkSize    int `toml:"chunk_size"`
	ChunkOverlap int `toml:"chunk_overlap"`
	TopK         int `toml:"top_k"`
}

type RedisConfig struct {
	Addr             string `toml:"addr"`
	Password         string `toml:"password"`
	DB               int    `toml:"db"`
	AnswerTTLSeconds int    `toml:"answer_ttl_seconds"`
}

type RabbitMQConfig struct {
	URL        string `toml:"url"`
	EventQueue string `toml:"event_queue"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaultConfig()

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	}

	overrideByEnv(cfg)

	if cfg.RAG.ChunkOverlap >= cfg.RAG.ChunkSize {
		return nil, fmt.Errorf("chunk overlap %d must be smaller than chunk size %d",
			cfg.RAG.ChunkOverlap, cfg.RAG.ChunkSize)
	}
	return cfg, nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:    "docuchat",
			Env:     "dev",
			Host:    "0.0.0.0",
			Port:    8080,
			GinMode: "debug",
		},
		LLM: LLMConfig{
			BaseURL:        "https://api.groq.com/openai/v1",
			APIKey:         "",
			Model:          "llama3-8b-8192",
			EmbeddingModel: "text-embedding-3-small",
		},
		Session: SessionConfig{
			TTLMinutes:           30,
			SweepIntervalSeconds: 60,
			UploadRoot:           "uploaded_files",
			MaxUploadBytes:       10 << 20,
			CookieName:           "docuchat_session",
			CookieMaxAgeSeconds:  24 * 60 * 60,
			TokenSecret:          "change-me-in-production",
		},
		RAG: RAGConfig{
			ChunkSize:    1000,
			ChunkOverlap: 200,
			TopK:         3,
		},
		Redis: RedisConfig{
			Addr:             "",
			Password:         "",
			DB:               0,
			AnswerTTLSeconds: 600,
		},
		RabbitMQ: RabbitMQConfig{
			URL:        "",
			EventQueue: "docuchat.session.events",
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.Host = getEnv("APP_HOST", cfg.App.Host)
	cfg.App.Port = getEnvAsInt("APP_PORT", cfg.App.Port)
	cfg.App.GinMode = getEnv("GIN_MODE", cfg.App.GinMode)

	cfg.LLM.BaseURL = getEnv("LLM_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.APIKey = getEnv("LLM_API_KEY", cfg.LLM.APIKey)
	cfg.LLM.APIKey = getEnv("GROQ_API_KEY", cfg.LLM.APIKey)
	cfg.LLM.Model = getEnv("LLM_MODEL", cfg.LLM.Model)
	cfg.LLM.EmbeddingModel = getEnv("LLM_EMBEDDING_MODEL", cfg.LLM.EmbeddingModel)

	cfg.Session.TTLMinutes = getEnvAsInt("SESSION_TTL_MINUTES", cfg.Session.TTLMinutes)
	cfg.Session.SweepIntervalSeconds = getEnvAsInt("SESSION_SWEEP_INTERVAL_SECONDS", cfg.Session.SweepIntervalSeconds)
	cfg.Session.UploadRoot = getEnv("SESSION_UPLOAD_ROOT", cfg.Session.UploadRoot)
	cfg.Session.MaxUploadBytes = getEnvAsInt64("SESSION_MAX_UPLOAD_BYTES", cfg.Session.MaxUploadBytes)
	cfg.Session.CookieName = getEnv("SESSION_COOKIE_NAME", cfg.Session.CookieName)
	cfg.Session.CookieMaxAgeSeconds = getEnvAsInt("SESSION_COOKIE_MAX_AGE_SECONDS", cfg.Session.CookieMaxAgeSeconds)
	cfg.Session.TokenSecret = getEnv("SESSION_TOKEN_SECRET", cfg.Session.TokenSecret)

	cfg.RAG.ChunkSize = getEnvAsInt("RAG_CHUNK_SIZE", cfg.RAG.ChunkSize)
	cfg.RAG.ChunkOverlap = getEnvAsInt("RAG_CHUNK_OVERLAP", cfg.RAG.ChunkOverlap)
	cfg.RAG.TopK = getEnvAsInt("RAG_TOP_K", cfg.RAG.TopK)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.AnswerTTLSeconds = getEnvAsInt("REDIS_ANSWER_TTL_SECONDS", cfg.Redis.AnswerTTLSeconds)

	cfg.RabbitMQ.URL = getEnv("RABBITMQ_URL", cfg.RabbitMQ.URL)
	cfg.RabbitMQ.EventQueue = getEnv("RABBITMQ_EVENT_QUEUE", cfg.RabbitMQ.EventQueue)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsInt64(key string, fallback int64) int64 {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
