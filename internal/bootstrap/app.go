package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"docuchat/internal/ai"
	appsvc "docuchat/internal/app"
	"docuchat/internal/cache"
	"docuchat/internal/chunker"
	"docuchat/internal/config"
	"docuchat/internal/loader"
	rabbitmqClient "docuchat/internal/platform/rabbitmq"
	redisClient "docuchat/internal/platform/redis"
	"docuchat/internal/store"
	"docuchat/internal/vectorindex"
)

// App wires configuration, optional platform clients and the core
// services together. Redis and RabbitMQ are optional: when not
// configured the answer cache and event publishing are simply off.
type App struct {
	Config *config.Config
	Redis  *redis.Client
	MQConn *amqp.Connection

	Sessions  *store.SessionStore
	Index     *vectorindex.Memory
	Ingest    *appsvc.IngestService
	Answer    *appsvc.AnswerService
	Lifecycle *appsvc.LifecycleManager

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	app := &App{
		Config:    cfg,
		Sessions:  store.NewSessionStore(cfg.Session.UploadRoot),
		Index:     vectorindex.NewMemory(),
		StartedAt: time.Now(),
	}

	var answerCache appsvc.AnswerCache
	if cfg.Redis.Addr != "" {
		redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		app.Redis = redisCli
		answerCache = cache.NewAnswerCache(redisCli, time.Duration(cfg.Redis.AnswerTTLSeconds)*time.Second)
	} else {
		log.Printf("redis not configured, answer cache disabled")
	}

	var events appsvc.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		mqConn, err := rabbitmqClient.New(cfg.RabbitMQ.URL)
		if err != nil {
			return nil, err
		}
		app.MQConn = mqConn
		events = rabbitmqClient.NewEventPublisher(mqConn, cfg.RabbitMQ.EventQueue)
	} else {
		log.Printf("rabbitmq not configured, event publishing disabled")
	}

	splitter, err := chunker.New(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("build chunker failed: %w", err)
	}

	llmClient := ai.NewClient(ai.Config{
		BaseURL:        cfg.LLM.BaseURL,
		APIKey:         cfg.LLM.APIKey,
		Model:          cfg.LLM.Model,
		EmbeddingModel: cfg.LLM.EmbeddingModel,
	})

	app.Lifecycle = appsvc.NewLifecycleManager(
		app.Sessions,
		app.Index,
		answerCache,
		events,
		time.Duration(cfg.Session.TTLMinutes)*time.Minute,
		time.Duration(cfg.Session.SweepIntervalSeconds)*time.Second,
	)
	app.Ingest = appsvc.NewIngestService(
		app.Sessions,
		app.Index,
		loader.NewRegistry(),
		llmClient,
		splitter,
		answerCache,
		events,
		app.Lifecycle,
	)
	app.Answer = appsvc.NewAnswerService(
		app.Index,
		llmClient,
		llmClient,
		answerCache,
		cfg.RAG.TopK,
		app.Lifecycle,
	)

	return app, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	return closeErr
}
