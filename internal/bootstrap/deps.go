// Package bootstrap wires configuration, adapters, and services together.
package bootstrap

import (
	"context"

	"quickmail_server/adapter/out/mongodb"
	"quickmail_server/config"
	"quickmail_server/core/agent/llm"
	"quickmail_server/core/port/out"
	"quickmail_server/core/service/analysis"
	"quickmail_server/core/service/extract"
	"quickmail_server/core/service/reply"
	"quickmail_server/core/service/textnorm"
	"quickmail_server/pkg/apperr"
	"quickmail_server/pkg/cache"
	"quickmail_server/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

type Dependencies struct {
	Config  *config.Config
	MongoDB *mongo.Client
	Redis   *redis.Client

	// Repositories
	AnalysisRepo *mongodb.AnalysisAdapter

	// Cache
	ResultCache *cache.RedisCache

	// Pipeline
	LLMClient       *llm.Client
	Normalizer      *textnorm.Normalizer
	Synthesizer     *reply.Synthesizer
	AnalysisService *analysis.Service
}

func NewDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	deps := &Dependencies{Config: cfg}
	var cleanups []func()

	// MongoDB (required: analyses are persisted after every pipeline run)
	if cfg.MongoDBURL == "" {
		return nil, nil, apperr.ConfigError("MONGODB_URL is required")
	}
	mongoClient, err := mongodb.NewClient(cfg.MongoDBURL)
	if err != nil {
		return nil, nil, err
	}
	deps.MongoDB = mongoClient
	cleanups = append(cleanups, func() {
		mongoClient.Disconnect(context.Background())
	})

	mongoDB := mongoClient.Database(cfg.MongoDBName)
	deps.AnalysisRepo = mongodb.NewAnalysisAdapter(mongoDB)
	if err := deps.AnalysisRepo.EnsureIndexes(context.Background()); err != nil {
		logger.Warn("Failed to ensure MongoDB indexes: %v", err)
	}

	// Redis (optional: classification result cache)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Warn("Invalid REDIS_URL, result cache disabled: %v", err)
		} else {
			redisClient := redis.NewClient(opts)
			if err := redisClient.Ping(context.Background()).Err(); err != nil {
				logger.Warn("Redis connection failed, result cache disabled: %v", err)
				redisClient.Close()
			} else {
				deps.Redis = redisClient
				deps.ResultCache = cache.NewRedisCache(redisClient)
				cleanups = append(cleanups, func() { redisClient.Close() })
				logger.Info("Result cache (Redis) initialized")
			}
		}
	}

	// Normalization resources (embedded defaults unless overridden)
	resources, err := textnorm.LoadResources(cfg.StopwordsPath, cfg.LemmasPath)
	if err != nil {
		return nil, nil, err
	}
	deps.Normalizer = textnorm.NewNormalizer(resources)
	logger.Info("Normalization resources loaded (version: %s)", resources.Version())

	// LLM classifier
	if cfg.OpenAIAPIKey == "" {
		return nil, nil, apperr.ConfigError("OPENAI_API_KEY is required")
	}
	deps.LLMClient = llm.NewClient(llm.ClientConfig{
		APIKey:      cfg.OpenAIAPIKey,
		Model:       cfg.LLMModel,
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: cfg.LLMTemperature,
		Timeout:     cfg.LLMTimeout,
	})

	// Reply synthesizer
	deps.Synthesizer = reply.NewSynthesizer(cfg.ConfidenceThreshold, reply.Templates{
		ProductiveConfident:   cfg.ReplyProductiveConfident,
		ProductiveUncertain:   cfg.ReplyProductiveUncertain,
		UnproductiveConfident: cfg.ReplyUnproductiveConfident,
		UnproductiveUncertain: cfg.ReplyUnproductiveUncertain,
	})

	// Pipeline orchestrator
	var resultCache out.ResultCache
	if deps.ResultCache != nil {
		resultCache = deps.ResultCache
	}
	deps.AnalysisService = analysis.NewService(
		extract.NewExtractor(),
		deps.Normalizer,
		deps.LLMClient,
		deps.Synthesizer,
		resultCache,
		analysis.Config{
			MaxRetries: cfg.LLMMaxRetries,
			RetryDelay: cfg.LLMRetryDelay,
			CacheTTL:   cfg.CacheResultTTL,
		},
	)
	logger.Info("Analysis pipeline initialized (model: %s, threshold: %.2f)",
		cfg.LLMModel, deps.Synthesizer.Threshold())

	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	return deps, cleanup, nil
}
