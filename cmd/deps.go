package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-assistant/internal/ai"
	"github.com/spigell/resume-assistant/internal/ai/anthropic"
	"github.com/spigell/resume-assistant/internal/ai/gemini"
	"github.com/spigell/resume-assistant/internal/ai/openai"
	"github.com/spigell/resume-assistant/internal/corpus"
	"github.com/spigell/resume-assistant/internal/embedding"
	"github.com/spigell/resume-assistant/internal/index"
	logging "github.com/spigell/resume-assistant/internal/logger"
	"github.com/spigell/resume-assistant/internal/matching"
	"github.com/spigell/resume-assistant/internal/secrets"
	"github.com/spigell/resume-assistant/internal/tracing"
)

const (
	embeddingLocal  = "local"
	embeddingGemini = "gemini"
	embeddingOpenAI = "openai"

	indexBackendFile  = "file"
	indexBackendMinIO = "minio"

	cacheBackendMemory = "memory"
	cacheBackendRedis  = "redis"
)

type cleanup func()

func newEmbeddingProvider(ctx context.Context, cfg *EmbeddingConfig, logger *zap.Logger) (embedding.Provider, cleanup, error) {
	noop := func() {}
	if cfg == nil {
		cfg = &EmbeddingConfig{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		provider embedding.Provider
		err      error
	)

	switch embeddingProviderName(cfg.Provider) {
	case embeddingLocal:
		provider = embedding.NewHashing(cfg.Dimension)
	case embeddingGemini:
		key, keyErr := secrets.Load(secrets.Source{
			Name:  "embedding api key",
			Value: cfg.APIKey,
			File:  cfg.APIKeyFile,
			Env:   "GEMINI_API_KEY",
		})
		if keyErr != nil {
			return nil, noop, keyErr
		}
		provider, err = embedding.NewGemini(ctx, key, cfg.Model, cfg.Dimension)
	case embeddingOpenAI:
		key, keyErr := secrets.Load(secrets.Source{
			Name:  "embedding api key",
			Value: cfg.APIKey,
			File:  cfg.APIKeyFile,
			Env:   "OPENAI_API_KEY",
		})
		if keyErr != nil {
			return nil, noop, keyErr
		}
		provider, err = embedding.NewOpenAI(key, cfg.BaseURL, cfg.Model, cfg.Dimension)
	default:
		return nil, noop, fmt.Errorf("unsupported embedding provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, noop, fmt.Errorf("creating %s embedding provider: %w", cfg.Provider, err)
	}

	if cfg.Cache == nil || !cfg.Cache.Enabled {
		return provider, noop, nil
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Cache.Backend)) {
	case cacheBackendMemory:
		return embedding.NewCached(provider, embedding.NewMemoryCache(), logger), noop, nil
	case "", cacheBackendRedis:
		cache, err := newRedisCache(ctx, cfg.Cache.Redis)
		if err != nil {
			return nil, noop, err
		}
		logger.Debug("embedding cache enabled", zap.String("backend", cacheBackendRedis))
		return embedding.NewCached(provider, cache, logger), func() {
			if err := cache.Close(); err != nil {
				logger.Warn("closing embedding cache", zap.Error(err))
			}
		}, nil
	default:
		return nil, noop, fmt.Errorf("unsupported embedding cache backend %q", cfg.Cache.Backend)
	}
}

func newRedisCache(ctx context.Context, cfg *RedisConfig) (*embedding.RedisCache, error) {
	if cfg == nil {
		cfg = &RedisConfig{}
	}

	password, err := secrets.Optional(secrets.Source{
		Name:  "redis password",
		Value: cfg.Password,
		File:  cfg.PasswordFile,
		Env:   "REDIS_PASSWORD",
	})
	if err != nil {
		return nil, err
	}

	var ttl time.Duration
	if cfg.TTL != "" {
		ttl, err = time.ParseDuration(cfg.TTL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis ttl %q: %w", cfg.TTL, err)
		}
	}

	cache := embedding.NewRedisCache(embedding.RedisOptions{
		Addr:     cfg.Addr,
		Password: password,
		DB:       cfg.DB,
		TTL:      ttl,
	})
	if err := cache.Ping(ctx); err != nil {
		_ = cache.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Addr, err)
	}

	return cache, nil
}

func newIndexStore(cfg *IndexConfig) (index.Store, error) {
	if cfg == nil {
		cfg = &IndexConfig{}
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", indexBackendFile:
		return index.NewFileStore(cfg.Path), nil
	case indexBackendMinIO:
		m := cfg.MinIO
		if m == nil {
			return nil, fmt.Errorf("index backend %q requires the index.minio section", cfg.Backend)
		}
		secret, err := secrets.Load(secrets.Source{
			Name:  "minio secret key",
			Value: m.SecretKey,
			File:  m.SecretKeyFile,
			Env:   "MINIO_SECRET_KEY",
		})
		if err != nil {
			return nil, err
		}
		store, err := index.NewMinIOStore(index.MinIOOptions{
			Endpoint:  m.Endpoint,
			AccessKey: m.AccessKey,
			SecretKey: secret,
			Bucket:    m.Bucket,
			Object:    m.Object,
			Region:    m.Region,
			Secure:    m.Secure,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported index backend %q", cfg.Backend)
	}
}

// newEngine wires the corpus, embedding provider and index store into a
// ready matching engine.
func newEngine(ctx context.Context, config *Config, logger *zap.Logger, rebuild bool) (*matching.Engine, cleanup, error) {
	noop := func() {}

	path := ""
	if config.Corpus != nil {
		path = config.Corpus.Path
	}
	jobs, err := corpus.Load(path, logger)
	if err != nil {
		return nil, noop, err
	}

	store, err := newIndexStore(config.Index)
	if err != nil {
		return nil, noop, err
	}

	provider, closeProvider, err := newEmbeddingProvider(ctx, config.Embedding, logger)
	if err != nil {
		return nil, noop, err
	}

	opts := matching.Options{
		Corpus:   jobs,
		Provider: provider,
		Store:    store,
		Rebuild:  rebuild,
		Logger:   logger,
		Tracer:   tracing.Tracer("matching"),
	}
	if config.Embedding != nil {
		opts.EmbeddingProvider = embeddingProviderName(config.Embedding.Provider)
	}
	if m := config.Matching; m != nil {
		opts.TopK = m.TopK
		opts.TopMatches = m.TopMatches
		opts.BatchSize = m.BatchSize
	}

	engine, err := matching.New(ctx, opts)
	if err != nil {
		closeProvider()
		return nil, noop, err
	}

	return engine, closeProvider, nil
}

func newTextGenerator(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.TextGenerator, error) {
	if cfg == nil {
		cfg = &AIConfig{}
	}

	switch aiProviderName(cfg.Provider) {
	case ai.ProviderGemini:
		c := cfg.Gemini
		if c == nil {
			c = &GeminiConfig{}
		}
		key, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: c.APIKey,
			File:  c.APIKeyFile,
			Env:   "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, err
		}
		g, err := gemini.NewGenerator(ctx, gemini.Options{
			APIKey:       key,
			Model:        c.Model,
			MaxRetries:   c.MaxRetries,
			MaxLogLength: c.MaxLogLength,
			Logger:       logger,
		})
		if err != nil {
			return nil, err
		}
		return g, nil
	case ai.ProviderOpenAI:
		c := cfg.OpenAI
		if c == nil {
			c = &OpenAIConfig{}
		}
		key, err := secrets.Load(secrets.Source{
			Name:  "openai api key",
			Value: c.APIKey,
			File:  c.APIKeyFile,
			Env:   "OPENAI_API_KEY",
		})
		if err != nil {
			return nil, err
		}
		g, err := openai.NewGenerator(key, c.BaseURL, c.Model)
		if err != nil {
			return nil, err
		}
		return g, nil
	case ai.ProviderAnthropic:
		c := cfg.Anthropic
		if c == nil {
			c = &AnthropicConfig{}
		}
		key, err := secrets.Load(secrets.Source{
			Name:  "anthropic api key",
			Value: c.APIKey,
			File:  c.APIKeyFile,
			Env:   "ANTHROPIC_API_KEY",
		})
		if err != nil {
			return nil, err
		}
		g, err := anthropic.NewGenerator(key, c.BaseURL, c.Model, c.MaxTokens)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unsupported ai provider %q", cfg.Provider)
	}
}

func embeddingProviderName(name string) string {
	if name = strings.ToLower(strings.TrimSpace(name)); name == "" {
		return embeddingLocal
	}
	return name
}

func aiProviderName(name string) string {
	if name = strings.ToLower(strings.TrimSpace(name)); name == "" {
		return ai.ProviderGemini
	}
	return name
}

// generatorLogger tags logger with the text generation provider and model.
func generatorLogger(logger *zap.Logger, cfg *AIConfig, generator ai.TextGenerator) *zap.Logger {
	provider := ""
	if cfg != nil {
		provider = cfg.Provider
	}
	return logging.WithCommonFields(logger, aiProviderName(provider), generator.Model())
}

// bootstrap builds the logger, reads the config and installs tracing. The
// returned function flushes both.
func bootstrap(ctx context.Context, command string) (*zap.Logger, *Config, cleanup) {
	logger, err := newLogger()
	if err != nil {
		log.Fatalf("failed to create logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("failed to get config", zap.Error(err))
	}

	logger.Info("starting "+app, zap.String("version", version), zap.String("command", command))

	logger.Debug("loaded configuration",
		zap.String("config_file", viper.ConfigFileUsed()),
		zap.String("corpus", config.Corpus.Path),
		zap.String("index_backend", config.Index.Backend),
		zap.String("embedding_provider", config.Embedding.Provider),
		zap.String("ai_provider", config.AI.Provider),
		zap.Bool("tracing", config.Tracing.Enabled),
	)

	config.Tracing.ServiceName = app
	config.Tracing.ServiceVersion = version
	shutdown, err := tracing.Setup(ctx, config.Tracing)
	if err != nil {
		logger.Fatal("failed to set up tracing", zap.Error(err))
	}

	return logger, config, func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn("failed to flush traces", zap.Error(err))
		}
		_ = logger.Sync()
	}
}

func newLogger() (*zap.Logger, error) {
	return logging.New(viper.GetBool("json"), viper.GetBool("debug"))
}
