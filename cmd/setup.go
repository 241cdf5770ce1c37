package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/career-navigator/internal/ai"
	"github.com/spigell/career-navigator/internal/ai/advisor"
	"github.com/spigell/career-navigator/internal/ai/gemini"
	"github.com/spigell/career-navigator/internal/ai/openrouter"
	"github.com/spigell/career-navigator/internal/ai/vertex"
	"github.com/spigell/career-navigator/internal/catalog"
	"github.com/spigell/career-navigator/internal/logger"
	"github.com/spigell/career-navigator/internal/matching"
	"github.com/spigell/career-navigator/internal/navigator"
	"github.com/spigell/career-navigator/internal/secrets"
	"github.com/spigell/career-navigator/internal/storage"
)

// components are shared by serve and recommend.
type components struct {
	catalog   *catalog.Catalog
	store     storage.Store
	navigator *navigator.Service
	closers   []func() error
}

func (c *components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		_ = c.closers[i]()
	}
}

func setup(ctx context.Context, config *Config, log *zap.Logger) (*components, error) {
	c, err := catalog.Default()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	mappings, err := catalog.DefaultMappings()
	if err != nil {
		return nil, fmt.Errorf("load career mappings: %w", err)
	}

	comps := &components{catalog: c}

	store, closeStore, err := newStore(config, log)
	if err != nil {
		return nil, err
	}
	if store != nil {
		comps.store = store
		comps.closers = append(comps.closers, closeStore)
	}

	generator, closeGenerator, err := newGenerator(ctx, config.AI, log)
	if err != nil {
		log.Warn("running without a language model; recommendations fall back to keyword matching", zap.Error(err))
	} else if closeGenerator != nil {
		comps.closers = append(comps.closers, closeGenerator)
	}

	opts := advisor.Options{}
	if config.AI != nil {
		opts.Timeout = config.AI.Timeout
		opts.MaxLogLength = config.AI.MaxLogLength
		opts.Dedupe = config.AI.Dedupe
	}

	advisorLogger := log
	if generator != nil {
		advisorLogger = logger.WithProvider(log, providerName(config.AI), generator.Model())
	}
	adv := advisor.New(generator, c, matching.New(c, mappings), advisorLogger, opts)

	navOpts := navigator.Options{}
	if config.Cache != nil {
		navOpts.MaxAge = config.Cache.MaxAge
	}
	comps.navigator = navigator.New(comps.store, adv, c, log, navOpts)

	return comps, nil
}

func providerName(cfg *AIConfig) string {
	if cfg == nil {
		return ""
	}
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider == "" {
		provider = gemini.Provider
	}
	return provider
}

// newGenerator returns a nil generator without error when AI is disabled.
func newGenerator(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Generator, func() error, error) {
	if cfg == nil || !cfg.Enabled {
		log.Info("language model disabled")
		return nil, nil, nil
	}

	switch provider := providerName(cfg); provider {
	case gemini.Provider:
		gc := cfg.Gemini
		if gc == nil {
			gc = &GeminiConfig{}
		}
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: gc.APIKey,
			File:  gc.APIKeyFile,
			Env:   "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
		}
		g, err := gemini.NewGenerator(ctx, apiKey, gemini.Options{
			Model:       gc.Model,
			Temperature: cfg.Temperature,
			Retries:     gc.MaxRetries,
			Logger:      logger.WithProvider(log, provider, gc.Model),
		})
		if err != nil {
			return nil, nil, err
		}
		return g, nil, nil

	case vertex.Provider:
		vc := cfg.Vertex
		if vc == nil {
			vc = &VertexConfig{}
		}
		g, err := vertex.NewGenerator(ctx, vertex.Options{
			ProjectID:   vc.Project,
			Location:    vc.Location,
			Model:       vc.Model,
			Temperature: cfg.Temperature,
		})
		if err != nil {
			return nil, nil, err
		}
		return g, g.Close, nil

	case openrouter.Provider:
		oc := cfg.OpenRouter
		if oc == nil {
			oc = &OpenRouterConfig{}
		}
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "openrouter api key",
			Value: oc.APIKey,
			File:  oc.APIKeyFile,
			Env:   "OPENROUTER_API_KEY",
		})
		if err != nil {
			return nil, nil, err
		}
		g, err := openrouter.New(logger.WithProvider(log, provider, oc.Model), apiKey, openrouter.Options{
			Model:       oc.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return g, nil, nil

	default:
		return nil, nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}

// newStore returns a nil store when no database is configured.
func newStore(config *Config, log *zap.Logger) (storage.Store, func() error, error) {
	sc := config.Storage
	if sc == nil || (strings.TrimSpace(sc.DSN) == "" && strings.TrimSpace(sc.DSNFile) == "") {
		log.Info("storage is not configured; recommendations will not be persisted")
		return nil, nil, nil
	}

	dsn, err := secrets.Load(secrets.Source{
		Name:  "database dsn",
		Value: sc.DSN,
		File:  sc.DSNFile,
	})
	if err != nil {
		return nil, nil, err
	}

	pg, err := storage.NewPostgres(storage.PostgresConfig{
		DSN:            dsn,
		MaxConnections: sc.MaxConnections,
		MaxIdle:        sc.MaxIdle,
	})
	if err != nil {
		return nil, nil, err
	}

	cc := config.Cache
	if cc == nil || strings.TrimSpace(cc.Address) == "" {
		return pg, pg.Close, nil
	}

	client := storage.NewRedis(storage.RedisConfig{
		Address:  cc.Address,
		Password: cc.Password,
		DB:       cc.DB,
	})
	closeAll := func() error {
		_ = client.Close()
		return pg.Close()
	}

	log.Info("caching stored recommendations in redis", zap.String("address", cc.Address), zap.Duration("ttl", cc.TTL))
	return storage.NewCache(pg, client, cc.TTL, log), closeAll, nil
}
