package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"shopgifter/internal/cache"
	"shopgifter/internal/catalog"
	"shopgifter/internal/config"
	"shopgifter/internal/epic"
	"shopgifter/internal/events"
	"shopgifter/internal/gift"
	"shopgifter/internal/model"
	"shopgifter/internal/repository"
	"shopgifter/internal/tracing"
	"shopgifter/internal/transport"

	"go.uber.org/zap"
)

// app holds everything a command needs. Built once per invocation.
type app struct {
	cfg     *config.Config
	store   repository.Store
	cache   cache.Cache
	catalog *catalog.Client
	epic    *epic.Client
	tracer  *tracing.Tracer
	events  *events.Manager
	gifter  *gift.Orchestrator
	logger  *zap.Logger
}

func newApp() (*app, error) {
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug("config loaded", zap.String("env", cfg.App.Environment), zap.String("store", cfg.Store.Type))

	store, err := repository.Open(cfg.Store, logger)
	if err != nil {
		return nil, err
	}

	c, err := openCache(cfg.Cache)
	if err != nil {
		logger.Warn("cache unavailable, continuing without it", zap.Error(err))
		c = cache.Nop{}
	}

	tracer, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		Environment: cfg.App.Environment,
		Version:     cfg.App.Version,
	})
	if err != nil {
		logger.Warn("tracing disabled", zap.Error(err))
		tracer = tracing.Noop()
	}

	httpClient := transport.NewClient(logger, http.DefaultTransport)

	a := &app{
		cfg:    cfg,
		store:  store,
		cache:  c,
		tracer: tracer,
		logger: logger,
		catalog: catalog.NewClient(catalog.Config{
			URL:      cfg.Shop.URL,
			Timeout:  cfg.Shop.Timeout,
			CacheTTL: cfg.Shop.CacheTTL,
		}, httpClient, c, logger),
		epic: epic.NewClient(epic.Config{
			AccountBaseURL:    cfg.Epic.AccountBaseURL,
			MCPBaseURL:        cfg.Epic.MCPBaseURL,
			LoginURL:          cfg.Epic.LoginURL,
			ClientToken:       cfg.Epic.ClientToken,
			DeviceClientToken: cfg.Epic.DeviceClientToken,
			AuthTimeout:       cfg.Epic.AuthTimeout,
			PollInterval:      cfg.Epic.PollInterval,
			RecipientCacheTTL: cfg.Cache.RecipientTTL,
		}, httpClient, c, logger),
		events: events.NewManager(func(e events.Event, err error) {
			logger.Warn("event handler failed", zap.String("event", string(e.Type)), zap.Error(err))
		}),
	}

	a.gifter = gift.NewOrchestrator(gift.Config{
		GiftTimeout: cfg.Gift.Timeout,
		ItemDelay:   cfg.Gift.ItemDelay,
	}, a.catalog, a.epic, a.epic,
		gift.WithHistory(store),
		gift.WithEvents(a.events),
		gift.WithTracer(tracer),
		gift.WithLogger(logger),
	)
	return a, nil
}

func openCache(cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Type {
	case "redis":
		return cache.NewRedisCache(cache.RedisConfig{
			Addr:      cfg.RedisAddress(),
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.RedisKeyPrefix,
		}, logger)
	case "none":
		return cache.Nop{}, nil
	}
	return cache.NewMemoryCache(time.Minute), nil
}

func (a *app) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.tracer.Shutdown(ctx); err != nil {
		a.logger.Warn("tracer shutdown failed", zap.Error(err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Warn("cache close failed", zap.Error(err))
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("store close failed", zap.Error(err))
	}
}

// withApp builds the app for one command run and tears it down afterwards.
func withApp(fn func(a *app) error) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

// bots loads the pool and fails when it is empty.
func (a *app) bots(ctx context.Context) ([]model.BotAccount, error) {
	bots, err := a.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(bots) == 0 {
		return nil, fmt.Errorf("no bot accounts configured; add one with 'gifter accounts add'")
	}
	return bots, nil
}

// findAccount picks an account by 1-based pool position or by account id.
func findAccount(accounts []model.BotAccount, ref string) (model.BotAccount, error) {
	if n, err := strconv.Atoi(ref); err == nil && len(ref) < 6 {
		if n < 1 || n > len(accounts) {
			return model.BotAccount{}, fmt.Errorf("account index %d out of range (1-%d)", n, len(accounts))
		}
		return accounts[n-1], nil
	}
	for _, a := range accounts {
		if a.AccountID == ref {
			return a, nil
		}
	}
	return model.BotAccount{}, fmt.Errorf("account not found: %s", ref)
}
