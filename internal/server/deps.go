package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/payvost/payvost-web-sub011/internal/config"
	"github.com/payvost/payvost-web-sub011/internal/fx"
	"github.com/payvost/payvost-web-sub011/internal/http/handlers"
	"github.com/payvost/payvost-web-sub011/internal/storage"
	"github.com/payvost/payvost-web-sub011/internal/storage/memory"
	"github.com/payvost/payvost-web-sub011/internal/storage/postgres"
)

// OpenStore connects the configured storage driver. The returned pinger is
// nil for the memory driver.
func OpenStore(ctx context.Context, cfg config.Config) (storage.Store, handlers.Pinger, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		return memory.New(), nil, nil
	default:
		pg, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("init database: %w", err)
		}
		return pg, pg.Ping, nil
	}
}

// NewFX builds the rate service and its cache. The returned closer releases
// the cache connection.
func NewFX(ctx context.Context, cfg config.Config, logger *slog.Logger) (*fx.Service, func(), error) {
	var provider fx.Provider
	switch cfg.FXProvider {
	case config.ProviderFixer:
		provider = fx.NewFixerProvider(cfg.FixerBaseURL, cfg.FixerAPIKey, cfg.FXProviderRPS, nil)
	default:
		provider = fx.DefaultStaticProvider()
	}

	var (
		cache  fx.Cache = fx.NewMemoryCache()
		closer          = func() {}
	)
	if cfg.RedisURL != "" {
		rc, err := fx.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		cache = rc
		closer = func() {
			if err := rc.Close(); err != nil {
				logger.Warn("close redis", "error", err)
			}
		}
	}

	fees := fx.FeePolicy{
		Currency:      cfg.Fees.Currency,
		Percent:       cfg.Fees.Percent,
		Fixed:         cfg.Fees.Fixed,
		Min:           cfg.Fees.Min,
		Max:           cfg.Fees.Max,
		MarkupPercent: cfg.Fees.MarkupPercent,
	}
	return fx.NewService(provider, cache, cfg.FXCacheTTL, fees, logger), closer, nil
}
