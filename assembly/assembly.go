package assembly

import (
	"context"
	"net"

	"crypto-gate-service/cache"
	"crypto-gate-service/conf"
	"crypto-gate-service/limiter"
	"crypto-gate-service/metrics"
	"crypto-gate-service/routes"
	"crypto-gate-service/service"
	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/app"
	"github.com/txix-open/isp-kit/http"
	"github.com/txix-open/isp-kit/http/httpcli"
	"github.com/txix-open/isp-kit/log"
)

type Assembly struct {
	app     *app.Application
	cfg     conf.Gate
	server  *http.Server
	logger  *log.Adapter
	limiter *limiter.Limiter
	cache   *cache.Cache
}

func New(application *app.Application) (*Assembly, error) {
	localConfig := conf.Local{}
	err := application.Config().Read(&localConfig)
	if err != nil {
		return nil, errors.WithMessage(err, "read local config")
	}
	cfg := localConfig.Gate.WithDefaults()
	err = cfg.Validate()
	if err != nil {
		return nil, errors.WithMessage(err, "invalid gate config")
	}

	logger := application.Logger()
	logger.SetLevel(cfg.Logging.LogLevel)

	budget := limiter.New(logger, limiter.Config{
		MaxPerMinute: cfg.RateLimit.MaxRequests,
		MaxPerMonth:  cfg.RateLimit.MaxMonthly,
		Window:       cfg.RateLimit.Window(),
	}, limiter.WithMonthCheckInterval(cfg.RateLimit.MonthCheckPeriod()))

	return &Assembly{
		app:     application,
		cfg:     cfg,
		server:  http.NewServer(logger),
		logger:  logger,
		limiter: budget,
		cache:   cache.New(),
	}, nil
}

func (a *Assembly) Runners() ([]app.Runner, error) {
	registry := metrics.NewRegistry()
	gateMetrics := metrics.NewGate(registry)
	gateMetrics.RegisterBudget(registry, a.limiter.Stats)

	locator := NewLocator(a.logger, a.limiter, a.cache, registry, gateMetrics, httpcli.New())
	handler, gateRoutes, err := locator.Handler(a.cfg)
	if err != nil {
		return nil, errors.WithMessage(err, "locator handler")
	}
	a.server.Upgrade(handler)

	a.logger.Info(a.app.Context(), "gate is starting",
		log.String("port", a.cfg.Port),
		log.String("coinGeckoApiKey", service.MaskApiKey(a.cfg.CoinGecko.ApiKey)),
		log.Int("maxRequestsPerMinute", a.cfg.RateLimit.MaxRequests),
		log.Int("maxRequestsPerMonth", a.cfg.RateLimit.MaxMonthly),
		log.Any("endpoints", routes.Examples(gateRoutes)),
	)

	return []app.Runner{
		app.RunnerFunc(func(ctx context.Context) error {
			return a.server.ListenAndServe(net.JoinHostPort("0.0.0.0", a.cfg.Port))
		}),
		app.RunnerFunc(func(ctx context.Context) error {
			a.limiter.Run(ctx)
			return nil
		}),
		app.RunnerFunc(func(ctx context.Context) error {
			a.cache.Run(ctx, a.cfg.Cache.SweepPeriod())
			return nil
		}),
	}, nil
}

func (a *Assembly) Closers() []app.Closer {
	return []app.Closer{
		app.CloserFunc(func() error {
			return a.server.Shutdown(context.Background())
		}),
	}
}
