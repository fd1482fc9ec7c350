package assembly

import (
	"context"
	"net"
	"time"

	"crypto-gate-service/conf"
	"crypto-gate-service/messaging"
	"crypto-gate-service/metrics"
	"crypto-gate-service/routes"
	"crypto-gate-service/settings"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/txix-open/isp-kit/app"
	"github.com/txix-open/isp-kit/http"
	"github.com/txix-open/isp-kit/http/httpcli"
	"github.com/txix-open/isp-kit/log"
)

const (
	redisPingTimeout = 5 * time.Second
)

type MonitorAssembly struct {
	app      *app.Application
	cfg      conf.Monitor
	server   *http.Server
	logger   *log.Adapter
	redisCli redis.UniversalClient
	hub      *messaging.Hub
}

func NewMonitor(application *app.Application) (*MonitorAssembly, error) {
	localConfig := conf.Local{}
	err := application.Config().Read(&localConfig)
	if err != nil {
		return nil, errors.WithMessage(err, "read local config")
	}
	cfg := localConfig.Monitor.WithDefaults()
	err = cfg.Validate()
	if err != nil {
		return nil, errors.WithMessage(err, "invalid monitor config")
	}

	logger := application.Logger()
	logger.SetLevel(cfg.Logging.LogLevel)

	var redisCli redis.UniversalClient
	if cfg.Redis != nil {
		redisCli = redisClient(*cfg.Redis)
		ctx, cancel := context.WithTimeout(application.Context(), redisPingTimeout)
		defer cancel()
		err = redisCli.Ping(ctx).Err()
		if err != nil {
			_ = redisCli.Close()
			return nil, errors.WithMessage(err, "ping redis")
		}
	}

	return &MonitorAssembly{
		app:      application,
		cfg:      cfg,
		server:   http.NewServer(logger),
		logger:   logger,
		redisCli: redisCli,
	}, nil
}

func (a *MonitorAssembly) Runners() ([]app.Runner, error) {
	registry := metrics.NewRegistry()
	monitorMetrics := metrics.NewMonitor(registry)
	a.hub = messaging.NewHub(a.logger, monitorMetrics)

	var store settings.Store = settings.NewMemoryStore()
	if a.redisCli != nil {
		store = settings.NewRedisStore(a.redisCli, a.cfg.SettingsKey, a.logger)
	}

	locator := NewMonitorLocator(a.logger, a.hub, registry, monitorMetrics, httpcli.New(), store)
	handler, monitorService, monitorRoutes := locator.Handler(a.cfg)
	a.server.Upgrade(handler)

	a.logger.Info(a.app.Context(), "monitor is starting",
		log.String("port", a.cfg.Port),
		log.String("gateUrl", a.cfg.GateUrl),
		log.String("symbol", monitorService.Symbol()),
		log.Int("pollIntervalInSec", a.cfg.PollIntervalInSec),
		log.Any("endpoints", routes.Examples(monitorRoutes)),
	)

	return []app.Runner{
		app.RunnerFunc(func(ctx context.Context) error {
			return a.server.ListenAndServe(net.JoinHostPort("0.0.0.0", a.cfg.Port))
		}),
		app.RunnerFunc(func(ctx context.Context) error {
			err := monitorService.Init(ctx)
			if err != nil {
				return errors.WithMessage(err, "init monitor")
			}
			monitorService.Run(ctx, a.cfg.PollInterval())
			return nil
		}),
	}, nil
}

func (a *MonitorAssembly) Closers() []app.Closer {
	return []app.Closer{
		app.CloserFunc(func() error {
			if a.hub != nil {
				a.hub.Close()
			}
			return a.server.Shutdown(context.Background())
		}),
		app.CloserFunc(func() error {
			if a.redisCli != nil {
				return a.redisCli.Close()
			}
			return nil
		}),
	}
}

func redisClient(config conf.Redis) redis.UniversalClient {
	if config.Sentinel != nil {
		return redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:       config.Sentinel.MasterName,
			SentinelAddrs:    config.Sentinel.Addresses,
			SentinelUsername: config.Sentinel.Username,
			SentinelPassword: config.Sentinel.Password,
			Username:         config.Username,
			Password:         config.Password,
			DB:               config.Db,
		})
	}
	return redis.NewClient(&redis.Options{
		Addr:     config.Address,
		Username: config.Username,
		Password: config.Password,
		DB:       config.Db,
	})
}
