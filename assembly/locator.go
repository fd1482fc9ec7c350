package assembly

import (
	"net/http"

	"crypto-gate-service/cache"
	"crypto-gate-service/conf"
	"crypto-gate-service/controller"
	"crypto-gate-service/httperrors"
	"crypto-gate-service/limiter"
	"crypto-gate-service/metrics"
	"crypto-gate-service/middleware"
	"crypto-gate-service/proxy"
	"crypto-gate-service/repository"
	"crypto-gate-service/request"
	"crypto-gate-service/routes"
	"crypto-gate-service/service"
	"crypto-gate-service/upstream"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/http/httpcli"
	"github.com/txix-open/isp-kit/log"
)

const (
	kb = 1024
)

type Locator struct {
	logger   log.Logger
	limiter  *limiter.Limiter
	cache    *cache.Cache
	registry *metrics.Registry
	metrics  *metrics.Gate
	httpCli  *httpcli.Client
}

func NewLocator(
	logger log.Logger,
	limiter *limiter.Limiter,
	cache *cache.Cache,
	registry *metrics.Registry,
	metrics *metrics.Gate,
	httpCli *httpcli.Client,
) Locator {
	return Locator{
		logger:   logger,
		limiter:  limiter,
		cache:    cache,
		registry: registry,
		metrics:  metrics,
		httpCli:  httpCli,
	}
}

func (l Locator) Handler(cfg conf.Gate) (http.Handler, []routes.Route, error) {
	responses := repository.NewResponseCache(l.cache, cfg.Cache.Ttl())

	coinGeckoFetcher := upstream.NewFetcher(l.httpCli, upstream.Config{
		Name:         "coingecko",
		BaseUrl:      cfg.CoinGecko.BaseUrl,
		ApiKey:       cfg.CoinGecko.ApiKey,
		ApiKeyHeader: upstream.CoinGeckoApiKeyHeader,
		MaxRetries:   cfg.CoinGecko.Retries(),
		RetryDelay:   cfg.CoinGecko.RetryDelay(),
		Timeout:      cfg.CoinGecko.Timeout(),
	}, l.logger, l.metrics)
	krakenFetcher := upstream.NewFetcher(l.httpCli, upstream.Config{
		Name:       "kraken",
		BaseUrl:    cfg.Kraken.BaseUrl,
		MaxRetries: cfg.Kraken.Retries(),
		RetryDelay: cfg.Kraken.RetryDelay(),
		Timeout:    cfg.Kraken.Timeout(),
	}, l.logger, l.metrics)

	marketService := service.NewMarket(
		responses,
		l.limiter,
		upstream.NewCoinGecko(coinGeckoFetcher),
		upstream.NewKraken(krakenFetcher),
		l.metrics,
		l.logger,
	)
	healthService := service.NewHealth(l.limiter, responses, cfg.CoinGecko.ApiKey, cfg.Port)

	gateRoutes := routes.Gate(routes.Controllers{
		Market: controller.NewMarket(marketService),
		Health: controller.NewHealth(healthService),
	})

	maxBodySize := cfg.Http.MaxRequestBodySizeInKb * kb
	router := mux.NewRouter()
	for _, route := range gateRoutes {
		handler := middleware.Chain(
			route.Handler,
			middleware.Cors(),
			middleware.RequestId(cfg.Http.ForwardClientRequestId),
			middleware.Metrics(l.metrics),
			middleware.Logger(l.logger, cfg.Logging.RequestLogEnable, cfg.Logging.BodyLogEnable),
			middleware.ErrorHandler(l.logger),
		)
		router.Handle(route.Path, middleware.Entrypoint(maxBodySize, route.Path, handler, l.logger)).
			Methods(http.MethodGet, http.MethodOptions)
	}

	router.Handle("/metrics", l.registry.Handler()).Methods(http.MethodGet)

	if cfg.Monitor != nil {
		ws, err := proxy.NewWs(cfg.Monitor.Address)
		if err != nil {
			return nil, nil, errors.WithMessage(err, "new ws proxy")
		}
		handler := middleware.Chain(
			ws,
			middleware.RequestId(cfg.Http.ForwardClientRequestId),
			middleware.Logger(l.logger, cfg.Logging.RequestLogEnable, false),
			middleware.ErrorHandler(l.logger),
		)
		router.Handle("/ws", middleware.Entrypoint(maxBodySize, "/ws", handler, l.logger))
	}

	notFound := middleware.Chain(
		middleware.HandlerFunc(func(ctx *request.Context) error {
			return httperrors.New(
				http.StatusNotFound,
				"endpoint not found",
				errors.Errorf("unknown endpoint %s %s", ctx.Request().Method, ctx.Request().URL.Path),
			)
		}),
		middleware.Cors(),
		middleware.ErrorHandler(l.logger),
	)
	router.NotFoundHandler = middleware.Entrypoint(maxBodySize, "not_found", notFound, l.logger)
	router.MethodNotAllowedHandler = router.NotFoundHandler

	return router, gateRoutes, nil
}
