package assembly

import (
	"net/http"

	"crypto-gate-service/conf"
	"crypto-gate-service/controller"
	"crypto-gate-service/indicator"
	"crypto-gate-service/messaging"
	"crypto-gate-service/metrics"
	"crypto-gate-service/middleware"
	"crypto-gate-service/monitor"
	"crypto-gate-service/routes"
	"crypto-gate-service/settings"
	"github.com/gorilla/mux"
	"github.com/txix-open/isp-kit/http/httpcli"
	"github.com/txix-open/isp-kit/log"
)

const (
	monitorMaxBodySize = 64 * kb
)

type MonitorLocator struct {
	logger   log.Logger
	hub      *messaging.Hub
	registry *metrics.Registry
	metrics  *metrics.Monitor
	httpCli  *httpcli.Client
	store    settings.Store
}

func NewMonitorLocator(
	logger log.Logger,
	hub *messaging.Hub,
	registry *metrics.Registry,
	metrics *metrics.Monitor,
	httpCli *httpcli.Client,
	store settings.Store,
) MonitorLocator {
	return MonitorLocator{
		logger:   logger,
		hub:      hub,
		registry: registry,
		metrics:  metrics,
		httpCli:  httpCli,
		store:    store,
	}
}

func (l MonitorLocator) Handler(cfg conf.Monitor) (http.Handler, *monitor.Monitor, []routes.Route) {
	monitorService := monitor.New(
		monitor.Config{
			Symbol:          cfg.Symbol,
			HistoryCapacity: cfg.HistoryCapacity,
		},
		monitor.NewGateClient(l.httpCli, cfg.GateUrl, cfg.GateTimeout()),
		l.store,
		indicator.NewScorer(),
		l.hub,
		l.metrics,
		l.logger,
	)

	monitorRoutes := routes.Monitor(routes.MonitorControllers{
		Health: controller.NewMonitorHealth(monitorService, l.hub),
		Ws:     l.hub.Endpoint(monitorService),
	})

	router := mux.NewRouter()
	for _, route := range monitorRoutes {
		handler := middleware.Chain(
			route.Handler,
			middleware.Cors(),
			middleware.RequestId(true),
			middleware.Logger(l.logger, cfg.Logging.RequestLogEnable, false),
			middleware.ErrorHandler(l.logger),
		)
		router.Handle(route.Path, middleware.Entrypoint(monitorMaxBodySize, route.Path, handler, l.logger)).
			Methods(http.MethodGet, http.MethodOptions)
	}
	router.Handle("/metrics", l.registry.Handler()).Methods(http.MethodGet)

	return router, monitorService, monitorRoutes
}
