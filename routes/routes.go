package routes

import (
	"crypto-gate-service/controller"
	"crypto-gate-service/middleware"
)

type Route struct {
	Path    string
	Example string
	Handler middleware.Handler
}

type Controllers struct {
	Market controller.Market
	Health controller.Health
}

func Gate(c Controllers) []Route {
	return []Route{
		{Path: "/health", Example: "/health", Handler: middleware.HandlerFunc(c.Health.Status)},
		{Path: "/api/price", Example: "/api/price?symbol=BTC", Handler: middleware.HandlerFunc(c.Market.Price)},
		{Path: "/api/prices", Example: "/api/prices?symbols=BTC,ETH,SOL", Handler: middleware.HandlerFunc(c.Market.Prices)},
		{
			Path:    "/api/market_chart",
			Example: "/api/market_chart?symbol=BTC&days=1&interval=daily",
			Handler: middleware.HandlerFunc(c.Market.MarketChart),
		},
		{Path: "/api/coin", Example: "/api/coin?symbol=BTC", Handler: middleware.HandlerFunc(c.Market.Coin)},
		{Path: "/api/candles", Example: "/api/candles?symbol=BTC&days=1", Handler: middleware.HandlerFunc(c.Market.Candles)},
		{Path: "/api/ticker", Example: "/api/ticker?symbol=BTC", Handler: middleware.HandlerFunc(c.Market.Ticker)},
		{Path: "/api/ohlc", Example: "/api/ohlc?symbol=BTC&interval=1m", Handler: middleware.HandlerFunc(c.Market.Ohlc)},
		{Path: "/api/historical", Example: "/api/historical?symbol=BTC", Handler: middleware.HandlerFunc(c.Market.Historical)},
		{Path: "/api/test", Example: "/api/test", Handler: middleware.HandlerFunc(c.Market.Test)},
	}
}

type MonitorControllers struct {
	Health controller.MonitorHealth
	Ws     middleware.Handler
}

func Monitor(c MonitorControllers) []Route {
	return []Route{
		{Path: "/health", Example: "/health", Handler: middleware.HandlerFunc(c.Health.Status)},
		{Path: "/ws", Example: "/ws", Handler: c.Ws},
	}
}

func Examples(routes []Route) []string {
	examples := make([]string, 0, len(routes))
	for _, route := range routes {
		examples = append(examples, route.Example)
	}
	return examples
}
