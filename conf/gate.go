package conf

import (
	"time"

	"crypto-gate-service/domain"
	"github.com/pkg/errors"
)

const (
	defaultPort               = "3001"
	defaultCoinGeckoBaseUrl   = "https://pro-api.coingecko.com/api/v3"
	defaultKrakenBaseUrl      = "https://api.kraken.com/0/public"
	defaultMaxRequests        = 300
	defaultWindowInSec        = 60
	defaultMaxMonthly         = 400000
	defaultMaxRetries         = 3
	maxRetriesLimit           = 10
	defaultRetryDelayInMs     = 2000
	defaultUpstreamTimeoutSec = 15
	defaultSweepPeriodInSec   = 120
	defaultMaxRequestBodyInKb = 64
	defaultMonthCheckInSec    = 3600

	defaultPriceTtlInSec       = 30
	defaultMarketChartTtlInSec = 120
	defaultCoinTtlInSec        = 300
	defaultCandlesTtlInSec     = 180
)

type Gate struct {
	Port      string    `schema:"Listening port"`
	Http      Http      `schema:"HTTP settings"`
	Logging   Logging   `schema:"Logging settings"`
	CoinGecko CoinGecko `schema:"CoinGecko settings"`
	Kraken    Upstream  `schema:"Kraken settings"`
	RateLimit RateLimit `schema:"Upstream request budget"`
	Cache     Cache     `schema:"Response cache settings"`
	Monitor   *Proxy    `schema:"Websocket pass-through to the monitor,disabled when empty"`
}

type Http struct {
	MaxRequestBodySizeInKb int64 `schema:"Max request body size,in kilobytes"`
	ForwardClientRequestId bool  `schema:"Reuse x-request-id sent by clients"`
}

type Upstream struct {
	BaseUrl        string `schema:"Base url"`
	MaxRetries     *int   `schema:"Additional attempts after a retryable failure,3 when not set"`
	RetryDelayInMs int    `schema:"Constant delay between attempts,in milliseconds"`
	TimeoutInSec   int    `schema:"Timeout of a single attempt,in seconds"`
}

type CoinGecko struct {
	Upstream
	ApiKey string `schema:"Pro API key,sent in the x-cg-pro-api-key header"`
}

type RateLimit struct {
	MaxRequests           int `valid:"range(0|500)" schema:"Upstream requests per window"`
	WindowInSec           int `schema:"Window length,in seconds"`
	MaxMonthly            int `valid:"range(0|500000)" schema:"Upstream requests per calendar month"`
	MonthCheckPeriodInSec int `schema:"How often the month boundary is checked,in seconds"`
}

type Cache struct {
	SweepPeriodInSec    int `schema:"Expired entries sweep period,in seconds"`
	PriceTtlInSec       int `schema:"Price ttl,in seconds"`
	MarketChartTtlInSec int `schema:"Market chart ttl,in seconds"`
	CoinTtlInSec        int `schema:"Coin details ttl,in seconds"`
	CandlesTtlInSec     int `schema:"Candles ttl,in seconds"`
}

type Proxy struct {
	Address string `valid:"required" schema:"Monitor host:port"`
}

// WithDefaults fills every zero value with the built-in default.
func (g Gate) WithDefaults() Gate {
	setDefault(&g.Port, defaultPort)
	setDefault(&g.Http.MaxRequestBodySizeInKb, defaultMaxRequestBodyInKb)
	setDefault(&g.CoinGecko.BaseUrl, defaultCoinGeckoBaseUrl)
	setDefault(&g.Kraken.BaseUrl, defaultKrakenBaseUrl)
	g.CoinGecko.Upstream = g.CoinGecko.Upstream.withDefaults()
	g.Kraken = g.Kraken.withDefaults()
	setDefault(&g.RateLimit.MaxRequests, defaultMaxRequests)
	setDefault(&g.RateLimit.WindowInSec, defaultWindowInSec)
	setDefault(&g.RateLimit.MaxMonthly, defaultMaxMonthly)
	setDefault(&g.RateLimit.MonthCheckPeriodInSec, defaultMonthCheckInSec)
	setDefault(&g.Cache.SweepPeriodInSec, defaultSweepPeriodInSec)
	setDefault(&g.Cache.PriceTtlInSec, defaultPriceTtlInSec)
	setDefault(&g.Cache.MarketChartTtlInSec, defaultMarketChartTtlInSec)
	setDefault(&g.Cache.CoinTtlInSec, defaultCoinTtlInSec)
	setDefault(&g.Cache.CandlesTtlInSec, defaultCandlesTtlInSec)
	return g
}

func (g Gate) Validate() error {
	if g.CoinGecko.ApiKey == "" {
		return errors.New("coinGecko.apiKey is required")
	}
	if g.RateLimit.MaxRequests <= 0 || g.RateLimit.MaxMonthly <= 0 {
		return errors.New("rateLimit.maxRequests and rateLimit.maxMonthly must be positive")
	}
	if g.RateLimit.MaxRequests > g.RateLimit.MaxMonthly {
		return errors.New("rateLimit.maxRequests must not exceed rateLimit.maxMonthly")
	}
	if !validRetries(g.CoinGecko.Retries()) || !validRetries(g.Kraken.Retries()) {
		return errors.New("maxRetries must be within 0..10")
	}
	return nil
}

func (r RateLimit) Window() time.Duration {
	return time.Duration(r.WindowInSec) * time.Second
}

func (r RateLimit) MonthCheckPeriod() time.Duration {
	return time.Duration(r.MonthCheckPeriodInSec) * time.Second
}

func (c Cache) Ttl() domain.CacheTtl {
	return domain.CacheTtl{
		domain.PriceCategory:       time.Duration(c.PriceTtlInSec) * time.Second,
		domain.MarketChartCategory: time.Duration(c.MarketChartTtlInSec) * time.Second,
		domain.CoinCategory:        time.Duration(c.CoinTtlInSec) * time.Second,
		domain.CandlesCategory:     time.Duration(c.CandlesTtlInSec) * time.Second,
	}
}

func (c Cache) SweepPeriod() time.Duration {
	return time.Duration(c.SweepPeriodInSec) * time.Second
}

func (u Upstream) RetryDelay() time.Duration {
	return time.Duration(u.RetryDelayInMs) * time.Millisecond
}

func validRetries(retries int) bool {
	return retries >= 0 && retries <= maxRetriesLimit
}

func (u Upstream) Retries() int {
	if u.MaxRetries == nil {
		return defaultMaxRetries
	}
	return *u.MaxRetries
}

func (u Upstream) Timeout() time.Duration {
	return time.Duration(u.TimeoutInSec) * time.Second
}

func (u Upstream) withDefaults() Upstream {
	if u.MaxRetries == nil {
		retries := defaultMaxRetries
		u.MaxRetries = &retries
	}
	setDefault(&u.RetryDelayInMs, defaultRetryDelayInMs)
	setDefault(&u.TimeoutInSec, defaultUpstreamTimeoutSec)
	return u
}

func setDefault[T comparable](value *T, defaultValue T) {
	var zero T
	if *value == zero {
		*value = defaultValue
	}
}
