package service

import (
	"context"
	stdjson "encoding/json"

	"crypto-gate-service/domain"
	"crypto-gate-service/repository"
	"crypto-gate-service/upstream"
	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/json"
	"github.com/txix-open/isp-kit/log"
	"golang.org/x/sync/errgroup"
)

const (
	defaultChartInterval = "daily"
	defaultCandleDays    = "1"
	candleSourceInterval = "5m"
)

type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, category domain.CacheCategory, key string, data []byte)
}

type Limiter interface {
	TryAdmit() domain.RateLimitResult
}

type CoinGecko interface {
	SimplePrice(ctx context.Context, symbols []string) ([]byte, error)
	MarketChart(ctx context.Context, symbol string, days string, interval string) ([]byte, error)
	MarketChartPrices(ctx context.Context, symbol string, days string, interval string) ([][2]float64, error)
	Coin(ctx context.Context, symbol string) ([]byte, error)
	Ping(ctx context.Context) ([]byte, error)
}

type Kraken interface {
	Ticker(ctx context.Context, symbol string) (*domain.Ticker, error)
	Ohlc(ctx context.Context, symbol string, interval domain.Timeframe, since string) (*domain.Ohlc, error)
}

type MarketMetrics interface {
	CacheLookup(endpoint string, hit bool)
	RateLimitDenied(scope domain.LimitScope)
}

// Market answers every market data request: cached payloads first,
// then a budget admission and a single upstream fetch on a miss.
type Market struct {
	cache     ResponseCache
	limiter   Limiter
	coinGecko CoinGecko
	kraken    Kraken
	metrics   MarketMetrics
	logger    log.Logger
}

func NewMarket(
	cache ResponseCache,
	limiter Limiter,
	coinGecko CoinGecko,
	kraken Kraken,
	metrics MarketMetrics,
	logger log.Logger,
) Market {
	return Market{
		cache:     cache,
		limiter:   limiter,
		coinGecko: coinGecko,
		kraken:    kraken,
		metrics:   metrics,
		logger:    logger,
	}
}

func (s Market) Price(ctx context.Context, symbol string) ([]byte, error) {
	if symbol == "" {
		return nil, domain.NewRequiredParamError("symbol")
	}
	return s.cached(ctx, "price", domain.PriceCategory, repository.PriceKey(symbol), func(ctx context.Context) ([]byte, error) {
		return s.coinGecko.SimplePrice(ctx, []string{symbol})
	})
}

func (s Market) Prices(ctx context.Context, symbols string) ([]byte, error) {
	list := domain.SplitList(symbols)
	if len(list) == 0 {
		return nil, domain.NewRequiredParamError("symbols")
	}
	return s.cached(ctx, "prices", domain.PriceCategory, repository.PricesKey(list), func(ctx context.Context) ([]byte, error) {
		return s.coinGecko.SimplePrice(ctx, list)
	})
}

func (s Market) MarketChart(ctx context.Context, symbol string, days string, interval string) ([]byte, error) {
	if symbol == "" || days == "" {
		return nil, domain.NewRequiredParamError("symbol", "days")
	}
	if interval == "" {
		interval = defaultChartInterval
	}
	key := repository.MarketChartKey(symbol, days, interval)
	return s.cached(ctx, "market_chart", domain.MarketChartCategory, key, func(ctx context.Context) ([]byte, error) {
		return s.coinGecko.MarketChart(ctx, symbol, days, interval)
	})
}

func (s Market) Coin(ctx context.Context, symbol string) ([]byte, error) {
	if symbol == "" {
		return nil, domain.NewRequiredParamError("symbol")
	}
	return s.cached(ctx, "coin", domain.CoinCategory, repository.CoinKey(symbol), func(ctx context.Context) ([]byte, error) {
		return s.coinGecko.Coin(ctx, symbol)
	})
}

func (s Market) Candles(ctx context.Context, symbol string, days string) ([]byte, error) {
	if symbol == "" {
		return nil, domain.NewRequiredParamError("symbol")
	}
	if days == "" {
		days = defaultCandleDays
	}
	key := repository.CandlesKey(symbol, days)
	return s.cached(ctx, "candles", domain.CandlesCategory, key, func(ctx context.Context) ([]byte, error) {
		prices, err := s.coinGecko.MarketChartPrices(ctx, symbol, days, candleSourceInterval)
		if err != nil {
			return nil, err
		}
		return json.Marshal(HourlyCandles(prices))
	})
}

func (s Market) Ticker(ctx context.Context, symbol string) ([]byte, error) {
	err := validateKrakenSymbol(symbol)
	if err != nil {
		return nil, err
	}
	return s.cached(ctx, "ticker", domain.PriceCategory, repository.TickerKey(symbol), func(ctx context.Context) ([]byte, error) {
		ticker, err := s.kraken.Ticker(ctx, symbol)
		if err != nil {
			return nil, err
		}
		return json.Marshal(ticker)
	})
}

func (s Market) Ohlc(ctx context.Context, symbol string, interval string, since string) ([]byte, error) {
	err := validateKrakenSymbol(symbol)
	if err != nil {
		return nil, err
	}
	timeframe := domain.Timeframe1m
	if interval != "" {
		timeframe, err = domain.ParseTimeframe(interval)
		if err != nil {
			return nil, domain.ValidationError{Param: "interval", Reason: "unsupported interval " + interval}
		}
	}
	return s.ohlc(ctx, symbol, timeframe, since)
}

// Historical loads every timeframe concurrently; any failure fails the whole request.
func (s Market) Historical(ctx context.Context, symbol string) ([]byte, error) {
	err := validateKrakenSymbol(symbol)
	if err != nil {
		return nil, err
	}

	result := domain.Historical{Symbol: domain.NormalizeSymbol(symbol)}
	group, groupCtx := errgroup.WithContext(ctx)
	for _, tf := range domain.Timeframes {
		group.Go(func() error {
			data, err := s.ohlc(groupCtx, symbol, tf, "")
			if err != nil {
				return errors.WithMessagef(err, "load %s candles", tf)
			}
			ohlc := domain.Ohlc{}
			err = json.Unmarshal(data, &ohlc)
			if err != nil {
				return errors.WithMessagef(err, "unmarshal %s candles", tf)
			}
			result.Data[tf] = ohlc.Candles
			return nil
		})
	}
	err = group.Wait()
	if err != nil {
		return nil, err
	}

	return json.Marshal(result)
}

// Test pings the upstream to verify the configured key; it is never cached.
func (s Market) Test(ctx context.Context) ([]byte, error) {
	err := s.admit(ctx)
	if err != nil {
		return nil, err
	}
	data, err := s.coinGecko.Ping(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]any{
		"status":  "success",
		"message": "API key is valid",
		"data":    stdjson.RawMessage(data),
	})
}

func (s Market) ohlc(ctx context.Context, symbol string, timeframe domain.Timeframe, since string) ([]byte, error) {
	key := repository.OhlcKey(symbol, timeframe, since)
	return s.cached(ctx, "ohlc", domain.CandlesCategory, key, func(ctx context.Context) ([]byte, error) {
		ohlc, err := s.kraken.Ohlc(ctx, symbol, timeframe, since)
		if err != nil {
			return nil, err
		}
		return json.Marshal(ohlc)
	})
}

func (s Market) cached(
	ctx context.Context,
	endpoint string,
	category domain.CacheCategory,
	key string,
	fetch func(ctx context.Context) ([]byte, error),
) ([]byte, error) {
	data, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		s.metrics.CacheLookup(endpoint, true)
		s.logger.Debug(ctx, "cache hit", log.String("key", key))
		return data, nil
	case !errors.Is(err, domain.ErrCacheMiss):
		return nil, errors.WithMessage(err, "cache get")
	}
	s.metrics.CacheLookup(endpoint, false)
	s.logger.Debug(ctx, "cache miss, fetching from upstream", log.String("key", key))

	err = s.admit(ctx)
	if err != nil {
		return nil, err
	}

	data, err = fetch(ctx)
	if err != nil {
		return nil, errors.WithMessagef(err, "fetch %s", endpoint)
	}
	s.cache.Set(ctx, category, key, data)

	return data, nil
}

func (s Market) admit(ctx context.Context) error {
	result := s.limiter.TryAdmit()
	if result.Allow {
		return nil
	}
	s.metrics.RateLimitDenied(result.Scope)
	s.logger.Info(ctx, "request budget exhausted",
		log.String("scope", string(result.Scope)),
		log.String("retryAfter", result.RetryAfter.String()),
	)
	return &domain.RateLimitError{Result: result}
}

func validateKrakenSymbol(symbol string) error {
	if symbol == "" {
		return domain.NewRequiredParamError("symbol")
	}
	_, ok := upstream.KrakenPair(symbol)
	if !ok {
		return domain.ValidationError{Param: "symbol", Reason: "unsupported symbol " + domain.NormalizeSymbol(symbol)}
	}
	return nil
}
