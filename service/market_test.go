package service_test

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"crypto-gate-service/cache"
	"crypto-gate-service/domain"
	"crypto-gate-service/limiter"
	"crypto-gate-service/repository"
	"crypto-gate-service/service"
	"crypto-gate-service/upstream"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/txix-open/isp-kit/json"
	"github.com/txix-open/isp-kit/test"
)

type noopMetrics struct{}

func (noopMetrics) CacheLookup(endpoint string, hit bool) {}

func (noopMetrics) RateLimitDenied(scope domain.LimitScope) {}

type fakeCoinGecko struct {
	calls  atomic.Int32
	prices [][2]float64
	err    error
}

func (f *fakeCoinGecko) SimplePrice(ctx context.Context, symbols []string) ([]byte, error) {
	n := f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return []byte(fmt.Sprintf(`{"call":%d}`, n)), nil
}

func (f *fakeCoinGecko) MarketChart(ctx context.Context, symbol string, days string, interval string) ([]byte, error) {
	f.calls.Add(1)
	return []byte(`{"prices":[]}`), f.err
}

func (f *fakeCoinGecko) MarketChartPrices(ctx context.Context, symbol string, days string, interval string) ([][2]float64, error) {
	f.calls.Add(1)
	return f.prices, f.err
}

func (f *fakeCoinGecko) Coin(ctx context.Context, symbol string) ([]byte, error) {
	f.calls.Add(1)
	return []byte(`{"id":"bitcoin"}`), f.err
}

func (f *fakeCoinGecko) Ping(ctx context.Context) ([]byte, error) {
	f.calls.Add(1)
	return []byte(`{"gecko_says":"ok"}`), f.err
}

type fakeKraken struct {
	calls    atomic.Int32
	failOn   domain.Timeframe
	failWith error
}

func (f *fakeKraken) Ticker(ctx context.Context, symbol string) (*domain.Ticker, error) {
	f.calls.Add(1)
	return &domain.Ticker{Symbol: symbol, Price: 100}, nil
}

func (f *fakeKraken) Ohlc(ctx context.Context, symbol string, interval domain.Timeframe, since string) (*domain.Ohlc, error) {
	f.calls.Add(1)
	if f.failWith != nil && interval == f.failOn {
		return nil, f.failWith
	}
	return &domain.Ohlc{
		Symbol:   symbol,
		Interval: interval,
		Candles: []domain.Candle{{
			Timestamp: int64(interval.Minutes()) * 60000,
			Open:      1, High: 2, Low: 0.5, Close: 1.5, Volume: 10,
		}},
	}, nil
}

type env struct {
	market    service.Market
	coinGecko *fakeCoinGecko
	kraken    *fakeKraken
	now       *time.Time
}

func newEnv(t *testing.T, maxPerMinute int) env {
	t.Helper()
	test, _ := test.New(t)

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	responses := repository.NewResponseCache(cache.New(cache.WithClock(clock)), domain.DefaultCacheTtl())
	budget := limiter.New(test.Logger(), limiter.Config{
		MaxPerMinute: maxPerMinute,
		MaxPerMonth:  400000,
		Window:       time.Minute,
	}, limiter.WithClock(clock))
	coinGecko := &fakeCoinGecko{}
	kraken := &fakeKraken{}
	return env{
		market:    service.NewMarket(responses, budget, coinGecko, kraken, noopMetrics{}, test.Logger()),
		coinGecko: coinGecko,
		kraken:    kraken,
		now:       &now,
	}
}

func TestPriceReusesCachedResponseWithinTtl(t *testing.T) {
	t.Parallel()
	require := require.New(t)
	env := newEnv(t, 300)
	ctx := context.Background()

	first, err := env.market.Price(ctx, "BTC")
	require.NoError(err)
	*env.now = env.now.Add(29 * time.Second)
	second, err := env.market.Price(ctx, "btc")
	require.NoError(err)
	require.EqualValues(first, second)
	require.EqualValues(1, env.coinGecko.calls.Load())

	*env.now = env.now.Add(time.Second)
	third, err := env.market.Price(ctx, "BTC")
	require.NoError(err)
	require.NotEqual(first, third)
	require.EqualValues(2, env.coinGecko.calls.Load())
}

func TestBudgetDeniesAttemptAboveLimit(t *testing.T) {
	t.Parallel()
	require := require.New(t)
	env := newEnv(t, 300)
	ctx := context.Background()

	for i := range 300 {
		_, err := env.market.Coin(ctx, fmt.Sprintf("coin-%d", i))
		require.NoError(err)
	}

	_, err := env.market.Coin(ctx, "coin-300")
	rateLimitErr := &domain.RateLimitError{}
	require.True(errors.As(err, &rateLimitErr))
	require.ErrorIs(err, domain.ErrRateLimited)
	require.EqualValues(domain.MinuteScope, rateLimitErr.Result.Scope)
	require.EqualValues(300, env.coinGecko.calls.Load())

	// cached responses are served even when the budget is exhausted
	_, err = env.market.Coin(ctx, "coin-0")
	require.NoError(err)
}

func TestValidationDoesNotTouchBudget(t *testing.T) {
	t.Parallel()
	require := require.New(t)
	env := newEnv(t, 1)
	ctx := context.Background()

	_, err := env.market.MarketChart(ctx, "BTC", "", "")
	validation := domain.ValidationError{}
	require.True(errors.As(err, &validation))
	require.EqualValues("symbol and days parameter is required", validation.Error())

	_, err = env.market.Ticker(ctx, "DOGE")
	require.True(errors.As(err, &validation))

	_, err = env.market.Ohlc(ctx, "BTC", "2h", "")
	require.True(errors.As(err, &validation))
	require.EqualValues("interval", validation.Param)

	_, err = env.market.Prices(ctx, " , ")
	require.True(errors.As(err, &validation))

	_, err = env.market.Ticker(ctx, "BTC")
	require.NoError(err)
	require.EqualValues(0, env.coinGecko.calls.Load())
	require.EqualValues(1, env.kraken.calls.Load())
}

func TestUpstreamFailureIsNotCached(t *testing.T) {
	t.Parallel()
	require := require.New(t)
	env := newEnv(t, 300)
	ctx := context.Background()

	env.coinGecko.err = &upstream.Error{Kind: upstream.KindUpstream, Status: http.StatusInternalServerError, Message: "boom"}
	_, err := env.market.Price(ctx, "ETH")
	upstreamErr := &upstream.Error{}
	require.True(errors.As(err, &upstreamErr))

	env.coinGecko.err = nil
	_, err = env.market.Price(ctx, "ETH")
	require.NoError(err)
	require.EqualValues(2, env.coinGecko.calls.Load())
}

func TestHistoricalSharesOhlcEntries(t *testing.T) {
	t.Parallel()
	require := require.New(t)
	env := newEnv(t, 300)
	ctx := context.Background()

	_, err := env.market.Ohlc(ctx, "BTC", "1h", "")
	require.NoError(err)

	data, err := env.market.Historical(ctx, "btc")
	require.NoError(err)
	require.EqualValues(domain.TimeframeCount, env.kraken.calls.Load())

	historical := domain.Historical{}
	err = json.Unmarshal(data, &historical)
	require.NoError(err)
	require.EqualValues("BTC", historical.Symbol)
	for _, tf := range domain.Timeframes {
		require.Len(historical.Data[tf], 1)
		require.EqualValues(int64(tf.Minutes())*60000, historical.Data[tf][0].Timestamp)
	}
}

func TestHistoricalFailsWhenAnyTimeframeFails(t *testing.T) {
	t.Parallel()
	require := require.New(t)
	env := newEnv(t, 300)
	env.kraken.failOn = domain.Timeframe30m
	env.kraken.failWith = &upstream.Error{Kind: upstream.KindTransport, Message: "request failed"}

	_, err := env.market.Historical(context.Background(), "ETH")
	upstreamErr := &upstream.Error{}
	require.True(errors.As(err, &upstreamErr))
	require.EqualValues(upstream.KindTransport, upstreamErr.Kind)
}

func TestCandlesGroupHourly(t *testing.T) {
	t.Parallel()
	require := require.New(t)
	env := newEnv(t, 300)

	prices := make([][2]float64, 0, 30)
	for i := range 30 {
		prices = append(prices, [2]float64{float64(i * 300000), float64(100 + i%7)})
	}
	env.coinGecko.prices = prices

	data, err := env.market.Candles(context.Background(), "BTC", "")
	require.NoError(err)
	rows := make([]domain.PriceRow, 0)
	err = json.Unmarshal(data, &rows)
	require.NoError(err)
	require.Len(rows, 2)
	require.EqualValues(domain.PriceRow{0, 100, 106, 100, 104}, rows[0])
	require.EqualValues(domain.PriceRow{3600000, 105, 106, 100, 102}, rows[1])
}

func TestTestEndpointIsNeverCached(t *testing.T) {
	t.Parallel()
	require := require.New(t)
	env := newEnv(t, 2)
	ctx := context.Background()

	data, err := env.market.Test(ctx)
	require.NoError(err)
	require.JSONEq(`{"status":"success","message":"API key is valid","data":{"gecko_says":"ok"}}`, string(data))
	_, err = env.market.Test(ctx)
	require.NoError(err)
	_, err = env.market.Test(ctx)
	require.ErrorIs(err, domain.ErrRateLimited)
	require.EqualValues(2, env.coinGecko.calls.Load())
}

func TestMaskApiKey(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	require.EqualValues("****sfFT", service.MaskApiKey("CG-6JY1u9yTik2CJeR9qZJmsfFT"))
	require.EqualValues("****", service.MaskApiKey("abcd"))
	require.EqualValues("****", service.MaskApiKey("ab"))
	require.EqualValues("Not set", service.MaskApiKey(""))
}

func TestOmittedIntervalDefaultsToOneMinute(t *testing.T) {
	t.Parallel()
	require := require.New(t)
	env := newEnv(t, 300)
	ctx := context.Background()

	data, err := env.market.Ohlc(ctx, "BTC", "", "")
	require.NoError(err)
	ohlc := domain.Ohlc{}
	require.NoError(json.Unmarshal(data, &ohlc))
	require.EqualValues(domain.Timeframe1m, ohlc.Interval)

	_, err = env.market.Ohlc(ctx, "BTC", "1m", "")
	require.NoError(err)
	require.EqualValues(1, env.kraken.calls.Load())
}
