// nolint:canonicalheader
package tests

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"crypto-gate-service/assembly"
	"crypto-gate-service/cache"
	"crypto-gate-service/conf"
	"crypto-gate-service/domain"
	"crypto-gate-service/limiter"
	"crypto-gate-service/metrics"
	"github.com/stretchr/testify/suite"
	"github.com/txix-open/isp-kit/http/httpcli"
	"github.com/txix-open/isp-kit/json"
	"github.com/txix-open/isp-kit/requestid"
	"github.com/txix-open/isp-kit/test"
)

const (
	apiKey = "CG-test-key-9876"
)

type upstreamCalls struct {
	coinGecko atomic.Int32
	kraken    atomic.Int32
}

type GateTestSuite struct {
	suite.Suite
}

func (s *GateTestSuite) TestPriceIsCachedAndCounted() {
	test, require := test.New(s.T())
	calls := &upstreamCalls{}
	srv := s.gate(test, calls, 300, http.StatusOK)
	cli := httpcli.New()

	for range 3 {
		resp := map[string]map[string]float64{}
		_, err := cli.Get(srv.URL+"/api/price?symbol=BTC").
			JsonResponseBody(&resp).
			StatusCodeToError().
			Do(context.Background())
		require.NoError(err)
		require.InDelta(50000.0, resp["bitcoin"]["usd"], 1e-9)
	}
	require.EqualValues(1, calls.coinGecko.Load())

	health := domain.HealthReport{}
	_, err := cli.Get(srv.URL+"/health").
		JsonResponseBody(&health).
		StatusCodeToError().
		Do(context.Background())
	require.NoError(err)
	require.EqualValues("ok", health.Status)
	require.EqualValues(1, health.RateLimit.Current)
	require.EqualValues(300, health.RateLimit.Max)
	require.EqualValues(1, health.MonthlyUsage.Current)
	require.EqualValues(1, health.Cache.Keys)
	require.EqualValues(2, health.Cache.Stats.Hits)
	require.EqualValues("****9876", health.Config.ApiKey)
}

func (s *GateTestSuite) TestMissingParameter() {
	test, require := test.New(s.T())
	calls := &upstreamCalls{}
	srv := s.gate(test, calls, 300, http.StatusOK)

	_, err := httpcli.New().Get(srv.URL+"/api/market_chart?symbol=BTC").
		StatusCodeToError().
		Do(context.Background())
	errResp := httpcli.ErrorResponse{}
	require.ErrorAs(err, &errResp)
	require.EqualValues(http.StatusBadRequest, errResp.StatusCode)
	require.JSONEq(`{"error":"symbol and days parameter is required"}`, string(errResp.Body))
	require.EqualValues(0, calls.coinGecko.Load())
}

func (s *GateTestSuite) TestBudgetExhausted() {
	test, require := test.New(s.T())
	calls := &upstreamCalls{}
	srv := s.gate(test, calls, 1, http.StatusOK)

	resp, err := http.Get(srv.URL + "/api/ticker?symbol=ETH") // nolint:noctx
	require.NoError(err)
	_ = resp.Body.Close()
	require.EqualValues(http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/ohlc?symbol=ETH&interval=5m") // nolint:noctx
	require.NoError(err)
	defer resp.Body.Close()
	require.EqualValues(http.StatusTooManyRequests, resp.StatusCode)
	require.NotEmpty(resp.Header.Get("Retry-After"))

	data, err := io.ReadAll(resp.Body)
	require.NoError(err)
	body := map[string]any{}
	err = json.Unmarshal(data, &body)
	require.NoError(err)
	require.EqualValues("Rate limit exceeded", body["error"])
	require.Contains(body, "resetIn")
	require.EqualValues(1, calls.kraken.Load())
}

func (s *GateTestSuite) TestUpstreamUnauthorizedIsNotRetried() {
	test, require := test.New(s.T())
	calls := &upstreamCalls{}
	srv := s.gate(test, calls, 300, http.StatusUnauthorized)

	_, err := httpcli.New().Get(srv.URL+"/api/coin?symbol=ETH").
		StatusCodeToError().
		Do(context.Background())
	errResp := httpcli.ErrorResponse{}
	require.ErrorAs(err, &errResp)
	require.EqualValues(http.StatusUnauthorized, errResp.StatusCode)
	require.EqualValues(1, calls.coinGecko.Load())
}

func (s *GateTestSuite) TestHistorical() {
	test, require := test.New(s.T())
	calls := &upstreamCalls{}
	srv := s.gate(test, calls, 300, http.StatusOK)

	requestId := requestid.Next()
	historical := domain.Historical{}
	_, err := httpcli.New().Get(srv.URL+"/api/historical?symbol=sol").
		Header("x-request-id", requestId).
		JsonResponseBody(&historical).
		StatusCodeToError().
		Do(context.Background())
	require.NoError(err)
	require.EqualValues("SOL", historical.Symbol)
	for _, tf := range domain.Timeframes {
		require.Len(historical.Data[tf], 2)
	}
	require.EqualValues(domain.TimeframeCount, calls.kraken.Load())
}

func (s *GateTestSuite) TestPreflight() {
	test, require := test.New(s.T())
	srv := s.gate(test, &upstreamCalls{}, 300, http.StatusOK)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodOptions, srv.URL+"/api/price", nil)
	require.NoError(err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(err)
	_ = resp.Body.Close()
	require.EqualValues(http.StatusNoContent, resp.StatusCode)
	require.EqualValues("*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func (s *GateTestSuite) gate(test *test.Test, calls *upstreamCalls, maxRequests int, coinGeckoStatus int) *httptest.Server {
	require := test.Assert()

	coinGecko := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.coinGecko.Add(1)
		require.EqualValues(apiKey, r.Header.Get("x-cg-pro-api-key"))
		require.Empty(r.URL.Query().Get("x_cg_pro_api_key"))
		w.WriteHeader(coinGeckoStatus)
		_, _ = w.Write([]byte(`{"bitcoin":{"usd":50000,"usd_24h_change":1.5}}`))
	}))
	test.T().Cleanup(coinGecko.Close)

	kraken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.kraken.Add(1)
		pair := r.URL.Query().Get("pair")
		switch r.URL.Path {
		case "/Ticker":
			_, _ = w.Write([]byte(`{"error":[],"result":{"` + pair + `":{"c":["2000","1"],"v":["1","2"],"h":["2100","2100"],"l":["1900","1900"],"o":"1950"}}}`))
		default:
			_, _ = w.Write([]byte(`{"error":[],"result":{"` + pair + `":[
				[1700000000,"1","2","0.5","1.5","1.2","10",3],
				[1700000060,"1.5","2","1","1.8","1.6","5",2]
			],"last":1700000060}}`))
		}
	}))
	test.T().Cleanup(kraken.Close)

	cfg := conf.Gate{
		CoinGecko: conf.CoinGecko{
			Upstream: conf.Upstream{BaseUrl: coinGecko.URL, RetryDelayInMs: 1},
			ApiKey:   apiKey,
		},
		Kraken:    conf.Upstream{BaseUrl: kraken.URL, RetryDelayInMs: 1},
		RateLimit: conf.RateLimit{MaxRequests: maxRequests},
		Logging:   conf.Logging{RequestLogEnable: true},
		Http:      conf.Http{ForwardClientRequestId: true},
	}.WithDefaults()

	budget := limiter.New(test.Logger(), limiter.Config{
		MaxPerMinute: cfg.RateLimit.MaxRequests,
		MaxPerMonth:  cfg.RateLimit.MaxMonthly,
		Window:       time.Minute,
	})
	registry := metrics.NewRegistry()
	locator := assembly.NewLocator(test.Logger(), budget, cache.New(), registry, metrics.NewGate(registry), httpcli.New())
	handler, _, err := locator.Handler(cfg)
	require.NoError(err)

	srv := httptest.NewServer(handler)
	test.T().Cleanup(srv.Close)
	return srv
}

func TestGateTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(GateTestSuite))
}
