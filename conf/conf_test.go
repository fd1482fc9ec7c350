package conf_test

import (
	"testing"
	"time"

	"crypto-gate-service/conf"
	"crypto-gate-service/domain"
	"github.com/stretchr/testify/require"
)

func TestGateDefaults(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	cfg := conf.Gate{CoinGecko: conf.CoinGecko{ApiKey: "key"}}.WithDefaults()
	require.NoError(cfg.Validate())
	require.EqualValues("3001", cfg.Port)
	require.EqualValues(300, cfg.RateLimit.MaxRequests)
	require.EqualValues(400000, cfg.RateLimit.MaxMonthly)
	require.EqualValues(time.Minute, cfg.RateLimit.Window())
	require.EqualValues(3, cfg.CoinGecko.Retries())
	require.EqualValues(2*time.Second, cfg.CoinGecko.RetryDelay())
	require.EqualValues("https://api.kraken.com/0/public", cfg.Kraken.BaseUrl)
	require.EqualValues(domain.DefaultCacheTtl(), cfg.Cache.Ttl())
	require.EqualValues(120*time.Second, cfg.Cache.SweepPeriod())
}

func TestGateKeepsExplicitValues(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	cfg := conf.Gate{
		Port:      "8080",
		CoinGecko: conf.CoinGecko{ApiKey: "key"},
		RateLimit: conf.RateLimit{MaxRequests: 10},
		Cache:     conf.Cache{PriceTtlInSec: 5},
	}.WithDefaults()
	require.EqualValues("8080", cfg.Port)
	require.EqualValues(10, cfg.RateLimit.MaxRequests)
	require.EqualValues(5*time.Second, cfg.Cache.Ttl()[domain.PriceCategory])
}

func TestGateKeepsExplicitZeroRetries(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	zero := 0
	cfg := conf.Gate{CoinGecko: conf.CoinGecko{ApiKey: "key", Upstream: conf.Upstream{MaxRetries: &zero}}}.WithDefaults()
	require.NoError(cfg.Validate())
	require.EqualValues(0, cfg.CoinGecko.Retries())
	require.EqualValues(3, cfg.Kraken.Retries())

	tooMany := 11
	cfg.Kraken.MaxRetries = &tooMany
	require.Error(cfg.Validate())
}

func TestGateValidate(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	require.Error(conf.Gate{}.WithDefaults().Validate())

	cfg := conf.Gate{CoinGecko: conf.CoinGecko{ApiKey: "key"}, RateLimit: conf.RateLimit{MaxRequests: 500, MaxMonthly: 100}}
	require.Error(cfg.WithDefaults().Validate())
}

func TestMonitorValidate(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	cfg := conf.Monitor{}.WithDefaults()
	require.NoError(cfg.Validate())
	require.EqualValues(time.Minute, cfg.PollInterval())
	require.EqualValues("config", cfg.SettingsKey)

	cfg.Redis = &conf.Redis{}
	require.Error(cfg.Validate())
}
