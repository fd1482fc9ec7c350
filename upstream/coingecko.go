package upstream

import (
	"context"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/json"
)

const (
	CoinGeckoApiKeyHeader = "x-cg-pro-api-key"
)

var coinIds = map[string]string{ // nolint:gochecknoglobals
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
	"SOL":  "solana",
	"BNB":  "binancecoin",
	"AVAX": "avalanche-2",
}

type Doer interface {
	Fetch(ctx context.Context, endpoint string, params url.Values) ([]byte, error)
}

type CoinGecko struct {
	doer Doer
}

func NewCoinGecko(doer Doer) CoinGecko {
	return CoinGecko{
		doer: doer,
	}
}

// CoinId maps a ticker symbol to a CoinGecko coin id.
// Unknown symbols are passed through lower-cased.
func CoinId(symbol string) string {
	normalized := strings.ToUpper(strings.TrimSpace(symbol))
	id, ok := coinIds[normalized]
	if ok {
		return id
	}
	return strings.ToLower(normalized)
}

func (c CoinGecko) SimplePrice(ctx context.Context, symbols []string) ([]byte, error) {
	ids := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		ids = append(ids, CoinId(symbol))
	}
	params := url.Values{}
	params.Set("ids", strings.Join(ids, ","))
	params.Set("vs_currencies", "usd")
	params.Set("include_24hr_change", "true")

	data, err := c.doer.Fetch(ctx, "/simple/price", params)
	if err != nil {
		return nil, errors.WithMessage(err, "fetch simple price")
	}
	return data, nil
}

func (c CoinGecko) MarketChart(ctx context.Context, symbol string, days string, interval string) ([]byte, error) {
	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("days", days)
	params.Set("interval", interval)

	data, err := c.doer.Fetch(ctx, "/coins/"+url.PathEscape(CoinId(symbol))+"/market_chart", params)
	if err != nil {
		return nil, errors.WithMessage(err, "fetch market chart")
	}
	return data, nil
}

// MarketChartPrices returns the [timestamp, price] pairs of a market chart.
func (c CoinGecko) MarketChartPrices(ctx context.Context, symbol string, days string, interval string) ([][2]float64, error) {
	data, err := c.MarketChart(ctx, symbol, days, interval)
	if err != nil {
		return nil, err
	}
	chart := struct {
		Prices [][2]float64 `json:"prices"`
	}{}
	err = json.Unmarshal(data, &chart)
	if err != nil {
		return nil, errors.WithMessage(err, "unmarshal market chart")
	}
	return chart.Prices, nil
}

func (c CoinGecko) Coin(ctx context.Context, symbol string) ([]byte, error) {
	params := url.Values{}
	params.Set("localization", "false")
	params.Set("tickers", "false")
	params.Set("market_data", "true")
	params.Set("community_data", "false")
	params.Set("developer_data", "false")

	data, err := c.doer.Fetch(ctx, "/coins/"+url.PathEscape(CoinId(symbol)), params)
	if err != nil {
		return nil, errors.WithMessage(err, "fetch coin")
	}
	return data, nil
}

func (c CoinGecko) Ping(ctx context.Context) ([]byte, error) {
	data, err := c.doer.Fetch(ctx, "/ping", nil)
	if err != nil {
		return nil, errors.WithMessage(err, "ping")
	}
	return data, nil
}
