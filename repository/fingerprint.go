package repository

import (
	"net/url"
	"slices"
	"strings"

	"crypto-gate-service/domain"
)

// Fingerprint builds deterministic cache keys from an endpoint name and normalized params.
// Values are trimmed and lower-cased; list values are also sorted and de-duplicated.
type Fingerprint struct {
	endpoint string
	values   url.Values
}

func NewFingerprint(endpoint string) *Fingerprint {
	return &Fingerprint{
		endpoint: endpoint,
		values:   url.Values{},
	}
}

func (f *Fingerprint) Param(name string, value string) *Fingerprint {
	f.values.Set(name, normalize(value))
	return f
}

func (f *Fingerprint) List(name string, values []string) *Fingerprint {
	normalized := make([]string, 0, len(values))
	for _, value := range values {
		value = normalize(value)
		if value == "" {
			continue
		}
		normalized = append(normalized, value)
	}
	slices.Sort(normalized)
	normalized = slices.Compact(normalized)
	f.values.Set(name, strings.Join(normalized, ","))
	return f
}

func (f *Fingerprint) String() string {
	return f.endpoint + "?" + f.values.Encode()
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func PriceKey(symbol string) string {
	return NewFingerprint("price").Param("symbol", symbol).String()
}

func PricesKey(symbols []string) string {
	return NewFingerprint("prices").List("symbols", symbols).String()
}

func MarketChartKey(symbol string, days string, interval string) string {
	return NewFingerprint("market_chart").
		Param("symbol", symbol).
		Param("days", days).
		Param("interval", interval).
		String()
}

func CoinKey(symbol string) string {
	return NewFingerprint("coin").Param("symbol", symbol).String()
}

func CandlesKey(symbol string, days string) string {
	return NewFingerprint("candles").Param("symbol", symbol).Param("days", days).String()
}

func TickerKey(symbol string) string {
	return NewFingerprint("ticker").Param("symbol", symbol).String()
}

func OhlcKey(symbol string, interval domain.Timeframe, since string) string {
	if since == "" {
		since = "latest"
	}
	return NewFingerprint("ohlc").
		Param("symbol", symbol).
		Param("interval", interval.String()).
		Param("since", since).
		String()
}
