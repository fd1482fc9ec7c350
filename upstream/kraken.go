package upstream

import (
	"context"
	stdjson "encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"crypto-gate-service/domain"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/txix-open/isp-kit/json"
)

var krakenPairs = map[string]string{ // nolint:gochecknoglobals
	"BTC":  "XXBTZUSD",
	"ETH":  "XETHZUSD",
	"SOL":  "SOLUSD",
	"BNB":  "BNBUSD",
	"AVAX": "AVAXUSD",
}

func KrakenPair(symbol string) (string, bool) {
	pair, ok := krakenPairs[domain.NormalizeSymbol(symbol)]
	return pair, ok
}

type krakenResponse struct {
	Error  []string                      `json:"error"`
	Result map[string]stdjson.RawMessage `json:"result"`
}

type krakenTicker struct {
	Close  []decimal.Decimal `json:"c"`
	Volume []decimal.Decimal `json:"v"`
	High   []decimal.Decimal `json:"h"`
	Low    []decimal.Decimal `json:"l"`
	Open   decimal.Decimal   `json:"o"`
}

type Kraken struct {
	doer Doer
	now  func() time.Time
}

func NewKraken(doer Doer) Kraken {
	return Kraken{
		doer: doer,
		now:  time.Now,
	}
}

func (k Kraken) Ticker(ctx context.Context, symbol string) (*domain.Ticker, error) {
	symbol = domain.NormalizeSymbol(symbol)
	pair, err := k.pair(symbol)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("pair", pair)
	result, err := k.fetch(ctx, "/Ticker", params)
	if err != nil {
		return nil, errors.WithMessage(err, "fetch ticker")
	}

	raw, ok := pairEntry(result, pair)
	if !ok {
		return nil, malformed("ticker for %s is missing", pair)
	}
	ticker := krakenTicker{}
	err = json.Unmarshal(raw, &ticker)
	if err != nil {
		return nil, errors.WithMessage(err, "unmarshal ticker")
	}
	if len(ticker.Close) < 1 || len(ticker.Volume) < 2 || len(ticker.High) < 2 || len(ticker.Low) < 2 {
		return nil, malformed("ticker for %s is incomplete", pair)
	}

	price := ticker.Close[0]
	change := decimal.Zero
	if !ticker.Open.IsZero() {
		change = price.Sub(ticker.Open).Div(ticker.Open).Mul(decimal.NewFromInt(100))
	}

	return &domain.Ticker{
		Symbol:      symbol,
		Price:       price.InexactFloat64(),
		Volume:      ticker.Volume[1].InexactFloat64(),
		PriceChange: change.InexactFloat64(),
		High:        ticker.High[1].InexactFloat64(),
		Low:         ticker.Low[1].InexactFloat64(),
		Timestamp:   k.now().UnixMilli(),
	}, nil
}

func (k Kraken) Ohlc(ctx context.Context, symbol string, interval domain.Timeframe, since string) (*domain.Ohlc, error) {
	symbol = domain.NormalizeSymbol(symbol)
	pair, err := k.pair(symbol)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("pair", pair)
	params.Set("interval", strconv.Itoa(interval.Minutes()))
	if since != "" {
		params.Set("since", since)
	}
	result, err := k.fetch(ctx, "/OHLC", params)
	if err != nil {
		return nil, errors.WithMessagef(err, "fetch ohlc %s", interval)
	}

	raw, ok := pairEntry(result, pair)
	if !ok {
		return nil, malformed("ohlc for %s is missing", pair)
	}
	rows := make([][]stdjson.RawMessage, 0)
	err = json.Unmarshal(raw, &rows)
	if err != nil {
		return nil, errors.WithMessage(err, "unmarshal ohlc rows")
	}
	candles := make([]domain.Candle, 0, len(rows))
	for _, row := range rows {
		candle, err := parseOhlcRow(row)
		if err != nil {
			return nil, err
		}
		candles = append(candles, candle)
	}

	var last int64
	if lastRaw, ok := result["last"]; ok {
		err = json.Unmarshal(lastRaw, &last)
		if err != nil {
			return nil, errors.WithMessage(err, "unmarshal ohlc last")
		}
	}

	return &domain.Ohlc{
		Symbol:        symbol,
		Interval:      interval,
		Candles:       candles,
		LastTimestamp: last,
	}, nil
}

func (k Kraken) pair(symbol string) (string, error) {
	pair, ok := KrakenPair(symbol)
	if !ok {
		return "", domain.ValidationError{Param: "symbol", Reason: "unsupported symbol " + symbol}
	}
	return pair, nil
}

func (k Kraken) fetch(ctx context.Context, endpoint string, params url.Values) (map[string]stdjson.RawMessage, error) {
	data, err := k.doer.Fetch(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	resp := krakenResponse{}
	err = json.Unmarshal(data, &resp)
	if err != nil {
		return nil, errors.WithMessage(err, "unmarshal kraken response")
	}
	if len(resp.Error) > 0 {
		return nil, &Error{
			Kind:    KindUpstream,
			Status:  http.StatusBadGateway,
			Message: "Kraken API error: " + strings.Join(resp.Error, "; "),
		}
	}
	return resp.Result, nil
}

// pairEntry looks the pair up by name, falling back to the only non "last" key
// since Kraken may answer with an alternative pair name.
func pairEntry(result map[string]stdjson.RawMessage, pair string) (stdjson.RawMessage, bool) {
	raw, ok := result[pair]
	if ok {
		return raw, true
	}
	for key, value := range result {
		if key != "last" {
			return value, true
		}
	}
	return nil, false
}

// [time, open, high, low, close, vwap, volume, count]
func parseOhlcRow(row []stdjson.RawMessage) (domain.Candle, error) {
	if len(row) < 7 {
		return domain.Candle{}, malformed("ohlc row has %d fields", len(row))
	}
	var ts int64
	err := json.Unmarshal(row[0], &ts)
	if err != nil {
		return domain.Candle{}, errors.WithMessage(err, "unmarshal ohlc time")
	}
	values := make([]float64, 0, 5)
	for _, idx := range []int{1, 2, 3, 4, 6} {
		var value decimal.Decimal
		err = value.UnmarshalJSON(row[idx])
		if err != nil {
			return domain.Candle{}, errors.WithMessagef(err, "unmarshal ohlc field %d", idx)
		}
		values = append(values, value.InexactFloat64())
	}
	return domain.Candle{
		Timestamp: ts * 1000,
		Open:      values[0],
		High:      values[1],
		Low:       values[2],
		Close:     values[3],
		Volume:    values[4],
	}, nil
}

func malformed(format string, args ...any) *Error {
	return &Error{
		Kind:    KindUpstream,
		Status:  http.StatusBadGateway,
		Message: "malformed upstream response: " + fmt.Sprintf(format, args...),
	}
}
