package monitor

import (
	"context"
	"net/url"
	"strings"
	"time"

	"crypto-gate-service/domain"
	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/http/httpcli"
	"github.com/txix-open/isp-kit/json"
)

// GateClient reads market data through the gate, never from the exchange directly.
type GateClient struct {
	cli     *httpcli.Client
	baseUrl string
	timeout time.Duration
}

func NewGateClient(cli *httpcli.Client, baseUrl string, timeout time.Duration) GateClient {
	return GateClient{
		cli:     cli,
		baseUrl: strings.TrimRight(baseUrl, "/"),
		timeout: timeout,
	}
}

func (c GateClient) Historical(ctx context.Context, symbol string) (domain.CandlesByTimeframe, error) {
	resp := domain.Historical{}
	err := c.get(ctx, "/api/historical", url.Values{"symbol": {symbol}}, &resp)
	if err != nil {
		return domain.CandlesByTimeframe{}, errors.WithMessage(err, "get historical")
	}
	return resp.Data, nil
}

func (c GateClient) Ticker(ctx context.Context, symbol string) (*domain.Ticker, error) {
	resp := domain.Ticker{}
	err := c.get(ctx, "/api/ticker", url.Values{"symbol": {symbol}}, &resp)
	if err != nil {
		return nil, errors.WithMessage(err, "get ticker")
	}
	return &resp, nil
}

func (c GateClient) Ohlc(ctx context.Context, symbol string, interval domain.Timeframe) ([]domain.Candle, error) {
	resp := domain.Ohlc{}
	params := url.Values{
		"symbol":   {symbol},
		"interval": {interval.String()},
	}
	err := c.get(ctx, "/api/ohlc", params, &resp)
	if err != nil {
		return nil, errors.WithMessagef(err, "get ohlc %s", interval)
	}
	return resp.Candles, nil
}

func (c GateClient) get(ctx context.Context, path string, params url.Values, result any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	_, err := c.cli.Get(c.baseUrl + path + "?" + params.Encode()).
		JsonResponseBody(result).
		StatusCodeToError().
		Do(ctx)
	errResp := httpcli.ErrorResponse{}
	if errors.As(err, &errResp) {
		return errors.Errorf("gate responded %d: %s", errResp.StatusCode, gateError(errResp.Body))
	}
	if err != nil {
		return errors.WithMessagef(err, "call gate %s", path)
	}
	return nil
}

func gateError(body []byte) string {
	resp := struct {
		Error string `json:"error"`
	}{}
	err := json.Unmarshal(body, &resp)
	if err != nil || resp.Error == "" {
		return string(body)
	}
	return resp.Error
}
