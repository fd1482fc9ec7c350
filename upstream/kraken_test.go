package upstream_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"crypto-gate-service/domain"
	"crypto-gate-service/upstream"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type stubDoer struct {
	endpoint string
	params   url.Values
	body     string
	err      error
}

func (s *stubDoer) Fetch(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	s.endpoint = endpoint
	s.params = params
	if s.err != nil {
		return nil, s.err
	}
	return []byte(s.body), nil
}

func TestKrakenTicker(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	doer := &stubDoer{body: `{"error":[],"result":{"XXBTZUSD":{
		"c":["50500.0","0.1"],"v":["100.5","250.25"],"h":["51000","52000"],
		"l":["49000","48000"],"o":"50000.0"}}}`}
	ticker, err := upstream.NewKraken(doer).Ticker(context.Background(), "btc")
	require.NoError(err)
	require.EqualValues("/Ticker", doer.endpoint)
	require.EqualValues("XXBTZUSD", doer.params.Get("pair"))
	require.EqualValues("BTC", ticker.Symbol)
	require.InDelta(50500.0, ticker.Price, 1e-9)
	require.InDelta(250.25, ticker.Volume, 1e-9)
	require.InDelta(52000.0, ticker.High, 1e-9)
	require.InDelta(48000.0, ticker.Low, 1e-9)
	require.InDelta(1.0, ticker.PriceChange, 1e-9)
	require.Positive(ticker.Timestamp)
}

func TestKrakenOhlc(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	doer := &stubDoer{body: `{"error":[],"result":{"XETHZUSD":[
		[1700000000,"2000.1","2010.5","1990.0","2005.2","2001.0","12.5",42],
		[1700000060,"2005.2","2006.0","2004.0","2004.5","2005.0","3.25",7]
	],"last":1700000060}}`}
	ohlc, err := upstream.NewKraken(doer).Ohlc(context.Background(), "ETH", domain.Timeframe15m, "1699999000")
	require.NoError(err)
	require.EqualValues("15", doer.params.Get("interval"))
	require.EqualValues("1699999000", doer.params.Get("since"))
	require.EqualValues(1700000060, ohlc.LastTimestamp)
	require.Len(ohlc.Candles, 2)
	require.EqualValues(domain.Candle{
		Timestamp: 1700000000000,
		Open:      2000.1,
		High:      2010.5,
		Low:       1990.0,
		Close:     2005.2,
		Volume:    12.5,
	}, ohlc.Candles[0])
}

func TestKrakenInBodyErrorIsUpstreamError(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	doer := &stubDoer{body: `{"error":["EQuery:Unknown asset pair"]}`}
	_, err := upstream.NewKraken(doer).Ohlc(context.Background(), "SOL", domain.Timeframe1m, "")
	upstreamErr := &upstream.Error{}
	require.True(errors.As(err, &upstreamErr))
	require.EqualValues(http.StatusBadGateway, upstreamErr.Status)
	require.Contains(upstreamErr.Message, "EQuery:Unknown asset pair")
	require.False(doer.params.Has("since"))
}

func TestKrakenUnknownSymbolIsValidationError(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	doer := &stubDoer{}
	_, err := upstream.NewKraken(doer).Ticker(context.Background(), "DOGE")
	validation := domain.ValidationError{}
	require.True(errors.As(err, &validation))
	require.Empty(doer.endpoint)
}

func TestCoinIdMapping(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	require.EqualValues("bitcoin", upstream.CoinId("btc"))
	require.EqualValues("avalanche-2", upstream.CoinId(" AVAX "))
	require.EqualValues("dogecoin", upstream.CoinId("DOGECOIN"))
}

func TestCoinGeckoSimplePriceParams(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	doer := &stubDoer{body: `{"bitcoin":{"usd":1}}`}
	_, err := upstream.NewCoinGecko(doer).SimplePrice(context.Background(), []string{"BTC", "ETH"})
	require.NoError(err)
	require.EqualValues("/simple/price", doer.endpoint)
	require.EqualValues("bitcoin,ethereum", doer.params.Get("ids"))
	require.EqualValues("usd", doer.params.Get("vs_currencies"))
	require.EqualValues("true", doer.params.Get("include_24hr_change"))
}
