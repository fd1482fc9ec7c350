package series_test

import (
	"testing"

	"crypto-gate-service/domain"
	"crypto-gate-service/series"
	"github.com/stretchr/testify/require"
)

func candle(ts int64, closePrice float64) domain.Candle {
	return domain.Candle{Timestamp: ts, Open: closePrice, High: closePrice, Low: closePrice, Close: closePrice}
}

func timestamps(candles []domain.Candle) []int64 {
	out := make([]int64, 0, len(candles))
	for _, c := range candles {
		out = append(out, c.Timestamp)
	}
	return out
}

func TestMergeReplacesByTimestamp(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	existing := []domain.Candle{candle(1, 10), candle(2, 20), candle(3, 30)}
	incoming := []domain.Candle{candle(4, 40), candle(3, 31)}

	merged := series.Merge(existing, incoming, 500)
	require.EqualValues([]int64{1, 2, 3, 4}, timestamps(merged))
	require.InDelta(31.0, merged[2].Close, 1e-9)
	require.InDelta(30.0, existing[2].Close, 1e-9)
}

func TestMergeSortsUnorderedInput(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	merged := series.Merge(
		[]domain.Candle{candle(5, 1), candle(1, 1)},
		[]domain.Candle{candle(3, 1), candle(2, 1), candle(3, 2)},
		500,
	)
	require.EqualValues([]int64{1, 2, 3, 5}, timestamps(merged))
	require.InDelta(2.0, merged[2].Close, 1e-9)
}

func TestMergeKeepsMostRecent(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	existing := make([]domain.Candle, 0, 500)
	for i := range 500 {
		existing = append(existing, candle(int64(i), 1))
	}
	merged := series.Merge(existing, []domain.Candle{candle(500, 1), candle(501, 1)}, 500)

	require.Len(merged, 500)
	require.EqualValues(2, merged[0].Timestamp)
	require.EqualValues(501, merged[len(merged)-1].Timestamp)
}

func TestHistoryReplaceAndSnapshot(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	history := series.NewHistory(3)
	data := domain.CandlesByTimeframe{}
	data[domain.Timeframe1m] = []domain.Candle{candle(4, 1), candle(1, 1), candle(2, 1), candle(3, 1)}
	history.Replace(data)
	require.EqualValues([]int64{2, 3, 4}, timestamps(history.Candles(domain.Timeframe1m)))
	require.Zero(history.Len(domain.Timeframe1d))

	snapshot := history.Snapshot()
	history.Merge(domain.Timeframe1m, []domain.Candle{candle(5, 1)})
	require.EqualValues([]int64{2, 3, 4}, timestamps(snapshot[domain.Timeframe1m]))
	require.EqualValues([]int64{3, 4, 5}, timestamps(history.Candles(domain.Timeframe1m)))
}
