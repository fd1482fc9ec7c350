package series

import (
	"cmp"
	"slices"

	"crypto-gate-service/domain"
)

const (
	DefaultCapacity = 500
)

// Merge folds incoming candles into a series. A candle whose timestamp is already known
// replaces the stored one. The result is ascending by timestamp and holds at most
// capacity of the most recent candles. Inputs are not modified.
func Merge(series []domain.Candle, incoming []domain.Candle, capacity int) []domain.Candle {
	byTimestamp := make(map[int64]int, len(series)+len(incoming))
	result := make([]domain.Candle, 0, len(series)+len(incoming))
	for _, candles := range [][]domain.Candle{series, incoming} {
		for _, candle := range candles {
			idx, ok := byTimestamp[candle.Timestamp]
			if ok {
				result[idx] = candle
				continue
			}
			byTimestamp[candle.Timestamp] = len(result)
			result = append(result, candle)
		}
	}

	slices.SortFunc(result, func(a, b domain.Candle) int {
		return cmp.Compare(a.Timestamp, b.Timestamp)
	})

	if capacity > 0 && len(result) > capacity {
		result = slices.Clone(result[len(result)-capacity:])
	}
	return result
}

// History keeps one candle series per timeframe.
// It is not safe for concurrent use.
type History struct {
	capacity int
	candles  domain.CandlesByTimeframe
}

func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &History{
		capacity: capacity,
	}
}

// Replace drops every stored series and takes the given ones instead.
func (h *History) Replace(data domain.CandlesByTimeframe) {
	for _, tf := range domain.Timeframes {
		h.candles[tf] = Merge(nil, data[tf], h.capacity)
	}
}

func (h *History) Merge(tf domain.Timeframe, candles []domain.Candle) {
	h.candles[tf] = Merge(h.candles[tf], candles, h.capacity)
}

func (h *History) Candles(tf domain.Timeframe) []domain.Candle {
	return h.candles[tf]
}

func (h *History) Len(tf domain.Timeframe) int {
	return len(h.candles[tf])
}

// Snapshot returns a copy which stays valid after further merges.
func (h *History) Snapshot() domain.CandlesByTimeframe {
	out := domain.CandlesByTimeframe{}
	for _, tf := range domain.Timeframes {
		out[tf] = slices.Clone(h.candles[tf])
	}
	return out
}
