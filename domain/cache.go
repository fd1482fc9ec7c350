package domain

import (
	"time"
)

type CacheCategory string

const (
	PriceCategory       CacheCategory = "price"
	MarketChartCategory CacheCategory = "market_chart"
	CoinCategory        CacheCategory = "coin"
	CandlesCategory     CacheCategory = "candles"
)

type CacheStats struct {
	Keys   int
	Hits   int64
	Misses int64
}

type CacheTtl map[CacheCategory]time.Duration

func DefaultCacheTtl() CacheTtl {
	return CacheTtl{
		PriceCategory:       30 * time.Second,
		MarketChartCategory: 120 * time.Second,
		CoinCategory:        300 * time.Second,
		CandlesCategory:     180 * time.Second,
	}
}
