package domain

import (
	"github.com/txix-open/isp-kit/json"
)

type Candle struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

func (c Candle) Bullish() bool {
	return c.Close > c.Open
}

func (c Candle) Bearish() bool {
	return c.Close < c.Open
}

type Ticker struct {
	Symbol      string  `json:"symbol"`
	Price       float64 `json:"price"`
	Volume      float64 `json:"volume"`
	PriceChange float64 `json:"priceChange"`
	High        float64 `json:"high"`
	Low         float64 `json:"low"`
	Timestamp   int64   `json:"timestamp"`
}

type Ohlc struct {
	Symbol        string    `json:"symbol"`
	Interval      Timeframe `json:"interval"`
	Candles       []Candle  `json:"candles"`
	LastTimestamp int64     `json:"lastTimestamp"`
}

type CandlesByTimeframe [TimeframeCount][]Candle

func (c CandlesByTimeframe) MarshalJSON() ([]byte, error) {
	out := make(map[string][]Candle, TimeframeCount)
	for _, tf := range Timeframes {
		candles := c[tf]
		if candles == nil {
			candles = []Candle{}
		}
		out[tf.String()] = candles
	}
	return json.Marshal(out)
}

func (c *CandlesByTimeframe) UnmarshalJSON(data []byte) error {
	raw := make(map[string][]Candle)
	err := json.Unmarshal(data, &raw)
	if err != nil {
		return err
	}
	for key, candles := range raw {
		tf, err := ParseTimeframe(key)
		if err != nil {
			continue
		}
		c[tf] = candles
	}
	return nil
}

type Historical struct {
	Symbol string             `json:"symbol"`
	Data   CandlesByTimeframe `json:"data"`
}

// PriceRow is a [timestamp, open, high, low, close] row.
type PriceRow [5]float64
