package domain

// Snapshot is the indicator state pushed to the UI after every cycle.
type Snapshot struct {
	Symbol      string              `json:"symbol"`
	Price       float64             `json:"price"`
	PriceChange float64             `json:"priceChange"`
	Rsi         map[string]*float64 `json:"rsi"`
	Ma          MovingAverage       `json:"ma"`
	Bb          *BollingerBands     `json:"bb"`
	Points      Points              `json:"points"`
	Candlestick PatternGroup        `json:"candlestick"`
	Wick        PatternGroup        `json:"wick"`
	Alerts      []string            `json:"alerts"`
}

type MovingAverage struct {
	Value     *float64 `json:"value"`
	Deviation *float64 `json:"deviation"`
}

type BollingerBands struct {
	Ma        float64 `json:"ma"`
	UpperBand float64 `json:"upperBand"`
	LowerBand float64 `json:"lowerBand"`
}

type Points struct {
	Short        float64  `json:"short"`
	Long         float64  `json:"long"`
	ShortReasons []string `json:"shortReasons"`
	LongReasons  []string `json:"longReasons"`
}

type PatternGroup struct {
	Points   float64  `json:"points"`
	Patterns []string `json:"patterns"`
}

// EmptySnapshot has every RSI timeframe present and null, and empty lists instead of nulls.
func EmptySnapshot(symbol string) Snapshot {
	rsi := make(map[string]*float64, TimeframeCount)
	for _, tf := range Timeframes {
		rsi[tf.String()] = nil
	}
	return Snapshot{
		Symbol: symbol,
		Rsi:    rsi,
		Points: Points{
			ShortReasons: []string{},
			LongReasons:  []string{},
		},
		Candlestick: PatternGroup{Patterns: []string{}},
		Wick:        PatternGroup{Patterns: []string{}},
		Alerts:      []string{},
	}
}
