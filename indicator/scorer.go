package indicator

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"

	"crypto-gate-service/domain"
	"crypto-gate-service/settings"
)

type band struct {
	threshold float64
	points    float64
}

type pattern struct {
	name   string
	points float64
}

// Scorer turns candle history into short and long points.
// Rules run in a fixed order: RSI per timeframe, moving average and Bollinger bands
// on the daily series, candle runs then wicks per timeframe.
type Scorer struct {
	rsiPeriod int
}

func NewScorer() Scorer {
	return Scorer{
		rsiPeriod: RsiPeriod,
	}
}

type evaluation struct {
	settings    settings.Settings
	snapshot    domain.Snapshot
	candlestick []pattern
	wick        []pattern
}

// Evaluate never fails: a rule without enough candles is skipped.
// The returned snapshot has no symbol set.
func (s Scorer) Evaluate(history domain.CandlesByTimeframe, cfg settings.Settings) domain.Snapshot {
	e := &evaluation{
		settings: cfg,
		snapshot: domain.EmptySnapshot(""),
	}

	for _, tf := range domain.Timeframes {
		rsi, ok := RSI(history[tf], s.rsiPeriod)
		if !ok {
			continue
		}
		e.snapshot.Rsi[tf.String()] = &rsi
		e.rsi(tf, rsi)
	}

	daily := history[domain.Timeframe1d]
	e.movingAverage(daily)
	e.bollinger(daily)

	for _, tf := range domain.Timeframes {
		e.candles(tf, history[tf])
	}
	for _, tf := range domain.Timeframes {
		e.wicks(tf, history[tf])
	}

	e.snapshot.Price, e.snapshot.PriceChange = priceAndChange(history)
	e.snapshot.Candlestick = group(e.candlestick)
	e.snapshot.Wick = group(e.wick)
	return e.snapshot
}

func (e *evaluation) rsi(tf domain.Timeframe, rsi float64) {
	shortBands := e.rsiBands(tf, settings.Short)
	slices.SortStableFunc(shortBands, func(a, b band) int {
		return cmp.Compare(b.threshold, a.threshold)
	})
	for _, b := range shortBands {
		if rsi < b.threshold {
			continue
		}
		e.short(b.points, fmt.Sprintf("RSI %s: %.2f >= %s", tf, rsi, num(b.threshold)))
		if rsi >= e.settings.Value(settings.RsiOverboughtAlert) {
			e.alert(fmt.Sprintf("RSI %s Overbought: %.2f", tf, rsi))
		}
		break
	}

	longBands := e.rsiBands(tf, settings.Long)
	slices.SortStableFunc(longBands, func(a, b band) int {
		return cmp.Compare(a.threshold, b.threshold)
	})
	for _, b := range longBands {
		if rsi > b.threshold {
			continue
		}
		e.long(b.points, fmt.Sprintf("RSI %s: %.2f <= %s", tf, rsi, num(b.threshold)))
		if rsi <= e.settings.Value(settings.RsiOversoldAlert) {
			e.alert(fmt.Sprintf("RSI %s Oversold: %.2f", tf, rsi))
		}
		break
	}
}

func (e *evaluation) rsiBands(tf domain.Timeframe, side settings.Side) []band {
	bands := make([]band, 0, settings.RsiLevels)
	for level := 1; level <= settings.RsiLevels; level++ {
		bands = append(bands, band{
			threshold: e.settings.Value(settings.RsiThresholdKey(tf, side, level)),
			points:    e.settings.Value(settings.RsiPointsKey(tf, side, level)),
		})
	}
	return bands
}

func (e *evaluation) movingAverage(daily []domain.Candle) {
	ma, ok := SMA(daily, e.settings.Int(settings.MaPeriod))
	if !ok {
		return
	}
	price := daily[len(daily)-1].Close
	deviation := DeviationPercent(price, ma)
	e.snapshot.Ma = domain.MovingAverage{Value: &ma, Deviation: &deviation}

	basePoints := e.settings.Value(settings.MaBasePoints)
	threshold := e.settings.Value(settings.MaDeviationThreshold)
	deviationPoints := e.settings.Value(settings.MaDeviationPoints)

	if price > ma {
		e.short(basePoints, fmt.Sprintf("Price above MA: $%.2f > $%.2f", price, ma))
		if deviation >= threshold {
			e.short(deviationPoints, fmt.Sprintf("Price %.2f%% above MA", deviation))
			e.alert(fmt.Sprintf("Price %.2f%% above MA (1d)", deviation))
		}
		return
	}

	e.long(basePoints, fmt.Sprintf("Price below MA: $%.2f < $%.2f", price, ma))
	if math.Abs(deviation) >= threshold {
		e.long(deviationPoints, fmt.Sprintf("Price %.2f%% below MA", math.Abs(deviation)))
		e.alert(fmt.Sprintf("Price %.2f%% below MA (1d)", math.Abs(deviation)))
	}
}

func (e *evaluation) bollinger(daily []domain.Candle) {
	bands, ok := Bollinger(daily, e.settings.Int(settings.BbPeriod), e.settings.Value(settings.BbStdDev))
	if !ok {
		return
	}
	e.snapshot.Bb = &bands

	price := daily[len(daily)-1].Close
	touchPoints := e.settings.Value(settings.BbTouchPoints)
	breakPoints := e.settings.Value(settings.BbBreakPoints)
	tolerance := e.settings.Value(settings.BbTouchTolerance)

	switch {
	case price >= bands.UpperBand:
		e.short(breakPoints, fmt.Sprintf("Price above Upper BB: $%.2f >= $%.2f", price, bands.UpperBand))
		e.alert("Price above Upper BB (1d)")
	case price <= bands.LowerBand:
		e.long(breakPoints, fmt.Sprintf("Price below Lower BB: $%.2f <= $%.2f", price, bands.LowerBand))
		e.alert("Price below Lower BB (1d)")
	case near(price, bands.UpperBand, tolerance):
		e.short(touchPoints, "Price touching Upper BB")
	case near(price, bands.LowerBand, tolerance):
		e.long(touchPoints, "Price touching Lower BB")
	}
}

func (e *evaluation) candles(tf domain.Timeframe, candles []domain.Candle) {
	minRun := e.settings.Int(settings.CandleMinConsecutive)
	if len(candles) == 0 || len(candles) < minRun {
		return
	}
	basePoints := e.settings.Value(settings.CandleBasePoints)
	additionalPoints := e.settings.Value(settings.CandleAdditionalPoints)
	alertRun := e.settings.Int(settings.CandleAlertThreshold)

	bullish, bearish := Runs(candles, e.settings.Int(settings.CandleLookback))
	if bullish >= minRun {
		name := fmt.Sprintf("%d consecutive bullish candles (%s)", bullish, tf)
		e.longPattern(&e.candlestick, name, RunPoints(bullish, minRun, basePoints, additionalPoints))
		if bullish >= alertRun {
			e.alert(name)
		}
	}
	if bearish >= minRun {
		name := fmt.Sprintf("%d consecutive bearish candles (%s)", bearish, tf)
		e.shortPattern(&e.candlestick, name, RunPoints(bearish, minRun, basePoints, additionalPoints))
		if bearish >= alertRun {
			e.alert(name)
		}
	}

	last := candles[len(candles)-1]
	size := BodyPercent(last)
	if last.Open == 0 || size < e.settings.Value(settings.LargeCandleThreshold) {
		return
	}
	largePoints := e.settings.Value(settings.LargeCandlePoints)
	if last.Bullish() {
		name := fmt.Sprintf("Large bullish candle: %.2f%% (%s)", size, tf)
		e.longPattern(&e.candlestick, name, largePoints)
		e.alert(name)
		return
	}
	name := fmt.Sprintf("Large bearish candle: %.2f%% (%s)", size, tf)
	e.shortPattern(&e.candlestick, name, largePoints)
	e.alert(name)
}

func (e *evaluation) wicks(tf domain.Timeframe, candles []domain.Candle) {
	if len(candles) == 0 {
		return
	}
	multiplier := e.settings.Value(settings.WickBodyMultiplier)
	points := e.settings.Value(settings.WickPoints)

	wicks := CandleWicks(candles[len(candles)-1])
	if wicks.LongTop(multiplier) {
		e.shortPattern(&e.wick, fmt.Sprintf("Long top wick (%s)", tf), points)
	}
	if wicks.LongBottom(multiplier) {
		e.longPattern(&e.wick, fmt.Sprintf("Long bottom wick (%s)", tf), points)
	}
}

func (e *evaluation) short(points float64, reason string) {
	e.snapshot.Points.Short += points
	e.snapshot.Points.ShortReasons = append(e.snapshot.Points.ShortReasons,
		fmt.Sprintf("%s (+%s Short)", reason, num(points)))
}

func (e *evaluation) long(points float64, reason string) {
	e.snapshot.Points.Long += points
	e.snapshot.Points.LongReasons = append(e.snapshot.Points.LongReasons,
		fmt.Sprintf("%s (+%s Long)", reason, num(points)))
}

func (e *evaluation) shortPattern(patterns *[]pattern, name string, points float64) {
	e.short(points, name)
	*patterns = append(*patterns, pattern{name: name, points: points})
}

func (e *evaluation) longPattern(patterns *[]pattern, name string, points float64) {
	e.long(points, name)
	*patterns = append(*patterns, pattern{name: name, points: points})
}

func (e *evaluation) alert(message string) {
	e.snapshot.Alerts = append(e.snapshot.Alerts, message)
}

// priceAndChange takes the price from the last 1m close and the change from the last daily open.
func priceAndChange(history domain.CandlesByTimeframe) (float64, float64) {
	minutes := history[domain.Timeframe1m]
	if len(minutes) == 0 {
		return 0, 0
	}
	price := minutes[len(minutes)-1].Close

	daily := history[domain.Timeframe1d]
	if len(daily) < 2 {
		return price, 0
	}
	return price, DeviationPercent(price, daily[len(daily)-1].Open)
}

func group(patterns []pattern) domain.PatternGroup {
	result := domain.PatternGroup{Patterns: make([]string, 0, len(patterns))}
	for _, p := range patterns {
		result.Points += p.points
		result.Patterns = append(result.Patterns, p.name)
	}
	return result
}

func near(price float64, band float64, tolerancePercent float64) bool {
	if band == 0 {
		return false
	}
	return math.Abs(price-band)/band < tolerancePercent/100
}

func num(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
