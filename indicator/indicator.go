package indicator

import (
	"math"

	"crypto-gate-service/domain"
)

const (
	RsiPeriod = 14

	zeroLossSubstitute = 0.001
)

// RSI uses Wilder smoothing seeded with the simple mean of the first period changes.
// The result is undefined below period candles.
func RSI(candles []domain.Candle, period int) (float64, bool) {
	if period <= 0 || len(candles) < period {
		return 0, false
	}

	n := float64(period)
	seed := min(period, len(candles)-1)
	avgGain, avgLoss := 0.0, 0.0
	for i := 1; i <= seed; i++ {
		gain, loss := move(candles[i-1], candles[i])
		avgGain += gain
		avgLoss += loss
	}
	avgGain /= n
	avgLoss /= n

	for i := period + 1; i < len(candles); i++ {
		gain, loss := move(candles[i-1], candles[i])
		avgGain = (avgGain*(n-1) + gain) / n
		avgLoss = (avgLoss*(n-1) + loss) / n
	}

	if avgLoss == 0 {
		avgLoss = zeroLossSubstitute
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}

func move(prev domain.Candle, next domain.Candle) (float64, float64) {
	change := next.Close - prev.Close
	if change > 0 {
		return change, 0
	}
	return 0, -change
}

// SMA is the mean close of the last period candles.
func SMA(candles []domain.Candle, period int) (float64, bool) {
	if period <= 0 || len(candles) < period {
		return 0, false
	}
	sum := 0.0
	for _, c := range candles[len(candles)-period:] {
		sum += c.Close
	}
	return sum / float64(period), true
}

// DeviationPercent is how far value is from base, in percent of base.
func DeviationPercent(value float64, base float64) float64 {
	if base == 0 {
		return 0
	}
	return (value - base) / base * 100
}

// Bollinger uses the population standard deviation of the last period closes.
func Bollinger(candles []domain.Candle, period int, k float64) (domain.BollingerBands, bool) {
	ma, ok := SMA(candles, period)
	if !ok {
		return domain.BollingerBands{}, false
	}
	variance := 0.0
	for _, c := range candles[len(candles)-period:] {
		variance += (c.Close - ma) * (c.Close - ma)
	}
	sd := math.Sqrt(variance / float64(period))
	return domain.BollingerBands{
		Ma:        ma,
		UpperBand: ma + k*sd,
		LowerBand: ma - k*sd,
	}, true
}

// Runs counts consecutive bullish and bearish candles ending at the last of the
// lookback most recent candles. At most one of the counts is non-zero.
func Runs(candles []domain.Candle, lookback int) (int, int) {
	recent := Recent(candles, lookback)
	bullish, bearish := 0, 0
	for i := len(recent) - 1; i >= 0 && recent[i].Bullish(); i-- {
		bullish++
	}
	for i := len(recent) - 1; i >= 0 && recent[i].Bearish(); i-- {
		bearish++
	}
	return bullish, bearish
}

// RunPoints scales linearly with the run length above the minimum.
func RunPoints(run int, minRun int, base float64, additional float64) float64 {
	return base + float64(run-minRun)*additional
}

func Recent(candles []domain.Candle, lookback int) []domain.Candle {
	if lookback <= 0 || len(candles) <= lookback {
		return candles
	}
	return candles[len(candles)-lookback:]
}

// BodyPercent is the candle body in percent of its open.
func BodyPercent(c domain.Candle) float64 {
	if c.Open == 0 {
		return 0
	}
	return math.Abs(c.Close-c.Open) / c.Open * 100
}

type Wicks struct {
	Top    float64
	Bottom float64
	Body   float64
}

func CandleWicks(c domain.Candle) Wicks {
	return Wicks{
		Top:    c.High - math.Max(c.Open, c.Close),
		Bottom: math.Min(c.Open, c.Close) - c.Low,
		Body:   math.Abs(c.Close - c.Open),
	}
}

func (w Wicks) LongTop(multiplier float64) bool {
	return w.Top > w.Body*multiplier
}

func (w Wicks) LongBottom(multiplier float64) bool {
	return w.Bottom > w.Body*multiplier
}
