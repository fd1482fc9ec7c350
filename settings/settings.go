package settings

import (
	"fmt"
	"maps"

	"crypto-gate-service/domain"
)

const (
	MaPeriod             = "ma-period"
	MaBasePoints         = "ma-base-points"
	MaDeviationThreshold = "ma-deviation-threshold"
	MaDeviationPoints    = "ma-deviation-points"

	BbPeriod         = "bb-period"
	BbStdDev         = "bb-std-dev"
	BbTouchPoints    = "bb-touch-points"
	BbBreakPoints    = "bb-break-points"
	BbUpperThreshold = "bb-upper-threshold"
	BbLowerThreshold = "bb-lower-threshold"
	BbTouchTolerance = "bb-touch-tolerance"

	CandleMinConsecutive   = "candle-min-consecutive"
	CandleBasePoints       = "candle-base-points"
	CandleAdditionalPoints = "candle-additional-points"
	CandleAlertThreshold   = "candle-alert-threshold"
	CandleLookback         = "candle-lookback"
	LargeCandleThreshold   = "large-candle-threshold"
	LargeCandlePoints      = "large-candle-points"

	WickBodyMultiplier = "wick-body-multiplier"
	WickPoints         = "wick-points"

	RsiOverboughtAlert = "rsi-overbought-alert"
	RsiOversoldAlert   = "rsi-oversold-alert"

	RsiLevels = 4
)

type Side string

const (
	Short Side = "short"
	Long  Side = "long"
)

// Settings is the flat threshold and weight object edited by the UI.
type Settings map[string]float64

func RsiThresholdKey(tf domain.Timeframe, side Side, level int) string {
	return fmt.Sprintf("rsi-%s-%s-threshold%d", tf, side, level)
}

func RsiPointsKey(tf domain.Timeframe, side Side, level int) string {
	return fmt.Sprintf("rsi-%s-%s-points%d", tf, side, level)
}

func Defaults() Settings {
	s := Settings{
		MaPeriod:             20,
		MaBasePoints:         5,
		MaDeviationThreshold: 50,
		MaDeviationPoints:    5,

		BbPeriod:         20,
		BbStdDev:         2,
		BbTouchPoints:    3,
		BbBreakPoints:    5,
		BbUpperThreshold: 2,
		BbLowerThreshold: 2,
		BbTouchTolerance: 1,

		CandleMinConsecutive:   4,
		CandleBasePoints:       5,
		CandleAdditionalPoints: 5,
		CandleAlertThreshold:   6,
		CandleLookback:         20,
		LargeCandleThreshold:   2,
		LargeCandlePoints:      5,

		WickBodyMultiplier: 2,
		WickPoints:         3,

		RsiOverboughtAlert: 70,
		RsiOversoldAlert:   30,
	}

	shortThresholds := [RsiLevels]float64{50, 60, 70, 80}
	longThresholds := [RsiLevels]float64{40, 30, 20, 10}
	points := [RsiLevels]float64{1, 2, 3, 5}
	for _, tf := range domain.Timeframes {
		for i := range RsiLevels {
			s[RsiThresholdKey(tf, Short, i+1)] = shortThresholds[i]
			s[RsiPointsKey(tf, Short, i+1)] = points[i]
			s[RsiThresholdKey(tf, Long, i+1)] = longThresholds[i]
			s[RsiPointsKey(tf, Long, i+1)] = points[i]
		}
	}
	return s
}

var defaults = Defaults() // nolint:gochecknoglobals

// Value falls back to the default for keys missing in a stored object.
func (s Settings) Value(key string) float64 {
	value, ok := s[key]
	if ok {
		return value
	}
	return defaults[key]
}

func (s Settings) Int(key string) int {
	return int(s.Value(key))
}

// WithDefaults returns a copy holding every known key.
func (s Settings) WithDefaults() Settings {
	out := Defaults()
	maps.Copy(out, s)
	return out
}

func (s Settings) Clone() Settings {
	return maps.Clone(s)
}
