package domain

import (
	"strings"

	"github.com/pkg/errors"
)

type Timeframe int

const (
	Timeframe1m Timeframe = iota
	Timeframe5m
	Timeframe15m
	Timeframe30m
	Timeframe1h
	Timeframe1d

	TimeframeCount = int(Timeframe1d) + 1
)

var (
	Timeframes = [TimeframeCount]Timeframe{ // nolint:gochecknoglobals
		Timeframe1m, Timeframe5m, Timeframe15m, Timeframe30m, Timeframe1h, Timeframe1d,
	}

	timeframeNames = [TimeframeCount]string{"1m", "5m", "15m", "30m", "1h", "1d"} // nolint:gochecknoglobals
	timeframeMins  = [TimeframeCount]int{1, 5, 15, 30, 60, 1440}                 // nolint:gochecknoglobals
)

func ParseTimeframe(value string) (Timeframe, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for i, name := range timeframeNames {
		if name == value {
			return Timeframe(i), nil
		}
	}
	return 0, errors.WithMessagef(ErrUnsupportedValue, "timeframe '%s'", value)
}

func (t Timeframe) Valid() bool {
	return t >= 0 && int(t) < TimeframeCount
}

func (t Timeframe) String() string {
	if !t.Valid() {
		return "unknown"
	}
	return timeframeNames[t]
}

// Minutes returns the interval length in minutes as the exchange expects it.
func (t Timeframe) Minutes() int {
	if !t.Valid() {
		return 0
	}
	return timeframeMins[t]
}

func (t Timeframe) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, errors.Errorf("invalid timeframe %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *Timeframe) UnmarshalText(text []byte) error {
	parsed, err := ParseTimeframe(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
