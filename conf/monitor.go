package conf

import (
	"time"

	"github.com/pkg/errors"
)

const (
	defaultMonitorPort       = "3002"
	defaultGateUrl           = "http://localhost:3001"
	defaultSymbol            = "BTC"
	defaultPollIntervalInSec = 60
	defaultGateTimeoutInSec  = 30
	defaultSettingsKey       = "config"
	defaultHistoryCapacity   = 500
)

type Monitor struct {
	Port              string  `schema:"Listening port of the websocket and health endpoints"`
	GateUrl           string  `schema:"Base url of the gate"`
	Symbol            string  `schema:"Initially monitored symbol"`
	PollIntervalInSec int     `schema:"Polling period,in seconds"`
	GateTimeoutInSec  int     `schema:"Timeout of a gate request,in seconds"`
	HistoryCapacity   int     `schema:"Max candles kept per timeframe"`
	SettingsKey       string  `schema:"Key of the settings object in the store"`
	Logging           Logging `schema:"Logging settings"`
	Redis             *Redis  `schema:"Settings store,settings are kept in memory when empty"`
}

func (m Monitor) WithDefaults() Monitor {
	setDefault(&m.Port, defaultMonitorPort)
	setDefault(&m.GateUrl, defaultGateUrl)
	setDefault(&m.Symbol, defaultSymbol)
	setDefault(&m.PollIntervalInSec, defaultPollIntervalInSec)
	setDefault(&m.GateTimeoutInSec, defaultGateTimeoutInSec)
	setDefault(&m.HistoryCapacity, defaultHistoryCapacity)
	setDefault(&m.SettingsKey, defaultSettingsKey)
	return m
}

func (m Monitor) Validate() error {
	if m.PollIntervalInSec <= 0 {
		return errors.New("pollIntervalInSec must be positive")
	}
	if m.HistoryCapacity <= 0 {
		return errors.New("historyCapacity must be positive")
	}
	return errors.WithMessage(m.Redis.Validate(), "redis")
}

func (m Monitor) PollInterval() time.Duration {
	return time.Duration(m.PollIntervalInSec) * time.Second
}

func (m Monitor) GateTimeout() time.Duration {
	return time.Duration(m.GateTimeoutInSec) * time.Second
}
