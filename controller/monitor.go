package controller

import (
	"net/http"

	"crypto-gate-service/domain"
	"crypto-gate-service/request"
	"github.com/txix-open/isp-kit/json"
)

type SymbolSource interface {
	Symbol() string
}

type ClientCounter interface {
	Count() int
}

type MonitorHealth struct {
	monitor SymbolSource
	clients ClientCounter
}

func NewMonitorHealth(monitor SymbolSource, clients ClientCounter) MonitorHealth {
	return MonitorHealth{
		monitor: monitor,
		clients: clients,
	}
}

func (c MonitorHealth) Status(ctx *request.Context) error {
	writer := ctx.ResponseWriter()
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(http.StatusOK)
	return json.NewEncoder(writer).Encode(domain.MonitorHealth{
		Status:  "ok",
		Symbol:  c.monitor.Symbol(),
		Clients: c.clients.Count(),
	})
}
