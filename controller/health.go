package controller

import (
	"net/http"

	"crypto-gate-service/domain"
	"crypto-gate-service/request"
	"github.com/txix-open/isp-kit/json"
)

type HealthService interface {
	Report() domain.HealthReport
}

type Health struct {
	service HealthService
}

func NewHealth(service HealthService) Health {
	return Health{
		service: service,
	}
}

func (c Health) Status(ctx *request.Context) error {
	writer := ctx.ResponseWriter()
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(http.StatusOK)
	return json.NewEncoder(writer).Encode(c.service.Report())
}
