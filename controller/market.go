package controller

import (
	"context"
	"net/http"

	"crypto-gate-service/request"
)

type MarketService interface {
	Price(ctx context.Context, symbol string) ([]byte, error)
	Prices(ctx context.Context, symbols string) ([]byte, error)
	MarketChart(ctx context.Context, symbol string, days string, interval string) ([]byte, error)
	Coin(ctx context.Context, symbol string) ([]byte, error)
	Candles(ctx context.Context, symbol string, days string) ([]byte, error)
	Ticker(ctx context.Context, symbol string) ([]byte, error)
	Ohlc(ctx context.Context, symbol string, interval string, since string) ([]byte, error)
	Historical(ctx context.Context, symbol string) ([]byte, error)
	Test(ctx context.Context) ([]byte, error)
}

type Market struct {
	service MarketService
}

func NewMarket(service MarketService) Market {
	return Market{
		service: service,
	}
}

func (c Market) Price(ctx *request.Context) error {
	data, err := c.service.Price(ctx.Context(), ctx.Param("symbol"))
	return respond(ctx, data, err)
}

func (c Market) Prices(ctx *request.Context) error {
	data, err := c.service.Prices(ctx.Context(), ctx.Param("symbols"))
	return respond(ctx, data, err)
}

func (c Market) MarketChart(ctx *request.Context) error {
	data, err := c.service.MarketChart(ctx.Context(), ctx.Param("symbol"), ctx.Param("days"), ctx.Param("interval"))
	return respond(ctx, data, err)
}

func (c Market) Coin(ctx *request.Context) error {
	data, err := c.service.Coin(ctx.Context(), ctx.Param("symbol"))
	return respond(ctx, data, err)
}

func (c Market) Candles(ctx *request.Context) error {
	data, err := c.service.Candles(ctx.Context(), ctx.Param("symbol"), ctx.Param("days"))
	return respond(ctx, data, err)
}

func (c Market) Ticker(ctx *request.Context) error {
	data, err := c.service.Ticker(ctx.Context(), ctx.Param("symbol"))
	return respond(ctx, data, err)
}

func (c Market) Ohlc(ctx *request.Context) error {
	data, err := c.service.Ohlc(ctx.Context(), ctx.Param("symbol"), ctx.Param("interval"), ctx.Param("since"))
	return respond(ctx, data, err)
}

func (c Market) Historical(ctx *request.Context) error {
	data, err := c.service.Historical(ctx.Context(), ctx.Param("symbol"))
	return respond(ctx, data, err)
}

func (c Market) Test(ctx *request.Context) error {
	data, err := c.service.Test(ctx.Context())
	return respond(ctx, data, err)
}

func respond(ctx *request.Context, data []byte, err error) error {
	if err != nil {
		return mapError(err)
	}
	writer := ctx.ResponseWriter()
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(http.StatusOK)
	_, err = writer.Write(data)
	return err
}
