package tests

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"crypto-gate-service/assembly"
	"crypto-gate-service/conf"
	"crypto-gate-service/domain"
	"crypto-gate-service/messaging"
	"crypto-gate-service/metrics"
	"crypto-gate-service/monitor"
	"crypto-gate-service/settings"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
	"github.com/txix-open/isp-kit/http/httpcli"
	"github.com/txix-open/isp-kit/json"
	"github.com/txix-open/isp-kit/test"
)

type MonitorTestSuite struct {
	suite.Suite
}

func (s *MonitorTestSuite) TestHealthAndMessages() {
	test, require := test.New(s.T())
	srv, svc := s.monitor(test)

	err := svc.Init(context.Background())
	require.NoError(err)

	health := domain.MonitorHealth{}
	_, err = httpcli.New().Get(srv.URL+"/health").
		JsonResponseBody(&health).
		StatusCodeToError().
		Do(context.Background())
	require.NoError(err)
	require.EqualValues("ok", health.Status)
	require.EqualValues("ETH", health.Symbol)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(err)
	defer conn.Close()

	err = conn.WriteMessage(websocket.TextMessage, []byte(`{"action":"GET_DATA","requestId":"42"}`))
	require.NoError(err)
	reply := monitor.Reply{}
	s.read(conn, &reply)
	require.True(reply.Success)
	require.EqualValues("42", reply.RequestId)
	require.EqualValues("ETH", reply.Data.Symbol)
	require.InDelta(2001.0, reply.Data.Price, 1e-9)

	require.EqualValues(monitor.CycleSuccess, svc.Refresh(context.Background()))
	update := monitor.Update{}
	s.read(conn, &update)
	require.EqualValues(monitor.ActionUpdateData, update.Action)
	require.InDelta(2002.0, update.Data.Price, 1e-9)
}

func (s *MonitorTestSuite) read(conn *websocket.Conn, result any) {
	require := s.Require()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(err)
	err = json.Unmarshal(data, result)
	require.NoError(err)
}

func (s *MonitorTestSuite) monitor(test *test.Test) (*httptest.Server, *monitor.Monitor) {
	gate := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		symbol := r.URL.Query().Get("symbol")
		var body any
		switch r.URL.Path {
		case "/api/historical":
			data := domain.CandlesByTimeframe{}
			for _, tf := range domain.Timeframes {
				data[tf] = []domain.Candle{
					{Timestamp: 0, Open: 2000, High: 2000, Low: 2000, Close: 2000},
					{Timestamp: 60000, Open: 2000, High: 2001, Low: 2000, Close: 2001},
				}
			}
			body = domain.Historical{Symbol: symbol, Data: data}
		case "/api/ticker":
			body = domain.Ticker{Symbol: symbol, Price: 2002}
		default:
			body = domain.Ohlc{Symbol: symbol, Candles: []domain.Candle{
				{Timestamp: 120000, Open: 2001, High: 2002, Low: 2001, Close: 2002},
			}}
		}
		data, _ := json.Marshal(body)
		_, _ = w.Write(data)
	}))
	test.T().Cleanup(gate.Close)

	cfg := conf.Monitor{
		GateUrl: gate.URL,
		Symbol:  "eth",
		Logging: conf.Logging{RequestLogEnable: true},
	}.WithDefaults()

	registry := metrics.NewRegistry()
	monitorMetrics := metrics.NewMonitor(registry)
	hub := messaging.NewHub(test.Logger(), monitorMetrics)
	locator := assembly.NewMonitorLocator(test.Logger(), hub, registry, monitorMetrics, httpcli.New(), settings.NewMemoryStore())
	handler, svc, _ := locator.Handler(cfg)

	srv := httptest.NewServer(handler)
	test.T().Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return srv, svc
}

func TestMonitorTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(MonitorTestSuite))
}
