package monitor

import (
	"context"
	"strings"

	"crypto-gate-service/domain"
	"crypto-gate-service/messaging"
	"crypto-gate-service/settings"
	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/json"
	"github.com/txix-open/isp-kit/log"
)

const (
	ActionGetInitialData = "GET_INITIAL_DATA"
	ActionGetData        = "GET_DATA"
	ActionChangeSymbol   = "CHANGE_SYMBOL"
	ActionConfigUpdated  = "CONFIG_UPDATED"
	ActionUpdateData     = "UPDATE_DATA"
)

type Message struct {
	Action    string            `json:"action"`
	RequestId string            `json:"requestId,omitempty"`
	Symbol    string            `json:"symbol,omitempty"`
	Config    settings.Settings `json:"config,omitempty"`
}

type Reply struct {
	Action    string           `json:"action"`
	RequestId string           `json:"requestId,omitempty"`
	Success   bool             `json:"success"`
	Data      *domain.Snapshot `json:"data,omitempty"`
	Error     string           `json:"error,omitempty"`
}

type Update struct {
	Action string          `json:"action"`
	Data   domain.Snapshot `json:"data"`
}

// HandleMessage answers one UI message. Every message gets exactly one reply.
func (m *Monitor) HandleMessage(ctx context.Context, sender messaging.Sender, data []byte) {
	msg := Message{}
	err := json.Unmarshal(data, &msg)
	if err != nil {
		m.reply(ctx, sender, Reply{Error: "invalid message"})
		return
	}
	ctx = log.ToContext(ctx, log.String("action", msg.Action), log.String("requestId", msg.RequestId))
	m.logger.Debug(ctx, "ws message received")

	reply := m.dispatch(ctx, msg)
	reply.Action = msg.Action
	reply.RequestId = msg.RequestId
	m.reply(ctx, sender, reply)
}

func (m *Monitor) dispatch(ctx context.Context, msg Message) Reply {
	switch msg.Action {
	case ActionGetInitialData:
		symbol := normalizeSymbol(msg.Symbol)
		if symbol != "" && symbol != m.Symbol() {
			err := m.ChangeSymbol(ctx, symbol)
			if err != nil {
				return m.failure(ctx, err, "Failed to fetch data for new symbol")
			}
		}
		return m.success()
	case ActionGetData:
		return m.success()
	case ActionChangeSymbol:
		if strings.TrimSpace(msg.Symbol) == "" {
			return Reply{Error: domain.NewRequiredParamError("symbol").Error()}
		}
		err := m.ChangeSymbol(ctx, msg.Symbol)
		if err != nil {
			return m.failure(ctx, err, "Failed to fetch data for new symbol")
		}
		return m.success()
	case ActionConfigUpdated:
		if msg.Config != nil {
			err := m.SaveSettings(ctx, msg.Config)
			if err != nil {
				return m.failure(ctx, err, "Failed to save configuration")
			}
		}
		err := m.ReloadSettings(ctx)
		if err != nil {
			return m.failure(ctx, err, "Failed to load configuration")
		}
		return m.success()
	default:
		return Reply{Error: "unknown action"}
	}
}

func (m *Monitor) success() Reply {
	snapshot := m.Snapshot()
	return Reply{Success: true, Data: &snapshot}
}

func (m *Monitor) failure(ctx context.Context, err error, message string) Reply {
	m.logger.Error(ctx, errors.WithMessage(err, strings.ToLower(message)))
	return Reply{Error: message}
}

func (m *Monitor) reply(ctx context.Context, sender messaging.Sender, reply Reply) {
	data, err := json.Marshal(reply)
	if err != nil {
		m.logger.Error(ctx, errors.WithMessage(err, "marshal reply"))
		return
	}
	if !sender.Send(data) {
		m.logger.Debug(ctx, "reply is not delivered", log.String("clientId", sender.Id()))
	}
}
