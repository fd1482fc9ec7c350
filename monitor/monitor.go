package monitor

import (
	"context"
	"strings"
	"sync"
	"time"

	"crypto-gate-service/domain"
	"crypto-gate-service/series"
	"crypto-gate-service/settings"
	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/json"
	"github.com/txix-open/isp-kit/log"
	"golang.org/x/sync/errgroup"
)

const (
	CycleSuccess = "success"
	CycleFailed  = "failed"
	CycleSkipped = "skipped"
)

type Gate interface {
	Historical(ctx context.Context, symbol string) (domain.CandlesByTimeframe, error)
	Ticker(ctx context.Context, symbol string) (*domain.Ticker, error)
	Ohlc(ctx context.Context, symbol string, interval domain.Timeframe) ([]domain.Candle, error)
}

type SettingsStore interface {
	Load(ctx context.Context) (settings.Settings, error)
	Save(ctx context.Context, settings settings.Settings) error
}

type Scorer interface {
	Evaluate(history domain.CandlesByTimeframe, cfg settings.Settings) domain.Snapshot
}

type Broadcaster interface {
	Broadcast(data []byte)
}

type CycleObserver interface {
	CycleFinished(result string, elapsed time.Duration)
}

type Config struct {
	Symbol          string
	HistoryCapacity int
}

// Monitor polls the gate, keeps the candle history of one symbol and scores it.
// Only one gate round trip runs at a time: timer ticks are skipped while a cycle is
// in flight, symbol changes wait for it.
type Monitor struct {
	gate        Gate
	store       SettingsStore
	scorer      Scorer
	broadcaster Broadcaster
	observer    CycleObserver
	logger      log.Logger

	cycleLock sync.Mutex

	stateLock sync.RWMutex
	symbol    string
	history   *series.History
	settings  settings.Settings
	snapshot  domain.Snapshot
}

func New(
	cfg Config,
	gate Gate,
	store SettingsStore,
	scorer Scorer,
	broadcaster Broadcaster,
	observer CycleObserver,
	logger log.Logger,
) *Monitor {
	symbol := normalizeSymbol(cfg.Symbol)
	return &Monitor{
		gate:        gate,
		store:       store,
		scorer:      scorer,
		broadcaster: broadcaster,
		observer:    observer,
		logger:      logger,
		symbol:      symbol,
		history:     series.NewHistory(cfg.HistoryCapacity),
		settings:    settings.Defaults(),
		snapshot:    domain.EmptySnapshot(symbol),
	}
}

// Init loads the settings and backfills the history.
// A failed backfill is logged only: the next cycle retries through the gate.
func (m *Monitor) Init(ctx context.Context) error {
	err := m.ReloadSettings(ctx)
	if err != nil {
		return errors.WithMessage(err, "load settings")
	}

	m.cycleLock.Lock()
	defer m.cycleLock.Unlock()

	symbol := m.Symbol()
	history, err := m.gate.Historical(ctx, symbol)
	if err != nil {
		m.logger.Error(ctx, "initial backfill failed", log.String("symbol", symbol), log.String("error", err.Error()))
		return nil
	}
	m.commit(symbol, history)
	m.push(ctx)
	return nil
}

// Run triggers a cycle every interval until ctx is done.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Refresh(ctx)
		}
	}
}

// Refresh runs one poll cycle unless another one is in flight.
func (m *Monitor) Refresh(ctx context.Context) string {
	if !m.cycleLock.TryLock() {
		m.logger.Debug(ctx, "cycle is in flight, tick skipped")
		m.observer.CycleFinished(CycleSkipped, 0)
		return CycleSkipped
	}
	defer m.cycleLock.Unlock()

	start := time.Now()
	err := m.cycle(ctx)
	elapsed := time.Since(start)
	if err != nil {
		m.logger.Error(ctx, "cycle failed, previous state kept", log.String("error", err.Error()))
		m.observer.CycleFinished(CycleFailed, elapsed)
		return CycleFailed
	}
	m.observer.CycleFinished(CycleSuccess, elapsed)
	m.push(ctx)
	return CycleSuccess
}

// ChangeSymbol switches to another symbol and backfills its history.
// On failure the previous symbol and history stay in place.
func (m *Monitor) ChangeSymbol(ctx context.Context, symbol string) error {
	symbol = normalizeSymbol(symbol)
	if symbol == "" {
		return domain.NewRequiredParamError("symbol")
	}

	m.cycleLock.Lock()
	defer m.cycleLock.Unlock()

	history, err := m.gate.Historical(ctx, symbol)
	if err != nil {
		return errors.WithMessagef(err, "backfill %s", symbol)
	}
	m.commit(symbol, history)

	m.logger.Info(ctx, "symbol changed", log.String("symbol", symbol))
	m.push(ctx)
	return nil
}

// ReloadSettings reads the settings wholesale and rescores the current history.
func (m *Monitor) ReloadSettings(ctx context.Context) error {
	loaded, err := m.store.Load(ctx)
	if err != nil {
		return errors.WithMessage(err, "settings store load")
	}

	m.stateLock.Lock()
	defer m.stateLock.Unlock()
	m.settings = loaded
	m.evaluate()
	return nil
}

// SaveSettings stores the given object completed with defaults for missing keys.
func (m *Monitor) SaveSettings(ctx context.Context, cfg settings.Settings) error {
	err := m.store.Save(ctx, cfg.WithDefaults())
	if err != nil {
		return errors.WithMessage(err, "settings store save")
	}
	return nil
}

func (m *Monitor) Symbol() string {
	m.stateLock.RLock()
	defer m.stateLock.RUnlock()
	return m.symbol
}

func (m *Monitor) Snapshot() domain.Snapshot {
	m.stateLock.RLock()
	defer m.stateLock.RUnlock()
	return m.snapshot
}

// cycle fetches the ticker and every timeframe; nothing is merged unless all of them succeed.
func (m *Monitor) cycle(ctx context.Context) error {
	symbol := m.Symbol()

	ticker, err := m.gate.Ticker(ctx, symbol)
	if err != nil {
		return errors.WithMessage(err, "ticker")
	}
	m.logger.Debug(ctx, "ticker received",
		log.String("symbol", symbol),
		log.Any("price", ticker.Price),
		log.Any("priceChange", ticker.PriceChange),
	)

	fetched := domain.CandlesByTimeframe{}
	group, groupCtx := errgroup.WithContext(ctx)
	for _, tf := range domain.Timeframes {
		group.Go(func() error {
			candles, err := m.gate.Ohlc(groupCtx, symbol, tf)
			if err != nil {
				return errors.WithMessagef(err, "ohlc %s", tf)
			}
			fetched[tf] = candles
			return nil
		})
	}
	err = group.Wait()
	if err != nil {
		return err
	}

	m.stateLock.Lock()
	defer m.stateLock.Unlock()
	for _, tf := range domain.Timeframes {
		m.history.Merge(tf, fetched[tf])
	}
	m.evaluate()
	return nil
}

// commit replaces the whole history, switching symbols if needed.
func (m *Monitor) commit(symbol string, history domain.CandlesByTimeframe) {
	m.stateLock.Lock()
	defer m.stateLock.Unlock()

	m.symbol = symbol
	m.history.Replace(history)
	m.evaluate()
}

// evaluate must be called with stateLock held.
func (m *Monitor) evaluate() {
	snapshot := m.scorer.Evaluate(m.history.Snapshot(), m.settings)
	snapshot.Symbol = m.symbol
	m.snapshot = snapshot
}

func (m *Monitor) push(ctx context.Context) {
	snapshot := m.Snapshot()
	data, err := json.Marshal(Update{Action: ActionUpdateData, Data: snapshot})
	if err != nil {
		m.logger.Error(ctx, errors.WithMessage(err, "marshal update"))
		return
	}
	m.broadcaster.Broadcast(data)
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
