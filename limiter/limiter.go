package limiter

import (
	"context"
	"sync"
	"time"

	"crypto-gate-service/domain"
	"github.com/txix-open/isp-kit/log"
)

const (
	defaultMonthCheckInterval = time.Hour
)

type Config struct {
	MaxPerMinute int
	MaxPerMonth  int
	Window       time.Duration
}

// Limiter guards the upstream request budget of the whole process.
// The minute and month budgets are checked and consumed under one lock.
type Limiter struct {
	logger log.Logger
	window time.Duration
	now    func() time.Time

	lock   sync.Mutex
	minute Budget
	month  Budget

	monthCheckInterval time.Duration
}

type Option func(l *Limiter)

func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

func WithMonthCheckInterval(interval time.Duration) Option {
	return func(l *Limiter) {
		l.monthCheckInterval = interval
	}
}

func New(logger log.Logger, cfg Config, opts ...Option) *Limiter {
	l := &Limiter{
		logger:             logger,
		window:             cfg.Window,
		now:                time.Now,
		monthCheckInterval: defaultMonthCheckInterval,
	}
	for _, opt := range opts {
		opt(l)
	}
	now := l.now()
	l.minute = newBudget(cfg.MaxPerMinute, now)
	l.month = newBudget(cfg.MaxPerMonth, now)
	return l
}

func (l *Limiter) TryAdmit() domain.RateLimitResult {
	now := l.now()

	l.lock.Lock()
	defer l.lock.Unlock()

	if !l.minute.admits() {
		return domain.RateLimitResult{
			Allow:      false,
			Scope:      domain.MinuteScope,
			Remaining:  0,
			RetryAfter: l.retryAfter(now),
		}
	}
	if !l.month.admits() {
		return domain.RateLimitResult{
			Allow:     false,
			Scope:     domain.MonthScope,
			Remaining: 0,
			ResetDate: firstDayOfNextMonth(l.month.windowStart),
		}
	}

	l.minute.consume()
	l.month.consume()

	return domain.RateLimitResult{
		Allow:     true,
		Remaining: min(l.minute.remaining(), l.month.remaining()),
	}
}

// ResetMinute zeroes the minute budget. Called by the fixed-rate ticker.
func (l *Limiter) ResetMinute() {
	now := l.now()

	l.lock.Lock()
	used := l.minute.count
	monthly := l.month.count
	l.minute.reset(now)
	l.lock.Unlock()

	l.logger.Debug(context.Background(), "rate limit reset",
		log.Int("previousMinuteUsage", used),
		log.Int("monthlyUsage", monthly),
		log.Int("monthlyMax", l.month.limit),
	)
}

// ResetMonthIfNeeded zeroes the monthly budget once the calendar month has changed.
func (l *Limiter) ResetMonthIfNeeded() bool {
	now := l.now()

	l.lock.Lock()
	if sameMonth(l.month.windowStart, now) {
		l.lock.Unlock()
		return false
	}
	used := l.month.count
	l.month.reset(now)
	l.lock.Unlock()

	l.logger.Info(context.Background(), "monthly rate limit reset", log.Int("previousMonthUsage", used))
	return true
}

// Run drives both resets until ctx is done. The minute ticker is fixed-rate
// from the moment Run starts, not from the last admission.
func (l *Limiter) Run(ctx context.Context) {
	now := l.now()
	l.lock.Lock()
	l.minute.windowStart = now
	l.lock.Unlock()

	minuteTicker := time.NewTicker(l.window)
	defer minuteTicker.Stop()
	monthTicker := time.NewTicker(l.monthCheckInterval)
	defer monthTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-minuteTicker.C:
			l.ResetMinute()
		case <-monthTicker.C:
			l.ResetMonthIfNeeded()
		}
	}
}

func (l *Limiter) Stats() domain.RateLimitStats {
	now := l.now()

	l.lock.Lock()
	defer l.lock.Unlock()

	return domain.RateLimitStats{
		Minute: domain.BudgetStats{
			Current: l.minute.count,
			Max:     l.minute.limit,
			ResetIn: l.retryAfter(now),
		},
		Month: domain.BudgetStats{
			Current:   l.month.count,
			Max:       l.month.limit,
			ResetDate: firstDayOfNextMonth(l.month.windowStart),
		},
	}
}

func (l *Limiter) retryAfter(now time.Time) time.Duration {
	left := l.minute.windowStart.Add(l.window).Sub(now)
	if left < 0 {
		return 0
	}
	return left
}
