package limiter

import (
	"time"
)

// Budget is the consumption of one rate-limited window.
// Admission is exactly count < limit.
type Budget struct {
	windowStart time.Time
	count       int
	limit       int
}

func newBudget(limit int, now time.Time) Budget {
	return Budget{
		windowStart: now,
		limit:       limit,
	}
}

func (b *Budget) admits() bool {
	return b.count < b.limit
}

func (b *Budget) consume() {
	b.count++
}

func (b *Budget) reset(now time.Time) {
	b.count = 0
	b.windowStart = now
}

func (b *Budget) remaining() int {
	if b.count >= b.limit {
		return 0
	}
	return b.limit - b.count
}

func firstDayOfNextMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m+1, 1, 0, 0, 0, 0, t.Location())
}

func sameMonth(a time.Time, b time.Time) bool {
	ay, am, _ := a.Date()
	by, bm, _ := b.Date()
	return ay == by && am == bm
}
