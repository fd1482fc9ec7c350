package domain

import (
	"time"
)

type LimitScope string

const (
	MinuteScope LimitScope = "minute"
	MonthScope  LimitScope = "month"
)

type RateLimitResult struct {
	Allow      bool
	Scope      LimitScope
	Remaining  int
	RetryAfter time.Duration
	ResetDate  time.Time
}

type BudgetStats struct {
	Current   int
	Max       int
	ResetIn   time.Duration
	ResetDate time.Time
}

type RateLimitStats struct {
	Minute BudgetStats
	Month  BudgetStats
}
