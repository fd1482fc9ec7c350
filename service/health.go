package service

import (
	"math"
	"time"

	"crypto-gate-service/domain"
)

const (
	maskedKeyVisibleChars = 4
)

type LimiterStats interface {
	Stats() domain.RateLimitStats
}

type CacheStats interface {
	Stats() domain.CacheStats
}

type Health struct {
	limiter LimiterStats
	cache   CacheStats
	apiKey  string
	port    string
	now     func() time.Time
}

func NewHealth(limiter LimiterStats, cache CacheStats, apiKey string, port string) Health {
	return Health{
		limiter: limiter,
		cache:   cache,
		apiKey:  apiKey,
		port:    port,
		now:     time.Now,
	}
}

func (s Health) Report() domain.HealthReport {
	limits := s.limiter.Stats()
	cache := s.cache.Stats()
	return domain.HealthReport{
		Status:    "ok",
		Timestamp: s.now().UTC().Format(time.RFC3339Nano),
		RateLimit: domain.MinuteUsage{
			Current: limits.Minute.Current,
			Max:     limits.Minute.Max,
			ResetIn: int(math.Ceil(limits.Minute.ResetIn.Seconds())),
		},
		MonthlyUsage: domain.MonthlyUsage{
			Current:   limits.Month.Current,
			Max:       limits.Month.Max,
			ResetDate: limits.Month.ResetDate.UTC().Format(time.RFC3339),
		},
		Cache: domain.CacheUsage{
			Keys: cache.Keys,
			Stats: domain.CacheCounters{
				Hits:   cache.Hits,
				Misses: cache.Misses,
				Keys:   cache.Keys,
			},
		},
		Config: domain.PublicConfig{
			ApiKey: MaskApiKey(s.apiKey),
			Port:   s.port,
		},
	}
}

func MaskApiKey(key string) string {
	if key == "" {
		return "Not set"
	}
	if len(key) <= maskedKeyVisibleChars {
		return "****"
	}
	return "****" + key[len(key)-maskedKeyVisibleChars:]
}
