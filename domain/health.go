package domain

type MinuteUsage struct {
	Current int `json:"current"`
	Max     int `json:"max"`
	// seconds until the minute window resets
	ResetIn int `json:"resetIn"`
}

type MonthlyUsage struct {
	Current   int    `json:"current"`
	Max       int    `json:"max"`
	ResetDate string `json:"resetDate"`
}

type CacheCounters struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Keys   int   `json:"keys"`
}

type CacheUsage struct {
	Keys  int           `json:"keys"`
	Stats CacheCounters `json:"stats"`
}

type PublicConfig struct {
	ApiKey string `json:"apiKey"`
	Port   string `json:"port"`
}

type HealthReport struct {
	Status       string       `json:"status"`
	Timestamp    string       `json:"timestamp"`
	RateLimit    MinuteUsage  `json:"rateLimit"`
	MonthlyUsage MonthlyUsage `json:"monthlyUsage"`
	Cache        CacheUsage   `json:"cache"`
	Config       PublicConfig `json:"config"`
}

type MonitorHealth struct {
	Status  string `json:"status"`
	Symbol  string `json:"symbol"`
	Clients int    `json:"clients"`
}
