package upstream

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/txix-open/isp-kit/http/httpcli"
	"github.com/txix-open/isp-kit/json"
	"github.com/txix-open/isp-kit/log"
)

type Config struct {
	Name         string
	BaseUrl      string
	ApiKey       string
	ApiKeyHeader string
	MaxRetries   int
	RetryDelay   time.Duration
	Timeout      time.Duration
}

type AttemptObserver interface {
	UpstreamAttempt(upstream string, outcome string)
}

// Fetcher performs GET requests against one upstream API.
// Transient failures are retried MaxRetries times with a constant delay;
// the credential is only ever sent as a header.
type Fetcher struct {
	cli      *httpcli.Client
	cfg      Config
	logger   log.Logger
	observer AttemptObserver
}

func NewFetcher(cli *httpcli.Client, cfg Config, logger log.Logger, observer AttemptObserver) Fetcher {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return Fetcher{
		cli:      cli,
		cfg:      cfg,
		logger:   logger,
		observer: observer,
	}
}

func (f Fetcher) Fetch(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	rawUrl := strings.TrimSuffix(f.cfg.BaseUrl, "/") + endpoint
	if len(params) > 0 {
		rawUrl += "?" + params.Encode()
	}

	var lastErr *Error
	for attempt := 0; attempt <= f.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			f.logger.Info(ctx, "retrying upstream request",
				log.String("upstream", f.cfg.Name),
				log.String("endpoint", endpoint),
				log.Int("attempt", attempt),
				log.Int("maxRetries", f.cfg.MaxRetries),
			)
			select {
			case <-ctx.Done():
				return nil, &Error{Kind: KindTransport, Message: "request cancelled", Cause: ctx.Err()}
			case <-time.After(f.cfg.RetryDelay):
			}
		}

		f.logger.Debug(ctx, "making upstream request", log.String("url", rawUrl))
		body, err := f.attempt(ctx, rawUrl)
		if err == nil {
			f.observer.UpstreamAttempt(f.cfg.Name, "success")
			return body, nil
		}
		f.observer.UpstreamAttempt(f.cfg.Name, err.Kind.String())
		f.logger.Error(ctx, "upstream request failed",
			log.String("upstream", f.cfg.Name),
			log.String("endpoint", endpoint),
			log.String("error", err.Error()),
		)

		lastErr = err
		if !err.Retryable() {
			break
		}
	}

	return nil, lastErr
}

func (f Fetcher) attempt(ctx context.Context, rawUrl string) ([]byte, *Error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	req := f.cli.Get(rawUrl)
	if f.cfg.ApiKey != "" {
		req = req.Header(f.cfg.ApiKeyHeader, f.cfg.ApiKey)
	}
	resp, err := req.Do(ctx)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Message: "request failed", Cause: err}
	}
	defer resp.Close()

	body, err := resp.BodyCopy()
	if err != nil {
		return nil, &Error{Kind: KindTransport, Message: "read response body", Cause: err}
	}
	if !resp.IsSuccess() {
		return nil, classifyStatus(resp.StatusCode(), body)
	}

	return body, nil
}

func errorMessage(body []byte) string {
	payload := struct {
		Error any `json:"error"`
	}{}
	err := json.Unmarshal(body, &payload)
	if err != nil || payload.Error == nil {
		return "Unknown error"
	}
	switch value := payload.Error.(type) {
	case string:
		return value
	case map[string]any:
		msg, ok := value["status"].(map[string]any)
		if ok {
			if text, ok := msg["error_message"].(string); ok {
				return text
			}
		}
	}
	return "Unknown error"
}
