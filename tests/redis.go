package tests

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/txix-open/isp-kit/test"
)

type Redis struct {
	address string
	redis.UniversalClient
}

// NewRedis connects to REDIS_HOST:REDIS_PORT and skips the test when nothing answers there.
func NewRedis(test *test.Test) Redis {
	redisHost := test.Config().Optional().String("REDIS_HOST", "localhost")
	redisPort := test.Config().Optional().String("REDIS_PORT", "6379")
	addr := fmt.Sprintf("%s:%s", redisHost, redisPort)
	cli := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := cli.Ping(ctx).Err()
	if err != nil {
		_ = cli.Close()
		test.T().Skipf("redis is not available at %s: %v", addr, err)
	}
	test.T().Cleanup(func() {
		_ = cli.Close()
	})

	return Redis{UniversalClient: cli, address: addr}
}

func (r Redis) Address() string {
	return r.address
}
