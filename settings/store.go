package settings

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/txix-open/isp-kit/json"
	"github.com/txix-open/isp-kit/log"
)

// Store reads and writes the settings object wholesale.
// Load writes the defaults back when nothing is stored yet.
type Store interface {
	Load(ctx context.Context) (Settings, error)
	Save(ctx context.Context, settings Settings) error
}

type MemoryStore struct {
	lock *sync.Mutex
	data Settings
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		lock: &sync.Mutex{},
	}
}

func (s *MemoryStore) Load(ctx context.Context) (Settings, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.data == nil {
		s.data = Defaults()
	}
	return s.data.Clone(), nil
}

func (s *MemoryStore) Save(ctx context.Context, settings Settings) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.data = settings.Clone()
	return nil
}

type RedisStore struct {
	cli    redis.UniversalClient
	key    string
	logger log.Logger
}

func NewRedisStore(cli redis.UniversalClient, key string, logger log.Logger) RedisStore {
	return RedisStore{
		cli:    cli,
		key:    key,
		logger: logger,
	}
}

func (s RedisStore) Load(ctx context.Context) (Settings, error) {
	data, err := s.cli.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		defaults := Defaults()
		err = s.Save(ctx, defaults)
		if err != nil {
			return nil, errors.WithMessage(err, "save default settings")
		}
		s.logger.Info(ctx, "default settings saved", log.String("key", s.key))
		return defaults, nil
	}
	if err != nil {
		return nil, errors.WithMessagef(err, "redis get %s", s.key)
	}

	result := Settings{}
	err = json.Unmarshal(data, &result)
	if err != nil {
		return nil, errors.WithMessagef(err, "unmarshal settings from %s", s.key)
	}
	return result, nil
}

func (s RedisStore) Save(ctx context.Context, settings Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return errors.WithMessage(err, "marshal settings")
	}
	err = s.cli.Set(ctx, s.key, data, 0).Err()
	if err != nil {
		return errors.WithMessagef(err, "redis set %s", s.key)
	}
	return nil
}
