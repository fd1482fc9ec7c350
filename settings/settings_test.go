package settings_test

import (
	"context"
	"testing"

	"crypto-gate-service/domain"
	"crypto-gate-service/settings"
	"crypto-gate-service/tests"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/txix-open/isp-kit/test"
)

func TestDefaultsCoverEveryTimeframe(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	defaults := settings.Defaults()
	for _, tf := range domain.Timeframes {
		for level := 1; level <= settings.RsiLevels; level++ {
			require.Contains(defaults, settings.RsiThresholdKey(tf, settings.Short, level))
			require.Contains(defaults, settings.RsiPointsKey(tf, settings.Long, level))
		}
	}
	require.InDelta(80.0, defaults["rsi-1h-short-threshold4"], 1e-9)
	require.InDelta(5.0, defaults["rsi-1d-long-points4"], 1e-9)
	require.EqualValues(20, defaults.Int(settings.MaPeriod))
}

func TestValueFallsBackToDefault(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	s := settings.Settings{settings.MaPeriod: 50}
	require.EqualValues(50, s.Int(settings.MaPeriod))
	require.EqualValues(20, s.Int(settings.BbPeriod))

	full := s.WithDefaults()
	require.Len(full, len(settings.Defaults()))
	require.EqualValues(50, full.Int(settings.MaPeriod))
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	require := require.New(t)
	ctx := context.Background()

	store := settings.NewMemoryStore()
	loaded, err := store.Load(ctx)
	require.NoError(err)
	require.EqualValues(settings.Defaults(), loaded)

	loaded[settings.MaPeriod] = 10
	again, err := store.Load(ctx)
	require.NoError(err)
	require.EqualValues(20, again.Int(settings.MaPeriod))

	err = store.Save(ctx, loaded)
	require.NoError(err)
	again, err = store.Load(ctx)
	require.NoError(err)
	require.EqualValues(10, again.Int(settings.MaPeriod))
}

func TestRedisStore(t *testing.T) {
	t.Parallel()
	test, require := test.New(t)
	ctx := context.Background()

	cli := tests.NewRedis(test)
	key := "settings-" + uuid.NewString()
	t.Cleanup(func() {
		_ = cli.Del(context.Background(), key).Err()
	})
	store := settings.NewRedisStore(cli, key, test.Logger())

	loaded, err := store.Load(ctx)
	require.NoError(err)
	require.EqualValues(settings.Defaults(), loaded)
	require.EqualValues(1, cli.Exists(ctx, key).Val())

	loaded[settings.CandleLookback] = 30
	err = store.Save(ctx, loaded)
	require.NoError(err)

	again, err := store.Load(ctx)
	require.NoError(err)
	require.EqualValues(30, again.Int(settings.CandleLookback))
}
