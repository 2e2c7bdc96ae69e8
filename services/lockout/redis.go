package lockoutsvc

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/user"
)

const keyPrefix = "login:failures"

// incrFailures starts the expiry window on the first failure only.
var incrFailures = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// RedisStore shares the failure counters between api instances. A counter expires
// `window` after the first failure.
type RedisStore struct {
	rdb         *redis.Client
	maxAttempts int
	window      time.Duration
}

var _ user.LoginLimiter = (*RedisStore)(nil)

func NewRedisStore(rdb *redis.Client, conf core.LockoutConfig) *RedisStore {
	return &RedisStore{rdb: rdb, maxAttempts: conf.MaxAttempts, window: conf.Window}
}

func redisKey(key string) string {
	return fmt.Sprintf("%s:%s", keyPrefix, key)
}

func (s *RedisStore) Allowed(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Get(ctx, redisKey(key)).Int()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "getting failures count")
	}
	return n < s.maxAttempts, nil
}

func (s *RedisStore) Failed(ctx context.Context, key string) error {
	rkey := redisKey(key)
	err := incrFailures.Run(ctx, s.rdb, []string{rkey}, s.window.Milliseconds()).Err()
	return errors.Wrap(err, "incrementing failures count")
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	return errors.Wrap(s.rdb.Del(ctx, redisKey(key)).Err(), "deleting failures count")
}

// New returns the redis store when an address is configured, otherwise the in-memory store.
func New(conf core.LockoutConfig, logger core.Logger) (user.LoginLimiter, func() error, error) {
	if conf.RedisAddr == "" {
		return NewMemoryStore(conf), func() error { return nil }, nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: conf.RedisAddr})
	var err error
	for i := 0; i < 5; i++ {
		if err = rdb.Ping(context.Background()).Err(); err == nil {
			break
		}
		logger.Warn(fmt.Sprintf("redis not ready, retrying in 2 seconds (%d/5)", i+1), err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		_ = rdb.Close()
		return nil, nil, errors.Wrap(err, "connecting to redis")
	}
	logger.Info("connected to redis", map[string]interface{}{"addr": conf.RedisAddr})
	return NewRedisStore(rdb, conf), rdb.Close, nil
}
