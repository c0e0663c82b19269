package redisad

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"hotel_reservations/internal/adapters/observability"
	"hotel_reservations/internal/domain"
)

// Sessions keeps view states in redis so every API replica sees the same
// session. Values are JSON under session:<id>.
type Sessions struct {
	c       *redis.Client
	ttl     time.Duration
	lockTTL time.Duration
	poll    time.Duration
}

func New(addr, pass string, db int, ttl time.Duration) *Sessions {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}), ttl)
}

func NewWithClient(c *redis.Client, ttl time.Duration) *Sessions {
	return &Sessions{c: c, ttl: ttl, lockTTL: time.Minute, poll: 25 * time.Millisecond}
}

// WithLockTTL bounds how long a crashed holder can keep a session locked.
// It must exceed the longest request.
func (r *Sessions) WithLockTTL(d time.Duration) *Sessions {
	r.lockTTL = d
	return r
}

func key(id string) string { return "session:" + id }
func lockKey(id string) string { return "session-lock:" + id }

// unlockScript deletes the lock only while it still holds our token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0`)

// Lock serialises one session across API replicas.
func (r *Sessions) Lock(ctx context.Context, id string) (func(), error) {
	token := uuid.NewString()
	t := time.NewTicker(r.poll)
	defer t.Stop()
	for {
		ok, err := r.c.SetNX(ctx, lockKey(id), token, r.lockTTL).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			observability.ObserveSession("redis", "lock")
			return func() {
				if err := unlockScript.Run(context.Background(), r.c, []string{lockKey(id)}, token).Err(); err != nil {
					log.Warn().Err(err).Str("session", id).Msg("session unlock failed")
				}
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("lock session %s: %w", id, ctx.Err())
		case <-t.C:
		}
	}
}

func (r *Sessions) Get(ctx context.Context, id string) (domain.ViewState, bool, error) {
	v, err := r.c.Get(ctx, key(id)).Bytes()
	if err == redis.Nil {
		observability.ObserveSession("redis", "miss")
		return domain.ViewState{}, false, nil
	}
	if err != nil {
		return domain.ViewState{}, false, err
	}
	observability.ObserveSession("redis", "hit")
	var st domain.ViewState
	if err := json.Unmarshal(v, &st); err != nil {
		return domain.ViewState{}, false, err
	}
	return st, true, nil
}

func (r *Sessions) Set(ctx context.Context, id string, v domain.ViewState) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	observability.ObserveSession("redis", "set")
	return r.c.Set(ctx, key(id), b, r.ttl).Err()
}

func (r *Sessions) Del(ctx context.Context, id string) error {
	observability.ObserveSession("redis", "del")
	return r.c.Del(ctx, key(id)).Err()
}

func (r *Sessions) Ping(ctx context.Context) error { return r.c.Ping(ctx).Err() }
