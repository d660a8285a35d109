package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tbourn/go-form-gatekeeper/internal/domain"
)

// DefaultRedisPrefix namespaces session keys.
const DefaultRedisPrefix = "gatekeeper:session:"

// ErrUpdateConflict is returned when an optimistic update keeps losing to
// concurrent writers.
var ErrUpdateConflict = errors.New("session update conflict")

// errUnchanged aborts an update without writing.
var errUnchanged = errors.New("unchanged")

// Redis stores session state as JSON strings with a TTL. Updates use
// WATCH/MULTI so concurrent submissions on one session serialize.
type Redis struct {
	Client     *redis.Client
	Prefix     string
	TTL        time.Duration
	MaxRetries int
	Now        func() time.Time
}

// NewRedis connects to rawURL (redis:// or rediss://) and verifies the
// connection with PING.
func NewRedis(ctx context.Context, rawURL string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Redis{Client: client, Prefix: DefaultRedisPrefix, TTL: ttl, MaxRetries: 5, Now: time.Now}, nil
}

// Close releases the client.
func (r *Redis) Close() error { return r.Client.Close() }

func (r *Redis) key(sid string) string { return r.Prefix + sid }

func (r *Redis) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func decodeState(b []byte, err error) (*domain.FormSessionState, error) {
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var st domain.FormSessionState
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("decode session state: %w", err)
	}
	return &st, nil
}

func (r *Redis) Get(ctx context.Context, sid string) (*domain.FormSessionState, error) {
	return decodeState(r.Client.Get(ctx, r.key(sid)).Bytes())
}

func (r *Redis) Set(ctx context.Context, sid string, st *domain.FormSessionState) error {
	if st.Empty() {
		return r.Drop(ctx, sid)
	}
	b, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode session state: %w", err)
	}
	return r.Client.Set(ctx, r.key(sid), b, r.TTL).Err()
}

func (r *Redis) Update(ctx context.Context, sid string, fn func(*domain.FormSessionState) error) error {
	return r.update(ctx, sid, fn, r.TTL)
}

func (r *Redis) update(ctx context.Context, sid string, fn func(*domain.FormSessionState) error, ttl time.Duration) error {
	key := r.key(sid)
	retries := r.MaxRetries
	if retries <= 0 {
		retries = 1
	}
	for i := 0; i < retries; i++ {
		var fnErr error
		err := r.Client.Watch(ctx, func(tx *redis.Tx) error {
			st, err := decodeState(tx.Get(ctx, key).Bytes())
			if err != nil {
				return err
			}
			if st == nil {
				st = &domain.FormSessionState{}
			}
			if fnErr = fn(st); fnErr != nil {
				return fnErr
			}
			st.UpdatedAt = r.now()
			var payload []byte
			if !st.Empty() {
				if payload, err = json.Marshal(st); err != nil {
					return fmt.Errorf("encode session state: %w", err)
				}
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				if payload == nil {
					pipe.Del(ctx, key)
					return nil
				}
				pipe.Set(ctx, key, payload, ttl)
				return nil
			})
			return err
		}, key)
		switch {
		case fnErr != nil:
			return fnErr
		case errors.Is(err, redis.TxFailedErr):
			continue
		case err != nil:
			return fmt.Errorf("session update: %w", err)
		}
		return nil
	}
	return ErrUpdateConflict
}

func (r *Redis) Drop(ctx context.Context, sid string) error {
	return r.Client.Del(ctx, r.key(sid)).Err()
}

func (r *Redis) Sweep(ctx context.Context, prune func(*domain.FormSessionState) bool) (int, error) {
	n := 0
	iter := r.Client.Scan(ctx, 0, r.Prefix+"*", 200).Iterator()
	for iter.Next(ctx) {
		sid := strings.TrimPrefix(iter.Val(), r.Prefix)
		err := r.update(ctx, sid, func(st *domain.FormSessionState) error {
			if st.Empty() || !prune(st) {
				return errUnchanged
			}
			return nil
		}, redis.KeepTTL)
		switch {
		case errors.Is(err, errUnchanged):
		case err != nil:
			return n, err
		default:
			n++
		}
	}
	return n, iter.Err()
}
