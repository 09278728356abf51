package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists progress records with a TTL.
type Store interface {
	// Create writes a new record. It fails with ErrConflict if id is taken.
	Create(ctx context.Context, p *Progress, ttl time.Duration) error
	Get(ctx context.Context, id string) (*Progress, error)
	// Update applies fn to the current record and writes it back with ttl. At
	// most one concurrent Update for the same id commits; losers retry against
	// the fresh record and give up with ErrConflict. An error from fn aborts
	// without writing.
	Update(ctx context.Context, id string, ttl time.Duration, fn func(*Progress) error) (*Progress, error)
	Delete(ctx context.Context, id string) error

	// SetUserSession points userID at its in-flight session.
	SetUserSession(ctx context.Context, userID, sessionID string, ttl time.Duration) error
	// UserSession returns the session id for userID, or ErrNotFound.
	UserSession(ctx context.Context, userID string) (string, error)
	ClearUserSession(ctx context.Context, userID string) error

	Ping(ctx context.Context) error
}

const (
	sessionKeyPrefix = "quiz:session:"
	userKeyPrefix    = "quiz:user:"
	maxTxRetries     = 5
)

func sessionKey(id string) string  { return sessionKeyPrefix + id }
func userKey(userID string) string { return userKeyPrefix + userID }

// ─── REDIS ────────────────────────────────────────────────────────────────────

// RedisStore keeps each session as a JSON string under quiz:session:<id>.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an open client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Create(ctx context.Context, p *Progress, ttl time.Duration) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("session: marshal %s: %w", p.ID, err)
	}
	ok, err := s.client.SetNX(ctx, sessionKey(p.ID), data, ttl).Result()
	if err != nil {
		return fmt.Errorf("session: create %s: %w", p.ID, err)
	}
	if !ok {
		return fmt.Errorf("%w: id %s already exists", ErrConflict, p.ID)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Progress, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: get %s: %w", id, err)
	}
	var p Progress
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("session: decode %s: %w", id, err)
	}
	return &p, nil
}

// Update runs fn inside WATCH/MULTI so a concurrent write to the same key
// aborts this transaction and the read-modify-write is retried.
func (s *RedisStore) Update(ctx context.Context, id string, ttl time.Duration, fn func(*Progress) error) (*Progress, error) {
	key := sessionKey(id)
	var out *Progress

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var p Progress
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("decode: %w", err)
		}
		if err := fn(&p); err != nil {
			return err
		}

		updated, err := json.Marshal(&p)
		if err != nil {
			return fmt.Errorf("marshal: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, ttl)
			return nil
		})
		if err == nil {
			out = &p
		}
		return err
	}

	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		switch {
		case err == nil:
			return out, nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		case errors.Is(err, ErrNotFound):
			return nil, ErrNotFound
		default:
			return nil, fmt.Errorf("session: update %s: %w", id, err)
		}
	}
	return nil, fmt.Errorf("%w: %s after %d attempts", ErrConflict, id, maxTxRetries)
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("session: delete %s: %w", id, err)
	}
	return nil
}

func (s *RedisStore) SetUserSession(ctx context.Context, userID, sessionID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, userKey(userID), sessionID, ttl).Err(); err != nil {
		return fmt.Errorf("session: index user %s: %w", userID, err)
	}
	return nil
}

func (s *RedisStore) UserSession(ctx context.Context, userID string) (string, error) {
	id, err := s.client.Get(ctx, userKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("session: lookup user %s: %w", userID, err)
	}
	return id, nil
}

func (s *RedisStore) ClearUserSession(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, userKey(userID)).Err(); err != nil {
		return fmt.Errorf("session: clear user %s: %w", userID, err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
