// Package session keeps authentication sessions in Redis. A session is an
// opaque random token mapped to the owning account uid, expiring with the
// key's TTL. The auth service holds the only cached copy; Redis owns the
// lifecycle.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/qalopay/school-payments/internal/config"
)

// Session is the stored record behind one opaque token.
type Session struct {
	Token     string    `json:"token"`
	UserUID   string    `json:"user_uid"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store wraps the Redis client holding the sessions.
type Store struct {
	db *redis.Client
}

// New connects to Redis and verifies the connection with a ping.
func New(ctx context.Context, cfg config.RedisConnection) (*Store, error) {
	const op = "session.New"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Store{db: db}, nil
}

// Create issues a fresh session for the account and stores it with the
// given TTL.
func (s *Store) Create(ctx context.Context, userUID string, ttl time.Duration) (*Session, error) {
	const op = "session.Create"
	token, err := newToken()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sess := &Session{
		Token:     token,
		UserUID:   userUID,
		ExpiresAt: time.Now().UTC().Add(ttl),
	}
	body, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.db.Set(ctx, key(token), body, ttl).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sess, nil
}

// Get returns the session behind the token, or nil when it does not exist
// or has expired. A plain miss is not an error.
func (s *Store) Get(ctx context.Context, token string) (*Session, error) {
	const op = "session.Get"
	val, err := s.db.Get(ctx, key(token)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var sess Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &sess, nil
}

// Refresh extends the session's TTL, keeping the same token. Returns the
// updated session, or nil when the token is gone.
func (s *Store) Refresh(ctx context.Context, token string, ttl time.Duration) (*Session, error) {
	const op = "session.Refresh"
	sess, err := s.Get(ctx, token)
	if err != nil || sess == nil {
		return sess, err
	}
	sess.ExpiresAt = time.Now().UTC().Add(ttl)
	body, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.db.Set(ctx, key(token), body, ttl).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sess, nil
}

// Delete removes the session. Deleting a missing token is not an error.
func (s *Store) Delete(ctx context.Context, token string) error {
	const op = "session.Delete"
	if err := s.db.Del(ctx, key(token)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func key(token string) string {
	return "session:" + token
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
