// Package otpstore holds short-lived login OTPs keyed by phone number.
// The production store is Redis; an in-memory store backs tests and
// single-node development.
package otpstore

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrNotFound    = errors.New("otp not found or expired")
	ErrMismatch    = errors.New("otp does not match")
	ErrTooManyTrys = errors.New("too many verification attempts")
)

const maxAttempts = 5

type Store interface {
	Put(ctx context.Context, phone, code string, ttl time.Duration) error
	Verify(ctx context.Context, phone, code string) error
}

// GenerateCode returns a random numeric code of the given length.
func GenerateCode(length int) (string, error) {
	if length <= 0 {
		length = 6
	}
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(code)))
	return hex.EncodeToString(sum[:])
}

// --- Redis-backed store ---

type redisStore struct {
	rdb *redis.Client
}

func NewRedis(rdb *redis.Client) Store {
	return &redisStore{rdb: rdb}
}

func otpKey(phone string) string      { return "otp:" + strings.TrimSpace(phone) }
func attemptsKey(phone string) string { return "otp_attempts:" + strings.TrimSpace(phone) }

func (s *redisStore) Put(ctx context.Context, phone, code string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, otpKey(phone), hashCode(code), ttl)
	pipe.Set(ctx, attemptsKey(phone), 0, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *redisStore) Verify(ctx context.Context, phone, code string) error {
	attempts, err := s.rdb.Incr(ctx, attemptsKey(phone)).Result()
	if err != nil {
		return fmt.Errorf("otp attempts: %w", err)
	}
	if attempts > maxAttempts {
		return ErrTooManyTrys
	}

	stored, err := s.rdb.Get(ctx, otpKey(phone)).Result()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("otp get: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(hashCode(code))) != 1 {
		return ErrMismatch
	}

	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, otpKey(phone))
	pipe.Del(ctx, attemptsKey(phone))
	_, _ = pipe.Exec(ctx)
	return nil
}

// --- In-memory store ---

type memEntry struct {
	hash      string
	expiresAt time.Time
	attempts  int
}

type memStore struct {
	mu      sync.Mutex
	entries map[string]*memEntry
}

func NewMemory() Store {
	return &memStore{entries: make(map[string]*memEntry)}
}

func (s *memStore) Put(_ context.Context, phone, code string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[strings.TrimSpace(phone)] = &memEntry{
		hash:      hashCode(code),
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (s *memStore) Verify(_ context.Context, phone, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.TrimSpace(phone)
	entry, ok := s.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(s.entries, key)
		return ErrNotFound
	}
	entry.attempts++
	if entry.attempts > maxAttempts {
		delete(s.entries, key)
		return ErrTooManyTrys
	}
	if subtle.ConstantTimeCompare([]byte(entry.hash), []byte(hashCode(code))) != 1 {
		return ErrMismatch
	}
	delete(s.entries, key)
	return nil
}
