package otpstore

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestGenerateCodeLengthAndDigits(t *testing.T) {
	code, err := GenerateCode(6)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("expected 6 digits, got %q", code)
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			t.Fatalf("non-digit %q in code %q", r, code)
		}
	}
}

func TestMemoryStoreRoundtrip(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	if err := store.Put(ctx, "+919999000001", "123456", time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Verify(ctx, "+919999000001", "123456"); err != nil {
		t.Fatalf("verify: %v", err)
	}
	// Codes are single-use.
	if err := store.Verify(ctx, "+919999000001", "123456"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on reuse, got %v", err)
	}
}

func TestMemoryStoreMismatch(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	if err := store.Put(ctx, "+919999000001", "123456", time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Verify(ctx, "+919999000001", "654321"); !errors.Is(err, ErrMismatch) {
		t.Fatalf("expected ErrMismatch, got %v", err)
	}
	// The right code still works after a failed attempt.
	if err := store.Verify(ctx, "+919999000001", "123456"); err != nil {
		t.Fatalf("verify after mismatch: %v", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	if err := store.Put(ctx, "+919999000001", "123456", time.Millisecond); err != nil {
		t.Fatalf("put: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if err := store.Verify(ctx, "+919999000001", "123456"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired code to be gone, got %v", err)
	}
}

func TestMemoryStoreAttemptLimit(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	if err := store.Put(ctx, "+919999000001", "123456", time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}
	for i := 0; i < maxAttempts; i++ {
		if err := store.Verify(ctx, "+919999000001", "000000"); !errors.Is(err, ErrMismatch) {
			t.Fatalf("attempt %d: expected ErrMismatch, got %v", i, err)
		}
	}
	if err := store.Verify(ctx, "+919999000001", "123456"); !errors.Is(err, ErrTooManyTrys) {
		t.Fatalf("expected ErrTooManyTrys, got %v", err)
	}
}
