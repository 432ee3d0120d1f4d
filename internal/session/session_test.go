package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)

	token, err := s.Create(ctx, "u1")

	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}

	userID, err := s.UserID(ctx, token)

	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if userID != "u1" {
		t.Fatalf("got %q, want u1", userID)
	}
}

func TestMemoryStoreTokensAreUnique(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)

	t1, _ := s.Create(ctx, "u1")
	t2, _ := s.Create(ctx, "u1")

	if t1 == t2 {
		t.Fatal("two sessions issued the same token")
	}
}

func TestMemoryStoreUnknownToken(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)

	_, err := s.UserID(ctx, "nope")

	if !errors.Is(err, ErrNoSession) {
		t.Fatalf("got %v, want ErrNoSession", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Nanosecond)

	token, _ := s.Create(ctx, "u1")

	time.Sleep(time.Millisecond)

	_, err := s.UserID(ctx, token)

	if !errors.Is(err, ErrNoSession) {
		t.Fatalf("got %v, want ErrNoSession", err)
	}
}

func TestMemoryStoreDestroyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)

	token, _ := s.Create(ctx, "u1")

	if err := s.Destroy(ctx, token); err != nil {
		t.Fatalf("destroy: %v", err)
	}

	// destroying an already-absent token is a no-op
	if err := s.Destroy(ctx, token); err != nil {
		t.Fatalf("second destroy: %v", err)
	}

	_, err := s.UserID(ctx, token)

	if !errors.Is(err, ErrNoSession) {
		t.Fatalf("destroyed token still resolves: %v", err)
	}
}
