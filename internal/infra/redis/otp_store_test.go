package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"matha-service/internal/app"
	"matha-service/internal/domain"
)

func TestOTPStoreHonoursTTL(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewOTPStore(newClient(mr))
	ctx := context.Background()
	now := time.Now().UTC()
	rec := app.OTPRecord{PhoneNumber: "9876543210", CodeHash: "h", CreatedAt: now, ExpiresAt: now.Add(time.Minute), Attempts: 2}
	if err := store.Save(ctx, rec, time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}
	if ttl := mr.TTL("otp:phone:9876543210"); ttl != time.Minute {
		t.Fatalf("expected 1m ttl, got %v", ttl)
	}

	got, err := store.Get(ctx, "9876543210")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CodeHash != "h" || got.Attempts != 2 {
		t.Fatalf("unexpected record %+v", got)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := store.Get(ctx, "9876543210"); !errors.Is(err, domain.ErrOTPNotFound) {
		t.Fatalf("expected not found after expiry, got %v", err)
	}
}

func TestOTPStoreRejectsElapsedTTL(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewOTPStore(newClient(mr))
	if err := store.Save(context.Background(), app.OTPRecord{PhoneNumber: "9876543210"}, 0); !errors.Is(err, domain.ErrOTPExpired) {
		t.Fatalf("expected expired error, got %v", err)
	}
}
