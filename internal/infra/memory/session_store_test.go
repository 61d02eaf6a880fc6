package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"matha-service/internal/app"
	"matha-service/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(time.Minute)

	session := app.NewSession("s1", "u1", "cat1", domain.DifficultyEasy)
	if err := session.Start(sampleQuestions(), time.Now()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != app.StatusInProgress || got.Total() != 2 {
		t.Fatalf("unexpected session %+v", got)
	}

	// Mutating the returned copy must not leak into the store.
	if _, err := got.Answer(app.Submission{Option: 2}, time.Now()); err != nil {
		t.Fatalf("answer: %v", err)
	}
	stored, _ := store.Get(ctx, "s1")
	if stored.Cursor != 0 {
		t.Fatalf("expected stored cursor 0, got %d", stored.Cursor)
	}

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session removed, got %v", err)
	}
}

func TestSessionStoreExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	store := NewSessionStoreWithClock(30*time.Minute, func() time.Time { return now })

	if err := store.Save(ctx, app.NewSession("old", "u1", "cat1", domain.DifficultyEasy)); err != nil {
		t.Fatalf("save old: %v", err)
	}
	now = now.Add(20 * time.Minute)
	if err := store.Save(ctx, app.NewSession("fresh", "u2", "cat1", domain.DifficultyEasy)); err != nil {
		t.Fatalf("save fresh: %v", err)
	}
	// Saving again restarts the TTL.
	if err := store.Save(ctx, app.NewSession("old", "u1", "cat1", domain.DifficultyEasy)); err != nil {
		t.Fatalf("resave old: %v", err)
	}

	now = now.Add(25 * time.Minute)
	if _, err := store.Get(ctx, "old"); err != nil {
		t.Fatalf("expected resaved session to live, got %v", err)
	}
	now = now.Add(10 * time.Minute)
	for _, id := range []string{"old", "fresh"} {
		if _, err := store.Get(ctx, id); !errors.Is(err, domain.ErrSessionNotFound) {
			t.Fatalf("%s: expected expiry, got %v", id, err)
		}
	}

	if err := store.Save(ctx, app.NewSession("next", "u3", "cat1", domain.DifficultyEasy)); err != nil {
		t.Fatalf("save next: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("expected expired sessions pruned, holding %d", store.Len())
	}
}

func TestSessionStoreWithoutTTLKeeps(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	store := NewSessionStoreWithClock(0, func() time.Time { return now })
	if err := store.Save(ctx, app.NewSession("s1", "u1", "cat1", domain.DifficultyEasy)); err != nil {
		t.Fatalf("save: %v", err)
	}
	now = now.Add(24 * time.Hour)
	if _, err := store.Get(ctx, "s1"); err != nil {
		t.Fatalf("expected session kept, got %v", err)
	}
}
