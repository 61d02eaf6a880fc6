package app_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"matha-service/internal/app"
	"matha-service/internal/domain"
)

var errStoreDown = errors.New("store unavailable")

func mustUpsert(t *testing.T, store app.DocumentStore, collection, id string, doc any) {
	t.Helper()
	if err := store.Upsert(context.Background(), collection, id, doc); err != nil {
		t.Fatalf("upsert %s/%s: %v", collection, id, err)
	}
}

// failingStore fails every call, as an unreachable backend would.
type failingStore struct{}

func (failingStore) Get(context.Context, string, string, any) error { return errStoreDown }
func (failingStore) Find(context.Context, string, app.Query, any) error { return errStoreDown }
func (failingStore) Upsert(context.Context, string, string, any) error { return errStoreDown }
func (failingStore) Increment(context.Context, string, string, map[string]int, map[string]any) error {
	return errStoreDown
}

// flakyStore wraps a store and fails writes to the named collections.
type flakyStore struct {
	app.DocumentStore
	failUpsert    map[string]bool
	failIncrement bool
}

func (s flakyStore) Upsert(ctx context.Context, collection, id string, doc any) error {
	if s.failUpsert[collection] {
		return errStoreDown
	}
	return s.DocumentStore.Upsert(ctx, collection, id, doc)
}

func (s flakyStore) Increment(ctx context.Context, collection, id string, inc map[string]int, set map[string]any) error {
	if s.failIncrement {
		return errStoreDown
	}
	return s.DocumentStore.Increment(ctx, collection, id, inc, set)
}

type recordingPublisher struct {
	mu        sync.Mutex
	completed []domain.QuizResult
	users     []domain.User
	err       error
}

func (p *recordingPublisher) PublishQuizCompleted(_ context.Context, r domain.QuizResult) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completed = append(p.completed, r)
	return p.err
}

func (p *recordingPublisher) PublishUserRegistered(_ context.Context, u domain.User) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users = append(p.users, u)
	return p.err
}

type staticQuestions []domain.QuizQuestion

func (s staticQuestions) FindQuestions(_ context.Context, _ string, _ domain.Difficulty, _ int) ([]domain.QuizQuestion, error) {
	return append([]domain.QuizQuestion(nil), s...), nil
}

func makeQuestions(categoryID string, difficulty domain.Difficulty, n int) []domain.QuizQuestion {
	out := make([]domain.QuizQuestion, n)
	for i := range out {
		out[i] = domain.QuizQuestion{
			ID:            fmt.Sprintf("%s-%s-%d", categoryID, difficulty, i+1),
			CategoryID:    categoryID,
			Question:      fmt.Sprintf("Question %d", i+1),
			Options:       []string{"a", "b", "c", "d"},
			CorrectAnswer: i % 4,
			Difficulty:    difficulty,
			Points:        10,
		}
	}
	return out
}
