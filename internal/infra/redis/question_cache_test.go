package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"matha-service/internal/domain"
)

func TestQuestionCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	loader := &countingLoader{questions: sampleQuestions()}
	cache := NewQuestionCache(client, loader, time.Minute)

	got, err := cache.FindQuestions(context.Background(), "cat1", domain.DifficultyEasy, 10)
	if err != nil {
		t.Fatalf("find questions: %v", err)
	}
	if loader.calls != 1 || len(got) != 1 {
		t.Fatalf("expected loader called once with 1 question, calls=%d got=%d", loader.calls, len(got))
	}
	if !mr.Exists("quiz:questions:cat1:easy:10") {
		t.Fatalf("expected redis key to be set")
	}

	// Second call should hit cache, loader not incremented.
	got, _ = cache.FindQuestions(context.Background(), "cat1", domain.DifficultyEasy, 10)
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if got[0].CorrectAnswer != 1 || got[0].Options[1] != "Sode" {
		t.Fatalf("cached question lost fields: %+v", got[0])
	}

	if err := cache.Invalidate(context.Background(), "cat1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if mr.Exists("quiz:questions:cat1:easy:10") {
		t.Fatalf("expected redis key to be removed")
	}
}

func TestQuestionCacheDoesNotStoreEmptySets(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{}
	cache := NewQuestionCache(newClient(mr), loader, time.Minute)
	_, _ = cache.FindQuestions(context.Background(), "cat2", domain.DifficultyHard, 10)
	_, _ = cache.FindQuestions(context.Background(), "cat2", domain.DifficultyHard, 10)
	if loader.calls != 2 {
		t.Fatalf("expected two loads, got %d", loader.calls)
	}
}

type countingLoader struct {
	questions []domain.QuizQuestion
	calls     int
}

func (l *countingLoader) FindQuestions(_ context.Context, categoryID string, difficulty domain.Difficulty, _ int) ([]domain.QuizQuestion, error) {
	l.calls++
	var out []domain.QuizQuestion
	for _, q := range l.questions {
		if q.CategoryID == categoryID && q.Difficulty == difficulty {
			out = append(out, q)
		}
	}
	return out, nil
}

func sampleQuestions() []domain.QuizQuestion {
	return []domain.QuizQuestion{
		{
			ID:            "q2",
			CategoryID:    "cat1",
			Question:      "Where is Sode Vadiraja Matha located?",
			Options:       []string{"Udupi", "Sode", "Mangalore", "Dharwad"},
			CorrectAnswer: 1,
			Difficulty:    domain.DifficultyEasy,
			Points:        10,
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
