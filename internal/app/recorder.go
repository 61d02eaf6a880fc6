package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"matha-service/internal/domain"
	"matha-service/internal/logger"
)

// ResultInput describes a finished attempt.
type ResultInput struct {
	UserID     string
	CategoryID string
	Difficulty domain.Difficulty
	Score      int
	Correct    int
	Total      int
}

// Recorder appends quiz results and folds them into the user aggregate.
type Recorder struct {
	store     DocumentStore
	publisher EventPublisher
	metrics   Metrics
	log       *logger.Logger
	now       func() time.Time
	newID     func() string
}

func NewRecorder(store DocumentStore, publisher EventPublisher, metrics Metrics, log *logger.Logger) *Recorder {
	return NewRecorderWithClock(store, publisher, metrics, log, time.Now)
}

// NewRecorderWithClock allows deterministic timestamps in tests.
func NewRecorderWithClock(store DocumentStore, publisher EventPublisher, metrics Metrics, log *logger.Logger, now func() time.Time) *Recorder {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Recorder{
		store:     store,
		publisher: publisher,
		metrics:   metrics,
		log:       log,
		now:       now,
		newID:     uuid.NewString,
	}
}

// Record stores the result and updates points, quizzesTaken and streak.
// Only a failure to store the result is returned; aggregate and event
// failures are logged and the result id is still returned.
func (r *Recorder) Record(ctx context.Context, in ResultInput) (string, error) {
	if in.UserID == "" || in.CategoryID == "" {
		return "", fmt.Errorf("%w: result requires userId and categoryId", domain.ErrValidation)
	}
	if in.Score < 0 || in.Total < 0 || in.Correct < 0 || in.Correct > in.Total {
		return "", fmt.Errorf("%w: inconsistent result totals", domain.ErrValidation)
	}

	now := r.now().UTC()
	result := domain.QuizResult{
		ID:             r.newID(),
		UserID:         in.UserID,
		CategoryID:     in.CategoryID,
		Difficulty:     in.Difficulty,
		Score:          in.Score,
		CorrectAnswers: in.Correct,
		TotalQuestions: in.Total,
		CompletedAt:    now,
	}
	if err := r.store.Upsert(ctx, domain.CollectionQuizResults, result.ID, result); err != nil {
		return "", fmt.Errorf("save quiz result: %w", err)
	}

	if err := r.updateAggregate(ctx, result); err != nil {
		r.log.Warn("quiz result saved but user aggregate not updated",
			"resultId", result.ID, "userId", result.UserID, "error", err)
	}

	r.metrics.QuizCompleted(result.CategoryID, result.Difficulty)
	if err := r.publisher.PublishQuizCompleted(ctx, result); err != nil {
		r.log.Warn("publish quiz completed", "resultId", result.ID, "error", err)
	}
	return result.ID, nil
}

func (r *Recorder) updateAggregate(ctx context.Context, result domain.QuizResult) error {
	var user domain.User
	if err := r.store.Get(ctx, domain.CollectionUsers, result.UserID, &user); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("user %s: %w", result.UserID, err)
		}
		return fmt.Errorf("load user: %w", err)
	}

	streak := domain.NextStreak(user.Streak, user.LastActiveAt, result.CompletedAt)
	return r.store.Increment(ctx, domain.CollectionUsers, result.UserID,
		map[string]int{
			"points":       result.Score,
			"quizzesTaken": 1,
		},
		map[string]any{
			"streak":       streak,
			"lastActiveAt": result.CompletedAt,
			"updatedAt":    result.CompletedAt,
		},
	)
}

// History lists a user's results, most recent first.
func (r *Recorder) History(ctx context.Context, userID string) ([]domain.QuizResult, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", domain.ErrValidation)
	}
	var results []domain.QuizResult
	err := r.store.Find(ctx, domain.CollectionQuizResults, Query{
		Filters:    []Filter{Eq("userId", userID)},
		OrderBy:    "completedAt",
		Descending: true,
	}, &results)
	if err != nil {
		return nil, fmt.Errorf("load quiz history: %w", err)
	}
	if results == nil {
		results = []domain.QuizResult{}
	}
	return results, nil
}
