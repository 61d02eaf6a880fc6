package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"matha-service/internal/app"
	"matha-service/internal/domain"
	"matha-service/internal/infra/memory"
	"matha-service/internal/logger"
)

type quizFixture struct {
	store    *memory.DocumentStore
	sessions *memory.SessionStore
	service  *app.QuizService
}

func newQuizFixture(t *testing.T, now func() time.Time) *quizFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewDocumentStore()
	seedQuestions := []domain.QuizQuestion{
		{ID: "q1", CategoryID: "cat1", Question: "When was Sode Vadiraja Matha established?",
			Options: []string{"14th Century", "15th Century", "16th Century", "17th Century"}, CorrectAnswer: 2,
			Difficulty: domain.DifficultyEasy, Points: 10},
		{ID: "q2", CategoryID: "cat1", Question: "Where is Sode Vadiraja Matha located?",
			Options: []string{"Udupi", "Sode", "Mangalore", "Dharwad"}, CorrectAnswer: 1,
			Difficulty: domain.DifficultyEasy, Points: 10},
	}
	for _, q := range seedQuestions {
		if err := store.Upsert(ctx, domain.CollectionQuizQuestions, q.ID, q); err != nil {
			t.Fatalf("seed question: %v", err)
		}
	}
	if err := store.Upsert(ctx, domain.CollectionUsers, "u1", domain.User{ID: "u1", DisplayName: "Asha"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	log := logger.Nop()
	sessions := memory.NewSessionStore(time.Hour)
	bank := app.NewQuestionBank(app.NewStoreQuestionRepository(store), app.DefaultQuestionLimit, log)
	recorder := app.NewRecorderWithClock(store, nil, nil, log, now)
	return &quizFixture{
		store:    store,
		sessions: sessions,
		service:  app.NewQuizServiceWithClock(bank, sessions, recorder, log, now),
	}
}

func TestQuizEndToEnd(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	f := newQuizFixture(t, func() time.Time { return now })

	session, err := f.service.Start(ctx, "u1", "cat1", domain.DifficultyEasy)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if session.Total() != 2 {
		t.Fatalf("expected 2 questions, got %d", session.Total())
	}

	if _, _, err := f.service.Answer(ctx, session.ID, app.Submission{QuestionID: "q1", Option: 2}); err != nil {
		t.Fatalf("answer q1: %v", err)
	}
	outcome, final, err := f.service.Answer(ctx, session.ID, app.Submission{QuestionID: "q2", Option: 1})
	if err != nil {
		t.Fatalf("answer q2: %v", err)
	}
	if !outcome.Completed || outcome.Score != 20 || outcome.ResultID == "" {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if final.ResultID != outcome.ResultID {
		t.Fatalf("session does not carry the result id")
	}

	var result domain.QuizResult
	if err := f.store.Get(ctx, domain.CollectionQuizResults, outcome.ResultID, &result); err != nil {
		t.Fatalf("load result: %v", err)
	}
	if result.Score != 20 || result.TotalQuestions != 2 || result.CorrectAnswers != 2 || !result.CompletedAt.Equal(now) {
		t.Fatalf("unexpected result %+v", result)
	}

	var user domain.User
	if err := f.store.Get(ctx, domain.CollectionUsers, "u1", &user); err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.Points != 20 || user.QuizzesTaken != 1 || user.Streak != 1 {
		t.Fatalf("unexpected aggregate %+v", user)
	}

	if _, _, err := f.service.Answer(ctx, session.ID, app.Submission{Option: 0}); !errors.Is(err, domain.ErrSessionCompleted) {
		t.Fatalf("expected ErrSessionCompleted, got %v", err)
	}
	if f.store.Len(domain.CollectionQuizResults) != 1 {
		t.Fatalf("expected exactly one result")
	}
}

func TestQuizStartUnavailable(t *testing.T) {
	f := newQuizFixture(t, time.Now)
	if _, err := f.service.Start(context.Background(), "u1", "cat2", domain.DifficultyEasy); !errors.Is(err, domain.ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
	if _, err := f.service.Start(context.Background(), "", "cat1", domain.DifficultyEasy); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := f.service.Start(context.Background(), "u1", "cat1", domain.Difficulty("extreme")); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for difficulty, got %v", err)
	}
}

func TestQuizAbandon(t *testing.T) {
	ctx := context.Background()
	f := newQuizFixture(t, time.Now)
	session, err := f.service.Start(ctx, "u1", "cat1", domain.DifficultyEasy)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := f.service.Abandon(ctx, session.ID); err != nil {
		t.Fatalf("abandon: %v", err)
	}
	if _, err := f.service.Get(ctx, session.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session gone, got %v", err)
	}
	if f.store.Len(domain.CollectionQuizResults) != 0 {
		t.Fatalf("abandoned session must not record a result")
	}
}

func TestQuizConcurrentAnswersRecordOnce(t *testing.T) {
	ctx := context.Background()
	f := newQuizFixture(t, time.Now)
	session, err := f.service.Start(ctx, "u1", "cat1", domain.DifficultyEasy)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		accepted  int
		completed int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := f.service.Answer(ctx, session.ID, app.Submission{Option: 1})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case errors.Is(err, domain.ErrSessionCompleted):
				completed++
			default:
				t.Errorf("unexpected error %v", err)
			}
		}()
	}
	wg.Wait()

	if accepted != 2 || completed != 8 {
		t.Fatalf("expected 2 accepted and 8 rejected, got %d and %d", accepted, completed)
	}
	if f.store.Len(domain.CollectionQuizResults) != 1 {
		t.Fatalf("expected one recorded result, got %d", f.store.Len(domain.CollectionQuizResults))
	}
}

// saveFailures fails the next saves of completed sessions, as a flaky
// session backend would.
type saveFailures struct {
	app.SessionRepository
	mu        sync.Mutex
	completed int
	recorded  int
}

func (s *saveFailures) Save(ctx context.Context, session *app.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case session.Status == app.StatusCompleted && session.ResultID == "" && s.completed > 0:
		s.completed--
		return errors.New("session backend blip")
	case session.ResultID != "" && s.recorded > 0:
		s.recorded--
		return errors.New("session backend blip")
	}
	return s.SessionRepository.Save(ctx, session)
}

func newFlakySessionQuiz(t *testing.T, sessions *saveFailures) (*quizFixture, *app.QuizService) {
	t.Helper()
	f := newQuizFixture(t, time.Now)
	sessions.SessionRepository = f.sessions
	log := logger.Nop()
	bank := app.NewQuestionBank(app.NewStoreQuestionRepository(f.store), app.DefaultQuestionLimit, log)
	return f, app.NewQuizService(bank, sessions, app.NewRecorder(f.store, nil, nil, log), log)
}

func TestQuizRetryAfterFailedSaveRecordsOnce(t *testing.T) {
	ctx := context.Background()
	f, service := newFlakySessionQuiz(t, &saveFailures{completed: 1})

	session, err := service.Start(ctx, "u1", "cat1", domain.DifficultyEasy)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, _, err := service.Answer(ctx, session.ID, app.Submission{QuestionID: "q1", Option: 2}); err != nil {
		t.Fatalf("answer q1: %v", err)
	}
	if _, _, err := service.Answer(ctx, session.ID, app.Submission{QuestionID: "q2", Option: 1}); err == nil {
		t.Fatalf("expected the failed save to surface")
	}
	if f.store.Len(domain.CollectionQuizResults) != 0 {
		t.Fatalf("nothing should be recorded before the completed session is stored")
	}
	stored, err := service.Get(ctx, session.ID)
	if err != nil || stored.Status != app.StatusInProgress || stored.Cursor != 1 {
		t.Fatalf("expected session still on its last question, got %+v err=%v", stored, err)
	}

	outcome, _, err := service.Answer(ctx, session.ID, app.Submission{QuestionID: "q2", Option: 1})
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if !outcome.Completed || outcome.ResultID == "" {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if f.store.Len(domain.CollectionQuizResults) != 1 {
		t.Fatalf("expected one result, got %d", f.store.Len(domain.CollectionQuizResults))
	}
	var user domain.User
	if err := f.store.Get(ctx, domain.CollectionUsers, "u1", &user); err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.Points != 20 || user.QuizzesTaken != 1 {
		t.Fatalf("aggregate counted more than once %+v", user)
	}
}

func TestQuizResultIDSaveFailureKeepsOutcome(t *testing.T) {
	ctx := context.Background()
	f, service := newFlakySessionQuiz(t, &saveFailures{recorded: 1})

	session, err := service.Start(ctx, "u1", "cat1", domain.DifficultyEasy)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, _, err := service.Answer(ctx, session.ID, app.Submission{QuestionID: "q1", Option: 2}); err != nil {
		t.Fatalf("answer q1: %v", err)
	}
	outcome, _, err := service.Answer(ctx, session.ID, app.Submission{QuestionID: "q2", Option: 1})
	if err != nil {
		t.Fatalf("answer q2: %v", err)
	}
	if !outcome.Completed || outcome.ResultID == "" {
		t.Fatalf("expected the recorded outcome, got %+v", outcome)
	}
	if _, _, err := service.Answer(ctx, session.ID, app.Submission{QuestionID: "q2", Option: 1}); !errors.Is(err, domain.ErrSessionCompleted) {
		t.Fatalf("expected completed session, got %v", err)
	}
	if f.store.Len(domain.CollectionQuizResults) != 1 {
		t.Fatalf("expected one result, got %d", f.store.Len(domain.CollectionQuizResults))
	}
}
