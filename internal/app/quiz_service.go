package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"matha-service/internal/domain"
	"matha-service/internal/logger"
)

// QuizService contains the quiz play use cases.
type QuizService struct {
	bank     *QuestionBank
	sessions SessionRepository
	recorder *Recorder
	log      *logger.Logger
	now      func() time.Time
	locks    *keyedMutex
}

func NewQuizService(bank *QuestionBank, sessions SessionRepository, recorder *Recorder, log *logger.Logger) *QuizService {
	return NewQuizServiceWithClock(bank, sessions, recorder, log, time.Now)
}

// NewQuizServiceWithClock is test-only for deterministic timestamps.
func NewQuizServiceWithClock(bank *QuestionBank, sessions SessionRepository, recorder *Recorder, log *logger.Logger, now func() time.Time) *QuizService {
	return &QuizService{
		bank:     bank,
		sessions: sessions,
		recorder: recorder,
		log:      log,
		now:      now,
		locks:    newKeyedMutex(),
	}
}

// Questions exposes the question bank for browsing.
func (s *QuizService) Questions(ctx context.Context, categoryID string, difficulty domain.Difficulty) []domain.QuizQuestion {
	return s.bank.GetQuestions(ctx, categoryID, difficulty)
}

// Start loads a question set and begins an attempt. When nothing is available
// it returns domain.ErrNoQuestions and no session is kept.
func (s *QuizService) Start(ctx context.Context, userID, categoryID string, difficulty domain.Difficulty) (*Session, error) {
	if userID == "" || categoryID == "" {
		return nil, fmt.Errorf("%w: userId and categoryId are required", domain.ErrValidation)
	}
	if !difficulty.Valid() {
		return nil, fmt.Errorf("%w: unknown difficulty %q", domain.ErrValidation, difficulty)
	}

	session := NewSession(uuid.NewString(), userID, categoryID, difficulty)
	if err := session.Start(s.bank.GetQuestions(ctx, categoryID, difficulty), s.now()); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s.log.Debug("quiz session started", "sessionId", session.ID, "userId", userID,
		"categoryId", categoryID, "difficulty", difficulty, "questions", session.Total())
	return session, nil
}

// Get returns a snapshot of a session.
func (s *QuizService) Get(ctx context.Context, sessionID string) (*Session, error) {
	return s.sessions.Get(ctx, sessionID)
}

// Answer applies a submission to the session. The attempt is recorded at most
// once, after the answer that completes it has been stored.
func (s *QuizService) Answer(ctx context.Context, sessionID string, sub Submission) (AnswerOutcome, *Session, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return AnswerOutcome{}, nil, err
	}
	outcome, err := session.Answer(sub, s.now())
	if err != nil {
		return AnswerOutcome{}, session, err
	}

	// Store the completed state before recording: a retry after a failed save
	// must find the session still answerable and nothing recorded.
	if err := s.sessions.Save(ctx, session); err != nil {
		return AnswerOutcome{}, session, fmt.Errorf("save session: %w", err)
	}
	result, done := session.Result()
	if !done {
		return outcome, session, nil
	}

	resultID, err := s.recorder.Record(ctx, result)
	if err != nil {
		s.log.Warn("quiz result not recorded", "sessionId", session.ID, "error", err)
		return outcome, session, nil
	}
	session.ResultID = resultID
	outcome.ResultID = resultID
	if err := s.sessions.Save(ctx, session); err != nil {
		s.log.Warn("result id not saved on session", "sessionId", session.ID, "resultId", resultID, "error", err)
	}
	return outcome, session, nil
}

// Abandon discards a session, e.g. when the player navigates away.
func (s *QuizService) Abandon(ctx context.Context, sessionID string) error {
	unlock := s.locks.lock(sessionID)
	defer unlock()
	return s.sessions.Delete(ctx, sessionID)
}

// keyedMutex serializes work per session id within this process.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedLock)}
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
