package app

import (
	"fmt"
	"time"

	"matha-service/internal/domain"
)

// SessionStatus is the lifecycle state of one quiz attempt.
type SessionStatus string

const (
	StatusNotStarted SessionStatus = "not_started"
	StatusInProgress SessionStatus = "in_progress"
	StatusCompleted  SessionStatus = "completed"
)

// Submission is one answer: the chosen option index for the current question.
// QuestionID is optional; when set it must name the current question.
type Submission struct {
	QuestionID string `json:"questionId"`
	Option     int    `json:"option"`
}

// AnswerOutcome summarizes the effect of a submission.
type AnswerOutcome struct {
	QuestionID    string `json:"questionId"`
	Correct       bool   `json:"correct"`
	CorrectAnswer int    `json:"correctAnswer"`
	Awarded       int    `json:"awarded"`
	Score         int    `json:"score"`
	Completed     bool   `json:"completed"`
	ResultID      string `json:"resultId,omitempty"`
}

// Session runs one attempt: NotStarted -> InProgress -> Completed.
// Fields are exported so repositories can persist snapshots; mutate only
// through the methods.
type Session struct {
	ID          string                `json:"id"`
	UserID      string                `json:"userId"`
	CategoryID  string                `json:"categoryId"`
	Difficulty  domain.Difficulty     `json:"difficulty"`
	Status      SessionStatus         `json:"status"`
	Questions   []domain.QuizQuestion `json:"questions"`
	Answers     []int                 `json:"answers"`
	Cursor      int                   `json:"cursor"`
	Score       int                   `json:"score"`
	Correct     int                   `json:"correct"`
	ResultID    string                `json:"resultId,omitempty"`
	StartedAt   time.Time             `json:"startedAt"`
	CompletedAt time.Time             `json:"completedAt"`
}

// NewSession creates a session that has not started yet.
func NewSession(id, userID, categoryID string, difficulty domain.Difficulty) *Session {
	return &Session{
		ID:         id,
		UserID:     userID,
		CategoryID: categoryID,
		Difficulty: difficulty,
		Status:     StatusNotStarted,
	}
}

// Start moves the session to InProgress. An empty question set leaves it in
// NotStarted and returns domain.ErrNoQuestions.
func (s *Session) Start(questions []domain.QuizQuestion, now time.Time) error {
	if s.Status != StatusNotStarted {
		return fmt.Errorf("start session in status %s: %w", s.Status, domain.ErrValidation)
	}
	if len(questions) == 0 {
		return domain.ErrNoQuestions
	}
	s.Questions = append([]domain.QuizQuestion(nil), questions...)
	s.Answers = make([]int, 0, len(questions))
	s.Cursor = 0
	s.Score = 0
	s.Correct = 0
	s.Status = StatusInProgress
	s.StartedAt = now
	return nil
}

// Current returns the question awaiting an answer.
func (s *Session) Current() (domain.QuizQuestion, bool) {
	if s.Status != StatusInProgress || s.Cursor >= len(s.Questions) {
		return domain.QuizQuestion{}, false
	}
	return s.Questions[s.Cursor], true
}

// Total is the number of questions in the attempt.
func (s *Session) Total() int {
	return len(s.Questions)
}

// Remaining is the number of unanswered questions.
func (s *Session) Remaining() int {
	if s.Status != StatusInProgress {
		return 0
	}
	return len(s.Questions) - s.Cursor
}

// Answer scores the current question and advances the cursor. Passing the
// last question completes the session; a completed session never changes.
func (s *Session) Answer(sub Submission, now time.Time) (AnswerOutcome, error) {
	switch s.Status {
	case StatusNotStarted:
		return AnswerOutcome{}, domain.ErrSessionNotStarted
	case StatusCompleted:
		return AnswerOutcome{}, domain.ErrSessionCompleted
	}

	question, ok := s.Current()
	if !ok {
		return AnswerOutcome{}, domain.ErrSessionCompleted
	}
	if sub.QuestionID != "" && sub.QuestionID != question.ID {
		return AnswerOutcome{}, fmt.Errorf("answer %s, current is %s: %w", sub.QuestionID, question.ID, domain.ErrQuestionNotFound)
	}
	if sub.Option < 0 || sub.Option >= len(question.Options) {
		return AnswerOutcome{}, fmt.Errorf("%w: option %d out of range", domain.ErrValidation, sub.Option)
	}

	outcome := AnswerOutcome{
		QuestionID:    question.ID,
		CorrectAnswer: question.CorrectAnswer,
	}
	if sub.Option == question.CorrectAnswer {
		outcome.Correct = true
		outcome.Awarded = question.PointValue()
		s.Score += outcome.Awarded
		s.Correct++
	}
	s.Answers = append(s.Answers, sub.Option)
	s.Cursor++
	if s.Cursor >= len(s.Questions) {
		s.Status = StatusCompleted
		s.CompletedAt = now
	}

	outcome.Score = s.Score
	outcome.Completed = s.Status == StatusCompleted
	return outcome, nil
}

// Result is the frozen outcome of a completed session.
func (s *Session) Result() (ResultInput, bool) {
	if s.Status != StatusCompleted {
		return ResultInput{}, false
	}
	return ResultInput{
		UserID:     s.UserID,
		CategoryID: s.CategoryID,
		Difficulty: s.Difficulty,
		Score:      s.Score,
		Correct:    s.Correct,
		Total:      s.Total(),
	}, true
}

// Clone returns a deep copy for stores that hand out snapshots.
func (s *Session) Clone() *Session {
	c := *s
	c.Questions = make([]domain.QuizQuestion, len(s.Questions))
	for i, q := range s.Questions {
		q.Options = append([]string(nil), q.Options...)
		c.Questions[i] = q
	}
	c.Answers = append([]int(nil), s.Answers...)
	return &c
}
