package http

import (
	"matha-service/internal/app"
	"matha-service/internal/domain"
)

// questionView never carries the correct answer.
type questionView struct {
	ID         string            `json:"id"`
	CategoryID string            `json:"categoryId"`
	Question   string            `json:"question"`
	Options    []string          `json:"options"`
	Difficulty domain.Difficulty `json:"difficulty"`
	Points     int               `json:"points"`
}

func newQuestionView(q domain.QuizQuestion) questionView {
	return questionView{
		ID:         q.ID,
		CategoryID: q.CategoryID,
		Question:   q.Question,
		Options:    q.Options,
		Difficulty: q.Difficulty,
		Points:     q.PointValue(),
	}
}

func newQuestionViews(questions []domain.QuizQuestion) []questionView {
	out := make([]questionView, len(questions))
	for i, q := range questions {
		out[i] = newQuestionView(q)
	}
	return out
}

type sessionView struct {
	ID         string            `json:"id"`
	UserID     string            `json:"userId"`
	CategoryID string            `json:"categoryId"`
	Difficulty domain.Difficulty `json:"difficulty"`
	Status     app.SessionStatus `json:"status"`
	Total      int               `json:"totalQuestions"`
	Answered   int               `json:"answered"`
	Score      int               `json:"score"`
	Correct    int               `json:"correctAnswers"`
	Current    *questionView     `json:"currentQuestion,omitempty"`
	ResultID   string            `json:"resultId,omitempty"`
}

func newSessionView(s *app.Session) sessionView {
	view := sessionView{
		ID:         s.ID,
		UserID:     s.UserID,
		CategoryID: s.CategoryID,
		Difficulty: s.Difficulty,
		Status:     s.Status,
		Total:      s.Total(),
		Answered:   s.Cursor,
		Score:      s.Score,
		Correct:    s.Correct,
		ResultID:   s.ResultID,
	}
	if q, ok := s.Current(); ok {
		qv := newQuestionView(q)
		view.Current = &qv
	}
	return view
}

type completedView struct {
	SessionID      string `json:"sessionId"`
	ResultID       string `json:"resultId,omitempty"`
	Score          int    `json:"score"`
	CorrectAnswers int    `json:"correctAnswers"`
	TotalQuestions int    `json:"totalQuestions"`
	Percentage     int    `json:"percentage"`
}

func newCompletedView(s *app.Session) completedView {
	result := domain.QuizResult{CorrectAnswers: s.Correct, TotalQuestions: s.Total()}
	return completedView{
		SessionID:      s.ID,
		ResultID:       s.ResultID,
		Score:          s.Score,
		CorrectAnswers: s.Correct,
		TotalQuestions: s.Total(),
		Percentage:     result.Percentage(),
	}
}
