package app

import (
	"context"

	"matha-service/internal/domain"
	"matha-service/internal/logger"
)

// DefaultQuestionLimit caps how many questions one attempt may load.
const DefaultQuestionLimit = 10

// StoreQuestionRepository reads questions straight from the document store.
type StoreQuestionRepository struct {
	store DocumentStore
}

func NewStoreQuestionRepository(store DocumentStore) *StoreQuestionRepository {
	return &StoreQuestionRepository{store: store}
}

func (r *StoreQuestionRepository) FindQuestions(ctx context.Context, categoryID string, difficulty domain.Difficulty, limit int) ([]domain.QuizQuestion, error) {
	var questions []domain.QuizQuestion
	err := r.store.Find(ctx, domain.CollectionQuizQuestions, Query{
		Filters: []Filter{
			Eq("categoryId", categoryID),
			Eq("difficulty", string(difficulty)),
		},
		Limit: limit,
	}, &questions)
	return questions, err
}

// QuestionBank selects the question set for one attempt.
type QuestionBank struct {
	questions QuestionRepository
	limit     int
	log       *logger.Logger
}

func NewQuestionBank(questions QuestionRepository, limit int, log *logger.Logger) *QuestionBank {
	if limit <= 0 {
		limit = DefaultQuestionLimit
	}
	return &QuestionBank{questions: questions, limit: limit, log: log}
}

// GetQuestions returns at most the configured limit of valid questions matching
// both the category and the difficulty. Every match is loaded and the cap is
// applied after invalid ones are dropped. A read error yields an empty result.
func (b *QuestionBank) GetQuestions(ctx context.Context, categoryID string, difficulty domain.Difficulty) []domain.QuizQuestion {
	found, err := b.questions.FindQuestions(ctx, categoryID, difficulty, 0)
	if err != nil {
		b.log.Warn("question lookup failed", "categoryId", categoryID, "difficulty", difficulty, "error", err)
		return []domain.QuizQuestion{}
	}

	out := make([]domain.QuizQuestion, 0, len(found))
	for _, q := range found {
		if q.CategoryID != categoryID || q.Difficulty != difficulty {
			continue
		}
		if err := q.Validate(); err != nil {
			b.log.Warn("skipping invalid question", "questionId", q.ID, "error", err)
			continue
		}
		out = append(out, q)
		if len(out) == b.limit {
			break
		}
	}
	return out
}
