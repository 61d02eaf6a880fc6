package app

import (
	"context"
	"time"

	"matha-service/internal/domain"
)

// Filter is an equality predicate on a named document field.
type Filter struct {
	Field string
	Value any
}

// Eq builds an equality filter.
func Eq(field string, value any) Filter {
	return Filter{Field: field, Value: value}
}

// Query selects documents from one collection. OrderBy names a single field;
// ties are broken by a deterministic backend rule. Limit <= 0 means no limit.
type Query struct {
	Filters    []Filter
	OrderBy    string
	Descending bool
	Limit      int
}

// DocumentStore is the storage boundary (memory, MongoDB, Postgres JSONB).
// Field names used in filters, ordering and increments are the entity's json
// and bson names, which are kept identical.
type DocumentStore interface {
	// Get decodes the document into out, or returns domain.ErrNotFound.
	Get(ctx context.Context, collection, id string, out any) error
	// Find decodes matching documents into out, a pointer to a slice.
	Find(ctx context.Context, collection string, q Query, out any) error
	// Upsert inserts or fully replaces the document with id.
	Upsert(ctx context.Context, collection, id string, doc any) error
	// Increment atomically adds inc to integer fields and sets fields in set.
	// Returns domain.ErrNotFound if the document does not exist.
	Increment(ctx context.Context, collection, id string, inc map[string]int, set map[string]any) error
}

// QuestionRepository loads questions for a category and difficulty (store or
// cache). A limit of zero or less loads every match.
type QuestionRepository interface {
	FindQuestions(ctx context.Context, categoryID string, difficulty domain.Difficulty, limit int) ([]domain.QuizQuestion, error)
}

// SessionRepository abstracts how quiz sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	Save(ctx context.Context, session *Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
}

// OTPRecord is an issued one-time code; only the digest of the code is kept.
type OTPRecord struct {
	PhoneNumber string    `json:"phoneNumber"`
	CodeHash    string    `json:"codeHash"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Attempts    int       `json:"attempts"`
}

// OTPStore keeps issued codes until they expire.
type OTPStore interface {
	Save(ctx context.Context, record OTPRecord, ttl time.Duration) error
	// Get returns domain.ErrOTPNotFound when no live record exists.
	Get(ctx context.Context, phoneNumber string) (OTPRecord, error)
	Delete(ctx context.Context, phoneNumber string) error
}

// OTPSender delivers a code to a phone number (SMS gateway, log, ...).
type OTPSender interface {
	SendOTP(ctx context.Context, phoneNumber, code string) error
}

// EventPublisher emits domain events to other services.
type EventPublisher interface {
	PublishQuizCompleted(ctx context.Context, result domain.QuizResult) error
	PublishUserRegistered(ctx context.Context, user domain.User) error
}

// Metrics records domain counters.
type Metrics interface {
	QuizCompleted(categoryID string, difficulty domain.Difficulty)
	OTPIssued()
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) PublishQuizCompleted(context.Context, domain.QuizResult) error { return nil }
func (NopPublisher) PublishUserRegistered(context.Context, domain.User) error { return nil }

type nopMetrics struct{}

func (nopMetrics) QuizCompleted(string, domain.Difficulty) {}
func (nopMetrics) OTPIssued() {}
