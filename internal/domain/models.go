package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Collection names shared by every store backend.
const (
	CollectionUsers          = "users"
	CollectionEvents         = "events"
	CollectionRoomBookings   = "roomBookings"
	CollectionArtefacts      = "artefacts"
	CollectionQuizCategories = "quizCategories"
	CollectionQuizQuestions  = "quizQuestions"
	CollectionQuizResults    = "quizResults"
	CollectionLearnContent   = "learnContent"
)

// User is a registered devotee together with the quiz aggregates.
type User struct {
	ID           string    `json:"id" bson:"_id"`
	DisplayName  string    `json:"displayName" bson:"displayName"`
	PhoneNumber  string    `json:"phoneNumber" bson:"phoneNumber"`
	Email        string    `json:"email,omitempty" bson:"email,omitempty"`
	PhotoURL     string    `json:"photoURL,omitempty" bson:"photoURL,omitempty"`
	Points       int       `json:"points" bson:"points"`
	QuizzesTaken int       `json:"quizzesTaken" bson:"quizzesTaken"`
	Streak       int       `json:"streak" bson:"streak"`
	LastActiveAt time.Time `json:"lastActiveAt" bson:"lastActiveAt"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Difficulty is the quiz difficulty filter.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty accepts easy, medium or hard (case-insensitive).
func ParseDifficulty(raw string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(raw)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: unknown difficulty %q", ErrValidation, raw)
	}
	return d, nil
}

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// QuizCategory is read-only reference data created by seeding.
type QuizCategory struct {
	ID            string `json:"id" bson:"_id"`
	Title         string `json:"title" bson:"title"`
	Icon          string `json:"icon" bson:"icon"`
	QuestionCount int    `json:"questionCount" bson:"questionCount"`
	Color         string `json:"color" bson:"color"`
}

// QuizQuestion is a multiple choice question; correctness is by option index.
type QuizQuestion struct {
	ID            string     `json:"id" bson:"_id"`
	CategoryID    string     `json:"categoryId" bson:"categoryId"`
	Question      string     `json:"question" bson:"question"`
	Options       []string   `json:"options" bson:"options"`
	CorrectAnswer int        `json:"correctAnswer" bson:"correctAnswer"`
	Difficulty    Difficulty `json:"difficulty" bson:"difficulty"`
	Points        int        `json:"points" bson:"points"`
}

// Validate checks the fixture invariants of a question.
func (q QuizQuestion) Validate() error {
	if q.ID == "" || q.CategoryID == "" {
		return fmt.Errorf("%w: question requires id and categoryId", ErrValidation)
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("%w: question %s needs at least two options", ErrValidation, q.ID)
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
		return fmt.Errorf("%w: question %s correctAnswer %d out of range", ErrValidation, q.ID, q.CorrectAnswer)
	}
	if !q.Difficulty.Valid() {
		return fmt.Errorf("%w: question %s has unknown difficulty %q", ErrValidation, q.ID, q.Difficulty)
	}
	if q.Points <= 0 {
		return fmt.Errorf("%w: question %s must be worth at least one point", ErrValidation, q.ID)
	}
	return nil
}

// PointValue is the score awarded for a correct answer; defaults to 1 if unset.
func (q QuizQuestion) PointValue() int {
	if q.Points <= 0 {
		return 1
	}
	return q.Points
}

// QuizResult is an immutable record of one finished attempt.
type QuizResult struct {
	ID             string     `json:"id" bson:"_id"`
	UserID         string     `json:"userId" bson:"userId"`
	CategoryID     string     `json:"categoryId" bson:"categoryId"`
	Difficulty     Difficulty `json:"difficulty,omitempty" bson:"difficulty,omitempty"`
	Score          int        `json:"score" bson:"score"`
	CorrectAnswers int        `json:"correctAnswers" bson:"correctAnswers"`
	TotalQuestions int        `json:"totalQuestions" bson:"totalQuestions"`
	CompletedAt    time.Time  `json:"completedAt" bson:"completedAt"`
}

// Percentage of questions answered correctly, rounded down.
func (r QuizResult) Percentage() int {
	if r.TotalQuestions <= 0 {
		return 0
	}
	return r.CorrectAnswers * 100 / r.TotalQuestions
}

// Event is a calendar entry such as an Aradhane or Paryaya.
type Event struct {
	ID          string    `json:"id" bson:"_id"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	Date        time.Time `json:"date" bson:"date"`
	Location    string    `json:"location" bson:"location"`
	ImageURL    string    `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	Category    string    `json:"category" bson:"category"`
	IsActive    bool      `json:"isActive" bson:"isActive"`
}

type Artefact struct {
	ID           string `json:"id" bson:"_id"`
	Name         string `json:"name" bson:"name"`
	Category     string `json:"category" bson:"category"`
	Description  string `json:"description" bson:"description"`
	History      string `json:"history,omitempty" bson:"history,omitempty"`
	Significance string `json:"significance,omitempty" bson:"significance,omitempty"`
	Year         string `json:"year" bson:"year"`
	ImageURL     string `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	AudioURL     string `json:"audioUrl,omitempty" bson:"audioUrl,omitempty"`
}

// LearnType classifies learning material.
type LearnType string

const (
	LearnPravachana LearnType = "pravachana"
	LearnScripture  LearnType = "scripture"
	LearnStotra     LearnType = "stotra"
	LearnVideo      LearnType = "video"
)

func (t LearnType) Valid() bool {
	switch t {
	case LearnPravachana, LearnScripture, LearnStotra, LearnVideo:
		return true
	}
	return false
}

type LearnContent struct {
	ID           string    `json:"id" bson:"_id"`
	Title        string    `json:"title" bson:"title"`
	Type         LearnType `json:"type" bson:"type"`
	Description  string    `json:"description" bson:"description"`
	Duration     string    `json:"duration" bson:"duration"`
	ContentURL   string    `json:"contentUrl,omitempty" bson:"contentUrl,omitempty"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty" bson:"thumbnailUrl,omitempty"`
	Order        int       `json:"order" bson:"order"`
}

// BookingStatus tracks a room booking request.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

type RoomBooking struct {
	ID              string        `json:"id" bson:"_id"`
	Reference       string        `json:"reference" bson:"reference"`
	UserID          string        `json:"userId" bson:"userId"`
	UserName        string        `json:"userName" bson:"userName"`
	PhoneNumber     string        `json:"phoneNumber" bson:"phoneNumber"`
	Email           string        `json:"email,omitempty" bson:"email,omitempty"`
	RoomType        string        `json:"roomType" bson:"roomType"`
	Rooms           int           `json:"rooms" bson:"rooms"`
	Guests          int           `json:"guests" bson:"guests"`
	CheckIn         time.Time     `json:"checkIn" bson:"checkIn"`
	CheckOut        time.Time     `json:"checkOut" bson:"checkOut"`
	SpecialRequests string        `json:"specialRequests,omitempty" bson:"specialRequests,omitempty"`
	Status          BookingStatus `json:"status" bson:"status"`
	CreatedAt       time.Time     `json:"createdAt" bson:"createdAt"`
}

// LeaderboardEntry is a ranked view of a user.
type LeaderboardEntry struct {
	Rank         int    `json:"rank"`
	UserID       string `json:"userId"`
	DisplayName  string `json:"displayName"`
	Avatar       string `json:"avatar"`
	Points       int    `json:"points"`
	QuizzesTaken int    `json:"quizzesTaken"`
	Streak       int    `json:"streak"`
}

// Leaderboard captures the ordered top of the rankings.
type Leaderboard struct {
	Entries     []LeaderboardEntry `json:"entries"`
	Fallback    bool               `json:"fallback"`
	GeneratedAt time.Time          `json:"generatedAt"`
}

// Avatar returns the upper-cased initial of a display name, "U" when empty.
func Avatar(displayName string) string {
	for _, r := range strings.TrimSpace(displayName) {
		return string(unicode.ToUpper(r))
	}
	return "U"
}
