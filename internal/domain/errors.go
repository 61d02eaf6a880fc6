package domain

import "errors"

var (
	// ErrNotFound is returned when a document does not exist in the store.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks input that failed presence or format checks. Wrap it with details.
	ErrValidation = errors.New("validation failed")

	// ErrSessionNotFound is returned when a quiz session is unknown or expired.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionNotStarted is returned when answering a session that never started.
	ErrSessionNotStarted = errors.New("quiz session not started")
	// ErrSessionCompleted is returned when acting on a finished session.
	ErrSessionCompleted = errors.New("quiz session already completed")
	// ErrNoQuestions indicates a category and difficulty pair has nothing to play.
	ErrNoQuestions = errors.New("no questions available")
	// ErrQuestionNotFound indicates a submitted question ID is not the current question.
	ErrQuestionNotFound = errors.New("question not found")

	// ErrOTPNotFound is returned when no code was issued or it already expired from the store.
	ErrOTPNotFound = errors.New("otp not found")
	ErrOTPExpired  = errors.New("otp expired")
	ErrOTPInvalid  = errors.New("otp invalid")
	// ErrOTPAttemptsExceeded is returned once a code has been guessed too many times.
	ErrOTPAttemptsExceeded = errors.New("otp attempts exceeded")
	// ErrOTPCooldown is returned when a new code is requested too soon.
	ErrOTPCooldown = errors.New("otp requested too recently")
)
