package domain

import "errors"

var (
	// ErrSessionFinished is returned when an answer is recorded after the last question.
	ErrSessionFinished = errors.New("quiz session already finished")
	// ErrStaleQuestion is returned when the answered question is not the one currently served.
	ErrStaleQuestion = errors.New("answer does not match the current question")
	// ErrSessionNotFinished is returned when a result is saved before the session ends.
	ErrSessionNotFinished = errors.New("quiz session not finished")
	// ErrInvalidInitials indicates leaderboard initials are not exactly three letters.
	ErrInvalidInitials = errors.New("initials must be exactly 3 letters")
	// ErrInvalidEntry indicates a leaderboard entry failed validation.
	ErrInvalidEntry = errors.New("invalid leaderboard entry")
	// ErrInvalidLimit is returned when a non-positive leaderboard size is requested.
	ErrInvalidLimit = errors.New("leaderboard limit must be positive")
	// ErrInvalidQuestion indicates a question record violates the A-D option contract.
	ErrInvalidQuestion = errors.New("invalid question")
	// ErrNoValidQuestions is returned when a question bank contains no usable question.
	ErrNoValidQuestions = errors.New("no valid questions found")
	// ErrQuestionBankNotFound indicates the question bank could not be loaded.
	ErrQuestionBankNotFound = errors.New("question bank not found")
	// ErrUnknownDifficulty indicates a difficulty selection that matches no profile.
	ErrUnknownDifficulty = errors.New("unknown difficulty")
)
