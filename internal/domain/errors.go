package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a game session does not exist.
	ErrSessionNotFound = errors.New("game session not found")
	// ErrLobbyNotFound is returned when a lobby code is unknown or expired.
	ErrLobbyNotFound = errors.New("lobby not found")
	// ErrQuestionsExhausted indicates the session has moved past its last question.
	ErrQuestionsExhausted = errors.New("questions exhausted")
	// ErrNoActiveQuestion indicates a submission against a completed session.
	ErrNoActiveQuestion = errors.New("no active question")
	// ErrAnswerAlreadySubmitted rejects a second answer from the same player
	// for the same question.
	ErrAnswerAlreadySubmitted = errors.New("answer already submitted for this question")
	// ErrPlayerNotJoined indicates a submission from a player who never joined.
	ErrPlayerNotJoined = errors.New("player has not joined the session")
	// ErrCodeTaken indicates a lobby code collision at insert time.
	ErrCodeTaken = errors.New("lobby code already taken")
	// ErrCodeSpaceExhausted is surfaced after the bounded collision retry gives up.
	ErrCodeSpaceExhausted = errors.New("lobby code space exhausted")
	// ErrStorageUnavailable indicates the backing store timed out or is down.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrQuestionSetNotFound indicates no question content exists for the
	// requested topic and difficulty.
	ErrQuestionSetNotFound = errors.New("question set not found")
	// ErrNoQuestions rejects creating a session with an empty question list.
	ErrNoQuestions = errors.New("question source returned no questions")
)
