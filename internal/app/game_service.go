package app

import (
	"context"

	"trivia-room-service/internal/domain"
)

// experiencePerCorrect is the flat reward granted per correct answer.
const experiencePerCorrect = 20

// Experience converts a correct-answer count into experience points.
func Experience(correct int) int {
	return correct * experiencePerCorrect
}

// SessionRepository abstracts how game sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	Create(topic, difficulty string, questions []domain.Question) *Session
	Get(id string) (*Session, bool)
	Delete(id string)
}

// QuestionSource supplies the ordered, immutable question list for a new
// session. Implementations must be order-stable for the session's lifetime.
type QuestionSource interface {
	Questions(ctx context.Context, topic, difficulty string) ([]domain.Question, error)
}

// GameService contains the session lifecycle and scoring use cases.
type GameService struct {
	sessions  SessionRepository
	questions QuestionSource
}

func NewGameService(store SessionRepository, questions QuestionSource) *GameService {
	return &GameService{sessions: store, questions: questions}
}

// Create builds a new session seeded with questions for the topic and
// difficulty. The question list is fixed at creation.
func (g *GameService) Create(ctx context.Context, topic, difficulty string) (string, error) {
	questions, err := g.questions.Questions(ctx, topic, difficulty)
	if err != nil {
		return "", err
	}
	if len(questions) == 0 {
		return "", domain.ErrNoQuestions
	}
	session := g.sessions.Create(topic, difficulty, questions)
	return session.ID(), nil
}

// Join registers a player in a session. Re-joining is idempotent and reports
// AlreadyPresent instead of failing.
func (g *GameService) Join(_ context.Context, gameID, playerID string) (domain.JoinResult, error) {
	session, ok := g.sessions.Get(gameID)
	if !ok {
		return "", domain.ErrSessionNotFound
	}
	return session.join(playerID), nil
}

// CurrentQuestion returns the question at the cursor together with its index.
func (g *GameService) CurrentQuestion(_ context.Context, gameID string) (domain.Question, int, error) {
	session, ok := g.sessions.Get(gameID)
	if !ok {
		return domain.Question{}, 0, domain.ErrSessionNotFound
	}
	return session.currentQuestion()
}

// Submit judges and records an answer for the current question. It does not
// advance the session; callers decide when to invoke Advance.
func (g *GameService) Submit(_ context.Context, gameID, playerID string, sub domain.Submission) (domain.AnswerRecord, error) {
	session, ok := g.sessions.Get(gameID)
	if !ok {
		return domain.AnswerRecord{}, domain.ErrSessionNotFound
	}
	return session.submit(playerID, sub)
}

// Advance moves the cursor forward when the current round is complete and
// reports whether it did.
func (g *GameService) Advance(_ context.Context, gameID string) (bool, error) {
	session, ok := g.sessions.Get(gameID)
	if !ok {
		return false, domain.ErrSessionNotFound
	}
	return session.advance(), nil
}

// Score recomputes the player's tally from the session's answer log.
func (g *GameService) Score(_ context.Context, gameID, playerID string) (domain.ScoreSummary, error) {
	session, ok := g.sessions.Get(gameID)
	if !ok {
		return domain.ScoreSummary{}, domain.ErrSessionNotFound
	}
	return session.score(playerID), nil
}

// State reports the session's lifecycle phase.
func (g *GameService) State(_ context.Context, gameID string) (domain.SessionState, error) {
	session, ok := g.sessions.Get(gameID)
	if !ok {
		return "", domain.ErrSessionNotFound
	}
	return session.state(), nil
}

// Subscribe returns a channel that receives round-state updates for a game.
// The caller must invoke the returned cancel function to avoid leaks.
func (g *GameService) Subscribe(_ context.Context, gameID string) (<-chan domain.RoundState, func(), error) {
	session, ok := g.sessions.Get(gameID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// Delete removes a session. Deleting an absent session is a no-op.
func (g *GameService) Delete(_ context.Context, gameID string) {
	g.sessions.Delete(gameID)
}
