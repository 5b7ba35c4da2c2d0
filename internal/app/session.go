package app

import (
	"sync"
	"time"

	"trivia-room-service/internal/domain"
)

// Session is the in-memory state of one game: its fixed question list, the
// joined player set, the question cursor, and the append-only answer log.
// All mutation goes through the session's mutex, so each session has a
// single-writer discipline regardless of how many connections feed it.
type Session struct {
	id         string
	topic      string
	difficulty string
	questions  []domain.Question
	createdAt  time.Time
	now        func() time.Time

	mu          sync.RWMutex
	players     map[string]struct{}
	cursor      int
	answers     []domain.AnswerRecord
	subscribers map[chan domain.RoundState]struct{}
}

// NewSession is exported for infrastructure layers that need to seed sessions.
func NewSession(id, topic, difficulty string, questions []domain.Question) *Session {
	return newSessionWithClock(id, topic, difficulty, questions, time.Now)
}

// NewSessionWithClock is test-only for deterministic timestamps.
func NewSessionWithClock(id, topic, difficulty string, questions []domain.Question, now func() time.Time) *Session {
	return newSessionWithClock(id, topic, difficulty, questions, now)
}

func newSessionWithClock(id, topic, difficulty string, questions []domain.Question, now func() time.Time) *Session {
	return &Session{
		id:          id,
		topic:       topic,
		difficulty:  difficulty,
		questions:   questions,
		createdAt:   now(),
		now:         now,
		players:     make(map[string]struct{}),
		subscribers: make(map[chan domain.RoundState]struct{}),
	}
}

// ID returns the session's immutable identifier.
func (s *Session) ID() string {
	return s.id
}

func (s *Session) join(playerID string) domain.JoinResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.players[playerID]; ok {
		return domain.JoinAlreadyPresent
	}
	s.players[playerID] = struct{}{}
	s.broadcastLocked()
	return domain.JoinAdded
}

func (s *Session) currentQuestion() (domain.Question, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cursor >= len(s.questions) {
		return domain.Question{}, s.cursor, domain.ErrQuestionsExhausted
	}
	return s.questions[s.cursor], s.cursor, nil
}

// submit judges and appends an answer. It never advances the cursor;
// progression is a separate decision owned by the caller.
func (s *Session) submit(playerID string, sub domain.Submission) (domain.AnswerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.players[playerID]; !ok {
		return domain.AnswerRecord{}, domain.ErrPlayerNotJoined
	}
	if s.cursor >= len(s.questions) {
		return domain.AnswerRecord{}, domain.ErrNoActiveQuestion
	}
	for _, rec := range s.answers {
		if rec.PlayerID == playerID && rec.QuestionIndex == s.cursor {
			return domain.AnswerRecord{}, domain.ErrAnswerAlreadySubmitted
		}
	}

	question := s.questions[s.cursor]
	record := domain.AnswerRecord{
		PlayerID:      playerID,
		QuestionIndex: s.cursor,
		Text:          sub.Text,
		Option:        sub.Option,
		TimeTaken:     sub.TimeTaken,
		Correct:       domain.Judge(question, sub),
	}
	s.answers = append(s.answers, record)
	s.broadcastLocked()
	return record, nil
}

// advance moves the cursor forward one question when every joined player has
// answered the current round: the answer log length must be a non-zero exact
// multiple of the player count, and the completed rounds must exceed the
// cursor. An empty player set never advances.
func (s *Session) advance() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cursor >= len(s.questions) {
		return false
	}
	if len(s.players) == 0 || len(s.answers) == 0 {
		return false
	}
	if len(s.answers)%len(s.players) != 0 {
		return false
	}
	if len(s.answers)/len(s.players) <= s.cursor {
		return false
	}
	s.cursor++
	s.broadcastLocked()
	return true
}

// score recomputes the player's tally from the answer log on every call.
func (s *Session) score(playerID string) domain.ScoreSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := domain.ScoreSummary{PlayerID: playerID}
	for _, rec := range s.answers {
		if rec.PlayerID != playerID {
			continue
		}
		summary.Answered++
		if rec.Correct {
			summary.Correct++
		}
	}
	summary.Experience = Experience(summary.Correct)
	return summary
}

func (s *Session) state() domain.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() domain.SessionState {
	switch {
	case s.cursor >= len(s.questions):
		return domain.StateComplete
	case s.cursor == 0 && len(s.answers) == 0:
		return domain.StateLobby
	default:
		return domain.StateInProgress
	}
}

func (s *Session) subscribe() (<-chan domain.RoundState, func()) {
	ch := make(chan domain.RoundState, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.snapshotLocked()
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked() domain.RoundState {
	state := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- state:
		default:
			// Drop the stale update so a slow subscriber cannot block broadcast.
			select {
			case <-ch:
			default:
			}
			ch <- state
		}
	}
	return state
}

func (s *Session) snapshotLocked() domain.RoundState {
	answered := 0
	for _, rec := range s.answers {
		if rec.QuestionIndex == s.cursor {
			answered++
		}
	}
	return domain.RoundState{
		GameID:        s.id,
		QuestionIndex: s.cursor,
		Answered:      answered,
		Players:       len(s.players),
		State:         s.stateLocked(),
		UpdatedAt:     s.now(),
	}
}
