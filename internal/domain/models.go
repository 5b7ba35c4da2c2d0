package domain

import "time"

// JudgingMode selects how a submitted answer is compared to the key.
type JudgingMode string

const (
	// JudgeText compares the submitted text to the key case-insensitively.
	JudgeText JudgingMode = "text"
	// JudgeChoice compares the submitted option index to the key index.
	JudgeChoice JudgingMode = "choice"
)

// AnswerKey is the tagged correctness rule for a question. Exactly one of
// Text or Index is meaningful, selected by Mode.
type AnswerKey struct {
	Mode  JudgingMode `json:"mode"`
	Text  string      `json:"text,omitempty"`
	Index int         `json:"index,omitempty"`
}

// Question is one trivia prompt. Options may be empty in text mode.
type Question struct {
	Text    string    `json:"text"`
	Options []string  `json:"options,omitempty"`
	Key     AnswerKey `json:"key"`
}

// QuestionView is the client-safe projection of a question; it never
// carries the answer key.
type QuestionView struct {
	Index   int      `json:"index"`
	Text    string   `json:"text"`
	Options []string `json:"options,omitempty"`
	Mode    string   `json:"mode"`
}

// View strips the answer key for transport to clients.
func (q Question) View(index int) QuestionView {
	return QuestionView{
		Index:   index,
		Text:    q.Text,
		Options: q.Options,
		Mode:    string(q.Key.Mode),
	}
}

// Submission models one player's answer to the current question.
type Submission struct {
	Text      string
	Option    int
	TimeTaken time.Duration
}

// AnswerRecord is an append-only entry in a session's answer log. Correct is
// derived at submission time and recomputed for scoring; the log order is the
// arrival order of submissions.
type AnswerRecord struct {
	PlayerID      string        `json:"playerId"`
	QuestionIndex int           `json:"questionIndex"`
	Text          string        `json:"text,omitempty"`
	Option        int           `json:"option,omitempty"`
	TimeTaken     time.Duration `json:"timeTaken"`
	Correct       bool          `json:"correct"`
}

// JoinResult distinguishes a first join from an idempotent re-join.
// AlreadyPresent is informational, not an error.
type JoinResult string

const (
	JoinAdded          JoinResult = "added"
	JoinAlreadyPresent JoinResult = "alreadyPresent"
)

// SessionState is the lifecycle phase of a game session. Transitions only
// move forward.
type SessionState string

const (
	StateLobby      SessionState = "lobby"
	StateInProgress SessionState = "inProgress"
	StateComplete   SessionState = "complete"
)

// RoundState is the broadcastable progress snapshot for a session.
type RoundState struct {
	GameID        string       `json:"gameId"`
	QuestionIndex int          `json:"questionIndex"`
	Answered      int          `json:"answered"`
	Players       int          `json:"players"`
	State         SessionState `json:"state"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// ScoreSummary is the per-player aggregation over a session's answer log,
// recomputed on demand so it is always consistent with the latest append.
type ScoreSummary struct {
	PlayerID   string `json:"playerId"`
	Correct    int    `json:"correct"`
	Answered   int    `json:"answered"`
	Experience int    `json:"experience"`
}

// GameSettings are the host-chosen options attached to a lobby.
type GameSettings struct {
	TimeLimit     int    `json:"timeLimit"`
	QuestionCount int    `json:"questionCount"`
	Difficulty    string `json:"difficulty"`
}

// Lobby is the short-code waiting room record persisted by a LobbyStore.
// A lobby expires exactly LobbyTTL after CreatedAt; no mutation extends it.
type Lobby struct {
	Code      string       `json:"code"`
	Settings  GameSettings `json:"gameSettings"`
	Players   []string     `json:"players"`
	CreatedAt time.Time    `json:"createdAt"`
}

// LobbyTTL is how long a lobby stays joinable after creation.
const LobbyTTL = 3600 * time.Second

// Expired reports whether the lobby is past its deadline at now.
func (l Lobby) Expired(now time.Time) bool {
	return !now.Before(l.CreatedAt.Add(LobbyTTL))
}
