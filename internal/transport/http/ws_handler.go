package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"trivia-room-service/internal/app"
	"trivia-room-service/internal/domain"
)

// WSHandler wires websocket connections into the gameplay use cases. Each
// connection joins one player to one game and relays round progress.
type WSHandler struct {
	games    *app.GameService
	upgrader websocket.Upgrader
}

func NewWSHandler(games *app.GameService) *WSHandler {
	return &WSHandler{
		games: games,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Text        string `json:"text"`
	Option      int    `json:"option"`
	TimeTakenMS int64  `json:"timeTakenMs"`
}

type joinedPayload struct {
	GameID string              `json:"gameId"`
	Result domain.JoinResult   `json:"result"`
	State  domain.SessionState `json:"state"`
}

type answerResultPayload struct {
	QuestionIndex int  `json:"questionIndex"`
	Correct       bool `json:"correct"`
	CorrectCount  int  `json:"correctCount"`
	Experience    int  `json:"experience"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and drives one player through
// a game: join, receive questions, answer, and get a final summary.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("gameId")
	playerID := r.URL.Query().Get("playerId")
	if gameID == "" || playerID == "" {
		http.Error(w, "missing gameId or playerId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	result, err := h.games.Join(r.Context(), gameID, playerID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	state, err := h.games.State(r.Context(), gameID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	updates, cancel, err := h.games.Subscribe(r.Context(), gameID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		lastIndex := -1
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				msg, changed := h.roundMessage(r, gameID, playerID, update, &lastIndex)
				if !changed {
					continue
				}
				select {
				case send <- msg:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "joined", Payload: joinedPayload{GameID: gameID, Result: result, State: state}}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}}
				continue
			}
			h.handleAnswer(r, gameID, playerID, payload, send)
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func (h *WSHandler) handleAnswer(r *http.Request, gameID, playerID string, payload answerPayload, send chan<- outboundMessage[any]) {
	record, err := h.games.Submit(r.Context(), gameID, playerID, domain.Submission{
		Text:      payload.Text,
		Option:    payload.Option,
		TimeTaken: time.Duration(payload.TimeTakenMS) * time.Millisecond,
	})
	if err != nil {
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: wsErrorMessage(err)}}
		return
	}

	summary, err := h.games.Score(r.Context(), gameID, playerID)
	if err != nil {
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: wsErrorMessage(err)}}
		return
	}
	send <- outboundMessage[any]{Type: "answerResult", Payload: answerResultPayload{
		QuestionIndex: record.QuestionIndex,
		Correct:       record.Correct,
		CorrectCount:  summary.Correct,
		Experience:    summary.Experience,
	}}

	// Judgment and progression stay decoupled: the transport decides when to
	// try advancing, after each recorded answer.
	if _, err := h.games.Advance(r.Context(), gameID); err != nil {
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: wsErrorMessage(err)}}
	}
}

// roundMessage converts a round-state update into the outbound message for
// this player, suppressing updates that do not change the visible question.
func (h *WSHandler) roundMessage(r *http.Request, gameID, playerID string, update domain.RoundState, lastIndex *int) (outboundMessage[any], bool) {
	if update.State == domain.StateComplete {
		if *lastIndex == update.QuestionIndex {
			return outboundMessage[any]{}, false
		}
		*lastIndex = update.QuestionIndex
		summary, err := h.games.Score(r.Context(), gameID, playerID)
		if err != nil {
			return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: wsErrorMessage(err)}}, true
		}
		return outboundMessage[any]{Type: "complete", Payload: summary}, true
	}

	if update.QuestionIndex == *lastIndex {
		return outboundMessage[any]{}, false
	}
	question, index, err := h.games.CurrentQuestion(r.Context(), gameID)
	if err != nil {
		return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: wsErrorMessage(err)}}, true
	}
	*lastIndex = index
	return outboundMessage[any]{Type: "question", Payload: question.View(index)}, true
}

// wsErrorMessage keeps storage detail out of client-facing errors.
func wsErrorMessage(err error) string {
	if errors.Is(err, domain.ErrStorageUnavailable) {
		log.Printf("ws storage error: %v", err)
		return "temporarily unavailable, try again"
	}
	return err.Error()
}
