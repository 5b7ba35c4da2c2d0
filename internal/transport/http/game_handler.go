package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"trivia-room-service/internal/app"
	"trivia-room-service/internal/domain"
)

// GameHandler exposes game session creation over JSON; gameplay itself runs
// over the websocket handler.
type GameHandler struct {
	games *app.GameService
}

func NewGameHandler(games *app.GameService) *GameHandler {
	return &GameHandler{games: games}
}

type createGameRequest struct {
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
}

type createGameResponse struct {
	GameID string `json:"gameId"`
}

// Create handles POST /api/games.
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	gameID, err := h.games.Create(r.Context(), req.Topic, req.Difficulty)
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createGameResponse{GameID: gameID})
}

func writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "game not found"})
	case errors.Is(err, domain.ErrQuestionSetNotFound), errors.Is(err, domain.ErrNoQuestions):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no questions for this topic and difficulty"})
	case errors.Is(err, domain.ErrStorageUnavailable):
		log.Printf("game storage error: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "temporarily unavailable, try again"})
	default:
		log.Printf("game error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
