package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"trivia-room-service/internal/app"
	"trivia-room-service/internal/domain"
)

// LobbyHandler exposes lobby creation and join over JSON.
type LobbyHandler struct {
	lobbies *app.LobbyService
}

func NewLobbyHandler(lobbies *app.LobbyService) *LobbyHandler {
	return &LobbyHandler{lobbies: lobbies}
}

type createLobbyRequest struct {
	GameSettings domain.GameSettings `json:"gameSettings"`
}

type createLobbyResponse struct {
	LobbyCode string `json:"lobbyCode"`
}

type joinLobbyRequest struct {
	Code string `json:"code"`
}

type joinLobbyResponse struct {
	Message      string              `json:"message"`
	GameSettings domain.GameSettings `json:"gameSettings"`
	Code         string              `json:"code"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Create handles POST /api/lobbies.
func (h *LobbyHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createLobbyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	code, err := h.lobbies.Create(r.Context(), req.GameSettings)
	if err != nil {
		writeLobbyError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createLobbyResponse{LobbyCode: code})
}

// Join handles POST /api/lobbies/join.
func (h *LobbyHandler) Join(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req joinLobbyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing lobby code"})
		return
	}

	lobby, err := h.lobbies.Join(r.Context(), req.Code)
	if err != nil {
		writeLobbyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, joinLobbyResponse{
		Message:      "Lobby joined",
		GameSettings: lobby.Settings,
		Code:         lobby.Code,
	})
}

// writeLobbyError maps service errors to responses without leaking internal
// detail for storage failures.
func writeLobbyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrLobbyNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Lobby not found"})
	case errors.Is(err, domain.ErrCodeSpaceExhausted):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "could not allocate a lobby code, try again"})
	case errors.Is(err, domain.ErrStorageUnavailable):
		log.Printf("lobby storage error: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "temporarily unavailable, try again"})
	default:
		log.Printf("lobby error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response: %v", err)
	}
}
