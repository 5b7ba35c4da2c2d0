package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"trivia-room-service/internal/app"
	"trivia-room-service/internal/domain"
	"trivia-room-service/internal/infra/memory"
)

func TestCreateAndJoinLobbyOverHTTP(t *testing.T) {
	server := newLobbyServer(t)
	defer server.Close()

	body := map[string]any{
		"gameSettings": map[string]any{
			"timeLimit":     30,
			"questionCount": 10,
			"difficulty":    "easy",
		},
	}
	resp := postJSON(t, server.URL+"/api/lobbies", body)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var created struct {
		LobbyCode string `json:"lobbyCode"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if len(created.LobbyCode) != 5 {
		t.Fatalf("expected 5-character code, got %q", created.LobbyCode)
	}

	joinResp := postJSON(t, server.URL+"/api/lobbies/join", map[string]any{"code": created.LobbyCode})
	defer joinResp.Body.Close()
	if joinResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", joinResp.StatusCode)
	}

	var joined struct {
		Message      string              `json:"message"`
		GameSettings domain.GameSettings `json:"gameSettings"`
		Code         string              `json:"code"`
	}
	if err := json.NewDecoder(joinResp.Body).Decode(&joined); err != nil {
		t.Fatalf("decode join response: %v", err)
	}
	if joined.Message != "Lobby joined" || joined.Code != created.LobbyCode {
		t.Fatalf("unexpected join response: %+v", joined)
	}
	if joined.GameSettings.Difficulty != "easy" || joined.GameSettings.TimeLimit != 30 {
		t.Fatalf("settings did not round-trip: %+v", joined.GameSettings)
	}
}

func TestJoinUnknownLobbyReturns404(t *testing.T) {
	server := newLobbyServer(t)
	defer server.Close()

	resp := postJSON(t, server.URL+"/api/lobbies/join", map[string]any{"code": "NOPE1"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if body.Error != "Lobby not found" {
		t.Fatalf("unexpected error message: %q", body.Error)
	}
}

func TestJoinWithoutCodeReturns400(t *testing.T) {
	server := newLobbyServer(t)
	defer server.Close()

	resp := postJSON(t, server.URL+"/api/lobbies/join", map[string]any{})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func newLobbyServer(t *testing.T) *httptest.Server {
	t.Helper()
	service := app.NewLobbyService(memory.NewLobbyStore(), app.NewCodeGenerator(), 10, time.Second)
	handler := NewLobbyHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/lobbies", handler.Create)
	mux.HandleFunc("/api/lobbies/join", handler.Join)
	return httptest.NewServer(mux)
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}
