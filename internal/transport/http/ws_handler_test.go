package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"trivia-room-service/internal/app"
	"trivia-room-service/internal/domain"
	"trivia-room-service/internal/infra/memory"
)

func TestWebSocketAnswerFlow(t *testing.T) {
	service := newGameService()
	gameID, err := service.Create(context.Background(), "general", "easy")
	if err != nil {
		t.Fatalf("create game: %v", err)
	}

	server := newWSServer(service)
	defer server.Close()

	conn := dial(t, server, gameID, "p1")
	defer conn.Close()

	// Expect joined and the first question, in either order relative to the
	// initial snapshot.
	joinedSeen := false
	questionSeen := false
	for i := 0; i < 3 && !(joinedSeen && questionSeen); i++ {
		typ, _ := readNext(conn, t)
		switch typ {
		case "joined":
			joinedSeen = true
		case "question":
			questionSeen = true
		}
	}
	if !joinedSeen || !questionSeen {
		t.Fatalf("expected joined and question, got joined=%v question=%v", joinedSeen, questionSeen)
	}

	// Answer the first question correctly.
	writeAnswer(conn, t, map[string]any{"text": "paris", "timeTakenMs": 1200})

	sawResult := false
	sawNextQuestion := false
	for i := 0; i < 4 && !(sawResult && sawNextQuestion); i++ {
		typ, payload := readNext(conn, t)
		switch typ {
		case "answerResult":
			sawResult = true
			if correct, _ := payload["correct"].(bool); !correct {
				t.Fatalf("expected correct answer, got %+v", payload)
			}
			if xp, _ := payload["experience"].(float64); int(xp) != app.Experience(1) {
				t.Fatalf("expected %d experience, got %v", app.Experience(1), payload["experience"])
			}
		case "question":
			sawNextQuestion = true
			if idx, _ := payload["index"].(float64); int(idx) != 1 {
				t.Fatalf("expected question index 1, got %v", payload["index"])
			}
		}
	}
	if !sawResult || !sawNextQuestion {
		t.Fatalf("expected answerResult and next question, got result=%v question=%v", sawResult, sawNextQuestion)
	}
}

func TestWebSocketCompletesGame(t *testing.T) {
	service := newGameService()
	gameID, err := service.Create(context.Background(), "general", "easy")
	if err != nil {
		t.Fatalf("create game: %v", err)
	}

	server := newWSServer(service)
	defer server.Close()

	conn := dial(t, server, gameID, "p1")
	defer conn.Close()

	answers := []map[string]any{
		{"text": "Paris"},
		{"text": "Shakespeare"},
	}

	sent := 0
	completed := false
	for i := 0; i < 12 && !completed; i++ {
		typ, payload := readNext(conn, t)
		switch typ {
		case "question":
			if sent < len(answers) {
				writeAnswer(conn, t, answers[sent])
				sent++
			}
		case "complete":
			completed = true
			if correct, _ := payload["correct"].(float64); int(correct) != 2 {
				t.Fatalf("expected 2 correct, got %v", payload["correct"])
			}
			if xp, _ := payload["experience"].(float64); int(xp) != app.Experience(2) {
				t.Fatalf("expected %d experience, got %v", app.Experience(2), payload["experience"])
			}
		case "error":
			t.Fatalf("unexpected error message: %+v", payload)
		}
	}
	if !completed {
		t.Fatalf("game never reached completion")
	}
}

func TestWebSocketRejectsUnknownGame(t *testing.T) {
	service := newGameService()
	server := newWSServer(service)
	defer server.Close()

	conn := dial(t, server, "missing", "p1")
	defer conn.Close()

	typ, payload := readNext(conn, t)
	if typ != "error" {
		t.Fatalf("expected error message, got %s", typ)
	}
	if payload["message"] == "" {
		t.Fatalf("expected error detail, got %+v", payload)
	}
}

func newGameService() *app.GameService {
	source := memory.NewStaticQuestionSource([]domain.Question{
		{
			Text: "What is the capital of France?",
			Key:  domain.AnswerKey{Mode: domain.JudgeText, Text: "Paris"},
		},
		{
			Text: "Who wrote \"Hamlet\"?",
			Key:  domain.AnswerKey{Mode: domain.JudgeText, Text: "Shakespeare"},
		},
	})
	return app.NewGameService(memory.NewSessionStore(), source)
}

func newWSServer(service *app.GameService) *httptest.Server {
	wsHandler := NewWSHandler(service)
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	return httptest.NewServer(mux)
}

func dial(t *testing.T, server *httptest.Server, gameID, playerID string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws?gameId=" + gameID + "&playerId=" + playerID
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func writeAnswer(conn *websocket.Conn, t *testing.T, payload map[string]any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": "answer", "payload": payload}); err != nil {
		t.Fatalf("write answer: %v", err)
	}
}

func readNext(conn *websocket.Conn, t *testing.T) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	return msg.Type, msg.Payload
}
