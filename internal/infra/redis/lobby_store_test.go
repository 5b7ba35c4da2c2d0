package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"trivia-room-service/internal/domain"
)

func TestLobbyStoreEnforcesCodeUniqueness(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewLobbyStore(newClient(mr))
	ctx := context.Background()

	lobby := domain.Lobby{
		Code:      "AB12C",
		Settings:  domain.GameSettings{TimeLimit: 30, QuestionCount: 5, Difficulty: "easy"},
		Players:   []string{},
		CreatedAt: time.Now(),
	}
	if err := store.InsertUnique(ctx, lobby); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := store.InsertUnique(ctx, lobby); !errors.Is(err, domain.ErrCodeTaken) {
		t.Fatalf("expected code taken, got %v", err)
	}

	found, err := store.FindByCode(ctx, "AB12C")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if found.Settings != lobby.Settings {
		t.Fatalf("expected settings %+v, got %+v", lobby.Settings, found.Settings)
	}
}

func TestLobbyStoreKeysExpire(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewLobbyStore(newClient(mr))
	ctx := context.Background()

	lobby := domain.Lobby{Code: "AB12C", CreatedAt: time.Now()}
	if err := store.InsertUnique(ctx, lobby); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	mr.FastForward(domain.LobbyTTL + time.Second)

	if _, err := store.FindByCode(ctx, "AB12C"); !errors.Is(err, domain.ErrLobbyNotFound) {
		t.Fatalf("expected expired lobby to be gone, got %v", err)
	}
	// The code becomes reusable once the key is gone.
	if err := store.InsertUnique(ctx, lobby); err != nil {
		t.Fatalf("reinsert after expiry failed: %v", err)
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
