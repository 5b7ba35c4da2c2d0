package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"trivia-room-service/internal/domain"
)

// LobbyStore persists lobbies in Redis. SET NX makes code uniqueness a
// store-level invariant instead of a check-then-insert race, and the key TTL
// enforces the lobby deadline without a janitor.
type LobbyStore struct {
	client *redis.Client
}

func NewLobbyStore(client *redis.Client) *LobbyStore {
	return &LobbyStore{client: client}
}

func (s *LobbyStore) InsertUnique(ctx context.Context, lobby domain.Lobby) error {
	data, err := json.Marshal(lobby)
	if err != nil {
		return fmt.Errorf("marshal lobby: %w", err)
	}

	ok, err := s.client.SetNX(ctx, s.key(lobby.Code), data, domain.LobbyTTL).Result()
	if err != nil {
		return fmt.Errorf("insert lobby: %w", err)
	}
	if !ok {
		return domain.ErrCodeTaken
	}
	return nil
}

func (s *LobbyStore) FindByCode(ctx context.Context, code string) (domain.Lobby, error) {
	data, err := s.client.Get(ctx, s.key(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Lobby{}, domain.ErrLobbyNotFound
	}
	if err != nil {
		return domain.Lobby{}, fmt.Errorf("find lobby: %w", err)
	}

	var lobby domain.Lobby
	if err := json.Unmarshal(data, &lobby); err != nil {
		return domain.Lobby{}, fmt.Errorf("unmarshal lobby: %w", err)
	}
	return lobby, nil
}

func (s *LobbyStore) key(code string) string {
	return "lobby:code:" + code
}
