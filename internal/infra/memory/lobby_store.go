package memory

import (
	"context"
	"sync"
	"time"

	"trivia-room-service/internal/domain"
)

// LobbyStore is an in-memory implementation of app.LobbyStore. Expiry is
// enforced lazily: an expired record neither blocks a new insert under the
// same code nor resolves on lookup.
type LobbyStore struct {
	clock func() time.Time

	mu      sync.RWMutex
	lobbies map[string]domain.Lobby
}

func NewLobbyStore() *LobbyStore {
	return NewLobbyStoreWithClock(time.Now)
}

// NewLobbyStoreWithClock allows deterministic expiry in tests.
func NewLobbyStoreWithClock(clock func() time.Time) *LobbyStore {
	return &LobbyStore{
		clock:   clock,
		lobbies: make(map[string]domain.Lobby),
	}
}

func (s *LobbyStore) InsertUnique(_ context.Context, lobby domain.Lobby) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.lobbies[lobby.Code]; ok && !existing.Expired(s.clock()) {
		return domain.ErrCodeTaken
	}
	s.lobbies[lobby.Code] = lobby
	return nil
}

func (s *LobbyStore) FindByCode(_ context.Context, code string) (domain.Lobby, error) {
	s.mu.RLock()
	lobby, ok := s.lobbies[code]
	s.mu.RUnlock()

	if !ok {
		return domain.Lobby{}, domain.ErrLobbyNotFound
	}
	if lobby.Expired(s.clock()) {
		s.mu.Lock()
		delete(s.lobbies, code)
		s.mu.Unlock()
		return domain.Lobby{}, domain.ErrLobbyNotFound
	}
	return lobby, nil
}
