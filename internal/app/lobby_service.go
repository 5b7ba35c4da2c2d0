package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"trivia-room-service/internal/domain"
)

// codeAlphabet matches the lobby-code character set: uppercase base36.
const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// codeLength is the number of characters in a lobby code.
const codeLength = 5

// CodeGenerator produces random lobby codes from a fixed alphabet.
type CodeGenerator struct {
	alphabet string
	length   int

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewCodeGenerator() *CodeGenerator {
	return NewCodeGeneratorWith(codeAlphabet, codeLength, time.Now().UnixNano())
}

// NewCodeGeneratorWith allows tests to restrict the alphabet and pin the seed.
func NewCodeGeneratorWith(alphabet string, length int, seed int64) *CodeGenerator {
	return &CodeGenerator{
		alphabet: alphabet,
		length:   length,
		rnd:      rand.New(rand.NewSource(seed)),
	}
}

// Next returns a fresh candidate code. Uniqueness is the store's concern.
func (g *CodeGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var b strings.Builder
	b.Grow(g.length)
	for i := 0; i < g.length; i++ {
		b.WriteByte(g.alphabet[g.rnd.Intn(len(g.alphabet))])
	}
	return b.String()
}

// LobbyStore persists lobby records keyed by their short code.
type LobbyStore interface {
	// InsertUnique stores the lobby, failing with domain.ErrCodeTaken when a
	// live lobby already holds the code.
	InsertUnique(ctx context.Context, lobby domain.Lobby) error
	// FindByCode returns the lobby for an uppercase code, failing with
	// domain.ErrLobbyNotFound when absent or expired.
	FindByCode(ctx context.Context, code string) (domain.Lobby, error)
}

// LobbyService creates and resolves short-code lobbies. Storage calls are
// bounded by a timeout; a store that cannot answer in time surfaces as
// domain.ErrStorageUnavailable rather than hanging the caller.
type LobbyService struct {
	store          LobbyStore
	codes          *CodeGenerator
	maxAttempts    int
	storageTimeout time.Duration
	now            func() time.Time
}

func NewLobbyService(store LobbyStore, codes *CodeGenerator, maxAttempts int, storageTimeout time.Duration) *LobbyService {
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	if storageTimeout <= 0 {
		storageTimeout = 3 * time.Second
	}
	return &LobbyService{
		store:          store,
		codes:          codes,
		maxAttempts:    maxAttempts,
		storageTimeout: storageTimeout,
		now:            time.Now,
	}
}

// Create allocates a lobby under a fresh code. Code collisions are retried up
// to the attempt cap, then reported as domain.ErrCodeSpaceExhausted.
func (l *LobbyService) Create(ctx context.Context, settings domain.GameSettings) (string, error) {
	for attempt := 0; attempt < l.maxAttempts; attempt++ {
		code := l.codes.Next()
		lobby := domain.Lobby{
			Code:      code,
			Settings:  settings,
			Players:   []string{},
			CreatedAt: l.now(),
		}

		err := l.withTimeout(ctx, func(ctx context.Context) error {
			return l.store.InsertUnique(ctx, lobby)
		})
		switch {
		case err == nil:
			return code, nil
		case errors.Is(err, domain.ErrCodeTaken):
			continue
		default:
			return "", err
		}
	}
	return "", domain.ErrCodeSpaceExhausted
}

// Join resolves a code to its lobby. Codes are case-insensitive on input.
func (l *LobbyService) Join(ctx context.Context, code string) (domain.Lobby, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	var lobby domain.Lobby
	err := l.withTimeout(ctx, func(ctx context.Context) error {
		var findErr error
		lobby, findErr = l.store.FindByCode(ctx, code)
		return findErr
	})
	if err != nil {
		return domain.Lobby{}, err
	}
	// Stores without native TTLs rely on this check.
	if lobby.Expired(l.now()) {
		return domain.Lobby{}, domain.ErrLobbyNotFound
	}
	return lobby, nil
}

// withTimeout bounds one storage call and folds timeouts and transport
// failures into the storage-unavailable kind. Domain results pass through.
func (l *LobbyService) withTimeout(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, l.storageTimeout)
	defer cancel()

	err := fn(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrCodeTaken), errors.Is(err, domain.ErrLobbyNotFound):
		return err
	default:
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
}
