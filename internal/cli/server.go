package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"trivia-room-service/internal/app"
	"trivia-room-service/internal/config"
	"trivia-room-service/internal/domain"
	"trivia-room-service/internal/infra/memory"
	pgsource "trivia-room-service/internal/infra/postgres"
	redisinfra "trivia-room-service/internal/infra/redis"
	transport "trivia-room-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the trivia room server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var source app.QuestionSource = memory.NewStaticQuestionSource(sampleQuestions())
	if pool != nil {
		source = pgsource.NewQuestionSource(pool)
	}

	questionTTL := config.TTLDuration(cfg.Questions.TTL, 10*time.Minute)
	if redisClient != nil {
		source = redisinfra.NewQuestionCache(redisClient, source, questionTTL)
	} else {
		source = memory.NewCachingQuestionSource(source, questionTTL)
	}

	var lobbyStore app.LobbyStore
	if redisClient != nil {
		lobbyStore = redisinfra.NewLobbyStore(redisClient)
	} else {
		lobbyStore = memory.NewLobbyStore()
	}

	storageTimeout := config.TTLDuration(cfg.Lobby.StorageTimeout, 3*time.Second)
	lobbyService := app.NewLobbyService(lobbyStore, app.NewCodeGenerator(), cfg.Lobby.MaxCodeAttempts, storageTimeout)
	gameService := app.NewGameService(memory.NewSessionStore(), source)

	lobbyHandler := transport.NewLobbyHandler(lobbyService)
	gameHandler := transport.NewGameHandler(gameService)
	wsHandler := transport.NewWSHandler(gameService)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/api/lobbies", lobbyHandler.Create)
	mux.HandleFunc("/api/lobbies/join", lobbyHandler.Join)
	mux.HandleFunc("/api/games", gameHandler.Create)
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting trivia room service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuestions is the built-in fixture set; a Postgres-backed source
// replaces it in production.
func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			Text: "What is the capital of France?",
			Key:  domain.AnswerKey{Mode: domain.JudgeText, Text: "Paris"},
		},
		{
			Text: "Who wrote \"Hamlet\"?",
			Key:  domain.AnswerKey{Mode: domain.JudgeText, Text: "Shakespeare"},
		},
		{
			Text:    "What is 2 + 2?",
			Options: []string{"3", "4", "5"},
			Key:     domain.AnswerKey{Mode: domain.JudgeChoice, Index: 1},
		},
	}
}
