package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"arena-contest-service/internal/app"
	"arena-contest-service/internal/config"
	"arena-contest-service/internal/infra/memory"
	"arena-contest-service/internal/infra/postgres"
	rediscache "arena-contest-service/internal/infra/redis"
	"arena-contest-service/internal/timer"
	transport "arena-contest-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the contest server",
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
	logger := newLogger(cfg)

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
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 6*time.Hour)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	memStore := memory.NewStore()
	var store app.Store = memStore
	if pool != nil {
		store = postgres.NewStore(pool)
	}

	questionTTL := config.TTLDuration(cfg.Contest.QuestionTTL, 10*time.Minute)
	var bank app.QuestionBank
	var boards app.LeaderboardCache
	var timerCache timer.StateStore
	if redisClient != nil {
		var loader rediscache.QuestionLoader = memStore
		if pool != nil {
			loader = postgres.NewStore(pool)
		}
		bank = rediscache.NewQuestionBank(redisClient, loader, questionTTL)
		boards = rediscache.NewLeaderboard(redisClient, redisTTL)
		timerCache = rediscache.NewTimerStore(redisClient, redisTTL)
	} else {
		var loader memory.QuestionLoader = memStore
		if pool != nil {
			loader = postgres.NewStore(pool)
		}
		bank = memory.NewQuestionBank(loader, questionTTL)
		boards = memory.NewLeaderboardCache()
		timerCache = memory.NewTimerStore()
	}

	hub := transport.NewHub(logger)
	service := app.NewContestService(store, bank, boards, timerCache, hub, clockwork.NewRealClock(), logger)
	defer service.Shutdown()

	wsHandler := transport.NewWSHandler(service, hub, logger)
	apiHandler := transport.NewAPIHandler(service, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	mux.HandleFunc("/contests", apiHandler.CreateContest)
	mux.HandleFunc("/contest", apiHandler.GetContest)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info().Str("port", finalPort).Msg("starting contest service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("server stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info().Msg("shutting down server")
	case <-ctx.Done():
		logger.Info().Msg("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil || cfg.Log.Level == "" {
		level = zerolog.InfoLevel
	}
	var out = os.Stderr
	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	if cfg.Log.Pretty {
		logger = logger.Output(zerolog.ConsoleWriter{Out: out})
	}
	return logger
}
