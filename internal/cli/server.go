package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quizlink-service/internal/app"
	"quizlink-service/internal/config"
	"quizlink-service/internal/infra/files"
	"quizlink-service/internal/infra/memory"
	pgloader "quizlink-service/internal/infra/postgres"
	redisinfra "quizlink-service/internal/infra/redis"
	"quizlink-service/internal/integrity"
	"quizlink-service/internal/lib/slogcustom"
	transport "quizlink-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func setupLogger(cfg config.Config) *slog.Logger {
	log := slogcustom.New(os.Stdout, cfg.Log.Level)
	slog.SetDefault(log)
	return log
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := setupLogger(cfg)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
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

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.QuizLoader = files.NewQuizLoader(cfg.Quiz.Dir)
	if pool != nil {
		loader = pgloader.NewQuizLoader(pool)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	if redisClient != nil {
		quizRepo = redisinfra.NewQuizRepository(redisClient, loader, quizTTL)
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
	}

	stores, err := answerStores(cfg, redisClient)
	if err != nil {
		return err
	}

	codec := integrity.NewCodec(cfg.Integrity.Secret)
	service := app.NewQuizService(quizRepo, app.NewNavigator(codec), log)
	router := transport.NewRouter(transport.Options{
		Service:        service,
		Documents:      loader,
		Stores:         stores,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         log,
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting quiz service", "port", finalPort, "storage", cfg.Storage.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// answerStores picks where answer records live. A nil result keeps them in
// browser cookies.
func answerStores(cfg config.Config, redisClient *redis.Client) (app.AnswerStores, error) {
	switch cfg.Storage.Driver {
	case config.StorageCookie:
		return nil, nil
	case config.StorageRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("storage driver %q needs redis.addr", cfg.Storage.Driver)
		}
		return redisinfra.NewAnswerStores(redisClient, config.TTLDuration(cfg.Storage.TTL, 30*24*time.Hour)), nil
	case config.StorageMemory, "":
		return memory.NewAnswerStores(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
