package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"trivia-service/internal/app"
	"trivia-service/internal/config"
	"trivia-service/internal/infra/memory"
	"trivia-service/internal/infra/postgres"
	rediscache "trivia-service/internal/infra/redis"
	"trivia-service/internal/logging"
	transport "trivia-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the trivia API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	ctx = logger.WithContext(ctx)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
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

	var (
		questions app.QuestionStore
		loader    memory.CategoryLoader
	)
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		questions = postgres.NewQuestionStore(pool)
		loader = postgres.NewCategoryLoader(pool)
		logger.Info().Msg("using postgres question store")
	} else {
		questions = memory.NewQuestionStore(memory.SeedQuestions())
		loader = memory.NewStaticCategoryLoader(memory.SeedCategories())
		logger.Info().Msg("using in-memory question store with sample data")
	}

	categoriesTTL := config.TTLDuration(cfg.Categories.TTL, 10*time.Minute)
	var categories app.CategoryRepository
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis not reachable yet")
		}
		categories = rediscache.NewCategoryRepository(client, loader, config.TTLDuration(cfg.Redis.TTL, categoriesTTL))
	} else {
		categories = memory.NewCategoryRepository(loader, categoriesTTL)
	}

	questionSvc := app.NewQuestionService(questions, categories, cfg.Questions.PageSize)
	quizSvc := app.NewQuizService(questions)

	gin.SetMode(gin.ReleaseMode)
	router := transport.NewRouter(
		transport.NewQuestionHandler(questionSvc, quizSvc),
		transport.NewWSHandler(quizSvc),
		logger,
		cfg.Server.CORSOrigins,
	)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("port", finalPort).Int("page_size", questionSvc.PageSize()).Msg("starting trivia service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
		logger.Info().Msg("shutting down server")
	case <-ctx.Done():
		logger.Info().Msg("context canceled, shutting down server")
	case err := <-serveErr:
		logger.Error().Err(err).Msg("server failed")
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return shutdownServer(shutdownCtx, server, logger)
}

func shutdownServer(ctx context.Context, server *http.Server, logger zerolog.Logger) error {
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
