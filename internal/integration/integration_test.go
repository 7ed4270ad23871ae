package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"trivia-service/internal/app"
	"trivia-service/internal/domain"
	pgstore "trivia-service/internal/infra/postgres"
	pgmigrations "trivia-service/internal/infra/postgres/migrations"
	infraredis "trivia-service/internal/infra/redis"
)

func TestQuestionBankEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	// Applying twice must be a no-op the second time.
	migrateDB(t, ctx, pgURL)
	migrateDB(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	store := pgstore.NewQuestionStore(pool)
	categories := infraredis.NewCategoryRepository(redisClient, pgstore.NewCategoryLoader(pool), 5*time.Minute)
	service := app.NewQuestionService(store, categories, 10)
	quiz := app.NewQuizService(store)

	page, err := service.ListQuestions(ctx, 2)
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(page.Questions) != 9 || page.TotalQuestions != 19 || len(page.Categories) != 6 {
		t.Fatalf("unexpected page 2: %d questions, total %d, %d categories",
			len(page.Questions), page.TotalQuestions, len(page.Categories))
	}
	if _, err := service.ListQuestions(ctx, 10); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for page 10, got %v", err)
	}
	if label, err := redisClient.HGet(ctx, "trivia:categories", "3").Result(); err != nil || label != "Geography" {
		t.Fatalf("expected categories cached in redis, got %q (%v)", label, err)
	}

	found, err := service.SearchQuestions(ctx, "TITLE", 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found.Questions) != 2 || found.TotalQuestions != 19 {
		t.Fatalf("unexpected search result: %+v", found)
	}
	if _, err := service.SearchQuestions(ctx, "100%_", 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("wildcards must match literally, got %v", err)
	}

	geography, err := service.QuestionsByCategory(ctx, 3, 1)
	if err != nil {
		t.Fatalf("by category: %v", err)
	}
	if geography.TotalQuestions != 3 || *geography.CurrentCategory != 3 {
		t.Fatalf("unexpected geography page: %+v", geography)
	}
	for _, q := range geography.Questions {
		if q.Category != 3 {
			t.Fatalf("question %d is not geography", q.ID)
		}
	}

	question, answer, difficulty, category := "Which planet is known as the Red Planet?", "Mars", "1", "1"
	created, err := service.CreateQuestion(ctx, app.NewQuestion{
		Question: &question, Answer: &answer, Difficulty: &difficulty, Category: &category,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created != 24 {
		t.Fatalf("expected id 24 after the seeded rows, got %d", created)
	}
	if n, _ := store.CountQuestions(ctx); n != 20 {
		t.Fatalf("expected 20 questions after create, got %d", n)
	}

	drawn, err := quiz.DrawNext(ctx, app.DrawRequest{
		PreviousQuestions: []int{13, 14},
		Category:          geography.CurrentCategory,
	})
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	if drawn.ID != 15 {
		t.Fatalf("expected question 15, got %d", drawn.ID)
	}

	deleted, err := service.DeleteQuestion(ctx, created)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted != created {
		t.Fatalf("expected %d echoed, got %d", created, deleted)
	}
	if _, err := service.DeleteQuestion(ctx, created); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
	if n, _ := store.CountQuestions(ctx); n != 19 {
		t.Fatalf("expected 19 questions after delete, got %d", n)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "trivia", "POSTGRES_PASSWORD": "triviapass", "POSTGRES_DB": "trivia"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://trivia:triviapass@%s:%s/trivia?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateDB(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
