package integration

import (
	"context"
	"database/sql"
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

	"quizlink-service/internal/app"
	pgloader "quizlink-service/internal/infra/postgres"
	pgmigrations "quizlink-service/internal/infra/postgres/migrations"
	infraredis "quizlink-service/internal/infra/redis"
	"quizlink-service/internal/integrity"
)

func TestQuizEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedQuiz(t, ctx, pgURL, "demo", sampleDocument())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := pgloader.NewQuizLoader(pool)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	codec := integrity.NewCodec("integration-secret")
	quizRepo := infraredis.NewQuizRepository(redisClient, loader, 5*time.Minute)
	stores := infraredis.NewAnswerStores(redisClient, time.Hour)
	service := app.NewQuizService(quizRepo, app.NewNavigator(codec), nil)
	store := stores.ForClient("browser-1")

	next, state, err := service.Answer(ctx, store, "demo", 0, 1)
	if err != nil {
		t.Fatalf("answer 1: %v", err)
	}
	if state.View != app.ViewQuestion || state.Question.Index != 1 {
		t.Fatalf("expected second question, got %+v", state)
	}

	next, state, err = service.Answer(ctx, store, "demo", 1, 1)
	if err != nil {
		t.Fatalf("answer 2: %v", err)
	}
	if state.View != app.ViewResult || state.Score != 1 || state.Total != 2 {
		t.Fatalf("expected result 1 of 2, got %+v", state)
	}
	if !codec.Verify(next.Get(app.ParamResult), next.Get(app.ParamResultRand), next.Get(app.ParamResultHash)) {
		t.Fatalf("expected verifiable token in %v", next)
	}

	record, err := redisClient.HGet(ctx, "quiz:answers:browser-1", "demo").Result()
	if err != nil {
		t.Fatalf("read answer record: %v", err)
	}
	if record != "[1,1]" {
		t.Fatalf("expected stored record [1,1], got %s", record)
	}

	if state := service.View(ctx, next); state.View != app.ViewResult {
		t.Fatalf("expected result view from url, got %+v", state)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
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
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
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

// seedQuiz migrates the schema and stores doc through the same importer the CLI uses.
func seedQuiz(t *testing.T, ctx context.Context, dsn, name string, doc map[string]any) {
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

	if err := pgloader.NewImporter(db).Upsert(ctx, name, doc); err != nil {
		t.Fatalf("insert quiz: %v", err)
	}
}

func sampleDocument() map[string]any {
	return map[string]any{
		"questions": []any{
			map[string]any{"question": "What is 2 + 2?", "answers": []any{"3", "4", "5"}, "correctAnswerIndex": 1},
			map[string]any{"question": "Closest planet?", "answers": []any{"Mercury", "Mars"}, "correctAnswerIndex": 0},
		},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
