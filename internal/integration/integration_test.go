package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"matha-service/internal/app"
	"matha-service/internal/domain"
	"matha-service/internal/infra/mongo"
	"matha-service/internal/infra/postgres"
	infraredis "matha-service/internal/infra/redis"
	"matha-service/internal/logger"
	"matha-service/internal/seed"
)

func TestDocumentStoreContract(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	t.Run("postgres", func(t *testing.T) {
		pool := startPostgres(t, ctx)
		exerciseStore(t, ctx, postgres.NewDocumentStore(pool))
	})
	t.Run("mongo", func(t *testing.T) {
		uri := startContainer(t, ctx, "mongo:7", "27017/tcp", nil, "mongodb://%s:%s")
		client, err := mongo.Connect(ctx, uri, 20*time.Second)
		if err != nil {
			t.Fatalf("connect mongo: %v", err)
		}
		t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
		exerciseStore(t, ctx, mongo.NewDocumentStore(client.Database("matha_test")))
	})
}

func TestQuizOnPostgresAndRedis(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pool := startPostgres(t, ctx)
	store := postgres.NewDocumentStore(pool)
	log := logger.Nop()
	if _, err := seed.Apply(ctx, store, seed.Default(), log); err != nil {
		t.Fatalf("seed: %v", err)
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	if err := store.Upsert(ctx, domain.CollectionUsers, "u1", domain.User{ID: "u1", DisplayName: "Asha", CreatedAt: now}); err != nil {
		t.Fatalf("user: %v", err)
	}

	client := startRedis(t, ctx)
	cache := infraredis.NewQuestionCache(client, app.NewStoreQuestionRepository(store), time.Minute)
	recorder := app.NewRecorder(store, nil, nil, log)
	service := app.NewQuizService(app.NewQuestionBank(cache, 10, log), infraredis.NewSessionStore(client, time.Minute), recorder, log)

	session, err := service.Start(ctx, "u1", "cat1", domain.DifficultyEasy)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if session.Total() != 2 {
		t.Fatalf("expected 2 seeded questions, got %d", session.Total())
	}
	var outcome app.AnswerOutcome
	for i := 0; i < session.Total(); i++ {
		current, err := service.Get(ctx, session.ID)
		if err != nil {
			t.Fatalf("get session: %v", err)
		}
		q, ok := current.Current()
		if !ok {
			t.Fatalf("no current question at %d", i)
		}
		outcome, _, err = service.Answer(ctx, session.ID, app.Submission{QuestionID: q.ID, Option: q.CorrectAnswer})
		if err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
	}
	if !outcome.Completed || outcome.Score != 20 || outcome.ResultID == "" {
		t.Fatalf("unexpected final outcome %+v", outcome)
	}

	var user domain.User
	if err := store.Get(ctx, domain.CollectionUsers, "u1", &user); err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.Points != 20 || user.QuizzesTaken != 1 || user.Streak != 1 {
		t.Fatalf("aggregates not updated %+v", user)
	}
	history, err := recorder.History(ctx, "u1")
	if err != nil || len(history) != 1 {
		t.Fatalf("history: %+v err=%v", history, err)
	}
	if rank, err := app.NewLeaderboardRanker(store, log).RankOf(ctx, "u1"); err != nil || rank.Rank != 1 {
		t.Fatalf("rank: %+v err=%v", rank, err)
	}
	if n, err := client.Exists(ctx, "quiz:questions:cat1:easy:0").Result(); err != nil || n != 1 {
		t.Fatalf("expected cached question set, exists=%d err=%v", n, err)
	}
}

func TestOTPStoreOnRedis(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	codes := infraredis.NewOTPStore(startRedis(t, ctx))
	record := app.OTPRecord{PhoneNumber: "9876543210", CodeHash: "digest", CreatedAt: time.Now().UTC()}
	if err := codes.Save(ctx, record, time.Second); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := codes.Get(ctx, record.PhoneNumber)
	if err != nil || got.CodeHash != "digest" {
		t.Fatalf("get: %+v err=%v", got, err)
	}
	time.Sleep(1500 * time.Millisecond)
	if _, err := codes.Get(ctx, record.PhoneNumber); !errors.Is(err, domain.ErrOTPNotFound) {
		t.Fatalf("expected expiry, got %v", err)
	}
}

func exerciseStore(t *testing.T, ctx context.Context, store app.DocumentStore) {
	t.Helper()
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	u1 := domain.User{ID: "u1", DisplayName: "Asha", PhoneNumber: "9876543210", Points: 5, CreatedAt: created}
	if err := store.Upsert(ctx, domain.CollectionUsers, u1.ID, u1); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	u1.DisplayName = "Asha Rao"
	if err := store.Upsert(ctx, domain.CollectionUsers, u1.ID, u1); err != nil {
		t.Fatalf("replace: %v", err)
	}
	var got domain.User
	if err := store.Get(ctx, domain.CollectionUsers, "u1", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != "u1" || got.DisplayName != "Asha Rao" || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected user %+v", got)
	}
	if err := store.Get(ctx, domain.CollectionUsers, "missing", &got); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	for i, points := range []int{30, 10, 20} {
		u := domain.User{ID: fmt.Sprintf("p%d", i), DisplayName: "P", Points: points}
		if err := store.Upsert(ctx, domain.CollectionUsers, u.ID, u); err != nil {
			t.Fatalf("upsert %s: %v", u.ID, err)
		}
	}
	var top []domain.User
	if err := store.Find(ctx, domain.CollectionUsers, app.Query{OrderBy: "points", Descending: true, Limit: 2}, &top); err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(top) != 2 || top[0].ID != "p0" || top[1].ID != "p2" {
		t.Fatalf("unexpected ordering %+v", top)
	}
	var byPhone []domain.User
	if err := store.Find(ctx, domain.CollectionUsers, app.Query{Filters: []app.Filter{app.Eq("phoneNumber", "9876543210")}}, &byPhone); err != nil {
		t.Fatalf("find by phone: %v", err)
	}
	if len(byPhone) != 1 || byPhone[0].ID != "u1" {
		t.Fatalf("unexpected filter result %+v", byPhone)
	}

	active := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	err := store.Increment(ctx, domain.CollectionUsers, "u1",
		map[string]int{"points": 15, "quizzesTaken": 1},
		map[string]any{"streak": 1, "lastActiveAt": active})
	if err != nil {
		t.Fatalf("increment: %v", err)
	}
	if err := store.Get(ctx, domain.CollectionUsers, "u1", &got); err != nil {
		t.Fatalf("get after increment: %v", err)
	}
	if got.Points != 20 || got.QuizzesTaken != 1 || got.Streak != 1 || !got.LastActiveAt.Equal(active) || got.DisplayName != "Asha Rao" {
		t.Fatalf("unexpected user after increment %+v", got)
	}
	if err := store.Increment(ctx, domain.CollectionUsers, "missing", map[string]int{"points": 1}, nil); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on increment, got %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) *pgxpool.Pool {
	t.Helper()
	dsn := startContainer(t, ctx, "postgres:15-alpine", "5432/tcp", map[string]string{
		"POSTGRES_USER":     "matha",
		"POSTGRES_PASSWORD": "mathapass",
		"POSTGRES_DB":       "matha",
	}, "postgres://matha:mathapass@%s:%s/matha?sslmode=disable")

	// The port opens before postgres accepts connections on first boot.
	var err error
	for attempt := 0; attempt < 20; attempt++ {
		if _, err = postgres.Migrate(ctx, dsn); err == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func startRedis(t *testing.T, ctx context.Context) *goredis.Client {
	t.Helper()
	url := startContainer(t, ctx, "redis:7-alpine", "6379/tcp", nil, "redis://%s:%s")
	opts, err := goredis.ParseURL(url)
	if err != nil {
		t.Fatalf("redis url: %v", err)
	}
	client, err := infraredis.Dial(ctx, opts.Addr, opts.Password, opts.DB)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// startContainer runs image and returns urlFormat filled with host and port.
func startContainer(t *testing.T, ctx context.Context, image, port string, env map[string]string, urlFormat string) string {
	t.Helper()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        image,
			Env:          env,
			ExposedPorts: []string{port},
			WaitingFor:   wait.ForListeningPort(nat.Port(port)).WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start %s: %v", image, err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("%s host: %v", image, err)
	}
	mapped, err := container.MappedPort(ctx, nat.Port(port))
	if err != nil {
		t.Fatalf("%s port: %v", image, err)
	}
	return fmt.Sprintf(urlFormat, host, mapped.Port())
}

func requireDocker(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("integration tests skipped in short mode")
	}
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
