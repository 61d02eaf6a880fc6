package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"matha-service/internal/app"
	"matha-service/internal/config"
	"matha-service/internal/infra/memory"
	"matha-service/internal/infra/mongo"
	"matha-service/internal/infra/postgres"
	"matha-service/internal/infra/rabbitmq"
	infraredis "matha-service/internal/infra/redis"
	"matha-service/internal/logger"
	"matha-service/internal/seed"
)

// backends is the set of storage and messaging adapters selected by config.
type backends struct {
	store     app.DocumentStore
	questions app.QuestionRepository
	sessions  app.SessionRepository
	codes     app.OTPStore
	publisher app.EventPublisher

	closers []func()
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// openStore connects the document store named by store.driver.
func openStore(ctx context.Context, cfg config.Config, log *logger.Logger) (app.DocumentStore, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		store := memory.NewDocumentStore()
		counts, err := seed.Apply(ctx, store, seed.Default(), log)
		if err != nil {
			return nil, nil, fmt.Errorf("seed memory store: %w", err)
		}
		log.Info("memory store seeded", "documents", counts.Total())
		return store, func() {}, nil

	case config.DriverMongo:
		if cfg.Mongo.URI == "" {
			return nil, nil, fmt.Errorf("mongo uri not configured")
		}
		client, err := mongo.Connect(ctx, cfg.Mongo.URI, config.TTLDuration(cfg.Mongo.ConnectTimeout, 10*time.Second))
		if err != nil {
			return nil, nil, err
		}
		log.Info("connected to mongo", "database", cfg.Mongo.Database)
		closer := func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(shutdownCtx); err != nil {
				log.Warn("mongo disconnect", "error", err)
			}
		}
		return mongo.NewDocumentStore(client.Database(cfg.Mongo.Database)), closer, nil

	case config.DriverPostgres:
		applied, err := postgres.Migrate(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, err
		}
		if len(applied) > 0 {
			log.Info("migrations applied", "migrations", applied)
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		log.Info("connected to postgres")
		return postgres.NewDocumentStore(pool), pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

func openBackends(ctx context.Context, cfg config.Config, log *logger.Logger) (*backends, error) {
	b := &backends{}
	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	b.store = store
	b.closers = append(b.closers, closeStore)

	loader := app.NewStoreQuestionRepository(store)
	cacheTTL := config.TTLDuration(cfg.Quiz.CacheTTL, 10*time.Minute)
	sessionTTL := config.TTLDuration(cfg.Quiz.SessionTTL, 30*time.Minute)
	if cfg.Redis.Addr != "" {
		client, err := infraredis.Dial(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = client.Close() })
		b.questions = infraredis.NewQuestionCache(client, loader, cacheTTL)
		b.sessions = infraredis.NewSessionStore(client, sessionTTL)
		b.codes = infraredis.NewOTPStore(client)
		log.Info("using redis for sessions, otp codes and question cache", "addr", cfg.Redis.Addr)
	} else {
		b.questions = memory.NewQuestionCache(loader, cacheTTL)
		b.sessions = memory.NewSessionStore(sessionTTL)
		b.codes = memory.NewOTPStore()
	}

	b.publisher = app.NopPublisher{}
	if cfg.RabbitMQ.URL != "" {
		publisher, err := rabbitmq.Dial(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.publisher = publisher
		b.closers = append(b.closers, func() { _ = publisher.Close() })
		log.Info("publishing events to rabbitmq", "exchange", cfg.RabbitMQ.Exchange)
	}
	return b, nil
}
