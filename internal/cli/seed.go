package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"matha-service/internal/config"
	infraredis "matha-service/internal/infra/redis"
	"matha-service/internal/logger"
	"matha-service/internal/seed"
)

// NewSeedCmd writes the bundled content into the configured store.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the bundled events, artefacts, quizzes and learning content",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath)
		},
	}
}

func runSeed(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Store.Driver == config.DriverMemory {
		return fmt.Errorf("the memory store is seeded on start; configure mongo or postgres to seed")
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return err
	}
	defer log.Sync()

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	data := seed.Default()
	counts, err := seed.Apply(ctx, store, data, log)
	if err != nil {
		return err
	}
	log.Info("seed complete", "documents", counts.Total())

	if cfg.Redis.Addr == "" {
		return nil
	}
	client, err := infraredis.Dial(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Warn("question cache not cleared", "error", err)
		return nil
	}
	defer client.Close()
	cache := infraredis.NewQuestionCache(client, nil, 0)
	seen := make(map[string]bool)
	for _, q := range data.Questions {
		if seen[q.CategoryID] {
			continue
		}
		seen[q.CategoryID] = true
		if err := cache.Invalidate(ctx, q.CategoryID); err != nil {
			log.Warn("question cache not cleared", "categoryId", q.CategoryID, "error", err)
		}
	}
	return nil
}
