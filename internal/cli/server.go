package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"matha-service/internal/app"
	"matha-service/internal/config"
	"matha-service/internal/logger"
	"matha-service/internal/metrics"
	transport "matha-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the HTTP and WebSocket server",
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
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return err
	}
	defer log.Sync()

	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		log.Error("backends unavailable", "error", err)
		return err
	}
	defer b.Close()

	m := metrics.New()
	recorder := app.NewRecorder(b.store, b.publisher, m, log)
	bank := app.NewQuestionBank(b.questions, cfg.Quiz.QuestionLimit, log)
	api := &transport.API{
		Auth: app.NewAuthService(b.codes, app.LogSender{Log: log}, b.store, b.publisher, m, app.AuthSettings{
			CodeTTL:        config.TTLDuration(cfg.Auth.OTPTTL, 5*time.Minute),
			ResendCooldown: config.TTLDuration(cfg.Auth.ResendCooldown, time.Minute),
			MaxAttempts:    cfg.Auth.MaxAttempts,
		}, log),
		Users:        app.NewUserService(b.store),
		Content:      app.NewContentService(b.store, log),
		Bookings:     app.NewBookingService(b.store, log),
		Catalog:      app.NewCategoryCatalog(b.store, log),
		Quiz:         app.NewQuizService(bank, b.sessions, recorder, log),
		Results:      recorder,
		Leaderboard:  app.NewLeaderboardRanker(b.store, log),
		Metrics:      m,
		Log:          log,
		AllowOrigins: cfg.Server.AllowOrigins,
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           transport.NewRouter(api),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting matha service", "port", finalPort, "store", cfg.Store.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	case err := <-errCh:
		log.Error("server failed", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.TTLDuration(cfg.Server.ShutdownWait, 5*time.Second))
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
