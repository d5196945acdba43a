package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bluemoxon/bluemoxon/internal/auth"
	"github.com/bluemoxon/bluemoxon/internal/httpapi"
	"github.com/bluemoxon/bluemoxon/internal/stats"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), flags)
		},
	}
}

func runServe(ctx context.Context, flags *rootFlags) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := flags.loadConfig()
	if err != nil {
		return err
	}

	logger := flags.newLogger()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	authService := auth.NewService(store, auth.WithSessionTTL(cfg.Auth.SessionTTL.Std()))
	statsService := stats.NewService(store)
	loginLimiter := auth.NewLoginLimiter(cfg.Auth.LoginRate, cfg.Auth.LoginBurst)

	server := httpapi.NewServer(store, store, statsService, authService, loginLimiter, logger)

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("server listening", "addr", cfg.ListenAddr, "driver", string(cfg.Database.Driver))

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	group.Go(func() error {
		<-ctx.Done()

		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return httpServer.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
