package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"clementus360/focusflow/analytics"
	"clementus360/focusflow/assistant"
	"clementus360/focusflow/auth"
	"clementus360/focusflow/config"
	"clementus360/focusflow/events"
	"clementus360/focusflow/handlers"
	"clementus360/focusflow/llm"
	"clementus360/focusflow/middleware"
	"clementus360/focusflow/routes"
	"clementus360/focusflow/services"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func serveCmd(load settingsLoader) *cobra.Command {
	var (
		port       int
		skipVerify bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the FocusFlow JSON API.

Examples:
  focusflow serve
  focusflow serve --port 9000
  STORE=supabase focusflow serve
  focusflow serve --insecure-skip-verify   # local development without JWT_SECRET`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := load()
			if err != nil {
				return err
			}
			if port != 0 {
				settings.Port = port
			}
			if skipVerify {
				settings.InsecureSkipVerify = true
			}
			return runServe(cmd.Context(), settings)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides PORT)")
	cmd.Flags().BoolVar(&skipVerify, "insecure-skip-verify", false, "trust bearer tokens without checking signatures (development only)")
	return cmd
}

func runServe(ctx context.Context, settings *config.Settings) error {
	if ctx == nil {
		ctx = context.Background()
	}
	verifier, err := newVerifier(settings)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openStore(settings)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	loc, err := settings.Location()
	if err != nil {
		return err
	}

	client, err := llm.New(settings)
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		config.Logger.WithField("provider", settings.AIProvider).Warn("No AI credential configured, chat is disabled and insights use fallback rules")
	case err != nil:
		return err
	}

	tasks := services.NewTaskService(db)
	sessions := services.NewSessionService(db, db)
	bus := events.NewBus()
	api := handlers.NewAPI(tasks, sessions, assistant.NewDispatcher(client, tasks, bus), analytics.NewInsightGenerator(client), bus, loc)

	mux := http.NewServeMux()
	routes.RegisterAllRoutes(mux, api, middleware.AuthMiddleware(verifier))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", settings.Port),
		Handler:           middleware.Chain(middleware.CORSMiddleware, middleware.LoggingMiddleware)(mux),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		config.Logger.WithFields(logrus.Fields{"port": settings.Port, "store": settings.Store}).Info("Server is running")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	config.Logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newVerifier(settings *config.Settings) (*auth.Verifier, error) {
	if err := settings.RequireTokenSecret(); err != nil {
		return nil, err
	}
	if secret := settings.TokenSecret(); secret != "" {
		return auth.NewVerifier(secret), nil
	}
	return auth.NewInsecureVerifier(), nil
}
