package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/open-elt/open-elt/internal/config"
	"github.com/open-elt/open-elt/internal/httpapi"
	"github.com/open-elt/open-elt/internal/metrics"
	"github.com/open-elt/open-elt/internal/oauth"
	"github.com/open-elt/open-elt/internal/oauth/github"
	"github.com/open-elt/open-elt/internal/oauth/gitlab"
	"github.com/open-elt/open-elt/internal/secrets"
	"github.com/open-elt/open-elt/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the OAuth HTTP API and metrics emitter.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	emitter := metrics.New(metrics.AppServer, metrics.ClientConfig{
		Host:           cfg.MetricsAgentHost,
		Port:           cfg.MetricsAgentPort,
		PublishEnabled: cfg.MetricsPublish,
	})
	defer emitter.Close()
	emitter.StartPushLoop(ctx, cfg.MetricsPushInterval)
	if cfg.MetricsPublish {
		slog.Info("metrics publishing enabled", "agent", emitter.AgentAddr())
	}
	_, metricsErrCh := metrics.StartServer(ctx, cfg.MetricsAddr, emitter)

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	dbStore := store.New(pool, emitter)

	var paramStore oauth.ParameterStore = dbStore
	if cfg.VaultEnabled() {
		resolver, err := secrets.NewVaultResolver(secrets.VaultOptions{
			Address:   cfg.VaultAddr,
			Token:     cfg.VaultToken,
			Namespace: cfg.VaultNamespace,
			Mount:     cfg.VaultSecretsMount,
		})
		if err != nil {
			return err
		}
		paramStore = secrets.NewHydratingStore(dbStore, resolver, emitter)
		slog.Info("vault secrets hydration enabled", "mount", cfg.VaultSecretsMount)
	}

	httpClient := &http.Client{Timeout: cfg.OAuthHTTPTimeout}
	state := oauth.NewRandomStateGenerator()

	reg := oauth.NewRegistry()
	if err := reg.Register(gitlab.New(paramStore, httpClient, state)); err != nil {
		return err
	}
	if err := reg.Register(github.New(paramStore, httpClient, state)); err != nil {
		return err
	}

	srv := httpapi.NewServer(&httpapi.Handlers{
		Definitions: dbStore,
		Flows:       reg,
		Emitter:     emitter,
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", cfg.HTTPAddr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-metricsErrCh:
		return err
	}
}
