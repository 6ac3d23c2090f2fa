package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mlakar/foundling/internal/api"
	"github.com/mlakar/foundling/internal/config"
	"github.com/mlakar/foundling/internal/db"
	"github.com/mlakar/foundling/internal/embed"
	"github.com/mlakar/foundling/internal/index"
	"github.com/mlakar/foundling/internal/match"
	"github.com/mlakar/foundling/internal/notify"
	"github.com/mlakar/foundling/internal/store"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "foundling",
		Short: "Lost-and-found item directory with lexical and semantic search.",
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			// Local development convenience; deployments set real env vars.
			_ = godotenv.Load()
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	rootCmd.Flags().String("addr", "", "listen address")
	rootCmd.Flags().Int("port", 8080, "listen port")
	rootCmd.Flags().String("db-path", "foundling.db", "path to the SQLite database file")
	rootCmd.Flags().String("jwt-secret", "", "JWT signing key")
	rootCmd.Flags().Duration("embed-timeout", 10*time.Second, "timeout for a single embedding call")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	if err := db.EnsureSchema(database); err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}

	var embedder embed.Service
	if cfg.EmbeddingEnabled() {
		embedder, err = embed.NewService(&cfg.Embedding)
		if err != nil {
			return fmt.Errorf("creating embedding service: %w", err)
		}
	} else {
		slog.Warn("no embedding provider configured, similarity search is disabled")
	}

	vectors := index.NewVectorIndex(cfg.Embedding.Dimensions)
	st, err := store.New(ctx, database, vectors)
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}
	slog.Info("vector index rebuilt", "items", vectors.Len())

	notifier, err := notify.NewDispatcher(&cfg.Notify)
	if err != nil {
		return fmt.Errorf("creating notifier: %w", err)
	}
	if notifier == nil {
		slog.Warn("SMTP not configured, notifications are disabled")
	}

	engine := match.NewEngine(st, embedder, cfg.EmbedTimeout)
	router := api.NewRouter(api.Deps{
		Store:        st,
		Engine:       engine,
		Embedder:     embedder,
		Notifier:     notifier,
		JWTSecret:    cfg.JWTSecret,
		EmbedTimeout: cfg.EmbedTimeout,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Addr, cfg.Port),
		Handler:           api.LoggingMiddleware(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-sigCh:
		slog.Info("shutting down", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown", "error", err)
		}

		// Let in-flight notification emails finish.
		notifier.Wait()
	}

	return nil
}
