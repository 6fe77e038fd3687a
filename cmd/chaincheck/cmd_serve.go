package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/notlelouch/chaincheck/internal/blog"
	"github.com/notlelouch/chaincheck/internal/cache"
	"github.com/notlelouch/chaincheck/internal/metrics"
	"github.com/notlelouch/chaincheck/internal/server"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveEnvironment string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the analysis and blog HTTP API.

Redis backs the result cache when REDIS_URL is set and reachable, otherwise an
in-process cache is used. Blogs are stored in PostgreSQL when DATABASE_URL is set.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveEnvironment, "env", envOr("APP_ENV", "development"), "Environment name reported by GET /")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := metrics.NewRegistry()
	eng, err := buildEngine(cfg, reg, cache.New(cfg.RedisURL))
	if err != nil {
		return err
	}

	var blogs blog.Repository = blog.NewMemoryRepo()
	if cfg.DatabaseURL != "" {
		pg, err := blog.Open(ctx, cfg.DatabaseURL, 5*time.Second)
		if err != nil {
			return err
		}
		defer pg.Close()
		blogs = pg
		log.Info().Msg("blog store: postgres")
	} else {
		log.Warn().Msg("DATABASE_URL not set, blogs are kept in memory")
	}

	srv := server.New(server.Config{
		Host:            cfg.Host,
		Port:            cfg.Port,
		FrontendURL:     cfg.FrontendURL,
		RateLimitPerMin: cfg.RateLimitPerMin,
		TrustProxy:      cfg.TrustProxy,
		Environment:     serveEnvironment,
		WriteTimeout:    cfg.AnalysisTimeout + 15*time.Second,
	}, eng.analyzer, blogs, reg)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
