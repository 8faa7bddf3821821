package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/buddy/internal/api"
	"github.com/abhisek/buddy/internal/llm"
	"github.com/abhisek/buddy/internal/logger"
	"github.com/abhisek/buddy/internal/metrics"
	"github.com/abhisek/buddy/internal/tutor"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the tutoring HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides BUDDY_ADDR)")
}

func runServe(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.HTTP.Addr = addr
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	if err := cfg.LLM.Validate(); err != nil {
		return fmt.Errorf("LLM provider not configured: %w", err)
	}
	if err := llm.Precompile(tutor.Schemas()...); err != nil {
		return err
	}
	m := metrics.New()
	provider, err := llm.NewProvider(ctx, cfg.LLM, llm.Deps{
		Sink:     b.events(),
		Observer: m,
		Logger:   log,
	})
	if err != nil {
		return err
	}

	svc := tutor.New(b.sessions, provider,
		tutor.WithConfig(cfg.Tutor),
		tutor.WithLogger(log),
		tutor.WithMetrics(m),
	)
	handler := api.NewServer(svc, api.Options{
		Logger:      log,
		Metrics:     m,
		CORSOrigins: cfg.HTTP.CORSOrigins,
		AccessLog:   cfg.HTTP.AccessLog,
		Store:       b.sessions,
		Model:       provider.ModelID(),
	}).Routes()

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", srv.Addr, "provider", cfg.LLM.Provider, "model", provider.ModelID(), "store", cfg.Store.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down", "timeout", cfg.HTTP.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
