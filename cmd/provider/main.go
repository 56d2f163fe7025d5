// Package main is the entry point for the provider binary. It runs as a
// Lambda function receiving lifecycle events by default, or serves the same
// events over HTTP with --listen.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/pflag"

	"dbobjects/internal/api"
	"dbobjects/internal/app"
	"dbobjects/internal/config"
	"dbobjects/internal/domain"
	"dbobjects/internal/middleware"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// flags are the provider's command-line options.
type flags struct {
	listen  bool
	addr    string
	envFile string
}

func parseFlags(args []string, stderr io.Writer) (*flags, error) {
	f := &flags{}
	fs := pflag.NewFlagSet("provider", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&f.listen, "listen", false, "Serve events over HTTP instead of running as a Lambda function")
	fs.StringVar(&f.addr, "addr", "", "HTTP listen address; overrides LISTEN_ADDR")
	fs.StringVar(&f.envFile, "env-file", ".env", "Path to a .env file loaded before the environment is read")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

func run(args []string) error {
	f, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}
	if err := config.LoadDotEnv(f.envFile); err != nil {
		return fmt.Errorf("env file: %w", err)
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if f.addr != "" {
		cfg.ListenAddr = f.addr
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	a, err := app.New(ctx, app.Deps{Cfg: cfg, Logger: logger})
	if err != nil {
		return err
	}

	if !f.listen {
		logger.Info("starting lambda handler")
		lambda.StartWithOptions(lambdaHandler(a.Dispatcher), lambda.WithContext(ctx))
		return nil
	}
	return serve(ctx, cfg, a.Dispatcher, logger)
}

// lambdaHandler adapts an event handler to the Lambda runtime. A successful
// Delete returns a null payload.
func lambdaHandler(h api.EventHandler) func(context.Context, domain.Event) (*domain.Response, error) {
	return func(ctx context.Context, event domain.Event) (*domain.Response, error) {
		return h.Handle(ctx, &event)
	}
}

func serve(ctx context.Context, cfg *config.Config, h api.EventHandler, logger *slog.Logger) error {
	router := api.NewRouter(ctx, h, logger, api.RouterOptions{
		RateLimit: &middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
		},
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down event endpoint")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("event endpoint listening", "addr", cfg.ListenAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
