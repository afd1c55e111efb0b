// Command server runs the socialmesh HTTP API.
package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"socialmesh/internal/config"
	"socialmesh/internal/middleware"
	"socialmesh/internal/observability"
	"socialmesh/internal/server"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		middleware.Logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    cfg.AppName,
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.TracingOTLPEndpoint,
		SamplerRatio:   cfg.TracingSamplerRatio,
	})
	if err != nil {
		middleware.Logger.Error("Failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	startCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	srv, err := server.NewServer(startCtx, cfg)
	cancel()
	if err != nil {
		middleware.Logger.Error("Failed to start: backing store unreachable", "error", err)
		os.Exit(1)
	}

	ln, err := net.Listen("tcp", cfg.ListenAddr())
	if err != nil {
		middleware.Logger.Error("Failed to listen", "addr", cfg.ListenAddr(), "error", err)
		_ = srv.Shutdown(context.Background())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run returns only after the store clients and tracer have been closed.
	if err := srv.Run(ctx, ln, shutdownTracing); err != nil {
		middleware.Logger.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}
