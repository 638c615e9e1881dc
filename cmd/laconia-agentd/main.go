// Command laconia-agentd runs one wire-protocol agent: it loads
// configuration, checks in with the cluster's liveness registrar, and
// serves the connection loop until it receives SIGINT or SIGTERM.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"laconia/config"
	"laconia/dispatch"
	"laconia/handlers"
	"laconia/liveness"
	"laconia/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	configFile := flag.String("config", "config.toml", "path to the agent's TOML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer logger.Sync()

	agentID := uuid.New()
	logger = logger.With(zap.String("agent_id", agentID.String()))

	registry := dispatch.NewRegistry()
	handlers.RegisterAll(registry)

	listener, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.ListenAddr, err)
	}
	logger.Info("listening", zap.String("addr", listener.Addr().String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var registrar liveness.Registrar
	if len(cfg.ControlPlaneEndpoints) > 0 {
		etcdRegistrar, err := liveness.NewEtcdRegistrar(cfg.ControlPlaneEndpoints, cfg.LivenessTTLSeconds)
		if err != nil {
			return fmt.Errorf("connecting to control plane: %w", err)
		}
		defer etcdRegistrar.Close()
		registrar = etcdRegistrar

		ttl, err := registrar.Checkin(ctx, agentID, listener.Addr().String())
		if err != nil {
			return fmt.Errorf("liveness checkin: %w", err)
		}
		logger.Info("checked in with control plane", zap.Duration("lease_ttl", ttl))
	}

	srv := server.New(listener, registry, logger, cfg)

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ctx) }()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			logger.Error("serve failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown did not complete cleanly", zap.Error(err))
	}

	if registrar != nil {
		deregisterCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := registrar.Deregister(deregisterCtx, agentID); err != nil {
			logger.Warn("liveness deregister failed", zap.Error(err))
		}
	}

	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
