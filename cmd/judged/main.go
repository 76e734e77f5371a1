// Command judged runs the code-judge HTTP service: bootstrap external
// tools, build the sandbox engine and per-language drivers, start the
// worker pools, and serve /status, /judge, /run and their batch forms.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codejudge/internal/batch"
	"codejudge/internal/bootstrap"
	"codejudge/internal/config"
	"codejudge/internal/driver"
	"codejudge/internal/httpapi"
	"codejudge/internal/runner"
	"codejudge/internal/sandbox/engine"
	"codejudge/internal/worker"
	"codejudge/pkg/logger"

	"go.uber.org/zap"
)

const defaultConfigPath = "configs/judged.yaml"
const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to config file")
	skipBootstrap := flag.Bool("skip-bootstrap", false, "skip tool bootstrap on startup")
	flag.Parse()

	appCfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(appCfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	if !*skipBootstrap {
		if err := bootstrap.Run(ctx, appCfg.BootstrapCfg, appCfg.StateFile); err != nil {
			logger.Error(ctx, "tool bootstrap failed", zap.Error(err))
			os.Exit(1)
		}
	}

	if err := os.MkdirAll(appCfg.ScratchRoot, 0o755); err != nil {
		logger.Error(ctx, "create scratch root failed", zap.Error(err))
		os.Exit(1)
	}

	resolver := config.NewProfileResolver(appCfg.Profiles)
	eng, err := engine.NewEngine(appCfg.Sandbox.ToEngineConfig(), resolver)
	if err != nil {
		logger.Error(ctx, "init sandbox engine failed", zap.Error(err))
		os.Exit(1)
	}

	registry := driver.NewRegistry(
		driver.NewCpp("cpp"),
		driver.NewPython("python"),
		driver.NewLean("lean"),
	)

	jobRunner := runner.New(eng, registry, appCfg.ScratchRoot)

	shortPool := worker.NewPool(appCfg.ShortWorkers.PoolSize, jobRunner)
	longPool := worker.NewPool(appCfg.LongWorkers.PoolSize, jobRunner)
	orchestrator := batch.New(shortPool, longPool)

	server := httpapi.NewServer(shortPool, orchestrator)
	httpServer := &http.Server{
		Addr:         appCfg.Server.Addr,
		Handler:      server.Router(),
		ReadTimeout:  time.Duration(appCfg.Server.ReadTimeoutMs) * time.Millisecond,
		WriteTimeout: time.Duration(appCfg.Server.WriteTimeoutMs) * time.Millisecond,
		IdleTimeout:  time.Duration(appCfg.Server.IdleTimeoutMs) * time.Millisecond,
	}

	listener, err := net.Listen("tcp", appCfg.Server.Addr)
	if err != nil {
		logger.Error(ctx, "init http listener failed", zap.Error(err))
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "judge http server started", zap.String("addr", appCfg.Server.Addr))
		errCh <- httpServer.Serve(listener)
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "http server stopped", zap.Error(err))
		}
	case <-shutdownCtx.Done():
		logger.Info(ctx, "shutdown signal received")
	}

	shortPool.Shutdown()
	longPool.Shutdown()

	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutCtx); err != nil {
		logger.Error(ctx, "http server shutdown failed", zap.Error(err))
	}
}
