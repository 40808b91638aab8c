package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/sshpoker/sshpoker/internal/api"
	"github.com/sshpoker/sshpoker/internal/factory"
	"github.com/sshpoker/sshpoker/internal/server"
	"github.com/sshpoker/sshpoker/internal/session"
	redisstorage "github.com/sshpoker/sshpoker/internal/storage/redis"
	"github.com/sshpoker/sshpoker/internal/transport"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Build factory config from environment
	cfg := factory.Config{
		Logger:      logger,
		StorageType: os.Getenv("STORAGE_TYPE"),
		SQLitePath:  os.Getenv("SQLITE_PATH"),
		SessionConfig: session.Config{
			MaxClients:      envInt(logger, "SSHPOKER_MAX_CLIENTS", 100),
			StartingBalance: int64(envInt(logger, "SSHPOKER_STARTING_BALANCE", 1000)),
		},
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			logger.Error("REDIS_URL required when STORAGE_TYPE=redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Sessions surviving a previous crash would lock their keys out forever.
	if err := app.Sessions.SweepStaleSessions(context.Background()); err != nil {
		logger.Error("failed to sweep stale sessions", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Load or generate the host key
	hostKeyPath := envOr("SSHPOKER_HOST_KEY", "sshpoker_host_key")
	hostKey, err := transport.LoadOrGenerateHostKey(hostKeyPath)
	if err != nil {
		logger.Error("failed to load host key",
			slog.String("path", hostKeyPath),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Create the SSH server
	sshTransport := transport.NewSSH(hostKey, logger)
	sshConfig := server.DefaultConfig()
	sshConfig.ListenAddr = envOr("SSHPOKER_LISTEN_ADDR", sshConfig.ListenAddr)
	sshServer := server.New(sshConfig, sshTransport, app.Registry, app.Sessions, app.Storage, logger)

	// Create the admin API server
	adminRouter := api.NewRouter(api.RouterConfig{
		Logger:   logger,
		Registry: app.Registry,
		Sessions: app.Sessions,
		Storage:  app.Storage,
	})
	adminConfig := api.DefaultServerConfig()
	if addr := os.Getenv("SSHPOKER_ADMIN_ADDR"); addr != "" {
		adminConfig.Host, adminConfig.Port = splitAdminAddr(logger, addr)
	}
	adminServer := api.NewServer(adminRouter, adminConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start both servers
	errCh := make(chan error, 2)
	go func() {
		errCh <- sshServer.Start()
	}()
	go func() {
		errCh <- adminServer.Start()
	}()

	logger.Info("server started",
		slog.String("ssh_addr", sshConfig.ListenAddr),
		slog.String("admin_addr", adminServer.Addr()))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	if err := sshServer.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := adminServer.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func envOr(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func envInt(logger *slog.Logger, key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		logger.Error("invalid integer in environment",
			slog.String("key", key),
			slog.String("value", val))
		os.Exit(1)
	}
	return n
}

func splitAdminAddr(logger *slog.Logger, addr string) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		logger.Error("invalid SSHPOKER_ADMIN_ADDR", slog.String("value", addr))
		os.Exit(1)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		logger.Error("invalid SSHPOKER_ADMIN_ADDR port", slog.String("value", addr))
		os.Exit(1)
	}
	return host, port
}
