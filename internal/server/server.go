package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/sshpoker/sshpoker/internal/model"
	"github.com/sshpoker/sshpoker/internal/registry"
	"github.com/sshpoker/sshpoker/internal/screen"
	"github.com/sshpoker/sshpoker/internal/session"
	"github.com/sshpoker/sshpoker/internal/storage"
	"github.com/sshpoker/sshpoker/internal/transport"
)

// Config holds configuration for the SSH server
type Config struct {
	ListenAddr      string
	ShutdownTimeout time.Duration
}

// DefaultConfig returns sensible defaults for server configuration
func DefaultConfig() Config {
	return Config{
		ListenAddr:      ":2222",
		ShutdownTimeout: 30 * time.Second,
	}
}

// Server accepts TCP connections, drives each one through handshake and
// admission, and runs the navigation loop for admitted clients. Each
// connection is served by its own worker goroutine.
type Server struct {
	cfg       Config
	transport *transport.SSH
	registry  *registry.Registry
	sessions  *session.Manager
	storage   storage.Storage
	logger    *slog.Logger

	listener net.Listener
	conns    context.Context
	drain    context.CancelFunc
	wg       sync.WaitGroup
}

// New creates an SSH server.
func New(cfg Config, tr *transport.SSH, reg *registry.Registry, mgr *session.Manager, store storage.Storage, logger *slog.Logger) *Server {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultConfig().ListenAddr
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = DefaultConfig().ShutdownTimeout
	}
	conns, drain := context.WithCancel(context.Background())
	return &Server{
		cfg:       cfg,
		transport: tr,
		registry:  reg,
		sessions:  mgr,
		storage:   store,
		logger:    logger.With(slog.String("component", "server")),
		conns:     conns,
		drain:     drain,
	}
}

// Start binds the listener and blocks serving connections until Shutdown
// closes it.
func (s *Server) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

// Listen binds the configured address without accepting yet. Addr is
// valid once Listen returns.
func (s *Server) Listen() error {
	listener, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.ListenAddr, err)
	}
	s.listener = listener
	return nil
}

// Serve accepts connections on the bound listener until it is closed.
func (s *Server) Serve() error {
	s.logger.Info("starting SSH server", slog.String("addr", s.listener.Addr().String()))

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(s.conns, conn)
		}()
	}
}

// Shutdown stops accepting connections, cancels every connection worker,
// and waits for them to drain.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down SSH server")

	if s.listener != nil {
		if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.logger.Error("failed to close listener", slog.String("error", err.Error()))
		}
	}
	s.drain()

	// Close attached channels so workers blocked on a read wake promptly.
	for _, client := range s.registry.Snapshot() {
		if client.Channel != nil {
			_ = client.Channel.Close()
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()

	select {
	case <-done:
		s.logger.Info("SSH server stopped")
		return nil
	case <-shutdownCtx.Done():
		return fmt.Errorf("shutdown: %w", shutdownCtx.Err())
	}
}

// Addr returns the bound listen address, once Start has bound it.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.cfg.ListenAddr
	}
	return s.listener.Addr().String()
}

// handleConn runs the full lifecycle of one connection: register,
// handshake, admit, interact, disconnect. The disconnect sequence runs
// exactly once no matter which stage fails.
func (s *Server) handleConn(parent context.Context, conn net.Conn) {
	// Per-connection context: cancelled on disconnect so the transport's
	// context watcher does not outlive the connection.
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	addr := conn.RemoteAddr().String()
	logger := s.logger.With(slog.String("addr", addr))

	if _, err := s.registry.Register(addr); err != nil {
		logger.Error("failed to register connection", slog.String("error", err.Error()))
		_ = conn.Close()
		return
	}

	var (
		once     sync.Once
		channel  transport.Channel
		admitted bool
		identity model.Identity
	)
	disconnect := func() {
		once.Do(func() {
			if admitted {
				releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := s.sessions.Release(releaseCtx, identity.Fingerprint); err != nil {
					logger.Error("failed to release session", slog.String("error", err.Error()))
				}
			}
			if channel != nil {
				_ = channel.Close()
			}
			_ = conn.Close()
			s.registry.Unregister(addr)
		})
	}
	defer disconnect()

	var err error
	identity, channel, err = s.transport.Negotiate(ctx, conn)
	if err != nil {
		logger.Info("handshake failed", slog.String("error", err.Error()))
		return
	}
	logger = logger.With(
		slog.String("fingerprint", string(identity.Fingerprint)),
		slog.String("username", identity.Username))

	if err := s.registry.Attach(addr, identity, channel); err != nil {
		logger.Error("failed to attach identity", slog.String("error", err.Error()))
		return
	}

	host, port := splitAddr(addr)
	result, err := s.sessions.Admit(ctx, identity, host, port)
	if err != nil {
		logger.Error("admission failed", slog.String("error", err.Error()))
		return
	}

	switch result.Decision {
	case session.DecisionAlreadyConnected:
		_ = channel.Send(screen.AlreadyConnectedNotice(result.Existing))
		return
	case session.DecisionFull:
		_ = channel.Send(screen.ServerFullNotice())
		return
	}
	admitted = true

	if err := channel.Send(screen.WelcomeNotice(identity, result.Occupancy, s.sessions.MaxClients())); err != nil {
		logger.Info("client gone before welcome", slog.String("error", err.Error()))
		return
	}

	view := &screen.View{Identity: identity, Storage: s.storage}
	engine := screen.NewEngine(view, channel, s.logger)
	if err := engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Info("client loop ended with error", slog.String("error", err.Error()))
	} else {
		logger.Info("client disconnected")
	}
}

func splitAddr(addr string) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, 0
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return host, 0
	}
	return host, port
}
