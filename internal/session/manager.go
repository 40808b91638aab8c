package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sshpoker/sshpoker/internal/dependencies/clock"
	"github.com/sshpoker/sshpoker/internal/model"
	"github.com/sshpoker/sshpoker/internal/registry"
	"github.com/sshpoker/sshpoker/internal/storage"
)

// Decision is the outcome of an admission attempt.
type Decision int

const (
	// DecisionAdmitted means a session was created and the client may enter
	// the interactive loop.
	DecisionAdmitted Decision = iota
	// DecisionAlreadyConnected means the identity already has a live session
	// elsewhere; the connection must be rejected.
	DecisionAlreadyConnected
	// DecisionFull means the server is at its client ceiling.
	DecisionFull
)

// AdmitResult carries the admission decision plus the context needed to
// render the corresponding notice to the client.
type AdmitResult struct {
	Decision Decision
	// Existing is the prior session when Decision is AlreadyConnected.
	Existing *model.Session
	// FirstContact is true when this admission provisioned the identity.
	FirstContact bool
	// Occupancy is the registry count observed during admission.
	Occupancy int
}

// Config holds configuration for the lifecycle manager
type Config struct {
	// MaxClients is the ceiling on concurrently connected clients. New
	// admissions beyond it are rejected; already-admitted clients are
	// unaffected.
	MaxClients int
	// StartingBalance is the wallet balance given to identities on first
	// contact.
	StartingBalance int64
}

// DefaultConfig returns default lifecycle configuration
func DefaultConfig() Config {
	return Config{
		MaxClients:      100,
		StartingBalance: 1000,
	}
}

// Manager enforces identity-level invariants: at most one session per
// identity and the process-wide client ceiling. It owns connect and
// disconnect sequencing against the persistence layer.
type Manager struct {
	storage  storage.Storage
	registry *registry.Registry
	clock    clock.Clock
	cfg      Config
	logger   *slog.Logger

	// admitLocks serializes concurrent admissions per fingerprint. The
	// storage layer's conditional insert already prevents duplicate
	// sessions; the lock additionally keeps provisioning and the capacity
	// decision coherent for one identity.
	admitLocks sync.Map
}

// NewManager creates a lifecycle manager.
func NewManager(store storage.Storage, reg *registry.Registry, clk clock.Clock, cfg Config, logger *slog.Logger) *Manager {
	if cfg.MaxClients == 0 {
		cfg.MaxClients = DefaultConfig().MaxClients
	}
	return &Manager{
		storage:  store,
		registry: reg,
		clock:    clk,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "session")),
	}
}

// Admit decides whether a newly authenticated connection may proceed.
// On first contact it provisions the identity before anything else; a
// provisioning failure fails the admission cleanly.
func (m *Manager) Admit(ctx context.Context, identity model.Identity, host string, port int) (AdmitResult, error) {
	lock := m.lockFor(identity.Fingerprint)
	lock.Lock()
	defer lock.Unlock()

	firstContact, err := m.provisionIfFirstContact(ctx, identity)
	if err != nil {
		return AdmitResult{}, fmt.Errorf("provision identity: %w", err)
	}

	existing, err := m.storage.CreateSession(ctx, &model.Session{
		Fingerprint: identity.Fingerprint,
		LoginTime:   m.clock.Now(),
		Host:        host,
		Port:        port,
	})
	if err != nil {
		return AdmitResult{}, fmt.Errorf("create session: %w", err)
	}
	if existing != nil {
		m.logger.Info("duplicate login rejected",
			slog.String("fingerprint", string(identity.Fingerprint)),
			slog.String("existing_host", existing.Host))
		return AdmitResult{Decision: DecisionAlreadyConnected, Existing: existing}, nil
	}

	occupancy := m.registry.Count()
	if occupancy > m.cfg.MaxClients {
		// Roll back the session row we just won; the client never gets in.
		if _, err := m.storage.DeleteSession(ctx, identity.Fingerprint); err != nil {
			m.logger.Error("failed to roll back session after capacity rejection",
				slog.String("fingerprint", string(identity.Fingerprint)),
				slog.String("error", err.Error()))
		}
		m.logger.Info("admission rejected at capacity",
			slog.String("fingerprint", string(identity.Fingerprint)),
			slog.Int("occupancy", occupancy),
			slog.Int("max_clients", m.cfg.MaxClients))
		return AdmitResult{Decision: DecisionFull, Occupancy: occupancy}, nil
	}

	m.logger.Info("client admitted",
		slog.String("fingerprint", string(identity.Fingerprint)),
		slog.String("username", identity.Username),
		slog.Bool("first_contact", firstContact),
		slog.Int("occupancy", occupancy))
	return AdmitResult{Decision: DecisionAdmitted, FirstContact: firstContact, Occupancy: occupancy}, nil
}

// MaxClients returns the configured client ceiling.
func (m *Manager) MaxClients() int {
	return m.cfg.MaxClients
}

// Release deletes the identity's session. Finding no session to delete is
// logged as an anomaly but does not fail the disconnect.
func (m *Manager) Release(ctx context.Context, fp model.Fingerprint) error {
	existed, err := m.storage.DeleteSession(ctx, fp)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if !existed {
		m.logger.Warn("released identity had no session",
			slog.String("fingerprint", string(fp)))
	}
	return nil
}

// SweepStaleSessions unconditionally clears every session row. Run once at
// process start so identities logged in before a crash can log in again.
func (m *Manager) SweepStaleSessions(ctx context.Context) error {
	if err := m.storage.ClearSessions(ctx); err != nil {
		return fmt.Errorf("clear sessions: %w", err)
	}
	m.logger.Info("stale sessions swept")
	return nil
}

func (m *Manager) provisionIfFirstContact(ctx context.Context, identity model.Identity) (bool, error) {
	_, err := m.storage.GetUser(ctx, identity.Fingerprint)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return false, err
	}

	if err := m.storage.CreateUser(ctx, &model.User{
		Fingerprint: identity.Fingerprint,
		Username:    identity.Username,
		FirstSeen:   m.clock.Now(),
	}, m.cfg.StartingBalance); err != nil {
		return false, err
	}

	m.logger.Info("provisioned new user",
		slog.String("fingerprint", string(identity.Fingerprint)),
		slog.String("username", identity.Username))
	return true, nil
}

func (m *Manager) lockFor(fp model.Fingerprint) *sync.Mutex {
	lock, _ := m.admitLocks.LoadOrStore(fp, &sync.Mutex{})
	return lock.(*sync.Mutex)
}
