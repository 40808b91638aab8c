package memory

import (
	"context"
	"sync"

	"github.com/sshpoker/sshpoker/internal/model"
	"github.com/sshpoker/sshpoker/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	users    map[model.Fingerprint]*model.User
	wallets  map[model.Fingerprint]*model.Wallet
	stats    map[model.Fingerprint]*model.Stats
	sessions map[model.Fingerprint]*model.Session
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:    make(map[model.Fingerprint]*model.User),
		wallets:  make(map[model.Fingerprint]*model.Wallet),
		stats:    make(map[model.Fingerprint]*model.Stats),
		sessions: make(map[model.Fingerprint]*model.Session),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) GetUser(ctx context.Context, fp model.Fingerprint) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[fp]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

func (s *Storage) GetProfile(ctx context.Context, fp model.Fingerprint) (*model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[fp]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	wallet, ok := s.wallets[fp]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	stats, ok := s.stats[fp]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return &model.Profile{User: *user, Wallet: *wallet, Stats: *stats}, nil
}

func (s *Storage) GetBalance(ctx context.Context, fp model.Fingerprint) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wallet, ok := s.wallets[fp]
	if !ok {
		return 0, model.ErrUserNotFound
	}
	return wallet.Balance, nil
}

// CreateUser provisions user, wallet and stats in one critical section so a
// reader never observes a partial set.
func (s *Storage) CreateUser(ctx context.Context, user *model.User, startingBalance int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := *user
	s.users[u.Fingerprint] = &u
	s.wallets[u.Fingerprint] = &model.Wallet{Fingerprint: u.Fingerprint, Balance: startingBalance}
	s.stats[u.Fingerprint] = &model.Stats{Fingerprint: u.Fingerprint}
	return nil
}

func (s *Storage) UpdateUsername(ctx context.Context, fp model.Fingerprint, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[fp]
	if !ok {
		return model.ErrUserNotFound
	}
	user.Username = username
	return nil
}

// Session operations

func (s *Storage) CreateSession(ctx context.Context, session *model.Session) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[session.Fingerprint]; ok {
		e := *existing
		return &e, nil
	}
	sess := *session
	s.sessions[sess.Fingerprint] = &sess
	return nil, nil
}

func (s *Storage) DeleteSession(ctx context.Context, fp model.Fingerprint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[fp]
	delete(s.sessions, fp)
	return ok, nil
}

func (s *Storage) ListSessions(ctx context.Context) ([]model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sessions := make([]model.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, *sess)
	}
	return sessions, nil
}

func (s *Storage) ClearSessions(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[model.Fingerprint]*model.Session)
	return nil
}
