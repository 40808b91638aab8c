package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/sshpoker/sshpoker/internal/dependencies/mocks"
	"github.com/sshpoker/sshpoker/internal/model"
	"github.com/sshpoker/sshpoker/internal/registry"
	"github.com/sshpoker/sshpoker/internal/storage"
	"github.com/sshpoker/sshpoker/internal/storage/memory"
	"github.com/sshpoker/sshpoker/internal/testutil"
)

type ManagerSuite struct {
	suite.Suite
	storage  *memory.Storage
	registry *registry.Registry
	clock    *mocks.MockClock
	manager  *Manager
	ctx      context.Context
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerSuite))
}

func (s *ManagerSuite) SetupTest() {
	s.storage = memory.New()
	s.registry = registry.New(testutil.NopLogger())
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.manager = NewManager(s.storage, s.registry, s.clock, Config{
		MaxClients:      4,
		StartingBalance: 1000,
	}, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ManagerSuite) identity() model.Identity {
	return model.Identity{Fingerprint: "SHA256:abc", Username: "alice"}
}

// Admit tests

func (s *ManagerSuite) TestAdmitFirstContactProvisions() {
	result, err := s.manager.Admit(s.ctx, s.identity(), "10.0.0.1", 50123)
	s.Require().NoError(err)
	s.Equal(DecisionAdmitted, result.Decision)
	s.True(result.FirstContact)

	profile, err := s.storage.GetProfile(s.ctx, "SHA256:abc")
	s.Require().NoError(err)
	s.Equal("alice", profile.User.Username)
	s.Equal(int64(1000), profile.Wallet.Balance)
	s.Zero(profile.Stats.GamesPlayed)
	s.Zero(profile.Stats.Wins)
	s.Zero(profile.Stats.Losses)
	s.Zero(profile.Stats.Winnings)
}

func (s *ManagerSuite) TestAdmitReturningUserDoesNotReprovision() {
	_, err := s.manager.Admit(s.ctx, s.identity(), "10.0.0.1", 50123)
	s.Require().NoError(err)
	s.Require().NoError(s.manager.Release(s.ctx, "SHA256:abc"))

	result, err := s.manager.Admit(s.ctx, s.identity(), "10.0.0.1", 50124)
	s.Require().NoError(err)
	s.Equal(DecisionAdmitted, result.Decision)
	s.False(result.FirstContact)
}

func (s *ManagerSuite) TestAdmitCreatesSession() {
	_, err := s.manager.Admit(s.ctx, s.identity(), "10.0.0.1", 50123)
	s.Require().NoError(err)

	sessions, err := s.storage.ListSessions(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(sessions, 1)
	s.Equal("10.0.0.1", sessions[0].Host)
	s.Equal(50123, sessions[0].Port)
	s.True(sessions[0].LoginTime.Equal(s.clock.Now()))
}

func (s *ManagerSuite) TestAdmitDuplicateLoginRejected() {
	loginTime := s.clock.Now()
	_, err := s.manager.Admit(s.ctx, s.identity(), "10.0.0.1", 50123)
	s.Require().NoError(err)

	s.clock.Advance(time.Minute)
	result, err := s.manager.Admit(s.ctx, s.identity(), "10.0.0.2", 50999)
	s.Require().NoError(err)
	s.Equal(DecisionAlreadyConnected, result.Decision)
	s.Require().NotNil(result.Existing)
	s.Equal("10.0.0.1", result.Existing.Host)
	s.True(result.Existing.LoginTime.Equal(loginTime))

	// The rejected attempt must not have replaced or duplicated the session
	sessions, err := s.storage.ListSessions(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(sessions, 1)
	s.Equal("10.0.0.1", sessions[0].Host)
}

func (s *ManagerSuite) TestAdmitAtCapacityReturnsFull() {
	for i := 0; i < 5; i++ {
		_, err := s.registry.Register(fmt.Sprintf("10.0.0.1:%d", 50000+i))
		s.Require().NoError(err)
	}

	result, err := s.manager.Admit(s.ctx, s.identity(), "10.0.0.1", 50004)
	s.Require().NoError(err)
	s.Equal(DecisionFull, result.Decision)

	// The capacity rejection must not leave a session row behind
	sessions, err := s.storage.ListSessions(s.ctx)
	s.Require().NoError(err)
	s.Empty(sessions)
}

func (s *ManagerSuite) TestConcurrentAdmitSameIdentityAdmitsExactlyOne() {
	const attempts = 16

	var wg sync.WaitGroup
	admitted := make(chan struct{}, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(port int) {
			defer wg.Done()
			result, err := s.manager.Admit(s.ctx, s.identity(), "10.0.0.1", port)
			s.NoError(err)
			if result.Decision == DecisionAdmitted {
				admitted <- struct{}{}
			}
		}(50000 + i)
	}
	wg.Wait()
	close(admitted)

	s.Len(admitted, 1)

	sessions, err := s.storage.ListSessions(s.ctx)
	s.Require().NoError(err)
	s.Len(sessions, 1)
}

// Provisioning failure tests

type failingCreateStorage struct {
	storage.Storage
}

func (f *failingCreateStorage) CreateUser(ctx context.Context, user *model.User, startingBalance int64) error {
	return errors.New("provisioning failed")
}

func (s *ManagerSuite) TestAdmitFailsCleanlyWhenProvisioningFails() {
	mgr := NewManager(&failingCreateStorage{Storage: s.storage}, s.registry, s.clock, Config{
		MaxClients:      4,
		StartingBalance: 1000,
	}, testutil.NopLogger())

	_, err := mgr.Admit(s.ctx, s.identity(), "10.0.0.1", 50123)
	s.Error(err)

	// No partial state: no user, no session
	_, err = s.storage.GetUser(s.ctx, "SHA256:abc")
	s.ErrorIs(err, model.ErrUserNotFound)

	sessions, err := s.storage.ListSessions(s.ctx)
	s.Require().NoError(err)
	s.Empty(sessions)
}

// Release tests

func (s *ManagerSuite) TestReleaseDeletesSession() {
	_, err := s.manager.Admit(s.ctx, s.identity(), "10.0.0.1", 50123)
	s.Require().NoError(err)

	s.Require().NoError(s.manager.Release(s.ctx, "SHA256:abc"))

	sessions, err := s.storage.ListSessions(s.ctx)
	s.Require().NoError(err)
	s.Empty(sessions)
}

func (s *ManagerSuite) TestReleaseWithoutSessionIsNotAnError() {
	s.NoError(s.manager.Release(s.ctx, "SHA256:never-seen"))
}

func (s *ManagerSuite) TestReleaseThenReadmit() {
	_, err := s.manager.Admit(s.ctx, s.identity(), "10.0.0.1", 50123)
	s.Require().NoError(err)
	s.Require().NoError(s.manager.Release(s.ctx, "SHA256:abc"))

	result, err := s.manager.Admit(s.ctx, s.identity(), "10.0.0.1", 50124)
	s.Require().NoError(err)
	s.Equal(DecisionAdmitted, result.Decision)
}

// Sweep tests

func (s *ManagerSuite) TestSweepStaleSessionsAllowsRelogin() {
	_, err := s.manager.Admit(s.ctx, s.identity(), "10.0.0.1", 50123)
	s.Require().NoError(err)

	// Simulate an unclean restart: the session row survived, the process
	// state did not.
	s.Require().NoError(s.manager.SweepStaleSessions(s.ctx))

	result, err := s.manager.Admit(s.ctx, s.identity(), "10.0.0.1", 50124)
	s.Require().NoError(err)
	s.Equal(DecisionAdmitted, result.Decision)
}
