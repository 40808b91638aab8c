package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/sshpoker/sshpoker/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	storage, err := New(":memory:")
	s.Require().NoError(err)
	s.storage = storage
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
}

func (s *StorageSuite) provision(fp model.Fingerprint, username string) {
	err := s.storage.CreateUser(s.ctx, &model.User{
		Fingerprint: fp,
		Username:    username,
		FirstSeen:   time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}, 1000)
	s.Require().NoError(err)
}

// User tests

func (s *StorageSuite) TestCreateAndGetUser() {
	s.provision("SHA256:abc", "alice")

	user, err := s.storage.GetUser(s.ctx, "SHA256:abc")
	s.Require().NoError(err)
	s.Equal("alice", user.Username)
}

func (s *StorageSuite) TestGetUserNotFound() {
	_, err := s.storage.GetUser(s.ctx, "SHA256:nonexistent")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StorageSuite) TestCreateUserProvisionsWalletAndStats() {
	s.provision("SHA256:abc", "alice")

	profile, err := s.storage.GetProfile(s.ctx, "SHA256:abc")
	s.Require().NoError(err)
	s.Equal(int64(1000), profile.Wallet.Balance)
	s.Zero(profile.Stats.GamesPlayed)
	s.Zero(profile.Stats.Winnings)
}

func (s *StorageSuite) TestCreateUserTwiceFailsWithoutPartialRows() {
	s.provision("SHA256:abc", "alice")

	err := s.storage.CreateUser(s.ctx, &model.User{
		Fingerprint: "SHA256:abc",
		Username:    "alice-again",
		FirstSeen:   time.Now(),
	}, 5000)
	s.Error(err)

	// Original provisioning is untouched
	profile, err := s.storage.GetProfile(s.ctx, "SHA256:abc")
	s.Require().NoError(err)
	s.Equal("alice", profile.User.Username)
	s.Equal(int64(1000), profile.Wallet.Balance)
}

func (s *StorageSuite) TestGetBalance() {
	s.provision("SHA256:abc", "alice")

	balance, err := s.storage.GetBalance(s.ctx, "SHA256:abc")
	s.Require().NoError(err)
	s.Equal(int64(1000), balance)
}

func (s *StorageSuite) TestUpdateUsername() {
	s.provision("SHA256:abc", "alice")

	err := s.storage.UpdateUsername(s.ctx, "SHA256:abc", "alice2")
	s.Require().NoError(err)

	user, err := s.storage.GetUser(s.ctx, "SHA256:abc")
	s.Require().NoError(err)
	s.Equal("alice2", user.Username)
}

func (s *StorageSuite) TestUpdateUsernameNotFound() {
	err := s.storage.UpdateUsername(s.ctx, "SHA256:nonexistent", "bob")
	s.ErrorIs(err, model.ErrUserNotFound)
}

// Session tests

func (s *StorageSuite) TestCreateSessionWhenAbsent() {
	existing, err := s.storage.CreateSession(s.ctx, &model.Session{
		Fingerprint: "SHA256:abc",
		LoginTime:   time.Now().UTC(),
		Host:        "10.0.0.1",
		Port:        50123,
	})
	s.Require().NoError(err)
	s.Nil(existing)
}

func (s *StorageSuite) TestCreateSessionReturnsExisting() {
	loginTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	_, err := s.storage.CreateSession(s.ctx, &model.Session{
		Fingerprint: "SHA256:abc",
		LoginTime:   loginTime,
		Host:        "10.0.0.1",
		Port:        50123,
	})
	s.Require().NoError(err)

	existing, err := s.storage.CreateSession(s.ctx, &model.Session{
		Fingerprint: "SHA256:abc",
		LoginTime:   time.Now().UTC(),
		Host:        "10.0.0.2",
		Port:        50999,
	})
	s.Require().NoError(err)
	s.Require().NotNil(existing)
	s.Equal("10.0.0.1", existing.Host)
	s.Equal(50123, existing.Port)
}

func (s *StorageSuite) TestDeleteSession() {
	_, _ = s.storage.CreateSession(s.ctx, &model.Session{
		Fingerprint: "SHA256:abc",
		LoginTime:   time.Now().UTC(),
	})

	existed, err := s.storage.DeleteSession(s.ctx, "SHA256:abc")
	s.Require().NoError(err)
	s.True(existed)

	existed, err = s.storage.DeleteSession(s.ctx, "SHA256:abc")
	s.Require().NoError(err)
	s.False(existed)
}

func (s *StorageSuite) TestListSessions() {
	_, _ = s.storage.CreateSession(s.ctx, &model.Session{
		Fingerprint: "SHA256:abc",
		LoginTime:   time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		Host:        "10.0.0.1",
	})
	_, _ = s.storage.CreateSession(s.ctx, &model.Session{
		Fingerprint: "SHA256:def",
		LoginTime:   time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC),
		Host:        "10.0.0.2",
	})

	sessions, err := s.storage.ListSessions(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(sessions, 2)
	s.Equal("10.0.0.1", sessions[0].Host)
}

func (s *StorageSuite) TestClearSessions() {
	_, _ = s.storage.CreateSession(s.ctx, &model.Session{
		Fingerprint: "SHA256:abc",
		LoginTime:   time.Now().UTC(),
	})

	err := s.storage.ClearSessions(s.ctx)
	s.Require().NoError(err)

	sessions, err := s.storage.ListSessions(s.ctx)
	s.Require().NoError(err)
	s.Empty(sessions)
}
