package storage

import (
	"context"

	"github.com/sshpoker/sshpoker/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// User operations
	GetUser(ctx context.Context, fp model.Fingerprint) (*model.User, error)
	GetProfile(ctx context.Context, fp model.Fingerprint) (*model.Profile, error)
	GetBalance(ctx context.Context, fp model.Fingerprint) (int64, error)
	// CreateUser provisions the user together with a wallet holding
	// startingBalance and zeroed stats as one atomic unit. If any part of
	// the provisioning fails, no rows remain.
	CreateUser(ctx context.Context, user *model.User, startingBalance int64) error
	UpdateUsername(ctx context.Context, fp model.Fingerprint, username string) error

	// Session operations
	//
	// CreateSession is a conditional insert: if no session exists for the
	// fingerprint it stores the given session and returns (nil, nil); if one
	// already exists it stores nothing and returns the existing session.
	CreateSession(ctx context.Context, session *model.Session) (*model.Session, error)
	// DeleteSession removes the session for the fingerprint and reports
	// whether one existed.
	DeleteSession(ctx context.Context, fp model.Fingerprint) (bool, error)
	ListSessions(ctx context.Context) ([]model.Session, error)
	// ClearSessions unconditionally removes every session row. Called once at
	// process start so identities logged in before a crash can log in again.
	ClearSessions(ctx context.Context) error
}
