package factory

import (
	"time"

	"github.com/sshpoker/sshpoker/internal/dependencies/mocks"
	"github.com/sshpoker/sshpoker/internal/session"
	"github.com/sshpoker/sshpoker/internal/storage/memory"
	"github.com/sshpoker/sshpoker/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	MockClock *mocks.MockClock
}

// NewTestApp creates an App configured for testing with a mocked clock
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	app := newWithDependencies(store, mockClock, session.Config{
		MaxClients:      8,
		StartingBalance: 1000,
	}, testutil.NopLogger())

	return &TestApp{
		App:       app,
		MockClock: mockClock,
	}
}
