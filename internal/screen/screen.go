package screen

import (
	"context"

	"github.com/sshpoker/sshpoker/internal/model"
	"github.com/sshpoker/sshpoker/internal/storage"
)

// Outcome is the control signal a screen raises while rendering.
type Outcome int

const (
	// OutcomeRendered means the screen rendered normally and the navigation
	// loop proceeds.
	OutcomeRendered Outcome = iota
	// OutcomeTerminate means the screen requests client termination after
	// its output is flushed. This is control flow, not an error.
	OutcomeTerminate
)

// View is what a screen sees of the connected client: its identity and the
// persistence gateway for fetching what it renders.
type View struct {
	Identity model.Identity
	Storage  storage.Storage
}

// Screen is one state in the per-client interaction state machine.
//
// Render produces the screen's output. HandleInput consumes one input
// buffer and returns the next screen: nil means return to the main menu,
// the same screen means re-prompt (with feedback carrying the inline error
// message), any other screen is a transition. HandleInput is never called
// when ExpectsInput is false; such screens pop back to the previous screen
// immediately after rendering.
type Screen interface {
	Render(ctx context.Context, view *View) ([]byte, Outcome, error)
	ExpectsInput() bool
	HandleInput(ctx context.Context, view *View, input []byte) (next Screen, feedback []byte, err error)
}
