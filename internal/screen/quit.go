package screen

import "context"

// Quit renders the farewell banner and raises the terminate signal. Its
// input handler is never reached.
type Quit struct{}

// NewQuit creates a quit screen.
func NewQuit() *Quit {
	return &Quit{}
}

var _ Screen = (*Quit)(nil)

func (q *Quit) Render(ctx context.Context, view *View) ([]byte, Outcome, error) {
	return []byte(quitStyle.Render(goodbyeBanner) + "\n"), OutcomeTerminate, nil
}

func (q *Quit) ExpectsInput() bool {
	return false
}

func (q *Quit) HandleInput(ctx context.Context, view *View, input []byte) (Screen, []byte, error) {
	return nil, nil, nil
}
