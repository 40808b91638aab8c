package screen

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sshpoker/sshpoker/internal/transport"
)

// Engine drives the render/read/transition loop for one connected client.
// It holds the current and previous screen; screens themselves are
// stateless between visits and are created fresh on every transition.
type Engine struct {
	view    *View
	channel transport.Channel
	logger  *slog.Logger

	current  Screen
	previous Screen
}

// NewEngine creates a navigation engine starting at the main menu.
func NewEngine(view *View, channel transport.Channel, logger *slog.Logger) *Engine {
	menu := NewMainMenu()
	return &Engine{
		view:     view,
		channel:  channel,
		logger:   logger.With(slog.String("component", "screen")),
		current:  menu,
		previous: menu,
	}
}

// Run loops until the client quits, the remote end closes the connection,
// or ctx is cancelled. A nil return means a normal termination (quit or
// remote close); the caller runs the disconnect sequence either way.
func (e *Engine) Run(ctx context.Context) error {
	for {
		output, outcome, err := e.current.Render(ctx, e.view)
		if err != nil {
			return fmt.Errorf("render screen: %w", err)
		}
		if len(output) > 0 {
			if err := e.channel.Send(output); err != nil {
				return fmt.Errorf("send screen output: %w", err)
			}
		}

		// A terminate outcome requests disconnection directly; no input is
		// read after the farewell output.
		if outcome == OutcomeTerminate {
			e.logger.Debug("client requested quit",
				slog.String("fingerprint", string(e.view.Identity.Fingerprint)))
			return nil
		}

		// Purely informational screens pop straight back without a read.
		if !e.current.ExpectsInput() {
			e.current = e.previous
			continue
		}

		input, err := e.channel.Receive(ctx)
		if err != nil {
			return fmt.Errorf("receive input: %w", err)
		}
		if len(input) == 0 {
			// Zero-length read: the remote end closed the connection.
			e.logger.Debug("client closed connection",
				slog.String("fingerprint", string(e.view.Identity.Fingerprint)))
			return nil
		}

		next, feedback, err := e.current.HandleInput(ctx, e.view, input)
		if err != nil {
			return fmt.Errorf("handle input: %w", err)
		}
		if len(feedback) > 0 {
			if err := e.channel.Send(feedback); err != nil {
				return fmt.Errorf("send feedback: %w", err)
			}
		}

		if next == nil {
			next = NewMainMenu()
		}
		if next != e.current {
			e.previous = e.current
			e.current = next
		}
	}
}
