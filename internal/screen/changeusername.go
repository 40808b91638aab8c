package screen

import (
	"context"
	"fmt"
	"strings"
)

const maxUsernameLength = 32

// ChangeUsername prompts for and persists a new display name.
type ChangeUsername struct{}

// NewChangeUsername creates a change-username screen.
func NewChangeUsername() *ChangeUsername {
	return &ChangeUsername{}
}

var _ Screen = (*ChangeUsername)(nil)

func (c *ChangeUsername) Render(ctx context.Context, view *View) ([]byte, Outcome, error) {
	prompt := fmt.Sprintf("\nCurrent display name: %s\nNew display name? ",
		nameStyle.Render(view.Identity.Username))
	return []byte(prompt), OutcomeRendered, nil
}

func (c *ChangeUsername) ExpectsInput() bool {
	return true
}

func (c *ChangeUsername) HandleInput(ctx context.Context, view *View, input []byte) (Screen, []byte, error) {
	name := strings.TrimSpace(string(input))
	if name == "" || len(name) > maxUsernameLength {
		return c, []byte("\n" + errorStyle.Render("Display names must be 1-32 characters.") + "\n"), nil
	}

	if err := view.Storage.UpdateUsername(ctx, view.Identity.Fingerprint, name); err != nil {
		return nil, nil, fmt.Errorf("update username: %w", err)
	}
	view.Identity.Username = name

	return nil, []byte(fmt.Sprintf("\nYou are now known as %s.\n", nameStyle.Render(name))), nil
}
