package screen

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// menuCommand is one slot in the main menu. A nil factory marks a slot
// reserved for a future command; it renders blank and rejects selection.
type menuCommand struct {
	label   string
	factory func() Screen
}

func menuCommands() []menuCommand {
	return []menuCommand{
		{label: "Check your wallet", factory: func() Screen { return NewWallet() }},
		{label: "Get your statistics", factory: func() Screen { return NewStats() }},
		{label: "Change your display name", factory: func() Screen { return NewChangeUsername() }},
		{}, // reserved: join a table
		{}, // reserved: create a table
		{}, // reserved: message another user
		{},
		{},
		{label: "Quit", factory: func() Screen { return NewQuit() }},
	}
}

// MainMenu is the initial screen for every admitted client.
type MainMenu struct {
	commands []menuCommand
}

// NewMainMenu creates a fresh main menu.
func NewMainMenu() *MainMenu {
	return &MainMenu{commands: menuCommands()}
}

var _ Screen = (*MainMenu)(nil)

func (m *MainMenu) Render(ctx context.Context, view *View) ([]byte, Outcome, error) {
	var b strings.Builder
	b.WriteString(menuStyle.Render(mainMenuBanner))
	b.WriteString("\n\n")
	for i, cmd := range m.commands {
		if cmd.factory == nil {
			continue
		}
		b.WriteString(fmt.Sprintf(" [%d] %s\n", i+1, itemStyle.Render(cmd.label)))
	}
	b.WriteString("\nSelection? ")
	return []byte(b.String()), OutcomeRendered, nil
}

func (m *MainMenu) ExpectsInput() bool {
	return true
}

// HandleInput parses the input as a 1-based command index. Anything
// non-numeric, out of range, or pointing at a reserved slot re-prompts the
// same menu with an inline error.
func (m *MainMenu) HandleInput(ctx context.Context, view *View, input []byte) (Screen, []byte, error) {
	choice, err := strconv.Atoi(strings.TrimSpace(string(input)))
	if err != nil || choice < 1 || choice > len(m.commands) || m.commands[choice-1].factory == nil {
		return m, []byte("\n" + errorStyle.Render("Bad choice!") + " Try again...\n"), nil
	}
	return m.commands[choice-1].factory(), nil, nil
}
