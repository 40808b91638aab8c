package screen

import (
	"context"
	"fmt"
	"strings"
)

// Stats renders the client's lifetime play counters and pops back to the
// previous screen without reading input.
type Stats struct{}

// NewStats creates a statistics screen.
func NewStats() *Stats {
	return &Stats{}
}

var _ Screen = (*Stats)(nil)

func (s *Stats) Render(ctx context.Context, view *View) ([]byte, Outcome, error) {
	profile, err := view.Storage.GetProfile(ctx, view.Identity.Fingerprint)
	if err != nil {
		return nil, OutcomeRendered, fmt.Errorf("fetch profile: %w", err)
	}

	var b strings.Builder
	b.WriteString(goldStyle.Render(statsBanner))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Joined:               %s\n", profile.User.FirstSeen.Format("2006-01-02 15:04:05")))
	b.WriteString(fmt.Sprintf("Total winnings:       %d\n", profile.Stats.Winnings))
	b.WriteString(fmt.Sprintf("Games played (W/L):   %d (%d / %d)\n",
		profile.Stats.GamesPlayed, profile.Stats.Wins, profile.Stats.Losses))
	return []byte(b.String()), OutcomeRendered, nil
}

func (s *Stats) ExpectsInput() bool {
	return false
}

func (s *Stats) HandleInput(ctx context.Context, view *View, input []byte) (Screen, []byte, error) {
	return nil, nil, nil
}
