package screen

import (
	"context"
	"fmt"
	"strings"
)

// Wallet renders the client's chip balance and pops straight back to the
// previous screen without reading input.
type Wallet struct{}

// NewWallet creates a wallet screen.
func NewWallet() *Wallet {
	return &Wallet{}
}

var _ Screen = (*Wallet)(nil)

func (w *Wallet) Render(ctx context.Context, view *View) ([]byte, Outcome, error) {
	balance, err := view.Storage.GetBalance(ctx, view.Identity.Fingerprint)
	if err != nil {
		return nil, OutcomeRendered, fmt.Errorf("fetch balance: %w", err)
	}

	var b strings.Builder
	b.WriteString(goldStyle.Render(walletBanner))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Chips: %s\n", balanceStyle.Render(fmt.Sprintf("%d", balance))))
	return []byte(b.String()), OutcomeRendered, nil
}

func (w *Wallet) ExpectsInput() bool {
	return false
}

func (w *Wallet) HandleInput(ctx context.Context, view *View, input []byte) (Screen, []byte, error) {
	return nil, nil, nil
}
