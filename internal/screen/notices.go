package screen

import (
	"fmt"

	"github.com/sshpoker/sshpoker/internal/model"
)

// Connection notices are one-shot messages written before the navigation
// loop starts (or instead of it, for rejected connections).

// WelcomeNotice greets an admitted client.
func WelcomeNotice(identity model.Identity, occupancy, maxClients int) []byte {
	var greeting string
	if identity.Username != "" {
		greeting = fmt.Sprintf("Welcome back, %s!", nameStyle.Render(identity.Username))
	} else {
		greeting = "Welcome!"
	}
	return []byte(fmt.Sprintf("%s\n\n%s\nPlayers online: %d/%d\n",
		welcomeStyle.Render(welcomeBanner), greeting, occupancy, maxClients))
}

// AlreadyConnectedNotice tells a rejected client where and when its key is
// already logged in, so a stolen key is visible to its owner.
func AlreadyConnectedNotice(existing *model.Session) []byte {
	return []byte(fmt.Sprintf("%s\nYour key is already logged in from %s:%d since %s.\n"+
		"If that is not you, rotate your key now.\n",
		errorStyle.Render("Already connected!"),
		existing.Host, existing.Port,
		existing.LoginTime.Format("2006-01-02 15:04:05")))
}

// ServerFullNotice tells a rejected client the server is at capacity.
func ServerFullNotice() []byte {
	return []byte(errorStyle.Render("The server is full.") + " Try again later.\n")
}
