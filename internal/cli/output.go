package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

// StatusResult response type
type StatusResult struct {
	Occupancy  int `json:"occupancy"`
	MaxClients int `json:"max_clients"`
}

// Session response type
type Session struct {
	Fingerprint string    `json:"fingerprint"`
	LoginTime   time.Time `json:"login_time"`
	Host        string    `json:"host"`
	Port        int       `json:"port"`
}

// SessionsResult response type
type SessionsResult struct {
	Sessions []Session `json:"sessions"`
}

// ProfileResult response type
type ProfileResult struct {
	Fingerprint string    `json:"fingerprint"`
	Username    string    `json:"username"`
	FirstSeen   time.Time `json:"first_seen"`
	Balance     int64     `json:"balance"`
	GamesPlayed int64     `json:"games_played"`
	Wins        int64     `json:"wins"`
	Losses      int64     `json:"losses"`
	Winnings    int64     `json:"winnings"`
}

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case HealthResult:
		fmt.Printf("Status: %s\n", v.Status)
	case StatusResult:
		fmt.Printf("Occupancy: %d/%d\n", v.Occupancy, v.MaxClients)
	case SessionsResult:
		o.printSessions(v)
	case ProfileResult:
		o.printProfile(v)
	default:
		o.printJSON(data)
	}
}

func (o *Output) printSessions(s SessionsResult) {
	if len(s.Sessions) == 0 {
		fmt.Println("No active sessions")
		return
	}
	fmt.Printf("%-50s %-20s %s\n", "FINGERPRINT", "LOGIN TIME", "REMOTE")
	for _, sess := range s.Sessions {
		fmt.Printf("%-50s %-20s %s:%d\n",
			sess.Fingerprint,
			sess.LoginTime.Format("2006-01-02 15:04:05"),
			sess.Host, sess.Port)
	}
}

func (o *Output) printProfile(p ProfileResult) {
	fmt.Printf("Fingerprint:  %s\n", p.Fingerprint)
	fmt.Printf("Username:     %s\n", p.Username)
	fmt.Printf("First seen:   %s\n", p.FirstSeen.Format("2006-01-02 15:04:05"))
	fmt.Printf("Balance:      %d\n", p.Balance)
	fmt.Printf("Games played: %d (%d wins / %d losses)\n", p.GamesPlayed, p.Wins, p.Losses)
	fmt.Printf("Winnings:     %d\n", p.Winnings)
}
