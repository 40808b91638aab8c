package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sshpoker/sshpoker/internal/model"
)

// StatusResponse reports occupancy against the configured ceiling.
type StatusResponse struct {
	Occupancy  int `json:"occupancy"`
	MaxClients int `json:"max_clients"`
}

// Session represents a live login in API responses
type Session struct {
	Fingerprint string    `json:"fingerprint"`
	LoginTime   time.Time `json:"login_time"`
	Host        string    `json:"host"`
	Port        int       `json:"port"`
}

// SessionFromModel converts a model.Session to a response Session
func SessionFromModel(s model.Session) Session {
	return Session{
		Fingerprint: string(s.Fingerprint),
		LoginTime:   s.LoginTime,
		Host:        s.Host,
		Port:        s.Port,
	}
}

// SessionsResponse is the response for the sessions listing
type SessionsResponse struct {
	Sessions []Session `json:"sessions"`
}

// Profile represents a user with wallet and lifetime stats in API responses
type Profile struct {
	Fingerprint string    `json:"fingerprint"`
	Username    string    `json:"username"`
	FirstSeen   time.Time `json:"first_seen"`
	Balance     int64     `json:"balance"`
	GamesPlayed int64     `json:"games_played"`
	Wins        int64     `json:"wins"`
	Losses      int64     `json:"losses"`
	Winnings    int64     `json:"winnings"`
}

// ProfileFromModel converts a model.Profile to a response Profile
func ProfileFromModel(p *model.Profile) Profile {
	return Profile{
		Fingerprint: string(p.User.Fingerprint),
		Username:    p.User.Username,
		FirstSeen:   p.User.FirstSeen,
		Balance:     p.Wallet.Balance,
		GamesPlayed: p.Stats.GamesPlayed,
		Wins:        p.Stats.Wins,
		Losses:      p.Stats.Losses,
		Winnings:    p.Stats.Winnings,
	}
}

// JSON writes a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}
