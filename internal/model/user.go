package model

import "time"

// User represents an identity the server has seen at least once.
// User, Wallet and Stats rows are provisioned together on first contact.
type User struct {
	Fingerprint Fingerprint
	Username    string
	FirstSeen   time.Time
}

// Wallet holds a user's chip balance.
type Wallet struct {
	Fingerprint Fingerprint
	Balance     int64
}

// Stats holds lifetime play counters. They are initialized to zero at
// provisioning and only mutated by gameplay.
type Stats struct {
	Fingerprint Fingerprint
	GamesPlayed int64
	Wins        int64
	Losses      int64
	Winnings    int64
}

// Profile is the joined view of a user with their wallet and stats.
type Profile struct {
	User   User
	Wallet Wallet
	Stats  Stats
}

// Session asserts that an identity is currently logged in.
// At most one session exists per fingerprint; absence means not logged in.
type Session struct {
	Fingerprint Fingerprint
	LoginTime   time.Time
	Host        string
	Port        int
}
