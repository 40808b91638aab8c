package model

// Fingerprint is the canonical SHA256 fingerprint of a client's public key.
// It is the primary key for a user across the system.
type Fingerprint string

// Identity is established once per connection after public-key
// authentication succeeds. It is immutable for the connection's lifetime.
type Identity struct {
	Fingerprint Fingerprint
	Username    string // claimed display name from the SSH handshake
}
