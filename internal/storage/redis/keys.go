package redis

import (
	"fmt"

	"github.com/sshpoker/sshpoker/internal/model"
)

// Key prefix for all card-room data
const keyPrefix = "sshpoker"

// Key generation functions for each entity type

// userKey returns the Redis key for a User
func userKey(fp model.Fingerprint) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, fp)
}

// walletKey returns the Redis key for a Wallet
func walletKey(fp model.Fingerprint) string {
	return fmt.Sprintf("%s:wallet:%s", keyPrefix, fp)
}

// statsKey returns the Redis key for a Stats row
func statsKey(fp model.Fingerprint) string {
	return fmt.Sprintf("%s:stats:%s", keyPrefix, fp)
}

// sessionsKey returns the Redis key for the HASH of active sessions,
// keyed by fingerprint. A single hash keeps the conditional insert
// (HSETNX) and the startup sweep (DEL) one command each.
func sessionsKey() string {
	return fmt.Sprintf("%s:sessions", keyPrefix)
}
