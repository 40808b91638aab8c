package model

import "errors"

// Common errors used across the application
var (
	// User errors
	ErrUserNotFound = errors.New("user not found")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")

	// Registry errors
	ErrDuplicateAddress  = errors.New("address already registered")
	ErrUnknownConnection = errors.New("no registered connection for address")

	// Transport errors
	ErrChannelClosed = errors.New("channel is closed")
)
