package transport

import "context"

// Channel is the byte-oriented connection a client interacts through once
// the transport handshake has completed.
type Channel interface {
	// Send writes the buffer to the remote end.
	Send(data []byte) error
	// Receive blocks until input arrives, the context is cancelled, or the
	// remote end closes the connection. A (nil, nil) return is a zero-length
	// read: the remote end has closed.
	Receive(ctx context.Context) ([]byte, error)
	// Close tears down the channel. Safe to call more than once.
	Close() error
	// Active reports whether the channel is still usable.
	Active() bool
}
