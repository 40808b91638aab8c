package registry

import (
	"log/slog"
	"sync"
	"time"

	"github.com/sshpoker/sshpoker/internal/model"
	"github.com/sshpoker/sshpoker/internal/transport"
)

// Client is the runtime state for one connection, created at accept time
// before authentication completes. Identity and Channel are filled in by
// Attach once the handshake succeeds.
type Client struct {
	Addr        string
	ConnectedAt time.Time
	Identity    model.Identity
	Channel     transport.Channel
}

// Authenticated reports whether the handshake has attached an identity.
func (c *Client) Authenticated() bool {
	return c.Identity.Fingerprint != ""
}

// Registry is the process-wide directory of connected clients keyed by
// remote address. It is the one piece of shared mutable state touched by
// every connection worker and must stay internally synchronized.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*Client
	clock   func() time.Time
	logger  *slog.Logger
}

// New creates an empty registry.
func New(logger *slog.Logger) *Registry {
	return &Registry{
		clients: make(map[string]*Client),
		clock:   time.Now,
		logger:  logger.With(slog.String("component", "registry")),
	}
}

// Register creates and stores a new client for the address. Addresses come
// from the OS so a duplicate indicates a bookkeeping bug, reported as
// ErrDuplicateAddress.
func (r *Registry) Register(addr string) (*Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[addr]; ok {
		return nil, model.ErrDuplicateAddress
	}

	client := &Client{
		Addr:        addr,
		ConnectedAt: r.clock(),
	}
	r.clients[addr] = client

	r.logger.Debug("client registered",
		slog.String("addr", addr),
		slog.Int("connected", len(r.clients)))
	return client, nil
}

// Attach fills in the post-authentication fields for a registered address.
// ErrUnknownConnection guards against the transport layer opening a data
// channel on an address the registry never saw.
func (r *Registry) Attach(addr string, identity model.Identity, channel transport.Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	client, ok := r.clients[addr]
	if !ok {
		return model.ErrUnknownConnection
	}
	client.Identity = identity
	client.Channel = channel
	return nil
}

// Unregister removes the entry for the address. It is a no-op if the entry
// is already gone.
func (r *Registry) Unregister(addr string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[addr]; !ok {
		return
	}
	delete(r.clients, addr)

	r.logger.Debug("client unregistered",
		slog.String("addr", addr),
		slog.Int("connected", len(r.clients)))
}

// Count returns the number of currently registered clients.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Snapshot returns copies of the currently registered clients. The copies
// are taken under the lock so callers can read them while Attach keeps
// mutating the live entries; iteration happens outside the lock.
func (r *Registry) Snapshot() []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]Client, 0, len(r.clients))
	for _, client := range r.clients {
		clients = append(clients, *client)
	}
	return clients
}
