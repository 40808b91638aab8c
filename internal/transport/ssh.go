package transport

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/sshpoker/sshpoker/internal/model"
)

const (
	// fingerprintExt is the Permissions extension the public-key callback
	// records the fingerprint under.
	fingerprintExt = "pubkey-fp"

	// handshakeTimeout bounds the SSH negotiation; a client that never
	// completes key exchange cannot hold a worker forever.
	handshakeTimeout = 30 * time.Second

	// receiveBufferSize is the per-read buffer for client input.
	receiveBufferSize = 4096
)

// SSH is the transport provider: it upgrades raw TCP connections to
// authenticated SSH sessions and hands back an identity and a channel.
type SSH struct {
	config *ssh.ServerConfig
	logger *slog.Logger
}

// NewSSH creates a transport provider using the given host key. Any public
// key is accepted for authentication; the key's fingerprint becomes the
// client's identity.
func NewSSH(hostKey ssh.Signer, logger *slog.Logger) *SSH {
	config := &ssh.ServerConfig{
		PublicKeyCallback: func(conn ssh.ConnMetadata, key ssh.PublicKey) (*ssh.Permissions, error) {
			return &ssh.Permissions{
				Extensions: map[string]string{
					fingerprintExt: ssh.FingerprintSHA256(key),
				},
			}, nil
		},
	}
	config.AddHostKey(hostKey)

	return &SSH{
		config: config,
		logger: logger.With(slog.String("component", "transport")),
	}
}

// Negotiate performs the SSH handshake on conn, waits for the client to open
// a session channel, and returns the authenticated identity together with
// the byte channel for the interactive loop. The connection is closed when
// ctx is cancelled.
func (s *SSH) Negotiate(ctx context.Context, conn net.Conn) (model.Identity, Channel, error) {
	_ = conn.SetDeadline(time.Now().Add(handshakeTimeout))

	sconn, chans, reqs, err := ssh.NewServerConn(conn, s.config)
	if err != nil {
		return model.Identity{}, nil, fmt.Errorf("ssh handshake: %w", err)
	}
	_ = conn.SetDeadline(time.Time{})

	go ssh.DiscardRequests(reqs)

	identity := model.Identity{
		Fingerprint: model.Fingerprint(sconn.Permissions.Extensions[fingerprintExt]),
		Username:    sconn.User(),
	}

	ch, err := s.acceptSession(ctx, chans)
	if err != nil {
		_ = sconn.Close()
		return model.Identity{}, nil, err
	}

	channel := newSSHChannel(sconn, ch)
	go func() {
		<-ctx.Done()
		_ = channel.Close()
	}()

	return identity, channel, nil
}

// acceptSession waits for the first "session" channel and accepts it,
// answering shell and pty requests. Other channel types are rejected.
func (s *SSH) acceptSession(ctx context.Context, chans <-chan ssh.NewChannel) (ssh.Channel, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case newChan, ok := <-chans:
			if !ok {
				return nil, model.ErrChannelClosed
			}
			if newChan.ChannelType() != "session" {
				_ = newChan.Reject(ssh.UnknownChannelType, "only session channels are supported")
				continue
			}

			ch, requests, err := newChan.Accept()
			if err != nil {
				return nil, fmt.Errorf("accept session channel: %w", err)
			}

			go func() {
				for req := range requests {
					switch req.Type {
					case "shell", "pty-req", "env", "window-change":
						if req.WantReply {
							_ = req.Reply(true, nil)
						}
					default:
						if req.WantReply {
							_ = req.Reply(false, nil)
						}
					}
				}
			}()

			return ch, nil
		}
	}
}

// sshChannel adapts an ssh.Channel to the Channel interface. A single
// reader goroutine pumps input into a buffered channel so Receive can be
// cancelled without losing data.
type sshChannel struct {
	conn *ssh.ServerConn
	ch   ssh.Channel

	data      chan []byte
	done      chan struct{}
	active    atomic.Bool
	closeOnce sync.Once
}

func newSSHChannel(conn *ssh.ServerConn, ch ssh.Channel) *sshChannel {
	c := &sshChannel{
		conn: conn,
		ch:   ch,
		data: make(chan []byte, 1),
		done: make(chan struct{}),
	}
	c.active.Store(true)
	go c.readLoop()
	return c
}

func (c *sshChannel) readLoop() {
	buf := make([]byte, receiveBufferSize)
	for {
		n, err := c.ch.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			select {
			case c.data <- data:
			case <-c.done:
				return
			}
		}
		if err != nil {
			c.active.Store(false)
			close(c.data)
			return
		}
	}
}

func (c *sshChannel) Send(data []byte) error {
	if !c.active.Load() {
		return model.ErrChannelClosed
	}
	if _, err := c.ch.Write(data); err != nil {
		return fmt.Errorf("channel write: %w", err)
	}
	return nil
}

func (c *sshChannel) Receive(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case data, ok := <-c.data:
		if !ok {
			// Remote end closed: the zero-length read.
			return nil, nil
		}
		return data, nil
	}
}

func (c *sshChannel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.active.Store(false)
		close(c.done)
		_ = c.ch.Close()
		err = c.conn.Close()
	})
	return err
}

func (c *sshChannel) Active() bool {
	return c.active.Load()
}
