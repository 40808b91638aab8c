package server

import (
	"bufio"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/ssh"

	"github.com/sshpoker/sshpoker/internal/dependencies/mocks"
	"github.com/sshpoker/sshpoker/internal/registry"
	"github.com/sshpoker/sshpoker/internal/session"
	"github.com/sshpoker/sshpoker/internal/storage/memory"
	"github.com/sshpoker/sshpoker/internal/testutil"
	"github.com/sshpoker/sshpoker/internal/transport"
)

const testTimeout = 5 * time.Second

// testClient is a live SSH session against the server under test.
type testClient struct {
	conn   *ssh.Client
	stdin  io.WriteCloser
	stdout *bufio.Reader
}

func (c *testClient) close() {
	_ = c.conn.Close()
}

// readUntil consumes stdout until the wanted substring appears or the
// deadline passes, returning everything read.
func (c *testClient) readUntil(t *testing.T, want string) string {
	t.Helper()

	var b strings.Builder
	deadline := time.Now().Add(testTimeout)
	buf := make([]byte, 1024)

	type readResult struct {
		n   int
		err error
	}
	for time.Now().Before(deadline) {
		results := make(chan readResult, 1)
		go func() {
			n, err := c.stdout.Read(buf)
			results <- readResult{n, err}
		}()
		select {
		case r := <-results:
			b.Write(buf[:r.n])
			if strings.Contains(b.String(), want) {
				return b.String()
			}
			if r.err != nil {
				t.Fatalf("stream ended before %q appeared; got:\n%s", want, b.String())
			}
		case <-time.After(time.Until(deadline)):
		}
	}
	t.Fatalf("timed out waiting for %q; got:\n%s", want, b.String())
	return ""
}

// readToEOF drains stdout until the remote end closes it.
func (c *testClient) readToEOF(t *testing.T) string {
	t.Helper()

	done := make(chan string, 1)
	go func() {
		data, _ := io.ReadAll(c.stdout)
		done <- string(data)
	}()
	select {
	case data := <-done:
		return data
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for stream close")
		return ""
	}
}

func (c *testClient) send(t *testing.T, line string) {
	t.Helper()
	if _, err := c.stdin.Write([]byte(line + "\n")); err != nil {
		t.Fatalf("write input: %v", err)
	}
}

type ServerSuite struct {
	suite.Suite
	storage *memory.Storage
	server  *Server
	clock   *mocks.MockClock
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

func (s *ServerSuite) SetupTest() {
	s.startServer(4)
}

func (s *ServerSuite) startServer(maxClients int) {
	logger := testutil.NopLogger()
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	reg := registry.New(logger)
	mgr := session.NewManager(s.storage, reg, s.clock, session.Config{
		MaxClients:      maxClients,
		StartingBalance: 1000,
	}, logger)

	signer := s.newSigner()
	tr := transport.NewSSH(signer, logger)

	s.server = New(Config{ListenAddr: "127.0.0.1:0"}, tr, reg, mgr, s.storage, logger)
	s.Require().NoError(s.server.Listen())
	go func() {
		_ = s.server.Serve()
	}()
}

func (s *ServerSuite) TearDownTest() {
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	s.Require().NoError(s.server.Shutdown(ctx))
}

func (s *ServerSuite) newSigner() ssh.Signer {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	s.Require().NoError(err)
	signer, err := ssh.NewSignerFromKey(priv)
	s.Require().NoError(err)
	return signer
}

func (s *ServerSuite) dial(user string, key ssh.Signer) (*testClient, error) {
	conn, err := ssh.Dial("tcp", s.server.Addr(), &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(key)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         testTimeout,
	})
	if err != nil {
		return nil, err
	}

	sess, err := conn.NewSession()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	stdin, err := sess.StdinPipe()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	stdout, err := sess.StdoutPipe()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := sess.Shell(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &testClient{conn: conn, stdin: stdin, stdout: bufio.NewReader(stdout)}, nil
}

func (s *ServerSuite) mustDial(user string, key ssh.Signer) *testClient {
	client, err := s.dial(user, key)
	s.Require().NoError(err)
	return client
}

func (s *ServerSuite) TestConnectSeesWelcomeAndMenu() {
	client := s.mustDial("alice", s.newSigner())
	defer client.close()

	output := client.readUntil(s.T(), "Selection?")
	s.Contains(output, "Welcome back, alice!")
	s.Contains(output, "Players online: 1/4")
}

func (s *ServerSuite) TestFirstContactProvisionsWallet() {
	client := s.mustDial("alice", s.newSigner())
	defer client.close()

	client.readUntil(s.T(), "Selection?")
	client.send(s.T(), "1")
	output := client.readUntil(s.T(), "Chips:")
	s.Contains(output, "1000")
}

func (s *ServerSuite) TestQuitClosesConnection() {
	client := s.mustDial("alice", s.newSigner())
	defer client.close()

	client.readUntil(s.T(), "Selection?")
	client.send(s.T(), "9")
	output := client.readToEOF(s.T())
	s.Contains(output, "Thanks for playing")
}

func (s *ServerSuite) TestDuplicateKeyRejectedWithPriorLocation() {
	key := s.newSigner()

	first := s.mustDial("alice", key)
	defer first.close()
	first.readUntil(s.T(), "Selection?")

	second := s.mustDial("alice", key)
	defer second.close()
	output := second.readToEOF(s.T())
	s.Contains(output, "Already connected!")
	s.Contains(output, "127.0.0.1")
	s.Contains(output, "2024-01-01 12:00:00")

	// The first client is unaffected.
	first.send(s.T(), "1")
	first.readUntil(s.T(), "Chips:")
}

func (s *ServerSuite) TestReconnectAfterQuitSucceeds() {
	key := s.newSigner()

	first := s.mustDial("alice", key)
	first.readUntil(s.T(), "Selection?")
	first.send(s.T(), "9")
	first.readToEOF(s.T())
	first.close()

	// The session must be released before a new login can win the slot.
	s.Require().Eventually(func() bool {
		second, err := s.dial("alice", key)
		if err != nil {
			return false
		}
		defer second.close()
		var b strings.Builder
		buf := make([]byte, 1024)
		for !strings.Contains(b.String(), "Selection?") {
			n, err := second.stdout.Read(buf)
			b.Write(buf[:n])
			if err != nil {
				return false
			}
		}
		return true
	}, testTimeout, 50*time.Millisecond)
}

func (s *ServerSuite) TestCapacityRejection() {
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	s.Require().NoError(s.server.Shutdown(ctx))
	s.startServer(1)

	first := s.mustDial("alice", s.newSigner())
	defer first.close()
	first.readUntil(s.T(), "Selection?")

	second := s.mustDial("bob", s.newSigner())
	defer second.close()
	output := second.readToEOF(s.T())
	s.Contains(output, "The server is full.")
	s.NotContains(output, "Selection?")

	// No session row was left behind for the rejected key.
	sessions, err := s.storage.ListSessions(context.Background())
	s.Require().NoError(err)
	s.Len(sessions, 1)
}

func (s *ServerSuite) TestShutdownDrainsConnectedClients() {
	client := s.mustDial("alice", s.newSigner())
	defer client.close()
	client.readUntil(s.T(), "Selection?")

	store := s.storage
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	s.Require().NoError(s.server.Shutdown(ctx))

	sessions, err := store.ListSessions(context.Background())
	s.Require().NoError(err)
	s.Empty(sessions, fmt.Sprintf("sessions not released: %v", sessions))

	// Restart so TearDownTest has a server to stop.
	s.startServer(4)
}
