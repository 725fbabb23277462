// Package remote connects to a host over SSH and exposes its filesystem
// through SFTP so the engine can scan and clean it.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	pathpkg "path"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// DefaultTimeout bounds connection setup when Config.Timeout is zero.
const DefaultTimeout = 15 * time.Second

// Config configures a remote session.
type Config struct {
	Target    string
	Port      int
	BatchMode bool
	Timeout   time.Duration
	// Prompter answers host key and password questions (nil = terminal).
	Prompter Prompter
}

// Validate reports configuration errors without touching the network.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return errors.New("ssh port must be between 1 and 65535")
	}
	_, err := ParseTarget(c.Target)
	return err
}

// Session is a live SFTP connection. It satisfies fsys.FS and
// fsys.SpaceReporter.
type Session struct {
	*sftp.Client
	ssh *ssh.Client
}

var dialContext = func(ctx context.Context, network, address string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, network, address)
}

var sshNewClientConn = func(conn net.Conn, addr string, config *ssh.ClientConfig) (ssh.Conn, <-chan ssh.NewChannel, <-chan *ssh.Request, error) {
	return ssh.NewClientConn(conn, addr, config)
}

// Dial connects to cfg.Target and starts the SFTP subsystem.
func Dial(ctx context.Context, cfg Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	target, _ := ParseTarget(cfg.Target)
	prompter := cfg.Prompter
	if prompter == nil {
		prompter = terminalPrompter{}
	}

	hosts, err := defaultKnownHosts()
	if err != nil {
		return nil, err
	}
	hostCB, err := hosts.callback(target.Host, cfg.Port, cfg.BatchMode, prompter)
	if err != nil {
		return nil, err
	}
	auth, err := authMethods(target, cfg.BatchMode, prompter)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	addr := net.JoinHostPort(target.Host, strconv.Itoa(cfg.Port))
	sshClient, err := connectSSH(dialCtx, addr, &ssh.ClientConfig{
		User:            target.User,
		Auth:            auth,
		HostKeyCallback: hostCB,
		Timeout:         timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("SSH connection failed: %w", err)
	}

	client, err := sftp.NewClient(sshClient)
	if err != nil {
		_ = sshClient.Close()
		return nil, fmt.Errorf("cannot start SFTP subsystem: %w", err)
	}
	return &Session{Client: client, ssh: sshClient}, nil
}

func connectSSH(ctx context.Context, addr string, config *ssh.ClientConfig) (*ssh.Client, error) {
	conn, err := dialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	// Cancellation must interrupt the handshake too.
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	c, chans, reqs, err := sshNewClientConn(conn, addr, config)
	close(done)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return ssh.NewClient(c, chans, reqs), nil
}

// ResolvePath turns p into an absolute remote path. An empty p is the
// remote working directory, usually the login home.
func (s *Session) ResolvePath(p string) (string, error) {
	clean := cleanRemotePath(p)
	resolved, err := s.RealPath(clean)
	if err != nil {
		return "", fmt.Errorf("cannot resolve remote path %q: %w", clean, err)
	}
	return cleanRemotePath(resolved), nil
}

// FreeSpace returns the bytes available to the login user on the volume
// holding path. Servers without the statvfs extension report an error.
func (s *Session) FreeSpace(path string) (uint64, error) {
	st, err := s.StatVFS(path)
	if err != nil {
		return 0, err
	}
	return st.FreeSpace(), nil
}

// Close ends the SFTP subsystem and the SSH connection.
func (s *Session) Close() error {
	var errs []error
	if s.Client != nil {
		errs = append(errs, s.Client.Close())
	}
	if s.ssh != nil {
		errs = append(errs, s.ssh.Close())
	}
	return errors.Join(errs...)
}

func cleanRemotePath(p string) string {
	if strings.TrimSpace(p) == "" {
		return "."
	}
	return pathpkg.Clean(strings.ReplaceAll(p, "\\", "/"))
}
