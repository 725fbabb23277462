package remote

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/sadopc/junkclean/internal/engine"
	"github.com/sadopc/junkclean/internal/model"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		user    string
		host    string
		wantErr bool
	}{
		{name: "valid", target: "alice@example.com", user: "alice", host: "example.com"},
		{name: "empty", target: "", wantErr: true},
		{name: "no at", target: "example.com", wantErr: true},
		{name: "missing user", target: "@example.com", wantErr: true},
		{name: "missing host", target: "alice@", wantErr: true},
		{name: "ipv6 bracketed", target: "alice@[2001:db8::1]", user: "alice", host: "2001:db8::1"},
		{name: "ipv6 bare", target: "alice@2001:db8::1", user: "alice", host: "2001:db8::1"},
		{name: "host with port", target: "alice@example.com:2222", wantErr: true},
		{name: "bracketed with port", target: "alice@[::1]:22", wantErr: true},
		{name: "unclosed bracket", target: "alice@[::1", wantErr: true},
		{name: "empty brackets", target: "alice@[]", wantErr: true},
		{name: "option-like host", target: "alice@-oProxyCommand=x", wantErr: true},
		{name: "spaces", target: "alice@exa mple.com", wantErr: true},
		{name: "two ats", target: "a@b@c", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseTarget(tc.target)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.User != tc.user || got.Host != tc.host {
				t.Fatalf("got %s, want %s@%s", got, tc.user, tc.host)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{Target: "a@b", Port: 22}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (Config{Target: "a@b", Port: 0}).Validate(); err == nil {
		t.Fatal("expected port error")
	}
	if err := (Config{Target: "b", Port: 22}).Validate(); err == nil {
		t.Fatal("expected target error")
	}
}

func TestCleanRemotePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: "."},
		{in: ".", want: "."},
		{in: "/tmp/../var", want: "/var"},
		{in: `C:\temp\x`, want: "C:/temp/x"},
	}
	for _, tc := range tests {
		if got := cleanRemotePath(tc.in); got != tc.want {
			t.Fatalf("cleanRemotePath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestKnownHostAddress(t *testing.T) {
	if got := knownHostAddress("example.com", 22); got != "example.com" {
		t.Fatalf("unexpected address for port 22: %q", got)
	}
	if got := knownHostAddress("example.com", 2222); got != "[example.com]:2222" {
		t.Fatalf("unexpected address for custom port: %q", got)
	}
}

func TestWithoutHost(t *testing.T) {
	input := strings.Join([]string{
		"# comment example.com",
		"example.com ssh-ed25519 AAAA",
		"[example.com]:22 ssh-ed25519 BBBB",
		"[example.com]:2222 ssh-ed25519 CCCC",
		"@cert-authority example.com,other.com ssh-ed25519 EEEE",
		"other.com ssh-ed25519 DDDD",
		"",
	}, "\n")

	out22 := string(withoutHost([]byte(input), "example.com", 22))
	for _, gone := range []string{"AAAA", "BBBB", "EEEE"} {
		if strings.Contains(out22, gone) {
			t.Fatalf("expected entry %s removed for port 22:\n%s", gone, out22)
		}
	}
	for _, kept := range []string{"# comment", "CCCC", "DDDD"} {
		if !strings.Contains(out22, kept) {
			t.Fatalf("expected %s to remain:\n%s", kept, out22)
		}
	}

	out2222 := string(withoutHost([]byte(input), "example.com", 2222))
	if strings.Contains(out2222, "CCCC") {
		t.Fatal("expected custom port entry removed")
	}
	for _, kept := range []string{"AAAA", "BBBB", "DDDD"} {
		if !strings.Contains(out2222, kept) {
			t.Fatalf("expected %s to remain when replacing a custom port", kept)
		}
	}
}

type scriptedPrompter struct {
	answers   []bool
	asked     []string
	password  string
	passCalls int
}

func (p *scriptedPrompter) Confirm(q string) (bool, error) {
	p.asked = append(p.asked, q)
	if len(p.answers) == 0 {
		return false, errors.New("unexpected prompt")
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a, nil
}

func (p *scriptedPrompter) Password(string) (string, error) {
	p.passCalls++
	return p.password, nil
}

func newHostKey(t *testing.T) ssh.PublicKey {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	key, err := ssh.NewPublicKey(pub)
	if err != nil {
		t.Fatal(err)
	}
	return key
}

var remoteAddr = &net.TCPAddr{IP: net.IPv4(192, 0, 2, 10), Port: 22}

func TestKnownHosts_TrustOnFirstUse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ssh", "known_hosts")
	hosts, err := openKnownHosts(path)
	if err != nil {
		t.Fatal(err)
	}
	key := newHostKey(t)

	p := &scriptedPrompter{answers: []bool{true}}
	cb, err := hosts.callback("example.com", 22, false, p)
	if err != nil {
		t.Fatal(err)
	}
	if err := cb("example.com:22", remoteAddr, key); err != nil {
		t.Fatalf("expected host to be trusted, got %v", err)
	}
	if len(p.asked) != 1 {
		t.Fatalf("expected one prompt, got %d", len(p.asked))
	}

	// A fresh callback sees the stored key and does not prompt again.
	cb, err = hosts.callback("example.com", 22, true, &scriptedPrompter{})
	if err != nil {
		t.Fatal(err)
	}
	if err := cb("example.com:22", remoteAddr, key); err != nil {
		t.Fatalf("expected stored key to verify, got %v", err)
	}
}

func TestKnownHosts_UnknownHostRejected(t *testing.T) {
	hosts, err := openKnownHosts(filepath.Join(t.TempDir(), "known_hosts"))
	if err != nil {
		t.Fatal(err)
	}
	key := newHostKey(t)

	cb, _ := hosts.callback("example.com", 22, true, &scriptedPrompter{})
	if err := cb("example.com:22", remoteAddr, key); err == nil || !strings.Contains(err.Error(), "unknown host key") {
		t.Fatalf("expected batch mode to reject unknown host, got %v", err)
	}

	cb, _ = hosts.callback("example.com", 22, false, &scriptedPrompter{answers: []bool{false}})
	if err := cb("example.com:22", remoteAddr, key); err == nil {
		t.Fatal("expected declined host to be rejected")
	}

	data, _ := os.ReadFile(hosts.path)
	if len(data) != 0 {
		t.Fatalf("known_hosts should stay empty, got %q", data)
	}
}

func TestKnownHosts_ChangedKey(t *testing.T) {
	hosts, err := openKnownHosts(filepath.Join(t.TempDir(), "known_hosts"))
	if err != nil {
		t.Fatal(err)
	}
	oldKey, newKey := newHostKey(t), newHostKey(t)
	if err := hosts.add("example.com", 2222, oldKey); err != nil {
		t.Fatal(err)
	}

	cb, _ := hosts.callback("example.com", 2222, true, &scriptedPrompter{})
	if err := cb("example.com:2222", remoteAddr, newKey); err == nil || !strings.Contains(err.Error(), "mismatch") {
		t.Fatalf("expected mismatch in batch mode, got %v", err)
	}

	cb, _ = hosts.callback("example.com", 2222, false, &scriptedPrompter{answers: []bool{true}})
	if err := cb("example.com:2222", remoteAddr, newKey); err != nil {
		t.Fatalf("expected replacement to succeed, got %v", err)
	}

	cb, _ = hosts.callback("example.com", 2222, true, &scriptedPrompter{})
	if err := cb("example.com:2222", remoteAddr, newKey); err != nil {
		t.Fatalf("expected replaced key to verify, got %v", err)
	}
	if err := cb("example.com:2222", remoteAddr, oldKey); err == nil {
		t.Fatal("old key should no longer verify")
	}
}

func TestCachedPassword_AsksOnce(t *testing.T) {
	p := &scriptedPrompter{password: "s3cret"}
	c := &cachedPassword{prompt: "pw: ", p: p}

	answers, err := c.answer("", "", []string{"Verification code: ", "Password: "}, []bool{true, false})
	if err != nil {
		t.Fatal(err)
	}
	if answers[0] != "" || answers[1] != "s3cret" {
		t.Fatalf("unexpected answers %q", answers)
	}
	if got, _ := c.get(); got != "s3cret" {
		t.Fatalf("unexpected cached password %q", got)
	}
	if p.passCalls != 1 {
		t.Fatalf("expected one prompt, got %d", p.passCalls)
	}
}

func TestAuthMethods_BatchWithoutKeys(t *testing.T) {
	t.Setenv("SSH_AUTH_SOCK", "")
	t.Setenv("HOME", t.TempDir())
	t.Setenv("USERPROFILE", os.Getenv("HOME"))

	if _, err := authMethods(Target{User: "u", Host: "h"}, true, &scriptedPrompter{}); err == nil {
		t.Fatal("expected batch mode without keys to fail")
	}
	methods, err := authMethods(Target{User: "u", Host: "h"}, false, &scriptedPrompter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(methods) != 2 {
		t.Fatalf("expected password and keyboard-interactive, got %d methods", len(methods))
	}
}

func TestConnectSSH_RespectsContextCancellation(t *testing.T) {
	origDial := dialContext
	origNewClientConn := sshNewClientConn
	t.Cleanup(func() {
		dialContext = origDial
		sshNewClientConn = origNewClientConn
	})

	dialCalled := false
	handshakeCalled := false

	dialContext = func(ctx context.Context, _, _ string) (net.Conn, error) {
		dialCalled = true
		<-ctx.Done()
		return nil, ctx.Err()
	}
	sshNewClientConn = func(net.Conn, string, *ssh.ClientConfig) (ssh.Conn, <-chan ssh.NewChannel, <-chan *ssh.Request, error) {
		handshakeCalled = true
		return nil, nil, nil, errors.New("unexpected handshake call")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := connectSSH(ctx, "example.com:22", &ssh.ClientConfig{
		User:            "user",
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !dialCalled {
		t.Fatal("expected dial to be called")
	}
	if handshakeCalled {
		t.Fatal("did not expect SSH handshake to start after canceled dial")
	}
}

// inMemorySession serves an in-memory SFTP filesystem over a pipe.
func inMemorySession(t *testing.T) *Session {
	t.Helper()
	serverConn, clientConn := net.Pipe()
	server := sftp.NewRequestServer(serverConn, sftp.InMemHandler())
	go func() { _ = server.Serve() }()

	client, err := sftp.NewClientPipe(clientConn, clientConn)
	if err != nil {
		t.Fatal(err)
	}
	s := &Session{Client: client}
	t.Cleanup(func() {
		_ = s.Close()
		_ = server.Close()
	})
	return s
}

func putFile(t *testing.T, s *Session, path string, size int) {
	t.Helper()
	if err := s.MkdirAll(filepath.ToSlash(filepath.Dir(path))); err != nil {
		t.Fatal(err)
	}
	f, err := s.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write(make([]byte, size)); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestSession_ScanAndCleanOverSFTP(t *testing.T) {
	s := inMemorySession(t)
	putFile(t, s, "/home/u/a.log", 10)
	putFile(t, s, "/home/u/keep.txt", 5)
	putFile(t, s, "/home/u/Cache/blob", 20)

	root, err := s.ResolvePath("/home/u/../u")
	if err != nil {
		t.Fatal(err)
	}
	if root != "/home/u" {
		t.Fatalf("ResolvePath = %q", root)
	}

	e := engine.New(engine.Config{}, engine.WithFS(s))
	if _, err := e.StartScan(root); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var paths []string
	for {
		ev, err := e.Next(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if it, ok := ev.(model.FoundItem); ok {
			paths = append(paths, it.Path)
		}
		if sum, ok := ev.(model.ScanSummary); ok {
			if sum.TotalSize != 30 || sum.ItemCount != 2 {
				t.Fatalf("unexpected summary %+v", sum)
			}
			break
		}
	}

	if err := e.StartClean(paths, false); err != nil {
		t.Fatal(err)
	}
	for {
		ev, err := e.Next(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if ce, ok := ev.(model.CleanError); ok {
			t.Fatalf("unexpected clean error: %s", ce.Message())
		}
		if sum, ok := ev.(model.CleanSummary); ok {
			if sum.Freed != 30 || sum.Succeeded != 2 {
				t.Fatalf("unexpected clean summary %+v", sum)
			}
			break
		}
	}

	if _, err := s.Lstat("/home/u/keep.txt"); err != nil {
		t.Fatalf("keep.txt should survive: %v", err)
	}
	if _, err := s.Lstat("/home/u/Cache"); err == nil {
		t.Fatal("Cache should have been removed")
	}
}
