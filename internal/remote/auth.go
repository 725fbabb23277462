package remote

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
	"golang.org/x/term"
)

var defaultPrivateKeyFiles = []string{
	"id_ed25519",
	"id_ecdsa",
	"id_rsa",
}

// Target is a parsed user@host.
type Target struct {
	User string
	Host string
}

func (t Target) String() string { return t.User + "@" + t.Host }

// ParseTarget parses "user@host".
func ParseTarget(s string) (Target, error) {
	if strings.TrimSpace(s) == "" {
		return Target{}, errors.New("remote target is required")
	}
	user, host, ok := strings.Cut(s, "@")
	if !ok || user == "" || host == "" || strings.Contains(host, "@") {
		return Target{}, fmt.Errorf("invalid remote target %q: expected user@host", s)
	}
	if strings.HasPrefix(user, "-") || strings.HasPrefix(host, "-") {
		return Target{}, fmt.Errorf("invalid remote target %q", s)
	}
	if strings.ContainsAny(s, " \t\n\r") {
		return Target{}, fmt.Errorf("invalid remote target %q: spaces are not allowed", s)
	}

	if strings.HasPrefix(host, "[") {
		end := strings.Index(host, "]")
		switch {
		case end == -1:
			return Target{}, fmt.Errorf("invalid remote target %q: malformed bracketed host", s)
		case end == 1:
			return Target{}, fmt.Errorf("invalid remote target %q: empty host", s)
		case end != len(host)-1:
			if rest := host[end+1:]; strings.HasPrefix(rest, ":") && isAllDigits(rest[1:]) {
				return Target{}, fmt.Errorf("remote target %q must not include :port; use --ssh-port", s)
			}
			return Target{}, fmt.Errorf("invalid remote target %q: malformed bracketed host", s)
		}
		host = host[1:end]
	} else if strings.Contains(host, "]") {
		return Target{}, fmt.Errorf("invalid remote target %q: malformed bracketed host", s)
	} else if h, port, ok := strings.Cut(host, ":"); ok && !strings.Contains(port, ":") && h != "" && isAllDigits(port) {
		return Target{}, fmt.Errorf("remote target %q must not include :port; use --ssh-port", s)
	}
	return Target{User: user, Host: host}, nil
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Prompter asks the person at the terminal for decisions and secrets.
type Prompter interface {
	Confirm(question string) (bool, error)
	Password(prompt string) (string, error)
}

// terminalPrompter prompts on stderr and reads from stdin.
type terminalPrompter struct{}

func (terminalPrompter) Confirm(question string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, errors.New("cannot ask for confirmation: stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, question)
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("prompt failed: %w", err)
	}
	a := strings.ToLower(strings.TrimSpace(answer))
	return a == "y" || a == "yes", nil
}

func (terminalPrompter) Password(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("cannot prompt for SSH password: stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("password prompt failed: %w", err)
	}
	return string(b), nil
}

// knownHosts is an OpenSSH known_hosts file that learns new keys on demand.
type knownHosts struct {
	path string
}

func defaultKnownHosts() (*knownHosts, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("cannot determine home directory for known_hosts: %w", err)
	}
	return openKnownHosts(filepath.Join(home, ".ssh", "known_hosts"))
}

// openKnownHosts creates path and its directory if they are missing.
func openKnownHosts(path string) (*knownHosts, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("cannot create %s: %w", filepath.Dir(path), err)
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(path, nil, 0o600); err != nil {
			return nil, fmt.Errorf("cannot create known_hosts: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("cannot access known_hosts: %w", err)
	}
	return &knownHosts{path: path}, nil
}

// callback verifies host keys, trusting unknown hosts on first use and
// offering to replace changed keys. In batch mode nothing is prompted and
// both cases are errors.
func (k *knownHosts) callback(host string, port int, batch bool, p Prompter) (ssh.HostKeyCallback, error) {
	verify, err := knownhosts.New(k.path)
	if err != nil {
		return nil, fmt.Errorf("cannot load known_hosts: %w", err)
	}

	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		err := verify(hostname, remote, key)
		if err == nil {
			return nil
		}
		var keyErr *knownhosts.KeyError
		if !errors.As(err, &keyErr) {
			return fmt.Errorf("host key verification failed: %w", err)
		}

		address := knownHostAddress(host, port)
		presented := ssh.FingerprintSHA256(key)

		if len(keyErr.Want) == 0 {
			if batch {
				return fmt.Errorf("unknown host key for %s (%s); run ssh once to trust it or drop --ssh-batch", address, presented)
			}
			ok, err := p.Confirm(fmt.Sprintf(
				"The authenticity of host '%s' can't be established.\n%s key fingerprint is %s.\nTrust this host and continue connecting (yes/no)? ",
				address, key.Type(), presented,
			))
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("host key for %s was not trusted", address)
			}
			return k.add(host, port, key)
		}

		expected := make([]string, 0, len(keyErr.Want))
		for _, want := range keyErr.Want {
			expected = append(expected, ssh.FingerprintSHA256(want.Key))
		}
		mismatch := fmt.Sprintf("host key mismatch for %s: expected %s, presented %s",
			address, strings.Join(expected, ", "), presented)
		if batch {
			return errors.New(mismatch)
		}
		ok, err := p.Confirm(fmt.Sprintf(
			"WARNING: HOST KEY CHANGED for '%s'.\nExpected: %s\nPresented: %s\nReplace stored key and continue (yes/no)? ",
			address, strings.Join(expected, ", "), presented,
		))
		if err != nil {
			return err
		}
		if !ok {
			return errors.New(mismatch)
		}
		return k.replace(host, port, key)
	}, nil
}

func (k *knownHosts) add(host string, port int, key ssh.PublicKey) error {
	f, err := os.OpenFile(k.path, os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("cannot update known_hosts: %w", err)
	}
	defer f.Close()

	line := knownhosts.Line([]string{knownHostAddress(host, port)}, key)
	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("cannot write known_hosts entry: %w", err)
	}
	return nil
}

func (k *knownHosts) replace(host string, port int, key ssh.PublicKey) error {
	data, err := os.ReadFile(k.path)
	if err != nil {
		return fmt.Errorf("cannot read known_hosts: %w", err)
	}

	updated := withoutHost(data, host, port)
	if len(updated) > 0 && updated[len(updated)-1] != '\n' {
		updated = append(updated, '\n')
	}
	updated = append(updated, knownhosts.Line([]string{knownHostAddress(host, port)}, key)...)
	updated = append(updated, '\n')

	if err := os.WriteFile(k.path, updated, 0o600); err != nil {
		return fmt.Errorf("cannot write known_hosts: %w", err)
	}
	return nil
}

func knownHostAddress(host string, port int) string {
	if port == 22 {
		return host
	}
	return fmt.Sprintf("[%s]:%d", host, port)
}

// withoutHost drops every known_hosts line naming host:port. Comments,
// blank lines and other hosts are kept verbatim.
func withoutHost(data []byte, host string, port int) []byte {
	names := map[string]bool{
		host:                               true,
		fmt.Sprintf("[%s]:%d", host, port): true,
	}
	if port != 22 {
		delete(names, host)
	}

	lines := strings.Split(string(data), "\n")
	keep := lines[:0]
	for _, line := range lines {
		if !lineNamesHost(line, names) {
			keep = append(keep, line)
		}
	}
	return []byte(strings.Join(keep, "\n"))
}

func lineNamesHost(line string, names map[string]bool) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return false
	}
	fields := strings.Fields(trimmed)
	idx := 0
	if strings.HasPrefix(fields[0], "@") {
		if len(fields) < 2 {
			return false
		}
		idx = 1
	}
	for _, h := range strings.Split(fields[idx], ",") {
		if names[h] {
			return true
		}
	}
	return false
}

// authMethods offers, in order: ssh-agent keys, default private keys, and
// unless batch is set a password and keyboard-interactive prompt.
func authMethods(t Target, batch bool, p Prompter) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod

	if m := agentAuth(); m != nil {
		methods = append(methods, m)
	}
	if signers := defaultSigners(); len(signers) > 0 {
		methods = append(methods, ssh.PublicKeys(signers...))
	}
	if !batch {
		pw := &cachedPassword{prompt: fmt.Sprintf("%s's password: ", t), p: p}
		methods = append(methods,
			ssh.PasswordCallback(pw.get),
			ssh.KeyboardInteractive(pw.answer),
		)
	}

	if len(methods) == 0 {
		return nil, errors.New("no SSH auth methods available (configure ssh-agent or private keys, or drop --ssh-batch)")
	}
	return methods, nil
}

func agentAuth() ssh.AuthMethod {
	sock := strings.TrimSpace(os.Getenv("SSH_AUTH_SOCK"))
	if sock == "" {
		return nil
	}
	return ssh.PublicKeysCallback(func() ([]ssh.Signer, error) {
		conn, err := net.Dial("unix", sock)
		if err != nil {
			return nil, err
		}
		defer conn.Close()
		return agent.NewClient(conn).Signers()
	})
}

// defaultSigners loads unencrypted keys from ~/.ssh. Keys needing a
// passphrase are left to the agent.
func defaultSigners() []ssh.Signer {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	var signers []ssh.Signer
	for _, name := range defaultPrivateKeyFiles {
		pem, err := os.ReadFile(filepath.Join(home, ".ssh", name))
		if err != nil {
			continue
		}
		signer, err := ssh.ParsePrivateKey(pem)
		if err != nil {
			continue
		}
		signers = append(signers, signer)
	}
	return signers
}

// cachedPassword asks once and reuses the answer for later auth rounds.
type cachedPassword struct {
	prompt string
	p      Prompter

	mu     sync.Mutex
	value  string
	cached bool
}

func (c *cachedPassword) get() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cached {
		return c.value, nil
	}
	v, err := c.p.Password(c.prompt)
	if err != nil {
		return "", err
	}
	c.value, c.cached = v, true
	return v, nil
}

func (c *cachedPassword) answer(_, _ string, questions []string, echos []bool) ([]string, error) {
	answers := make([]string, len(questions))
	for i := range questions {
		if i < len(echos) && echos[i] {
			continue
		}
		pass, err := c.get()
		if err != nil {
			return nil, err
		}
		answers[i] = pass
	}
	return answers, nil
}
