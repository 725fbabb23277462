// Package desktop hands paths and messages to the host desktop: system
// notifications, the file manager and the clipboard.
package desktop

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/aymanbagabas/go-osc52/v2"
)

// ErrUnsupported is returned when the host has no helper for an action.
var ErrUnsupported = errors.New("not supported on this system")

type command struct {
	name string
	args []string
}

// start launches helpers without waiting for them. Tests replace it.
var start = func(c command) error {
	_, err := launch(c)
	return err
}

// launch starts c and reaps it in the background. The returned channel
// receives the exit error once the helper has exited.
func launch(c command) (<-chan error, error) {
	if _, err := exec.LookPath(c.name); err != nil {
		return nil, fmt.Errorf("%w: %s not found", ErrUnsupported, c.name)
	}
	cmd := exec.Command(c.name, c.args...)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()
	return exited, nil
}

// Notify shows a desktop notification.
func Notify(title, message string) error {
	c, ok := notifyCommand(runtime.GOOS, title, message)
	if !ok {
		return ErrUnsupported
	}
	return start(c)
}

// Reveal shows path selected in the file manager. Where the file manager
// cannot select an entry, its parent directory is opened instead.
func Reveal(path string) error {
	c, ok := revealCommand(runtime.GOOS, path)
	if !ok {
		return ErrUnsupported
	}
	return start(c)
}

// Open opens path with the default application.
func Open(path string) error {
	c, ok := openCommand(runtime.GOOS, path)
	if !ok {
		return ErrUnsupported
	}
	return start(c)
}

// Copy puts text on the clipboard of the terminal attached to w using an
// OSC 52 escape sequence, which also works over SSH.
func Copy(w io.Writer, text string) error {
	seq := osc52.New(text)
	if os.Getenv("TMUX") != "" {
		seq = seq.Tmux()
	}
	_, err := seq.WriteTo(w)
	return err
}

func notifyCommand(goos, title, message string) (command, bool) {
	switch goos {
	case "darwin":
		script := fmt.Sprintf("display notification %s with title %s",
			appleScriptString(message), appleScriptString(title))
		return command{name: "osascript", args: []string{"-e", script}}, true
	case "windows":
		script := "[void][Reflection.Assembly]::LoadWithPartialName('System.Windows.Forms');" +
			"$n=New-Object System.Windows.Forms.NotifyIcon;" +
			"$n.Icon=[System.Drawing.SystemIcons]::Information;" +
			"$n.Visible=$true;" +
			fmt.Sprintf("$n.ShowBalloonTip(5000,%s,%s,'Info');", powerShellString(title), powerShellString(message)) +
			"Start-Sleep -Seconds 6;$n.Dispose()"
		return command{name: "powershell", args: []string{"-NoProfile", "-NonInteractive", "-Command", script}}, true
	case "linux", "freebsd", "openbsd", "netbsd":
		return command{name: "notify-send", args: []string{title, message}}, true
	}
	return command{}, false
}

func revealCommand(goos, path string) (command, bool) {
	switch goos {
	case "darwin":
		return command{name: "open", args: []string{"-R", path}}, true
	case "windows":
		return command{name: "explorer", args: []string{"/select,", path}}, true
	case "linux", "freebsd", "openbsd", "netbsd":
		return command{name: "xdg-open", args: []string{filepath.Dir(path)}}, true
	}
	return command{}, false
}

func openCommand(goos, path string) (command, bool) {
	switch goos {
	case "darwin":
		return command{name: "open", args: []string{path}}, true
	case "windows":
		// Never route paths through cmd.exe: file names may hold & or |.
		return command{name: "rundll32", args: []string{"url.dll,FileProtocolHandler", path}}, true
	case "linux", "freebsd", "openbsd", "netbsd":
		return command{name: "xdg-open", args: []string{path}}, true
	}
	return command{}, false
}

func appleScriptString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

func powerShellString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
