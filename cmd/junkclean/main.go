package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sadopc/junkclean/internal/cli"
	"github.com/sadopc/junkclean/internal/engine"
	"github.com/sadopc/junkclean/internal/fsys"
	"github.com/sadopc/junkclean/internal/pattern"
	"github.com/sadopc/junkclean/internal/remote"
	"github.com/sadopc/junkclean/internal/scanner"
	"github.com/sadopc/junkclean/internal/ui"
)

var (
	version = "dev"
)

const (
	defaultSSHPort = 22
	debugLogFile   = "junkclean-debug.log"
)

type options struct {
	cli        bool
	auto       bool
	path       string
	noSystem   bool
	exportPath string
	debug      bool
	notify     bool
	ssh        string
	sshPort    int
	sshBatch   bool
	sshTimeout int
}

func main() {
	err := newRootCmd().Execute()
	if errors.Is(err, cli.ErrInterrupted) {
		os.Exit(130)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "junkclean",
		Short: "Find and delete junk files",
		Long: `junkclean - Find and delete junk files.

Scans a directory tree, plus the system log and temp directories, for logs,
caches, temp files, shell histories and OS metadata files, lists what it
found and deletes the selection.`,
		Example: `  junkclean                         Interactive mode on the users directory
  junkclean -p ~/projects           Interactive mode on one directory
  junkclean --cli                   Scan, list and ask before deleting
  junkclean --cli --auto            Scan and delete without asking
  junkclean --cli --export -        Print a JSON report to stdout
  junkclean --ssh alice@10.0.0.5    Scan a remote home directory over SSH`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			return run(cmd.Context(), opts, cmd.Flags().Changed("path"))
		},
	}

	f := root.Flags()
	f.BoolVarP(&opts.cli, "cli", "c", false, "Run in line-oriented CLI mode")
	f.BoolVarP(&opts.auto, "auto", "a", false, "Clean without confirmation (only works in CLI mode)")
	f.StringVarP(&opts.path, "path", "p", scanner.DefaultRoot(runtime.GOOS), "Path to scan")
	f.BoolVar(&opts.noSystem, "no-system", false, "Do not scan the system log and temp directories")
	f.StringVar(&opts.exportPath, "export", "", "Write a JSON report to this file ('-' for stdout, CLI mode only)")
	f.BoolVar(&opts.debug, "debug", false, "Write debug logs (stderr in CLI mode, "+debugLogFile+" otherwise)")
	f.BoolVar(&opts.notify, "notify", false, "Send a desktop notification when a scan or clean completes")
	f.StringVar(&opts.ssh, "ssh", "", "Scan user@host over SSH instead of the local disk")
	f.IntVar(&opts.sshPort, "ssh-port", defaultSSHPort, "SSH port for remote scans")
	f.BoolVar(&opts.sshBatch, "ssh-batch", false, "Disable SSH password prompts (key/agent auth only)")
	f.IntVar(&opts.sshTimeout, "ssh-timeout", 15, "SSH connection timeout in seconds")

	root.AddCommand(newVersionCmd(), newPatternsCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "junkclean %s\n", version)
		},
	}
}

func newPatternsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "patterns",
		Short: "Print the built-in junk patterns",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printPatterns(cmd.OutOrStdout(), pattern.Default())
		},
	}
}

func printPatterns(w io.Writer, set *pattern.Set) {
	section := func(title string, entries []string) {
		fmt.Fprintf(w, "%s (%d):\n", title, len(entries))
		for _, e := range entries {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
	toStrings := func(ps []pattern.Pattern) []string {
		out := make([]string, len(ps))
		for i, p := range ps {
			out[i] = p.String()
		}
		return out
	}
	section("File names", toStrings(set.Names()))
	section("Extensions", set.Extensions())
	section("Folders", toStrings(set.Folders()))
}

func (o *options) validate() error {
	if o.auto && !o.cli {
		return errors.New("--auto/-a only works in CLI mode")
	}
	if o.exportPath == "-" && !o.cli {
		return errors.New("--export - only works in CLI mode")
	}
	if o.ssh != "" {
		if err := o.remoteConfig().Validate(); err != nil {
			return err
		}
	}
	if o.sshTimeout < 1 {
		return errors.New("ssh-timeout must be at least 1 second")
	}
	return nil
}

func (o *options) remoteConfig() remote.Config {
	return remote.Config{
		Target:    o.ssh,
		Port:      o.sshPort,
		BatchMode: o.sshBatch,
		Timeout:   time.Duration(o.sshTimeout) * time.Second,
	}
}

func run(ctx context.Context, opts *options, pathSet bool) error {
	logger, closeLog, err := newLogger(opts)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg := engine.Config{}
	if !opts.noSystem && opts.ssh == "" {
		cfg.SystemDirs = scanner.SystemDirs(runtime.GOOS)
	}

	var (
		vfs  fsys.FS = fsys.OS{}
		root string
	)
	if opts.ssh != "" {
		sess, err := remote.Dial(ctx, opts.remoteConfig())
		if err != nil {
			return err
		}
		defer sess.Close()

		// Without --path the remote login directory is scanned.
		remotePath := ""
		if pathSet {
			remotePath = opts.path
		}
		if root, err = sess.ResolvePath(remotePath); err != nil {
			return err
		}
		vfs = sess
		logger.Debug("remote session ready", "target", opts.ssh, "root", root)
	} else {
		if root, err = filepath.Abs(opts.path); err != nil {
			return err
		}
	}

	eng := engine.New(cfg, engine.WithFS(vfs), engine.WithLogger(logger))
	if opts.cli {
		return runCLI(ctx, eng, opts, root, logger)
	}
	return runTUI(eng, opts, root, logger)
}

func runCLI(ctx context.Context, eng *engine.Engine, opts *options, root string, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	// Keep stdout clean for the JSON report.
	out := os.Stdout
	if opts.exportPath == "-" {
		out = os.Stderr
	}
	tty := isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())
	width := 0
	if tty {
		if w, _, err := term.GetSize(int(out.Fd())); err == nil {
			width = w
		}
	}

	r := cli.New(eng, cli.Options{
		Root:       root,
		Auto:       opts.auto,
		ExportPath: opts.exportPath,
		Version:    version,
		Out:        out,
		Animate:    tty,
		Width:      width,
		Logger:     logger,
	})
	return r.Run(ctx)
}

func runTUI(eng *engine.Engine, opts *options, root string, logger *slog.Logger) error {
	app := ui.NewApp(eng, root)
	app.Version = version
	app.Notify = opts.notify
	app.Logger = logger
	if opts.exportPath != "" {
		app.ExportPath = opts.exportPath
	}

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	eng.Abort()
	eng.Wait()
	return app.FatalError()
}

// newLogger returns a logger that discards unless --debug is set. The
// interactive screen belongs to the TUI, so its logs go to a file.
func newLogger(opts *options) (*slog.Logger, func(), error) {
	if !opts.debug {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	hopts := &slog.HandlerOptions{Level: slog.LevelDebug}
	if opts.cli {
		return slog.New(slog.NewTextHandler(os.Stderr, hopts)), func() {}, nil
	}
	f, err := os.OpenFile(debugLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open debug log: %w", err)
	}
	return slog.New(slog.NewTextHandler(f, hopts)), func() { f.Close() }, nil
}
