package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

const clearLine = "\r\x1b[2K"

// status is a single spinner line. Without animation it prints the text
// given to Start once and ignores updates.
type status struct {
	out     io.Writer
	animate bool
	spin    spinner.Spinner
	style   lipgloss.Style

	mu     sync.Mutex
	text   string
	frame  int
	active bool
	stop   chan struct{}
	done   chan struct{}
}

func newStatus(out io.Writer, animate bool) *status {
	return &status{
		out:     out,
		animate: animate,
		spin:    spinner.Dot,
		style:   lipgloss.NewRenderer(out).NewStyle().Bold(true).Foreground(lipgloss.Color("#98C379")),
	}
}

// Start shows text, replacing any running status.
func (s *status) Start(text string) {
	s.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = text
	s.active = true
	if !s.animate {
		fmt.Fprintln(s.out, text)
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.drawLocked()
	go s.loop(s.stop, s.done)
}

// Update replaces the text of the running status.
func (s *status) Update(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		s.text = text
	}
}

// Stop clears the status line.
func (s *status) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
	fmt.Fprint(s.out, clearLine)
}

func (s *status) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.spin.FPS)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.frame = (s.frame + 1) % len(s.spin.Frames)
			s.drawLocked()
			s.mu.Unlock()
		}
	}
}

func (s *status) drawLocked() {
	fmt.Fprint(s.out, clearLine+s.style.Render(s.spin.Frames[s.frame]+" "+s.text))
}
