package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const spinnerInterval = 90 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinner animates a progress indicator on a single line while a slow
// operation runs. Non-TTY output degrades to a one-line notice.
type spinner struct {
	w       io.Writer
	message string
	stop    chan struct{}
	stopped chan struct{}
}

func startSpinner(w io.Writer, message string) *spinner {
	s := &spinner{
		w:       w,
		message: message,
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}

	if !isTTY() {
		fmt.Fprintf(w, "%s...\n", message)
		close(s.stopped)
		return s
	}

	go s.run()
	return s
}

func (s *spinner) run() {
	defer close(s.stopped)
	style := lipgloss.NewStyle().Foreground(colorPrimary)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	frame := 0
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			fmt.Fprintf(s.w, "\r%s %s", style.Render(spinnerFrames[frame%len(spinnerFrames)]), s.message)
			frame++
		}
	}
}

func (s *spinner) Stop() {
	if isTTY() {
		close(s.stop)
		<-s.stopped
		// Overwrite the spinner line. Frame glyphs render two columns wide.
		fmt.Fprint(s.w, "\r"+strings.Repeat(" ", len(s.message)+8)+"\r")
	}
}

// runWithSpinner animates a spinner for the duration of operation.
func runWithSpinner(w io.Writer, message string, operation func() error) error {
	spin := startSpinner(w, message)
	err := operation()
	spin.Stop()
	return err
}
