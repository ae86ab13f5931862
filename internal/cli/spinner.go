package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spinner animates a message on one terminal line until stopped or until
// its context ends.
type spinner struct {
	w   io.Writer
	ctx context.Context

	mu      sync.Mutex
	message string
	drawn   int // widest line written so far

	quit    chan struct{}
	exited  chan struct{}
	stopped sync.Once
}

// startSpinner begins animating message on w.
func startSpinner(ctx context.Context, w io.Writer, message string) *spinner {
	s := &spinner{
		w:       w,
		ctx:     ctx,
		message: message,
		quit:    make(chan struct{}),
		exited:  make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *spinner) loop() {
	defer close(s.exited)
	tick := time.NewTicker(spinnerInterval)
	defer tick.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-s.quit:
			return
		case <-s.ctx.Done():
			s.erase()
			return
		case <-tick.C:
			s.frame(spinnerFrames[frame%len(spinnerFrames)])
		}
	}
}

func (s *spinner) frame(glyph string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := styleIconSpinner.Render(glyph) + " " + StyleDim.Render(s.message)
	s.drawn = max(s.drawn, lipgloss.Width(line))
	fmt.Fprint(s.w, "\r"+line)
}

func (s *spinner) erase() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drawn > 0 {
		fmt.Fprint(s.w, "\r"+strings.Repeat(" ", s.drawn)+"\r")
	}
}

// update replaces the message from the next frame on.
func (s *spinner) update(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// stop ends the animation and clears the line. Later calls do nothing.
func (s *spinner) stop() {
	s.stopped.Do(func() {
		close(s.quit)
		<-s.exited
		s.erase()
	})
}

func (s *spinner) succeed(message string) {
	s.stop()
	printSuccess("%s", message)
}

func (s *spinner) fail(message string) {
	s.stop()
	printError("%s", message)
}

// cancelled reports whether the context, not stop, ended the animation.
func (s *spinner) cancelled() bool {
	select {
	case <-s.quit:
		return false
	default:
		return s.ctx.Err() != nil
	}
}
