// Package report renders session progress for the terminal.
package report

import (
	"fmt"
	"io"
	"sync"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathpilot/internal/session"
)

// Color palette — calm, readable on dark terminals.
var (
	colorActive  = lipgloss.Color("#14B8A6") // Teal
	colorSolving = lipgloss.Color("#8B5CF6") // Vivid Purple
	colorDone    = lipgloss.Color("#22C55E") // Green
	colorError   = lipgloss.Color("#F43F5E") // Rose
	colorDim     = lipgloss.Color("#94A3B8") // Slate
)

var (
	styleActive  = lipgloss.NewStyle().Foreground(colorActive).Bold(true)
	styleSolving = lipgloss.NewStyle().Foreground(colorSolving).Bold(true)
	styleDone    = lipgloss.NewStyle().Foreground(colorDone).Bold(true)
	styleError   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
)

func stateStyle(s session.State) lipgloss.Style {
	switch s {
	case session.StateSolving:
		return styleSolving
	case session.StateStopped:
		return styleDone
	case session.StateError:
		return styleError
	default:
		return styleActive
	}
}

// Console writes one styled line per session event. Safe for use from
// the session goroutine.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

var _ session.ProgressReporter = (*Console)(nil)

// NewConsole creates a console reporter writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Report renders one event.
func (c *Console) Report(e session.Event) {
	line := fmt.Sprintf("%s  %-14s  %s",
		styleDim.Render(e.Timestamp.Format("15:04:05")),
		stateStyle(e.State).Render(string(e.State)),
		styleDim.Render(fmt.Sprintf("solved %d/%d", e.Solved, e.Attempted)),
	)
	if e.CurrentDomain != "" {
		line += "  " + string(e.CurrentDomain)
	}
	if e.Note != "" {
		line += "  " + styleDim.Render(e.Note)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w, line)
}
