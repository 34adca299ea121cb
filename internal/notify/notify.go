// Package notify shows transient success and error messages. Each
// notification slides in, stays visible for a while, fades out and is
// removed; the phases are driven by Bubble Tea ticks so the center can be
// embedded in any model.
package notify

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Default phase durations.
const (
	TransitionDuration = 300 * time.Millisecond
	VisibleDuration    = 3 * time.Second
)

type Severity int

const (
	Success Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "success"
}

// Phase is where a notification is in its lifecycle.
type Phase int

const (
	Entering Phase = iota
	Visible
	Leaving
	removed
)

type Notification struct {
	ID       int
	Message  string
	Severity Severity
	Phase    Phase
}

// PhaseMsg moves notification ID to Phase. Route it to Center.Update.
type PhaseMsg struct {
	ID    int
	Phase Phase
}

var (
	successStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("42")).
			Foreground(lipgloss.Color("42")).
			Padding(0, 1)
	errorStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("9")).
			Foreground(lipgloss.Color("9")).
			Bold(true).
			Padding(0, 1)
)

// Center holds the active notifications. The zero value is not usable;
// call New.
type Center struct {
	items  []Notification
	nextID int

	enter, show, leave time.Duration
}

func New() Center {
	return Center{
		enter: TransitionDuration,
		show:  VisibleDuration,
		leave: TransitionDuration,
	}
}

// WithDurations returns a copy using different phase lengths.
func (c Center) WithDurations(transition, visible time.Duration) Center {
	c.enter, c.show, c.leave = transition, visible, transition
	return c
}

// Push adds a notification and returns the command that drives it.
func (c Center) Push(message string, sev Severity) (Center, tea.Cmd) {
	c.nextID++
	n := Notification{ID: c.nextID, Message: message, Severity: sev, Phase: Entering}
	c.items = append(append([]Notification(nil), c.items...), n)
	return c, after(c.enter, n.ID, Visible)
}

// Update advances the notification named by a PhaseMsg. Other messages
// are ignored.
func (c Center) Update(msg tea.Msg) (Center, tea.Cmd) {
	pm, ok := msg.(PhaseMsg)
	if !ok {
		return c, nil
	}
	idx := c.index(pm.ID)
	if idx < 0 {
		return c, nil
	}

	items := append([]Notification(nil), c.items...)
	var cmd tea.Cmd
	switch pm.Phase {
	case Visible:
		items[idx].Phase = Visible
		cmd = after(c.show, pm.ID, Leaving)
	case Leaving:
		items[idx].Phase = Leaving
		cmd = after(c.leave, pm.ID, removed)
	default:
		items = append(items[:idx], items[idx+1:]...)
	}
	c.items = items
	return c, cmd
}

// Active returns the notifications still on screen, oldest first.
func (c Center) Active() []Notification {
	return append([]Notification(nil), c.items...)
}

func (c Center) Len() int { return len(c.items) }

// View stacks the active notifications; it is empty when there are none.
func (c Center) View() string {
	if len(c.items) == 0 {
		return ""
	}
	boxes := make([]string, 0, len(c.items))
	for _, n := range c.items {
		style := successStyle
		if n.Severity == Error {
			style = errorStyle
		}
		if n.Phase != Visible {
			style = style.Faint(true)
		}
		boxes = append(boxes, style.Render(n.Message))
	}
	return strings.Join(boxes, "\n")
}

func (c Center) index(id int) int {
	for i, n := range c.items {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func after(d time.Duration, id int, p Phase) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return PhaseMsg{ID: id, Phase: p}
	})
}
