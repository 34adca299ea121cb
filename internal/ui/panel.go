package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Out and Err receive everything the helpers print.
var (
	Out io.Writer = os.Stdout
	Err io.Writer = os.Stderr
)

func OK(msg string) {
	t := Current()
	fmt.Fprintln(Out, t.Success.Render(t.SymOK+" "+msg))
}

func Fail(msg string) {
	t := Current()
	fmt.Fprintln(Err, t.Error.Render(t.SymFail+" "+msg))
}

// Hint prints a muted line on Err.
func Hint(msg string) {
	fmt.Fprintln(Err, Current().Muted.Render(msg))
}

// ProgressBar renders a progress bar with a done/total counter.
func ProgressBar(done, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width < 5 {
		width = 5
	}
	filled := int(float64(done) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	t := Current()
	bar := strings.Repeat(t.BarFull, filled) + strings.Repeat(t.BarEmpty, width-filled)
	return fmt.Sprintf("%s %d/%d", t.Accent.Render(bar), done, total)
}

// StepIndicator renders "● Dates ─ ◉ Personal ─ ○ Payment": steps before
// active are done, active is highlighted.
func StepIndicator(titles []string, active int) string {
	t := Current()
	parts := make([]string, 0, len(titles))
	for i, title := range titles {
		step := i + 1
		switch {
		case step < active:
			parts = append(parts, t.Success.Render(t.StepDone+" "+title))
		case step == active:
			parts = append(parts, t.Title.Inherit(t.Accent).Render(t.StepActive+" "+title))
		default:
			parts = append(parts, t.Muted.Render(t.StepTodo+" "+title))
		}
	}
	return strings.Join(parts, t.Muted.Render(" ─ "))
}

// Badge renders a count bubble; zero renders nothing.
func Badge(count int) string {
	if count <= 0 {
		return ""
	}
	return Current().Badge.Render(fmt.Sprintf("%d", count))
}

// PanelString frames lines with the current theme's border.
func PanelString(lines []string) string {
	t := Current()
	border := lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.BorderColor).
		Padding(0, 1)
	return border.Render(strings.Join(lines, "\n"))
}

// Panel prints a framed box to Out.
func Panel(lines []string) {
	fmt.Fprintln(Out, PanelString(lines))
}
