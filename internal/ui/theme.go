package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme bundles palette + symbols + box borders.
// All UI helpers pull from `current`.
type Theme struct {
	Name string

	Title, Muted, Accent, Success, Error, Pending lipgloss.Style
	Selected, Badge                               lipgloss.Style

	Border      lipgloss.Border
	BorderColor lipgloss.TerminalColor

	SymOK, SymFail                 string
	StepDone, StepActive, StepTodo string
	BarFull, BarEmpty              string
}

var current = classic()

// Themes lists the accepted names for SetTheme.
var Themes = []string{"classic", "neon", "mono"}

// SetTheme switches the current theme; unknown names fall back to classic.
func SetTheme(name string) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "neon":
		current = neon()
	case "mono":
		current = mono()
	default:
		current = classic()
	}
}

// SetNoColor strips every color from rendered output.
func SetNoColor(disable bool) {
	if disable {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// Current exposes what renderers need.
func Current() Theme { return current }

func classic() Theme {
	return Theme{
		Name:        "classic",
		Title:       lipgloss.NewStyle().Bold(true),
		Muted:       lipgloss.NewStyle().Faint(true),
		Accent:      lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Success:     lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Error:       lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Pending:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Selected:    lipgloss.NewStyle().Bold(true).Reverse(true),
		Badge:       lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("12")).Padding(0, 1),
		Border:      lipgloss.RoundedBorder(),
		BorderColor: lipgloss.Color("8"),
		SymOK:       "✔", SymFail: "✖",
		StepDone: "●", StepActive: "◉", StepTodo: "○",
		BarFull: "█", BarEmpty: "░",
	}
}

func neon() Theme {
	return Theme{
		Name:        "neon",
		Title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13")),
		Muted:       lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Accent:      lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		Success:     lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Error:       lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Pending:     lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Selected:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13")),
		Badge:       lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("13")).Padding(0, 1),
		Border:      lipgloss.RoundedBorder(),
		BorderColor: lipgloss.Color("13"),
		SymOK:       "✔", SymFail: "✖",
		StepDone: "◼", StepActive: "◆", StepTodo: "◻",
		BarFull: "▰", BarEmpty: "▱",
	}
}

func mono() Theme {
	plain := lipgloss.NewStyle()
	return Theme{
		Name:        "mono",
		Title:       plain.Bold(true),
		Muted:       plain,
		Accent:      plain,
		Success:     plain,
		Error:       plain,
		Pending:     plain,
		Selected:    plain.Reverse(true),
		Badge:       plain,
		Border:      lipgloss.NormalBorder(),
		BorderColor: lipgloss.NoColor{},
		SymOK:       "ok", SymFail: "x",
		StepDone: "[x]", StepActive: "[>]", StepTodo: "[ ]",
		BarFull: "#", BarEmpty: "-",
	}
}
