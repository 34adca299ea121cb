package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts a full-screen program for m and returns the final model.
func Run(ctx context.Context, m tea.Model, opts ...tea.ProgramOption) (tea.Model, error) {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		return final, fmt.Errorf("run tui: %w", err)
	}
	return final, nil
}
