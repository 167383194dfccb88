package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/anirec/internal/reconciler"
	"github.com/desertthunder/anirec/internal/shared"
	"github.com/desertthunder/anirec/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.UI.LogPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	events := make(chan reconciler.Event, 64)
	rec := r.newReconciler(fileLogger, events)

	opts := ui.Options{Logger: fileLogger, Events: events}
	if r.history != nil {
		opts.History = r.history
	}

	model := ui.NewModel(ctx, rec, opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
