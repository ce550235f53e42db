// Package tui is the interactive back-office console: one paginated table
// per entity, detail views, create/edit forms and a login screen.
package tui

import (
	"context"
	"log/slog"

	"trustdesk-cli/internal/api"
	"trustdesk-cli/internal/journal"
	"trustdesk-cli/internal/logging"
	"trustdesk-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

type Options struct {
	Client *api.Client

	// Profile, APIURL and Email identify where a fresh login is saved.
	Profile string
	APIURL  string
	Email   string

	// Journal records confirmed mutations. Optional.
	Journal *journal.Journal
	Logger  *slog.Logger

	// Theme is light, dark or auto.
	Theme string
}

// Run starts the console and blocks until the user quits. The last entity
// and pages are saved for the next start.
func Run(ctx context.Context, opts Options) error {
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}

	applyColorProfilePreference()
	applyThemePreference(opts.Theme)

	state, err := store.LoadTUIState()
	if err != nil {
		log.Warn("tui state unavailable", "error", err)
		state = &store.TUIState{Version: 1}
	}

	m := newAppModel(ctx, opts, state)
	m.animate = true
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if fm, ok := final.(appModel); ok {
		if err := store.SaveTUIState(fm.state); err != nil {
			log.Warn("could not save tui state", "error", err)
		}
	}
	return err
}
