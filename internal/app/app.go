package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atomicstack/folderctl/internal/backend"
	"github.com/atomicstack/folderctl/internal/peers"
	"github.com/atomicstack/folderctl/internal/state"
	"github.com/atomicstack/folderctl/internal/store"
	"github.com/atomicstack/folderctl/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
)

// Config describes user-provided application options.
type Config struct {
	StorePath    string
	FilterID     int64
	Create       bool
	SeedPath     string
	MaxFilters   int
	PollInterval time.Duration
	Width        int
	Height       int
	ShowFooter   bool
	Verbose      bool
}

// Run bootstraps and executes the Bubble Tea program.
func Run(cfg Config) error {
	ctx := context.Background()
	st, err := store.Open(ctx, cfg.StorePath, cfg.MaxFilters)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	if cfg.SeedPath != "" {
		if err := st.Seed(ctx, cfg.SeedPath); err != nil {
			return fmt.Errorf("seed store: %w", err)
		}
	}

	watcher := backend.NewWatcher(st, st.Path(), cfg.PollInterval)
	defer func() {
		watcher.Stop()
		watcher.Wait()
	}()

	model := ui.NewModel(ui.Options{
		Width:       cfg.Width,
		Height:      cfg.Height,
		ShowFooter:  cfg.ShowFooter,
		Verbose:     cfg.Verbose,
		Folders:     st,
		Peers:       peers.NewResolver(st, state.NewPeerStore()),
		Watcher:     watcher,
		Replica:     st.Replica(),
		StartFilter: cfg.FilterID,
		StartCreate: cfg.Create,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
