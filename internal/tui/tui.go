package tui

import (
	"context"

	"daygrid/internal/engine"
	"daygrid/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive board for one date. The TUI is the input-sensing
// layer: keyboard gestures become drag events fed into the engine, and
// asynchronous persistence completions are routed back onto the bubbletea
// loop through the engine's exec hook.
func Run(st *store.Store, date string) error {
	snap, err := st.Load(context.Background())
	if err != nil {
		return err
	}

	needsResync := new(bool)
	var p *tea.Program
	e := engine.New(snap, st,
		engine.WithExec(func(f func()) { p.Send(applyMsg{fn: f}) }),
		engine.WithRecovery(func() { *needsResync = true }),
	)

	m := newBoardModel(st, e, date, needsResync)
	p = tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
