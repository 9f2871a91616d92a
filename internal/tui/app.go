package tui

import (
	"context"

	"daygrid/internal/engine"
	"daygrid/internal/model"
	"daygrid/internal/store"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// applyMsg carries an engine completion (rollback or recovery trigger) onto
// the update loop, keeping all snapshot mutation single-threaded.
type applyMsg struct {
	fn func()
}

type column struct {
	title string
	id    model.ContainerID
	tasks []model.Task
}

type boardModel struct {
	store *store.Store
	eng   *engine.Engine
	date  string

	cols []column
	col  int
	row  int

	lifted      bool
	capturing   bool
	entry       capture
	needsResync *bool

	width  int
	height int
	status string
}

func newBoardModel(st *store.Store, e *engine.Engine, date string, needsResync *bool) boardModel {
	m := boardModel{
		store:       st,
		eng:         e,
		date:        date,
		needsResync: needsResync,
	}
	m.rebuild()
	return m
}

// rebuild derives the column layout from the snapshot. Completed columns also
// show failed tasks beneath the completed ones; each card still hovers as its
// own container.
func (m *boardModel) rebuild() {
	snap := m.eng.Snapshot()
	build := func(title string, id model.ContainerID, extra ...model.ContainerID) column {
		tasks := snap.TasksIn(id)
		for _, e := range extra {
			tasks = append(tasks, snap.TasksIn(e)...)
		}
		return column{title: title, id: id, tasks: tasks}
	}
	m.cols = []column{
		build("Life", model.DayID(m.date, model.CategoryLife, model.StateActive)),
		build("Life · done", model.DayID(m.date, model.CategoryLife, model.StateCompleted),
			model.DayID(m.date, model.CategoryLife, model.StateFailed)),
		build("Work", model.DayID(m.date, model.CategoryWork, model.StateActive)),
		build("Work · done", model.DayID(m.date, model.CategoryWork, model.StateCompleted),
			model.DayID(m.date, model.CategoryWork, model.StateFailed)),
		build("Graveyard", model.GraveyardID()),
	}
	m.clampCursor()
}

func (m *boardModel) clampCursor() {
	if m.col < 0 {
		m.col = 0
	}
	if m.col >= len(m.cols) {
		m.col = len(m.cols) - 1
	}
	if n := len(m.cols[m.col].tasks); m.row >= n {
		m.row = n - 1
	}
	if m.row < 0 {
		m.row = 0
	}
}

// cursorTask returns the task under the cursor, if any.
func (m *boardModel) cursorTask() (model.Task, bool) {
	c := m.cols[m.col]
	if len(c.tasks) == 0 || m.row >= len(c.tasks) {
		return model.Task{}, false
	}
	return c.tasks[m.row], true
}

// hoverID is the boundary id the cursor currently denotes: the task under the
// cursor, or the column's container when the column is empty or the cursor
// sits on the lifted task itself.
func (m *boardModel) hoverID() string {
	src, dragging := m.eng.Session().Dragging()
	if t, ok := m.cursorTask(); ok {
		if !dragging || t.ID != src.TaskID {
			return t.ID
		}
	}
	return m.cols[m.col].id.String()
}

func (m boardModel) Init() tea.Cmd { return nil }

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case applyMsg:
		msg.fn()
		if *m.needsResync {
			*m.needsResync = false
			m.resync()
			m.status = "move failed, board reloaded"
		}
		m.rebuild()
		return m, nil

	case tea.KeyMsg:
		if m.capturing {
			return m.updateCapture(msg)
		}
		return m.handleKey(msg)
	}
	if m.capturing {
		return m.updateCapture(msg)
	}
	return m, nil
}

func (m boardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		if m.lifted {
			m.eng.DragCancel()
		}
		return m, tea.Quit

	case "esc":
		if m.lifted {
			m.eng.DragCancel()
			m.lifted = false
			m.status = "drop cancelled"
		}
		return m, nil

	case "left", "h":
		m.col--
		m.afterCursorMove()
		return m, nil
	case "right", "l":
		m.col++
		m.afterCursorMove()
		return m, nil
	case "up", "k":
		m.row--
		m.afterCursorMove()
		return m, nil
	case "down", "j":
		m.row++
		m.afterCursorMove()
		return m, nil

	case "g":
		m.col = len(m.cols) - 1
		m.row = 0
		m.afterCursorMove()
		return m, nil

	case "a":
		if !m.lifted {
			m.entry = newCapture(m.captureTarget())
			m.capturing = true
			return m, textinput.Blink
		}
		return m, nil

	case " ", "enter":
		if !m.lifted {
			t, ok := m.cursorTask()
			if !ok {
				return m, nil
			}
			m.eng.DragStart(t.ID)
			if m.eng.Session().Active() {
				m.lifted = true
				m.status = "carrying " + t.Text
			}
			return m, nil
		}
		m.eng.DragEnd(context.Background(), m.hoverID())
		m.lifted = false
		m.status = ""
		m.rebuild()
		return m, nil
	}
	return m, nil
}

func (m *boardModel) afterCursorMove() {
	m.clampCursor()
	if m.lifted {
		m.eng.DragOver(m.hoverID())
	}
}

func (m *boardModel) resync() {
	fresh, err := m.store.Load(context.Background())
	if err != nil {
		m.status = "resync failed: " + err.Error()
		return
	}
	*m.eng.Snapshot() = *fresh
}
