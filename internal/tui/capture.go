package tui

import (
	"context"
	"time"

	"daygrid/internal/model"
	"daygrid/internal/order"
	"daygrid/internal/store"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// capture is the inline "new task" input. The task lands at the tail of the
// active container of the column the cursor is on (graveyard and done
// columns fall back to the life column).
type capture struct {
	input  textinput.Model
	target model.ContainerID
}

func newCapture(target model.ContainerID) capture {
	ti := textinput.New()
	ti.Placeholder = "new task"
	ti.CharLimit = 200
	ti.Width = 40
	ti.Focus()
	return capture{input: ti, target: target}
}

func (m *boardModel) captureTarget() model.ContainerID {
	id := m.cols[m.col].id
	if id.Graveyard || id.State != model.StateActive {
		return model.DayID(m.date, model.CategoryLife, model.StateActive)
	}
	return id
}

func (m boardModel) updateCapture(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if ok {
		switch key.String() {
		case "esc":
			m.capturing = false
			return m, nil
		case "enter":
			text := m.entry.input.Value()
			m.capturing = false
			if text == "" {
				return m, nil
			}
			if err := m.createTask(text); err != nil {
				m.status = "create failed: " + err.Error()
			}
			m.rebuild()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.entry.input, cmd = m.entry.input.Update(msg)
	return m, cmd
}

func (m *boardModel) createTask(text string) error {
	id, err := store.NewTaskID()
	if err != nil {
		return err
	}
	snap := m.eng.Snapshot()
	last := ""
	if members := snap.TasksIn(m.entry.target); len(members) > 0 {
		last = members[len(members)-1].Order
	}
	key, err := order.KeyAfter(last)
	if err != nil {
		return err
	}
	t := model.Task{
		ID:        id,
		Text:      text,
		Date:      m.entry.target.Date,
		Category:  m.entry.target.Category,
		State:     model.StateActive,
		Order:     key,
		CreatedAt: time.Now().UTC(),
	}
	if err := m.store.AddTask(context.Background(), t); err != nil {
		return err
	}
	snap.Insert(t)
	return nil
}
