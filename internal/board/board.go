package board

import (
	"sort"
	"strings"

	"daygrid/internal/model"
)

// Snapshot is the in-memory board state: tasks grouped by calendar day plus
// the graveyard list. The drag engine reads it and mutates it optimistically;
// it is owned by the surrounding application and mutated only from its event
// loop.
type Snapshot struct {
	Days      map[string][]model.Task
	Graveyard []model.Task
}

func NewSnapshot() *Snapshot {
	return &Snapshot{Days: map[string][]model.Task{}}
}

// IdentityOf derives the container a task currently belongs to.
func IdentityOf(t model.Task) model.ContainerID {
	if strings.TrimSpace(t.Date) == "" {
		return model.GraveyardID()
	}
	return model.DayID(t.Date, t.Category, t.EffectiveState())
}

// Less orders tasks within a container: order key ascending, with a
// display-only fallback to CreatedAt then ID so that duplicate or missing
// keys (historical data) still yield a strict total order. The fallback never
// rewrites stored keys.
func Less(a, b model.Task) bool {
	return compareTasks(a, b) < 0
}

func compareTasks(a, b model.Task) int {
	ka := strings.TrimSpace(a.Order)
	kb := strings.TrimSpace(b.Order)
	if ka != "" && kb != "" && ka != kb {
		if ka < kb {
			return -1
		}
		return 1
	}
	if a.CreatedAt.Before(b.CreatedAt) {
		return -1
	}
	if a.CreatedAt.After(b.CreatedAt) {
		return 1
	}
	if a.ID < b.ID {
		return -1
	}
	if a.ID > b.ID {
		return 1
	}
	return 0
}

// SortTasks sorts tasks in place using the container ordering.
func SortTasks(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool { return compareTasks(tasks[i], tasks[j]) < 0 })
}

// TasksIn returns the sorted members of a container. The graveyard keeps its
// stored order (most recent burial first); day containers sort by order key.
// The returned slice is a copy.
func (s *Snapshot) TasksIn(id model.ContainerID) []model.Task {
	if id.Graveyard {
		out := make([]model.Task, len(s.Graveyard))
		copy(out, s.Graveyard)
		return out
	}
	var out []model.Task
	for _, t := range s.Days[id.Date] {
		if t.Category == id.Category && t.EffectiveState() == id.State {
			out = append(out, t)
		}
	}
	SortTasks(out)
	return out
}

// Locate finds a task by id, scanning the graveyard first, then every day
// partition. Read-only.
func (s *Snapshot) Locate(taskID string) (model.Task, model.ContainerID, bool) {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return model.Task{}, model.ContainerID{}, false
	}
	for _, t := range s.Graveyard {
		if t.ID == taskID {
			return t, model.GraveyardID(), true
		}
	}
	for _, day := range s.Days {
		for _, t := range day {
			if t.ID == taskID {
				return t, IdentityOf(t), true
			}
		}
	}
	return model.Task{}, model.ContainerID{}, false
}

// IndexIn returns a task's zero-based position within the sorted view of its
// container, or -1 when absent.
func (s *Snapshot) IndexIn(id model.ContainerID, taskID string) int {
	for i, t := range s.TasksIn(id) {
		if t.ID == taskID {
			return i
		}
	}
	return -1
}

// Remove deletes a task from whichever list holds it and returns the removed
// record. For graveyard residents the original index is also returned so an
// exact rollback can reinsert at the same position.
func (s *Snapshot) Remove(taskID string) (model.Task, int, bool) {
	for i, t := range s.Graveyard {
		if t.ID == taskID {
			s.Graveyard = append(s.Graveyard[:i], s.Graveyard[i+1:]...)
			return t, i, true
		}
	}
	for date, day := range s.Days {
		for i, t := range day {
			if t.ID == taskID {
				s.Days[date] = append(day[:i], day[i+1:]...)
				return t, i, true
			}
		}
	}
	return model.Task{}, 0, false
}

// Insert places a task into the list its fields select: the graveyard when
// Date is empty (newest first), otherwise its day list. Day lists are append
// only; presentation order comes from the order key, not list position.
func (s *Snapshot) Insert(t model.Task) {
	if strings.TrimSpace(t.Date) == "" {
		s.Graveyard = append([]model.Task{t}, s.Graveyard...)
		return
	}
	if s.Days == nil {
		s.Days = map[string][]model.Task{}
	}
	s.Days[t.Date] = append(s.Days[t.Date], t)
}

// InsertGraveyardAt reinserts a task at a specific graveyard position,
// used by rollback to undo a resurrection exactly.
func (s *Snapshot) InsertGraveyardAt(t model.Task, idx int) {
	if idx < 0 {
		idx = 0
	}
	if idx > len(s.Graveyard) {
		idx = len(s.Graveyard)
	}
	s.Graveyard = append(s.Graveyard[:idx], append([]model.Task{t}, s.Graveyard[idx:]...)...)
}
