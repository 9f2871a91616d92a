package model

import (
	"fmt"
	"strings"
	"time"
)

type Category string

const (
	CategoryLife Category = "life"
	CategoryWork Category = "work"
)

// Categories lists the known categories in display order.
func Categories() []Category {
	return []Category{CategoryLife, CategoryWork}
}

func ParseCategory(s string) (Category, bool) {
	switch Category(strings.TrimSpace(strings.ToLower(s))) {
	case CategoryLife:
		return CategoryLife, true
	case CategoryWork:
		return CategoryWork, true
	}
	return "", false
}

type TaskState string

const (
	StateActive    TaskState = "active"
	StateCompleted TaskState = "completed"
	StateFailed    TaskState = "failed"
)

func ParseState(s string) (TaskState, bool) {
	switch TaskState(strings.TrimSpace(strings.ToLower(s))) {
	case StateActive:
		return StateActive, true
	case StateCompleted:
		return StateCompleted, true
	case StateFailed:
		return StateFailed, true
	}
	return "", false
}

type Task struct {
	ID   string `json:"id"`
	Text string `json:"text"`

	// Date is the calendar day ("YYYY-MM-DD") the task lives on.
	// Empty if and only if the task is in the graveyard.
	Date     string    `json:"date,omitempty"`
	Category Category  `json:"category"`
	State    TaskState `json:"state,omitempty"`

	// Order is an opaque lexicographic sort key. Empty for legacy records;
	// ordering then falls back to CreatedAt/ID (display-only, never persisted).
	Order string `json:"order,omitempty"`

	// Legacy completion flag, kept in sync with State == StateCompleted.
	Completed bool `json:"completed"`

	CreatedAt time.Time `json:"createdAt"`
}

// EffectiveState resolves the task's state for container placement.
// An explicit State always wins; otherwise the legacy Completed flag
// promotes to StateCompleted; otherwise the task is active.
func (t Task) EffectiveState() TaskState {
	switch t.State {
	case StateActive, StateCompleted, StateFailed:
		return t.State
	}
	if t.Completed {
		return StateCompleted
	}
	return StateActive
}

// SetState updates State and recomputes the legacy Completed flag.
func (t *Task) SetState(s TaskState) {
	t.State = s
	t.Completed = s == StateCompleted
}

// GraveyardKey is the string form of the graveyard drop target at the UI
// boundary.
const GraveyardKey = "graveyard"

// ContainerID addresses one partition of the board: either the graveyard or a
// (date, category, state) triple. The zero value is not a valid identity.
type ContainerID struct {
	Graveyard bool
	Date      string
	Category  Category
	State     TaskState
}

func GraveyardID() ContainerID {
	return ContainerID{Graveyard: true}
}

func DayID(date string, cat Category, state TaskState) ContainerID {
	return ContainerID{Date: date, Category: cat, State: state}
}

func (c ContainerID) String() string {
	if c.Graveyard {
		return GraveyardKey
	}
	return c.Date + "/" + string(c.Category) + "/" + string(c.State)
}

// Equal reports whether two identities address the same container.
func (c ContainerID) Equal(o ContainerID) bool {
	if c.Graveyard || o.Graveyard {
		return c.Graveyard == o.Graveyard
	}
	return c.Date == o.Date && c.Category == o.Category && c.State == o.State
}

// ParseContainerID parses a boundary string ("graveyard" or
// "<date>/<category>/<state>") into a tagged identity. Task ids and other
// strings simply fail to parse; callers are expected to fall back to a task
// lookup.
func ParseContainerID(s string) (ContainerID, bool) {
	s = strings.TrimSpace(s)
	if s == GraveyardKey {
		return GraveyardID(), true
	}
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return ContainerID{}, false
	}
	date := strings.TrimSpace(parts[0])
	if !ValidDate(date) {
		return ContainerID{}, false
	}
	cat, ok := ParseCategory(parts[1])
	if !ok {
		return ContainerID{}, false
	}
	state, ok := ParseState(parts[2])
	if !ok {
		return ContainerID{}, false
	}
	return DayID(date, cat, state), true
}

// ValidDate reports whether s is a YYYY-MM-DD calendar day.
func ValidDate(s string) bool {
	if len(s) != 10 {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func (c ContainerID) Validate() error {
	if c.Graveyard {
		return nil
	}
	if !ValidDate(c.Date) {
		return fmt.Errorf("invalid container date %q", c.Date)
	}
	if _, ok := ParseCategory(string(c.Category)); !ok {
		return fmt.Errorf("invalid container category %q", c.Category)
	}
	if _, ok := ParseState(string(c.State)); !ok {
		return fmt.Errorf("invalid container state %q", c.State)
	}
	return nil
}
