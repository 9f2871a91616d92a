package drag

import (
	"strings"

	"daygrid/internal/board"
	"daygrid/internal/model"
	"daygrid/internal/order"

	log "github.com/sirupsen/logrus"
)

type Kind int

const (
	KindNone Kind = iota
	// KindReorder is an ordinary move, possibly across day containers.
	KindReorder
	// KindBury moves a task from a day container into the graveyard.
	KindBury
	// KindRevive moves a task out of the graveyard onto a day.
	KindRevive
)

// ChangedFields carries only the identity fields that actually differ between
// source and target; unchanged fields stay nil and are left implicit in the
// persistence request.
type ChangedFields struct {
	Date     *string
	Category *model.Category
	State    *model.TaskState
}

func (c ChangedFields) Empty() bool {
	return c.Date == nil && c.Category == nil && c.State == nil
}

// Resolution is the outcome of a drop: the single mutation the coordinator
// should apply and persist.
type Resolution struct {
	Kind    Kind
	TaskID  string
	Target  model.ContainerID
	NewKey  string        // KindReorder only
	Changed ChangedFields // KindReorder only

	OriginDate string // KindBury: the day the task was buried from
	TargetDate string // KindRevive: the day the task returns to
}

// resolve implements the four drop cases in order: bury, revive,
// graveyard-to-graveyard no-op, ordinary reorder.
func resolve(snap *board.Snapshot, src Source, tgt Target, droppedOnID string) (Resolution, bool) {
	fromGraveyard := src.From.Graveyard

	if tgt.Graveyard {
		if fromGraveyard {
			return Resolution{}, false
		}
		return Resolution{
			Kind:       KindBury,
			TaskID:     src.TaskID,
			Target:     model.GraveyardID(),
			OriginDate: src.From.Date,
		}, true
	}
	if tgt.Container == nil {
		return Resolution{}, false
	}
	target := *tgt.Container
	if fromGraveyard {
		// Resurrected tasks come back as newly active on the target day.
		// No key is computed here; the coordinator appends with a fresh
		// tail key for the landing container.
		return Resolution{
			Kind:       KindRevive,
			TaskID:     src.TaskID,
			Target:     target,
			TargetDate: target.Date,
		}, true
	}

	return resolveReorder(snap, src, target, droppedOnID)
}

func resolveReorder(snap *board.Snapshot, src Source, target model.ContainerID, droppedOnID string) (Resolution, bool) {
	cur, _, ok := snap.Locate(src.TaskID)
	if !ok {
		log.WithField("task", src.TaskID).Warn("drag-end for task missing from snapshot")
		return Resolution{}, false
	}

	// Sibling candidates exclude the dragged task so a move within its own
	// container never anchors on itself.
	siblings := make([]model.Task, 0)
	for _, t := range snap.TasksIn(target) {
		if t.ID != src.TaskID {
			siblings = append(siblings, t)
		}
	}

	// Dropping on a sibling inserts before it; dropping on the container
	// itself appends.
	insertAt := len(siblings)
	droppedOnID = strings.TrimSpace(droppedOnID)
	if droppedOnID != "" && droppedOnID != target.String() {
		for i, t := range siblings {
			if t.ID == droppedOnID {
				insertAt = i
				break
			}
		}
	}

	// A drop back onto the task's own position is a no-op before any key
	// gets computed. The drag-start index counts the dragged task's own
	// slot, so with the task excluded from siblings it doubles as the
	// insertion index that leaves everything in place.
	if src.From.Equal(target) && insertAt == src.Index {
		return Resolution{}, false
	}

	newKey, err := keyAt(siblings, insertAt)
	if err != nil {
		// Degenerate sibling keys (duplicates from historical data). Siblings
		// are never rewritten, so the move cannot be honored.
		log.WithField("task", src.TaskID).WithError(err).Warn("cannot compute order key, dropping gesture")
		return Resolution{}, false
	}

	changed := diffIdentity(src.From, target)
	if changed.Empty() && newKey == strings.TrimSpace(cur.Order) {
		return Resolution{}, false
	}
	return Resolution{
		Kind:    KindReorder,
		TaskID:  src.TaskID,
		Target:  target,
		NewKey:  newKey,
		Changed: changed,
	}, true
}

// keyAt produces the order key for inserting at index idx of the sibling
// list: before the first, after the last, or between the two neighbors.
func keyAt(siblings []model.Task, idx int) (string, error) {
	if len(siblings) == 0 {
		return order.KeyAfter("")
	}
	if idx <= 0 {
		return order.KeyBefore(siblings[0].Order)
	}
	if idx >= len(siblings) {
		return order.KeyAfter(siblings[len(siblings)-1].Order)
	}
	return order.KeyBetween(siblings[idx-1].Order, siblings[idx].Order)
}

func diffIdentity(from, to model.ContainerID) ChangedFields {
	var c ChangedFields
	if from.Date != to.Date {
		d := to.Date
		c.Date = &d
	}
	if from.Category != to.Category {
		cat := to.Category
		c.Category = &cat
	}
	if from.State != to.State {
		st := to.State
		c.State = &st
	}
	return c
}
