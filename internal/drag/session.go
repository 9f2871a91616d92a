package drag

import (
	"strings"

	"daygrid/internal/board"
	"daygrid/internal/model"

	log "github.com/sirupsen/logrus"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDragging
	PhaseHovering
)

// Source captures the dragged task at drag-start: its id, origin container
// and zero-based index within that container at that instant.
type Source struct {
	TaskID string
	From   model.ContainerID
	Index  int
}

// Target is the drop target under the pointer, recomputed on every hover.
// Either Container is set, or Graveyard is true, or neither (no target).
type Target struct {
	Container *model.ContainerID
	Graveyard bool
}

// Session tracks one drag gesture from start to drop or cancel. At most one
// session is ever live; a second drag-start while active is ignored. All
// methods must be called from the owner's event loop.
type Session struct {
	snap  *board.Snapshot
	phase Phase
	src   Source
	tgt   Target
}

func NewSession(snap *board.Snapshot) *Session {
	return &Session{snap: snap}
}

func (s *Session) Phase() Phase { return s.phase }

func (s *Session) Active() bool { return s.phase != PhaseIdle }

// Dragging returns the current drag source while a gesture is live.
func (s *Session) Dragging() (Source, bool) {
	if s.phase == PhaseIdle {
		return Source{}, false
	}
	return s.src, true
}

// Hover returns the current drop target.
func (s *Session) Hover() Target { return s.tgt }

// Start begins a gesture for taskID. Unknown ids and overlapping gestures are
// logged and ignored.
func (s *Session) Start(taskID string) bool {
	if s.phase != PhaseIdle {
		log.WithField("task", taskID).Warn("drag-start while a drag is active, ignoring")
		return false
	}
	tk, from, ok := s.snap.Locate(taskID)
	if !ok {
		log.WithField("task", taskID).Warn("drag-start for unknown task")
		return false
	}
	idx := s.snap.IndexIn(from, tk.ID)
	s.src = Source{TaskID: tk.ID, From: from, Index: idx}
	s.tgt = Target{}
	s.phase = PhaseDragging
	return true
}

// Over updates the drop target from the hovered id, which may denote the
// graveyard, a day container, or a task. Anything else (including an empty
// id) clears the target.
func (s *Session) Over(hoveredID string) {
	if s.phase == PhaseIdle {
		return
	}
	s.tgt = s.resolveTarget(hoveredID)
	s.phase = PhaseHovering
}

// Cancel discards all ephemeral state. Never touches persisted data.
func (s *Session) Cancel() {
	s.src = Source{}
	s.tgt = Target{}
	s.phase = PhaseIdle
}

// End resolves the gesture against droppedOnID and returns the resulting
// mutation, if any. The session returns to idle either way.
func (s *Session) End(droppedOnID string) (Resolution, bool) {
	if s.phase == PhaseIdle {
		return Resolution{}, false
	}
	src := s.src
	if strings.TrimSpace(droppedOnID) != "" {
		s.tgt = s.resolveTarget(droppedOnID)
	}
	tgt := s.tgt
	s.Cancel()

	if !tgt.Graveyard && tgt.Container == nil {
		return Resolution{}, false
	}
	if strings.TrimSpace(droppedOnID) == src.TaskID {
		return Resolution{}, false
	}
	return resolve(s.snap, src, tgt, droppedOnID)
}

// resolveTarget maps a boundary id onto a Target. Graveyard wins over
// container resolution: dropping onto a buried task targets the graveyard,
// not a day container.
func (s *Session) resolveTarget(id string) Target {
	id = strings.TrimSpace(id)
	if id == "" {
		return Target{}
	}
	if cid, ok := model.ParseContainerID(id); ok {
		if cid.Graveyard {
			return Target{Graveyard: true}
		}
		return Target{Container: &cid}
	}
	tk, at, ok := s.snap.Locate(id)
	if !ok {
		// Ambiguous target: neither a container nor a known task.
		log.WithField("target", id).Debug("drag-over target not resolvable")
		return Target{}
	}
	if at.Graveyard {
		return Target{Graveyard: true}
	}
	cid := board.IdentityOf(tk)
	return Target{Container: &cid}
}
