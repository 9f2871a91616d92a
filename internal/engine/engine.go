package engine

import (
	"context"

	"daygrid/internal/board"
	"daygrid/internal/drag"
	"daygrid/internal/model"
	"daygrid/internal/order"

	log "github.com/sirupsen/logrus"
)

// Persister is the sole write path out of the engine. Implementations own
// timeout and retry policy; the engine never retries.
type Persister interface {
	PersistReorder(ctx context.Context, taskID, newKey string, changed drag.ChangedFields) error
	PersistGraveyardTransfer(ctx context.Context, taskID, originDate string) error
	PersistResurrection(ctx context.Context, taskID, targetDate, newKey string) error
}

// Option configures an Engine.
type Option func(*Engine)

// WithRecovery sets the callback invoked when an ordinary reorder fails to
// persist. The owner is expected to refetch authoritative state; the engine
// does not attempt a precise rollback for reorders.
func WithRecovery(fn func()) Option {
	return func(e *Engine) { e.recover = fn }
}

// WithExec routes asynchronous completions (rollbacks, recovery) back onto
// the owner's event loop. The default runs them on the persistence goroutine,
// which is only safe when nothing else touches the snapshot.
func WithExec(exec func(func())) Option {
	return func(e *Engine) { e.exec = exec }
}

// WithSynchronousPersistence makes the engine wait for the persistence call
// before returning from DragEnd. The CLI uses this so the write is confirmed
// before the process exits; the TUI stays asynchronous.
func WithSynchronousPersistence() Option {
	return func(e *Engine) { e.sync = true }
}

// Engine wires the drag session, the resolver and the optimistic update
// coordinator over one snapshot. All exported methods must be called from a
// single goroutine (the owner's event loop).
type Engine struct {
	snap    *board.Snapshot
	persist Persister
	sess    *drag.Session

	recover func()
	exec    func(func())
	sync    bool
}

func New(snap *board.Snapshot, p Persister, opts ...Option) *Engine {
	e := &Engine{
		snap:    snap,
		persist: p,
		sess:    drag.NewSession(snap),
		recover: func() {},
		exec:    func(f func()) { f() },
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Snapshot exposes the engine's board state for rendering.
func (e *Engine) Snapshot() *board.Snapshot { return e.snap }

// Session exposes the live drag state for rendering (highlighting the lifted
// card and the hovered column).
func (e *Engine) Session() *drag.Session { return e.sess }

func (e *Engine) DragStart(taskID string) { e.sess.Start(taskID) }

func (e *Engine) DragOver(targetID string) { e.sess.Over(targetID) }

func (e *Engine) DragCancel() { e.sess.Cancel() }

// DragEnd resolves the gesture and, when it amounts to a move, applies it to
// the snapshot immediately and issues the persistence call. The in-memory
// mutation is visible before the write resolves.
func (e *Engine) DragEnd(ctx context.Context, droppedOnID string) {
	res, ok := e.sess.End(droppedOnID)
	if !ok {
		return
	}
	e.Apply(ctx, res)
}

// Apply executes a resolved mutation: optimistic local update first, then the
// matching persistence call with its failure policy.
func (e *Engine) Apply(ctx context.Context, res drag.Resolution) {
	switch res.Kind {
	case drag.KindReorder:
		e.applyReorder(ctx, res)
	case drag.KindBury:
		e.applyBury(ctx, res)
	case drag.KindRevive:
		e.applyRevive(ctx, res)
	}
}

// applyReorder moves the task between in-memory containers and sends the
// write. On failure the recovery callback runs exactly once; there is no
// precise rollback for reorders, because a multi-field cross-container move
// has no single obvious inverse.
func (e *Engine) applyReorder(ctx context.Context, res drag.Resolution) {
	tk, _, ok := e.snap.Remove(res.TaskID)
	if !ok {
		log.WithField("task", res.TaskID).Warn("reorder for task missing from snapshot")
		return
	}
	if res.Changed.Date != nil {
		tk.Date = *res.Changed.Date
	}
	if res.Changed.Category != nil {
		tk.Category = *res.Changed.Category
	}
	if res.Changed.State != nil {
		tk.SetState(*res.Changed.State)
	}
	tk.Order = res.NewKey
	e.snap.Insert(tk)

	e.launch(func() {
		if err := e.persist.PersistReorder(ctx, res.TaskID, res.NewKey, res.Changed); err != nil {
			log.WithField("task", res.TaskID).WithError(err).Error("reorder persistence failed, requesting resync")
			e.exec(e.recover)
		}
	})
}

// applyBury moves the task into the graveyard. Failure reverts the exact
// in-memory transfer.
func (e *Engine) applyBury(ctx context.Context, res drag.Resolution) {
	orig, _, ok := e.snap.Remove(res.TaskID)
	if !ok {
		log.WithField("task", res.TaskID).Warn("bury for task missing from snapshot")
		return
	}
	buried := orig
	buried.Date = ""
	e.snap.Insert(buried)

	e.launch(func() {
		if err := e.persist.PersistGraveyardTransfer(ctx, res.TaskID, res.OriginDate); err != nil {
			log.WithField("task", res.TaskID).WithError(err).Error("graveyard transfer failed, rolling back")
			e.exec(func() {
				e.snap.Remove(res.TaskID)
				e.snap.Insert(orig)
			})
		}
	})
}

// applyRevive moves the task out of the graveyard onto the target day as a
// fresh active task at the container tail; the stale order key from before
// the burial would otherwise place it arbitrarily in the sorted view.
// Failure reinserts the original record at its old graveyard position.
func (e *Engine) applyRevive(ctx context.Context, res drag.Resolution) {
	orig, graveIdx, ok := e.snap.Remove(res.TaskID)
	if !ok {
		log.WithField("task", res.TaskID).Warn("resurrection for task missing from snapshot")
		return
	}
	revived := orig
	revived.Date = res.TargetDate
	revived.SetState(model.StateActive)

	last := ""
	if sibs := e.snap.TasksIn(board.IdentityOf(revived)); len(sibs) > 0 {
		last = sibs[len(sibs)-1].Order
	}
	newKey, err := order.KeyAfter(last)
	if err != nil {
		log.WithField("task", res.TaskID).WithError(err).Warn("cannot compute tail key, keeping stored key")
		newKey = orig.Order
	}
	revived.Order = newKey
	e.snap.Insert(revived)

	e.launch(func() {
		if err := e.persist.PersistResurrection(ctx, res.TaskID, res.TargetDate, newKey); err != nil {
			log.WithField("task", res.TaskID).WithError(err).Error("resurrection failed, rolling back")
			e.exec(func() {
				e.snap.Remove(res.TaskID)
				e.snap.InsertGraveyardAt(orig, graveIdx)
			})
		}
	})
}

func (e *Engine) launch(f func()) {
	if e.sync {
		f()
		return
	}
	go f()
}
