package board

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	tberrors "github.com/abatilo/taskboard/internal/errors"
	"github.com/abatilo/taskboard/internal/remote"
	"github.com/abatilo/taskboard/internal/task"
)

// Outcome is what a drop ended up doing.
type Outcome int

const (
	// Aborted means the drop resolved no target; nothing happened.
	Aborted Outcome = iota
	// NoOp means the task already had the candidate status.
	NoOp
	// Applied means the remote service acknowledged the new status.
	Applied
)

func (o Outcome) String() string {
	switch o {
	case Aborted:
		return "aborted"
	case NoOp:
		return "no-op"
	case Applied:
		return "applied"
	default:
		return "unknown"
	}
}

// Result describes a finished drop.
type Result struct {
	Outcome    Outcome
	Task       task.Task
	Previous   task.Status
	Celebrated bool
}

// Celebrator receives the signal fired when a task first reaches Completed.
type Celebrator interface {
	Celebrate(t task.Task)
}

// CelebratorFunc adapts a function to Celebrator.
type CelebratorFunc func(t task.Task)

func (f CelebratorFunc) Celebrate(t task.Task) {
	f(t)
}

// Invalidator is told when the snapshot no longer matches the remote state.
type Invalidator interface {
	Invalidate()
}

// Mutator commits a resolved drop to the remote service.
type Mutator struct {
	remote     remote.Collection
	store      Invalidator
	celebrator Celebrator
	log        log.FieldLogger
}

// NewMutator creates a mutator. celebrator may be nil.
func NewMutator(c remote.Collection, store Invalidator, celebrator Celebrator) *Mutator {
	return &Mutator{remote: c, store: store, celebrator: celebrator, log: discardLogger()}
}

// SetLogger replaces the mutator logger.
func (m *Mutator) SetLogger(l log.FieldLogger) {
	m.log = l
}

// Apply moves t to candidate. A candidate equal to the current status is a
// no-op with no remote call. Otherwise exactly one status update is sent;
// once acknowledged the store is invalidated and, when the task entered
// Completed, the celebrator fires. A failed update returns a MutationError
// and leaves the store untouched, unless the service accepted the update and
// only its reply was unreadable; then the store is invalidated as well.
func (m *Mutator) Apply(ctx context.Context, t task.Task, candidate task.Status) (Result, error) {
	res := Result{Outcome: NoOp, Task: t, Previous: t.Status}
	if candidate == t.Status {
		return res, nil
	}
	if !task.IsValidStatus(candidate) {
		return res, tberrors.InvalidStatusError{Value: string(candidate)}
	}

	entry := m.log.WithFields(log.Fields{"task": t.ID, "from": t.Status, "to": candidate})
	updated, err := m.remote.UpdateTask(ctx, t.ID, remote.StatusPatch(candidate))
	if err != nil {
		entry.WithError(err).Warn("status update failed")
		if applied(err) {
			m.store.Invalidate()
		}
		return res, tberrors.MutationError{TaskID: t.ID, Attempted: string(candidate), Err: err}
	}
	m.store.Invalidate()
	entry.Debug("status update acknowledged")

	res.Outcome = Applied
	res.Task = updated
	if candidate.IsTerminal() && !t.Status.IsTerminal() {
		if m.celebrator != nil {
			m.celebrator.Celebrate(updated)
		}
		res.Celebrated = true
	}
	return res, nil
}

// applied reports whether a failed mutation may still have changed the
// remote state.
func applied(err error) bool {
	var unreadable tberrors.UnreadableResponseError
	return errors.As(err, &unreadable)
}
