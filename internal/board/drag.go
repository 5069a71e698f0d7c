package board

import (
	log "github.com/sirupsen/logrus"

	"github.com/abatilo/taskboard/internal/task"
)

// State is the phase of a drag session.
type State int

const (
	Idle State = iota
	Dragging
	Resolved
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Resolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Session is one drag gesture. Transitions are pure: each method returns the
// next session and leaves the receiver untouched.
type Session struct {
	State     State
	ActiveID  string
	HoverID   string
	Candidate task.Status
}

// Resolution is the outcome of a drop that hit a column or a card.
type Resolution struct {
	Task      task.Task
	Candidate task.Status
}

// Start begins dragging id. It only succeeds from Idle and only for a task
// present in the snapshot.
func (s Session) Start(snap Snapshot, id string) (Session, bool) {
	if s.State != Idle {
		return s, false
	}
	if _, ok := snap.Lookup(id); !ok {
		return Session{}, false
	}
	return Session{State: Dragging, ActiveID: id}, true
}

// Over records the target under the pointer. An empty target means the
// pointer is outside every droppable area.
func (s Session) Over(target string) Session {
	if s.State != Dragging {
		return s
	}
	s.HoverID = target
	return s
}

// Drop resolves the hovered target to a candidate status. When the target
// resolves nothing, or the dragged task is gone from the snapshot, the
// session returns to Idle with no resolution.
func (s Session) Drop(snap Snapshot) (Session, Resolution, bool) {
	if s.State != Dragging {
		return Session{}, Resolution{}, false
	}
	active, ok := snap.Lookup(s.ActiveID)
	if !ok {
		return Session{}, Resolution{}, false
	}
	candidate, ok := ResolveTarget(snap, s.HoverID)
	if !ok {
		return Session{}, Resolution{}, false
	}
	s.State = Resolved
	s.Candidate = candidate
	return s, Resolution{Task: active, Candidate: candidate}, true
}

// Cancel abandons the drag. It is the same as a drop with no target.
func (s Session) Cancel() Session {
	return Session{}
}

// Finish discards a resolved session once the mutator has run.
func (s Session) Finish() Session {
	return Session{}
}

// ResolveTarget maps a drop target to a status. Column identifiers are the
// status wire values and take precedence; a card identifier resolves to
// that card's current status.
func ResolveTarget(snap Snapshot, target string) (task.Status, bool) {
	if target == "" {
		return "", false
	}
	if s := task.Status(target); task.IsValidStatus(s) {
		return s, true
	}
	if t, ok := snap.Lookup(target); ok {
		return t.Status, true
	}
	return "", false
}

// Controller owns the single drag session slot.
type Controller struct {
	session Session
	log     log.FieldLogger
}

// NewController returns a controller in the Idle state.
func NewController() *Controller {
	return &Controller{log: discardLogger()}
}

// SetLogger replaces the controller logger.
func (c *Controller) SetLogger(l log.FieldLogger) {
	c.log = l
}

// Session returns the current session.
func (c *Controller) Session() Session {
	return c.session
}

func (c *Controller) Start(snap Snapshot, id string) bool {
	next, ok := c.session.Start(snap, id)
	c.session = next
	c.log.WithFields(log.Fields{"task": id, "started": ok}).Debug("drag start")
	return ok
}

func (c *Controller) Over(target string) {
	c.session = c.session.Over(target)
}

func (c *Controller) Drop(snap Snapshot) (Resolution, bool) {
	fields := log.Fields{"task": c.session.ActiveID, "target": c.session.HoverID}
	next, res, ok := c.session.Drop(snap)
	c.session = next
	if !ok {
		c.log.WithFields(fields).Debug("drop resolved nothing")
		return Resolution{}, false
	}
	c.log.WithFields(fields).WithField("candidate", res.Candidate).Debug("drop resolved")
	return res, true
}

func (c *Controller) Cancel() {
	if c.session.State == Dragging {
		c.log.WithField("task", c.session.ActiveID).Debug("drag cancelled")
	}
	c.session = c.session.Cancel()
}

func (c *Controller) Finish() {
	c.session = c.session.Finish()
}
