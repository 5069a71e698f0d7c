package board

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/abatilo/taskboard/internal/remote"
	"github.com/abatilo/taskboard/internal/task"
)

// Board serializes every interaction with the engine. Each call runs to
// completion before the next starts; the only calls that block are the ones
// that talk to the remote collection.
type Board struct {
	mu      sync.Mutex
	source  remote.Collection
	store   *Store
	drag    *Controller
	mutator *Mutator
	log     log.FieldLogger
}

// Option configures a Board.
type Option func(*boardOptions)

type boardOptions struct {
	celebrator Celebrator
	logger     log.FieldLogger
}

// WithCelebrator sets the sink for the completion signal.
func WithCelebrator(c Celebrator) Option {
	return func(o *boardOptions) { o.celebrator = c }
}

// WithLogger sets the logger shared by the board components.
func WithLogger(l log.FieldLogger) Option {
	return func(o *boardOptions) { o.logger = l }
}

// New creates a board reading pages described by q from source.
func New(source remote.Collection, q remote.Query, opts ...Option) *Board {
	o := boardOptions{logger: discardLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	store := NewStore(source, q)
	store.SetLogger(o.logger)
	drag := NewController()
	drag.SetLogger(o.logger)
	mutator := NewMutator(source, store, o.celebrator)
	mutator.SetLogger(o.logger)
	return &Board{
		source:  source,
		store:   store,
		drag:    drag,
		mutator: mutator,
		log:     o.logger,
	}
}

// Refresh refetches the snapshot. On failure the last good snapshot is
// returned with the error.
func (b *Board) Refresh(ctx context.Context) (Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.store.Refresh(ctx)
}

// Snapshot returns the current snapshot without fetching.
func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.store.Snapshot()
}

// Stale reports whether the next read will refetch.
func (b *Board) Stale() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.store.Stale()
}

// SetQuery changes the page the board reads.
func (b *Board) SetQuery(q remote.Query) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.store.SetQuery(q)
}

// Columns groups the current snapshot, fetching first when it is stale.
// A failed fetch still returns the columns of the last good snapshot.
func (b *Board) Columns(ctx context.Context) (Columns, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	snap, err := b.store.Load(ctx)
	return Group(snap), err
}

// List projects the current snapshot, fetching first when it is stale.
func (b *Board) List(ctx context.Context, p Params) ([]task.Task, Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	snap, err := b.store.Load(ctx)
	return Project(snap, p), snap, err
}

// DragStart begins dragging id over the current snapshot. It reports false
// when id is not in the snapshot, another drag is active, or the snapshot was
// invalidated and not yet refreshed. Drag bookkeeping never fetches, so after
// a drop callers refresh (Refresh, Columns or List) before the next drag.
func (b *Board) DragStart(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.store.Stale() {
		b.log.WithField("task", id).Debug("drag refused on stale snapshot")
		return false
	}
	return b.drag.Start(b.store.Snapshot(), id)
}

// DragOver records the target under the pointer.
func (b *Board) DragOver(target string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.drag.Over(target)
}

// Cancel abandons the active drag, if any.
func (b *Board) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.drag.Cancel()
}

// Session returns the active drag session.
func (b *Board) Session() Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.drag.Session()
}

// Drop resolves the active drag and commits the result. The session is
// always discarded, whether the drop applied, was a no-op or failed.
func (b *Board) Drop(ctx context.Context) (Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.drop(ctx)
}

func (b *Board) drop(ctx context.Context) (Result, error) {
	res, ok := b.drag.Drop(b.store.Snapshot())
	if !ok {
		return Result{Outcome: Aborted}, nil
	}
	defer b.drag.Finish()
	return b.mutator.Apply(ctx, res.Task, res.Candidate)
}

// Move drags id onto target in one step: a column identifier or another
// card's id. The snapshot is loaded first when stale. Move aborts while
// another drag is active.
func (b *Board) Move(ctx context.Context, id, target string) (Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	snap, err := b.store.Load(ctx)
	if err != nil && snap.Len() == 0 {
		return Result{Outcome: Aborted}, err
	}
	if !b.drag.Start(snap, id) {
		return Result{Outcome: Aborted}, nil
	}
	b.drag.Over(target)
	return b.drop(ctx)
}

// Get reads a single task from the remote collection.
func (b *Board) Get(ctx context.Context, id string) (task.Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.source.GetTask(ctx, id)
}

// Create adds a task and invalidates the snapshot once acknowledged.
func (b *Board) Create(ctx context.Context, d task.Draft) (task.Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, err := b.source.CreateTask(ctx, d)
	if err != nil {
		b.invalidateIfApplied(err)
		return task.Task{}, err
	}
	b.store.Invalidate()
	b.log.WithField("task", t.ID).Debug("task created")
	return t, nil
}

// Edit applies a partial update and invalidates the snapshot once
// acknowledged.
func (b *Board) Edit(ctx context.Context, id string, p remote.Patch) (task.Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, err := b.source.UpdateTask(ctx, id, p)
	if err != nil {
		b.invalidateIfApplied(err)
		return task.Task{}, err
	}
	b.store.Invalidate()
	b.log.WithField("task", id).Debug("task edited")
	return t, nil
}

// Delete removes a task and invalidates the snapshot once acknowledged.
func (b *Board) Delete(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.source.DeleteTask(ctx, id); err != nil {
		b.invalidateIfApplied(err)
		return err
	}
	b.store.Invalidate()
	b.log.WithField("task", id).Debug("task deleted")
	return nil
}

func (b *Board) invalidateIfApplied(err error) {
	if applied(err) {
		b.store.Invalidate()
	}
}
