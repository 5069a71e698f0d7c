package board

import (
	"context"
	"io"

	log "github.com/sirupsen/logrus"

	tberrors "github.com/abatilo/taskboard/internal/errors"
	"github.com/abatilo/taskboard/internal/remote"
)

// Store holds the current snapshot of the remote collection for one query.
// It is not safe for concurrent use; Board serializes access to it.
type Store struct {
	source remote.Collection
	query  remote.Query
	snap   Snapshot
	loaded bool
	stale  bool
	log    log.FieldLogger
}

// NewStore creates a store reading pages described by q from source.
func NewStore(source remote.Collection, q remote.Query) *Store {
	return &Store{source: source, query: q, log: discardLogger()}
}

// SetLogger replaces the store logger.
func (s *Store) SetLogger(l log.FieldLogger) {
	s.log = l
}

// Refresh fetches the query and replaces the snapshot. On failure the last
// good snapshot stays in place and a FetchError is returned alongside it.
func (s *Store) Refresh(ctx context.Context) (Snapshot, error) {
	page, err := s.source.FetchTasks(ctx, s.query)
	if err != nil {
		s.log.WithError(err).Warn("fetch failed, keeping last snapshot")
		return s.snap, tberrors.FetchError{Err: err}
	}
	snap, err := NewSnapshot(page.Tasks, PageInfo{
		Page:       page.Page,
		PageSize:   page.PageSize,
		Total:      page.Total,
		TotalPages: page.TotalPages,
	})
	if err != nil {
		s.log.WithError(err).Warn("rejected fetched page")
		return s.snap, tberrors.FetchError{Err: err}
	}
	s.snap = snap
	s.loaded = true
	s.stale = false
	s.log.WithField("tasks", snap.Len()).Debug("snapshot replaced")
	return snap, nil
}

// Load returns the snapshot, fetching first if nothing was loaded yet or
// the snapshot was invalidated.
func (s *Store) Load(ctx context.Context) (Snapshot, error) {
	if s.loaded && !s.stale {
		return s.snap, nil
	}
	return s.Refresh(ctx)
}

// Invalidate marks the snapshot as outdated. The next Load refetches.
func (s *Store) Invalidate() {
	s.stale = true
}

// Stale reports whether the next Load will refetch.
func (s *Store) Stale() bool {
	return !s.loaded || s.stale
}

// Snapshot returns the current snapshot without fetching.
func (s *Store) Snapshot() Snapshot {
	return s.snap
}

// Query returns the query the store fetches.
func (s *Store) Query() remote.Query {
	return s.query
}

// SetQuery changes the query and invalidates the snapshot when it differs.
func (s *Store) SetQuery(q remote.Query) {
	if q == s.query {
		return
	}
	s.query = q
	s.stale = true
}

func discardLogger() log.FieldLogger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}
