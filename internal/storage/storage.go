// Package storage keeps tasks as markdown files with YAML frontmatter and
// serves them as a remote.Collection, so the board works without the REST
// task service.
package storage

import (
	"cmp"
	"context"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/abatilo/taskboard/internal/board"
	tberrors "github.com/abatilo/taskboard/internal/errors"
	"github.com/abatilo/taskboard/internal/remote"
	"github.com/abatilo/taskboard/internal/task"
)

const (
	fileExt         = ".md"
	defaultPageSize = 10
	localOwner      = "local"
)

// Store is a directory of task files.
type Store struct {
	mu       sync.Mutex
	basePath string
	now      func() time.Time
	log      log.FieldLogger
}

// NewStore creates a Store rooted at path.
func NewStore(path string) *Store {
	discard := log.New()
	discard.SetOutput(io.Discard)
	return &Store{
		basePath: path,
		now:      func() time.Time { return time.Now().UTC() },
		log:      discard,
	}
}

// SetLogger replaces the store logger.
func (s *Store) SetLogger(l log.FieldLogger) {
	s.log = l
}

// BasePath returns the base path of the store.
func (s *Store) BasePath() string {
	return s.basePath
}

// IsInitialized checks if the task directory exists.
func (s *Store) IsInitialized() bool {
	info, err := os.Stat(s.basePath)
	return err == nil && info.IsDir()
}

// Init creates the task directory.
func (s *Store) Init(force bool) error {
	if s.IsInitialized() && !force {
		return tberrors.AlreadyInitializedError{Path: s.basePath}
	}
	return os.MkdirAll(s.basePath, 0o755)
}

// FetchTasks answers a page query the way the task service does: filter,
// sort (created_at descending by default) and paginate.
func (s *Store) FetchTasks(_ context.Context, q remote.Query) (remote.Page, error) {
	size := q.PageSize
	if size == 0 {
		size = defaultPageSize
	}
	page := max(q.Page, 1)
	if size < 1 || size > remote.MaxPageSize {
		return remote.Page{}, task.FieldError{Field: "page_size", Reason: "must be between 1 and 100"}
	}

	s.mu.Lock()
	tasks, err := s.all()
	s.mu.Unlock()
	if err != nil {
		return remote.Page{}, err
	}

	snap, err := board.NewSnapshot(tasks, board.PageInfo{})
	if err != nil {
		return remote.Page{}, err
	}
	params := board.ParseParams(q.Search, string(q.Status), string(q.Priority), q.SortBy, q.SortOrder)
	matched := board.Project(snap, params)

	total := len(matched)
	totalPages := 1
	if total > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(size)))
	}
	start := min((page-1)*size, total)
	end := min(start+size, total)
	return remote.Page{
		Tasks:      matched[start:end],
		Total:      total,
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages,
	}, nil
}

// GetTask reads a task from disk.
func (s *Store) GetTask(_ context.Context, id string) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(id)
}

// CreateTask validates the draft, assigns an id and writes the task.
func (s *Store) CreateTask(_ context.Context, d task.Draft) (task.Task, error) {
	if err := d.Validate(); err != nil {
		return task.Task{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.IsInitialized() {
		return task.Task{}, tberrors.NotInitializedError{Path: s.basePath}
	}

	ids, err := s.allIDs()
	if err != nil {
		return task.Task{}, err
	}
	now := s.now()
	t := task.Task{
		ID:          GenerateID(d.Title, now, func(id string) bool { return ids[id] }),
		Title:       d.Title,
		Description: d.Description,
		Status:      d.Status,
		Priority:    d.Priority,
		StartDate:   d.StartDate,
		DueDate:     d.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
		OwnerID:     localOwner,
	}
	if err := s.save(t); err != nil {
		return task.Task{}, err
	}
	s.log.WithField("task", t.ID).Debug("task file created")
	return t, nil
}

// UpdateTask applies a partial update and rewrites the task file.
func (s *Store) UpdateTask(_ context.Context, id string, p remote.Patch) (task.Task, error) {
	if err := p.Validate(); err != nil {
		return task.Task{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.load(id)
	if err != nil {
		return task.Task{}, err
	}
	t = p.Apply(t, s.now())
	if err := s.save(t); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

// DeleteTask removes a task file.
func (s *Store) DeleteTask(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.IsInitialized() {
		return tberrors.NotInitializedError{Path: s.basePath}
	}
	if !validID(id) {
		return tberrors.TaskNotFoundError{ID: id}
	}
	err := os.Remove(s.taskPath(id))
	if os.IsNotExist(err) {
		return tberrors.TaskNotFoundError{ID: id}
	}
	return err
}

// validID reports whether id names a file directly inside the task directory.
func validID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`)
}

func (s *Store) taskPath(id string) string {
	return filepath.Join(s.basePath, id+fileExt)
}

func (s *Store) save(t task.Task) error {
	if !s.IsInitialized() {
		return tberrors.NotInitializedError{Path: s.basePath}
	}
	content, err := SerializeMarkdown(t)
	if err != nil {
		return err
	}
	return os.WriteFile(s.taskPath(t.ID), content, 0o644)
}

func (s *Store) load(id string) (task.Task, error) {
	if !s.IsInitialized() {
		return task.Task{}, tberrors.NotInitializedError{Path: s.basePath}
	}
	if !validID(id) {
		return task.Task{}, tberrors.TaskNotFoundError{ID: id}
	}
	content, err := os.ReadFile(s.taskPath(id))
	if os.IsNotExist(err) {
		return task.Task{}, tberrors.TaskNotFoundError{ID: id}
	}
	if err != nil {
		return task.Task{}, err
	}
	t, err := ParseMarkdown(content)
	if err != nil {
		if pe, ok := err.(ParseError); ok {
			pe.File = id + fileExt
			return task.Task{}, pe
		}
		return task.Task{}, err
	}
	t.ID = id
	return t, nil
}

// all returns every readable task, oldest first. Malformed files are
// skipped.
func (s *Store) all() ([]task.Task, error) {
	ids, err := s.allIDs()
	if err != nil {
		return nil, err
	}
	tasks := make([]task.Task, 0, len(ids))
	for id := range ids {
		t, err := s.load(id)
		if err != nil {
			s.log.WithError(err).WithField("task", id).Warn("skipping unreadable task file")
			continue
		}
		tasks = append(tasks, t)
	}
	slices.SortFunc(tasks, func(a, b task.Task) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return tasks, nil
}

func (s *Store) allIDs() (map[string]bool, error) {
	if !s.IsInitialized() {
		return nil, tberrors.NotInitializedError{Path: s.basePath}
	}
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		ids[strings.TrimSuffix(entry.Name(), fileExt)] = true
	}
	return ids, nil
}
