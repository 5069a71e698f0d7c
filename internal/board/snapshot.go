// Package board is the task-board synchronization engine: an immutable view
// of the remote task collection, the list projection and column grouping
// derived from it, the drag session state machine and the status mutator
// that commits drops back to the remote service.
package board

import (
	"fmt"

	tberrors "github.com/abatilo/taskboard/internal/errors"
	"github.com/abatilo/taskboard/internal/task"
)

// PageInfo is the pagination metadata of the fetch that produced a snapshot.
type PageInfo struct {
	Page       int
	PageSize   int
	Total      int
	TotalPages int
}

// Snapshot is an immutable, ordered copy of the last successful fetch.
// Tasks are copied in and copied out, so a snapshot is never changed once
// built; newer state replaces it.
type Snapshot struct {
	tasks []task.Task
	index map[string]int
	page  PageInfo
}

// NewSnapshot builds a snapshot from tasks in remote order. Every task must
// carry an id and one of the three statuses.
func NewSnapshot(tasks []task.Task, page PageInfo) (Snapshot, error) {
	s := Snapshot{
		tasks: make([]task.Task, 0, len(tasks)),
		index: make(map[string]int, len(tasks)),
		page:  page,
	}
	for _, t := range tasks {
		if t.ID == "" {
			return Snapshot{}, fmt.Errorf("task %q has no id", t.Title)
		}
		if !task.IsValidStatus(t.Status) {
			return Snapshot{}, tberrors.InvalidStatusError{Value: string(t.Status)}
		}
		if _, dup := s.index[t.ID]; dup {
			return Snapshot{}, fmt.Errorf("duplicate task id %s", t.ID)
		}
		s.index[t.ID] = len(s.tasks)
		s.tasks = append(s.tasks, cloneTask(t))
	}
	return s, nil
}

// Len returns the number of tasks.
func (s Snapshot) Len() int {
	return len(s.tasks)
}

// Tasks returns a copy of the tasks in snapshot order.
func (s Snapshot) Tasks() []task.Task {
	out := make([]task.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = cloneTask(t)
	}
	return out
}

// IDs returns the task identifiers in snapshot order.
func (s Snapshot) IDs() []string {
	ids := make([]string, len(s.tasks))
	for i, t := range s.tasks {
		ids[i] = t.ID
	}
	return ids
}

// Lookup finds a task by id.
func (s Snapshot) Lookup(id string) (task.Task, bool) {
	i, ok := s.index[id]
	if !ok {
		return task.Task{}, false
	}
	return cloneTask(s.tasks[i]), true
}

// Page returns the pagination metadata of the fetch.
func (s Snapshot) Page() PageInfo {
	return s.page
}

func cloneTask(t task.Task) task.Task {
	if t.StartDate != nil {
		d := *t.StartDate
		t.StartDate = &d
	}
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	return t
}
