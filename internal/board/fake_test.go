package board_test

import (
	"context"
	"time"

	tberrors "github.com/abatilo/taskboard/internal/errors"
	"github.com/abatilo/taskboard/internal/remote"
	"github.com/abatilo/taskboard/internal/task"
)

type update struct {
	ID    string
	Patch remote.Patch
}

// fakeRemote is an in-memory collection that records every call.
type fakeRemote struct {
	tasks     []task.Task
	fetches   int
	updates   []update
	creates   int
	deletes   int
	fetchErr  error
	updateErr error
}

func newFakeRemote(tasks ...task.Task) *fakeRemote {
	return &fakeRemote{tasks: tasks}
}

func (f *fakeRemote) FetchTasks(context.Context, remote.Query) (remote.Page, error) {
	f.fetches++
	if f.fetchErr != nil {
		return remote.Page{}, f.fetchErr
	}
	out := make([]task.Task, len(f.tasks))
	copy(out, f.tasks)
	return remote.Page{Tasks: out, Total: len(out), Page: 1, PageSize: 100, TotalPages: 1}, nil
}

func (f *fakeRemote) GetTask(_ context.Context, id string) (task.Task, error) {
	for _, t := range f.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return task.Task{}, tberrors.TaskNotFoundError{ID: id}
}

func (f *fakeRemote) CreateTask(_ context.Context, d task.Draft) (task.Task, error) {
	if err := d.Validate(); err != nil {
		return task.Task{}, err
	}
	f.creates++
	t := task.Task{ID: "new", Title: d.Title, Status: d.Status, Priority: d.Priority}
	f.tasks = append(f.tasks, t)
	return t, nil
}

func (f *fakeRemote) UpdateTask(_ context.Context, id string, p remote.Patch) (task.Task, error) {
	f.updates = append(f.updates, update{ID: id, Patch: p})
	if f.updateErr != nil {
		return task.Task{}, f.updateErr
	}
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks[i] = p.Apply(t, time.Now())
			return f.tasks[i], nil
		}
	}
	return task.Task{}, tberrors.TaskNotFoundError{ID: id}
}

func (f *fakeRemote) DeleteTask(_ context.Context, id string) error {
	for i, t := range f.tasks {
		if t.ID == id {
			f.deletes++
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return tberrors.TaskNotFoundError{ID: id}
}

type celebrations struct {
	ids []string
}

func (c *celebrations) Celebrate(t task.Task) {
	c.ids = append(c.ids, t.ID)
}

func mk(id, title string, status task.Status) task.Task {
	created := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	return task.Task{
		ID:        id,
		Title:     title,
		Status:    status,
		Priority:  task.PriorityMedium,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func day(d int) *time.Time {
	t := time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
	return &t
}
