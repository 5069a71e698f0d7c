// Package remote is the boundary with the task service that owns the
// authoritative task collection. Nothing here keeps state between calls
// except the optional read cache.
package remote

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/abatilo/taskboard/internal/task"
)

// MaxPageSize is the largest page the task service hands out.
const MaxPageSize = 100

// Query selects one page of the remote collection.
type Query struct {
	Page      int
	PageSize  int
	Search    string
	Status    task.Status
	Priority  task.Priority
	SortBy    string
	SortOrder string
}

// Values encodes the query the way the task service expects it. Empty
// filters are omitted.
func (q Query) Values() url.Values {
	v := url.Values{}
	page := q.Page
	if page < 1 {
		page = 1
	}
	v.Set("page", strconv.Itoa(page))
	if q.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(q.PageSize))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Status != "" {
		v.Set("status", string(q.Status))
	}
	if q.Priority != "" {
		v.Set("priority", string(q.Priority))
	}
	if q.SortBy != "" {
		v.Set("sort_by", q.SortBy)
	}
	if q.SortOrder != "" {
		v.Set("sort_order", q.SortOrder)
	}
	return v
}

// Page is one batch of tasks plus its pagination metadata.
type Page struct {
	Tasks      []task.Task
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// Patch is a partial update; nil fields are left untouched.
type Patch struct {
	Title       *string
	Description *string
	Status      *task.Status
	Priority    *task.Priority
	StartDate   *time.Time
	DueDate     *time.Time
}

// StatusPatch builds the patch issued by a board drop.
func StatusPatch(s task.Status) Patch {
	return Patch{Status: &s}
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && p.StartDate == nil && p.DueDate == nil
}

// Validate checks the set fields against the task schema.
func (p Patch) Validate() error {
	if p.Title != nil {
		if err := task.ValidateTitle(*p.Title); err != nil {
			return err
		}
	}
	if p.Description != nil {
		if err := task.ValidateDescription(*p.Description); err != nil {
			return err
		}
	}
	if p.Status != nil && !task.IsValidStatus(*p.Status) {
		return task.FieldError{Field: "status", Reason: "unknown status " + string(*p.Status)}
	}
	if p.Priority != nil && !task.IsValidPriority(*p.Priority) {
		return task.FieldError{Field: "priority", Reason: "unknown priority " + string(*p.Priority)}
	}
	return nil
}

// Apply returns a copy of t with the patch applied. Only services that own
// the collection call this; clients wait for the acknowledged task instead.
func (p Patch) Apply(t task.Task, now time.Time) task.Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.StartDate != nil {
		d := *p.StartDate
		t.StartDate = &d
	}
	if p.DueDate != nil {
		d := *p.DueDate
		t.DueDate = &d
	}
	t.UpdatedAt = now
	return t
}

// Collection is the remote task collection. Every mutation must be
// acknowledged by the service before the caller treats it as applied.
type Collection interface {
	FetchTasks(ctx context.Context, q Query) (Page, error)
	GetTask(ctx context.Context, id string) (task.Task, error)
	CreateTask(ctx context.Context, d task.Draft) (task.Task, error)
	UpdateTask(ctx context.Context, id string, p Patch) (task.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// KPISource serves the aggregated analytics computed by the task service.
type KPISource interface {
	FetchKPIs(ctx context.Context) (KPIs, error)
}

// KPIs mirrors the analytics payload of the task service.
type KPIs struct {
	TotalTasks            int            `json:"total_tasks"`
	CompletedTasks        int            `json:"completed_tasks"`
	InProgressTasks       int            `json:"in_progress_tasks"`
	NotStartedTasks       int            `json:"not_started_tasks"`
	CompletionRate        float64        `json:"completion_rate"`
	AverageCompletionDays float64        `json:"average_completion_days"`
	OverdueTasks          int            `json:"overdue_tasks"`
	TasksByPriority       map[string]int `json:"tasks_by_priority"`
	TasksByStatus         map[string]int `json:"tasks_by_status"`
	ThisWeekCompleted     int            `json:"this_week_completed"`
	OnTimeCompletionRate  float64        `json:"on_time_completion_rate"`
}
