package remote

import (
	"errors"
	"strconv"
	"strings"
	"time"

	tberrors "github.com/abatilo/taskboard/internal/errors"
	"github.com/abatilo/taskboard/internal/task"
)

// wireID accepts identifiers encoded either as JSON numbers or strings.
type wireID string

func (w *wireID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch {
	case s == "null":
		*w = ""
	case strings.HasPrefix(s, `"`):
		v, err := strconv.Unquote(s)
		if err != nil {
			return err
		}
		*w = wireID(v)
	default:
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return errors.New("id must be a number or a string")
		}
		*w = wireID(s)
	}
	return nil
}

func (w wireID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(w), 10, 64); err == nil {
		return []byte(w), nil
	}
	return []byte(strconv.Quote(string(w))), nil
}

// wireTime parses the timestamp spellings the task service emits. Naive
// timestamps are UTC.
type wireTime struct {
	time.Time
}

func (w *wireTime) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	v, err := strconv.Unquote(s)
	if err != nil {
		return err
	}
	t, err := ParseTime(v)
	if err != nil {
		return err
	}
	w.Time = t
	return nil
}

func (w wireTime) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(w.UTC().Format(time.RFC3339Nano))), nil
}

func newWireTime(t *time.Time) *wireTime {
	if t == nil {
		return nil
	}
	return &wireTime{Time: *t}
}

func (w *wireTime) ptr() *time.Time {
	if w == nil || w.IsZero() {
		return nil
	}
	t := w.Time
	return &t
}

// ParseTime tries to parse a time string in the formats seen on the wire
// and in task files.
func ParseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, f := range formats {
		if t, err := time.ParseInLocation(f, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.New("unrecognized time format: " + s)
}

type taskJSON struct {
	ID          wireID    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	StartDate   *wireTime `json:"start_date"`
	DueDate     *wireTime `json:"due_date"`
	CreatedAt   wireTime  `json:"created_at"`
	UpdatedAt   wireTime  `json:"updated_at"`
	UserID      wireID    `json:"user_id"`
}

// toTask rejects anything outside the three statuses so that no other value
// reaches the board.
func (w taskJSON) toTask() (task.Task, error) {
	status := task.Status(w.Status)
	if !task.IsValidStatus(status) {
		return task.Task{}, tberrors.InvalidStatusError{Value: w.Status}
	}
	priority := task.Priority(w.Priority)
	if !task.IsValidPriority(priority) {
		return task.Task{}, tberrors.InvalidPriorityError{Value: w.Priority}
	}
	if w.ID == "" {
		return task.Task{}, errors.New("task without id")
	}
	t := task.Task{
		ID:        string(w.ID),
		Title:     w.Title,
		Status:    status,
		Priority:  priority,
		StartDate: w.StartDate.ptr(),
		DueDate:   w.DueDate.ptr(),
		CreatedAt: w.CreatedAt.Time,
		UpdatedAt: w.UpdatedAt.Time,
		OwnerID:   string(w.UserID),
	}
	if w.Description != nil {
		t.Description = *w.Description
	}
	return t, nil
}

func fromTask(t task.Task) taskJSON {
	w := taskJSON{
		ID:        wireID(t.ID),
		Title:     t.Title,
		Status:    string(t.Status),
		Priority:  string(t.Priority),
		StartDate: newWireTime(t.StartDate),
		DueDate:   newWireTime(t.DueDate),
		CreatedAt: wireTime{Time: t.CreatedAt},
		UpdatedAt: wireTime{Time: t.UpdatedAt},
		UserID:    wireID(t.OwnerID),
	}
	if t.Description != "" {
		d := t.Description
		w.Description = &d
	}
	return w
}

type listJSON struct {
	Tasks      []taskJSON `json:"tasks"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
}

func (l listJSON) toPage() (Page, error) {
	p := Page{
		Tasks:      make([]task.Task, 0, len(l.Tasks)),
		Total:      l.Total,
		Page:       l.Page,
		PageSize:   l.PageSize,
		TotalPages: l.TotalPages,
	}
	for _, w := range l.Tasks {
		t, err := w.toTask()
		if err != nil {
			return Page{}, err
		}
		p.Tasks = append(p.Tasks, t)
	}
	return p, nil
}

func fromPage(p Page) listJSON {
	l := listJSON{
		Tasks:      make([]taskJSON, len(p.Tasks)),
		Total:      p.Total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages,
	}
	for i, t := range p.Tasks {
		l.Tasks[i] = fromTask(t)
	}
	return l
}

type draftJSON struct {
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	StartDate   *wireTime `json:"start_date,omitempty"`
	DueDate     *wireTime `json:"due_date,omitempty"`
}

func fromDraft(d task.Draft) draftJSON {
	w := draftJSON{
		Title:     d.Title,
		Status:    string(d.Status),
		Priority:  string(d.Priority),
		StartDate: newWireTime(d.StartDate),
		DueDate:   newWireTime(d.DueDate),
	}
	if d.Description != "" {
		desc := d.Description
		w.Description = &desc
	}
	return w
}

type patchJSON struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Status      *string   `json:"status,omitempty"`
	Priority    *string   `json:"priority,omitempty"`
	StartDate   *wireTime `json:"start_date,omitempty"`
	DueDate     *wireTime `json:"due_date,omitempty"`
}

func fromPatch(p Patch) patchJSON {
	w := patchJSON{
		Title:       p.Title,
		Description: p.Description,
		StartDate:   newWireTime(p.StartDate),
		DueDate:     newWireTime(p.DueDate),
	}
	if p.Status != nil {
		s := string(*p.Status)
		w.Status = &s
	}
	if p.Priority != nil {
		s := string(*p.Priority)
		w.Priority = &s
	}
	return w
}

// errorJSON covers both error shapes of the task service: a plain detail
// string and a list of validation failures.
type errorJSON struct {
	Detail any `json:"detail"`
}

func (e errorJSON) message() string {
	switch d := e.Detail.(type) {
	case string:
		return d
	case []any:
		msgs := make([]string, 0, len(d))
		for _, item := range d {
			if m, ok := item.(map[string]any); ok {
				if s, ok := m["msg"].(string); ok {
					msgs = append(msgs, s)
				}
			}
		}
		return strings.Join(msgs, ", ")
	default:
		return ""
	}
}
