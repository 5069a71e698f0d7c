package output

import (
	"time"

	"github.com/bytedance/sonic"

	"github.com/abatilo/taskboard/internal/board"
	"github.com/abatilo/taskboard/internal/remote"
	"github.com/abatilo/taskboard/internal/task"
)

// JSONFormatter formats output as JSON.
type JSONFormatter struct{}

// marshalJSON marshals a value to indented JSON with a trailing newline.
func marshalJSON(v any) string {
	data, _ := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	return string(data) + "\n"
}

// NewJSONFormatter creates a new JSONFormatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// taskJSON is the JSON representation of a task.
type taskJSON struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	StartDate   *string `json:"start_date,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
	Owner       string  `json:"owner,omitempty"`
}

func toTaskJSON(t task.Task) taskJSON {
	return taskJSON{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		StartDate:   formatOptional(t.StartDate),
		DueDate:     formatOptional(t.DueDate),
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339),
		Owner:       t.OwnerID,
	}
}

func toTaskJSONList(tasks []task.Task) []taskJSON {
	out := make([]taskJSON, len(tasks))
	for i, t := range tasks {
		out[i] = toTaskJSON(t)
	}
	return out
}

func formatOptional(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

// FormatTask formats a single task as JSON.
func (f *JSONFormatter) FormatTask(t task.Task) string {
	return marshalJSON(toTaskJSON(t))
}

type listJSON struct {
	Tasks      []taskJSON `json:"tasks"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
}

// FormatTaskList formats one page of tasks as JSON.
func (f *JSONFormatter) FormatTaskList(tasks []task.Task, page board.PageInfo) string {
	return marshalJSON(listJSON{
		Tasks:      toTaskJSONList(tasks),
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	})
}

type columnJSON struct {
	Status string     `json:"status"`
	Tasks  []taskJSON `json:"tasks"`
}

// FormatBoard formats the columns in workflow order.
func (f *JSONFormatter) FormatBoard(cols board.Columns) string {
	out := make([]columnJSON, 0, len(cols))
	for _, s := range task.Statuses() {
		out = append(out, columnJSON{Status: string(s), Tasks: toTaskJSONList(cols[s])})
	}
	return marshalJSON(out)
}

type dropJSON struct {
	Outcome    string    `json:"outcome"`
	Previous   string    `json:"previous_status,omitempty"`
	Celebrated bool      `json:"celebrated"`
	Task       *taskJSON `json:"task,omitempty"`
}

// FormatDrop formats a drop result as JSON.
func (f *JSONFormatter) FormatDrop(res board.Result) string {
	out := dropJSON{
		Outcome:    res.Outcome.String(),
		Previous:   string(res.Previous),
		Celebrated: res.Celebrated,
	}
	if res.Outcome != board.Aborted {
		t := toTaskJSON(res.Task)
		out.Task = &t
	}
	return marshalJSON(out)
}

// FormatKPIs formats the analytics summary as JSON.
func (f *JSONFormatter) FormatKPIs(k remote.KPIs) string {
	return marshalJSON(k)
}

// errorJSON is the JSON representation of an error.
type errorJSON struct {
	Error string `json:"error"`
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(err error) string {
	return marshalJSON(errorJSON{Error: err.Error()})
}

// messageJSON is the JSON representation of a message.
type messageJSON struct {
	Message string `json:"message"`
}

// FormatMessage formats a simple message as JSON.
func (f *JSONFormatter) FormatMessage(msg string) string {
	return marshalJSON(messageJSON{Message: msg})
}
