package task

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
)

// Status represents the current state of a task. The values are the wire
// values used by the remote task service.
type Status string

const (
	StatusNotStarted Status = "Not Started"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// Statuses returns every status in board column order.
func Statuses() []Status {
	return []Status{StatusNotStarted, StatusInProgress, StatusCompleted}
}

// StatusOrder returns the sort order for a status (workflow order).
func StatusOrder(s Status) int {
	switch s {
	case StatusNotStarted:
		return 0
	case StatusInProgress:
		return 1
	case StatusCompleted:
		return 2
	default:
		return 3
	}
}

// IsTerminal reports whether s is the final workflow state.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted
}

// Priority represents the importance level of a task.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// PriorityOrder returns the sort order for a priority (lower = less important).
func PriorityOrder(p Priority) int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityMedium:
		return 1
	case PriorityHigh:
		return 2
	default:
		return 3
	}
}

// Task represents a tracked work item as owned by the remote service.
type Task struct {
	ID          string
	Title       string
	Description string
	Status      Status
	Priority    Priority
	StartDate   *time.Time
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	OwnerID     string
}

// IsOverdue reports whether the task is past its due date and not completed.
func (t Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.Status != StatusCompleted && t.DueDate.Before(now)
}

// IsValidStatus checks if a status string is valid.
func IsValidStatus(s Status) bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// IsValidPriority checks if a priority string is valid.
func IsValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// ParseStatus accepts the wire value or a CLI spelling such as
// "in-progress", "in_progress" or "inprogress".
func ParseStatus(s string) (Status, bool) {
	switch normalize(s) {
	case "notstarted", "todo":
		return StatusNotStarted, true
	case "inprogress", "doing":
		return StatusInProgress, true
	case "completed", "done":
		return StatusCompleted, true
	default:
		return "", false
	}
}

// ParsePriority accepts a priority in any letter case.
func ParsePriority(s string) (Priority, bool) {
	switch normalize(s) {
	case "low":
		return PriorityLow, true
	case "medium":
		return PriorityMedium, true
	case "high":
		return PriorityHigh, true
	default:
		return "", false
	}
}

func normalize(s string) string {
	r := strings.NewReplacer(" ", "", "-", "", "_", "")
	return r.Replace(strings.ToLower(strings.TrimSpace(s)))
}

// Draft carries the fields of a task that does not exist yet.
type Draft struct {
	Title       string
	Description string
	Status      Status
	Priority    Priority
	StartDate   *time.Time
	DueDate     *time.Time
}

// Validate checks the field limits enforced by the remote service and fills
// in the service defaults for status and priority.
func (d *Draft) Validate() error {
	if d.Status == "" {
		d.Status = StatusNotStarted
	}
	if d.Priority == "" {
		d.Priority = PriorityMedium
	}
	if err := ValidateTitle(d.Title); err != nil {
		return err
	}
	if err := ValidateDescription(d.Description); err != nil {
		return err
	}
	if !IsValidStatus(d.Status) {
		return FieldError{Field: "status", Reason: "unknown status " + string(d.Status)}
	}
	if !IsValidPriority(d.Priority) {
		return FieldError{Field: "priority", Reason: "unknown priority " + string(d.Priority)}
	}
	return nil
}

// ValidateTitle enforces a non-empty title of at most MaxTitleLength runes.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return FieldError{Field: "title", Reason: "must not be empty"}
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return FieldError{Field: "title", Reason: "must be at most 200 characters"}
	}
	return nil
}

// ValidateDescription enforces the description length limit.
func ValidateDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return FieldError{Field: "description", Reason: "must be at most 2000 characters"}
	}
	return nil
}

// FieldError reports a field that violates the task schema.
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return e.Field + " " + e.Reason
}
