package storage

import (
	"bytes"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	tberrors "github.com/abatilo/taskboard/internal/errors"
	"github.com/abatilo/taskboard/internal/remote"
	"github.com/abatilo/taskboard/internal/task"
)

const frontmatterDelimiter = "---"

// taskFrontmatter is the YAML-serializable portion of a task.
type taskFrontmatter struct {
	ID        string        `yaml:"id"`
	Title     string        `yaml:"title"`
	Status    task.Status   `yaml:"status"`
	Priority  task.Priority `yaml:"priority"`
	StartDate *string       `yaml:"start_date,omitempty"`
	DueDate   *string       `yaml:"due_date,omitempty"`
	CreatedAt string        `yaml:"created_at"`
	UpdatedAt string        `yaml:"updated_at,omitempty"`
	Owner     string        `yaml:"owner,omitempty"`
}

// ParseMarkdown parses a markdown file with YAML frontmatter into a Task.
// The body after the frontmatter is the description.
func ParseMarkdown(content []byte) (task.Task, error) {
	lines := strings.Split(string(content), "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[0]) != frontmatterDelimiter {
		return task.Task{}, ParseError{Reason: "missing YAML frontmatter"}
	}

	end := 0
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == frontmatterDelimiter {
			end = i
			break
		}
	}
	if end == 0 {
		return task.Task{}, ParseError{Reason: "unclosed YAML frontmatter"}
	}

	var fm taskFrontmatter
	if err := yaml.Unmarshal([]byte(strings.Join(lines[1:end], "\n")), &fm); err != nil {
		return task.Task{}, ParseError{Reason: "invalid YAML: " + err.Error()}
	}

	status, ok := task.ParseStatus(string(fm.Status))
	if !ok {
		return task.Task{}, tberrors.InvalidStatusError{Value: string(fm.Status)}
	}
	priority, ok := task.ParsePriority(string(fm.Priority))
	if !ok {
		return task.Task{}, tberrors.InvalidPriorityError{Value: string(fm.Priority)}
	}

	createdAt, err := remote.ParseTime(fm.CreatedAt)
	if err != nil {
		return task.Task{}, ParseError{Reason: "invalid created_at: " + err.Error()}
	}
	updatedAt := createdAt
	if fm.UpdatedAt != "" {
		if updatedAt, err = remote.ParseTime(fm.UpdatedAt); err != nil {
			return task.Task{}, ParseError{Reason: "invalid updated_at: " + err.Error()}
		}
	}
	startDate, err := parseOptional("start_date", fm.StartDate)
	if err != nil {
		return task.Task{}, err
	}
	dueDate, err := parseOptional("due_date", fm.DueDate)
	if err != nil {
		return task.Task{}, err
	}

	var description string
	if end+1 < len(lines) {
		description = strings.TrimSpace(strings.Join(lines[end+1:], "\n"))
	}

	return task.Task{
		ID:          fm.ID,
		Title:       fm.Title,
		Description: description,
		Status:      status,
		Priority:    priority,
		StartDate:   startDate,
		DueDate:     dueDate,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
		OwnerID:     fm.Owner,
	}, nil
}

// SerializeMarkdown converts a Task to markdown with YAML frontmatter.
func SerializeMarkdown(t task.Task) ([]byte, error) {
	fm := taskFrontmatter{
		ID:        t.ID,
		Title:     t.Title,
		Status:    t.Status,
		Priority:  t.Priority,
		StartDate: formatOptional(t.StartDate),
		DueDate:   formatOptional(t.DueDate),
		CreatedAt: t.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: t.UpdatedAt.UTC().Format(time.RFC3339),
		Owner:     t.OwnerID,
	}

	var buf bytes.Buffer
	buf.WriteString(frontmatterDelimiter + "\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fm); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}

	buf.WriteString(frontmatterDelimiter + "\n")

	if t.Description != "" {
		buf.WriteString("\n")
		buf.WriteString(t.Description)
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

func parseOptional(field string, s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := remote.ParseTime(*s)
	if err != nil {
		return nil, ParseError{Reason: "invalid " + field + ": " + err.Error()}
	}
	return &t, nil
}

func formatOptional(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
