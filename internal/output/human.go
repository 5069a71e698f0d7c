package output

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/abatilo/taskboard/internal/board"
	"github.com/abatilo/taskboard/internal/remote"
	"github.com/abatilo/taskboard/internal/task"
)

const dateLayout = "2006-01-02"

// HumanFormatter formats output for human-readable terminal display.
type HumanFormatter struct {
	colored bool
	now     func() time.Time
}

// NewHumanFormatter creates a HumanFormatter. Color follows fatih/color's
// terminal and NO_COLOR detection.
func NewHumanFormatter() *HumanFormatter {
	return &HumanFormatter{colored: !color.NoColor, now: time.Now}
}

// NewPlainFormatter creates a HumanFormatter that never emits color codes.
func NewPlainFormatter() *HumanFormatter {
	return &HumanFormatter{now: time.Now}
}

func (f *HumanFormatter) paint(s string, attrs ...color.Attribute) string {
	if !f.colored {
		return s
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(s)
}

// FormatTask formats a single task for display.
func (f *HumanFormatter) FormatTask(t task.Task) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "[%s] %s\n", t.ID, f.paint(t.Title, color.Bold))
	fmt.Fprintf(&sb, "  Status:   %s\n", f.paintStatus(t.Status))
	fmt.Fprintf(&sb, "  Priority: %s\n", t.Priority)
	if t.StartDate != nil {
		fmt.Fprintf(&sb, "  Start:    %s\n", t.StartDate.Format(dateLayout))
	}
	if t.DueDate != nil {
		fmt.Fprintf(&sb, "  Due:      %s%s\n", t.DueDate.Format(dateLayout), f.overdueMark(t))
	}
	fmt.Fprintf(&sb, "  Created:  %s\n", t.CreatedAt.Format("2006-01-02 15:04"))
	if !t.UpdatedAt.IsZero() && !t.UpdatedAt.Equal(t.CreatedAt) {
		fmt.Fprintf(&sb, "  Updated:  %s\n", t.UpdatedAt.Format("2006-01-02 15:04"))
	}
	if t.Description != "" {
		sb.WriteString("\n")
		sb.WriteString(t.Description)
		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatTaskList formats one page of tasks.
func (f *HumanFormatter) FormatTaskList(tasks []task.Task, page board.PageInfo) string {
	if len(tasks) == 0 {
		return "No tasks found.\n"
	}

	var sb strings.Builder
	for _, t := range tasks {
		sb.WriteString(f.formatTaskLine(t))
	}
	if page.TotalPages > 1 {
		fmt.Fprintf(&sb, "\nPage %d of %d (%d tasks)\n", page.Page, page.TotalPages, page.Total)
	}
	return sb.String()
}

// formatTaskLine formats a single task as a compact one-liner.
func (f *HumanFormatter) formatTaskLine(t task.Task) string {
	return fmt.Sprintf("%s %s [%s] %s%s\n", f.statusIcon(t.Status), f.priorityMark(t.Priority), t.ID, t.Title, f.dueSuffix(t))
}

// FormatBoard renders the three columns as trees in workflow order.
func (f *HumanFormatter) FormatBoard(cols board.Columns) string {
	var sb strings.Builder
	for i, s := range task.Statuses() {
		if i > 0 {
			sb.WriteString("\n")
		}
		tasks := cols[s]
		fmt.Fprintf(&sb, "%s (%d)\n", f.paintStatus(s), len(tasks))
		if len(tasks) == 0 {
			sb.WriteString("└── (empty)\n")
			continue
		}
		for j, t := range tasks {
			connector := "├── "
			if j == len(tasks)-1 {
				connector = "└── "
			}
			fmt.Fprintf(&sb, "%s%s [%s] %s%s\n", connector, f.priorityMark(t.Priority), t.ID, t.Title, f.dueSuffix(t))
		}
	}
	return sb.String()
}

// FormatDrop describes what a drop did.
func (f *HumanFormatter) FormatDrop(res board.Result) string {
	switch res.Outcome {
	case board.Applied:
		return fmt.Sprintf("Moved [%s] %s: %s -> %s\n", res.Task.ID, res.Task.Title, res.Previous, f.paintStatus(res.Task.Status))
	case board.NoOp:
		return fmt.Sprintf("[%s] %s is already in %s.\n", res.Task.ID, res.Task.Title, res.Previous)
	default:
		return "Nothing to do: the drop did not land on a column or a card.\n"
	}
}

// FormatKPIs formats the analytics summary.
func (f *HumanFormatter) FormatKPIs(k remote.KPIs) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Total tasks:          %d\n", k.TotalTasks)
	fmt.Fprintf(&sb, "Completed:            %d\n", k.CompletedTasks)
	fmt.Fprintf(&sb, "In progress:          %d\n", k.InProgressTasks)
	fmt.Fprintf(&sb, "Not started:          %d\n", k.NotStartedTasks)
	fmt.Fprintf(&sb, "Completion rate:      %.1f%%\n", k.CompletionRate)
	fmt.Fprintf(&sb, "Avg completion days:  %.1f\n", k.AverageCompletionDays)
	fmt.Fprintf(&sb, "Overdue:              %s\n", f.overdueCount(k.OverdueTasks))
	fmt.Fprintf(&sb, "Completed this week:  %d\n", k.ThisWeekCompleted)
	fmt.Fprintf(&sb, "On-time rate:         %.1f%%\n", k.OnTimeCompletionRate)
	writeCounts(&sb, "By priority", k.TasksByPriority)
	writeCounts(&sb, "By status", k.TasksByStatus)
	return sb.String()
}

func writeCounts(sb *strings.Builder, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintf(sb, "%s:\n", title)
	for _, k := range keys {
		fmt.Fprintf(sb, "  %-12s %d\n", k, counts[k])
	}
}

// FormatError formats an error for display.
func (f *HumanFormatter) FormatError(err error) string {
	return f.paint("Error:", color.FgRed, color.Bold) + " " + err.Error() + "\n"
}

// FormatMessage formats a simple message.
func (f *HumanFormatter) FormatMessage(msg string) string {
	return msg + "\n"
}

func (f *HumanFormatter) statusIcon(s task.Status) string {
	switch s {
	case task.StatusNotStarted:
		return "[ ]"
	case task.StatusInProgress:
		return f.paint("[*]", color.FgYellow)
	case task.StatusCompleted:
		return f.paint("[X]", color.FgGreen)
	default:
		return "[?]"
	}
}

func (f *HumanFormatter) paintStatus(s task.Status) string {
	switch s {
	case task.StatusInProgress:
		return f.paint(string(s), color.FgYellow, color.Bold)
	case task.StatusCompleted:
		return f.paint(string(s), color.FgGreen, color.Bold)
	default:
		return f.paint(string(s), color.Bold)
	}
}

func (f *HumanFormatter) priorityMark(p task.Priority) string {
	switch p {
	case task.PriorityHigh:
		return f.paint("P1", color.FgRed)
	case task.PriorityMedium:
		return "P2"
	case task.PriorityLow:
		return "P3"
	default:
		return "P?"
	}
}

func (f *HumanFormatter) dueSuffix(t task.Task) string {
	if t.DueDate == nil {
		return ""
	}
	return fmt.Sprintf(" (due %s)%s", t.DueDate.Format(dateLayout), f.overdueMark(t))
}

func (f *HumanFormatter) overdueMark(t task.Task) string {
	if !t.IsOverdue(f.now()) {
		return ""
	}
	return " " + f.paint("overdue", color.FgRed)
}

func (f *HumanFormatter) overdueCount(n int) string {
	s := fmt.Sprintf("%d", n)
	if n > 0 {
		return f.paint(s, color.FgRed)
	}
	return s
}
