// Package output renders tasks, board columns, drop results and analytics
// for the terminal or as JSON.
package output

import (
	"github.com/abatilo/taskboard/internal/board"
	"github.com/abatilo/taskboard/internal/remote"
	"github.com/abatilo/taskboard/internal/task"
)

// Formatter defines the interface for output formatting.
type Formatter interface {
	FormatTask(t task.Task) string
	FormatTaskList(tasks []task.Task, page board.PageInfo) string
	FormatBoard(cols board.Columns) string
	FormatDrop(res board.Result) string
	FormatKPIs(k remote.KPIs) string
	FormatError(err error) string
	FormatMessage(msg string) string
}
