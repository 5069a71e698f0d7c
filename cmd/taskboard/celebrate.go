package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/abatilo/taskboard/internal/board"
	"github.com/abatilo/taskboard/internal/task"
)

var celebrationStyle = color.New(color.FgGreen, color.Bold)

// newConsoleCelebrator prints a one-line cheer when a drop completes a task.
func newConsoleCelebrator(w io.Writer) board.Celebrator {
	return board.CelebratorFunc(func(t task.Task) {
		fmt.Fprintln(w, celebrationStyle.Sprintf("🎉 Completed %s: %s", t.ID, t.Title))
	})
}
