package board

import "github.com/abatilo/taskboard/internal/task"

// Columns maps each status to its tasks in snapshot order. All three
// statuses are always present.
type Columns map[task.Status][]task.Task

// Group partitions the snapshot by status. Every task lands in exactly one
// column; an empty snapshot yields three empty columns.
func Group(snap Snapshot) Columns {
	cols := make(Columns, 3)
	for _, s := range task.Statuses() {
		cols[s] = []task.Task{}
	}
	for _, t := range snap.tasks {
		cols[t.Status] = append(cols[t.Status], cloneTask(t))
	}
	return cols
}

// IDs returns the task identifiers of every column.
func (c Columns) IDs() map[task.Status][]string {
	out := make(map[task.Status][]string, len(c))
	for s, tasks := range c {
		ids := make([]string, len(tasks))
		for i, t := range tasks {
			ids[i] = t.ID
		}
		out[s] = ids
	}
	return out
}

// Count returns the number of tasks across all columns.
func (c Columns) Count() int {
	n := 0
	for _, tasks := range c {
		n += len(tasks)
	}
	return n
}
