package main

import "fmt"

// NothingToEditError indicates edit was called without any field flag.
type NothingToEditError struct{}

func (e NothingToEditError) Error() string {
	return "nothing to edit: pass at least one of --title, --description, --priority, --status, --start, --due"
}

// InvalidDateError indicates a date flag that is not YYYY-MM-DD or RFC 3339.
type InvalidDateError struct {
	Flag  string
	Value string
}

func (e InvalidDateError) Error() string {
	return fmt.Sprintf("invalid --%s date: %s (expected YYYY-MM-DD)", e.Flag, e.Value)
}

// DragEventError indicates a malformed line on the drag event stream.
type DragEventError struct {
	Line   int
	Reason string
}

func (e DragEventError) Error() string {
	return fmt.Sprintf("drag event on line %d: %s", e.Line, e.Reason)
}
