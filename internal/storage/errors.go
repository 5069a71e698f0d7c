package storage

import "fmt"

// ParseError indicates a task file that could not be decoded.
type ParseError struct {
	File   string
	Reason string
}

func (e ParseError) Error() string {
	if e.File == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.File, e.Reason)
}
