// Package prefs persists the last-used presentation mode. The mode is read
// once at startup and written on every user-initiated change; stored values
// that are not a known mode are ignored.
package prefs

import (
	"context"
	"strings"

	tberrors "github.com/abatilo/taskboard/internal/errors"
)

// Mode is the presentation of the task collection.
type Mode string

const (
	ModeList      Mode = "list"
	ModeBoard     Mode = "board"
	ModeAnalytics Mode = "analytics"
)

// DefaultMode is used when nothing valid is stored.
const DefaultMode = ModeList

// Modes returns every recognized mode.
func Modes() []Mode {
	return []Mode{ModeList, ModeBoard, ModeAnalytics}
}

// ParseMode accepts a mode in any letter case.
func ParseMode(s string) (Mode, bool) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeList, ModeBoard, ModeAnalytics:
		return m, true
	default:
		return "", false
	}
}

// Resolve maps a stored tag to a mode, falling back to DefaultMode.
func Resolve(stored string) Mode {
	if m, ok := ParseMode(stored); ok {
		return m
	}
	return DefaultMode
}

// Store reads and writes the persisted mode.
type Store interface {
	Load(ctx context.Context) (Mode, error)
	Save(ctx context.Context, m Mode) error
}

func validate(m Mode) error {
	if _, ok := ParseMode(string(m)); !ok {
		return tberrors.InvalidViewModeError{Value: string(m)}
	}
	return nil
}
