package main

import (
	"bufio"
	"errors"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/abatilo/taskboard/internal/board"
	tberrors "github.com/abatilo/taskboard/internal/errors"
)

// dragEvent is one line of the drag stream, for example
//
//	{"type":"start","id":"42"}
//	{"type":"over","target":"completed"}
//	{"type":"drop"}
type dragEvent struct {
	Type   string `json:"type"`
	ID     string `json:"id"`
	Target string `json:"target"`
}

// dragCmd implements 'taskboard drag', which replays pointer events read
// from stdin against the board, one JSON object per line.
func dragCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "drag",
		Short: "Replay drag events (JSON lines on stdin) against the board",
		Long: `Replay drag events against the board. Each line of stdin is a JSON
object with a "type" of start, over, drop, cancel or refresh. start takes
the dragged task "id"; over takes a "target" that is either a column
(not-started, in-progress, completed) or another task's id.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.replayDrag(cmd)
		},
	}
}

func (a *app) replayDrag(cmd *cobra.Command) error {
	ctx := cmd.Context()
	b := a.newBoard(a.boardQuery(board.Params{}))
	if _, err := b.Columns(ctx); err != nil {
		return err
	}

	scanner := bufio.NewScanner(a.in)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var ev dragEvent
		if err := sonic.ConfigStd.UnmarshalFromString(raw, &ev); err != nil {
			return DragEventError{Line: line, Reason: err.Error()}
		}
		entry := a.log.WithField("line", line).WithField("event", ev.Type)

		switch strings.ToLower(ev.Type) {
		case "start":
			if b.Stale() {
				if _, err := b.Columns(ctx); err != nil {
					entry.WithError(err).Warn("refresh failed, board is out of date")
				}
			}
			if !b.DragStart(ev.ID) {
				entry.WithField("id", ev.ID).Warn("drag not started")
			}
		case "over":
			b.DragOver(dropTarget(ev.Target))
		case "drop":
			res, err := b.Drop(ctx)
			if err != nil {
				var mErr tberrors.MutationError
				if !errors.As(err, &mErr) {
					return err
				}
				a.printError(err)
				continue
			}
			a.printOutput(a.formatter.FormatDrop(res))
		case "cancel":
			b.Cancel()
		case "refresh":
			if _, err := b.Refresh(ctx); err != nil {
				entry.WithError(err).Warn("refresh failed, keeping last loaded board")
			}
		default:
			return DragEventError{Line: line, Reason: "unknown event type " + ev.Type}
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	cols, err := b.Columns(ctx)
	if err != nil {
		a.log.WithError(err).Warn("showing last loaded board")
	}
	a.printOutput(a.formatter.FormatBoard(cols))
	return nil
}
