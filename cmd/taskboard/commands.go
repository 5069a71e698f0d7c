package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abatilo/taskboard/internal/board"
	tberrors "github.com/abatilo/taskboard/internal/errors"
	"github.com/abatilo/taskboard/internal/prefs"
	"github.com/abatilo/taskboard/internal/remote"
	"github.com/abatilo/taskboard/internal/task"
)

// initCmd implements 'taskboard init'.
func initCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the offline task directory",
		RunE: func(_ *cobra.Command, _ []string) error {
			if a.files == nil {
				return tberrors.UnsupportedError{Operation: "init", Backend: a.cfg.Backend}
			}
			if err := a.files.Init(force); err != nil {
				return err
			}
			a.printOutput(a.formatter.FormatMessage(fmt.Sprintf("Initialized taskboard at %s", a.files.BasePath())))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Reinitialize even if already exists")
	return cmd
}

// addCmd implements 'taskboard add'.
func addCmd(a *app) *cobra.Command {
	var description, priority, status, start, due string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a new task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := task.Draft{Title: args[0], Description: description}
			var err error
			if d.Priority, err = parsePriority(priority); err != nil {
				return err
			}
			if d.Status, err = parseStatus(status); err != nil {
				return err
			}
			if d.StartDate, err = parseDate("start", start); err != nil {
				return err
			}
			if d.DueDate, err = parseDate("due", due); err != nil {
				return err
			}

			t, err := a.newBoard(remote.Query{}).Create(cmd.Context(), d)
			if err != nil {
				return err
			}
			a.printOutput(a.formatter.FormatTask(t))
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "Task description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "medium", "Priority (low, medium, high)")
	cmd.Flags().StringVarP(&status, "status", "s", "not-started", "Status (not-started, in-progress, completed)")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	return cmd
}

type listFlags struct {
	search, status, priority, sort, order string
	page                                  int
}

func (f *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.search, "search", "q", "", "Only tasks whose title or description contains this text")
	cmd.Flags().StringVar(&f.status, "status", "", "Only tasks with this status")
	cmd.Flags().StringVar(&f.priority, "priority", "", "Only tasks with this priority")
	cmd.Flags().StringVar(&f.sort, "sort", "created_at", "Sort key (created_at, updated_at, due_date, priority, status, title)")
	cmd.Flags().StringVar(&f.order, "order", "desc", "Sort direction (asc, desc)")
	cmd.Flags().IntVar(&f.page, "page", 1, "Page number")
}

func (f *listFlags) params() board.Params {
	return board.ParseParams(f.search, f.status, f.priority, f.sort, f.order)
}

// listCmd implements 'taskboard list'.
func listCmd(a *app) *cobra.Command {
	var flags listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks one page at a time",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.renderList(cmd, flags.params(), flags.page); err != nil {
				return err
			}
			a.rememberMode(cmd.Context(), prefs.ModeList)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func (a *app) renderList(cmd *cobra.Command, params board.Params, page int) error {
	b := a.newBoard(params.Query(page, a.cfg.PageSize.List))
	tasks, snap, err := b.List(cmd.Context(), params)
	if err != nil {
		return err
	}
	a.printOutput(a.formatter.FormatTaskList(tasks, snap.Page()))
	return nil
}

// boardCmd implements 'taskboard board'.
func boardCmd(a *app) *cobra.Command {
	var search, priority string
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show tasks grouped into status columns",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.renderBoard(cmd, board.ParseParams(search, "", priority, "", "")); err != nil {
				return err
			}
			a.rememberMode(cmd.Context(), prefs.ModeBoard)
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "q", "", "Only tasks whose title or description contains this text")
	cmd.Flags().StringVar(&priority, "priority", "", "Only tasks with this priority")
	return cmd
}

// boardQuery reads the whole working set in one page so every task lands
// in a column.
func (a *app) boardQuery(params board.Params) remote.Query {
	return params.Query(1, a.cfg.PageSize.Board)
}

func (a *app) renderBoard(cmd *cobra.Command, params board.Params) error {
	cols, err := a.newBoard(a.boardQuery(params)).Columns(cmd.Context())
	if err != nil {
		return err
	}
	a.printOutput(a.formatter.FormatBoard(cols))
	return nil
}

// showCmd implements 'taskboard show'.
func showCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show task details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.newBoard(remote.Query{}).Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.printOutput(a.formatter.FormatTask(t))
			return nil
		},
	}
}

// editCmd implements 'taskboard edit'.
func editCmd(a *app) *cobra.Command {
	var title, description, priority, status, start, due string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p remote.Patch
			flags := cmd.Flags()
			if flags.Changed("title") {
				p.Title = &title
			}
			if flags.Changed("description") {
				p.Description = &description
			}
			if flags.Changed("priority") {
				pr, err := parsePriority(priority)
				if err != nil {
					return err
				}
				p.Priority = &pr
			}
			if flags.Changed("status") {
				s, err := parseStatus(status)
				if err != nil {
					return err
				}
				p.Status = &s
			}
			var err error
			if p.StartDate, err = parseDate("start", start); err != nil {
				return err
			}
			if p.DueDate, err = parseDate("due", due); err != nil {
				return err
			}
			if p.IsEmpty() {
				return NothingToEditError{}
			}

			t, err := a.newBoard(remote.Query{}).Edit(cmd.Context(), args[0], p)
			if err != nil {
				return err
			}
			a.printOutput(a.formatter.FormatTask(t))
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "New priority (low, medium, high)")
	cmd.Flags().StringVarP(&status, "status", "s", "", "New status (not-started, in-progress, completed)")
	cmd.Flags().StringVar(&start, "start", "", "New start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&due, "due", "", "New due date (YYYY-MM-DD)")
	return cmd
}

// rmCmd implements 'taskboard rm'.
func rmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.newBoard(remote.Query{}).Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.printOutput(a.formatter.FormatMessage(fmt.Sprintf("Removed task %s", args[0])))
			return nil
		},
	}
}

// moveCmd implements 'taskboard move', a drag and drop in one step.
func moveCmd(a *app) *cobra.Command {
	var onto string
	cmd := &cobra.Command{
		Use:   "move <id> --onto <column|card-id>",
		Short: "Drop a task onto a status column or onto another task's card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := a.newBoard(a.boardQuery(board.Params{}))
			res, err := b.Move(cmd.Context(), args[0], dropTarget(onto))
			if err != nil {
				return err
			}
			if res.Outcome == board.Aborted {
				if _, ok := b.Snapshot().Lookup(args[0]); !ok {
					return tberrors.TaskNotFoundError{ID: args[0]}
				}
			}
			a.printOutput(a.formatter.FormatDrop(res))
			return nil
		},
	}
	cmd.Flags().StringVar(&onto, "onto", "", "Target column (not-started, in-progress, completed) or task id")
	_ = cmd.MarkFlagRequired("onto")
	return cmd
}

// viewCmd implements 'taskboard view'.
func viewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "view [list|board|analytics]",
		Short: "Show or set the default view",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				m, err := a.prefs.Load(cmd.Context())
				if err != nil {
					return err
				}
				a.printOutput(a.formatter.FormatMessage(string(m)))
				return nil
			}
			m, ok := prefs.ParseMode(args[0])
			if !ok {
				return tberrors.InvalidViewModeError{Value: args[0]}
			}
			if err := a.prefs.Save(cmd.Context(), m); err != nil {
				return err
			}
			a.printOutput(a.formatter.FormatMessage(fmt.Sprintf("View set to %s", m)))
			return nil
		},
	}
}

// openCmd implements 'taskboard open'.
func openCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "open",
		Short: "Show tasks in the last used view",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.prefs.Load(cmd.Context())
			if err != nil {
				a.log.WithError(err).Warn("could not read view mode, using default")
				m = prefs.DefaultMode
			}
			switch m {
			case prefs.ModeBoard:
				return a.renderBoard(cmd, board.Params{})
			case prefs.ModeAnalytics:
				return a.renderAnalytics(cmd)
			default:
				return a.renderList(cmd, board.Params{}, 1)
			}
		},
	}
}

// analyticsCmd implements 'taskboard analytics'.
func analyticsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "analytics",
		Short: "Show completion statistics computed by the task service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.renderAnalytics(cmd); err != nil {
				return err
			}
			a.rememberMode(cmd.Context(), prefs.ModeAnalytics)
			return nil
		},
	}
}

func (a *app) renderAnalytics(cmd *cobra.Command) error {
	src, err := a.analytics()
	if err != nil {
		return err
	}
	k, err := src.FetchKPIs(cmd.Context())
	if err != nil {
		return err
	}
	a.printOutput(a.formatter.FormatKPIs(k))
	return nil
}

// dropTarget maps CLI spellings of a column to its identifier and passes
// anything else through as a card id.
func dropTarget(s string) string {
	if st, ok := task.ParseStatus(s); ok {
		return string(st)
	}
	return s
}

func parsePriority(s string) (task.Priority, error) {
	p, ok := task.ParsePriority(s)
	if !ok {
		return "", tberrors.InvalidPriorityError{Value: s}
	}
	return p, nil
}

func parseStatus(s string) (task.Status, error) {
	st, ok := task.ParseStatus(s)
	if !ok {
		return "", tberrors.InvalidStatusError{Value: s}
	}
	return st, nil
}

func parseDate(flag, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := remote.ParseTime(s)
	if err != nil {
		return nil, InvalidDateError{Flag: flag, Value: s}
	}
	return &t, nil
}
