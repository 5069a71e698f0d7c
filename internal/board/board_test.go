package board_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abatilo/taskboard/internal/board"
	tberrors "github.com/abatilo/taskboard/internal/errors"
	"github.com/abatilo/taskboard/internal/remote"
	"github.com/abatilo/taskboard/internal/task"
)

func loadedBoard(t *testing.T, fake *fakeRemote) (*board.Board, *celebrations) {
	t.Helper()
	cel := &celebrations{}
	b := board.New(fake, remote.Query{PageSize: 100}, board.WithCelebrator(cel))
	_, err := b.Refresh(context.Background())
	require.NoError(t, err)
	return b, cel
}

func drag(t *testing.T, b *board.Board, id, target string) (board.Result, error) {
	t.Helper()
	require.True(t, b.DragStart(id))
	b.DragOver(target)
	return b.Drop(context.Background())
}

func TestDropOnCardJoinsThatCardsColumn(t *testing.T) {
	fake := newFakeRemote(
		mk("A", "Task A", task.StatusNotStarted),
		mk("B", "Task B", task.StatusInProgress),
	)
	b, cel := loadedBoard(t, fake)

	res, err := drag(t, b, "A", "B")
	require.NoError(t, err)

	assert.Equal(t, board.Applied, res.Outcome)
	assert.Equal(t, task.StatusNotStarted, res.Previous)
	require.Len(t, fake.updates, 1)
	assert.Equal(t, "A", fake.updates[0].ID)
	require.NotNil(t, fake.updates[0].Patch.Status)
	assert.Equal(t, task.StatusInProgress, *fake.updates[0].Patch.Status)
	assert.Nil(t, fake.updates[0].Patch.Title)
	assert.Empty(t, cel.ids)
	assert.False(t, res.Celebrated)
	assert.True(t, b.Stale())
	assert.Equal(t, board.Idle, b.Session().State)
}

func TestDropOnOwnColumnIsNoOp(t *testing.T) {
	fake := newFakeRemote(
		mk("A", "Task A", task.StatusNotStarted),
		mk("B", "Task B", task.StatusInProgress),
	)
	b, cel := loadedBoard(t, fake)

	res, err := drag(t, b, "A", string(task.StatusNotStarted))
	require.NoError(t, err)

	assert.Equal(t, board.NoOp, res.Outcome)
	assert.Empty(t, fake.updates)
	assert.Empty(t, cel.ids)
	assert.False(t, b.Stale())
	assert.Equal(t, board.Idle, b.Session().State)
}

func TestDropIntoCompletedCelebratesOnce(t *testing.T) {
	fake := newFakeRemote(mk("C", "Task C", task.StatusInProgress))
	b, cel := loadedBoard(t, fake)

	res, err := drag(t, b, "C", string(task.StatusCompleted))
	require.NoError(t, err)

	assert.Equal(t, board.Applied, res.Outcome)
	assert.True(t, res.Celebrated)
	assert.Equal(t, []string{"C"}, cel.ids)
	assert.Len(t, fake.updates, 1)
	assert.True(t, b.Stale())

	cols, err := b.Columns(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, fake.fetches)
	assert.Equal(t, []string{"C"}, cols.IDs()[task.StatusCompleted])
}

func TestLeavingCompletedDoesNotCelebrate(t *testing.T) {
	fake := newFakeRemote(mk("D", "Task D", task.StatusCompleted))
	b, cel := loadedBoard(t, fake)

	res, err := drag(t, b, "D", string(task.StatusInProgress))
	require.NoError(t, err)

	assert.Equal(t, board.Applied, res.Outcome)
	assert.Len(t, fake.updates, 1)
	assert.Empty(t, cel.ids)
	assert.False(t, res.Celebrated)
}

func TestCelebrationMatrix(t *testing.T) {
	for _, from := range task.Statuses() {
		for _, to := range task.Statuses() {
			t.Run(string(from)+" to "+string(to), func(t *testing.T) {
				fake := newFakeRemote(mk("T", "Task", from))
				b, cel := loadedBoard(t, fake)

				res, err := drag(t, b, "T", string(to))
				require.NoError(t, err)

				if from == to {
					assert.Equal(t, board.NoOp, res.Outcome)
					assert.Empty(t, fake.updates)
					assert.Empty(t, cel.ids)
					return
				}
				assert.Equal(t, board.Applied, res.Outcome)
				assert.Len(t, fake.updates, 1)
				if to == task.StatusCompleted {
					assert.Len(t, cel.ids, 1)
				} else {
					assert.Empty(t, cel.ids)
				}
			})
		}
	}
}

func TestDropOnCardUsesTargetStatusNotDraggedTask(t *testing.T) {
	fake := newFakeRemote(
		mk("A", "Dragged", task.StatusInProgress),
		mk("Z", "Target", task.StatusCompleted),
	)
	b, cel := loadedBoard(t, fake)

	res, err := drag(t, b, "A", "Z")
	require.NoError(t, err)

	require.Len(t, fake.updates, 1)
	assert.Equal(t, task.StatusCompleted, *fake.updates[0].Patch.Status)
	assert.Equal(t, task.StatusCompleted, res.Task.Status)
	assert.Equal(t, []string{"A"}, cel.ids)
}

func TestDropOnCardInSameColumnIsNoOp(t *testing.T) {
	fake := newFakeRemote(
		mk("A", "Task A", task.StatusInProgress),
		mk("B", "Task B", task.StatusInProgress),
	)
	b, _ := loadedBoard(t, fake)

	res, err := drag(t, b, "A", "B")
	require.NoError(t, err)
	assert.Equal(t, board.NoOp, res.Outcome)
	assert.Empty(t, fake.updates)
}

func TestDropOutsideAborts(t *testing.T) {
	for _, target := range []string{"", "no-such-card", "Blocked"} {
		t.Run("target "+target, func(t *testing.T) {
			fake := newFakeRemote(mk("A", "Task A", task.StatusNotStarted))
			b, cel := loadedBoard(t, fake)

			res, err := drag(t, b, "A", target)
			require.NoError(t, err)
			assert.Equal(t, board.Aborted, res.Outcome)
			assert.Empty(t, fake.updates)
			assert.Empty(t, cel.ids)
			assert.Equal(t, board.Idle, b.Session().State)
		})
	}
}

func TestCancelLeavesSnapshotAndColumnsUnchanged(t *testing.T) {
	fake := newFakeRemote(
		mk("A", "Task A", task.StatusNotStarted),
		mk("B", "Task B", task.StatusInProgress),
		mk("C", "Task C", task.StatusCompleted),
	)
	b, cel := loadedBoard(t, fake)
	before := b.Snapshot()
	colsBefore, err := b.Columns(context.Background())
	require.NoError(t, err)

	require.True(t, b.DragStart("A"))
	b.DragOver(string(task.StatusCompleted))
	b.Cancel()

	assert.Equal(t, board.Idle, b.Session().State)
	assert.Equal(t, before.Tasks(), b.Snapshot().Tasks())
	colsAfter, err := b.Columns(context.Background())
	require.NoError(t, err)
	assert.Equal(t, colsBefore, colsAfter)
	assert.Empty(t, fake.updates)
	assert.Empty(t, cel.ids)
	assert.Equal(t, 1, fake.fetches)

	res, err := b.Drop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, board.Aborted, res.Outcome)
}

func TestDragStartRequiresTaskInSnapshot(t *testing.T) {
	fake := newFakeRemote(mk("A", "Task A", task.StatusNotStarted))
	b, _ := loadedBoard(t, fake)

	assert.False(t, b.DragStart("missing"))
	assert.Equal(t, board.Idle, b.Session().State)
}

func TestOnlyOneDragAtATime(t *testing.T) {
	fake := newFakeRemote(
		mk("A", "Task A", task.StatusNotStarted),
		mk("B", "Task B", task.StatusInProgress),
	)
	b, _ := loadedBoard(t, fake)

	require.True(t, b.DragStart("A"))
	assert.False(t, b.DragStart("B"))
	assert.Equal(t, "A", b.Session().ActiveID)

	res, err := b.Move(context.Background(), "B", string(task.StatusCompleted))
	require.NoError(t, err)
	assert.Equal(t, board.Aborted, res.Outcome)
	assert.Empty(t, fake.updates)
}

func TestDraggedTaskVanishedAborts(t *testing.T) {
	fake := newFakeRemote(
		mk("A", "Task A", task.StatusNotStarted),
		mk("B", "Task B", task.StatusInProgress),
	)
	b, _ := loadedBoard(t, fake)

	require.True(t, b.DragStart("A"))
	b.DragOver("B")
	fake.tasks = fake.tasks[1:]
	_, err := b.Refresh(context.Background())
	require.NoError(t, err)

	res, err := b.Drop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, board.Aborted, res.Outcome)
	assert.Empty(t, fake.updates)
}

func TestMutationFailureLeavesStateAlone(t *testing.T) {
	fake := newFakeRemote(mk("A", "Task A", task.StatusInProgress))
	fake.updateErr = errors.New("connection reset")
	b, cel := loadedBoard(t, fake)
	before := b.Snapshot().Tasks()

	_, err := drag(t, b, "A", string(task.StatusCompleted))

	var me tberrors.MutationError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "A", me.TaskID)
	assert.Equal(t, string(task.StatusCompleted), me.Attempted)
	assert.ErrorContains(t, err, "connection reset")
	assert.Len(t, fake.updates, 1)
	assert.Empty(t, cel.ids)
	assert.False(t, b.Stale())
	assert.Equal(t, before, b.Snapshot().Tasks())
	assert.Equal(t, board.Idle, b.Session().State)
	assert.Equal(t, 1, fake.fetches)
}

func TestRefreshFailureKeepsLastSnapshot(t *testing.T) {
	fake := newFakeRemote(mk("A", "Task A", task.StatusInProgress))
	b, _ := loadedBoard(t, fake)

	fake.fetchErr = errors.New("timeout")
	snap, err := b.Refresh(context.Background())

	assert.ErrorAs(t, err, &tberrors.FetchError{})
	assert.Equal(t, []string{"A"}, snap.IDs())
	assert.Equal(t, []string{"A"}, b.Snapshot().IDs())
}

func TestColumnsOnFailedFirstFetch(t *testing.T) {
	fake := newFakeRemote()
	fake.fetchErr = errors.New("timeout")
	b := board.New(fake, remote.Query{})

	cols, err := b.Columns(context.Background())
	require.Error(t, err)
	assert.Len(t, cols, 3)
	assert.Equal(t, 0, cols.Count())
}

func TestMoveLoadsSnapshot(t *testing.T) {
	fake := newFakeRemote(mk("A", "Task A", task.StatusNotStarted))
	cel := &celebrations{}
	b := board.New(fake, remote.Query{}, board.WithCelebrator(cel))

	res, err := b.Move(context.Background(), "A", string(task.StatusCompleted))
	require.NoError(t, err)
	assert.Equal(t, board.Applied, res.Outcome)
	assert.Equal(t, 1, fake.fetches)
	assert.Equal(t, []string{"A"}, cel.ids)

	res, err = b.Move(context.Background(), "missing", string(task.StatusCompleted))
	require.NoError(t, err)
	assert.Equal(t, board.Aborted, res.Outcome)
	assert.Equal(t, 2, fake.fetches)
}

func TestCreateEditDeleteInvalidate(t *testing.T) {
	fake := newFakeRemote(mk("A", "Task A", task.StatusNotStarted))
	b, _ := loadedBoard(t, fake)
	ctx := context.Background()

	created, err := b.Create(ctx, task.Draft{Title: "New"})
	require.NoError(t, err)
	assert.Equal(t, task.StatusNotStarted, created.Status)
	assert.True(t, b.Stale())

	tasks, _, err := b.List(ctx, board.Params{})
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
	assert.False(t, b.Stale())

	title := "Renamed"
	edited, err := b.Edit(ctx, "A", remote.Patch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", edited.Title)
	assert.True(t, b.Stale())

	_, _, err = b.List(ctx, board.Params{})
	require.NoError(t, err)
	require.NoError(t, b.Delete(ctx, "A"))
	assert.True(t, b.Stale())

	err = b.Delete(ctx, "A")
	assert.ErrorAs(t, err, &tberrors.TaskNotFoundError{})
}

func TestFailedCreateDoesNotInvalidate(t *testing.T) {
	fake := newFakeRemote()
	b, _ := loadedBoard(t, fake)

	_, err := b.Create(context.Background(), task.Draft{Title: " "})
	require.Error(t, err)
	assert.False(t, b.Stale())
	assert.Equal(t, 0, fake.creates)
}

func TestDragRefusedUntilRefreshAfterDrop(t *testing.T) {
	fake := newFakeRemote(mk("C", "Task C", task.StatusInProgress))
	b, cel := loadedBoard(t, fake)

	_, err := drag(t, b, "C", string(task.StatusCompleted))
	require.NoError(t, err)
	require.True(t, b.Stale())

	assert.False(t, b.DragStart("C"))
	assert.Equal(t, board.Idle, b.Session().State)

	_, err = b.Columns(context.Background())
	require.NoError(t, err)
	res, err := drag(t, b, "C", string(task.StatusCompleted))
	require.NoError(t, err)

	assert.Equal(t, board.NoOp, res.Outcome)
	assert.Len(t, fake.updates, 1)
	assert.Equal(t, []string{"C"}, cel.ids)
}

func TestUnreadableUpdateReplyInvalidates(t *testing.T) {
	fake := newFakeRemote(mk("A", "Task A", task.StatusInProgress))
	fake.updateErr = tberrors.UnreadableResponseError{Err: errors.New("bad body")}
	b, cel := loadedBoard(t, fake)

	_, err := drag(t, b, "A", string(task.StatusCompleted))

	var me tberrors.MutationError
	require.ErrorAs(t, err, &me)
	assert.ErrorAs(t, err, &tberrors.UnreadableResponseError{})
	assert.Empty(t, cel.ids)
	assert.True(t, b.Stale())
	assert.Equal(t, board.Idle, b.Session().State)

	_, err = b.Columns(context.Background())
	require.NoError(t, err)
	title := "Renamed"
	_, err = b.Edit(context.Background(), "A", remote.Patch{Title: &title})
	require.Error(t, err)
	assert.True(t, b.Stale())
}
