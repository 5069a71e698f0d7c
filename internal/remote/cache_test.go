package remote_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tberrors "github.com/abatilo/taskboard/internal/errors"
	"github.com/abatilo/taskboard/internal/remote"
	"github.com/abatilo/taskboard/internal/task"
)

type countingCollection struct {
	tasks   []task.Task
	fetches int
	updates int
	failing bool
	// unreadable applies updates but reports the reply as undecodable.
	unreadable bool
}

func (c *countingCollection) FetchTasks(context.Context, remote.Query) (remote.Page, error) {
	c.fetches++
	if c.failing {
		return remote.Page{}, errors.New("offline")
	}
	out := make([]task.Task, len(c.tasks))
	copy(out, c.tasks)
	return remote.Page{Tasks: out, Total: len(out), Page: 1, PageSize: 100, TotalPages: 1}, nil
}

func (c *countingCollection) GetTask(_ context.Context, id string) (task.Task, error) {
	for _, t := range c.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return task.Task{}, tberrors.TaskNotFoundError{ID: id}
}

func (c *countingCollection) CreateTask(_ context.Context, d task.Draft) (task.Task, error) {
	t := task.Task{ID: "new", Title: d.Title, Status: task.StatusNotStarted, Priority: task.PriorityMedium}
	c.tasks = append(c.tasks, t)
	return t, nil
}

func (c *countingCollection) UpdateTask(_ context.Context, id string, p remote.Patch) (task.Task, error) {
	c.updates++
	for i, t := range c.tasks {
		if t.ID == id {
			c.tasks[i] = p.Apply(t, time.Now())
			if c.unreadable {
				return task.Task{}, tberrors.UnreadableResponseError{Err: errors.New("bad body")}
			}
			return c.tasks[i], nil
		}
	}
	return task.Task{}, tberrors.TaskNotFoundError{ID: id}
}

func (c *countingCollection) DeleteTask(context.Context, string) error {
	return nil
}

func newCache(t *testing.T, base remote.Collection) (*remote.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return remote.NewCache(base, client, time.Minute, "test"), mr
}

func seededCollection() *countingCollection {
	created := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	return &countingCollection{tasks: []task.Task{
		{ID: "1", Title: "Write docs", Status: task.StatusNotStarted, Priority: task.PriorityHigh, CreatedAt: created, UpdatedAt: created},
		{ID: "2", Title: "Fix login", Status: task.StatusInProgress, Priority: task.PriorityLow, CreatedAt: created, UpdatedAt: created},
	}}
}

func TestCacheServesRepeatedFetchFromRedis(t *testing.T) {
	base := seededCollection()
	cache, _ := newCache(t, base)
	ctx := context.Background()
	q := remote.Query{PageSize: 100}

	first, err := cache.FetchTasks(ctx, q)
	require.NoError(t, err)
	second, err := cache.FetchTasks(ctx, q)
	require.NoError(t, err)

	assert.Equal(t, 1, base.fetches)
	require.Len(t, second.Tasks, 2)
	assert.Equal(t, first.Tasks[0].ID, second.Tasks[0].ID)
	assert.Equal(t, task.StatusInProgress, second.Tasks[1].Status)
	assert.True(t, first.Tasks[0].CreatedAt.Equal(second.Tasks[0].CreatedAt))
}

func TestCacheKeysByQuery(t *testing.T) {
	base := seededCollection()
	cache, _ := newCache(t, base)
	ctx := context.Background()

	_, err := cache.FetchTasks(ctx, remote.Query{PageSize: 100})
	require.NoError(t, err)
	_, err = cache.FetchTasks(ctx, remote.Query{PageSize: 12})
	require.NoError(t, err)

	assert.Equal(t, 2, base.fetches)
}

func TestCacheUpdateInvalidates(t *testing.T) {
	base := seededCollection()
	cache, mr := newCache(t, base)
	ctx := context.Background()
	q := remote.Query{PageSize: 100}

	_, err := cache.FetchTasks(ctx, q)
	require.NoError(t, err)

	_, err = cache.UpdateTask(ctx, "1", remote.StatusPatch(task.StatusCompleted))
	require.NoError(t, err)

	gen, err := mr.Get("test:generation")
	require.NoError(t, err)
	assert.Equal(t, "1", gen)

	page, err := cache.FetchTasks(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 2, base.fetches)
	assert.Equal(t, task.StatusCompleted, page.Tasks[0].Status)
}

func TestCacheFailedUpdateKeepsPages(t *testing.T) {
	base := seededCollection()
	cache, mr := newCache(t, base)
	ctx := context.Background()

	_, err := cache.FetchTasks(ctx, remote.Query{})
	require.NoError(t, err)
	_, err = cache.UpdateTask(ctx, "missing", remote.StatusPatch(task.StatusCompleted))
	require.Error(t, err)

	assert.False(t, mr.Exists("test:generation"))
	_, err = cache.FetchTasks(ctx, remote.Query{})
	require.NoError(t, err)
	assert.Equal(t, 1, base.fetches)
}

func TestCacheDoesNotStoreFailures(t *testing.T) {
	base := seededCollection()
	base.failing = true
	cache, _ := newCache(t, base)
	ctx := context.Background()

	_, err := cache.FetchTasks(ctx, remote.Query{})
	require.Error(t, err)

	base.failing = false
	page, err := cache.FetchTasks(ctx, remote.Query{})
	require.NoError(t, err)
	assert.Len(t, page.Tasks, 2)
	assert.Equal(t, 2, base.fetches)
}

func TestCacheFallsBackWhenRedisDown(t *testing.T) {
	base := seededCollection()
	cache, mr := newCache(t, base)
	mr.Close()

	page, err := cache.FetchTasks(context.Background(), remote.Query{})
	require.NoError(t, err)
	assert.Len(t, page.Tasks, 2)
	assert.Equal(t, 1, base.fetches)
}

func TestCacheWithoutRedis(t *testing.T) {
	base := seededCollection()
	cache := remote.NewCache(base, nil, time.Minute, "")
	ctx := context.Background()

	_, err := cache.FetchTasks(ctx, remote.Query{})
	require.NoError(t, err)
	_, err = cache.FetchTasks(ctx, remote.Query{})
	require.NoError(t, err)
	assert.Equal(t, 2, base.fetches)

	_, err = cache.CreateTask(ctx, task.Draft{Title: "x"})
	require.NoError(t, err)
}

func TestCacheKPIsUnsupportedForPlainCollection(t *testing.T) {
	cache := remote.NewCache(seededCollection(), nil, 0, "")
	_, err := cache.FetchKPIs(context.Background())
	assert.ErrorAs(t, err, &tberrors.UnsupportedError{})
}

func TestCacheReadsThroughAfterFailedInvalidation(t *testing.T) {
	base := seededCollection()
	cache, mr := newCache(t, base)
	ctx := context.Background()
	q := remote.Query{PageSize: 100}

	_, err := cache.FetchTasks(ctx, q)
	require.NoError(t, err)

	mr.SetError("READONLY replica")
	_, err = cache.UpdateTask(ctx, "1", remote.StatusPatch(task.StatusCompleted))
	require.NoError(t, err)
	mr.SetError("")

	page, err := cache.FetchTasks(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 2, base.fetches)
	assert.Equal(t, task.StatusCompleted, page.Tasks[0].Status)

	_, err = cache.FetchTasks(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 3, base.fetches)
}

func TestCacheInvalidatesOnUnreadableReply(t *testing.T) {
	base := seededCollection()
	cache, mr := newCache(t, base)
	ctx := context.Background()
	q := remote.Query{PageSize: 100}

	_, err := cache.FetchTasks(ctx, q)
	require.NoError(t, err)

	base.unreadable = true
	_, err = cache.UpdateTask(ctx, "1", remote.StatusPatch(task.StatusCompleted))
	require.ErrorAs(t, err, &tberrors.UnreadableResponseError{})

	gen, err := mr.Get("test:generation")
	require.NoError(t, err)
	assert.Equal(t, "1", gen)

	page, err := cache.FetchTasks(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 2, base.fetches)
	assert.Equal(t, task.StatusCompleted, page.Tasks[0].Status)
}
