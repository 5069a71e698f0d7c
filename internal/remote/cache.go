package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	tberrors "github.com/abatilo/taskboard/internal/errors"
	"github.com/abatilo/taskboard/internal/task"
)

// Cache wraps a Collection with a Redis-backed page cache. Pages are keyed
// by a generation counter; every acknowledged mutation bumps the generation
// so older pages are never served again. If a generation bump fails the
// cache stops serving reads for the rest of its life.
type Cache struct {
	base      Collection
	redis     *redis.Client
	ttl       time.Duration
	namespace string
	log       log.FieldLogger
	bypass    atomic.Bool
}

// NewCache creates a caching Collection using the provided Redis client and TTL.
func NewCache(base Collection, client *redis.Client, ttl time.Duration, namespace string) *Cache {
	if base == nil {
		panic("remote.NewCache: base collection is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	if namespace == "" {
		namespace = "taskboard"
	}
	discard := log.New()
	discard.SetOutput(io.Discard)
	return &Cache{
		base:      base,
		redis:     client,
		ttl:       ttl,
		namespace: namespace,
		log:       discard,
	}
}

// SetLogger replaces the cache logger.
func (c *Cache) SetLogger(l log.FieldLogger) {
	c.log = l
}

func (c *Cache) FetchTasks(ctx context.Context, q Query) (Page, error) {
	gen, ok := c.generation(ctx)
	if !ok {
		return c.base.FetchTasks(ctx, q)
	}
	key := c.pageKey(gen, q)
	if page, hit := c.loadPage(ctx, key); hit {
		c.log.WithField("key", key).Debug("page cache hit")
		return page, nil
	}

	page, err := c.base.FetchTasks(ctx, q)
	if err != nil {
		return Page{}, err
	}
	c.storePage(ctx, key, page)
	return page, nil
}

func (c *Cache) GetTask(ctx context.Context, id string) (task.Task, error) {
	return c.base.GetTask(ctx, id)
}

func (c *Cache) CreateTask(ctx context.Context, d task.Draft) (task.Task, error) {
	t, err := c.base.CreateTask(ctx, d)
	if err != nil {
		c.invalidateIfApplied(ctx, err)
		return task.Task{}, err
	}
	c.Invalidate(ctx)
	return t, nil
}

func (c *Cache) UpdateTask(ctx context.Context, id string, p Patch) (task.Task, error) {
	t, err := c.base.UpdateTask(ctx, id, p)
	if err != nil {
		c.invalidateIfApplied(ctx, err)
		return task.Task{}, err
	}
	c.Invalidate(ctx)
	return t, nil
}

func (c *Cache) DeleteTask(ctx context.Context, id string) error {
	if err := c.base.DeleteTask(ctx, id); err != nil {
		return err
	}
	c.Invalidate(ctx)
	return nil
}

// FetchKPIs passes through; analytics are never cached.
func (c *Cache) FetchKPIs(ctx context.Context) (KPIs, error) {
	src, ok := c.base.(KPISource)
	if !ok {
		return KPIs{}, tberrors.UnsupportedError{Operation: "analytics", Backend: "cached"}
	}
	return src.FetchKPIs(ctx)
}

// Invalidate retires every cached page.
func (c *Cache) Invalidate(ctx context.Context) {
	if c.redis == nil {
		return
	}
	if err := c.redis.Incr(ctx, c.generationKey()).Err(); err != nil {
		c.bypass.Store(true)
		c.log.WithError(err).Warn("page cache invalidation failed, reading through from now on")
	}
}

func (c *Cache) invalidateIfApplied(ctx context.Context, err error) {
	var unreadable tberrors.UnreadableResponseError
	if errors.As(err, &unreadable) {
		c.Invalidate(ctx)
	}
}

// generation returns false when the cache is unusable and reads should go
// straight to the base collection.
func (c *Cache) generation(ctx context.Context) (int64, bool) {
	if c.redis == nil || c.ttl == 0 || c.bypass.Load() {
		return 0, false
	}
	v, err := c.redis.Get(ctx, c.generationKey()).Result()
	if err == redis.Nil {
		return 0, true
	}
	if err != nil {
		return 0, false
	}
	gen, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return gen, true
}

func (c *Cache) loadPage(ctx context.Context, key string) (Page, bool) {
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			// On redis errors fall back to the backing collection without failing.
			_ = c.redis.Del(ctx, key).Err()
		}
		return Page{}, false
	}
	var l listJSON
	if err := sonic.Unmarshal(data, &l); err != nil {
		_ = c.redis.Del(ctx, key).Err()
		return Page{}, false
	}
	page, err := l.toPage()
	if err != nil {
		_ = c.redis.Del(ctx, key).Err()
		return Page{}, false
	}
	return page, true
}

func (c *Cache) storePage(ctx context.Context, key string, page Page) {
	data, err := sonic.Marshal(fromPage(page))
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.ttl).Err()
}

func (c *Cache) generationKey() string {
	return c.namespace + ":generation"
}

func (c *Cache) pageKey(gen int64, q Query) string {
	return fmt.Sprintf("%s:tasks:%d:%s", c.namespace, gen, q.Values().Encode())
}
