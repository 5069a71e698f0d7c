package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	tberrors "github.com/abatilo/taskboard/internal/errors"
	"github.com/abatilo/taskboard/internal/task"
)

const defaultTimeout = 15 * time.Second

// Client talks to the REST task service.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     log.FieldLogger
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets the logger for request tracing.
func WithLogger(l log.FieldLogger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient creates a client for the service rooted at baseURL, e.g.
// "http://localhost:8000/api".
func NewClient(baseURL string, opts ...Option) *Client {
	discard := log.New()
	discard.SetOutput(io.Discard)
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		log:     discard,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchTasks reads one page of the collection.
func (c *Client) FetchTasks(ctx context.Context, q Query) (Page, error) {
	var out listJSON
	if err := c.do(ctx, http.MethodGet, "/tasks/", q.Values(), nil, &out); err != nil {
		return Page{}, err
	}
	return out.toPage()
}

// GetTask reads a single task.
func (c *Client) GetTask(ctx context.Context, id string) (task.Task, error) {
	var out taskJSON
	if err := c.do(ctx, http.MethodGet, taskPath(id), nil, nil, &out); err != nil {
		return task.Task{}, notFound(err, id)
	}
	return out.toTask()
}

// CreateTask asks the service to create a task and returns the stored copy.
func (c *Client) CreateTask(ctx context.Context, d task.Draft) (task.Task, error) {
	if err := d.Validate(); err != nil {
		return task.Task{}, err
	}
	var out taskJSON
	if err := c.do(ctx, http.MethodPost, "/tasks/", nil, fromDraft(d), &out); err != nil {
		return task.Task{}, err
	}
	return acknowledged(out)
}

// UpdateTask sends a partial update and returns the acknowledged task.
func (c *Client) UpdateTask(ctx context.Context, id string, p Patch) (task.Task, error) {
	if err := p.Validate(); err != nil {
		return task.Task{}, err
	}
	var out taskJSON
	if err := c.do(ctx, http.MethodPut, taskPath(id), nil, fromPatch(p), &out); err != nil {
		return task.Task{}, notFound(err, id)
	}
	return acknowledged(out)
}

// acknowledged decodes the task returned by a mutation the service already
// applied.
func acknowledged(out taskJSON) (task.Task, error) {
	t, err := out.toTask()
	if err != nil {
		return task.Task{}, tberrors.UnreadableResponseError{Err: err}
	}
	return t, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return notFound(c.do(ctx, http.MethodDelete, taskPath(id), nil, nil, nil), id)
}

// FetchKPIs reads the analytics computed by the service.
func (c *Client) FetchKPIs(ctx context.Context) (KPIs, error) {
	var out KPIs
	if err := c.do(ctx, http.MethodGet, "/analytics/kpis", nil, nil, &out); err != nil {
		return KPIs{}, err
	}
	return out, nil
}

func taskPath(id string) string {
	return "/tasks/" + url.PathEscape(id)
}

func notFound(err error, id string) error {
	var se tberrors.StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return tberrors.TaskNotFoundError{ID: id}
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := sonic.ConfigStd.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("Idempotency-Key", uuid.NewString())
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	entry := c.log.WithFields(log.Fields{"method": method, "path": path, "request_id": requestID})
	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		entry.WithError(err).Debug("request failed")
		return err
	}
	defer resp.Body.Close()
	entry.WithFields(log.Fields{"status": resp.StatusCode, "elapsed": time.Since(started)}).Debug("request done")

	if resp.StatusCode == http.StatusUnauthorized {
		return tberrors.UnauthorizedError{}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e errorJSON
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if len(data) > 0 {
			_ = sonic.ConfigStd.Unmarshal(data, &e)
		}
		return tberrors.StatusError{Code: resp.StatusCode, Detail: e.message()}
	}
	if out == nil {
		return nil
	}
	if err := sonic.ConfigStd.NewDecoder(resp.Body).Decode(out); err != nil {
		return tberrors.UnreadableResponseError{Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
