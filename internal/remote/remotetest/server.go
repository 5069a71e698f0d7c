// Package remotetest runs an in-process imitation of the REST task service
// for tests and demos.
package remotetest

import (
	"math"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

const naiveLayout = "2006-01-02T15:04:05.000000"

type record struct {
	ID          int
	Title       string
	Description *string
	Status      string
	Priority    string
	StartDate   *time.Time
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Server is a fake task service. IDs are integers, timestamps are naive
// ISO strings and errors carry a "detail" field, as in the real service.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	token       string
	records     []*record
	nextID      int
	clock       time.Time
	calls       map[string]int
	failUpdates int
	failFetches int
}

// New starts a fake service. An empty token disables authentication.
func New(token string) *Server {
	s := &Server{
		token:  token,
		nextID: 1,
		clock:  time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		calls:  make(map[string]int),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	api := e.Group("/api", s.count, s.auth)
	api.GET("/tasks/", s.list)
	api.POST("/tasks/", s.create)
	api.GET("/tasks/:id", s.get)
	api.PUT("/tasks/:id", s.update)
	api.DELETE("/tasks/:id", s.remove)
	api.GET("/analytics/kpis", s.kpis)

	s.Server = httptest.NewServer(e)
	return s
}

// BaseURL is the API root to hand to remote.NewClient.
func (s *Server) BaseURL() string {
	return s.URL + "/api"
}

// Seed stores a task directly and returns its id.
func (s *Server) Seed(title, status, priority string, due *time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.newRecord(title, status, priority)
	r.DueDate = due
	return strconv.Itoa(r.ID)
}

// Calls returns how many requests with the given method reached the service.
func (s *Server) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

// StatusOf returns the stored status of a task, or "" if it does not exist.
func (s *Server) StatusOf(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r := s.find(id); r != nil {
		return r.Status
	}
	return ""
}

// FailUpdates makes the next n PUT requests fail with a server error.
func (s *Server) FailUpdates(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failUpdates = n
}

// FailFetches makes the next n list requests fail with a server error.
func (s *Server) FailFetches(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failFetches = n
}

func (s *Server) count(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		s.calls[c.Request().Method]++
		s.mu.Unlock()
		return next(c)
	}
}

func (s *Server) auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.token != "" && c.Request().Header.Get(echo.HeaderAuthorization) != "Bearer "+s.token {
			return detail(c, http.StatusUnauthorized, "Could not validate credentials")
		}
		return next(c)
	}
}

type taskBody struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	StartDate   *string `json:"start_date"`
	DueDate     *string `json:"due_date"`
}

func (s *Server) list(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFetches > 0 {
		s.failFetches--
		return detail(c, http.StatusServiceUnavailable, "database unavailable")
	}

	page := intParam(c, "page", 1)
	size := intParam(c, "page_size", 10)
	if page < 1 || size < 1 || size > 100 {
		return validation(c, "page and page_size out of range")
	}
	search := strings.ToLower(c.QueryParam("search"))
	status := c.QueryParam("status")
	priority := c.QueryParam("priority")

	var matched []*record
	for _, r := range s.records {
		if search != "" && !strings.Contains(strings.ToLower(r.Title), search) &&
			(r.Description == nil || !strings.Contains(strings.ToLower(*r.Description), search)) {
			continue
		}
		if status != "" && r.Status != status {
			continue
		}
		if priority != "" && r.Priority != priority {
			continue
		}
		matched = append(matched, r)
	}
	sortRecords(matched, c.QueryParam("sort_by"), c.QueryParam("sort_order") != "asc")

	total := len(matched)
	totalPages := 1
	if total > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(size)))
	}
	start := min((page-1)*size, total)
	end := min(start+size, total)
	out := make([]map[string]any, 0, end-start)
	for _, r := range matched[start:end] {
		out = append(out, encode(r))
	}
	return c.JSON(http.StatusOK, map[string]any{
		"tasks":       out,
		"total":       total,
		"page":        page,
		"page_size":   size,
		"total_pages": totalPages,
	})
}

func (s *Server) create(c echo.Context) error {
	var body taskBody
	if err := c.Bind(&body); err != nil {
		return validation(c, "invalid body")
	}
	if body.Title == nil || strings.TrimSpace(*body.Title) == "" {
		return validation(c, "String should have at least 1 character")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	status, priority := "Not Started", "Medium"
	if body.Status != nil {
		status = *body.Status
	}
	if body.Priority != nil {
		priority = *body.Priority
	}
	r := s.newRecord(*body.Title, status, priority)
	r.Description = body.Description
	r.StartDate = parseOptional(body.StartDate)
	r.DueDate = parseOptional(body.DueDate)
	return c.JSON(http.StatusCreated, encode(r))
}

func (s *Server) get(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.find(c.Param("id"))
	if r == nil {
		return detail(c, http.StatusNotFound, "Task not found")
	}
	return c.JSON(http.StatusOK, encode(r))
}

func (s *Server) update(c echo.Context) error {
	var body taskBody
	if err := c.Bind(&body); err != nil {
		return validation(c, "invalid body")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpdates > 0 {
		s.failUpdates--
		return detail(c, http.StatusInternalServerError, "update failed")
	}
	r := s.find(c.Param("id"))
	if r == nil {
		return detail(c, http.StatusNotFound, "Task not found")
	}
	if body.Title != nil {
		r.Title = *body.Title
	}
	if body.Description != nil {
		r.Description = body.Description
	}
	if body.Status != nil {
		r.Status = *body.Status
	}
	if body.Priority != nil {
		r.Priority = *body.Priority
	}
	if body.StartDate != nil {
		r.StartDate = parseOptional(body.StartDate)
	}
	if body.DueDate != nil {
		r.DueDate = parseOptional(body.DueDate)
	}
	r.UpdatedAt = s.tick()
	return c.JSON(http.StatusOK, encode(r))
}

func (s *Server) remove(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.records {
		if strconv.Itoa(r.ID) == c.Param("id") {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return c.JSON(http.StatusOK, map[string]string{"message": "Task deleted successfully"})
		}
	}
	return detail(c, http.StatusNotFound, "Task not found")
}

func (s *Server) kpis(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byStatus := map[string]int{"Not Started": 0, "In Progress": 0, "Completed": 0}
	byPriority := map[string]int{"High": 0, "Medium": 0, "Low": 0}
	for _, r := range s.records {
		byStatus[r.Status]++
		byPriority[r.Priority]++
	}
	total := len(s.records)
	rate := 0.0
	if total > 0 {
		rate = float64(byStatus["Completed"]) / float64(total) * 100
	}
	return c.JSON(http.StatusOK, map[string]any{
		"total_tasks":             total,
		"completed_tasks":         byStatus["Completed"],
		"in_progress_tasks":       byStatus["In Progress"],
		"not_started_tasks":       byStatus["Not Started"],
		"completion_rate":         rate,
		"average_completion_days": 0,
		"overdue_tasks":           0,
		"tasks_by_priority":       byPriority,
		"tasks_by_status":         byStatus,
		"this_week_completed":     0,
		"on_time_completion_rate": 0,
	})
}

func (s *Server) newRecord(title, status, priority string) *record {
	now := s.tick()
	r := &record{
		ID:        s.nextID,
		Title:     title,
		Status:    status,
		Priority:  priority,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.nextID++
	s.records = append(s.records, r)
	return r
}

func (s *Server) find(id string) *record {
	for _, r := range s.records {
		if strconv.Itoa(r.ID) == id {
			return r
		}
	}
	return nil
}

func (s *Server) tick() time.Time {
	s.clock = s.clock.Add(time.Minute)
	return s.clock
}

func sortRecords(rs []*record, by string, desc bool) {
	rank := map[string]int{"Low": 0, "Medium": 1, "High": 2, "Not Started": 0, "In Progress": 1, "Completed": 2}
	less := func(a, b *record) int {
		switch by {
		case "updated_at":
			return a.UpdatedAt.Compare(b.UpdatedAt)
		case "due_date":
			switch {
			case a.DueDate == nil && b.DueDate == nil:
				return 0
			case a.DueDate == nil:
				return 1
			case b.DueDate == nil:
				return -1
			}
			return a.DueDate.Compare(*b.DueDate)
		case "priority":
			return rank[a.Priority] - rank[b.Priority]
		case "status":
			return rank[a.Status] - rank[b.Status]
		case "title":
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}
	sort.SliceStable(rs, func(i, j int) bool {
		c := less(rs[i], rs[j])
		if desc {
			c = -c
		}
		return c < 0
	})
}

func encode(r *record) map[string]any {
	return map[string]any{
		"id":          r.ID,
		"title":       r.Title,
		"description": r.Description,
		"status":      r.Status,
		"priority":    r.Priority,
		"start_date":  formatOptional(r.StartDate),
		"due_date":    formatOptional(r.DueDate),
		"created_at":  r.CreatedAt.Format(naiveLayout),
		"updated_at":  r.UpdatedAt.Format(naiveLayout),
		"user_id":     1,
	}
}

func formatOptional(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(naiveLayout)
}

func parseOptional(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, *s)
	if err != nil {
		return nil
	}
	return &t
}

func intParam(c echo.Context, name string, def int) int {
	v := c.QueryParam(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}

func detail(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]string{"detail": msg})
}

func validation(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnprocessableEntity, map[string]any{
		"detail": []map[string]string{{"msg": msg}},
	})
}
