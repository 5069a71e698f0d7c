package board

import (
	"cmp"
	"slices"
	"strings"

	"github.com/abatilo/taskboard/internal/remote"
	"github.com/abatilo/taskboard/internal/task"
)

// SortKey names the field the list is ordered by.
type SortKey string

const (
	SortCreatedAt SortKey = "created_at"
	SortUpdatedAt SortKey = "updated_at"
	SortDueDate   SortKey = "due_date"
	SortPriority  SortKey = "priority"
	SortStatus    SortKey = "status"
	SortTitle     SortKey = "title"
)

// Order is the sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Params are the caller-owned view parameters. The zero value means no
// filters and the default sort (created_at, descending).
type Params struct {
	Search   string
	Status   task.Status
	Priority task.Priority
	Sort     SortKey
	Order    Order
}

// ParseParams maps raw user input to Params. Unknown sort keys fall back to
// created_at, unknown directions to desc and unknown status or priority
// filters to no filter.
func ParseParams(search, status, priority, sort, order string) Params {
	p := Params{
		Search: strings.TrimSpace(search),
		Sort:   SortCreatedAt,
		Order:  Desc,
	}
	if s, ok := task.ParseStatus(status); ok {
		p.Status = s
	}
	if pr, ok := task.ParsePriority(priority); ok {
		p.Priority = pr
	}
	switch k := SortKey(strings.ToLower(strings.TrimSpace(sort))); k {
	case SortCreatedAt, SortUpdatedAt, SortDueDate, SortPriority, SortStatus, SortTitle:
		p.Sort = k
	}
	if Order(strings.ToLower(strings.TrimSpace(order))) == Asc {
		p.Order = Asc
	}
	return p
}

func (p Params) normalized() Params {
	if p.Sort == "" {
		p.Sort = SortCreatedAt
	}
	if p.Order != Asc {
		p.Order = Desc
	}
	return p
}

// Query builds the remote query for one page under these parameters.
func (p Params) Query(page, size int) remote.Query {
	n := p.normalized()
	if size > remote.MaxPageSize {
		size = remote.MaxPageSize
	}
	return remote.Query{
		Page:      max(page, 1),
		PageSize:  size,
		Search:    n.Search,
		Status:    n.Status,
		Priority:  n.Priority,
		SortBy:    string(n.Sort),
		SortOrder: string(n.Order),
	}
}

// Project filters and sorts the snapshot for the list view. It is pure: the
// same snapshot and params always give the same result. The sort is stable,
// so equal keys keep snapshot order in both directions.
func Project(snap Snapshot, p Params) []task.Task {
	p = p.normalized()
	search := strings.ToLower(strings.TrimSpace(p.Search))

	out := make([]task.Task, 0, snap.Len())
	for _, t := range snap.tasks {
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Title), search) &&
			!strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}
		if p.Status != "" && t.Status != p.Status {
			continue
		}
		if p.Priority != "" && t.Priority != p.Priority {
			continue
		}
		out = append(out, cloneTask(t))
	}

	compare := comparator(p.Sort)
	slices.SortStableFunc(out, func(a, b task.Task) int {
		if p.Order == Desc {
			return -compare(a, b)
		}
		return compare(a, b)
	})
	return out
}

func comparator(key SortKey) func(a, b task.Task) int {
	switch key {
	case SortUpdatedAt:
		return func(a, b task.Task) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	case SortDueDate:
		return compareDue
	case SortPriority:
		return func(a, b task.Task) int {
			return cmp.Compare(task.PriorityOrder(a.Priority), task.PriorityOrder(b.Priority))
		}
	case SortStatus:
		return func(a, b task.Task) int {
			return cmp.Compare(task.StatusOrder(a.Status), task.StatusOrder(b.Status))
		}
	case SortTitle:
		return func(a, b task.Task) int {
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
	default:
		return func(a, b task.Task) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}
}

// compareDue orders tasks without a due date after every dated task.
func compareDue(a, b task.Task) int {
	switch {
	case a.DueDate == nil && b.DueDate == nil:
		return 0
	case a.DueDate == nil:
		return 1
	case b.DueDate == nil:
		return -1
	default:
		return a.DueDate.Compare(*b.DueDate)
	}
}
