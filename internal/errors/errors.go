//nolint:revive // Package name intentionally matches stdlib for domain clarity
package errors

import "fmt"

// TaskNotFoundError indicates the task ID doesn't match any task.
type TaskNotFoundError struct {
	ID string
}

func (e TaskNotFoundError) Error() string {
	return fmt.Sprintf("task not found: %s", e.ID)
}

// InvalidStatusError indicates a status value that is not one of the three columns.
type InvalidStatusError struct {
	Value string
}

func (e InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid status: %s (valid: not-started, in-progress, completed)", e.Value)
}

// InvalidPriorityError indicates an invalid priority value.
type InvalidPriorityError struct {
	Value string
}

func (e InvalidPriorityError) Error() string {
	return fmt.Sprintf("invalid priority: %s (valid: low, medium, high)", e.Value)
}

// FetchError indicates the remote task collection could not be read. The
// last good snapshot stays in place.
type FetchError struct {
	Err error
}

func (e FetchError) Error() string {
	return fmt.Sprintf("fetch tasks: %v", e.Err)
}

func (e FetchError) Unwrap() error {
	return e.Err
}

// MutationError indicates a status change could not be confirmed by the
// remote service.
type MutationError struct {
	TaskID    string
	Attempted string
	Err       error
}

func (e MutationError) Error() string {
	return fmt.Sprintf("move task %s to '%s': %v", e.TaskID, e.Attempted, e.Err)
}

func (e MutationError) Unwrap() error {
	return e.Err
}

// UnreadableResponseError indicates the remote service accepted a request
// but its reply could not be decoded. The change may have been applied.
type UnreadableResponseError struct {
	Err error
}

func (e UnreadableResponseError) Error() string {
	return fmt.Sprintf("request accepted but the response could not be read: %v", e.Err)
}

func (e UnreadableResponseError) Unwrap() error {
	return e.Err
}

// StatusError is a non-success HTTP response from the remote service.
type StatusError struct {
	Code   int
	Detail string
}

func (e StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("remote returned status %d", e.Code)
	}
	return fmt.Sprintf("remote returned status %d: %s", e.Code, e.Detail)
}

// UnauthorizedError indicates the API token is missing or rejected.
type UnauthorizedError struct{}

func (e UnauthorizedError) Error() string {
	return "not authorized: set api.token or TASKBOARD_API_TOKEN"
}

// UnsupportedError indicates the configured backend cannot serve an operation.
type UnsupportedError struct {
	Operation string
	Backend   string
}

func (e UnsupportedError) Error() string {
	return fmt.Sprintf("%s is not supported by the %s backend", e.Operation, e.Backend)
}

// NotInitializedError indicates the offline task directory doesn't exist.
type NotInitializedError struct {
	Path string
}

func (e NotInitializedError) Error() string {
	return fmt.Sprintf("task directory %s not initialized: run 'taskboard init' first", e.Path)
}

// AlreadyInitializedError indicates the offline task directory already exists.
type AlreadyInitializedError struct {
	Path string
}

func (e AlreadyInitializedError) Error() string {
	return fmt.Sprintf("task directory %s already initialized", e.Path)
}

// NotInRepoError indicates no enclosing git repository was found.
type NotInRepoError struct{}

func (e NotInRepoError) Error() string {
	return "not in a git repository"
}

// InvalidViewModeError indicates a view mode other than list, board or analytics.
type InvalidViewModeError struct {
	Value string
}

func (e InvalidViewModeError) Error() string {
	return fmt.Sprintf("invalid view mode: %s (valid: list, board, analytics)", e.Value)
}
