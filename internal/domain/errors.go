package domain

import "fmt"

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// StateConflictError represents a lifecycle transition attempted from a
// state that has no edge for the requested action.
type StateConflictError struct {
	State  AnnouncementState
	Action Action
}

func (e StateConflictError) Error() string {
	return fmt.Sprintf("cannot %s an announcement in the %s state", e.Action, e.State)
}

func (e StateConflictError) Is(target error) bool {
	_, ok := target.(StateConflictError)
	if ok {
		return true
	}
	_, ok = target.(*StateConflictError)
	return ok
}

var ErrStateConflict = StateConflictError{}

// PermissionError represents a denial from the authorization guard,
// naming the scope whose absence caused it.
type PermissionError struct {
	Scope string
}

func (e PermissionError) Error() string {
	return fmt.Sprintf("missing `%s` scope", e.Scope)
}

func (e PermissionError) Is(target error) bool {
	_, ok := target.(PermissionError)
	if ok {
		return true
	}
	_, ok = target.(*PermissionError)
	return ok
}

var ErrPermission = PermissionError{}
