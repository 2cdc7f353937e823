package cpm

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoRootTask         = errors.New("no task without dependencies")
	ErrNoLeafTask         = errors.New("no task without dependents")
	ErrCircularDependency = errors.New("circular dependency")
)

// CycleError reports a task whose earliest start could not be resolved.
type CycleError struct {
	TaskID string
	Cycle  []string // one offending cycle, each task depending on the next
}

func (e *CycleError) Error() string {
	msg := fmt.Sprintf("%s detected around %s", ErrCircularDependency, e.TaskID)
	if len(e.Cycle) > 0 {
		msg += " (" + strings.Join(e.Cycle, " -> ") + ")"
	}
	return msg
}

func (e *CycleError) Unwrap() error { return ErrCircularDependency }

// NoRootError reports a graph where every task has a dependency. Such a
// graph always contains a cycle, so it matches both ErrNoRootTask and
// ErrCircularDependency.
type NoRootError struct {
	Cycle []string
}

func (e *NoRootError) Error() string {
	if len(e.Cycle) == 0 {
		return ErrNoRootTask.Error()
	}
	return fmt.Sprintf("%s: %s %s", ErrNoRootTask, ErrCircularDependency, strings.Join(e.Cycle, " -> "))
}

func (e *NoRootError) Unwrap() []error {
	return []error{ErrNoRootTask, ErrCircularDependency}
}
