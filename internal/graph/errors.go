package graph

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic checking via errors.Is().
var (
	ErrEmptyInput        = errors.New("empty input")
	ErrInvalidRecord     = errors.New("invalid record")
	ErrDuplicateTask     = errors.New("duplicate task")
	ErrMissingDependency = errors.New("missing dependency")
)

// RecordError reports a record that failed field-count or duration validation.
type RecordError struct {
	Where string // "line 3" for text input, "tasks[2]" for JSON input
	Msg   string
}

func (e *RecordError) Error() string {
	if e.Where == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidRecord, e.Msg)
	}
	return fmt.Sprintf("%s at %s: %s", ErrInvalidRecord, e.Where, e.Msg)
}

func (e *RecordError) Unwrap() error { return ErrInvalidRecord }

// TaskError names the task identifier behind a duplicate or missing-dependency failure.
type TaskError struct {
	Kind   error // ErrDuplicateTask or ErrMissingDependency
	TaskID string
	Owner  string // task that declared the missing dependency, if any
}

func (e *TaskError) Error() string {
	if e.Owner != "" {
		return fmt.Sprintf("%s: %q (required by %q)", e.Kind, e.TaskID, e.Owner)
	}
	return fmt.Sprintf("%s: %q", e.Kind, e.TaskID)
}

func (e *TaskError) Unwrap() error { return e.Kind }
