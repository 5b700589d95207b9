package worker

import (
	"context"
	"fmt"
)

// FileTask checks one file and keeps its outcome.
type FileTask[T any] struct {
	id     string
	path   string
	check  func(ctx context.Context, path string) (T, error)
	result T
}

// NewFileTask creates a task that runs check on path.
func NewFileTask[T any](path string, check func(ctx context.Context, path string) (T, error)) *FileTask[T] {
	return &FileTask[T]{
		id:    fmt.Sprintf("file:%s", path),
		path:  path,
		check: check,
	}
}

// ID returns the task identifier.
func (t *FileTask[T]) ID() string {
	return t.id
}

// Execute runs the check unless ctx is already done.
func (t *FileTask[T]) Execute(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	result, err := t.check(ctx, t.path)
	if err != nil {
		return err
	}
	t.result = result
	return nil
}

// Result returns the check outcome, the zero value until Execute succeeds.
func (t *FileTask[T]) Result() T {
	return t.result
}

// Path returns the file path being checked.
func (t *FileTask[T]) Path() string {
	return t.path
}
