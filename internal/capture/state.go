// Package capture reaches device capabilities the checklist can be enriched
// with: a still photo from a camera and a one-shot coordinate read. Every
// capability failure is reported as a value, never a crash.
package capture

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrUnsupported      = errors.New("capture: capability unavailable")
	ErrPermissionDenied = errors.New("capture: permission denied")
	ErrBusy             = errors.New("capture: device already in use")
	ErrNotLive          = errors.New("capture: no live camera feed")
	ErrInvalidImage     = errors.New("capture: frame is not a supported image")
)

// Status is the visible state of a one-shot capture.
type Status int

const (
	StatusNotRequested Status = iota
	StatusInProgress
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusNotRequested:
		return "not requested"
	case StatusInProgress:
		return "in progress"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Result tags the outcome of a capture operation.
type Result[T any] struct {
	Status Status
	Value  T
	Err    error
}

func InProgress[T any]() Result[T] { return Result[T]{Status: StatusInProgress} }

func Succeeded[T any](v T) Result[T] { return Result[T]{Status: StatusSucceeded, Value: v} }

func Failed[T any](err error) Result[T] { return Result[T]{Status: StatusFailed, Err: err} }

// Run executes fn and folds every outcome, including a panic inside a device
// driver, into a Succeeded or Failed result.
func Run[T any](ctx context.Context, fn func(context.Context) (T, error)) (res Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			res = Failed[T](fmt.Errorf("%w: %v", ErrUnsupported, r))
		}
	}()
	v, err := fn(ctx)
	if err != nil {
		return Failed[T](err)
	}
	return Succeeded(v)
}
