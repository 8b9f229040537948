package backend

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
)

// Result is the outcome of a control API call: either a response or an error.
// Calls never panic or return a bare error for an ordinary failure response.
type Result[T any] struct {
	Response T
	Err      error
}

func Ok[T any](response T) Result[T] {
	return Result[T]{Response: response}
}

func Fail[T any](err error) Result[T] {
	if err == nil {
		err = errors.New("unknown control api failure")
	}
	return Result[T]{Err: err}
}

// Failed reports whether the call failed.
func (r Result[T]) Failed() bool {
	return r.Err != nil
}

// Unwrap returns the response and error as a pair.
func (r Result[T]) Unwrap() (T, error) {
	return r.Response, r.Err
}

// Delayed resolves factory() after d without performing any I/O.
// A context cancelled before d elapses resolves to its error.
func Delayed[T any](ctx context.Context, factory func() Result[T], d time.Duration) Result[T] {
	if d <= 0 {
		if err := ctx.Err(); err != nil {
			return Fail[T](errors.WithStack(err))
		}
		return factory()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return Fail[T](errors.WithStack(ctx.Err()))
	case <-timer.C:
		return factory()
	}
}
