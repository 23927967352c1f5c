package api

import (
	"context"

	"github.com/chebyrash/promise"
)

// Call is the pending result of an API operation.
//
// Await blocks for the outcome; Done registers an error-first callback.
// Both observe the same underlying request. On failure the operation's
// fallback value is returned with the error (an empty slice for list
// endpoints, nil for single objects).
type Call[T any] struct {
	p        *promise.Promise[T]
	fallback T
}

// newCall runs fn in its own goroutine.
func newCall[T any](fn func() (T, error), fallback T) *Call[T] {
	return &Call[T]{
		p: promise.New(func(resolve func(T), reject func(error)) {
			v, err := fn()
			if err != nil {
				reject(err)
				return
			}
			resolve(v)
		}),
		fallback: fallback,
	}
}

// Await waits for the call to finish or ctx to end.
func (c *Call[T]) Await(ctx context.Context) (T, error) {
	v, err := c.p.Await(ctx)
	if err != nil {
		return c.fallback, err
	}
	return *v, nil
}

// Done runs fn once the call settles. fn runs on its own goroutine.
func (c *Call[T]) Done(fn func(T, error)) {
	go func() {
		fn(c.Await(context.Background()))
	}()
}
