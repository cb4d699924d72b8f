package application

import "context"

// UnitOfWork scopes a function to one storage transaction via context
// propagation. The audit write in the publish pipeline runs inside it.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// NoopUoW runs the function without a transaction; used by in-memory tests.
type NoopUoW struct{}

func (NoopUoW) Do(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }
