package context

import (
	"context"

	"github.com/stephenafamo/bob"
)

type bobContextKey struct{}

func NewContext(ctx context.Context, executor bob.Executor) context.Context {
	return context.WithValue(ctx, bobContextKey{}, executor)
}

// FromContext returns the executor of a running transaction, if any.
func FromContext(ctx context.Context) bob.Executor {
	if ctx == nil {
		return nil
	}
	if executor, ok := ctx.Value(bobContextKey{}).(bob.Executor); ok {
		return executor
	}
	return nil
}
