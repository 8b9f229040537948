package logger

import (
	"context"
	"log/slog"
)

type (
	handleFunc func(context.Context, slog.Record) error
	middleware func(handleFunc) handleFunc
)

// chainHandlers runs every record through the middlewares before the
// wrapped handler. The chain is composed once per handler.
type chainHandlers struct {
	next        slog.Handler
	middlewares []middleware
	handle      handleFunc
}

func newChainHandlers(next slog.Handler, middlewares ...middleware) *chainHandlers {
	handle := next.Handle
	for i := len(middlewares) - 1; i >= 0; i-- {
		handle = middlewares[i](handle)
	}
	return &chainHandlers{
		next:        next,
		middlewares: middlewares,
		handle:      handle,
	}
}

func (c *chainHandlers) Enabled(ctx context.Context, level slog.Level) bool {
	return c.next.Enabled(ctx, level)
}

func (c *chainHandlers) Handle(ctx context.Context, rec slog.Record) error {
	return c.handle(ctx, rec)
}

func (c *chainHandlers) WithGroup(group string) slog.Handler {
	if group == "" {
		return c
	}
	return newChainHandlers(c.next.WithGroup(group), c.middlewares...)
}

func (c *chainHandlers) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return c
	}
	return newChainHandlers(c.next.WithAttrs(attrs), c.middlewares...)
}
