package trace

import "context"

type ctxKey struct{}

type parentKey struct{}

// FromContext returns the Tracer attached to ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx == nil {
		return Nop
	}
	if t, ok := ctx.Value(ctxKey{}).(Tracer); ok {
		return t
	}
	return Nop
}

// WithTracer attaches t to ctx. A nil t attaches Nop.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, ctxKey{}, t)
}

// WithParent records span as the parent of spans begun from the returned context.
func WithParent(ctx context.Context, span *Span) context.Context {
	if span.ID() == 0 {
		return ctx
	}
	return context.WithValue(ctx, parentKey{}, span.ID())
}

// ParentID returns the span recorded by WithParent, or 0.
func ParentID(ctx context.Context) uint64 {
	if ctx == nil {
		return 0
	}
	id, _ := ctx.Value(parentKey{}).(uint64)
	return id
}

// BeginFromContext starts a span on ctx's tracer under ctx's parent and
// returns a context carrying it as the new parent.
func BeginFromContext(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	span := Begin(FromContext(ctx), scope, name, ParentID(ctx))
	return WithParent(ctx, span), span
}
