// Package trace records what a resolution session does: when it opens and
// closes, which expressions get a resolved call and which are rejected.
//
// Enable tracing from the command line:
//
//	callmodel dump --trace=- --trace-level=detail
//
// Tracer implementations:
//
//   - Nop: disabled tracing
//   - StreamTracer: writes every event immediately
//   - RingTracer: keeps the last N events for post-mortem dumps
//   - MultiTracer: fans out to several tracers
//
// Scopes, coarse to fine: ScopeCommand, ScopeSession, ScopeResolve, ScopeCall.
// A Level admits a prefix of them.
//
// Tracers travel through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeSession, "session", 0)
//	defer span.End("")
package trace
