// Package session owns the lifetime of resolved calls. Every call built for a
// session shares its token; Close expires them all at once.
package session

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"callmodel/internal/ast"
	"callmodel/internal/calls"
	"callmodel/internal/diag"
	"callmodel/internal/lifetime"
	"callmodel/internal/source"
	"callmodel/internal/trace"
)

// Options configure a Session.
type Options struct {
	Name       string
	ModuleKind ModuleKind    // zero means ModuleSource
	Tracer     trace.Tracer  // nil means the tracer of the context
	Reporter   diag.Reporter // receives rejected resolutions; nil drops them
	Exprs      *ast.Exprs    // source text and spans for traces and diagnostics
	Metrics    Metrics       // nil disables metrics
}

// Metrics receives session counters. Implementations must be goroutine-safe.
type Metrics interface {
	SessionOpened(moduleKind string)
	CallRecorded(kind string)
	CallRejected(code string)
	SessionClosed(calls int, age time.Duration)
}

type nopMetrics struct{}

func (nopMetrics) SessionOpened(string)             {}
func (nopMetrics) CallRecorded(string)              {}
func (nopMetrics) CallRejected(string)              {}
func (nopMetrics) SessionClosed(int, time.Duration) {}

// Entry is one resolved expression.
type Entry struct {
	Expr ast.ExprID
	Call calls.Call
}

// Session is one resolution boundary. Record and the readers are safe for
// concurrent use; readers panic with *lifetime.StaleAccessError after Close.
type Session struct {
	id       string
	name     string
	kind     ModuleKind
	token    *lifetime.Token
	tracer   trace.Tracer
	span     *trace.Span
	reporter diag.Reporter
	exprs    *ast.Exprs
	metrics  Metrics
	opened   time.Time

	mu    sync.RWMutex
	calls map[ast.ExprID]calls.Call
}

// New opens a session. The session span is a child of ctx's current span.
func New(ctx context.Context, opts Options) *Session {
	if opts.ModuleKind == 0 {
		opts.ModuleKind = ModuleSource
	}
	if opts.Tracer == nil {
		opts.Tracer = trace.FromContext(ctx)
	}
	if opts.Reporter == nil {
		opts.Reporter = diag.NopReporter{}
	}
	if opts.Metrics == nil {
		opts.Metrics = nopMetrics{}
	}
	s := &Session{
		id:       uuid.NewString(),
		name:     opts.Name,
		kind:     opts.ModuleKind,
		token:    lifetime.NewToken(opts.Name),
		tracer:   opts.Tracer,
		reporter: opts.Reporter,
		exprs:    opts.Exprs,
		metrics:  opts.Metrics,
		opened:   time.Now(),
		calls:    make(map[ast.ExprID]calls.Call),
	}
	s.span = trace.Begin(s.tracer, trace.ScopeSession, "session:"+opts.Name, trace.ParentID(ctx)).
		WithExtra("module_kind", s.kind.String()).
		WithExtra("id", s.id)
	s.metrics.SessionOpened(s.kind.String())
	return s
}

// ID is unique per session, including sessions with the same name.
func (s *Session) ID() string { return s.id }

func (s *Session) Token() *lifetime.Token { return s.token }
func (s *Session) Name() string           { return s.name }
func (s *Session) ModuleKind() ModuleKind { return s.kind }

// Closed reports whether Close has run.
func (s *Session) Closed() bool { return !s.token.IsLive() }

// Record publishes call as the resolution of expr.
func (s *Session) Record(expr ast.ExprID, call calls.Call) error {
	err := s.record(expr, call)
	if err != nil {
		trace.Error(s.tracer, trace.ScopeResolve, "record", s.span.ID(), err)
		s.metrics.CallRejected(rejectionCode(err).ID())
		return calls.Report(s.reporter, s.spanOf(expr), err)
	}
	s.metrics.CallRecorded(call.Kind().String())
	trace.Point(s.tracer, trace.ScopeResolve, "record", s.span.ID(), s.textOf(expr), map[string]string{
		"expr": strconv.FormatUint(uint64(expr), 10),
		"kind": call.Kind().String(),
	})
	return nil
}

func (s *Session) record(expr ast.ExprID, call calls.Call) error {
	if err := s.token.AssertLive(); err != nil {
		return err
	}
	if !expr.IsValid() || call == nil {
		return &calls.InvariantError{Code: diag.CallNilComponent, Message: "record needs an expression and a call"}
	}
	if call.Token() != s.token {
		return &calls.InvariantError{
			Code:    diag.CallTokenMismatch,
			Message: fmt.Sprintf("call for expression %d belongs to another session", expr),
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Close may have won the race since the first check.
	if err := s.token.AssertLive(); err != nil {
		return err
	}
	if _, dup := s.calls[expr]; dup {
		return &calls.InvariantError{
			Code:    diag.CallExprAlreadyResolved,
			Message: fmt.Sprintf("expression %d already has a resolved call", expr),
		}
	}
	s.calls[expr] = call
	return nil
}

// Resolve builds a call with the session token and records it for expr.
// Build failures are reported like Record failures.
func (s *Session) Resolve(expr ast.ExprID, build func(tok *lifetime.Token) (calls.Call, error)) (calls.Call, error) {
	call, err := build(s.token)
	if err != nil {
		trace.Error(s.tracer, trace.ScopeResolve, "resolve", s.span.ID(), err)
		s.metrics.CallRejected(rejectionCode(err).ID())
		return nil, calls.Report(s.reporter, s.spanOf(expr), err)
	}
	if err := s.Record(expr, call); err != nil {
		return nil, err
	}
	return call, nil
}

// Call returns the call resolved for expr.
func (s *Session) Call(expr ast.ExprID) (calls.Call, bool) {
	lifetime.Assert(s)
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.calls[expr]
	return c, ok
}

// Len returns the number of resolved expressions.
func (s *Session) Len() int {
	lifetime.Assert(s)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.calls)
}

// Calls returns every resolved expression in expression order.
func (s *Session) Calls() []Entry {
	lifetime.Assert(s)
	s.mu.RLock()
	out := make([]Entry, 0, len(s.calls))
	for expr, c := range s.calls {
		out = append(out, Entry{Expr: expr, Call: c})
	}
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b Entry) int { return cmp.Compare(a.Expr, b.Expr) })
	return out
}

// Close expires the token of every call of the session. It is idempotent.
// A Record running concurrently either lands before Close or fails as stale.
func (s *Session) Close() error {
	s.mu.Lock()
	if !s.token.Invalidate() {
		s.mu.Unlock()
		return nil
	}
	n := len(s.calls)
	s.mu.Unlock()
	s.span.WithExtra("calls", strconv.Itoa(n)).End("closed")
	s.metrics.SessionClosed(n, time.Since(s.opened))
	return nil
}

func rejectionCode(err error) diag.Code {
	if errors.Is(err, lifetime.ErrStale) {
		return diag.SessClosed
	}
	return calls.CodeOf(err)
}

func (s *Session) spanOf(expr ast.ExprID) source.Span {
	if s.exprs == nil {
		return source.Span{}
	}
	if e := s.exprs.Get(expr); e != nil {
		return e.Span
	}
	return source.Span{}
}

func (s *Session) textOf(expr ast.ExprID) string {
	if s.exprs == nil {
		return ""
	}
	return s.exprs.Text(expr)
}
