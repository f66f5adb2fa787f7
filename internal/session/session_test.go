package session

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"callmodel/internal/ast"
	"callmodel/internal/calls"
	"callmodel/internal/diag"
	"callmodel/internal/lifetime"
	"callmodel/internal/source"
	"callmodel/internal/symbols"
	"callmodel/internal/trace"
)

type testEnv struct {
	t       *testing.T
	table   *symbols.Table
	exprs   *ast.Exprs
	counter symbols.SymbolID
}

func newTestEnv(t *testing.T) *testEnv {
	table := symbols.NewTable(symbols.Hints{}, nil)
	counter := table.DeclareVariable(symbols.SymbolLocalVar, "counter", symbols.NoSymbolID, 0, table.Types.Builtins().Int, symbols.SymbolFlagMutable)
	return &testEnv{t: t, table: table, exprs: ast.NewExprs(8), counter: counter}
}

func (e *testEnv) expr(text string) ast.ExprID {
	n := uint32(e.exprs.Arena.Len())
	return e.exprs.New(ast.ExprIdent, source.Span{File: 1, Start: n * 8, End: n*8 + uint32(len(text))}, text)
}

func (e *testEnv) read(tok *lifetime.Token) (calls.Call, error) {
	sig, err := e.table.VariableSignatureOf(e.counter)
	if err != nil {
		return nil, err
	}
	pas, err := calls.NewPartiallyApplied(tok, sig, nil, nil)
	if err != nil {
		return nil, err
	}
	return calls.NewSimpleVariableAccessCall(pas, calls.NoTypeArguments(tok), calls.VariableRead{})
}

func (e *testEnv) mustRead(tok *lifetime.Token) calls.Call {
	e.t.Helper()
	c, err := e.read(tok)
	if err != nil {
		e.t.Fatalf("build read: %v", err)
	}
	return c
}

func TestRecordAndLookup(t *testing.T) {
	env := newTestEnv(t)
	s := New(context.Background(), Options{Name: "main", Exprs: env.exprs})
	if s.ModuleKind() != ModuleSource {
		t.Fatalf("default module kind = %s", s.ModuleKind())
	}
	b, a := env.expr("counter"), env.expr("counter")
	// Record out of order; Calls sorts by expression.
	for _, x := range []ast.ExprID{a, b} {
		if err := s.Record(x, env.mustRead(s.Token())); err != nil {
			t.Fatalf("record %d: %v", x, err)
		}
	}
	got, ok := s.Call(a)
	if !ok || got.Kind() != calls.KindSimpleVariableAccess {
		t.Fatalf("lookup of %d failed", a)
	}
	if _, ok := s.Call(env.expr("other")); ok {
		t.Fatalf("lookup of unresolved expression succeeded")
	}
	entries := s.Calls()
	if len(entries) != 2 || entries[0].Expr != b || entries[1].Expr != a || s.Len() != 2 {
		t.Fatalf("calls = %v", entries)
	}
}

func TestRecordRejects(t *testing.T) {
	env := newTestEnv(t)
	bag := diag.NewBag(8)
	s := New(context.Background(), Options{Name: "main", Exprs: env.exprs, Reporter: diag.BagReporter{Bag: bag}})
	x := env.expr("counter")
	if err := s.Record(x, env.mustRead(s.Token())); err != nil {
		t.Fatalf("record: %v", err)
	}

	err := s.Record(x, env.mustRead(s.Token()))
	if calls.CodeOf(err) != diag.CallExprAlreadyResolved {
		t.Fatalf("second record = %v", err)
	}

	foreign := env.mustRead(lifetime.NewToken("other"))
	err = s.Record(env.expr("counter"), foreign)
	if calls.CodeOf(err) != diag.CallTokenMismatch {
		t.Fatalf("foreign record = %v", err)
	}

	err = s.Record(ast.NoExprID, env.mustRead(s.Token()))
	if calls.CodeOf(err) != diag.CallNilComponent {
		t.Fatalf("record without expression = %v", err)
	}

	items := bag.Items()
	if len(items) != 3 {
		t.Fatalf("diagnostics = %d, want 3", len(items))
	}
	if items[0].Primary != env.exprs.Get(x).Span {
		t.Fatalf("diagnostic span = %v", items[0].Primary)
	}
}

func TestResolve(t *testing.T) {
	env := newTestEnv(t)
	bag := diag.NewBag(8)
	s := New(context.Background(), Options{Name: "main", Reporter: diag.BagReporter{Bag: bag}})
	x := env.expr("counter")
	c, err := s.Resolve(x, env.read)
	if err != nil || c == nil {
		t.Fatalf("resolve: %v", err)
	}
	if c.Token() != s.Token() {
		t.Fatalf("resolved call is not bound to the session")
	}

	boom := &calls.InvariantError{Code: diag.CallNonOperator, Message: "boom"}
	_, err = s.Resolve(env.expr("counter"), func(*lifetime.Token) (calls.Call, error) { return nil, boom })
	if !errors.Is(err, calls.ErrInvariant) {
		t.Fatalf("resolve failure = %v", err)
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.CallNonOperator {
		t.Fatalf("build failure not reported")
	}
}

func TestCloseExpiresCalls(t *testing.T) {
	env := newTestEnv(t)
	s := New(context.Background(), Options{Name: "main"})
	x := env.expr("counter")
	c, err := s.Resolve(x, env.read)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if !s.Closed() {
		t.Fatalf("session still open")
	}
	if err := lifetime.Check(c); !errors.Is(err, lifetime.ErrStale) {
		t.Fatalf("call still live after close")
	}
	if err := s.Record(env.expr("counter"), c); !errors.Is(err, lifetime.ErrStale) {
		t.Fatalf("record after close = %v", err)
	}

	read := func(f func()) (err error) {
		defer lifetime.Recover(&err)
		f()
		return nil
	}
	for name, f := range map[string]func(){
		"Call":  func() { s.Call(x) },
		"Calls": func() { s.Calls() },
		"Len":   func() { s.Len() },
		"Kind":  func() { c.Kind() },
	} {
		if err := read(f); !errors.Is(err, lifetime.ErrStale) {
			t.Fatalf("%s after close = %v", name, err)
		}
	}
}

func TestConcurrentRecord(t *testing.T) {
	env := newTestEnv(t)
	s := New(context.Background(), Options{Name: "main"})
	exprs := make([]ast.ExprID, 64)
	for i := range exprs {
		exprs[i] = env.expr("counter")
	}

	var g errgroup.Group
	for _, x := range exprs {
		g.Go(func() error {
			_, err := s.Resolve(x, env.read)
			return err
		})
		g.Go(func() error {
			s.Calls()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent resolve: %v", err)
	}
	if s.Len() != len(exprs) {
		t.Fatalf("len = %d, want %d", s.Len(), len(exprs))
	}
}

func TestRecordRacingClose(t *testing.T) {
	env := newTestEnv(t)
	m := &recordingMetrics{}
	s := New(context.Background(), Options{Name: "main", Metrics: m})
	exprs := make([]ast.ExprID, 64)
	built := make([]calls.Call, len(exprs))
	for i := range exprs {
		exprs[i] = env.expr("counter")
		built[i] = env.mustRead(s.Token())
	}

	var recorded atomic.Int64
	var g errgroup.Group
	for i := range exprs {
		g.Go(func() error {
			err := s.Record(exprs[i], built[i])
			switch {
			case err == nil:
				recorded.Add(1)
			case !errors.Is(err, lifetime.ErrStale):
				return err
			}
			return nil
		})
	}
	g.Go(s.Close)
	if err := g.Wait(); err != nil {
		t.Fatalf("record during close: %v", err)
	}

	want := "close:" + strconv.FormatInt(recorded.Load(), 10)
	if !slices.Contains(m.events, want) {
		t.Fatalf("%d records succeeded but metrics = %v", recorded.Load(), m.events)
	}
}

func TestSessionTrace(t *testing.T) {
	env := newTestEnv(t)
	ring := trace.NewRingTracer(32, trace.LevelDetail)
	ctx := trace.WithTracer(context.Background(), ring)
	s := New(ctx, Options{Name: "main", ModuleKind: ModuleScript, Exprs: env.exprs})
	if _, err := s.Resolve(env.expr("counter"), env.read); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	_ = s.Close()

	var names []string
	for _, ev := range ring.Snapshot() {
		names = append(names, ev.Kind.String()+":"+ev.Name)
	}
	got := strings.Join(names, " ")
	if got != "begin:session:main point:record end:session:main" {
		t.Fatalf("trace = %s", got)
	}
	end := ring.Snapshot()[2]
	if end.Extra["calls"] != "1" || end.Extra["module_kind"] != "ScriptSource" {
		t.Fatalf("end extra = %v", end.Extra)
	}
}

func TestModuleKindFromDirectives(t *testing.T) {
	cases := []struct {
		in      []string
		want    ModuleKind
		wantErr bool
	}{
		{nil, ModuleSource, false},
		{[]string{"LibraryBinary"}, ModuleLibraryBinary, false},
		{[]string{"librarysource"}, ModuleLibrarySource, false},
		{[]string{"ScriptSource"}, ModuleScript, false},
		{[]string{"Gradle"}, 0, true},
		{[]string{"Source", "LibraryBinary"}, 0, true},
	}
	for _, c := range cases {
		got, err := ModuleKindFromDirectives(c.in, ModuleSource)
		if (err != nil) != c.wantErr || got != c.want {
			t.Fatalf("ModuleKindFromDirectives(%v) = %s, %v", c.in, got, err)
		}
	}
	_, err := ModuleKindFromDirectives([]string{"Source", "Source"}, ModuleSource)
	if !errors.Is(err, ErrModuleKindClash) {
		t.Fatalf("clash error = %v", err)
	}
}

type recordingMetrics struct {
	mu     sync.Mutex
	events []string
}

func (m *recordingMetrics) add(ev string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

func (m *recordingMetrics) SessionOpened(kind string) { m.add("open:" + kind) }
func (m *recordingMetrics) CallRecorded(kind string)  { m.add("call:" + kind) }
func (m *recordingMetrics) CallRejected(code string)  { m.add("reject:" + code) }
func (m *recordingMetrics) SessionClosed(n int, _ time.Duration) {
	m.add("close:" + strconv.Itoa(n))
}

func TestSessionMetrics(t *testing.T) {
	env := newTestEnv(t)
	m := &recordingMetrics{}
	s := New(context.Background(), Options{Name: "main", ModuleKind: ModuleScript, Metrics: m})
	x := env.expr("counter")
	if _, err := s.Resolve(x, env.read); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	_ = s.Record(x, env.mustRead(s.Token()))
	late := env.mustRead(s.Token())
	_ = s.Close()
	_ = s.Close()
	_ = s.Record(env.expr("counter"), late)

	want := []string{
		"open:ScriptSource",
		"call:SimpleVariableAccessCall",
		"reject:" + diag.CallExprAlreadyResolved.ID(),
		"close:1",
		"reject:" + diag.SessClosed.ID(),
	}
	if !slices.Equal(m.events, want) {
		t.Fatalf("metrics = %v, want %v", m.events, want)
	}
}

func TestSessionIDsAreUnique(t *testing.T) {
	a := New(context.Background(), Options{Name: "main"})
	b := New(context.Background(), Options{Name: "main"})
	defer a.Close()
	defer b.Close()
	if a.ID() == "" || a.ID() == b.ID() {
		t.Fatalf("ids %q and %q", a.ID(), b.ID())
	}
}
