package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"callmodel/internal/calldump"
	"callmodel/internal/config"
	"callmodel/internal/fixture"
	"callmodel/internal/observ"
	"callmodel/internal/session"
)

func TestColorEnabled(t *testing.T) {
	tests := []struct {
		mode string
		tty  bool
		want bool
	}{
		{"on", false, true},
		{"off", true, false},
		{"auto", true, true},
		{"auto", false, false},
		{"", true, true},
	}
	for _, tt := range tests {
		got, err := colorEnabled(tt.mode, tt.tty)
		if err != nil || got != tt.want {
			t.Fatalf("colorEnabled(%q, %v) = %v, %v", tt.mode, tt.tty, got, err)
		}
	}
	if _, err := colorEnabled("always", true); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestSelectScenarios(t *testing.T) {
	all, err := selectScenarios(nil)
	if err != nil || len(all) != len(fixture.Scenarios()) {
		t.Fatalf("select all = %d, %v", len(all), err)
	}
	some, err := selectScenarios([]string{"annotation", "i-do-not-exist"})
	if err == nil || some != nil {
		t.Fatalf("unknown scenario accepted")
	}
	some, err = selectScenarios([]string{"variable-write", "annotation"})
	if err != nil || some[0].Name != "variable-write" || some[1].Name != "annotation" {
		t.Fatalf("select = %v, %v", scenarioNames(some), err)
	}
}

func TestDumpScenariosKeepsOrder(t *testing.T) {
	scenarios := fixture.Scenarios()
	results, err := dumpScenarios(context.Background(), scenarios, dumpRequest{jobs: 4})
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	for i, r := range results {
		if r.scenario.Name != scenarios[i].Name {
			t.Fatalf("result %d is %s, want %s", i, r.scenario.Name, scenarios[i].Name)
		}
		if len(r.records) != 1 {
			t.Fatalf("%s: %d records", r.scenario.Name, len(r.records))
		}
		if want := scenarios[i].Want.String() + ":\n"; !strings.Contains(r.text, want) {
			t.Fatalf("%s: dump lacks %q:\n%s", r.scenario.Name, want, r.text)
		}
	}

	var buf bytes.Buffer
	if err := writeText(&buf, results[:2]); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "== plus-assign-variable: i += 1\ni += 1 @ ") {
		t.Fatalf("text output:\n%s", buf.String())
	}
}

func TestDumpAllCalls(t *testing.T) {
	sc, _ := fixture.Lookup("indexed-in-place-chain")
	results, err := dumpScenarios(context.Background(), []fixture.Scenario{sc}, dumpRequest{allCalls: true, moduleKind: session.ModuleScript})
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	recs := results[0].records
	if len(recs) != 3 {
		t.Fatalf("records = %d, want container read, get and plusAssign", len(recs))
	}
	if recs[0].Access != "READ" || recs[1].Symbols[0] != "MultiMap.get" || recs[2].Symbols[0] != "MutableList<String>.plusAssign" {
		t.Fatalf("records = %+v", recs)
	}

	var buf bytes.Buffer
	if err := calldump.Encode(&buf, &calldump.File{Session: sc.Name, Records: recs}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	f, err := calldump.Decode(&buf)
	if err != nil || len(f.Records) != 3 || f.Session != sc.Name {
		t.Fatalf("decode = %+v, %v", f, err)
	}
}

func TestScenarioTableAligned(t *testing.T) {
	var buf bytes.Buffer
	if err := writeScenarioTable(&buf, fixture.Scenarios(), false); err != nil {
		t.Fatalf("table: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != len(fixture.Scenarios())+1 {
		t.Fatalf("lines = %d", len(lines))
	}
	col := strings.Index(lines[0], "SOURCE")
	for _, line := range lines[1:] {
		if len(line) < col || line[col-2:col] != "  " || line[col] == ' ' {
			t.Fatalf("misaligned line %q (source column %d)", line, col)
		}
	}
}

func TestTraceFlagsOverrideConfig(t *testing.T) {
	root := &cobra.Command{Use: "callmodel"}
	root.PersistentFlags().String("trace", "", "")
	root.PersistentFlags().String("trace-level", "", "")
	root.PersistentFlags().String("trace-mode", "", "")
	root.PersistentFlags().String("trace-format", "", "")
	root.PersistentFlags().Int("trace-ring-size", 0, "")
	root.PersistentFlags().Duration("trace-heartbeat", 0, "")
	if err := root.PersistentFlags().Parse([]string{"--trace-level=debug", "--trace-heartbeat=1s"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	base := config.Default().Trace
	base.Output = "from-config.ndjson"
	got, err := traceFlags(root, base)
	if err != nil {
		t.Fatalf("flags: %v", err)
	}
	if got.Level != "debug" || got.Heartbeat != time.Second {
		t.Fatalf("flags not applied: %+v", got)
	}
	if got.Output != "from-config.ndjson" || got.Mode != "stream" || got.RingSize != 4096 {
		t.Fatalf("config values lost: %+v", got)
	}
}

func TestDumpTimings(t *testing.T) {
	scenarios := fixture.Scenarios()[:3]
	timer := observ.NewTimer()
	if _, err := dumpScenarios(context.Background(), scenarios, dumpRequest{timer: timer}); err != nil {
		t.Fatalf("dump: %v", err)
	}
	report := timer.Report()
	if len(report.Phases) != len(scenarios) {
		t.Fatalf("phases = %+v", report.Phases)
	}
	for _, p := range report.Phases {
		if p.Note != "1 calls" {
			t.Fatalf("phase %s note = %q", p.Name, p.Note)
		}
	}
}

func TestDumpMetrics(t *testing.T) {
	m := observ.NewMetrics()
	scenarios := fixture.Scenarios()[:2]
	if _, err := dumpScenarios(context.Background(), scenarios, dumpRequest{metrics: m}); err != nil {
		t.Fatalf("dump: %v", err)
	}
	var sb strings.Builder
	if err := m.WriteText(&sb); err != nil {
		t.Fatalf("write: %v", err)
	}
	if want := `callmodel_session_opened_total{module_kind="Source"} 2`; !strings.Contains(sb.String(), want) {
		t.Fatalf("metrics lack %q:\n%s", want, sb.String())
	}
}
