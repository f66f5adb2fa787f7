package observ

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()
	m.SessionOpened("Source")
	m.SessionOpened("Source")
	m.CallRecorded("SimpleFunctionCall")
	m.CallRejected("C0001")
	m.SessionClosed(1, 2*time.Millisecond)

	if got := testutil.ToFloat64(m.sessionsTotal.WithLabelValues("Source")); got != 2 {
		t.Fatalf("sessions = %v", got)
	}
	if got := testutil.ToFloat64(m.callsTotal.WithLabelValues("SimpleFunctionCall")); got != 1 {
		t.Fatalf("calls = %v", got)
	}
	if got := testutil.CollectAndCount(m.sessionDuration); got != 1 {
		t.Fatalf("duration series = %d", got)
	}
}

func TestMetricsWriteText(t *testing.T) {
	m := NewMetrics()
	m.CallRejected("C0001")
	var sb strings.Builder
	if err := m.WriteText(&sb); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := sb.String()
	for _, want := range []string{
		"# TYPE callmodel_session_rejected_total counter",
		`callmodel_session_rejected_total{code="C0001"} 1`,
		"callmodel_session_calls_bucket",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("exposition lacks %q:\n%s", want, out)
		}
	}
}
