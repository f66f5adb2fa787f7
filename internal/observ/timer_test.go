package observ

import (
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeClock advances by step on every reading.
func fakeClock(step time.Duration) func() time.Time {
	var mu sync.Mutex
	now := time.Unix(0, 0)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(step)
		return now
	}
}

func TestTimerOverlappingPhases(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(time.Millisecond)

	a := tm.Begin("a")
	b := tm.Begin("b")
	tm.End(a, "")
	tm.End(b, "2 calls")
	tm.End(99, "ignored")

	r := tm.Report()
	if len(r.Phases) != 2 || r.Phases[0].DurationMS != 2 || r.Phases[1].DurationMS != 2 {
		t.Fatalf("phases = %+v", r.Phases)
	}
	if r.TotalMS != 3 {
		t.Fatalf("total = %v, want wall time 3", r.TotalMS)
	}
	s := tm.Summary()
	if !strings.Contains(s, "  b        2.00 ms  // 2 calls\n") || !strings.HasSuffix(s, "  total    3.00 ms\n") {
		t.Fatalf("summary:\n%s", s)
	}
}

func TestTimerEmpty(t *testing.T) {
	if r := NewTimer().Report(); r.TotalMS != 0 || r.Phases != nil {
		t.Fatalf("empty report = %+v", r)
	}
}

func TestTimerConcurrentUse(t *testing.T) {
	tm := NewTimer()
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.End(tm.Begin("p"), "")
		}()
	}
	wg.Wait()
	if got := len(tm.Report().Phases); got != 16 {
		t.Fatalf("phases = %d", got)
	}
}
