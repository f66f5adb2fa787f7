package trace

import (
	"io"
	"sync"
)

// StreamTracer writes events immediately to an io.Writer. Write errors are
// dropped so tracing never fails the traced operation.
type StreamTracer struct {
	mu     sync.Mutex
	w      io.Writer
	level  Level
	format Format
	first  bool
	closed bool
}

// NewStreamTracer creates a StreamTracer writing format to w.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	if format == FormatChrome {
		_, _ = io.WriteString(w, "{\"traceEvents\":[\n")
	}
	return &StreamTracer{w: w, level: level, format: format, first: true}
}

func (t *StreamTracer) Emit(ev *Event) {
	if !t.level.ShouldEmitEvent(ev) {
		return
	}
	data := FormatEvent(ev, t.format)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	if t.format == FormatChrome {
		if !t.first {
			_, _ = io.WriteString(t.w, ",\n")
		}
		t.first = false
	}
	_, _ = t.w.Write(data)
}

// Flush calls the writer's Flush method when it has one.
func (t *StreamTracer) Flush() error {
	if flusher, ok := t.w.(interface{ Flush() error }); ok {
		return flusher.Flush()
	}
	return nil
}

// Close writes the format footer, flushes and closes the writer if it is an
// io.Closer. Later events are dropped.
func (t *StreamTracer) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	if t.format == FormatChrome {
		_, _ = io.WriteString(t.w, "\n]}\n")
	}
	t.mu.Unlock()

	if err := t.Flush(); err != nil {
		return err
	}
	if closer, ok := t.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
