package trace

import (
	"fmt"
	"io"
	"sync"
)

// RingTracer keeps the most recent events of a run so a failing command can
// show what the driver was doing when it stopped.
type RingTracer struct {
	mu      sync.RWMutex
	events  []Event
	written uint64
	level   Level
}

func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = 4096
	}
	return &RingTracer{
		events: make([]Event, capacity),
		level:  level,
	}
}

func (t *RingTracer) Emit(ev *Event) {
	if ev == nil || !t.level.ShouldEmit(ev.Scope) {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	stored := *ev
	stored.Seq = NextSeq()
	t.events[t.written%uint64(len(t.events))] = stored
	t.written++
}

// Snapshot returns a copy of the retained events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.RLock()
	defer t.mu.RUnlock()

	size := uint64(len(t.events))
	n := min(t.written, size)
	out := make([]Event, 0, n)
	for i := t.written - n; i < t.written; i++ {
		out = append(out, t.events[i%size])
	}
	return out
}

// Dropped reports how many events were overwritten.
func (t *RingTracer) Dropped() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if size := uint64(len(t.events)); t.written > size {
		return t.written - size
	}
	return 0
}

// Open returns the spans that began inside the retained window and never
// ended, outermost first. After a failure these name the pass and the
// declaration that were being lowered.
func Open(events []Event) []Event {
	ended := make(map[uint64]bool)
	for i := range events {
		if events[i].Kind == KindSpanEnd {
			ended[events[i].SpanID] = true
		}
	}
	var open []Event
	for i := range events {
		if events[i].Kind == KindSpanBegin && !ended[events[i].SpanID] {
			open = append(open, events[i])
		}
	}
	return open
}

// Dump writes the retained events to w, followed by the spans still open.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	events := t.Snapshot()
	if dropped := t.Dropped(); dropped > 0 && format == FormatText {
		if _, err := fmt.Fprintf(w, "(%d earlier events dropped)\n", dropped); err != nil {
			return err
		}
	}
	for i := range events {
		if _, err := w.Write(FormatEvent(&events[i], format)); err != nil {
			return err
		}
	}
	if format != FormatText {
		return nil
	}
	for _, ev := range Open(events) {
		if _, err := fmt.Fprintf(w, "in progress: %s %s\n", ev.Scope, ev.Name); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error  { return nil }
func (t *RingTracer) Close() error  { return nil }
func (t *RingTracer) Level() Level  { return t.level }
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
