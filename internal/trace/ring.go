package trace

import (
	"errors"
	"io"
	"sync"
)

// RingTracer keeps the last events in memory. Built by New it also writes
// them out on Close, so a long run leaves only its tail behind.
type RingTracer struct {
	mu     sync.Mutex
	level  Level
	events []Event
	next   int
	full   bool
	sink   *ringSink
}

type ringSink struct {
	w      io.Writer
	format Format
	closer io.Closer
}

// NewRingTracer keeps up to size events; size <= 0 means the default.
func NewRingTracer(size int, level Level) *RingTracer {
	if size <= 0 {
		size = defaultRingSize
	}
	return &RingTracer{level: level, events: make([]Event, size)}
}

func (t *RingTracer) Emit(ev *Event) {
	if !t.level.admits(ev) {
		return
	}
	t.mu.Lock()
	t.events[t.next] = *ev
	t.next++
	if t.next == len(t.events) {
		t.next = 0
		t.full = true
	}
	t.mu.Unlock()
}

func (t *RingTracer) Level() Level { return t.level }

// Snapshot returns the kept events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.full {
		return append([]Event(nil), t.events[:t.next]...)
	}
	out := make([]Event, 0, len(t.events))
	out = append(out, t.events[t.next:]...)
	return append(out, t.events[:t.next]...)
}

// Dump writes the snapshot to w.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	enc := newEncoder(w, format)
	for _, ev := range t.Snapshot() {
		if err := enc(&ev); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error { return nil }

// Close dumps to the configured output once.
func (t *RingTracer) Close() error {
	t.mu.Lock()
	sink := t.sink
	t.sink = nil
	t.mu.Unlock()
	if sink == nil {
		return nil
	}
	err := t.Dump(sink.w, sink.format)
	if sink.closer != nil {
		err = errors.Join(err, sink.closer.Close())
	}
	return err
}
