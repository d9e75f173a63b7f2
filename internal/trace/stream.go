package trace

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

// StreamTracer writes each admitted event as it arrives. A live tracer
// flushes after every event; a file-backed one flushes on Flush and Close.
type StreamTracer struct {
	mu     sync.Mutex
	level  Level
	buf    *bufio.Writer
	enc    encoder
	closer io.Closer
	live   bool
	err    error // first write error; later events are dropped
}

// NewStreamTracer writes to w, flushing after every event. Close does not
// close w.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	buf := bufio.NewWriter(w)
	return &StreamTracer{
		level: level,
		buf:   buf,
		enc:   newEncoder(buf, format),
		live:  true,
	}
}

func (t *StreamTracer) Emit(ev *Event) {
	if !t.level.admits(ev) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return
	}
	// ошибки записи трассы не должны ронять прогон
	t.err = t.enc(ev)
	if t.err == nil && t.live {
		t.err = t.buf.Flush()
	}
}

func (t *StreamTracer) Level() Level { return t.level }

// Flush reports the first write error, if any.
func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.flushLocked()
}

func (t *StreamTracer) flushLocked() error {
	if t.err != nil {
		return t.err
	}
	t.err = t.buf.Flush()
	return t.err
}

func (t *StreamTracer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	err := t.flushLocked()
	if t.closer != nil {
		err = errors.Join(err, t.closer.Close())
		t.closer = nil
	}
	return err
}
