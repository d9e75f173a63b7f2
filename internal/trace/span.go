package trace

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

func emit(t Tracer, ev *Event) {
	ev.Seq = seqCounter.Add(1)
	t.Emit(ev)
}

// Span is an open begin/end pair. Not safe for concurrent Attr calls.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	scope   Scope
	name    string
	started time.Time
	attrs   []Attr
}

// Start opens a span under the span carried by ctx and returns a context in
// which it is the parent. When the level filters scope out, Start returns ctx
// unchanged and a nil span.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	t := FromContext(ctx)
	if !t.Level().Covers(scope) {
		return ctx, nil
	}
	s := &Span{
		tracer:  t,
		id:      spanCounter.Add(1),
		parent:  ParentID(ctx),
		scope:   scope,
		name:    name,
		started: time.Now(),
	}
	emit(t, &Event{
		Time:   s.started,
		Kind:   KindBegin,
		Scope:  scope,
		Span:   s.id,
		Parent: s.parent,
		Name:   name,
	})
	return context.WithValue(ctx, spanKey{}, s.id), s
}

// Attr annotates the end event.
func (s *Span) Attr(key string, value any) *Span {
	if s == nil {
		return nil
	}
	s.attrs = append(s.attrs, Attr{Key: key, Value: fmt.Sprint(value)})
	return s
}

// ID is 0 for a nil span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// End emits the end event and returns the span's duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil {
		return 0
	}
	now := time.Now()
	elapsed := now.Sub(s.started)
	emit(s.tracer, &Event{
		Time:    now,
		Kind:    KindEnd,
		Scope:   s.scope,
		Span:    s.id,
		Parent:  s.parent,
		Name:    s.name,
		Detail:  detail,
		Elapsed: elapsed,
		Attrs:   s.attrs,
	})
	return elapsed
}

// Point records an instant event under the span carried by ctx.
func Point(ctx context.Context, scope Scope, name, detail string) {
	t := FromContext(ctx)
	if !t.Level().Covers(scope) {
		return
	}
	emit(t, &Event{
		Time:   time.Now(),
		Kind:   KindPoint,
		Scope:  scope,
		Parent: ParentID(ctx),
		Name:   name,
		Detail: detail,
	})
}

// Fail records err as an error event; it passes every level except off.
func Fail(ctx context.Context, scope Scope, name string, err error) {
	t := FromContext(ctx)
	if err == nil || t.Level() == LevelOff {
		return
	}
	emit(t, &Event{
		Time:   time.Now(),
		Kind:   KindPoint,
		Scope:  scope,
		Parent: ParentID(ctx),
		Name:   name,
		Detail: err.Error(),
		Error:  true,
	})
}
