package driver

import (
	"context"
	"time"

	"dioxide/internal/trace"
)

// PhaseStatus says which boundary a PhaseEvent marks.
type PhaseStatus int

const (
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

func (s PhaseStatus) String() string {
	if s == PhaseStart {
		return "start"
	}
	return "end"
}

// PhaseEvent is delivered to Options.Observer at both ends of every phase,
// from the goroutine that called Analyze. Elapsed, Note and Err are set on
// PhaseEnd only.
type PhaseEvent struct {
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
	Note    string
	Err     error
}

// PhaseObserver receives phase events in order.
type PhaseObserver func(PhaseEvent)

func (r *run) notify(ev PhaseEvent) {
	if r.opts.Observer != nil {
		r.opts.Observer(ev)
	}
}

// phase runs fn as one named pipeline phase: it checks ctx first, opens a
// trace span, records the timer phase and notifies the observer. fn returns
// a short note for the timings table.
func (r *run) phase(ctx context.Context, name string, fn func(ctx context.Context) (string, error)) error {
	if err := ctx.Err(); err != nil {
		return cancelled(err)
	}
	r.notify(PhaseEvent{Name: name, Status: PhaseStart})
	idx := r.timer.Begin(name)
	pctx, span := trace.Start(ctx, trace.ScopePhase, name)
	start := time.Now()

	note, err := fn(pctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = cancelled(ctxErr)
	}

	if err != nil {
		trace.Fail(pctx, trace.ScopePhase, name+"_failed", err)
	}
	span.End(note)
	r.timer.End(idx, note, err)
	r.notify(PhaseEvent{Name: name, Status: PhaseEnd, Elapsed: time.Since(start), Note: note, Err: err})
	return err
}
