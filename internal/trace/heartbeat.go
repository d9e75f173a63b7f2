package trace

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"
)

// Heartbeat emits a liveness event with goroutine and heap figures at a
// fixed interval. Heartbeats with no span ends between them point at a stuck
// rule or a hanging write.
type Heartbeat struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// StartHeartbeat returns nil when tracing is off or interval <= 0.
func StartHeartbeat(t Tracer, interval time.Duration) *Heartbeat {
	if t == nil || t.Level() == LevelOff || interval <= 0 {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	h := &Heartbeat{cancel: cancel, done: make(chan struct{})}
	go h.loop(ctx, t, interval)
	return h
}

func (h *Heartbeat) loop(ctx context.Context, t Tracer, interval time.Duration) {
	defer close(h.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for n := 1; ; n++ {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			emit(t, &Event{
				Time:   now,
				Kind:   KindHeartbeat,
				Scope:  ScopeRun,
				Name:   "heartbeat",
				Detail: fmt.Sprintf("#%d", n),
				Attrs: []Attr{
					{Key: "goroutines", Value: strconv.Itoa(runtime.NumGoroutine())},
					{Key: "heap_kb", Value: strconv.FormatUint(ms.HeapAlloc>>10, 10)},
				},
			})
		}
	}
}

// Stop ends the loop and waits for it. Safe on nil and when called twice.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.cancel()
	<-h.done
}
