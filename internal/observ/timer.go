// Package observ measures a lint run: wall time per pipeline phase and a few
// counters (files, packages, cache hits, diagnostics) for --timings.
package observ

import "time"

type phase struct {
	name    string
	start   time.Time
	elapsed time.Duration
	note    string
	failed  bool
	closed  bool
}

// Timer is driven by one goroutine. A nil Timer records nothing.
type Timer struct {
	created time.Time
	phases  []phase
	counts  []Counter
}

// Counter is a named figure reported next to the phases.
type Counter struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func NewTimer() *Timer {
	return &Timer{created: time.Now(), phases: make([]phase, 0, 9)}
}

// Begin opens a phase and returns its handle for End.
func (t *Timer) Begin(name string) int {
	if t == nil {
		return -1
	}
	t.phases = append(t.phases, phase{name: name, start: time.Now()})
	return len(t.phases) - 1
}

// End closes the phase; a non-nil err marks it failed. Closing twice keeps
// the first measurement.
func (t *Timer) End(idx int, note string, err error) {
	if t == nil || idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	if p.closed {
		return
	}
	p.closed = true
	p.elapsed = time.Since(p.start)
	p.note = note
	p.failed = err != nil
}

// Count sets counter name, keeping the order of first use.
func (t *Timer) Count(name string, value int) {
	if t == nil {
		return
	}
	for i := range t.counts {
		if t.counts[i].Name == name {
			t.counts[i].Value = value
			return
		}
	}
	t.counts = append(t.counts, Counter{Name: name, Value: value})
}

// PhaseReport is one phase in milliseconds.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
	Failed     bool    `json:"failed,omitempty"`
}

// Report is the serialisable view of a Timer. TotalMS sums the phases;
// WallMS runs from NewTimer to Report and includes the gaps between phases.
type Report struct {
	TotalMS  float64       `json:"total_ms"`
	WallMS   float64       `json:"wall_ms"`
	Phases   []PhaseReport `json:"phases"`
	Counters []Counter     `json:"counters,omitempty"`
}

// Report snapshots the timer; phases still open are measured up to now.
func (t *Timer) Report() Report {
	if t == nil || len(t.phases) == 0 {
		return Report{}
	}
	now := time.Now()
	rep := Report{
		WallMS:   millis(now.Sub(t.created)),
		Phases:   make([]PhaseReport, len(t.phases)),
		Counters: append([]Counter(nil), t.counts...),
	}
	var total time.Duration
	for i, p := range t.phases {
		elapsed := p.elapsed
		if !p.closed {
			elapsed = now.Sub(p.start)
		}
		total += elapsed
		rep.Phases[i] = PhaseReport{Name: p.name, DurationMS: millis(elapsed), Note: p.note, Failed: p.failed}
	}
	rep.TotalMS = millis(total)
	return rep
}

// Slowest returns the longest phase, or false for an empty report.
func (r Report) Slowest() (PhaseReport, bool) {
	if len(r.Phases) == 0 {
		return PhaseReport{}, false
	}
	best := r.Phases[0]
	for _, p := range r.Phases[1:] {
		if p.DurationMS > best.DurationMS {
			best = p
		}
	}
	return best, true
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
