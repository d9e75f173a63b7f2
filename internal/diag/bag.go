package diag

import (
	"fmt"
	"sort"

	"dioxide/internal/source"
)

// Bag collects diagnostics up to a limit. A Bag is not safe for concurrent
// use: parallel producers each own a Bag and the owner merges them.
type Bag struct {
	items   []Diagnostic
	max     int
	dropped int
}

// NewBag creates a bag; max <= 0 means unlimited.
func NewBag(max int) *Bag {
	capacity := max
	if capacity <= 0 || capacity > 256 {
		capacity = 16
	}
	return &Bag{
		items: make([]Diagnostic, 0, capacity),
		max:   max,
	}
}

// Add добавляет диагностику, учитывая лимит.
// Возвращает false, если диагностика не добавлена (достигнут лимит).
func (b *Bag) Add(d Diagnostic) bool {
	if b.max > 0 && len(b.items) >= b.max {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() int {
	return b.max
}

// Dropped returns how many diagnostics were rejected by the limit.
func (b *Bag) Dropped() int {
	return b.dropped
}

// HasErrors возвращает true, если есть хотя бы одна диагностика с Severity >= Error
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// HasWarnings возвращает true, если есть хотя бы одна диагностика с Severity >= Warning
func (b *Bag) HasWarnings() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevWarning {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items возвращает read-only slice диагностик.
// ВАЖНО: не модифицируйте возвращаемый срез! (он указывает на внутренний массив Bag)
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Merge объединяет диагностики из другого Bag, соблюдая лимит.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	for i := range other.items {
		b.Add(other.items[i])
	}
	b.dropped += other.dropped
}

// Filter keeps only diagnostics for which keep returns true.
func (b *Bag) Filter(keep func(*Diagnostic) bool) {
	out := b.items[:0]
	for i := range b.items {
		if keep(&b.items[i]) {
			out = append(out, b.items[i])
		}
	}
	b.items = out
}

// Sort orders diagnostics for output; see SortDiagnostics.
func (b *Bag) Sort(fs *source.FileSet, priority func(rule string) int) {
	SortDiagnostics(b.items, fs, priority)
}

// SortDiagnostics orders by file path, start, end, rule priority,
// severity (desc) and code. priority may be nil.
func SortDiagnostics(items []Diagnostic, fs *source.FileSet, priority func(rule string) int) {
	path := func(id source.FileID) string {
		if fs == nil {
			return ""
		}
		return fs.Path(id)
	}
	sort.SliceStable(items, func(i, j int) bool {
		di, dj := &items[i], &items[j]
		if di.Primary.File != dj.Primary.File {
			pi, pj := path(di.Primary.File), path(dj.Primary.File)
			if pi != pj {
				return pi < pj
			}
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		if priority != nil && di.Rule != dj.Rule {
			ri, rj := priority(di.Rule), priority(dj.Rule)
			if ri != rj {
				return ri < rj
			}
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		return di.Message < dj.Message
	})
}

// простая дедупликация (по Code+Rule+Primary+Message)
func (b *Bag) Dedup() {
	seen := make(map[string]struct{}, len(b.items))
	out := make([]Diagnostic, 0, len(b.items))
	for _, d := range b.items {
		key := fmt.Sprintf("%s|%s|%s|%s", d.Code.ID(), d.Rule, d.Primary.String(), d.Message)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, d)
	}
	b.items = out
}
