package trace

import "time"

// Kind is what happened.
type Kind uint8

const (
	KindBegin Kind = iota + 1
	KindEnd
	KindPoint
	KindHeartbeat
)

var kindNames = [...]string{"", "begin", "end", "point", "heartbeat"}

func (k Kind) String() string {
	if int(k) < len(kindNames) && k != 0 {
		return kindNames[k]
	}
	return "unknown"
}

// Scope orders events from coarse to fine. Levels keep every scope up to a cut.
type Scope uint8

const (
	ScopeRun     Scope = iota + 1 // one lint, fix or graph invocation
	ScopePhase                    // collect, load, parse, resolve, rules, fix
	ScopeRule                     // one rule over every package
	ScopePackage                  // per-package work
	ScopeFile                     // per-file work
)

var scopeNames = [...]string{"", "run", "phase", "rule", "package", "file"}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && s != 0 {
		return scopeNames[s]
	}
	return "unknown"
}

// Attr is one key=value annotation; order is kept as added.
type Attr struct {
	Key   string `json:"k" msgpack:"k"`
	Value string `json:"v" msgpack:"v"`
}

// Event is a single trace record. Seq is stamped on emission and is unique
// across all tracers of the process.
type Event struct {
	Time    time.Time
	Seq     uint64
	Kind    Kind
	Scope   Scope
	Span    uint64 // 0 for points and heartbeats
	Parent  uint64
	Name    string // "parse", "rule:dead-code", "example.com/m/a", a file path
	Detail  string
	Elapsed time.Duration // KindEnd only
	Attrs   []Attr
	Error   bool
}
