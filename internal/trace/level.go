package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // error events only
	LevelPhase        // run, phase and rule boundaries
	LevelDetail       // plus packages
	LevelDebug        // plus files
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel accepts the names printed by String, case-insensitively.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// Covers reports whether ordinary events at scope are recorded at l.
func (l Level) Covers(scope Scope) bool {
	switch l {
	case LevelPhase:
		return scope <= ScopeRule
	case LevelDetail:
		return scope <= ScopePackage
	case LevelDebug:
		return true
	}
	return false
}

// admits is the filter every sink applies.
func (l Level) admits(ev *Event) bool {
	if l == LevelOff {
		return false
	}
	if ev.Error || ev.Kind == KindHeartbeat {
		return true
	}
	return l.Covers(ev.Scope)
}
