package trace

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Format is the on-disk encoding of events.
type Format uint8

const (
	FormatAuto    Format = iota // from the output path extension, text otherwise
	FormatText                  // human-readable, one event per line
	FormatNDJSON                // one JSON object per line
	FormatMsgpack               // a stream of msgpack maps
)

// ParseFormat accepts auto, text, ndjson (or json) and msgpack.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	case "msgpack":
		return FormatMsgpack, nil
	}
	return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson|msgpack)", s)
}

// FormatForPath picks the format for an output file name.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ndjson", ".json", ".jsonl":
		return FormatNDJSON
	case ".msgpack", ".mpk":
		return FormatMsgpack
	}
	return FormatText
}

// record is the machine-readable shape of an Event.
type record struct {
	Time      string `json:"time" msgpack:"time"`
	Seq       uint64 `json:"seq" msgpack:"seq"`
	Kind      string `json:"kind" msgpack:"kind"`
	Scope     string `json:"scope" msgpack:"scope"`
	Span      uint64 `json:"span,omitempty" msgpack:"span,omitempty"`
	Parent    uint64 `json:"parent,omitempty" msgpack:"parent,omitempty"`
	Name      string `json:"name" msgpack:"name"`
	Detail    string `json:"detail,omitempty" msgpack:"detail,omitempty"`
	ElapsedUS int64  `json:"elapsed_us,omitempty" msgpack:"elapsed_us,omitempty"`
	Attrs     []Attr `json:"attrs,omitempty" msgpack:"attrs,omitempty"`
	Error     bool   `json:"error,omitempty" msgpack:"error,omitempty"`
}

func toRecord(ev *Event) record {
	return record{
		Time:      ev.Time.Format("2006-01-02T15:04:05.000000Z07:00"),
		Seq:       ev.Seq,
		Kind:      ev.Kind.String(),
		Scope:     ev.Scope.String(),
		Span:      ev.Span,
		Parent:    ev.Parent,
		Name:      ev.Name,
		Detail:    ev.Detail,
		ElapsedUS: ev.Elapsed.Microseconds(),
		Attrs:     ev.Attrs,
		Error:     ev.Error,
	}
}

// encoder writes one event to the writer it was built for.
type encoder func(ev *Event) error

func newEncoder(w io.Writer, format Format) encoder {
	switch format {
	case FormatNDJSON:
		enc := json.NewEncoder(w)
		return func(ev *Event) error { return enc.Encode(toRecord(ev)) }
	case FormatMsgpack:
		enc := msgpack.NewEncoder(w)
		enc.SetOmitEmpty(true)
		return func(ev *Event) error { return enc.Encode(toRecord(ev)) }
	}
	return func(ev *Event) error {
		_, err := io.WriteString(w, textLine(ev))
		return err
	}
}

var kindMarks = [...]string{"", "→", "←", "•", "♡"}

// textLine renders "15:04:05.000 <indent>→ name 1.2ms (detail) k=v k=v".
// Indentation follows scope depth; errors are marked with "!".
func textLine(ev *Event) string {
	var sb strings.Builder
	sb.WriteString(ev.Time.Format("15:04:05.000"))
	sb.WriteByte(' ')
	if ev.Scope > ScopeRun {
		sb.WriteString(strings.Repeat("  ", int(ev.Scope-ScopeRun)))
	}
	mark := "?"
	if int(ev.Kind) < len(kindMarks) && ev.Kind != 0 {
		mark = kindMarks[ev.Kind]
	}
	if ev.Error {
		mark = "!"
	}
	sb.WriteString(mark)
	sb.WriteByte(' ')
	sb.WriteString(ev.Name)
	if ev.Kind == KindEnd {
		fmt.Fprintf(&sb, " %.1fms", float64(ev.Elapsed.Microseconds())/1000)
	}
	if ev.Detail != "" {
		sb.WriteString(" (")
		sb.WriteString(ev.Detail)
		sb.WriteByte(')')
	}
	for _, a := range ev.Attrs {
		sb.WriteByte(' ')
		sb.WriteString(a.Key)
		sb.WriteByte('=')
		sb.WriteString(a.Value)
	}
	sb.WriteByte('\n')
	return sb.String()
}
