package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Tracer receives events. Emit must be goroutine-safe.
type Tracer interface {
	Emit(ev *Event)
	Level() Level
	Flush() error
	Close() error
}

type nopTracer struct{}

func (nopTracer) Emit(*Event)  {}
func (nopTracer) Level() Level { return LevelOff }
func (nopTracer) Flush() error { return nil }
func (nopTracer) Close() error { return nil }

// Nop drops everything; it is what FromContext returns by default.
var Nop Tracer = nopTracer{}

// StorageMode selects where events go.
type StorageMode uint8

const (
	ModeStream StorageMode = iota + 1 // written as they happen
	ModeRing                          // last RingSize events, written on Close
)

func (m StorageMode) String() string {
	switch m {
	case ModeStream:
		return "stream"
	case ModeRing:
		return "ring"
	}
	return "unknown"
}

// ParseMode accepts "stream" and "ring".
func ParseMode(s string) (StorageMode, error) {
	switch strings.ToLower(s) {
	case "stream":
		return ModeStream, nil
	case "ring":
		return ModeRing, nil
	}
	return ModeStream, fmt.Errorf("invalid storage mode: %q (expected: stream|ring)", s)
}

// Config describes a tracer. Output wins over OutputPath; an empty path or
// "-" means stderr.
type Config struct {
	Level      Level
	Mode       StorageMode
	Format     Format
	Output     io.Writer
	OutputPath string
	RingSize   int
}

const defaultRingSize = 4096

// New builds the tracer for cfg. LevelOff yields Nop.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	format := cfg.Format
	if format == FormatAuto {
		format = FormatForPath(cfg.OutputPath)
	}
	w, closer, err := openOutput(cfg)
	if err != nil {
		return nil, err
	}
	switch cfg.Mode {
	case ModeStream:
		s := NewStreamTracer(w, cfg.Level, format)
		s.closer = closer
		s.live = closer == nil
		return s, nil
	case ModeRing:
		r := NewRingTracer(cfg.RingSize, cfg.Level)
		r.sink = &ringSink{w: w, format: format, closer: closer}
		return r, nil
	}
	if closer != nil {
		_ = closer.Close()
	}
	return nil, fmt.Errorf("unknown storage mode: %v", cfg.Mode)
}

// openOutput returns a closer only for files it created.
func openOutput(cfg Config) (io.Writer, io.Closer, error) {
	if cfg.Output != nil {
		return cfg.Output, nil, nil
	}
	if cfg.OutputPath == "" || cfg.OutputPath == "-" {
		return os.Stderr, nil, nil
	}
	// #nosec G304 -- trace path comes from the command line
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	return f, f, nil
}
