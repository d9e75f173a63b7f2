// Package trace records what the lint pipeline is doing: run and phase
// boundaries, rule passes, per-package and per-file work, and failures.
// It is dioxide's logging layer.
//
// Tracing is off unless the CLI asks for it:
//
//	dioxide lint --trace=- --trace-level=phase ./...
//	dioxide lint --trace=run.ndjson --trace-level=debug ./...
//	dioxide lint --trace=last.txt --trace-mode=ring ./...
//
// Levels cut the scope hierarchy: phase keeps run, phase and rule events;
// detail adds packages; debug adds files. Error events and heartbeats pass
// every level except off.
//
// The tracer and the innermost open span travel in the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopePhase, "parse")
//	defer span.End("")
//
// Nested Start calls pick the parent from ctx. A filtered span is nil and
// every Span method accepts a nil receiver.
package trace
