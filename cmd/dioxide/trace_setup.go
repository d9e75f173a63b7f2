package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dioxide/internal/trace"
)

type traceFlags struct {
	output   string
	level    string
	mode     string
	format   string
	ringSize int
}

// setupTracing attaches the tracer selected by the --trace* flags to the
// command context. The cleanup stops the heartbeat before closing the
// tracer so the last heartbeat is not written to a closed file.
func setupTracing(cmd *cobra.Command) (func(), error) {
	flags := cmd.Root().PersistentFlags()
	var tf traceFlags
	var err error
	for name, dst := range map[string]*string{
		"trace":        &tf.output,
		"trace-level":  &tf.level,
		"trace-mode":   &tf.mode,
		"trace-format": &tf.format,
	} {
		if *dst, err = flags.GetString(name); err != nil {
			return nil, fmt.Errorf("failed to get %s flag: %w", name, err)
		}
	}
	if tf.ringSize, err = flags.GetInt("trace-ring-size"); err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	interval, err := flags.GetDuration("trace-heartbeat")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}

	level, err := trace.ParseLevel(tf.level)
	if err != nil {
		return nil, err
	}
	// --trace без уровня включает фазы
	if level == trace.LevelOff && tf.output != "" {
		level = trace.LevelPhase
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}
	mode, err := trace.ParseMode(tf.mode)
	if err != nil {
		return nil, err
	}
	format, err := trace.ParseFormat(tf.format)
	if err != nil {
		return nil, err
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: tf.output,
		RingSize:   tf.ringSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	ctx, span := trace.Start(trace.WithTracer(cmd.Context(), tracer), trace.ScopeRun, cmd.CommandPath())
	cmd.SetContext(ctx)
	heartbeat := trace.StartHeartbeat(tracer, interval)

	return func() {
		heartbeat.Stop()
		span.End("")
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: %v\n", err)
		}
	}, nil
}
