package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"callmodel/internal/config"
	"callmodel/internal/trace"
)

// setupTracing merges the trace flags over cfg.Trace and attaches the tracer
// to the command context. The returned cleanup flushes and closes it.
func setupTracing(cmd *cobra.Command, cfg config.Config) (func(), error) {
	tc, err := traceFlags(cmd, cfg.Trace)
	if err != nil {
		return nil, err
	}

	level, err := trace.ParseLevel(tc.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid trace level: %w", err)
	}

	// If level is off and no output specified, skip tracing
	if level == trace.LevelOff && tc.Output == "" {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}
	if level == trace.LevelOff {
		level = trace.LevelPhase
	}

	mode, err := trace.ParseMode(tc.Mode)
	if err != nil {
		return nil, fmt.Errorf("invalid trace mode: %w", err)
	}
	format, err := trace.ParseFormat(tc.Format)
	if err != nil {
		return nil, fmt.Errorf("invalid trace format: %w", err)
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: tc.Output,
		RingSize:   tc.RingSize,
		Heartbeat:  tc.Heartbeat,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))

	var heartbeat *trace.Heartbeat
	if tc.Heartbeat > 0 {
		heartbeat = trace.StartHeartbeat(tracer, tc.Heartbeat)
	}

	cleanup := func() {
		if heartbeat != nil {
			heartbeat.Stop()
		}
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	return cleanup, nil
}

// traceFlags overrides tc with every trace flag given on the command line.
func traceFlags(cmd *cobra.Command, tc config.TraceConfig) (config.TraceConfig, error) {
	flags := cmd.Root().PersistentFlags()
	strs := []struct {
		name string
		dst  *string
	}{
		{"trace", &tc.Output},
		{"trace-level", &tc.Level},
		{"trace-mode", &tc.Mode},
		{"trace-format", &tc.Format},
	}
	for _, s := range strs {
		if !flags.Changed(s.name) {
			continue
		}
		v, err := flags.GetString(s.name)
		if err != nil {
			return tc, fmt.Errorf("failed to get %s flag: %w", s.name, err)
		}
		*s.dst = v
	}
	if flags.Changed("trace-ring-size") {
		v, err := flags.GetInt("trace-ring-size")
		if err != nil {
			return tc, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
		}
		tc.RingSize = v
	}
	if flags.Changed("trace-heartbeat") {
		v, err := flags.GetDuration("trace-heartbeat")
		if err != nil {
			return tc, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
		}
		tc.Heartbeat = v
	}
	return tc, nil
}
