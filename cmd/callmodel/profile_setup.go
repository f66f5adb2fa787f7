package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"callmodel/internal/prof"
)

// setupProfiling starts the profiles requested by the persistent profiling
// flags. The cleanup is safe to call multiple times.
func setupProfiling(cmd *cobra.Command) (func(), error) {
	flags := cmd.Root().PersistentFlags()
	var opts prof.Options
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"cpu-profile", &opts.CPU},
		{"mem-profile", &opts.Mem},
		{"runtime-trace", &opts.Trace},
	} {
		v, err := flags.GetString(f.name)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s flag: %w", f.name, err)
		}
		*f.dst = v
	}
	if opts == (prof.Options{}) {
		return func() {}, nil
	}
	s, err := prof.Start(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to start profiling: %w", err)
	}
	return func() {
		if err := s.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "profile: %v\n", err)
		}
	}, nil
}
