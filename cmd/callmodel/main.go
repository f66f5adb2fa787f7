package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"callmodel/internal/config"
	"callmodel/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "callmodel",
	Short:         "Resolved-call model explorer",
	Long:          `callmodel resolves built-in scenarios into call trees and dumps them as text or msgpack records`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// traceCleanup is set by the root pre-run hook and released after every
// command. It also stops profiling.
var traceCleanup = func() {}

func releaseTrace() {
	traceCleanup()
	traceCleanup = func() {}
}

func main() {
	rootCmd.Version = version.Current()

	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(scenariosCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("config", "", "path to "+config.FileName+" (searched upward from the working directory by default)")
	rootCmd.PersistentFlags().String("trace", "", "trace output file (\"-\" for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-mode", "", "trace storage mode (stream|ring|both)")
	rootCmd.PersistentFlags().String("trace-format", "", "trace format (auto|text|ndjson|chrome)")
	rootCmd.PersistentFlags().Int("trace-ring-size", 0, "trace ring buffer capacity")
	rootCmd.PersistentFlags().Duration("trace-heartbeat", 0, "trace heartbeat interval (0 disables)")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to file on exit")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to file")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cmd.SetContext(withConfig(cmd.Context(), cfg))
		stopProfiling, err := setupProfiling(cmd)
		if err != nil {
			return err
		}
		cleanup, err := setupTracing(cmd, cfg)
		if err != nil {
			stopProfiling()
			return err
		}
		traceCleanup = func() {
			cleanup()
			stopProfiling()
		}
		return nil
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		releaseTrace()
	}

	if err := rootCmd.Execute(); err != nil {
		releaseTrace()
		fmt.Fprintf(os.Stderr, "callmodel: %v\n", err)
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// useColor resolves the --color flag, falling back to the config file when
// the flag was not given.
func useColor(cmd *cobra.Command, out *os.File) (bool, error) {
	mode := configFrom(cmd.Context()).Output.Color
	if f := cmd.Root().PersistentFlags().Lookup("color"); f != nil && f.Changed {
		mode = f.Value.String()
	}
	return colorEnabled(mode, out != nil && isTerminal(out))
}

func colorEnabled(mode string, tty bool) (bool, error) {
	switch mode {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto", "":
		return tty, nil
	}
	return false, fmt.Errorf("invalid color mode %q (expected auto|on|off)", mode)
}
