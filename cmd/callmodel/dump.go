package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"callmodel/internal/calldump"
	"callmodel/internal/diag"
	"callmodel/internal/fixture"
	"callmodel/internal/observ"
	"callmodel/internal/session"
	"callmodel/internal/trace"
)

var (
	dumpFormat     string
	dumpOutput     string
	dumpAllCalls   bool
	dumpDirectives []string
	dumpJobs       int
	dumpMetrics    string
)

var _ session.Metrics = (*observ.Metrics)(nil)

func init() {
	dumpCmd.Flags().StringVar(&dumpFormat, "format", "", "output format (text|msgpack|yaml), defaults to [output].format")
	dumpCmd.Flags().StringVarP(&dumpOutput, "output", "o", "", "write to file instead of stdout")
	dumpCmd.Flags().BoolVar(&dumpAllCalls, "all-calls", false, "dump every call recorded by the session, not only the final one")
	dumpCmd.Flags().StringArrayVar(&dumpDirectives, "module", nil, "module kind directive (Source|LibraryBinary|LibrarySource|ScriptSource)")
	dumpCmd.Flags().StringVar(&dumpMetrics, "metrics", "", "write session metrics in Prometheus text format to file (\"-\" for stderr)")
	dumpCmd.Flags().IntVarP(&dumpJobs, "jobs", "j", 0, "scenarios resolved in parallel (0 = GOMAXPROCS)")
}

var dumpCmd = &cobra.Command{
	Use:   "dump [scenario...]",
	Short: "Resolve scenarios and dump their calls",
	Long:  "Resolve the named scenarios (all of them when none is given) and dump the resulting calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := configFrom(cmd.Context())
		format := dumpFormat
		if format == "" {
			format = cfg.Output.Format
		}
		switch format {
		case "text", "msgpack", "yaml":
		default:
			return fmt.Errorf("unsupported format %q (must be text, msgpack or yaml)", format)
		}
		kind, err := session.ModuleKindFromDirectives(dumpDirectives, session.ModuleSource)
		if err != nil {
			return err
		}
		scenarios, err := selectScenarios(args)
		if err != nil {
			return err
		}

		color := false
		if format == "text" && dumpOutput == "" {
			if color, err = useColor(cmd, os.Stdout); err != nil {
				return err
			}
		}
		showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
		if err != nil {
			return fmt.Errorf("failed to get timings flag: %w", err)
		}
		req := dumpRequest{
			moduleKind: kind,
			allCalls:   dumpAllCalls,
			color:      color,
			jobs:       dumpJobs,
		}
		if showTimings {
			req.timer = observ.NewTimer()
		}
		var metrics *observ.Metrics
		if dumpMetrics != "" {
			metrics = observ.NewMetrics()
			req.metrics = metrics
		}
		results, err := dumpScenarios(cmd.Context(), scenarios, req)
		if metrics != nil {
			if werr := writeMetrics(cmd, metrics, dumpMetrics); werr != nil {
				return errors.Join(err, werr)
			}
		}
		if err != nil {
			return err
		}
		if req.timer != nil {
			fmt.Fprint(cmd.ErrOrStderr(), req.timer.Summary())
		}

		var out io.Writer = cmd.OutOrStdout()
		if dumpOutput != "" && format != "msgpack" {
			f, err := os.Create(dumpOutput)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		file := &calldump.File{Session: strings.Join(scenarioNames(scenarios), ",")}
		for _, r := range results {
			file.Records = append(file.Records, r.records...)
		}
		switch format {
		case "msgpack":
			if dumpOutput != "" {
				return calldump.SaveFile(dumpOutput, file)
			}
			return calldump.Encode(out, file)
		case "yaml":
			return calldump.EncodeYAML(out, file)
		default:
			return writeText(out, results)
		}
	},
}

type dumpRequest struct {
	moduleKind session.ModuleKind
	allCalls   bool
	color      bool
	jobs       int
	timer      *observ.Timer   // nil disables timings
	metrics    session.Metrics // nil disables metrics
}

type dumpResult struct {
	scenario fixture.Scenario
	text     string
	records  []calldump.Record
}

func selectScenarios(names []string) ([]fixture.Scenario, error) {
	if len(names) == 0 {
		return fixture.Scenarios(), nil
	}
	out := make([]fixture.Scenario, 0, len(names))
	for _, name := range names {
		sc, ok := fixture.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown scenario %q (see `callmodel scenarios`)", name)
		}
		out = append(out, sc)
	}
	return out, nil
}

func scenarioNames(scenarios []fixture.Scenario) []string {
	names := make([]string, len(scenarios))
	for i, sc := range scenarios {
		names[i] = sc.Name
	}
	return names
}

// dumpScenarios resolves every scenario in its own session and renders the
// result before the session closes. Results keep the order of scenarios.
func dumpScenarios(ctx context.Context, scenarios []fixture.Scenario, req dumpRequest) ([]dumpResult, error) {
	ctx, span := trace.BeginFromContext(ctx, trace.ScopeCommand, "dump")
	defer span.End(fmt.Sprintf("%d scenarios", len(scenarios)))

	jobs := req.jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]dumpResult, len(scenarios))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, sc := range scenarios {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := dumpScenario(gctx, sc, req)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func dumpScenario(ctx context.Context, sc fixture.Scenario, req dumpRequest) (res dumpResult, err error) {
	if req.timer != nil {
		idx := req.timer.Begin(sc.Name)
		defer func() {
			note := fmt.Sprintf("%d calls", len(res.records))
			if err != nil {
				note = "failed"
			}
			req.timer.End(idx, note)
		}()
	}
	return resolveAndDump(ctx, sc, req)
}

func resolveAndDump(ctx context.Context, sc fixture.Scenario, req dumpRequest) (dumpResult, error) {
	bag := diag.NewBag(16)
	res, err := fixture.Run(ctx, sc, session.Options{
		ModuleKind: req.moduleKind,
		Reporter:   diag.BagReporter{Bag: bag},
		Metrics:    req.metrics,
	})
	if err != nil {
		for _, d := range bag.Items() {
			err = fmt.Errorf("%w\n  %s", err, d)
		}
		return dumpResult{}, err
	}
	defer res.Session.Close()

	d := calldump.New(res.World.Table, res.World.Exprs)
	entries := res.Session.Calls()
	if !req.allCalls {
		entries = slices.DeleteFunc(entries, func(e session.Entry) bool { return e.Call != res.Call })
	}

	out := dumpResult{scenario: sc}
	var buf bytes.Buffer
	for _, e := range entries {
		if x := res.World.Exprs.Get(e.Expr); x != nil {
			fmt.Fprintf(&buf, "%s @ %s\n", x.Text, x.Span)
		}
		if err := d.Write(&buf, e.Call, calldump.Options{Color: req.color}); err != nil {
			return dumpResult{}, fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
		rec, err := d.Record(e.Expr, e.Call)
		if err != nil {
			return dumpResult{}, fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
		out.records = append(out.records, rec)
	}
	out.text = buf.String()
	return out, nil
}

func writeMetrics(cmd *cobra.Command, m *observ.Metrics, path string) error {
	if path == "-" {
		return m.WriteText(cmd.ErrOrStderr())
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := m.WriteText(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func writeText(w io.Writer, results []dumpResult) error {
	for i, r := range results {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "== %s: %s\n%s", r.scenario.Name, r.scenario.Source, r.text); err != nil {
			return err
		}
	}
	return nil
}
