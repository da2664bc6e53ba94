package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/tensegrity/internal/config"
	"github.com/san-kum/tensegrity/internal/metrics"
	"github.com/san-kum/tensegrity/internal/relax"
	"github.com/san-kum/tensegrity/internal/storage"
	"github.com/san-kum/tensegrity/internal/viz"
)

// loadProblem reads the problem from a preset or file; solver flags that
// were set explicitly override the file.
func loadProblem(cmd *cobra.Command, args []string) (*config.Problem, error) {
	var p *config.Problem
	switch {
	case preset != "":
		p = config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	case len(args) == 1:
		var err error
		p, err = config.Load(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to load problem: %w", err)
		}
	default:
		return nil, fmt.Errorf("need a problem file or --preset")
	}

	if p.Name == "" {
		p.Name = "problem"
	}
	if cmd.Flags().Changed("dt") {
		p.Solver.Dt = dt
	}
	if cmd.Flags().Changed("max-steps") {
		p.Solver.MaxTimeSteps = maxSteps
	}
	if cmd.Flags().Changed("max-resets") {
		p.Solver.MaxKineticEnergyResets = maxResets
	}
	if cmd.Flags().Changed("workers") {
		p.Solver.Workers = workers
		if workers == 0 {
			p.Solver.Workers = runtime.NumCPU()
		}
	}
	return p, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSolve(cmd *cobra.Command, args []string) error {
	p, err := loadProblem(cmd, args)
	if err != nil {
		return err
	}
	s, _, cfg, err := p.Build()
	if err != nil {
		return err
	}
	loads, deltas, err := p.Increments()
	if err != nil {
		return err
	}

	history := metrics.NewHistory()
	summary := metrics.Default()
	recorder := metrics.NewRecorder()

	solver, err := relax.New(cfg, relax.WithLogger(slog.Default()), relax.WithObserver(history), relax.WithObserver(recorder))
	if err != nil {
		return err
	}
	for _, m := range summary {
		solver.AddObserver(m)
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("relaxing %s (%d nodes, %d elements, %d stage(s))...\n", p.Name, s.NumNodes(), s.NumElements(), stages)
	started := time.Now()

	stageLoads, stageDeltas := relax.Split(loads, deltas, stages)
	start, err := relax.FromStructure(s, stageLoads, stageDeltas)
	if err != nil {
		return err
	}

	var res *relax.Result
	steps, resets := 0, 0
	for stage := 1; ; stage++ {
		t0 := time.Now()
		res, err = solver.Run(ctx, start)
		recorder.ObserveResult(res, time.Since(t0))
		if err != nil {
			return err
		}
		steps += res.TimeSteps
		resets += res.KineticEnergyResets
		slog.Debug("stage finished", "stage", stage, "steps", res.TimeSteps, "equilibrium", res.InEquilibrium)

		if stage >= max(stages, 1) {
			break
		}
		if start, err = res.Continue(stageLoads, stageDeltas); err != nil {
			return err
		}
	}
	res.TimeSteps = steps
	res.KineticEnergyResets = resets

	fmt.Printf("completed in %v\n", time.Since(started))
	if res.InEquilibrium {
		fmt.Println("equilibrium reached")
	} else {
		fmt.Println("iteration cap reached before equilibrium")
	}
	fmt.Printf("steps: %d  resets: %d  residual: %.3e\n\n", res.TimeSteps, res.KineticEnergyResets, res.ResidualNorm)
	printElements(storage.NewSnapshot(p.Name, res))

	values := make(map[string]float64, len(summary))
	fmt.Println("\nmetrics:")
	for _, m := range summary {
		values[m.Name()] = m.Value()
		fmt.Printf("  %s: %.6g\n", m.Name(), m.Value())
	}

	if metricsFile != "" {
		if err := recorder.WriteTextfile(metricsFile); err != nil {
			return err
		}
	}

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(storage.Run{
		Name:    p.Name,
		Config:  cfg,
		Result:  res,
		History: history.Samples(),
		Metrics: values,
	})
	if err != nil {
		return err
	}
	fmt.Printf("\nrun id: %s\n", runID)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	p, err := loadProblem(cmd, args)
	if err != nil {
		return err
	}
	s, _, cfg, err := p.Build()
	if err != nil {
		return err
	}
	loads, deltas, err := p.Increments()
	if err != nil {
		return err
	}

	starts := make([]*relax.Start, len(factors))
	for i, f := range factors {
		scaled := make([]float64, len(deltas))
		for e, d := range deltas {
			scaled[e] = f * d
		}
		if starts[i], err = relax.FromStructure(s, loads, scaled); err != nil {
			return fmt.Errorf("factor %g: %w", f, err)
		}
	}

	recorder := metrics.NewRecorder()
	solver, err := relax.New(cfg, relax.WithLogger(slog.Default()))
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	started := time.Now()
	results, err := relax.Sweep(ctx, solver, starts, runtime.NumCPU())
	if err != nil {
		return err
	}
	elapsed := time.Since(started)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FACTOR\tEQUILIBRIUM\tSTEPS\tRESETS\tMIN FORCE\tMAX FORCE")
	for i, res := range results {
		recorder.ObserveResult(res, res.Elapsed)
		lo, hi := res.Final.Tension[0], res.Final.Tension[0]
		for _, t := range res.Final.Tension {
			lo, hi = min(lo, t), max(hi, t)
		}
		fmt.Fprintf(w, "%g\t%v\t%d\t%d\t%.3f\t%.3f\n", factors[i], res.InEquilibrium, res.TimeSteps, res.KineticEnergyResets, lo, hi)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d runs in %v\n", len(results), elapsed)

	if metricsFile != "" {
		return recorder.WriteTextfile(metricsFile)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	p, err := loadProblem(cmd, args)
	if err != nil {
		return err
	}
	s, start, cfg, err := p.Build()
	if err != nil {
		return err
	}
	pl, err := viz.ParsePlane(plane)
	if err != nil {
		return err
	}

	feed := viz.NewFeed(64, every)
	// the TUI owns the terminal; keep solver logs out of it
	solver, err := relax.New(cfg, relax.WithLogger(slog.New(slog.DiscardHandler)), relax.WithObserver(feed))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		res, err := solver.Run(ctx, start)
		feed.Done(res, err)
	}()

	m := viz.NewModel(p.Name, s, feed).WithPlane(pl)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		return err
	}
	return nil
}
