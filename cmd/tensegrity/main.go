package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const defaultDataDir = ".tensegrity"

var (
	dataDir     string
	verbose     bool
	preset      string
	dt          float64
	maxSteps    int
	maxResets   int
	workers     int
	stages      int
	noSave      bool
	metricsFile string
	factors     []float64
	outPath     string
	plane       string
	every       int
)

// main wires the tensegrity CLI. A .env file in the working directory may
// set TENSEGRITY_DATA to change the default run directory.
func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("could not read .env", "err", err)
	}
	defaultData := os.Getenv("TENSEGRITY_DATA")
	if defaultData == "" {
		defaultData = defaultDataDir
	}

	rootCmd := &cobra.Command{
		Use:           "tensegrity",
		Short:         "dynamic relaxation of cable and strut networks",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", defaultData, "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every kinetic energy reset")

	solveCmd := &cobra.Command{
		Use:   "solve [problem.yaml]",
		Short: "relax a structure to equilibrium",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSolve,
	}
	addSolverFlags(solveCmd)
	solveCmd.Flags().IntVar(&stages, "steps", 1, "apply increments in this many equal stages")
	solveCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	solveCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this file")

	sweepCmd := &cobra.Command{
		Use:   "sweep [problem.yaml]",
		Short: "solve for several prestress levels in parallel",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addSolverFlags(sweepCmd)
	sweepCmd.Flags().Float64SliceVar(&factors, "factors", []float64{0.25, 0.5, 0.75, 1}, "free-length increment scale factors")
	sweepCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this file")

	liveCmd := &cobra.Command{
		Use:   "live [problem.yaml]",
		Short: "relax with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSolverFlags(liveCmd)
	liveCmd.Flags().StringVar(&plane, "plane", "xz", "projection plane (xz, xy, yz)")
	liveCmd.Flags().IntVar(&every, "every", 1, "show every nth step")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show run results",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot convergence history",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")

	exportXLSXCmd := &cobra.Command{
		Use:   "export-xlsx [run_id]",
		Short: "export run data to an Excel workbook",
		Args:  cobra.ExactArgs(1),
		RunE:  exportXLSX,
	}
	exportXLSXCmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default <run_id>.xlsx)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw the relaxed structure and its convergence as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outPath, "output", "o", "", "output prefix (default <run_id>)")
	exportSVGCmd.Flags().StringVar(&plane, "plane", "xz", "projection plane (xz, xy, yz)")

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets or print one as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showPresets,
	}

	rootCmd.AddCommand(solveCmd, sweepCmd, liveCmd, listCmd, showCmd, plotCmd, exportJSONCmd, exportXLSXCmd, exportSVGCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSolverFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "use a built-in problem")
	cmd.Flags().Float64Var(&dt, "dt", 0, "time step")
	cmd.Flags().IntVar(&maxSteps, "max-steps", 0, "time step cap")
	cmd.Flags().IntVar(&maxResets, "max-resets", 0, "kinetic energy reset cap")
	cmd.Flags().IntVar(&workers, "workers", 0, "assembly workers (0 = one per CPU)")
}
