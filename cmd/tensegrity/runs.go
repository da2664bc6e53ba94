package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/tensegrity/internal/config"
	"github.com/san-kum/tensegrity/internal/export"
	"github.com/san-kum/tensegrity/internal/storage"
	"github.com/san-kum/tensegrity/internal/viz"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tEQUILIBRIUM\tSTEPS\tRESETS\tRESIDUAL")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%d\t%d\t%.3e\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.InEquilibrium,
			run.TimeSteps,
			run.KineticEnergyResets,
			run.ResidualNorm,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	snap, err := st.LoadSnapshot(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("name: %s\n", meta.Name)
	fmt.Printf("equilibrium: %v  steps: %d  resets: %d  residual: %.3e\n\n",
		meta.InEquilibrium, meta.TimeSteps, meta.KineticEnergyResets, meta.ResidualNorm)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NODE\tX\tY\tZ\tRX\tRY\tRZ")
	for _, n := range snap.Nodes {
		fmt.Fprintf(w, "%d\t%.6f\t%.6f\t%.6f\t%.3f\t%.3f\t%.3f\n",
			n.Index, n.Position[0], n.Position[1], n.Position[2],
			n.Reaction[0], n.Reaction[1], n.Reaction[2])
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println()
	printElements(snap)

	if len(meta.Metrics) > 0 {
		fmt.Println("\nmetrics:")
		for name, val := range meta.Metrics {
			fmt.Printf("  %s: %.6g\n", name, val)
		}
	}
	return nil
}

func printElements(snap *storage.Snapshot) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ELEMENT\tENDS\tKIND\tLENGTH\tFREE LENGTH\tFORCE")
	for _, e := range snap.Elements {
		fmt.Fprintf(w, "%d\t%d-%d\t%s\t%.6f\t%.6f\t%.3f\n",
			e.Index, e.Ends[0], e.Ends[1], e.Kind, e.Length, e.FreeLength, e.Tension)
	}
	w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	history, err := st.LoadHistory(args[0])
	if err != nil {
		return err
	}
	if len(history) == 0 {
		return fmt.Errorf("no data to plot")
	}

	ke := make([]float64, len(history))
	res := make([]float64, len(history))
	for i, h := range history {
		ke[i] = h.KineticEnergy
		res[i] = h.ResidualNorm
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", len(history))
	fmt.Println(viz.Plot(viz.Downsample(ke, 80), "kinetic energy", 10, 80))
	fmt.Println()
	fmt.Println(viz.PlotLog10(viz.Downsample(res, 80), "log10 residual norm", 10, 80))
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	data, err := storage.New(dataDir).Export(args[0])
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(outPath, data); err != nil {
		return err
	}
	if outPath != "" {
		fmt.Printf("exported to %s\n", outPath)
	}
	return nil
}

func exportXLSX(cmd *cobra.Command, args []string) error {
	data, err := storage.New(dataDir).Export(args[0])
	if err != nil {
		return err
	}
	path := outPath
	if path == "" {
		path = args[0] + ".xlsx"
	}
	if err := storage.ExportXLSX(path, data); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", path)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	data, err := storage.New(dataDir).Export(args[0])
	if err != nil {
		return err
	}
	pl, err := viz.ParsePlane(plane)
	if err != nil {
		return err
	}
	prefix := outPath
	if prefix == "" {
		prefix = args[0]
	}

	files := map[string]string{
		prefix + "_structure.svg":   export.StructureToSVG(data.Result, pl, 800, 600),
		prefix + "_convergence.svg": export.HistoryToSVG(data.History, 800, 300, "#00ff88"),
	}
	for path, svg := range files {
		if svg == "" {
			continue
		}
		if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("exported to %s\n", path)
	}
	return nil
}

func showPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		fmt.Println("presets:")
		for _, name := range config.ListPresets() {
			fmt.Printf("  %s\n", name)
		}
		return nil
	}

	p := config.GetPreset(args[0])
	if p == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
	}
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(p)
}
