package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/san-kum/tensegrity/internal/metrics"
)

// ExportData bundles a stored run for export.
type ExportData struct {
	Metadata *RunMetadata     `json:"metadata"`
	Result   *Snapshot        `json:"result"`
	History  []metrics.Sample `json:"history"`
}

func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	snap, err := s.LoadSnapshot(runID)
	if err != nil {
		return nil, err
	}
	history, err := s.LoadHistory(runID)
	if err != nil {
		return nil, err
	}
	return &ExportData{Metadata: meta, Result: snap, History: history}, nil
}

// ExportJSON writes data to path, or to stdout when path is empty.
func ExportJSON(path string, data *ExportData) error {
	if path == "" {
		return WriteJSON(os.Stdout, data)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteJSON(f, data)
}

func WriteJSON(w io.Writer, data *ExportData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

const (
	nodesSheet    = "Nodes"
	elementsSheet = "Elements"
	historySheet  = "History"
)

// ExportXLSX writes one sheet each for nodes, elements and the
// convergence history.
func ExportXLSX(path string, data *ExportData) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", nodesSheet); err != nil {
		return err
	}
	for _, name := range []string{elementsSheet, historySheet} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	rows := [][]any{{"node", "x", "y", "z", "ux", "uy", "uz", "rx", "ry", "rz"}}
	for _, n := range data.Result.Nodes {
		rows = append(rows, []any{
			n.Index,
			n.Position[0], n.Position[1], n.Position[2],
			n.Displacement[0], n.Displacement[1], n.Displacement[2],
			n.Reaction[0], n.Reaction[1], n.Reaction[2],
		})
	}
	if err := writeRows(f, nodesSheet, rows); err != nil {
		return err
	}

	rows = [][]any{{"element", "end0", "end1", "kind", "length", "free_length", "tension"}}
	for _, e := range data.Result.Elements {
		rows = append(rows, []any{e.Index, e.Ends[0], e.Ends[1], e.Kind, e.Length, e.FreeLength, e.Tension})
	}
	if err := writeRows(f, elementsSheet, rows); err != nil {
		return err
	}

	rows = [][]any{{"step", "time", "kinetic_energy", "residual_norm", "reset"}}
	for _, h := range data.History {
		rows = append(rows, []any{h.Step, h.Time, h.KineticEnergy, h.ResidualNorm, h.Reset})
	}
	if err := writeRows(f, historySheet, rows); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
