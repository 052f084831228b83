// Package export writes the analysis outputs as flat tabular files and reads
// them back for downstream consumers.
package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"strconv"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/urbanfabric/buildnet/internal/graph"
	"github.com/urbanfabric/buildnet/internal/model"
	"github.com/urbanfabric/buildnet/internal/paths"
)

// WriteCentralityCSV writes the centrality table. One row per building.
func WriteCentralityCSV(path string, rows []model.CentralityRow) error {
	data, err := csvutil.Marshal(rows)
	if err != nil {
		return eris.Wrap(err, "export: marshal centrality")
	}
	return write(path, data)
}

// ReadCentralityCSV reads a centrality table written by WriteCentralityCSV.
// The round trip is lossless for all declared numeric fields.
func ReadCentralityCSV(path string) ([]model.CentralityRow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "export: read %s", path)
	}
	var rows []model.CentralityRow
	if err := csvutil.Unmarshal(data, &rows); err != nil {
		return nil, eris.Wrapf(err, "export: unmarshal centrality %s", path)
	}
	return rows, nil
}

// WriteAccessibilityCSV writes the accessibility table. Missing average path
// distances serialize as empty cells, never as infinities.
func WriteAccessibilityCSV(path string, rows []model.AccessibilityRow) error {
	data, err := csvutil.Marshal(rows)
	if err != nil {
		return eris.Wrap(err, "export: marshal accessibility")
	}
	return write(path, data)
}

// ReadAccessibilityCSV reads an accessibility table; empty average path
// distance cells come back as nil.
func ReadAccessibilityCSV(path string) ([]model.AccessibilityRow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "export: read %s", path)
	}
	var rows []model.AccessibilityRow
	if err := csvutil.Unmarshal(data, &rows); err != nil {
		return nil, eris.Wrapf(err, "export: unmarshal accessibility %s", path)
	}
	return rows, nil
}

// WriteGraphCSV writes the node and edge tables of a graph to two CSV files.
// The edge table carries {source, target, distance_m, weight}, with weight
// equal to distance_m by construction.
func WriteGraphCSV(nodesPath, edgesPath string, g *graph.Graph) error {
	buildings := make([]model.Building, 0, g.NumNodes())
	for _, id := range g.Nodes() {
		if b, ok := g.Building(id); ok {
			buildings = append(buildings, b)
		}
	}
	data, err := csvutil.Marshal(buildings)
	if err != nil {
		return eris.Wrap(err, "export: marshal node table")
	}
	if err := write(nodesPath, data); err != nil {
		return err
	}

	f, err := os.Create(edgesPath)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", edgesPath)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"source", "target", "distance_m", "weight"}); err != nil {
		return eris.Wrap(err, "export: write edge header")
	}
	for _, e := range g.Edges() {
		d := formatFloat(e.DistanceM)
		if err := w.Write([]string{e.Source, e.Target, d, d}); err != nil {
			return eris.Wrap(err, "export: write edge row")
		}
	}
	w.Flush()
	return eris.Wrap(w.Error(), "export: flush edge table")
}

// WriteStatsJSON writes the network statistics as a flat key/value record.
// Undefined metrics serialize as JSON null.
func WriteStatsJSON(path string, stats *model.NetworkStats) error {
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return eris.Wrap(err, "export: marshal stats")
	}
	return write(path, append(data, '\n'))
}

// WritePathsJSON writes the sampled shortest-path document.
func WritePathsJSON(path string, res *paths.Result) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return eris.Wrap(err, "export: marshal paths")
	}
	return write(path, append(data, '\n'))
}

func write(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "export: write %s", path)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
