package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/urbanfabric/buildnet/internal/centrality"
	"github.com/urbanfabric/buildnet/internal/export"
	"github.com/urbanfabric/buildnet/internal/paths"
)

var (
	analyzeInput        string
	analyzeFootprints   string
	analyzeStrategy     string
	analyzeThreshold    float64
	analyzeEdgeDistance bool
	analyzeOutput       string
	analyzePathsOut     string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compute per-building centrality scores",
	RunE: func(cmd *cobra.Command, args []string) error {
		g, _, err := buildGraph(analyzeInput, analyzeFootprints, analyzeStrategy, analyzeThreshold, analyzeEdgeDistance)
		if err != nil {
			return err
		}

		res := centrality.Compute(g, centrality.Options{})
		for _, w := range res.Warnings {
			zap.L().Warn("centrality fallback", zap.String("warning", w))
		}
		if err := export.WriteCentralityCSV(analyzeOutput, res.Rows); err != nil {
			return err
		}
		zap.L().Info("centrality table written",
			zap.String("path", analyzeOutput), zap.Int("rows", len(res.Rows)))

		if analyzePathsOut != "" {
			pr := paths.Sample(g, cfg.Paths.MaxPairs, cfg.Paths.Seed)
			if err := export.WritePathsJSON(analyzePathsOut, pr); err != nil {
				return err
			}
			zap.L().Info("shortest paths written",
				zap.String("path", analyzePathsOut),
				zap.Int("total_pairs", pr.TotalPairs),
				zap.Int("calculated_pairs", pr.CalculatedPairs))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&analyzeInput, "input", "", "buildings CSV file (required)")
	analyzeCmd.Flags().StringVar(&analyzeFootprints, "footprints", "", "footprint shapefile (optional)")
	analyzeCmd.Flags().StringVar(&analyzeStrategy, "strategy", "threshold", "construction strategy: threshold or delaunay")
	analyzeCmd.Flags().Float64Var(&analyzeThreshold, "threshold", 200, "edge distance threshold in meters")
	analyzeCmd.Flags().BoolVar(&analyzeEdgeDistance, "edge-distance", false, "measure footprint edge-to-edge instead of centroids")
	analyzeCmd.Flags().StringVar(&analyzeOutput, "output", "network_metrics.csv", "centrality table output path")
	analyzeCmd.Flags().StringVar(&analyzePathsOut, "paths-out", "", "sampled shortest paths JSON output path (optional)")
	_ = analyzeCmd.MarkFlagRequired("input")
}
