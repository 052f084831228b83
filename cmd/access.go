package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/urbanfabric/buildnet/internal/access"
	"github.com/urbanfabric/buildnet/internal/export"
)

var (
	accessInput        string
	accessFootprints   string
	accessStrategy     string
	accessThreshold    float64
	accessEdgeDistance bool
	accessRadius       float64
	accessOutput       string
)

var accessCmd = &cobra.Command{
	Use:   "access",
	Short: "Compute per-building accessibility scores",
	RunE: func(cmd *cobra.Command, args []string) error {
		g, buildings, err := buildGraph(accessInput, accessFootprints, accessStrategy, accessThreshold, accessEdgeDistance)
		if err != nil {
			return err
		}

		radius := accessRadius
		if radius <= 0 {
			radius = cfg.Access.RadiusM
		}
		res := access.Compute(g, buildings, radius)
		for _, w := range res.Warnings {
			zap.L().Warn("accessibility fallback", zap.String("warning", w))
		}
		if err := export.WriteAccessibilityCSV(accessOutput, res.Rows); err != nil {
			return err
		}
		zap.L().Info("accessibility table written",
			zap.String("path", accessOutput),
			zap.Int("rows", len(res.Rows)),
			zap.Float64("radius_m", radius))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(accessCmd)
	accessCmd.Flags().StringVar(&accessInput, "input", "", "buildings CSV file (required)")
	accessCmd.Flags().StringVar(&accessFootprints, "footprints", "", "footprint shapefile (optional)")
	accessCmd.Flags().StringVar(&accessStrategy, "strategy", "threshold", "construction strategy: threshold or delaunay")
	accessCmd.Flags().Float64Var(&accessThreshold, "threshold", 200, "edge distance threshold in meters")
	accessCmd.Flags().BoolVar(&accessEdgeDistance, "edge-distance", false, "measure footprint edge-to-edge instead of centroids")
	accessCmd.Flags().Float64Var(&accessRadius, "radius", 0, "accessibility radius in meters (default from config)")
	accessCmd.Flags().StringVar(&accessOutput, "output", "accessibility_metrics.csv", "accessibility table output path")
	_ = accessCmd.MarkFlagRequired("input")
}
