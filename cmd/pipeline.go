package main

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/urbanfabric/buildnet/internal/access"
	"github.com/urbanfabric/buildnet/internal/centrality"
	"github.com/urbanfabric/buildnet/internal/export"
	"github.com/urbanfabric/buildnet/internal/netstats"
	"github.com/urbanfabric/buildnet/internal/paths"
	"github.com/urbanfabric/buildnet/internal/store"
)

var (
	pipelineInput        string
	pipelineFootprints   string
	pipelineStrategy     string
	pipelineThreshold    float64
	pipelineEdgeDistance bool
	pipelineRadius       float64
	pipelineOutDir       string
	pipelinePersist      bool
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run build, analyze, and access end to end",
	Long:  "Builds the proximity graph once, then runs the statistics, centrality, and accessibility engines concurrently over it and writes every output table.",
	RunE: func(cmd *cobra.Command, args []string) error {
		g, buildings, err := buildGraph(pipelineInput, pipelineFootprints, pipelineStrategy, pipelineThreshold, pipelineEdgeDistance)
		if err != nil {
			return err
		}

		radius := pipelineRadius
		if radius <= 0 {
			radius = cfg.Access.RadiusM
		}

		// The graph is read-only from here on, so the three engines can run
		// concurrently without coordination.
		var (
			statsRes  = netstats.Compute(g)
			centRes   *centrality.Result
			accessRes *access.Result
			pathsRes  *paths.Result
		)
		var eg errgroup.Group
		eg.Go(func() error {
			centRes = centrality.Compute(g, centrality.Options{})
			return nil
		})
		eg.Go(func() error {
			accessRes = access.Compute(g, buildings, radius)
			return nil
		})
		eg.Go(func() error {
			pathsRes = paths.Sample(g, cfg.Paths.MaxPairs, cfg.Paths.Seed)
			return nil
		})
		if err := eg.Wait(); err != nil {
			return err
		}

		out := func(name string) string { return filepath.Join(pipelineOutDir, name) }
		if err := export.WriteGraphCSV(out("graph_nodes.csv"), out("graph_edges.csv"), g); err != nil {
			return err
		}
		if err := export.WriteStatsJSON(out("network_stats.json"), statsRes); err != nil {
			return err
		}
		if err := export.WriteCentralityCSV(out("network_metrics.csv"), centRes.Rows); err != nil {
			return err
		}
		if err := export.WriteAccessibilityCSV(out("accessibility_metrics.csv"), accessRes.Rows); err != nil {
			return err
		}
		if err := export.WritePathsJSON(out("network_metrics_paths.json"), pathsRes); err != nil {
			return err
		}

		if pipelinePersist {
			st, err := store.New(cfg.Store.Path)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()
			if err := st.Migrate(cmd.Context()); err != nil {
				return err
			}
			run, err := st.CreateRun(cmd.Context(), pipelineStrategy, radius, statsRes)
			if err != nil {
				return err
			}
			if err := st.SaveCentrality(cmd.Context(), run.ID, centRes.Rows); err != nil {
				return err
			}
			if err := st.SaveAccessibility(cmd.Context(), run.ID, accessRes.Rows); err != nil {
				return err
			}
			zap.L().Info("run persisted", zap.String("run_id", run.ID))
		}

		zap.L().Info("pipeline complete",
			zap.Int("buildings", len(buildings)),
			zap.Int("edges", g.NumEdges()),
			zap.Int("centrality_warnings", len(centRes.Warnings)),
			zap.Int("access_warnings", len(accessRes.Warnings)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pipelineCmd)
	pipelineCmd.Flags().StringVar(&pipelineInput, "input", "", "buildings CSV file (required)")
	pipelineCmd.Flags().StringVar(&pipelineFootprints, "footprints", "", "footprint shapefile (optional)")
	pipelineCmd.Flags().StringVar(&pipelineStrategy, "strategy", "threshold", "construction strategy: threshold or delaunay")
	pipelineCmd.Flags().Float64Var(&pipelineThreshold, "threshold", 200, "edge distance threshold in meters")
	pipelineCmd.Flags().BoolVar(&pipelineEdgeDistance, "edge-distance", false, "measure footprint edge-to-edge instead of centroids")
	pipelineCmd.Flags().Float64Var(&pipelineRadius, "radius", 0, "accessibility radius in meters (default from config)")
	pipelineCmd.Flags().StringVar(&pipelineOutDir, "out", ".", "output directory")
	pipelineCmd.Flags().BoolVar(&pipelinePersist, "persist", false, "persist the run to the analysis store")
	_ = pipelineCmd.MarkFlagRequired("input")
}
