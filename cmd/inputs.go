package main

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/urbanfabric/buildnet/internal/graph"
	"github.com/urbanfabric/buildnet/internal/loader"
	"github.com/urbanfabric/buildnet/internal/model"
)

// loadInputs reads the building table and, when a shapefile path is given,
// the footprint map. Footprints are optional by contract: a missing
// footprints flag simply disables edge-to-edge measurement.
func loadInputs(buildingsPath, footprintsPath string) ([]model.Building, map[string]*geom.Polygon, error) {
	buildings, err := loader.ReadBuildings(buildingsPath)
	if err != nil {
		return nil, nil, err
	}

	var footprints map[string]*geom.Polygon
	if footprintsPath != "" {
		footprints, err = loader.ReadFootprints(footprintsPath, cfg.Graph.FootprintIDCol)
		if err != nil {
			return nil, nil, err
		}
	}
	return buildings, footprints, nil
}

// strategyFromConfig resolves the construction strategy from config plus the
// per-command flag overrides.
func strategyFromConfig(strategyName string, thresholdM float64, useEdgeDistance bool) (graph.Strategy, error) {
	switch strategyName {
	case "threshold":
		metric := graph.MetricGeodesic
		if cfg.Graph.Metric == string(graph.MetricPlanar) {
			metric = graph.MetricPlanar
		}
		return graph.Threshold{
			RadiusM:         thresholdM,
			Metric:          metric,
			UseEdgeDistance: useEdgeDistance,
		}, nil
	case "delaunay":
		return graph.Delaunay{}, nil
	default:
		return nil, eris.Errorf("unknown graph strategy %q (want threshold or delaunay)", strategyName)
	}
}

// buildGraph is the shared build step used by every analysis command.
func buildGraph(buildingsPath, footprintsPath, strategyName string, thresholdM float64, useEdgeDistance bool) (*graph.Graph, []model.Building, error) {
	buildings, footprints, err := loadInputs(buildingsPath, footprintsPath)
	if err != nil {
		return nil, nil, err
	}

	strategy, err := strategyFromConfig(strategyName, thresholdM, useEdgeDistance)
	if err != nil {
		return nil, nil, err
	}

	g, err := graph.Build(strategy, buildings, footprints)
	if err != nil {
		return nil, nil, err
	}
	zap.L().Info("proximity graph ready",
		zap.Int("nodes", g.NumNodes()),
		zap.Int("edges", g.NumEdges()))
	return g, buildings, nil
}
