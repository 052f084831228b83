// Package model defines the core data types shared across the analysis pipeline.
package model

// Building is one georeferenced building record as supplied by the upstream
// extraction stage. Centroid coordinates are WGS84 degrees. Values are treated
// as immutable once loaded.
type Building struct {
	ID           string   `csv:"building_id" json:"building_id"`
	CentroidLon  float64  `csv:"centroid_lon" json:"centroid_lon"`
	CentroidLat  float64  `csv:"centroid_lat" json:"centroid_lat"`
	AreaM2       float64  `csv:"area_m2" json:"area_m2"`
	HeightM      *float64 `csv:"height_m,omitempty" json:"height_m,omitempty"`
	BuildingType string   `csv:"building_type,omitempty" json:"building_type,omitempty"`
	Usage        string   `csv:"usage,omitempty" json:"usage,omitempty"`
}

// CentralityRow is the per-building centrality record. All centrality values
// are normalized to [0,1]; Degree is the raw edge count.
type CentralityRow struct {
	BuildingID            string  `csv:"building_id" json:"building_id"`
	Degree                int     `csv:"degree" json:"degree"`
	DegreeCentrality      float64 `csv:"degree_centrality" json:"degree_centrality"`
	BetweennessCentrality float64 `csv:"betweenness_centrality" json:"betweenness_centrality"`
	ClosenessCentrality   float64 `csv:"closeness_centrality" json:"closeness_centrality"`
	PageRank              float64 `csv:"pagerank" json:"pagerank"`
}

// AccessibilityRow is the per-building accessibility record. AvgPathDistanceM
// is nil when the building has no reachable network peers; it is never an
// infinity in exported output.
type AccessibilityRow struct {
	BuildingID            string   `csv:"building_id" json:"building_id"`
	DistanceCount         int      `csv:"distance_count" json:"distance_count"`
	NetworkReachableCount int      `csv:"network_reachable_count" json:"network_reachable_count"`
	AvgPathDistanceM      *float64 `csv:"avg_path_distance_m" json:"avg_path_distance_m"`
	WeightedAccessibility float64  `csv:"weighted_accessibility" json:"weighted_accessibility"`
}

// NetworkStats summarizes a finished proximity graph. Pointer fields are nil
// when the metric is undefined for the graph at hand (single-node,
// disconnected, empty); they are never substituted with a misleading zero.
type NetworkStats struct {
	NumNodes              int      `json:"num_nodes"`
	NumEdges              int      `json:"num_edges"`
	Density               float64  `json:"density"`
	AverageDegree         float64  `json:"average_degree"`
	IsConnected           bool     `json:"is_connected"`
	NumComponents         int      `json:"num_connected_components"`
	AvgShortestPathLength *float64 `json:"average_shortest_path_length"`
	AvgClustering         *float64 `json:"average_clustering"`
}

// Float64Ptr returns a pointer to v. Convenience for the optional metric fields.
func Float64Ptr(v float64) *float64 { return &v }
