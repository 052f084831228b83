// Package loader reads the upstream building dataset and optional footprint
// geometries.
package loader

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/urbanfabric/buildnet/internal/model"
)

// Mandatory dataset columns. Optional columns: height_m, building_type, usage.
var requiredColumns = []string{"building_id", "centroid_lon", "centroid_lat", "area_m2"}

// ReadBuildings loads the building table from a CSV file. A missing file,
// missing mandatory column, duplicate building ID, or unparsable mandatory
// field is a hard input error naming the offending resource; the graph
// builder downstream never sees an invalid record.
func ReadBuildings(path string) ([]model.Building, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: open buildings file %s", path)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, eris.Wrapf(err, "loader: read header of %s", path)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			return nil, eris.Errorf("loader: %s is missing mandatory column %q", path, name)
		}
	}

	var buildings []model.Building
	seen := make(map[string]bool)
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "loader: read %s row %d", path, line+1)
		}
		line++

		b, err := parseRow(record, col)
		if err != nil {
			return nil, eris.Wrapf(err, "loader: %s row %d", path, line)
		}
		if seen[b.ID] {
			return nil, eris.Errorf("loader: %s row %d: duplicate building_id %q", path, line, b.ID)
		}
		seen[b.ID] = true
		buildings = append(buildings, b)
	}

	zap.L().Info("loader: buildings loaded", zap.String("path", path), zap.Int("count", len(buildings)))
	return buildings, nil
}

func parseRow(record []string, col map[string]int) (model.Building, error) {
	var b model.Building

	id := field(record, col, "building_id")
	if id == "" {
		return b, eris.New("empty building_id")
	}
	b.ID = id

	var err error
	if b.CentroidLon, err = strconv.ParseFloat(field(record, col, "centroid_lon"), 64); err != nil {
		return b, eris.Wrap(err, "parse centroid_lon")
	}
	if b.CentroidLat, err = strconv.ParseFloat(field(record, col, "centroid_lat"), 64); err != nil {
		return b, eris.Wrap(err, "parse centroid_lat")
	}
	if b.AreaM2, err = strconv.ParseFloat(field(record, col, "area_m2"), 64); err != nil {
		return b, eris.Wrap(err, "parse area_m2")
	}
	if b.AreaM2 < 0 {
		return b, eris.Errorf("negative area_m2 %g", b.AreaM2)
	}

	if v := field(record, col, "height_m"); v != "" {
		h, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return b, eris.Wrap(err, "parse height_m")
		}
		b.HeightM = &h
	}
	b.BuildingType = field(record, col, "building_type")
	b.Usage = field(record, col, "usage")

	return b, nil
}

func field(record []string, col map[string]int, name string) string {
	idx, ok := col[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
