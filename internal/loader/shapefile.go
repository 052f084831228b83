package loader

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// ReadFootprints reads building footprint polygons from a shapefile, keyed by
// the attribute named idField. Only the first ring of each polygon shape is
// kept (the exterior boundary). Malformed shapes and records without an ID
// are skipped with a debug log; absence of a footprint later degrades
// edge-to-edge distance to centroid distance transparently.
func ReadFootprints(shpPath, idField string) (map[string]*geom.Polygon, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	idIdx := -1
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		if strings.EqualFold(name, idField) {
			idIdx = i
			break
		}
	}
	if idIdx < 0 {
		return nil, eris.Errorf("loader: shapefile %s has no field %q", shpPath, idField)
	}

	footprints := make(map[string]*geom.Polygon)
	var skipped int
	for reader.Next() {
		num, shape := reader.Shape()

		id := strings.TrimSpace(strings.TrimRight(reader.Attribute(idIdx), "\x00"))
		if id == "" {
			skipped++
			continue
		}

		poly, ok := shape.(*shp.Polygon)
		if !ok || poly == nil {
			skipped++
			zap.L().Debug("loader: skipping non-polygon shape", zap.Int("record", num), zap.String("id", id))
			continue
		}

		p := polygonFromShape(poly)
		if p == nil {
			skipped++
			zap.L().Debug("loader: skipping degenerate footprint", zap.Int("record", num), zap.String("id", id))
			continue
		}
		footprints[id] = p
	}

	zap.L().Info("loader: footprints loaded",
		zap.String("path", shpPath),
		zap.Int("count", len(footprints)),
		zap.Int("skipped", skipped))
	return footprints, nil
}

// polygonFromShape converts the first part of a shapefile polygon into a
// closed go-geom polygon, returning nil when the ring has too few vertices.
func polygonFromShape(p *shp.Polygon) *geom.Polygon {
	if p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	end := int32(len(p.Points))
	if p.NumParts > 1 {
		end = p.Parts[1]
	}

	flat := make([]float64, 0, end*2)
	for i := p.Parts[0]; i < end; i++ {
		flat = append(flat, p.Points[i].X, p.Points[i].Y)
	}
	// Ensure the ring closes on itself.
	if len(flat) >= 2 && (flat[0] != flat[len(flat)-2] || flat[1] != flat[len(flat)-1]) {
		flat = append(flat, flat[0], flat[1])
	}
	if len(flat) < 8 {
		// Fewer than 3 distinct vertices plus closure.
		return nil
	}

	return geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)}).SetSRID(4326)
}
