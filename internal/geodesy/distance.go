// Package geodesy computes distances between georeferenced points and
// building footprints.
package geodesy

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

const (
	// Mean Earth radius in meters, used by the spherical fallback.
	earthRadiusM = 6371000.0

	// WGS84 ellipsoid.
	wgs84A = 6378137.0
	wgs84F = 1.0 / 298.257223563

	vincentyMaxIterations = 200
	vincentyTolerance     = 1e-12
)

// Haversine returns the great-circle distance in meters between two WGS84
// points on a spherical Earth. It is the closed-form fallback for Geodesic
// and is always finite, symmetric, and zero for identical points.
func Haversine(lon1, lat1, lon2, lat2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)
	a := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusM * c
}

// Geodesic returns the ellipsoidal (WGS84, Vincenty inverse) distance in
// meters between two points. When the Vincenty iteration fails to converge,
// which happens for near-antipodal points, it falls back to Haversine. The
// result is deterministic and symmetric, and identical points yield 0.
func Geodesic(lon1, lat1, lon2, lat2 float64) float64 {
	if lon1 == lon2 && lat1 == lat2 {
		return 0
	}

	d, ok := vincenty(lon1, lat1, lon2, lat2)
	if !ok {
		return Haversine(lon1, lat1, lon2, lat2)
	}
	return d
}

// vincenty runs the Vincenty inverse formula. The second return value is
// false when the iteration did not converge or produced a non-finite result.
func vincenty(lon1, lat1, lon2, lat2 float64) (float64, bool) {
	b := wgs84A * (1 - wgs84F)

	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	l := (lon2 - lon1) * math.Pi / 180

	u1 := math.Atan((1 - wgs84F) * math.Tan(phi1))
	u2 := math.Atan((1 - wgs84F) * math.Tan(phi2))
	sinU1, cosU1 := math.Sincos(u1)
	sinU2, cosU2 := math.Sincos(u2)

	lambda := l
	var sinSigma, cosSigma, sigma, cosSqAlpha, cos2SigmaM float64

	converged := false
	for i := 0; i < vincentyMaxIterations; i++ {
		sinLambda, cosLambda := math.Sincos(lambda)
		sinSigma = math.Sqrt(
			(cosU2*sinLambda)*(cosU2*sinLambda) +
				(cosU1*sinU2-sinU1*cosU2*cosLambda)*(cosU1*sinU2-sinU1*cosU2*cosLambda),
		)
		if sinSigma == 0 {
			// Coincident points.
			return 0, true
		}
		cosSigma = sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)

		sinAlpha := cosU1 * cosU2 * sinLambda / sinSigma
		cosSqAlpha = 1 - sinAlpha*sinAlpha
		if cosSqAlpha == 0 {
			// Equatorial line.
			cos2SigmaM = 0
		} else {
			cos2SigmaM = cosSigma - 2*sinU1*sinU2/cosSqAlpha
		}

		c := wgs84F / 16 * cosSqAlpha * (4 + wgs84F*(4-3*cosSqAlpha))
		lambdaPrev := lambda
		lambda = l + (1-c)*wgs84F*sinAlpha*
			(sigma+c*sinSigma*(cos2SigmaM+c*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))

		if math.Abs(lambda-lambdaPrev) < vincentyTolerance {
			converged = true
			break
		}
	}
	if !converged {
		return 0, false
	}

	uSq := cosSqAlpha * (wgs84A*wgs84A - b*b) / (b * b)
	aCoef := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	bCoef := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))
	deltaSigma := bCoef * sinSigma * (cos2SigmaM + bCoef/4*
		(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
			bCoef/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))

	d := b * aCoef * (sigma - deltaSigma)
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return 0, false
	}
	return d, true
}

// Planar returns the Euclidean distance between two coordinates. Use it when
// coordinates are already in a projected CRS; the result is in the units of
// that CRS.
func Planar(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}

// PolygonDistance returns the minimum planar separation between the exterior
// rings of two footprint polygons, 0 when they touch or overlap. It returns
// an error when either polygon is missing or degenerate so callers can fall
// back to centroid distance.
func PolygonDistance(a, b *geom.Polygon) (float64, error) {
	ringA, err := exteriorRing(a)
	if err != nil {
		return 0, err
	}
	ringB, err := exteriorRing(b)
	if err != nil {
		return 0, err
	}

	// Containment means overlap: distance 0.
	if xy.IsPointInRing(geom.XY, ringA[0], b.LinearRing(0).FlatCoords()) ||
		xy.IsPointInRing(geom.XY, ringB[0], a.LinearRing(0).FlatCoords()) {
		return 0, nil
	}

	minDist := math.Inf(1)
	for i := 0; i < len(ringA)-1; i++ {
		for j := 0; j < len(ringB)-1; j++ {
			d := xy.DistanceFromLineToLine(ringA[i], ringA[i+1], ringB[j], ringB[j+1])
			if d < minDist {
				minDist = d
			}
			if minDist == 0 {
				return 0, nil
			}
		}
	}
	return minDist, nil
}

// exteriorRing extracts the closed exterior ring of a polygon as coordinate
// pairs, validating that it has at least 3 distinct vertices.
func exteriorRing(p *geom.Polygon) ([]geom.Coord, error) {
	if p == nil || p.NumLinearRings() == 0 {
		return nil, eris.New("geodesy: missing footprint polygon")
	}
	coords := p.LinearRing(0).Coords()
	if len(coords) < 4 {
		return nil, eris.Errorf("geodesy: degenerate footprint ring with %d vertices", len(coords))
	}
	return coords, nil
}
