package transform

import (
	"math"

	"github.com/soniakeys/unit"

	"github.com/brandon-sexton/openspace-coordinates/internal/vecmath"
)

// WGS-84 ellipsoid parameters.
const (
	wgs84A  = 6378.137              // semi-major axis (km)
	wgs84F  = 1.0 / 298.257223563   // flattening
	wgs84E2 = wgs84F * (2 - wgs84F) // first eccentricity squared
)

// Geodetic is a WGS-84 geodetic position.
type Geodetic struct {
	Latitude  unit.Angle
	Longitude unit.Angle
	AltKm     float64
}

// FixedFromGeodetic returns the ECF position (km) of a geodetic point.
func FixedFromGeodetic(g Geodetic) vecmath.Vector3 {
	sinLat, cosLat := math.Sincos(g.Latitude.Rad())
	sinLon, cosLon := math.Sincos(g.Longitude.Rad())

	// Radius of curvature in the prime vertical.
	n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)

	return vecmath.NewVector3(
		(n+g.AltKm)*cosLat*cosLon,
		(n+g.AltKm)*cosLat*sinLon,
		(n*(1-wgs84E2)+g.AltKm)*sinLat,
	)
}

// GeodeticFromFixed converts an ECF position (km) to geodetic coordinates
// with the iterative Bowring method. Converges in 2-3 iterations for Earth
// orbits.
func GeodeticFromFixed(pos vecmath.Vector3) Geodetic {
	x, y, z := pos.X(), pos.Y(), pos.Z()
	lon := math.Atan2(y, x)
	p := math.Hypot(x, y)

	lat := math.Atan2(z, p*(1-wgs84E2))
	for i := 0; i < 5; i++ {
		sinLat := math.Sin(lat)
		n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)
		lat = math.Atan2(z+wgs84E2*n*sinLat, p)
	}

	sinLat, cosLat := math.Sincos(lat)
	n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)

	var alt float64
	if math.Abs(cosLat) > 1e-10 {
		alt = p/cosLat - n
	} else {
		alt = math.Abs(z)/math.Abs(sinLat) - n*(1-wgs84E2)
	}

	return Geodetic{
		Latitude:  unit.Angle(lat),
		Longitude: unit.Angle(lon),
		AltKm:     alt,
	}
}
