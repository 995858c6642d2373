package transform

import (
	"math"
	"testing"

	"github.com/soniakeys/unit"
)

func TestFixedFromGeodeticMagnitude(t *testing.T) {
	// Equator at sea level sits on the semi-major axis.
	eq := FixedFromGeodetic(Geodetic{})
	if math.Abs(eq.Norm()-6378.137) > 1e-6 {
		t.Errorf("equatorial magnitude = %.6f km, want 6378.137 km", eq.Norm())
	}

	// North pole sits on the semi-minor axis.
	pole := FixedFromGeodetic(Geodetic{Latitude: unit.AngleFromDeg(90)})
	if math.Abs(pole.Norm()-6356.7523) > 1e-3 {
		t.Errorf("polar magnitude = %.4f km, want ~6356.7523 km", pole.Norm())
	}
}

func TestGeodeticRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		g    Geodetic
	}{
		{"sea level mid-latitude", Geodetic{unit.AngleFromDeg(39.7392), unit.AngleFromDeg(-104.9903), 1.609}},
		{"LEO over equator", Geodetic{unit.AngleFromDeg(0), unit.AngleFromDeg(20), 400}},
		{"southern high latitude", Geodetic{unit.AngleFromDeg(-77.85), unit.AngleFromDeg(166.67), 0}},
		{"GEO", Geodetic{unit.AngleFromDeg(0), unit.AngleFromDeg(-75), 35786}},
		{"pole", Geodetic{unit.AngleFromDeg(90), unit.AngleFromDeg(0), 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GeodeticFromFixed(FixedFromGeodetic(tt.g))
			if d := math.Abs(got.Latitude.Deg() - tt.g.Latitude.Deg()); d > 1e-7 {
				t.Errorf("latitude = %.9f°, want %.9f°", got.Latitude.Deg(), tt.g.Latitude.Deg())
			}
			if tt.g.Latitude.Deg() != 90 {
				if d := math.Abs(got.Longitude.Deg() - tt.g.Longitude.Deg()); d > 1e-9 {
					t.Errorf("longitude = %.9f°, want %.9f°", got.Longitude.Deg(), tt.g.Longitude.Deg())
				}
			}
			if d := math.Abs(got.AltKm - tt.g.AltKm); d > 1e-5 {
				t.Errorf("altitude = %.6f km, want %.6f km", got.AltKm, tt.g.AltKm)
			}
		})
	}
}
