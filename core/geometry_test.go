package core

import (
	"math"
	"testing"
	"time"

	"github.com/signalsfoundry/propagation-service/model"
)

func TestSubpoint(t *testing.T) {
	const alt = 400e3

	cases := []struct {
		name           string
		pos            model.Vec3
		lat, lon, altM float64
	}{
		{"equator prime meridian", model.Vec3{X: earthRadiusM + alt}, 0, 0, alt},
		{"north pole", model.Vec3{Z: earthRadiusM + alt}, 90, 0, alt},
		{"west 90", model.Vec3{Y: -(earthRadiusM + alt)}, 0, -90, alt},
		{"surface", model.Vec3{X: earthRadiusM}, 0, 0, 0},
	}
	for _, tc := range cases {
		lat, lon, altM := Subpoint(tc.pos)
		if math.Abs(lat-tc.lat) > 1e-9 || math.Abs(lon-tc.lon) > 1e-9 || math.Abs(altM-tc.altM) > 1e-6 {
			t.Errorf("%s: Subpoint = (%v, %v, %v), want (%v, %v, %v)",
				tc.name, lat, lon, altM, tc.lat, tc.lon, tc.altM)
		}
	}
}

func TestSubpointOrigin(t *testing.T) {
	lat, lon, altM := Subpoint(model.Vec3{})
	if lat != 0 || lon != 0 || altM != -earthRadiusM {
		t.Fatalf("Subpoint(origin) = (%v, %v, %v)", lat, lon, altM)
	}
}

// The Earth-fixed frame rotates about the polar axis, so the conversion
// must preserve the vector norm and the Z component.
func TestEarthFixedIsRotationAboutZ(t *testing.T) {
	at := time.Date(2021, 10, 2, 14, 11, 0, 0, time.UTC)
	pos := model.Vec3{X: 5.1e6, Y: -3.2e6, Z: 2.7e6}

	ecef := EarthFixed(pos, at)

	normIn := math.Sqrt(pos.X*pos.X + pos.Y*pos.Y + pos.Z*pos.Z)
	normOut := math.Sqrt(ecef.X*ecef.X + ecef.Y*ecef.Y + ecef.Z*ecef.Z)
	if math.Abs(normIn-normOut) > 1e-3 {
		t.Fatalf("norm changed: %v -> %v", normIn, normOut)
	}
	if math.Abs(ecef.Z-pos.Z) > 1e-6 {
		t.Fatalf("Z changed: %v -> %v", pos.Z, ecef.Z)
	}

	again := EarthFixed(pos, at)
	if again != ecef {
		t.Fatalf("conversion not deterministic: %+v vs %+v", ecef, again)
	}
}

func TestSubpointOfPropagatedState(t *testing.T) {
	el, err := Initialize(issLine1, issLine2)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	var prop Propagator
	sv, err := prop.Propagate(el, 0)
	if err != nil {
		t.Fatalf("Propagate: %v", err)
	}

	lat, lon, altM := Subpoint(EarthFixed(sv.Position, el.Info().Epoch))
	if math.Abs(lat) > 52.0 {
		t.Errorf("latitude %v exceeds the orbit's inclination bound", lat)
	}
	if lon < -180 || lon > 180 {
		t.Errorf("longitude %v out of range", lon)
	}
	if altM < 300e3 || altM > 500e3 {
		t.Errorf("altitude %v m implausible for a low Earth orbit", altM)
	}
}
