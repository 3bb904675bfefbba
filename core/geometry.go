package core

import (
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/signalsfoundry/propagation-service/model"
)

// earthRadiusM is the mean Earth radius in meters, used for the
// spherical subpoint calculation.
const earthRadiusM = 6371.0 * kmToM

// EarthFixed rotates a TEME position into the Earth-fixed frame at the
// given instant. Input and output are in meters; the rotation itself is
// done in kilometres because that is what go-satellite works in.
func EarthFixed(pos model.Vec3, at time.Time) model.Vec3 {
	year, month, day := at.Date()
	hour, min, sec := at.Clock()
	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	gmst := satellite.ThetaG_JD(jd)
	ecef := satellite.ECIToECEF(satellite.Vector3{
		X: pos.X / kmToM,
		Y: pos.Y / kmToM,
		Z: pos.Z / kmToM,
	}, gmst)
	return model.Vec3{X: ecef.X * kmToM, Y: ecef.Y * kmToM, Z: ecef.Z * kmToM}
}

// Subpoint returns the geographic point directly beneath an Earth-fixed
// position: latitude and longitude in degrees (east positive), and
// altitude above the mean Earth radius in meters. The Earth is treated
// as a sphere.
func Subpoint(ecef model.Vec3) (latDeg, lonDeg, altM float64) {
	r := math.Sqrt(ecef.X*ecef.X + ecef.Y*ecef.Y + ecef.Z*ecef.Z)
	if r == 0 {
		return 0, 0, -earthRadiusM
	}
	latDeg = math.Asin(ecef.Z/r) * 180.0 / math.Pi
	lonDeg = math.Atan2(ecef.Y, ecef.X) * 180.0 / math.Pi
	return latDeg, lonDeg, r - earthRadiusM
}
