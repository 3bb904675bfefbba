package core

import (
	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/signalsfoundry/propagation-service/model"
)

// go-satellite works in kilometres; the service reports metres. The same
// scaling is applied on every success path so the single, handle, and batch
// calls agree on units.
const kmToM = 1000.0

// ToSI converts a propagated state from km and km/s into m and m/s.
func ToSI(pos, vel satellite.Vector3) model.StateVector {
	return model.StateVector{
		Position: model.Vec3{X: pos.X * kmToM, Y: pos.Y * kmToM, Z: pos.Z * kmToM},
		Velocity: model.Vec3{X: vel.X * kmToM, Y: vel.Y * kmToM, Z: vel.Z * kmToM},
	}
}
