package model

// Vec3 is a Cartesian triple in the TEME inertial frame.
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

// StateVector is a propagated satellite state in SI units:
// position in metres, velocity in metres per second.
type StateVector struct {
	Position Vec3
	Velocity Vec3
}

// Outcome is the per-sample result of a batch propagation. Exactly one of
// State or Err is meaningful: Err == nil means State holds the propagated
// state for that sample's time offset.
type Outcome struct {
	State StateVector
	Err   error
}
