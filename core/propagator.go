package core

import (
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/signalsfoundry/propagation-service/model"
	"github.com/signalsfoundry/propagation-service/tle"
)

// SGP4 library choice: github.com/joshuaferrara/go-satellite, with WGS-72
// constants to match the original service's configuration.
//
// The library's Propagate takes its Satellite argument by value and mutates
// scratch fields of that copy while computing a result. That by-value pass is
// exactly the copy-before-call contract this package guarantees: the template
// held in Elements is never handed to the library by reference, so any number
// of propagations may run concurrently over one Elements value.
//
// The flip side of the by-value API is that the library's internal error code
// is set on its private copy and lost. Failures are therefore detected from
// the output itself (NaN/Inf components, position magnitude outside the
// plausible orbit envelope) and classified onto the standard SGP4 codes.

// Elements is an initialized, immutable satellite record: the decoded element
// fields plus the SGP4 working structure seeded from them. Never mutated
// after Initialize; safe to share by reference across goroutines.
type Elements struct {
	info model.ElementSet
	tmpl satellite.Satellite
}

// Info returns a copy of the decoded element fields, including the two
// original input lines byte-for-byte.
func (e *Elements) Info() model.ElementSet { return e.info }

// template returns a private value copy of the SGP4 working structure.
// Every propagation starts from a fresh copy; the stored template is the
// one instance that must never be written to.
func (e *Elements) template() satellite.Satellite { return e.tmpl }

// Initialize decodes two element lines into an Elements record. Structural
// problems in the lines and initialization failures reported by the SGP4
// library both yield a *model.InitializationError; the library's own error
// code is passed through unchanged.
func Initialize(line1, line2 string) (*Elements, error) {
	info, err := tle.Decode(line1, line2)
	if err != nil {
		return nil, err
	}

	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS72)
	if sat.Error != 0 {
		return nil, &model.InitializationError{Code: int(sat.Error), Reason: sat.ErrorStr}
	}

	return &Elements{info: info, tmpl: sat}, nil
}

// Plausible orbit envelope in kilometres. Below the lower bound the orbit
// has decayed into the modelled Earth; above the upper bound the long-period
// terms have diverged.
const (
	minOrbitRadiusKm = 6200.0
	maxOrbitRadiusKm = 50000.0
)

// SGP4 error codes used when classifying failures detected from the output.
const (
	sgp4CodeDiverged = 4 // semi-latus rectum below zero / numeric divergence
	sgp4CodeDecayed  = 6 // satellite has decayed
)

// maxOffsetSeconds bounds the supported time offset. Beyond roughly 250
// years the offset no longer fits a time.Duration and the epoch arithmetic
// would silently wrap.
const maxOffsetSeconds = 250 * 365.25 * 86400

// Propagator computes satellite state at a time offset from the element
// epoch. It is stateless: every call works on a private copy of the SGP4
// structure, so for fixed inputs successive calls are bit-identical and
// concurrent calls never interfere.
type Propagator struct{}

// NewPropagator constructs a Propagator.
func NewPropagator() *Propagator { return &Propagator{} }

// Propagate computes position and velocity at tsince seconds after (or,
// when negative, before) the element epoch. The result is in SI units.
// Offsets are resolved at the library's one-second granularity.
func (p *Propagator) Propagate(el *Elements, tsince float64) (model.StateVector, error) {
	if math.Abs(tsince) > maxOffsetSeconds {
		return model.StateVector{}, &model.PropagationError{
			Code:   sgp4CodeDiverged,
			Reason: "time offset outside the supported range",
		}
	}

	target := el.info.Epoch.Add(time.Duration(tsince * float64(time.Second)))
	year, month, day := target.Date()
	hour, min, sec := target.Clock()

	pos, vel := satellite.Propagate(el.template(), year, int(month), day, hour, min, sec)

	if !finiteVec(pos) || !finiteVec(vel) {
		return model.StateVector{}, &model.PropagationError{
			Code:   sgp4CodeDiverged,
			Reason: "propagated state is not finite",
		}
	}

	mag := math.Sqrt(pos.X*pos.X + pos.Y*pos.Y + pos.Z*pos.Z)
	if mag < minOrbitRadiusKm {
		return model.StateVector{}, &model.PropagationError{
			Code:   sgp4CodeDecayed,
			Reason: "orbit decayed below the modelled Earth surface",
		}
	}
	if mag > maxOrbitRadiusKm {
		return model.StateVector{}, &model.PropagationError{
			Code:   sgp4CodeDiverged,
			Reason: "propagated position magnitude is implausible",
		}
	}

	return ToSI(pos, vel), nil
}

func finiteVec(v satellite.Vector3) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}
