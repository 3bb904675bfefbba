package model

import "fmt"

// ValidationError reports input that was rejected before touching the
// propagation machinery: an oversized element line, an empty batch, or a
// non-finite time offset.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid input: " + e.Reason
}

// InitializationError reports that a two-line element set could not be
// decoded into a usable satellite record. Code carries the SGP4 library's
// own error code when the failure came from the library, and zero when the
// lines failed structural decoding before reaching it.
type InitializationError struct {
	Code   int
	Reason string
}

func (e *InitializationError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("element set initialization failed (sgp4 code %d): %s", e.Code, e.Reason)
	}
	return "element set initialization failed: " + e.Reason
}

// PropagationError reports that the numeric propagation step failed for a
// particular time offset. Code follows the SGP4 error taxonomy; the usual
// causes are an orbit that has decayed below the modelled Earth surface or
// numerical divergence in the long-period terms.
type PropagationError struct {
	Code   int
	Reason string
}

func (e *PropagationError) Error() string {
	return fmt.Sprintf("propagation failed (sgp4 code %d): %s", e.Code, e.Reason)
}
