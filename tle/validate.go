package tle

import (
	"fmt"
	"math"

	"github.com/signalsfoundry/propagation-service/model"
)

// MaxLineLength is the fixed-width record length of a two-line element set.
// Longer input cannot be a valid element line and is rejected before any
// decoding is attempted.
const MaxLineLength = 69

// ValidateLines rejects element lines that exceed the fixed record length.
// Content is not inspected here; malformed fields are caught by Decode.
func ValidateLines(line1, line2 string) error {
	if len(line1) > MaxLineLength {
		return &model.ValidationError{
			Reason: fmt.Sprintf("line 1 is %d bytes, limit is %d", len(line1), MaxLineLength),
		}
	}
	if len(line2) > MaxLineLength {
		return &model.ValidationError{
			Reason: fmt.Sprintf("line 2 is %d bytes, limit is %d", len(line2), MaxLineLength),
		}
	}
	return nil
}

// ValidateBatchTimes rejects an empty batch and any time offset that is not
// a finite number.
func ValidateBatchTimes(times []float64) error {
	if len(times) == 0 {
		return &model.ValidationError{Reason: "batch contains no time offsets"}
	}
	for i, t := range times {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return &model.ValidationError{
				Reason: fmt.Sprintf("time offset at index %d is not a finite number", i),
			}
		}
	}
	return nil
}
