package model

import "time"

// ElementSet is the decoded, immutable view of a two-line element set.
// It carries the orbital fields callers may want to inspect plus the two
// original input lines, retained byte-for-byte. Two ElementSets are
// considered equal only when derived from identical input lines.
type ElementSet struct {
	// CatalogNumber is the NORAD catalog identifier from line 1.
	CatalogNumber int

	// EpochYear is the full four-digit epoch year.
	EpochYear int
	// EpochDay is the fractional day of year (1-based) at epoch.
	EpochDay float64
	// Epoch is the element set's reference time, resolved to UTC.
	Epoch time.Time

	// Classical elements from line 2. Angles are in degrees, mean motion
	// in revolutions per day, matching the TLE encoding.
	Inclination  float64
	RAAN         float64
	Eccentricity float64
	ArgPerigee   float64
	MeanAnomaly  float64
	MeanMotion   float64

	// Line1 and Line2 are the raw input lines as supplied.
	Line1 string
	Line2 string
}
