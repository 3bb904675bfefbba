// Package tle validates and decodes NORAD two-line element sets.
//
// Decode is deliberately strict: every numeric field the SGP4 library will
// later re-parse is parsed here first, over exactly the byte spans and with
// exactly the space handling the library applies, so that any input the
// library would abort the process on is rejected with a structured error
// instead. The library parses the epoch columns raw, assembles the drag and
// derivative exponent fields from sub-spans, and removes at most two spaces
// from the remaining float columns; Decode mirrors all three behaviours.
package tle

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/signalsfoundry/propagation-service/model"
)

// Decode parses the two element lines into an ElementSet. The input lines
// are retained verbatim on the result. Any structural problem yields a
// *model.InitializationError with code 0.
func Decode(line1, line2 string) (model.ElementSet, error) {
	var es model.ElementSet

	if len(line1) != MaxLineLength {
		return es, decodeErr("line 1 is %d bytes, want %d", len(line1), MaxLineLength)
	}
	if len(line2) != MaxLineLength {
		return es, decodeErr("line 2 is %d bytes, want %d", len(line2), MaxLineLength)
	}
	if line1[0] != '1' {
		return es, decodeErr("line 1 must start with '1', got %q", line1[0])
	}
	if line2[0] != '2' {
		return es, decodeErr("line 2 must start with '2', got %q", line2[0])
	}

	catnum, err := strconv.Atoi(strings.TrimSpace(line1[2:7]))
	if err != nil {
		return es, decodeErr("catalog number %q is not numeric", line1[2:7])
	}

	// The epoch columns are parsed raw downstream, with no space stripping:
	// a space-padded year like " 6" is unparseable there, so it must be
	// unparseable here too.
	yy, err := strconv.Atoi(line1[18:20])
	if err != nil {
		return es, decodeErr("epoch year %q is not numeric", line1[18:20])
	}
	// Two-digit years pivot at 57: 57-99 are 1900s, 00-56 are 2000s.
	year := yy
	if year >= 57 {
		year += 1900
	} else {
		year += 2000
	}

	day, err := strconv.ParseFloat(line1[20:32], 64)
	if err != nil {
		return es, decodeErr("epoch day %q is not numeric", line1[20:32])
	}
	if day < 1 || day >= 367 {
		return es, decodeErr("epoch day %v out of range", day)
	}

	// Drag and derivative terms are not reported to callers, but they are
	// checked in the exact assembled form the library will parse, so a
	// malformed field fails here rather than inside the library.
	if _, err := parseCompact(line1[33:43]); err != nil {
		return es, decodeErr("first derivative of mean motion %q is not numeric", line1[33:43])
	}
	if _, err := parseCompact(line1[44:45] + "." + line1[45:50] + "e" + line1[50:52]); err != nil {
		return es, decodeErr("second derivative of mean motion %q is not numeric", line1[44:52])
	}
	if _, err := parseCompact(line1[53:54] + "." + line1[54:59] + "e" + line1[59:61]); err != nil {
		return es, decodeErr("drag term %q is not numeric", line1[53:61])
	}

	incl, err := parseCompact(line2[8:16])
	if err != nil {
		return es, decodeErr("inclination %q is not numeric", line2[8:16])
	}
	raan, err := parseCompact(line2[17:25])
	if err != nil {
		return es, decodeErr("RAAN %q is not numeric", line2[17:25])
	}
	// Eccentricity is written with an assumed leading decimal point and is
	// parsed raw: embedded spaces are not stripped.
	ecc, err := strconv.ParseFloat("."+line2[26:33], 64)
	if err != nil {
		return es, decodeErr("eccentricity %q is not numeric", line2[26:33])
	}
	argp, err := parseCompact(line2[34:42])
	if err != nil {
		return es, decodeErr("argument of perigee %q is not numeric", line2[34:42])
	}
	ma, err := parseCompact(line2[43:51])
	if err != nil {
		return es, decodeErr("mean anomaly %q is not numeric", line2[43:51])
	}
	mm, err := parseCompact(line2[52:63])
	if err != nil {
		return es, decodeErr("mean motion %q is not numeric", line2[52:63])
	}

	// Resolve the epoch to UTC. Day of year is 1-based: day 1.0 is 00:00
	// on January 1st.
	epoch := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC).
		Add(time.Duration((day - 1) * float64(24*time.Hour)))

	return model.ElementSet{
		CatalogNumber: catnum,
		EpochYear:     year,
		EpochDay:      day,
		Epoch:         epoch,
		Inclination:   incl,
		RAAN:          raan,
		Eccentricity:  ecc,
		ArgPerigee:    argp,
		MeanAnomaly:   ma,
		MeanMotion:    mm,
		Line1:         line1,
		Line2:         line2,
	}, nil
}

func decodeErr(format string, args ...any) *model.InitializationError {
	return &model.InitializationError{Reason: fmt.Sprintf(format, args...)}
}

// parseCompact parses a float column after removing at most two spaces,
// the same normalization the SGP4 library applies to these fields. A field
// with more padding than that keeps a space and is rejected, exactly as it
// would be downstream.
func parseCompact(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.Replace(s, " ", "", 2), 64)
	if err != nil {
		return 0, fmt.Errorf("not numeric")
	}
	return v, nil
}
