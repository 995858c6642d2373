// Package epoch provides the instant at which frame rotations are evaluated.
//
// An Epoch is derived from a single UTC time.Time and answers the three
// scalar queries the frame rotations need (days and Julian centuries past
// J2000.0, and Greenwich Mean Sidereal Time). All three come from the same
// Julian Date so they always describe the same instant.
//
// Time scales are not distinguished: UTC stands in for both UT1 (sidereal
// time) and TT (day counts). The resulting error is well under a second of
// time, which is below the precision of the truncated rotation series.
package epoch

import (
	"fmt"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/sidereal"
)

// J2000JD is the Julian Date of the J2000.0 epoch (January 1, 2000, 12:00:00).
const J2000JD = 2451545.0

// DaysPerCentury is the length of a Julian century in days.
const DaysPerCentury = 36525.0

// Epoch is an immutable instant. The zero value is not meaningful; use New
// or Parse.
type Epoch struct {
	t  time.Time
	jd float64
}

// New returns the epoch for t. t is converted to UTC.
func New(t time.Time) Epoch {
	t = t.UTC()
	return Epoch{t: t, jd: julian.TimeToJD(t)}
}

// J2000 returns the J2000.0 reference epoch.
func J2000() Epoch {
	return New(time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC))
}

// Parse parses an RFC 3339 timestamp (fractional seconds allowed).
func Parse(s string) (Epoch, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Epoch{}, fmt.Errorf("parsing epoch %q: %w", s, err)
	}
	return New(t), nil
}

// Time returns the epoch as a UTC time.Time.
func (e Epoch) Time() time.Time {
	return e.t
}

// JulianDate returns the Julian Date of the epoch.
func (e Epoch) JulianDate() float64 {
	return e.jd
}

// DaysPastJ2000 returns the (fractional) number of days since J2000.0.
func (e Epoch) DaysPastJ2000() float64 {
	return e.jd - J2000JD
}

// JulianCenturiesPastJ2000 returns the number of Julian centuries since J2000.0.
func (e Epoch) JulianCenturiesPastJ2000() float64 {
	return (e.jd - J2000JD) / DaysPerCentury
}

// GMST returns Greenwich Mean Sidereal Time in radians, in [0, 2π).
// Uses the IAU 1982 expression (Meeus eq. 12.4).
func (e Epoch) GMST() float64 {
	return sidereal.Mean(e.jd).Angle().Rad()
}

// String formats the epoch as RFC 3339 with nanoseconds.
func (e Epoch) String() string {
	return e.t.Format(time.RFC3339Nano)
}
