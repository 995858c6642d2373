package frames

import "github.com/soniakeys/unit"

// obliquityJ2000 is the mean obliquity of the ecliptic at J2000.0 in radians.
const obliquityJ2000 = 0.4091051766674715

// Series coefficients in radians, derived once from their published
// arcsecond and degree values.
var (
	// Obliquity rate terms.
	coeffA = unit.AngleFromSec(46.815).Rad()
	coeffB = unit.AngleFromSec(0.00059).Rad()
	coeffC = unit.AngleFromSec(0.001813).Rad()

	// Nutation in longitude.
	coeffD = unit.AngleFromDeg(-0.0048).Rad()
	coeffE = unit.AngleFromDeg(0.0004).Rad()

	// Precession angles.
	coeffF = unit.NewAngle(' ', 0, 0, 2306.2181).Rad()
	coeffG = unit.NewAngle(' ', 0, 0, 0.30188).Rad()
	coeffH = unit.NewAngle(' ', 0, 0, 0.017998).Rad()
	coeffI = unit.NewAngle(' ', 0, 0, 2004.3109).Rad()
	coeffJ = unit.NewAngle(' ', 0, 0, 0.42665).Rad()
	coeffK = unit.NewAngle(' ', 0, 0, 0.041833).Rad()
	coeffL = unit.NewAngle(' ', 0, 0, 0.7928).Rad()
	coeffM = unit.NewAngle(' ', 0, 0, 0.000205).Rad()

	// Nutation in obliquity.
	coeffN = unit.AngleFromDeg(0.0026).Rad()
	coeffO = unit.AngleFromDeg(0.0002).Rad()
)

// Lunar node and solar longitude arguments, degrees and degrees per day.
const (
	nodeLongitude0    = 125.0
	nodeLongitudeRate = 0.05295
	sunLongitude0     = 200.9
	sunLongitudeRate  = 1.97129
)
