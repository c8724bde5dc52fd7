// math/heading.go
// Copyright(c) 2026 pathmanager contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

///////////////////////////////////////////////////////////////////////////
// headings and courses

// Magnetic headings are measured clockwise from north in degrees;
// courses are measured counter-clockwise from the +x axis in radians, as
// is usual for the trigonometry. The two are related by
// course = 90 - heading.

// Reduces it to [0,360).
func NormalizeHeading(h float32) float32 {
	h = Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}

// HeadingDifference returns the minimum difference between two
// headings. (i.e., the result is always in the range [0,180].)
func HeadingDifference(a float32, b float32) float32 {
	var d float32
	if a > b {
		d = a - b
	} else {
		d = b - a
	}
	if d > 180 {
		d = 360 - d
	}
	return d
}

func OppositeHeading(h float32) float32 {
	return NormalizeHeading(h + 180)
}

// Figure out which way is closest: first find the angle to rotate the
// target heading by so that it's aligned with 180 degrees. This lets us
// not worry about the complexities of the wrap around at 0/360..
func HeadingSignedTurn(cur, target float32) float32 {
	rot := NormalizeHeading(180 - target)
	return 180 - NormalizeHeading(cur+rot) // w.r.t. 180 target
}

// CourseFromHeading converts a magnetic heading in degrees to a Cartesian
// course angle in radians.
func CourseFromHeading(h float32) float32 {
	return Radians(90 - h)
}

// HeadingFromCourse converts a Cartesian course angle in radians to a
// magnetic heading in degrees, normalized to [0,360).
func HeadingFromCourse(c float32) float32 {
	return NormalizeHeading(90 - Degrees(c))
}

// WrapCourse shifts angle by a multiple of 2pi so that it lies within
// [ref-pi, ref+pi].
func WrapCourse(angle, ref float32) float32 {
	d := Mod(angle-ref, 2*Pi())
	if d > Pi() {
		d -= 2 * Pi()
	} else if d < -Pi() {
		d += 2 * Pi()
	}
	return ref + d
}
