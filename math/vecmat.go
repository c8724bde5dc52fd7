// math/vecmat.go
// Copyright(c) 2026 pathmanager contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

///////////////////////////////////////////////////////////////////////////
// point 2f

// Various useful functions for arithmetic with 2D and 3D points/vectors.
// Names are brief in order to avoid clutter when they're used.

// a+b
func Add2f(a [2]float32, b [2]float32) [2]float32 {
	return [2]float32{a[0] + b[0], a[1] + b[1]}
}

// a-b
func Sub2f(a [2]float32, b [2]float32) [2]float32 {
	return [2]float32{a[0] - b[0], a[1] - b[1]}
}

// a*s
func Scale2f(a [2]float32, s float32) [2]float32 {
	return [2]float32{s * a[0], s * a[1]}
}

func Dot(a, b [2]float32) float32 {
	return a[0]*b[0] + a[1]*b[1]
}

// z component of the cross product of a and b, with both taken to lie in
// the z=0 plane; its sign gives the turn direction from a to b.
func Cross2f(a, b [2]float32) float32 {
	return a[0]*b[1] - a[1]*b[0]
}

// Length of v
func Length2f(v [2]float32) float32 {
	return Sqrt(v[0]*v[0] + v[1]*v[1])
}

// Distance between two points
func Distance2f(a [2]float32, b [2]float32) float32 {
	return Length2f(Sub2f(a, b))
}

// Normalizes the given vector.
func Normalize2f(a [2]float32) [2]float32 {
	l := Length2f(a)
	if l == 0 {
		return [2]float32{0, 0}
	}
	return Scale2f(a, 1/l)
}

///////////////////////////////////////////////////////////////////////////
// point 3f
//
// The path followers carry altitude as a third component and take their
// norms over all three, so the 3f set is the one they use.

func Add3f(a [3]float32, b [3]float32) [3]float32 {
	return [3]float32{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func Sub3f(a [3]float32, b [3]float32) [3]float32 {
	return [3]float32{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func Scale3f(a [3]float32, s float32) [3]float32 {
	return [3]float32{s * a[0], s * a[1], s * a[2]}
}

func Dot3f(a, b [3]float32) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func Length3f(v [3]float32) float32 {
	return Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

func Distance3f(a [3]float32, b [3]float32) float32 {
	return Length3f(Sub3f(a, b))
}

func Normalize3f(a [3]float32) [3]float32 {
	l := Length3f(a)
	if l == 0 {
		return [3]float32{0, 0, 0}
	}
	return Scale3f(a, 1/l)
}

// SignedLength3f returns the Euclidean length of v with its sign flipped
// once for each negative component. The fillet turn-center computation
// depends on this exact convention; it is not a plain norm.
func SignedLength3f(v [3]float32) float32 {
	l := Length3f(v)
	for _, c := range v {
		if c < 0 {
			l = -l
		}
	}
	return l
}

// XY returns the horizontal components of a 3D point.
func XY(v [3]float32) [2]float32 {
	return [2]float32{v[0], v[1]}
}
