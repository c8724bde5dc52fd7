// nav/followers.go
// Copyright(c) 2026 pathmanager contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"github.com/uavnav/pathmanager/math"
	"github.com/uavnav/pathmanager/route"
	"github.com/uavnav/pathmanager/util"
)

// collinearEps bounds |q12 - q01| below which two legs are treated as
// collinear; the unit directions of truly collinear legs can still differ
// by a few ulps after projection.
const collinearEps = 1e-6

// followWaypoints dispatches on how much of the path remains ahead of
// current: with two waypoints of look-ahead it plans the fillet
// transition between the two legs; with one it flies a plain segment;
// with none it flies a synthesized final segment and ends in a hold.
func (m *Manager) followWaypoints(current *route.Waypoint, p [3]float32, heading float32) {
	if current.Next == nil {
		m.followLastSegment(current, p, heading)
		return
	}
	if current.Next.Next == nil {
		m.followSegment(current, p, heading)
		return
	}

	target := current.Next
	wpPos := m.local3(current)
	targetPos := m.local3(target)
	afterPos := m.local3(target.Next)

	// Unit directions of the leg into the target and the leg out of it.
	q01 := math.Normalize3f(math.Sub3f(targetPos, wpPos))
	q12 := math.Normalize3f(math.Sub3f(afterPos, targetPos))

	// The fillet of radius target.TurnRadius meets both legs tangent at
	// distance t before/after the target; the half plane through the
	// tangent point is where the follower hands off.
	beta := math.SafeACos(-math.Dot3f(q01, q12))
	tangent := target.TurnRadius / math.Tan(beta/2)
	halfPlane := math.Sub3f(targetPos, math.Scale3f(q01, tangent))

	m.distanceToNext = math.Distance3f(targetPos, p)

	if m.pathMode == route.FollowPath {
		if math.Dot3f(q01, math.Sub3f(p, halfPlane)) > 0 {
			m.pathMode = route.FollowOrbit
			m.lg.Debugf("crossed half plane before waypoint %d, entering transition orbit", target.ID)

			if target.Kind == route.Hold {
				m.inHold = true
				m.turnDirection = 1 // holds default to CCW
				m.turnRadius = target.TurnRadius
				m.turnAltitude = target.Altitude
				m.turnCenter = targetPos
				m.lg.Debugf("hold waypoint %d captured: r=%.0f alt=%.0f", target.ID, target.TurnRadius, target.Altitude)
			}
		}

		m.followStraightPath(q01, targetPos, p, heading)
	} else {
		m.turnDirection = util.Select(math.Cross2f(math.XY(q01), math.XY(q12)) > 0, 1, -1)

		// The turn center sits along q12-q01 from the target, scaled by
		// the componentwise-signed norm; see SignedLength3f.
		dq := math.Sub3f(q12, q01)
		signedNorm := math.SignedLength3f(dq)
		if math.Abs(signedNorm) < collinearEps {
			// Collinear legs: no arc to fly, stay on the segment.
			m.pathMode = route.FollowPath
			m.followStraightPath(q01, targetPos, p, heading)
			return
		}

		m.turnCenter = math.Add3f(targetPos, math.Scale3f(dq, tangent/signedNorm))

		// A hold engaged at the target keeps orbiting until cancelled.
		if m.inHold {
			m.followOrbit(p, heading)
			return
		}

		// The fillet arc flies the target's radius at its altitude.
		m.turnRadius = target.TurnRadius
		m.turnAltitude = target.Altitude

		if math.Dot3f(q12, math.Sub3f(p, halfPlane)) > 0 {
			m.pathMode = route.FollowPath
		}

		m.outputKind = route.FollowOrbit
		m.followOrbit(p, heading)
	}
}

// followSegment flies the straight leg from current to its successor,
// with no transition planning.
func (m *Manager) followSegment(current *route.Waypoint, p [3]float32, heading float32) {
	target := current.Next
	wpPos := m.local3(current)
	targetPos := m.local3(target)

	q := math.Normalize3f(math.Sub3f(targetPos, wpPos))
	m.distanceToNext = math.Distance3f(targetPos, p)

	m.followStraightPath(q, targetPos, p, heading)
}

// followLastSegment synthesizes a segment from the aircraft to current
// itself; once the aircraft passes the target it engages an automatic
// hold there.
func (m *Manager) followLastSegment(current *route.Waypoint, p [3]float32, heading float32) {
	targetPos := m.local3(current)

	q := math.Normalize3f(math.Sub3f(targetPos, p))
	m.distanceToNext = math.Distance3f(targetPos, p)

	// The target is captured once it falls behind the aircraft's
	// direction of travel.
	chi := math.CourseFromHeading(heading)
	courseVec := [3]float32{math.Cos(chi), math.Sin(chi), 0}
	if math.Dot3f(courseVec, math.Sub3f(p, targetPos)) > 0 {
		m.inHold = true
		m.turnDirection = 1
		m.turnRadius = autoHoldRadius
		m.turnAltitude = current.Altitude
		m.turnCenter = targetPos
		m.lg.Debugf("final waypoint %d captured, holding at %d m", current.ID, autoHoldRadius)
	}

	m.followStraightPath(q, targetPos, p, heading)
}

// followStraightPath computes the commanded heading that converges on
// the segment through target with direction q: the commanded course
// rotates from the path course toward it by up to the maximum approach
// angle of pi/2, in proportion to atan of the cross-track error.
func (m *Manager) followStraightPath(q [3]float32, target [3]float32, p [3]float32, heading float32) {
	chi := math.CourseFromHeading(heading)
	chiQ := math.WrapCourse(math.Atan2(q[1], q[0]), chi)

	// Cross-track error: signed perpendicular distance to the segment.
	e := -math.Sin(chiQ)*(p[0]-target[0]) + math.Cos(chiQ)*(p[1]-target[1])
	cmd := chiQ - (math.Pi()/2)*(2/math.Pi())*math.Atan(kPath*e)

	m.desiredHeading = math.HeadingFromCourse(cmd)
	m.outputKind = route.FollowPath
	m.desiredAltitude = target[2]

	if !m.inHold {
		m.turnRadius = 0
		m.turnDirection = 0
	}
}

// followOrbit computes the commanded heading that converges on the orbit
// of the stored center, radius, and direction: the command leads the
// radial by 90 degrees plus a correction proportional to atan of the
// relative radial error.
func (m *Manager) followOrbit(p [3]float32, heading float32) {
	chi := math.CourseFromHeading(heading)

	d := math.Distance2f(math.XY(p), math.XY(m.turnCenter))
	phi := math.Atan2(p[1]-m.turnCenter[1], p[0]-m.turnCenter[0])
	phi = math.WrapCourse(phi, chi)

	cmd := phi + float32(m.turnDirection)*(math.Pi()/2+math.Atan(kOrbit*(d-m.turnRadius)/m.turnRadius))

	m.desiredHeading = math.NormalizeHeading(math.Round(90 - math.Degrees(cmd)))
	m.distanceToNext = 0
	m.outputKind = route.FollowOrbit
	m.desiredAltitude = m.turnAltitude
}
