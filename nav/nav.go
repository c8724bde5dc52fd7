// nav/nav.go
// Copyright(c) 2026 pathmanager contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"github.com/uavnav/pathmanager/log"
	"github.com/uavnav/pathmanager/math"
	"github.com/uavnav/pathmanager/route"
)

// Guidance gains: the approach-angle law for straight segments and the
// radial convergence law for orbits.
const (
	kPath  = 0.01
	kOrbit = 1.0
)

// autoHoldRadius is the orbit radius, in metres, of the hold that engages
// automatically when the aircraft captures the final waypoint of a path.
const autoHoldRadius = 50

// TelemIn is the aircraft state handed to the manager each control tick.
type TelemIn struct {
	Latitude  float64 // degrees
	Longitude float64 // degrees
	Altitude  float32 // metres
	Heading   float32 // magnetic degrees, [0,360)
}

// Directions is the steering command computed from one tick of telemetry.
type Directions struct {
	DesiredHeading         float32 // magnetic degrees, [0,360)
	DesiredAltitude        float32 // metres
	DistanceToNextWaypoint float32 // metres; 0 while orbiting
	Radius                 float32 // metres; 0 on straight segments outside a hold
	TurnDirection          int     // +1 CCW, -1 CW, 0 none
	Status                 route.Status
	IsDataNew              bool
	TimeOfData             uint32 // reserved; always 0
	Kind                   route.Kind
}

// Manager owns the flight path buffer and turns telemetry into steering
// commands. All operations complete synchronously within the tick; with a
// nil logger the manager performs no I/O and, outside the waypoint pool,
// no allocation. It is single-threaded; a host that shares one across
// goroutines wraps it in a mutex.
type Manager struct {
	frame math.LocalFrame
	buf   *route.Buffer
	home  *route.Waypoint

	// pathMode tracks whether the planner is on the straight leg or the
	// fillet arc between two legs; it is distinct from inHold, which
	// pins the aircraft to an orbit until cancelled.
	pathMode  route.Kind
	inHold    bool
	goingHome bool
	dataIsNew bool

	turnCenter    [3]float32 // local frame; the orbit follower flies turnAltitude, not z
	turnRadius    float32
	turnDirection int
	turnAltitude  float32

	desiredHeading  float32
	desiredAltitude float32
	distanceToNext  float32
	outputKind      route.Kind
	status          route.Status

	lg *log.Logger
}

// New returns a Manager whose local frame is anchored at the given
// reference point. The anchor is fixed for the life of the manager.
func New(refLat, refLon float64, lg *log.Logger) *Manager {
	return &Manager{
		frame:    math.LocalFrame{Lat: refLat, Lon: refLon},
		buf:      route.NewBuffer(),
		pathMode: route.FollowPath,
		lg:       lg,
	}
}

// Buffer exposes the flight path for mutation and inspection.
func (m *Manager) Buffer() *route.Buffer { return m.buf }

// Home returns the return-to-base waypoint, if one has been set.
func (m *Manager) Home() *route.Waypoint { return m.home }

func (m *Manager) InHold() bool    { return m.inHold }
func (m *Manager) GoingHome() bool { return m.goingHome }

// InitializePath installs the mission waypoints and, if currentLocation
// is non-nil, records it as the home point.
func (m *Manager) InitializePath(points []*route.Waypoint, currentLocation *route.Waypoint) route.Status {
	if s := m.buf.Initialize(points); s != route.Success {
		return s
	}
	if currentLocation != nil {
		if m.home != nil {
			m.buf.Release(m.home)
		}
		m.home = currentLocation
	}
	return route.Success
}

// UpdatePath applies a single path mutation request.
func (m *Manager) UpdatePath(req route.UpdateRequest) route.Status {
	return m.buf.UpdateNodes(req)
}

// SetCurrent moves the flight path's current index. Waypoint capture does
// not advance the index on its own; this is the only way it moves.
func (m *Manager) SetCurrent(id int) route.Status {
	return m.buf.SetCurrent(id)
}

// NextDirections computes the steering command for the given telemetry.
// A hold takes priority over a pending return to home, which takes
// priority over normal path following.
func (m *Manager) NextDirections(in TelemIn) (Directions, route.Status) {
	m.status = route.Success

	if m.inHold {
		if m.turnRadius <= 0 || (m.turnDirection != -1 && m.turnDirection != 1) {
			return Directions{Status: route.InvalidParameters}, route.InvalidParameters
		}

		m.followOrbit(m.localPosition(in), in.Heading)
		m.outputKind = route.FollowOrbit
		m.dataIsNew = true
		return m.collect(), m.status
	}

	p := m.localPosition(in)

	if m.goingHome {
		if m.home == nil {
			return Directions{Status: route.UndefinedParameter}, route.UndefinedParameter
		}

		// Feed the planner a transient (position, home, nil) leg; the
		// pair lives on the stack, so the return path costs no pool
		// records.
		transient := route.Waypoint{
			Latitude:   in.Latitude,
			Longitude:  in.Longitude,
			Altitude:   in.Altitude,
			Kind:       route.FollowPath,
			TurnRadius: route.UnsetRadius,
			Next:       m.home,
		}
		m.home.Next = nil
		m.home.Kind = route.Hold

		m.followWaypoints(&transient, p, in.Heading)
		m.dataIsNew = true
		return m.collect(), m.status
	}

	if m.buf.Len()-m.buf.Current() < 1 {
		return Directions{Status: route.CurrentIndexInvalid}, route.CurrentIndexInvalid
	}

	m.followWaypoints(m.buf.At(m.buf.Current()), p, in.Heading)
	m.dataIsNew = true
	return m.collect(), m.status
}

// collect copies the tick's outputs into a Directions record and lowers
// the data-new flag; the flag is raised again by whichever operation next
// produces fresh outputs.
func (m *Manager) collect() Directions {
	d := Directions{
		DesiredHeading:         m.desiredHeading,
		DesiredAltitude:        m.desiredAltitude,
		DistanceToNextWaypoint: m.distanceToNext,
		Radius:                 m.turnRadius,
		TurnDirection:          m.turnDirection,
		Status:                 m.status,
		IsDataNew:              m.dataIsNew,
		TimeOfData:             0,
		Kind:                   m.outputKind,
	}
	m.dataIsNew = false
	return d
}

// localPosition projects telemetry into the local frame, altitude in the
// third component.
func (m *Manager) localPosition(in TelemIn) [3]float32 {
	xy := m.frame.ToLocal(in.Latitude, in.Longitude)
	return [3]float32{xy[0], xy[1], in.Altitude}
}

// local3 projects a waypoint into the local frame.
func (m *Manager) local3(w *route.Waypoint) [3]float32 {
	xy := m.frame.ToLocal(w.Latitude, w.Longitude)
	return [3]float32{xy[0], xy[1], w.Altitude}
}
