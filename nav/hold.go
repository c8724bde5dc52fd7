// nav/hold.go
// Copyright(c) 2026 pathmanager contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"github.com/uavnav/pathmanager/math"
	"github.com/uavnav/pathmanager/route"
)

// StartCircling engages (or, with cancel, releases) a hold around a
// center one radius abeam the aircraft: to the right for a clockwise
// orbit, to the left for counter-clockwise. The hold persists across
// ticks until cancelled and takes priority over everything else.
func (m *Manager) StartCircling(in TelemIn, radius float32, direction int, altitude float32, cancel bool) {
	if cancel {
		m.inHold = false
		m.lg.Debugf("hold cancelled")
		return
	}

	m.inHold = true
	m.turnAltitude = altitude
	m.turnRadius = radius
	m.turnDirection = direction

	bearing := in.Heading
	switch direction {
	case -1: // clockwise; orbit center is to the right
		bearing += 90
	case 1: // counter-clockwise; to the left
		bearing -= 90
	}
	bearing = math.NormalizeHeading(bearing)

	lat, lon := math.Destination(in.Latitude, in.Longitude, bearing, radius)
	xy := m.frame.ToLocal(lat, lon)
	m.turnCenter = [3]float32{xy[0], xy[1], altitude}

	m.lg.Debugf("hold engaged: r=%.0f dir=%d alt=%.0f", radius, direction, altitude)
}

// HeadHome toggles the return-to-base state. Engaging it clears the
// flight path so the host can load a fresh mission for after the return;
// a second call cancels. Returns false when there is no home point or
// when the call cancelled an active return.
func (m *Manager) HeadHome() bool {
	if m.home == nil {
		return false
	}

	if !m.goingHome {
		m.buf.Clear()
		m.goingHome = true
		m.lg.Debugf("returning to home waypoint %d", m.home.ID)
		return true
	}

	m.goingHome = false
	m.lg.Debugf("return to home cancelled")
	return false
}

// Mode returns which follower produced the last outputs.
func (m *Manager) Mode() route.Kind { return m.outputKind }
