// nav/snapshot.go
// Copyright(c) 2026 pathmanager contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"github.com/brunoga/deep"

	"github.com/uavnav/pathmanager/route"
)

// Snapshot captures the manager's mode and orbit state so a host can
// roll back a rejected command sequence. The flight path buffer is NOT
// part of the snapshot; path mutations are the host's to undo through
// the buffer operations.
type Snapshot struct {
	PathMode      route.Kind
	InHold        bool
	GoingHome     bool
	TurnCenter    [3]float32
	TurnRadius    float32
	TurnDirection int
	TurnAltitude  float32
}

// TakeSnapshot captures the current hold/home/transition state.
func (m *Manager) TakeSnapshot() Snapshot {
	return deep.MustCopy(Snapshot{
		PathMode:      m.pathMode,
		InHold:        m.inHold,
		GoingHome:     m.goingHome,
		TurnCenter:    m.turnCenter,
		TurnRadius:    m.turnRadius,
		TurnDirection: m.turnDirection,
		TurnAltitude:  m.turnAltitude,
	})
}

// RestoreSnapshot restores state captured by TakeSnapshot.
func (m *Manager) RestoreSnapshot(s Snapshot) {
	m.pathMode = s.PathMode
	m.inHold = s.InHold
	m.goingHome = s.GoingHome
	m.turnCenter = s.TurnCenter
	m.turnRadius = s.TurnRadius
	m.turnDirection = s.TurnDirection
	m.turnAltitude = s.TurnAltitude
}
