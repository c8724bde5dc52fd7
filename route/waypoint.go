// route/waypoint.go
// Copyright(c) 2026 pathmanager contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package route

// Kind selects how the aircraft is to treat a waypoint: fly the straight
// segment through it, fly the transition orbit, or hold there until told
// otherwise.
type Kind int

const (
	FollowPath Kind = iota
	FollowOrbit
	Hold
)

func (k Kind) String() string {
	switch k {
	case FollowPath:
		return "path"
	case FollowOrbit:
		return "orbit"
	case Hold:
		return "hold"
	default:
		return "unknown"
	}
}

// UnsetRadius is the sentinel stored in TurnRadius when no fillet radius
// has been specified for a waypoint.
const UnsetRadius = -1

// Waypoint is a single geographic target. Records are allocated from the
// buffer's pool and linked into its doubly-linked order; a record belongs
// to whichever Buffer created it from the moment it is installed until it
// is deleted, replaced, or cleared.
type Waypoint struct {
	ID         int
	Latitude   float64 // degrees
	Longitude  float64 // degrees
	Altitude   float32 // metres
	Kind       Kind
	TurnRadius float32 // metres; UnsetRadius if unspecified

	Next, Prev *Waypoint
}

// NewWaypoint returns a fresh record with position, altitude, and turn
// radius at their -1 sentinels and kind FollowPath, stamped with the next
// id. It returns nil if the pool is exhausted.
func (b *Buffer) NewWaypoint() *Waypoint {
	w := b.pool.Alloc()
	if w == nil {
		return nil
	}
	*w = Waypoint{
		ID:         b.nextID,
		Latitude:   -1,
		Longitude:  -1,
		Altitude:   -1,
		Kind:       FollowPath,
		TurnRadius: UnsetRadius,
	}
	b.nextID++
	return w
}

// NewWaypointAt is NewWaypoint with position, altitude, and kind filled
// in; the turn radius is left unset.
func (b *Buffer) NewWaypointAt(lat, lon float64, alt float32, kind Kind) *Waypoint {
	w := b.NewWaypoint()
	if w == nil {
		return nil
	}
	w.Latitude = lat
	w.Longitude = lon
	w.Altitude = alt
	w.Kind = kind
	return w
}

// NewWaypointWithRadius is NewWaypointAt plus an explicit fillet/hold
// turn radius.
func (b *Buffer) NewWaypointWithRadius(lat, lon float64, alt float32, kind Kind, radius float32) *Waypoint {
	w := b.NewWaypointAt(lat, lon, alt, kind)
	if w == nil {
		return nil
	}
	w.TurnRadius = radius
	return w
}

// Release returns an unattached record to the pool. Records installed in
// the buffer must not be passed here; they are reclaimed by Delete,
// Update, and Clear.
func (b *Buffer) Release(w *Waypoint) {
	if w == nil {
		return
	}
	w.Next = nil
	w.Prev = nil
	b.pool.Free(w)
}
