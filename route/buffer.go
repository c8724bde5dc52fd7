// route/buffer.go
// Copyright(c) 2026 pathmanager contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package route

import (
	"github.com/uavnav/pathmanager/util"
)

// Capacity is the fixed number of waypoint slots in a Buffer.
const Capacity = 100

// poolSlack is extra pool headroom beyond Capacity so that a home point
// and a few records pending insertion can live outside the buffer.
const poolSlack = 8

type SlotState uint8

const (
	SlotFree SlotState = iota
	SlotFull
)

// Buffer is a bounded, ordered sequence of waypoints: a doubly-linked
// list kept inside a fixed array. Occupied slots are always packed into
// the prefix [0, Len()), in flight order, with each record linked to its
// neighbors. The Buffer is single-threaded by design; callers that share
// one across goroutines wrap it in a mutex.
type Buffer struct {
	slots [Capacity]*Waypoint
	state [Capacity]SlotState

	n          int // occupied slots
	nextFilled int // == n; the next slot an append will fill
	current    int // index navigation is flying from
	nextID     int

	pool *util.Arena[Waypoint]
}

func NewBuffer() *Buffer {
	return &Buffer{pool: util.NewArena[Waypoint](Capacity + poolSlack)}
}

// Len returns the number of waypoints in the buffer.
func (b *Buffer) Len() int { return b.n }

// Current returns the index of the waypoint navigation is flying from.
func (b *Buffer) Current() int { return b.current }

// At returns the waypoint in slot i, or nil if i is outside the occupied
// prefix.
func (b *Buffer) At(i int) *Waypoint {
	if i < 0 || i >= b.n {
		return nil
	}
	return b.slots[i]
}

// StateOf reports whether slot i holds a waypoint.
func (b *Buffer) StateOf(i int) SlotState {
	if i < 0 || i >= Capacity {
		return SlotFree
	}
	return b.state[i]
}

// IndexOf returns the slot index of the waypoint with the given id, or -1
// if it is not in the buffer. The scan stops at the first free slot since
// occupied slots are packed.
func (b *Buffer) IndexOf(id int) int {
	for i := 0; i < Capacity; i++ {
		if b.state[i] == SlotFree {
			return -1
		}
		if b.slots[i].ID == id {
			return i
		}
	}
	return -1
}

// Initialize installs the given waypoints, in order, into an empty
// buffer. It fails with UndefinedFailure if the buffer already holds
// waypoints and with InvalidParameters if the list doesn't fit or
// contains a nil handle.
func (b *Buffer) Initialize(points []*Waypoint) Status {
	if b.n != 0 {
		return UndefinedFailure
	}
	if len(points) > Capacity {
		return InvalidParameters
	}
	for _, w := range points {
		if w == nil {
			return InvalidParameters
		}
	}

	for i, w := range points {
		b.slots[i] = w
		b.state[i] = SlotFull
	}
	b.link()

	b.n = len(points)
	b.nextFilled = len(points)
	return Success
}

// link rewires every Next/Prev pointer in the occupied prefix to match
// the array order.
func (b *Buffer) link() {
	for i := 0; i < Capacity && b.state[i] == SlotFull; i++ {
		if i > 0 {
			b.slots[i].Prev = b.slots[i-1]
		} else {
			b.slots[i].Prev = nil
		}
		if i+1 < Capacity && b.state[i+1] == SlotFull {
			b.slots[i].Next = b.slots[i+1]
		} else {
			b.slots[i].Next = nil
		}
	}
}

// Append places w after the last waypoint. It fails if the buffer is
// full or if w duplicates the position of its immediate predecessor.
func (b *Buffer) Append(w *Waypoint) Status {
	if w == nil || b.n == Capacity {
		return InvalidParameters
	}

	prev := b.nextFilled - 1
	if prev >= 0 && b.slots[prev].Latitude == w.Latitude && b.slots[prev].Longitude == w.Longitude {
		return InvalidParameters
	}

	b.slots[b.nextFilled] = w
	b.state[b.nextFilled] = SlotFull

	if prev >= 0 {
		w.Prev = b.slots[prev]
		b.slots[prev].Next = w
	}
	w.Next = nil

	b.nextFilled++
	b.n++
	return Success
}

// Insert places w between the two adjacent waypoints identified by
// prevID and nextID, shifting the suffix right by one slot.
func (b *Buffer) Insert(w *Waypoint, prevID, nextID int) Status {
	if w == nil || b.n == Capacity {
		return InvalidParameters
	}

	nextIndex := b.IndexOf(nextID)
	prevIndex := b.IndexOf(prevID)
	if nextIndex == -1 || prevIndex == -1 || nextIndex-1 != prevIndex || nextIndex == 0 {
		return InvalidParameters
	}

	for i := b.n - 1; i >= nextIndex; i-- {
		b.slots[i+1] = b.slots[i]
		b.state[i+1] = SlotFull
	}

	b.slots[nextIndex] = w
	b.state[nextIndex] = SlotFull

	w.Next = b.slots[nextIndex+1]
	w.Prev = b.slots[prevIndex]
	b.slots[prevIndex].Next = w
	b.slots[nextIndex+1].Prev = w

	b.n++
	b.nextFilled++
	return Success
}

// Update replaces the waypoint with the given id by w, in place; the
// displaced record is returned to the pool.
func (b *Buffer) Update(w *Waypoint, id int) Status {
	if w == nil {
		return InvalidParameters
	}
	i := b.IndexOf(id)
	if i == -1 {
		return InvalidParameters
	}

	old := b.slots[i]
	b.slots[i] = w
	// The replacement inherits the id: the id names the position in the
	// path, not the record, so a host can update the same waypoint
	// repeatedly by the id it first learned.
	w.ID = old.ID
	w.Prev = old.Prev
	w.Next = old.Next
	if w.Prev != nil {
		w.Prev.Next = w
	}
	if w.Next != nil {
		w.Next.Prev = w
	}

	b.destroy(old)
	return Success
}

// Delete removes the waypoint with the given id, relinks its neighbors
// across the gap, and compacts the suffix left by one slot.
func (b *Buffer) Delete(id int) Status {
	i := b.IndexOf(id)
	if i == -1 {
		return InvalidParameters
	}

	w := b.slots[i]
	if w.Prev != nil {
		w.Prev.Next = w.Next
	}
	if w.Next != nil {
		w.Next.Prev = w.Prev
	}
	b.destroy(w)

	for j := i; j < b.n-1; j++ {
		b.slots[j] = b.slots[j+1]
	}
	b.slots[b.n-1] = nil
	b.state[b.n-1] = SlotFree

	b.n--
	b.nextFilled--
	return Success
}

// Clear returns every waypoint to the pool and resets the buffer,
// including the id counter and the current index.
func (b *Buffer) Clear() {
	for i := 0; i < Capacity; i++ {
		if b.state[i] == SlotFull {
			b.destroy(b.slots[i])
		}
		b.slots[i] = nil
		b.state[i] = SlotFree
	}
	b.n = 0
	b.nextFilled = 0
	b.nextID = 0
	b.current = 0
}

// SetCurrent moves the current index to the waypoint with the given id.
// The waypoint must have both a successor and a successor-of-successor,
// matching the two-waypoint look-ahead of the transition planner.
func (b *Buffer) SetCurrent(id int) Status {
	i := b.IndexOf(id)
	if i == -1 || b.slots[i].Next == nil || b.slots[i].Next.Next == nil {
		return InvalidParameters
	}
	b.current = i
	return Success
}

func (b *Buffer) destroy(w *Waypoint) {
	w.Next = nil
	w.Prev = nil
	b.pool.Free(w)
}

///////////////////////////////////////////////////////////////////////////
// update dispatch

type UpdateOp int

const (
	OpAppend UpdateOp = iota
	OpInsert
	OpUpdate
	OpDelete
)

// UpdateRequest is the single record through which a host mutates the
// flight path; which fields matter depends on Op.
type UpdateRequest struct {
	Op       UpdateOp
	Waypoint *Waypoint // append, insert, update
	ID       int       // update, delete
	PrevID   int       // insert
	NextID   int       // insert
}

// UpdateNodes dispatches req to the corresponding buffer operation.
func (b *Buffer) UpdateNodes(req UpdateRequest) Status {
	switch req.Op {
	case OpAppend:
		return b.Append(req.Waypoint)
	case OpInsert:
		return b.Insert(req.Waypoint, req.PrevID, req.NextID)
	case OpUpdate:
		return b.Update(req.Waypoint, req.ID)
	case OpDelete:
		return b.Delete(req.ID)
	default:
		return InvalidParameters
	}
}
