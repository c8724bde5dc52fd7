// route/buffer_test.go
// Copyright(c) 2026 pathmanager contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package route

import (
	"testing"
)

// checkInvariants asserts the packing, linking, and id-uniqueness
// invariants that must hold after every successful mutation.
func checkInvariants(t *testing.T, b *Buffer) {
	t.Helper()

	for i := 0; i < b.Len(); i++ {
		if b.state[i] != SlotFull {
			t.Errorf("slot %d inside occupied prefix is not full", i)
		}
		if b.slots[i] == nil {
			t.Fatalf("slot %d inside occupied prefix is nil", i)
		}
	}
	for i := b.Len(); i < Capacity; i++ {
		if b.state[i] != SlotFree {
			t.Errorf("slot %d beyond occupied prefix is not free", i)
		}
		if b.slots[i] != nil {
			t.Errorf("slot %d beyond occupied prefix holds %v", i, b.slots[i])
		}
	}

	if b.nextFilled != b.n {
		t.Errorf("nextFilled %d != occupied count %d", b.nextFilled, b.n)
	}

	for i := 0; i < b.Len(); i++ {
		w := b.slots[i]
		if i == 0 {
			if w.Prev != nil {
				t.Errorf("first waypoint has non-nil Prev")
			}
		} else if w.Prev != b.slots[i-1] {
			t.Errorf("slot %d Prev does not point at slot %d", i, i-1)
		}
		if i == b.Len()-1 {
			if w.Next != nil {
				t.Errorf("last waypoint has non-nil Next")
			}
		} else if w.Next != b.slots[i+1] {
			t.Errorf("slot %d Next does not point at slot %d", i, i+1)
		}
	}

	seen := make(map[int]int)
	for i := 0; i < b.Len(); i++ {
		if j, ok := seen[b.slots[i].ID]; ok {
			t.Errorf("id %d appears at both slot %d and slot %d", b.slots[i].ID, j, i)
		}
		seen[b.slots[i].ID] = i
	}
}

func ids(b *Buffer) []int {
	var r []int
	for i := 0; i < b.Len(); i++ {
		r = append(r, b.slots[i].ID)
	}
	return r
}

func TestAppendAndDuplicate(t *testing.T) {
	b := NewBuffer()

	w := b.NewWaypointAt(43.0, -80.0, 100, FollowPath)
	if s := b.Append(w); s != Success {
		t.Fatalf("append: got %v, expected success", s)
	}
	checkInvariants(t, b)

	dup := b.NewWaypointAt(43.0, -80.0, 100, FollowPath)
	if s := b.Append(dup); s != InvalidParameters {
		t.Errorf("duplicate append: got %v, expected invalid parameters", s)
	}
	if b.Len() != 1 {
		t.Errorf("buffer holds %d waypoints, expected 1", b.Len())
	}
	checkInvariants(t, b)

	// A duplicate of a non-adjacent waypoint is allowed; only the
	// immediate predecessor is guarded.
	mid := b.NewWaypointAt(43.5, -80.0, 100, FollowPath)
	if s := b.Append(mid); s != Success {
		t.Fatalf("append: got %v", s)
	}
	again := b.NewWaypointAt(43.0, -80.0, 100, FollowPath)
	if s := b.Append(again); s != Success {
		t.Errorf("non-adjacent duplicate: got %v, expected success", s)
	}
	checkInvariants(t, b)
}

func TestInitialize(t *testing.T) {
	b := NewBuffer()

	pts := []*Waypoint{
		b.NewWaypointAt(43.0, -80.0, 100, FollowPath),
		b.NewWaypointAt(43.1, -80.1, 120, FollowPath),
		b.NewWaypointAt(43.2, -80.2, 140, FollowPath),
	}
	if s := b.Initialize(pts); s != Success {
		t.Fatalf("initialize: got %v", s)
	}
	if b.Len() != 3 {
		t.Errorf("buffer holds %d waypoints, expected 3", b.Len())
	}
	checkInvariants(t, b)

	// Initializing a non-empty buffer must fail without touching it.
	extra := b.NewWaypointAt(44, -81, 100, FollowPath)
	if s := b.Initialize([]*Waypoint{extra}); s != UndefinedFailure {
		t.Errorf("initialize on non-empty buffer: got %v, expected undefined failure", s)
	}
	if b.Len() != 3 {
		t.Errorf("failed initialize changed the buffer")
	}
	checkInvariants(t, b)
}

func TestInsertBetween(t *testing.T) {
	b := NewBuffer()

	pts := []*Waypoint{
		b.NewWaypointAt(43.0, -80.0, 100, FollowPath),
		b.NewWaypointAt(43.1, -80.1, 100, FollowPath),
		b.NewWaypointAt(43.2, -80.2, 100, FollowPath),
	}
	if s := b.Initialize(pts); s != Success {
		t.Fatalf("initialize: got %v", s)
	}
	id0, id1, id2 := pts[0].ID, pts[1].ID, pts[2].ID

	w := b.NewWaypointAt(43.05, -80.05, 100, FollowPath)
	if s := b.Insert(w, id0, id1); s != Success {
		t.Fatalf("insert: got %v", s)
	}
	checkInvariants(t, b)

	want := []int{id0, w.ID, id1, id2}
	got := ids(b)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("id order %v, expected %v", got, want)
		}
	}

	if s := b.Delete(id1); s != Success {
		t.Fatalf("delete: got %v", s)
	}
	checkInvariants(t, b)

	want = []int{id0, w.ID, id2}
	got = ids(b)
	if len(got) != len(want) {
		t.Fatalf("id order %v, expected %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("id order %v, expected %v", got, want)
		}
	}
}

func TestInsertInvalid(t *testing.T) {
	b := NewBuffer()

	pts := []*Waypoint{
		b.NewWaypointAt(43.0, -80.0, 100, FollowPath),
		b.NewWaypointAt(43.1, -80.1, 100, FollowPath),
		b.NewWaypointAt(43.2, -80.2, 100, FollowPath),
	}
	if s := b.Initialize(pts); s != Success {
		t.Fatalf("initialize: got %v", s)
	}
	id0, id2 := pts[0].ID, pts[2].ID

	before := ids(b)

	// Non-adjacent pair.
	w := b.NewWaypointAt(43.05, -80.05, 100, FollowPath)
	if s := b.Insert(w, id0, id2); s != InvalidParameters {
		t.Errorf("non-adjacent insert: got %v, expected invalid parameters", s)
	}
	// Unknown id.
	if s := b.Insert(w, 997, 998); s != InvalidParameters {
		t.Errorf("unknown-id insert: got %v, expected invalid parameters", s)
	}

	// Failed operations left no trace.
	after := ids(b)
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("failed insert mutated the buffer: %v -> %v", before, after)
		}
	}
	checkInvariants(t, b)
}

func TestUpdateIdempotent(t *testing.T) {
	b := NewBuffer()

	pts := []*Waypoint{
		b.NewWaypointAt(43.0, -80.0, 100, FollowPath),
		b.NewWaypointAt(43.1, -80.1, 100, FollowPath),
		b.NewWaypointAt(43.2, -80.2, 100, FollowPath),
	}
	if s := b.Initialize(pts); s != Success {
		t.Fatalf("initialize: got %v", s)
	}
	id := pts[1].ID

	w := b.NewWaypointAt(43.15, -80.15, 150, FollowPath)
	if s := b.Update(w, id); s != Success {
		t.Fatalf("update: got %v", s)
	}
	checkInvariants(t, b)

	if b.At(1) != w || w.ID != id {
		t.Errorf("updated slot does not hold the replacement under the same id")
	}

	// A second update through the same id succeeds and leaves the same
	// shape as if only it had happened.
	w2 := b.NewWaypointAt(43.16, -80.16, 160, FollowPath)
	if s := b.Update(w2, id); s != Success {
		t.Fatalf("second update: got %v", s)
	}
	checkInvariants(t, b)
	if b.At(1) != w2 || w2.ID != id || b.Len() != 3 {
		t.Errorf("second update did not leave the buffer in the single-update shape")
	}
}

func TestDeleteEndpoints(t *testing.T) {
	b := NewBuffer()

	pts := []*Waypoint{
		b.NewWaypointAt(43.0, -80.0, 100, FollowPath),
		b.NewWaypointAt(43.1, -80.1, 100, FollowPath),
		b.NewWaypointAt(43.2, -80.2, 100, FollowPath),
	}
	if s := b.Initialize(pts); s != Success {
		t.Fatalf("initialize: got %v", s)
	}

	if s := b.Delete(pts[0].ID); s != Success {
		t.Fatalf("delete head: got %v", s)
	}
	checkInvariants(t, b)

	if s := b.Delete(pts[2].ID); s != Success {
		t.Fatalf("delete tail: got %v", s)
	}
	checkInvariants(t, b)
	if b.Len() != 1 {
		t.Fatalf("buffer holds %d waypoints, expected 1", b.Len())
	}

	if s := b.Delete(b.At(0).ID); s != Success {
		t.Fatalf("delete last remaining: got %v", s)
	}
	checkInvariants(t, b)
	if b.Len() != 0 {
		t.Errorf("buffer holds %d waypoints, expected 0", b.Len())
	}

	if s := b.Delete(12345); s != InvalidParameters {
		t.Errorf("delete unknown id: got %v, expected invalid parameters", s)
	}
}

func TestClearResetsIds(t *testing.T) {
	b := NewBuffer()

	for i := 0; i < 5; i++ {
		if s := b.Append(b.NewWaypointAt(43+float64(i)/10, -80, 100, FollowPath)); s != Success {
			t.Fatalf("append %d: got %v", i, s)
		}
	}
	b.Clear()
	checkInvariants(t, b)

	if b.Len() != 0 || b.Current() != 0 {
		t.Errorf("clear left len %d current %d", b.Len(), b.Current())
	}
	if w := b.NewWaypoint(); w.ID != 0 {
		t.Errorf("first id after clear is %d, expected 0", w.ID)
	}
}

func TestSetCurrentLookahead(t *testing.T) {
	b := NewBuffer()

	pts := []*Waypoint{
		b.NewWaypointAt(43.0, -80.0, 100, FollowPath),
		b.NewWaypointAt(43.1, -80.1, 100, FollowPath),
		b.NewWaypointAt(43.2, -80.2, 100, FollowPath),
		b.NewWaypointAt(43.3, -80.3, 100, FollowPath),
	}
	if s := b.Initialize(pts); s != Success {
		t.Fatalf("initialize: got %v", s)
	}

	if s := b.SetCurrent(pts[1].ID); s != Success {
		t.Errorf("set current with two-waypoint lookahead: got %v", s)
	}
	if b.Current() != 1 {
		t.Errorf("current index %d, expected 1", b.Current())
	}

	// The last two waypoints don't have the required lookahead.
	if s := b.SetCurrent(pts[2].ID); s != InvalidParameters {
		t.Errorf("set current without successor-of-successor: got %v", s)
	}
	if s := b.SetCurrent(pts[3].ID); s != InvalidParameters {
		t.Errorf("set current on the last waypoint: got %v", s)
	}
	if s := b.SetCurrent(999); s != InvalidParameters {
		t.Errorf("set current with unknown id: got %v", s)
	}
	if b.Current() != 1 {
		t.Errorf("failed SetCurrent moved the index to %d", b.Current())
	}
}

func TestAppendFull(t *testing.T) {
	b := NewBuffer()

	for i := 0; i < Capacity; i++ {
		w := b.NewWaypointAt(float64(i)/1000, float64(i)/1000, 100, FollowPath)
		if w == nil {
			t.Fatalf("pool exhausted at %d with capacity %d", i, Capacity)
		}
		if s := b.Append(w); s != Success {
			t.Fatalf("append %d: got %v", i, s)
		}
	}
	checkInvariants(t, b)

	w := b.NewWaypointAt(0.5, 0.5, 100, FollowPath)
	if s := b.Append(w); s != InvalidParameters {
		t.Errorf("append to full buffer: got %v, expected invalid parameters", s)
	}
	if s := b.Insert(w, b.At(0).ID, b.At(1).ID); s != InvalidParameters {
		t.Errorf("insert into full buffer: got %v, expected invalid parameters", s)
	}
	if b.Len() != Capacity {
		t.Errorf("failed append changed the buffer length to %d", b.Len())
	}
}

func TestUpdateNodesDispatch(t *testing.T) {
	b := NewBuffer()

	w0 := b.NewWaypointAt(43.0, -80.0, 100, FollowPath)
	if s := b.UpdateNodes(UpdateRequest{Op: OpAppend, Waypoint: w0}); s != Success {
		t.Fatalf("dispatch append: got %v", s)
	}
	w1 := b.NewWaypointAt(43.1, -80.1, 100, FollowPath)
	if s := b.UpdateNodes(UpdateRequest{Op: OpAppend, Waypoint: w1}); s != Success {
		t.Fatalf("dispatch append: got %v", s)
	}

	mid := b.NewWaypointAt(43.05, -80.05, 100, FollowPath)
	if s := b.UpdateNodes(UpdateRequest{Op: OpInsert, Waypoint: mid, PrevID: w0.ID, NextID: w1.ID}); s != Success {
		t.Fatalf("dispatch insert: got %v", s)
	}
	checkInvariants(t, b)

	repl := b.NewWaypointAt(43.06, -80.06, 120, FollowPath)
	if s := b.UpdateNodes(UpdateRequest{Op: OpUpdate, Waypoint: repl, ID: mid.ID}); s != Success {
		t.Fatalf("dispatch update: got %v", s)
	}
	if s := b.UpdateNodes(UpdateRequest{Op: OpDelete, ID: repl.ID}); s != Success {
		t.Fatalf("dispatch delete: got %v", s)
	}
	checkInvariants(t, b)
	if b.Len() != 2 {
		t.Errorf("buffer holds %d waypoints, expected 2", b.Len())
	}

	if s := b.UpdateNodes(UpdateRequest{Op: UpdateOp(42)}); s != InvalidParameters {
		t.Errorf("dispatch unknown op: got %v, expected invalid parameters", s)
	}
}

func TestPoolRecycling(t *testing.T) {
	b := NewBuffer()

	// Fill and clear repeatedly; the fixed pool must sustain it.
	for round := 0; round < 4; round++ {
		for i := 0; i < Capacity; i++ {
			w := b.NewWaypointAt(float64(i)/1000, 1+float64(i)/1000, 100, FollowPath)
			if w == nil {
				t.Fatalf("round %d: pool exhausted at %d", round, i)
			}
			if s := b.Append(w); s != Success {
				t.Fatalf("round %d append %d: got %v", round, i, s)
			}
		}
		b.Clear()
	}
	checkInvariants(t, b)
}
