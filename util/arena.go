// util/arena.go
// Copyright(c) 2026 pathmanager contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

// Arena is a fixed-capacity allocator for objects of type T. All storage
// is reserved up front, so Alloc and Free never touch the heap; Alloc
// returns nil once the arena is exhausted. It is not safe for concurrent
// use; callers that share an arena across goroutines must provide their
// own locking.
type Arena[T any] struct {
	pool []T
	free []*T
}

func NewArena[T any](capacity int) *Arena[T] {
	a := &Arena[T]{
		pool: make([]T, capacity),
		free: make([]*T, 0, capacity),
	}
	for i := capacity - 1; i >= 0; i-- {
		a.free = append(a.free, &a.pool[i])
	}
	return a
}

// Alloc returns a zeroed object from the arena, or nil if none remain.
func (a *Arena[T]) Alloc() *T {
	if len(a.free) == 0 {
		return nil
	}
	p := a.free[len(a.free)-1]
	a.free = a.free[:len(a.free)-1]
	var t T
	*p = t
	return p
}

// Free returns an object previously handed out by Alloc.
func (a *Arena[T]) Free(p *T) {
	if p == nil {
		return
	}
	a.free = append(a.free, p)
}

// Available returns the number of objects that can still be allocated.
func (a *Arena[T]) Available() int {
	return len(a.free)
}

func (a *Arena[T]) Cap() int {
	return len(a.pool)
}
