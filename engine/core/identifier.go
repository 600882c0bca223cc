package core

import (
	"math"
	"strconv"
	"sync/atomic"
)

// GlobalID is unique across the whole process. Values are handed out in
// increasing order and are never reused, even once their owner is gone.
type GlobalID uint64

// LocalID is unique only within the LocalIDs allocator that produced it.
// Two allocators may hand out the same value, so LocalIDs from different
// owners must never be compared.
type LocalID uint64

var globalCounter atomic.Uint64

// AllocateGlobalID returns the next process-wide id. The second return value
// is false once the counter is exhausted, and stays false from then on.
func AllocateGlobalID() (GlobalID, bool) {
	for {
		current := globalCounter.Load()
		if current == math.MaxUint64 {
			return 0, false
		}
		if globalCounter.CompareAndSwap(current, current+1) {
			return GlobalID(current), true
		}
	}
}

func (id GlobalID) Value() uint64 {
	return uint64(id)
}

func (id GlobalID) String() string {
	return "g" + strconv.FormatUint(uint64(id), 10)
}

// LocalIDs is the per-owner counterpart of AllocateGlobalID. It is not safe
// for concurrent use: each goroutine that needs local ids owns its own
// allocator.
type LocalIDs struct {
	next uint64
}

func NewLocalIDs() *LocalIDs {
	return &LocalIDs{}
}

// Allocate returns the next id of this allocator, or false once the counter
// is exhausted.
func (l *LocalIDs) Allocate() (LocalID, bool) {
	if l.next == math.MaxUint64 {
		return 0, false
	}
	id := l.next
	l.next++
	return LocalID(id), true
}

func (id LocalID) Value() uint64 {
	return uint64(id)
}

func (id LocalID) String() string {
	return "l" + strconv.FormatUint(uint64(id), 10)
}
