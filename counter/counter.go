// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package counter - lock free statistics and time marks
package counter

import (
	"sync/atomic"
)

// Counter - type to denote a counter that can be synchronously increments or decremented
// just a 64 bit unsigned integer
type Counter uint64

// Increment - add 1 to a counter, returns new value
func (ic *Counter) Increment() uint64 {
	return atomic.AddUint64((*uint64)(ic), 1)
}

// Add - add n to a counter, returns new value
func (ic *Counter) Add(n uint64) uint64 {
	return atomic.AddUint64((*uint64)(ic), n)
}

// Decrement - subtract 1 from a counter, returns new value
func (ic *Counter) Decrement() uint64 {
	return atomic.AddUint64((*uint64)(ic), ^uint64(0))
}

// Uint64 - returns current value
func (ic *Counter) Uint64() uint64 {
	return atomic.LoadUint64((*uint64)(ic))
}

// IsZero - check if zero
func (ic *Counter) IsZero() bool {
	return 0 == atomic.LoadUint64((*uint64)(ic))
}

// HighWater - a signed time mark that only moves forwards
type HighWater int64

// NewHighWater - a mark starting at t
func NewHighWater(t int64) *HighWater {
	h := HighWater(t)
	return &h
}

// Raise - move the mark up to t, returns true if it moved
func (h *HighWater) Raise(t int64) bool {
	for {
		current := atomic.LoadInt64((*int64)(h))
		if t <= current {
			return false
		}
		if atomic.CompareAndSwapInt64((*int64)(h), current, t) {
			return true
		}
	}
}

// Int64 - returns current value
func (h *HighWater) Int64() int64 {
	return atomic.LoadInt64((*int64)(h))
}
