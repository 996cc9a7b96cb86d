// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package counter_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/statehistory/counter"
)

// test incrementing/decrementing a counter
func TestCounter(t *testing.T) {

	var c1 counter.Counter

	if !c1.IsZero() {
		t.Errorf("counter is not zero at start: %d", c1.Uint64())
	}

	c1.Increment()
	c1.Increment()
	c1.Increment()
	c1.Increment()
	c1.Increment()

	if 5 != c1.Uint64() {
		t.Errorf("counter is not 5 after incrementing: %d", c1.Uint64())
	}

	c1.Decrement()

	if 4 != c1.Uint64() {
		t.Errorf("counter is not 4 after decrementing: %d", c1.Uint64())
	}

	c1.Decrement()
	c1.Decrement()
	c1.Decrement()
	c1.Decrement()

	if !c1.IsZero() {
		t.Errorf("counter did not return to zero: %d", c1.Uint64())
	}

	c1.Decrement()

	// check against underflow, i.e. twos complement -1
	if ^uint64(0) != c1.Uint64() {
		t.Errorf("counter did not underflow: %d", c1.Uint64())
	}

	c1.Add(11)
	assert.Equal(t, uint64(10), c1.Uint64(), "add after underflow")
}

func TestHighWater(t *testing.T) {
	h := counter.NewHighWater(-5)
	assert.Equal(t, int64(-5), h.Int64(), "initial value")

	assert.False(t, h.Raise(-10), "moved backwards")
	assert.True(t, h.Raise(7), "did not move forwards")
	assert.False(t, h.Raise(7), "moved on equal value")
	assert.Equal(t, int64(7), h.Int64(), "final value")
}

func TestHighWaterConcurrent(t *testing.T) {
	h := counter.NewHighWater(0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i += 1 {
		wg.Add(1)
		go func(base int64) {
			defer wg.Done()
			for j := int64(0); j < 1000; j += 1 {
				h.Raise(base*1000 + j)
			}
		}(int64(i))
	}
	wg.Wait()

	assert.Equal(t, int64(7999), h.Int64(), "highest value lost")
}
