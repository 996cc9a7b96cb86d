// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package interval

import (
	"fmt"
	"sort"

	"github.com/bitmark-inc/statehistory/fault"
)

// TimeCondition - selects the instants a range query is interested in
type TimeCondition struct {
	times []int64 // nil for a continuous range
	min   int64
	max   int64
}

// ContinuousRange - every instant from min to max inclusive
func ContinuousRange(min int64, max int64) (TimeCondition, error) {
	if max < min {
		return TimeCondition{}, fmt.Errorf("[%d, %d]: %w", min, max, fault.ErrInvalidTimeRange)
	}
	return TimeCondition{
		min: min,
		max: max,
	}, nil
}

// DiscreteTimes - only the listed instants, which need not be sorted
func DiscreteTimes(times ...int64) (TimeCondition, error) {
	if 0 == len(times) {
		return TimeCondition{}, fmt.Errorf("no times: %w", fault.ErrInvalidTimeRange)
	}
	sorted := make([]int64, len(times))
	copy(sorted, times)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	unique := sorted[:1]
	for _, t := range sorted[1:] {
		if t != unique[len(unique)-1] {
			unique = append(unique, t)
		}
	}
	return TimeCondition{
		times: unique,
		min:   unique[0],
		max:   unique[len(unique)-1],
	}, nil
}

// Min - lowest selected instant
func (c TimeCondition) Min() int64 {
	return c.min
}

// Max - highest selected instant
func (c TimeCondition) Max() int64 {
	return c.max
}

// IsDiscrete - true if built by DiscreteTimes
func (c TimeCondition) IsDiscrete() bool {
	return nil != c.times
}

// Contains - true if t is selected
func (c TimeCondition) Contains(t int64) bool {
	if t < c.min || t > c.max {
		return false
	}
	if nil == c.times {
		return true
	}
	n := sort.Search(len(c.times), func(i int) bool { return c.times[i] >= t })
	return n < len(c.times) && c.times[n] == t
}

// Intersects - true if any selected instant lies in [start, end]
func (c TimeCondition) Intersects(start int64, end int64) bool {
	if end < c.min || start > c.max {
		return false
	}
	if nil == c.times {
		return true
	}
	n := sort.Search(len(c.times), func(i int) bool { return c.times[i] >= start })
	return n < len(c.times) && c.times[n] <= end
}

// QuarkSet - sorted set of distinct quarks
type QuarkSet struct {
	quarks []int
}

// NewQuarkSet - build a set from any list of quarks
func NewQuarkSet(quarks ...int) QuarkSet {
	sorted := make([]int, len(quarks))
	copy(sorted, quarks)
	sort.Ints(sorted)

	unique := sorted[:0]
	for i, q := range sorted {
		if 0 == i || q != sorted[i-1] {
			unique = append(unique, q)
		}
	}
	return QuarkSet{quarks: unique}
}

// IsEmpty - true if no quarks
func (s QuarkSet) IsEmpty() bool {
	return 0 == len(s.quarks)
}

// Min - lowest quark, only valid if not empty
func (s QuarkSet) Min() int {
	return s.quarks[0]
}

// Max - highest quark, only valid if not empty
func (s QuarkSet) Max() int {
	return s.quarks[len(s.quarks)-1]
}

// Contains - set membership
func (s QuarkSet) Contains(quark int) bool {
	n := sort.SearchInts(s.quarks, quark)
	return n < len(s.quarks) && s.quarks[n] == quark
}

// Quarks - the members in ascending order, must not be modified
func (s QuarkSet) Quarks() []int {
	return s.quarks
}
