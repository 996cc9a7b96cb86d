// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package backend - contract for the durable store of closed intervals
//
// A backend receives intervals in roughly increasing end time order
// from a single writer while any number of readers query it.
package backend

import (
	"fmt"

	"github.com/bitmark-inc/statehistory/fault"
	"github.com/bitmark-inc/statehistory/interval"
	"github.com/bitmark-inc/statehistory/statevalue"
)

// Backend - storage and retrieval of closed intervals
type Backend interface {
	// identifier for diagnostics only
	SSID() string

	// earliest valid time, and latest time stored so far
	StartTime() int64
	EndTime() int64

	// append one closed interval
	InsertPastState(start int64, end int64, quark int, value statevalue.Value) error

	// no more inserts will follow
	FinishedBuilding(endTime int64) error

	// fill every nil slot whose attribute has an interval containing t
	DoQuery(slots []*interval.Interval, t int64) error

	// nil if no stored interval contains t
	DoSingularQuery(t int64, quark int) (*interval.Interval, error)

	// stored intervals of the quarks intersecting the condition
	Query2D(quarks interval.QuarkSet, condition interval.TimeCondition) (interval.Iterator, error)

	// location of a serialized attribute tree, an empty name if none
	AttributeTreeReader() (string, int64)

	// where to serialize the attribute tree, an empty name declines
	AttributeTreeWriter() (string, int64)

	// erase all persistent data
	RemoveFiles() error

	// release resources, no further calls are valid
	Dispose()
}

// CheckInsert - the timing checks every backend applies to an insert
func CheckInsert(b Backend, start int64, end int64) error {
	if start < b.StartTime() {
		return fmt.Errorf("%s: start: %d < %d: %w", b.SSID(), start, b.StartTime(), fault.ErrTimeBeforeStart)
	}
	if end < start {
		return fmt.Errorf("%s: [%d, %d]: %w", b.SSID(), start, end, fault.ErrNegativeInterval)
	}
	return nil
}

// CheckQuery - a point query must not precede the start time
func CheckQuery(b Backend, t int64) error {
	if t < b.StartTime() {
		return fmt.Errorf("%s: time: %d < %d: %w", b.SSID(), t, b.StartTime(), fault.ErrTimeBeforeStart)
	}
	return nil
}
