// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package null - a backend that stores nothing
//
// Useful when only the ongoing state matters: every past interval is
// discarded and every query of the past finds nothing.
package null

import (
	"github.com/bitmark-inc/statehistory/backend"
	"github.com/bitmark-inc/statehistory/counter"
	"github.com/bitmark-inc/statehistory/interval"
	"github.com/bitmark-inc/statehistory/statevalue"
)

// Backend - discards all intervals
type Backend struct {
	ssid      string
	startTime int64
	endTime   *counter.HighWater
	discarded counter.Counter
}

// New - a null backend whose history begins at startTime
func New(ssid string, startTime int64) *Backend {
	return &Backend{
		ssid:      ssid,
		startTime: startTime,
		endTime:   counter.NewHighWater(startTime),
	}
}

// SSID - identifier
func (b *Backend) SSID() string { return b.ssid }

// StartTime - earliest valid time
func (b *Backend) StartTime() int64 { return b.startTime }

// EndTime - highest end time seen
func (b *Backend) EndTime() int64 { return b.endTime.Int64() }

// Discarded - number of intervals thrown away
func (b *Backend) Discarded() uint64 { return b.discarded.Uint64() }

// InsertPastState - check and discard
func (b *Backend) InsertPastState(start int64, end int64, quark int, value statevalue.Value) error {
	if err := backend.CheckInsert(b, start, end); nil != err {
		return err
	}
	b.endTime.Raise(end)
	b.discarded.Increment()
	return nil
}

// FinishedBuilding - only the end time is kept
func (b *Backend) FinishedBuilding(endTime int64) error {
	b.endTime.Raise(endTime)
	return nil
}

// DoQuery - leaves every slot empty
func (b *Backend) DoQuery(slots []*interval.Interval, t int64) error {
	return backend.CheckQuery(b, t)
}

// DoSingularQuery - never finds anything
func (b *Backend) DoSingularQuery(t int64, quark int) (*interval.Interval, error) {
	return nil, backend.CheckQuery(b, t)
}

// Query2D - always empty
func (b *Backend) Query2D(quarks interval.QuarkSet, condition interval.TimeCondition) (interval.Iterator, error) {
	return interval.FromSlice(nil), nil
}

// AttributeTreeReader - never supplies a tree
func (b *Backend) AttributeTreeReader() (string, int64) { return "", 0 }

// AttributeTreeWriter - declines to store a tree
func (b *Backend) AttributeTreeWriter() (string, int64) { return "", 0 }

// RemoveFiles - nothing to remove
func (b *Backend) RemoveFiles() error { return nil }

// Dispose - nothing to release
func (b *Backend) Dispose() {}
