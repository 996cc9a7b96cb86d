// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package memory - a backend that keeps every interval in memory
//
// Each quark has its own AVL tree keyed by interval end time.  The
// intervals of one quark never overlap, so the interval containing t
// is the one with the lowest end time that is not before t.
package memory

import (
	"fmt"
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/statehistory/avl"
	"github.com/bitmark-inc/statehistory/backend"
	"github.com/bitmark-inc/statehistory/counter"
	"github.com/bitmark-inc/statehistory/fault"
	"github.com/bitmark-inc/statehistory/interval"
	"github.com/bitmark-inc/statehistory/statevalue"
)

// Backend - in-memory interval store
type Backend struct {
	sync.RWMutex
	log       *logger.L
	ssid      string
	startTime int64
	endTime   *counter.HighWater
	trees     []*avl.Tree
	inserted  counter.Counter
	disposed  bool
}

// New - an empty store whose history begins at startTime
func New(ssid string, startTime int64, log *logger.L) *Backend {
	log.Infof("%s: memory backend starting at: %d", ssid, startTime)
	return &Backend{
		log:       log,
		ssid:      ssid,
		startTime: startTime,
		endTime:   counter.NewHighWater(startTime),
		trees:     make([]*avl.Tree, 0, 64),
	}
}

// SSID - identifier
func (b *Backend) SSID() string {
	return b.ssid
}

// StartTime - earliest valid time
func (b *Backend) StartTime() int64 {
	return b.startTime
}

// EndTime - highest end time inserted so far
func (b *Backend) EndTime() int64 {
	return b.endTime.Int64()
}

// Count - number of intervals stored
func (b *Backend) Count() uint64 {
	return b.inserted.Uint64()
}

// InsertPastState - add a closed interval
func (b *Backend) InsertPastState(start int64, end int64, quark int, value statevalue.Value) error {
	if err := backend.CheckInsert(b, start, end); nil != err {
		return err
	}
	if quark < 0 {
		return fmt.Errorf("%s: quark: %d: %w", b.ssid, quark, fault.ErrQuarkOutOfRange)
	}

	b.Lock()
	defer b.Unlock()

	if b.disposed {
		return fault.ErrSystemDisposed
	}

	for len(b.trees) <= quark {
		b.trees = append(b.trees, avl.New())
	}
	if err := b.checkOverlap(start, end, quark); nil != err {
		b.log.Warnf("insert: %s", err)
		return err
	}
	added := b.trees[quark].Insert(end, &interval.Interval{
		Start: start,
		End:   end,
		Quark: quark,
		Value: value,
	})
	if added {
		b.inserted.Increment()
	}
	b.endTime.Raise(end)
	return nil
}

// internal: must hold the write lock
//
// the stored intervals of a quark are disjoint: the one ending at or
// before end must finish before start and the one ending at or after
// end must begin after it
func (b *Backend) checkOverlap(start int64, end int64, quark int) error {
	tree := b.trees[quark]
	if p := tree.Floor(end); nil != p {
		if iv := p.Value().(*interval.Interval); iv.End >= start {
			return fmt.Errorf("%s: quark: %d [%d, %d] overlaps [%d, %d]: %w", b.ssid, quark, start, end, iv.Start, iv.End, fault.ErrOverlappingInterval)
		}
	}
	if p := tree.Ceiling(end); nil != p {
		if iv := p.Value().(*interval.Interval); iv.Start <= end {
			return fmt.Errorf("%s: quark: %d [%d, %d] overlaps [%d, %d]: %w", b.ssid, quark, start, end, iv.Start, iv.End, fault.ErrOverlappingInterval)
		}
	}
	return nil
}

// FinishedBuilding - record the final end time
func (b *Backend) FinishedBuilding(endTime int64) error {
	b.endTime.Raise(endTime)
	b.log.Infof("%s: finished at: %d  intervals: %d", b.ssid, b.endTime.Int64(), b.inserted.Uint64())
	return nil
}

// internal: must hold the read lock
func (b *Backend) find(t int64, quark int) *interval.Interval {
	if quark >= len(b.trees) {
		return nil
	}
	node := b.trees[quark].Ceiling(t)
	if nil == node {
		return nil
	}
	iv := node.Value().(*interval.Interval)
	if iv.Start > t {
		return nil
	}
	result := *iv
	return &result
}

// DoQuery - fill empty slots from the stored intervals
func (b *Backend) DoQuery(slots []*interval.Interval, t int64) error {
	if err := backend.CheckQuery(b, t); nil != err {
		return err
	}

	b.RLock()
	defer b.RUnlock()

	for quark, slot := range slots {
		if nil == slot {
			slots[quark] = b.find(t, quark)
		}
	}
	return nil
}

// DoSingularQuery - the stored interval of one quark containing t
func (b *Backend) DoSingularQuery(t int64, quark int) (*interval.Interval, error) {
	if err := backend.CheckQuery(b, t); nil != err {
		return nil, err
	}
	if quark < 0 {
		return nil, fmt.Errorf("%s: quark: %d: %w", b.ssid, quark, fault.ErrQuarkOutOfRange)
	}

	b.RLock()
	defer b.RUnlock()

	return b.find(t, quark), nil
}

// Query2D - stored intervals intersecting the condition, ordered by
// quark then time
func (b *Backend) Query2D(quarks interval.QuarkSet, condition interval.TimeCondition) (interval.Iterator, error) {
	b.RLock()
	defer b.RUnlock()

	result := make([]interval.Interval, 0)
	for _, quark := range quarks.Quarks() {
		if quark < 0 || quark >= len(b.trees) {
			continue
		}
	scan:
		for p := b.trees[quark].Ceiling(condition.Min()); nil != p; p = p.Next() {
			iv := p.Value().(*interval.Interval)
			if iv.Start > condition.Max() {
				break scan
			}
			if condition.Intersects(iv.Start, iv.End) {
				result = append(result, *iv)
			}
		}
	}
	return interval.FromSlice(result), nil
}

// AttributeTreeReader - never supplies a tree
func (b *Backend) AttributeTreeReader() (string, int64) {
	return "", 0
}

// AttributeTreeWriter - declines to store a tree
func (b *Backend) AttributeTreeWriter() (string, int64) {
	return "", 0
}

// RemoveFiles - nothing is persistent
func (b *Backend) RemoveFiles() error {
	return nil
}

// Dispose - drop all intervals
func (b *Backend) Dispose() {
	b.Lock()
	defer b.Unlock()
	b.trees = nil
	b.disposed = true
	b.log.Debugf("%s: disposed", b.ssid)
}
