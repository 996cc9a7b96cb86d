// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package transient - the still open interval of every attribute
//
// While a history is being built each attribute has exactly one open
// interval: the value it has held, unbroken, since some start time.
// A change closes that interval, hands it to the backend and opens a
// new one.  Closing the transient state flushes every open interval
// and makes it permanently inactive; after that reads return nothing
// and writes are ignored.
package transient

import (
	"fmt"
	"math"
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/statehistory/backend"
	"github.com/bitmark-inc/statehistory/fault"
	"github.com/bitmark-inc/statehistory/interval"
	"github.com/bitmark-inc/statehistory/statevalue"
)

// State - parallel per quark arrays guarded by a read/write lock
type State struct {
	sync.RWMutex
	log        *logger.L
	backend    backend.Backend
	values     []statevalue.Value
	startTimes []int64
	types      []statevalue.Type // NullType until the first non-null write
	latestTime int64
	active     bool
}

// New - an active transient state with no rows
func New(b backend.Backend, log *logger.L) *State {
	return &State{
		log:        log,
		backend:    b,
		values:     make([]statevalue.Value, 0, 64),
		startTimes: make([]int64, 0, 64),
		types:      make([]statevalue.Type, 0, 64),
		latestTime: b.StartTime(),
		active:     true,
	}
}

// IsActive - false once closed or deactivated
func (s *State) IsActive() bool {
	s.RLock()
	defer s.RUnlock()
	return s.active
}

// LatestTime - highest time seen by ApplyChange
func (s *State) LatestTime() int64 {
	s.RLock()
	defer s.RUnlock()
	return s.latestTime
}

// EnsureRow - add the row for a newly created attribute
func (s *State) EnsureRow() {
	s.Lock()
	defer s.Unlock()

	if !s.active {
		return
	}
	s.values = append(s.values, statevalue.Null())
	s.startTimes = append(s.startTimes, s.backend.StartTime())
	s.types = append(s.types, statevalue.NullType)
}

// internal: must hold the lock
func (s *State) checkQuark(quark int) error {
	if quark < 0 || quark >= len(s.values) {
		return fmt.Errorf("quark: %d  rows: %d: %w", quark, len(s.values), fault.ErrQuarkOutOfRange)
	}
	return nil
}

// internal: must hold the lock
func (s *State) checkType(quark int, value statevalue.Value) error {
	expected := s.types[quark]
	if value.IsNull() || statevalue.NullType == expected || value.Type() == expected {
		return nil
	}
	return fmt.Errorf("quark: %d  expected: %s  actual: %s: %w", quark, expected, value.Type(), fault.ErrValueTypeMismatch)
}

// ApplyChange - the attribute takes a new value from time t
//
// an unchanged value leaves the open interval alone, otherwise the
// open interval is closed at t-1 and passed to the backend
func (s *State) ApplyChange(t int64, value statevalue.Value, quark int) error {
	s.Lock()
	defer s.Unlock()

	if !s.active {
		return nil
	}
	if err := s.checkQuark(quark); nil != err {
		return err
	}
	if err := s.checkType(quark, value); nil != err {
		return err
	}

	if s.values[quark].Equal(value) {
		return nil
	}

	start := s.startTimes[quark]
	if t < s.backend.StartTime() {
		return fmt.Errorf("quark: %d  time: %d  history start: %d: %w", quark, t, s.backend.StartTime(), fault.ErrTimeBeforeStart)
	}
	if t < start {
		return fmt.Errorf("quark: %d  time: %d  open since: %d: %w", quark, t, start, fault.ErrNegativeInterval)
	}
	if start < t {
		err := s.backend.InsertPastState(start, t-1, quark, s.values[quark])
		if nil != err {
			s.log.Warnf("quark: %d [%d, %d] insert error: %s", quark, start, t-1, err)
			return err
		}
		s.startTimes[quark] = t
	}

	s.setType(quark, value)
	s.values[quark] = value
	if t > s.latestTime {
		s.latestTime = t
	}
	return nil
}

// ChangeOngoing - replace the value of the open interval without
// closing it
func (s *State) ChangeOngoing(quark int, value statevalue.Value) error {
	s.Lock()
	defer s.Unlock()

	if !s.active {
		return nil
	}
	if err := s.checkQuark(quark); nil != err {
		return err
	}
	if err := s.checkType(quark, value); nil != err {
		return err
	}
	s.setType(quark, value)
	s.values[quark] = value
	return nil
}

// internal: must hold the lock
func (s *State) setType(quark int, value statevalue.Value) {
	if statevalue.NullType == s.types[quark] && !value.IsNull() {
		s.types[quark] = value.Type()
	}
}

// Ongoing - value of the open interval, null once inactive
func (s *State) Ongoing(quark int) (statevalue.Value, error) {
	s.RLock()
	defer s.RUnlock()

	if !s.active {
		return statevalue.Null(), nil
	}
	if err := s.checkQuark(quark); nil != err {
		return statevalue.Null(), err
	}
	return s.values[quark], nil
}

// OngoingStart - start time of the open interval
func (s *State) OngoingStart(quark int) (int64, error) {
	s.RLock()
	defer s.RUnlock()

	if !s.active {
		return 0, fault.ErrHistoryClosed
	}
	if err := s.checkQuark(quark); nil != err {
		return 0, err
	}
	return s.startTimes[quark], nil
}

// OngoingAll - values of every open interval in quark order
func (s *State) OngoingAll() []statevalue.Value {
	s.RLock()
	defer s.RUnlock()

	if !s.active {
		return nil
	}
	result := make([]statevalue.Value, len(s.values))
	copy(result, s.values)
	return result
}

// IntervalAt - the open interval if it covers t, otherwise nil and
// the caller must consult the backend
func (s *State) IntervalAt(t int64, quark int) (*interval.Interval, error) {
	s.RLock()
	defer s.RUnlock()

	if !s.active {
		return nil, nil
	}
	if err := s.checkQuark(quark); nil != err {
		return nil, err
	}
	return s.openInterval(t, quark), nil
}

// internal: must hold the lock
func (s *State) openInterval(t int64, quark int) *interval.Interval {
	start := s.startTimes[quark]
	if t < start {
		return nil
	}
	return &interval.Interval{
		Start: start,
		End:   s.latestTime,
		Quark: quark,
		Value: s.values[quark],
	}
}

// DoQuery - fill the empty slots whose open interval covers t
func (s *State) DoQuery(slots []*interval.Interval, t int64) {
	s.RLock()
	defer s.RUnlock()

	if !s.active {
		return
	}
	n := len(slots)
	if len(s.values) < n {
		n = len(s.values)
	}
	for quark := 0; quark < n; quark += 1 {
		if nil == slots[quark] {
			slots[quark] = s.openInterval(t, quark)
		}
	}
}

// Query2D - open intervals of the requested quarks that reach the
// condition; an open interval extends to the future so only its
// start is compared
func (s *State) Query2D(quarks interval.QuarkSet, condition interval.TimeCondition) []interval.Interval {
	s.RLock()
	defer s.RUnlock()

	if !s.active {
		return nil
	}
	result := make([]interval.Interval, 0)
	for _, quark := range quarks.Quarks() {
		if quark < 0 || quark >= len(s.values) {
			continue
		}
		start := s.startTimes[quark]
		if !condition.Intersects(start, math.MaxInt64) {
			continue
		}
		result = append(result, *s.openInterval(condition.Max(), quark))
	}
	return result
}

// ReplaceAll - reinitialise every row from a list of intervals, one
// per quark in quark order; the end times are ignored
func (s *State) ReplaceAll(intervals []interval.Interval) {
	s.Lock()
	defer s.Unlock()

	if !s.active {
		return
	}
	n := len(intervals)
	s.values = make([]statevalue.Value, n)
	s.startTimes = make([]int64, n)
	s.types = make([]statevalue.Type, n)
	s.latestTime = s.backend.StartTime()

	for i, iv := range intervals {
		s.values[i] = iv.Value
		s.startTimes[i] = iv.Start
		s.types[i] = iv.Value.Type()
		if iv.Start > s.latestTime {
			s.latestTime = iv.Start
		}
	}
	s.log.Debugf("replaced: %d rows  latest time: %d", n, s.latestTime)
}

// Close - flush every open interval that starts no later than
// endTime and become inactive
func (s *State) Close(endTime int64) error {
	s.Lock()
	defer s.Unlock()

	if !s.active {
		return nil
	}

	var firstError error
	flushed := 0
	for quark, start := range s.startTimes {
		if start > endTime {
			continue
		}
		err := s.backend.InsertPastState(start, endTime, quark, s.values[quark])
		if nil != err {
			s.log.Criticalf("%s: flush quark: %d [%d, %d] error: %s", s.backend.SSID(), quark, start, endTime, err)
			if nil == firstError {
				firstError = err
			}
			continue
		}
		flushed += 1
	}
	s.log.Infof("%s: closed at: %d  flushed: %d of %d", s.backend.SSID(), endTime, flushed, len(s.startTimes))
	if endTime > s.latestTime {
		s.latestTime = endTime
	}
	s.clear()
	return firstError
}

// Deactivate - discard open intervals without flushing
func (s *State) Deactivate() {
	s.Lock()
	defer s.Unlock()
	if s.active {
		s.log.Debugf("%s: deactivated with: %d open intervals", s.backend.SSID(), len(s.values))
	}
	s.clear()
}

// internal: must hold the lock
func (s *State) clear() {
	s.values = nil
	s.startTimes = nil
	s.types = nil
	s.active = false
}
