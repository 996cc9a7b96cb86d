// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package statesystem

import (
	"fmt"

	"github.com/bitmark-inc/statehistory/fault"
	"github.com/bitmark-inc/statehistory/interval"
	"github.com/bitmark-inc/statehistory/statevalue"
)

// QueryOngoing - the value currently in effect, null once the history
// is closed
func (s *System) QueryOngoing(quark int) (statevalue.Value, error) {
	if err := s.checkQuark(quark); nil != err {
		return statevalue.Null(), err
	}
	return s.transient.Ongoing(quark)
}

// QueryOngoingStart - when the current value took effect
func (s *System) QueryOngoingStart(quark int) (int64, error) {
	if err := s.checkQuark(quark); nil != err {
		return 0, err
	}
	return s.transient.OngoingStart(quark)
}

// QueryOngoingState - the current value of every attribute in quark
// order, nil once the history is closed
func (s *System) QueryOngoingState() ([]statevalue.Value, error) {
	if err := s.check(); nil != err {
		return nil, err
	}
	return s.transient.OngoingAll(), nil
}

// internal: t must lie within the history
func (s *System) checkTime(t int64) error {
	if start := s.backend.StartTime(); t < start {
		return fmt.Errorf("time: %d  start: %d: %w", t, start, fault.ErrTimeBeforeStart)
	}
	if end := s.CurrentEndTime(); t > end {
		return fmt.Errorf("time: %d  end: %d: %w", t, end, fault.ErrTimeAfterEnd)
	}
	return nil
}

// QueryFull - the interval of every attribute that contains t, in
// quark order
func (s *System) QueryFull(t int64) ([]interval.Interval, error) {
	if err := s.check(); nil != err {
		return nil, err
	}
	if err := s.checkTime(t); nil != err {
		return nil, err
	}
	s.queries.Increment()

	slots := make([]*interval.Interval, s.tree.Count())
	s.transient.DoQuery(slots, t)
	err := s.backend.DoQuery(slots, t)
	if nil != err {
		return nil, err
	}

	result := make([]interval.Interval, len(slots))
	for quark, slot := range slots {
		if nil == slot {
			s.log.Criticalf("%s: full query at: %d  no interval for quark: %d", s.backend.SSID(), t, quark)
			return nil, fmt.Errorf("time: %d  quark: %d: %w", t, quark, fault.ErrIncoherentStorage)
		}
		result[quark] = *slot
	}
	return result, nil
}

// QuerySingle - the interval of one attribute that contains t
func (s *System) QuerySingle(t int64, quark int) (interval.Interval, error) {
	if err := s.checkQuark(quark); nil != err {
		return interval.Interval{}, err
	}
	if err := s.checkTime(t); nil != err {
		return interval.Interval{}, err
	}
	s.queries.Increment()

	iv, err := s.transient.IntervalAt(t, quark)
	if nil != err {
		return interval.Interval{}, err
	}
	if nil == iv {
		iv, err = s.backend.DoSingularQuery(t, quark)
		if nil != err {
			return interval.Interval{}, err
		}
	}
	if nil == iv {
		s.log.Criticalf("%s: single query at: %d  no interval for quark: %d", s.backend.SSID(), t, quark)
		return interval.Interval{}, fmt.Errorf("time: %d  quark: %d: %w", t, quark, fault.ErrIncoherentStorage)
	}
	return *iv, nil
}

// Query2D - every interval of the quarks that meets the condition
//
// the open intervals come first, the backend is only consulted once
// they have been consumed
func (s *System) Query2D(quarks interval.QuarkSet, condition interval.TimeCondition) (interval.Iterator, error) {
	if err := s.check(); nil != err {
		return nil, err
	}
	if start := s.backend.StartTime(); condition.Min() < start {
		return nil, fmt.Errorf("time: %d  start: %d: %w", condition.Min(), start, fault.ErrTimeBeforeStart)
	}
	if !quarks.IsEmpty() {
		if count := s.tree.Count(); quarks.Min() < 0 || quarks.Max() >= count {
			return nil, fmt.Errorf("quarks: [%d, %d]  count: %d: %w", quarks.Min(), quarks.Max(), count, fault.ErrQuarkOutOfRange)
		}
	}
	s.queries.Increment()

	ongoing := interval.FromSlice(s.transient.Query2D(quarks, condition))
	return interval.Concat(ongoing, func() (interval.Iterator, error) {
		return s.backend.Query2D(quarks, condition)
	}), nil
}

// Query2DRange - Query2D over the continuous range [start, end]
func (s *System) Query2DRange(quarks interval.QuarkSet, start int64, end int64) (interval.Iterator, error) {
	condition, err := interval.ContinuousRange(start, end)
	if nil != err {
		return nil, err
	}
	return s.Query2D(quarks, condition)
}
