// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package statesystem

import (
	"fmt"
	"strconv"

	"github.com/bitmark-inc/statehistory/fault"
	"github.com/bitmark-inc/statehistory/interval"
	"github.com/bitmark-inc/statehistory/statevalue"
)

// Modify - the attribute takes a new value from time t
func (s *System) Modify(t int64, value statevalue.Value, quark int) error {
	if err := s.checkQuark(quark); nil != err {
		return err
	}
	err := s.transient.ApplyChange(t, value, quark)
	if nil != err {
		return err
	}
	s.modifications.Increment()
	return nil
}

// internal: the depth of a stack attribute, null is an empty stack
// and any other value must be a positive integer
func (s *System) stackDepth(quark int) (int, error) {
	value, err := s.transient.Ongoing(quark)
	if nil != err {
		return 0, err
	}
	if value.IsNull() {
		return 0, nil
	}
	depth, err := value.Int()
	if nil != err {
		return 0, fmt.Errorf("stack: %d  depth is: %s: %w", quark, value.Type(), fault.ErrValueTypeMismatch)
	}
	if depth <= 0 {
		return 0, fmt.Errorf("stack: %d  depth: %d: %w", quark, depth, fault.ErrValueTypeMismatch)
	}
	return int(depth), nil
}

// Push - push a value onto the stack held by an attribute
//
// the attribute holds the depth and the sub-attribute named by the
// depth holds the value
func (s *System) Push(t int64, value statevalue.Value, quark int) error {
	if err := s.checkQuark(quark); nil != err {
		return err
	}

	depth, err := s.stackDepth(quark)
	if nil != err {
		return err
	}
	if depth >= s.maxStackDepth {
		s.log.Criticalf("stack: %d  depth: %d reached the maximum", quark, depth)
		return fmt.Errorf("stack: %d  maximum depth: %d: %w", quark, s.maxStackDepth, fault.ErrStackLimitExceeded)
	}
	depth += 1

	sub, err := s.tree.ResolveOrCreate(quark, strconv.Itoa(depth))
	if nil != err {
		return err
	}
	err = s.Modify(t, statevalue.Int(int32(depth)), quark)
	if nil != err {
		return err
	}
	return s.Modify(t, value, sub)
}

// Pop - remove the top of the stack held by an attribute and return
// its value
//
// an attribute without a stack is not an error, the result is null
func (s *System) Pop(t int64, quark int) (statevalue.Value, error) {
	if err := s.checkQuark(quark); nil != err {
		return statevalue.Null(), err
	}

	depth, err := s.stackDepth(quark)
	if nil != err {
		return statevalue.Null(), err
	}
	if 0 == depth {
		return statevalue.Null(), nil
	}

	sub, err := s.tree.Resolve(quark, strconv.Itoa(depth))
	if nil != err {
		return statevalue.Null(), err
	}
	value, err := s.transient.Ongoing(sub)
	if nil != err {
		return statevalue.Null(), err
	}

	next := statevalue.Null()
	if depth > 1 {
		next = statevalue.Int(int32(depth - 1))
	}
	err = s.Modify(t, next, quark)
	if nil != err {
		return statevalue.Null(), err
	}

	err = s.Remove(t, sub)
	if nil != err {
		return statevalue.Null(), err
	}
	return value, nil
}

// Remove - set an attribute and all of its descendants to null,
// deepest first
func (s *System) Remove(t int64, quark int) error {
	if err := s.checkQuark(quark); nil != err {
		return err
	}

	children, err := s.tree.SubAttributes(quark, false)
	if nil != err {
		return err
	}
	for _, child := range children {
		if child == quark {
			fault.Panicf("attribute: %d is its own child", quark)
		}
		err := s.Remove(t, child)
		if nil != err {
			return err
		}
	}
	return s.Modify(t, statevalue.Null(), quark)
}

// UpdateOngoingState - replace the ongoing value without starting a
// new interval
func (s *System) UpdateOngoingState(value statevalue.Value, quark int) error {
	if err := s.checkQuark(quark); nil != err {
		return err
	}
	return s.transient.ChangeOngoing(quark, value)
}

// ReplaceOngoingState - reset every ongoing value and start time from
// one interval per attribute in quark order; end times are ignored
func (s *System) ReplaceOngoingState(intervals []interval.Interval) error {
	if err := s.check(); nil != err {
		return err
	}
	if count := s.tree.Count(); len(intervals) != count {
		return fmt.Errorf("intervals: %d  attributes: %d: %w", len(intervals), count, fault.ErrInvalidValue)
	}
	for quark, iv := range intervals {
		if iv.Quark != quark {
			return fmt.Errorf("position: %d  quark: %d: %w", quark, iv.Quark, fault.ErrQuarkOutOfRange)
		}
	}
	s.transient.ReplaceAll(intervals)
	s.log.Warnf("%s: ongoing state replaced", s.backend.SSID())
	return nil
}
