// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package interval - the unit exchanged between the state system and
// its backends, plus the conditions used to select intervals
package interval

import (
	"fmt"

	"github.com/bitmark-inc/statehistory/fault"
	"github.com/bitmark-inc/statehistory/statevalue"
)

// Interval - closed range [Start, End] during which Quark held Value
type Interval struct {
	Start int64
	End   int64
	Quark int
	Value statevalue.Value
}

// New - create an interval, end must not precede start
func New(start int64, end int64, quark int, value statevalue.Value) (Interval, error) {
	if end < start {
		return Interval{}, fmt.Errorf("[%d, %d]: %w", start, end, fault.ErrNegativeInterval)
	}
	return Interval{
		Start: start,
		End:   end,
		Quark: quark,
		Value: value,
	}, nil
}

// Contains - true if t is inside the interval
func (i Interval) Contains(t int64) bool {
	return i.Start <= t && t <= i.End
}

// String - for diagnostics
func (i Interval) String() string {
	return fmt.Sprintf("[%d, %d] q:%d = %s", i.Start, i.End, i.Quark, i.Value)
}
