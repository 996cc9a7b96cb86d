// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package interval

// Iterator - single pass sequence of intervals
//
//   for it.Next() {
//       i := it.Interval()
//       ...
//   }
//   it.Release()
//   if err := it.Err(); nil != err {
//       ...
//   }
type Iterator interface {
	Next() bool
	Interval() Interval
	Err() error
	Release()
}

// Producer - deferred construction of an iterator
type Producer func() (Iterator, error)

// FromSlice - iterate over a fixed list
func FromSlice(intervals []Interval) Iterator {
	return &sliceIterator{
		intervals: intervals,
		index:     -1,
	}
}

type sliceIterator struct {
	intervals []Interval
	index     int
}

func (s *sliceIterator) Next() bool {
	if s.index+1 >= len(s.intervals) {
		s.index = len(s.intervals)
		return false
	}
	s.index += 1
	return true
}

func (s *sliceIterator) Interval() Interval {
	return s.intervals[s.index]
}

func (s *sliceIterator) Err() error {
	return nil
}

func (s *sliceIterator) Release() {
	s.intervals = nil
	s.index = 0
}

// Concat - all of first followed by all of the iterator made by
// second; second is only called once first is exhausted
func Concat(first Iterator, second Producer) Iterator {
	return &concatIterator{
		current: first,
		next:    second,
	}
}

type concatIterator struct {
	current Iterator
	next    Producer
	err     error
}

func (c *concatIterator) Next() bool {
	for nil != c.current {
		if c.current.Next() {
			return true
		}
		err := c.current.Err()
		c.current.Release()
		c.current = nil
		if nil != err {
			c.err = err
			return false
		}

		if nil != c.next {
			it, err := c.next()
			c.next = nil
			if nil != err {
				c.err = err
				return false
			}
			c.current = it
		}
	}
	return false
}

func (c *concatIterator) Interval() Interval {
	return c.current.Interval()
}

func (c *concatIterator) Err() error {
	return c.err
}

func (c *concatIterator) Release() {
	if nil != c.current {
		c.current.Release()
		c.current = nil
	}
	c.next = nil
}

// Collect - drain an iterator into a slice and release it
func Collect(it Iterator) ([]Interval, error) {
	result := make([]Interval, 0)
	for it.Next() {
		result = append(result, it.Interval())
	}
	err := it.Err()
	it.Release()
	return result, err
}
