// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/bitmark-inc/statehistory/fault"
	"github.com/bitmark-inc/statehistory/interval"
)

// Query2D - stored intervals intersecting the condition, one quark at
// a time, ordered by quark then time
//
// each quark is read only when the previous one is exhausted, no
// database iterator is held between calls
func (s *Store) Query2D(quarks interval.QuarkSet, condition interval.TimeCondition) (interval.Iterator, error) {
	s.RLock()
	defer s.RUnlock()

	if nil == s.database {
		return nil, fault.ErrDatabaseIsNotSet
	}
	return &quarkScan{
		store:     s,
		quarks:    quarks.Quarks(),
		condition: condition,
		index:     -1,
	}, nil
}

type quarkScan struct {
	store     *Store
	quarks    []int
	condition interval.TimeCondition
	pending   []interval.Interval
	index     int
	err       error
}

func (q *quarkScan) Next() bool {
	if nil != q.err {
		return false
	}
	q.index += 1
	for q.index >= len(q.pending) {
		if 0 == len(q.quarks) {
			return false
		}
		quark := q.quarks[0]
		q.quarks = q.quarks[1:]

		q.pending, q.err = q.store.scan(quark, q.condition)
		q.index = 0
		if nil != q.err {
			q.pending = nil
			return false
		}
	}
	return true
}

func (q *quarkScan) Interval() interval.Interval {
	return q.pending[q.index]
}

func (q *quarkScan) Err() error {
	return q.err
}

func (q *quarkScan) Release() {
	q.quarks = nil
	q.pending = nil
}

// internal: intervals of one quark that meet the condition
func (s *Store) scan(quark int, condition interval.TimeCondition) ([]interval.Interval, error) {
	if quark < 0 {
		return nil, nil
	}

	s.RLock()
	defer s.RUnlock()

	if nil == s.database {
		return nil, fault.ErrDatabaseIsNotSet
	}

	quarkRange := &ldb_util.Range{
		Start: intervalKey(intervalPrefix, quark, condition.Min()),
		Limit: quarkLimit(intervalPrefix, quark),
	}
	iter := s.database.NewIterator(quarkRange, nil)

	result := make([]interval.Interval, 0)
	var err error
iterating:
	for iter.Next() {
		iv, e := decodeInterval(iter.Key(), iter.Value())
		if nil != e {
			err = e
			break iterating
		}
		if iv.Start > condition.Max() {
			break iterating
		}
		if condition.Intersects(iv.Start, iv.End) {
			result = append(result, iv)
		}
	}
	iter.Release()
	if nil == err {
		err = iter.Error()
	}
	return result, err
}
