// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/bitmark-inc/statehistory/backend"
	"github.com/bitmark-inc/statehistory/fault"
	"github.com/bitmark-inc/statehistory/interval"
	"github.com/bitmark-inc/statehistory/statevalue"
)

// Statistics - store activity counts
type Statistics struct {
	Inserts   uint64 `json:"inserts"`
	Lookups   uint64 `json:"lookups"`
	CacheHits uint64 `json:"cacheHits"`
}

// SSID - identifier
func (s *Store) SSID() string {
	return s.ssid
}

// StartTime - earliest valid time
func (s *Store) StartTime() int64 {
	return s.startTime
}

// EndTime - highest end time stored
func (s *Store) EndTime() int64 {
	return s.endTime.Int64()
}

// IsFinished - true once FinishedBuilding has been recorded
func (s *Store) IsFinished() bool {
	s.RLock()
	defer s.RUnlock()
	return s.finished
}

// Statistics - snapshot of the counters
func (s *Store) Statistics() Statistics {
	return Statistics{
		Inserts:   s.inserts.Uint64(),
		Lookups:   s.lookups.Uint64(),
		CacheHits: s.hits.Uint64(),
	}
}

// InsertPastState - write one closed interval
func (s *Store) InsertPastState(start int64, end int64, quark int, value statevalue.Value) error {
	if err := backend.CheckInsert(s, start, end); nil != err {
		return err
	}
	if quark < 0 {
		return fmt.Errorf("%s: quark: %d: %w", s.ssid, quark, fault.ErrQuarkOutOfRange)
	}

	s.RLock()
	defer s.RUnlock()

	if nil == s.database {
		return fault.ErrDatabaseIsNotSet
	}
	if s.finished {
		return fault.ErrHistoryClosed
	}

	err := s.database.Put(intervalKey(intervalPrefix, quark, end), intervalData(start, value), nil)
	if nil != err {
		return err
	}
	s.inserts.Increment()
	s.endTime.Raise(end)
	return nil
}

// FinishedBuilding - record the end time, after this the store is
// read only
func (s *Store) FinishedBuilding(endTime int64) error {
	s.Lock()
	defer s.Unlock()

	if nil == s.database {
		return fault.ErrDatabaseIsNotSet
	}

	s.endTime.Raise(endTime)
	end := make([]byte, timeSize)
	encodeTime(end, s.endTime.Int64())

	batch := new(leveldb.Batch)
	s.meta.batchPut(batch, endKey, end)
	err := s.database.Write(batch, &ldb_opt.WriteOptions{Sync: true})
	if nil != err {
		return err
	}
	s.finished = true
	s.log.Infof("finished: %s  end: %d  intervals: %d", s.ssid, s.endTime.Int64(), s.inserts.Uint64())
	return nil
}

// internal: must hold the read lock
func (s *Store) find(iter iterator.Iterator, t int64, quark int) (*interval.Interval, error) {
	s.lookups.Increment()
	if iv, ok := s.cache.get(t, quark); ok {
		s.hits.Increment()
		return iv, nil
	}

	if !iter.Seek(intervalKey(intervalPrefix, quark, t)) {
		return nil, iter.Error()
	}
	key := iter.Key()
	if !bytes.HasPrefix(key, quarkPrefix(intervalPrefix, quark)) {
		return nil, nil
	}
	iv, err := decodeInterval(key, iter.Value())
	if nil != err {
		return nil, err
	}
	if iv.Start > t {
		return nil, nil
	}
	s.cache.set(iv)
	return &iv, nil
}

// DoQuery - fill empty slots from the stored intervals
func (s *Store) DoQuery(slots []*interval.Interval, t int64) error {
	if err := backend.CheckQuery(s, t); nil != err {
		return err
	}

	s.RLock()
	defer s.RUnlock()

	if nil == s.database {
		return fault.ErrDatabaseIsNotSet
	}

	iter := s.database.NewIterator(s.intervals.maxRange(), nil)
	defer iter.Release()

	for quark, slot := range slots {
		if nil != slot {
			continue
		}
		iv, err := s.find(iter, t, quark)
		if nil != err {
			return err
		}
		slots[quark] = iv
	}
	return iter.Error()
}

// DoSingularQuery - the stored interval of one quark containing t
func (s *Store) DoSingularQuery(t int64, quark int) (*interval.Interval, error) {
	if err := backend.CheckQuery(s, t); nil != err {
		return nil, err
	}
	if quark < 0 {
		return nil, fmt.Errorf("%s: quark: %d: %w", s.ssid, quark, fault.ErrQuarkOutOfRange)
	}

	s.RLock()
	defer s.RUnlock()

	if nil == s.database {
		return nil, fault.ErrDatabaseIsNotSet
	}

	iter := s.database.NewIterator(s.intervals.maxRange(), nil)
	defer iter.Release()

	return s.find(iter, t, quark)
}

// AttributeTreeReader - the tree file if one was written
func (s *Store) AttributeTreeReader() (string, int64) {
	name := filepath.Join(s.directory, attributeTreeName)
	if _, err := os.Stat(name); nil != err {
		return "", 0
	}
	return name, 0
}

// AttributeTreeWriter - the tree is kept beside the database
func (s *Store) AttributeTreeWriter() (string, int64) {
	if s.readOnly {
		return "", 0
	}
	return filepath.Join(s.directory, attributeTreeName), 0
}

// RemoveFiles - close and erase the whole directory
func (s *Store) RemoveFiles() error {
	s.Lock()
	defer s.Unlock()

	s.dbClose()
	s.cache.clear()
	s.log.Warnf("remove: %s", s.directory)
	return os.RemoveAll(s.directory)
}

// Dispose - close the database
func (s *Store) Dispose() {
	s.Lock()
	defer s.Unlock()

	s.dbClose()
	s.cache.clear()
	s.log.Info("closed")
	s.log.Flush()
}
