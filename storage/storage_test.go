// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage_test

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/statehistory/backend"
	"github.com/bitmark-inc/statehistory/fault"
	"github.com/bitmark-inc/statehistory/interval"
	"github.com/bitmark-inc/statehistory/statevalue"
	"github.com/bitmark-inc/statehistory/storage"
)

var _ backend.Backend = (*storage.Store)(nil)

type insertItem struct {
	start int64
	end   int64
	quark int
	value statevalue.Value
}

var sampleInserts = []insertItem{
	{-100, -51, 0, statevalue.Null()},
	{-50, 19, 0, statevalue.String("RUNNING")},
	{20, 30, 0, statevalue.String("BLOCKED")},
	{-100, 14, 2, statevalue.Double(0.5)},
	{15, 30, 2, statevalue.Custom(9, []byte{1, 2, 3})},
	{-100, 30, 256, statevalue.Long(-1)},
}

func populate(t *testing.T, s *storage.Store) {
	for _, item := range sampleInserts {
		err := s.InsertPastState(item.start, item.end, item.quark, item.value)
		assert.Nil(t, err, "insert [%d, %d] quark: %d", item.start, item.end, item.quark)
	}
}

func TestInsertAndSingularQuery(t *testing.T) {
	s := setup(t, -100)
	defer s.Dispose()

	populate(t, s)
	assert.Equal(t, int64(-100), s.StartTime(), "start time")
	assert.Equal(t, int64(30), s.EndTime(), "end time")
	assert.Equal(t, uint64(len(sampleInserts)), s.Statistics().Inserts, "inserts")

	items := []struct {
		t     int64
		quark int
		index int
	}{
		{-100, 0, 0},
		{-51, 0, 0},
		{-50, 0, 1},
		{0, 0, 1},
		{19, 0, 1},
		{30, 0, 2},
		{14, 2, 3},
		{15, 2, 4},
		{0, 256, 5},
	}
	for _, item := range items {
		iv, err := s.DoSingularQuery(item.t, item.quark)
		assert.Nil(t, err, "query: %d quark: %d", item.t, item.quark)
		e := sampleInserts[item.index]
		if assert.NotNil(t, iv, "query: %d quark: %d", item.t, item.quark) {
			assert.Equal(t, e.start, iv.Start, "start at: %d", item.t)
			assert.Equal(t, e.end, iv.End, "end at: %d", item.t)
			assert.Equal(t, e.quark, iv.Quark, "quark at: %d", item.t)
			assert.True(t, e.value.Equal(iv.Value), "value at: %d: %s", item.t, iv.Value)
		}
	}

	iv, err := s.DoSingularQuery(31, 0)
	assert.Nil(t, err, "query after end")
	assert.Nil(t, iv, "found after end")

	iv, err = s.DoSingularQuery(0, 1)
	assert.Nil(t, err, "query of empty quark")
	assert.Nil(t, iv, "found in empty quark")

	_, err = s.DoSingularQuery(-101, 0)
	assert.True(t, errors.Is(err, fault.ErrTimeBeforeStart), "before start: %v", err)
}

func TestCache(t *testing.T) {
	s := setup(t, 0)
	defer s.Dispose()

	assert.Nil(t, s.InsertPastState(0, 99, 3, statevalue.Int(7)), "insert")

	for i := int64(0); i < 10; i += 1 {
		iv, err := s.DoSingularQuery(i*10, 3)
		assert.Nil(t, err, "query: %d", i)
		assert.NotNil(t, iv, "query: %d", i)
	}
	stats := s.Statistics()
	assert.Equal(t, uint64(10), stats.Lookups, "lookups")
	assert.Equal(t, uint64(9), stats.CacheHits, "cache hits")
}

func TestFullQuery(t *testing.T) {
	s := setup(t, -100)
	defer s.Dispose()

	populate(t, s)

	slots := make([]*interval.Interval, 4)
	existing := &interval.Interval{Start: -100, End: 100, Quark: 1, Value: statevalue.Int(1)}
	slots[1] = existing

	assert.Nil(t, s.DoQuery(slots, 17), "full query")
	if assert.NotNil(t, slots[0], "slot 0") {
		assert.Equal(t, int64(-50), slots[0].Start, "slot 0 start")
	}
	assert.Equal(t, existing, slots[1], "slot 1 overwritten")
	if assert.NotNil(t, slots[2], "slot 2") {
		assert.Equal(t, int64(15), slots[2].Start, "slot 2 start")
	}
	assert.Nil(t, slots[3], "slot 3")
}

func TestQuery2D(t *testing.T) {
	s := setup(t, -100)
	defer s.Dispose()

	populate(t, s)

	cond, err := interval.ContinuousRange(0, 16)
	assert.Nil(t, err, "condition")

	it, err := s.Query2D(interval.NewQuarkSet(256, 0, 1, 2), cond)
	assert.Nil(t, err, "query")
	result, err := interval.Collect(it)
	assert.Nil(t, err, "collect")

	expected := []int{1, 3, 4, 5}
	if assert.Equal(t, len(expected), len(result), "result: %v", result) {
		for i, index := range expected {
			e := sampleInserts[index]
			assert.Equal(t, e.quark, result[i].Quark, "%d: quark", i)
			assert.Equal(t, e.start, result[i].Start, "%d: start", i)
			assert.Equal(t, e.end, result[i].End, "%d: end", i)
		}
	}

	discrete, err := interval.DiscreteTimes(-60, 25)
	assert.Nil(t, err, "discrete condition")
	it, err = s.Query2D(interval.NewQuarkSet(0), discrete)
	assert.Nil(t, err, "discrete query")
	result, err = interval.Collect(it)
	assert.Nil(t, err, "discrete collect")
	if assert.Equal(t, 2, len(result), "discrete result: %v", result) {
		assert.Equal(t, int64(-100), result[0].Start, "first")
		assert.Equal(t, int64(20), result[1].Start, "second")
	}
}

func TestFinishAndReopen(t *testing.T) {
	s := setup(t, -100)
	populate(t, s)

	assert.Nil(t, s.FinishedBuilding(40), "finish")
	assert.True(t, s.IsFinished(), "not finished")

	err := s.InsertPastState(31, 40, 0, statevalue.Null())
	assert.Equal(t, fault.ErrHistoryClosed, err, "insert after finish")

	name, offset := s.AttributeTreeWriter()
	assert.Equal(t, int64(0), offset, "tree offset")
	assert.Equal(t, "attribute.tree", filepath.Base(name), "tree file")
	err = ioutil.WriteFile(name, []byte("tree"), 0o600)
	assert.Nil(t, err, "write tree file")
	s.Dispose()

	_, err = s.DoSingularQuery(0, 0)
	assert.Equal(t, fault.ErrDatabaseIsNotSet, err, "query after dispose")

	// start time and ssid are taken from the store
	r, err := storage.Open(configuration(), "other", 0, storage.ReadOnly, logger.New(logCategory))
	if !assert.Nil(t, err, "reopen") {
		return
	}
	defer r.Dispose()

	assert.Equal(t, "storage-test", r.SSID(), "ssid")
	assert.Equal(t, int64(-100), r.StartTime(), "start time")
	assert.Equal(t, int64(40), r.EndTime(), "end time")
	assert.True(t, r.IsFinished(), "reopened store not finished")

	name, _ = r.AttributeTreeReader()
	assert.Equal(t, "attribute.tree", filepath.Base(name), "tree reader")
	name, _ = r.AttributeTreeWriter()
	assert.Equal(t, "", name, "read only store accepts a tree")

	iv, err := r.DoSingularQuery(25, 0)
	assert.Nil(t, err, "query reopened")
	if assert.NotNil(t, iv, "reopened interval") {
		assert.True(t, statevalue.String("BLOCKED").Equal(iv.Value), "reopened value")
	}
}

func TestUnfinishedIsDropped(t *testing.T) {
	s := setup(t, 0)
	assert.Nil(t, s.InsertPastState(0, 10, 0, statevalue.Int(1)), "insert")
	s.Dispose()

	r, err := storage.Open(configuration(), "storage-test", 5, storage.ReadWrite, logger.New(logCategory))
	if !assert.Nil(t, err, "reopen") {
		return
	}
	defer r.Dispose()

	assert.Equal(t, int64(5), r.StartTime(), "start time of new history")
	iv, err := r.DoSingularQuery(7, 0)
	assert.Nil(t, err, "query")
	assert.Nil(t, iv, "unfinished interval survived")
}

func TestOpenErrors(t *testing.T) {
	_, err := storage.Open(storage.Configuration{}, "x", 0, storage.ReadWrite, logger.New(logCategory))
	assert.True(t, errors.Is(err, fault.ErrMissingParameters), "missing directory: %v", err)

	_, err = storage.Open(configuration(), "x", 0, storage.ReadWrite, nil)
	assert.Equal(t, fault.ErrInvalidLoggerChannel, err, "missing logger")

	_, err = storage.Open(storage.Configuration{Directory: testingDirName + "/absent"}, "x", 0, storage.ReadOnly, logger.New(logCategory))
	assert.NotNil(t, err, "read only open of missing store")
}

func TestRemoveFiles(t *testing.T) {
	s := setup(t, 0)
	err := s.InsertPastState(0, 5, 0, statevalue.Null())
	assert.Nil(t, err, "insert")

	assert.Nil(t, s.RemoveFiles(), "remove")
	_, err = os.Stat(historyDirName)
	assert.True(t, os.IsNotExist(err), "directory still exists: %v", err)

	err = s.InsertPastState(6, 7, 0, statevalue.Null())
	assert.Equal(t, fault.ErrDatabaseIsNotSet, err, "insert after remove")
}
