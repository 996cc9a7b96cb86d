// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package statesystem_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/statehistory/attribute"
	"github.com/bitmark-inc/statehistory/backend/mocks"
	"github.com/bitmark-inc/statehistory/fault"
	"github.com/bitmark-inc/statehistory/interval"
	"github.com/bitmark-inc/statehistory/statesystem"
	"github.com/bitmark-inc/statehistory/statevalue"
)

func TestNewErrors(t *testing.T) {
	_, err := statesystem.New(nil, logger.New(logCategory))
	assert.Equal(t, fault.ErrMissingParameters, err, "nil backend")

	ctl := gomock.NewController(t)
	defer ctl.Finish()
	b := mocks.NewMockBackend(ctl)

	_, err = statesystem.New(b, nil)
	assert.Equal(t, fault.ErrInvalidLoggerChannel, err, "nil logger")
}

// the thread scenario: RUNNING at 10, BLOCKED at 20, closed at 30
func TestThreadScenario(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	running := statevalue.String("RUNNING")
	blocked := statevalue.String("BLOCKED")

	b := mocks.NewMockBackend(ctl)
	b.EXPECT().SSID().Return("mock").AnyTimes()
	b.EXPECT().StartTime().Return(int64(0)).AnyTimes()
	b.EXPECT().EndTime().Return(int64(0)).AnyTimes()

	gomock.InOrder(
		b.EXPECT().InsertPastState(int64(0), int64(9), 1, statevalue.Null()).Return(nil),
		b.EXPECT().InsertPastState(int64(10), int64(19), 1, running).Return(nil),
		b.EXPECT().InsertPastState(int64(20), int64(30), 1, blocked).Return(nil),
	)
	b.EXPECT().InsertPastState(int64(0), int64(30), 0, statevalue.Null()).Return(nil)
	b.EXPECT().FinishedBuilding(int64(30)).Return(nil)
	b.EXPECT().AttributeTreeWriter().Return("", int64(0))

	s, err := statesystem.New(b, logger.New(logCategory))
	if !assert.Nil(t, err, "new") {
		return
	}

	q, err := s.QuarkAbsoluteAndAdd("Threads", "100")
	assert.Nil(t, err, "create")
	assert.Equal(t, 1, q, "quark")

	assert.Nil(t, s.Modify(10, running, q), "running")

	v, err := s.QueryOngoing(q)
	assert.Nil(t, err, "ongoing")
	assert.True(t, running.Equal(v), "ongoing value: %s", v)
	start, err := s.QueryOngoingStart(q)
	assert.Nil(t, err, "ongoing start")
	assert.Equal(t, int64(10), start, "ongoing start")

	assert.Nil(t, s.Modify(20, blocked, q), "blocked")
	assert.False(t, s.WaitUntilBuiltTimeout(time.Millisecond), "built before close")

	assert.Nil(t, s.CloseHistory(30), "close")
	assert.True(t, s.WaitUntilBuiltTimeout(time.Second), "not built after close")
	assert.False(t, s.IsCancelled(), "cancelled")

	err = s.CloseHistory(40)
	assert.Equal(t, fault.ErrHistoryClosed, err, "second close")
}

func TestQuarkStability(t *testing.T) {
	s, _ := setupMemory(t)
	defer s.Dispose()

	paths := [][]string{
		{"Threads", "100", "Status"},
		{"Threads", "200"},
		{"CPUs", "0"},
		{"Threads", "100"},
	}
	first := make([]int, len(paths))
	for i, path := range paths {
		q, err := s.QuarkAbsoluteAndAdd(path...)
		assert.Nil(t, err, "create: %v", path)
		first[i] = q
	}

	// Threads=0 Threads/100=1 Threads/100/Status=2 Threads/200=3 CPUs=4 CPUs/0=5
	assert.Equal(t, []int{2, 3, 5, 1}, first, "quarks")
	assert.Equal(t, 6, s.NumAttributes(), "contiguous count")

	for i, path := range paths {
		q, err := s.QuarkAbsolute(path...)
		assert.Nil(t, err, "resolve: %v", path)
		assert.Equal(t, first[i], q, "resolve: %v", path)

		q, err = s.QuarkAbsoluteAndAdd(path...)
		assert.Nil(t, err, "re-create: %v", path)
		assert.Equal(t, first[i], q, "re-create: %v", path)
	}

	_, err := s.QuarkAbsolute("Threads", "300")
	assert.True(t, errors.Is(err, fault.ErrAttributeNotFound), "missing: %v", err)

	q, err := s.OptQuarkAbsolute("Threads", "300")
	assert.Nil(t, err, "optional")
	assert.Equal(t, attribute.Invalid, q, "optional missing")

	q, err = s.QuarkRelative(0, "200")
	assert.Nil(t, err, "relative")
	assert.Equal(t, 3, q, "relative")

	q, err = s.OptQuarkRelative(0, "300")
	assert.Nil(t, err, "optional relative")
	assert.Equal(t, attribute.Invalid, q, "optional relative missing")

	q, err = s.QuarkRelativeAndAdd(4, "1")
	assert.Nil(t, err, "relative add")
	assert.Equal(t, 6, q, "relative add")
}

func TestAttributeNavigation(t *testing.T) {
	s, _ := setupMemory(t)
	defer s.Dispose()

	for _, path := range [][]string{
		{"Threads", "100", "Status"},
		{"Threads", "200", "Status"},
		{"Threads", "300"},
		{"CPUs", "0"},
	} {
		_, err := s.QuarkAbsoluteAndAdd(path...)
		assert.Nil(t, err, "create: %v", path)
	}
	// Threads=0 100=1 100/Status=2 200=3 200/Status=4 300=5 CPUs=6 CPUs/0=7

	quarks, err := s.Quarks("Threads", "*")
	assert.Nil(t, err, "pattern")
	assert.Equal(t, []int{1, 3, 5}, quarks, "threads")

	quarks, err = s.Quarks("Threads", "*", "Status")
	assert.Nil(t, err, "status pattern")
	assert.Equal(t, []int{2, 4}, quarks, "status")

	quarks, err = s.QuarksRelative(1, "..", "..", "CPUs", "*")
	assert.Nil(t, err, "relative pattern")
	assert.Equal(t, []int{7}, quarks, "cpus")

	quarks, err = s.SubAttributes(0, true)
	assert.Nil(t, err, "recursive")
	assert.Equal(t, []int{1, 2, 3, 4, 5}, quarks, "recursive children")

	quarks, err = s.SubAttributesMatching(0, "^[12]00$")
	assert.Nil(t, err, "matching")
	assert.Equal(t, []int{1, 3}, quarks, "matching children")

	_, err = s.SubAttributesMatching(0, "[")
	assert.True(t, errors.Is(err, fault.ErrInvalidPath), "bad expression: %v", err)

	parent, err := s.ParentAttribute(2)
	assert.Nil(t, err, "parent")
	assert.Equal(t, 1, parent, "parent")

	parent, err = s.ParentAttribute(0)
	assert.Nil(t, err, "top level parent")
	assert.Equal(t, attribute.Root, parent, "top level parent")

	name, err := s.AttributeName(4)
	assert.Nil(t, err, "name")
	assert.Equal(t, "Status", name, "name")

	path, err := s.FullAttributePath(4)
	assert.Nil(t, err, "path")
	assert.Equal(t, "Threads/200/Status", path, "path")

	array, err := s.FullAttributePathArray(4)
	assert.Nil(t, err, "path array")
	assert.Equal(t, []string{"Threads", "200", "Status"}, array, "path array")

	_, err = s.AttributeName(99)
	assert.True(t, errors.Is(err, fault.ErrQuarkOutOfRange), "out of range: %v", err)
}

// {A, null, A, B} fails exactly once, at B
func TestTypeConsistency(t *testing.T) {
	s, _ := setupMemory(t)
	defer s.Dispose()

	q, _ := s.QuarkAbsoluteAndAdd("value")

	writes := []statevalue.Value{
		statevalue.Long(1),
		statevalue.Null(),
		statevalue.Long(2),
		statevalue.Double(3),
	}
	failures := 0
	for i, v := range writes {
		err := s.Modify(int64(i+1), v, q)
		if nil != err {
			failures += 1
			assert.Equal(t, len(writes)-1, i, "failed at: %d", i)
			assert.True(t, errors.Is(err, fault.ErrValueTypeMismatch), "error: %v", err)
		}
	}
	assert.Equal(t, 1, failures, "failures")
}

func TestModifyErrors(t *testing.T) {
	s, _ := setupMemory(t)
	defer s.Dispose()

	q, _ := s.QuarkAbsoluteAndAdd("value")

	err := s.Modify(5, statevalue.Int(1), q+1)
	assert.True(t, errors.Is(err, fault.ErrQuarkOutOfRange), "quark: %v", err)

	err = s.Modify(-1, statevalue.Int(1), q)
	assert.True(t, errors.Is(err, fault.ErrTimeBeforeStart), "before start: %v", err)

	assert.Nil(t, s.Modify(10, statevalue.Int(1), q), "valid")
	err = s.Modify(5, statevalue.Int(2), q)
	assert.True(t, fault.IsErrRange(err), "backwards: %v", err)
}

func TestStackBalance(t *testing.T) {
	s, _ := setupMemory(t)
	defer s.Dispose()

	q, _ := s.QuarkAbsoluteAndAdd("Threads", "100", "CallStack")

	v, err := s.Pop(1, q)
	assert.Nil(t, err, "pop of empty stack")
	assert.True(t, v.IsNull(), "pop of empty stack value")

	assert.Nil(t, s.Push(2, statevalue.String("x"), q), "push x")
	assert.Nil(t, s.Push(3, statevalue.String("y"), q), "push y")

	depth, _ := s.QueryOngoing(q)
	assert.True(t, statevalue.Int(2).Equal(depth), "depth: %s", depth)

	top, err := s.QuarkRelative(q, "2")
	assert.Nil(t, err, "top of stack attribute")
	v, _ = s.QueryOngoing(top)
	assert.True(t, statevalue.String("y").Equal(v), "top value: %s", v)

	v, err = s.Pop(4, q)
	assert.Nil(t, err, "pop y")
	assert.True(t, statevalue.String("y").Equal(v), "popped: %s", v)

	v, err = s.Pop(5, q)
	assert.Nil(t, err, "pop x")
	assert.True(t, statevalue.String("x").Equal(v), "popped: %s", v)

	depth, _ = s.QueryOngoing(q)
	assert.True(t, depth.IsNull(), "depth after pops: %s", depth)

	iv, err := s.QuerySingle(3, top)
	assert.Nil(t, err, "history of popped attribute")
	assert.Equal(t, int64(3), iv.Start, "pushed at")
	assert.Equal(t, int64(3), iv.End, "popped after")
	assert.True(t, statevalue.String("y").Equal(iv.Value), "history value: %s", iv.Value)

	v, err = s.Pop(6, q)
	assert.Nil(t, err, "pop of emptied stack")
	assert.True(t, v.IsNull(), "pop of emptied stack value")
}

func TestStackErrors(t *testing.T) {
	s, _ := setupMemory(t, statesystem.WithMaxStackDepth(2))
	defer s.Dispose()

	q, _ := s.QuarkAbsoluteAndAdd("stack")

	assert.Nil(t, s.Push(1, statevalue.Int(1), q), "push 1")
	assert.Nil(t, s.Push(2, statevalue.Int(2), q), "push 2")
	err := s.Push(3, statevalue.Int(3), q)
	assert.True(t, errors.Is(err, fault.ErrStackLimitExceeded), "limit: %v", err)
	assert.True(t, fault.IsErrLimit(err), "limit class: %v", err)

	r, _ := s.QuarkAbsoluteAndAdd("not-a-stack")
	assert.Nil(t, s.Modify(1, statevalue.String("text"), r), "text")
	err = s.Push(2, statevalue.Int(1), r)
	assert.True(t, errors.Is(err, fault.ErrValueTypeMismatch), "push on text: %v", err)
	_, err = s.Pop(2, r)
	assert.True(t, errors.Is(err, fault.ErrValueTypeMismatch), "pop on text: %v", err)

	// a stack depth must be positive
	for i, depth := range []int32{0, -1} {
		d, _ := s.QuarkAbsoluteAndAdd("bad-depth", fmt.Sprintf("%d", i))
		assert.Nil(t, s.Modify(1, statevalue.Int(depth), d), "depth: %d", depth)

		v, err := s.Pop(2, d)
		assert.True(t, errors.Is(err, fault.ErrValueTypeMismatch), "pop at depth: %d: %v", depth, err)
		assert.True(t, v.IsNull(), "pop at depth: %d returned: %v", depth, v)

		err = s.Push(2, statevalue.Int(1), d)
		assert.True(t, errors.Is(err, fault.ErrValueTypeMismatch), "push at depth: %d: %v", depth, err)

		ongoing, _ := s.QueryOngoing(d)
		assert.True(t, statevalue.Int(depth).Equal(ongoing), "depth: %d changed to: %v", depth, ongoing)
	}
}

func TestRemove(t *testing.T) {
	s, _ := setupMemory(t)
	defer s.Dispose()

	base, _ := s.QuarkAbsoluteAndAdd("Threads", "100")
	status, _ := s.QuarkAbsoluteAndAdd("Threads", "100", "Status")
	deep, _ := s.QuarkAbsoluteAndAdd("Threads", "100", "Status", "Detail")

	assert.Nil(t, s.Modify(1, statevalue.Int(100), base), "base")
	assert.Nil(t, s.Modify(1, statevalue.String("RUN"), status), "status")
	assert.Nil(t, s.Modify(1, statevalue.Long(7), deep), "deep")

	assert.Nil(t, s.Remove(5, base), "remove")

	for _, q := range []int{base, status, deep} {
		v, err := s.QueryOngoing(q)
		assert.Nil(t, err, "ongoing: %d", q)
		assert.True(t, v.IsNull(), "quark: %d not removed: %s", q, v)

		start, _ := s.QueryOngoingStart(q)
		assert.Equal(t, int64(5), start, "quark: %d removal time", q)
	}
}

func TestUpdateAndReplaceOngoing(t *testing.T) {
	s, _ := setupMemory(t)
	defer s.Dispose()

	a, _ := s.QuarkAbsoluteAndAdd("a")
	b, _ := s.QuarkAbsoluteAndAdd("b")

	assert.Nil(t, s.Modify(5, statevalue.Int(1), a), "modify")
	assert.Nil(t, s.UpdateOngoingState(statevalue.Int(9), a), "update")

	v, _ := s.QueryOngoing(a)
	assert.True(t, statevalue.Int(9).Equal(v), "updated value: %s", v)
	start, _ := s.QueryOngoingStart(a)
	assert.Equal(t, int64(5), start, "update moved the start")

	err := s.UpdateOngoingState(statevalue.String("x"), a)
	assert.True(t, errors.Is(err, fault.ErrValueTypeMismatch), "update type: %v", err)

	err = s.ReplaceOngoingState([]interval.Interval{{Start: 1, End: 2, Quark: a}})
	assert.True(t, errors.Is(err, fault.ErrInvalidValue), "short replacement: %v", err)

	err = s.ReplaceOngoingState([]interval.Interval{
		{Start: 7, End: 7, Quark: a, Value: statevalue.String("seek")},
		{Start: 3, End: 3, Quark: b, Value: statevalue.Null()},
	})
	assert.Nil(t, err, "replace")

	values, err := s.QueryOngoingState()
	assert.Nil(t, err, "ongoing state")
	if assert.Equal(t, 2, len(values), "values") {
		assert.True(t, statevalue.String("seek").Equal(values[0]), "replaced value: %s", values[0])
		assert.True(t, values[1].IsNull(), "replaced null: %s", values[1])
	}
}

// every time in range has exactly one interval per attribute
func TestFullStateCompleteness(t *testing.T) {
	s, b := setupMemory(t)
	defer s.Dispose()

	for i := 0; i < 200; i += 1 {
		q, err := s.QuarkAbsoluteAndAdd("CPUs", fmt.Sprintf("%d", i%7), "Load")
		if !assert.Nil(t, err, "create") {
			return
		}
		err = s.Modify(int64(i*3/2), statevalue.Long(int64(i%4)), q)
		assert.Nil(t, err, "modify: %d", i)
	}

	check := func(stage string) {
		end := s.CurrentEndTime()
		for tm := s.StartTime(); tm <= end; tm += 1 {
			full, err := s.QueryFull(tm)
			if !assert.Nil(t, err, "%s: full query at: %d", stage, tm) {
				return
			}
			if !assert.Equal(t, s.NumAttributes(), len(full), "%s: count at: %d", stage, tm) {
				return
			}
			for q, iv := range full {
				assert.Equal(t, q, iv.Quark, "%s: quark at: %d", stage, tm)
				assert.True(t, iv.Contains(tm), "%s: %s does not contain: %d", stage, iv, tm)

				single, err := s.QuerySingle(tm, q)
				assert.Nil(t, err, "%s: single query", stage)
				assert.Equal(t, iv.Start, single.Start, "%s: single start", stage)
			}
		}
	}

	check("building")
	latest := s.CurrentEndTime()

	_, err := s.QueryFull(latest + 1)
	assert.True(t, errors.Is(err, fault.ErrTimeAfterEnd), "after end: %v", err)
	_, err = s.QueryFull(-1)
	assert.True(t, errors.Is(err, fault.ErrTimeBeforeStart), "before start: %v", err)

	assert.Nil(t, s.CloseHistory(latest+10), "close")
	assert.Equal(t, latest+10, b.EndTime(), "backend end time")
	check("closed")

	values, err := s.QueryOngoingState()
	assert.Nil(t, err, "ongoing state after close")
	assert.Nil(t, values, "ongoing values after close")
}

func TestCloseHistoryClampsEnd(t *testing.T) {
	s, b := setupMemory(t)
	defer s.Dispose()

	q, _ := s.QuarkAbsoluteAndAdd("a")
	assert.Nil(t, s.Modify(50, statevalue.Int(1), q), "modify")

	assert.Nil(t, s.CloseHistory(10), "close")
	assert.Equal(t, int64(49), b.EndTime(), "end time")

	iv, err := s.QuerySingle(49, q)
	assert.Nil(t, err, "query at end")
	assert.True(t, iv.Value.IsNull(), "value at end")
}

func TestQuery2D(t *testing.T) {
	s, _ := setupMemory(t)
	defer s.Dispose()

	q, _ := s.QuarkAbsoluteAndAdd("Threads", "100")
	assert.Nil(t, s.Modify(10, statevalue.String("RUNNING"), q), "running")
	assert.Nil(t, s.Modify(20, statevalue.String("BLOCKED"), q), "blocked")

	it, err := s.Query2DRange(interval.NewQuarkSet(q), 0, 100)
	assert.Nil(t, err, "query")
	result, err := interval.Collect(it)
	assert.Nil(t, err, "collect")

	expected := []struct {
		start int64
		value statevalue.Value
	}{
		{20, statevalue.String("BLOCKED")}, // open interval first
		{0, statevalue.Null()},
		{10, statevalue.String("RUNNING")},
	}
	if assert.Equal(t, len(expected), len(result), "result: %v", result) {
		for i, e := range expected {
			assert.Equal(t, e.start, result[i].Start, "%d: start", i)
			assert.True(t, e.value.Equal(result[i].Value), "%d: value: %s", i, result[i].Value)
		}
	}

	it, err = s.Query2DRange(interval.NewQuarkSet(q), 12, 15)
	assert.Nil(t, err, "narrow query")
	result, err = interval.Collect(it)
	assert.Nil(t, err, "narrow collect")
	if assert.Equal(t, 1, len(result), "narrow result: %v", result) {
		assert.Equal(t, int64(10), result[0].Start, "narrow start")
	}

	_, err = s.Query2DRange(interval.NewQuarkSet(q), -1, 5)
	assert.True(t, errors.Is(err, fault.ErrTimeBeforeStart), "before start: %v", err)

	_, err = s.Query2DRange(interval.NewQuarkSet(q, q+1), 0, 5)
	assert.True(t, errors.Is(err, fault.ErrQuarkOutOfRange), "quark: %v", err)

	_, err = s.Query2DRange(interval.NewQuarkSet(q), 5, 0)
	assert.True(t, errors.Is(err, fault.ErrInvalidTimeRange), "inverted range: %v", err)
}

// one writer and several readers at the same time
func TestConcurrentReaders(t *testing.T) {
	s, _ := setupMemory(t)
	defer s.Dispose()

	const events = 2000

	var wg sync.WaitGroup
	done := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(done)
		for i := 0; i < events; i += 1 {
			q, err := s.QuarkAbsoluteAndAdd("Threads", fmt.Sprintf("%d", i%13))
			if nil != err {
				t.Errorf("create error: %s", err)
				return
			}
			err = s.Modify(int64(i), statevalue.Int(int32(i%5)), q)
			if nil != err {
				t.Errorf("modify error: %s", err)
				return
			}
		}
	}()

	for r := 0; r < 4; r += 1 {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			for n := 0; ; n += 1 {
				select {
				case <-done:
					return
				default:
				}
				end := s.CurrentEndTime()
				tm := (end * int64(n%10)) / 10
				full, err := s.QueryFull(tm)
				if nil != err {
					t.Errorf("reader: %d  time: %d  error: %s", r, tm, err)
					return
				}
				for _, iv := range full {
					if !iv.Contains(tm) {
						t.Errorf("reader: %d  time: %d  interval: %s", r, tm, iv)
						return
					}
				}
			}
		}(r)
	}
	wg.Wait()

	assert.Equal(t, uint64(events), s.Statistics().Modifications, "modifications")
}

func TestDispose(t *testing.T) {
	s, _ := setupMemory(t)

	q, _ := s.QuarkAbsoluteAndAdd("a")
	assert.Nil(t, s.Modify(3, statevalue.Int(1), q), "modify")

	waiting := make(chan struct{})
	go func() {
		s.WaitUntilBuilt()
		close(waiting)
	}()

	s.Dispose()
	s.Dispose()

	select {
	case <-waiting:
	case <-time.After(time.Second):
		t.Fatal("waiter still blocked after dispose")
	}

	assert.True(t, s.IsDisposed(), "not disposed")
	assert.True(t, s.IsCancelled(), "not cancelled")

	err := s.Modify(4, statevalue.Int(2), q)
	assert.Equal(t, fault.ErrSystemDisposed, err, "modify")
	_, err = s.QueryFull(3)
	assert.Equal(t, fault.ErrSystemDisposed, err, "full query")
	_, err = s.QuerySingle(3, q)
	assert.Equal(t, fault.ErrSystemDisposed, err, "single query")
	_, err = s.QuarkAbsolute("a")
	assert.Equal(t, fault.ErrSystemDisposed, err, "resolve")
	_, err = s.Query2DRange(interval.NewQuarkSet(q), 0, 3)
	assert.Equal(t, fault.ErrSystemDisposed, err, "2d query")
	err = s.CloseHistory(10)
	assert.Equal(t, fault.ErrSystemDisposed, err, "close")

	stats := s.Statistics()
	assert.True(t, stats.Disposed, "statistics disposed")
	assert.False(t, stats.Building, "statistics building")
}

func TestFailedCloseCancels(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	b := mocks.NewMockBackend(ctl)
	b.EXPECT().SSID().Return("mock").AnyTimes()
	b.EXPECT().StartTime().Return(int64(0)).AnyTimes()
	b.EXPECT().EndTime().Return(int64(0)).AnyTimes()
	b.EXPECT().InsertPastState(int64(0), int64(5), 0, statevalue.Null()).Return(nil)
	b.EXPECT().FinishedBuilding(int64(5)).Return(fault.ErrDatabaseIsNotSet)

	s, err := statesystem.New(b, logger.New(logCategory))
	if !assert.Nil(t, err, "new") {
		return
	}
	_, err = s.QuarkAbsoluteAndAdd("a")
	assert.Nil(t, err, "create")

	err = s.CloseHistory(5)
	assert.Equal(t, fault.ErrDatabaseIsNotSet, err, "close error")
	assert.True(t, s.WaitUntilBuiltTimeout(time.Second), "gate not released")
	assert.True(t, s.IsCancelled(), "not cancelled")
}
