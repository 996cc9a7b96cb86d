// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package statesystem - record and query the state history of a
// hierarchy of attributes
//
// A single writer streams state changes in roughly increasing time
// order while any number of readers query the history.  Values that
// are still in effect live in the transient state; every value that
// has been replaced is stored as a closed interval in the backend.
// Queries merge both sources.
package statesystem

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/statehistory/attribute"
	"github.com/bitmark-inc/statehistory/backend"
	"github.com/bitmark-inc/statehistory/counter"
	"github.com/bitmark-inc/statehistory/fault"
	"github.com/bitmark-inc/statehistory/transient"
)

// DefaultMaxStackDepth - limit for Push unless overridden
const DefaultMaxStackDepth = 100000

// Option - adjust a system at construction
type Option func(*System)

// WithMaxStackDepth - limit the depth of every attribute stack
func WithMaxStackDepth(depth int) Option {
	return func(s *System) {
		if depth > 0 {
			s.maxStackDepth = depth
		}
	}
}

// System - an attribute tree and its transient state over a backend
type System struct {
	log           *logger.L
	backend       backend.Backend
	tree          *attribute.Tree
	transient     *transient.State
	maxStackDepth int

	built     chan struct{}
	buildOnce sync.Once
	disposed  int32
	cancelled int32

	modifications counter.Counter
	queries       counter.Counter
}

// Statistics - summary of a system
type Statistics struct {
	SSID          string `json:"ssid"`
	Attributes    int    `json:"attributes"`
	StartTime     int64  `json:"startTime"`
	EndTime       int64  `json:"endTime"`
	Modifications uint64 `json:"modifications"`
	Queries       uint64 `json:"queries"`
	Building      bool   `json:"building"`
	Cancelled     bool   `json:"cancelled"`
	Disposed      bool   `json:"disposed"`
}

// internal: common construction
func create(b backend.Backend, log *logger.L, options []Option) (*System, error) {
	if nil == log {
		return nil, fault.ErrInvalidLoggerChannel
	}
	if nil == b {
		return nil, fault.ErrMissingParameters
	}

	s := &System{
		log:           log,
		backend:       b,
		transient:     transient.New(b, logger.New("transient")),
		maxStackDepth: DefaultMaxStackDepth,
		built:         make(chan struct{}),
	}
	for _, option := range options {
		option(s)
	}

	// runs inside the tree's write lock so rows and quarks stay in step
	s.tree = attribute.New(func(quark int) {
		s.transient.EnsureRow()
		s.log.Debugf("create quark: %d", quark)
	})
	return s, nil
}

// New - a system ready to build a new history into the backend
func New(b backend.Backend, log *logger.L, options ...Option) (*System, error) {
	s, err := create(b, log, options)
	if nil != err {
		return nil, err
	}
	s.log.Infof("new history: %s  start: %d", b.SSID(), b.StartTime())
	return s, nil
}

// Open - a system over a backend that already holds a finished
// history, the attribute tree is read from the backend
func Open(b backend.Backend, log *logger.L, options ...Option) (*System, error) {
	s, err := create(b, log, options)
	if nil != err {
		return nil, err
	}

	name, position := b.AttributeTreeReader()
	if "" == name {
		return nil, fault.ErrBackendDeclined
	}

	s.transient.Deactivate()
	err = s.tree.ReadFile(name, position)
	if nil != err {
		if fault.IsErrRecord(err) {
			fault.Criticalf("attribute tree: %s corrupted: error: %s", name, err)
		}
		s.log.Errorf("read attribute tree: %s  error: %s", name, err)
		return nil, err
	}
	s.release()

	s.log.Infof("open history: %s  attributes: %d  start: %d  end: %d", b.SSID(), s.tree.Count(), b.StartTime(), b.EndTime())
	return s, nil
}

// internal: fail fast after dispose
func (s *System) check() error {
	if 0 != atomic.LoadInt32(&s.disposed) {
		return fault.ErrSystemDisposed
	}
	return nil
}

// internal: open the build gate
func (s *System) release() {
	s.buildOnce.Do(func() {
		close(s.built)
	})
}

// SSID - backend identifier
func (s *System) SSID() string {
	return s.backend.SSID()
}

// StartTime - earliest valid time
func (s *System) StartTime() int64 {
	return s.backend.StartTime()
}

// CurrentEndTime - latest time known to the backend or, while
// building, to the transient state
func (s *System) CurrentEndTime() int64 {
	end := s.backend.EndTime()
	if s.transient.IsActive() {
		if latest := s.transient.LatestTime(); latest > end {
			end = latest
		}
	}
	return end
}

// CloseHistory - flush the transient state, finish the backend, save
// the attribute tree and release everyone waiting for the build
//
// endTime is raised to the backend's end time if it is lower
func (s *System) CloseHistory(endTime int64) error {
	if err := s.check(); nil != err {
		return err
	}
	if !s.transient.IsActive() {
		return fault.ErrHistoryClosed
	}

	if end := s.backend.EndTime(); endTime < end {
		endTime = end
	}

	err := s.transient.Close(endTime)
	if nil != err {
		s.cancel()
		return err
	}

	err = s.backend.FinishedBuilding(endTime)
	if nil != err {
		s.log.Criticalf("%s: finish building error: %s", s.backend.SSID(), err)
		s.cancel()
		return err
	}

	name, position := s.backend.AttributeTreeWriter()
	if "" != name {
		err = s.tree.WriteFile(name, position)
		if nil != err {
			s.log.Criticalf("%s: write attribute tree: %s  error: %s", s.backend.SSID(), name, err)
			s.cancel()
			return err
		}
	}

	s.release()
	s.log.Infof("closed history: %s  end: %d  attributes: %d", s.backend.SSID(), endTime, s.tree.Count())
	return nil
}

// internal: abandon the build
func (s *System) cancel() {
	atomic.StoreInt32(&s.cancelled, 1)
	s.release()
}

// WaitUntilBuilt - block until the history is closed, disposed or
// cancelled
func (s *System) WaitUntilBuilt() {
	<-s.built
}

// WaitUntilBuiltTimeout - like WaitUntilBuilt but give up after
// timeout, returns true if the gate was released in time
func (s *System) WaitUntilBuiltTimeout(timeout time.Duration) bool {
	select {
	case <-s.built:
		return true
	case <-time.After(timeout):
		return false
	}
}

// IsCancelled - true if the build was abandoned before completion
func (s *System) IsCancelled() bool {
	return 0 != atomic.LoadInt32(&s.cancelled)
}

// IsDisposed - true after Dispose
func (s *System) IsDisposed() bool {
	return 0 != atomic.LoadInt32(&s.disposed)
}

// Dispose - stop everything, an unfinished build is discarded
// without flushing and marked cancelled
//
// the build gate is released so that no waiter is left blocked
func (s *System) Dispose() {
	if !atomic.CompareAndSwapInt32(&s.disposed, 0, 1) {
		return
	}
	if s.transient.IsActive() {
		s.transient.Deactivate()
		atomic.StoreInt32(&s.cancelled, 1)
		s.log.Warnf("%s: disposed while building", s.backend.SSID())
	}
	s.backend.Dispose()
	s.release()
	s.log.Infof("disposed: %s", s.backend.SSID())
	s.log.Flush()
}

// RemoveFiles - erase the backend's persistent data
func (s *System) RemoveFiles() error {
	return s.backend.RemoveFiles()
}

// Statistics - counts and times for diagnostics
func (s *System) Statistics() Statistics {
	return Statistics{
		SSID:          s.backend.SSID(),
		Attributes:    s.tree.Count(),
		StartTime:     s.backend.StartTime(),
		EndTime:       s.CurrentEndTime(),
		Modifications: s.modifications.Uint64(),
		Queries:       s.queries.Uint64(),
		Building:      s.transient.IsActive(),
		Cancelled:     s.IsCancelled(),
		Disposed:      s.IsDisposed(),
	}
}
