// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bitmark-inc/logger"
	"github.com/fsnotify/fsnotify"

	"github.com/bitmark-inc/statehistory/counter"
	"github.com/bitmark-inc/statehistory/statesystem"
)

const feederLoggerPrefix = "feeder"

// feeder - background process that streams an event file into a
// state system, optionally following the file as it grows
type feeder struct {
	sync.Mutex

	log      *logger.L
	system   *statesystem.System
	fileName string
	follow   bool

	// file is open and at end when ready is closed
	ready     chan struct{}
	readyOnce sync.Once

	lastTime int64
	err      error

	accepted counter.Counter
	rejected counter.Counter
}

func newFeeder(fileName string, system *statesystem.System, follow bool, log *logger.L) *feeder {
	return &feeder{
		log:      log,
		system:   system,
		fileName: fileName,
		follow:   follow,
		ready:    make(chan struct{}),
		lastTime: system.StartTime(),
	}
}

// Run - read events until the end of the file, or until shutdown when
// following
func (f *feeder) Run(args interface{}, shutdown <-chan struct{}) {
	defer f.signalReady()

	fileName, err := filepath.Abs(filepath.Clean(f.fileName))
	if nil != err {
		f.fail(err)
		return
	}

	var watcher *fsnotify.Watcher
	if f.follow {
		watcher, err = fsnotify.NewWatcher()
		if nil != err {
			f.fail(err)
			return
		}
		defer watcher.Close()

		err = watcher.Add(filepath.Dir(fileName))
		if nil != err {
			f.fail(err)
			return
		}
	}

	file, err := os.Open(fileName)
	if nil != err {
		f.fail(err)
		return
	}
	defer file.Close()

	f.log.Infof("reading: %s  follow: %t", fileName, f.follow)
	reader := bufio.NewReader(file)
	partial := ""

loop:
	for {
		line, err := reader.ReadString('\n')
		if nil == err {
			f.process(partial + line)
			partial = ""
			continue loop
		}
		if io.EOF != err {
			f.fail(err)
			return
		}

		// incomplete last line is kept until its newline arrives
		partial += line
		if !f.follow {
			break loop
		}
		f.signalReady()

		if !f.waitForChange(fileName, shutdown, watcher.Events, watcher.Errors) {
			break loop
		}
	}

	if "" != strings.TrimSpace(partial) {
		f.process(partial)
	}
	f.log.Infof("finished: %s  accepted: %d  rejected: %d", fileName, f.accepted.Uint64(), f.rejected.Uint64())
}

// internal: block until the followed file may have grown
//
// false means stop following: shutdown, the file was removed or
// renamed, or the watcher closed its channels
func (f *feeder) waitForChange(fileName string, shutdown <-chan struct{}, events <-chan fsnotify.Event, errs <-chan error) bool {
	for {
		select {
		case <-shutdown:
			return false
		case change, ok := <-events:
			if !ok {
				f.log.Warnf("file: %s watcher closed, stop following", fileName)
				return false
			}
			if filepath.Clean(change.Name) != fileName {
				continue
			}
			if change.Op&fsnotify.Remove == fsnotify.Remove || change.Op&fsnotify.Rename == fsnotify.Rename {
				f.log.Warnf("file: %s removed, stop following", fileName)
				return false
			}
			return true
		case err, ok := <-errs:
			if !ok {
				f.log.Warnf("file: %s watcher closed, stop following", fileName)
				return false
			}
			f.log.Errorf("watcher error: %s", err)
			return true
		}
	}
}

// internal: parse and apply one line, rejected lines are logged and
// skipped
func (f *feeder) process(line string) {
	e, err := parseEvent(line)
	if nil != err {
		f.log.Warnf("reject line: %q  error: %s", strings.TrimSpace(line), err)
		f.rejected.Increment()
		return
	}
	if nil == e {
		return
	}

	err = e.apply(f.system)
	if nil != err {
		f.log.Warnf("reject event: %s %v at: %d  error: %s", e.op, e.path, e.time, err)
		f.rejected.Increment()
		return
	}
	f.accepted.Increment()

	f.Lock()
	if e.time > f.lastTime {
		f.lastTime = e.time
	}
	f.Unlock()
}

func (f *feeder) fail(err error) {
	f.log.Errorf("file: %s  error: %s", f.fileName, err)
	f.Lock()
	f.err = err
	f.Unlock()
}

func (f *feeder) signalReady() {
	f.readyOnce.Do(func() {
		close(f.ready)
	})
}

// Ready - closed once the existing content has been consumed
func (f *feeder) Ready() <-chan struct{} {
	return f.ready
}

// LastTime - latest event time applied
func (f *feeder) LastTime() int64 {
	f.Lock()
	defer f.Unlock()
	return f.lastTime
}

// Err - the error that stopped the feeder, if any
func (f *feeder) Err() error {
	f.Lock()
	defer f.Unlock()
	return f.err
}
