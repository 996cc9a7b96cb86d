// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/statehistory/backend/memory"
	"github.com/bitmark-inc/statehistory/backend/null"
	"github.com/bitmark-inc/statehistory/background"
	"github.com/bitmark-inc/statehistory/fault"
	"github.com/bitmark-inc/statehistory/interval"
	"github.com/bitmark-inc/statehistory/statesystem"
	"github.com/bitmark-inc/statehistory/storage"
)

// setup command handler
//
// commands that do not need the configuration file
func processSetupCommand(program string, arguments []string) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
	}

	switch command {
	case "build", "b", "query", "q", "history", "hist", "info", "i", "config-test", "cfg", "check", "chk", "replay", "r":
		return false // defer processing until configuration is read

	case "version", "v":
		fmt.Printf("%s\n", version)
		return true

	default:
		switch command {
		case "help", "h", "?":
		case "", " ":
			fmt.Printf("error: missing command\n")
		default:
			fmt.Printf("error: no such command: %q\n", command)
		}
		fmt.Printf("usage: %s [--help] [--verbose] [--quiet] --config-file=FILE [[command|help] arguments...]\n", program)

		fmt.Printf("supported commands:\n\n")
		fmt.Printf("  help                       (h)      - display this message\n\n")
		fmt.Printf("  version                    (v)      - display version sting\n\n")

		fmt.Printf("  config-test                (cfg)    - just check the configuration file\n")
		fmt.Printf("\n")

		fmt.Printf("  build FILE                 (b)      - build a new history from an event file\n")
		fmt.Printf("                                        with follow=true keep reading until SIGINT/SIGTERM\n")
		fmt.Printf("\n")

		fmt.Printf("  query TIME [PATH]          (q)      - state of every attribute or of PATH at TIME\n")
		fmt.Printf("\n")

		fmt.Printf("  history PATH START END     (hist)   - every interval of PATH within [START, END]\n")
		fmt.Printf("\n")

		fmt.Printf("  info                       (i)      - statistics of the stored history\n")
		fmt.Printf("\n")

		fmt.Printf("  check FILE                 (chk)    - validate an event file without storing anything\n")
		fmt.Printf("\n")

		fmt.Printf("  replay FILE TIME [PATH]    (r)      - build an event file in memory and query it at TIME\n")
		fmt.Printf("\n")

		if "help" != command && "h" != command && "?" != command {
			exitwithstatus.Exit(1)
		}
	}

	// indicate processing complete and preform normal exit from main
	return true
}

// configuration file enquiry commands
// have configuration file read and decoded, but nothing else
func processConfigCommand(arguments []string, options *Configuration) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
	}

	switch command {
	case "config-test", "cfg":
		printJSON(os.Stdout, options)

	default: // unknown commands fall through to data command
		return false
	}

	// indicate processing complete and perform normal exit from main
	return true
}

// data command handler
// the history database is opened by each command
func processDataCommand(log *logger.L, arguments []string, options *Configuration, verbose bool) error {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
		arguments = arguments[1:]
	}

	switch command {
	case "build", "b":
		if 1 != len(arguments) {
			return fmt.Errorf("build needs one event file: %w", fault.ErrMissingParameters)
		}
		return build(log, arguments[0], options, verbose)

	case "query", "q":
		if len(arguments) < 1 || len(arguments) > 2 {
			return fmt.Errorf("query needs a time and an optional path: %w", fault.ErrMissingParameters)
		}
		t, err := strconv.ParseInt(arguments[0], 10, 64)
		if nil != err {
			return err
		}
		path := ""
		if 2 == len(arguments) {
			path = arguments[1]
		}
		return withHistory(log, options, func(system *statesystem.System) error {
			return query(os.Stdout, system, t, path)
		})

	case "history", "hist":
		if 3 != len(arguments) {
			return fmt.Errorf("history needs a path, start and end: %w", fault.ErrMissingParameters)
		}
		start, err := strconv.ParseInt(arguments[1], 10, 64)
		if nil != err {
			return err
		}
		end, err := strconv.ParseInt(arguments[2], 10, 64)
		if nil != err {
			return err
		}
		return withHistory(log, options, func(system *statesystem.System) error {
			return history(os.Stdout, system, arguments[0], start, end)
		})

	case "info", "i":
		return withHistory(log, options, func(system *statesystem.System) error {
			printJSON(os.Stdout, system.Statistics())
			return nil
		})

	case "check", "chk":
		if 1 != len(arguments) {
			return fmt.Errorf("check needs one event file: %w", fault.ErrMissingParameters)
		}
		result, err := check(log, arguments[0], options)
		if nil != err {
			return err
		}
		printJSON(os.Stdout, result)
		return nil

	case "replay", "r":
		if len(arguments) < 2 || len(arguments) > 3 {
			return fmt.Errorf("replay needs an event file, a time and an optional path: %w", fault.ErrMissingParameters)
		}
		t, err := strconv.ParseInt(arguments[1], 10, 64)
		if nil != err {
			return err
		}
		path := ""
		if 3 == len(arguments) {
			path = arguments[2]
		}
		return replay(os.Stdout, log, arguments[0], options, t, path)

	default:
		return fmt.Errorf("command: %q: %w", command, fault.ErrMissingParameters)
	}
}

// build a new history from an event file
func build(log *logger.L, fileName string, options *Configuration, verbose bool) error {

	log.Info("initialise storage")
	store, err := storage.Open(options.storageConfiguration(), options.Database.SSID, options.Database.StartTime, storage.ReadWrite, logger.New("storage"))
	if nil != err {
		return err
	}
	if store.IsFinished() {
		store.Dispose()
		return fmt.Errorf("database: %q already holds a finished history: %w", options.Database.Directory, fault.ErrHistoryClosed)
	}

	system, err := statesystem.New(store, logger.New("statesystem"), statesystem.WithMaxStackDepth(options.MaxStackDepth))
	if nil != err {
		store.Dispose()
		return err
	}
	defer system.Dispose()

	f := newFeeder(fileName, system, options.Follow, logger.New(feederLoggerPrefix))
	processes := background.Start(background.Processes{f}, nil)

	if options.Follow && verbose {
		fmt.Printf("following: %q  waiting for CTRL-C (SIGINT) or 'kill <pid>' (SIGTERM)…\n", fileName)
	}

	// turn Signals into channel messages
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(ch)

	select {
	case sig := <-ch:
		log.Infof("received signal: %v", sig)
	case <-processes.Done():
	}
	processes.Stop()

	if err := f.Err(); nil != err {
		return err
	}

	end := f.LastTime()
	log.Infof("close history at: %d  accepted: %d  rejected: %d", end, f.accepted.Uint64(), f.rejected.Uint64())
	err = system.CloseHistory(end)
	if nil != err {
		return err
	}
	if verbose {
		printJSON(os.Stdout, system.Statistics())
	}
	return nil
}

// run a feeder over the whole file and wait for it
func feedFile(fileName string, system *statesystem.System) (*feeder, error) {
	f := newFeeder(fileName, system, false, logger.New(feederLoggerPrefix))
	processes := background.Start(background.Processes{f}, nil)
	<-processes.Done()
	processes.Stop()
	return f, f.Err()
}

// summary of an event file check
type checkResult struct {
	Accepted   uint64 `json:"accepted"`
	Rejected   uint64 `json:"rejected"`
	Discarded  uint64 `json:"discarded"`
	Attributes int    `json:"attributes"`
	EndTime    int64  `json:"endTime"`
}

// apply an event file to a system that keeps only the ongoing state
func check(log *logger.L, fileName string, options *Configuration) (*checkResult, error) {
	b := null.New(options.Database.SSID, options.Database.StartTime)
	system, err := statesystem.New(b, logger.New("statesystem"), statesystem.WithMaxStackDepth(options.MaxStackDepth))
	if nil != err {
		return nil, err
	}
	defer system.Dispose()

	f, err := feedFile(fileName, system)
	if nil != err {
		return nil, err
	}
	err = system.CloseHistory(f.LastTime())
	if nil != err {
		return nil, err
	}
	log.Infof("checked: %s  accepted: %d  rejected: %d", fileName, f.accepted.Uint64(), f.rejected.Uint64())

	return &checkResult{
		Accepted:   f.accepted.Uint64(),
		Rejected:   f.rejected.Uint64(),
		Discarded:  b.Discarded(),
		Attributes: system.NumAttributes(),
		EndTime:    system.CurrentEndTime(),
	}, nil
}

// build an event file in memory and query it
func replay(w io.Writer, log *logger.L, fileName string, options *Configuration, t int64, path string) error {
	b := memory.New(options.Database.SSID, options.Database.StartTime, logger.New("memory"))
	system, err := statesystem.New(b, logger.New("statesystem"), statesystem.WithMaxStackDepth(options.MaxStackDepth))
	if nil != err {
		return err
	}
	defer system.Dispose()

	f, err := feedFile(fileName, system)
	if nil != err {
		return err
	}
	err = system.CloseHistory(f.LastTime())
	if nil != err {
		return err
	}
	log.Infof("replayed: %s  intervals: %d", fileName, b.Count())
	return query(w, system, t, path)
}

// open the finished history read only and run a function on it
func withHistory(log *logger.L, options *Configuration, run func(*statesystem.System) error) error {
	store, err := storage.Open(options.storageConfiguration(), "", 0, storage.ReadOnly, logger.New("storage"))
	if nil != err {
		return err
	}
	system, err := statesystem.Open(store, logger.New("statesystem"))
	if nil != err {
		store.Dispose()
		return err
	}
	defer system.Dispose()

	log.Infof("history: %s  start: %d  end: %d", system.SSID(), system.StartTime(), system.CurrentEndTime())
	return run(system)
}

// printable form of one interval
type intervalItem struct {
	Path  string `json:"path"`
	Quark int    `json:"quark"`
	Start int64  `json:"start"`
	End   int64  `json:"end"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

func newIntervalItem(system *statesystem.System, iv interval.Interval) (intervalItem, error) {
	path, err := system.FullAttributePath(iv.Quark)
	if nil != err {
		return intervalItem{}, err
	}
	value := iv.Value.String()
	if text, err := iv.Value.Text(); nil == err {
		value = text
	}
	return intervalItem{
		Path:  path,
		Quark: iv.Quark,
		Start: iv.Start,
		End:   iv.End,
		Type:  iv.Value.Type().String(),
		Value: value,
	}, nil
}

// state at one time, of every attribute or of a single path
func query(w io.Writer, system *statesystem.System, t int64, path string) error {
	var intervals []interval.Interval

	if "" == path {
		full, err := system.QueryFull(t)
		if nil != err {
			return err
		}
		intervals = full
	} else {
		quark, err := resolvePath(system, path)
		if nil != err {
			return err
		}
		iv, err := system.QuerySingle(t, quark)
		if nil != err {
			return err
		}
		intervals = []interval.Interval{iv}
	}

	items := make([]intervalItem, 0, len(intervals))
	for _, iv := range intervals {
		item, err := newIntervalItem(system, iv)
		if nil != err {
			return err
		}
		items = append(items, item)
	}
	printJSON(w, items)
	return nil
}

// every interval of one path within a range
func history(w io.Writer, system *statesystem.System, path string, start int64, end int64) error {
	quark, err := resolvePath(system, path)
	if nil != err {
		return err
	}

	it, err := system.Query2DRange(interval.NewQuarkSet(quark), start, end)
	if nil != err {
		return err
	}
	intervals, err := interval.Collect(it)
	if nil != err {
		return err
	}

	items := make([]intervalItem, 0, len(intervals))
	for _, iv := range intervals {
		item, err := newIntervalItem(system, iv)
		if nil != err {
			return err
		}
		items = append(items, item)
	}
	printJSON(w, items)
	return nil
}

func resolvePath(system *statesystem.System, path string) (int, error) {
	elements, err := parsePath(path)
	if nil != err {
		return 0, err
	}
	return system.QuarkAbsolute(elements...)
}

// indented JSON on a writer
func printJSON(w io.Writer, item interface{}) {
	b, err := json.Marshal(item)
	if nil != err {
		exitwithstatus.Message("error: %s", err)
	}
	var out bytes.Buffer
	_ = json.Indent(&out, b, "", "  ")
	out.WriteString("\n")
	_, _ = out.WriteTo(w)
}
