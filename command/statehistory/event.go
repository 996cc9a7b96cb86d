// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bitmark-inc/statehistory/fault"
	"github.com/bitmark-inc/statehistory/statesystem"
	"github.com/bitmark-inc/statehistory/statevalue"
)

// operations that an event line can request
type operation int

const (
	opModify operation = iota
	opPush
	opPop
	opRemove
)

func (op operation) String() string {
	switch op {
	case opModify:
		return "modify"
	case opPush:
		return "push"
	case opPop:
		return "pop"
	case opRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// one parsed line of an event file
type event struct {
	time  int64
	op    operation
	path  []string
	value statevalue.Value
}

// attribute path separator in event files
const pathSeparator = "/"

// parse one line, blank lines and comments give nil
//
//   <time> modify <path> <value>
//   <time> push <path> <value>
//   <time> pop <path>
//   <time> remove <path>
func parseEvent(line string) (*event, error) {
	line = strings.TrimSpace(line)
	if "" == line || strings.HasPrefix(line, "#") {
		return nil, nil
	}

	fields := strings.SplitN(line, " ", 4)
	if len(fields) < 3 {
		return nil, fmt.Errorf("line: %q: %w", line, fault.ErrInvalidEvent)
	}

	t, err := strconv.ParseInt(fields[0], 10, 64)
	if nil != err {
		return nil, fmt.Errorf("time: %q: %w", fields[0], fault.ErrInvalidEvent)
	}

	path, err := parsePath(fields[2])
	if nil != err {
		return nil, err
	}

	e := &event{
		time:  t,
		path:  path,
		value: statevalue.Null(),
	}

	switch fields[1] {
	case "modify", "push":
		e.op = opModify
		if "push" == fields[1] {
			e.op = opPush
		}
		if 4 != len(fields) {
			return nil, fmt.Errorf("%s without a value: %w", fields[1], fault.ErrInvalidEvent)
		}
		e.value, err = parseValue(fields[3])
		if nil != err {
			return nil, err
		}
	case "pop", "remove":
		e.op = opPop
		if "remove" == fields[1] {
			e.op = opRemove
		}
		if 3 != len(fields) {
			return nil, fmt.Errorf("%s with a value: %w", fields[1], fault.ErrInvalidEvent)
		}
	default:
		return nil, fmt.Errorf("operation: %q: %w", fields[1], fault.ErrInvalidEvent)
	}
	return e, nil
}

// split an attribute path, empty elements are not allowed
func parsePath(s string) ([]string, error) {
	path := strings.Split(strings.Trim(s, pathSeparator), pathSeparator)
	for _, element := range path {
		if "" == element {
			return nil, fmt.Errorf("path: %q: %w", s, fault.ErrInvalidPath)
		}
	}
	return path, nil
}

// value text: null, i:<int32>, l:<int64>, d:<float>, s:<text>
func parseValue(s string) (statevalue.Value, error) {
	if "null" == s {
		return statevalue.Null(), nil
	}
	if len(s) < 2 || ':' != s[1] {
		return statevalue.Null(), fmt.Errorf("value: %q: %w", s, fault.ErrInvalidValue)
	}

	text := s[2:]
	switch s[0] {
	case 'i':
		i, err := strconv.ParseInt(text, 10, 32)
		if nil != err {
			return statevalue.Null(), fmt.Errorf("int: %q: %w", text, fault.ErrInvalidValue)
		}
		return statevalue.Int(int32(i)), nil
	case 'l':
		l, err := strconv.ParseInt(text, 10, 64)
		if nil != err {
			return statevalue.Null(), fmt.Errorf("long: %q: %w", text, fault.ErrInvalidValue)
		}
		return statevalue.Long(l), nil
	case 'd':
		d, err := strconv.ParseFloat(text, 64)
		if nil != err {
			return statevalue.Null(), fmt.Errorf("double: %q: %w", text, fault.ErrInvalidValue)
		}
		return statevalue.Double(d), nil
	case 's':
		return statevalue.String(text), nil
	default:
		return statevalue.Null(), fmt.Errorf("value type: %q: %w", s[0], fault.ErrInvalidValue)
	}
}

// apply an event to the system, creating the attribute if needed
func (e *event) apply(system *statesystem.System) error {
	quark, err := system.QuarkAbsoluteAndAdd(e.path...)
	if nil != err {
		return err
	}

	switch e.op {
	case opModify:
		return system.Modify(e.time, e.value, quark)
	case opPush:
		return system.Push(e.time, e.value, quark)
	case opPop:
		_, err := system.Pop(e.time, quark)
		return err
	case opRemove:
		return system.Remove(e.time, quark)
	default:
		fault.Panicf("event: unhandled operation: %d", e.op)
	}
	return nil
}
