// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"errors"
)

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type LengthError GenericError
type LimitError GenericError
type NotFoundError GenericError
type ProcessError GenericError
type RangeError GenericError
type RecordError GenericError

// common errors - keep in alphabetic order
var (
	ErrAlreadyInitialised   = ExistsError("already initialised")
	ErrAttributeNotFound    = NotFoundError("attribute not found")
	ErrBackendDeclined      = ProcessError("backend does not supply an attribute tree")
	ErrCorruptAttributeTree = RecordError("attribute tree is corrupt")
	ErrDatabaseIsNotSet     = ProcessError("database is not set")
	ErrDatabaseVersion      = RecordError("database version is incompatible")
	ErrHistoryClosed        = ProcessError("history is no longer being built")
	ErrIncoherentStorage    = RecordError("incoherent interval storage")
	ErrInvalidEvent         = InvalidError("invalid event")
	ErrInvalidLoggerChannel = InvalidError("invalid logger channel")
	ErrInvalidPath          = InvalidError("invalid attribute path")
	ErrInvalidStructPointer = InvalidError("invalid struct pointer")
	ErrInvalidTimeRange     = RangeError("invalid time range")
	ErrInvalidValue         = InvalidError("invalid state value")
	ErrMissingParameters    = InvalidError("missing parameters")
	ErrNegativeInterval     = RangeError("interval end is before its start")
	ErrOverlappingInterval  = RangeError("interval overlaps a stored interval")
	ErrQuarkOutOfRange      = RangeError("quark out of range")
	ErrStackLimitExceeded   = LimitError("stack limit exceeded")
	ErrSystemDisposed       = ProcessError("state system disposed")
	ErrTimeAfterEnd         = RangeError("time is after the end of the history")
	ErrTimeBeforeStart      = RangeError("time is before the start of the history")
	ErrTruncatedValue       = LengthError("truncated state value")
	ErrUnknownValueType     = RecordError("unknown state value type")
	ErrValueTypeMismatch    = InvalidError("state value type mismatch")
	ErrWrongValueType       = InvalidError("wrong state value type")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string   { return string(e) }
func (e InvalidError) Error() string  { return string(e) }
func (e LengthError) Error() string   { return string(e) }
func (e LimitError) Error() string    { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }
func (e RangeError) Error() string    { return string(e) }
func (e RecordError) Error() string   { return string(e) }

// determine the class of an error, wrapped errors are unwrapped
func IsErrExists(e error) bool   { var x ExistsError; return errors.As(e, &x) }
func IsErrInvalid(e error) bool  { var x InvalidError; return errors.As(e, &x) }
func IsErrLength(e error) bool   { var x LengthError; return errors.As(e, &x) }
func IsErrLimit(e error) bool    { var x LimitError; return errors.As(e, &x) }
func IsErrNotFound(e error) bool { var x NotFoundError; return errors.As(e, &x) }
func IsErrProcess(e error) bool  { var x ProcessError; return errors.As(e, &x) }
func IsErrRange(e error) bool    { var x RangeError; return errors.As(e, &x) }
func IsErrRecord(e error) bool   { var x RecordError; return errors.As(e, &x) }
