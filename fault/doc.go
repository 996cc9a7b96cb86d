// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fault - error instances
//
// Provides a single instance of errors to allow easy comparison
// without having to resort to partial string matches.  Each error
// belongs to a class so callers can decide how to react, e.g. skip
// an event on an InvalidError but abort on a RecordError.
//
// Context is added by wrapping:
//
//   fmt.Errorf("quark: %d: %w", quark, fault.ErrQuarkOutOfRange)
//
// and the IsErrXXX functions see through the wrapping.
package fault
