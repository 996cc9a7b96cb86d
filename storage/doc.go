// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - a durable interval backend on LevelDB
//
// A store is a directory containing the LevelDB database and the
// serialized attribute tree written when the history is closed.
//
// The database is split into pools, each defined by a prefix byte.
//
// Notes:
// 1. each separate pool has a single byte prefix (to spread the keys in LevelDB)
// 2. ++           = concatenation of byte data
// 3. quark        = big endian uint32 (4 bytes)
// 4. time         = int64 with the sign bit flipped as big endian uint64 (8 bytes)
//                   so that byte order matches numeric order
// 5. packed value = statevalue.Pack
//
// Version:
//
//   0x00 ++ "VERSION"          - database version
//                                data: big endian uint32
//
// Meta:
//
//   M ++ "start"               - history start time
//                                data: time
//   M ++ "end"                 - final end time, only after building finished
//                                data: time
//   M ++ "ssid"                - identifier of the history
//                                data: bytes
//
// Intervals:
//
//   I ++ quark ++ end time     - one closed interval
//                                data: start time ++ packed value
//
// Because intervals of one quark never overlap, the first key at or
// after I ++ quark ++ t is the only candidate to contain t.
package storage
