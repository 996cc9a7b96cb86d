// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package attribute - the hierarchical attribute namespace
//
// Every attribute is identified by a quark: a small integer assigned
// once, at creation, equal to the attribute's position in creation
// order.  Quarks are never reused and attributes are never removed,
// so a quark can be used directly as an array index by the other
// layers.
//
// The root of the tree is not an attribute; it is addressed by the
// pseudo quark Root.
//
// All methods of a Tree are safe for concurrent use.  Creation is a
// single critical section covering the walk, the quark assignment and
// the creation callback, so two goroutines resolving the same new path
// obtain the same quark and observers see attributes created in quark
// order.
//
// Serialized form (see WriteTo):
//
//   magic       - 4 byte big endian 0x06EC3671
//   count       - varint number of attributes
//   per attribute in quark order:
//     segments  - varint number of path segments
//     per segment:
//       n       - varint, 0 = same name as the previous attribute's
//                 segment at this index, otherwise n-1 bytes of name follow
package attribute
