// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package statevalue

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/bitmark-inc/statehistory/fault"
	"github.com/bitmark-inc/statehistory/util"
)

// Pack - binary form of a value
//
//   null:    tag
//   integer: tag ++ zigzag varint
//   long:    tag ++ zigzag varint
//   double:  tag ++ 8 byte big endian IEEE 754
//   string:  tag ++ varint length ++ bytes
//   custom:  tag ++ id ++ varint length ++ bytes
func (v Value) Pack() []byte {
	buffer := make([]byte, 1, 16)
	buffer[0] = byte(v.tag)

	switch v.tag {
	case IntegerType, LongType:
		buffer = util.AppendVarint64(buffer, util.ToZigZag64(v.number))
	case DoubleType:
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], math.Float64bits(v.double))
		buffer = append(buffer, b[:]...)
	case StringType:
		buffer = util.AppendVarint64(buffer, uint64(len(v.text)))
		buffer = append(buffer, v.text...)
	case CustomType:
		buffer = append(buffer, v.customID)
		buffer = util.AppendVarint64(buffer, uint64(len(v.data)))
		buffer = append(buffer, v.data...)
	}
	return buffer
}

// Unpack - decode a packed value from the start of a buffer
//
// returns the value and the number of bytes consumed
func Unpack(buffer []byte) (Value, int, error) {
	if 0 == len(buffer) {
		return Value{}, 0, fault.ErrTruncatedValue
	}
	tag := Type(buffer[0])
	n := 1

	switch tag {
	case NullType:
		return Null(), n, nil

	case IntegerType, LongType:
		z, count := util.FromVarint64(buffer[n:])
		if 0 == count {
			return Value{}, 0, fault.ErrTruncatedValue
		}
		number := util.FromZigZag64(z)
		if IntegerType == tag && (number < math.MinInt32 || number > math.MaxInt32) {
			return Value{}, 0, fmt.Errorf("integer: %d: %w", number, fault.ErrInvalidValue)
		}
		return Value{tag: tag, number: number}, n + count, nil

	case DoubleType:
		if len(buffer) < n+8 {
			return Value{}, 0, fault.ErrTruncatedValue
		}
		d := math.Float64frombits(binary.BigEndian.Uint64(buffer[n : n+8]))
		return Double(d), n + 8, nil

	case StringType:
		data, count, err := unpackBytes(buffer[n:])
		if nil != err {
			return Value{}, 0, err
		}
		return String(string(data)), n + count, nil

	case CustomType:
		if len(buffer) < n+1 {
			return Value{}, 0, fault.ErrTruncatedValue
		}
		id := buffer[n]
		n += 1
		data, count, err := unpackBytes(buffer[n:])
		if nil != err {
			return Value{}, 0, err
		}
		return Custom(id, data), n + count, nil

	default:
		return Value{}, 0, fmt.Errorf("tag: %d: %w", tag, fault.ErrUnknownValueType)
	}
}

// length prefixed byte run, the result aliases the buffer
func unpackBytes(buffer []byte) ([]byte, int, error) {
	length, count := util.FromVarint64(buffer)
	if 0 == count {
		return nil, 0, fault.ErrTruncatedValue
	}
	if uint64(len(buffer)-count) < length {
		return nil, 0, fault.ErrTruncatedValue
	}
	end := count + int(length)
	return buffer[count:end], end, nil
}
