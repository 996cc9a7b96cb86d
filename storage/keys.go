// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/bitmark-inc/statehistory/fault"
	"github.com/bitmark-inc/statehistory/interval"
	"github.com/bitmark-inc/statehistory/statevalue"
)

const (
	quarkSize     = 4
	timeSize      = 8
	intervalKeyLn = 1 + quarkSize + timeSize
	signBit       = uint64(1) << 63
)

// time to order preserving bytes
func encodeTime(buffer []byte, t int64) {
	binary.BigEndian.PutUint64(buffer, uint64(t)^signBit)
}

func decodeTime(buffer []byte) int64 {
	return int64(binary.BigEndian.Uint64(buffer) ^ signBit)
}

// I ++ quark
func quarkPrefix(prefix byte, quark int) []byte {
	key := make([]byte, 1+quarkSize, intervalKeyLn)
	key[0] = prefix
	binary.BigEndian.PutUint32(key[1:], uint32(quark))
	return key
}

// I ++ quark ++ end
func intervalKey(prefix byte, quark int, end int64) []byte {
	key := quarkPrefix(prefix, quark)[:intervalKeyLn]
	encodeTime(key[1+quarkSize:], end)
	return key
}

// first key after every key of the quark
func quarkLimit(prefix byte, quark int) []byte {
	if uint32(quark) == ^uint32(0) {
		return []byte{prefix + 1}
	}
	return quarkPrefix(prefix, quark+1)
}

// start ++ packed value
func intervalData(start int64, value statevalue.Value) []byte {
	packed := value.Pack()
	data := make([]byte, timeSize, timeSize+len(packed))
	encodeTime(data, start)
	return append(data, packed...)
}

// rebuild an interval from a record
func decodeInterval(key []byte, data []byte) (interval.Interval, error) {
	if intervalKeyLn != len(key) || len(data) < timeSize+1 {
		return interval.Interval{}, fmt.Errorf("key: %x  data: %x: %w", key, data, fault.ErrIncoherentStorage)
	}
	value, n, err := statevalue.Unpack(data[timeSize:])
	if nil != err {
		return interval.Interval{}, err
	}
	if n != len(data)-timeSize {
		return interval.Interval{}, fmt.Errorf("key: %x  trailing bytes: %d: %w", key, len(data)-timeSize-n, fault.ErrIncoherentStorage)
	}
	return interval.Interval{
		Start: decodeTime(data),
		End:   decodeTime(key[1+quarkSize:]),
		Quark: int(binary.BigEndian.Uint32(key[1:])),
		Value: value,
	}, nil
}
