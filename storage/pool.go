// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"github.com/syndtr/goleveldb/leveldb"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"
)

// one prefix byte range of the database
type poolHandle struct {
	prefix   byte
	limit    []byte
	database *leveldb.DB
}

func newPoolHandle(prefix byte, database *leveldb.DB) *poolHandle {
	limit := []byte(nil)
	if prefix < 255 {
		limit = []byte{prefix + 1}
	}
	return &poolHandle{
		prefix:   prefix,
		limit:    limit,
		database: database,
	}
}

// prepend the prefix onto the key
func (p *poolHandle) prefixKey(key []byte) []byte {
	prefixedKey := make([]byte, 1, len(key)+1)
	prefixedKey[0] = p.prefix
	return append(prefixedKey, key...)
}

// queue a key/value pair in a batch
func (p *poolHandle) batchPut(batch *leveldb.Batch, key []byte, value []byte) {
	batch.Put(p.prefixKey(key), value)
}

// read a value for a given key, nil if not found
func (p *poolHandle) get(key []byte) ([]byte, error) {
	value, err := p.database.Get(p.prefixKey(key), nil)
	if leveldb.ErrNotFound == err {
		return nil, nil
	}
	return value, err
}

// the whole pool as a range
func (p *poolHandle) maxRange() *ldb_util.Range {
	return &ldb_util.Range{
		Start: []byte{p.prefix}, // Start of key range, included in the range
		Limit: p.limit,          // Limit of key range, excluded from the range
	}
}

// first key in the pool, with the prefix stripped
func (p *poolHandle) firstKey() ([]byte, bool) {
	iter := p.database.NewIterator(p.maxRange(), nil)
	defer iter.Release()

	if !iter.First() {
		return nil, false
	}
	key := iter.Key()
	dataKey := make([]byte, len(key)-1) // strip the prefix
	copy(dataKey, key[1:])              // ...
	return dataKey, true
}
