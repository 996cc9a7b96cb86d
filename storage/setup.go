// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/statehistory/counter"
	"github.com/bitmark-inc/statehistory/fault"
)

// Configuration - where and how to keep a history
type Configuration struct {
	Directory    string `gluamapper:"directory" json:"directory"`
	CacheSeconds int    `gluamapper:"cache_seconds" json:"cache_seconds"`
}

// file names within the directory
const (
	databaseName      = "intervals.leveldb"
	attributeTreeName = "attribute.tree"
)

// for database version
var versionKey = []byte{0x00, 'V', 'E', 'R', 'S', 'I', 'O', 'N'}

const (
	currentDBVersion = 0x100
)

// pool prefixes
const (
	metaPrefix     = 'M'
	intervalPrefix = 'I'
)

// meta keys
var (
	startKey = []byte("start")
	endKey   = []byte("end")
	ssidKey  = []byte("ssid")
)

// store access modes
const (
	ReadOnly  = true
	ReadWrite = false
)

// Store - a history on disk
type Store struct {
	sync.RWMutex

	log       *logger.L
	directory string
	ssid      string
	readOnly  bool
	finished  bool
	startTime int64
	endTime   *counter.HighWater

	database  *leveldb.DB
	meta      *poolHandle
	intervals *poolHandle
	cache     *lastHit

	inserts counter.Counter
	lookups counter.Counter
	hits    counter.Counter
}

// Open - open or create the store in the configured directory
//
// a new store begins at startTime, an existing one keeps its own
// start time; an unfinished store opened for writing is erased since
// its open intervals were lost
func Open(configuration Configuration, ssid string, startTime int64, readOnly bool, log *logger.L) (*Store, error) {
	if nil == log {
		return nil, fault.ErrInvalidLoggerChannel
	}
	if "" == configuration.Directory {
		return nil, fmt.Errorf("directory: %w", fault.ErrMissingParameters)
	}

	directory, err := filepath.Abs(configuration.Directory)
	if nil != err {
		return nil, err
	}
	if !readOnly {
		err = os.MkdirAll(directory, 0o700)
		if nil != err {
			return nil, err
		}
	}

	s := &Store{
		log:       log,
		directory: directory,
		ssid:      ssid,
		readOnly:  readOnly,
		startTime: startTime,
		cache:     newLastHit(configuration.CacheSeconds),
	}

	ok := false
	defer func() {
		if !ok {
			s.dbClose()
		}
	}()

	err = s.attach()
	if nil != err {
		return nil, err
	}

	if !readOnly && !s.finished && s.populated() {
		log.Criticalf("drop unfinished history: %s", s.databaseName())
		s.dbClose()

		err = os.RemoveAll(s.databaseName())
		if nil != err {
			return nil, err
		}
		s.startTime = startTime
		s.ssid = ssid
		err = s.attach()
		if nil != err {
			return nil, err
		}
	}

	log.Infof("opened: %s  ssid: %q  start: %d  end: %d  finished: %t", s.directory, s.ssid, s.startTime, s.endTime.Int64(), s.finished)

	ok = true // prevent db close
	return s, nil
}

// internal: open the database and load or create its meta data
func (s *Store) attach() error {
	db, version, err := getDB(s.databaseName(), s.readOnly)
	if nil != err {
		return err
	}
	s.database = db
	s.meta = newPoolHandle(metaPrefix, db)
	s.intervals = newPoolHandle(intervalPrefix, db)

	// ensure no database downgrade
	if version > currentDBVersion {
		s.log.Criticalf("database version: %d > current version: %d", version, currentDBVersion)
		return fmt.Errorf("version: %d > current version: %d: %w", version, currentDBVersion, fault.ErrDatabaseVersion)
	}

	if 0 == version {
		if s.readOnly {
			return fmt.Errorf("empty database: %s: %w", s.databaseName(), fault.ErrDatabaseIsNotSet)
		}

		// database was empty so tag as current version
		err = putVersion(db, currentDBVersion)
		if nil != err {
			return err
		}
		start := make([]byte, timeSize)
		encodeTime(start, s.startTime)
		batch := new(leveldb.Batch)
		s.meta.batchPut(batch, startKey, start)
		s.meta.batchPut(batch, ssidKey, []byte(s.ssid))
		err = db.Write(batch, nil)
		if nil != err {
			return err
		}
		s.endTime = counter.NewHighWater(s.startTime)
		s.finished = false
		return nil
	}

	if version < currentDBVersion {
		s.log.Criticalf("database version: %d < current version: %d", version, currentDBVersion)
		return fmt.Errorf("version: %d < current version: %d: %w", version, currentDBVersion, fault.ErrDatabaseVersion)
	}

	start, err := s.meta.get(startKey)
	if nil != err {
		return err
	}
	if timeSize != len(start) {
		return fmt.Errorf("start time record: %x: %w", start, fault.ErrIncoherentStorage)
	}
	s.startTime = decodeTime(start)
	s.endTime = counter.NewHighWater(s.startTime)

	ssid, err := s.meta.get(ssidKey)
	if nil != err {
		return err
	}
	s.ssid = string(ssid)

	end, err := s.meta.get(endKey)
	if nil != err {
		return err
	}
	s.finished = timeSize == len(end)
	if s.finished {
		s.endTime.Raise(decodeTime(end))
	}
	return nil
}

// internal: true if any interval is stored
func (s *Store) populated() bool {
	_, found := s.intervals.firstKey()
	return found
}

func (s *Store) databaseName() string {
	return filepath.Join(s.directory, databaseName)
}

func (s *Store) dbClose() {
	if nil != s.database {
		s.database.Close()
		s.database = nil
	}
}

// return:
//   database handle
//   version number
func getDB(name string, readOnly bool) (*leveldb.DB, int, error) {
	opt := &ldb_opt.Options{
		ErrorIfExist:   false,
		ErrorIfMissing: readOnly,
		ReadOnly:       readOnly,
	}

	db, err := leveldb.OpenFile(name, opt)
	if nil != err {
		return nil, 0, err
	}

	versionValue, err := db.Get(versionKey, nil)
	if leveldb.ErrNotFound == err {
		return db, 0, nil
	} else if nil != err {
		db.Close()
		return nil, 0, err
	}

	if 4 != len(versionValue) {
		db.Close()
		return nil, 0, fmt.Errorf("incompatible database version length: expected: %d  actual: %d", 4, len(versionValue))
	}

	version := int(binary.BigEndian.Uint32(versionValue))
	return db, version, nil
}

func putVersion(db *leveldb.DB, version int) error {
	currentVersion := make([]byte, 4)
	binary.BigEndian.PutUint32(currentVersion, uint32(version))

	return db.Put(versionKey, currentVersion, nil)
}
