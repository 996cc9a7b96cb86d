// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/statehistory/configuration"
	"github.com/bitmark-inc/statehistory/statesystem"
	"github.com/bitmark-inc/statehistory/storage"
	"github.com/bitmark-inc/statehistory/util"
)

// basic defaults (directories and files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultDatabaseDirectory = "history"
	defaultSSID              = "statehistory"
	defaultCacheExpiry       = 60 // seconds

	defaultLogDirectory = "log"
	defaultLogFile      = "statehistory.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size
)

// LoglevelMap - to hold log levels
type LoglevelMap map[string]string

// path expanded or calculated defaults
var (
	defaultLogLevels = LoglevelMap{
		"main":            "info",
		logger.DefaultTag: "critical",
	}
)

// DatabaseType - where the history is kept
type DatabaseType struct {
	Directory   string `gluamapper:"directory" json:"directory"`
	SSID        string `gluamapper:"ssid" json:"ssid"`
	StartTime   int64  `gluamapper:"start_time" json:"start_time"`
	CacheExpiry int    `gluamapper:"cache_expiry" json:"cache_expiry"`
}

// Configuration - the whole configuration file
type Configuration struct {
	DataDirectory string               `gluamapper:"data_directory" json:"data_directory"`
	PidFile       string               `gluamapper:"pidfile" json:"pidfile"`
	MaxStackDepth int                  `gluamapper:"max_stack_depth" json:"max_stack_depth"`
	Follow        bool                 `gluamapper:"follow" json:"follow"`
	Database      DatabaseType         `gluamapper:"database" json:"database"`
	Logging       logger.Configuration `gluamapper:"logging" json:"logging"`
}

// will read decode and verify the configuration
func getConfiguration(configurationFileName string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{
		DataDirectory: defaultDataDirectory,
		PidFile:       "", // no PidFile by default
		MaxStackDepth: statesystem.DefaultMaxStackDepth,
		Follow:        false,

		Database: DatabaseType{
			Directory:   defaultDatabaseDirectory,
			SSID:        defaultSSID,
			CacheExpiry: defaultCacheExpiry,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	if err := configuration.ParseConfigurationFile(configurationFileName, options); err != nil {
		return nil, err
	}

	if options.MaxStackDepth <= 0 {
		options.MaxStackDepth = statesystem.DefaultMaxStackDepth
	}
	if options.Database.CacheExpiry <= 0 {
		options.Database.CacheExpiry = defaultCacheExpiry
	}
	if "" == options.Database.SSID {
		options.Database.SSID = defaultSSID
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fmt.Errorf("path: %q is not a valid directory", options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	}
	options.DataDirectory = filepath.Clean(options.DataDirectory)

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fmt.Errorf("path: %q is not a directory", options.DataDirectory)
	}

	// optional absolute paths i.e. blank or an absolute path
	if "" != options.PidFile {
		options.PidFile = util.EnsureAbsolute(options.DataDirectory, options.PidFile)
	}

	// the log file must be a plain name within the log directory
	switch filepath.Dir(options.Logging.File) {
	case "", ".":
	default:
		return nil, fmt.Errorf("files: %q is not plain name", options.Logging.File)
	}

	options.Database.Directory = util.EnsureAbsolute(options.DataDirectory, options.Database.Directory)

	// make absolute and create directories if they do not already exist
	options.Logging.Directory = util.EnsureAbsolute(options.DataDirectory, options.Logging.Directory)
	if err := os.MkdirAll(options.Logging.Directory, 0o700); nil != err {
		return nil, err
	}

	// done
	return options, nil
}

// the storage part of the configuration
func (c *Configuration) storageConfiguration() storage.Configuration {
	return storage.Configuration{
		Directory:    c.Database.Directory,
		CacheSeconds: c.Database.CacheExpiry,
	}
}
