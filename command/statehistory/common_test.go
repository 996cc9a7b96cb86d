// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/statehistory/backend/memory"
	"github.com/bitmark-inc/statehistory/statesystem"
)

const testingDirName = "testing"

// Test main entrypoint
func TestMain(m *testing.M) {
	_ = os.RemoveAll(testingDirName)
	_ = os.Mkdir(testingDirName, 0o700)

	logging := logger.Configuration{
		Directory: testingDirName,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}

	// start logging
	_ = logger.Initialise(logging)

	result := m.Run()

	logger.Finalise()
	_ = os.RemoveAll(testingDirName)
	os.Exit(result)
}

// a state system over memory starting at time zero
func newMemorySystem(t *testing.T) *statesystem.System {
	system, err := statesystem.New(memory.New("command-test", 0, logger.New("memory")), logger.New("statesystem"))
	if nil != err {
		t.Fatalf("new state system error: %s", err)
	}
	return system
}

// write a file into the testing directory
func writeTestFile(t *testing.T, name string, text string) string {
	fileName := filepath.Join(testingDirName, name)
	err := ioutil.WriteFile(fileName, []byte(text), 0o600)
	if nil != err {
		t.Fatalf("write file: %s  error: %s", fileName, err)
	}
	return fileName
}
