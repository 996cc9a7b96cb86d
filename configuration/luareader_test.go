// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/statehistory/configuration"
	"github.com/bitmark-inc/statehistory/fault"
)

type database struct {
	Directory string `gluamapper:"directory"`
	StartTime int64  `gluamapper:"start_time"`
}

type testConfiguration struct {
	DataDirectory string            `gluamapper:"data_directory"`
	MaxStackDepth int               `gluamapper:"max_stack_depth"`
	Follow        bool              `gluamapper:"follow"`
	Database      database          `gluamapper:"database"`
	Levels        map[string]string `gluamapper:"levels"`
}

const script = `
local M = {}
M.data_directory = arg[1] or "."
M.max_stack_depth = 5 * 20
M.follow = true
M.database = {
    directory = "history",
    start_time = 1000,
}
M.levels = {
    main = "info",
    DEFAULT = "critical",
}
return M
`

func writeScript(t *testing.T, text string) string {
	dir, err := ioutil.TempDir("", "configuration")
	if nil != err {
		t.Fatalf("temp dir error: %s", err)
	}
	name := filepath.Join(dir, "test.conf")
	err = ioutil.WriteFile(name, []byte(text), 0o600)
	if nil != err {
		t.Fatalf("write error: %s", err)
	}
	return name
}

func TestParse(t *testing.T) {
	name := writeScript(t, script)
	defer os.RemoveAll(filepath.Dir(name))

	c := testConfiguration{}
	err := configuration.ParseConfigurationFile(name, &c, "/var/lib/history")
	assert.Nil(t, err, "parse")

	assert.Equal(t, "/var/lib/history", c.DataDirectory, "data directory from arg")
	assert.Equal(t, 100, c.MaxStackDepth, "computed value")
	assert.True(t, c.Follow, "follow")
	assert.Equal(t, "history", c.Database.Directory, "nested")
	assert.Equal(t, int64(1000), c.Database.StartTime, "nested number")
	assert.Equal(t, "info", c.Levels["main"], "map")
	assert.Equal(t, "critical", c.Levels["DEFAULT"], "map default")
}

func TestParseErrors(t *testing.T) {
	name := writeScript(t, "return 42\n")
	defer os.RemoveAll(filepath.Dir(name))

	c := testConfiguration{}
	err := configuration.ParseConfigurationFile(name, &c)
	assert.True(t, fault.IsErrInvalid(err), "not a table: %v", err)

	err = configuration.ParseConfigurationFile(name, c)
	assert.Equal(t, fault.ErrInvalidStructPointer, err, "not a pointer")

	n := 7
	err = configuration.ParseConfigurationFile(name, &n)
	assert.Equal(t, fault.ErrInvalidStructPointer, err, "not a struct")

	err = configuration.ParseConfigurationFile(filepath.Join(filepath.Dir(name), "missing.conf"), &c)
	assert.NotNil(t, err, "missing file")

	bad := writeScript(t, "return {\n")
	defer os.RemoveAll(filepath.Dir(bad))
	err = configuration.ParseConfigurationFile(bad, &c)
	assert.NotNil(t, err, "syntax error")
}
