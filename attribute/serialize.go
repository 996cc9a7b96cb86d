// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package attribute

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/bitmark-inc/statehistory/fault"
	"github.com/bitmark-inc/statehistory/util"
)

// Magic - first four bytes of a serialized tree
const Magic = uint32(0x06EC3671)

// upper bound on a single name, anything larger is corruption
const maximumNameLength = 1 << 20

// WriteTo - serialize all attributes in quark order
func (tree *Tree) WriteTo(w io.Writer) (int64, error) {
	tree.RLock()
	defer tree.RUnlock()

	buffer := make([]byte, 4, 256)
	binary.BigEndian.PutUint32(buffer, Magic)
	buffer = util.AppendVarint64(buffer, uint64(len(tree.byQuark)))

	total := int64(0)
	flush := func() error {
		n, err := w.Write(buffer)
		total += int64(n)
		buffer = buffer[:0]
		return err
	}

	previous := []string{}
	for quark := range tree.byQuark {
		path := tree.pathOf(quark)
		buffer = util.AppendVarint64(buffer, uint64(len(path)))
		for i, name := range path {
			if i < len(previous) && previous[i] == name {
				buffer = append(buffer, 0x00)
				continue
			}
			buffer = util.AppendVarint64(buffer, uint64(len(name))+1)
			buffer = append(buffer, name...)
		}
		previous = path

		if len(buffer) >= 4096 {
			if err := flush(); nil != err {
				return total, err
			}
		}
	}
	err := flush()
	return total, err
}

// counts bytes consumed through ReadByte and Read
type countingReader struct {
	r     *bufio.Reader
	count int64
}

func (c *countingReader) ReadByte() (byte, error) {
	b, err := c.r.ReadByte()
	if nil == err {
		c.count += 1
	}
	return b, err
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.count += int64(n)
	return n, err
}

// ReadFrom - recreate attributes from their serialized form
//
// every path is replayed through ResolveOrCreate so reading into an
// empty tree reproduces the original quarks exactly, a path that does
// not create exactly the next quark is corruption
func (tree *Tree) ReadFrom(r io.Reader) (int64, error) {
	cr := &countingReader{r: bufio.NewReader(r)}

	var header [4]byte
	if _, err := io.ReadFull(cr, header[:]); nil != err {
		return cr.count, fmt.Errorf("header: %s: %w", err, fault.ErrCorruptAttributeTree)
	}
	if magic := binary.BigEndian.Uint32(header[:]); Magic != magic {
		return cr.count, fmt.Errorf("magic: 0x%08x: %w", magic, fault.ErrCorruptAttributeTree)
	}

	count, err := util.ReadVarint64(cr)
	if nil != err {
		return cr.count, fmt.Errorf("count: %s: %w", err, fault.ErrCorruptAttributeTree)
	}

	previous := []string{}
	for a := uint64(0); a < count; a += 1 {
		segments, err := util.ReadVarint64(cr)
		if nil != err {
			return cr.count, fmt.Errorf("attribute: %d: %s: %w", a, err, fault.ErrCorruptAttributeTree)
		}
		if 0 == segments || segments > a+1 {
			// every ancestor of an attribute has a lower quark
			return cr.count, fmt.Errorf("attribute: %d  segments: %d: %w", a, segments, fault.ErrCorruptAttributeTree)
		}

		path := make([]string, segments)
		for i := range path {
			n, err := util.ReadVarint64(cr)
			if nil != err {
				return cr.count, fmt.Errorf("attribute: %d: %s: %w", a, err, fault.ErrCorruptAttributeTree)
			}
			if 0 == n {
				if i >= len(previous) {
					return cr.count, fmt.Errorf("attribute: %d  segment: %d has no previous: %w", a, i, fault.ErrCorruptAttributeTree)
				}
				path[i] = previous[i]
				continue
			}
			if n-1 > maximumNameLength {
				return cr.count, fmt.Errorf("attribute: %d  name length: %d: %w", a, n-1, fault.ErrCorruptAttributeTree)
			}
			name := make([]byte, n-1)
			if _, err := io.ReadFull(cr, name); nil != err {
				return cr.count, fmt.Errorf("attribute: %d: %s: %w", a, err, fault.ErrCorruptAttributeTree)
			}
			path[i] = string(name)
		}

		// each path must add exactly one attribute at the next quark
		before := tree.Count()
		quark, err := tree.ResolveOrCreate(Root, path...)
		if nil != err {
			return cr.count, err
		}
		if quark != before || tree.Count() != before+1 {
			return cr.count, fmt.Errorf("attribute: %d  path: %q  quark: %d  expected: %d: %w", a, path, quark, before, fault.ErrCorruptAttributeTree)
		}
		previous = path
	}
	return cr.count, nil
}

// WriteFile - serialize into a file starting at a byte offset, any
// existing data after the offset is replaced
func (tree *Tree) WriteFile(fileName string, position int64) error {
	f, err := os.OpenFile(fileName, os.O_WRONLY|os.O_CREATE, 0600)
	if nil != err {
		return err
	}
	defer f.Close()

	if _, err := f.Seek(position, io.SeekStart); nil != err {
		return err
	}
	w := bufio.NewWriter(f)
	n, err := tree.WriteTo(w)
	if nil != err {
		return err
	}
	if err := w.Flush(); nil != err {
		return err
	}
	if err := f.Truncate(position + n); nil != err {
		return err
	}
	return f.Sync()
}

// ReadFile - deserialize from a file starting at a byte offset
func (tree *Tree) ReadFile(fileName string, position int64) error {
	f, err := os.Open(fileName)
	if nil != err {
		return err
	}
	defer f.Close()

	if _, err := f.Seek(position, io.SeekStart); nil != err {
		return err
	}
	_, err = tree.ReadFrom(f)
	return err
}
