// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package attribute

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/bitmark-inc/statehistory/fault"
)

// pseudo quarks
const (
	Root    = -1 // the unnamed root of the tree
	Invalid = -2 // returned by the optional lookups
)

// path segment meanings for ExpandPattern
const (
	Wildcard = "*"
	Parent   = ".."
)

// a single attribute, owns its children
type node struct {
	quark    int
	name     string
	parent   int              // quark of parent, Root for top level
	children map[string]*node // by name
	ordered  []*node          // creation order
}

func newNode(quark int, name string, parent int) *node {
	return &node{
		quark:    quark,
		name:     name,
		parent:   parent,
		children: make(map[string]*node),
	}
}

func (n *node) addChild(child *node) {
	n.children[child.name] = child
	n.ordered = append(n.ordered, child)
}

// CreateFunc - called once for every new attribute, while the tree is
// still locked
type CreateFunc func(quark int)

// Tree - the root node and the flat quark index
type Tree struct {
	sync.RWMutex
	root     *node
	byQuark  []*node
	onCreate CreateFunc
}

// New - create an empty tree, onCreate may be nil
func New(onCreate CreateFunc) *Tree {
	return &Tree{
		root:     newNode(Root, "", Root),
		byQuark:  make([]*node, 0, 64),
		onCreate: onCreate,
	}
}

// Count - number of attributes ever created
func (tree *Tree) Count() int {
	tree.RLock()
	defer tree.RUnlock()
	return len(tree.byQuark)
}

// internal: must hold at least the read lock
func (tree *Tree) nodeOf(quark int) (*node, error) {
	if Root == quark {
		return tree.root, nil
	}
	if quark < 0 || quark >= len(tree.byQuark) {
		return nil, fmt.Errorf("quark: %d  count: %d: %w", quark, len(tree.byQuark), fault.ErrQuarkOutOfRange)
	}
	return tree.byQuark[quark], nil
}

// internal: walk without creating, nil if some segment is missing
func (tree *Tree) walk(start *node, path []string) *node {
	current := start
	for _, name := range path {
		child, ok := current.children[name]
		if !ok {
			return nil
		}
		current = child
	}
	return current
}

// Resolve - find the quark of a path relative to start
func (tree *Tree) Resolve(start int, path ...string) (int, error) {
	tree.RLock()
	defer tree.RUnlock()

	n, err := tree.nodeOf(start)
	if nil != err {
		return Invalid, err
	}
	found := tree.walk(n, path)
	if nil == found {
		return Invalid, fmt.Errorf("path: %q from: %d: %w", path, start, fault.ErrAttributeNotFound)
	}
	return found.quark, nil
}

// Optional - like Resolve but absence is not an error, Invalid is
// returned instead; an out of range start is still an error
func (tree *Tree) Optional(start int, path ...string) (int, error) {
	q, err := tree.Resolve(start, path...)
	if fault.IsErrNotFound(err) {
		return Invalid, nil
	}
	return q, err
}

// ResolveOrCreate - find the quark of a path relative to start,
// creating any missing attributes along the way
func (tree *Tree) ResolveOrCreate(start int, path ...string) (int, error) {

	// fast path: already exists
	tree.RLock()
	n, err := tree.nodeOf(start)
	if nil != err {
		tree.RUnlock()
		return Invalid, err
	}
	found := tree.walk(n, path)
	tree.RUnlock()
	if nil != found {
		return found.quark, nil
	}

	tree.Lock()
	defer tree.Unlock()

	// another writer may have created some or all of it meanwhile
	current := n
	for _, name := range path {
		child, ok := current.children[name]
		if !ok {
			child = newNode(len(tree.byQuark), name, current.quark)
			tree.byQuark = append(tree.byQuark, child)
			current.addChild(child)
			if nil != tree.onCreate {
				tree.onCreate(child.quark)
			}
		}
		current = child
	}
	return current.quark, nil
}

// SubAttributes - children of quark in creation order, with recursive
// set the whole sub-tree in depth first pre-order
func (tree *Tree) SubAttributes(quark int, recursive bool) ([]int, error) {
	tree.RLock()
	defer tree.RUnlock()

	n, err := tree.nodeOf(quark)
	if nil != err {
		return nil, err
	}
	result := make([]int, 0, len(n.ordered))
	return addSubAttributes(result, n, recursive), nil
}

func addSubAttributes(result []int, n *node, recursive bool) []int {
	for _, child := range n.ordered {
		result = append(result, child.quark)
		if recursive {
			result = addSubAttributes(result, child, true)
		}
	}
	return result
}

// SubAttributesMatching - immediate children whose name matches
func (tree *Tree) SubAttributesMatching(quark int, pattern *regexp.Regexp) ([]int, error) {
	tree.RLock()
	defer tree.RUnlock()

	n, err := tree.nodeOf(quark)
	if nil != err {
		return nil, err
	}
	result := make([]int, 0)
	for _, child := range n.ordered {
		if pattern.MatchString(child.name) {
			result = append(result, child.quark)
		}
	}
	return result, nil
}

// Name - the last segment of an attribute's path
func (tree *Tree) Name(quark int) (string, error) {
	tree.RLock()
	defer tree.RUnlock()

	n, err := tree.nodeOf(quark)
	if nil != err {
		return "", err
	}
	return n.name, nil
}

// Parent - quark of the parent attribute, Root for top level
// attributes and for Root itself
func (tree *Tree) Parent(quark int) (int, error) {
	tree.RLock()
	defer tree.RUnlock()

	n, err := tree.nodeOf(quark)
	if nil != err {
		return Invalid, err
	}
	return n.parent, nil
}

// FullPathArray - names from the root (exclusive) down to quark
func (tree *Tree) FullPathArray(quark int) ([]string, error) {
	tree.RLock()
	defer tree.RUnlock()

	if _, err := tree.nodeOf(quark); nil != err {
		return nil, err
	}
	return tree.pathOf(quark), nil
}

// internal: must hold at least the read lock
func (tree *Tree) pathOf(quark int) []string {
	depth := 0
	for q := quark; Root != q; q = tree.byQuark[q].parent {
		depth += 1
	}
	path := make([]string, depth)
	for q := quark; Root != q; q = tree.byQuark[q].parent {
		depth -= 1
		path[depth] = tree.byQuark[q].name
	}
	return path
}

// FullPath - slash separated full path, a slash within a name is
// escaped with a backslash
func (tree *Tree) FullPath(quark int) (string, error) {
	path, err := tree.FullPathArray(quark)
	if nil != err {
		return "", err
	}
	for i, name := range path {
		path[i] = strings.Replace(name, "/", `\/`, -1)
	}
	return strings.Join(path, "/"), nil
}

// ExpandPattern - all quarks matched by a pattern relative to start
//
// each segment is a literal name (dropped if missing), Wildcard for
// all immediate children or Parent to move up one level; the result
// has no duplicates and is in ascending quark order
func (tree *Tree) ExpandPattern(start int, pattern ...string) ([]int, error) {
	tree.RLock()
	defer tree.RUnlock()

	if _, err := tree.nodeOf(start); nil != err {
		return nil, err
	}

	current := []int{start}
	for _, segment := range pattern {
		next := make([]int, 0, len(current))
		seen := make(map[int]struct{})
		add := func(q int) {
			if _, ok := seen[q]; !ok {
				seen[q] = struct{}{}
				next = append(next, q)
			}
		}
		for _, q := range current {
			n, _ := tree.nodeOf(q)
			switch segment {
			case Wildcard:
				for _, child := range n.ordered {
					add(child.quark)
				}
			case Parent:
				add(n.parent)
			default:
				if child, ok := n.children[segment]; ok {
					add(child.quark)
				}
			}
		}
		current = next
	}

	// callers only want attributes, not the root itself
	result := make([]int, 0, len(current))
	for _, q := range current {
		if Root != q {
			result = append(result, q)
		}
	}
	sort.Ints(result)
	return result, nil
}
