// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package avl

// Node - a node in the tree
type Node struct {
	left       *Node       // left sub-tree
	right      *Node       // right sub-tree
	up         *Node       // points to parent node
	key        int64       // key part for ordering
	value      interface{} // value part for data storage
	balance    int         // -1, 0, +1
	leftNodes  int         // count of nodes in left sub-tree
	rightNodes int         // count of nodes in right sub-tree
}

// Tree - type to hold the root node of a tree
type Tree struct {
	root  *Node
	count int
}

// New - create an initially empty tree
func New() *Tree {
	return &Tree{}
}

// IsEmpty - true if tree contains no data
func (tree *Tree) IsEmpty() bool {
	return nil == tree.root
}

// Count - number of nodes currently in the tree
func (tree *Tree) Count() int {
	return tree.count
}

// Key - read the key from a node
func (p *Node) Key() int64 {
	return p.key
}

// Value - read the value from a node
func (p *Node) Value() interface{} {
	return p.value
}

// Depth - distance of a node from the root
func (p *Node) Depth() int {
	count := 0
	for up := p.up; nil != up; up = up.up {
		count += 1
	}
	return count
}

// Height - number of levels in the tree
func (tree *Tree) Height() int {
	return height(tree.root)
}

func height(p *Node) int {
	if nil == p {
		return 0
	}
	l := height(p.left)
	r := height(p.right)
	if l > r {
		return l + 1
	}
	return r + 1
}
