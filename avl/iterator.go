// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package avl

// First - return the node with the lowest key value
func (tree *Tree) First() *Node {
	return tree.root.first()
}

// internal: lowest node in a sub-tree
func (p *Node) first() *Node {
	if nil == p {
		return nil
	}
	for nil != p.left {
		p = p.left
	}
	return p
}

// Last - return the node with the highest key value
func (tree *Tree) Last() *Node {
	return tree.root.last()
}

// internal: highest node in a sub-tree
func (p *Node) last() *Node {
	if nil == p {
		return nil
	}
	for nil != p.right {
		p = p.right
	}
	return p
}

// Next - the node with the next highest key or nil if no more nodes
func (p *Node) Next() *Node {
	if nil != p.right {
		return p.right.first()
	}
	for nil != p.up && p == p.up.right {
		p = p.up
	}
	return p.up
}

// Prev - the node with the next lowest key or nil if no more nodes
func (p *Node) Prev() *Node {
	if nil != p.left {
		return p.left.last()
	}
	for nil != p.up && p == p.up.left {
		p = p.up
	}
	return p.up
}
